// Package schema holds the gohcl-tagged structs that describe the layout of a
// deck file. They carry no behaviour; internal/hcl decodes files into them and
// translates the result into the format-agnostic config.Deck.
package schema

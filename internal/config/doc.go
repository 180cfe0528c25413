// Package config defines the format-agnostic deck model: the entity records a
// user declared, in declaration order, independent of the file format they
// came from. Loader implementations (such as internal/hcl) produce a Deck;
// Deck.Assemble replays it into a document.
package config

// Package cli builds the palacegrid command tree with cobra. It only turns
// flags into app options; all behaviour lives in internal/app.
package cli

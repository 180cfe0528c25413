package config

import (
	"context"
)

// Loader is the interface for a format-specific deck loader.
type Loader interface {
	// Load reads every deck file under the given paths and translates them
	// into one merged Deck.
	Load(ctx context.Context, paths ...string) (*Deck, error)
}

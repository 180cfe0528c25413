// Package testutil holds the shared harness for tests that load decks from
// disk.
package testutil

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/vk/palacegrid/internal/config"
	"github.com/vk/palacegrid/internal/ctxlog"
	"github.com/vk/palacegrid/internal/hcl"
	"github.com/vk/palacegrid/internal/registry"
	"github.com/vk/palacegrid/modules/boundary"
	"github.com/vk/palacegrid/modules/postprocessing"
	"github.com/vk/palacegrid/modules/solver"
)

// SafeBuffer is a thread-safe buffer for capturing log output in tests.
type SafeBuffer struct {
	b  bytes.Buffer
	mu sync.Mutex
}

// Write implements the io.Writer interface for SafeBuffer.
func (b *SafeBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.b.Write(p)
}

// String implements the fmt.Stringer interface for SafeBuffer.
func (b *SafeBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.b.String()
}

// Context returns a context carrying a debug-level text logger that writes
// into the returned buffer.
func Context(t *testing.T) (context.Context, *SafeBuffer) {
	t.Helper()
	buf := &SafeBuffer{}
	logger := slog.New(slog.NewTextHandler(buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	return ctxlog.WithLogger(context.Background(), logger), buf
}

// WriteFiles writes files (relative path -> content) under a fresh temporary
// directory and returns its path.
func WriteFiles(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		path := filepath.Join(dir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
	return dir
}

// Registry returns a validated registry holding every built-in deck module.
func Registry(t *testing.T) *registry.Registry {
	t.Helper()
	reg := registry.New()
	for _, m := range []registry.Module{&boundary.Module{}, &postprocessing.Module{}, &solver.Module{}} {
		m.Register(reg)
	}
	ctx, _ := Context(t)
	require.NoError(t, reg.ValidateRegistry(ctx))
	return reg
}

// DeckResult holds the outcome of loading a deck in a test.
type DeckResult struct {
	Deck      *config.Deck
	Err       error
	Dir       string
	LogOutput string
}

// LoadDeck writes files to a temporary directory and loads every deck file
// in it with the built-in modules.
func LoadDeck(t *testing.T, files map[string]string) *DeckResult {
	t.Helper()
	dir := WriteFiles(t, files)
	ctx, logs := Context(t)
	deck, err := hcl.NewLoader(Registry(t)).Load(ctx, dir)
	return &DeckResult{Deck: deck, Err: err, Dir: dir, LogOutput: logs.String()}
}

// MinimalDeck is a single-file eigenmode deck that assembles into a complete
// document.
const MinimalDeck = `
problem {
  type = "eigenmode"
}

model {
  mesh = "mesh/cavity.msh"
}

material "vacuum" {
  attributes   = [1]
  permeability = 1
  permittivity = 1
}

boundary "pec" "walls" {
  attributes = [2]
}

boundary "lumped_port" "junction" {
  index      = 1
  attributes = [3]
  direction  = "+X"
  l          = 1.04e-8
}

solver {
  eigenmode {
    target = 2
    n      = 2
  }
}
`

// IncompleteDeck declares a problem and a model but no domains or solver.
const IncompleteDeck = `
problem {
  type = "eigenmode"
}

model {
  mesh = "mesh/cavity.msh"
}
`

package main

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vk/palacegrid/internal/cli"
	"github.com/vk/palacegrid/internal/document"
	"github.com/vk/palacegrid/internal/testutil"
)

func TestRun_BuildToFile(t *testing.T) {
	t.Parallel()

	dir := testutil.WriteFiles(t, map[string]string{"deck/main.hcl": testutil.MinimalDeck})
	output := filepath.Join(dir, "config.json")
	out := &bytes.Buffer{}

	err := run(context.Background(), out, io.Discard, []string{"build", filepath.Join(dir, "deck"), "-o", output, "--log-level", "error"})
	require.NoError(t, err)

	raw, err := os.ReadFile(output)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"Type": "Eigenmode"`)
}

func TestRun_IncompleteDeck(t *testing.T) {
	t.Parallel()

	dir := testutil.WriteFiles(t, map[string]string{"main.hcl": testutil.IncompleteDeck})
	out := &bytes.Buffer{}

	err := run(context.Background(), out, io.Discard, []string{"build", dir, "--log-level", "error"})

	var verr *document.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, err.Error(), "Domains, Solver")
	assert.Empty(t, out.String(), "nothing is written for an incomplete deck")
}

func TestRun_Help(t *testing.T) {
	t.Parallel()

	out := &bytes.Buffer{}
	err := run(context.Background(), out, io.Discard, []string{"--help"})

	require.NoError(t, err, "help is not an error")
	assert.Contains(t, out.String(), "Usage:")
	assert.Contains(t, out.String(), "analyze")
}

func TestRun_InvalidLogLevel(t *testing.T) {
	t.Parallel()

	dir := testutil.WriteFiles(t, map[string]string{"main.hcl": testutil.MinimalDeck})
	out := &bytes.Buffer{}

	err := run(context.Background(), out, io.Discard, []string{"build", dir, "--log-level", "loud"})

	var exitErr *cli.ExitError
	require.ErrorAs(t, err, &exitErr)
	assert.Equal(t, 2, exitErr.Code)
	assert.Contains(t, exitErr.Message, "invalid log-level")
}

func TestRun_UnknownFlag(t *testing.T) {
	t.Parallel()

	out := &bytes.Buffer{}
	err := run(context.Background(), out, io.Discard, []string{"build", "--this-is-not-a-valid-flag"})

	var exitErr *cli.ExitError
	require.ErrorAs(t, err, &exitErr)
	assert.Equal(t, 2, exitErr.Code)
	assert.Contains(t, exitErr.Message, "unknown flag: --this-is-not-a-valid-flag")
}

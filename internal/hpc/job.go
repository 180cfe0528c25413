package hpc

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"text/template"
)

//go:embed templates/*.tmpl
var templates embed.FS

var scriptTemplate = template.Must(
	template.New("slurm.sh.tmpl").
		Funcs(template.FuncMap{"quote": shellQuote}).
		ParseFS(templates, "templates/slurm.sh.tmpl"),
)

var (
	// ErrNoProcesses is returned for a job with fewer than one MPI rank.
	ErrNoProcesses = errors.New("process count must be at least 1")
	// ErrNoConfig is returned for a job without a document path.
	ErrNoConfig = errors.New("job needs a config document path")
)

// Job is one solver run: the batch directives, environment setup lines and
// the solver command line.
type Job struct {
	Directives []string
	Setup      []string
	Palace     string
	Processes  int
	Config     string
}

func (j Job) validate() error {
	if j.Processes < 1 {
		return ErrNoProcesses
	}
	if j.Config == "" {
		return ErrNoConfig
	}
	return nil
}

// Render writes the batch script to w.
func (j Job) Render(w io.Writer) error {
	if err := j.validate(); err != nil {
		return err
	}
	return scriptTemplate.Execute(w, j)
}

// WriteScript renders the batch script into an executable file at path.
func (j Job) WriteScript(path string) error {
	var buf bytes.Buffer
	if err := j.Render(&buf); err != nil {
		return err
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o755); err != nil {
		return fmt.Errorf("failed to write job script: %w", err)
	}
	return nil
}

// shellQuote single-quotes s for a POSIX shell.
func shellQuote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}

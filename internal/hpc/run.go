package hpc

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os/exec"
	"regexp"
	"strconv"
)

// Runner starts an external command and waits for it to finish, copying its
// combined output to out.
type Runner interface {
	Run(ctx context.Context, out io.Writer, name string, args ...string) error
}

// ExecRunner runs commands as local processes.
type ExecRunner struct{}

// Run implements Runner.
func (ExecRunner) Run(ctx context.Context, out io.Writer, name string, args ...string) error {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdout = out
	cmd.Stderr = out
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	return nil
}

var submittedRe = regexp.MustCompile(`Submitted batch job (\d+)`)

// Submitter hands batch scripts to the scheduler.
type Submitter struct {
	Runner  Runner
	Command string
}

// NewSubmitter returns a Submitter that calls sbatch.
func NewSubmitter(r Runner) *Submitter {
	return &Submitter{Runner: r, Command: "sbatch"}
}

// Submit submits the script at path and returns the scheduler's job ID.
func (s *Submitter) Submit(ctx context.Context, path string) (int, error) {
	var out bytes.Buffer
	if err := s.Runner.Run(ctx, &out, s.Command, path); err != nil {
		return 0, fmt.Errorf("submit %s: %w: %s", path, err, bytes.TrimSpace(out.Bytes()))
	}
	m := submittedRe.FindSubmatch(out.Bytes())
	if m == nil {
		return 0, fmt.Errorf("submit %s: unexpected scheduler output %q", path, bytes.TrimSpace(out.Bytes()))
	}
	return strconv.Atoi(string(m[1]))
}

// SolverRunner runs the solver directly through MPI.
type SolverRunner struct {
	Runner Runner
	Palace string
}

// NewSolverRunner returns a SolverRunner for the given executable.
func NewSolverRunner(r Runner, palace string) *SolverRunner {
	if palace == "" {
		palace = DefaultPalace
	}
	return &SolverRunner{Runner: r, Palace: palace}
}

// Run runs the solver on config with processes ranks, streaming its output
// to out.
func (s *SolverRunner) Run(ctx context.Context, out io.Writer, processes int, config string) error {
	job := Job{Palace: s.Palace, Processes: processes, Config: config}
	if err := job.validate(); err != nil {
		return err
	}
	return s.Runner.Run(ctx, out, s.Palace, "-np", strconv.Itoa(processes), config)
}

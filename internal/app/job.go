package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/vk/palacegrid/internal/ctxlog"
	"github.com/vk/palacegrid/internal/hpc"
	"github.com/vk/palacegrid/internal/notify"
)

// ErrSubmitNeedsScript is returned when submission is requested without a
// script path to write to.
var ErrSubmitNeedsScript = errors.New("submitting a job requires a script path")

// JobOptions configures the job command.
type JobOptions struct {
	Profile   string
	Config    string
	Processes int
	Script    string
	Submit    bool
}

// Job renders the batch script for a solver run. Without a script path the
// script is printed; with Submit it is handed to the scheduler.
func (a *App) Job(ctx context.Context, opts JobOptions) error {
	ctx = a.context(ctx)
	logger := ctxlog.FromContext(ctx)

	if opts.Submit && opts.Script == "" {
		return ErrSubmitNeedsScript
	}
	profile, err := hpc.LoadProfile(opts.Profile)
	if err != nil {
		return err
	}
	job := profile.Job(opts.Config, opts.Processes)

	if opts.Script == "" {
		return job.Render(a.outW)
	}
	if err := job.WriteScript(opts.Script); err != nil {
		return err
	}
	logger.Info("Job script written.", "path", opts.Script, "processes", opts.Processes)

	if !opts.Submit {
		return nil
	}
	id, err := hpc.NewSubmitter(a.runner).Submit(ctx, opts.Script)
	if err != nil {
		return err
	}
	logger.Info("Job submitted.", "job_id", id)
	fmt.Fprintf(a.outW, "Submitted batch job %d\n", id)
	return nil
}

// RunOptions configures the run command.
type RunOptions struct {
	Config    string
	Processes int
	Palace    string
	// Notify receives the solver's started and finished events.
	Notify notify.Options
}

// solverEvent is the payload of notify.EventSolver.
type solverEvent struct {
	State     string `json:"state"`
	Config    string `json:"config"`
	Processes int    `json:"processes"`
	Error     string `json:"error,omitempty"`
}

// RunSolver runs the solver locally on a document, streaming its output.
func (a *App) RunSolver(ctx context.Context, opts RunOptions) error {
	ctx = a.context(ctx)
	n, err := a.notifier(ctx, opts.Notify)
	if err != nil {
		return err
	}
	defer n.Close()

	ev := solverEvent{State: "started", Config: opts.Config, Processes: opts.Processes}
	ctxlog.FromContext(ctx).Info("Starting solver.", "config", opts.Config, "processes", opts.Processes)
	a.emit(ctx, n, notify.EventSolver, ev)

	if err := hpc.NewSolverRunner(a.runner, opts.Palace).Run(ctx, a.outW, opts.Processes, opts.Config); err != nil {
		ev.State, ev.Error = "failed", err.Error()
		a.emit(ctx, n, notify.EventSolver, ev)
		return fmt.Errorf("solver run failed: %w", err)
	}
	ev.State = "finished"
	a.emit(ctx, n, notify.EventSolver, ev)
	return nil
}

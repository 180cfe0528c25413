// Package notify publishes build and solver lifecycle events to a
// socket.io server so dashboards can follow long-running work.
package notify

import (
	"context"
	"time"
)

// Event names emitted by palacegrid.
const (
	EventBuild  = "build"
	EventSolver = "solver"
)

// Notifier publishes events. Implementations must be safe to call from one
// goroutine at a time.
type Notifier interface {
	Notify(ctx context.Context, event string, data any) error
	Close() error
}

// Options describes the socket.io endpoint events are sent to.
type Options struct {
	URL                string
	Namespace          string
	InsecureSkipVerify bool
	// Timeout bounds the initial connection. Zero means DefaultTimeout.
	Timeout time.Duration
}

// DefaultTimeout is the connection timeout used when Options.Timeout is zero.
const DefaultTimeout = 15 * time.Second

// Enabled reports whether an endpoint is configured.
func (o Options) Enabled() bool {
	return o.URL != ""
}

// Nop discards every event.
type Nop struct{}

// Notify implements Notifier.
func (Nop) Notify(context.Context, string, any) error { return nil }

// Close implements Notifier.
func (Nop) Close() error { return nil }

// Dialer opens a Notifier for the given options.
type Dialer func(ctx context.Context, opts Options) (Notifier, error)

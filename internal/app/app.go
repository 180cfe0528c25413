package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/vk/palacegrid/internal/config"
	"github.com/vk/palacegrid/internal/ctxlog"
	"github.com/vk/palacegrid/internal/hpc"
	"github.com/vk/palacegrid/internal/notify"
	"github.com/vk/palacegrid/internal/registry"
)

// LoaderFactory builds the deck loader once the registry is populated.
type LoaderFactory func(reg *registry.Registry) config.Loader

// App encapsulates the application's dependencies, configuration, and lifecycle.
type App struct {
	outW     io.Writer
	logW     io.Writer
	logger   *slog.Logger
	registry *registry.Registry
	loader   config.Loader
	runner   hpc.Runner
	dial     notify.Dialer

	mu        sync.Mutex
	lastBuild buildStatus
}

// Option configures an App.
type Option func(*App)

// WithModules replaces the built-in modules.
func WithModules(modules ...registry.Module) Option {
	return func(a *App) {
		a.registry = registry.New()
		for _, m := range modules {
			m.Register(a.registry)
		}
	}
}

// WithRunner replaces the process runner used by the job and run commands.
func WithRunner(r hpc.Runner) Option {
	return func(a *App) { a.runner = r }
}

// WithDialer replaces how event notifiers are opened.
func WithDialer(d notify.Dialer) Option {
	return func(a *App) { a.dial = d }
}

// WithLogWriter sends logs to w instead of the output writer.
func WithLogWriter(w io.Writer) Option {
	return func(a *App) { a.logW = w }
}

// NewApp is the constructor for the main application. It returns a fully
// initialized App instance, including its own isolated logger and registry.
// A registry that fails validation is a programmer error and panics.
func NewApp(outW io.Writer, cfg *Config, newLoader LoaderFactory, opts ...Option) *App {
	a := &App{
		outW:   outW,
		logW:   outW,
		runner: hpc.ExecRunner{},
		dial:   notify.Dial,
	}
	for _, o := range opts {
		o(a)
	}

	a.logger = newLogger(cfg, a.logW)
	ctx := ctxlog.WithLogger(context.Background(), a.logger)
	a.logger.Debug("Logger configured successfully.")

	if a.registry == nil {
		a.registry = registry.New()
		for _, mod := range coreModules {
			mod.Register(a.registry)
		}
		a.logger.Debug("All Go modules registered.", "count", len(coreModules))
	}

	if err := a.registry.ValidateRegistry(ctx); err != nil {
		panic(err)
	}
	a.logger.Debug("Registry validation passed.")

	a.loader = newLoader(a.registry)
	return a
}

// Registry returns the application's registry. This is primarily for testing.
func (a *App) Registry() *registry.Registry {
	return a.registry
}

func (a *App) context(ctx context.Context) context.Context {
	return ctxlog.WithLogger(ctx, a.logger)
}

// notifier opens the configured notifier, or a Nop one when none is set.
func (a *App) notifier(ctx context.Context, opts notify.Options) (notify.Notifier, error) {
	if !opts.Enabled() {
		return notify.Nop{}, nil
	}
	n, err := a.dial(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to connect notifier: %w", err)
	}
	return n, nil
}

func (a *App) emit(ctx context.Context, n notify.Notifier, event string, data any) {
	if err := n.Notify(ctx, event, data); err != nil {
		ctxlog.FromContext(ctx).Warn("Failed to publish event.", "event", event, "error", err)
	}
}

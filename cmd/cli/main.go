package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/vk/palacegrid/internal/app"
	"github.com/vk/palacegrid/internal/cli"
	"github.com/vk/palacegrid/internal/config"
	"github.com/vk/palacegrid/internal/hcl"
	"github.com/vk/palacegrid/internal/registry"
)

// main is the entrypoint for the palacegrid application.
func main() {
	// Use a minimal logger until the full one is configured.
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := run(ctx, os.Stdout, os.Stderr, os.Args[1:])
	stop()

	if err != nil {
		var exitErr *cli.ExitError
		if errors.As(err, &exitErr) {
			fmt.Fprintln(os.Stderr, exitErr.Message)
			os.Exit(exitErr.Code)
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// run encapsulates the main application logic for easier testing and error handling.
func run(ctx context.Context, outW, logW io.Writer, args []string) (err error) {
	// The app panics on an invalid module registry, so we recover here to
	// provide a clean exit message to the user.
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("application startup panicked: %v", r)
		}
	}()

	newApp := func(out io.Writer, cfg *app.Config) *app.App {
		return app.NewApp(out, cfg, func(reg *registry.Registry) config.Loader {
			return hcl.NewLoader(reg)
		}, app.WithLogWriter(logW))
	}

	root := cli.NewRootCmd(ctx, outW, newApp)
	root.SetArgs(args)
	return root.Execute()
}

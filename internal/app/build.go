package app

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/vk/palacegrid/internal/ctxlog"
	"github.com/vk/palacegrid/internal/document"
	"github.com/vk/palacegrid/internal/notify"
)

// BuildOptions configures the build command.
type BuildOptions struct {
	Paths []string
	// Output is the document path; empty or "-" writes to the app's output.
	Output        string
	ArrayEncoding bool
	// Notify receives the status of every watch build.
	Notify notify.Options
}

// Build loads the deck under opts.Paths, assembles the document and saves it.
// An incomplete deck fails with a *document.ValidationError and writes
// nothing.
func (a *App) Build(ctx context.Context, opts BuildOptions) error {
	ctx = a.context(ctx)
	logger := ctxlog.FromContext(ctx)

	deck, err := a.loader.Load(ctx, opts.Paths...)
	if err != nil {
		return fmt.Errorf("failed to load deck: %w", err)
	}

	docOpts := []document.Option{document.WithLogger(logger)}
	if opts.ArrayEncoding {
		docOpts = append(docOpts, document.WithArrayEncoding())
	}
	doc, err := deck.Assemble(docOpts...)
	if err != nil {
		return err
	}

	if opts.Output == "" || opts.Output == "-" {
		return doc.Encode(a.outW)
	}
	if err := doc.Save(opts.Output); err != nil {
		return err
	}
	logger.Info("Document written.", "path", opts.Output, "problem", doc.ProblemType(), "files", len(deck.Files))
	return nil
}

// watchDebounce coalesces the burst of events an editor emits on save.
const watchDebounce = 200 * time.Millisecond

// Watch runs Build once and again after every change to a deck file, until
// ctx is cancelled. Build failures are logged and do not stop the watch.
// A positive healthPort serves the last build status over HTTP.
func (a *App) Watch(ctx context.Context, opts BuildOptions, healthPort int) error {
	ctx = a.context(ctx)
	logger := ctxlog.FromContext(ctx)

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to start watcher: %w", err)
	}
	defer watcher.Close()

	watched := make(map[string]struct{})
	watch := func(dirs []string) error {
		for _, dir := range dirs {
			if _, ok := watched[dir]; ok {
				continue
			}
			if err := watcher.Add(dir); err != nil {
				return fmt.Errorf("failed to watch %s: %w", dir, err)
			}
			watched[dir] = struct{}{}
			logger.Debug("Watching directory.", "dir", dir)
		}
		return nil
	}
	if err := watch(watchDirs(opts.Paths)); err != nil {
		return err
	}

	n, err := a.notifier(ctx, opts.Notify)
	if err != nil {
		return err
	}
	defer n.Close()

	if healthPort > 0 {
		srv := a.startHealthcheckServer(ctx, healthPort)
		defer a.closeHealthcheckServer(srv)
	}

	rebuild := func() {
		err := a.Build(ctx, opts)
		a.recordBuild(err)
		a.emit(ctx, n, notify.EventBuild, a.buildStatus())
		if err != nil {
			logger.Error("Build failed.", "error", err)
			return
		}
		logger.Info("Build succeeded.")
	}
	rebuild()

	var timer <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			logger.Debug("Watch stopped.")
			return nil
		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if ev.Has(fsnotify.Create) {
				if info, err := os.Stat(ev.Name); err == nil && info.IsDir() {
					// Files written into the new directory before it was
					// added produce no events, so rebuild regardless.
					if err := watch(watchDirs([]string{ev.Name})); err != nil {
						logger.Warn("Failed to watch new directory.", "dir", ev.Name, "error", err)
					}
					timer = time.After(watchDebounce)
					continue
				}
			}
			if filepath.Ext(ev.Name) != ".hcl" || ev.Op == fsnotify.Chmod {
				continue
			}
			logger.Debug("Deck file changed.", "file", ev.Name, "op", ev.Op.String())
			timer = time.After(watchDebounce)
		case <-timer:
			timer = nil
			rebuild()
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn("Watcher error.", "error", err)
		}
	}
}

// watchDirs returns the directories to watch for the given deck paths: every
// directory below a directory argument, and the parent of a file argument.
func watchDirs(paths []string) []string {
	var dirs []string
	seen := make(map[string]struct{})
	add := func(dir string) {
		dir = filepath.Clean(dir)
		if _, ok := seen[dir]; ok {
			return
		}
		seen[dir] = struct{}{}
		dirs = append(dirs, dir)
	}
	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			add(p)
			continue
		}
		if !info.IsDir() {
			add(filepath.Dir(p))
			continue
		}
		_ = filepath.WalkDir(p, func(path string, d fs.DirEntry, err error) error {
			// Unreadable entries are skipped.
			if err == nil && d.IsDir() {
				add(path)
			}
			return nil
		})
	}
	return dirs
}

// buildStatus is the outcome of the most recent watch build.
type buildStatus struct {
	At      time.Time `json:"at"`
	OK      bool      `json:"ok"`
	Error   string    `json:"error,omitempty"`
	Missing []string  `json:"missing,omitempty"`
}

func (a *App) recordBuild(err error) {
	st := buildStatus{At: time.Now(), OK: err == nil}
	if err != nil {
		st.Error = err.Error()
		var verr *document.ValidationError
		if errors.As(err, &verr) {
			for _, s := range verr.Missing {
				st.Missing = append(st.Missing, string(s))
			}
		}
	}
	a.mu.Lock()
	a.lastBuild = st
	a.mu.Unlock()
}

func (a *App) buildStatus() buildStatus {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.lastBuild
}

package pipeline

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/opmodel/pkgbuild/internal/manifest"
	"github.com/opmodel/pkgbuild/internal/output"
)

// DefaultDebounce is the quiet period after the last change before a rebuild.
const DefaultDebounce = 250 * time.Millisecond

// WatchOptions configures Watch.
type WatchOptions struct {
	RunOptions

	// Debounce coalesces bursts of events. Zero selects DefaultDebounce.
	Debounce time.Duration

	// OnResult receives the outcome of every run, including the first.
	OnResult func(*Result, error)
}

// Watch runs the pipeline once and again whenever the manifest or the
// workspace catalog file changes. It returns nil when ctx is done.
//
// Directories are watched rather than files so editors that replace files
// by rename keep triggering rebuilds.
func (p *Pipeline) Watch(ctx context.Context, opts WatchOptions) error {
	dir, err := absDir(opts.Dir)
	if err != nil {
		return err
	}
	opts.Dir = dir

	debounce := opts.Debounce
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	report := opts.OnResult
	if report == nil {
		report = func(*Result, error) {}
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}
	defer fsw.Close() //nolint:errcheck // best-effort cleanup

	manifestPath := filepath.Join(dir, manifest.FileName)
	watched := map[string]bool{manifestPath: false}
	dirs := map[string]bool{dir: true}

	resolver := p.Resolver(dir)
	if root, ok := resolver.Root(); ok {
		watched[filepath.Join(root, resolver.FileName())] = true
		dirs[root] = true
	}
	for d := range dirs {
		if err := fsw.Add(d); err != nil {
			return fmt.Errorf("watching %s: %w", d, err)
		}
	}
	output.Debug("watching for changes", "dir", dir, "files", len(watched))

	report(p.Run(ctx, opts.RunOptions))

	var (
		timer          *time.Timer
		fire           <-chan time.Time
		catalogChanged bool
	)
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case evt, ok := <-fsw.Events:
			if !ok {
				return errors.New("watcher event channel closed")
			}
			isCatalog, relevant := watched[filepath.Clean(evt.Name)]
			if !relevant || evt.Op == fsnotify.Chmod {
				continue
			}
			output.Debug("change detected", "path", evt.Name, "op", evt.Op.String())
			catalogChanged = catalogChanged || isCatalog
			if timer == nil {
				timer = time.NewTimer(debounce)
			} else {
				timer.Reset(debounce)
			}
			fire = timer.C

		case <-fire:
			fire = nil
			if catalogChanged {
				resolver.ClearCache()
				catalogChanged = false
			}
			report(p.Run(ctx, opts.RunOptions))

		case err, ok := <-fsw.Errors:
			if !ok {
				return errors.New("watcher error channel closed")
			}
			output.Warn("watch error", "err", err)
		}
	}
}

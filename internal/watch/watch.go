// Package watch follows a local console log file and invokes a
// callback with its contents whenever the file settles after a change.
//
// Builds append to their log in bursts, so changes are debounced: the
// callback fires once the file has been quiet for the debounce window,
// not on every write event.
package watch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce is the quiet period after the last write before the
// callback fires.
const DefaultDebounce = 2 * time.Second

// rotateTimeout bounds how long Run waits for a removed/renamed file to
// reappear before giving up.
const rotateTimeout = 10 * time.Second

// Options configures a Watcher.
type Options struct {
	// FilePath is the console log file to follow.
	FilePath string

	// Debounce overrides DefaultDebounce when positive.
	Debounce time.Duration

	// OnChange receives the file's full contents. An error aborts the
	// watch loop.
	OnChange func(content string) error

	Logger *slog.Logger
}

// Watcher follows one file.
type Watcher struct {
	opts    Options
	watcher *fsnotify.Watcher
}

// New creates a Watcher with the given options.
func New(opts Options) (*Watcher, error) {
	if opts.FilePath == "" {
		return nil, errors.New("file path cannot be empty")
	}
	if opts.OnChange == nil {
		return nil, errors.New("change callback cannot be nil")
	}
	if opts.Debounce <= 0 {
		opts.Debounce = DefaultDebounce
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return &Watcher{opts: opts}, nil
}

// Run fires the callback once for the file's current contents, then
// blocks watching for changes until the context is canceled or the
// callback returns an error.
func (w *Watcher) Run(ctx context.Context) error {
	if err := w.fire(); err != nil {
		return err
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	w.watcher = watcher
	defer watcher.Close()

	if err := watcher.Add(w.opts.FilePath); err != nil {
		return fmt.Errorf("failed to watch %s: %w", w.opts.FilePath, err)
	}

	// The timer idles until the first write event arms it.
	debounce := time.NewTimer(w.opts.Debounce)
	if !debounce.Stop() {
		<-debounce.C
	}
	defer debounce.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case <-debounce.C:
			if err := w.fire(); err != nil {
				return err
			}

		case event, ok := <-watcher.Events:
			if !ok {
				return errors.New("watcher closed unexpectedly")
			}
			switch {
			case event.Op&fsnotify.Write == fsnotify.Write:
				w.opts.Logger.Debug("file changed, debouncing", "file", w.opts.FilePath)
				resetTimer(debounce, w.opts.Debounce)

			case event.Op&fsnotify.Remove == fsnotify.Remove || event.Op&fsnotify.Rename == fsnotify.Rename:
				if err := w.reattach(ctx); err != nil {
					return err
				}
				resetTimer(debounce, w.opts.Debounce)
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return errors.New("watcher error channel closed")
			}
			return fmt.Errorf("watcher error: %w", err)
		}
	}
}

// fire reads the file and invokes the callback.
func (w *Watcher) fire() error {
	content, err := os.ReadFile(w.opts.FilePath)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", w.opts.FilePath, err)
	}
	return w.opts.OnChange(string(content))
}

// reattach waits for a removed or rotated file to reappear and watches
// it again.
func (w *Watcher) reattach(ctx context.Context) error {
	w.opts.Logger.Debug("file removed or renamed, waiting for it to reappear", "file", w.opts.FilePath)

	timeout := time.After(rotateTimeout)
	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-timeout:
			return fmt.Errorf("timeout waiting for %s to reappear", w.opts.FilePath)
		case <-ticker.C:
			if _, err := os.Stat(w.opts.FilePath); err == nil {
				if err := w.watcher.Add(w.opts.FilePath); err != nil {
					return fmt.Errorf("failed to rewatch %s: %w", w.opts.FilePath, err)
				}
				return nil
			}
		}
	}
}

func resetTimer(t *time.Timer, d time.Duration) {
	if !t.Stop() {
		select {
		case <-t.C:
		default:
		}
	}
	t.Reset(d)
}

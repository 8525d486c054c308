// Package watch reports PDF files that appear in a directory.
package watch

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// DefaultQuiet is how long a file must go without writes before it is
// reported.
const DefaultQuiet = 500 * time.Millisecond

// Watcher watches a single directory for new .pdf files.
type Watcher struct {
	dir     string
	quiet   time.Duration
	logger  *zap.Logger
	watcher *fsnotify.Watcher
}

// New starts watching dir. quiet <= 0 uses DefaultQuiet.
func New(dir string, quiet time.Duration, logger *zap.Logger) (*Watcher, error) {
	if quiet <= 0 {
		quiet = DefaultQuiet
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	if err := fw.Add(dir); err != nil {
		fw.Close()
		return nil, fmt.Errorf("watch %s: %w", dir, err)
	}

	return &Watcher{
		dir:     dir,
		quiet:   quiet,
		logger:  logger,
		watcher: fw,
	}, nil
}

// Run calls handle once for every PDF created in (or moved into) the
// directory, after its writes have settled. Files that existed before New
// are never reported, even when modified.
// It blocks until ctx is cancelled or the watcher is closed. handle runs on
// the Run goroutine, so files are handled one at a time.
func (w *Watcher) Run(ctx context.Context, handle func(path string)) error {
	lastWrite := make(map[string]time.Time)
	seen := make(map[string]bool)

	ticker := time.NewTicker(w.quiet / 2)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			if !IsPDF(event.Name) || seen[event.Name] {
				continue
			}
			// Renames into the directory arrive as Create. Writes only
			// extend the quiet period of a file that was created here.
			_, pending := lastWrite[event.Name]
			if !event.Has(fsnotify.Create) && !(pending && event.Has(fsnotify.Write)) {
				continue
			}
			w.logger.Debug("pdf activity", zap.String("path", event.Name), zap.String("op", event.Op.String()))
			lastWrite[event.Name] = time.Now()

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("watch error", zap.String("dir", w.dir), zap.Error(err))

		case now := <-ticker.C:
			for path, t := range lastWrite {
				if now.Sub(t) < w.quiet {
					continue
				}
				delete(lastWrite, path)
				seen[path] = true
				handle(path)
			}
		}
	}
}

// Close stops the watcher.
func (w *Watcher) Close() error {
	return w.watcher.Close()
}

// IsPDF reports whether path has a .pdf extension, ignoring case.
func IsPDF(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".pdf")
}

// Package watch invalidates ingested FAQ markdown when the file changes on
// disk, so the next warm-up re-reads it instead of serving stale sections.
package watch

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/fsnotify/fsnotify"

	"github.com/oswaldlabs/sitechat/internal/core/ports/driving"
	"github.com/oswaldlabs/sitechat/internal/logger"
)

// MarkdownWatcher watches the FAQ markdown file and invalidates the
// coordinator's ingested state when it changes.
type MarkdownWatcher struct {
	path    string
	ingest  driving.IngestionService
	watcher *fsnotify.Watcher
}

// NewMarkdownWatcher creates a watcher for the file at path. The parent
// directory is watched rather than the file itself: editors commonly replace
// the file on save, which would silently drop a direct watch.
func NewMarkdownWatcher(path string, ingest driving.IngestionService) (*MarkdownWatcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		watcher.Close()
		return nil, fmt.Errorf("resolve watch path: %w", err)
	}

	if err := watcher.Add(filepath.Dir(abs)); err != nil {
		watcher.Close()
		return nil, fmt.Errorf("watch %s: %w", filepath.Dir(abs), err)
	}

	return &MarkdownWatcher{
		path:    abs,
		ingest:  ingest,
		watcher: watcher,
	}, nil
}

// Run processes events until ctx is cancelled or the watcher is closed.
func (w *MarkdownWatcher) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handleEvent(event)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			logger.Warn("watch: %v", err)
		}
	}
}

// Close stops the watcher. Run returns once the event channel drains.
func (w *MarkdownWatcher) Close() error {
	return w.watcher.Close()
}

func (w *MarkdownWatcher) handleEvent(event fsnotify.Event) {
	if filepath.Clean(event.Name) != w.path {
		return
	}
	if !event.Op.Has(fsnotify.Write) && !event.Op.Has(fsnotify.Create) && !event.Op.Has(fsnotify.Rename) {
		return
	}

	logger.Debug("watch: %s changed (%s), invalidating faq markdown", w.path, event.Op)
	w.ingest.InvalidateFAQMarkdown()
}

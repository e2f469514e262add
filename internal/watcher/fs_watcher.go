package watcher

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// FSWatcher adapts recursive fsnotify watches into Notifications
type FSWatcher struct {
	roots   []string
	skipDir func(dir string) bool
	watcher *fsnotify.Watcher
	logger  *zap.Logger
}

// NewFSWatcher creates a watcher for the given root directories. Subdirectories for
// which skipDir returns true are not watched; skipDir may be nil.
func NewFSWatcher(roots []string, skipDir func(dir string) bool, logger *zap.Logger) *FSWatcher {
	return &FSWatcher{
		roots:   roots,
		skipDir: skipDir,
		logger:  logger,
	}
}

// Start registers watches on every root and its subdirectories.
// Failing to watch a root is fatal; unreadable subdirectories are skipped.
func (w *FSWatcher) Start() error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create fs watcher: %w", err)
	}
	w.watcher = watcher

	for _, root := range w.roots {
		abs, err := filepath.Abs(root)
		if err != nil {
			watcher.Close()
			return fmt.Errorf("failed to resolve watch root %s: %w", root, err)
		}
		if err := watcher.Add(abs); err != nil {
			watcher.Close()
			return fmt.Errorf("failed to watch %s: %w", abs, err)
		}
		w.addTree(abs, false)
	}

	w.logger.Info("File watcher started",
		zap.Strings("roots", w.roots),
		zap.Int("watched_dirs", len(watcher.WatchList())),
	)
	return nil
}

// addTree watches every directory below dir; dir itself only when includeRoot is set
func (w *FSWatcher) addTree(dir string, includeRoot bool) {
	_ = filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if path == dir && !includeRoot {
			return nil
		}
		if w.skipDir != nil && w.skipDir(path+string(filepath.Separator)) {
			return filepath.SkipDir
		}
		if err := w.watcher.Add(path); err != nil {
			w.logger.Debug("Failed to watch directory", zap.String("dir", path), zap.Error(err))
		}
		return nil
	})
}

// Run delivers notifications to handle until ctx is cancelled or handle fails
func (w *FSWatcher) Run(ctx context.Context, handle func(Notification) error) error {
	if w.watcher == nil {
		return errors.New("fs watcher not started")
	}

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}

			kind := kindOf(event.Op)
			if kind == KindCreate {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					w.addTree(event.Name, true)
				}
			}

			if err := handle(Notification{Kind: kind, Paths: []string{event.Name}}); err != nil {
				return err
			}

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			// overflow and similar errors lose events but do not stop tracking
			w.logger.Warn("File watcher error", zap.Error(err))
		}
	}
}

// Close releases the underlying watches
func (w *FSWatcher) Close() error {
	if w.watcher == nil {
		return nil
	}
	if err := w.watcher.Close(); err != nil {
		return fmt.Errorf("failed to close fs watcher: %w", err)
	}
	return nil
}

func kindOf(op fsnotify.Op) Kind {
	switch {
	case op.Has(fsnotify.Write):
		return KindDataModified
	case op.Has(fsnotify.Create):
		return KindCreate
	case op.Has(fsnotify.Remove):
		return KindRemove
	case op.Has(fsnotify.Rename):
		return KindRename
	case op.Has(fsnotify.Chmod):
		return KindMetadata
	default:
		return KindOther
	}
}

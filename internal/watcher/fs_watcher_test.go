package watcher

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestKindOf(t *testing.T) {
	tests := []struct {
		op   fsnotify.Op
		want Kind
	}{
		{fsnotify.Write, KindDataModified},
		{fsnotify.Create, KindCreate},
		{fsnotify.Create | fsnotify.Write, KindDataModified},
		{fsnotify.Remove, KindRemove},
		{fsnotify.Rename, KindRename},
		{fsnotify.Chmod, KindMetadata},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, kindOf(tt.op), tt.op.String())
	}
}

func TestFSWatcher_DeliversWrites(t *testing.T) {
	root := t.TempDir()
	sub := filepath.Join(root, "src")
	require.NoError(t, os.Mkdir(sub, 0755))
	file := filepath.Join(sub, "main.go")
	require.NoError(t, os.WriteFile(file, []byte("package main\n"), 0644))

	w := NewFSWatcher([]string{root}, nil, zap.NewNop())
	require.NoError(t, w.Start())
	defer w.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	got := make(chan Notification, 16)
	done := make(chan error, 1)
	go func() {
		done <- w.Run(ctx, func(n Notification) error {
			got <- n
			return nil
		})
	}()

	require.NoError(t, os.WriteFile(file, []byte("package main\n\nfunc main() {}\n"), 0644))

	deadline := time.After(5 * time.Second)
	for {
		select {
		case n := <-got:
			if n.Kind == KindDataModified && len(n.Paths) == 1 && filepath.Base(n.Paths[0]) == "main.go" {
				cancel()
				assert.NoError(t, <-done)
				return
			}
		case <-deadline:
			t.Fatal("no data-modified notification for main.go")
		}
	}
}

func TestFSWatcher_SkipsIgnoredDirectories(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "node_modules", "pkg"), 0755))
	require.NoError(t, os.MkdirAll(filepath.Join(root, "src"), 0755))

	d := NewDebouncer(DefaultDebounceWindow, nil, []string{"/node_modules/"})
	w := NewFSWatcher([]string{root}, d.IsIgnored, zap.NewNop())
	require.NoError(t, w.Start())
	defer w.Close()

	for _, watched := range w.watcher.WatchList() {
		assert.NotContains(t, filepath.ToSlash(watched), "/node_modules")
	}
	assert.Contains(t, w.watcher.WatchList(), filepath.Join(root, "src"))
}

func TestFSWatcher_StartFailsForMissingRoot(t *testing.T) {
	w := NewFSWatcher([]string{filepath.Join(t.TempDir(), "missing")}, nil, zap.NewNop())
	assert.Error(t, w.Start())
}

func TestFSWatcher_RunBeforeStart(t *testing.T) {
	w := NewFSWatcher([]string{"."}, nil, zap.NewNop())
	assert.Error(t, w.Run(context.Background(), func(Notification) error { return nil }))
}

package file

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigStore_WatchReloadsOnEdit(t *testing.T) {
	store := newTestStore(t)
	require.NoError(t, store.Set("watch.probe_interval", "15s"))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	changed := make(chan struct{}, 8)
	done := make(chan error, 1)
	go func() {
		done <- store.Watch(ctx, func() {
			select {
			case changed <- struct{}{}:
			default:
			}
		})
	}()

	// Keep rewriting until the watcher, which starts asynchronously, has
	// loaded a complete copy of the file.
	edit := []byte("[watch]\nprobe_interval = \"5s\"\n")
	require.Eventually(t, func() bool {
		_ = os.WriteFile(store.Path(), edit, 0600)
		time.Sleep(20 * time.Millisecond)
		return store.GetString("watch.probe_interval") == "5s"
	}, 5*time.Second, 10*time.Millisecond)
	assert.NotEmpty(t, changed)

	cancel()
	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("Watch did not return after cancel")
	}
}

func TestConfigStore_WatchMissingDirectory(t *testing.T) {
	store := newTestStore(t)
	require.NoError(t, os.RemoveAll(filepath.Dir(store.Path())))

	err := store.Watch(context.Background(), nil)
	assert.Error(t, err)
}

func TestConfigStore_IsReload(t *testing.T) {
	store := newTestStore(t)
	other := filepath.Join(filepath.Dir(store.Path()), "other.toml")

	tests := []struct {
		name  string
		event fsnotify.Event
		want  bool
	}{
		{"write", fsnotify.Event{Name: store.Path(), Op: fsnotify.Write}, true},
		{"create", fsnotify.Event{Name: store.Path(), Op: fsnotify.Create}, true},
		{"chmod", fsnotify.Event{Name: store.Path(), Op: fsnotify.Chmod}, false},
		{"remove", fsnotify.Event{Name: store.Path(), Op: fsnotify.Remove}, false},
		{"rename away", fsnotify.Event{Name: store.Path(), Op: fsnotify.Rename}, false},
		{"other file", fsnotify.Event{Name: other, Op: fsnotify.Write}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, store.isReload(tt.event))
		})
	}
}

package watcher

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fredcamaral/slidemark/internal/domain/entities"
	"github.com/fredcamaral/slidemark/internal/domain/ports"
)

func newNotifyWatcher(t *testing.T, debounce time.Duration) *NotifyWatcher {
	t.Helper()
	w, err := NewNotifyWatcher(debounce, nil)
	if err != nil {
		t.Skipf("file notifications unavailable: %v", err)
	}
	t.Cleanup(func() { _ = w.Stop() })
	return w
}

func TestNotifyWatcher(t *testing.T) {
	t.Run("write is reported as modified", func(t *testing.T) {
		w := newNotifyWatcher(t, 50*time.Millisecond)
		tmpFile := createTempFile(t, "initial")

		events, err := w.Watch(context.Background(), tmpFile)
		require.NoError(t, err)

		updateFile(t, tmpFile, "changed")

		event := waitEvent(t, events, 2*time.Second)
		assert.Equal(t, tmpFile, event.Path)
		assert.Equal(t, ports.Modified, event.Type)
	})

	t.Run("atomic save by rename is a modification", func(t *testing.T) {
		w := newNotifyWatcher(t, 100*time.Millisecond)
		tmpFile := createTempFile(t, "initial")

		events, err := w.Watch(context.Background(), tmpFile)
		require.NoError(t, err)

		staged := filepath.Join(filepath.Dir(tmpFile), ".deck.md.swp")
		require.NoError(t, os.WriteFile(staged, []byte("saved by an editor"), 0644))
		require.NoError(t, os.Remove(tmpFile))
		require.NoError(t, os.Rename(staged, tmpFile))

		event := waitEvent(t, events, 2*time.Second)
		assert.Equal(t, tmpFile, event.Path)
		assert.Equal(t, ports.Modified, event.Type)
	})

	t.Run("burst of writes yields one event", func(t *testing.T) {
		w := newNotifyWatcher(t, 150*time.Millisecond)
		tmpFile := createTempFile(t, "initial")

		events, err := w.Watch(context.Background(), tmpFile)
		require.NoError(t, err)

		for i := 0; i < 5; i++ {
			updateFile(t, tmpFile, fmt.Sprintf("change %d", i))
			time.Sleep(10 * time.Millisecond)
		}

		waitEvent(t, events, 2*time.Second)

		select {
		case <-events:
			t.Fatal("got unexpected second event")
		case <-time.After(300 * time.Millisecond):
		}
	})

	t.Run("siblings in the directory are ignored", func(t *testing.T) {
		w := newNotifyWatcher(t, 20*time.Millisecond)
		tmpFile := createTempFile(t, "initial")

		events, err := w.Watch(context.Background(), tmpFile)
		require.NoError(t, err)

		sibling := filepath.Join(filepath.Dir(tmpFile), "other.md")
		require.NoError(t, os.WriteFile(sibling, []byte("unrelated"), 0644))

		select {
		case event := <-events:
			t.Fatalf("unexpected event for %s", event.Path)
		case <-time.After(200 * time.Millisecond):
		}
	})

	t.Run("deletion", func(t *testing.T) {
		w := newNotifyWatcher(t, 20*time.Millisecond)
		tmpFile := createTempFile(t, "initial")

		events, err := w.Watch(context.Background(), tmpFile)
		require.NoError(t, err)

		require.NoError(t, os.Remove(tmpFile))
		assert.Equal(t, ports.Deleted, waitEvent(t, events, 2*time.Second).Type)
	})

	t.Run("missing file", func(t *testing.T) {
		w := newNotifyWatcher(t, 20*time.Millisecond)

		_, err := w.Watch(context.Background(), filepath.Join(t.TempDir(), "missing.md"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "initial scan")
	})

	t.Run("stop closes the channel", func(t *testing.T) {
		w := newNotifyWatcher(t, 20*time.Millisecond)
		tmpFile := createTempFile(t, "initial")

		events, err := w.Watch(context.Background(), tmpFile)
		require.NoError(t, err)

		require.NoError(t, w.Stop())
		_, ok := <-events
		assert.False(t, ok)
		assert.NoError(t, w.Stop())

		_, err = w.Watch(context.Background(), tmpFile)
		assert.ErrorIs(t, err, ErrWatcherStopped)
	})
}

func TestChangeTypeOf(t *testing.T) {
	tests := []struct {
		op       fsnotify.Op
		expected ports.ChangeType
		ok       bool
	}{
		{fsnotify.Create, ports.Created, true},
		{fsnotify.Write, ports.Modified, true},
		{fsnotify.Remove, ports.Deleted, true},
		{fsnotify.Rename, ports.Renamed, true},
		{fsnotify.Chmod, 0, false},
		{fsnotify.Create | fsnotify.Write, ports.Created, true},
	}

	for _, tt := range tests {
		t.Run(tt.op.String(), func(t *testing.T) {
			got, ok := changeTypeOf(tt.op)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestCoalesce(t *testing.T) {
	event := func(c ports.ChangeType) *ports.FileChangeEvent {
		return &ports.FileChangeEvent{Type: c}
	}

	tests := []struct {
		name     string
		pending  *ports.FileChangeEvent
		next     ports.ChangeType
		expected ports.ChangeType
	}{
		{"first event", nil, ports.Modified, ports.Modified},
		{"remove then create", event(ports.Deleted), ports.Created, ports.Modified},
		{"rename then create", event(ports.Renamed), ports.Created, ports.Modified},
		{"create then write", event(ports.Created), ports.Modified, ports.Created},
		{"write then remove", event(ports.Modified), ports.Deleted, ports.Deleted},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, coalesce(tt.pending, tt.next))
		})
	}
}

func TestNew(t *testing.T) {
	w := New(entities.WatcherConfig{IntervalMs: 100, DebounceMs: 50}, nil)
	require.NotNil(t, w)
	defer func() { _ = w.Stop() }()

	switch impl := w.(type) {
	case *NotifyWatcher:
		assert.Equal(t, 50*time.Millisecond, impl.debounce)
	case *PollingWatcher:
		assert.Equal(t, 100*time.Millisecond, impl.interval)
	default:
		t.Fatalf("unexpected watcher type %T", w)
	}
}

package ports

import (
	"context"
	"time"
)

// FileWatcher reports changes to the deck being previewed. Implementations
// debounce bursts so one save produces one event.
type FileWatcher interface {
	Watch(ctx context.Context, path string) (<-chan FileChangeEvent, error)
	Stop() error
}

// FileChangeEvent is one debounced change to the watched deck
type FileChangeEvent struct {
	Path      string
	Type      ChangeType
	Timestamp time.Time
}

// ChangeType classifies a change to the watched deck
type ChangeType int

const (
	Modified ChangeType = iota
	Created
	Deleted
	// Renamed is reported when the deck is moved away; editors that save
	// by rename follow it with Created
	Renamed
)

// Then folds the next change of a burst into c. A removal followed by a
// creation is a save, and writes right after a creation keep it a creation.
func (c ChangeType) Then(next ChangeType) ChangeType {
	switch {
	case next == Created && (c == Deleted || c == Renamed):
		return Modified
	case next == Modified && c == Created:
		return Created
	default:
		return next
	}
}

// Reloads reports whether the change leaves a deck on disk to re-parse
func (c ChangeType) Reloads() bool {
	return c != Deleted && c != Renamed
}

func (c ChangeType) String() string {
	switch c {
	case Modified:
		return "modified"
	case Created:
		return "created"
	case Deleted:
		return "deleted"
	case Renamed:
		return "renamed"
	default:
		return "unknown"
	}
}

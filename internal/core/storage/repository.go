package storage

import (
	"context"
	"errors"

	v1 "github.com/aevon-lab/folio-analytics/internal/api/v1"
)

// ErrNotFound is returned when a slot has never been written.
var ErrNotFound = errors.New("slot not found")

// Document is the persisted shape of a slot: the event log and the sessions it belongs to.
type Document struct {
	Events   []v1.Event   `json:"events"`
	Sessions []v1.Session `json:"sessions"`
}

// Empty reports whether the document holds nothing.
func (d Document) Empty() bool {
	return len(d.Events) == 0 && len(d.Sessions) == 0
}

// Merge concatenates other onto d. No deduplication is performed.
func (d Document) Merge(other Document) Document {
	return Document{
		Events:   append(append([]v1.Event{}, d.Events...), other.Events...),
		Sessions: append(append([]v1.Session{}, d.Sessions...), other.Sessions...),
	}
}

// SnapshotStore persists documents into named slots.
// Save replaces the previous document of the slot (last write wins).
type SnapshotStore interface {
	Save(ctx context.Context, slot string, doc Document) error

	// Load returns ErrNotFound if the slot has never been written.
	Load(ctx context.Context, slot string) (Document, error)

	// Slots lists every slot name currently stored.
	Slots(ctx context.Context) ([]string, error)

	Close() error
}

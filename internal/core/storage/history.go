package storage

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
)

// LoadAll concatenates the documents of every slot, in slot-name order.
// Slots that fail to load are logged and skipped; only a failure to list
// slots is returned.
func LoadAll(ctx context.Context, store SnapshotStore) (Document, error) {
	slots, err := store.Slots(ctx)
	if err != nil {
		return Document{}, fmt.Errorf("list slots: %w", err)
	}

	var merged Document
	for _, slot := range slots {
		doc, err := store.Load(ctx, slot)
		if errors.Is(err, ErrNotFound) {
			continue
		}
		if err != nil {
			slog.Warn("[Storage] Skipping unreadable slot", "slot", slot, "error", err)
			continue
		}
		merged = merged.Merge(doc)
	}
	return merged, nil
}

// Package file stores persisted slots as JSON documents in a directory,
// one file per slot.
package file

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/aevon-lab/folio-analytics/internal/core/storage"
)

const ext = ".json"

// Store implements storage.SnapshotStore on the local filesystem.
// Writes go to a temp file that is renamed over the slot, so a reader never
// observes a half-written document.
type Store struct {
	dir string
}

// NewStore creates the directory if needed.
func NewStore(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create slot dir %q: %w", dir, err)
	}
	return &Store{dir: dir}, nil
}

func (s *Store) path(slot string) string {
	return filepath.Join(s.dir, url.PathEscape(slot)+ext)
}

func (s *Store) Save(ctx context.Context, slot string, doc storage.Document) error {
	data, err := storage.Encode(doc)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(s.dir, ".slot-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write slot %q: %w", slot, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close slot %q: %w", slot, err)
	}
	if err := os.Rename(tmpName, s.path(slot)); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("replace slot %q: %w", slot, err)
	}
	return nil
}

func (s *Store) Load(ctx context.Context, slot string) (storage.Document, error) {
	data, err := os.ReadFile(s.path(slot))
	if errors.Is(err, fs.ErrNotExist) {
		return storage.Document{}, storage.ErrNotFound
	}
	if err != nil {
		return storage.Document{}, fmt.Errorf("read slot %q: %w", slot, err)
	}
	return storage.Decode(data)
}

func (s *Store) Slots(ctx context.Context) ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("read slot dir: %w", err)
	}

	var slots []string
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, ext) {
			continue
		}
		slot, err := url.PathUnescape(strings.TrimSuffix(name, ext))
		if err != nil {
			continue
		}
		slots = append(slots, slot)
	}
	sort.Strings(slots)
	return slots, nil
}

func (s *Store) Close() error {
	return nil
}

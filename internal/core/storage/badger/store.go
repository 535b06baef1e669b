// Package badger keeps persisted slots in an embedded BadgerDB key-value store.
package badger

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/aevon-lab/folio-analytics/internal/core/storage"
	"github.com/dgraph-io/badger/v4"
)

const slotKeyPrefix = "slot:"

// Store implements storage.SnapshotStore on BadgerDB.
type Store struct {
	db *badger.DB
}

// Open opens (or creates) a database at dir. An empty dir runs in memory.
func Open(dir string) (*Store, error) {
	opts := badger.DefaultOptions(dir).WithLogger(nil)
	if dir == "" {
		opts = opts.WithInMemory(true)
	}

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger at %q: %w", dir, err)
	}
	return NewStore(db), nil
}

// NewStore wraps an already open database. Close closes it.
func NewStore(db *badger.DB) *Store {
	return &Store{db: db}
}

func (s *Store) Save(ctx context.Context, slot string, doc storage.Document) error {
	data, err := storage.Encode(doc)
	if err != nil {
		return err
	}

	return s.db.Update(func(txn *badger.Txn) error {
		if err := txn.Set([]byte(slotKeyPrefix+slot), data); err != nil {
			return fmt.Errorf("set slot %q: %w", slot, err)
		}
		return nil
	})
}

func (s *Store) Load(ctx context.Context, slot string) (storage.Document, error) {
	var doc storage.Document

	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(slotKeyPrefix + slot))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return storage.ErrNotFound
		}
		if err != nil {
			return fmt.Errorf("get slot %q: %w", slot, err)
		}

		return item.Value(func(val []byte) error {
			decoded, err := storage.Decode(val)
			if err != nil {
				return err
			}
			doc = decoded
			return nil
		})
	})
	if err != nil {
		return storage.Document{}, err
	}
	return doc, nil
}

func (s *Store) Slots(ctx context.Context) ([]string, error) {
	var slots []string

	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		opts.Prefix = []byte(slotKeyPrefix)

		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			key := string(it.Item().Key())
			slots = append(slots, strings.TrimPrefix(key, slotKeyPrefix))
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list slots: %w", err)
	}

	sort.Strings(slots)
	return slots, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

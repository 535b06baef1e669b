// Package redis keeps persisted slots as Redis string keys.
package redis

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/aevon-lab/folio-analytics/internal/core/storage"
	"github.com/go-redis/redis/v8"
)

const (
	defaultKeyPrefix = "folio:slot:"
	scanBatch        = 200
)

// Store implements storage.SnapshotStore on Redis.
type Store struct {
	client    *redis.Client
	keyPrefix string
}

// NewStore wraps a client. An empty prefix uses "folio:slot:".
func NewStore(client *redis.Client, keyPrefix string) *Store {
	if keyPrefix == "" {
		keyPrefix = defaultKeyPrefix
	}
	return &Store{client: client, keyPrefix: keyPrefix}
}

func (s *Store) Save(ctx context.Context, slot string, doc storage.Document) error {
	data, err := storage.Encode(doc)
	if err != nil {
		return err
	}
	if err := s.client.Set(ctx, s.keyPrefix+slot, data, 0).Err(); err != nil {
		return fmt.Errorf("set slot %q: %w", slot, err)
	}
	return nil
}

func (s *Store) Load(ctx context.Context, slot string) (storage.Document, error) {
	data, err := s.client.Get(ctx, s.keyPrefix+slot).Bytes()
	if errors.Is(err, redis.Nil) {
		return storage.Document{}, storage.ErrNotFound
	}
	if err != nil {
		return storage.Document{}, fmt.Errorf("get slot %q: %w", slot, err)
	}
	return storage.Decode(data)
}

func (s *Store) Slots(ctx context.Context) ([]string, error) {
	seen := make(map[string]struct{})
	var cursor uint64

	for {
		keys, next, err := s.client.Scan(ctx, cursor, s.keyPrefix+"*", scanBatch).Result()
		if err != nil {
			return nil, fmt.Errorf("scan slots: %w", err)
		}
		for _, key := range keys {
			seen[strings.TrimPrefix(key, s.keyPrefix)] = struct{}{}
		}
		if next == 0 {
			break
		}
		cursor = next
	}

	slots := make([]string, 0, len(seen))
	for slot := range seen {
		slots = append(slots, slot)
	}
	sort.Strings(slots)
	return slots, nil
}

// Ping reports whether Redis is reachable.
func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

func (s *Store) Close() error {
	return s.client.Close()
}

package scheduler

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type countingTarget struct {
	mu        sync.Mutex
	flushes   int
	refreshes int
	prunes    []time.Duration
	failed    int
}

func (c *countingTarget) FlushAll(ctx context.Context) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.flushes++
	return c.failed
}

func (c *countingTarget) RefreshAll() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.refreshes++
}

func (c *countingTarget) Prune(retention time.Duration) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.prunes = append(c.prunes, retention)
	return 0
}

func (c *countingTarget) counts() (int, int, int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.flushes, c.refreshes, len(c.prunes)
}

func TestScheduler_TicksAndFinalFlush(t *testing.T) {
	target := &countingTarget{failed: 1}
	s := New(target, Config{
		FlushInterval:   5 * time.Millisecond,
		RefreshInterval: 5 * time.Millisecond,
		PruneInterval:   5 * time.Millisecond,
		Retention:       time.Hour,
	})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Start(ctx) }()

	require.Eventually(t, func() bool {
		f, r, p := target.counts()
		return f >= 2 && r >= 2 && p >= 1
	}, time.Second, time.Millisecond)

	cancel()
	require.NoError(t, <-done)

	target.mu.Lock()
	defer target.mu.Unlock()
	require.Equal(t, time.Hour, target.prunes[0])
}

func TestScheduler_FinalFlushOnCancel(t *testing.T) {
	target := &countingTarget{}
	s := New(target, Config{FlushInterval: time.Hour})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.NoError(t, s.Start(ctx))

	f, r, p := target.counts()
	require.Equal(t, 1, f)
	require.Equal(t, 1, r)
	require.Zero(t, p)
}

func TestScheduler_PruneDisabledWithoutRetention(t *testing.T) {
	target := &countingTarget{}
	s := New(target, Config{PruneInterval: time.Millisecond})

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	require.NoError(t, s.Start(ctx))

	_, _, p := target.counts()
	require.Zero(t, p)
}

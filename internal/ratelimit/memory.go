package ratelimit

import (
	"context"
	"sync"
	"time"
)

// MemoryLimiter is a sliding window limiter backed by a process-local map.
// Suitable for a single instance; a shared deployment would need a
// Redis-backed implementation behind the same interface.
type MemoryLimiter struct {
	cfg Config

	mu      sync.Mutex
	buckets map[string]*bucket

	stop     chan struct{}
	stopOnce sync.Once
	done     sync.WaitGroup
}

// bucket records the request times for one identifier, oldest first.
type bucket struct {
	hits []time.Time
}

// prune drops hits that fell out of the window.
func (b *bucket) prune(cutoff time.Time) {
	i := 0
	for i < len(b.hits) && !b.hits[i].After(cutoff) {
		i++
	}
	if i > 0 {
		b.hits = append(b.hits[:0], b.hits[i:]...)
	}
}

// NewMemoryLimiter creates a MemoryLimiter and starts its janitor goroutine.
func NewMemoryLimiter(cfg Config) *MemoryLimiter {
	m := &MemoryLimiter{
		cfg:     cfg,
		buckets: make(map[string]*bucket),
		stop:    make(chan struct{}),
	}

	m.done.Add(1)
	go m.janitor()

	return m
}

// Allow records a request for identifier if it fits in the window.
func (m *MemoryLimiter) Allow(ctx context.Context, identifier string) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	now := time.Now()

	m.mu.Lock()
	defer m.mu.Unlock()

	b, ok := m.buckets[identifier]
	if !ok {
		b = &bucket{hits: make([]time.Time, 0, m.cfg.Requests)}
		m.buckets[identifier] = b
	}

	b.prune(now.Add(-m.cfg.Window))

	var resetAfter time.Duration
	if len(b.hits) > 0 {
		resetAfter = b.hits[0].Add(m.cfg.Window).Sub(now)
		if resetAfter < 0 {
			resetAfter = 0
		}
	}

	if len(b.hits) >= m.cfg.Requests {
		return &Result{
			Allowed:    false,
			Remaining:  0,
			ResetAfter: resetAfter,
			RetryAfter: resetAfter,
			Limit:      m.cfg.Requests,
		}, nil
	}

	b.hits = append(b.hits, now)

	return &Result{
		Allowed:    true,
		Remaining:  m.cfg.Requests - len(b.hits),
		ResetAfter: resetAfter,
		Limit:      m.cfg.Requests,
	}, nil
}

// Reset clears the recorded requests for an identifier.
func (m *MemoryLimiter) Reset(ctx context.Context, identifier string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	m.mu.Lock()
	delete(m.buckets, identifier)
	m.mu.Unlock()
	return nil
}

// Close stops the janitor goroutine. Safe to call more than once.
func (m *MemoryLimiter) Close() error {
	m.stopOnce.Do(func() { close(m.stop) })
	m.done.Wait()
	return nil
}

// janitor periodically drops buckets whose every hit has expired, so idle
// identifiers do not accumulate.
func (m *MemoryLimiter) janitor() {
	defer m.done.Done()

	ticker := time.NewTicker(m.cfg.Window)
	defer ticker.Stop()

	for {
		select {
		case <-m.stop:
			return
		case now := <-ticker.C:
			cutoff := now.Add(-m.cfg.Window)
			m.mu.Lock()
			for id, b := range m.buckets {
				b.prune(cutoff)
				if len(b.hits) == 0 {
					delete(m.buckets, id)
				}
			}
			m.mu.Unlock()
		}
	}
}

// Package ratelimit implements a per-key sliding window limiter used at the
// API boundary. The core never depends on it directly.
package ratelimit

import (
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
)

// Limiter answers whether a request identified by key may proceed.
type Limiter interface {
	Allow(key string) bool
}

// maxTrackedKeys caps per-key state so hostile clients cannot grow memory
// without bound. Evicted keys simply restart with an empty window.
const maxTrackedKeys = 1024

// SlidingWindow allows at most limit events per key within the window.
type SlidingWindow struct {
	mu     sync.Mutex
	limit  int
	window time.Duration
	keys   *lru.Cache[string, []time.Time]
	now    func() time.Time
}

// NewSlidingWindow creates a limiter allowing limit events per window per key.
// A limit <= 0 disables limiting (Allow always returns true).
func NewSlidingWindow(limit int, window time.Duration) *SlidingWindow {
	cache, _ := lru.New[string, []time.Time](maxTrackedKeys)
	return &SlidingWindow{
		limit:  limit,
		window: window,
		keys:   cache,
		now:    time.Now,
	}
}

// Allow records one event for key and reports whether it is within the limit.
func (s *SlidingWindow) Allow(key string) bool {
	if s.limit <= 0 {
		return true
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	cutoff := now.Add(-s.window)

	stamps, _ := s.keys.Get(key)
	kept := stamps[:0]
	for _, ts := range stamps {
		if ts.After(cutoff) {
			kept = append(kept, ts)
		}
	}

	if len(kept) >= s.limit {
		s.keys.Add(key, kept)
		return false
	}

	kept = append(kept, now)
	s.keys.Add(key, kept)
	return true
}

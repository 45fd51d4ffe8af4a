// Package ratewindow counts recent events per guild member over a sliding
// window. State is in memory only and is lost on restart.
package ratewindow

import (
	"sync"
	"time"

	"github.com/puzpuzpuz/xsync/v3"

	"github.com/wardenbot/warden/internal/domain/models"
)

type bucket struct {
	mu    sync.Mutex
	times []time.Time
	// dead is set when Sweep drops the bucket; holders must fetch a new one.
	dead bool
}

type Windows struct {
	buckets *xsync.MapOf[models.UserKey, *bucket]
}

func New() *Windows {
	return &Windows{
		buckets: xsync.NewMapOf[models.UserKey, *bucket](),
	}
}

func (w *Windows) acquire(key models.UserKey) *bucket {
	for {
		b, _ := w.buckets.LoadOrCompute(key, func() *bucket {
			return &bucket{}
		})
		b.mu.Lock()
		if !b.dead {
			return b
		}
		b.mu.Unlock()
	}
}

// RecordAndCheck appends now, evicts timestamps at or before now-window and
// reports whether the remaining count reached threshold.
func (w *Windows) RecordAndCheck(key models.UserKey, now time.Time, threshold int, window time.Duration) bool {
	b := w.acquire(key)
	defer b.mu.Unlock()

	b.times = append(b.times, now)
	b.times = evict(b.times, now.Add(-window))
	return len(b.times) >= threshold
}

// Trip is RecordAndCheck that also clears the bucket when the threshold is
// reached, under the same lock. Concurrent callers for one key see at most
// one trip per threshold samples.
func (w *Windows) Trip(key models.UserKey, now time.Time, threshold int, window time.Duration) bool {
	b := w.acquire(key)
	defer b.mu.Unlock()

	b.times = append(b.times, now)
	b.times = evict(b.times, now.Add(-window))
	if len(b.times) < threshold {
		return false
	}
	b.times = nil
	return true
}

// Count is the number of samples currently inside the window.
func (w *Windows) Count(key models.UserKey, now time.Time, window time.Duration) int {
	b, ok := w.buckets.Load(key)
	if !ok {
		return 0
	}
	b.mu.Lock()
	defer b.mu.Unlock()

	cutoff := now.Add(-window)
	n := 0
	for _, t := range b.times {
		if t.After(cutoff) {
			n++
		}
	}
	return n
}

func (w *Windows) Reset(key models.UserKey) {
	b, ok := w.buckets.Load(key)
	if !ok {
		return
	}
	b.mu.Lock()
	b.times = nil
	b.mu.Unlock()
}

// Sweep drops samples older than maxWindow and forgets idle members. It
// returns the number of buckets removed.
func (w *Windows) Sweep(now time.Time, maxWindow time.Duration) int {
	cutoff := now.Add(-maxWindow)
	removed := 0
	w.buckets.Range(func(key models.UserKey, b *bucket) bool {
		b.mu.Lock()
		b.times = evict(b.times, cutoff)
		if len(b.times) == 0 && !b.dead {
			b.dead = true
			w.buckets.Delete(key)
			removed++
		}
		b.mu.Unlock()
		return true
	})
	return removed
}

func (w *Windows) Len() int {
	return w.buckets.Size()
}

func evict(times []time.Time, cutoff time.Time) []time.Time {
	kept := times[:0]
	for _, t := range times {
		if t.After(cutoff) {
			kept = append(kept, t)
		}
	}
	return kept
}

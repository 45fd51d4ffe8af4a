package ratewindow

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/wardenbot/warden/internal/domain/models"
)

var (
	base = time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	key  = models.UserKey{GuildID: 1, UserID: 2}
)

func TestWindows_RecordAndCheck(t *testing.T) {
	tests := []struct {
		name      string
		offsets   []time.Duration
		threshold int
		window    time.Duration
		want      []bool
	}{
		{
			name:      "five in burst trips on fifth",
			offsets:   []time.Duration{0, time.Second, 2 * time.Second, 3 * time.Second, 4 * time.Second},
			threshold: 5,
			window:    7 * time.Second,
			want:      []bool{false, false, false, false, true},
		},
		{
			name:      "boundary sample is evicted",
			offsets:   []time.Duration{0, 7 * time.Second},
			threshold: 2,
			window:    7 * time.Second,
			want:      []bool{false, false},
		},
		{
			name:      "just inside the window counts",
			offsets:   []time.Duration{0, 7*time.Second - time.Millisecond},
			threshold: 2,
			window:    7 * time.Second,
			want:      []bool{false, true},
		},
		{
			name:      "spread out never trips",
			offsets:   []time.Duration{0, 4 * time.Second, 8 * time.Second, 12 * time.Second},
			threshold: 3,
			window:    7 * time.Second,
			want:      []bool{false, false, false, false},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := New()
			for i, off := range tt.offsets {
				got := w.RecordAndCheck(key, base.Add(off), tt.threshold, tt.window)
				assert.Equal(t, tt.want[i], got, "sample %d", i)
			}
		})
	}
}

func TestWindows_KeysAreIndependent(t *testing.T) {
	w := New()
	other := models.UserKey{GuildID: 1, UserID: 3}

	assert.False(t, w.RecordAndCheck(key, base, 2, time.Minute))
	assert.False(t, w.RecordAndCheck(other, base, 2, time.Minute))
	assert.True(t, w.RecordAndCheck(key, base.Add(time.Second), 2, time.Minute))
}

func TestWindows_Reset(t *testing.T) {
	w := New()
	w.RecordAndCheck(key, base, 3, time.Minute)
	w.RecordAndCheck(key, base, 3, time.Minute)
	w.Reset(key)

	assert.Zero(t, w.Count(key, base, time.Minute))
	assert.False(t, w.RecordAndCheck(key, base, 2, time.Minute))

	w.Reset(models.UserKey{GuildID: 9, UserID: 9})
}

func TestWindows_Sweep(t *testing.T) {
	w := New()
	idle := models.UserKey{GuildID: 1, UserID: 4}

	w.RecordAndCheck(idle, base, 5, time.Minute)
	w.RecordAndCheck(key, base.Add(time.Minute), 5, time.Minute)

	removed := w.Sweep(base.Add(90*time.Second), time.Minute)
	assert.Equal(t, 1, removed)
	assert.Equal(t, 1, w.Len())
	assert.Equal(t, 1, w.Count(key, base.Add(90*time.Second), time.Minute))

	// a swept key starts over cleanly
	assert.False(t, w.RecordAndCheck(idle, base.Add(91*time.Second), 2, time.Minute))
}

func TestWindows_Concurrent(t *testing.T) {
	w := New()
	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			w.RecordAndCheck(key, base, 1000, time.Minute)
		}()
	}
	wg.Wait()
	assert.Equal(t, 100, w.Count(key, base, time.Minute))
}

func TestWindows_TripClearsBucket(t *testing.T) {
	w := New()
	assert.False(t, w.Trip(key, base, 2, time.Minute))
	assert.True(t, w.Trip(key, base.Add(time.Second), 2, time.Minute))
	assert.Zero(t, w.Count(key, base.Add(time.Second), time.Minute))
	assert.False(t, w.Trip(key, base.Add(2*time.Second), 2, time.Minute), "a trip starts a fresh window")
}

func TestWindows_ConcurrentTrips(t *testing.T) {
	const (
		senders   = 90
		threshold = 3
	)
	w := New()
	var (
		wg    sync.WaitGroup
		trips atomic.Int32
	)
	for i := 0; i < senders; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if w.Trip(key, base, threshold, time.Minute) {
				trips.Add(1)
			}
		}()
	}
	wg.Wait()
	// every sample lands in exactly one cleared bucket
	assert.Equal(t, int32(senders/threshold), trips.Load())
	assert.Zero(t, w.Count(key, base, time.Minute))
}

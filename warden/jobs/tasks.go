package jobs

import (
	"context"
	"time"

	"github.com/wardenbot/warden/internal/clock"
	"github.com/wardenbot/warden/internal/domain/engine"
)

// EventHandler is satisfied by the gateway: the tick's actions go through
// the same dispatch path as gateway events.
type EventHandler interface {
	Handle(ctx context.Context, ev engine.Event)
}

// Flusher is satisfied by store.Store.
type Flusher interface {
	Flush(ctx context.Context) error
	Pending() int
}

// Gauges receives queue sizes after each flush.
type Gauges interface {
	SetPending(reminders int, records int)
}

// ReminderTick delivers due reminders and sweeps idle rate windows.
func ReminderTick(spec string, c clock.Clock, h EventHandler) Job {
	return Job{
		Name:    "reminders",
		Spec:    spec,
		Timeout: 10 * time.Second,
		Run: func(ctx context.Context) error {
			h.Handle(ctx, engine.TimerTick{Now: c.Now()})
			return nil
		},
	}
}

// Flush retries writes that failed earlier.
func Flush(spec string, f Flusher, reminders func() int, g Gauges) Job {
	return Job{
		Name:    "flush",
		Spec:    spec,
		Timeout: 30 * time.Second,
		Run: func(ctx context.Context) error {
			err := f.Flush(ctx)
			if g != nil {
				g.SetPending(reminders(), f.Pending())
			}
			return err
		},
	}
}

func Presence(spec string, update func(ctx context.Context) error) Job {
	return Job{Name: "presence", Spec: spec, Timeout: 10 * time.Second, Run: update}
}

func Backup(spec string, run func(ctx context.Context) error) Job {
	return Job{Name: "backup", Spec: spec, Timeout: 5 * time.Minute, Run: run}
}

package handlers

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/disgoorg/snowflake/v2"
	"golang.org/x/sync/errgroup"

	"github.com/wardenbot/warden/internal/domain/actions"
	"github.com/wardenbot/warden/internal/domain/models"
	"github.com/wardenbot/warden/internal/domain/tickets"
	"github.com/wardenbot/warden/warden/utils"
)

const (
	DefaultWorkers    = 4
	DefaultQueueSize  = 256
	DefaultActionWait = 10 * time.Second
)

var ErrDispatcherClosed = errors.New("dispatcher is closed")

// TicketCallbacks receives the outcome of CreateChannel actions.
type TicketCallbacks interface {
	AttachChannel(ctx context.Context, ticketID string, channelID snowflake.ID) (models.Ticket, error)
	Abandon(ctx context.Context, ticketID string) error
}

// StarCallbacks lets a failed board post be retried on the next reaction.
type StarCallbacks interface {
	Forget(messageID snowflake.ID)
}

type DispatcherConfig struct {
	Executor  Executor
	Tickets   TicketCallbacks
	Starboard StarCallbacks
	// OnFailure is called for every action that could not be executed.
	OnFailure func(f *actions.Failure)
	Workers   int
	QueueSize int
	// ActionTimeout bounds a single platform call.
	ActionTimeout time.Duration
}

// Dispatcher executes engine actions off the gateway event loop. Actions of
// one batch run in order; batches run concurrently on a bounded pool.
type Dispatcher struct {
	cfg   DispatcherConfig
	queue chan []actions.Action
	procs *utils.Processes
	group errgroup.Group

	mu     sync.RWMutex
	closed bool
}

func NewDispatcher(cfg DispatcherConfig) *Dispatcher {
	if cfg.Workers <= 0 {
		cfg.Workers = DefaultWorkers
	}
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = DefaultQueueSize
	}
	if cfg.ActionTimeout <= 0 {
		cfg.ActionTimeout = DefaultActionWait
	}
	if cfg.OnFailure == nil {
		cfg.OnFailure = LogFailure
	}

	d := &Dispatcher{
		cfg:   cfg,
		queue: make(chan []actions.Action, cfg.QueueSize),
		procs: utils.NewProcesses(context.Background()),
	}
	d.group.SetLimit(cfg.Workers)
	d.procs.Start("dispatcher", d.pump)
	return d
}

// Dispatch queues a batch. It blocks only while the queue is full.
func (d *Dispatcher) Dispatch(ctx context.Context, batch []actions.Action) error {
	if len(batch) == 0 {
		return nil
	}

	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.closed {
		return ErrDispatcherClosed
	}

	select {
	case d.queue <- batch:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (d *Dispatcher) pump(context.Context) {
	for batch := range d.queue {
		d.group.Go(func() error {
			d.run(batch)
			return nil
		})
	}
	_ = d.group.Wait()
}

func (d *Dispatcher) run(batch []actions.Action) {
	for _, a := range batch {
		d.execute(a)
	}
}

func (d *Dispatcher) execute(a actions.Action) {
	ctx, cancel := context.WithTimeout(context.Background(), d.cfg.ActionTimeout)
	defer cancel()

	if create, ok := a.(actions.CreateChannel); ok {
		d.createChannel(ctx, create)
		return
	}

	err := d.cfg.Executor.Execute(ctx, a)
	if err == nil {
		return
	}
	if post, ok := a.(actions.StarPost); ok && d.cfg.Starboard != nil {
		d.cfg.Starboard.Forget(post.MessageID)
	}
	d.cfg.OnFailure(&actions.Failure{Action: a, Err: err})
}

// createChannel completes the second phase of a ticket request.
func (d *Dispatcher) createChannel(ctx context.Context, a actions.CreateChannel) {
	channelID, err := d.cfg.Executor.CreateChannel(ctx, a)
	if err != nil {
		d.cfg.OnFailure(&actions.Failure{Action: a, Err: err})
		if d.cfg.Tickets != nil {
			if abandonErr := d.cfg.Tickets.Abandon(ctx, a.TicketID); abandonErr != nil {
				slog.Error("Failed to release ticket slot",
					slog.String("type", "db"),
					slog.String("ticket_id", a.TicketID),
					slog.Any("error", abandonErr),
				)
			}
		}
		return
	}
	if d.cfg.Tickets == nil {
		return
	}

	_, err = d.cfg.Tickets.AttachChannel(ctx, a.TicketID, channelID)
	if errors.Is(err, tickets.ErrClosed) {
		// closed while the channel was being created
		remove := actions.DeleteChannel{GuildID: a.GuildID, ChannelID: channelID, Reason: "ticket closed"}
		if delErr := d.cfg.Executor.Execute(ctx, remove); delErr != nil {
			d.cfg.OnFailure(&actions.Failure{Action: remove, Err: delErr})
		}
		return
	}
	if err != nil {
		slog.Warn("Ticket channel recorded in memory only",
			slog.String("type", "db"),
			slog.String("ticket_id", a.TicketID),
			slog.String("channel_id", channelID.String()),
			slog.Any("error", err),
		)
		return
	}

	greeting := actions.SendMessage{
		GuildID:   a.GuildID,
		ChannelID: channelID,
		Content:   utils.Mention(a.OpenerID) + " please describe your issue. Use `/ticket close` to close this ticket.",
	}
	if err := d.cfg.Executor.Execute(ctx, greeting); err != nil {
		d.cfg.OnFailure(&actions.Failure{Action: greeting, Err: err})
	}
}

// Close stops accepting batches and waits for queued ones to finish.
func (d *Dispatcher) Close(timeout time.Duration) error {
	d.mu.Lock()
	if !d.closed {
		d.closed = true
		close(d.queue)
	}
	d.mu.Unlock()
	return d.procs.Wait(timeout)
}

// LogFailure is the default failure hook.
func LogFailure(f *actions.Failure) {
	if errors.Is(f, actions.ErrPermissionDenied) {
		slog.Warn("Missing permission for action",
			slog.String("type", "sys"),
			slog.String("action", string(f.Action.Kind())),
			slog.Any("error", f.Err),
		)
		return
	}
	slog.Error("Action failed",
		slog.String("type", "error"),
		slog.String("action", string(f.Action.Kind())),
		slog.Any("error", f.Err),
	)
}

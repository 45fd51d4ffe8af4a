// Package engine turns community events into state changes and actions. It
// owns every domain engine and is the only entry point the gateway uses for
// events; commands reach the individual engines through its fields.
package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/disgoorg/snowflake/v2"

	"github.com/wardenbot/warden/internal/clock"
	"github.com/wardenbot/warden/internal/domain/actions"
	"github.com/wardenbot/warden/internal/domain/community"
	"github.com/wardenbot/warden/internal/domain/economy"
	"github.com/wardenbot/warden/internal/domain/giveaways"
	"github.com/wardenbot/warden/internal/domain/leveling"
	"github.com/wardenbot/warden/internal/domain/models"
	"github.com/wardenbot/warden/internal/domain/moderation"
	"github.com/wardenbot/warden/internal/domain/ratewindow"
	"github.com/wardenbot/warden/internal/domain/reminders"
	"github.com/wardenbot/warden/internal/domain/tickets"
	"github.com/wardenbot/warden/internal/store"
)

const (
	FilteredReason   = "used a filtered word"
	DefaultSweepIdle = time.Hour
)

// Metrics receives engine measurements. The zero Options use a no-op.
type Metrics interface {
	EventHandled(kind EventKind, took time.Duration)
	ActionsEmitted(acts []actions.Action)
	PersistenceFailed(err error)
}

type nopMetrics struct{}

func (nopMetrics) EventHandled(EventKind, time.Duration) {}
func (nopMetrics) ActionsEmitted([]actions.Action)       {}
func (nopMetrics) PersistenceFailed(error)               {}

type Options struct {
	XPPerMessage   int64
	DailyReward    int64
	Location       *time.Location
	EscalationMute time.Duration
	SpamMute       time.Duration
	StarCacheSize  int
	// SweepIdle is how long an idle rate window is kept. It must be at least
	// the longest antispam window in use.
	SweepIdle time.Duration
	Metrics   Metrics
}

type Engine struct {
	store   *store.Store
	clock   clock.Clock
	metrics Metrics

	sweepIdle time.Duration

	Windows    *ratewindow.Windows
	Escalation *moderation.Escalation
	Spam       *moderation.SpamGuard
	Leveling   *leveling.Engine
	Ledger     *economy.Ledger
	Tickets    *tickets.Registry
	Reminders  *reminders.Scheduler
	Giveaways  *giveaways.Registry
	Starboard  *community.Starboard
}

func New(s *store.Store, c clock.Clock, opts Options) (*Engine, error) {
	if c == nil {
		c = clock.Real{}
	}
	if opts.Metrics == nil {
		opts.Metrics = nopMetrics{}
	}
	if opts.SweepIdle <= 0 {
		opts.SweepIdle = DefaultSweepIdle
	}

	starboard, err := community.NewStarboard(opts.StarCacheSize)
	if err != nil {
		return nil, err
	}

	windows := ratewindow.New()
	return &Engine{
		store:      s,
		clock:      c,
		metrics:    opts.Metrics,
		sweepIdle:  opts.SweepIdle,
		Windows:    windows,
		Escalation: moderation.NewEscalation(s, c, opts.EscalationMute),
		Spam:       moderation.NewSpamGuard(windows, opts.SpamMute),
		Leveling:   leveling.New(s, opts.XPPerMessage),
		Ledger:     economy.NewLedger(s, c, opts.DailyReward, opts.Location),
		Tickets:    tickets.NewRegistry(s, c),
		Reminders:  reminders.NewScheduler(s.Backend(), c),
		Giveaways:  giveaways.NewRegistry(s.Backend(), c),
		Starboard:  starboard,
	}, nil
}

// Start loads the durable parts of the engine state.
func (e *Engine) Start(ctx context.Context) error {
	if err := e.Reminders.Load(ctx); err != nil {
		return err
	}
	return e.Giveaways.Load(ctx)
}

func (e *Engine) Store() *store.Store {
	return e.store
}

func (e *Engine) Clock() clock.Clock {
	return e.clock
}

// Handle processes one event. Actions decided before a persistence failure
// are returned together with the error and should still be executed.
func (e *Engine) Handle(ctx context.Context, ev Event) ([]actions.Action, error) {
	start := time.Now()

	var (
		acts []actions.Action
		err  error
	)
	switch ev := ev.(type) {
	case MessagePosted:
		acts, err = e.onMessage(ctx, ev)
	case ReactionAdded:
		acts = e.onReaction(ctx, ev)
	case MemberJoined:
		acts = e.onJoin(ctx, ev)
	case MemberLeft:
		acts = community.OnLeave(e.store.GuildOrDefault(ctx, ev.GuildID), ev.UserID)
	case TimerTick:
		acts, err = e.onTick(ctx, ev)
	default:
		return nil, fmt.Errorf("unsupported event %T", ev)
	}

	e.metrics.EventHandled(ev.Kind(), time.Since(start))
	e.metrics.ActionsEmitted(acts)
	if err != nil {
		e.reportPersistence(ev.Kind(), err)
	}
	return acts, err
}

func (e *Engine) reportPersistence(kind EventKind, err error) {
	if !errors.Is(err, store.ErrPersistence) {
		slog.Error("Event handling failed",
			slog.String("type", "error"),
			slog.String("event", string(kind)),
			slog.Any("error", err),
		)
		return
	}
	e.metrics.PersistenceFailed(err)
	slog.Warn("State kept in memory, save will be retried",
		slog.String("type", "db"),
		slog.String("event", string(kind)),
		slog.Any("error", err),
	)
}

func (e *Engine) onMessage(ctx context.Context, m MessagePosted) ([]actions.Action, error) {
	if m.Bot || m.GuildID == 0 {
		return nil, nil
	}
	at := m.At
	if at.IsZero() {
		at = e.clock.Now()
	}
	cfg := e.store.GuildOrDefault(ctx, m.GuildID)
	key := models.UserKey{GuildID: m.GuildID, UserID: m.UserID}

	if word, ok := moderation.MatchFilteredWord(cfg.FilteredWords, m.Content); ok {
		acts := []actions.Action{
			actions.DeleteMessage{GuildID: m.GuildID, ChannelID: m.ChannelID, MessageID: m.MessageID},
			actions.Notice{GuildID: m.GuildID, ChannelID: m.ChannelID, UserID: m.UserID, Reason: actions.NoticeFiltered},
		}
		acts = append(acts, actions.ModLogFor(cfg, actions.ModLog{
			UserID: m.UserID,
			Event:  actions.ModFiltered,
			Reason: word,
		})...)
		res, err := e.Escalation.AddWarning(ctx, key, FilteredReason, 0, true)
		return append(acts, res.Actions...), err
	}

	if acts := e.Spam.Check(cfg, key, m.ChannelID, at); len(acts) > 0 {
		return acts, nil
	}

	_, acts, err := e.Leveling.Award(ctx, key, m.ChannelID)
	return acts, err
}

func (e *Engine) onReaction(ctx context.Context, r ReactionAdded) []actions.Action {
	if r.Bot || r.GuildID == 0 {
		return nil
	}
	cfg := e.store.GuildOrDefault(ctx, r.GuildID)
	return e.Starboard.OnReaction(cfg, community.Reaction{
		GuildID:   r.GuildID,
		ChannelID: r.ChannelID,
		MessageID: r.MessageID,
		Emoji:     r.Emoji,
		Count:     r.Count,
	})
}

func (e *Engine) onJoin(ctx context.Context, j MemberJoined) []actions.Action {
	if j.Bot {
		return nil
	}
	return community.OnJoin(e.store.GuildOrDefault(ctx, j.GuildID), j.UserID)
}

func (e *Engine) onTick(ctx context.Context, t TimerTick) ([]actions.Action, error) {
	now := t.Now
	if now.IsZero() {
		now = e.clock.Now()
	}
	acts, err := e.Reminders.Tick(ctx, now)
	draws, drawErr := e.Giveaways.Tick(ctx, now)
	acts = append(acts, draws...)
	if swept := e.Windows.Sweep(now, e.sweepIdle); swept > 0 {
		slog.Debug("Swept idle rate windows",
			slog.String("type", "sys"),
			slog.Int("removed", swept),
		)
	}
	return acts, errors.Join(err, drawErr)
}

func (e *Engine) Guild(ctx context.Context, guildID snowflake.ID) (models.GuildConfig, error) {
	return e.store.Guilds.Get(ctx, guildID)
}

// UpdateGuild applies an admin change to a guild's config. The result is
// normalized before it is stored.
func (e *Engine) UpdateGuild(ctx context.Context, guildID snowflake.ID, fn func(*models.GuildConfig) error) (models.GuildConfig, error) {
	cfg, err := e.store.Guilds.Update(ctx, guildID, func(cfg *models.GuildConfig) error {
		if err := fn(cfg); err != nil {
			return err
		}
		cfg.Normalize()
		return nil
	})
	if err != nil && errors.Is(err, store.ErrPersistence) {
		e.reportPersistence("guild_update", err)
	}
	return cfg, err
}

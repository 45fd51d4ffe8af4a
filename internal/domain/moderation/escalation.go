package moderation

import (
	"context"
	"errors"
	"time"

	"github.com/disgoorg/snowflake/v2"

	"github.com/wardenbot/warden/internal/clock"
	"github.com/wardenbot/warden/internal/domain/actions"
	"github.com/wardenbot/warden/internal/domain/models"
	"github.com/wardenbot/warden/internal/store"
)

const (
	EscalationMute = 10 * time.Minute
	// MaxTimeout is the longest timeout Discord accepts.
	MaxTimeout = 28 * 24 * time.Hour
)

type WarnResult struct {
	Record    models.UserRecord
	Count     int
	Escalated bool
	Actions   []actions.Action
}

// Escalation tracks warnings and mutes a member once the guild's warn limit
// is reached. The active count restarts from zero after each escalation while
// the history is kept.
type Escalation struct {
	store   *store.Store
	clock   clock.Clock
	muteFor time.Duration
}

func NewEscalation(s *store.Store, c clock.Clock, muteFor time.Duration) *Escalation {
	if muteFor <= 0 {
		muteFor = EscalationMute
	}
	return &Escalation{store: s, clock: c, muteFor: muteFor}
}

// AddWarning records a warning. A *store.PersistenceError is returned together
// with a valid result: the warning counts and its actions must still run.
func (e *Escalation) AddWarning(ctx context.Context, key models.UserKey, reason string, issuer snowflake.ID, automated bool) (WarnResult, error) {
	cfg := e.store.GuildOrDefault(ctx, key.GuildID)
	now := e.clock.Now()

	var (
		applied   bool
		escalated bool
		count     int
	)
	rec, err := e.store.Users.Update(ctx, key, func(u *models.UserRecord) error {
		applied = true
		u.Warnings = append(u.Warnings, models.Warning{
			Reason:    reason,
			IssuerID:  issuer,
			Automated: automated,
			IssuedAt:  now,
		})
		u.WarnCount++
		count = u.WarnCount
		escalated = u.WarnCount >= cfg.WarnLimit
		if escalated {
			u.WarnCount = 0
		}
		return nil
	})
	if !applied {
		return WarnResult{}, err
	}

	res := WarnResult{Record: rec, Count: count, Escalated: escalated}
	res.Actions = actions.ModLogFor(cfg, actions.ModLog{
		UserID:  key.UserID,
		ActorID: issuer,
		Event:   actions.ModWarn,
		Reason:  reason,
		Count:   count,
	})
	if escalated {
		res.Actions = append(res.Actions, actions.MuteUser{
			GuildID:  key.GuildID,
			UserID:   key.UserID,
			Duration: e.muteFor,
			Reason:   "warning limit reached",
		})
		res.Actions = append(res.Actions, actions.ModLogFor(cfg, actions.ModLog{
			UserID: key.UserID,
			Event:  actions.ModEscalation,
			Reason: "warning limit reached",
			Count:  count,
		})...)
	}
	return res, err
}

// Warnings returns the record holding the history and active count.
func (e *Escalation) Warnings(ctx context.Context, key models.UserKey) (models.UserRecord, error) {
	return e.store.Users.Get(ctx, key)
}

// ResetWarnings clears the active count and the history.
func (e *Escalation) ResetWarnings(ctx context.Context, key models.UserKey, actor snowflake.ID) ([]actions.Action, error) {
	var cleared int
	_, err := e.store.Users.Update(ctx, key, func(u *models.UserRecord) error {
		cleared = len(u.Warnings)
		u.WarnCount = 0
		u.Warnings = []models.Warning{}
		return nil
	})
	if err != nil && !errors.Is(err, store.ErrPersistence) {
		return nil, err
	}

	cfg := e.store.GuildOrDefault(ctx, key.GuildID)
	return actions.ModLogFor(cfg, actions.ModLog{
		UserID:  key.UserID,
		ActorID: actor,
		Event:   actions.ModClearWarns,
		Count:   cleared,
	}), err
}

// Mute is a manual timeout. The duration is capped at MaxTimeout.
func (e *Escalation) Mute(ctx context.Context, key models.UserKey, d time.Duration, reason string, actor snowflake.ID) []actions.Action {
	d = min(d, MaxTimeout)
	cfg := e.store.GuildOrDefault(ctx, key.GuildID)

	acts := []actions.Action{actions.MuteUser{
		GuildID:  key.GuildID,
		UserID:   key.UserID,
		Duration: d,
		Reason:   reason,
	}}
	return append(acts, actions.ModLogFor(cfg, actions.ModLog{
		UserID:  key.UserID,
		ActorID: actor,
		Event:   actions.ModMute,
		Reason:  reason,
	})...)
}

func (e *Escalation) Unmute(ctx context.Context, key models.UserKey, actor snowflake.ID) []actions.Action {
	cfg := e.store.GuildOrDefault(ctx, key.GuildID)

	acts := []actions.Action{actions.UnmuteUser{GuildID: key.GuildID, UserID: key.UserID}}
	return append(acts, actions.ModLogFor(cfg, actions.ModLog{
		UserID:  key.UserID,
		ActorID: actor,
		Event:   actions.ModUnmute,
	})...)
}

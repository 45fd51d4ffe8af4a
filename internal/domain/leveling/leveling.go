package leveling

import (
	"context"

	"github.com/disgoorg/snowflake/v2"

	"github.com/wardenbot/warden/internal/domain/actions"
	"github.com/wardenbot/warden/internal/domain/models"
	"github.com/wardenbot/warden/internal/store"
)

const MessageXP = 10

// Threshold is the xp needed to leave level.
func Threshold(level int) int64 {
	return int64(level) * 100
}

// Apply adds gain to the record and performs every level-up it pays for. It
// returns the levels reached in order.
func Apply(u *models.UserRecord, gain int64) []int {
	if gain > 0 {
		u.XP += gain
	}
	if u.Level < 1 {
		u.Level = 1
	}

	var reached []int
	for u.XP >= Threshold(u.Level) {
		u.XP -= Threshold(u.Level)
		u.Level++
		reached = append(reached, u.Level)
	}
	return reached
}

type Engine struct {
	store *store.Store
	gain  int64
}

func New(s *store.Store, gain int64) *Engine {
	if gain <= 0 {
		gain = MessageXP
	}
	return &Engine{store: s, gain: gain}
}

// Award grants the per message xp. The record and LevelUp actions are
// returned even when saving fails.
func (e *Engine) Award(ctx context.Context, key models.UserKey, channelID snowflake.ID) (models.UserRecord, []actions.Action, error) {
	var (
		applied bool
		reached []int
	)
	rec, err := e.store.Users.Update(ctx, key, func(u *models.UserRecord) error {
		applied = true
		reached = Apply(u, e.gain)
		return nil
	})
	if !applied {
		return models.UserRecord{}, nil, err
	}

	acts := make([]actions.Action, 0, len(reached))
	for _, level := range reached {
		acts = append(acts, actions.LevelUp{
			GuildID:   key.GuildID,
			UserID:    key.UserID,
			ChannelID: channelID,
			Level:     level,
		})
	}
	return rec, acts, err
}

func (e *Engine) Rank(ctx context.Context, key models.UserKey) (models.UserRecord, error) {
	return e.store.Users.Get(ctx, key)
}

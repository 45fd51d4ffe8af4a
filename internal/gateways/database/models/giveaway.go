package models

import (
	"time"

	"github.com/disgoorg/snowflake/v2"
	"github.com/uptrace/bun"

	domain "github.com/wardenbot/warden/internal/domain/models"
)

type Giveaway struct {
	bun.BaseModel `bun:"table:giveaways,alias:gw"`

	ID        string    `bun:"id,pk"`
	GuildID   int64     `bun:"guild_id,notnull"`
	ChannelID int64     `bun:"channel_id,notnull"`
	MessageID int64     `bun:"message_id,notnull"`
	HostID    int64     `bun:"host_id,notnull"`
	Prize     string    `bun:"prize,notnull"`
	EndsAt    time.Time `bun:"ends_at,notnull"`
	CreatedAt time.Time `bun:"created_at,notnull"`
}

func GiveawayFromDomain(g domain.Giveaway) *Giveaway {
	return &Giveaway{
		ID:        g.ID,
		GuildID:   int64(g.GuildID),
		ChannelID: int64(g.ChannelID),
		MessageID: int64(g.MessageID),
		HostID:    int64(g.HostID),
		Prize:     g.Prize,
		EndsAt:    g.EndsAt,
		CreatedAt: g.CreatedAt,
	}
}

func (g *Giveaway) Domain() domain.Giveaway {
	return domain.Giveaway{
		ID:        g.ID,
		GuildID:   snowflake.ID(g.GuildID),
		ChannelID: snowflake.ID(g.ChannelID),
		MessageID: snowflake.ID(g.MessageID),
		HostID:    snowflake.ID(g.HostID),
		Prize:     g.Prize,
		EndsAt:    g.EndsAt.UTC(),
		CreatedAt: g.CreatedAt.UTC(),
	}
}

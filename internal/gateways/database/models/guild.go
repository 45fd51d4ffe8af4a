package models

import (
	"time"

	"github.com/disgoorg/snowflake/v2"
	"github.com/uptrace/bun"

	domain "github.com/wardenbot/warden/internal/domain/models"
)

type GuildConfig struct {
	bun.BaseModel `bun:"table:guild_configs,alias:gc"`

	GuildID         int64                  `bun:"guild_id,pk"`
	Prefix          string                 `bun:"prefix,notnull,default:'!'"`
	LogChannel      int64                  `bun:"log_channel,notnull,default:0"`
	AnnounceChannel int64                  `bun:"announce_channel,notnull,default:0"`
	Welcome         domain.Greeting        `bun:"welcome,type:jsonb"`
	Goodbye         domain.Greeting        `bun:"goodbye,type:jsonb"`
	AutoRole        int64                  `bun:"autorole,notnull,default:0"`
	FilteredWords   []string               `bun:"filtered_words,type:jsonb"`
	AntiSpam        domain.AntiSpamConfig  `bun:"antispam,type:jsonb"`
	Starboard       domain.StarboardConfig `bun:"starboard,type:jsonb"`
	WarnLimit       int                    `bun:"warn_limit,notnull,default:0"`
	UpdatedAt       time.Time              `bun:"updated_at,notnull,default:current_timestamp"`
}

func GuildFromDomain(cfg domain.GuildConfig) *GuildConfig {
	return &GuildConfig{
		GuildID:         int64(cfg.GuildID),
		Prefix:          cfg.Prefix,
		LogChannel:      int64(cfg.LogChannel),
		AnnounceChannel: int64(cfg.AnnounceChannel),
		Welcome:         cfg.Welcome,
		Goodbye:         cfg.Goodbye,
		AutoRole:        int64(cfg.AutoRole),
		FilteredWords:   cfg.FilteredWords,
		AntiSpam:        cfg.AntiSpam,
		Starboard:       cfg.Starboard,
		WarnLimit:       cfg.WarnLimit,
		UpdatedAt:       time.Now(),
	}
}

// Domain converts the row and fills defaults for columns added later.
func (g *GuildConfig) Domain() domain.GuildConfig {
	cfg := domain.GuildConfig{
		GuildID:         snowflake.ID(g.GuildID),
		Prefix:          g.Prefix,
		LogChannel:      snowflake.ID(g.LogChannel),
		AnnounceChannel: snowflake.ID(g.AnnounceChannel),
		Welcome:         g.Welcome,
		Goodbye:         g.Goodbye,
		AutoRole:        snowflake.ID(g.AutoRole),
		FilteredWords:   g.FilteredWords,
		AntiSpam:        g.AntiSpam,
		Starboard:       g.Starboard,
		WarnLimit:       g.WarnLimit,
	}
	cfg.Normalize()
	return cfg
}

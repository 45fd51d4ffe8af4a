package repositories

import (
	"context"
	"database/sql"

	"github.com/uptrace/bun"

	"github.com/wardenbot/warden/internal/gateways/database/models"
)

type GuildRepository interface {
	Get(ctx context.Context, guildID int64) (*models.GuildConfig, error)
	Upsert(ctx context.Context, cfg *models.GuildConfig) error
	All(ctx context.Context) ([]*models.GuildConfig, error)
}

type guildRepository struct {
	*BaseRepository
}

func NewGuildRepository(db bun.IDB) GuildRepository {
	return &guildRepository{BaseRepository: NewBaseRepository(db)}
}

func (r *guildRepository) Get(ctx context.Context, guildID int64) (*models.GuildConfig, error) {
	cfg := new(models.GuildConfig)
	err := r.SelectOneWithTimeout(ctx, "get", "guild_config", guildID, func(ctx context.Context) error {
		return r.db.NewSelect().
			Model(cfg).
			Where("guild_id = ?", guildID).
			Scan(ctx)
	})
	return cfg, err
}

func (r *guildRepository) Upsert(ctx context.Context, cfg *models.GuildConfig) error {
	_, err := r.ExecWithTimeout(ctx, "upsert", "guild_config", func(ctx context.Context) (sql.Result, error) {
		return r.db.NewInsert().
			Model(cfg).
			On("CONFLICT (guild_id) DO UPDATE").
			Set("prefix = EXCLUDED.prefix").
			Set("log_channel = EXCLUDED.log_channel").
			Set("announce_channel = EXCLUDED.announce_channel").
			Set("welcome = EXCLUDED.welcome").
			Set("goodbye = EXCLUDED.goodbye").
			Set("autorole = EXCLUDED.autorole").
			Set("filtered_words = EXCLUDED.filtered_words").
			Set("antispam = EXCLUDED.antispam").
			Set("starboard = EXCLUDED.starboard").
			Set("warn_limit = EXCLUDED.warn_limit").
			Set("updated_at = EXCLUDED.updated_at").
			Exec(ctx)
	})
	return err
}

func (r *guildRepository) All(ctx context.Context) ([]*models.GuildConfig, error) {
	var cfgs []*models.GuildConfig
	err := r.SelectWithTimeout(ctx, "list", "guild_config", func(ctx context.Context) error {
		return r.db.NewSelect().
			Model(&cfgs).
			Order("guild_id ASC").
			Scan(ctx)
	})
	return cfgs, err
}

package repositories

import (
	"context"
	"database/sql"

	"github.com/uptrace/bun"

	"github.com/wardenbot/warden/internal/gateways/database/models"
)

type GiveawayRepository interface {
	All(ctx context.Context) ([]*models.Giveaway, error)
	Upsert(ctx context.Context, giveaway *models.Giveaway) error
	Delete(ctx context.Context, ids []string) error
}

type giveawayRepository struct {
	*BaseRepository
}

func NewGiveawayRepository(db bun.IDB) GiveawayRepository {
	return &giveawayRepository{BaseRepository: NewBaseRepository(db)}
}

func (r *giveawayRepository) All(ctx context.Context) ([]*models.Giveaway, error) {
	var giveaways []*models.Giveaway
	err := r.SelectWithTimeout(ctx, "list", "giveaway", func(ctx context.Context) error {
		return r.db.NewSelect().
			Model(&giveaways).
			Order("ends_at ASC", "id ASC").
			Scan(ctx)
	})
	return giveaways, err
}

func (r *giveawayRepository) Upsert(ctx context.Context, giveaway *models.Giveaway) error {
	_, err := r.ExecWithTimeout(ctx, "upsert", "giveaway", func(ctx context.Context) (sql.Result, error) {
		return r.db.NewInsert().
			Model(giveaway).
			On("CONFLICT (id) DO UPDATE").
			Set("ends_at = EXCLUDED.ends_at").
			Set("prize = EXCLUDED.prize").
			Exec(ctx)
	})
	return err
}

func (r *giveawayRepository) Delete(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	_, err := r.ExecWithTimeout(ctx, "delete", "giveaway", func(ctx context.Context) (sql.Result, error) {
		return r.db.NewDelete().
			Model((*models.Giveaway)(nil)).
			Where("id IN (?)", bun.In(ids)).
			Exec(ctx)
	})
	return err
}

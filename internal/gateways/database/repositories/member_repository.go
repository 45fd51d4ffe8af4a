package repositories

import (
	"context"
	"database/sql"
	"log/slog"

	"github.com/uptrace/bun"

	"github.com/wardenbot/warden/internal/gateways/database/models"
)

const maxBatchSize = 500

type MemberRepository interface {
	Get(ctx context.Context, guildID int64, userID int64) (*models.Member, error)
	// UpsertMany writes members in batches; callers wanting all-or-nothing
	// pass a transaction.
	UpsertMany(ctx context.Context, members []*models.Member) error
	All(ctx context.Context) ([]*models.Member, error)
}

type memberRepository struct {
	*BaseRepository
}

func NewMemberRepository(db bun.IDB) MemberRepository {
	return &memberRepository{BaseRepository: NewBaseRepository(db)}
}

func (r *memberRepository) Get(ctx context.Context, guildID int64, userID int64) (*models.Member, error) {
	slog.Debug("MemberRepository.Get called",
		slog.String("type", "db"),
		slog.Int64("guild_id", guildID),
		slog.Int64("user_id", userID))

	m := new(models.Member)
	err := r.SelectOneWithTimeout(ctx, "get", "member", userID, func(ctx context.Context) error {
		return r.db.NewSelect().
			Model(m).
			Where("guild_id = ?", guildID).
			Where("user_id = ?", userID).
			Scan(ctx)
	})
	return m, err
}

func (r *memberRepository) UpsertMany(ctx context.Context, members []*models.Member) error {
	for start := 0; start < len(members); start += maxBatchSize {
		batch := members[start:min(start+maxBatchSize, len(members))]
		if err := r.upsertBatch(ctx, batch); err != nil {
			return err
		}
	}
	return nil
}

func (r *memberRepository) upsertBatch(ctx context.Context, batch []*models.Member) error {
	_, err := r.ExecWithTimeout(ctx, "upsert", "member", func(ctx context.Context) (sql.Result, error) {
		return r.db.NewInsert().
			Model(&batch).
			On("CONFLICT (guild_id, user_id) DO UPDATE").
			Set("xp = EXCLUDED.xp").
			Set("level = EXCLUDED.level").
			Set("warn_count = EXCLUDED.warn_count").
			Set("warnings = EXCLUDED.warnings").
			Set("balance = EXCLUDED.balance").
			Set("open_ticket_id = EXCLUDED.open_ticket_id").
			Set("open_ticket_channel = EXCLUDED.open_ticket_channel").
			Set("daily_claim_date = EXCLUDED.daily_claim_date").
			Set("updated_at = EXCLUDED.updated_at").
			Exec(ctx)
	})
	return err
}

func (r *memberRepository) All(ctx context.Context) ([]*models.Member, error) {
	var members []*models.Member
	err := r.SelectWithTimeout(ctx, "list", "member", func(ctx context.Context) error {
		return r.db.NewSelect().
			Model(&members).
			Order("guild_id ASC", "user_id ASC").
			Scan(ctx)
	})
	return members, err
}

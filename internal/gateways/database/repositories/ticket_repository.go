package repositories

import (
	"context"
	"database/sql"

	"github.com/uptrace/bun"

	"github.com/wardenbot/warden/internal/gateways/database/models"
)

type TicketRepository interface {
	Get(ctx context.Context, id string) (*models.Ticket, error)
	Upsert(ctx context.Context, ticket *models.Ticket) error
	// FindByChannel prefers the open ticket when a channel id was reused.
	FindByChannel(ctx context.Context, channelID int64) (*models.Ticket, error)
	All(ctx context.Context) ([]*models.Ticket, error)
}

type ticketRepository struct {
	*BaseRepository
}

func NewTicketRepository(db bun.IDB) TicketRepository {
	return &ticketRepository{BaseRepository: NewBaseRepository(db)}
}

func (r *ticketRepository) Get(ctx context.Context, id string) (*models.Ticket, error) {
	t := new(models.Ticket)
	err := r.SelectOneWithTimeout(ctx, "get", "ticket", id, func(ctx context.Context) error {
		return r.db.NewSelect().
			Model(t).
			Where("id = ?", id).
			Scan(ctx)
	})
	return t, err
}

func (r *ticketRepository) Upsert(ctx context.Context, ticket *models.Ticket) error {
	_, err := r.ExecWithTimeout(ctx, "upsert", "ticket", func(ctx context.Context) (sql.Result, error) {
		return r.db.NewInsert().
			Model(ticket).
			On("CONFLICT (id) DO UPDATE").
			Set("channel_id = EXCLUDED.channel_id").
			Set("status = EXCLUDED.status").
			Set("closed_at = EXCLUDED.closed_at").
			Set("closed_by = EXCLUDED.closed_by").
			Exec(ctx)
	})
	return err
}

func (r *ticketRepository) FindByChannel(ctx context.Context, channelID int64) (*models.Ticket, error) {
	t := new(models.Ticket)
	err := r.SelectOneWithTimeout(ctx, "find", "ticket", channelID, func(ctx context.Context) error {
		return r.db.NewSelect().
			Model(t).
			Where("channel_id = ?", channelID).
			OrderExpr("CASE WHEN status = 'open' THEN 0 ELSE 1 END").
			Order("opened_at DESC").
			Limit(1).
			Scan(ctx)
	})
	return t, err
}

func (r *ticketRepository) All(ctx context.Context) ([]*models.Ticket, error) {
	var tickets []*models.Ticket
	err := r.SelectWithTimeout(ctx, "list", "ticket", func(ctx context.Context) error {
		return r.db.NewSelect().
			Model(&tickets).
			Order("id ASC").
			Scan(ctx)
	})
	return tickets, err
}

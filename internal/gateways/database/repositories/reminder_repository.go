package repositories

import (
	"context"
	"database/sql"

	"github.com/uptrace/bun"

	"github.com/wardenbot/warden/internal/gateways/database/models"
)

type ReminderRepository interface {
	All(ctx context.Context) ([]*models.Reminder, error)
	Upsert(ctx context.Context, reminder *models.Reminder) error
	InsertMany(ctx context.Context, reminders []*models.Reminder) error
	Delete(ctx context.Context, ids []string) error
}

type reminderRepository struct {
	*BaseRepository
}

func NewReminderRepository(db bun.IDB) ReminderRepository {
	return &reminderRepository{BaseRepository: NewBaseRepository(db)}
}

func (r *reminderRepository) All(ctx context.Context) ([]*models.Reminder, error) {
	var reminders []*models.Reminder
	err := r.SelectWithTimeout(ctx, "list", "reminder", func(ctx context.Context) error {
		return r.db.NewSelect().
			Model(&reminders).
			Order("due_at ASC", "created_at ASC").
			Scan(ctx)
	})
	return reminders, err
}

func (r *reminderRepository) Upsert(ctx context.Context, reminder *models.Reminder) error {
	_, err := r.ExecWithTimeout(ctx, "upsert", "reminder", func(ctx context.Context) (sql.Result, error) {
		return r.db.NewInsert().
			Model(reminder).
			On("CONFLICT (id) DO UPDATE").
			Set("due_at = EXCLUDED.due_at").
			Set("text = EXCLUDED.text").
			Exec(ctx)
	})
	return err
}

func (r *reminderRepository) InsertMany(ctx context.Context, reminders []*models.Reminder) error {
	for start := 0; start < len(reminders); start += maxBatchSize {
		batch := reminders[start:min(start+maxBatchSize, len(reminders))]
		if err := r.insertBatch(ctx, batch); err != nil {
			return err
		}
	}
	return nil
}

func (r *reminderRepository) insertBatch(ctx context.Context, batch []*models.Reminder) error {
	_, err := r.ExecWithTimeout(ctx, "insert", "reminder", func(ctx context.Context) (sql.Result, error) {
		return r.db.NewInsert().
			Model(&batch).
			On("CONFLICT (id) DO NOTHING").
			Exec(ctx)
	})
	return err
}

func (r *reminderRepository) Delete(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	_, err := r.ExecWithTimeout(ctx, "delete", "reminder", func(ctx context.Context) (sql.Result, error) {
		return r.db.NewDelete().
			Model((*models.Reminder)(nil)).
			Where("id IN (?)", bun.In(ids)).
			Exec(ctx)
	})
	return err
}

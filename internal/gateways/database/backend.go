package database

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/disgoorg/snowflake/v2"
	"github.com/uptrace/bun"

	domain "github.com/wardenbot/warden/internal/domain/models"
	"github.com/wardenbot/warden/internal/gateways/database/models"
	"github.com/wardenbot/warden/internal/gateways/database/repositories"
	"github.com/wardenbot/warden/internal/store"
)

// Backend stores engine state in PostgreSQL.
type Backend struct {
	db        *DB
	guilds    repositories.GuildRepository
	members   repositories.MemberRepository
	tickets   repositories.TicketRepository
	reminders repositories.ReminderRepository
	giveaways repositories.GiveawayRepository
}

var _ store.Backend = (*Backend)(nil)

func NewBackend(db *DB) *Backend {
	return &Backend{
		db:        db,
		guilds:    repositories.NewGuildRepository(db.BunDB()),
		members:   repositories.NewMemberRepository(db.BunDB()),
		tickets:   repositories.NewTicketRepository(db.BunDB()),
		reminders: repositories.NewReminderRepository(db.BunDB()),
		giveaways: repositories.NewGiveawayRepository(db.BunDB()),
	}
}

// Open connects, prepares the schema and returns a ready backend.
func Open(ctx context.Context, cfg DBConfig) (*Backend, error) {
	start := time.Now()
	db, err := New(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if err = db.InitializeSchema(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	slog.Info("Database ready",
		slog.String("type", "db"),
		slog.String("host", cfg.Host),
		slog.String("database", cfg.Database),
		slog.Duration("took", time.Since(start)),
	)
	return NewBackend(db), nil
}

func (b *Backend) LoadGuild(ctx context.Context, guildID snowflake.ID) (domain.GuildConfig, error) {
	row, err := b.guilds.Get(ctx, int64(guildID))
	if err != nil {
		return domain.GuildConfig{}, err
	}
	return row.Domain(), nil
}

func (b *Backend) SaveGuild(ctx context.Context, cfg domain.GuildConfig) error {
	return b.guilds.Upsert(ctx, models.GuildFromDomain(cfg))
}

func (b *Backend) LoadUser(ctx context.Context, key domain.UserKey) (domain.UserRecord, error) {
	row, err := b.members.Get(ctx, int64(key.GuildID), int64(key.UserID))
	if err != nil {
		return domain.UserRecord{}, err
	}
	return row.Domain(), nil
}

func (b *Backend) SaveUser(ctx context.Context, user domain.UserRecord) error {
	return b.members.UpsertMany(ctx, []*models.Member{models.MemberFromDomain(user)})
}

func (b *Backend) SaveUsers(ctx context.Context, users []domain.UserRecord) error {
	rows := make([]*models.Member, 0, len(users))
	for _, u := range users {
		rows = append(rows, models.MemberFromDomain(u))
	}
	return b.db.BunDB().RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		return repositories.NewMemberRepository(tx).UpsertMany(ctx, rows)
	})
}

func (b *Backend) LoadTicket(ctx context.Context, id string) (domain.Ticket, error) {
	row, err := b.tickets.Get(ctx, id)
	if err != nil {
		return domain.Ticket{}, err
	}
	return row.Domain(), nil
}

func (b *Backend) SaveTicket(ctx context.Context, ticket domain.Ticket) error {
	return b.tickets.Upsert(ctx, models.TicketFromDomain(ticket))
}

func (b *Backend) FindTicketByChannel(ctx context.Context, channelID snowflake.ID) (domain.Ticket, error) {
	row, err := b.tickets.FindByChannel(ctx, int64(channelID))
	if err != nil {
		return domain.Ticket{}, err
	}
	return row.Domain(), nil
}

func (b *Backend) LoadReminders(ctx context.Context) ([]domain.Reminder, error) {
	rows, err := b.reminders.All(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]domain.Reminder, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.Domain())
	}
	return out, nil
}

func (b *Backend) SaveReminder(ctx context.Context, reminder domain.Reminder) error {
	return b.reminders.Upsert(ctx, models.ReminderFromDomain(reminder))
}

func (b *Backend) DeleteReminders(ctx context.Context, ids []string) error {
	return b.reminders.Delete(ctx, ids)
}

func (b *Backend) LoadGiveaways(ctx context.Context) ([]domain.Giveaway, error) {
	rows, err := b.giveaways.All(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]domain.Giveaway, 0, len(rows))
	for _, g := range rows {
		out = append(out, g.Domain())
	}
	return out, nil
}

func (b *Backend) SaveGiveaway(ctx context.Context, giveaway domain.Giveaway) error {
	return b.giveaways.Upsert(ctx, models.GiveawayFromDomain(giveaway))
}

func (b *Backend) DeleteGiveaways(ctx context.Context, ids []string) error {
	return b.giveaways.Delete(ctx, ids)
}

// tables holds the rows of every table, in restore order.
type tables struct {
	guilds    []*models.GuildConfig
	members   []*models.Member
	tickets   []*models.Ticket
	reminders []*models.Reminder
	giveaways []*models.Giveaway
}

func tablesFromSnapshot(snap store.Snapshot) tables {
	t := tables{
		guilds:    make([]*models.GuildConfig, 0, len(snap.Guilds)),
		members:   make([]*models.Member, 0, len(snap.Users)),
		tickets:   make([]*models.Ticket, 0, len(snap.Tickets)),
		reminders: make([]*models.Reminder, 0, len(snap.Reminders)),
		giveaways: make([]*models.Giveaway, 0, len(snap.Giveaways)),
	}
	for _, g := range snap.Guilds {
		t.guilds = append(t.guilds, models.GuildFromDomain(g))
	}
	for _, u := range snap.Users {
		t.members = append(t.members, models.MemberFromDomain(u))
	}
	for _, tk := range snap.Tickets {
		t.tickets = append(t.tickets, models.TicketFromDomain(tk))
	}
	for _, r := range snap.Reminders {
		t.reminders = append(t.reminders, models.ReminderFromDomain(r))
	}
	for _, g := range snap.Giveaways {
		t.giveaways = append(t.giveaways, models.GiveawayFromDomain(g))
	}
	return t
}

func (t tables) snapshot() store.Snapshot {
	snap := store.Snapshot{Version: store.SnapshotVersion}
	for _, g := range t.guilds {
		snap.Guilds = append(snap.Guilds, g.Domain())
	}
	for _, m := range t.members {
		snap.Users = append(snap.Users, m.Domain())
	}
	for _, tk := range t.tickets {
		snap.Tickets = append(snap.Tickets, tk.Domain())
	}
	for _, r := range t.reminders {
		snap.Reminders = append(snap.Reminders, r.Domain())
	}
	for _, g := range t.giveaways {
		snap.Giveaways = append(snap.Giveaways, g.Domain())
	}
	snap.Normalize()
	return snap
}

// Snapshot reads every table inside one repeatable-read transaction.
func (b *Backend) Snapshot(ctx context.Context) (store.Snapshot, error) {
	var t tables
	opts := &sql.TxOptions{Isolation: sql.LevelRepeatableRead, ReadOnly: true}

	err := b.db.BunDB().RunInTx(ctx, opts, func(ctx context.Context, tx bun.Tx) error {
		var err error
		if t.guilds, err = repositories.NewGuildRepository(tx).All(ctx); err != nil {
			return err
		}
		if t.members, err = repositories.NewMemberRepository(tx).All(ctx); err != nil {
			return err
		}
		if t.tickets, err = repositories.NewTicketRepository(tx).All(ctx); err != nil {
			return err
		}
		if t.reminders, err = repositories.NewReminderRepository(tx).All(ctx); err != nil {
			return err
		}
		t.giveaways, err = repositories.NewGiveawayRepository(tx).All(ctx)
		return err
	})
	if err != nil {
		return store.Snapshot{}, fmt.Errorf("failed to snapshot database: %w", err)
	}
	return t.snapshot(), nil
}

// Restore replaces every table with the snapshot contents.
func (b *Backend) Restore(ctx context.Context, snap store.Snapshot) error {
	snap.Normalize()
	t := tablesFromSnapshot(snap)

	return b.db.BunDB().RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		for _, model := range []any{
			(*models.GuildConfig)(nil),
			(*models.Member)(nil),
			(*models.Ticket)(nil),
			(*models.Reminder)(nil),
			(*models.Giveaway)(nil),
		} {
			if _, err := tx.NewTruncateTable().Model(model).Exec(ctx); err != nil {
				return fmt.Errorf("failed to truncate: %w", err)
			}
		}

		guilds := repositories.NewGuildRepository(tx)
		for _, g := range t.guilds {
			if err := guilds.Upsert(ctx, g); err != nil {
				return err
			}
		}
		if err := repositories.NewMemberRepository(tx).UpsertMany(ctx, t.members); err != nil {
			return err
		}
		tickets := repositories.NewTicketRepository(tx)
		for _, tk := range t.tickets {
			if err := tickets.Upsert(ctx, tk); err != nil {
				return err
			}
		}
		if err := repositories.NewReminderRepository(tx).InsertMany(ctx, t.reminders); err != nil {
			return err
		}
		giveaways := repositories.NewGiveawayRepository(tx)
		for _, g := range t.giveaways {
			if err := giveaways.Upsert(ctx, g); err != nil {
				return err
			}
		}
		return nil
	})
}

func (b *Backend) Close() error {
	b.db.Close()
	return nil
}

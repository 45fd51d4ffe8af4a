package store

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/disgoorg/snowflake/v2"

	"github.com/wardenbot/warden/internal/domain/models"
)

// Store groups the keyed tables the engines mutate.
type Store struct {
	backend Backend

	Guilds  *Table[snowflake.ID, models.GuildConfig]
	Users   *Table[models.UserKey, models.UserRecord]
	Tickets *Table[string, models.Ticket]
}

func New(backend Backend) *Store {
	return &Store{
		backend: backend,
		Guilds: NewTable(TableConfig[snowflake.ID, models.GuildConfig]{
			Name:    "guilds",
			KeyOf:   func(g models.GuildConfig) snowflake.ID { return g.GuildID },
			Load:    backend.LoadGuild,
			Save:    backend.SaveGuild,
			Default: models.DefaultGuildConfig,
			Clone:   models.GuildConfig.Clone,
		}),
		Users: NewTable(TableConfig[models.UserKey, models.UserRecord]{
			Name:     "users",
			KeyOf:    models.UserRecord.Key,
			Load:     backend.LoadUser,
			Save:     backend.SaveUser,
			SaveMany: backend.SaveUsers,
			Default:  models.NewUserRecord,
			Clone:    models.UserRecord.Clone,
			Less:     models.UserKey.Less,
		}),
		Tickets: NewTable(TableConfig[string, models.Ticket]{
			Name:  "tickets",
			KeyOf: func(t models.Ticket) string { return t.ID },
			Load:  backend.LoadTicket,
			Save:  backend.SaveTicket,
		}),
	}
}

func (s *Store) Backend() Backend {
	return s.backend
}

// GuildOrDefault reads a guild config for event handling. A failed load is
// logged and answered with the defaults so moderation keeps working.
func (s *Store) GuildOrDefault(ctx context.Context, guildID snowflake.ID) models.GuildConfig {
	cfg, err := s.Guilds.Get(ctx, guildID)
	if err != nil {
		slog.Error("Failed to load guild config, using defaults",
			slog.String("type", "db"),
			slog.String("guild_id", guildID.String()),
			slog.Any("error", err),
		)
		return models.DefaultGuildConfig(guildID)
	}
	return cfg
}

// Flush retries saves that failed earlier.
func (s *Store) Flush(ctx context.Context) error {
	start := time.Now()
	pending := s.Pending()
	err := errors.Join(
		s.Guilds.Flush(ctx),
		s.Users.Flush(ctx),
		s.Tickets.Flush(ctx),
	)
	if pending > 0 {
		slog.Info("Flushed pending records",
			slog.String("type", "db"),
			slog.Int("pending", pending),
			slog.Int("remaining", s.Pending()),
			slog.Duration("took", time.Since(start)),
		)
	}
	return err
}

func (s *Store) Pending() int {
	return s.Guilds.Pending() + s.Users.Pending() + s.Tickets.Pending()
}

// Close flushes what it can and closes the backend.
func (s *Store) Close(ctx context.Context) error {
	flushErr := s.Flush(ctx)
	if flushErr != nil {
		slog.Error("Unsaved records at shutdown",
			slog.String("type", "db"),
			slog.Int("pending", s.Pending()),
			slog.Any("error", flushErr),
		)
	}
	return errors.Join(flushErr, s.backend.Close())
}

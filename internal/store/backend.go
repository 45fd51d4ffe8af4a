package store

import (
	"context"

	"github.com/disgoorg/snowflake/v2"

	"github.com/wardenbot/warden/internal/domain/models"
)

//go:generate mockgen -source=backend.go -destination=mock/backend.go -package=mock

// Backend is the durable side of the store. Implementations return
// ErrNotFound for absent records and must be safe for concurrent use.
type Backend interface {
	LoadGuild(ctx context.Context, guildID snowflake.ID) (models.GuildConfig, error)
	SaveGuild(ctx context.Context, cfg models.GuildConfig) error

	LoadUser(ctx context.Context, key models.UserKey) (models.UserRecord, error)
	SaveUser(ctx context.Context, user models.UserRecord) error
	// SaveUsers persists all records or none of them.
	SaveUsers(ctx context.Context, users []models.UserRecord) error

	LoadTicket(ctx context.Context, id string) (models.Ticket, error)
	SaveTicket(ctx context.Context, ticket models.Ticket) error
	FindTicketByChannel(ctx context.Context, channelID snowflake.ID) (models.Ticket, error)

	LoadReminders(ctx context.Context) ([]models.Reminder, error)
	SaveReminder(ctx context.Context, reminder models.Reminder) error
	DeleteReminders(ctx context.Context, ids []string) error

	LoadGiveaways(ctx context.Context) ([]models.Giveaway, error)
	SaveGiveaway(ctx context.Context, giveaway models.Giveaway) error
	DeleteGiveaways(ctx context.Context, ids []string) error

	Snapshot(ctx context.Context) (Snapshot, error)
	Restore(ctx context.Context, snap Snapshot) error
	Close() error
}

const SnapshotVersion = 1

// Snapshot is a full, backend independent copy of the persisted state. It is
// used for backups and for moving data between backends.
type Snapshot struct {
	Version   int                  `json:"version"`
	Guilds    []models.GuildConfig `json:"guilds"`
	Users     []models.UserRecord  `json:"users"`
	Tickets   []models.Ticket      `json:"tickets"`
	Reminders []models.Reminder    `json:"reminders"`
	Giveaways []models.Giveaway    `json:"giveaways"`
}

// Normalize fills defaults on every record and replaces nil sections.
func (s *Snapshot) Normalize() {
	if s.Version == 0 {
		s.Version = SnapshotVersion
	}
	if s.Guilds == nil {
		s.Guilds = []models.GuildConfig{}
	}
	if s.Users == nil {
		s.Users = []models.UserRecord{}
	}
	if s.Tickets == nil {
		s.Tickets = []models.Ticket{}
	}
	if s.Reminders == nil {
		s.Reminders = []models.Reminder{}
	}
	if s.Giveaways == nil {
		s.Giveaways = []models.Giveaway{}
	}
	for i := range s.Guilds {
		s.Guilds[i].Normalize()
	}
	for i := range s.Users {
		s.Users[i].Normalize()
	}
}

package models

import (
	"time"

	"github.com/disgoorg/snowflake/v2"
	"github.com/uptrace/bun"

	domain "github.com/wardenbot/warden/internal/domain/models"
)

type Ticket struct {
	bun.BaseModel `bun:"table:tickets,alias:t"`

	ID        string    `bun:"id,pk"`
	GuildID   int64     `bun:"guild_id,notnull"`
	OpenerID  int64     `bun:"opener_id,notnull"`
	ChannelID int64     `bun:"channel_id,notnull,default:0"`
	Status    string    `bun:"status,notnull"`
	OpenedAt  time.Time `bun:"opened_at,notnull"`
	ClosedAt  time.Time `bun:"closed_at,nullzero"`
	ClosedBy  int64     `bun:"closed_by,notnull,default:0"`
}

func TicketFromDomain(t domain.Ticket) *Ticket {
	return &Ticket{
		ID:        t.ID,
		GuildID:   int64(t.GuildID),
		OpenerID:  int64(t.OpenerID),
		ChannelID: int64(t.ChannelID),
		Status:    string(t.Status),
		OpenedAt:  t.OpenedAt,
		ClosedAt:  t.ClosedAt,
		ClosedBy:  int64(t.ClosedBy),
	}
}

func (t *Ticket) Domain() domain.Ticket {
	status := domain.TicketStatus(t.Status)
	if status == "" {
		status = domain.TicketOpen
	}
	return domain.Ticket{
		ID:        t.ID,
		GuildID:   snowflake.ID(t.GuildID),
		OpenerID:  snowflake.ID(t.OpenerID),
		ChannelID: snowflake.ID(t.ChannelID),
		Status:    status,
		OpenedAt:  t.OpenedAt.UTC(),
		ClosedAt:  closedAt(t.ClosedAt),
		ClosedBy:  snowflake.ID(t.ClosedBy),
	}
}

func closedAt(t time.Time) time.Time {
	if t.IsZero() {
		return time.Time{}
	}
	return t.UTC()
}

type Reminder struct {
	bun.BaseModel `bun:"table:reminders,alias:r"`

	ID        string    `bun:"id,pk"`
	GuildID   int64     `bun:"guild_id,notnull,default:0"`
	UserID    int64     `bun:"user_id,notnull"`
	ChannelID int64     `bun:"channel_id,notnull,default:0"`
	DueAt     time.Time `bun:"due_at,notnull"`
	Text      string    `bun:"text,notnull"`
	CreatedAt time.Time `bun:"created_at,notnull"`
}

func ReminderFromDomain(r domain.Reminder) *Reminder {
	return &Reminder{
		ID:        r.ID,
		GuildID:   int64(r.GuildID),
		UserID:    int64(r.UserID),
		ChannelID: int64(r.ChannelID),
		DueAt:     r.DueAt,
		Text:      r.Text,
		CreatedAt: r.CreatedAt,
	}
}

func (r *Reminder) Domain() domain.Reminder {
	return domain.Reminder{
		ID:        r.ID,
		GuildID:   snowflake.ID(r.GuildID),
		UserID:    snowflake.ID(r.UserID),
		ChannelID: snowflake.ID(r.ChannelID),
		DueAt:     r.DueAt.UTC(),
		Text:      r.Text,
		CreatedAt: r.CreatedAt.UTC(),
	}
}

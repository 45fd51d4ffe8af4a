package models

import (
	"time"

	"github.com/disgoorg/snowflake/v2"
)

type TicketStatus string

const (
	TicketOpen   TicketStatus = "open"
	TicketClosed TicketStatus = "closed"
)

type Ticket struct {
	ID        string       `json:"id"`
	GuildID   snowflake.ID `json:"guild_id"`
	OpenerID  snowflake.ID `json:"opener_id"`
	ChannelID snowflake.ID `json:"channel_id,omitempty"`
	Status    TicketStatus `json:"status"`
	OpenedAt  time.Time    `json:"opened_at"`
	ClosedAt  time.Time    `json:"closed_at"`
	ClosedBy  snowflake.ID `json:"closed_by,omitempty"`
}

func (t Ticket) IsOpen() bool {
	return t.Status == TicketOpen
}

func (t Ticket) Opener() UserKey {
	return UserKey{GuildID: t.GuildID, UserID: t.OpenerID}
}

// Reminder is a due-time message owned by one user. GuildID is zero for
// reminders created in direct messages.
type Reminder struct {
	ID        string       `json:"id"`
	GuildID   snowflake.ID `json:"guild_id,omitempty"`
	UserID    snowflake.ID `json:"user_id"`
	ChannelID snowflake.ID `json:"channel_id,omitempty"`
	DueAt     time.Time    `json:"due_at"`
	Text      string       `json:"text"`
	CreatedAt time.Time    `json:"created_at"`
}

package models

import (
	"time"

	"github.com/disgoorg/snowflake/v2"
)

// GiveawayEmoji is the reaction members add to enter a giveaway.
const GiveawayEmoji = "🎉"

// Giveaway is a running prize draw attached to one announcement message.
type Giveaway struct {
	ID        string       `json:"id"`
	GuildID   snowflake.ID `json:"guild_id"`
	ChannelID snowflake.ID `json:"channel_id"`
	MessageID snowflake.ID `json:"message_id"`
	HostID    snowflake.ID `json:"host_id"`
	Prize     string       `json:"prize"`
	EndsAt    time.Time    `json:"ends_at"`
	CreatedAt time.Time    `json:"created_at"`
}

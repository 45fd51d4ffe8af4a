package engine

import (
	"time"

	"github.com/disgoorg/snowflake/v2"
)

type EventKind string

const (
	KindMessagePosted EventKind = "message_posted"
	KindReactionAdded EventKind = "reaction_added"
	KindMemberJoined  EventKind = "member_joined"
	KindMemberLeft    EventKind = "member_left"
	KindTimerTick     EventKind = "timer_tick"
)

// Event is an inbound community event.
type Event interface {
	Kind() EventKind
}

type MessagePosted struct {
	GuildID   snowflake.ID
	ChannelID snowflake.ID
	MessageID snowflake.ID
	UserID    snowflake.ID
	Content   string
	// At is the message time; the engine clock is used when zero.
	At  time.Time
	Bot bool
}

type ReactionAdded struct {
	GuildID   snowflake.ID
	ChannelID snowflake.ID
	MessageID snowflake.ID
	UserID    snowflake.ID
	Emoji     string
	// Count is the number of reactions with Emoji after this one was added.
	Count int
	Bot   bool
}

type MemberJoined struct {
	GuildID snowflake.ID
	UserID  snowflake.ID
	Bot     bool
}

type MemberLeft struct {
	GuildID snowflake.ID
	UserID  snowflake.ID
}

type TimerTick struct {
	Now time.Time
}

func (MessagePosted) Kind() EventKind { return KindMessagePosted }
func (ReactionAdded) Kind() EventKind { return KindReactionAdded }
func (MemberJoined) Kind() EventKind  { return KindMemberJoined }
func (MemberLeft) Kind() EventKind    { return KindMemberLeft }
func (TimerTick) Kind() EventKind     { return KindTimerTick }

// Package actions is the vocabulary engines use to ask the gateway for side
// effects. Engines return these values and never talk to Discord themselves.
package actions

import (
	"errors"
	"fmt"
	"time"

	"github.com/disgoorg/snowflake/v2"

	"github.com/wardenbot/warden/internal/domain/models"
)

type Kind string

const (
	KindMuteUser        Kind = "mute_user"
	KindUnmuteUser      Kind = "unmute_user"
	KindDeleteMessage   Kind = "delete_message"
	KindSendMessage     Kind = "send_message"
	KindCreateChannel   Kind = "create_channel"
	KindDeleteChannel   Kind = "delete_channel"
	KindDMUser          Kind = "dm_user"
	KindAddRole         Kind = "add_role"
	KindDeliverReminder Kind = "deliver_reminder"
	KindLevelUp         Kind = "level_up"
	KindNotice          Kind = "notice"
	KindGreet           Kind = "greet"
	KindStarPost        Kind = "star_post"
	KindModLog          Kind = "mod_log"
	KindDrawGiveaway    Kind = "draw_giveaway"
)

type Action interface {
	Kind() Kind
}

type MuteUser struct {
	GuildID  snowflake.ID
	UserID   snowflake.ID
	Duration time.Duration
	Reason   string
}

type UnmuteUser struct {
	GuildID snowflake.ID
	UserID  snowflake.ID
}

type DeleteMessage struct {
	GuildID   snowflake.ID
	ChannelID snowflake.ID
	MessageID snowflake.ID
}

type SendMessage struct {
	GuildID   snowflake.ID
	ChannelID snowflake.ID
	Content   string
}

// Permission is the subset of channel permissions ticket channels need.
type Permission uint8

const (
	PermView Permission = 1 << iota
	PermSend
)

type OverwriteTarget uint8

const (
	TargetEveryone OverwriteTarget = iota
	TargetMember
	TargetBot
)

type Overwrite struct {
	Target OverwriteTarget
	UserID snowflake.ID
	Allow  Permission
	Deny   Permission
}

type CreateChannel struct {
	GuildID    snowflake.ID
	TicketID   string
	OpenerID   snowflake.ID
	Name       string
	Overwrites []Overwrite
}

type DeleteChannel struct {
	GuildID   snowflake.ID
	ChannelID snowflake.ID
	Reason    string
}

type DMUser struct {
	UserID  snowflake.ID
	Content string
}

type AddRole struct {
	GuildID snowflake.ID
	UserID  snowflake.ID
	RoleID  snowflake.ID
}

type DeliverReminder struct {
	Reminder models.Reminder
}

// DrawGiveaway asks the collaborator to collect the entries of an ended
// giveaway and announce a winner.
type DrawGiveaway struct {
	Giveaway models.Giveaway
}

type LevelUp struct {
	GuildID   snowflake.ID
	UserID    snowflake.ID
	ChannelID snowflake.ID
	Level     int
}

type NoticeReason string

const (
	NoticeFiltered NoticeReason = "filtered"
	NoticeSpam     NoticeReason = "spam"
)

// Notice tells a user in channel why the bot intervened.
type Notice struct {
	GuildID   snowflake.ID
	ChannelID snowflake.ID
	UserID    snowflake.ID
	Reason    NoticeReason
}

type GreetKind string

const (
	GreetWelcome GreetKind = "welcome"
	GreetGoodbye GreetKind = "goodbye"
)

type Greet struct {
	GuildID   snowflake.ID
	ChannelID snowflake.ID
	UserID    snowflake.ID
	Type      GreetKind
	Template  string
}

type StarPost struct {
	GuildID         snowflake.ID
	BoardChannelID  snowflake.ID
	SourceChannelID snowflake.ID
	MessageID       snowflake.ID
	Emoji           string
	Count           int
}

type ModEvent string

const (
	ModWarn       ModEvent = "warn"
	ModEscalation ModEvent = "escalation"
	ModSpam       ModEvent = "spam"
	ModFiltered   ModEvent = "filtered"
	ModMute       ModEvent = "mute"
	ModUnmute     ModEvent = "unmute"
	ModClearWarns ModEvent = "clear_warnings"
	ModTicket     ModEvent = "ticket_closed"
)

// ModLog is an audit entry for the guild's log channel.
type ModLog struct {
	GuildID   snowflake.ID
	ChannelID snowflake.ID
	UserID    snowflake.ID
	ActorID   snowflake.ID
	Event     ModEvent
	Reason    string
	Count     int
}

func (MuteUser) Kind() Kind        { return KindMuteUser }
func (UnmuteUser) Kind() Kind      { return KindUnmuteUser }
func (DeleteMessage) Kind() Kind   { return KindDeleteMessage }
func (SendMessage) Kind() Kind     { return KindSendMessage }
func (CreateChannel) Kind() Kind   { return KindCreateChannel }
func (DeleteChannel) Kind() Kind   { return KindDeleteChannel }
func (DMUser) Kind() Kind          { return KindDMUser }
func (AddRole) Kind() Kind         { return KindAddRole }
func (DeliverReminder) Kind() Kind { return KindDeliverReminder }
func (LevelUp) Kind() Kind         { return KindLevelUp }
func (Notice) Kind() Kind          { return KindNotice }
func (Greet) Kind() Kind           { return KindGreet }
func (StarPost) Kind() Kind        { return KindStarPost }
func (ModLog) Kind() Kind          { return KindModLog }
func (DrawGiveaway) Kind() Kind    { return KindDrawGiveaway }

// ModLogFor returns a ModLog when the guild has a log channel configured.
func ModLogFor(cfg models.GuildConfig, entry ModLog) []Action {
	if cfg.LogChannel == 0 {
		return nil
	}
	entry.GuildID = cfg.GuildID
	entry.ChannelID = cfg.LogChannel
	return []Action{entry}
}

// ErrPermissionDenied is reported when the platform refuses an action.
var ErrPermissionDenied = errors.New("permission denied")

// Failure wraps an error raised while executing an action. Engine state is
// not rolled back when an action fails.
type Failure struct {
	Action Action
	Err    error
}

func (f *Failure) Error() string {
	return fmt.Sprintf("action %s failed: %v", f.Action.Kind(), f.Err)
}

func (f *Failure) Unwrap() error {
	return f.Err
}

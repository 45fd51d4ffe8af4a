package models

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/disgoorg/snowflake/v2"
)

// UserKey identifies a member inside one guild.
type UserKey struct {
	GuildID snowflake.ID
	UserID  snowflake.ID
}

func (k UserKey) String() string {
	return k.GuildID.String() + ":" + k.UserID.String()
}

// Less orders keys by guild and then user. Multi-record updates lock in this order.
func (k UserKey) Less(o UserKey) bool {
	if k.GuildID != o.GuildID {
		return k.GuildID < o.GuildID
	}
	return k.UserID < o.UserID
}

func ParseUserKey(s string) (UserKey, error) {
	guild, user, ok := strings.Cut(s, ":")
	if !ok {
		return UserKey{}, fmt.Errorf("invalid user key %q", s)
	}
	guildID, err := snowflake.Parse(guild)
	if err != nil {
		return UserKey{}, fmt.Errorf("invalid guild id in key %q: %w", s, err)
	}
	userID, err := snowflake.Parse(user)
	if err != nil {
		return UserKey{}, fmt.Errorf("invalid user id in key %q: %w", s, err)
	}
	return UserKey{GuildID: guildID, UserID: userID}, nil
}

type Warning struct {
	Reason    string       `json:"reason"`
	IssuerID  snowflake.ID `json:"issuer_id,omitempty"`
	Automated bool         `json:"automated"`
	IssuedAt  time.Time    `json:"issued_at"`
}

// UserRecord is the per guild state of one member: progression, moderation
// history, wallet and ticket slot.
type UserRecord struct {
	GuildID           snowflake.ID `json:"guild_id"`
	UserID            snowflake.ID `json:"user_id"`
	XP                int64        `json:"xp"`
	Level             int          `json:"level"`
	WarnCount         int          `json:"warn_count"`
	Warnings          []Warning    `json:"warnings"`
	Balance           int64        `json:"balance"`
	OpenTicketID      string       `json:"open_ticket_id,omitempty"`
	OpenTicketChannel snowflake.ID `json:"open_ticket_channel,omitempty"`
	DailyClaimDate    string       `json:"daily_claim_date,omitempty"`
}

func NewUserRecord(key UserKey) UserRecord {
	return UserRecord{
		GuildID:  key.GuildID,
		UserID:   key.UserID,
		Level:    1,
		Warnings: []Warning{},
	}
}

func (u UserRecord) Key() UserKey {
	return UserKey{GuildID: u.GuildID, UserID: u.UserID}
}

func (u *UserRecord) Normalize() {
	if u.Level < 1 {
		u.Level = 1
	}
	if u.XP < 0 {
		u.XP = 0
	}
	if u.Balance < 0 {
		u.Balance = 0
	}
	if u.WarnCount < 0 {
		u.WarnCount = 0
	}
	if u.Warnings == nil {
		u.Warnings = []Warning{}
	}
}

func (u UserRecord) Clone() UserRecord {
	u.Warnings = slices.Clone(u.Warnings)
	if u.Warnings == nil {
		u.Warnings = []Warning{}
	}
	return u
}

func (u UserRecord) HasOpenTicket() bool {
	return u.OpenTicketID != ""
}

package models

import (
	"time"

	"github.com/disgoorg/snowflake/v2"
	"github.com/uptrace/bun"

	domain "github.com/wardenbot/warden/internal/domain/models"
)

// Member is the per guild user record.
type Member struct {
	bun.BaseModel `bun:"table:guild_members,alias:gm"`

	GuildID           int64            `bun:"guild_id,pk"`
	UserID            int64            `bun:"user_id,pk"`
	XP                int64            `bun:"xp,notnull,default:0"`
	Level             int              `bun:"level,notnull,default:1"`
	WarnCount         int              `bun:"warn_count,notnull,default:0"`
	Warnings          []domain.Warning `bun:"warnings,type:jsonb"`
	Balance           int64            `bun:"balance,notnull,default:0"`
	OpenTicketID      string           `bun:"open_ticket_id,notnull,default:''"`
	OpenTicketChannel int64            `bun:"open_ticket_channel,notnull,default:0"`
	DailyClaimDate    string           `bun:"daily_claim_date,notnull,default:''"`
	UpdatedAt         time.Time        `bun:"updated_at,notnull,default:current_timestamp"`
}

func MemberFromDomain(u domain.UserRecord) *Member {
	return &Member{
		GuildID:           int64(u.GuildID),
		UserID:            int64(u.UserID),
		XP:                u.XP,
		Level:             u.Level,
		WarnCount:         u.WarnCount,
		Warnings:          u.Warnings,
		Balance:           u.Balance,
		OpenTicketID:      u.OpenTicketID,
		OpenTicketChannel: int64(u.OpenTicketChannel),
		DailyClaimDate:    u.DailyClaimDate,
		UpdatedAt:         time.Now(),
	}
}

func (m *Member) Domain() domain.UserRecord {
	u := domain.UserRecord{
		GuildID:           snowflake.ID(m.GuildID),
		UserID:            snowflake.ID(m.UserID),
		XP:                m.XP,
		Level:             m.Level,
		WarnCount:         m.WarnCount,
		Warnings:          m.Warnings,
		Balance:           m.Balance,
		OpenTicketID:      m.OpenTicketID,
		OpenTicketChannel: snowflake.ID(m.OpenTicketChannel),
		DailyClaimDate:    m.DailyClaimDate,
	}
	u.Normalize()
	return u
}

package moderation

import (
	"strings"
	"time"

	"github.com/disgoorg/snowflake/v2"

	"github.com/wardenbot/warden/internal/domain/actions"
	"github.com/wardenbot/warden/internal/domain/models"
	"github.com/wardenbot/warden/internal/domain/ratewindow"
)

const SpamMute = 5 * time.Minute

// MatchFilteredWord reports the first filtered word contained in text,
// ignoring case.
func MatchFilteredWord(words []string, text string) (string, bool) {
	lower := strings.ToLower(text)
	for _, w := range words {
		if w != "" && strings.Contains(lower, strings.ToLower(w)) {
			return w, true
		}
	}
	return "", false
}

// SpamGuard mutes members who post faster than their guild allows.
type SpamGuard struct {
	windows *ratewindow.Windows
	muteFor time.Duration
}

func NewSpamGuard(windows *ratewindow.Windows, muteFor time.Duration) *SpamGuard {
	if muteFor <= 0 {
		muteFor = SpamMute
	}
	return &SpamGuard{windows: windows, muteFor: muteFor}
}

// Check records one message. On a trip the member's window is cleared so the
// next burst starts counting from zero.
func (g *SpamGuard) Check(cfg models.GuildConfig, key models.UserKey, channelID snowflake.ID, now time.Time) []actions.Action {
	if !cfg.AntiSpam.Enabled {
		return nil
	}
	if !g.windows.Trip(key, now, cfg.AntiSpam.Threshold, cfg.AntiSpam.Window()) {
		return nil
	}

	acts := []actions.Action{
		actions.MuteUser{
			GuildID:  key.GuildID,
			UserID:   key.UserID,
			Duration: g.muteFor,
			Reason:   "spam",
		},
		actions.Notice{
			GuildID:   key.GuildID,
			ChannelID: channelID,
			UserID:    key.UserID,
			Reason:    actions.NoticeSpam,
		},
	}
	return append(acts, actions.ModLogFor(cfg, actions.ModLog{
		UserID: key.UserID,
		Event:  actions.ModSpam,
		Reason: "message rate exceeded",
	})...)
}

package community

import (
	"fmt"

	"github.com/disgoorg/snowflake/v2"
	lru "github.com/hashicorp/golang-lru"

	"github.com/wardenbot/warden/internal/domain/actions"
	"github.com/wardenbot/warden/internal/domain/models"
)

const DefaultStarCacheSize = 4096

// Reaction is a reaction snapshot on one message.
type Reaction struct {
	GuildID   snowflake.ID
	ChannelID snowflake.ID
	MessageID snowflake.ID
	Emoji     string
	Count     int
}

// Starboard reposts messages that collect enough of the guild's star emoji.
// Each message is posted once while it stays in the recent-post cache.
type Starboard struct {
	posted *lru.Cache
}

func NewStarboard(size int) (*Starboard, error) {
	if size <= 0 {
		size = DefaultStarCacheSize
	}
	cache, err := lru.New(size)
	if err != nil {
		return nil, fmt.Errorf("failed to create starboard cache: %w", err)
	}
	return &Starboard{posted: cache}, nil
}

func (s *Starboard) OnReaction(cfg models.GuildConfig, r Reaction) []actions.Action {
	sb := cfg.Starboard
	if !sb.Enabled() || r.ChannelID == sb.ChannelID {
		return nil
	}
	if r.Emoji != sb.Emoji || r.Count < sb.Threshold {
		return nil
	}
	if seen, _ := s.posted.ContainsOrAdd(r.MessageID, struct{}{}); seen {
		return nil
	}
	return []actions.Action{actions.StarPost{
		GuildID:         r.GuildID,
		BoardChannelID:  sb.ChannelID,
		SourceChannelID: r.ChannelID,
		MessageID:       r.MessageID,
		Emoji:           r.Emoji,
		Count:           r.Count,
	}}
}

// Forget allows a message to be posted again, e.g. after a failed post.
func (s *Starboard) Forget(messageID snowflake.ID) {
	s.posted.Remove(messageID)
}

func (s *Starboard) Posted() int {
	return s.posted.Len()
}

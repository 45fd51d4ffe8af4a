package admin

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"time"

	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/handler"

	"github.com/wardenbot/warden/internal/domain/models"
	"github.com/wardenbot/warden/warden"
	"github.com/wardenbot/warden/warden/utils"
)

// inputError is returned from an update func to refuse the change with a
// message for the admin. Nothing is saved.
type inputError string

func (e inputError) Error() string { return string(e) }

// updateGuild applies fn to the guild's config and answers with the message
// built from the stored result.
func updateGuild(b *warden.Bot, e *handler.CommandEvent, name string, fn func(*models.GuildConfig) error, reply func(models.GuildConfig) string) error {
	if !utils.HasPermission(e, discord.PermissionManageGuild) {
		return utils.EH.CreatePermissionError(e, "change server settings")
	}
	guildID := e.GuildID()
	if guildID == nil {
		return utils.EH.CreateUserError(e, "This command only works in a server.")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	cfg, err := b.Engine.UpdateGuild(ctx, *guildID, fn)
	var input inputError
	if errors.As(err, &input) {
		return utils.EH.CreateUserError(e, input.Error())
	}
	if !utils.Kept(name, err) {
		utils.LogCommandError(name, err, "guild_id", guildID.String())
		return utils.EH.CreateSystemError(e, "Failed to save the setting. Please try again later.")
	}
	return utils.EH.CreateEphemeralSuccess(e, reply(cfg))
}

var customEmoji = regexp.MustCompile(`^<a?:(\w+):(\d+)>$`)

// emojiKey converts the emoji as typed into the form reactions are matched
// by: the unicode emoji itself or name:id for custom emoji.
func emojiKey(s string) string {
	s = strings.TrimSpace(s)
	if m := customEmoji.FindStringSubmatch(s); m != nil {
		return m[1] + ":" + m[2]
	}
	return s
}

// emojiDisplay reverses emojiKey for messages.
func emojiDisplay(key string) string {
	if name, id, ok := strings.Cut(key, ":"); ok {
		return "<:" + name + ":" + id + ">"
	}
	return key
}

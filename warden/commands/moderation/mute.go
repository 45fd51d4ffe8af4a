package moderation

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/handler"

	"github.com/wardenbot/warden/internal/domain/moderation"
	"github.com/wardenbot/warden/internal/domain/reminders"
	"github.com/wardenbot/warden/warden"
	"github.com/wardenbot/warden/warden/utils"
)

var Mute = discord.SlashCommandCreate{
	Name:        "mute",
	Description: "Time out a member",
	Options: []discord.ApplicationCommandOption{
		discord.ApplicationCommandOptionUser{
			Name:        "user",
			Description: "Member to mute",
			Required:    true,
		},
		discord.ApplicationCommandOptionString{
			Name:        "duration",
			Description: "How long, e.g. 30m, 2h, 1d (max 28d)",
			Required:    true,
		},
		discord.ApplicationCommandOptionString{
			Name:        "reason",
			Description: "Why the member is muted",
			Required:    false,
		},
	},
}

var Unmute = discord.SlashCommandCreate{
	Name:        "unmute",
	Description: "Remove a member's timeout",
	Options: []discord.ApplicationCommandOption{
		discord.ApplicationCommandOptionUser{
			Name:        "user",
			Description: "Member to unmute",
			Required:    true,
		},
	},
}

var errMuteTooLong = errors.New("mute is longer than 28 days")

// parseMute accepts the same 30s/10m/2h/1d syntax as reminders.
func parseMute(s string) (time.Duration, error) {
	d, err := reminders.ParseDelay(s)
	if err != nil {
		return 0, err
	}
	if d > moderation.MaxTimeout {
		return 0, errMuteTooLong
	}
	return d, nil
}

func MuteHandler(b *warden.Bot) handler.CommandHandler {
	return func(e *handler.CommandEvent) error {
		if !utils.HasPermission(e, discord.PermissionModerateMembers) {
			return utils.EH.CreatePermissionError(e, "mute members")
		}

		data := e.SlashCommandInteractionData()
		target := data.User("user")
		key, err := utils.GuildKey(e, target.ID)
		if err != nil {
			return utils.EH.CreateUserError(e, "This command only works in a server.")
		}
		if target.ID == e.User().ID {
			return utils.EH.CreateUserError(e, "You cannot mute yourself.")
		}

		d, err := parseMute(data.String("duration"))
		if err != nil {
			return utils.EH.CreateUserError(e, "Use a duration like `30m`, `2h` or `1d`, at most 28 days.")
		}
		reason := strings.TrimSpace(data.String("reason"))
		if reason == "" {
			reason = defaultReason
		}

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		b.Dispatch(ctx, b.Engine.Escalation.Mute(ctx, key, d, reason, e.User().ID))
		return utils.EH.CreateEphemeralSuccess(e, fmt.Sprintf("Muted %s for %s: %s",
			utils.Mention(target.ID), utils.FormatDuration(d), reason))
	}
}

func UnmuteHandler(b *warden.Bot) handler.CommandHandler {
	return func(e *handler.CommandEvent) error {
		if !utils.HasPermission(e, discord.PermissionModerateMembers) {
			return utils.EH.CreatePermissionError(e, "unmute members")
		}

		target := e.SlashCommandInteractionData().User("user")
		key, err := utils.GuildKey(e, target.ID)
		if err != nil {
			return utils.EH.CreateUserError(e, "This command only works in a server.")
		}

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		b.Dispatch(ctx, b.Engine.Escalation.Unmute(ctx, key, e.User().ID))
		return utils.EH.CreateEphemeralSuccess(e, fmt.Sprintf("Unmuted %s.", utils.Mention(target.ID)))
	}
}

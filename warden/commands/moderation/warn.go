package moderation

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/handler"
	"github.com/disgoorg/paginator"

	"github.com/wardenbot/warden/internal/domain/models"
	"github.com/wardenbot/warden/warden"
	"github.com/wardenbot/warden/warden/utils"
)

const (
	defaultReason    = "No reason given"
	warningsPerPage  = 5
	maxReasonDisplay = 200
)

var Warn = discord.SlashCommandCreate{
	Name:        "warn",
	Description: "Warn a member. Reaching the server's warn limit mutes them",
	Options: []discord.ApplicationCommandOption{
		discord.ApplicationCommandOptionUser{
			Name:        "user",
			Description: "Member to warn",
			Required:    true,
		},
		discord.ApplicationCommandOptionString{
			Name:        "reason",
			Description: "Why the member is warned",
			Required:    false,
		},
	},
}

var Warnings = discord.SlashCommandCreate{
	Name:        "warnings",
	Description: "Show a member's warning history",
	Options: []discord.ApplicationCommandOption{
		discord.ApplicationCommandOptionUser{
			Name:        "user",
			Description: "Member to look up",
			Required:    true,
		},
	},
}

var ClearWarn = discord.SlashCommandCreate{
	Name:        "clearwarn",
	Description: "Clear a member's warnings",
	Options: []discord.ApplicationCommandOption{
		discord.ApplicationCommandOptionUser{
			Name:        "user",
			Description: "Member whose warnings are cleared",
			Required:    true,
		},
	},
}

func WarnHandler(b *warden.Bot) handler.CommandHandler {
	return func(e *handler.CommandEvent) error {
		if !utils.HasPermission(e, discord.PermissionModerateMembers) {
			return utils.EH.CreatePermissionError(e, "warn members")
		}

		data := e.SlashCommandInteractionData()
		target := data.User("user")
		if target.Bot {
			return utils.EH.CreateUserError(e, "Bots cannot be warned.")
		}
		key, err := utils.GuildKey(e, target.ID)
		if err != nil {
			return utils.EH.CreateUserError(e, "This command only works in a server.")
		}
		reason := strings.TrimSpace(data.String("reason"))
		if reason == "" {
			reason = defaultReason
		}

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		res, err := b.Engine.Escalation.AddWarning(ctx, key, reason, e.User().ID, false)
		if !utils.Kept("warn", err) {
			utils.LogCommandError("warn", err, "target_id", target.ID.String())
			return utils.EH.CreateSystemError(e, "Failed to record the warning. Please try again later.")
		}
		b.Dispatch(ctx, res.Actions)

		limit := b.Store.GuildOrDefault(ctx, key.GuildID).WarnLimit
		mute := time.Duration(b.Cfg.Engine.EscalationMuteMinutes) * time.Minute
		return utils.EH.CreateEphemeralSuccess(e, warnSummary(target.ID.String(), res.Count, limit, res.Escalated, mute, reason))
	}
}

func warnSummary(userID string, count int, limit int, escalated bool, mute time.Duration, reason string) string {
	msg := fmt.Sprintf("Warned <@%s> (%d/%d): %s", userID, count, limit, reason)
	if escalated {
		msg += fmt.Sprintf("\nThe warning limit was reached, they are muted for %s.", utils.FormatDuration(mute))
	}
	return msg
}

func WarningsHandler(b *warden.Bot) handler.CommandHandler {
	return func(e *handler.CommandEvent) error {
		if !utils.HasPermission(e, discord.PermissionModerateMembers) {
			return utils.EH.CreatePermissionError(e, "view warnings")
		}

		target := e.SlashCommandInteractionData().User("user")
		key, err := utils.GuildKey(e, target.ID)
		if err != nil {
			return utils.EH.CreateUserError(e, "This command only works in a server.")
		}

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		rec, err := b.Engine.Escalation.Warnings(ctx, key)
		if err != nil {
			utils.LogCommandError("warnings", err, "target_id", target.ID.String())
			return utils.EH.CreateSystemError(e, "Failed to load warnings. Please try again later.")
		}
		if len(rec.Warnings) == 0 {
			return utils.EH.CreateInfoEmbed(e, fmt.Sprintf("%s has no warnings.", utils.Mention(target.ID)))
		}

		pages := (len(rec.Warnings) + warningsPerPage - 1) / warningsPerPage
		return b.Paginator.Create(e.Respond, paginator.Pages{
			ID:      e.ID().String(),
			Creator: e.User().ID,
			PageFunc: func(page int, embed *discord.EmbedBuilder) {
				embed.
					SetTitle(fmt.Sprintf("Warnings for %s", target.Username)).
					SetDescription(warningPage(rec, page)).
					SetColor(utils.WarningColor).
					SetFooter(fmt.Sprintf("Page %d/%d • %d total • %d active", page+1, pages, len(rec.Warnings), rec.WarnCount), "")
			},
			Pages:      pages,
			ExpireMode: paginator.ExpireModeAfterLastUsage,
		}, true)
	}
}

// warningPage lists the newest warnings first.
func warningPage(rec models.UserRecord, page int) string {
	var sb strings.Builder
	total := len(rec.Warnings)
	start := page * warningsPerPage
	for i := start; i < min(start+warningsPerPage, total); i++ {
		w := rec.Warnings[total-1-i]
		by := "automod"
		if !w.Automated {
			by = utils.Mention(w.IssuerID)
		}
		fmt.Fprintf(&sb, "**#%d** %s by %s\n%s\n\n",
			total-i, utils.Timestamp(w.IssuedAt), by, utils.Truncate(w.Reason, maxReasonDisplay))
	}
	return strings.TrimSpace(sb.String())
}

func ClearWarnHandler(b *warden.Bot) handler.CommandHandler {
	return func(e *handler.CommandEvent) error {
		if !utils.HasPermission(e, discord.PermissionModerateMembers) {
			return utils.EH.CreatePermissionError(e, "clear warnings")
		}

		target := e.SlashCommandInteractionData().User("user")
		key, err := utils.GuildKey(e, target.ID)
		if err != nil {
			return utils.EH.CreateUserError(e, "This command only works in a server.")
		}

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		acts, err := b.Engine.Escalation.ResetWarnings(ctx, key, e.User().ID)
		if !utils.Kept("clearwarn", err) {
			utils.LogCommandError("clearwarn", err, "target_id", target.ID.String())
			return utils.EH.CreateSystemError(e, "Failed to clear warnings. Please try again later.")
		}
		b.Dispatch(ctx, acts)
		return utils.EH.CreateEphemeralSuccess(e, fmt.Sprintf("Cleared warnings for %s.", utils.Mention(target.ID)))
	}
}

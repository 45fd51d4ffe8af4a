package admin

import (
	"context"
	"fmt"
	"time"

	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/handler"
	"github.com/disgoorg/snowflake/v2"

	"github.com/wardenbot/warden/internal/domain/models"
	"github.com/wardenbot/warden/warden"
	"github.com/wardenbot/warden/warden/utils"
)

var Settings = discord.SlashCommandCreate{
	Name:        "settings",
	Description: "Show this server's configuration",
}

var ResetUser = discord.SlashCommandCreate{
	Name:        "resetuser",
	Description: "Reset a member's level, coins and warnings",
	Options: []discord.ApplicationCommandOption{
		discord.ApplicationCommandOptionUser{
			Name:        "user",
			Description: "Member to reset",
			Required:    true,
		},
	},
}

func SettingsHandler(b *warden.Bot) handler.CommandHandler {
	return func(e *handler.CommandEvent) error {
		if !utils.HasPermission(e, discord.PermissionManageGuild) {
			return utils.EH.CreatePermissionError(e, "view server settings")
		}
		guildID := e.GuildID()
		if guildID == nil {
			return utils.EH.CreateUserError(e, "This command only works in a server.")
		}

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		cfg := b.Store.GuildOrDefault(ctx, *guildID)
		return e.CreateMessage(discord.MessageCreate{
			Embeds: []discord.Embed{{
				Title:  "Server settings",
				Color:  utils.NeutralColor,
				Fields: settingsFields(cfg),
			}},
			Flags: discord.MessageFlagEphemeral,
		})
	}
}

func channelOrOff(id snowflake.ID) string {
	if id == 0 {
		return "off"
	}
	return utils.ChannelMention(id)
}

func greetingSummary(g models.Greeting) string {
	if !g.Enabled || g.ChannelID == 0 {
		return "off"
	}
	return fmt.Sprintf("%s\n`%s`", utils.ChannelMention(g.ChannelID), utils.Truncate(g.Template, 200))
}

func settingsFields(cfg models.GuildConfig) []discord.EmbedField {
	inline := utils.Ptr(true)

	spam := "off"
	if cfg.AntiSpam.Enabled {
		spam = fmt.Sprintf("%d msgs / %ds", cfg.AntiSpam.Threshold, cfg.AntiSpam.WindowSeconds)
	}
	star := "off"
	if cfg.Starboard.Enabled() {
		star = fmt.Sprintf("%s at %d %s", utils.ChannelMention(cfg.Starboard.ChannelID),
			cfg.Starboard.Threshold, emojiDisplay(cfg.Starboard.Emoji))
	}
	role := "off"
	if cfg.AutoRole != 0 {
		role = fmt.Sprintf("<@&%s>", cfg.AutoRole)
	}
	words := "none"
	if n := len(cfg.FilteredWords); n > 0 {
		words = fmt.Sprintf("%d (see `/filter list`)", n)
	}

	return []discord.EmbedField{
		{Name: "Mod log", Value: channelOrOff(cfg.LogChannel), Inline: inline},
		{Name: "Announcements", Value: channelOrOff(cfg.AnnounceChannel), Inline: inline},
		{Name: "Warn limit", Value: fmt.Sprint(cfg.WarnLimit), Inline: inline},
		{Name: "Anti-spam", Value: spam, Inline: inline},
		{Name: "Filtered words", Value: words, Inline: inline},
		{Name: "Auto role", Value: role, Inline: inline},
		{Name: "Starboard", Value: star},
		{Name: "Welcome", Value: greetingSummary(cfg.Welcome)},
		{Name: "Goodbye", Value: greetingSummary(cfg.Goodbye)},
	}
}

func ResetUserHandler(b *warden.Bot) handler.CommandHandler {
	return func(e *handler.CommandEvent) error {
		if !utils.HasPermission(e, discord.PermissionAdministrator) {
			return utils.EH.CreatePermissionError(e, "reset members")
		}
		target := e.SlashCommandInteractionData().User("user")
		key, err := utils.GuildKey(e, target.ID)
		if err != nil {
			return utils.EH.CreateUserError(e, "This command only works in a server.")
		}

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err = b.Engine.Ledger.Reset(ctx, key); !utils.Kept("resetuser", err) {
			utils.LogCommandError("resetuser", err, "target_id", target.ID.String())
			return utils.EH.CreateSystemError(e, "Failed to reset the member. Please try again later.")
		}
		return utils.EH.CreateEphemeralSuccess(e, fmt.Sprintf("Reset %s's level, coins and warnings.", utils.Mention(target.ID)))
	}
}

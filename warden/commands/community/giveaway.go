package community

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/handler"
	"github.com/disgoorg/disgo/rest"
	"github.com/sahilm/fuzzy"

	"github.com/wardenbot/warden/internal/domain/actions"
	"github.com/wardenbot/warden/internal/domain/giveaways"
	"github.com/wardenbot/warden/internal/domain/models"
	"github.com/wardenbot/warden/internal/domain/reminders"
	"github.com/wardenbot/warden/warden"
	"github.com/wardenbot/warden/warden/utils"
)

var Giveaway = discord.SlashCommandCreate{
	Name:        "giveaway",
	Description: "Run prize giveaways",
	Options: []discord.ApplicationCommandOption{
		discord.ApplicationCommandOptionSubCommand{
			Name:        "start",
			Description: "Start a giveaway in this channel",
			Options: []discord.ApplicationCommandOption{
				discord.ApplicationCommandOptionString{
					Name:        "duration",
					Description: "How long it runs, such as 10m, 2h or 1d",
					Required:    true,
				},
				discord.ApplicationCommandOptionString{
					Name:        "prize",
					Description: "What the winner gets",
					Required:    true,
					MaxLength:   utils.Ptr(giveaways.MaxPrizeLen),
				},
			},
		},
		discord.ApplicationCommandOptionSubCommand{
			Name:        "end",
			Description: "End a running giveaway now",
			Options: []discord.ApplicationCommandOption{
				discord.ApplicationCommandOptionString{
					Name:         "id",
					Description:  "Giveaway to end",
					Required:     true,
					Autocomplete: true,
				},
			},
		},
		discord.ApplicationCommandOptionSubCommand{
			Name:        "list",
			Description: "List the running giveaways",
		},
	},
}

func GiveawayStartHandler(b *warden.Bot) handler.CommandHandler {
	return func(e *handler.CommandEvent) error {
		guildID := e.GuildID()
		if guildID == nil {
			return utils.EH.CreateUserError(e, "Giveaways only run in servers.")
		}
		if !utils.HasPermission(e, discord.PermissionManageMessages) {
			return utils.EH.CreatePermissionError(e, "start giveaways")
		}

		data := e.SlashCommandInteractionData()
		duration, err := reminders.ParseDelay(data.String("duration"))
		if err != nil || duration > giveaways.MaxDuration {
			return utils.EH.CreateUserError(e, "Use a duration like `10m`, `2h` or `1d`, at most 30 days.")
		}
		prize := strings.TrimSpace(data.String("prize"))
		if prize == "" {
			return utils.EH.CreateUserError(e, "The prize is empty.")
		}
		if len(b.Engine.Giveaways.Running(*guildID)) >= giveaways.MaxPerGuild {
			return utils.EH.CreateBusinessLogicError(e, fmt.Sprintf("This server already has %d running giveaways.", giveaways.MaxPerGuild))
		}

		if err = e.DeferCreateMessage(true); err != nil {
			return err
		}

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		channelID := e.Channel().ID()
		hostID := e.User().ID
		client := b.Client.Rest()
		announcement, err := client.CreateMessage(channelID, discord.MessageCreate{
			Embeds: []discord.Embed{b.Render.GiveawayAnnouncement(prize, hostID, b.Clock.Now().Add(duration))},
		}, rest.WithCtx(ctx))
		if err != nil {
			utils.LogCommandError("giveaway start", err, "channel_id", channelID.String())
			return giveawayReply(e, "I could not post the giveaway in this channel.")
		}
		if err = client.AddReaction(channelID, announcement.ID, models.GiveawayEmoji, rest.WithCtx(ctx)); err != nil {
			utils.LogCommandError("giveaway start", err, "message_id", announcement.ID.String())
		}

		g, err := b.Engine.Giveaways.Start(ctx, giveaways.Draft{
			GuildID:   *guildID,
			ChannelID: channelID,
			MessageID: announcement.ID,
			HostID:    hostID,
			Prize:     prize,
			Duration:  duration,
		})
		if !utils.Kept("giveaway start", err) {
			utils.LogCommandError("giveaway start", err)
			_ = client.DeleteMessage(channelID, announcement.ID, rest.WithCtx(ctx))
			if errors.Is(err, giveaways.ErrTooMany) {
				return giveawayReply(e, "This server has too many running giveaways.")
			}
			return giveawayReply(e, "Failed to start the giveaway. Please try again later.")
		}
		return giveawayReply(e, fmt.Sprintf("Giveaway `%s` started, it ends %s.", shortID(g.ID), utils.Timestamp(g.EndsAt)))
	}
}

func giveawayReply(e *handler.CommandEvent, content string) error {
	_, err := e.UpdateInteractionResponse(discord.MessageUpdate{Content: &content})
	return err
}

func GiveawayEndHandler(b *warden.Bot) handler.CommandHandler {
	return func(e *handler.CommandEvent) error {
		guildID := e.GuildID()
		if guildID == nil {
			return utils.EH.CreateUserError(e, "Giveaways only run in servers.")
		}
		if !utils.HasPermission(e, discord.PermissionManageMessages) {
			return utils.EH.CreatePermissionError(e, "end giveaways")
		}

		input := e.SlashCommandInteractionData().String("id")
		id, ok := resolveGiveaway(b.Engine.Giveaways.Running(*guildID), input)
		if !ok {
			return utils.EH.CreateNotFoundError(e, "Giveaway", input)
		}

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		draw, err := b.Engine.Giveaways.End(ctx, *guildID, id)
		if errors.Is(err, giveaways.ErrNotFound) {
			return utils.EH.CreateNotFoundError(e, "Giveaway", shortID(id))
		}
		if !utils.Kept("giveaway end", err) {
			utils.LogCommandError("giveaway end", err)
			return utils.EH.CreateSystemError(e, "Failed to end the giveaway. Please try again later.")
		}
		if err = utils.EH.CreateEphemeralSuccess(e, fmt.Sprintf("Drawing a winner for **%s**.", draw.Giveaway.Prize)); err != nil {
			return err
		}
		b.Dispatch(ctx, []actions.Action{draw})
		return nil
	}
}

func GiveawayListHandler(b *warden.Bot) handler.CommandHandler {
	return func(e *handler.CommandEvent) error {
		guildID := e.GuildID()
		if guildID == nil {
			return utils.EH.CreateUserError(e, "Giveaways only run in servers.")
		}
		running := b.Engine.Giveaways.Running(*guildID)
		if len(running) == 0 {
			return utils.EH.CreateInfoEmbed(e, "No giveaways are running.")
		}
		return e.CreateMessage(discord.MessageCreate{
			Embeds: []discord.Embed{{
				Title:       fmt.Sprintf("Running giveaways (%d)", len(running)),
				Description: giveawayList(running),
				Color:       utils.InfoColor,
			}},
		})
	}
}

func giveawayList(running []models.Giveaway) string {
	var sb strings.Builder
	for _, g := range running {
		fmt.Fprintf(&sb, "`%s` **%s** ends %s in %s\n",
			shortID(g.ID), utils.Truncate(g.Prize, 80), utils.Timestamp(g.EndsAt), utils.ChannelMention(g.ChannelID))
	}
	return strings.TrimSpace(sb.String())
}

// resolveGiveaway accepts a full id or a unique short prefix.
func resolveGiveaway(running []models.Giveaway, input string) (string, bool) {
	input = strings.TrimSpace(input)
	if input == "" {
		return "", false
	}
	var found string
	for _, g := range running {
		if g.ID == input {
			return g.ID, true
		}
		if strings.HasPrefix(g.ID, input) {
			if found != "" {
				return "", false
			}
			found = g.ID
		}
	}
	return found, found != ""
}

type giveawayPrizes []models.Giveaway

func (g giveawayPrizes) String(i int) string { return g[i].Prize }
func (g giveawayPrizes) Len() int            { return len(g) }

func giveawayChoices(running []models.Giveaway, query string) []discord.AutocompleteChoice {
	picked := running
	if query = strings.TrimSpace(query); query != "" {
		matches := fuzzy.FindFrom(query, giveawayPrizes(running))
		picked = make([]models.Giveaway, 0, len(matches))
		for _, m := range matches {
			picked = append(picked, running[m.Index])
		}
	}

	choices := make([]discord.AutocompleteChoice, 0, min(len(picked), maxChoices))
	for _, g := range picked[:min(len(picked), maxChoices)] {
		choices = append(choices, discord.AutocompleteChoiceString{
			Name:  utils.Truncate(fmt.Sprintf("%s: %s", shortID(g.ID), g.Prize), maxChoiceLabel),
			Value: g.ID,
		})
	}
	return choices
}

func GiveawayEndAutocomplete(b *warden.Bot) handler.AutocompleteHandler {
	return func(e *handler.AutocompleteEvent) error {
		guildID := e.GuildID()
		if guildID == nil {
			return e.AutocompleteResult(nil)
		}
		return e.AutocompleteResult(giveawayChoices(b.Engine.Giveaways.Running(*guildID), e.Data.String("id")))
	}
}

package community

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/handler"
	"github.com/disgoorg/snowflake/v2"
	"github.com/sahilm/fuzzy"

	"github.com/wardenbot/warden/internal/domain/models"
	"github.com/wardenbot/warden/internal/domain/reminders"
	"github.com/wardenbot/warden/warden"
	"github.com/wardenbot/warden/warden/utils"
)

const (
	shortIDLen     = 8
	maxListed      = 15
	maxChoices     = 25
	maxChoiceLabel = 100
)

var RemindMe = discord.SlashCommandCreate{
	Name:        "remindme",
	Description: "Get reminded about something later",
	Options: []discord.ApplicationCommandOption{
		discord.ApplicationCommandOptionString{
			Name:        "in",
			Description: "Delay such as 30s, 10m, 2h or 1d",
			Required:    true,
		},
		discord.ApplicationCommandOptionString{
			Name:        "text",
			Description: "What to remind you about",
			Required:    true,
		},
		discord.ApplicationCommandOptionBool{
			Name:        "dm",
			Description: "Deliver by direct message instead of this channel",
			Required:    false,
		},
	},
}

var Reminders = discord.SlashCommandCreate{
	Name:        "reminders",
	Description: "Manage your reminders",
	Options: []discord.ApplicationCommandOption{
		discord.ApplicationCommandOptionSubCommand{
			Name:        "list",
			Description: "List your pending reminders",
		},
		discord.ApplicationCommandOptionSubCommand{
			Name:        "cancel",
			Description: "Cancel a pending reminder",
			Options: []discord.ApplicationCommandOption{
				discord.ApplicationCommandOptionString{
					Name:         "id",
					Description:  "Reminder to cancel",
					Required:     true,
					Autocomplete: true,
				},
			},
		},
	},
}

func RemindMeHandler(b *warden.Bot) handler.CommandHandler {
	return func(e *handler.CommandEvent) error {
		data := e.SlashCommandInteractionData()
		delay, err := reminders.ParseDelay(data.String("in"))
		if err != nil {
			return utils.EH.CreateUserError(e, "Use a delay like `30s`, `10m`, `2h` or `1d`, at most a year.")
		}

		var guildID, channelID snowflake.ID
		if id := e.GuildID(); id != nil {
			guildID = *id
			if !data.Bool("dm") {
				channelID = e.Channel().ID()
			}
		}

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		r, err := b.Engine.Reminders.Schedule(ctx, guildID, e.User().ID, channelID, delay, data.String("text"))
		if errors.Is(err, reminders.ErrEmptyText) {
			return utils.EH.CreateUserError(e, "The reminder text is empty.")
		}
		if !utils.Kept("remindme", err) {
			utils.LogCommandError("remindme", err)
			return utils.EH.CreateSystemError(e, "Failed to schedule the reminder. Please try again later.")
		}

		return utils.EH.CreateEphemeralSuccess(e, fmt.Sprintf("I'll remind you %s (id `%s`).",
			utils.Timestamp(r.DueAt), shortID(r.ID)))
	}
}

func RemindersListHandler(b *warden.Bot) handler.CommandHandler {
	return func(e *handler.CommandEvent) error {
		pending := b.Engine.Reminders.Pending(e.User().ID)
		if len(pending) == 0 {
			return e.CreateMessage(discord.MessageCreate{
				Content: "You have no pending reminders.",
				Flags:   discord.MessageFlagEphemeral,
			})
		}
		return e.CreateMessage(discord.MessageCreate{
			Embeds: []discord.Embed{{
				Title:       fmt.Sprintf("Your reminders (%d)", len(pending)),
				Description: reminderList(pending),
				Color:       utils.InfoColor,
			}},
			Flags: discord.MessageFlagEphemeral,
		})
	}
}

func reminderList(pending []models.Reminder) string {
	var sb strings.Builder
	for i, r := range pending {
		if i == maxListed {
			fmt.Fprintf(&sb, "…and %d more", len(pending)-maxListed)
			break
		}
		fmt.Fprintf(&sb, "`%s` %s %s\n", shortID(r.ID), utils.Timestamp(r.DueAt), utils.Truncate(r.Text, 80))
	}
	return strings.TrimSpace(sb.String())
}

func RemindersCancelHandler(b *warden.Bot) handler.CommandHandler {
	return func(e *handler.CommandEvent) error {
		userID := e.User().ID
		id, ok := resolveReminder(b.Engine.Reminders.Pending(userID), e.SlashCommandInteractionData().String("id"))
		if !ok {
			return utils.EH.CreateNotFoundError(e, "Reminder", e.SlashCommandInteractionData().String("id"))
		}

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		err := b.Engine.Reminders.Cancel(ctx, id, userID)
		if errors.Is(err, reminders.ErrNotFound) {
			return utils.EH.CreateNotFoundError(e, "Reminder", shortID(id))
		}
		if !utils.Kept("reminders cancel", err) {
			utils.LogCommandError("reminders cancel", err)
			return utils.EH.CreateSystemError(e, "Failed to cancel the reminder. Please try again later.")
		}
		return utils.EH.CreateEphemeralSuccess(e, fmt.Sprintf("Cancelled reminder `%s`.", shortID(id)))
	}
}

// resolveReminder accepts a full id or the short prefix shown in lists.
func resolveReminder(pending []models.Reminder, input string) (string, bool) {
	input = strings.TrimSpace(input)
	if input == "" {
		return "", false
	}
	var found string
	for _, r := range pending {
		if r.ID == input {
			return r.ID, true
		}
		if strings.HasPrefix(r.ID, input) {
			if found != "" {
				return "", false
			}
			found = r.ID
		}
	}
	return found, found != ""
}

type reminderTexts []models.Reminder

func (r reminderTexts) String(i int) string { return r[i].Text }
func (r reminderTexts) Len() int            { return len(r) }

// reminderChoices matches the typed text against reminder texts. An empty
// query lists the soonest reminders.
func reminderChoices(pending []models.Reminder, query string) []discord.AutocompleteChoice {
	picked := pending
	if query = strings.TrimSpace(query); query != "" {
		matches := fuzzy.FindFrom(query, reminderTexts(pending))
		picked = make([]models.Reminder, 0, len(matches))
		for _, m := range matches {
			picked = append(picked, pending[m.Index])
		}
	}

	choices := make([]discord.AutocompleteChoice, 0, min(len(picked), maxChoices))
	for _, r := range picked[:min(len(picked), maxChoices)] {
		choices = append(choices, discord.AutocompleteChoiceString{
			Name:  utils.Truncate(fmt.Sprintf("%s: %s", shortID(r.ID), r.Text), maxChoiceLabel),
			Value: r.ID,
		})
	}
	return choices
}

func RemindersCancelAutocomplete(b *warden.Bot) handler.AutocompleteHandler {
	return func(e *handler.AutocompleteEvent) error {
		return e.AutocompleteResult(reminderChoices(b.Engine.Reminders.Pending(e.User().ID), e.Data.String("id")))
	}
}

func shortID(id string) string {
	if len(id) <= shortIDLen {
		return id
	}
	return id[:shortIDLen]
}

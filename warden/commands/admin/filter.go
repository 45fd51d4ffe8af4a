package admin

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/handler"
	"github.com/sahilm/fuzzy"

	"github.com/wardenbot/warden/internal/domain/models"
	"github.com/wardenbot/warden/warden"
	"github.com/wardenbot/warden/warden/utils"
)

const maxChoices = 25

var Filter = discord.SlashCommandCreate{
	Name:        "filter",
	Description: "Manage the filtered word list",
	Options: []discord.ApplicationCommandOption{
		discord.ApplicationCommandOptionSubCommand{
			Name:        "add",
			Description: "Delete messages containing a word",
			Options: []discord.ApplicationCommandOption{
				discord.ApplicationCommandOptionString{
					Name:        "word",
					Description: "Word to filter, matched case-insensitively",
					Required:    true,
				},
			},
		},
		discord.ApplicationCommandOptionSubCommand{
			Name:        "remove",
			Description: "Stop filtering a word",
			Options: []discord.ApplicationCommandOption{
				discord.ApplicationCommandOptionString{
					Name:         "word",
					Description:  "Filtered word",
					Required:     true,
					Autocomplete: true,
				},
			},
		},
		discord.ApplicationCommandOptionSubCommand{
			Name:        "list",
			Description: "Show the filtered words",
		},
	},
}

func FilterAddHandler(b *warden.Bot) handler.CommandHandler {
	return func(e *handler.CommandEvent) error {
		word := strings.ToLower(strings.TrimSpace(e.SlashCommandInteractionData().String("word")))
		return updateGuild(b, e, "filter add", func(cfg *models.GuildConfig) error {
			if !cfg.AddFilteredWord(word) {
				return inputError(fmt.Sprintf("`%s` is already filtered.", word))
			}
			return nil
		}, func(cfg models.GuildConfig) string {
			return fmt.Sprintf("Now filtering `%s` (%d words).", word, len(cfg.FilteredWords))
		})
	}
}

func FilterRemoveHandler(b *warden.Bot) handler.CommandHandler {
	return func(e *handler.CommandEvent) error {
		word := strings.ToLower(strings.TrimSpace(e.SlashCommandInteractionData().String("word")))
		return updateGuild(b, e, "filter remove", func(cfg *models.GuildConfig) error {
			if !cfg.RemoveFilteredWord(word) {
				return inputError(fmt.Sprintf("`%s` is not filtered.", word))
			}
			return nil
		}, func(cfg models.GuildConfig) string {
			return fmt.Sprintf("Stopped filtering `%s`.", word)
		})
	}
}

func FilterListHandler(b *warden.Bot) handler.CommandHandler {
	return func(e *handler.CommandEvent) error {
		if !utils.HasPermission(e, discord.PermissionManageGuild) {
			return utils.EH.CreatePermissionError(e, "view the filter")
		}
		guildID := e.GuildID()
		if guildID == nil {
			return utils.EH.CreateUserError(e, "This command only works in a server.")
		}

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		cfg := b.Store.GuildOrDefault(ctx, *guildID)
		desc := "No words are filtered."
		if len(cfg.FilteredWords) > 0 {
			desc = "||" + strings.Join(cfg.FilteredWords, ", ") + "||"
		}
		return e.CreateMessage(discord.MessageCreate{
			Embeds: []discord.Embed{{
				Title:       fmt.Sprintf("Filtered words (%d)", len(cfg.FilteredWords)),
				Description: utils.Truncate(desc, 4000),
				Color:       utils.NeutralColor,
			}},
			Flags: discord.MessageFlagEphemeral,
		})
	}
}

func FilterRemoveAutocomplete(b *warden.Bot) handler.AutocompleteHandler {
	return func(e *handler.AutocompleteEvent) error {
		guildID := e.GuildID()
		if guildID == nil {
			return e.AutocompleteResult(nil)
		}
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()

		cfg := b.Store.GuildOrDefault(ctx, *guildID)
		return e.AutocompleteResult(wordChoices(cfg.FilteredWords, e.Data.String("word")))
	}
}

func wordChoices(words []string, query string) []discord.AutocompleteChoice {
	picked := words
	if query = strings.TrimSpace(query); query != "" {
		picked = picked[:0:0]
		for _, m := range fuzzy.Find(strings.ToLower(query), words) {
			picked = append(picked, m.Str)
		}
	}

	choices := make([]discord.AutocompleteChoice, 0, min(len(picked), maxChoices))
	for _, w := range picked[:min(len(picked), maxChoices)] {
		choices = append(choices, discord.AutocompleteChoiceString{Name: w, Value: w})
	}
	return choices
}

package economy

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/handler"

	"github.com/wardenbot/warden/internal/domain/leveling"
	"github.com/wardenbot/warden/internal/domain/models"
	"github.com/wardenbot/warden/warden"
	"github.com/wardenbot/warden/warden/utils"
)

const barWidth = 10

var Rank = discord.SlashCommandCreate{
	Name:        "rank",
	Description: "Show level and xp progress",
	Options: []discord.ApplicationCommandOption{
		discord.ApplicationCommandOptionUser{
			Name:        "user",
			Description: "Member to check",
			Required:    false,
		},
	},
}

func RankHandler(b *warden.Bot) handler.CommandHandler {
	return func(e *handler.CommandEvent) error {
		target := e.User()
		if user, ok := e.SlashCommandInteractionData().OptUser("user"); ok {
			target = user
		}
		key, err := utils.GuildKey(e, target.ID)
		if err != nil {
			return utils.EH.CreateUserError(e, "Levels are kept per server.")
		}

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		rec, err := b.Engine.Leveling.Rank(ctx, key)
		if err != nil {
			utils.LogCommandError("rank", err, "target_id", target.ID.String())
			return utils.EH.CreateSystemError(e, "Failed to load the rank. Please try again later.")
		}

		return e.CreateMessage(discord.MessageCreate{
			Embeds: []discord.Embed{{
				Title:       fmt.Sprintf("%s's rank", target.Username),
				Description: rankText(rec),
				Color:       utils.InfoColor,
			}},
		})
	}
}

func rankText(rec models.UserRecord) string {
	level := max(rec.Level, 1)
	need := leveling.Threshold(level)
	return fmt.Sprintf("**Level %d**\n%s %d/%d xp", level, progressBar(rec.XP, need), rec.XP, need)
}

func progressBar(have int64, need int64) string {
	filled := 0
	if need > 0 {
		filled = int(min(have*barWidth/need, barWidth))
	}
	return strings.Repeat("▰", filled) + strings.Repeat("▱", barWidth-filled)
}

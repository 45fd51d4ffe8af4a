package economy

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/handler"

	"github.com/wardenbot/warden/internal/domain/economy"
	"github.com/wardenbot/warden/warden"
	"github.com/wardenbot/warden/warden/utils"
)

var Daily = discord.SlashCommandCreate{
	Name:        "daily",
	Description: "Claim your daily reward!",
}

func DailyHandler(b *warden.Bot) handler.CommandHandler {
	return func(e *handler.CommandEvent) error {
		key, err := utils.GuildKey(e, e.User().ID)
		if err != nil {
			return utils.EH.CreateUserError(e, "Daily rewards are claimed per server.")
		}

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		reward, balance, err := b.Engine.Ledger.DailyClaim(ctx, key)
		if errors.Is(err, economy.ErrAlreadyClaimed) {
			return utils.EH.CreateBusinessLogicError(e,
				fmt.Sprintf("You already claimed today. Come back %s.", utils.Timestamp(b.Engine.Ledger.NextClaimAt())))
		}
		if !utils.Kept("daily", err) {
			utils.LogCommandError("daily", err)
			return utils.EH.CreateSystemError(e, "Failed to claim daily reward. Please try again later.")
		}

		return utils.EH.CreateSuccessEmbed(e, fmt.Sprintf("You claimed **%d** coins! Balance: **%d**", reward, balance))
	}
}

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

var Balance = discord.SlashCommandCreate{
	Name:        "balance",
	Description: "Check your coin balance or another member's",
	Options: []discord.ApplicationCommandOption{
		discord.ApplicationCommandOptionUser{
			Name:        "user",
			Description: "Member to check",
			Required:    false,
		},
	},
}

var Pay = discord.SlashCommandCreate{
	Name:        "pay",
	Description: "Send coins to another member",
	Options: []discord.ApplicationCommandOption{
		discord.ApplicationCommandOptionUser{
			Name:        "user",
			Description: "Member receiving the coins",
			Required:    true,
		},
		discord.ApplicationCommandOptionInt{
			Name:        "amount",
			Description: "Number of coins",
			Required:    true,
			MinValue:    utils.Ptr(1),
		},
	},
}

func BalanceHandler(b *warden.Bot) handler.CommandHandler {
	return func(e *handler.CommandEvent) error {
		target := e.User()
		if user, ok := e.SlashCommandInteractionData().OptUser("user"); ok {
			target = user
		}
		key, err := utils.GuildKey(e, target.ID)
		if err != nil {
			return utils.EH.CreateUserError(e, "Balances are kept per server.")
		}

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		balance, err := b.Engine.Ledger.Balance(ctx, key)
		if err != nil {
			utils.LogCommandError("balance", err, "target_id", target.ID.String())
			return utils.EH.CreateSystemError(e, "Failed to load the balance. Please try again later.")
		}

		return e.CreateMessage(discord.MessageCreate{
			Embeds: []discord.Embed{{
				Title:       fmt.Sprintf("%s's wallet", target.Username),
				Description: fmt.Sprintf("💰 **%d** coins", balance),
				Color:       utils.InfoColor,
			}},
		})
	}
}

func PayHandler(b *warden.Bot) handler.CommandHandler {
	return func(e *handler.CommandEvent) error {
		data := e.SlashCommandInteractionData()
		to := data.User("user")
		amount := int64(data.Int("amount"))
		if to.Bot {
			return utils.EH.CreateUserError(e, "Bots don't have wallets.")
		}
		key, err := utils.GuildKey(e, e.User().ID)
		if err != nil {
			return utils.EH.CreateUserError(e, "Balances are kept per server.")
		}

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		from, _, err := b.Engine.Ledger.Transfer(ctx, key.GuildID, key.UserID, to.ID, amount)
		switch {
		case errors.Is(err, economy.ErrInsufficientFunds):
			return utils.EH.CreateBusinessLogicError(e, "You don't have enough coins.")
		case errors.Is(err, economy.ErrInvalidAmount):
			return utils.EH.CreateUserError(e, "The amount must be positive.")
		case errors.Is(err, economy.ErrSameAccount):
			return utils.EH.CreateUserError(e, "You cannot pay yourself.")
		case !utils.Kept("pay", err):
			utils.LogCommandError("pay", err, "target_id", to.ID.String())
			return utils.EH.CreateSystemError(e, "The transfer failed. No coins were moved.")
		}

		return utils.EH.CreateSuccessEmbed(e, fmt.Sprintf("Sent **%d** coins to %s. Your balance: **%d**",
			amount, utils.Mention(to.ID), from))
	}
}

package community

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/handler"

	"github.com/wardenbot/warden/internal/domain/tickets"
	"github.com/wardenbot/warden/warden"
	"github.com/wardenbot/warden/warden/utils"
)

var Ticket = discord.SlashCommandCreate{
	Name:        "ticket",
	Description: "Private support tickets",
	Options: []discord.ApplicationCommandOption{
		discord.ApplicationCommandOptionSubCommand{
			Name:        "open",
			Description: "Open a private channel with the staff",
		},
		discord.ApplicationCommandOptionSubCommand{
			Name:        "close",
			Description: "Close the ticket this channel belongs to",
		},
	},
}

func TicketOpenHandler(b *warden.Bot) handler.CommandHandler {
	return func(e *handler.CommandEvent) error {
		key, err := utils.GuildKey(e, e.User().ID)
		if err != nil {
			return utils.EH.CreateUserError(e, "Tickets can only be opened in a server.")
		}

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		_, acts, err := b.Engine.Tickets.Request(ctx, key.GuildID, key.UserID, e.User().Username)
		var open *tickets.AlreadyOpenError
		if errors.As(err, &open) {
			if open.ChannelID == 0 {
				return utils.EH.CreateBusinessLogicError(e, "Your ticket channel is still being created.")
			}
			return utils.EH.CreateBusinessLogicError(e,
				fmt.Sprintf("You already have an open ticket: %s", utils.ChannelMention(open.ChannelID)))
		}
		if !utils.Kept("ticket open", err) {
			utils.LogCommandError("ticket open", err)
			return utils.EH.CreateSystemError(e, "Failed to open a ticket. Please try again later.")
		}

		b.Dispatch(ctx, acts)
		return utils.EH.CreateEphemeralSuccess(e, "Your ticket channel is being created, you will be pinged there.")
	}
}

func TicketCloseHandler(b *warden.Bot) handler.CommandHandler {
	return func(e *handler.CommandEvent) error {
		key, err := utils.GuildKey(e, e.User().ID)
		if err != nil {
			return utils.EH.CreateUserError(e, "Tickets only exist in servers.")
		}
		channelID := e.Channel().ID()

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if !utils.HasPermission(e, discord.PermissionManageChannels) {
			own, ok, err := b.Engine.Tickets.OpenFor(ctx, key)
			if err != nil {
				utils.LogCommandError("ticket close", err)
				return utils.EH.CreateSystemError(e, "Failed to look up the ticket. Please try again later.")
			}
			if !ok || own.ChannelID != channelID {
				return utils.EH.CreatePermissionError(e, "close someone else's ticket")
			}
		}

		t, acts, err := b.Engine.Tickets.CloseByChannel(ctx, channelID, key.UserID)
		if errors.Is(err, tickets.ErrNotTicket) {
			return utils.EH.CreateUserError(e, "This channel is not a ticket.")
		}
		if !utils.Kept("ticket close", err) {
			utils.LogCommandError("ticket close", err, "channel_id", channelID.String())
			return utils.EH.CreateSystemError(e, "Failed to close the ticket. Please try again later.")
		}
		if len(acts) == 0 {
			return utils.EH.CreateInfoEmbed(e, fmt.Sprintf("Ticket `%s` is already closed.", t.ID))
		}

		if err := utils.EH.CreateSuccessEmbed(e, "Closing this ticket, the channel will be deleted."); err != nil {
			return err
		}
		b.Dispatch(ctx, acts)
		return nil
	}
}

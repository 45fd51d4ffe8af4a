package system

import (
	"fmt"

	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/handler"

	"github.com/wardenbot/warden/warden"
	"github.com/wardenbot/warden/warden/utils"
)

var Version = discord.SlashCommandCreate{
	Name:        "version",
	Description: "Show the running version",
}

func VersionHandler(b *warden.Bot) handler.CommandHandler {
	return func(e *handler.CommandEvent) error {
		if err := e.DeferCreateMessage(false); err != nil {
			return err
		}
		_, err := e.UpdateInteractionResponse(discord.MessageUpdate{
			Content: utils.Ptr(fmt.Sprintf("Version: %s\nCommit: %s", b.Version, b.Commit)),
		})
		return err
	}
}

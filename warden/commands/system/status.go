package system

import (
	"fmt"
	"time"

	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/handler"

	"github.com/wardenbot/warden/warden"
	"github.com/wardenbot/warden/warden/utils"
)

var Status = discord.SlashCommandCreate{
	Name:        "status",
	Description: "Show gateway latency and queue sizes",
}

func StatusHandler(b *warden.Bot) handler.CommandHandler {
	return func(e *handler.CommandEvent) error {
		next := "none"
		if at, ok := b.Engine.Reminders.Next(); ok {
			next = utils.Timestamp(at)
		}

		fields := []discord.EmbedField{
			{Name: "Latency", Value: b.Client.Gateway().Latency().Round(time.Millisecond).String(), Inline: utils.Ptr(true)},
			{Name: "Servers", Value: fmt.Sprint(b.Client.Caches().GuildsLen()), Inline: utils.Ptr(true)},
			{Name: "Store", Value: b.Cfg.Store.Backend, Inline: utils.Ptr(true)},
			{Name: "Pending reminders", Value: fmt.Sprint(b.Engine.Reminders.Len()), Inline: utils.Ptr(true)},
			{Name: "Next reminder", Value: next, Inline: utils.Ptr(true)},
			{Name: "Unsaved records", Value: fmt.Sprint(b.Store.Pending()), Inline: utils.Ptr(true)},
			{Name: "Starboard posts cached", Value: fmt.Sprint(b.Engine.Starboard.Posted()), Inline: utils.Ptr(true)},
		}
		if b.Jobs != nil {
			fields = append(fields, discord.EmbedField{Name: "Jobs", Value: fmt.Sprint(b.Jobs.Jobs())})
		}

		return e.CreateMessage(discord.MessageCreate{
			Embeds: []discord.Embed{{
				Title:  "Warden status",
				Color:  utils.InfoColor,
				Fields: fields,
				Footer: &discord.EmbedFooter{Text: b.Version},
			}},
		})
	}
}

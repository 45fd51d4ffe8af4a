package community

import "github.com/disgoorg/disgo/discord"

var Commands = []discord.ApplicationCommandCreate{
	Ticket,
	RemindMe,
	Reminders,
	Giveaway,
}

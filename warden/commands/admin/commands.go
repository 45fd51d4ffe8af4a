package admin

import "github.com/disgoorg/disgo/discord"

var Commands = []discord.ApplicationCommandCreate{
	Filter,
	AntiSpam,
	Welcome,
	Goodbye,
	Starboard,
	ModLog,
	Announce,
	AutoRole,
	WarnLimit,
	Settings,
	ResetUser,
}

package moderation

import "github.com/disgoorg/disgo/discord"

var Commands = []discord.ApplicationCommandCreate{
	Warn,
	Warnings,
	ClearWarn,
	Mute,
	Unmute,
}

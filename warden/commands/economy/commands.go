package economy

import "github.com/disgoorg/disgo/discord"

var Commands = []discord.ApplicationCommandCreate{
	Balance,
	Pay,
	Daily,
	Rank,
}

package commands

import (
	"slices"

	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/handler"

	"github.com/wardenbot/warden/warden"
	"github.com/wardenbot/warden/warden/commands/admin"
	"github.com/wardenbot/warden/warden/commands/community"
	"github.com/wardenbot/warden/warden/commands/economy"
	"github.com/wardenbot/warden/warden/commands/moderation"
	"github.com/wardenbot/warden/warden/commands/system"
	"github.com/wardenbot/warden/warden/handlers"
)

// Commands is everything synced with --sync-commands.
var Commands = slices.Concat(
	moderation.Commands,
	economy.Commands,
	community.Commands,
	admin.Commands,
	system.Commands,
)

// Register routes every command path to its handler.
func Register(r handler.Router, b *warden.Bot) {
	wrap := handlers.WrapWithLogging

	// Moderation
	r.Command("/warn", wrap("warn", moderation.WarnHandler(b)))
	r.Command("/warnings", wrap("warnings", moderation.WarningsHandler(b)))
	r.Command("/clearwarn", wrap("clearwarn", moderation.ClearWarnHandler(b)))
	r.Command("/mute", wrap("mute", moderation.MuteHandler(b)))
	r.Command("/unmute", wrap("unmute", moderation.UnmuteHandler(b)))

	// Economy and leveling
	r.Command("/balance", wrap("balance", economy.BalanceHandler(b)))
	r.Command("/pay", wrap("pay", economy.PayHandler(b)))
	r.Command("/daily", wrap("daily", economy.DailyHandler(b)))
	r.Command("/rank", wrap("rank", economy.RankHandler(b)))

	// Tickets, reminders and giveaways
	r.Route("/ticket", func(r handler.Router) {
		r.Command("/open", wrap("ticket open", community.TicketOpenHandler(b)))
		r.Command("/close", wrap("ticket close", community.TicketCloseHandler(b)))
	})
	r.Command("/remindme", wrap("remindme", community.RemindMeHandler(b)))
	r.Route("/reminders", func(r handler.Router) {
		r.Command("/list", wrap("reminders list", community.RemindersListHandler(b)))
		r.Command("/cancel", wrap("reminders cancel", community.RemindersCancelHandler(b)))
		r.Autocomplete("/cancel", community.RemindersCancelAutocomplete(b))
	})
	r.Route("/giveaway", func(r handler.Router) {
		r.Command("/start", wrap("giveaway start", community.GiveawayStartHandler(b)))
		r.Command("/end", wrap("giveaway end", community.GiveawayEndHandler(b)))
		r.Autocomplete("/end", community.GiveawayEndAutocomplete(b))
		r.Command("/list", wrap("giveaway list", community.GiveawayListHandler(b)))
	})

	// Server configuration
	r.Route("/filter", func(r handler.Router) {
		r.Command("/add", wrap("filter add", admin.FilterAddHandler(b)))
		r.Command("/remove", wrap("filter remove", admin.FilterRemoveHandler(b)))
		r.Autocomplete("/remove", admin.FilterRemoveAutocomplete(b))
		r.Command("/list", wrap("filter list", admin.FilterListHandler(b)))
	})
	r.Route("/antispam", func(r handler.Router) {
		r.Command("/enable", wrap("antispam enable", admin.AntiSpamEnableHandler(b)))
		r.Command("/disable", wrap("antispam disable", admin.AntiSpamDisableHandler(b)))
	})
	greeting(r, b, admin.Welcome, admin.WelcomeTarget)
	greeting(r, b, admin.Goodbye, admin.GoodbyeTarget)
	r.Route("/starboard", func(r handler.Router) {
		r.Command("/set", wrap("starboard set", admin.StarboardSetHandler(b)))
		r.Command("/disable", wrap("starboard disable", admin.StarboardDisableHandler(b)))
	})
	channel(r, b, admin.ModLog, admin.ModLogTarget)
	channel(r, b, admin.Announce, admin.AnnounceTarget)
	r.Route("/autorole", func(r handler.Router) {
		r.Command("/set", wrap("autorole set", admin.AutoRoleSetHandler(b)))
		r.Command("/clear", wrap("autorole clear", admin.AutoRoleClearHandler(b)))
	})
	r.Command("/warnlimit", wrap("warnlimit", admin.WarnLimitHandler(b)))
	r.Command("/settings", wrap("settings", admin.SettingsHandler(b)))
	r.Command("/resetuser", wrap("resetuser", admin.ResetUserHandler(b)))

	// System
	r.Command("/version", system.VersionHandler(b))
	r.Command("/status", wrap("status", system.StatusHandler(b)))
}

func greeting(r handler.Router, b *warden.Bot, cmd discord.SlashCommandCreate, target admin.GreetingTarget) {
	r.Route("/"+cmd.Name, func(r handler.Router) {
		r.Command("/set", handlers.WrapWithLogging(cmd.Name+" set", admin.GreetingSetHandler(b, cmd.Name, target)))
		r.Command("/disable", handlers.WrapWithLogging(cmd.Name+" disable", admin.GreetingDisableHandler(b, cmd.Name, target)))
	})
}

func channel(r handler.Router, b *warden.Bot, cmd discord.SlashCommandCreate, target admin.ChannelTarget) {
	r.Route("/"+cmd.Name, func(r handler.Router) {
		r.Command("/set", handlers.WrapWithLogging(cmd.Name+" set", admin.ChannelSetHandler(b, cmd.Name, target)))
		r.Command("/clear", handlers.WrapWithLogging(cmd.Name+" clear", admin.ChannelClearHandler(b, cmd.Name, target)))
	})
}

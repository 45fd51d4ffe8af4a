package admin

import (
	"fmt"
	"strings"

	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/handler"
	"github.com/disgoorg/snowflake/v2"

	"github.com/wardenbot/warden/internal/domain/models"
	"github.com/wardenbot/warden/warden"
	"github.com/wardenbot/warden/warden/utils"
)

var textChannel = []discord.ChannelType{discord.ChannelTypeGuildText, discord.ChannelTypeGuildNews}

func channelOption(description string) discord.ApplicationCommandOptionChannel {
	return discord.ApplicationCommandOptionChannel{
		Name:         "channel",
		Description:  description,
		Required:     true,
		ChannelTypes: textChannel,
	}
}

var AntiSpam = discord.SlashCommandCreate{
	Name:        "antispam",
	Description: "Mute members who post too fast",
	Options: []discord.ApplicationCommandOption{
		discord.ApplicationCommandOptionSubCommand{
			Name:        "enable",
			Description: "Turn on the spam guard",
			Options: []discord.ApplicationCommandOption{
				discord.ApplicationCommandOptionInt{
					Name:        "threshold",
					Description: "Messages allowed in the window (min 3)",
					Required:    false,
					MinValue:    utils.Ptr(models.MinSpamSetting),
				},
				discord.ApplicationCommandOptionInt{
					Name:        "window",
					Description: "Window length in seconds (min 3)",
					Required:    false,
					MinValue:    utils.Ptr(models.MinSpamSetting),
				},
			},
		},
		discord.ApplicationCommandOptionSubCommand{
			Name:        "disable",
			Description: "Turn off the spam guard",
		},
	},
}

func AntiSpamEnableHandler(b *warden.Bot) handler.CommandHandler {
	return func(e *handler.CommandEvent) error {
		data := e.SlashCommandInteractionData()
		return updateGuild(b, e, "antispam enable", func(cfg *models.GuildConfig) error {
			threshold, window := cfg.AntiSpam.Threshold, cfg.AntiSpam.WindowSeconds
			if v, ok := data.OptInt("threshold"); ok {
				threshold = v
			}
			if v, ok := data.OptInt("window"); ok {
				window = v
			}
			cfg.AntiSpam.Enable(threshold, window)
			return nil
		}, func(cfg models.GuildConfig) string {
			return fmt.Sprintf("Anti-spam enabled: more than %d messages in %ds mutes for %dm.",
				cfg.AntiSpam.Threshold, cfg.AntiSpam.WindowSeconds, b.Cfg.Engine.SpamMuteMinutes)
		})
	}
}

func AntiSpamDisableHandler(b *warden.Bot) handler.CommandHandler {
	return func(e *handler.CommandEvent) error {
		return updateGuild(b, e, "antispam disable", func(cfg *models.GuildConfig) error {
			cfg.AntiSpam.Enabled = false
			return nil
		}, func(models.GuildConfig) string {
			return "Anti-spam disabled."
		})
	}
}

// greetingCommand builds /welcome and /goodbye, which differ only in the
// greeting they edit.
func greetingCommand(name string, event string) discord.SlashCommandCreate {
	return discord.SlashCommandCreate{
		Name:        name,
		Description: fmt.Sprintf("Configure the %s message", name),
		Options: []discord.ApplicationCommandOption{
			discord.ApplicationCommandOptionSubCommand{
				Name:        "set",
				Description: fmt.Sprintf("Post a message when a member %s", event),
				Options: []discord.ApplicationCommandOption{
					channelOption("Channel to post in"),
					discord.ApplicationCommandOptionString{
						Name:        "message",
						Description: "Template, {user} and {server} are replaced",
						Required:    false,
					},
				},
			},
			discord.ApplicationCommandOptionSubCommand{
				Name:        "disable",
				Description: fmt.Sprintf("Stop the %s message", name),
			},
		},
	}
}

var (
	Welcome = greetingCommand("welcome", "joins")
	Goodbye = greetingCommand("goodbye", "leaves")
)

// GreetingTarget selects the greeting a /welcome or /goodbye handler edits.
type GreetingTarget func(*models.GuildConfig) *models.Greeting

func WelcomeTarget(cfg *models.GuildConfig) *models.Greeting { return &cfg.Welcome }
func GoodbyeTarget(cfg *models.GuildConfig) *models.Greeting { return &cfg.Goodbye }

func GreetingSetHandler(b *warden.Bot, name string, pick GreetingTarget) handler.CommandHandler {
	return func(e *handler.CommandEvent) error {
		data := e.SlashCommandInteractionData()
		channel := data.Channel("channel")
		message := strings.TrimSpace(data.String("message"))
		return updateGuild(b, e, name+" set", func(cfg *models.GuildConfig) error {
			g := pick(cfg)
			g.Enabled = true
			g.ChannelID = channel.ID
			if message != "" {
				g.Template = message
			}
			return nil
		}, func(cfg models.GuildConfig) string {
			g := pick(&cfg)
			return fmt.Sprintf("The %s message posts in %s:\n> %s",
				name, utils.ChannelMention(g.ChannelID), g.Render(utils.Mention(e.User().ID), "this server"))
		})
	}
}

func GreetingDisableHandler(b *warden.Bot, name string, pick GreetingTarget) handler.CommandHandler {
	return func(e *handler.CommandEvent) error {
		return updateGuild(b, e, name+" disable", func(cfg *models.GuildConfig) error {
			pick(cfg).Enabled = false
			return nil
		}, func(models.GuildConfig) string {
			return fmt.Sprintf("The %s message is disabled.", name)
		})
	}
}

var Starboard = discord.SlashCommandCreate{
	Name:        "starboard",
	Description: "Repost popular messages to a channel",
	Options: []discord.ApplicationCommandOption{
		discord.ApplicationCommandOptionSubCommand{
			Name:        "set",
			Description: "Choose the starboard channel",
			Options: []discord.ApplicationCommandOption{
				channelOption("Starboard channel"),
				discord.ApplicationCommandOptionInt{
					Name:        "threshold",
					Description: "Reactions needed",
					Required:    false,
					MinValue:    utils.Ptr(1),
				},
				discord.ApplicationCommandOptionString{
					Name:        "emoji",
					Description: "Emoji that counts, ⭐ by default",
					Required:    false,
				},
			},
		},
		discord.ApplicationCommandOptionSubCommand{
			Name:        "disable",
			Description: "Turn off the starboard",
		},
	},
}

func StarboardSetHandler(b *warden.Bot) handler.CommandHandler {
	return func(e *handler.CommandEvent) error {
		data := e.SlashCommandInteractionData()
		channel := data.Channel("channel")
		return updateGuild(b, e, "starboard set", func(cfg *models.GuildConfig) error {
			cfg.Starboard.ChannelID = channel.ID
			if v, ok := data.OptInt("threshold"); ok {
				cfg.Starboard.Threshold = v
			}
			if v, ok := data.OptString("emoji"); ok {
				cfg.Starboard.Emoji = emojiKey(v)
			}
			return nil
		}, func(cfg models.GuildConfig) string {
			return fmt.Sprintf("Messages with %d %s reactions are posted to %s.",
				cfg.Starboard.Threshold, emojiDisplay(cfg.Starboard.Emoji), utils.ChannelMention(cfg.Starboard.ChannelID))
		})
	}
}

func StarboardDisableHandler(b *warden.Bot) handler.CommandHandler {
	return func(e *handler.CommandEvent) error {
		return updateGuild(b, e, "starboard disable", func(cfg *models.GuildConfig) error {
			cfg.Starboard.ChannelID = 0
			return nil
		}, func(models.GuildConfig) string {
			return "Starboard disabled."
		})
	}
}

// channelSetting builds commands such as /modlog that point one channel
// setting somewhere or clear it.
func channelSetting(name string, description string) discord.SlashCommandCreate {
	return discord.SlashCommandCreate{
		Name:        name,
		Description: description,
		Options: []discord.ApplicationCommandOption{
			discord.ApplicationCommandOptionSubCommand{
				Name:        "set",
				Description: "Choose the channel",
				Options:     []discord.ApplicationCommandOption{channelOption("Channel to use")},
			},
			discord.ApplicationCommandOptionSubCommand{
				Name:        "clear",
				Description: "Unset the channel",
			},
		},
	}
}

var (
	ModLog   = channelSetting("modlog", "Channel receiving moderation logs")
	Announce = channelSetting("announce", "Channel for server announcements")
)

type ChannelTarget func(*models.GuildConfig) *snowflake.ID

func ModLogTarget(cfg *models.GuildConfig) *snowflake.ID   { return &cfg.LogChannel }
func AnnounceTarget(cfg *models.GuildConfig) *snowflake.ID { return &cfg.AnnounceChannel }

func ChannelSetHandler(b *warden.Bot, name string, pick ChannelTarget) handler.CommandHandler {
	return func(e *handler.CommandEvent) error {
		channel := e.SlashCommandInteractionData().Channel("channel")
		return updateGuild(b, e, name+" set", func(cfg *models.GuildConfig) error {
			*pick(cfg) = channel.ID
			return nil
		}, func(models.GuildConfig) string {
			return fmt.Sprintf("The %s channel is now %s.", name, utils.ChannelMention(channel.ID))
		})
	}
}

func ChannelClearHandler(b *warden.Bot, name string, pick ChannelTarget) handler.CommandHandler {
	return func(e *handler.CommandEvent) error {
		return updateGuild(b, e, name+" clear", func(cfg *models.GuildConfig) error {
			*pick(cfg) = 0
			return nil
		}, func(models.GuildConfig) string {
			return fmt.Sprintf("The %s channel is cleared.", name)
		})
	}
}

var AutoRole = discord.SlashCommandCreate{
	Name:        "autorole",
	Description: "Role given to new members",
	Options: []discord.ApplicationCommandOption{
		discord.ApplicationCommandOptionSubCommand{
			Name:        "set",
			Description: "Choose the role",
			Options: []discord.ApplicationCommandOption{
				discord.ApplicationCommandOptionRole{
					Name:        "role",
					Description: "Role to give",
					Required:    true,
				},
			},
		},
		discord.ApplicationCommandOptionSubCommand{
			Name:        "clear",
			Description: "Stop giving a role",
		},
	},
}

func AutoRoleSetHandler(b *warden.Bot) handler.CommandHandler {
	return func(e *handler.CommandEvent) error {
		role := e.SlashCommandInteractionData().Role("role")
		return updateGuild(b, e, "autorole set", func(cfg *models.GuildConfig) error {
			if role.ID == cfg.GuildID {
				return inputError("@everyone cannot be the auto role.")
			}
			if role.Managed {
				return inputError("That role is managed by an integration.")
			}
			cfg.AutoRole = role.ID
			return nil
		}, func(models.GuildConfig) string {
			return fmt.Sprintf("New members get <@&%s>.", role.ID)
		})
	}
}

func AutoRoleClearHandler(b *warden.Bot) handler.CommandHandler {
	return func(e *handler.CommandEvent) error {
		return updateGuild(b, e, "autorole clear", func(cfg *models.GuildConfig) error {
			cfg.AutoRole = 0
			return nil
		}, func(models.GuildConfig) string {
			return "Auto role cleared."
		})
	}
}

var WarnLimit = discord.SlashCommandCreate{
	Name:        "warnlimit",
	Description: "Warnings before a member is muted",
	Options: []discord.ApplicationCommandOption{
		discord.ApplicationCommandOptionInt{
			Name:        "limit",
			Description: "Number of warnings",
			Required:    true,
			MinValue:    utils.Ptr(1),
			MaxValue:    utils.Ptr(50),
		},
	},
}

func WarnLimitHandler(b *warden.Bot) handler.CommandHandler {
	return func(e *handler.CommandEvent) error {
		limit := e.SlashCommandInteractionData().Int("limit")
		return updateGuild(b, e, "warnlimit", func(cfg *models.GuildConfig) error {
			cfg.WarnLimit = limit
			return nil
		}, func(cfg models.GuildConfig) string {
			return fmt.Sprintf("Members are muted after %d warnings.", cfg.WarnLimit)
		})
	}
}

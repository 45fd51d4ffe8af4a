package community

import (
	"github.com/disgoorg/snowflake/v2"

	"github.com/wardenbot/warden/internal/domain/actions"
	"github.com/wardenbot/warden/internal/domain/models"
)

// OnJoin returns the autorole grant and the welcome message for a new member.
func OnJoin(cfg models.GuildConfig, userID snowflake.ID) []actions.Action {
	var acts []actions.Action
	if cfg.AutoRole != 0 {
		acts = append(acts, actions.AddRole{
			GuildID: cfg.GuildID,
			UserID:  userID,
			RoleID:  cfg.AutoRole,
		})
	}
	if g := cfg.Welcome; g.Enabled && g.ChannelID != 0 {
		acts = append(acts, actions.Greet{
			GuildID:   cfg.GuildID,
			ChannelID: g.ChannelID,
			UserID:    userID,
			Type:      actions.GreetWelcome,
			Template:  g.Template,
		})
	}
	return acts
}

func OnLeave(cfg models.GuildConfig, userID snowflake.ID) []actions.Action {
	g := cfg.Goodbye
	if !g.Enabled || g.ChannelID == 0 {
		return nil
	}
	return []actions.Action{actions.Greet{
		GuildID:   cfg.GuildID,
		ChannelID: g.ChannelID,
		UserID:    userID,
		Type:      actions.GreetGoodbye,
		Template:  g.Template,
	}}
}

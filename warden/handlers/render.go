package handlers

import (
	"fmt"
	"strings"
	"time"

	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/snowflake/v2"

	"github.com/wardenbot/warden/internal/domain/actions"
	"github.com/wardenbot/warden/internal/domain/models"
	"github.com/wardenbot/warden/warden/utils"
)

// Renderer turns engine intents into user facing text. Wording lives here and
// nowhere in the engines.
type Renderer struct {
	// GuildName resolves {server} in greeting templates.
	GuildName func(guildID snowflake.ID) string
}

func (r Renderer) guildName(id snowflake.ID) string {
	if r.GuildName != nil {
		if name := r.GuildName(id); name != "" {
			return name
		}
	}
	return "the server"
}

func (r Renderer) Notice(a actions.Notice) string {
	switch a.Reason {
	case actions.NoticeFiltered:
		return fmt.Sprintf("🚫 %s, your message contained a filtered word and was removed.", utils.Mention(a.UserID))
	case actions.NoticeSpam:
		return fmt.Sprintf("🔇 %s, slow down! You have been muted for spamming.", utils.Mention(a.UserID))
	}
	return utils.Mention(a.UserID)
}

func (r Renderer) Greet(a actions.Greet) string {
	g := models.Greeting{Template: a.Template}
	return g.Render(utils.Mention(a.UserID), r.guildName(a.GuildID))
}

func (r Renderer) LevelUp(a actions.LevelUp) string {
	return fmt.Sprintf("🎉 %s reached level **%d**!", utils.Mention(a.UserID), a.Level)
}

func (r Renderer) Reminder(rem models.Reminder) string {
	return fmt.Sprintf("⏰ Reminder %s: %s", utils.Mention(rem.UserID), rem.Text)
}

var modLogTitles = map[actions.ModEvent]string{
	actions.ModWarn:       "⚠️ Member warned",
	actions.ModEscalation: "🔇 Warning limit reached",
	actions.ModSpam:       "🔇 Spam detected",
	actions.ModFiltered:   "🚫 Filtered message removed",
	actions.ModMute:       "🔇 Member muted",
	actions.ModUnmute:     "🔈 Member unmuted",
	actions.ModClearWarns: "🧹 Warnings cleared",
	actions.ModTicket:     "🗃️ Ticket closed",
}

func (r Renderer) ModLog(a actions.ModLog) discord.Embed {
	title, ok := modLogTitles[a.Event]
	if !ok {
		title = string(a.Event)
	}

	lines := []string{"**Member:** " + utils.Mention(a.UserID)}
	if a.ActorID != 0 {
		lines = append(lines, "**By:** "+utils.Mention(a.ActorID))
	} else {
		lines = append(lines, "**By:** automod")
	}
	if a.Reason != "" {
		lines = append(lines, "**Reason:** "+a.Reason)
	}
	if a.Count > 0 {
		lines = append(lines, fmt.Sprintf("**Count:** %d", a.Count))
	}

	color := utils.WarningColor
	switch a.Event {
	case actions.ModUnmute, actions.ModClearWarns, actions.ModTicket:
		color = utils.InfoColor
	case actions.ModEscalation, actions.ModSpam:
		color = utils.ErrorColor
	}
	return discord.Embed{
		Title:       title,
		Description: strings.Join(lines, "\n"),
		Color:       color,
	}
}

// StarPost builds the board entry for the starred message.
func (r Renderer) StarPost(a actions.StarPost, msg *discord.Message) discord.MessageCreate {
	link := fmt.Sprintf("https://discord.com/channels/%s/%s/%s", a.GuildID, a.SourceChannelID, a.MessageID)
	embed := discord.Embed{
		Description: utils.Truncate(msg.Content, 4000),
		Color:       utils.WarningColor,
		Fields: []discord.EmbedField{{
			Name:  "Source",
			Value: fmt.Sprintf("[Jump to message](%s)", link),
		}},
	}
	embed.Author = &discord.EmbedAuthor{
		Name:    msg.Author.Username,
		IconURL: msg.Author.EffectiveAvatarURL(),
	}
	if len(msg.Attachments) > 0 {
		embed.Image = &discord.EmbedResource{URL: msg.Attachments[0].URL}
	}
	return discord.MessageCreate{
		Content: fmt.Sprintf("%s **%d** %s", a.Emoji, a.Count, utils.ChannelMention(a.SourceChannelID)),
		Embeds:  []discord.Embed{embed},
	}
}

// GiveawayAnnouncement is the embed members react to. It is posted before the
// giveaway is recorded, so it takes the parts rather than the record.
func (r Renderer) GiveawayAnnouncement(prize string, hostID snowflake.ID, endsAt time.Time) discord.Embed {
	return discord.Embed{
		Title: models.GiveawayEmoji + " Giveaway",
		Description: fmt.Sprintf("Prize: **%s**\nReact with %s to enter.\nEnds %s\nHosted by %s",
			prize, models.GiveawayEmoji, utils.Timestamp(endsAt), utils.Mention(hostID)),
		Color: utils.InfoColor,
	}
}

// GiveawayEnded replaces the announcement once the winner is known.
func (r Renderer) GiveawayEnded(g models.Giveaway, winner snowflake.ID, ok bool) discord.Embed {
	result := "No valid entries."
	if ok {
		result = "Winner: " + utils.Mention(winner)
	}
	return discord.Embed{
		Title:       models.GiveawayEmoji + " Giveaway ended",
		Description: fmt.Sprintf("Prize: **%s**\n%s\nHosted by %s", g.Prize, result, utils.Mention(g.HostID)),
		Color:       utils.NeutralColor,
	}
}

func (r Renderer) GiveawayResult(g models.Giveaway, winner snowflake.ID, ok bool) string {
	if !ok {
		return fmt.Sprintf("Nobody entered the giveaway for **%s** 😢", g.Prize)
	}
	return fmt.Sprintf("🎊 Congratulations %s, you won **%s**!", utils.Mention(winner), g.Prize)
}

package handlers

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"net/http"
	"time"

	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/rest"
	"github.com/disgoorg/json"
	"github.com/disgoorg/snowflake/v2"

	"github.com/wardenbot/warden/internal/domain/actions"
	"github.com/wardenbot/warden/internal/domain/giveaways"
	"github.com/wardenbot/warden/internal/domain/models"
)

// reactionPage is the largest page Discord serves for reaction users.
const reactionPage = 100

// Executor performs actions against the platform.
type Executor interface {
	Execute(ctx context.Context, a actions.Action) error
	// CreateChannel returns the id of the created channel.
	CreateChannel(ctx context.Context, a actions.CreateChannel) (snowflake.ID, error)
}

// RestExecutor executes actions through the disgo REST client.
type RestExecutor struct {
	rest   rest.Rest
	render Renderer
	selfID func() snowflake.ID
	intn   func(n int) int
}

var _ Executor = (*RestExecutor)(nil)

func NewRestExecutor(r rest.Rest, render Renderer, selfID func() snowflake.ID) *RestExecutor {
	return &RestExecutor{rest: r, render: render, selfID: selfID, intn: rand.IntN}
}

func (x *RestExecutor) Execute(ctx context.Context, a actions.Action) error {
	opts := []rest.RequestOpt{rest.WithCtx(ctx)}

	var err error
	switch a := a.(type) {
	case actions.MuteUser:
		until := time.Now().Add(a.Duration)
		_, err = x.rest.UpdateMember(a.GuildID, a.UserID, discord.MemberUpdate{
			CommunicationDisabledUntil: json.NewNullablePtr(until),
		}, append(opts, rest.WithReason(a.Reason))...)
	case actions.UnmuteUser:
		_, err = x.rest.UpdateMember(a.GuildID, a.UserID, discord.MemberUpdate{
			CommunicationDisabledUntil: json.NullPtr[time.Time](),
		}, opts...)
	case actions.DeleteMessage:
		err = x.rest.DeleteMessage(a.ChannelID, a.MessageID, opts...)
	case actions.DeleteChannel:
		err = x.rest.DeleteChannel(a.ChannelID, append(opts, rest.WithReason(a.Reason))...)
	case actions.SendMessage:
		err = x.send(a.ChannelID, discord.MessageCreate{Content: a.Content}, opts)
	case actions.DMUser:
		err = x.dm(a.UserID, a.Content, opts)
	case actions.AddRole:
		err = x.rest.AddMemberRole(a.GuildID, a.UserID, a.RoleID, append(opts, rest.WithReason("autorole"))...)
	case actions.DeliverReminder:
		err = x.deliverReminder(a, opts)
	case actions.LevelUp:
		err = x.send(a.ChannelID, discord.MessageCreate{Content: x.render.LevelUp(a)}, opts)
	case actions.Notice:
		err = x.send(a.ChannelID, discord.MessageCreate{Content: x.render.Notice(a)}, opts)
	case actions.Greet:
		err = x.send(a.ChannelID, discord.MessageCreate{Content: x.render.Greet(a)}, opts)
	case actions.ModLog:
		err = x.send(a.ChannelID, discord.MessageCreate{Embeds: []discord.Embed{x.render.ModLog(a)}}, opts)
	case actions.StarPost:
		err = x.starPost(a, opts)
	case actions.DrawGiveaway:
		err = x.drawGiveaway(a, opts)
	case actions.CreateChannel:
		_, err = x.CreateChannel(ctx, a)
	default:
		return fmt.Errorf("unsupported action %T", a)
	}
	return classify(err)
}

func (x *RestExecutor) send(channelID snowflake.ID, msg discord.MessageCreate, opts []rest.RequestOpt) error {
	_, err := x.rest.CreateMessage(channelID, msg, opts...)
	return err
}

func (x *RestExecutor) dm(userID snowflake.ID, content string, opts []rest.RequestOpt) error {
	ch, err := x.rest.CreateDMChannel(userID, opts...)
	if err != nil {
		return err
	}
	return x.send(ch.ID(), discord.MessageCreate{Content: content}, opts)
}

// deliverReminder posts in the reminder's channel and falls back to a direct
// message when the channel is gone or closed to the bot.
func (x *RestExecutor) deliverReminder(a actions.DeliverReminder, opts []rest.RequestOpt) error {
	content := x.render.Reminder(a.Reminder)
	if a.Reminder.ChannelID == 0 {
		return x.dm(a.Reminder.UserID, content, opts)
	}
	err := x.send(a.Reminder.ChannelID, discord.MessageCreate{Content: content}, opts)
	if err == nil {
		return nil
	}
	if dmErr := x.dm(a.Reminder.UserID, content, opts); dmErr != nil {
		return errors.Join(err, dmErr)
	}
	return nil
}

func (x *RestExecutor) starPost(a actions.StarPost, opts []rest.RequestOpt) error {
	msg, err := x.rest.GetMessage(a.SourceChannelID, a.MessageID, opts...)
	if err != nil {
		return err
	}
	return x.send(a.BoardChannelID, x.render.StarPost(a, msg), opts)
}

// drawGiveaway picks a winner among the announcement's reactions and posts the
// result. The announcement is edited afterwards on a best effort basis.
func (x *RestExecutor) drawGiveaway(a actions.DrawGiveaway, opts []rest.RequestOpt) error {
	g := a.Giveaway
	entrants, err := x.entrants(g, opts)
	if err != nil {
		return err
	}
	winner, ok := giveaways.Draw(entrants, x.intn)
	if err = x.send(g.ChannelID, discord.MessageCreate{Content: x.render.GiveawayResult(g, winner, ok)}, opts); err != nil {
		return err
	}

	embeds := []discord.Embed{x.render.GiveawayEnded(g, winner, ok)}
	if _, err = x.rest.UpdateMessage(g.ChannelID, g.MessageID, discord.MessageUpdate{Embeds: &embeds}, opts...); err != nil {
		slog.Warn("Failed to update giveaway announcement",
			slog.String("type", "sys"),
			slog.String("giveaway_id", g.ID),
			slog.Any("err", err),
		)
	}
	return nil
}

func (x *RestExecutor) entrants(g models.Giveaway, opts []rest.RequestOpt) ([]giveaways.Entrant, error) {
	var (
		out   []giveaways.Entrant
		after snowflake.ID
	)
	for {
		users, err := x.rest.GetReactions(g.ChannelID, g.MessageID, models.GiveawayEmoji,
			discord.MessageReactionTypeNormal, int(after), reactionPage, opts...)
		if err != nil {
			return nil, err
		}
		for _, u := range users {
			out = append(out, giveaways.Entrant{UserID: u.ID, Bot: u.Bot})
			after = max(after, u.ID)
		}
		if len(users) < reactionPage {
			return out, nil
		}
	}
}

func (x *RestExecutor) CreateChannel(ctx context.Context, a actions.CreateChannel) (snowflake.ID, error) {
	overwrites := make([]discord.PermissionOverwrite, 0, len(a.Overwrites))
	for _, o := range a.Overwrites {
		allow, deny := permissions(o.Allow), permissions(o.Deny)
		switch o.Target {
		case actions.TargetEveryone:
			// the @everyone role shares the guild's id
			overwrites = append(overwrites, discord.RolePermissionOverwrite{RoleID: a.GuildID, Allow: allow, Deny: deny})
		case actions.TargetMember:
			overwrites = append(overwrites, discord.MemberPermissionOverwrite{UserID: o.UserID, Allow: allow, Deny: deny})
		case actions.TargetBot:
			if x.selfID != nil {
				overwrites = append(overwrites, discord.MemberPermissionOverwrite{UserID: x.selfID(), Allow: allow, Deny: deny})
			}
		}
	}

	ch, err := x.rest.CreateGuildChannel(a.GuildID, discord.GuildTextChannelCreate{
		Name:                 a.Name,
		Topic:                "Support ticket for " + a.OpenerID.String(),
		PermissionOverwrites: overwrites,
	}, rest.WithCtx(ctx), rest.WithReason("ticket opened"))
	if err != nil {
		return 0, classify(err)
	}
	return ch.ID(), nil
}

func permissions(p actions.Permission) discord.Permissions {
	var out discord.Permissions
	if p&actions.PermView != 0 {
		out = out.Add(discord.PermissionViewChannel)
	}
	if p&actions.PermSend != 0 {
		out = out.Add(discord.PermissionSendMessages)
	}
	return out
}

// classify maps a 403 from Discord onto actions.ErrPermissionDenied while
// keeping the original error in the chain.
func classify(err error) error {
	if err == nil {
		return nil
	}
	var restErr *rest.Error
	if errors.As(err, &restErr) && restErr.Response != nil && restErr.Response.StatusCode == http.StatusForbidden {
		return errors.Join(actions.ErrPermissionDenied, err)
	}
	return err
}

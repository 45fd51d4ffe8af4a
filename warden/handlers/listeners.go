package handlers

import (
	"context"
	"log/slog"
	"time"

	"github.com/disgoorg/disgo/bot"
	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/events"
	"github.com/disgoorg/disgo/rest"
	"github.com/disgoorg/snowflake/v2"

	"github.com/wardenbot/warden/internal/domain/engine"
)

const eventTimeout = 5 * time.Second

// Gateway translates disgo events into engine events and hands the
// resulting actions to the dispatcher.
type Gateway struct {
	engine     *engine.Engine
	dispatcher *Dispatcher
	rest       rest.Rest
}

func NewGateway(e *engine.Engine, d *Dispatcher, r rest.Rest) *Gateway {
	return &Gateway{engine: e, dispatcher: d, rest: r}
}

// Listeners returns every listener the gateway needs registered.
func (g *Gateway) Listeners() []bot.EventListener {
	return []bot.EventListener{
		bot.NewListenerFunc(g.OnMessage),
		bot.NewListenerFunc(g.OnReaction),
		bot.NewListenerFunc(g.OnMemberJoin),
		bot.NewListenerFunc(g.OnMemberLeave),
	}
}

// Handle runs one event through the engine and dispatches whatever it
// decided, including actions returned alongside a persistence error.
func (g *Gateway) Handle(ctx context.Context, ev engine.Event) {
	acts, _ := g.engine.Handle(ctx, ev)
	if err := g.dispatcher.Dispatch(ctx, acts); err != nil {
		slog.Error("Failed to queue actions",
			slog.String("type", "error"),
			slog.String("event", string(ev.Kind())),
			slog.Int("actions", len(acts)),
			slog.Any("error", err),
		)
	}
}

func (g *Gateway) OnMessage(e *events.GuildMessageCreate) {
	ctx, cancel := context.WithTimeout(context.Background(), eventTimeout)
	defer cancel()

	g.Handle(ctx, engine.MessagePosted{
		GuildID:   e.GuildID,
		ChannelID: e.ChannelID,
		MessageID: e.MessageID,
		UserID:    e.Message.Author.ID,
		Content:   e.Message.Content,
		At:        e.Message.CreatedAt,
		Bot:       e.Message.Author.Bot || e.Message.Author.System,
	})
}

// OnReaction only fetches the message for reactions that can move a
// starboard, since the gateway event carries no reaction count.
func (g *Gateway) OnReaction(e *events.GuildMessageReactionAdd) {
	ctx, cancel := context.WithTimeout(context.Background(), eventTimeout)
	defer cancel()

	cfg := g.engine.Store().GuildOrDefault(ctx, e.GuildID)
	emoji := EmojiKey(e.Emoji)
	if !cfg.Starboard.Enabled() || emoji != cfg.Starboard.Emoji || e.ChannelID == cfg.Starboard.ChannelID {
		return
	}

	msg, err := g.rest.GetMessage(e.ChannelID, e.MessageID, rest.WithCtx(ctx))
	if err != nil {
		slog.Warn("Failed to fetch starred message",
			slog.String("type", "sys"),
			slog.String("message_id", e.MessageID.String()),
			slog.Any("error", err),
		)
		return
	}

	g.Handle(ctx, engine.ReactionAdded{
		GuildID:   e.GuildID,
		ChannelID: e.ChannelID,
		MessageID: e.MessageID,
		UserID:    e.UserID,
		Emoji:     emoji,
		Count:     ReactionCount(msg.Reactions, emoji),
		Bot:       e.Member.User.Bot,
	})
}

func (g *Gateway) OnMemberJoin(e *events.GuildMemberJoin) {
	ctx, cancel := context.WithTimeout(context.Background(), eventTimeout)
	defer cancel()

	g.Handle(ctx, engine.MemberJoined{
		GuildID: e.GuildID,
		UserID:  e.Member.User.ID,
		Bot:     e.Member.User.Bot,
	})
}

func (g *Gateway) OnMemberLeave(e *events.GuildMemberLeave) {
	ctx, cancel := context.WithTimeout(context.Background(), eventTimeout)
	defer cancel()

	g.Handle(ctx, engine.MemberLeft{
		GuildID: e.GuildID,
		UserID:  e.User.ID,
	})
}

// EmojiKey is the unicode character for standard emoji and name:id for
// custom ones.
func EmojiKey(e discord.PartialEmoji) string {
	var (
		name string
		id   snowflake.ID
	)
	if e.Name != nil {
		name = *e.Name
	}
	if e.ID != nil {
		id = *e.ID
	}
	return emojiKey(name, id)
}

// ReactionEmojiKey keys a message's reaction the same way as EmojiKey.
// Standard emoji carry a zero id.
func ReactionEmojiKey(e discord.Emoji) string {
	return emojiKey(e.Name, e.ID)
}

func emojiKey(name string, id snowflake.ID) string {
	if id == 0 {
		return name
	}
	return name + ":" + id.String()
}

func ReactionCount(reactions []discord.MessageReaction, emoji string) int {
	for _, r := range reactions {
		if ReactionEmojiKey(r.Emoji) == emoji {
			return r.Count
		}
	}
	return 0
}

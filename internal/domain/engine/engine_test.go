package engine_test

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/disgoorg/snowflake/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/wardenbot/warden/internal/clock"
	"github.com/wardenbot/warden/internal/domain/actions"
	"github.com/wardenbot/warden/internal/domain/engine"
	"github.com/wardenbot/warden/internal/domain/giveaways"
	"github.com/wardenbot/warden/internal/domain/models"
	"github.com/wardenbot/warden/internal/store"
	"github.com/wardenbot/warden/internal/store/mock"
)

const (
	guild   = snowflake.ID(1000)
	member  = snowflake.ID(42)
	channel = snowflake.ID(7)
)

var now = time.Date(2024, 7, 1, 10, 0, 0, 0, time.UTC)

type recorder struct {
	mu          sync.Mutex
	events      map[engine.EventKind]int
	actions     int
	persistence int
}

func (r *recorder) EventHandled(kind engine.EventKind, _ time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.events == nil {
		r.events = map[engine.EventKind]int{}
	}
	r.events[kind]++
}

func (r *recorder) ActionsEmitted(acts []actions.Action) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.actions += len(acts)
}

func (r *recorder) PersistenceFailed(error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.persistence++
}

func newEngine(t *testing.T) (*engine.Engine, *clock.Manual, *recorder) {
	t.Helper()
	b, err := store.OpenFile(filepath.Join(t.TempDir(), "data.json"))
	require.NoError(t, err)
	c := clock.NewManual(now)
	rec := &recorder{}
	e, err := engine.New(store.New(b), c, engine.Options{Metrics: rec})
	require.NoError(t, err)
	require.NoError(t, e.Start(context.Background()))
	return e, c, rec
}

func message(content string) engine.MessagePosted {
	return engine.MessagePosted{GuildID: guild, ChannelID: channel, MessageID: 900, UserID: member, Content: content}
}

func kinds(acts []actions.Action) []actions.Kind {
	out := make([]actions.Kind, 0, len(acts))
	for _, a := range acts {
		out = append(out, a.Kind())
	}
	return out
}

func TestEngine_IgnoresBotsAndDirectMessages(t *testing.T) {
	e, _, _ := newEngine(t)
	ctx := context.Background()

	bot := message("hello")
	bot.Bot = true
	acts, err := e.Handle(ctx, bot)
	require.NoError(t, err)
	assert.Empty(t, acts)

	dm := message("hello")
	dm.GuildID = 0
	acts, err = e.Handle(ctx, dm)
	require.NoError(t, err)
	assert.Empty(t, acts)

	rank, err := e.Leveling.Rank(ctx, models.UserKey{GuildID: guild, UserID: member})
	require.NoError(t, err)
	assert.Zero(t, rank.XP)
}

func TestEngine_MessageAwardsXP(t *testing.T) {
	e, _, rec := newEngine(t)
	ctx := context.Background()

	var levelUps []actions.Action
	for i := 0; i < 10; i++ {
		acts, err := e.Handle(ctx, message("hi"))
		require.NoError(t, err)
		levelUps = append(levelUps, acts...)
	}
	assert.Equal(t, []actions.Action{actions.LevelUp{GuildID: guild, UserID: member, ChannelID: channel, Level: 2}}, levelUps)
	assert.Equal(t, 10, rec.events[engine.KindMessagePosted])
	assert.Equal(t, 1, rec.actions)
}

func TestEngine_FilteredWordWarnsAndEscalates(t *testing.T) {
	e, _, _ := newEngine(t)
	ctx := context.Background()

	_, err := e.UpdateGuild(ctx, guild, func(cfg *models.GuildConfig) error {
		cfg.AddFilteredWord("Badword")
		cfg.LogChannel = 55
		cfg.WarnLimit = 2
		return nil
	})
	require.NoError(t, err)

	acts, err := e.Handle(ctx, message("this has a BADWORD inside"))
	require.NoError(t, err)
	assert.Equal(t, []actions.Kind{
		actions.KindDeleteMessage,
		actions.KindNotice,
		actions.KindModLog,
		actions.KindModLog,
	}, kinds(acts))

	acts, err = e.Handle(ctx, message("badword again"))
	require.NoError(t, err)
	assert.Contains(t, acts, actions.MuteUser{GuildID: guild, UserID: member, Duration: 10 * time.Minute, Reason: "warning limit reached"})

	rec, err := e.Escalation.Warnings(ctx, models.UserKey{GuildID: guild, UserID: member})
	require.NoError(t, err)
	assert.Zero(t, rec.WarnCount)
	require.Len(t, rec.Warnings, 2)
	assert.True(t, rec.Warnings[0].Automated)
	assert.Zero(t, rec.XP, "filtered messages earn nothing")
}

func TestEngine_SpamTripMutesAndSkipsXP(t *testing.T) {
	e, c, _ := newEngine(t)
	ctx := context.Background()

	_, err := e.UpdateGuild(ctx, guild, func(cfg *models.GuildConfig) error {
		cfg.AntiSpam.Enable(3, 5)
		return nil
	})
	require.NoError(t, err)

	var last []actions.Action
	for i := 0; i < 3; i++ {
		last, err = e.Handle(ctx, message("spam"))
		require.NoError(t, err)
		c.Advance(time.Second)
	}
	assert.Equal(t, []actions.Kind{actions.KindMuteUser, actions.KindNotice}, kinds(last))
	assert.Equal(t, 5*time.Minute, last[0].(actions.MuteUser).Duration)

	rank, err := e.Leveling.Rank(ctx, models.UserKey{GuildID: guild, UserID: member})
	require.NoError(t, err)
	assert.EqualValues(t, 20, rank.XP)

	// window was reset by the trip
	acts, err := e.Handle(ctx, message("calm"))
	require.NoError(t, err)
	assert.Empty(t, acts)
}

func TestEngine_MembershipAndReactions(t *testing.T) {
	e, _, _ := newEngine(t)
	ctx := context.Background()

	_, err := e.UpdateGuild(ctx, guild, func(cfg *models.GuildConfig) error {
		cfg.AutoRole = 3
		cfg.Welcome = models.Greeting{Enabled: true, ChannelID: 8}
		cfg.Goodbye = models.Greeting{Enabled: true, ChannelID: 9}
		cfg.Starboard.ChannelID = 10
		return nil
	})
	require.NoError(t, err)

	acts, err := e.Handle(ctx, engine.MemberJoined{GuildID: guild, UserID: member})
	require.NoError(t, err)
	assert.Equal(t, []actions.Kind{actions.KindAddRole, actions.KindGreet}, kinds(acts))
	assert.Equal(t, models.DefaultWelcomeTemplate, acts[1].(actions.Greet).Template)

	acts, err = e.Handle(ctx, engine.MemberJoined{GuildID: guild, UserID: 43, Bot: true})
	require.NoError(t, err)
	assert.Empty(t, acts)

	acts, err = e.Handle(ctx, engine.MemberLeft{GuildID: guild, UserID: member})
	require.NoError(t, err)
	assert.Equal(t, []actions.Kind{actions.KindGreet}, kinds(acts))

	star := engine.ReactionAdded{GuildID: guild, ChannelID: channel, MessageID: 5, UserID: 2, Emoji: "⭐", Count: 5}
	acts, err = e.Handle(ctx, star)
	require.NoError(t, err)
	assert.Equal(t, []actions.Kind{actions.KindStarPost}, kinds(acts))

	star.Count = 6
	acts, err = e.Handle(ctx, star)
	require.NoError(t, err)
	assert.Empty(t, acts)
}

func TestEngine_TimerTickDeliversReminders(t *testing.T) {
	e, c, _ := newEngine(t)
	ctx := context.Background()

	_, err := e.Reminders.Schedule(ctx, guild, member, channel, 30*time.Second, "stretch")
	require.NoError(t, err)

	acts, err := e.Handle(ctx, engine.TimerTick{Now: c.Now().Add(15 * time.Second)})
	require.NoError(t, err)
	assert.Empty(t, acts)

	c.Advance(30 * time.Second)
	acts, err = e.Handle(ctx, engine.TimerTick{})
	require.NoError(t, err)
	require.Len(t, acts, 1)
	assert.Equal(t, "stretch", acts[0].(actions.DeliverReminder).Reminder.Text)
}

func TestEngine_TimerTickDrawsGiveaways(t *testing.T) {
	e, c, _ := newEngine(t)
	ctx := context.Background()

	g, err := e.Giveaways.Start(ctx, giveaways.Draft{
		GuildID: guild, ChannelID: channel, MessageID: 900, HostID: member, Prize: "Nitro", Duration: time.Minute,
	})
	require.NoError(t, err)
	_, err = e.Reminders.Schedule(ctx, guild, member, channel, time.Minute, "stretch")
	require.NoError(t, err)

	c.Advance(time.Minute)
	acts, err := e.Handle(ctx, engine.TimerTick{})
	require.NoError(t, err)
	assert.Equal(t, []actions.Kind{actions.KindDeliverReminder, actions.KindDrawGiveaway}, kinds(acts))
	assert.Equal(t, g.ID, acts[1].(actions.DrawGiveaway).Giveaway.ID)
	assert.Zero(t, e.Giveaways.Len())
}

func TestEngine_PersistenceFailureStillReturnsActions(t *testing.T) {
	ctrl := gomock.NewController(t)
	backend := mock.NewMockBackend(ctrl)
	key := models.UserKey{GuildID: guild, UserID: member}
	almost := models.NewUserRecord(key)
	almost.XP = 95

	backend.EXPECT().LoadGuild(gomock.Any(), guild).Return(models.GuildConfig{}, store.ErrNotFound)
	backend.EXPECT().LoadUser(gomock.Any(), key).Return(almost, nil)
	backend.EXPECT().SaveUser(gomock.Any(), gomock.Any()).Return(errors.New("read-only filesystem"))

	rec := &recorder{}
	e, err := engine.New(store.New(backend), clock.NewManual(now), engine.Options{Metrics: rec})
	require.NoError(t, err)

	acts, err := e.Handle(context.Background(), message("hello"))
	assert.ErrorIs(t, err, store.ErrPersistence)
	assert.Equal(t, []actions.Action{actions.LevelUp{GuildID: guild, UserID: member, ChannelID: channel, Level: 2}}, acts)
	assert.Equal(t, 1, rec.persistence)
	assert.Equal(t, 1, e.Store().Pending())
}

func TestEngine_UpdateGuildNormalizes(t *testing.T) {
	e, _, _ := newEngine(t)
	ctx := context.Background()

	cfg, err := e.UpdateGuild(ctx, guild, func(cfg *models.GuildConfig) error {
		cfg.FilteredWords = append(cfg.FilteredWords, " Foo ", "foo")
		cfg.Prefix = ""
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"foo"}, cfg.FilteredWords)
	assert.Equal(t, models.DefaultPrefix, cfg.Prefix)

	boom := errors.New("rejected")
	_, err = e.UpdateGuild(ctx, guild, func(*models.GuildConfig) error { return boom })
	assert.ErrorIs(t, err, boom)

	got, err := e.Guild(ctx, guild)
	require.NoError(t, err)
	assert.Equal(t, []string{"foo"}, got.FilteredWords)
}

package store_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wardenbot/warden/internal/domain/models"
	"github.com/wardenbot/warden/internal/store"
)

func TestFileBackend_CreatesMissingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "data.json")

	b, err := store.OpenFile(path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = b.Close() })

	_, err = os.Stat(path)
	require.NoError(t, err)

	_, err = b.LoadGuild(context.Background(), 1)
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestFileBackend_FillsPartialDocument(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data.json")
	partial := `{
	  "guilds": {"100": {"prefix": "?"}},
	  "users": {"100:200": {"xp": 40}}
	}`
	require.NoError(t, os.WriteFile(path, []byte(partial), 0o644))

	b, err := store.OpenFile(path)
	require.NoError(t, err)
	ctx := context.Background()

	g, err := b.LoadGuild(ctx, 100)
	require.NoError(t, err)
	assert.EqualValues(t, 100, g.GuildID)
	assert.Equal(t, "?", g.Prefix)
	assert.Equal(t, models.DefaultSpamThreshold, g.AntiSpam.Threshold)
	assert.Equal(t, models.DefaultWarnLimit, g.WarnLimit)

	u, err := b.LoadUser(ctx, models.UserKey{GuildID: 100, UserID: 200})
	require.NoError(t, err)
	assert.EqualValues(t, 200, u.UserID)
	assert.EqualValues(t, 40, u.XP)
	assert.Equal(t, 1, u.Level)

	reminders, err := b.LoadReminders(ctx)
	require.NoError(t, err)
	assert.Empty(t, reminders)
}

func TestFileBackend_EmptyFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data.json")
	require.NoError(t, os.WriteFile(path, nil, 0o644))

	_, err := store.OpenFile(path)
	require.NoError(t, err)
}

func TestFileBackend_SurvivesReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data.json")
	ctx := context.Background()
	key := models.UserKey{GuildID: 1, UserID: 2}
	due := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)

	b, err := store.OpenFile(path)
	require.NoError(t, err)

	user := models.NewUserRecord(key)
	user.Balance = 77
	user.Warnings = append(user.Warnings, models.Warning{Reason: "spam", Automated: true, IssuedAt: due})
	require.NoError(t, b.SaveUser(ctx, user))
	require.NoError(t, b.SaveTicket(ctx, models.Ticket{ID: "t1", GuildID: 1, OpenerID: 2, ChannelID: 9, Status: models.TicketOpen}))
	require.NoError(t, b.SaveReminder(ctx, models.Reminder{ID: "r1", UserID: 2, DueAt: due, Text: "stretch"}))
	require.NoError(t, b.SaveReminder(ctx, models.Reminder{ID: "r2", UserID: 2, DueAt: due, Text: "drink"}))
	require.NoError(t, b.DeleteReminders(ctx, []string{"r1"}))
	require.NoError(t, b.Close())

	b, err = store.OpenFile(path)
	require.NoError(t, err)

	got, err := b.LoadUser(ctx, key)
	require.NoError(t, err)
	assert.EqualValues(t, 77, got.Balance)
	require.Len(t, got.Warnings, 1)
	assert.Equal(t, "spam", got.Warnings[0].Reason)

	ticket, err := b.FindTicketByChannel(ctx, 9)
	require.NoError(t, err)
	assert.Equal(t, "t1", ticket.ID)

	reminders, err := b.LoadReminders(ctx)
	require.NoError(t, err)
	require.Len(t, reminders, 1)
	assert.Equal(t, "drink", reminders[0].Text)
	assert.True(t, due.Equal(reminders[0].DueAt))
}

func TestFileBackend_FindTicketPrefersOpen(t *testing.T) {
	b, err := store.OpenFile(filepath.Join(t.TempDir(), "data.json"))
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, b.SaveTicket(ctx, models.Ticket{ID: "old", ChannelID: 5, Status: models.TicketClosed}))
	require.NoError(t, b.SaveTicket(ctx, models.Ticket{ID: "new", ChannelID: 5, Status: models.TicketOpen}))

	got, err := b.FindTicketByChannel(ctx, 5)
	require.NoError(t, err)
	assert.Equal(t, "new", got.ID)

	_, err = b.FindTicketByChannel(ctx, 6)
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestFileBackend_SnapshotRestore(t *testing.T) {
	ctx := context.Background()
	src, err := store.OpenFile(filepath.Join(t.TempDir(), "a.json"))
	require.NoError(t, err)

	require.NoError(t, src.SaveGuild(ctx, models.DefaultGuildConfig(3)))
	require.NoError(t, src.SaveUser(ctx, models.NewUserRecord(models.UserKey{GuildID: 3, UserID: 4})))

	snap, err := src.Snapshot(ctx)
	require.NoError(t, err)
	assert.Len(t, snap.Guilds, 1)
	assert.Len(t, snap.Users, 1)

	dst, err := store.OpenFile(filepath.Join(t.TempDir(), "b.json"))
	require.NoError(t, err)
	require.NoError(t, dst.Restore(ctx, snap))

	g, err := dst.LoadGuild(ctx, 3)
	require.NoError(t, err)
	assert.Equal(t, models.DefaultGuildConfig(3), g)
}

func TestImportLegacy(t *testing.T) {
	legacy := `{
	  "prefix": {"111": "?"},
	  "log_channel": {"111": 900},
	  "welcome": {"111": {"enabled": true, "channel": 901, "message": "hi {user}"}},
	  "goodbye": {},
	  "autorole": {"111": null, "222": 700},
	  "filters": {"111": ["Bad", "bad", "worse"]},
	  "antispam": {"111": {"enabled": true, "threshold": 4, "interval": 9}},
	  "warns": {"111": {"5": 3}},
	  "tickets": {"111": {"5": 902}},
	  "starboard": {"111": {"channel": 903, "threshold": 2}},
	  "reminders": [{"guild": 111, "user": 5, "channel": 904, "when_ts": 1700000000, "text": "tea"}]
	}`
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	snap, err := store.ImportLegacy(strings.NewReader(legacy), now)
	require.NoError(t, err)

	require.Len(t, snap.Guilds, 2)
	g := snap.Guilds[0]
	assert.EqualValues(t, 111, g.GuildID)
	assert.Equal(t, "?", g.Prefix)
	assert.EqualValues(t, 900, g.LogChannel)
	assert.True(t, g.Welcome.Enabled)
	assert.Equal(t, "hi {user}", g.Welcome.Template)
	assert.Equal(t, models.DefaultGoodbyeTemplate, g.Goodbye.Template)
	assert.Equal(t, []string{"bad", "worse"}, g.FilteredWords)
	assert.Equal(t, models.AntiSpamConfig{Enabled: true, Threshold: 4, WindowSeconds: 9}, g.AntiSpam)
	assert.EqualValues(t, 903, g.Starboard.ChannelID)
	assert.Equal(t, 2, g.Starboard.Threshold)
	assert.EqualValues(t, 700, snap.Guilds[1].AutoRole)

	require.Len(t, snap.Users, 1)
	u := snap.Users[0]
	assert.Equal(t, 3, u.WarnCount)
	assert.EqualValues(t, 902, u.OpenTicketChannel)

	require.Len(t, snap.Tickets, 1)
	assert.Equal(t, u.OpenTicketID, snap.Tickets[0].ID)
	assert.True(t, snap.Tickets[0].IsOpen())

	require.Len(t, snap.Reminders, 1)
	assert.Equal(t, time.Unix(1700000000, 0).UTC(), snap.Reminders[0].DueAt)
	assert.NotEmpty(t, snap.Reminders[0].ID)
}

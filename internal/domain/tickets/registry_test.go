package tickets_test

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

	"github.com/wardenbot/warden/internal/clock"
	"github.com/wardenbot/warden/internal/domain/actions"
	"github.com/wardenbot/warden/internal/domain/models"
	"github.com/wardenbot/warden/internal/domain/tickets"
	"github.com/wardenbot/warden/internal/store"
)

const (
	guild = 10
	user  = 20
)

var opened = time.Date(2024, 4, 1, 8, 0, 0, 0, time.UTC)

func newRegistry(t *testing.T) (*tickets.Registry, *clock.Manual) {
	t.Helper()
	b, err := store.OpenFile(filepath.Join(t.TempDir(), "data.json"))
	require.NoError(t, err)
	c := clock.NewManual(opened)
	return tickets.NewRegistry(store.New(b), c), c
}

func TestRegistry_OpenTwiceReturnsExisting(t *testing.T) {
	r, _ := newRegistry(t)
	ctx := context.Background()

	first, err := r.Open(ctx, guild, user, 300)
	require.NoError(t, err)
	assert.True(t, first.IsOpen())
	assert.Equal(t, opened, first.OpenedAt)

	_, err = r.Open(ctx, guild, user, 301)
	require.ErrorIs(t, err, tickets.ErrAlreadyOpen)
	var already *tickets.AlreadyOpenError
	require.ErrorAs(t, err, &already)
	assert.EqualValues(t, 300, already.ChannelID)
	assert.Equal(t, first.ID, already.TicketID)

	// other guilds and other members are unaffected
	_, err = r.Open(ctx, guild+1, user, 302)
	assert.NoError(t, err)
	_, err = r.Open(ctx, guild, user+1, 303)
	assert.NoError(t, err)
}

func TestRegistry_ConcurrentOpenOnlyOneWins(t *testing.T) {
	r, _ := newRegistry(t)
	ctx := context.Background()

	var wg sync.WaitGroup
	var mu sync.Mutex
	wins, rejected := 0, 0
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(ch int) {
			defer wg.Done()
			_, err := r.Open(ctx, guild, user, snowflake.ID(400+ch))
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				wins++
			case errors.Is(err, tickets.ErrAlreadyOpen):
				rejected++
			}
		}(i)
	}
	wg.Wait()
	assert.Equal(t, 1, wins)
	assert.Equal(t, 9, rejected)
}

func TestRegistry_CloseIsIdempotent(t *testing.T) {
	r, c := newRegistry(t)
	ctx := context.Background()

	tk, err := r.Open(ctx, guild, user, 300)
	require.NoError(t, err)

	c.Advance(time.Hour)
	closed, acts, err := r.Close(ctx, tk.ID, 99)
	require.NoError(t, err)
	assert.False(t, closed.IsOpen())
	assert.Equal(t, opened.Add(time.Hour), closed.ClosedAt)
	assert.EqualValues(t, 99, closed.ClosedBy)
	assert.Equal(t, []actions.Action{actions.DeleteChannel{GuildID: guild, ChannelID: 300, Reason: "ticket closed"}}, acts)

	c.Advance(time.Hour)
	again, acts, err := r.Close(ctx, tk.ID, 98)
	require.NoError(t, err)
	assert.Empty(t, acts)
	assert.Equal(t, closed.ClosedAt, again.ClosedAt)
	assert.EqualValues(t, 99, again.ClosedBy)

	// slot is free again
	_, err = r.Open(ctx, guild, user, 301)
	assert.NoError(t, err)
}

func TestRegistry_CloseUnknown(t *testing.T) {
	r, _ := newRegistry(t)
	_, _, err := r.Close(context.Background(), "missing", 1)
	assert.ErrorIs(t, err, store.ErrNotFound)

	_, _, err = r.CloseByChannel(context.Background(), 12345, 1)
	assert.ErrorIs(t, err, tickets.ErrNotTicket)
}

func TestRegistry_RequestAttachClose(t *testing.T) {
	r, _ := newRegistry(t)
	ctx := context.Background()

	tk, acts, err := r.Request(ctx, guild, user, "Some User!")
	require.NoError(t, err)
	require.Len(t, acts, 1)
	create := acts[0].(actions.CreateChannel)
	assert.Equal(t, "ticket-some-user", create.Name)
	assert.Equal(t, tk.ID, create.TicketID)
	assert.Len(t, create.Overwrites, 3)

	// pending ticket blocks a second request without a channel
	_, _, err = r.Request(ctx, guild, user, "Some User")
	var already *tickets.AlreadyOpenError
	require.ErrorAs(t, err, &already)
	assert.Zero(t, already.ChannelID)

	_, err = r.AttachChannel(ctx, tk.ID, 777)
	require.NoError(t, err)

	open, ok, err := r.OpenFor(ctx, models.UserKey{GuildID: guild, UserID: user})
	require.NoError(t, err)
	assert.True(t, ok)
	assert.EqualValues(t, 777, open.ChannelID)

	closed, acts, err := r.CloseByChannel(ctx, 777, user)
	require.NoError(t, err)
	assert.Equal(t, tk.ID, closed.ID)
	assert.Len(t, acts, 1)
}

func TestRegistry_AbandonAndLateAttach(t *testing.T) {
	r, _ := newRegistry(t)
	ctx := context.Background()

	tk, _, err := r.Request(ctx, guild, user, "x")
	require.NoError(t, err)
	require.NoError(t, r.Abandon(ctx, tk.ID))

	_, err = r.AttachChannel(ctx, tk.ID, 888)
	assert.ErrorIs(t, err, tickets.ErrClosed)

	_, _, err = r.Request(ctx, guild, user, "x")
	assert.NoError(t, err)
}

func TestChannelName(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "plain", in: "alice", want: "ticket-alice"},
		{name: "spaces and case", in: "Bob The Builder", want: "ticket-bob-the-builder"},
		{name: "symbols only", in: "!!!", want: "ticket-20"},
		{name: "unicode letters kept", in: "小明", want: "ticket-小明"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tickets.ChannelName(tt.in, user))
		})
	}
}

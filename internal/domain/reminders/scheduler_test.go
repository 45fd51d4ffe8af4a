package reminders_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/wardenbot/warden/internal/clock"
	"github.com/wardenbot/warden/internal/domain/actions"
	"github.com/wardenbot/warden/internal/domain/models"
	"github.com/wardenbot/warden/internal/domain/reminders"
	"github.com/wardenbot/warden/internal/store"
	"github.com/wardenbot/warden/internal/store/mock"
)

var start = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

func TestParseDelay(t *testing.T) {
	tests := []struct {
		in      string
		want    time.Duration
		wantErr bool
	}{
		{in: "30s", want: 30 * time.Second},
		{in: "5m", want: 5 * time.Minute},
		{in: "2h", want: 2 * time.Hour},
		{in: "1d", want: 24 * time.Hour},
		{in: " 10M ", want: 10 * time.Minute},
		{in: "0s", wantErr: true},
		{in: "5", wantErr: true},
		{in: "5w", wantErr: true},
		{in: "1h30m", wantErr: true},
		{in: "400d", wantErr: true},
		{in: "", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := reminders.ParseDelay(tt.in)
			if tt.wantErr {
				assert.ErrorIs(t, err, reminders.ErrInvalidDelay)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func newFileScheduler(t *testing.T) (*reminders.Scheduler, store.Backend, *clock.Manual) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "data.json")
	b, err := store.OpenFile(path)
	require.NoError(t, err)
	c := clock.NewManual(start)
	return reminders.NewScheduler(b, c), b, c
}

func TestScheduler_DeliversInDueOrder(t *testing.T) {
	s, _, c := newFileScheduler(t)
	ctx := context.Background()

	_, err := s.Schedule(ctx, 1, 10, 100, 2*time.Minute, "second")
	require.NoError(t, err)
	_, err = s.Schedule(ctx, 1, 11, 100, time.Minute, "first")
	require.NoError(t, err)
	_, err = s.Schedule(ctx, 1, 12, 0, time.Hour, "later by dm")
	require.NoError(t, err)

	acts, err := s.Tick(ctx, c.Now())
	require.NoError(t, err)
	assert.Empty(t, acts)

	c.Advance(2 * time.Minute)
	acts, err = s.Tick(ctx, c.Now())
	require.NoError(t, err)
	require.Len(t, acts, 2)
	assert.Equal(t, "first", acts[0].(actions.DeliverReminder).Reminder.Text)
	assert.Equal(t, "second", acts[1].(actions.DeliverReminder).Reminder.Text)
	assert.Equal(t, 1, s.Len())

	c.Advance(time.Hour)
	acts, err = s.TickNow(ctx)
	require.NoError(t, err)
	require.Len(t, acts, 1)
	dm, ok := acts[0].(actions.DeliverReminder)
	require.True(t, ok, "direct-message reminders are delivered like channel ones")
	assert.Equal(t, "later by dm", dm.Reminder.Text)
	assert.Zero(t, dm.Reminder.ChannelID)
	assert.Equal(t, 12, int(dm.Reminder.UserID))
	assert.Zero(t, s.Len())
}

func TestScheduler_SameDueTimeKeepsInsertionOrder(t *testing.T) {
	s, _, c := newFileScheduler(t)
	ctx := context.Background()
	for _, text := range []string{"a", "b", "c"} {
		_, err := s.Schedule(ctx, 1, 10, 100, time.Minute, text)
		require.NoError(t, err)
	}

	c.Advance(time.Minute)
	acts, err := s.TickNow(ctx)
	require.NoError(t, err)
	require.Len(t, acts, 3)
	for i, text := range []string{"a", "b", "c"} {
		assert.Equal(t, text, acts[i].(actions.DeliverReminder).Reminder.Text)
	}
}

func TestScheduler_ReloadAfterRestart(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data.json")
	b, err := store.OpenFile(path)
	require.NoError(t, err)
	c := clock.NewManual(start)
	ctx := context.Background()

	s := reminders.NewScheduler(b, c)
	r, err := s.Schedule(ctx, 1, 10, 100, 10*time.Minute, "survive")
	require.NoError(t, err)
	require.NoError(t, b.Close())

	reopened, err := store.OpenFile(path)
	require.NoError(t, err)
	restarted := reminders.NewScheduler(reopened, c)
	require.NoError(t, restarted.Load(ctx))
	assert.Equal(t, 1, restarted.Len())

	next, ok := restarted.Next()
	require.True(t, ok)
	assert.True(t, r.DueAt.Equal(next))

	c.Advance(10 * time.Minute)
	acts, err := restarted.TickNow(ctx)
	require.NoError(t, err)
	require.Len(t, acts, 1)
	assert.Equal(t, r.ID, acts[0].(actions.DeliverReminder).Reminder.ID)

	left, err := reopened.LoadReminders(ctx)
	require.NoError(t, err)
	assert.Empty(t, left)
}

func TestScheduler_Validation(t *testing.T) {
	s, _, _ := newFileScheduler(t)
	ctx := context.Background()

	_, err := s.Schedule(ctx, 1, 10, 100, time.Minute, "   ")
	assert.ErrorIs(t, err, reminders.ErrEmptyText)
	_, err = s.Schedule(ctx, 1, 10, 100, 0, "x")
	assert.ErrorIs(t, err, reminders.ErrInvalidDelay)
	assert.Zero(t, s.Len())
}

func TestScheduler_PendingAndCancel(t *testing.T) {
	s, b, _ := newFileScheduler(t)
	ctx := context.Background()

	mine, err := s.Schedule(ctx, 1, 10, 100, time.Hour, "mine")
	require.NoError(t, err)
	_, err = s.Schedule(ctx, 1, 11, 100, time.Minute, "theirs")
	require.NoError(t, err)

	pending := s.Pending(10)
	require.Len(t, pending, 1)
	assert.Equal(t, mine.ID, pending[0].ID)

	assert.ErrorIs(t, s.Cancel(ctx, mine.ID, 11), reminders.ErrNotFound)
	require.NoError(t, s.Cancel(ctx, mine.ID, 10))
	assert.Empty(t, s.Pending(10))
	assert.ErrorIs(t, s.Cancel(ctx, mine.ID, 10), reminders.ErrNotFound)

	stored, err := b.LoadReminders(ctx)
	require.NoError(t, err)
	require.Len(t, stored, 1)
	assert.Equal(t, "theirs", stored[0].Text)
}

func TestScheduler_FailedDeleteIsRetried(t *testing.T) {
	ctrl := gomock.NewController(t)
	backend := mock.NewMockBackend(ctrl)
	c := clock.NewManual(start)
	ctx := context.Background()

	backend.EXPECT().LoadReminders(gomock.Any()).Return([]models.Reminder{
		{ID: "r1", GuildID: 1, UserID: 10, ChannelID: 100, DueAt: start.Add(time.Minute), Text: "ping"},
	}, nil)
	s := reminders.NewScheduler(backend, c)
	require.NoError(t, s.Load(ctx))

	c.Advance(time.Minute)
	gomock.InOrder(
		backend.EXPECT().DeleteReminders(gomock.Any(), []string{"r1"}).Return(errors.New("db down")),
		backend.EXPECT().DeleteReminders(gomock.Any(), []string{"r1"}).Return(nil),
	)

	acts, err := s.TickNow(ctx)
	assert.ErrorIs(t, err, store.ErrPersistence)
	assert.Len(t, acts, 1, "delivery still happens")

	acts, err = s.TickNow(ctx)
	assert.NoError(t, err)
	assert.Empty(t, acts, "a reminder is delivered once per process")
}

func TestScheduler_FailedSaveIsRetried(t *testing.T) {
	ctrl := gomock.NewController(t)
	backend := mock.NewMockBackend(ctrl)
	c := clock.NewManual(start)
	ctx := context.Background()
	s := reminders.NewScheduler(backend, c)

	gomock.InOrder(
		backend.EXPECT().SaveReminder(gomock.Any(), gomock.Any()).Return(errors.New("disk full")),
		backend.EXPECT().SaveReminder(gomock.Any(), gomock.Any()).Return(nil),
	)

	r, err := s.Schedule(ctx, 1, 10, 100, time.Hour, "later")
	assert.ErrorIs(t, err, store.ErrPersistence)
	assert.NotEmpty(t, r.ID)
	assert.Equal(t, 1, s.Len())

	acts, err := s.TickNow(ctx)
	assert.NoError(t, err)
	assert.Empty(t, acts)
}

package handlers

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/disgoorg/snowflake/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wardenbot/warden/internal/domain/actions"
	"github.com/wardenbot/warden/internal/domain/models"
	"github.com/wardenbot/warden/internal/domain/tickets"
)

type fakeExecutor struct {
	mu        sync.Mutex
	executed  []actions.Action
	fail      map[actions.Kind]error
	channelID snowflake.ID
	createErr error
}

func (f *fakeExecutor) Execute(_ context.Context, a actions.Action) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.executed = append(f.executed, a)
	return f.fail[a.Kind()]
}

func (f *fakeExecutor) CreateChannel(_ context.Context, a actions.CreateChannel) (snowflake.ID, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.executed = append(f.executed, a)
	return f.channelID, f.createErr
}

func (f *fakeExecutor) kinds() []actions.Kind {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]actions.Kind, 0, len(f.executed))
	for _, a := range f.executed {
		out = append(out, a.Kind())
	}
	return out
}

type fakeTickets struct {
	mu        sync.Mutex
	attached  map[string]snowflake.ID
	abandoned []string
	attachErr error
}

func (f *fakeTickets) AttachChannel(_ context.Context, ticketID string, channelID snowflake.ID) (models.Ticket, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.attachErr != nil {
		return models.Ticket{}, f.attachErr
	}
	if f.attached == nil {
		f.attached = map[string]snowflake.ID{}
	}
	f.attached[ticketID] = channelID
	return models.Ticket{ID: ticketID, ChannelID: channelID}, nil
}

func (f *fakeTickets) Abandon(_ context.Context, ticketID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.abandoned = append(f.abandoned, ticketID)
	return nil
}

type fakeStars struct {
	mu        sync.Mutex
	forgotten []snowflake.ID
}

func (f *fakeStars) Forget(id snowflake.ID) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.forgotten = append(f.forgotten, id)
}

type failures struct {
	mu   sync.Mutex
	list []*actions.Failure
}

func (f *failures) record(fail *actions.Failure) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.list = append(f.list, fail)
}

func TestDispatcherRunsBatchInOrder(t *testing.T) {
	exec := &fakeExecutor{}
	d := NewDispatcher(DispatcherConfig{Executor: exec, Workers: 2})

	batch := []actions.Action{
		actions.DeleteMessage{ChannelID: 1, MessageID: 2},
		actions.Notice{ChannelID: 1, UserID: 3, Reason: actions.NoticeFiltered},
		actions.ModLog{ChannelID: 9, UserID: 3, Event: actions.ModFiltered},
	}
	require.NoError(t, d.Dispatch(context.Background(), batch))
	require.NoError(t, d.Dispatch(context.Background(), nil))
	require.NoError(t, d.Close(time.Second))

	assert.Equal(t, []actions.Kind{actions.KindDeleteMessage, actions.KindNotice, actions.KindModLog}, exec.kinds())
	assert.ErrorIs(t, d.Dispatch(context.Background(), batch), ErrDispatcherClosed)
}

func TestDispatcherCreateChannelAttaches(t *testing.T) {
	exec := &fakeExecutor{channelID: 555}
	tk := &fakeTickets{}
	d := NewDispatcher(DispatcherConfig{Executor: exec, Tickets: tk})

	require.NoError(t, d.Dispatch(context.Background(), []actions.Action{
		actions.CreateChannel{GuildID: 1, TicketID: "t1", OpenerID: 2, Name: "ticket-bob"},
	}))
	require.NoError(t, d.Close(time.Second))

	assert.Equal(t, snowflake.ID(555), tk.attached["t1"])
	assert.Equal(t, []actions.Kind{actions.KindCreateChannel, actions.KindSendMessage}, exec.kinds())
}

func TestDispatcherCreateChannelFailureAbandons(t *testing.T) {
	exec := &fakeExecutor{createErr: actions.ErrPermissionDenied}
	tk := &fakeTickets{}
	var fails failures
	d := NewDispatcher(DispatcherConfig{Executor: exec, Tickets: tk, OnFailure: fails.record})

	require.NoError(t, d.Dispatch(context.Background(), []actions.Action{
		actions.CreateChannel{GuildID: 1, TicketID: "t1", OpenerID: 2},
	}))
	require.NoError(t, d.Close(time.Second))

	assert.Equal(t, []string{"t1"}, tk.abandoned)
	require.Len(t, fails.list, 1)
	assert.ErrorIs(t, fails.list[0], actions.ErrPermissionDenied)
}

func TestDispatcherClosedTicketRemovesChannel(t *testing.T) {
	exec := &fakeExecutor{channelID: 77}
	tk := &fakeTickets{attachErr: tickets.ErrClosed}
	d := NewDispatcher(DispatcherConfig{Executor: exec, Tickets: tk})

	require.NoError(t, d.Dispatch(context.Background(), []actions.Action{
		actions.CreateChannel{GuildID: 1, TicketID: "t1", OpenerID: 2},
	}))
	require.NoError(t, d.Close(time.Second))

	kinds := exec.kinds()
	require.Len(t, kinds, 2)
	assert.Equal(t, actions.KindDeleteChannel, kinds[1])
	exec.mu.Lock()
	assert.Equal(t, snowflake.ID(77), exec.executed[1].(actions.DeleteChannel).ChannelID)
	exec.mu.Unlock()
}

func TestDispatcherFailedStarPostIsForgotten(t *testing.T) {
	exec := &fakeExecutor{fail: map[actions.Kind]error{actions.KindStarPost: errors.New("unknown message")}}
	stars := &fakeStars{}
	var fails failures
	d := NewDispatcher(DispatcherConfig{Executor: exec, Starboard: stars, OnFailure: fails.record})

	require.NoError(t, d.Dispatch(context.Background(), []actions.Action{
		actions.StarPost{MessageID: 42, BoardChannelID: 9, SourceChannelID: 8},
	}))
	require.NoError(t, d.Close(time.Second))

	assert.Equal(t, []snowflake.ID{42}, stars.forgotten)
	assert.Len(t, fails.list, 1)
}

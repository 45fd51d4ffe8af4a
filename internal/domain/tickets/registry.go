package tickets

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode"

	"github.com/disgoorg/snowflake/v2"
	"github.com/google/uuid"
	"github.com/puzpuzpuz/xsync/v3"

	"github.com/wardenbot/warden/internal/clock"
	"github.com/wardenbot/warden/internal/domain/actions"
	"github.com/wardenbot/warden/internal/domain/models"
	"github.com/wardenbot/warden/internal/store"
)

var (
	ErrAlreadyOpen = errors.New("ticket already open")
	ErrNotTicket   = errors.New("channel is not a ticket")
	ErrClosed      = errors.New("ticket is closed")

	errNoop = errors.New("no change")
)

// AlreadyOpenError carries the ticket that blocks a new one. ChannelID is zero
// while that ticket's channel is still being created.
type AlreadyOpenError struct {
	TicketID  string
	ChannelID snowflake.ID
}

func (e *AlreadyOpenError) Error() string {
	if e.ChannelID == 0 {
		return fmt.Sprintf("ticket %s is already being opened", e.TicketID)
	}
	return fmt.Sprintf("ticket already open in channel %s", e.ChannelID)
}

func (e *AlreadyOpenError) Is(target error) bool {
	return target == ErrAlreadyOpen
}

// Registry enforces one open ticket per member. The slot lives on the
// member's record so the check and the reservation share one atomic update.
type Registry struct {
	store    *store.Store
	clock    clock.Clock
	channels *xsync.MapOf[snowflake.ID, string]
}

func NewRegistry(s *store.Store, c clock.Clock) *Registry {
	return &Registry{
		store:    s,
		clock:    c,
		channels: xsync.NewMapOf[snowflake.ID, string](),
	}
}

// Open registers a ticket for a channel that already exists.
func (r *Registry) Open(ctx context.Context, guildID snowflake.ID, userID snowflake.ID, channelID snowflake.ID) (models.Ticket, error) {
	return r.reserve(ctx, models.UserKey{GuildID: guildID, UserID: userID}, channelID)
}

// Request reserves the member's slot and asks the gateway for a private
// channel. The gateway reports back through AttachChannel or Abandon.
func (r *Registry) Request(ctx context.Context, guildID snowflake.ID, userID snowflake.ID, userName string) (models.Ticket, []actions.Action, error) {
	t, err := r.reserve(ctx, models.UserKey{GuildID: guildID, UserID: userID}, 0)
	if t.ID == "" {
		return models.Ticket{}, nil, err
	}

	acts := []actions.Action{actions.CreateChannel{
		GuildID:  guildID,
		TicketID: t.ID,
		OpenerID: userID,
		Name:     ChannelName(userName, userID),
		Overwrites: []actions.Overwrite{
			{Target: actions.TargetEveryone, Deny: actions.PermView},
			{Target: actions.TargetMember, UserID: userID, Allow: actions.PermView | actions.PermSend},
			{Target: actions.TargetBot, Allow: actions.PermView | actions.PermSend},
		},
	}}
	return t, acts, err
}

func (r *Registry) reserve(ctx context.Context, key models.UserKey, channelID snowflake.ID) (models.Ticket, error) {
	t := models.Ticket{
		ID:        uuid.NewString(),
		GuildID:   key.GuildID,
		OpenerID:  key.UserID,
		ChannelID: channelID,
		Status:    models.TicketOpen,
		OpenedAt:  r.clock.Now(),
	}

	var (
		applied bool
		putErr  error
	)
	_, err := r.store.Users.Update(ctx, key, func(u *models.UserRecord) error {
		if u.HasOpenTicket() && r.slotIsLive(ctx, u.OpenTicketID) {
			return &AlreadyOpenError{TicketID: u.OpenTicketID, ChannelID: u.OpenTicketChannel}
		}
		// ticket lock is taken inside the member lock, never the other way
		putErr = r.store.Tickets.Put(ctx, t)
		applied = true
		u.OpenTicketID = t.ID
		u.OpenTicketChannel = channelID
		return nil
	})
	if !applied {
		return models.Ticket{}, err
	}
	if channelID != 0 {
		r.channels.Store(channelID, t.ID)
	}
	return t, errors.Join(putErr, err)
}

// slotIsLive reports whether a recorded slot still points at an open ticket.
// Unreadable tickets count as live so a storage hiccup cannot double-open.
func (r *Registry) slotIsLive(ctx context.Context, id string) bool {
	t, err := r.store.Tickets.Get(ctx, id)
	switch {
	case errors.Is(err, store.ErrNotFound):
		return false
	case err != nil:
		return true
	}
	return t.IsOpen()
}

// AttachChannel records the channel created for a requested ticket. ErrClosed
// is returned when the ticket was closed while the channel was being made.
func (r *Registry) AttachChannel(ctx context.Context, ticketID string, channelID snowflake.ID) (models.Ticket, error) {
	t, err := r.store.Tickets.Update(ctx, ticketID, func(t *models.Ticket) error {
		if !t.IsOpen() {
			return ErrClosed
		}
		t.ChannelID = channelID
		return nil
	})
	if t.ID == "" {
		return models.Ticket{}, err
	}
	r.channels.Store(channelID, t.ID)

	_, userErr := r.store.Users.Update(ctx, t.Opener(), func(u *models.UserRecord) error {
		if u.OpenTicketID != t.ID {
			return errNoop
		}
		u.OpenTicketChannel = channelID
		return nil
	})
	if errors.Is(userErr, errNoop) {
		userErr = nil
	}
	return t, errors.Join(err, userErr)
}

// Abandon closes a requested ticket whose channel could not be created.
func (r *Registry) Abandon(ctx context.Context, ticketID string) error {
	_, _, err := r.Close(ctx, ticketID, 0)
	return err
}

// Close marks the ticket closed, frees the opener's slot and asks for the
// channel to be removed. Closing a closed ticket changes nothing.
func (r *Registry) Close(ctx context.Context, ticketID string, closer snowflake.ID) (models.Ticket, []actions.Action, error) {
	now := r.clock.Now()
	t, err := r.store.Tickets.Update(ctx, ticketID, func(t *models.Ticket) error {
		if !t.IsOpen() {
			return errNoop
		}
		t.Status = models.TicketClosed
		t.ClosedAt = now
		t.ClosedBy = closer
		return nil
	})
	if errors.Is(err, errNoop) {
		t, err = r.store.Tickets.Get(ctx, ticketID)
		return t, nil, err
	}
	if t.ID == "" {
		return models.Ticket{}, nil, err
	}

	_, userErr := r.store.Users.Update(ctx, t.Opener(), func(u *models.UserRecord) error {
		if u.OpenTicketID != t.ID {
			return errNoop
		}
		u.OpenTicketID = ""
		u.OpenTicketChannel = 0
		return nil
	})
	if errors.Is(userErr, errNoop) {
		userErr = nil
	}

	var acts []actions.Action
	if t.ChannelID != 0 {
		r.channels.Delete(t.ChannelID)
		acts = append(acts, actions.DeleteChannel{
			GuildID:   t.GuildID,
			ChannelID: t.ChannelID,
			Reason:    "ticket closed",
		})
	}
	cfg := r.store.GuildOrDefault(ctx, t.GuildID)
	acts = append(acts, actions.ModLogFor(cfg, actions.ModLog{
		UserID:  t.OpenerID,
		ActorID: closer,
		Event:   actions.ModTicket,
	})...)
	return t, acts, errors.Join(err, userErr)
}

// CloseByChannel closes the ticket owning channelID.
func (r *Registry) CloseByChannel(ctx context.Context, channelID snowflake.ID, closer snowflake.ID) (models.Ticket, []actions.Action, error) {
	id, err := r.ticketForChannel(ctx, channelID)
	if err != nil {
		return models.Ticket{}, nil, err
	}
	return r.Close(ctx, id, closer)
}

func (r *Registry) ticketForChannel(ctx context.Context, channelID snowflake.ID) (string, error) {
	if id, ok := r.channels.Load(channelID); ok {
		return id, nil
	}
	t, err := r.store.Backend().FindTicketByChannel(ctx, channelID)
	if errors.Is(err, store.ErrNotFound) {
		return "", ErrNotTicket
	}
	if err != nil {
		return "", err
	}
	r.channels.Store(channelID, t.ID)
	return t.ID, nil
}

func (r *Registry) Ticket(ctx context.Context, id string) (models.Ticket, error) {
	return r.store.Tickets.Get(ctx, id)
}

// OpenFor returns the member's open ticket, if any.
func (r *Registry) OpenFor(ctx context.Context, key models.UserKey) (models.Ticket, bool, error) {
	u, err := r.store.Users.Get(ctx, key)
	if err != nil {
		return models.Ticket{}, false, err
	}
	if !u.HasOpenTicket() {
		return models.Ticket{}, false, nil
	}
	t, err := r.store.Tickets.Get(ctx, u.OpenTicketID)
	if errors.Is(err, store.ErrNotFound) {
		return models.Ticket{}, false, nil
	}
	if err != nil {
		return models.Ticket{}, false, err
	}
	return t, t.IsOpen(), nil
}

// ChannelName builds "ticket-<name>" using characters Discord keeps in
// channel names.
func ChannelName(userName string, userID snowflake.ID) string {
	var b strings.Builder
	for _, r := range strings.ToLower(userName) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r) || r == '-' || r == '_':
			b.WriteRune(r)
		case unicode.IsSpace(r) || r == '.':
			b.WriteRune('-')
		}
	}
	name := strings.Trim(b.String(), "-")
	if name == "" {
		name = userID.String()
	}
	if runes := []rune(name); len(runes) > 90 {
		name = string(runes[:90])
	}
	return "ticket-" + name
}

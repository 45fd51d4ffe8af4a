package reminders

import (
	"cmp"
	"container/heap"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"slices"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/disgoorg/snowflake/v2"
	"github.com/google/uuid"

	"github.com/wardenbot/warden/internal/clock"
	"github.com/wardenbot/warden/internal/domain/actions"
	"github.com/wardenbot/warden/internal/domain/models"
	"github.com/wardenbot/warden/internal/store"
)

const (
	TickInterval = 15 * time.Second
	MaxDelay     = 365 * 24 * time.Hour
	MaxTextLen   = 1000
)

var (
	ErrInvalidDelay = errors.New("invalid reminder delay")
	ErrEmptyText    = errors.New("reminder text is empty")
	ErrNotFound     = errors.New("reminder not found")
)

var delayPattern = regexp.MustCompile(`^(\d+)([smhd])$`)

// ParseDelay reads delays such as "30s", "5m", "2h" or "1d".
func ParseDelay(s string) (time.Duration, error) {
	m := delayPattern.FindStringSubmatch(strings.TrimSpace(strings.ToLower(s)))
	if m == nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidDelay, s)
	}
	n, err := strconv.ParseInt(m[1], 10, 64)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidDelay, s)
	}

	unit := map[string]time.Duration{
		"s": time.Second,
		"m": time.Minute,
		"h": time.Hour,
		"d": 24 * time.Hour,
	}[m[2]]
	if n > int64(MaxDelay/unit) {
		return 0, fmt.Errorf("%w: %q is longer than a year", ErrInvalidDelay, s)
	}
	return time.Duration(n) * unit, nil
}

type item struct {
	reminder models.Reminder
	seq      uint64
	index    int
}

type queue []*item

func (q queue) Len() int { return len(q) }

func (q queue) Less(i, j int) bool {
	if !q[i].reminder.DueAt.Equal(q[j].reminder.DueAt) {
		return q[i].reminder.DueAt.Before(q[j].reminder.DueAt)
	}
	return q[i].seq < q[j].seq
}

func (q queue) Swap(i, j int) {
	q[i], q[j] = q[j], q[i]
	q[i].index = i
	q[j].index = j
}

func (q *queue) Push(x any) {
	it := x.(*item)
	it.index = len(*q)
	*q = append(*q, it)
}

func (q *queue) Pop() any {
	old := *q
	n := len(old)
	it := old[n-1]
	old[n-1] = nil
	it.index = -1
	*q = old[:n-1]
	return it
}

// Scheduler keeps reminders in due order and hands out the due ones on each
// tick. Delivery is at least once: a reminder is only forgotten after its
// removal from the backend succeeded.
type Scheduler struct {
	backend store.Backend
	clock   clock.Clock

	mu      sync.Mutex
	queue   queue
	byID    map[string]*item
	seq     uint64
	unsaved map[string]models.Reminder
	deletes []string
}

func NewScheduler(backend store.Backend, c clock.Clock) *Scheduler {
	return &Scheduler{
		backend: backend,
		clock:   c,
		byID:    map[string]*item{},
		unsaved: map[string]models.Reminder{},
	}
}

// Load replaces the in-memory queue with the persisted reminders.
func (s *Scheduler) Load(ctx context.Context) error {
	stored, err := s.backend.LoadReminders(ctx)
	if err != nil {
		return &store.PersistenceError{Table: "reminders", Key: "*", Op: "load", Err: err}
	}
	slices.SortStableFunc(stored, func(a, b models.Reminder) int {
		if c := a.DueAt.Compare(b.DueAt); c != 0 {
			return c
		}
		return a.CreatedAt.Compare(b.CreatedAt)
	})

	s.mu.Lock()
	defer s.mu.Unlock()

	s.queue = s.queue[:0]
	clear(s.byID)
	for _, r := range stored {
		s.pushLocked(r)
	}
	slog.Info("Reminders loaded",
		slog.String("type", "sys"),
		slog.Int("pending", len(stored)),
	)
	return nil
}

func (s *Scheduler) pushLocked(r models.Reminder) {
	s.seq++
	it := &item{reminder: r, seq: s.seq}
	heap.Push(&s.queue, it)
	s.byID[r.ID] = it
}

// Schedule queues a reminder delay from now. The reminder is returned with a
// *store.PersistenceError when saving failed; it stays queued and the save is
// retried on the next tick.
func (s *Scheduler) Schedule(ctx context.Context, guildID snowflake.ID, userID snowflake.ID, channelID snowflake.ID, delay time.Duration, text string) (models.Reminder, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return models.Reminder{}, ErrEmptyText
	}
	if runes := []rune(text); len(runes) > MaxTextLen {
		text = string(runes[:MaxTextLen])
	}
	if delay <= 0 || delay > MaxDelay {
		return models.Reminder{}, ErrInvalidDelay
	}

	now := s.clock.Now()
	r := models.Reminder{
		ID:        uuid.NewString(),
		GuildID:   guildID,
		UserID:    userID,
		ChannelID: channelID,
		DueAt:     now.Add(delay),
		Text:      text,
		CreatedAt: now,
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.pushLocked(r)
	if err := s.backend.SaveReminder(ctx, r); err != nil {
		s.unsaved[r.ID] = r
		return r, &store.PersistenceError{Table: "reminders", Key: r.ID, Op: "save", Err: err}
	}
	return r, nil
}

// Tick removes every reminder due at now and returns one DeliverReminder per
// reminder, including those meant for direct messages (zero channel). Deletions that fail are retried on the following ticks.
func (s *Scheduler) Tick(ctx context.Context, now time.Time) ([]actions.Action, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var due []models.Reminder
	for s.queue.Len() > 0 && !s.queue[0].reminder.DueAt.After(now) {
		it := heap.Pop(&s.queue).(*item)
		delete(s.byID, it.reminder.ID)
		delete(s.unsaved, it.reminder.ID)
		due = append(due, it.reminder)
	}

	var errs []error
	for id, r := range s.unsaved {
		if err := s.backend.SaveReminder(ctx, r); err != nil {
			errs = append(errs, &store.PersistenceError{Table: "reminders", Key: id, Op: "save", Err: err})
			break
		}
		delete(s.unsaved, id)
	}

	ids := slices.Clone(s.deletes)
	for _, r := range due {
		ids = append(ids, r.ID)
	}
	if len(ids) > 0 {
		if err := s.backend.DeleteReminders(ctx, ids); err != nil {
			s.deletes = ids
			errs = append(errs, &store.PersistenceError{Table: "reminders", Key: strconv.Itoa(len(ids)), Op: "delete", Err: err})
		} else {
			s.deletes = nil
		}
	}

	acts := make([]actions.Action, 0, len(due))
	for _, r := range due {
		acts = append(acts, actions.DeliverReminder{Reminder: r})
	}
	return acts, errors.Join(errs...)
}

// TickNow runs Tick at the scheduler clock's current time.
func (s *Scheduler) TickNow(ctx context.Context) ([]actions.Action, error) {
	return s.Tick(ctx, s.clock.Now())
}

// Pending lists a user's queued reminders, soonest first.
func (s *Scheduler) Pending(userID snowflake.ID) []models.Reminder {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []models.Reminder
	for _, it := range s.queue {
		if it.reminder.UserID == userID {
			out = append(out, it.reminder)
		}
	}
	slices.SortFunc(out, func(a, b models.Reminder) int {
		if c := a.DueAt.Compare(b.DueAt); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
	return out
}

// Cancel drops a queued reminder owned by userID.
func (s *Scheduler) Cancel(ctx context.Context, id string, userID snowflake.ID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	it, ok := s.byID[id]
	if !ok || it.reminder.UserID != userID {
		return ErrNotFound
	}
	heap.Remove(&s.queue, it.index)
	delete(s.byID, id)
	delete(s.unsaved, id)

	if err := s.backend.DeleteReminders(ctx, []string{id}); err != nil {
		s.deletes = append(s.deletes, id)
		return &store.PersistenceError{Table: "reminders", Key: id, Op: "delete", Err: err}
	}
	return nil
}

func (s *Scheduler) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.queue.Len()
}

// Next is the due time of the earliest reminder.
func (s *Scheduler) Next() (time.Time, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.queue.Len() == 0 {
		return time.Time{}, false
	}
	return s.queue[0].reminder.DueAt, true
}

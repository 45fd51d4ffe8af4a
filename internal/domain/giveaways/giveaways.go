// Package giveaways runs timed prize draws. Members enter by reacting to the
// announcement; when a giveaway ends the engine emits a DrawGiveaway and the
// collaborator picks the winner among the entries with Draw.
package giveaways

import (
	"cmp"
	"context"
	"errors"
	"log/slog"
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
	MaxDuration  = 30 * 24 * time.Hour
	MaxPrizeLen  = 200
	MaxPerGuild  = 10
	giveawayKind = "giveaways"
)

var (
	ErrInvalidDuration = errors.New("invalid giveaway duration")
	ErrEmptyPrize      = errors.New("giveaway prize is empty")
	ErrNoMessage       = errors.New("giveaway has no announcement message")
	ErrTooMany         = errors.New("too many running giveaways")
	ErrNotFound        = errors.New("giveaway not found")
)

// Draft is a giveaway whose announcement has been posted.
type Draft struct {
	GuildID   snowflake.ID
	ChannelID snowflake.ID
	MessageID snowflake.ID
	HostID    snowflake.ID
	Prize     string
	Duration  time.Duration
}

// Registry holds the running giveaways. Ended giveaways are removed from the
// backend in the same pass that emits their draw; failed removals are retried
// on the next tick.
type Registry struct {
	backend store.Backend
	clock   clock.Clock

	mu      sync.Mutex
	running map[string]models.Giveaway
	unsaved map[string]models.Giveaway
	deletes []string
}

func NewRegistry(backend store.Backend, c clock.Clock) *Registry {
	return &Registry{
		backend: backend,
		clock:   c,
		running: map[string]models.Giveaway{},
		unsaved: map[string]models.Giveaway{},
	}
}

// Load replaces the running set with the persisted giveaways.
func (r *Registry) Load(ctx context.Context) error {
	stored, err := r.backend.LoadGiveaways(ctx)
	if err != nil {
		return &store.PersistenceError{Table: giveawayKind, Key: "*", Op: "load", Err: err}
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	clear(r.running)
	for _, g := range stored {
		r.running[g.ID] = g
	}
	slog.Info("Giveaways loaded",
		slog.String("type", "sys"),
		slog.Int("running", len(stored)),
	)
	return nil
}

// Start records a giveaway. The giveaway is returned with a
// *store.PersistenceError when saving failed; it keeps running and the save
// is retried on the next tick.
func (r *Registry) Start(ctx context.Context, d Draft) (models.Giveaway, error) {
	prize := strings.TrimSpace(d.Prize)
	switch {
	case prize == "":
		return models.Giveaway{}, ErrEmptyPrize
	case d.Duration <= 0 || d.Duration > MaxDuration:
		return models.Giveaway{}, ErrInvalidDuration
	case d.MessageID == 0 || d.ChannelID == 0:
		return models.Giveaway{}, ErrNoMessage
	}
	if runes := []rune(prize); len(runes) > MaxPrizeLen {
		prize = string(runes[:MaxPrizeLen])
	}

	now := r.clock.Now()
	g := models.Giveaway{
		ID:        uuid.NewString(),
		GuildID:   d.GuildID,
		ChannelID: d.ChannelID,
		MessageID: d.MessageID,
		HostID:    d.HostID,
		Prize:     prize,
		EndsAt:    now.Add(d.Duration),
		CreatedAt: now,
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.countLocked(d.GuildID) >= MaxPerGuild {
		return models.Giveaway{}, ErrTooMany
	}
	r.running[g.ID] = g
	if err := r.backend.SaveGiveaway(ctx, g); err != nil {
		r.unsaved[g.ID] = g
		return g, &store.PersistenceError{Table: giveawayKind, Key: g.ID, Op: "save", Err: err}
	}
	return g, nil
}

func (r *Registry) countLocked(guildID snowflake.ID) int {
	n := 0
	for _, g := range r.running {
		if g.GuildID == guildID {
			n++
		}
	}
	return n
}

// Tick ends every giveaway due at now and returns one DrawGiveaway per
// giveaway, earliest first.
func (r *Registry) Tick(ctx context.Context, now time.Time) ([]actions.Action, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var due []models.Giveaway
	for id, g := range r.running {
		if !g.EndsAt.After(now) {
			due = append(due, g)
			delete(r.running, id)
			delete(r.unsaved, id)
		}
	}
	slices.SortFunc(due, byEnd)

	errs := r.persistLocked(ctx, due)
	acts := make([]actions.Action, 0, len(due))
	for _, g := range due {
		acts = append(acts, actions.DrawGiveaway{Giveaway: g})
	}
	return acts, errors.Join(errs...)
}

func (r *Registry) persistLocked(ctx context.Context, ended []models.Giveaway) []error {
	var errs []error
	for id, g := range r.unsaved {
		if err := r.backend.SaveGiveaway(ctx, g); err != nil {
			errs = append(errs, &store.PersistenceError{Table: giveawayKind, Key: id, Op: "save", Err: err})
			break
		}
		delete(r.unsaved, id)
	}

	ids := slices.Clone(r.deletes)
	for _, g := range ended {
		ids = append(ids, g.ID)
	}
	if len(ids) == 0 {
		return errs
	}
	if err := r.backend.DeleteGiveaways(ctx, ids); err != nil {
		r.deletes = ids
		return append(errs, &store.PersistenceError{Table: giveawayKind, Key: strconv.Itoa(len(ids)), Op: "delete", Err: err})
	}
	r.deletes = nil
	return errs
}

// End stops a running giveaway of guildID early and returns its draw.
func (r *Registry) End(ctx context.Context, guildID snowflake.ID, id string) (actions.DrawGiveaway, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	g, ok := r.running[id]
	if !ok || g.GuildID != guildID {
		return actions.DrawGiveaway{}, ErrNotFound
	}
	delete(r.running, id)
	delete(r.unsaved, id)

	draw := actions.DrawGiveaway{Giveaway: g}
	return draw, errors.Join(r.persistLocked(ctx, []models.Giveaway{g})...)
}

// Running lists a guild's giveaways, ending soonest first.
func (r *Registry) Running(guildID snowflake.ID) []models.Giveaway {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []models.Giveaway
	for _, g := range r.running {
		if g.GuildID == guildID {
			out = append(out, g)
		}
	}
	slices.SortFunc(out, byEnd)
	return out
}

func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.running)
}

func byEnd(a, b models.Giveaway) int {
	if c := a.EndsAt.Compare(b.EndsAt); c != 0 {
		return c
	}
	return cmp.Compare(a.ID, b.ID)
}

// Entrant is one member who reacted to a giveaway.
type Entrant struct {
	UserID snowflake.ID
	Bot    bool
}

// Draw picks the winner among the human entrants. intn must return a value
// in [0, n). Duplicate entries count once.
func Draw(entrants []Entrant, intn func(n int) int) (snowflake.ID, bool) {
	seen := make(map[snowflake.ID]struct{}, len(entrants))
	pool := make([]snowflake.ID, 0, len(entrants))
	for _, e := range entrants {
		if e.Bot || e.UserID == 0 {
			continue
		}
		if _, dup := seen[e.UserID]; dup {
			continue
		}
		seen[e.UserID] = struct{}{}
		pool = append(pool, e.UserID)
	}
	if len(pool) == 0 {
		return 0, false
	}
	return pool[intn(len(pool))], true
}

package store

import (
	"bytes"
	"cmp"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"sync"

	"github.com/disgoorg/snowflake/v2"

	"github.com/wardenbot/warden/internal/domain/models"
)

type document struct {
	Version   int                           `json:"version"`
	Guilds    map[string]models.GuildConfig `json:"guilds"`
	Users     map[string]models.UserRecord  `json:"users"`
	Tickets   map[string]models.Ticket      `json:"tickets"`
	Reminders []models.Reminder             `json:"reminders"`
	Giveaways map[string]models.Giveaway    `json:"giveaways"`
}

// normalize fills missing sections and record fields. A partially written or
// older file is never a reason to refuse to start.
func (d *document) normalize() {
	if d.Version == 0 {
		d.Version = SnapshotVersion
	}
	if d.Guilds == nil {
		d.Guilds = map[string]models.GuildConfig{}
	}
	if d.Users == nil {
		d.Users = map[string]models.UserRecord{}
	}
	if d.Tickets == nil {
		d.Tickets = map[string]models.Ticket{}
	}
	if d.Reminders == nil {
		d.Reminders = []models.Reminder{}
	}
	if d.Giveaways == nil {
		d.Giveaways = map[string]models.Giveaway{}
	}

	for k, g := range d.Guilds {
		if g.GuildID == 0 {
			if id, err := snowflake.Parse(k); err == nil {
				g.GuildID = id
			}
		}
		g.Normalize()
		d.Guilds[k] = g
	}
	for k, u := range d.Users {
		if u.GuildID == 0 || u.UserID == 0 {
			if key, err := models.ParseUserKey(k); err == nil {
				u.GuildID, u.UserID = key.GuildID, key.UserID
			}
		}
		u.Normalize()
		d.Users[k] = u
	}
	for k, g := range d.Giveaways {
		if g.ID == "" {
			g.ID = k
			d.Giveaways[k] = g
		}
	}
	for k, t := range d.Tickets {
		if t.ID == "" {
			t.ID = k
		}
		if t.Status == "" {
			t.Status = models.TicketOpen
		}
		d.Tickets[k] = t
	}
}

// FileBackend keeps the whole state in one JSON document and rewrites it
// atomically on every save.
type FileBackend struct {
	path string

	mu  sync.Mutex
	doc document
}

var _ Backend = (*FileBackend)(nil)

// OpenFile loads the document at path, creating an empty one if needed.
func OpenFile(path string) (*FileBackend, error) {
	b := &FileBackend{path: path}

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		if err = os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("failed to create store directory: %w", err)
		}
		b.doc.normalize()
		if err = b.writeLocked(); err != nil {
			return nil, err
		}
		slog.Info("Created empty store file",
			slog.String("type", "db"),
			slog.String("path", path),
		)
		return b, nil
	case err != nil:
		return nil, fmt.Errorf("failed to read store file: %w", err)
	}

	if len(bytes.TrimSpace(data)) > 0 {
		if err = json.Unmarshal(data, &b.doc); err != nil {
			return nil, fmt.Errorf("failed to parse store file %s: %w", path, err)
		}
	}
	b.doc.normalize()

	slog.Info("Store file loaded",
		slog.String("type", "db"),
		slog.String("path", path),
		slog.Int("guilds", len(b.doc.Guilds)),
		slog.Int("users", len(b.doc.Users)),
		slog.Int("reminders", len(b.doc.Reminders)),
	)
	return b, nil
}

func (b *FileBackend) writeLocked() error {
	data, err := json.MarshalIndent(b.doc, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode store: %w", err)
	}

	tmp := b.path + ".tmp"
	if err = os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("failed to write store: %w", err)
	}
	if err = os.Rename(tmp, b.path); err != nil {
		return fmt.Errorf("failed to replace store: %w", err)
	}
	return nil
}

func (b *FileBackend) LoadGuild(_ context.Context, guildID snowflake.ID) (models.GuildConfig, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	g, ok := b.doc.Guilds[guildID.String()]
	if !ok {
		return models.GuildConfig{}, ErrNotFound
	}
	return g.Clone(), nil
}

func (b *FileBackend) SaveGuild(_ context.Context, cfg models.GuildConfig) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.doc.Guilds[cfg.GuildID.String()] = cfg.Clone()
	return b.writeLocked()
}

func (b *FileBackend) LoadUser(_ context.Context, key models.UserKey) (models.UserRecord, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	u, ok := b.doc.Users[key.String()]
	if !ok {
		return models.UserRecord{}, ErrNotFound
	}
	return u.Clone(), nil
}

func (b *FileBackend) SaveUser(_ context.Context, user models.UserRecord) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.doc.Users[user.Key().String()] = user.Clone()
	return b.writeLocked()
}

func (b *FileBackend) SaveUsers(_ context.Context, users []models.UserRecord) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	for _, u := range users {
		b.doc.Users[u.Key().String()] = u.Clone()
	}
	return b.writeLocked()
}

func (b *FileBackend) LoadTicket(_ context.Context, id string) (models.Ticket, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	t, ok := b.doc.Tickets[id]
	if !ok {
		return models.Ticket{}, ErrNotFound
	}
	return t, nil
}

func (b *FileBackend) SaveTicket(_ context.Context, ticket models.Ticket) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.doc.Tickets[ticket.ID] = ticket
	return b.writeLocked()
}

// FindTicketByChannel prefers an open ticket when a channel id was reused.
func (b *FileBackend) FindTicketByChannel(_ context.Context, channelID snowflake.ID) (models.Ticket, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	var found *models.Ticket
	for _, t := range b.doc.Tickets {
		if t.ChannelID != channelID {
			continue
		}
		if t.IsOpen() {
			return t, nil
		}
		found = &t
	}
	if found == nil {
		return models.Ticket{}, ErrNotFound
	}
	return *found, nil
}

func (b *FileBackend) LoadReminders(_ context.Context) ([]models.Reminder, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	return slices.Clone(b.doc.Reminders), nil
}

func (b *FileBackend) SaveReminder(_ context.Context, reminder models.Reminder) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	i := slices.IndexFunc(b.doc.Reminders, func(r models.Reminder) bool { return r.ID == reminder.ID })
	if i >= 0 {
		b.doc.Reminders[i] = reminder
	} else {
		b.doc.Reminders = append(b.doc.Reminders, reminder)
	}
	return b.writeLocked()
}

func (b *FileBackend) DeleteReminders(_ context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	before := len(b.doc.Reminders)
	b.doc.Reminders = slices.DeleteFunc(b.doc.Reminders, func(r models.Reminder) bool {
		return slices.Contains(ids, r.ID)
	})
	if len(b.doc.Reminders) == before {
		return nil
	}
	return b.writeLocked()
}

func (b *FileBackend) LoadGiveaways(_ context.Context) ([]models.Giveaway, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	out := make([]models.Giveaway, 0, len(b.doc.Giveaways))
	for _, k := range slices.Sorted(maps.Keys(b.doc.Giveaways)) {
		out = append(out, b.doc.Giveaways[k])
	}
	return out, nil
}

func (b *FileBackend) SaveGiveaway(_ context.Context, giveaway models.Giveaway) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.doc.Giveaways[giveaway.ID] = giveaway
	return b.writeLocked()
}

func (b *FileBackend) DeleteGiveaways(_ context.Context, ids []string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	removed := false
	for _, id := range ids {
		if _, ok := b.doc.Giveaways[id]; ok {
			delete(b.doc.Giveaways, id)
			removed = true
		}
	}
	if !removed {
		return nil
	}
	return b.writeLocked()
}

func (b *FileBackend) Snapshot(_ context.Context) (Snapshot, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	snap := Snapshot{
		Version:   b.doc.Version,
		Guilds:    make([]models.GuildConfig, 0, len(b.doc.Guilds)),
		Users:     make([]models.UserRecord, 0, len(b.doc.Users)),
		Tickets:   make([]models.Ticket, 0, len(b.doc.Tickets)),
		Reminders: slices.Clone(b.doc.Reminders),
		Giveaways: make([]models.Giveaway, 0, len(b.doc.Giveaways)),
	}
	for _, k := range slices.Sorted(maps.Keys(b.doc.Giveaways)) {
		snap.Giveaways = append(snap.Giveaways, b.doc.Giveaways[k])
	}
	for _, k := range slices.Sorted(maps.Keys(b.doc.Guilds)) {
		snap.Guilds = append(snap.Guilds, b.doc.Guilds[k].Clone())
	}
	for _, k := range slices.Sorted(maps.Keys(b.doc.Users)) {
		snap.Users = append(snap.Users, b.doc.Users[k].Clone())
	}
	for _, k := range slices.Sorted(maps.Keys(b.doc.Tickets)) {
		snap.Tickets = append(snap.Tickets, b.doc.Tickets[k])
	}
	return snap, nil
}

func (b *FileBackend) Restore(_ context.Context, snap Snapshot) error {
	snap.Normalize()

	doc := document{
		Version:   snap.Version,
		Guilds:    make(map[string]models.GuildConfig, len(snap.Guilds)),
		Users:     make(map[string]models.UserRecord, len(snap.Users)),
		Tickets:   make(map[string]models.Ticket, len(snap.Tickets)),
		Reminders: slices.Clone(snap.Reminders),
		Giveaways: make(map[string]models.Giveaway, len(snap.Giveaways)),
	}
	for _, g := range snap.Giveaways {
		doc.Giveaways[g.ID] = g
	}
	for _, g := range snap.Guilds {
		doc.Guilds[g.GuildID.String()] = g
	}
	for _, u := range snap.Users {
		doc.Users[u.Key().String()] = u
	}
	for _, t := range snap.Tickets {
		doc.Tickets[t.ID] = t
	}
	slices.SortStableFunc(doc.Reminders, func(a, b models.Reminder) int {
		return cmp.Compare(a.DueAt.UnixNano(), b.DueAt.UnixNano())
	})

	b.mu.Lock()
	defer b.mu.Unlock()

	b.doc = doc
	return b.writeLocked()
}

func (b *FileBackend) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.writeLocked()
}

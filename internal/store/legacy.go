package store

import (
	"encoding/json"
	"fmt"
	"io"
	"maps"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/disgoorg/snowflake/v2"
	"github.com/google/uuid"

	"github.com/wardenbot/warden/internal/domain/models"
)

// legacyID accepts ids written as numbers, strings or null.
type legacyID snowflake.ID

func (id *legacyID) UnmarshalJSON(data []byte) error {
	s := strings.Trim(strings.TrimSpace(string(data)), `"`)
	if s == "" || s == "null" {
		*id = 0
		return nil
	}
	v, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return fmt.Errorf("invalid id %s: %w", data, err)
	}
	*id = legacyID(v)
	return nil
}

type legacyGreeting struct {
	Enabled bool     `json:"enabled"`
	Channel legacyID `json:"channel"`
	Message string   `json:"message"`
}

type legacyAntiSpam struct {
	Enabled   bool `json:"enabled"`
	Threshold int  `json:"threshold"`
	Interval  int  `json:"interval"`
}

type legacyStarboard struct {
	Channel   legacyID `json:"channel"`
	Threshold int      `json:"threshold"`
}

type legacyReminder struct {
	Guild   legacyID `json:"guild"`
	User    legacyID `json:"user"`
	Channel legacyID `json:"channel"`
	WhenTS  int64    `json:"when_ts"`
	Text    string   `json:"text"`
}

// legacyDocument is the data.json layout of the first version of the bot:
// one map per feature keyed by guild id.
type legacyDocument struct {
	Prefix     map[string]string              `json:"prefix"`
	LogChannel map[string]legacyID            `json:"log_channel"`
	Welcome    map[string]legacyGreeting      `json:"welcome"`
	Goodbye    map[string]legacyGreeting      `json:"goodbye"`
	AutoRole   map[string]legacyID            `json:"autorole"`
	Filters    map[string][]string            `json:"filters"`
	AntiSpam   map[string]legacyAntiSpam      `json:"antispam"`
	Warns      map[string]map[string]int      `json:"warns"`
	Tickets    map[string]map[string]legacyID `json:"tickets"`
	Starboard  map[string]legacyStarboard     `json:"starboard"`
	Reminders  []legacyReminder               `json:"reminders"`
}

// ImportLegacy converts a legacy data.json into a Snapshot. Open tickets get
// fresh ids and now as their opening time.
func ImportLegacy(r io.Reader, now time.Time) (Snapshot, error) {
	var doc legacyDocument
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return Snapshot{}, fmt.Errorf("failed to decode legacy data: %w", err)
	}

	guilds := map[snowflake.ID]*models.GuildConfig{}
	guild := func(key string) (*models.GuildConfig, error) {
		id, err := snowflake.Parse(key)
		if err != nil {
			return nil, fmt.Errorf("invalid guild id %q: %w", key, err)
		}
		g, ok := guilds[id]
		if !ok {
			cfg := models.GuildConfig{GuildID: id}
			g = &cfg
			guilds[id] = g
		}
		return g, nil
	}

	users := map[models.UserKey]*models.UserRecord{}
	user := func(guildID snowflake.ID, key string) (*models.UserRecord, error) {
		id, err := snowflake.Parse(key)
		if err != nil {
			return nil, fmt.Errorf("invalid user id %q: %w", key, err)
		}
		k := models.UserKey{GuildID: guildID, UserID: id}
		u, ok := users[k]
		if !ok {
			rec := models.NewUserRecord(k)
			u = &rec
			users[k] = u
		}
		return u, nil
	}

	for k, v := range doc.Prefix {
		g, err := guild(k)
		if err != nil {
			return Snapshot{}, err
		}
		g.Prefix = v
	}
	for k, v := range doc.LogChannel {
		g, err := guild(k)
		if err != nil {
			return Snapshot{}, err
		}
		g.LogChannel = snowflake.ID(v)
	}
	for k, v := range doc.Welcome {
		g, err := guild(k)
		if err != nil {
			return Snapshot{}, err
		}
		g.Welcome = models.Greeting{Enabled: v.Enabled, ChannelID: snowflake.ID(v.Channel), Template: v.Message}
	}
	for k, v := range doc.Goodbye {
		g, err := guild(k)
		if err != nil {
			return Snapshot{}, err
		}
		g.Goodbye = models.Greeting{Enabled: v.Enabled, ChannelID: snowflake.ID(v.Channel), Template: v.Message}
	}
	for k, v := range doc.AutoRole {
		g, err := guild(k)
		if err != nil {
			return Snapshot{}, err
		}
		g.AutoRole = snowflake.ID(v)
	}
	for k, v := range doc.Filters {
		g, err := guild(k)
		if err != nil {
			return Snapshot{}, err
		}
		for _, w := range v {
			g.AddFilteredWord(w)
		}
	}
	for k, v := range doc.AntiSpam {
		g, err := guild(k)
		if err != nil {
			return Snapshot{}, err
		}
		g.AntiSpam = models.AntiSpamConfig{Enabled: v.Enabled, Threshold: v.Threshold, WindowSeconds: v.Interval}
	}
	for k, v := range doc.Starboard {
		g, err := guild(k)
		if err != nil {
			return Snapshot{}, err
		}
		g.Starboard.ChannelID = snowflake.ID(v.Channel)
		g.Starboard.Threshold = v.Threshold
	}

	for k, warns := range doc.Warns {
		g, err := guild(k)
		if err != nil {
			return Snapshot{}, err
		}
		for uk, count := range warns {
			u, err := user(g.GuildID, uk)
			if err != nil {
				return Snapshot{}, err
			}
			u.WarnCount = count
		}
	}

	var tickets []models.Ticket
	for k, open := range doc.Tickets {
		g, err := guild(k)
		if err != nil {
			return Snapshot{}, err
		}
		for uk, channel := range open {
			if channel == 0 {
				continue
			}
			u, err := user(g.GuildID, uk)
			if err != nil {
				return Snapshot{}, err
			}
			t := models.Ticket{
				ID:        uuid.NewString(),
				GuildID:   g.GuildID,
				OpenerID:  u.UserID,
				ChannelID: snowflake.ID(channel),
				Status:    models.TicketOpen,
				OpenedAt:  now,
			}
			u.OpenTicketID = t.ID
			u.OpenTicketChannel = t.ChannelID
			tickets = append(tickets, t)
		}
	}

	reminders := make([]models.Reminder, 0, len(doc.Reminders))
	for _, r := range doc.Reminders {
		reminders = append(reminders, models.Reminder{
			ID:        uuid.NewString(),
			GuildID:   snowflake.ID(r.Guild),
			UserID:    snowflake.ID(r.User),
			ChannelID: snowflake.ID(r.Channel),
			DueAt:     time.Unix(r.WhenTS, 0).UTC(),
			Text:      r.Text,
			CreatedAt: now,
		})
	}

	snap := Snapshot{Version: SnapshotVersion, Tickets: tickets, Reminders: reminders}
	for _, id := range slices.Sorted(maps.Keys(guilds)) {
		snap.Guilds = append(snap.Guilds, *guilds[id])
	}
	keys := slices.SortedFunc(maps.Keys(users), func(a, b models.UserKey) int {
		switch {
		case a.Less(b):
			return -1
		case b.Less(a):
			return 1
		}
		return 0
	})
	for _, k := range keys {
		snap.Users = append(snap.Users, *users[k])
	}
	snap.Normalize()
	return snap, nil
}

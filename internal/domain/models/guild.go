package models

import (
	"slices"
	"strings"
	"time"

	"github.com/disgoorg/snowflake/v2"
)

const (
	DefaultPrefix          = "!"
	DefaultWelcomeTemplate = "Welcome {user} to {server}!"
	DefaultGoodbyeTemplate = "{user} left {server}. Farewell!"
	DefaultSpamThreshold   = 5
	DefaultSpamWindow      = 7
	MinSpamSetting         = 3
	DefaultStarThreshold   = 5
	DefaultStarEmoji       = "⭐"
	DefaultWarnLimit       = 5
)

type Greeting struct {
	Enabled   bool         `json:"enabled"`
	ChannelID snowflake.ID `json:"channel_id,omitempty"`
	Template  string       `json:"template"`
}

// Render substitutes {user} and {server} in the template.
func (g Greeting) Render(user string, server string) string {
	return strings.NewReplacer("{user}", user, "{server}", server).Replace(g.Template)
}

type AntiSpamConfig struct {
	Enabled       bool `json:"enabled"`
	Threshold     int  `json:"threshold"`
	WindowSeconds int  `json:"window_seconds"`
}

func (a AntiSpamConfig) Window() time.Duration {
	return time.Duration(a.WindowSeconds) * time.Second
}

// Enable turns the guard on, clamping both settings to MinSpamSetting.
func (a *AntiSpamConfig) Enable(threshold int, windowSeconds int) {
	a.Enabled = true
	a.Threshold = max(MinSpamSetting, threshold)
	a.WindowSeconds = max(MinSpamSetting, windowSeconds)
}

type StarboardConfig struct {
	ChannelID snowflake.ID `json:"channel_id,omitempty"`
	Threshold int          `json:"threshold"`
	Emoji     string       `json:"emoji"`
}

func (s StarboardConfig) Enabled() bool {
	return s.ChannelID != 0
}

// GuildConfig holds the admin controlled settings of one guild.
type GuildConfig struct {
	GuildID         snowflake.ID    `json:"guild_id"`
	Prefix          string          `json:"prefix"`
	LogChannel      snowflake.ID    `json:"log_channel,omitempty"`
	AnnounceChannel snowflake.ID    `json:"announce_channel,omitempty"`
	Welcome         Greeting        `json:"welcome"`
	Goodbye         Greeting        `json:"goodbye"`
	AutoRole        snowflake.ID    `json:"autorole,omitempty"`
	FilteredWords   []string        `json:"filtered_words"`
	AntiSpam        AntiSpamConfig  `json:"antispam"`
	Starboard       StarboardConfig `json:"starboard"`
	WarnLimit       int             `json:"warn_limit"`
}

func DefaultGuildConfig(guildID snowflake.ID) GuildConfig {
	cfg := GuildConfig{GuildID: guildID}
	cfg.Normalize()
	return cfg
}

// Normalize fills every missing field with its default. Records loaded from
// older or partially written storage go through here before use.
func (g *GuildConfig) Normalize() {
	if g.Prefix == "" {
		g.Prefix = DefaultPrefix
	}
	if g.Welcome.Template == "" {
		g.Welcome.Template = DefaultWelcomeTemplate
	}
	if g.Goodbye.Template == "" {
		g.Goodbye.Template = DefaultGoodbyeTemplate
	}
	if g.AntiSpam.Threshold <= 0 {
		g.AntiSpam.Threshold = DefaultSpamThreshold
	}
	if g.AntiSpam.WindowSeconds <= 0 {
		g.AntiSpam.WindowSeconds = DefaultSpamWindow
	}
	if g.Starboard.Threshold <= 0 {
		g.Starboard.Threshold = DefaultStarThreshold
	}
	if g.Starboard.Emoji == "" {
		g.Starboard.Emoji = DefaultStarEmoji
	}
	if g.WarnLimit <= 0 {
		g.WarnLimit = DefaultWarnLimit
	}

	words := make([]string, 0, len(g.FilteredWords))
	for _, w := range g.FilteredWords {
		w = strings.ToLower(strings.TrimSpace(w))
		if w != "" && !slices.Contains(words, w) {
			words = append(words, w)
		}
	}
	g.FilteredWords = words
}

func (g GuildConfig) Clone() GuildConfig {
	g.FilteredWords = slices.Clone(g.FilteredWords)
	if g.FilteredWords == nil {
		g.FilteredWords = []string{}
	}
	return g
}

// AddFilteredWord stores the word lower-cased. It reports false for blanks and
// words already present.
func (g *GuildConfig) AddFilteredWord(word string) bool {
	word = strings.ToLower(strings.TrimSpace(word))
	if word == "" || slices.Contains(g.FilteredWords, word) {
		return false
	}
	g.FilteredWords = append(g.FilteredWords, word)
	return true
}

func (g *GuildConfig) RemoveFilteredWord(word string) bool {
	word = strings.ToLower(strings.TrimSpace(word))
	i := slices.Index(g.FilteredWords, word)
	if i < 0 {
		return false
	}
	g.FilteredWords = slices.Delete(g.FilteredWords, i, i+1)
	return true
}

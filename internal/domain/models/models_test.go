package models

import (
	"encoding/json"
	"testing"

	"github.com/disgoorg/snowflake/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGuildConfig_Normalize(t *testing.T) {
	cfg := GuildConfig{
		GuildID:       1,
		FilteredWords: []string{"Spam", " spam ", "", "EGGS"},
		AntiSpam:      AntiSpamConfig{Enabled: true},
	}
	cfg.Normalize()

	assert.Equal(t, DefaultPrefix, cfg.Prefix)
	assert.Equal(t, DefaultWelcomeTemplate, cfg.Welcome.Template)
	assert.Equal(t, DefaultGoodbyeTemplate, cfg.Goodbye.Template)
	assert.Equal(t, DefaultSpamThreshold, cfg.AntiSpam.Threshold)
	assert.Equal(t, DefaultSpamWindow, cfg.AntiSpam.WindowSeconds)
	assert.True(t, cfg.AntiSpam.Enabled)
	assert.Equal(t, DefaultStarThreshold, cfg.Starboard.Threshold)
	assert.Equal(t, DefaultStarEmoji, cfg.Starboard.Emoji)
	assert.Equal(t, DefaultWarnLimit, cfg.WarnLimit)
	assert.Equal(t, []string{"spam", "eggs"}, cfg.FilteredWords)
}

func TestGuildConfig_PartialJSONIsFilled(t *testing.T) {
	var cfg GuildConfig
	require.NoError(t, json.Unmarshal([]byte(`{"guild_id":"42","prefix":"?","antispam":{"enabled":true}}`), &cfg))
	cfg.Normalize()

	assert.Equal(t, snowflake.ID(42), cfg.GuildID)
	assert.Equal(t, "?", cfg.Prefix)
	assert.Equal(t, DefaultSpamThreshold, cfg.AntiSpam.Threshold)
	assert.NotNil(t, cfg.FilteredWords)
}

func TestAntiSpamConfig_EnableClamps(t *testing.T) {
	tests := []struct {
		name          string
		threshold     int
		window        int
		wantThreshold int
		wantWindow    int
	}{
		{name: "below minimum", threshold: 1, window: 2, wantThreshold: 3, wantWindow: 3},
		{name: "kept", threshold: 8, window: 10, wantThreshold: 8, wantWindow: 10},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var a AntiSpamConfig
			a.Enable(tt.threshold, tt.window)
			assert.True(t, a.Enabled)
			assert.Equal(t, tt.wantThreshold, a.Threshold)
			assert.Equal(t, tt.wantWindow, a.WindowSeconds)
		})
	}
}

func TestGuildConfig_FilteredWords(t *testing.T) {
	cfg := DefaultGuildConfig(1)

	assert.True(t, cfg.AddFilteredWord("Badword"))
	assert.False(t, cfg.AddFilteredWord("BADWORD"))
	assert.False(t, cfg.AddFilteredWord("  "))
	assert.Equal(t, []string{"badword"}, cfg.FilteredWords)

	clone := cfg.Clone()
	clone.AddFilteredWord("other")
	assert.Len(t, cfg.FilteredWords, 1)

	assert.True(t, cfg.RemoveFilteredWord("BadWord"))
	assert.False(t, cfg.RemoveFilteredWord("badword"))
	assert.Empty(t, cfg.FilteredWords)
}

func TestGreeting_Render(t *testing.T) {
	g := Greeting{Template: "hi {user}, welcome to {server} ({user})"}
	assert.Equal(t, "hi <@1>, welcome to Den (<@1>)", g.Render("<@1>", "Den"))
}

func TestUserKey(t *testing.T) {
	k := UserKey{GuildID: 10, UserID: 20}
	parsed, err := ParseUserKey(k.String())
	require.NoError(t, err)
	assert.Equal(t, k, parsed)

	_, err = ParseUserKey("nonsense")
	assert.Error(t, err)

	assert.True(t, UserKey{GuildID: 1, UserID: 9}.Less(UserKey{GuildID: 2, UserID: 1}))
	assert.True(t, UserKey{GuildID: 1, UserID: 1}.Less(UserKey{GuildID: 1, UserID: 2}))
	assert.False(t, k.Less(k))
}

func TestUserRecord_NormalizeAndClone(t *testing.T) {
	u := UserRecord{GuildID: 1, UserID: 2, XP: -5, Balance: -1}
	u.Normalize()
	assert.Equal(t, 1, u.Level)
	assert.Zero(t, u.XP)
	assert.Zero(t, u.Balance)
	assert.NotNil(t, u.Warnings)

	u.Warnings = append(u.Warnings, Warning{Reason: "a"})
	c := u.Clone()
	c.Warnings[0].Reason = "changed"
	assert.Equal(t, "a", u.Warnings[0].Reason)
}

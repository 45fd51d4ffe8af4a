package admin

import (
	"testing"

	"github.com/disgoorg/disgo/discord"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wardenbot/warden/internal/domain/models"
)

func TestEmojiKey(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{in: "⭐", want: "⭐"},
		{in: " 🔥 ", want: "🔥"},
		{in: "<:pog:123456>", want: "pog:123456"},
		{in: "<a:dance:42>", want: "dance:42"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, emojiKey(tt.in))
		})
	}
	assert.Equal(t, "<:pog:123456>", emojiDisplay("pog:123456"))
	assert.Equal(t, "⭐", emojiDisplay("⭐"))
}

func TestWordChoices(t *testing.T) {
	words := []string{"badword", "spoiler", "bother"}

	all := wordChoices(words, "")
	assert.Len(t, all, 3)

	got := wordChoices(words, "BD")
	require.NotEmpty(t, got)
	first, ok := got[0].(discord.AutocompleteChoiceString)
	require.True(t, ok)
	assert.Equal(t, "badword", first.Value)

	assert.Empty(t, wordChoices(words, "xyz"))
	assert.Equal(t, []string{"badword", "spoiler", "bother"}, words)
}

func TestSettingsFields(t *testing.T) {
	cfg := models.DefaultGuildConfig(1)
	cfg.LogChannel = 10
	cfg.AntiSpam.Enable(6, 8)
	cfg.AutoRole = 77
	cfg.AddFilteredWord("foo")

	fields := settingsFields(cfg)
	byName := map[string]string{}
	for _, f := range fields {
		byName[f.Name] = f.Value
	}

	assert.Equal(t, "<#10>", byName["Mod log"])
	assert.Equal(t, "off", byName["Announcements"])
	assert.Equal(t, "6 msgs / 8s", byName["Anti-spam"])
	assert.Equal(t, "<@&77>", byName["Auto role"])
	assert.Equal(t, "off", byName["Starboard"])
	assert.Equal(t, "off", byName["Welcome"])
	assert.Contains(t, byName["Filtered words"], "1")
}

func TestInputError(t *testing.T) {
	var err error = inputError("nope")
	var target inputError
	assert.ErrorAs(t, err, &target)
	assert.Equal(t, "nope", target.Error())
}

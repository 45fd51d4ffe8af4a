package community

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/disgoorg/disgo/discord"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wardenbot/warden/internal/domain/models"
)

func testReminders() []models.Reminder {
	due := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	return []models.Reminder{
		{ID: "aaaa1111-0000", Text: "take out the trash", DueAt: due},
		{ID: "aaaa2222-0000", Text: "water the plants", DueAt: due.Add(time.Hour)},
		{ID: "bbbb3333-0000", Text: "call mom", DueAt: due.Add(2 * time.Hour)},
	}
}

func TestResolveReminder(t *testing.T) {
	pending := testReminders()
	tests := []struct {
		name   string
		input  string
		want   string
		wantOK bool
	}{
		{name: "full id", input: "bbbb3333-0000", want: "bbbb3333-0000", wantOK: true},
		{name: "short id", input: "aaaa2222", want: "aaaa2222-0000", wantOK: true},
		{name: "ambiguous prefix", input: "aaaa", wantOK: false},
		{name: "unknown", input: "cccc", wantOK: false},
		{name: "empty", input: "  ", wantOK: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := resolveReminder(pending, tt.input)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestReminderChoices(t *testing.T) {
	pending := testReminders()

	all := reminderChoices(pending, "")
	require.Len(t, all, 3)

	matched := reminderChoices(pending, "plnts")
	require.Len(t, matched, 1)
	choice, ok := matched[0].(discord.AutocompleteChoiceString)
	require.True(t, ok)
	assert.Equal(t, "aaaa2222-0000", choice.Value)
	assert.Equal(t, "aaaa2222: water the plants", choice.Name)
}

func TestReminderChoicesCapped(t *testing.T) {
	var pending []models.Reminder
	for i := 0; i < 40; i++ {
		pending = append(pending, models.Reminder{ID: fmt.Sprintf("id-%02d", i), Text: "x"})
	}
	assert.Len(t, reminderChoices(pending, ""), maxChoices)
}

func TestReminderList(t *testing.T) {
	list := reminderList(testReminders())
	lines := strings.Split(list, "\n")
	require.Len(t, lines, 3)
	assert.True(t, strings.HasPrefix(lines[0], "`aaaa1111`"))

	var many []models.Reminder
	for i := 0; i < maxListed+3; i++ {
		many = append(many, models.Reminder{ID: fmt.Sprintf("r%d", i), Text: "t"})
	}
	assert.True(t, strings.HasSuffix(reminderList(many), "…and 3 more"))
}

func testGiveaways() []models.Giveaway {
	ends := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	return []models.Giveaway{
		{ID: "cafe1111-0000", ChannelID: 100, Prize: "Nitro", EndsAt: ends},
		{ID: "cafe2222-0000", ChannelID: 100, Prize: "Steam key", EndsAt: ends.Add(time.Hour)},
	}
}

func TestResolveGiveaway(t *testing.T) {
	running := testGiveaways()
	tests := []struct {
		name   string
		input  string
		want   string
		wantOK bool
	}{
		{name: "full id", input: "cafe2222-0000", want: "cafe2222-0000", wantOK: true},
		{name: "short id", input: "cafe1111", want: "cafe1111-0000", wantOK: true},
		{name: "ambiguous prefix", input: "cafe", wantOK: false},
		{name: "unknown", input: "dead", wantOK: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := resolveGiveaway(running, tt.input)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestGiveawayChoicesAndList(t *testing.T) {
	running := testGiveaways()

	require.Len(t, giveawayChoices(running, ""), 2)

	matched := giveawayChoices(running, "stm")
	require.Len(t, matched, 1)
	choice, ok := matched[0].(discord.AutocompleteChoiceString)
	require.True(t, ok)
	assert.Equal(t, "cafe2222-0000", choice.Value)

	lines := strings.Split(giveawayList(running), "\n")
	require.Len(t, lines, 2)
	assert.True(t, strings.HasPrefix(lines[0], "`cafe1111` **Nitro**"))
	assert.Contains(t, lines[1], "<#100>")
}

package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		in   time.Duration
		want string
	}{
		{in: 0, want: "0s"},
		{in: 45 * time.Second, want: "45s"},
		{in: 10 * time.Minute, want: "10m"},
		{in: 26*time.Hour + 30*time.Second, want: "1d2h30s"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatDuration(tt.in))
		})
	}
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", Truncate("short", 10))
	assert.Equal(t, "héll…", Truncate("héllo world", 5))
}

func TestMentions(t *testing.T) {
	assert.Equal(t, "<@42>", Mention(42))
	assert.Equal(t, "<#7>", ChannelMention(7))
	assert.Equal(t, "<t:60:R>", Timestamp(time.Unix(60, 0)))
}

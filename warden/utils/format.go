package utils

import (
	"fmt"
	"strings"
	"time"

	"github.com/disgoorg/snowflake/v2"
)

func Ptr[T any](v T) *T {
	return &v
}

func Mention(id snowflake.ID) string {
	return "<@" + id.String() + ">"
}

func ChannelMention(id snowflake.ID) string {
	return "<#" + id.String() + ">"
}

// Timestamp renders a Discord relative timestamp, e.g. "in 5 minutes".
func Timestamp(t time.Time) string {
	return fmt.Sprintf("<t:%d:R>", t.Unix())
}

// FormatDuration prints durations the way users type them: 1d2h, 10m, 45s.
func FormatDuration(d time.Duration) string {
	if d < time.Second {
		return "0s"
	}
	d = d.Round(time.Second)

	var b strings.Builder
	units := []struct {
		size time.Duration
		name string
	}{
		{24 * time.Hour, "d"},
		{time.Hour, "h"},
		{time.Minute, "m"},
		{time.Second, "s"},
	}
	for _, u := range units {
		if n := d / u.size; n > 0 {
			fmt.Fprintf(&b, "%d%s", n, u.name)
			d -= n * u.size
		}
	}
	return b.String()
}

// Truncate cuts s to at most n runes, marking the cut with an ellipsis.
func Truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	if n <= 1 {
		return string(r[:n])
	}
	return string(r[:n-1]) + "…"
}

package moderation

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wardenbot/warden/internal/domain/models"
)

func TestParseMute(t *testing.T) {
	tests := []struct {
		in      string
		want    time.Duration
		wantErr bool
	}{
		{in: "30m", want: 30 * time.Minute},
		{in: "2h", want: 2 * time.Hour},
		{in: "28d", want: 28 * 24 * time.Hour},
		{in: "29d", wantErr: true},
		{in: "soon", wantErr: true},
		{in: "0m", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := parseMute(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestWarnSummary(t *testing.T) {
	msg := warnSummary("42", 2, 3, false, 10*time.Minute, "spam")
	assert.Equal(t, "Warned <@42> (2/3): spam", msg)

	msg = warnSummary("42", 3, 3, true, 10*time.Minute, "spam")
	assert.Contains(t, msg, "muted for 10m")
}

func TestWarningPageNewestFirst(t *testing.T) {
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	rec := models.UserRecord{}
	for i := 1; i <= 7; i++ {
		rec.Warnings = append(rec.Warnings, models.Warning{
			Reason:    fmt.Sprintf("reason %d", i),
			IssuerID:  9,
			Automated: i == 7,
			IssuedAt:  base.Add(time.Duration(i) * time.Hour),
		})
	}

	first := warningPage(rec, 0)
	assert.True(t, strings.HasPrefix(first, "**#7**"))
	assert.Contains(t, first, "by automod")
	assert.Contains(t, first, "**#3**")
	assert.NotContains(t, first, "**#2**")

	second := warningPage(rec, 1)
	assert.Contains(t, second, "**#2**")
	assert.Contains(t, second, "**#1**")
	assert.Contains(t, second, "by <@9>")
}

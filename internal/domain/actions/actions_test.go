package actions

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/wardenbot/warden/internal/domain/models"
)

func TestModLogFor(t *testing.T) {
	cfg := models.DefaultGuildConfig(7)
	assert.Nil(t, ModLogFor(cfg, ModLog{Event: ModWarn}))

	cfg.LogChannel = 99
	got := ModLogFor(cfg, ModLog{Event: ModWarn, UserID: 3})
	assert.Equal(t, []Action{ModLog{GuildID: 7, ChannelID: 99, UserID: 3, Event: ModWarn}}, got)
}

func TestFailure_Unwrap(t *testing.T) {
	f := &Failure{Action: MuteUser{GuildID: 1, UserID: 2}, Err: fmt.Errorf("rest: %w", ErrPermissionDenied)}

	assert.True(t, errors.Is(f, ErrPermissionDenied))
	assert.Contains(t, f.Error(), string(KindMuteUser))

	var failure *Failure
	assert.True(t, errors.As(fmt.Errorf("dispatch: %w", f), &failure))
	assert.Equal(t, KindMuteUser, failure.Action.Kind())
}

func TestGreet_TypeAndKind(t *testing.T) {
	var a Action = Greet{GuildID: 1, ChannelID: 2, UserID: 3, Type: GreetGoodbye}

	assert.Equal(t, KindGreet, a.Kind())
	greet, ok := a.(Greet)
	assert.True(t, ok)
	assert.Equal(t, GreetGoodbye, greet.Type)
}

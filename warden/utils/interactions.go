package utils

import (
	"errors"
	"log/slog"

	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/handler"
	"github.com/disgoorg/snowflake/v2"

	"github.com/wardenbot/warden/internal/domain/models"
	"github.com/wardenbot/warden/internal/store"
)

var ErrGuildOnly = errors.New("command must be used in a server")

// GuildKey returns the record key of userID in the guild the command was
// used in.
func GuildKey(e *handler.CommandEvent, userID snowflake.ID) (models.UserKey, error) {
	guildID := e.GuildID()
	if guildID == nil {
		return models.UserKey{}, ErrGuildOnly
	}
	return models.UserKey{GuildID: *guildID, UserID: userID}, nil
}

// Kept reports whether a state change took effect. Persistence failures
// leave the change in memory and are retried by the flush job, so they only
// get logged.
func Kept(command string, err error) bool {
	if err == nil {
		return true
	}
	if errors.Is(err, store.ErrPersistence) {
		slog.Warn("Change kept in memory, save will be retried",
			slog.String("type", "db"),
			slog.String("name", command),
			slog.Any("error", err),
		)
		return true
	}
	return false
}

// LogCommandError records an unexpected failure behind a generic reply.
func LogCommandError(command string, err error, attrs ...any) {
	slog.Error("Command failed",
		append([]any{
			slog.String("type", "cmd"),
			slog.String("name", command),
			slog.Any("error", err),
		}, attrs...)...,
	)
}

// HasPermission checks the invoking member's resolved channel permissions.
func HasPermission(e *handler.CommandEvent, perm discord.Permissions) bool {
	m := e.Member()
	return m != nil && m.Permissions.Has(perm)
}

package handlers

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/disgoorg/disgo/handler"
)

const (
	commandTimeout = 10 * time.Second
	slowCommand    = 2 * time.Second
)

// WrapWithLogging wraps a command handler with logging and a timeout.
func WrapWithLogging(name string, h handler.CommandHandler) handler.CommandHandler {
	return func(e *handler.CommandEvent) error {
		start := time.Now()
		attrs := []any{
			slog.String("type", "cmd"),
			slog.String("name", name),
			slog.String("user_id", e.User().ID.String()),
			slog.String("user_name", e.User().Username),
		}
		if guildID := e.GuildID(); guildID != nil {
			attrs = append(attrs, slog.String("guild_id", guildID.String()))
		}

		done := make(chan error, 1)
		go func() {
			done <- h(e)
		}()

		select {
		case err := <-done:
			took := time.Since(start)
			attrs = append(attrs, slog.Duration("took", took))
			switch {
			case err != nil:
				slog.Error("Command failed", append(attrs,
					slog.Any("error", err),
					slog.String("status", "failed"),
				)...)
			case took > slowCommand:
				slog.Warn("Command executed slowly", append(attrs, slog.String("status", "slow"))...)
			default:
				slog.Info("Command completed", append(attrs, slog.String("status", "success"))...)
			}
			return err

		case <-time.After(commandTimeout):
			slog.Error("Command timed out", append(attrs,
				slog.String("status", "timeout"),
				slog.Duration("timeout", commandTimeout),
			)...)
			return fmt.Errorf("command %s timed out after %s", name, commandTimeout)
		}
	}
}

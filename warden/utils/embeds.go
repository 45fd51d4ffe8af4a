package utils

import (
	"fmt"

	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/handler"
)

const (
	SuccessColor = 0x57F287
	ErrorColor   = 0xED4245
	WarningColor = 0xFEE75C
	InfoColor    = 0x5865F2
	NeutralColor = 0x2B2D31
)

// ResponseHandler answers interactions with the bot's standard embeds.
type ResponseHandler struct{}

var EH = &ResponseHandler{}

type ErrorType int

const (
	// UserError covers bad input such as an unparsable delay.
	UserError ErrorType = iota
	// SystemError covers storage and platform failures.
	SystemError
	NotFoundError
	PermissionError
	// BusinessLogicError covers rule refusals: cooldowns, funds, open tickets.
	BusinessLogicError
)

func errorPrefix(t ErrorType) string {
	switch t {
	case UserError:
		return "⚠️"
	case SystemError:
		return "🔧"
	case NotFoundError:
		return "🔍"
	case PermissionError:
		return "🚫"
	case BusinessLogicError:
		return "⏰"
	}
	return "❌"
}

func errorColor(t ErrorType) int {
	switch t {
	case UserError, BusinessLogicError:
		return WarningColor
	case NotFoundError:
		return InfoColor
	}
	return ErrorColor
}

func embedMessage(color int, description string, ephemeral bool) discord.MessageCreate {
	msg := discord.MessageCreate{
		Embeds: []discord.Embed{{
			Description: description,
			Color:       color,
		}},
	}
	if ephemeral {
		msg.Flags = discord.MessageFlagEphemeral
	}
	return msg
}

func (h *ResponseHandler) CreateSuccessEmbed(e *handler.CommandEvent, message string) error {
	return e.CreateMessage(embedMessage(SuccessColor, "✅ "+message, false))
}

func (h *ResponseHandler) CreateInfoEmbed(e *handler.CommandEvent, message string) error {
	return e.CreateMessage(embedMessage(InfoColor, message, false))
}

// CreateEphemeralSuccess is used by moderation commands so only the moderator
// sees the confirmation; the audit trail goes to the log channel.
func (h *ResponseHandler) CreateEphemeralSuccess(e *handler.CommandEvent, message string) error {
	return e.CreateMessage(embedMessage(SuccessColor, "✅ "+message, true))
}

func (h *ResponseHandler) CreateClassifiedError(e *handler.CommandEvent, t ErrorType, message string) error {
	return e.CreateMessage(embedMessage(errorColor(t), errorPrefix(t)+" "+message, true))
}

func (h *ResponseHandler) CreateUserError(e *handler.CommandEvent, message string) error {
	return h.CreateClassifiedError(e, UserError, message)
}

func (h *ResponseHandler) CreateSystemError(e *handler.CommandEvent, message string) error {
	return h.CreateClassifiedError(e, SystemError, message)
}

func (h *ResponseHandler) CreateNotFoundError(e *handler.CommandEvent, resource string, identifier string) error {
	return h.CreateClassifiedError(e, NotFoundError, fmt.Sprintf("%s '%s' not found", resource, identifier))
}

func (h *ResponseHandler) CreatePermissionError(e *handler.CommandEvent, action string) error {
	return h.CreateClassifiedError(e, PermissionError, fmt.Sprintf("You don't have permission to %s", action))
}

func (h *ResponseHandler) CreateBusinessLogicError(e *handler.CommandEvent, message string) error {
	return h.CreateClassifiedError(e, BusinessLogicError, message)
}

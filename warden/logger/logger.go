package logger

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"time"
)

const (
	colorReset  = "\033[0m"
	colorRed    = "\033[31m"
	colorGreen  = "\033[32m"
	colorYellow = "\033[33m"
	colorPurple = "\033[35m"
	colorWhite  = "\033[37m"
)

type LogType string

const (
	TypeCommand LogType = "CMD"
	TypeDB      LogType = "DB"
	TypeSystem  LogType = "SYS"
	TypeError   LogType = "ERR"
	TypeEngine  LogType = "ENG"
)

// skippedMessages are disgo internals that drown out the bot's own logs.
var skippedMessages = []string{
	"locking buckets",
	"unlocking buckets",
	"gateway event",
	"cleaning up bucket",
	"cleaned up rate limit buckets",
	"binary message received",
	"received gateway message",
	"locking gateway rate limiter",
	"unlocking gateway rate limiter",
	"sending gateway command",
	"new request",
	"new response",
	"locking rest bucket",
	"unlocking rest bucket",
	"rate limit response headers",
	"sending heartbeat",
}

type Options struct {
	Level   slog.Leveler
	NoColor bool
}

type CustomHandler struct {
	out    io.Writer
	mu     *sync.Mutex
	opts   Options
	attrs  []slog.Attr
	groups []string
}

func NewHandler(out io.Writer, opts Options) *CustomHandler {
	if out == nil {
		out = os.Stdout
	}
	if opts.Level == nil {
		opts.Level = slog.LevelInfo
	}
	return &CustomHandler{out: out, mu: &sync.Mutex{}, opts: opts}
}

// ParseLevel maps config values such as "debug" or "warn" to a level.
func ParseLevel(s string) slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.TrimSpace(s))); err != nil {
		return slog.LevelInfo
	}
	return level
}

func (h *CustomHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.opts.Level.Level()
}

func (h *CustomHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	clone := *h
	clone.attrs = append(append([]slog.Attr{}, h.attrs...), attrs...)
	return &clone
}

func (h *CustomHandler) WithGroup(name string) slog.Handler {
	clone := *h
	clone.groups = append(append([]string{}, h.groups...), name)
	return &clone
}

func (h *CustomHandler) Handle(_ context.Context, r slog.Record) error {
	if shouldSkipLog(r.Message) {
		return nil
	}

	f := fields{logType: TypeSystem}
	for _, a := range h.attrs {
		f.collect(a)
	}
	r.Attrs(func(a slog.Attr) bool {
		f.collect(a)
		return true
	})

	message := r.Message
	if r.Level >= slog.LevelError {
		if f.location == "" && r.PC != 0 {
			frame, _ := runtime.CallersFrames([]uintptr{r.PC}).Next()
			if frame.File != "" {
				f.location = fmt.Sprintf("%s:%d", filepath.Base(frame.File), frame.Line)
			}
		}
		if f.location != "" {
			message = fmt.Sprintf("%s (%s)", message, f.location)
		}
		if f.err != "" {
			message = fmt.Sprintf("%s: %s", message, f.err)
		}
	}
	if f.name != "" && f.userName != "" {
		message = fmt.Sprintf("%s [%s by %s]", message, f.name, f.userName)
	}
	if f.status != "" {
		message = fmt.Sprintf("%s [Status: %s]", message, f.status)
	}
	if f.took > 0 {
		message = fmt.Sprintf("%s (took %dms)", message, f.took.Milliseconds())
	}

	prefix := strings.Join(h.groups, ".")
	if prefix != "" {
		prefix += "."
	}
	var extra strings.Builder
	for _, a := range f.rest {
		fmt.Fprintf(&extra, " %s%s=%v", prefix, a.Key, a.Value)
	}

	levelColor, levelText := levelStyle(r.Level)
	white, reset := colorWhite, colorReset
	if h.opts.NoColor {
		levelColor, white, reset = "", "", ""
	}

	ts := r.Time
	if ts.IsZero() {
		ts = time.Now()
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := fmt.Fprintf(h.out, "%s[Warden] [%s] [%s%s%s] [%s] %s%s%s\n",
		white,
		ts.Format("15:04:05"),
		levelColor,
		levelText,
		white,
		f.logType,
		message,
		extra.String(),
		reset,
	)
	return err
}

type fields struct {
	logType  LogType
	name     string
	userName string
	status   string
	err      string
	location string
	took     time.Duration
	rest     []slog.Attr
}

func (f *fields) collect(a slog.Attr) {
	switch a.Key {
	case "type":
		f.logType = typeOf(a.Value.String())
	case "name":
		f.name = a.Value.String()
	case "user_name":
		f.userName = a.Value.String()
	case "status":
		f.status = a.Value.String()
	case "error":
		f.err = fmt.Sprintf("%v", a.Value.Any())
	case "error_location":
		f.location = a.Value.String()
	case "took":
		if a.Value.Kind() == slog.KindDuration {
			f.took = a.Value.Duration()
			return
		}
		f.rest = append(f.rest, a)
	default:
		f.rest = append(f.rest, a)
	}
}

func typeOf(v string) LogType {
	switch v {
	case "cmd":
		return TypeCommand
	case "db":
		return TypeDB
	case "error":
		return TypeError
	case "eng":
		return TypeEngine
	}
	return TypeSystem
}

func levelStyle(level slog.Level) (string, string) {
	switch {
	case level >= slog.LevelError:
		return colorRed, "ERROR"
	case level >= slog.LevelWarn:
		return colorYellow, "WARN"
	case level >= slog.LevelInfo:
		return colorGreen, "INFO"
	}
	return colorPurple, "DEBUG"
}

func shouldSkipLog(message string) bool {
	lower := strings.ToLower(message)
	for _, skip := range skippedMessages {
		if strings.Contains(lower, skip) {
			return true
		}
	}
	return false
}

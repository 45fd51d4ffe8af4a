package repositories

import (
	"log/slog"
	"time"
)

// queryLog times one repository call. Successes are logged at debug level
// since the store writes on every message.
type queryLog struct {
	operation string
	entity    string
	start     time.Time
}

func newQueryLog(operation string, entity string) queryLog {
	return queryLog{operation: operation, entity: entity, start: time.Now()}
}

func (l queryLog) done(err error, rowsAffected int64) {
	took := time.Since(l.start)
	if err != nil {
		slog.Error("Query failed",
			slog.String("type", "db"),
			slog.String("operation", l.operation),
			slog.String("entity", l.entity),
			slog.Duration("took", took),
			slog.Any("error", err),
		)
		return
	}
	slog.Debug("Query executed",
		slog.String("type", "db"),
		slog.String("operation", l.operation),
		slog.String("entity", l.entity),
		slog.Duration("took", took),
		slog.Int64("affected_rows", rowsAffected),
	)
}

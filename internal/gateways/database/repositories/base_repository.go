package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/uptrace/bun"

	"github.com/wardenbot/warden/internal/store"
)

const DefaultQueryTimeout = 10 * time.Second

// BaseRepository provides common repository functionality
type BaseRepository struct {
	db             bun.IDB
	defaultTimeout time.Duration
}

// NewBaseRepository works on a *bun.DB or on a bun.Tx.
func NewBaseRepository(db bun.IDB) *BaseRepository {
	return &BaseRepository{
		db:             db,
		defaultTimeout: DefaultQueryTimeout,
	}
}

// RepositoryError represents a repository-level error
type RepositoryError struct {
	Operation string
	Entity    string
	Err       error
}

func (re *RepositoryError) Error() string {
	return fmt.Sprintf("repository error during %s for %s: %v", re.Operation, re.Entity, re.Err)
}

func (re *RepositoryError) Unwrap() error {
	return re.Err
}

// NotFoundError matches store.ErrNotFound.
type NotFoundError struct {
	Entity string
	ID     any
}

func (nfe *NotFoundError) Error() string {
	return fmt.Sprintf("%s with ID %v not found", nfe.Entity, nfe.ID)
}

func (nfe *NotFoundError) Is(target error) bool {
	return target == store.ErrNotFound
}

func (br *BaseRepository) WithTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, br.defaultTimeout)
}

// HandleErrorWithID standardizes error handling with specific ID
func (br *BaseRepository) HandleErrorWithID(operation, entity string, id any, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return &NotFoundError{Entity: entity, ID: id}
	}
	return &RepositoryError{
		Operation: operation,
		Entity:    entity,
		Err:       err,
	}
}

func (br *BaseRepository) HandleError(operation, entity string, err error) error {
	return br.HandleErrorWithID(operation, entity, "unknown", err)
}

// ExecWithTimeout executes a query with timeout and error handling
func (br *BaseRepository) ExecWithTimeout(ctx context.Context, operation, entity string, query func(context.Context) (sql.Result, error)) (sql.Result, error) {
	timeoutCtx, cancel := br.WithTimeout(ctx)
	defer cancel()

	log := newQueryLog(operation, entity)
	result, err := query(timeoutCtx)
	var rows int64
	if err == nil && result != nil {
		rows, _ = result.RowsAffected()
	}
	log.done(err, rows)
	return result, br.HandleError(operation, entity, err)
}

// SelectOneWithTimeout executes a select one query with timeout and error handling
func (br *BaseRepository) SelectOneWithTimeout(ctx context.Context, operation, entity string, id any, query func(context.Context) error) error {
	timeoutCtx, cancel := br.WithTimeout(ctx)
	defer cancel()

	return br.HandleErrorWithID(operation, entity, id, query(timeoutCtx))
}

func (br *BaseRepository) SelectWithTimeout(ctx context.Context, operation, entity string, query func(context.Context) error) error {
	timeoutCtx, cancel := br.WithTimeout(ctx)
	defer cancel()

	return br.HandleError(operation, entity, query(timeoutCtx))
}

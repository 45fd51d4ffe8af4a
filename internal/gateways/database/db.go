package database

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net"
	"os"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"

	"github.com/wardenbot/warden/internal/gateways/database/models"
)

const (
	defaultConnTimeout   = 5 * time.Second
	defaultMaxRetries    = 3
	defaultRetryInterval = time.Second
	schemaVersion        = 2 // bump when schema/migrations change
)

type DBConfig struct {
	Host         string `toml:"host"`
	Port         int    `toml:"port"`
	User         string `toml:"user"`
	Password     string `toml:"password"`
	Database     string `toml:"database"`
	SSLMode      string `toml:"ssl_mode"`
	PoolSize     int    `toml:"pool_size"`
	MaxIdleConns int    `toml:"max_idle_conns"`
	MaxLifetime  int    `toml:"max_lifetime"`
}

type DB struct {
	pool  *pgxpool.Pool
	bunDB *bun.DB
}

func New(ctx context.Context, cfg DBConfig) (*DB, error) {
	if err := waitForServer(ctx, cfg); err != nil {
		return nil, err
	}

	poolConfig, err := pgxpool.ParseConfig(buildConnString(cfg))
	if err != nil {
		return nil, fmt.Errorf("failed to parse connection string: %w", err)
	}

	if cfg.PoolSize > 0 {
		poolConfig.MaxConns = int32(cfg.PoolSize)
	}
	if cfg.MaxIdleConns > 0 {
		poolConfig.MinConns = int32(cfg.MaxIdleConns)
	}
	if cfg.MaxLifetime > 0 {
		poolConfig.MaxConnLifetime = time.Duration(cfg.MaxLifetime) * time.Second
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(buildConnString(cfg))))
	return &DB{pool: pool, bunDB: bun.NewDB(sqldb, pgdialect.New())}, nil
}

// waitForServer retries a plain TCP dial so a database that is still booting
// does not fail startup.
func waitForServer(ctx context.Context, cfg DBConfig) error {
	addr := net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port))
	dialer := net.Dialer{Timeout: defaultConnTimeout}

	var err error
	for i := 0; i < defaultMaxRetries; i++ {
		var conn net.Conn
		conn, err = dialer.DialContext(ctx, "tcp", addr)
		if err == nil {
			return conn.Close()
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(defaultRetryInterval):
		}
	}
	return fmt.Errorf("database server unreachable after %d attempts: %w", defaultMaxRetries, err)
}

func buildConnString(cfg DBConfig) string {
	sslMode := cfg.SSLMode
	if sslMode == "" {
		sslMode = os.Getenv("PG_SSLMODE")
	}
	if sslMode == "" {
		sslMode = "disable"
	}
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s&connect_timeout=5",
		cfg.User, cfg.Password, cfg.Host, cfg.Port, cfg.Database, sslMode,
	)
}

func (db *DB) GetPool() *pgxpool.Pool {
	return db.pool
}

func (db *DB) BunDB() *bun.DB {
	return db.bunDB
}

func (db *DB) ExecWithLog(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	start := time.Now()
	result, err := db.pool.Exec(ctx, sql, args...)
	duration := time.Since(start)

	if err != nil {
		slog.Error("Query failed",
			slog.String("type", "db"),
			slog.String("operation", "exec"),
			slog.String("query", sql),
			slog.Any("args", args),
			slog.Duration("took", duration),
			slog.Any("error", err),
		)
		return result, err
	}

	slog.Debug("Query executed",
		slog.String("type", "db"),
		slog.String("operation", "exec"),
		slog.String("query", sql),
		slog.Duration("took", duration),
		slog.Int64("affected_rows", result.RowsAffected()),
	)
	return result, nil
}

func (db *DB) QueryWithLog(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	start := time.Now()
	rows, err := db.pool.Query(ctx, sql, args...)
	if err != nil {
		slog.Error("Query failed",
			slog.String("type", "db"),
			slog.String("operation", "query"),
			slog.String("query", sql),
			slog.Any("args", args),
			slog.Duration("took", time.Since(start)),
			slog.Any("error", err),
		)
		return rows, err
	}
	return rows, nil
}

func (db *DB) Close() {
	if db.pool != nil {
		db.pool.Close()
	}
	if db.bunDB != nil {
		db.bunDB.Close()
	}
}

// InitializeSchema creates all required database tables and indexes
func (db *DB) InitializeSchema(ctx context.Context) error {
	if err := db.ensureAppMeta(ctx); err == nil {
		if v, _ := db.getAppMeta(ctx, "schema_version"); v == strconv.Itoa(schemaVersion) {
			slog.Info("Schema up-to-date, skipping initialization",
				slog.String("type", "db"),
				slog.Int("schema_version", schemaVersion))
			return nil
		}
	}

	tables := []any{
		(*models.GuildConfig)(nil),
		(*models.Member)(nil),
		(*models.Ticket)(nil),
		(*models.Reminder)(nil),
		(*models.Giveaway)(nil),
	}
	for _, model := range tables {
		_, err := db.bunDB.NewCreateTable().
			Model(model).
			IfNotExists().
			Exec(ctx)
		if err != nil {
			return fmt.Errorf("failed to create table: %w", err)
		}
	}

	indexes := []string{
		"CREATE INDEX IF NOT EXISTS idx_guild_members_rank ON guild_members(guild_id, level DESC, xp DESC);",
		// one open ticket per member, enforced by the database as well
		"CREATE UNIQUE INDEX IF NOT EXISTS idx_tickets_one_open ON tickets(guild_id, opener_id) WHERE status = 'open';",
		"CREATE INDEX IF NOT EXISTS idx_tickets_channel ON tickets(channel_id) WHERE channel_id <> 0;",
		"CREATE INDEX IF NOT EXISTS idx_reminders_due ON reminders(due_at);",
		"CREATE INDEX IF NOT EXISTS idx_reminders_user ON reminders(user_id);",
		"CREATE INDEX IF NOT EXISTS idx_giveaways_ends ON giveaways(ends_at);",
	}
	for _, idx := range indexes {
		if _, err := db.ExecWithLog(ctx, idx); err != nil {
			return fmt.Errorf("failed to create index: %w", err)
		}
	}

	if err := db.setAppMeta(ctx, "schema_version", strconv.Itoa(schemaVersion)); err != nil {
		slog.Warn("Failed to record schema version",
			slog.String("type", "db"),
			slog.Any("error", err))
	}
	return nil
}

func (db *DB) ensureAppMeta(ctx context.Context) error {
	_, err := db.ExecWithLog(ctx, `CREATE TABLE IF NOT EXISTS app_meta (key TEXT PRIMARY KEY, value TEXT)`)
	return err
}

func (db *DB) getAppMeta(ctx context.Context, key string) (string, error) {
	row := db.pool.QueryRow(ctx, `SELECT value FROM app_meta WHERE key = $1`, key)
	var v string
	if err := row.Scan(&v); err != nil {
		return "", err
	}
	return v, nil
}

func (db *DB) setAppMeta(ctx context.Context, key, value string) error {
	sql := `INSERT INTO app_meta(key, value) VALUES($1, $2)
            ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value`
	_, err := db.pool.Exec(ctx, sql, key, value)
	return err
}

package database

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"sort"
	"strings"

	"reviewdesk/config"

	"github.com/lib/pq"
)

//go:embed schema.sql
var schema string

// DB wraps the pooled connection with a transaction helper.
type DB struct {
	*sql.DB
}

// DSN builds a lib/pq connection string. DATABASE_URL takes precedence over
// the individual fields.
func DSN(cfg config.DatabaseConfig) (string, error) {
	if cfg.URL != "" {
		return pq.ParseURL(cfg.URL)
	}

	params := map[string]string{
		"host":    cfg.Host,
		"port":    cfg.Port,
		"dbname":  cfg.Name,
		"sslmode": cfg.SSLMode,
	}
	if cfg.User != "" {
		params["user"] = cfg.User
	}
	if cfg.Password != "" {
		params["password"] = cfg.Password
	}

	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	values := make([]string, 0, len(keys))
	for _, k := range keys {
		values = append(values, fmt.Sprintf("%s=%s", k, quote(params[k])))
	}
	return strings.Join(values, " "), nil
}

var dsnEscaper = strings.NewReplacer(`\`, `\\`, `'`, `\'`)

// quote single-quotes a key=value DSN value so spaces and quotes survive.
func quote(v string) string {
	return "'" + dsnEscaper.Replace(v) + "'"
}

func Connect(ctx context.Context, cfg config.DatabaseConfig) (*DB, error) {
	dsn, err := DSN(cfg)
	if err != nil {
		return nil, fmt.Errorf("database: build dsn: %w", err)
	}

	sqlDB, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("database: open: %w", err)
	}
	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxIdleTime(cfg.MaxIdleTime)

	if err = sqlDB.PingContext(ctx); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("database: ping: %w", err)
	}
	return &DB{DB: sqlDB}, nil
}

// Pipe runs fn inside one transaction, committing when fn returns nil.
func (db *DB) Pipe(ctx context.Context, opts *sql.TxOptions, fn func(tx *sql.Tx) error) error {
	tx, err := db.BeginTx(ctx, opts)
	if err != nil {
		return fmt.Errorf("database: begin: %w", err)
	}
	if err = fn(tx); err != nil {
		return errors.Join(err, tx.Rollback())
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("database: commit: %w", err)
	}
	return nil
}

// Migrate creates the tables if they do not exist yet.
func (db *DB) Migrate(ctx context.Context) error {
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("database: migrate: %w", err)
	}
	return nil
}

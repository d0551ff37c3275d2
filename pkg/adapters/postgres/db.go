package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"log/slog"
	"time"

	_ "github.com/lib/pq"

	"github.com/aretw0/civicflow/pkg/domain"
	"github.com/aretw0/civicflow/pkg/ports"
)

var (
	_ ports.QueryRunner     = (*DB)(nil)
	_ ports.SchemaInspector = (*DB)(nil)
)

// Config holds the connection pool configuration.
type Config struct {
	DSN             string        `mapstructure:"url"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	// QueryTimeout bounds every statement. Zero leaves it to the caller's context.
	QueryTimeout time.Duration `mapstructure:"query_timeout"`
}

// DB implements ports.QueryRunner and ports.SchemaInspector over PostgreSQL.
// Statements run inside read-only transactions.
type DB struct {
	db      *sql.DB
	timeout time.Duration
	logger  *slog.Logger
}

// Open opens and verifies a connection pool.
func Open(ctx context.Context, cfg Config, logger *slog.Logger) (*DB, error) {
	if cfg.DSN == "" {
		return nil, fmt.Errorf("postgres: connection string is empty")
	}
	if cfg.MaxOpenConns == 0 {
		cfg.MaxOpenConns = 10
	}
	if cfg.MaxIdleConns == 0 {
		cfg.MaxIdleConns = 5
	}
	if cfg.ConnMaxLifetime == 0 {
		cfg.ConnMaxLifetime = 5 * time.Minute
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	logger.Debug("opening postgres pool",
		"dsn", MaskDSN(cfg.DSN),
		"max_open_conns", cfg.MaxOpenConns,
		"max_idle_conns", cfg.MaxIdleConns,
		"conn_max_lifetime", cfg.ConnMaxLifetime)

	db, err := sql.Open("postgres", cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("postgres: failed to open connection: %w", err)
	}
	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("postgres: failed to ping %s: %w", MaskDSN(cfg.DSN), err)
	}

	return &DB{db: db, timeout: cfg.QueryTimeout, logger: logger}, nil
}

// Close closes the pool.
func (d *DB) Close() error {
	return d.db.Close()
}

// Ping checks connectivity.
func (d *DB) Ping(ctx context.Context) error {
	return d.db.PingContext(ctx)
}

// Query runs sqlText in a read-only transaction and returns every row.
func (d *DB) Query(ctx context.Context, sqlText string) ([]domain.Row, error) {
	return d.queryArgs(ctx, sqlText)
}

func (d *DB) queryArgs(ctx context.Context, sqlText string, args ...any) ([]domain.Row, error) {
	if d.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d.timeout)
		defer cancel()
	}

	began := time.Now()
	rows, err := d.query(ctx, sqlText, args...)
	if err != nil {
		d.logger.DebugContext(ctx, "query failed", "sql", sqlText, "error", err)
		return nil, &domain.QueryError{Query: sqlText, Err: err}
	}
	d.logger.DebugContext(ctx, "query executed", "sql", sqlText, "rows", len(rows), "duration", time.Since(began))
	return rows, nil
}

func (d *DB) query(ctx context.Context, sqlText string, args ...any) ([]domain.Row, error) {
	tx, err := d.db.BeginTx(ctx, &sql.TxOptions{ReadOnly: true})
	if err != nil {
		return nil, fmt.Errorf("begin read-only transaction: %w", err)
	}
	defer tx.Rollback()

	rows, err := tx.QueryContext(ctx, sqlText, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("failed to get columns: %w", err)
	}
	colTypes, err := rows.ColumnTypes()
	if err != nil {
		return nil, fmt.Errorf("failed to get column types: %w", err)
	}
	typeNames := make([]string, len(colTypes))
	for i, ct := range colTypes {
		typeNames[i] = ct.DatabaseTypeName()
	}

	out := []domain.Row{}
	for rows.Next() {
		row, err := scanRow(cols, typeNames, rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRow(cols, typeNames []string, rows scanner) (domain.Row, error) {
	values := make([]any, len(cols))
	ptrs := make([]any, len(cols))
	for i := range values {
		ptrs[i] = &values[i]
	}
	if err := rows.Scan(ptrs...); err != nil {
		return nil, err
	}

	row := make(domain.Row, len(cols))
	for i, col := range cols {
		row[col] = normalize(typeNames[i], values[i])
	}
	return row, nil
}

// normalize turns the driver's raw bytes into strings for every textual type
// (NUMERIC, JSON, UUID and friends). BYTEA stays binary.
func normalize(typeName string, v any) any {
	b, ok := v.([]byte)
	if !ok || typeName == "BYTEA" {
		return v
	}
	return string(b)
}

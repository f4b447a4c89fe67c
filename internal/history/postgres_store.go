package history

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq" // PostgreSQL driver
	"github.com/shopspring/decimal"

	"github.com/tinchodeluca/scann-url/internal/domain"
)

// pingTimeout bounds the connection check.
const pingTimeout = 5 * time.Second

const schema = `
CREATE TABLE IF NOT EXISTS price_history (
	product_name TEXT        NOT NULL,
	day          DATE        NOT NULL,
	observed_at  TIMESTAMPTZ NOT NULL,
	price        NUMERIC     NOT NULL,
	PRIMARY KEY (product_name, day)
)`

// PostgresStore keeps one row per product per day.
type PostgresStore struct {
	db *sqlx.DB
}

type historyRow struct {
	ProductName string          `db:"product_name"`
	Day         time.Time       `db:"day"`
	ObservedAt  time.Time       `db:"observed_at"`
	Price       decimal.Decimal `db:"price"`
}

func (r historyRow) entry() domain.HistoryEntry {
	return domain.HistoryEntry{
		Date:       r.Day.Format(domain.DateLayout),
		ObservedAt: r.ObservedAt,
		Price:      r.Price,
	}
}

// NewPostgresDB opens and verifies a connection pool.
func NewPostgresDB(cfg PostgresConfig) (*sqlx.DB, error) {
	db, err := sqlx.Connect("postgres", cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()

	if pingErr := db.PingContext(ctx); pingErr != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", pingErr)
	}
	return db, nil
}

// NewPostgresStore wraps db.
func NewPostgresStore(db *sqlx.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// EnsureSchema creates the history table when missing.
func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("create price_history table: %w", err)
	}
	return nil
}

// Update implements Store. The product's rows are locked for the length of
// the transaction and replaced by fn's result.
func (s *PostgresStore) Update(ctx context.Context, name string, fn UpdateFunc) (err error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	// Serializes writers of a product that has no rows to lock yet.
	if _, err = tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock(hashtext($1))`, name); err != nil {
		return fmt.Errorf("lock history %s: %w", name, err)
	}

	var rows []historyRow
	err = tx.SelectContext(ctx, &rows, `
		SELECT product_name, day, observed_at, price
		FROM price_history
		WHERE product_name = $1
		ORDER BY day
		FOR UPDATE`, name)
	if err != nil {
		return fmt.Errorf("select history %s: %w", name, err)
	}

	next := Trim(fn(toHistory(rows)), domain.HistoryCapacity)

	if _, err = tx.ExecContext(ctx, `DELETE FROM price_history WHERE product_name = $1`, name); err != nil {
		return fmt.Errorf("clear history %s: %w", name, err)
	}
	for _, e := range next {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO price_history (product_name, day, observed_at, price)
			VALUES ($1, $2, $3, $4)`,
			name, e.Date, e.ObservedAt, e.Price)
		if err != nil {
			return fmt.Errorf("insert history %s %s: %w", name, e.Date, err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit history %s: %w", name, err)
	}
	return nil
}

// Get implements Store.
func (s *PostgresStore) Get(ctx context.Context, name string) (domain.ProductHistory, error) {
	var rows []historyRow
	err := s.db.SelectContext(ctx, &rows, `
		SELECT product_name, day, observed_at, price
		FROM price_history
		WHERE product_name = $1
		ORDER BY day`, name)
	if err != nil {
		return nil, fmt.Errorf("select history %s: %w", name, err)
	}
	return toHistory(rows), nil
}

// All implements Store.
func (s *PostgresStore) All(ctx context.Context) (map[string]domain.ProductHistory, error) {
	var rows []historyRow
	err := s.db.SelectContext(ctx, &rows, `
		SELECT product_name, day, observed_at, price
		FROM price_history
		ORDER BY product_name, day`)
	if err != nil {
		return nil, fmt.Errorf("select all history: %w", err)
	}

	out := make(map[string]domain.ProductHistory)
	for _, r := range rows {
		out[r.ProductName] = append(out[r.ProductName], r.entry())
	}
	return out, nil
}

// Close implements Store.
func (s *PostgresStore) Close() error {
	return s.db.Close()
}

func toHistory(rows []historyRow) domain.ProductHistory {
	if len(rows) == 0 {
		return nil
	}
	h := make(domain.ProductHistory, 0, len(rows))
	for _, r := range rows {
		h = append(h, r.entry())
	}
	return h
}

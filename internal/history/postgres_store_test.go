package history_test

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tinchodeluca/scann-url/internal/domain"
	"github.com/tinchodeluca/scann-url/internal/history"
)

var historyColumns = []string{"product_name", "day", "observed_at", "price"}

func newPostgresStore(t *testing.T) (*history.PostgresStore, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	return history.NewPostgresStore(sqlx.NewDb(db, "postgres")), mock
}

func TestPostgresStore_Update(t *testing.T) {
	t.Parallel()

	store, mock := newPostgresStore(t)
	day1 := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("SELECT pg_advisory_xact_lock(hashtext($1))")).
		WithArgs("Drive").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery("SELECT product_name, day, observed_at, price\\s+FROM price_history\\s+WHERE product_name = \\$1\\s+ORDER BY day\\s+FOR UPDATE").
		WithArgs("Drive").
		WillReturnRows(sqlmock.NewRows(historyColumns).AddRow("Drive", day1, baseDay, "129.99"))
	mock.ExpectExec("DELETE FROM price_history WHERE product_name = \\$1").
		WithArgs("Drive").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO price_history").
		WithArgs("Drive", "2026-03-01", baseDay, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO price_history").
		WithArgs("Drive", "2026-03-02", baseDay.AddDate(0, 0, 1), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	var seen domain.ProductHistory
	err := store.Update(context.Background(), "Drive", func(h domain.ProductHistory) domain.ProductHistory {
		seen = h
		return append(h, domain.HistoryEntry{
			Date:       "2026-03-02",
			ObservedAt: baseDay.AddDate(0, 0, 1),
			Price:      decimal.RequireFromString("119.99"),
		})
	})
	require.NoError(t, err)

	require.Len(t, seen, 1)
	assert.Equal(t, "2026-03-01", seen[0].Date)
	assert.Equal(t, "129.99", seen[0].Price.String())
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_UpdateRollsBackOnError(t *testing.T) {
	t.Parallel()

	store, mock := newPostgresStore(t)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("SELECT pg_advisory_xact_lock(hashtext($1))")).
		WithArgs("Drive").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery("SELECT product_name, day, observed_at, price").
		WithArgs("Drive").
		WillReturnError(sql.ErrConnDone)
	mock.ExpectRollback()

	err := store.Update(context.Background(), "Drive", func(h domain.ProductHistory) domain.ProductHistory { return h })
	require.ErrorIs(t, err, sql.ErrConnDone)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_All(t *testing.T) {
	t.Parallel()

	store, mock := newPostgresStore(t)
	day1 := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	day2 := day1.AddDate(0, 0, 1)

	mock.ExpectQuery("SELECT product_name, day, observed_at, price\\s+FROM price_history\\s+ORDER BY product_name, day").
		WillReturnRows(sqlmock.NewRows(historyColumns).
			AddRow("Cable", day1, baseDay, "9.99").
			AddRow("Drive", day1, baseDay, "129.99").
			AddRow("Drive", day2, baseDay, "119.99"))

	all, err := store.All(context.Background())
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Len(t, all["Cable"], 1)
	require.Len(t, all["Drive"], 2)
	assert.Equal(t, "2026-03-02", all["Drive"][1].Date)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_GetEmpty(t *testing.T) {
	t.Parallel()

	store, mock := newPostgresStore(t)
	mock.ExpectQuery("SELECT product_name, day, observed_at, price").
		WithArgs("Missing").
		WillReturnRows(sqlmock.NewRows(historyColumns))

	h, err := store.Get(context.Background(), "Missing")
	require.NoError(t, err)
	assert.Empty(t, h)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_EnsureSchema(t *testing.T) {
	t.Parallel()

	store, mock := newPostgresStore(t)
	mock.ExpectExec("CREATE TABLE IF NOT EXISTS price_history").WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, store.EnsureSchema(context.Background()))
	require.NoError(t, mock.ExpectationsWereMet())
}

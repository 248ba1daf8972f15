// Package storage persists profile documents, savings ledgers and monthly
// expense entries in SQLite.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/iwvelando/finance-advisor/pkg/finance"
	"go.uber.org/zap"

	_ "modernc.org/sqlite"
)

// ErrNotFound is returned when a document or entry does not exist for the user.
var ErrNotFound = errors.New("not found")

// Repository is a per-user store backed by a SQLite database.
type Repository struct {
	db     *sql.DB
	logger *zap.Logger
	now    func() time.Time
}

// Open creates the database directory if needed, opens the database and
// applies migrations.
func Open(dbPath string, logger *zap.Logger) (*Repository, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	// SQLite allows a single writer.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, err
	}

	logger.Debug("storage opened",
		zap.String("op", "storage.Open"),
		zap.String("path", dbPath),
	)

	return &Repository{db: db, logger: logger, now: time.Now}, nil
}

// Close releases the database handle.
func (r *Repository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Document returns the stored payload of the given kind.
func (r *Repository) Document(ctx context.Context, userID, kind string) ([]byte, error) {
	var payload []byte
	err := r.db.QueryRowContext(ctx,
		`SELECT payload FROM documents WHERE user_id = ? AND kind = ?`,
		userID, kind,
	).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("read %s document: %w", kind, err)
	}
	return payload, nil
}

// PutDocument stores a payload, replacing any previous document of the same kind.
func (r *Repository) PutDocument(ctx context.Context, userID, kind string, version int, payload []byte) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO documents (user_id, kind, version, payload, updated_at)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT (user_id, kind) DO UPDATE SET
		   version = excluded.version,
		   payload = excluded.payload,
		   updated_at = excluded.updated_at`,
		userID, kind, version, payload, r.timestamp(),
	)
	if err != nil {
		return fmt.Errorf("write %s document: %w", kind, err)
	}
	return nil
}

// Ledger returns every recorded monthly saving of the user.
func (r *Repository) Ledger(ctx context.Context, userID string) (finance.MonthlySavingsLedger, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT month_key, amount FROM savings_ledger WHERE user_id = ? ORDER BY month_key`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("query savings ledger: %w", err)
	}
	defer rows.Close()

	ledger := finance.MonthlySavingsLedger{}
	for rows.Next() {
		var key string
		var amount float64
		if err := rows.Scan(&key, &amount); err != nil {
			return nil, fmt.Errorf("scan savings ledger: %w", err)
		}
		ledger[key] = amount
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate savings ledger: %w", err)
	}
	return ledger, nil
}

// PutSaving records the amount saved in a month, replacing any earlier value.
func (r *Repository) PutSaving(ctx context.Context, userID, monthKey string, amount float64) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO savings_ledger (user_id, month_key, amount) VALUES (?, ?, ?)
		 ON CONFLICT (user_id, month_key) DO UPDATE SET amount = excluded.amount`,
		userID, monthKey, amount,
	)
	if err != nil {
		return fmt.Errorf("write saving for %s: %w", monthKey, err)
	}
	return nil
}

// MonthlyExpenses returns the user's entries, newest period first.
func (r *Repository) MonthlyExpenses(ctx context.Context, userID string) ([]finance.Entry, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, why, amount, month, year FROM monthly_expenses
		 WHERE user_id = ?
		 ORDER BY year DESC, month DESC, created_at DESC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("query monthly expenses: %w", err)
	}
	defer rows.Close()

	entries := []finance.Entry{}
	for rows.Next() {
		var e finance.Entry
		if err := rows.Scan(&e.ID, &e.Why, &e.Amount, &e.Month, &e.Year); err != nil {
			return nil, fmt.Errorf("scan monthly expense: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate monthly expenses: %w", err)
	}
	return entries, nil
}

// AddMonthlyExpense stores a new entry and returns it with its assigned ID.
func (r *Repository) AddMonthlyExpense(ctx context.Context, userID string, e finance.Entry) (finance.Entry, error) {
	e.ID = uuid.NewString()
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO monthly_expenses (id, user_id, why, amount, month, year, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		e.ID, userID, e.Why, e.Amount, e.Month, e.Year, r.timestamp(),
	)
	if err != nil {
		return finance.Entry{}, fmt.Errorf("insert monthly expense: %w", err)
	}

	r.logger.Debug("monthly expense stored",
		zap.String("op", "storage.AddMonthlyExpense"),
		zap.String("id", e.ID),
		zap.String("month", e.Key()),
	)
	return e, nil
}

// UpdateMonthlyExpense replaces the fields of an existing entry.
func (r *Repository) UpdateMonthlyExpense(ctx context.Context, userID string, e finance.Entry) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE monthly_expenses SET why = ?, amount = ?, month = ?, year = ?
		 WHERE id = ? AND user_id = ?`,
		e.Why, e.Amount, e.Month, e.Year, e.ID, userID,
	)
	if err != nil {
		return fmt.Errorf("update monthly expense: %w", err)
	}
	return expectOneRow(res)
}

// DeleteMonthlyExpense removes an entry.
func (r *Repository) DeleteMonthlyExpense(ctx context.Context, userID, id string) error {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM monthly_expenses WHERE id = ? AND user_id = ?`,
		id, userID,
	)
	if err != nil {
		return fmt.Errorf("delete monthly expense: %w", err)
	}
	return expectOneRow(res)
}

func (r *Repository) timestamp() string {
	return r.now().UTC().Format(time.RFC3339Nano)
}

func expectOneRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// Package storage persists the bookkeeping data in a local SQLite database.
//
// One repository owns one database handle; the statistics engine shares the
// same handle through DB(). All timestamps are stored as UTC RFC 3339 text
// and calendar dates as ISO YYYY-MM-DD text, so string comparison in SQL
// matches chronological order.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"bookkeep/internal/core"

	_ "modernc.org/sqlite"
)

const timeLayout = time.RFC3339

type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

// DB exposes the underlying handle for read-only consumers such as the
// statistics engine.
func (r *SQLiteRepository) DB() *sql.DB {
	return r.db
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// CreateLedger inserts a new named ledger and returns it with its ID set.
func (r *SQLiteRepository) CreateLedger(ctx context.Context, name string) (core.Ledger, error) {
	l := core.Ledger{Name: name, CreatedTime: time.Now().UTC()}
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO ledgers (name, created_time) VALUES (?, ?)`,
		l.Name, l.CreatedTime.Format(timeLayout))
	if err != nil {
		return core.Ledger{}, fmt.Errorf("create ledger: %w", err)
	}
	l.ID, err = res.LastInsertId()
	if err != nil {
		return core.Ledger{}, fmt.Errorf("ledger insert id: %w", err)
	}

	slog.InfoContext(ctx, "Ledger created", "id", l.ID, "name", l.Name)
	return l, nil
}

func (r *SQLiteRepository) GetLedger(ctx context.Context, id int64) (core.Ledger, error) {
	var l core.Ledger
	var created string
	err := r.db.QueryRowContext(ctx,
		`SELECT id, name, created_time FROM ledgers WHERE id = ?`, id).
		Scan(&l.ID, &l.Name, &created)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Ledger{}, core.ErrNotFound
	}
	if err != nil {
		return core.Ledger{}, fmt.Errorf("get ledger: %w", err)
	}
	l.CreatedTime, _ = time.Parse(timeLayout, created)
	return l, nil
}

func (r *SQLiteRepository) ListLedgers(ctx context.Context) ([]core.Ledger, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, name, created_time FROM ledgers ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list ledgers: %w", err)
	}
	defer rows.Close()

	var out []core.Ledger
	for rows.Next() {
		var l core.Ledger
		var created string
		if err := rows.Scan(&l.ID, &l.Name, &created); err != nil {
			return nil, fmt.Errorf("scan ledger: %w", err)
		}
		l.CreatedTime, _ = time.Parse(timeLayout, created)
		out = append(out, l)
	}
	return out, rows.Err()
}

// DeleteLedger removes a ledger and, via the schema's cascade, every
// transaction and transfer recorded under it.
func (r *SQLiteRepository) DeleteLedger(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM ledgers WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete ledger: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete ledger rows affected: %w", err)
	}
	if n == 0 {
		return core.ErrNotFound
	}

	slog.InfoContext(ctx, "Ledger deleted", "id", id)
	return nil
}

func (r *SQLiteRepository) CreateAccount(ctx context.Context, name string) (core.Account, error) {
	a := core.Account{Name: name, CreatedTime: time.Now().UTC()}
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO accounts (name, created_time) VALUES (?, ?)`,
		a.Name, a.CreatedTime.Format(timeLayout))
	if err != nil {
		return core.Account{}, fmt.Errorf("create account: %w", err)
	}
	a.ID, err = res.LastInsertId()
	if err != nil {
		return core.Account{}, fmt.Errorf("account insert id: %w", err)
	}
	return a, nil
}

func (r *SQLiteRepository) ListAccounts(ctx context.Context) ([]core.Account, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, name, created_time FROM accounts ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("list accounts: %w", err)
	}
	defer rows.Close()

	var out []core.Account
	for rows.Next() {
		var a core.Account
		var created string
		if err := rows.Scan(&a.ID, &a.Name, &created); err != nil {
			return nil, fmt.Errorf("scan account: %w", err)
		}
		a.CreatedTime, _ = time.Parse(timeLayout, created)
		out = append(out, a)
	}
	return out, rows.Err()
}

func (r *SQLiteRepository) DeleteAccount(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM accounts WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete account: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete account rows affected: %w", err)
	}
	if n == 0 {
		return core.ErrNotFound
	}
	return nil
}

// ListCategories returns the taxonomy of valid (category, subcategory, type)
// triples, optionally filtered to one transaction type.
func (r *SQLiteRepository) ListCategories(ctx context.Context, txType core.TransactionType) ([]core.Category, error) {
	query := `SELECT name, subcategory, transaction_type FROM categories`
	var args []any
	if txType != "" {
		query += ` WHERE transaction_type = ?`
		args = append(args, string(txType))
	}
	query += ` ORDER BY name, subcategory`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	var out []core.Category
	for rows.Next() {
		var c core.Category
		if err := rows.Scan(&c.Name, &c.Subcategory, &c.Type); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

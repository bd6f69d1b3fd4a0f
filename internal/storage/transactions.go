package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"bookkeep/internal/core"
)

// TransactionFilter narrows ListTransactions. Zero values mean "no filter";
// Limit 0 means no cap.
type TransactionFilter struct {
	Start    string // inclusive ISO date
	End      string // inclusive ISO date
	LedgerID int64
	Type     core.TransactionType
	Limit    int
}

const transactionColumns = `id, ledger_id, transaction_date, transaction_type,
	category, subcategory, amount, account, is_settled,
	refund_amount, refund_reason, created_time`

func scanTransaction(scan func(...any) error) (core.Transaction, error) {
	var tx core.Transaction
	var account sql.NullString
	var created string
	err := scan(&tx.ID, &tx.LedgerID, &tx.Date, &tx.Type,
		&tx.Category, &tx.Subcategory, &tx.Amount, &account, &tx.IsSettled,
		&tx.RefundAmount, &tx.RefundReason, &created)
	if err != nil {
		return core.Transaction{}, err
	}
	tx.Account = account.String
	tx.CreatedTime, _ = time.Parse(timeLayout, created)
	return tx, nil
}

// nullable maps an empty account name to SQL NULL so per-account reports can
// exclude it either way.
func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}

// CreateTransaction inserts a transaction and returns it with ID and
// creation time filled in.
func (r *SQLiteRepository) CreateTransaction(ctx context.Context, tx core.Transaction) (core.Transaction, error) {
	tx.CreatedTime = time.Now().UTC()
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO transactions (ledger_id, transaction_date, transaction_type,
			category, subcategory, amount, account, is_settled,
			refund_amount, refund_reason, created_time)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		tx.LedgerID, tx.Date, string(tx.Type),
		tx.Category, tx.Subcategory, tx.Amount, nullable(tx.Account), tx.IsSettled,
		tx.RefundAmount, tx.RefundReason, tx.CreatedTime.Format(timeLayout))
	if err != nil {
		return core.Transaction{}, fmt.Errorf("create transaction: %w", err)
	}
	tx.ID, err = res.LastInsertId()
	if err != nil {
		return core.Transaction{}, fmt.Errorf("transaction insert id: %w", err)
	}

	slog.InfoContext(ctx, "Transaction saved",
		"id", tx.ID,
		"ledger_id", tx.LedgerID,
		"type", tx.Type,
		"date", tx.Date,
		"amount", tx.Amount)
	return tx, nil
}

func (r *SQLiteRepository) GetTransaction(ctx context.Context, id int64) (core.Transaction, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+transactionColumns+` FROM transactions WHERE id = ?`, id)
	tx, err := scanTransaction(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Transaction{}, core.ErrNotFound
	}
	if err != nil {
		return core.Transaction{}, fmt.Errorf("get transaction: %w", err)
	}
	return tx, nil
}

// ListTransactions returns transactions newest first, with the insertion
// timestamp and row id as tiebreakers for same-day entries.
func (r *SQLiteRepository) ListTransactions(ctx context.Context, f TransactionFilter) ([]core.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM transactions WHERE 1=1`
	var args []any
	if f.Start != "" {
		query += ` AND transaction_date >= ?`
		args = append(args, f.Start)
	}
	if f.End != "" {
		query += ` AND transaction_date <= ?`
		args = append(args, f.End)
	}
	if f.LedgerID > 0 {
		query += ` AND ledger_id = ?`
		args = append(args, f.LedgerID)
	}
	if f.Type != "" {
		query += ` AND transaction_type = ?`
		args = append(args, string(f.Type))
	}
	query += ` ORDER BY transaction_date DESC, created_time DESC, id DESC`
	if f.Limit > 0 {
		query += ` LIMIT ?`
		args = append(args, f.Limit)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	defer rows.Close()

	var out []core.Transaction
	for rows.Next() {
		tx, err := scanTransaction(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		out = append(out, tx)
	}
	return out, rows.Err()
}

// UpdateTransaction rewrites every mutable field of the row identified by
// tx.ID. The creation time is kept as originally inserted.
func (r *SQLiteRepository) UpdateTransaction(ctx context.Context, tx core.Transaction) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE transactions
		SET ledger_id = ?, transaction_date = ?, transaction_type = ?,
			category = ?, subcategory = ?, amount = ?, account = ?,
			is_settled = ?, refund_amount = ?, refund_reason = ?
		WHERE id = ?`,
		tx.LedgerID, tx.Date, string(tx.Type),
		tx.Category, tx.Subcategory, tx.Amount, nullable(tx.Account),
		tx.IsSettled, tx.RefundAmount, tx.RefundReason, tx.ID)
	if err != nil {
		return fmt.Errorf("update transaction: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update transaction rows affected: %w", err)
	}
	if n == 0 {
		return core.ErrNotFound
	}

	slog.InfoContext(ctx, "Transaction updated", "id", tx.ID)
	return nil
}

func (r *SQLiteRepository) DeleteTransaction(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM transactions WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete transaction: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete transaction rows affected: %w", err)
	}
	if n == 0 {
		return core.ErrNotFound
	}

	slog.InfoContext(ctx, "Transaction deleted", "id", id)
	return nil
}

// CreateTransfer inserts a transfer leg. The caller is expected to have set
// GroupID; legs created together share one group.
func (r *SQLiteRepository) CreateTransfer(ctx context.Context, t core.Transfer) (core.Transfer, error) {
	t.CreatedTime = time.Now().UTC()
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO transfers (group_id, ledger_id, transfer_date,
			from_account, to_account, amount, note, created_time)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		t.GroupID, t.LedgerID, t.Date,
		t.FromAccount, t.ToAccount, t.Amount, t.Note,
		t.CreatedTime.Format(timeLayout))
	if err != nil {
		return core.Transfer{}, fmt.Errorf("create transfer: %w", err)
	}
	t.ID, err = res.LastInsertId()
	if err != nil {
		return core.Transfer{}, fmt.Errorf("transfer insert id: %w", err)
	}

	slog.InfoContext(ctx, "Transfer saved",
		"id", t.ID,
		"group_id", t.GroupID,
		"from", t.FromAccount,
		"to", t.ToAccount,
		"amount", t.Amount)
	return t, nil
}

func (r *SQLiteRepository) ListTransfers(ctx context.Context, ledgerID int64) ([]core.Transfer, error) {
	query := `
		SELECT id, group_id, ledger_id, transfer_date, from_account,
			to_account, amount, note, created_time
		FROM transfers`
	var args []any
	if ledgerID > 0 {
		query += ` WHERE ledger_id = ?`
		args = append(args, ledgerID)
	}
	query += ` ORDER BY transfer_date DESC, created_time DESC, id DESC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list transfers: %w", err)
	}
	defer rows.Close()

	var out []core.Transfer
	for rows.Next() {
		var t core.Transfer
		var created string
		if err := rows.Scan(&t.ID, &t.GroupID, &t.LedgerID, &t.Date,
			&t.FromAccount, &t.ToAccount, &t.Amount, &t.Note, &created); err != nil {
			return nil, fmt.Errorf("scan transfer: %w", err)
		}
		t.CreatedTime, _ = time.Parse(timeLayout, created)
		out = append(out, t)
	}
	return out, rows.Err()
}

func (r *SQLiteRepository) DeleteTransfer(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM transfers WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete transfer: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete transfer rows affected: %w", err)
	}
	if n == 0 {
		return core.ErrNotFound
	}
	return nil
}

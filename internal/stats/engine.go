// Package stats computes aggregate reports over the transactions table.
//
// Every operation is a stateless read: one parameterized query plus a little
// arithmetic post-processing. Date ranges are inclusive and compared as ISO
// strings; a reversed range simply matches nothing. A ledger id of 0 means
// "all ledgers". Empty result sets come back as zero values, never as errors;
// only storage failures propagate.
package stats

import (
	"context"
	"database/sql"
	"fmt"

	"bookkeep/internal/core"
)

// Engine produces the five aggregate report types. It holds no state beyond
// the database handle and never writes.
type Engine struct {
	db *sql.DB
}

func NewEngine(db *sql.DB) *Engine {
	return &Engine{db: db}
}

// Summary is the income/expense/net overview with refund adjustment.
type Summary struct {
	GrossIncome   float64 `json:"gross_income"`
	TotalRefund   float64 `json:"total_refund"`
	ActualIncome  float64 `json:"actual_income"`
	GrossExpense  float64 `json:"gross_expense"`
	ExpenseRefund float64 `json:"expense_refund"`
	ActualExpense float64 `json:"actual_expense"`
	NetIncome     float64 `json:"net_income"`
}

// CategoryTotal is one row of a category breakdown, ordered by Total descending.
type CategoryTotal struct {
	Label string  `json:"label"`
	Total float64 `json:"total"`
	Count int64   `json:"count"`
}

// AccountTotal is one row of a per-account breakdown.
type AccountTotal struct {
	Account string  `json:"account"`
	Income  float64 `json:"income"`
	Expense float64 `json:"expense"`
	Count   int64   `json:"count"`
}

// Settlement splits expense magnitude into settled and unsettled parts.
type Settlement struct {
	Settled   float64 `json:"settled_amount"`
	Unsettled float64 `json:"unsettled_amount"`
	Total     float64 `json:"total_amount"`
}

// RefundStats reports refund totals against expense volume.
type RefundStats struct {
	TotalRefund float64 `json:"total_refund"`
	RefundCount int64   `json:"refund_count"`
	TotalAmount float64 `json:"total_amount"`
	RefundRatio float64 `json:"refund_ratio"`
}

// rangeFilter builds the shared WHERE fragment for a date range and optional
// ledger scope.
func rangeFilter(start, end string, ledgerID int64) (string, []any) {
	where := "transaction_date BETWEEN ? AND ?"
	args := []any{start, end}
	if ledgerID > 0 {
		where += " AND ledger_id = ?"
		args = append(args, ledgerID)
	}
	return where, args
}

// Summary computes gross and refund-adjusted totals for both transaction
// types in [start, end]. With no matching rows every field is 0.
func (e *Engine) Summary(ctx context.Context, start, end string, ledgerID int64) (Summary, error) {
	where, args := rangeFilter(start, end, ledgerID)
	query := `
		SELECT
			COALESCE(SUM(CASE WHEN transaction_type = 'income' THEN ABS(amount) ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN transaction_type = 'income' THEN refund_amount ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN transaction_type = 'expense' THEN ABS(amount) ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN transaction_type = 'expense' THEN refund_amount ELSE 0 END), 0)
		FROM transactions
		WHERE ` + where

	var s Summary
	err := e.db.QueryRowContext(ctx, query, args...).Scan(
		&s.GrossIncome, &s.TotalRefund, &s.GrossExpense, &s.ExpenseRefund)
	if err != nil {
		return Summary{}, fmt.Errorf("query summary: %w", err)
	}

	s.ActualIncome = s.GrossIncome - s.TotalRefund
	s.ActualExpense = s.GrossExpense - s.ExpenseRefund
	s.NetIncome = s.ActualIncome - s.ActualExpense
	return s, nil
}

// CategoryBreakdown aggregates magnitude and count per category (or
// subcategory, when level is child) for one transaction type, ordered by
// magnitude descending. Tie order is whatever the database returns.
func (e *Engine) CategoryBreakdown(ctx context.Context, start, end string, txType core.TransactionType, level core.GroupLevel, ledgerID int64) ([]CategoryTotal, error) {
	if !txType.IsValid() {
		return nil, fmt.Errorf("category breakdown: %w: %q", core.ErrInvalidType, txType)
	}

	var groupCol string
	switch level {
	case core.LevelParent:
		groupCol = "category"
	case core.LevelChild:
		groupCol = "subcategory"
	default:
		return nil, fmt.Errorf("category breakdown: unknown grouping level %q", level)
	}

	where, args := rangeFilter(start, end, ledgerID)
	query := `
		SELECT ` + groupCol + `, COALESCE(SUM(ABS(amount)), 0), COUNT(*)
		FROM transactions
		WHERE ` + where + ` AND transaction_type = ?
		GROUP BY ` + groupCol + `
		ORDER BY SUM(ABS(amount)) DESC`
	args = append(args, string(txType))

	rows, err := e.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query category breakdown: %w", err)
	}
	defer rows.Close()

	var out []CategoryTotal
	for rows.Next() {
		var ct CategoryTotal
		if err := rows.Scan(&ct.Label, &ct.Total, &ct.Count); err != nil {
			return nil, fmt.Errorf("scan category breakdown: %w", err)
		}
		out = append(out, ct)
	}
	return out, rows.Err()
}

// AccountBreakdown aggregates per-account income and expense, skipping rows
// with no account, ordered by combined volume descending.
//
// Unlike the other reports this one trusts the sign of amount rather than
// transaction_type; the two can disagree if an expense was ever stored
// positive. The source system behaved this way and callers depend on it,
// so it is kept rather than unified with the type field.
func (e *Engine) AccountBreakdown(ctx context.Context, start, end string, ledgerID int64) ([]AccountTotal, error) {
	where, args := rangeFilter(start, end, ledgerID)
	query := `
		SELECT account,
			COALESCE(SUM(CASE WHEN amount > 0 THEN amount ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN amount < 0 THEN -amount ELSE 0 END), 0),
			COUNT(*)
		FROM transactions
		WHERE ` + where + ` AND account IS NOT NULL AND account != ''
		GROUP BY account
		ORDER BY SUM(ABS(amount)) DESC`

	rows, err := e.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query account breakdown: %w", err)
	}
	defer rows.Close()

	var out []AccountTotal
	for rows.Next() {
		var at AccountTotal
		if err := rows.Scan(&at.Account, &at.Income, &at.Expense, &at.Count); err != nil {
			return nil, fmt.Errorf("scan account breakdown: %w", err)
		}
		out = append(out, at)
	}
	return out, rows.Err()
}

// SettlementBreakdown splits expense magnitude by settlement flag. A group
// with no rows contributes 0, and Total is derived from the two parts so the
// identity Total == Settled + Unsettled holds exactly.
func (e *Engine) SettlementBreakdown(ctx context.Context, start, end string, ledgerID int64) (Settlement, error) {
	where, args := rangeFilter(start, end, ledgerID)
	query := `
		SELECT is_settled, COALESCE(SUM(ABS(amount)), 0)
		FROM transactions
		WHERE ` + where + ` AND transaction_type = 'expense'
		GROUP BY is_settled`

	rows, err := e.db.QueryContext(ctx, query, args...)
	if err != nil {
		return Settlement{}, fmt.Errorf("query settlement breakdown: %w", err)
	}
	defer rows.Close()

	var s Settlement
	for rows.Next() {
		var settled bool
		var total float64
		if err := rows.Scan(&settled, &total); err != nil {
			return Settlement{}, fmt.Errorf("scan settlement breakdown: %w", err)
		}
		if settled {
			s.Settled = total
		} else {
			s.Unsettled = total
		}
	}
	if err := rows.Err(); err != nil {
		return Settlement{}, err
	}
	s.Total = s.Settled + s.Unsettled
	return s, nil
}

// RefundStatistics reports refunds against expense volume. RefundRatio is a
// percentage, 0 when there is no expense volume to compare against.
func (e *Engine) RefundStatistics(ctx context.Context, start, end string, ledgerID int64) (RefundStats, error) {
	where, args := rangeFilter(start, end, ledgerID)
	query := `
		SELECT
			COALESCE(SUM(refund_amount), 0),
			COALESCE(SUM(CASE WHEN refund_amount > 0 THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(ABS(amount)), 0)
		FROM transactions
		WHERE ` + where + ` AND transaction_type = 'expense'`

	var r RefundStats
	err := e.db.QueryRowContext(ctx, query, args...).Scan(
		&r.TotalRefund, &r.RefundCount, &r.TotalAmount)
	if err != nil {
		return RefundStats{}, fmt.Errorf("query refund statistics: %w", err)
	}

	if r.TotalAmount > 0 {
		r.RefundRatio = r.TotalRefund / r.TotalAmount * 100
	}
	return r, nil
}

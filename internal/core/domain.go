package core

import (
	"errors"
	"strings"
	"time"
)

// DateLayout is the calendar-date format used everywhere in the system.
// Dates are stored and compared as ISO strings, so lexicographic order
// matches chronological order.
const DateLayout = "2006-01-02"

const (
	TypeIncome  TransactionType = "income"
	TypeExpense TransactionType = "expense"
)

const (
	LevelParent GroupLevel = "parent"
	LevelChild  GroupLevel = "child"
)

type (
	// TransactionType tags a transaction as income or expense. The type
	// field, not the sign of Amount, is authoritative for reporting.
	TransactionType string

	// GroupLevel selects the category grouping key for breakdowns:
	// parent groups by category, child by subcategory.
	GroupLevel string

	// Transaction is a single bookkeeping entry. By convention income
	// amounts are stored positive and expense amounts negative, but
	// nothing enforces that; reports aggregate on ABS(amount).
	Transaction struct {
		ID           int64
		LedgerID     int64
		Date         string // ISO YYYY-MM-DD
		Type         TransactionType
		Category     string
		Subcategory  string
		Amount       float64
		Account      string // optional; empty excludes the row from account stats
		IsSettled    bool   // expense-only semantics
		RefundAmount float64
		RefundReason string
		CreatedTime  time.Time
	}

	// Ledger is a named grouping of transactions ("personal", "family").
	Ledger struct {
		ID          int64
		Name        string
		CreatedTime time.Time
	}

	// Account is a named money source/destination ("cash", "checking").
	Account struct {
		ID          int64
		Name        string
		CreatedTime time.Time
	}

	// Category is one valid (category, subcategory, type) triple from the
	// taxonomy lookup table. Transactions carry free-text category fields;
	// this table only drives pickers, it is not a foreign-key constraint.
	Category struct {
		Name        string
		Subcategory string
		Type        TransactionType
	}

	// Transfer moves money between two accounts within a ledger. GroupID
	// links related legs created together.
	Transfer struct {
		ID          int64
		GroupID     string
		LedgerID    int64
		Date        string // ISO YYYY-MM-DD
		FromAccount string
		ToAccount   string
		Amount      float64
		Note        string
		CreatedTime time.Time
	}
)

var (
	ErrNotFound        = errors.New("not found")
	ErrInvalidDate     = errors.New("invalid date")
	ErrInvalidType     = errors.New("invalid transaction type")
	ErrInvalidAmount   = errors.New("invalid amount")
	ErrInvalidRefund   = errors.New("invalid refund amount")
	ErrEmptyName       = errors.New("empty name")
	ErrEmptyCategory   = errors.New("empty category")
	ErrEmptyAccount    = errors.New("empty account")
	ErrSameAccount     = errors.New("transfer accounts must differ")
	ErrMissingLedgerID = errors.New("missing ledger id")
)

// IsValid reports whether t is one of the two known transaction types.
func (t TransactionType) IsValid() bool {
	return t == TypeIncome || t == TypeExpense
}

// IsValid reports whether l is a known grouping level.
func (l GroupLevel) IsValid() bool {
	return l == LevelParent || l == LevelChild
}

// ValidDate reports whether s is a well-formed ISO calendar date.
func ValidDate(s string) bool {
	_, err := time.Parse(DateLayout, s)
	return err == nil
}

func (tx Transaction) Validate() error {
	if tx.LedgerID <= 0 {
		return ErrMissingLedgerID
	}
	if !ValidDate(tx.Date) {
		return ErrInvalidDate
	}
	if !tx.Type.IsValid() {
		return ErrInvalidType
	}
	if strings.TrimSpace(tx.Category) == "" {
		return ErrEmptyCategory
	}
	if tx.Amount == 0 {
		return ErrInvalidAmount
	}
	// No upper bound against the transaction amount: the source system
	// never enforced refund_amount <= amount and reports tolerate it.
	if tx.RefundAmount < 0 {
		return ErrInvalidRefund
	}
	return nil
}

func (l Ledger) Validate() error {
	if strings.TrimSpace(l.Name) == "" {
		return ErrEmptyName
	}
	return nil
}

func (a Account) Validate() error {
	if strings.TrimSpace(a.Name) == "" {
		return ErrEmptyName
	}
	return nil
}

func (t Transfer) Validate() error {
	if t.LedgerID <= 0 {
		return ErrMissingLedgerID
	}
	if !ValidDate(t.Date) {
		return ErrInvalidDate
	}
	if strings.TrimSpace(t.FromAccount) == "" || strings.TrimSpace(t.ToAccount) == "" {
		return ErrEmptyAccount
	}
	if t.FromAccount == t.ToAccount {
		return ErrSameAccount
	}
	if t.Amount <= 0 {
		return ErrInvalidAmount
	}
	return nil
}

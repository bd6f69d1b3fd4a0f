package stats

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bookkeep/internal/core"
	"bookkeep/internal/storage"
)

func newTestEngine(t *testing.T) (*Engine, *storage.SQLiteRepository) {
	t.Helper()

	repo, err := storage.NewSQLiteRepository(filepath.Join(t.TempDir(), "stats_test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { repo.Close() })

	return NewEngine(repo.DB()), repo
}

func seedLedger(t *testing.T, repo *storage.SQLiteRepository, name string) int64 {
	t.Helper()
	l, err := repo.CreateLedger(context.Background(), name)
	require.NoError(t, err)
	return l.ID
}

func seedTx(t *testing.T, repo *storage.SQLiteRepository, tx core.Transaction) {
	t.Helper()
	_, err := repo.CreateTransaction(context.Background(), tx)
	require.NoError(t, err)
}

func TestSummaryEmptyRange(t *testing.T) {
	engine, _ := newTestEngine(t)

	s, err := engine.Summary(context.Background(), "2024-01-01", "2024-01-31", 0)
	require.NoError(t, err)
	assert.Equal(t, Summary{}, s)
}

func TestSummaryExpenseScenario(t *testing.T) {
	engine, repo := newTestEngine(t)
	ledger := seedLedger(t, repo, "personal")

	seedTx(t, repo, core.Transaction{
		LedgerID: ledger, Date: "2024-03-05", Type: core.TypeExpense,
		Category: "Dining", Amount: -100, IsSettled: true, RefundAmount: 20,
	})
	seedTx(t, repo, core.Transaction{
		LedgerID: ledger, Date: "2024-03-10", Type: core.TypeExpense,
		Category: "Transport", Amount: -50,
	})

	s, err := engine.Summary(context.Background(), "2024-03-01", "2024-03-31", 0)
	require.NoError(t, err)

	assert.Equal(t, 150.0, s.GrossExpense)
	assert.Equal(t, 20.0, s.ExpenseRefund)
	assert.Equal(t, 130.0, s.ActualExpense)
	assert.Equal(t, 0.0, s.GrossIncome)
	assert.Equal(t, -130.0, s.NetIncome)
}

func TestSummaryIdentities(t *testing.T) {
	engine, repo := newTestEngine(t)
	ledger := seedLedger(t, repo, "personal")

	seedTx(t, repo, core.Transaction{
		LedgerID: ledger, Date: "2024-03-01", Type: core.TypeIncome,
		Category: "Salary", Amount: 1000, RefundAmount: 50,
	})
	seedTx(t, repo, core.Transaction{
		LedgerID: ledger, Date: "2024-03-02", Type: core.TypeIncome,
		Category: "Gifts", Amount: 120,
	})
	seedTx(t, repo, core.Transaction{
		LedgerID: ledger, Date: "2024-03-15", Type: core.TypeExpense,
		Category: "Dining", Amount: -300, RefundAmount: 25,
	})

	s, err := engine.Summary(context.Background(), "2024-03-01", "2024-03-31", 0)
	require.NoError(t, err)

	assert.Equal(t, s.GrossIncome-s.TotalRefund, s.ActualIncome)
	assert.Equal(t, s.GrossExpense-s.ExpenseRefund, s.ActualExpense)
	assert.Equal(t, s.ActualIncome-s.ActualExpense, s.NetIncome)
	assert.Equal(t, 1120.0, s.GrossIncome)
	assert.Equal(t, 50.0, s.TotalRefund)
	assert.Equal(t, 1070.0, s.ActualIncome)
	assert.Equal(t, 275.0, s.ActualExpense)
	assert.Equal(t, 795.0, s.NetIncome)
}

func TestSummaryReversedRangeIsEmpty(t *testing.T) {
	engine, repo := newTestEngine(t)
	ledger := seedLedger(t, repo, "personal")

	seedTx(t, repo, core.Transaction{
		LedgerID: ledger, Date: "2024-03-05", Type: core.TypeExpense,
		Category: "Dining", Amount: -100,
	})

	s, err := engine.Summary(context.Background(), "2024-03-31", "2024-03-01", 0)
	require.NoError(t, err)
	assert.Equal(t, Summary{}, s)
}

func TestSummaryLedgerFilter(t *testing.T) {
	engine, repo := newTestEngine(t)
	personal := seedLedger(t, repo, "personal")
	family := seedLedger(t, repo, "family")

	seedTx(t, repo, core.Transaction{
		LedgerID: personal, Date: "2024-03-05", Type: core.TypeExpense,
		Category: "Dining", Amount: -100,
	})
	seedTx(t, repo, core.Transaction{
		LedgerID: family, Date: "2024-03-05", Type: core.TypeExpense,
		Category: "Dining", Amount: -40,
	})

	all, err := engine.Summary(context.Background(), "2024-03-01", "2024-03-31", 0)
	require.NoError(t, err)
	assert.Equal(t, 140.0, all.GrossExpense)

	scoped, err := engine.Summary(context.Background(), "2024-03-01", "2024-03-31", personal)
	require.NoError(t, err)
	assert.Equal(t, 100.0, scoped.GrossExpense)
}

func TestCategoryBreakdownOrdering(t *testing.T) {
	engine, repo := newTestEngine(t)
	ledger := seedLedger(t, repo, "personal")

	seedTx(t, repo, core.Transaction{
		LedgerID: ledger, Date: "2024-03-01", Type: core.TypeExpense,
		Category: "Dining", Subcategory: "Takeout", Amount: -60,
	})
	seedTx(t, repo, core.Transaction{
		LedgerID: ledger, Date: "2024-03-02", Type: core.TypeExpense,
		Category: "Dining", Subcategory: "Groceries", Amount: -40,
	})
	seedTx(t, repo, core.Transaction{
		LedgerID: ledger, Date: "2024-03-03", Type: core.TypeExpense,
		Category: "Housing", Subcategory: "Rent", Amount: -90,
	})
	seedTx(t, repo, core.Transaction{
		LedgerID: ledger, Date: "2024-03-04", Type: core.TypeExpense,
		Category: "Transport", Subcategory: "Taxi", Amount: -10,
	})
	// Income in range must not leak into the expense breakdown.
	seedTx(t, repo, core.Transaction{
		LedgerID: ledger, Date: "2024-03-05", Type: core.TypeIncome,
		Category: "Salary", Amount: 5000,
	})

	items, err := engine.CategoryBreakdown(context.Background(),
		"2024-03-01", "2024-03-31", core.TypeExpense, core.LevelParent, 0)
	require.NoError(t, err)
	require.Len(t, items, 3)

	assert.Equal(t, "Dining", items[0].Label)
	assert.Equal(t, 100.0, items[0].Total)
	assert.Equal(t, int64(2), items[0].Count)
	assert.Equal(t, "Housing", items[1].Label)
	assert.Equal(t, "Transport", items[2].Label)

	for i := 1; i < len(items); i++ {
		assert.LessOrEqual(t, items[i].Total, items[i-1].Total)
	}
}

func TestCategoryBreakdownChildLevel(t *testing.T) {
	engine, repo := newTestEngine(t)
	ledger := seedLedger(t, repo, "personal")

	seedTx(t, repo, core.Transaction{
		LedgerID: ledger, Date: "2024-03-01", Type: core.TypeExpense,
		Category: "Dining", Subcategory: "Takeout", Amount: -60,
	})
	seedTx(t, repo, core.Transaction{
		LedgerID: ledger, Date: "2024-03-02", Type: core.TypeExpense,
		Category: "Dining", Subcategory: "Groceries", Amount: -40,
	})

	items, err := engine.CategoryBreakdown(context.Background(),
		"2024-03-01", "2024-03-31", core.TypeExpense, core.LevelChild, 0)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "Takeout", items[0].Label)
	assert.Equal(t, "Groceries", items[1].Label)
}

func TestCategoryBreakdownRejectsUnknownInputs(t *testing.T) {
	engine, _ := newTestEngine(t)

	_, err := engine.CategoryBreakdown(context.Background(),
		"2024-03-01", "2024-03-31", "transfer", core.LevelParent, 0)
	assert.Error(t, err)

	_, err = engine.CategoryBreakdown(context.Background(),
		"2024-03-01", "2024-03-31", core.TypeExpense, "grandparent", 0)
	assert.Error(t, err)
}

func TestAccountBreakdownTrustsAmountSign(t *testing.T) {
	engine, repo := newTestEngine(t)
	ledger := seedLedger(t, repo, "personal")

	seedTx(t, repo, core.Transaction{
		LedgerID: ledger, Date: "2024-03-01", Type: core.TypeIncome,
		Category: "Salary", Amount: 200, Account: "bank",
	})
	seedTx(t, repo, core.Transaction{
		LedgerID: ledger, Date: "2024-03-02", Type: core.TypeExpense,
		Category: "Dining", Amount: -50, Account: "bank",
	})
	// Expense stored with a positive amount: the account report follows the
	// sign, so this lands in the income column.
	seedTx(t, repo, core.Transaction{
		LedgerID: ledger, Date: "2024-03-03", Type: core.TypeExpense,
		Category: "Dining", Amount: 30, Account: "cash",
	})
	// No account: excluded entirely.
	seedTx(t, repo, core.Transaction{
		LedgerID: ledger, Date: "2024-03-04", Type: core.TypeExpense,
		Category: "Dining", Amount: -20,
	})

	items, err := engine.AccountBreakdown(context.Background(), "2024-03-01", "2024-03-31", 0)
	require.NoError(t, err)
	require.Len(t, items, 2)

	assert.Equal(t, "bank", items[0].Account)
	assert.Equal(t, 200.0, items[0].Income)
	assert.Equal(t, 50.0, items[0].Expense)
	assert.Equal(t, int64(2), items[0].Count)

	assert.Equal(t, "cash", items[1].Account)
	assert.Equal(t, 30.0, items[1].Income)
	assert.Equal(t, 0.0, items[1].Expense)
}

func TestAccountBreakdownAbsentAccountOmitted(t *testing.T) {
	engine, repo := newTestEngine(t)
	ledger := seedLedger(t, repo, "personal")

	seedTx(t, repo, core.Transaction{
		LedgerID: ledger, Date: "2024-02-01", Type: core.TypeExpense,
		Category: "Dining", Amount: -10, Account: "cash",
	})

	// "cash" has activity only in February; a March query must not list it
	// with zeros.
	items, err := engine.AccountBreakdown(context.Background(), "2024-03-01", "2024-03-31", 0)
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestSettlementBreakdownScenario(t *testing.T) {
	engine, repo := newTestEngine(t)
	ledger := seedLedger(t, repo, "personal")

	seedTx(t, repo, core.Transaction{
		LedgerID: ledger, Date: "2024-03-05", Type: core.TypeExpense,
		Category: "Dining", Amount: -100, IsSettled: true, RefundAmount: 20,
	})
	seedTx(t, repo, core.Transaction{
		LedgerID: ledger, Date: "2024-03-10", Type: core.TypeExpense,
		Category: "Transport", Amount: -50,
	})

	s, err := engine.SettlementBreakdown(context.Background(), "2024-03-01", "2024-03-31", 0)
	require.NoError(t, err)

	assert.Equal(t, 100.0, s.Settled)
	assert.Equal(t, 50.0, s.Unsettled)
	assert.Equal(t, 150.0, s.Total)
}

func TestSettlementBreakdownMissingGroupDefaultsToZero(t *testing.T) {
	engine, repo := newTestEngine(t)
	ledger := seedLedger(t, repo, "personal")

	seedTx(t, repo, core.Transaction{
		LedgerID: ledger, Date: "2024-03-05", Type: core.TypeExpense,
		Category: "Dining", Amount: -75, IsSettled: true,
	})

	s, err := engine.SettlementBreakdown(context.Background(), "2024-03-01", "2024-03-31", 0)
	require.NoError(t, err)

	assert.Equal(t, 75.0, s.Settled)
	assert.Equal(t, 0.0, s.Unsettled)
	assert.Equal(t, s.Settled+s.Unsettled, s.Total)
}

func TestSettlementBreakdownEmptyRange(t *testing.T) {
	engine, _ := newTestEngine(t)

	s, err := engine.SettlementBreakdown(context.Background(), "2024-01-01", "2024-01-31", 0)
	require.NoError(t, err)
	assert.Equal(t, Settlement{}, s)
}

func TestRefundStatisticsScenario(t *testing.T) {
	engine, repo := newTestEngine(t)
	ledger := seedLedger(t, repo, "personal")

	seedTx(t, repo, core.Transaction{
		LedgerID: ledger, Date: "2024-03-05", Type: core.TypeExpense,
		Category: "Dining", Amount: -100, IsSettled: true, RefundAmount: 20,
	})
	seedTx(t, repo, core.Transaction{
		LedgerID: ledger, Date: "2024-03-10", Type: core.TypeExpense,
		Category: "Transport", Amount: -50,
	})

	r, err := engine.RefundStatistics(context.Background(), "2024-03-01", "2024-03-31", 0)
	require.NoError(t, err)

	assert.Equal(t, 20.0, r.TotalRefund)
	assert.Equal(t, int64(1), r.RefundCount)
	assert.Equal(t, 150.0, r.TotalAmount)
	assert.InDelta(t, 13.33, r.RefundRatio, 0.01)
}

func TestRefundStatisticsZeroRows(t *testing.T) {
	engine, _ := newTestEngine(t)

	r, err := engine.RefundStatistics(context.Background(), "2024-01-01", "2024-01-31", 0)
	require.NoError(t, err)
	assert.Equal(t, RefundStats{}, r)
}

func TestRefundStatisticsIgnoresIncomeRefunds(t *testing.T) {
	engine, repo := newTestEngine(t)
	ledger := seedLedger(t, repo, "personal")

	seedTx(t, repo, core.Transaction{
		LedgerID: ledger, Date: "2024-03-01", Type: core.TypeIncome,
		Category: "Salary", Amount: 1000, RefundAmount: 100,
	})

	r, err := engine.RefundStatistics(context.Background(), "2024-03-01", "2024-03-31", 0)
	require.NoError(t, err)
	assert.Equal(t, RefundStats{}, r)
}

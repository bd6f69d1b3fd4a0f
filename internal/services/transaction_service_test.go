package services

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bookkeep/internal/core"
	"bookkeep/internal/storage"
)

func newTestService(t *testing.T) (*TransactionService, *storage.SQLiteRepository) {
	t.Helper()

	repo, err := storage.NewSQLiteRepository(filepath.Join(t.TempDir(), "service_test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { repo.Close() })

	// No broker in tests: event publication is best-effort and optional.
	return NewTransactionService(repo, nil), repo
}

func TestCreateTransactionValidates(t *testing.T) {
	svc, repo := newTestService(t)
	ctx := context.Background()

	l, err := repo.CreateLedger(ctx, "personal")
	require.NoError(t, err)

	_, err = svc.CreateTransaction(ctx, core.Transaction{
		LedgerID: l.ID, Date: "not-a-date", Type: core.TypeExpense,
		Category: "Dining", Amount: -10,
	})
	assert.ErrorIs(t, err, core.ErrInvalidDate)

	saved, err := svc.CreateTransaction(ctx, core.Transaction{
		LedgerID: l.ID, Date: "2024-03-05", Type: core.TypeExpense,
		Category: "Dining", Amount: -10,
	})
	require.NoError(t, err)
	assert.Positive(t, saved.ID)
}

func TestUpdateTransactionMissingRow(t *testing.T) {
	svc, repo := newTestService(t)
	ctx := context.Background()

	l, err := repo.CreateLedger(ctx, "personal")
	require.NoError(t, err)

	err = svc.UpdateTransaction(ctx, core.Transaction{
		ID: 999, LedgerID: l.ID, Date: "2024-03-05", Type: core.TypeExpense,
		Category: "Dining", Amount: -10,
	})
	assert.ErrorIs(t, err, core.ErrNotFound)
}

func TestDeleteTransaction(t *testing.T) {
	svc, repo := newTestService(t)
	ctx := context.Background()

	l, err := repo.CreateLedger(ctx, "personal")
	require.NoError(t, err)

	saved, err := svc.CreateTransaction(ctx, core.Transaction{
		LedgerID: l.ID, Date: "2024-03-05", Type: core.TypeExpense,
		Category: "Dining", Amount: -10,
	})
	require.NoError(t, err)

	require.NoError(t, svc.DeleteTransaction(ctx, saved.ID))
	assert.ErrorIs(t, svc.DeleteTransaction(ctx, saved.ID), core.ErrNotFound)
}

func TestCreateTransferAssignsGroupID(t *testing.T) {
	svc, repo := newTestService(t)
	ctx := context.Background()

	l, err := repo.CreateLedger(ctx, "personal")
	require.NoError(t, err)

	saved, err := svc.CreateTransfer(ctx, core.Transfer{
		LedgerID: l.ID, Date: "2024-03-05",
		FromAccount: "checking", ToAccount: "savings", Amount: 100,
	})
	require.NoError(t, err)
	assert.NotEmpty(t, saved.GroupID)

	// A caller-provided group id is kept.
	linked, err := svc.CreateTransfer(ctx, core.Transfer{
		GroupID: saved.GroupID, LedgerID: l.ID, Date: "2024-03-05",
		FromAccount: "savings", ToAccount: "brokerage", Amount: 100,
	})
	require.NoError(t, err)
	assert.Equal(t, saved.GroupID, linked.GroupID)
}

func TestCreateTransferValidates(t *testing.T) {
	svc, repo := newTestService(t)
	ctx := context.Background()

	l, err := repo.CreateLedger(ctx, "personal")
	require.NoError(t, err)

	_, err = svc.CreateTransfer(ctx, core.Transfer{
		LedgerID: l.ID, Date: "2024-03-05",
		FromAccount: "checking", ToAccount: "checking", Amount: 100,
	})
	assert.ErrorIs(t, err, core.ErrSameAccount)
}

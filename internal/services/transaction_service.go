// Package services orchestrates writes across storage and the optional
// message broker. Reads go straight to storage or the statistics engine.
package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"bookkeep/internal/amqp"
	"bookkeep/internal/core"
	"bookkeep/internal/storage"
)

// TransactionService validates and persists bookkeeping writes, then
// publishes change events. Event publication is best-effort: the local
// write is the source of truth and a broker failure never fails the request.
type TransactionService struct {
	storage    *storage.SQLiteRepository
	amqpClient *amqp.Client
}

func NewTransactionService(storage *storage.SQLiteRepository, amqpClient *amqp.Client) *TransactionService {
	return &TransactionService{
		storage:    storage,
		amqpClient: amqpClient,
	}
}

func (s *TransactionService) CreateTransaction(ctx context.Context, tx core.Transaction) (core.Transaction, error) {
	if err := tx.Validate(); err != nil {
		return core.Transaction{}, fmt.Errorf("validate transaction: %w", err)
	}

	saved, err := s.storage.CreateTransaction(ctx, tx)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("save transaction: %w", err)
	}

	s.publishEvent(ctx, amqp.ActionCreated, saved.ID, saved.LedgerID)
	return saved, nil
}

func (s *TransactionService) UpdateTransaction(ctx context.Context, tx core.Transaction) error {
	if err := tx.Validate(); err != nil {
		return fmt.Errorf("validate transaction: %w", err)
	}

	if err := s.storage.UpdateTransaction(ctx, tx); err != nil {
		return err
	}

	s.publishEvent(ctx, amqp.ActionUpdated, tx.ID, tx.LedgerID)
	return nil
}

func (s *TransactionService) DeleteTransaction(ctx context.Context, id int64) error {
	tx, err := s.storage.GetTransaction(ctx, id)
	if err != nil {
		return err
	}

	if err := s.storage.DeleteTransaction(ctx, id); err != nil {
		return err
	}

	s.publishEvent(ctx, amqp.ActionDeleted, id, tx.LedgerID)
	return nil
}

// CreateTransfer persists a transfer leg, assigning a fresh group id when the
// caller did not link it to an existing group.
func (s *TransactionService) CreateTransfer(ctx context.Context, t core.Transfer) (core.Transfer, error) {
	if err := t.Validate(); err != nil {
		return core.Transfer{}, fmt.Errorf("validate transfer: %w", err)
	}
	if t.GroupID == "" {
		t.GroupID = uuid.NewString()
	}

	saved, err := s.storage.CreateTransfer(ctx, t)
	if err != nil {
		return core.Transfer{}, fmt.Errorf("save transfer: %w", err)
	}
	return saved, nil
}

func (s *TransactionService) publishEvent(ctx context.Context, action string, id, ledgerID int64) {
	if s.amqpClient == nil {
		return
	}
	if err := s.amqpClient.PublishTransactionEvent(ctx, action, id, ledgerID); err != nil {
		slog.ErrorContext(ctx, "Failed to publish transaction event",
			"action", action, "id", id, "error", err)
	}
}

// Close releases the storage and broker connections.
func (s *TransactionService) Close() error {
	var errs []error

	if s.storage != nil {
		if err := s.storage.Close(); err != nil {
			errs = append(errs, fmt.Errorf("storage: %w", err))
		}
	}

	if s.amqpClient != nil {
		if err := s.amqpClient.Close(); err != nil {
			errs = append(errs, fmt.Errorf("amqp: %w", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("close transaction service: %v", errs)
	}
	return nil
}

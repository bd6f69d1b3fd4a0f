package http

import (
	"encoding/json"
	"net/http"
	"time"

	"bookkeep/internal/core"
	"bookkeep/internal/storage"
)

type transactionRequest struct {
	LedgerID     int64   `json:"ledger_id"`
	Date         string  `json:"date"`
	Type         string  `json:"type"`
	Category     string  `json:"category"`
	Subcategory  string  `json:"subcategory"`
	Amount       float64 `json:"amount"`
	Account      string  `json:"account"`
	IsSettled    bool    `json:"is_settled"`
	RefundAmount float64 `json:"refund_amount"`
	RefundReason string  `json:"refund_reason"`
}

type transactionView struct {
	ID           int64   `json:"id"`
	LedgerID     int64   `json:"ledger_id"`
	Date         string  `json:"date"`
	Type         string  `json:"type"`
	Category     string  `json:"category"`
	Subcategory  string  `json:"subcategory"`
	Amount       float64 `json:"amount"`
	Account      string  `json:"account"`
	IsSettled    bool    `json:"is_settled"`
	RefundAmount float64 `json:"refund_amount"`
	RefundReason string  `json:"refund_reason"`
	CreatedTime  string  `json:"created_time"`
}

func (req transactionRequest) toDomain() core.Transaction {
	return core.Transaction{
		LedgerID:     req.LedgerID,
		Date:         req.Date,
		Type:         core.TransactionType(req.Type),
		Category:     req.Category,
		Subcategory:  req.Subcategory,
		Amount:       req.Amount,
		Account:      req.Account,
		IsSettled:    req.IsSettled,
		RefundAmount: req.RefundAmount,
		RefundReason: req.RefundReason,
	}
}

func viewTransaction(tx core.Transaction) transactionView {
	return transactionView{
		ID:           tx.ID,
		LedgerID:     tx.LedgerID,
		Date:         tx.Date,
		Type:         string(tx.Type),
		Category:     tx.Category,
		Subcategory:  tx.Subcategory,
		Amount:       tx.Amount,
		Account:      tx.Account,
		IsSettled:    tx.IsSettled,
		RefundAmount: tx.RefundAmount,
		RefundReason: tx.RefundReason,
		CreatedTime:  tx.CreatedTime.Format(time.RFC3339),
	}
}

func (s *Server) handleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	var req transactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, r, http.StatusBadRequest, "invalid JSON body")
		return
	}

	saved, err := s.service.CreateTransaction(r.Context(), req.toDomain())
	if err != nil {
		respondStorageError(w, r, err)
		return
	}

	s.invalidateStats()
	respondJSON(w, r, http.StatusCreated, viewTransaction(saved))
}

func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	f := storage.TransactionFilter{
		Start:    r.URL.Query().Get("start"),
		End:      r.URL.Query().Get("end"),
		LedgerID: queryInt64(r, "ledger_id"),
		Type:     core.TransactionType(r.URL.Query().Get("type")),
		Limit:    queryInt(r, "limit"),
	}

	txs, err := s.repo.ListTransactions(r.Context(), f)
	if err != nil {
		respondStorageError(w, r, err)
		return
	}

	views := make([]transactionView, 0, len(txs))
	for _, tx := range txs {
		views = append(views, viewTransaction(tx))
	}
	respondJSON(w, r, http.StatusOK, views)
}

func (s *Server) handleGetTransaction(w http.ResponseWriter, r *http.Request) {
	id, err := urlID(r)
	if err != nil {
		respondError(w, r, http.StatusBadRequest, "invalid id")
		return
	}

	tx, err := s.repo.GetTransaction(r.Context(), id)
	if err != nil {
		respondStorageError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusOK, viewTransaction(tx))
}

func (s *Server) handleUpdateTransaction(w http.ResponseWriter, r *http.Request) {
	id, err := urlID(r)
	if err != nil {
		respondError(w, r, http.StatusBadRequest, "invalid id")
		return
	}

	var req transactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, r, http.StatusBadRequest, "invalid JSON body")
		return
	}

	tx := req.toDomain()
	tx.ID = id
	if err := s.service.UpdateTransaction(r.Context(), tx); err != nil {
		respondStorageError(w, r, err)
		return
	}

	s.invalidateStats()
	respondJSON(w, r, http.StatusOK, map[string]int64{"id": id})
}

func (s *Server) handleDeleteTransaction(w http.ResponseWriter, r *http.Request) {
	id, err := urlID(r)
	if err != nil {
		respondError(w, r, http.StatusBadRequest, "invalid id")
		return
	}

	if err := s.service.DeleteTransaction(r.Context(), id); err != nil {
		respondStorageError(w, r, err)
		return
	}

	s.invalidateStats()
	w.WriteHeader(http.StatusNoContent)
}

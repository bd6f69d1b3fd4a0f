package http

import (
	"encoding/json"
	"net/http"
	"time"

	"bookkeep/internal/core"
)

type transferRequest struct {
	LedgerID    int64   `json:"ledger_id"`
	Date        string  `json:"date"`
	FromAccount string  `json:"from_account"`
	ToAccount   string  `json:"to_account"`
	Amount      float64 `json:"amount"`
	Note        string  `json:"note"`
}

type transferView struct {
	ID          int64   `json:"id"`
	GroupID     string  `json:"group_id"`
	LedgerID    int64   `json:"ledger_id"`
	Date        string  `json:"date"`
	FromAccount string  `json:"from_account"`
	ToAccount   string  `json:"to_account"`
	Amount      float64 `json:"amount"`
	Note        string  `json:"note"`
	CreatedTime string  `json:"created_time"`
}

func viewTransfer(t core.Transfer) transferView {
	return transferView{
		ID:          t.ID,
		GroupID:     t.GroupID,
		LedgerID:    t.LedgerID,
		Date:        t.Date,
		FromAccount: t.FromAccount,
		ToAccount:   t.ToAccount,
		Amount:      t.Amount,
		Note:        t.Note,
		CreatedTime: t.CreatedTime.Format(time.RFC3339),
	}
}

func (s *Server) handleCreateTransfer(w http.ResponseWriter, r *http.Request) {
	var req transferRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, r, http.StatusBadRequest, "invalid JSON body")
		return
	}

	saved, err := s.service.CreateTransfer(r.Context(), core.Transfer{
		LedgerID:    req.LedgerID,
		Date:        req.Date,
		FromAccount: req.FromAccount,
		ToAccount:   req.ToAccount,
		Amount:      req.Amount,
		Note:        req.Note,
	})
	if err != nil {
		respondStorageError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusCreated, viewTransfer(saved))
}

func (s *Server) handleListTransfers(w http.ResponseWriter, r *http.Request) {
	transfers, err := s.repo.ListTransfers(r.Context(), queryInt64(r, "ledger_id"))
	if err != nil {
		respondStorageError(w, r, err)
		return
	}

	views := make([]transferView, 0, len(transfers))
	for _, t := range transfers {
		views = append(views, viewTransfer(t))
	}
	respondJSON(w, r, http.StatusOK, views)
}

func (s *Server) handleDeleteTransfer(w http.ResponseWriter, r *http.Request) {
	id, err := urlID(r)
	if err != nil {
		respondError(w, r, http.StatusBadRequest, "invalid id")
		return
	}

	if err := s.repo.DeleteTransfer(r.Context(), id); err != nil {
		respondStorageError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

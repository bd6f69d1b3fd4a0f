package http

import (
	"encoding/json"
	"net/http"
	"time"

	"bookkeep/internal/core"
)

type nameRequest struct {
	Name string `json:"name"`
}

type ledgerView struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	CreatedTime string `json:"created_time"`
}

func (s *Server) handleCreateLedger(w http.ResponseWriter, r *http.Request) {
	var req nameRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, r, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if err := (core.Ledger{Name: req.Name}).Validate(); err != nil {
		respondStorageError(w, r, err)
		return
	}

	l, err := s.repo.CreateLedger(r.Context(), req.Name)
	if err != nil {
		respondStorageError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusCreated, ledgerView{
		ID:          l.ID,
		Name:        l.Name,
		CreatedTime: l.CreatedTime.Format(time.RFC3339),
	})
}

func (s *Server) handleListLedgers(w http.ResponseWriter, r *http.Request) {
	ledgers, err := s.repo.ListLedgers(r.Context())
	if err != nil {
		respondStorageError(w, r, err)
		return
	}

	views := make([]ledgerView, 0, len(ledgers))
	for _, l := range ledgers {
		views = append(views, ledgerView{
			ID:          l.ID,
			Name:        l.Name,
			CreatedTime: l.CreatedTime.Format(time.RFC3339),
		})
	}
	respondJSON(w, r, http.StatusOK, views)
}

func (s *Server) handleDeleteLedger(w http.ResponseWriter, r *http.Request) {
	id, err := urlID(r)
	if err != nil {
		respondError(w, r, http.StatusBadRequest, "invalid id")
		return
	}

	if err := s.repo.DeleteLedger(r.Context(), id); err != nil {
		respondStorageError(w, r, err)
		return
	}

	// Cascades delete the ledger's transactions, so reports change too.
	s.invalidateStats()
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleCreateAccount(w http.ResponseWriter, r *http.Request) {
	var req nameRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, r, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if err := (core.Account{Name: req.Name}).Validate(); err != nil {
		respondStorageError(w, r, err)
		return
	}

	a, err := s.repo.CreateAccount(r.Context(), req.Name)
	if err != nil {
		respondStorageError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusCreated, ledgerView{
		ID:          a.ID,
		Name:        a.Name,
		CreatedTime: a.CreatedTime.Format(time.RFC3339),
	})
}

func (s *Server) handleListAccounts(w http.ResponseWriter, r *http.Request) {
	accounts, err := s.repo.ListAccounts(r.Context())
	if err != nil {
		respondStorageError(w, r, err)
		return
	}

	views := make([]ledgerView, 0, len(accounts))
	for _, a := range accounts {
		views = append(views, ledgerView{
			ID:          a.ID,
			Name:        a.Name,
			CreatedTime: a.CreatedTime.Format(time.RFC3339),
		})
	}
	respondJSON(w, r, http.StatusOK, views)
}

func (s *Server) handleDeleteAccount(w http.ResponseWriter, r *http.Request) {
	id, err := urlID(r)
	if err != nil {
		respondError(w, r, http.StatusBadRequest, "invalid id")
		return
	}

	if err := s.repo.DeleteAccount(r.Context(), id); err != nil {
		respondStorageError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type categoryView struct {
	Name        string `json:"name"`
	Subcategory string `json:"subcategory"`
	Type        string `json:"type"`
}

func (s *Server) handleListCategories(w http.ResponseWriter, r *http.Request) {
	txType := core.TransactionType(r.URL.Query().Get("type"))
	if txType != "" && !txType.IsValid() {
		respondError(w, r, http.StatusBadRequest, "type must be income or expense")
		return
	}

	cats, err := s.repo.ListCategories(r.Context(), txType)
	if err != nil {
		respondStorageError(w, r, err)
		return
	}

	views := make([]categoryView, 0, len(cats))
	for _, c := range cats {
		views = append(views, categoryView{
			Name:        c.Name,
			Subcategory: c.Subcategory,
			Type:        string(c.Type),
		})
	}
	respondJSON(w, r, http.StatusOK, views)
}

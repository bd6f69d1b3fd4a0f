package http

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"bookkeep/internal/core"
	"bookkeep/internal/stats"
)

// serveStats runs compute and serves its JSON result, fronted by the stats
// cache keyed on the full request URI.
func (s *Server) serveStats(w http.ResponseWriter, r *http.Request, compute func() (any, error)) {
	key := r.URL.RequestURI()
	if s.statsCache != nil {
		if body, ok := s.statsCache.Get(key); ok {
			respondRaw(w, http.StatusOK, body)
			return
		}
	}

	result, err := compute()
	if err != nil {
		respondStorageError(w, r, err)
		return
	}

	body, err := json.Marshal(result)
	if err != nil {
		slog.ErrorContext(r.Context(), "Failed to encode stats result", "error", err)
		respondError(w, r, http.StatusInternalServerError, "internal error")
		return
	}

	if s.statsCache != nil {
		s.statsCache.Set(key, body)
	}
	respondRaw(w, http.StatusOK, body)
}

func (s *Server) handleStatsSummary(w http.ResponseWriter, r *http.Request) {
	start, end, err := dateRange(r)
	if err != nil {
		respondError(w, r, http.StatusBadRequest, "start and end must be YYYY-MM-DD dates")
		return
	}
	ledgerID := queryInt64(r, "ledger_id")

	s.serveStats(w, r, func() (any, error) {
		return s.engine.Summary(r.Context(), start, end, ledgerID)
	})
}

func (s *Server) handleStatsCategories(w http.ResponseWriter, r *http.Request) {
	start, end, err := dateRange(r)
	if err != nil {
		respondError(w, r, http.StatusBadRequest, "start and end must be YYYY-MM-DD dates")
		return
	}

	txType := core.TransactionType(r.URL.Query().Get("type"))
	if !txType.IsValid() {
		respondError(w, r, http.StatusBadRequest, "type must be income or expense")
		return
	}

	level := core.GroupLevel(r.URL.Query().Get("level"))
	if level == "" {
		level = core.LevelParent
	}
	if !level.IsValid() {
		respondError(w, r, http.StatusBadRequest, "level must be parent or child")
		return
	}

	ledgerID := queryInt64(r, "ledger_id")
	// limit > 0 applies the pie-chart cap: top N entries plus an "Other"
	// bucket summing the rest.
	limit := queryInt(r, "limit")

	s.serveStats(w, r, func() (any, error) {
		items, err := s.engine.CategoryBreakdown(r.Context(), start, end, txType, level, ledgerID)
		if err != nil {
			return nil, err
		}
		items = stats.CollapseTail(items, limit)
		if items == nil {
			items = []stats.CategoryTotal{}
		}
		return items, nil
	})
}

func (s *Server) handleStatsAccounts(w http.ResponseWriter, r *http.Request) {
	start, end, err := dateRange(r)
	if err != nil {
		respondError(w, r, http.StatusBadRequest, "start and end must be YYYY-MM-DD dates")
		return
	}
	ledgerID := queryInt64(r, "ledger_id")

	s.serveStats(w, r, func() (any, error) {
		items, err := s.engine.AccountBreakdown(r.Context(), start, end, ledgerID)
		if err != nil {
			return nil, err
		}
		if items == nil {
			items = []stats.AccountTotal{}
		}
		return items, nil
	})
}

func (s *Server) handleStatsSettlement(w http.ResponseWriter, r *http.Request) {
	start, end, err := dateRange(r)
	if err != nil {
		respondError(w, r, http.StatusBadRequest, "start and end must be YYYY-MM-DD dates")
		return
	}
	ledgerID := queryInt64(r, "ledger_id")

	s.serveStats(w, r, func() (any, error) {
		return s.engine.SettlementBreakdown(r.Context(), start, end, ledgerID)
	})
}

func (s *Server) handleStatsRefunds(w http.ResponseWriter, r *http.Request) {
	start, end, err := dateRange(r)
	if err != nil {
		respondError(w, r, http.StatusBadRequest, "start and end must be YYYY-MM-DD dates")
		return
	}
	ledgerID := queryInt64(r, "ledger_id")

	s.serveStats(w, r, func() (any, error) {
		return s.engine.RefundStatistics(r.Context(), start, end, ledgerID)
	})
}

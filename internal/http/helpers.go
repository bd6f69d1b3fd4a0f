package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"bookkeep/internal/core"
)

type errorResponse struct {
	Error string `json:"error"`
}

func respondJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.ErrorContext(r.Context(), "Failed to encode response", "error", err)
	}
}

// respondRaw writes pre-serialized JSON, used by the stats cache path.
func respondRaw(w http.ResponseWriter, status int, body []byte) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(body)
}

func respondError(w http.ResponseWriter, r *http.Request, status int, msg string) {
	respondJSON(w, r, status, errorResponse{Error: msg})
}

var validationErrors = []error{
	core.ErrInvalidDate,
	core.ErrInvalidType,
	core.ErrInvalidAmount,
	core.ErrInvalidRefund,
	core.ErrEmptyName,
	core.ErrEmptyCategory,
	core.ErrEmptyAccount,
	core.ErrSameAccount,
	core.ErrMissingLedgerID,
}

// respondStorageError maps domain errors onto HTTP statuses. Anything not
// recognized is a storage failure and must surface as a 500 rather than be
// passed off as an empty result.
func respondStorageError(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, core.ErrNotFound) {
		respondError(w, r, http.StatusNotFound, "not found")
		return
	}
	for _, ve := range validationErrors {
		if errors.Is(err, ve) {
			respondError(w, r, http.StatusBadRequest, err.Error())
			return
		}
	}
	slog.ErrorContext(r.Context(), "Storage operation failed", "error", err)
	respondError(w, r, http.StatusInternalServerError, "internal error")
}

// urlID parses the {id} route parameter.
func urlID(r *http.Request) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
}

// dateRange extracts and checks the mandatory start/end query parameters.
// The engine itself trusts its inputs, so the API boundary is where ISO
// format is enforced.
func dateRange(r *http.Request) (start, end string, err error) {
	start = strings.TrimSpace(r.URL.Query().Get("start"))
	end = strings.TrimSpace(r.URL.Query().Get("end"))
	if !core.ValidDate(start) || !core.ValidDate(end) {
		return "", "", core.ErrInvalidDate
	}
	return start, end, nil
}

// queryInt64 parses an optional integer query parameter, returning 0 when
// absent or malformed.
func queryInt64(r *http.Request, key string) int64 {
	v, _ := strconv.ParseInt(r.URL.Query().Get(key), 10, 64)
	return v
}

func queryInt(r *http.Request, key string) int {
	v, _ := strconv.Atoi(r.URL.Query().Get(key))
	return v
}

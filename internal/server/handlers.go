package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	validation "github.com/go-ozzo/ozzo-validation/v4"
	"go.uber.org/zap"

	"github.com/sells-group/lead-verify/internal/adapter"
	"github.com/sells-group/lead-verify/internal/history"
	"github.com/sells-group/lead-verify/internal/integration"
	"github.com/sells-group/lead-verify/internal/model"
)

type verifyRequest struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
}

// Validate checks presence and size only. A malformed phone or email is
// accepted and flagged by verification.
func (r *verifyRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.FirstName, validation.Required, validation.Length(1, 100)),
		validation.Field(&r.LastName, validation.Required, validation.Length(1, 100)),
		validation.Field(&r.Email, validation.Required, validation.Length(1, 254)),
		validation.Field(&r.Phone, validation.Required, validation.Length(1, 32)),
	)
}

func (r *verifyRequest) record() adapter.Record {
	return adapter.Record{
		"first_name": r.FirstName,
		"last_name":  r.LastName,
		"email":      r.Email,
		"phone":      r.Phone,
	}
}

// historyResponse reports the stored total and, separately, how many
// entries matched the filter before the limit.
type historyResponse struct {
	Verifications []history.Entry `json:"verifications"`
	Total         int             `json:"total"`
	Matched       int             `json:"matched"`
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleVerify(w http.ResponseWriter, r *http.Request) {
	var req verifyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	if err := req.Validate(); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": "validation failed", "fields": err})
		return
	}

	l, err := s.processor.ProcessLead(r.Context(), adapter.SourceAPI, req.record())
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, integration.ErrInvalidSourceData) {
			status = http.StatusBadRequest
		}
		zap.L().Error("server: verify lead", zap.Error(err))
		writeJSON(w, status, map[string]string{"error": "verification failed"})
		return
	}

	entry := s.history.Add(l)
	writeJSON(w, http.StatusOK, entry)
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	f := history.Filter{Search: q.Get("search")}

	switch status := q.Get("status"); status {
	case "", "all":
	case string(model.StatusVerified), string(model.StatusFlagged):
		f.Status = model.OverallStatus(status)
	default:
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "status must be verified or flagged"})
		return
	}

	if v := q.Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "limit must be a non-negative integer"})
			return
		}
		f.Limit = n
	}

	entries, matched := s.history.List(f)
	if entries == nil {
		entries = []history.Entry{}
	}
	writeJSON(w, http.StatusOK, historyResponse{
		Verifications: entries,
		Total:         s.history.Len(),
		Matched:       matched,
	})
}

func (s *Server) handleHistoryEntry(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "Verification not found"})
		return
	}
	entry, ok := s.history.Get(id)
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "Verification not found"})
		return
	}
	writeJSON(w, http.StatusOK, entry)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		zap.L().Warn("server: encode response", zap.Error(err))
	}
}

package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/lead-verify/internal/adapter"
	"github.com/sells-group/lead-verify/internal/history"
	"github.com/sells-group/lead-verify/internal/integration"
	"github.com/sells-group/lead-verify/internal/model"
	"github.com/sells-group/lead-verify/internal/verify"
)

// stubVerifier flags emails containing "bad" or lacking a dot, and phones
// that are not ten digits or are all zeros.
type stubVerifier struct{}

func (stubVerifier) VerifyLead(_ context.Context, _, phone, email string) *model.Verification {
	digits := verify.DigitsOnly(phone)
	pr := model.PhoneResult{Valid: len(digits) == 10 && strings.Trim(digits, "0") != ""}
	er := model.EmailResult{Result: model.EmailValid}
	if strings.Contains(email, "bad") || !strings.Contains(email, ".") {
		er = model.EmailResult{Result: model.EmailInvalid}
	}
	bg := model.BackgroundNotConfigured(verify.MsgBackgroundNotConfigured)
	return &model.Verification{Phone: pr, Email: er, Background: bg, Status: verify.Aggregate(pr, er, bg)}
}

func (stubVerifier) Score(*model.Verification) *float64 { return nil }

func newTestServer(t *testing.T) (*Server, *history.Store, *prometheus.Registry) {
	t.Helper()
	m := integration.NewManager(stubVerifier{})
	m.RegisterAdapter(adapter.NewJSONAdapter())
	h := history.NewStore()
	reg := prometheus.NewRegistry()
	return New(m, h, reg, reg), h, reg
}

func do(t *testing.T, h http.Handler, method, target string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, target, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestHealth(t *testing.T) {
	s, _, _ := newTestServer(t)
	rec := do(t, s.Handler(), http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestVerify(t *testing.T) {
	s, h, _ := newTestServer(t)

	rec := do(t, s.Handler(), http.MethodPost, "/api/verify", map[string]string{
		"first_name": "John",
		"last_name":  "Doe",
		"email":      "john@example.com",
		"phone":      "555-123-4567",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var entry struct {
		ID   int `json:"id"`
		Lead struct {
			FirstName   string   `json:"first_name"`
			Source      string   `json:"source"`
			RiskFactors []string `json:"risk_factors"`
		} `json:"lead"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &entry))
	assert.Equal(t, 1, entry.ID)
	assert.Equal(t, "John", entry.Lead.FirstName)
	assert.Equal(t, adapter.SourceAPI, entry.Lead.Source)
	assert.Empty(t, entry.Lead.RiskFactors)
	assert.Equal(t, 1, h.Len())
}

func TestVerifyValidation(t *testing.T) {
	tests := []struct {
		name      string
		body      map[string]string
		wantField string
	}{
		{"missing first name", map[string]string{"last_name": "Doe", "email": "j@example.com", "phone": "5551234567"}, "first_name"},
		{"missing last name", map[string]string{"first_name": "John", "email": "j@example.com", "phone": "5551234567"}, "last_name"},
		{"missing email", map[string]string{"first_name": "John", "last_name": "Doe", "phone": "5551234567"}, "email"},
		{"missing phone", map[string]string{"first_name": "John", "last_name": "Doe", "email": "j@example.com"}, "phone"},
		{"oversized phone", map[string]string{"first_name": "John", "last_name": "Doe", "email": "j@example.com", "phone": strings.Repeat("5", 40)}, "phone"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, h, _ := newTestServer(t)
			rec := do(t, s.Handler(), http.MethodPost, "/api/verify", tt.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)

			var resp struct {
				Error  string            `json:"error"`
				Fields map[string]string `json:"fields"`
			}
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
			assert.Equal(t, "validation failed", resp.Error)
			assert.Contains(t, resp.Fields, tt.wantField)
			assert.Zero(t, h.Len())
		})
	}
}

func TestVerifyMalformedContactIsFlagged(t *testing.T) {
	tests := []struct {
		name        string
		body        map[string]string
		wantFactors []string
	}{
		{
			"bad phone and email",
			map[string]string{"first_name": "Invalid", "last_name": "Lead", "phone": "0000000000", "email": "invalid@email"},
			[]string{model.RiskInvalidPhone, model.RiskInvalidEmail},
		},
		{
			"bad email",
			map[string]string{"first_name": "John", "last_name": "Doe", "email": "nope", "phone": "5551234567"},
			[]string{model.RiskInvalidEmail},
		},
		{
			"bad phone",
			map[string]string{"first_name": "John", "last_name": "Doe", "email": "j@example.com", "phone": "call me"},
			[]string{model.RiskInvalidPhone},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, h, _ := newTestServer(t)
			rec := do(t, s.Handler(), http.MethodPost, "/api/verify", tt.body)
			require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

			var entry struct {
				Lead struct {
					RiskFactors []string `json:"risk_factors"`
				} `json:"lead"`
			}
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &entry))
			assert.Equal(t, tt.wantFactors, entry.Lead.RiskFactors)
			assert.Equal(t, 1, h.Len())

			got, ok := h.Get(1)
			require.True(t, ok)
			assert.Equal(t, model.StatusFlagged, got.Lead.Status())
		})
	}
}

func TestVerifyMalformedBody(t *testing.T) {
	s, _, _ := newTestServer(t)
	req := httptest.NewRequest(http.MethodPost, "/api/verify", strings.NewReader("{not json"))
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHistory(t *testing.T) {
	s, _, _ := newTestServer(t)
	handler := s.Handler()

	leads := []map[string]string{
		{"first_name": "John", "last_name": "Doe", "email": "john@example.com", "phone": "5551234567"},
		{"first_name": "Jane", "last_name": "Smith", "email": "bad@example.com", "phone": "5559876543"},
		{"first_name": "Bob", "last_name": "Jones", "email": "bob@example.com", "phone": "5550001111"},
	}
	for _, l := range leads {
		require.Equal(t, http.StatusOK, do(t, handler, http.MethodPost, "/api/verify", l).Code)
	}

	type listResp struct {
		Verifications []history.Entry `json:"verifications"`
		Total         int             `json:"total"`
		Matched       int             `json:"matched"`
	}
	list := func(query string) listResp {
		rec := do(t, handler, http.MethodGet, "/api/history"+query, nil)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		var resp listResp
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		return resp
	}

	all := list("")
	assert.Equal(t, 3, all.Total)
	assert.Equal(t, 3, all.Matched)
	require.Len(t, all.Verifications, 3)
	assert.Equal(t, 3, all.Verifications[0].ID)

	// total counts every stored verification regardless of the filter.
	flagged := list("?status=flagged")
	assert.Equal(t, 3, flagged.Total)
	assert.Equal(t, 1, flagged.Matched)
	require.Len(t, flagged.Verifications, 1)
	assert.Equal(t, "Jane", flagged.Verifications[0].Lead.FirstName)

	search := list("?search=DOE")
	assert.Equal(t, 3, search.Total)
	assert.Equal(t, 1, search.Matched)

	limited := list("?limit=2")
	assert.Equal(t, 3, limited.Total)
	assert.Equal(t, 3, limited.Matched)
	assert.Len(t, limited.Verifications, 2)

	empty := list("?search=nobody")
	assert.Equal(t, 3, empty.Total)
	assert.Equal(t, 0, empty.Matched)
	assert.NotNil(t, empty.Verifications)
	assert.Empty(t, empty.Verifications)
}

func TestHistoryBadParams(t *testing.T) {
	s, _, _ := newTestServer(t)
	assert.Equal(t, http.StatusBadRequest, do(t, s.Handler(), http.MethodGet, "/api/history?status=pending", nil).Code)
	assert.Equal(t, http.StatusBadRequest, do(t, s.Handler(), http.MethodGet, "/api/history?limit=-1", nil).Code)
}

func TestHistoryEntry(t *testing.T) {
	s, h, _ := newTestServer(t)
	l := model.NewLead(adapter.SourceAPI)
	l.FirstName = "John"
	h.Add(l)

	rec := do(t, s.Handler(), http.MethodGet, "/api/history/1", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"first_name":"John"`)

	for _, id := range []string{"2", "0", "abc"} {
		rec := do(t, s.Handler(), http.MethodGet, "/api/history/"+id, nil)
		assert.Equal(t, http.StatusNotFound, rec.Code, id)
		assert.JSONEq(t, `{"error":"Verification not found"}`, rec.Body.String())
	}
}

func TestMetricsEndpoint(t *testing.T) {
	s, _, _ := newTestServer(t)
	handler := s.Handler()

	do(t, handler, http.MethodGet, "/health", nil)
	do(t, handler, http.MethodGet, "/api/history/42", nil)

	rec := do(t, handler, http.MethodGet, "/metrics", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "leadverify_http_requests_total")
	assert.Contains(t, body, `route="/api/history/{id}"`)
	assert.Contains(t, body, `status="404"`)
}

func TestCORSPreflight(t *testing.T) {
	s, _, _ := newTestServer(t)
	req := httptest.NewRequest(http.MethodOptions, "/api/verify", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestNilRegistry(t *testing.T) {
	m := integration.NewManager(stubVerifier{})
	s := New(m, history.NewStore(), nil, nil)
	rec := do(t, s.Handler(), http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, http.StatusNotFound, do(t, s.Handler(), http.MethodGet, "/metrics", nil).Code)
}

func TestServeShutdown(t *testing.T) {
	s, _, _ := newTestServer(t)
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Serve(ctx, ln) }()

	resp, err := http.Get(fmt.Sprintf("http://%s/health", ln.Addr()))
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}

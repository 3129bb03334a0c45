// Package mockapi serves deterministic stand-ins for the Numverify,
// NeverBounce and MicroBilt APIs so the verifier can run without vendor
// credentials.
package mockapi

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/lead-verify/pkg/microbilt"
	"github.com/sells-group/lead-verify/pkg/neverbounce"
	"github.com/sells-group/lead-verify/pkg/numverify"
)

// RiskNumberMismatch is reported when a known individual is searched with a
// phone number that is not theirs.
const RiskNumberMismatch = "number_mismatch"

var (
	emailSyntax = regexp.MustCompile(`^[A-Za-z0-9._%+\-]+@[A-Za-z0-9.\-]+\.[A-Za-z]{2,}$`)
	nonDigits   = regexp.MustCompile(`\D`)
)

var disposableDomains = map[string]bool{
	"mailinator.com":    true,
	"guerrillamail.com": true,
	"10minutemail.com":  true,
}

// Handler returns the routed mock API. Each vendor lives under its own
// prefix so one base URL serves all three.
func Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Get("/numverify/api/validate", handleNumverify)
	r.Post("/neverbounce/v4/single/check", handleNeverBounce)
	r.Post("/microbilt/v1/person/search", handleMicroBilt)

	return r
}

// Run serves the mock API on port until ctx is cancelled.
func Run(ctx context.Context, port int) error {
	ln, err := net.Listen("tcp", fmt.Sprintf(":%d", port))
	if err != nil {
		return eris.Wrap(err, "mockapi: listen")
	}

	srv := &http.Server{Handler: Handler(), ReadHeaderTimeout: 10 * time.Second}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	zap.L().Info("mockapi: listening", zap.String("addr", ln.Addr().String()))
	if err := srv.Serve(ln); err != nil && err != http.ErrServerClosed {
		return eris.Wrap(err, "mockapi: serve")
	}
	return nil
}

// PhoneValid reports whether the mock considers number valid: ten digits
// after stripping formatting and an optional leading 1, not all zeros.
func PhoneValid(number string) bool {
	digits := normalizePhone(number)
	return len(digits) == 10 && strings.Trim(digits, "0") != ""
}

func normalizePhone(number string) string {
	digits := nonDigits.ReplaceAllString(number, "")
	if len(digits) == 11 && digits[0] == '1' {
		digits = digits[1:]
	}
	return digits
}

// EmailResult returns the NeverBounce result code the mock reports for email.
func EmailResult(email string) string {
	email = strings.TrimSpace(email)
	if !emailSyntax.MatchString(email) {
		return "invalid"
	}
	domain := strings.ToLower(email[strings.LastIndex(email, "@")+1:])
	switch {
	case domain == "invalid" || strings.HasSuffix(domain, ".invalid"):
		return "invalid"
	case disposableDomains[domain]:
		return "disposable"
	default:
		return "valid"
	}
}

func handleNumverify(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	if q.Get("access_key") == "" {
		writeJSON(w, http.StatusOK, map[string]any{
			"success": false,
			"error":   numverify.APIError{Code: 101, Type: "missing_access_key", Info: "You have not supplied an API Access Key."},
		})
		return
	}

	number := q.Get("number")
	digits := normalizePhone(number)
	if !PhoneValid(number) {
		writeJSON(w, http.StatusOK, numverify.ValidateResponse{Valid: false, Number: digits})
		return
	}

	writeJSON(w, http.StatusOK, numverify.ValidateResponse{
		Valid:               true,
		Number:              "1" + digits,
		LocalFormat:         digits,
		InternationalFormat: "+1" + digits,
		CountryPrefix:       "+1",
		CountryCode:         "US",
		CountryName:         "United States of America",
		Carrier:             "Mock Wireless",
		LineType:            "mobile",
	})
}

func handleNeverBounce(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		writeJSON(w, http.StatusBadRequest, neverbounce.APIError{Status: "bad_request", Message: "malformed form body"})
		return
	}
	if r.PostForm.Get("key") == "" {
		writeJSON(w, http.StatusOK, neverbounce.APIError{Status: "auth_failure", Message: "Invalid API key"})
		return
	}

	result := EmailResult(r.PostForm.Get("email"))
	resp := neverbounce.CheckResponse{Status: "success", Result: result, ExecutionTime: 0.01}
	if result != "invalid" {
		resp.Flags = []string{"has_dns", "has_dns_mx"}
	}
	writeJSON(w, http.StatusOK, resp)
}

func handleMicroBilt(w http.ResponseWriter, r *http.Request) {
	if !strings.HasPrefix(r.Header.Get("Authorization"), "Bearer ") || strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ") == "" {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "Unauthorized"})
		return
	}

	var req microbilt.PersonSearchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || strings.TrimSpace(req.Name) == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Missing required fields"})
		return
	}

	resp := microbilt.PersonSearchResponse{Name: req.Name}
	if p, ok := lookup(req.Name); ok {
		resp.Name = p.Name
		resp.Addresses = p.Addresses
		resp.CriminalRecords = p.CriminalRecords
		resp.Bankruptcies = p.Bankruptcies
		if req.Phone != "" && normalizePhone(req.Phone) != p.Phone {
			resp.RiskFactors = []string{RiskNumberMismatch}
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		zap.L().Warn("mockapi: encode response", zap.Error(err))
	}
}

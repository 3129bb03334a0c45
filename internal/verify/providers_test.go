package verify

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/lead-verify/internal/model"
	"github.com/sells-group/lead-verify/pkg/microbilt"
	"github.com/sells-group/lead-verify/pkg/neverbounce"
	"github.com/sells-group/lead-verify/pkg/numverify"
)

type mockNumverify struct{ mock.Mock }

func (m *mockNumverify) Validate(ctx context.Context, number, countryCode string) (*numverify.ValidateResponse, error) {
	args := m.Called(ctx, number, countryCode)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*numverify.ValidateResponse), args.Error(1)
}

type mockNeverBounce struct{ mock.Mock }

func (m *mockNeverBounce) Check(ctx context.Context, email string) (*neverbounce.CheckResponse, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*neverbounce.CheckResponse), args.Error(1)
}

type mockMicroBilt struct{ mock.Mock }

func (m *mockMicroBilt) Search(ctx context.Context, req microbilt.PersonSearchRequest) (*microbilt.PersonSearchResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*microbilt.PersonSearchResponse), args.Error(1)
}

func TestVerifyPhone(t *testing.T) {
	ctx := context.Background()

	t.Run("not configured", func(t *testing.T) {
		got := NewPhoneVerifier(nil, "US", nil).VerifyPhone(ctx, "555-123-4567")
		assert.False(t, got.Valid)
		assert.Equal(t, MsgPhoneNotConfigured, got.Error)
	})

	t.Run("strips formatting", func(t *testing.T) {
		client := &mockNumverify{}
		client.On("Validate", ctx, "15551234567", "US").Return(&numverify.ValidateResponse{
			Valid: true, Number: "15551234567", Carrier: "Verizon", LineType: "mobile", CountryCode: "US",
		}, nil)

		got := NewPhoneVerifier(client, "US", nil).VerifyPhone(ctx, "+1 (555) 123-4567")
		assert.True(t, got.Valid)
		assert.Equal(t, "Verizon", got.Carrier)
		assert.Equal(t, "mobile", got.LineType)
		assert.Empty(t, got.Error)
		client.AssertExpectations(t)
	})

	t.Run("provider error", func(t *testing.T) {
		client := &mockNumverify{}
		client.On("Validate", ctx, "5551234567", "US").Return(nil, errors.New("numverify: send request: i/o timeout"))

		got := NewPhoneVerifier(client, "US", nil).VerifyPhone(ctx, "5551234567")
		assert.False(t, got.Valid)
		assert.Empty(t, got.Carrier)
		assert.Contains(t, got.Error, "i/o timeout")
	})
}

func TestVerifyEmail(t *testing.T) {
	ctx := context.Background()

	t.Run("not configured", func(t *testing.T) {
		got := NewEmailVerifier(nil, nil).VerifyEmail(ctx, "john@example.com")
		assert.Equal(t, model.EmailInvalid, got.Result)
		assert.Equal(t, MsgEmailNotConfigured, got.Error)
	})

	t.Run("success", func(t *testing.T) {
		client := &mockNeverBounce{}
		client.On("Check", ctx, "john@example.com").Return(&neverbounce.CheckResponse{
			Status: "success", Result: "valid", Flags: []string{"has_dns"}, ExecutionTime: 120,
		}, nil)

		got := NewEmailVerifier(client, nil).VerifyEmail(ctx, " john@example.com ")
		assert.Equal(t, model.EmailValid, got.Result)
		assert.Equal(t, []string{"has_dns"}, got.Flags)
		assert.InDelta(t, 120, got.ExecutionTime, 0.001)
		client.AssertExpectations(t)
	})

	t.Run("api error", func(t *testing.T) {
		client := &mockNeverBounce{}
		client.On("Check", ctx, "x@y.z").Return(nil, &neverbounce.APIError{Status: "auth_failure", Message: "Invalid API key"})

		got := NewEmailVerifier(client, nil).VerifyEmail(ctx, "x@y.z")
		assert.Equal(t, model.EmailInvalid, got.Result)
		assert.Equal(t, "neverbounce: auth_failure: Invalid API key", got.Error)
	})
}

func TestEmailCode(t *testing.T) {
	tests := map[string]model.EmailCode{
		"valid":      model.EmailValid,
		"VALID":      model.EmailValid,
		"invalid":    model.EmailInvalid,
		"disposable": model.EmailDisposable,
		"catchall":   model.EmailCatchall,
		"accept_all": model.EmailCatchall,
		"unknown":    model.EmailUnknown,
		"bogus":      model.EmailUnknown,
		"":           model.EmailUnknown,
	}
	for in, want := range tests {
		assert.Equal(t, want, emailCode(in), in)
	}
}

func TestCheckBackground(t *testing.T) {
	ctx := context.Background()

	t.Run("not configured is skipped", func(t *testing.T) {
		got := NewBackgroundChecker(nil, nil).CheckBackground(ctx, "John Doe", "5551234567", "john@example.com")
		assert.Equal(t, model.BackgroundSkipped, got.Status)
		assert.Equal(t, MsgBackgroundNotConfigured, got.Message)
		assert.Empty(t, got.Error)
		assert.False(t, got.Failed())
	})

	t.Run("completed", func(t *testing.T) {
		client := &mockMicroBilt{}
		client.On("Search", ctx, microbilt.PersonSearchRequest{Name: "John Doe", Phone: "5551234567", Email: "john@example.com"}).
			Return(&microbilt.PersonSearchResponse{
				Name:            "John Doe",
				Addresses:       []microbilt.Address{{City: "Austin", State: "TX"}},
				CriminalRecords: []microbilt.CriminalRecord{{Offense: "DUI"}},
				Bankruptcies:    []microbilt.Bankruptcy{{Chapter: "7"}},
				RiskFactors:     []string{"address_mismatch"},
			}, nil)

		got := NewBackgroundChecker(client, nil).CheckBackground(ctx, "John Doe", "5551234567", "john@example.com")
		assert.Equal(t, model.BackgroundCompleted, got.Status)
		assert.True(t, got.Ran())
		require.Len(t, got.Addresses, 1)
		assert.Equal(t, "Austin", got.Addresses[0].City)
		require.Len(t, got.CriminalRecords, 1)
		assert.Equal(t, "DUI", got.CriminalRecords[0].Offense)
		require.Len(t, got.Bankruptcies, 1)
		assert.Equal(t, []string{"address_mismatch"}, got.RiskFactors)
		client.AssertExpectations(t)
	})

	t.Run("error", func(t *testing.T) {
		client := &mockMicroBilt{}
		client.On("Search", ctx, mock.Anything).Return(nil, errors.New("microbilt: unexpected status 500: oops"))

		got := NewBackgroundChecker(client, nil).CheckBackground(ctx, "Jane Roe", "", "")
		assert.Equal(t, model.BackgroundError, got.Status)
		assert.True(t, got.Failed())
		assert.Empty(t, got.CriminalRecords)
	})
}

func TestCheckBackground_ErrorBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"error": "invalid api key"}`))
	}))
	defer srv.Close()

	checker := NewBackgroundChecker(microbilt.NewClient("k", microbilt.WithBaseURL(srv.URL)), nil)
	bg := checker.CheckBackground(context.Background(), "John Doe", "5551234567", "john@example.com")

	assert.Equal(t, model.BackgroundError, bg.Status)
	assert.Equal(t, "microbilt: invalid api key", bg.Error)
	assert.True(t, bg.Failed())
	assert.False(t, bg.Ran())

	status := Aggregate(validPhone, validEmail, bg)
	assert.Equal(t, model.StatusFlagged, status.OverallStatus)
	assert.Equal(t, []string{model.RiskBackgroundCheckFailed}, status.RiskFactors)
}

func TestProviderMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)
	ctx := context.Background()

	nb := &mockNeverBounce{}
	nb.On("Check", ctx, "a@b.co").Return(&neverbounce.CheckResponse{Status: "success", Result: "valid"}, nil)

	NewEmailVerifier(nb, m).VerifyEmail(ctx, "a@b.co")
	NewBackgroundChecker(nil, m).CheckBackground(ctx, "", "", "")
	NewPhoneVerifier(nil, "US", m).VerifyPhone(ctx, "1")

	assert.InDelta(t, 1, testutil.ToFloat64(m.ProviderOutcome.WithLabelValues("email", "ok")), 0.001)
	assert.InDelta(t, 1, testutil.ToFloat64(m.ProviderOutcome.WithLabelValues("background", "skipped")), 0.001)
	assert.InDelta(t, 1, testutil.ToFloat64(m.ProviderOutcome.WithLabelValues("phone", "error")), 0.001)

	// Only the email call was timed.
	assert.Equal(t, 1, testutil.CollectAndCount(m.ProviderLatency))
}

func TestRiskFactorMetricLabels(t *testing.T) {
	m := NewMetrics(prometheus.NewRegistry())

	m.IncrementLead("flagged", []string{model.RiskInvalidPhone, "watchlist", "ofac_hit", model.RiskBankruptcies})

	assert.InDelta(t, 1, testutil.ToFloat64(m.RiskFactor.WithLabelValues(model.RiskInvalidPhone)), 0.001)
	assert.InDelta(t, 1, testutil.ToFloat64(m.RiskFactor.WithLabelValues(model.RiskBankruptcies)), 0.001)
	assert.InDelta(t, 2, testutil.ToFloat64(m.RiskFactor.WithLabelValues("provider")), 0.001)
	assert.Equal(t, 3, testutil.CollectAndCount(m.RiskFactor))
}

func TestNilMetricsSafe(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.ObserveProvider("phone", "ok", 0)
		m.CountProvider("phone", "error")
		m.IncrementLead("verified", nil)
	})
}

func TestDigitsOnly(t *testing.T) {
	assert.Equal(t, "15551234567", DigitsOnly("+1 (555) 123-4567"))
	assert.Equal(t, "", DigitsOnly("n/a"))
}

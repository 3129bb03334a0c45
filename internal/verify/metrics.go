package verify

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/sells-group/lead-verify/internal/model"
)

// providerFactorLabel buckets every tag supplied by the background provider.
const providerFactorLabel = "provider"

var builtinFactors = map[string]bool{
	model.RiskInvalidPhone:          true,
	model.RiskInvalidEmail:          true,
	model.RiskCriminalRecords:       true,
	model.RiskBankruptcies:          true,
	model.RiskBackgroundCheckFailed: true,
}

// Metrics provides observability for provider calls and aggregation. A nil
// *Metrics is valid and records nothing.
type Metrics struct {
	// Provider call latencies by provider
	ProviderLatency *prometheus.HistogramVec

	// Provider outcomes by provider and outcome (ok, error, skipped)
	ProviderOutcome *prometheus.CounterVec

	// Aggregated lead outcomes by overall status
	LeadOutcome *prometheus.CounterVec

	// Risk factors emitted, by built-in tag or "provider"
	RiskFactor *prometheus.CounterVec
}

// NewMetrics creates metrics registered on reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		ProviderLatency: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "leadverify_provider_duration_seconds",
			Help:    "Duration of verification provider calls by provider",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}, []string{"provider"}), // provider: "phone", "email", "background"

		ProviderOutcome: f.NewCounterVec(prometheus.CounterOpts{
			Name: "leadverify_provider_outcomes_total",
			Help: "Total verification provider outcomes by provider and outcome",
		}, []string{"provider", "outcome"}),

		LeadOutcome: f.NewCounterVec(prometheus.CounterOpts{
			Name: "leadverify_lead_outcomes_total",
			Help: "Total verified leads by overall status",
		}, []string{"status"}),

		RiskFactor: f.NewCounterVec(prometheus.CounterOpts{
			Name: "leadverify_risk_factors_total",
			Help: "Total risk factors emitted by tag",
		}, []string{"factor"}),
	}
}

// ObserveProvider records the duration and outcome of one provider call.
func (m *Metrics) ObserveProvider(provider, outcome string, d time.Duration) {
	if m != nil {
		m.ProviderLatency.WithLabelValues(provider).Observe(d.Seconds())
		m.ProviderOutcome.WithLabelValues(provider, outcome).Inc()
	}
}

// CountProvider records the outcome of a provider that was not called.
func (m *Metrics) CountProvider(provider, outcome string) {
	if m != nil {
		m.ProviderOutcome.WithLabelValues(provider, outcome).Inc()
	}
}

// IncrementLead records an aggregated outcome and its risk factors. Tags
// outside the built-in set are counted under "provider".
func (m *Metrics) IncrementLead(status string, factors []string) {
	if m != nil {
		m.LeadOutcome.WithLabelValues(status).Inc()
		for _, f := range factors {
			m.RiskFactor.WithLabelValues(factorLabel(f)).Inc()
		}
	}
}

func factorLabel(f string) string {
	if builtinFactors[f] {
		return f
	}
	return providerFactorLabel
}

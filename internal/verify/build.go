package verify

import (
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/sells-group/lead-verify/internal/config"
	"github.com/sells-group/lead-verify/pkg/microbilt"
	"github.com/sells-group/lead-verify/pkg/neverbounce"
	"github.com/sells-group/lead-verify/pkg/numverify"
)

// FromConfig wires the three provider clients from cfg. Providers without a
// key are left unconfigured and report that in their results.
func FromConfig(cfg *config.Config, m *Metrics) *Orchestrator {
	ep := cfg.ProviderEndpoints()
	hc := &http.Client{
		Timeout: time.Duration(cfg.Providers.TimeoutSecs) * time.Second,
		Transport: &http.Transport{
			MaxIdleConnsPerHost: 20,
			IdleConnTimeout:     90 * time.Second,
		},
	}

	var nv numverify.Client
	if ep.Numverify.Key != "" {
		nv = numverify.NewClient(ep.Numverify.Key,
			numverify.WithBaseURL(ep.Numverify.BaseURL),
			numverify.WithHTTPClient(hc),
		)
	}

	var nb neverbounce.Client
	if ep.NeverBounce.Key != "" {
		nb = neverbounce.NewClient(ep.NeverBounce.Key,
			neverbounce.WithBaseURL(ep.NeverBounce.BaseURL),
			neverbounce.WithHTTPClient(hc),
		)
	}

	var mb microbilt.Client
	if ep.MicroBilt.Key != "" {
		mb = microbilt.NewClient(ep.MicroBilt.Key,
			microbilt.WithBaseURL(ep.MicroBilt.BaseURL),
			microbilt.WithHTTPClient(hc),
		)
	}

	zap.L().Info("verify: providers configured",
		zap.Bool("mock", cfg.Providers.UseMock),
		zap.Bool("phone", nv != nil),
		zap.Bool("email", nb != nil),
		zap.Bool("background", mb != nil),
		zap.Bool("scoring", cfg.Scoring.Enabled),
	)

	opts := []Option{WithMetrics(m)}
	if cfg.Scoring.Enabled {
		opts = append(opts, WithScorer(NewScorer(cfg.Scoring.Weights)))
	}

	return New(
		NewPhoneVerifier(nv, cfg.Providers.CountryCode, m),
		NewEmailVerifier(nb, m),
		NewBackgroundChecker(mb, m),
		opts...,
	)
}

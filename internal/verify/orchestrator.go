package verify

import (
	"context"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/lead-verify/internal/model"
)

// Option configures the orchestrator.
type Option func(*Orchestrator)

// WithScorer enables the numeric risk score.
func WithScorer(s *Scorer) Option {
	return func(o *Orchestrator) {
		o.scorer = s
	}
}

// WithMetrics records aggregated outcomes.
func WithMetrics(m *Metrics) Option {
	return func(o *Orchestrator) {
		o.metrics = m
	}
}

// Orchestrator fans a lead out to the phone, email and background providers
// and folds their results. It keeps no state between calls.
type Orchestrator struct {
	phone      PhoneProvider
	email      EmailProvider
	background BackgroundProvider
	scorer     *Scorer
	metrics    *Metrics
}

// New creates an orchestrator over the three providers.
func New(phone PhoneProvider, email EmailProvider, background BackgroundProvider, opts ...Option) *Orchestrator {
	o := &Orchestrator{phone: phone, email: email, background: background}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// VerifyLead runs all three checks concurrently and aggregates them. Every
// provider is always called: a failure in one never cancels the others, and
// no call is retried or cached.
func (o *Orchestrator) VerifyLead(ctx context.Context, name, phone, email string) *model.Verification {
	var (
		v model.Verification
		g errgroup.Group
	)

	g.Go(func() error {
		v.Phone = o.phone.VerifyPhone(ctx, phone)
		return nil
	})
	g.Go(func() error {
		v.Email = o.email.VerifyEmail(ctx, email)
		return nil
	})
	g.Go(func() error {
		v.Background = o.background.CheckBackground(ctx, name, phone, email)
		return nil
	})
	_ = g.Wait()

	v.Status = Aggregate(v.Phone, v.Email, v.Background)
	o.metrics.IncrementLead(string(v.Status.OverallStatus), v.Status.RiskFactors)

	zap.L().Debug("verify: lead aggregated",
		zap.String("name", name),
		zap.String("status", string(v.Status.OverallStatus)),
		zap.Strings("risk_factors", v.Status.RiskFactors),
	)

	return &v
}

// Score returns the numeric risk score of v, or nil when scoring is off.
func (o *Orchestrator) Score(v *model.Verification) *float64 {
	if o.scorer == nil || v == nil {
		return nil
	}
	s := o.scorer.Score(v)
	return &s
}

// Package integration routes source records through their adapters and the
// verification orchestrator.
package integration

import (
	"context"
	"sort"
	"sync"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/lead-verify/internal/adapter"
	"github.com/sells-group/lead-verify/internal/model"
)

// Errors returned by the manager. Check with errors.Is.
var (
	ErrUnknownSource     = eris.New("integration: unknown source")
	ErrInvalidSourceData = eris.New("integration: invalid source data")
)

// Verifier runs the provider fan-out for one lead.
type Verifier interface {
	VerifyLead(ctx context.Context, name, phone, email string) *model.Verification
	Score(v *model.Verification) *float64
}

// BatchPolicy decides what happens to a batch containing invalid records.
type BatchPolicy string

const (
	// BatchAbort rejects the whole batch on the first invalid record.
	BatchAbort BatchPolicy = "abort"
	// BatchSkip verifies the valid records and reports the rest.
	BatchSkip BatchPolicy = "skip"
)

const defaultWorkers = 5

// Option configures the manager.
type Option func(*Manager)

// WithWorkers bounds how many leads of a batch are verified at once.
func WithWorkers(n int) Option {
	return func(m *Manager) {
		if n > 0 {
			m.workers = n
		}
	}
}

// WithBatchPolicy sets the invalid-record policy for ProcessBatch.
func WithBatchPolicy(p BatchPolicy) Option {
	return func(m *Manager) {
		m.policy = p
	}
}

// Manager holds the registered source adapters.
type Manager struct {
	verifier Verifier
	workers  int
	policy   BatchPolicy

	mu       sync.RWMutex
	adapters map[string]adapter.Adapter
}

// NewManager creates a manager with no adapters registered.
func NewManager(v Verifier, opts ...Option) *Manager {
	m := &Manager{
		verifier: v,
		workers:  defaultWorkers,
		policy:   BatchAbort,
		adapters: make(map[string]adapter.Adapter),
	}
	for _, o := range opts {
		o(m)
	}
	return m
}

// RegisterAdapter adds a under a.Name(). A later registration with the same
// name replaces the earlier one.
func (m *Manager) RegisterAdapter(a adapter.Adapter) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.adapters[a.Name()] = a
}

// Adapter returns the adapter registered for source.
func (m *Manager) Adapter(source string) (adapter.Adapter, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	a, ok := m.adapters[source]
	if !ok {
		return nil, eris.Wrapf(ErrUnknownSource, "source %q", source)
	}
	return a, nil
}

// Sources returns the registered source names, sorted.
func (m *Manager) Sources() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	names := make([]string, 0, len(m.adapters))
	for name := range m.adapters {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ProcessLead converts rec with the source's adapter and verifies it.
func (m *Manager) ProcessLead(ctx context.Context, source string, rec adapter.Record) (*model.Lead, error) {
	a, err := m.Adapter(source)
	if err != nil {
		return nil, err
	}
	if !a.Validate(rec) {
		return nil, eris.Wrapf(ErrInvalidSourceData, "source %q", source)
	}

	l := a.ToLead(rec)
	if err := m.verify(ctx, l); err != nil {
		return nil, err
	}
	return l, nil
}

// Rejected describes a record left out of a batch under BatchSkip.
type Rejected struct {
	Index  int            `json:"index"`
	Record adapter.Record `json:"record"`
	Reason string         `json:"reason"`
}

// BatchResult is the outcome of ProcessBatch. Leads are in input order.
type BatchResult struct {
	Leads    []*model.Lead `json:"leads"`
	Rejected []Rejected    `json:"rejected,omitempty"`
}

// ProcessBatch validates every record, converts the valid ones and verifies
// them in parallel. Under BatchAbort the first invalid record fails the whole
// batch before any provider is called.
func (m *Manager) ProcessBatch(ctx context.Context, source string, recs []adapter.Record) (*BatchResult, error) {
	a, err := m.Adapter(source)
	if err != nil {
		return nil, err
	}

	result := &BatchResult{}
	var valid []adapter.Record
	for i, rec := range recs {
		if a.Validate(rec) {
			valid = append(valid, rec)
			continue
		}
		if m.policy != BatchSkip {
			return nil, eris.Wrapf(ErrInvalidSourceData, "source %q: record %d", source, i)
		}
		result.Rejected = append(result.Rejected, Rejected{Index: i, Record: rec, Reason: "missing required fields"})
	}

	leads := adapter.ToLeads(a, valid)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(m.workers)
	for _, l := range leads {
		g.Go(func() error {
			return m.verify(gctx, l)
		})
	}
	if err := g.Wait(); err != nil {
		return nil, eris.Wrap(err, "integration: verify batch")
	}

	result.Leads = leads

	zap.L().Info("integration: batch processed",
		zap.String("source", source),
		zap.Int("records", len(recs)),
		zap.Int("verified", len(leads)),
		zap.Int("rejected", len(result.Rejected)),
	)

	return result, nil
}

// ExportLead converts l to the source's shape.
func (m *Manager) ExportLead(source string, l *model.Lead) (adapter.Record, error) {
	a, err := m.Adapter(source)
	if err != nil {
		return nil, err
	}
	return a.FromLead(l), nil
}

// ExportBatch converts leads to the source's shape, preserving order.
func (m *Manager) ExportBatch(source string, leads []*model.Lead) ([]adapter.Record, error) {
	a, err := m.Adapter(source)
	if err != nil {
		return nil, err
	}
	return adapter.FromLeads(a, leads), nil
}

func (m *Manager) verify(ctx context.Context, l *model.Lead) error {
	v := m.verifier.VerifyLead(ctx, l.FullName(), l.Phone, l.Email)
	if err := l.ApplyVerification(v, m.verifier.Score(v)); err != nil {
		return eris.Wrap(err, "integration: attach verification")
	}

	zap.L().Debug("integration: lead verified",
		zap.String("source", l.Source),
		zap.String("lead_id", l.ID),
		zap.String("status", string(l.Status())),
	)
	return nil
}

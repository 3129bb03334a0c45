// Package adapter converts source-specific lead records to and from the
// canonical model.Lead.
package adapter

import (
	"fmt"
	"strings"

	"github.com/sells-group/lead-verify/internal/model"
)

// Record is one raw record in a source's native shape.
type Record map[string]any

// Adapter converts between one source's records and canonical leads.
type Adapter interface {
	// Name is the source tag stamped on every converted lead.
	Name() string
	// ToLead converts rec. Missing fields become empty strings; it never fails.
	ToLead(rec Record) *model.Lead
	// FromLead converts a lead back to the source shape, including any
	// verification result.
	FromLead(l *model.Lead) Record
	// Validate reports whether rec carries every field the source requires.
	// It checks presence only, not syntax.
	Validate(rec Record) bool
}

// ToLeads converts recs element-wise, preserving order.
func ToLeads(a Adapter, recs []Record) []*model.Lead {
	out := make([]*model.Lead, len(recs))
	for i, r := range recs {
		out[i] = a.ToLead(r)
	}
	return out
}

// FromLeads converts leads element-wise, preserving order.
func FromLeads(a Adapter, leads []*model.Lead) []Record {
	out := make([]Record, len(leads))
	for i, l := range leads {
		out[i] = a.FromLead(l)
	}
	return out
}

// String returns rec[key] as a string. Missing and nil values yield "".
func (r Record) String(key string) string {
	v, ok := r[key]
	if !ok || v == nil {
		return ""
	}
	switch s := v.(type) {
	case string:
		return s
	case fmt.Stringer:
		return s.String()
	default:
		return fmt.Sprint(v)
	}
}

// Has reports whether key is present.
func (r Record) Has(key string) bool {
	_, ok := r[key]
	return ok
}

// Copy returns a shallow copy of r as a plain map.
func (r Record) Copy() map[string]any {
	out := make(map[string]any, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

// SplitName splits a full name at the first run of whitespace.
func SplitName(full string) (first, last string) {
	fields := strings.Fields(full)
	switch len(fields) {
	case 0:
		return "", ""
	case 1:
		return fields[0], ""
	default:
		return fields[0], strings.Join(fields[1:], " ")
	}
}

// verificationFields returns the flat verification columns shared by the
// tabular adapters. It is empty for an unverified lead.
func verificationFields(l *model.Lead) Record {
	out := Record{}
	if !l.IsVerified() {
		return out
	}
	out["overall_status"] = string(l.Status())
	out["risk_factors"] = strings.Join(l.RiskFactors, ";")
	if l.RiskScore != nil {
		out["risk_score"] = *l.RiskScore
	}
	return out
}

package adapter

import (
	"github.com/sells-group/lead-verify/internal/model"
)

// SourceAPI is the source tag of JSONAdapter.
const SourceAPI = "api"

// JSONAdapter converts decoded JSON payloads such as API request bodies.
// A payload may carry first_name and last_name or a single name.
type JSONAdapter struct{}

// NewJSONAdapter creates a JSON payload adapter.
func NewJSONAdapter() *JSONAdapter { return &JSONAdapter{} }

// Name implements Adapter.
func (a *JSONAdapter) Name() string { return SourceAPI }

// Validate implements Adapter.
func (a *JSONAdapter) Validate(rec Record) bool {
	if !rec.Has("email") || !rec.Has("phone") {
		return false
	}
	return (rec.Has("first_name") && rec.Has("last_name")) || rec.Has("name")
}

// ToLead implements Adapter.
func (a *JSONAdapter) ToLead(rec Record) *model.Lead {
	l := model.NewLead(SourceAPI)
	l.ID = rec.String("id")
	l.FirstName = rec.String("first_name")
	l.LastName = rec.String("last_name")
	if l.FirstName == "" && l.LastName == "" {
		l.FirstName, l.LastName = SplitName(rec.String("name"))
	}
	l.Email = rec.String("email")
	l.Phone = rec.String("phone")

	if md, ok := rec["metadata"].(map[string]any); ok {
		for k, v := range md {
			l.Metadata[k] = v
		}
	}
	l.RawData = rec.Copy()

	return l
}

// FromLead implements Adapter. The record mirrors the lead's JSON shape.
func (a *JSONAdapter) FromLead(l *model.Lead) Record {
	out := Record{
		"id":           l.ID,
		"first_name":   l.FirstName,
		"last_name":    l.LastName,
		"email":        l.Email,
		"phone":        l.Phone,
		"source":       l.Source,
		"created_at":   l.CreatedAt,
		"metadata":     l.Metadata,
		"risk_factors": l.RiskFactors,
	}
	if l.Verification != nil {
		out["verification_status"] = l.Verification
	}
	if l.RiskScore != nil {
		out["risk_score"] = *l.RiskScore
	}
	return out
}

package adapter

import (
	"strings"

	"github.com/sells-group/lead-verify/internal/model"
)

// SourceNotion is the source tag of NotionAdapter.
const SourceNotion = "notion"

// Notion lead database property names.
const (
	NotionPageID      = "page_id"
	NotionName        = "Name"
	NotionFirstName   = "First Name"
	NotionLastName    = "Last Name"
	NotionEmail       = "Email"
	NotionPhone       = "Phone"
	NotionStatus      = "Status"
	NotionRiskFactors = "Risk Factors"
	NotionRiskScore   = "Risk Score"
)

// Notion status values written back after verification.
const (
	NotionStatusVerified = "Verified"
	NotionStatusFlagged  = "Flagged"
)

// NotionAdapter converts flattened Notion lead pages (see notion.PageRecord).
type NotionAdapter struct{}

// NewNotionAdapter creates a Notion page adapter.
func NewNotionAdapter() *NotionAdapter { return &NotionAdapter{} }

// Name implements Adapter.
func (a *NotionAdapter) Name() string { return SourceNotion }

// Validate implements Adapter.
func (a *NotionAdapter) Validate(rec Record) bool {
	if !rec.Has(NotionPageID) || !rec.Has(NotionEmail) || !rec.Has(NotionPhone) {
		return false
	}
	return rec.Has(NotionName) || (rec.Has(NotionFirstName) && rec.Has(NotionLastName))
}

// ToLead implements Adapter. Separate first/last properties take precedence
// over the Name title.
func (a *NotionAdapter) ToLead(rec Record) *model.Lead {
	l := model.NewLead(SourceNotion)
	l.ID = rec.String(NotionPageID)
	l.FirstName = rec.String(NotionFirstName)
	l.LastName = rec.String(NotionLastName)
	if l.FirstName == "" && l.LastName == "" {
		l.FirstName, l.LastName = SplitName(rec.String(NotionName))
	}
	l.Email = rec.String(NotionEmail)
	l.Phone = rec.String(NotionPhone)
	l.RawData = rec.Copy()
	return l
}

// FromLead implements Adapter.
func (a *NotionAdapter) FromLead(l *model.Lead) Record {
	out := Record{
		NotionPageID: l.ID,
		NotionName:   l.FullName(),
		NotionEmail:  l.Email,
		NotionPhone:  l.Phone,
	}
	if !l.IsVerified() {
		return out
	}

	out[NotionStatus] = NotionStatusVerified
	if l.Status() == model.StatusFlagged {
		out[NotionStatus] = NotionStatusFlagged
	}
	out[NotionRiskFactors] = strings.Join(l.RiskFactors, ", ")
	if l.RiskScore != nil {
		out[NotionRiskScore] = *l.RiskScore
	}
	return out
}

package model

import (
	"strings"
	"time"

	"github.com/rotisserie/eris"
)

// ErrAlreadyVerified is returned when a verification result is attached to a
// lead that already carries one.
var ErrAlreadyVerified = eris.New("model: lead already verified")

// Lead is the canonical, source-independent lead record.
type Lead struct {
	ID           string         `json:"id"`
	FirstName    string         `json:"first_name"`
	LastName     string         `json:"last_name"`
	Email        string         `json:"email"`
	Phone        string         `json:"phone"`
	Source       string         `json:"source"`
	CreatedAt    time.Time      `json:"created_at"`
	Metadata     map[string]any `json:"metadata"`
	RawData      map[string]any `json:"raw_data"`
	Verification *Verification  `json:"verification_status"`
	RiskScore    *float64       `json:"risk_score"`
	RiskFactors  []string       `json:"risk_factors"`
}

// NewLead returns a lead stamped with the current time and empty maps.
func NewLead(source string) *Lead {
	return &Lead{
		Source:    source,
		CreatedAt: time.Now().UTC(),
		Metadata:  map[string]any{},
		RawData:   map[string]any{},
	}
}

// FullName joins first and last name.
func (l *Lead) FullName() string {
	return strings.TrimSpace(l.FirstName + " " + l.LastName)
}

// IsVerified reports whether a verification result has been attached.
func (l *Lead) IsVerified() bool {
	return l.Verification != nil
}

// Status returns the overall status, or "" for an unverified lead.
func (l *Lead) Status() OverallStatus {
	if l.Verification == nil {
		return ""
	}
	return l.Verification.Status.OverallStatus
}

// ApplyVerification attaches v (and the optional score) to the lead. A lead
// is verified at most once.
func (l *Lead) ApplyVerification(v *Verification, score *float64) error {
	if v == nil {
		return eris.New("model: nil verification")
	}
	if l.Verification != nil {
		return eris.Wrapf(ErrAlreadyVerified, "lead %q", l.ID)
	}

	l.Verification = v
	l.RiskScore = score
	l.RiskFactors = append([]string{}, v.Status.RiskFactors...)
	return nil
}

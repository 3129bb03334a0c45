package model

import "encoding/json"

// OverallStatus is the final lead classification.
type OverallStatus string

const (
	StatusVerified OverallStatus = "verified"
	StatusFlagged  OverallStatus = "flagged"
)

// Risk factor tags produced by aggregation. Background providers may
// contribute additional tags verbatim.
const (
	RiskInvalidPhone          = "invalid_phone"
	RiskInvalidEmail          = "invalid_email"
	RiskCriminalRecords       = "criminal_records"
	RiskBankruptcies          = "bankruptcies"
	RiskBackgroundCheckFailed = "background_check_failed"
)

// VerificationStatus is the aggregated classification of one lead.
// OverallStatus is verified exactly when RiskFactors is empty.
type VerificationStatus struct {
	OverallStatus OverallStatus `json:"overall_status"`
	RiskFactors   []string      `json:"risk_factors"`
}

// MarshalJSON always emits risk_factors as a list.
func (s VerificationStatus) MarshalJSON() ([]byte, error) {
	type alias VerificationStatus
	out := alias(s)
	if out.RiskFactors == nil {
		out.RiskFactors = []string{}
	}
	return json.Marshal(out)
}

// Verification bundles the three provider results with their aggregate.
type Verification struct {
	Phone      PhoneResult        `json:"phone_verification"`
	Email      EmailResult        `json:"email_verification"`
	Background BackgroundResult   `json:"background_check"`
	Status     VerificationStatus `json:"verification_status"`
}

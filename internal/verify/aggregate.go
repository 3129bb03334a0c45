package verify

import "github.com/sells-group/lead-verify/internal/model"

// Aggregate folds the three provider results into a single classification.
// It is pure: the same inputs always yield the same status and factor order.
//
// Factors are appended in a fixed order: invalid_phone, invalid_email, then
// (only for a completed background check) criminal_records, bankruptcies and
// the provider's own tags, and finally background_check_failed. A skipped
// background check contributes nothing. Duplicates keep their first position.
func Aggregate(phone model.PhoneResult, email model.EmailResult, bg model.BackgroundResult) model.VerificationStatus {
	var factors []string
	seen := make(map[string]bool)
	add := func(f string) {
		if f == "" || seen[f] {
			return
		}
		seen[f] = true
		factors = append(factors, f)
	}

	if !phone.Valid {
		add(model.RiskInvalidPhone)
	}

	if email.Result != model.EmailValid {
		add(model.RiskInvalidEmail)
	}

	if bg.Ran() {
		if len(bg.CriminalRecords) > 0 {
			add(model.RiskCriminalRecords)
		}
		if len(bg.Bankruptcies) > 0 {
			add(model.RiskBankruptcies)
		}
		for _, f := range bg.RiskFactors {
			add(f)
		}
	}

	if bg.Failed() {
		add(model.RiskBackgroundCheckFailed)
	}

	status := model.StatusVerified
	if len(factors) > 0 {
		status = model.StatusFlagged
	}

	return model.VerificationStatus{
		OverallStatus: status,
		RiskFactors:   factors,
	}
}

package verify

import (
	"math"

	"github.com/sells-group/lead-verify/internal/config"
	"github.com/sells-group/lead-verify/internal/model"
)

// Scorer turns provider results into a numeric risk score in [0, 1], where
// 0 means no risk signal at all.
type Scorer struct {
	weights config.ScoringWeights
}

// NewScorer creates a scorer with the given weights.
func NewScorer(w config.ScoringWeights) *Scorer {
	return &Scorer{weights: w}
}

// Score returns the weighted risk score of v.
func (s *Scorer) Score(v *model.Verification) float64 {
	if v == nil {
		return 0
	}

	w := s.weights
	var score float64

	if !v.Phone.Valid {
		score += w.InvalidPhone
	}
	if v.Email.Result != model.EmailValid {
		score += w.InvalidEmail
	}

	bg := v.Background
	switch {
	case bg.Ran():
		if len(bg.CriminalRecords) > 0 {
			score += w.CriminalRecords
		}
		if len(bg.Bankruptcies) > 0 {
			score += w.Bankruptcies
		}
		score += w.ProviderFactor * float64(len(providerOnly(bg.RiskFactors)))
	case bg.Failed():
		score += w.BackgroundFailed
	}

	return math.Min(1, math.Max(0, score))
}

// providerOnly drops provider tags that duplicate the built-in factors so a
// signal is not counted twice.
func providerOnly(tags []string) []string {
	var out []string
	seen := map[string]bool{
		model.RiskInvalidPhone:          true,
		model.RiskInvalidEmail:          true,
		model.RiskCriminalRecords:       true,
		model.RiskBankruptcies:          true,
		model.RiskBackgroundCheckFailed: true,
	}
	for _, t := range tags {
		if t == "" || seen[t] {
			continue
		}
		seen[t] = true
		out = append(out, t)
	}
	return out
}

package model

// PhoneResult is the outcome of a phone validity check. A non-empty Error
// means the provider could not answer and every other field is zero.
type PhoneResult struct {
	Valid               bool   `json:"valid"`
	Number              string `json:"number,omitempty"`
	LocalFormat         string `json:"local_format,omitempty"`
	InternationalFormat string `json:"international_format,omitempty"`
	CountryPrefix       string `json:"country_prefix,omitempty"`
	CountryCode         string `json:"country_code,omitempty"`
	CountryName         string `json:"country_name,omitempty"`
	Location            string `json:"location,omitempty"`
	Carrier             string `json:"carrier,omitempty"`
	LineType            string `json:"line_type,omitempty"`
	Error               string `json:"error,omitempty"`
}

// PhoneFailure builds a failed phone result.
func PhoneFailure(reason string) PhoneResult {
	return PhoneResult{Valid: false, Error: reason}
}

// EmailCode is the categorical deliverability result.
type EmailCode string

const (
	EmailValid      EmailCode = "valid"
	EmailInvalid    EmailCode = "invalid"
	EmailDisposable EmailCode = "disposable"
	EmailCatchall   EmailCode = "catchall"
	EmailUnknown    EmailCode = "unknown"
	EmailError      EmailCode = "error"
)

// EmailResult is the outcome of an email deliverability check.
type EmailResult struct {
	Result              EmailCode `json:"result"`
	Flags               []string  `json:"flags,omitempty"`
	SuggestedCorrection string    `json:"suggested_correction,omitempty"`
	ExecutionTime       float64   `json:"execution_time,omitempty"`
	Error               string    `json:"error,omitempty"`
}

// EmailFailure builds a failed email result. Failures count as invalid.
func EmailFailure(reason string) EmailResult {
	return EmailResult{Result: EmailInvalid, Error: reason}
}

// BackgroundStatus is the outcome class of a background check.
type BackgroundStatus string

const (
	BackgroundCompleted BackgroundStatus = "completed"
	BackgroundSkipped   BackgroundStatus = "skipped" // provider not configured
	BackgroundError     BackgroundStatus = "error"
)

// Address is a known address from a background record.
type Address struct {
	Street string `json:"street,omitempty"`
	City   string `json:"city,omitempty"`
	State  string `json:"state,omitempty"`
	Zip    string `json:"zip,omitempty"`
	Since  string `json:"since,omitempty"`
}

// CriminalRecord is a single criminal record entry.
type CriminalRecord struct {
	Offense      string `json:"offense,omitempty"`
	Date         string `json:"date,omitempty"`
	Jurisdiction string `json:"jurisdiction,omitempty"`
	Disposition  string `json:"disposition,omitempty"`
}

// Bankruptcy is a single bankruptcy filing.
type Bankruptcy struct {
	Chapter string `json:"chapter,omitempty"`
	FiledAt string `json:"filed_at,omitempty"`
	Court   string `json:"court,omitempty"`
	Status  string `json:"status,omitempty"`
}

// BackgroundResult is the outcome of a background/identity check.
type BackgroundResult struct {
	Status          BackgroundStatus `json:"status"`
	Name            string           `json:"name,omitempty"`
	Addresses       []Address        `json:"addresses,omitempty"`
	CriminalRecords []CriminalRecord `json:"criminal_records,omitempty"`
	Bankruptcies    []Bankruptcy     `json:"bankruptcies,omitempty"`
	RiskFactors     []string         `json:"risk_factors,omitempty"`
	Message         string           `json:"message,omitempty"`
	Error           string           `json:"error,omitempty"`
}

// BackgroundNotConfigured builds a skipped result for an unconfigured provider.
func BackgroundNotConfigured(message string) BackgroundResult {
	return BackgroundResult{Status: BackgroundSkipped, Message: message}
}

// BackgroundFailure builds a failed background result.
func BackgroundFailure(reason string) BackgroundResult {
	return BackgroundResult{Status: BackgroundError, Error: reason}
}

// Ran reports whether the check completed and its record sets are usable.
func (b BackgroundResult) Ran() bool {
	return b.Status == BackgroundCompleted && b.Error == ""
}

// Failed reports whether the check was attempted and failed.
func (b BackgroundResult) Failed() bool {
	return b.Status == BackgroundError || (b.Status != BackgroundSkipped && b.Error != "")
}

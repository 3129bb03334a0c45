package verify

import (
	"context"
	"strings"
	"time"
	"unicode"

	"go.uber.org/zap"

	"github.com/sells-group/lead-verify/internal/failure"
	"github.com/sells-group/lead-verify/internal/model"
	"github.com/sells-group/lead-verify/pkg/microbilt"
	"github.com/sells-group/lead-verify/pkg/neverbounce"
	"github.com/sells-group/lead-verify/pkg/numverify"
)

// Messages for providers without credentials.
const (
	MsgPhoneNotConfigured      = "numverify API key not configured"
	MsgEmailNotConfigured      = "neverbounce API key not configured"
	MsgBackgroundNotConfigured = "background check not configured"
)

// PhoneProvider checks phone validity. Implementations never return an
// error; failures are carried in the result.
type PhoneProvider interface {
	VerifyPhone(ctx context.Context, phone string) model.PhoneResult
}

// EmailProvider checks email deliverability.
type EmailProvider interface {
	VerifyEmail(ctx context.Context, email string) model.EmailResult
}

// BackgroundProvider runs a background/identity check.
type BackgroundProvider interface {
	CheckBackground(ctx context.Context, name, phone, email string) model.BackgroundResult
}

// PhoneVerifier adapts a Numverify client to PhoneProvider. A nil client
// means the provider is not configured.
type PhoneVerifier struct {
	client      numverify.Client
	countryCode string
	metrics     *Metrics
}

// NewPhoneVerifier creates a phone verifier. Pass a nil client when no API
// key is available.
func NewPhoneVerifier(client numverify.Client, countryCode string, m *Metrics) *PhoneVerifier {
	return &PhoneVerifier{client: client, countryCode: countryCode, metrics: m}
}

// VerifyPhone validates phone after stripping every non-digit character.
func (v *PhoneVerifier) VerifyPhone(ctx context.Context, phone string) model.PhoneResult {
	if v.client == nil {
		v.metrics.CountProvider("phone", "error")
		return model.PhoneFailure(MsgPhoneNotConfigured)
	}

	start := time.Now()
	resp, err := v.client.Validate(ctx, DigitsOnly(phone), v.countryCode)
	if err != nil {
		v.metrics.ObserveProvider("phone", "error", time.Since(start))
		logProviderError("numverify", err)
		return model.PhoneFailure(err.Error())
	}
	v.metrics.ObserveProvider("phone", "ok", time.Since(start))

	return model.PhoneResult{
		Valid:               resp.Valid,
		Number:              resp.Number,
		LocalFormat:         resp.LocalFormat,
		InternationalFormat: resp.InternationalFormat,
		CountryPrefix:       resp.CountryPrefix,
		CountryCode:         resp.CountryCode,
		CountryName:         resp.CountryName,
		Location:            resp.Location,
		Carrier:             resp.Carrier,
		LineType:            resp.LineType,
	}
}

// EmailVerifier adapts a NeverBounce client to EmailProvider.
type EmailVerifier struct {
	client  neverbounce.Client
	metrics *Metrics
}

// NewEmailVerifier creates an email verifier. Pass a nil client when no API
// key is available.
func NewEmailVerifier(client neverbounce.Client, m *Metrics) *EmailVerifier {
	return &EmailVerifier{client: client, metrics: m}
}

// VerifyEmail checks the deliverability of email.
func (v *EmailVerifier) VerifyEmail(ctx context.Context, email string) model.EmailResult {
	if v.client == nil {
		v.metrics.CountProvider("email", "error")
		return model.EmailFailure(MsgEmailNotConfigured)
	}

	start := time.Now()
	resp, err := v.client.Check(ctx, strings.TrimSpace(email))
	if err != nil {
		v.metrics.ObserveProvider("email", "error", time.Since(start))
		logProviderError("neverbounce", err)
		return model.EmailFailure(err.Error())
	}
	v.metrics.ObserveProvider("email", "ok", time.Since(start))

	return model.EmailResult{
		Result:              emailCode(resp.Result),
		Flags:               resp.Flags,
		SuggestedCorrection: resp.SuggestedCorrection,
		ExecutionTime:       resp.ExecutionTime,
	}
}

func emailCode(s string) model.EmailCode {
	switch c := model.EmailCode(strings.ToLower(s)); c {
	case model.EmailValid, model.EmailInvalid, model.EmailDisposable,
		model.EmailCatchall, model.EmailUnknown:
		return c
	case "accept_all":
		return model.EmailCatchall
	default:
		return model.EmailUnknown
	}
}

// BackgroundChecker adapts a MicroBilt client to BackgroundProvider.
type BackgroundChecker struct {
	client  microbilt.Client
	metrics *Metrics
}

// NewBackgroundChecker creates a background checker. A nil client yields a
// skipped result for every lead.
func NewBackgroundChecker(client microbilt.Client, m *Metrics) *BackgroundChecker {
	return &BackgroundChecker{client: client, metrics: m}
}

// CheckBackground searches for the person identified by name, phone and email.
func (c *BackgroundChecker) CheckBackground(ctx context.Context, name, phone, email string) model.BackgroundResult {
	if c.client == nil {
		c.metrics.CountProvider("background", "skipped")
		return model.BackgroundNotConfigured(MsgBackgroundNotConfigured)
	}

	start := time.Now()
	resp, err := c.client.Search(ctx, microbilt.PersonSearchRequest{Name: name, Phone: phone, Email: email})
	if err != nil {
		c.metrics.ObserveProvider("background", "error", time.Since(start))
		logProviderError("microbilt", err)
		return model.BackgroundFailure(err.Error())
	}
	c.metrics.ObserveProvider("background", "ok", time.Since(start))

	out := model.BackgroundResult{
		Status:      model.BackgroundCompleted,
		Name:        resp.Name,
		RiskFactors: resp.RiskFactors,
	}
	for _, a := range resp.Addresses {
		out.Addresses = append(out.Addresses, model.Address(a))
	}
	for _, r := range resp.CriminalRecords {
		out.CriminalRecords = append(out.CriminalRecords, model.CriminalRecord(r))
	}
	for _, b := range resp.Bankruptcies {
		out.Bankruptcies = append(out.Bankruptcies, model.Bankruptcy(b))
	}
	return out
}

// DigitsOnly strips every non-digit rune from s.
func DigitsOnly(s string) string {
	var b strings.Builder
	for _, r := range s {
		if unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func logProviderError(provider string, err error) {
	zap.L().Warn("verify: provider call failed",
		zap.String("provider", provider),
		zap.String("error_type", string(failure.Classify(err))),
		zap.Error(err),
	)
}

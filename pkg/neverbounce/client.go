package neverbounce

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rotisserie/eris"

	"github.com/sells-group/lead-verify/internal/failure"
)

const defaultBaseURL = "https://api.neverbounce.com"

// Client checks email deliverability against the NeverBounce v4 API.
type Client interface {
	Check(ctx context.Context, email string) (*CheckResponse, error)
}

// CheckResponse is a successful response from POST /v4/single/check.
type CheckResponse struct {
	Status              string   `json:"status"`
	Result              string   `json:"result"`
	Flags               []string `json:"flags"`
	SuggestedCorrection string   `json:"suggested_correction"`
	ExecutionTime       float64  `json:"execution_time"`
}

// APIError is returned when NeverBounce answers with a non-success status
// such as auth_failure or throttle_triggered.
type APIError struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("neverbounce: %s: %s", e.Status, e.Message)
}

// Option configures the client.
type Option func(*httpClient)

// WithBaseURL overrides the default API base URL.
func WithBaseURL(url string) Option {
	return func(c *httpClient) {
		c.baseURL = url
	}
}

// WithHTTPClient overrides the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *httpClient) {
		c.http = hc
	}
}

type httpClient struct {
	apiKey  string
	baseURL string
	http    *http.Client
}

// NewClient creates a NeverBounce API client.
func NewClient(apiKey string, opts ...Option) Client {
	c := &httpClient{
		apiKey:  apiKey,
		baseURL: defaultBaseURL,
		http:    &http.Client{Timeout: 30 * time.Second},
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

func (c *httpClient) Check(ctx context.Context, email string) (*CheckResponse, error) {
	form := url.Values{}
	form.Set("key", c.apiKey)
	form.Set("email", email)

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v4/single/check", strings.NewReader(form.Encode()))
	if err != nil {
		return nil, eris.Wrap(err, "neverbounce: create request")
	}
	httpReq.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, eris.Wrap(err, "neverbounce: send request")
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, eris.Wrap(err, "neverbounce: read response")
	}

	if resp.StatusCode != http.StatusOK {
		return nil, &failure.StatusError{Provider: "neverbounce", StatusCode: resp.StatusCode, Body: string(respBody)}
	}

	var raw struct {
		CheckResponse
		Message string `json:"message"`
	}
	if err := json.Unmarshal(respBody, &raw); err != nil {
		return nil, eris.Wrap(err, "neverbounce: unmarshal response")
	}
	if raw.Status != "success" {
		msg := raw.Message
		if msg == "" {
			msg = "unknown error"
		}
		return nil, &APIError{Status: raw.Status, Message: msg}
	}

	return &raw.CheckResponse, nil
}

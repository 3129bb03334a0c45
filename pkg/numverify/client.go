package numverify

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/rotisserie/eris"

	"github.com/sells-group/lead-verify/internal/failure"
)

const defaultBaseURL = "http://apilayer.net"

// Client validates phone numbers against the Numverify API.
type Client interface {
	Validate(ctx context.Context, number, countryCode string) (*ValidateResponse, error)
}

// ValidateResponse is the response from GET /api/validate.
type ValidateResponse struct {
	Valid               bool   `json:"valid"`
	Number              string `json:"number"`
	LocalFormat         string `json:"local_format"`
	InternationalFormat string `json:"international_format"`
	CountryPrefix       string `json:"country_prefix"`
	CountryCode         string `json:"country_code"`
	CountryName         string `json:"country_name"`
	Location            string `json:"location"`
	Carrier             string `json:"carrier"`
	LineType            string `json:"line_type"`
}

// APIError is reported in a 200 response body when the request is rejected
// (bad key, quota exhausted, malformed number).
type APIError struct {
	Code int    `json:"code"`
	Type string `json:"type"`
	Info string `json:"info"`
}

func (e *APIError) Error() string {
	if e.Info != "" {
		return fmt.Sprintf("numverify: %s (%d): %s", e.Type, e.Code, e.Info)
	}
	return fmt.Sprintf("numverify: %s (%d)", e.Type, e.Code)
}

type envelope struct {
	ValidateResponse
	Success *bool     `json:"success"`
	Error   *APIError `json:"error"`
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
	accessKey string
	baseURL   string
	http      *http.Client
}

// NewClient creates a Numverify API client.
func NewClient(accessKey string, opts ...Option) Client {
	c := &httpClient{
		accessKey: accessKey,
		baseURL:   defaultBaseURL,
		http:      &http.Client{Timeout: 30 * time.Second},
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

func (c *httpClient) Validate(ctx context.Context, number, countryCode string) (*ValidateResponse, error) {
	q := url.Values{}
	q.Set("access_key", c.accessKey)
	q.Set("number", number)
	if countryCode != "" {
		q.Set("country_code", countryCode)
	}
	q.Set("format", "1")

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/validate?"+q.Encode(), nil)
	if err != nil {
		return nil, eris.Wrap(err, "numverify: create request")
	}
	httpReq.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, eris.Wrap(err, "numverify: send request")
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, eris.Wrap(err, "numverify: read response")
	}

	if resp.StatusCode != http.StatusOK {
		return nil, &failure.StatusError{Provider: "numverify", StatusCode: resp.StatusCode, Body: string(respBody)}
	}

	var env envelope
	if err := json.Unmarshal(respBody, &env); err != nil {
		return nil, eris.Wrap(err, "numverify: unmarshal response")
	}
	if env.Error != nil {
		return nil, env.Error
	}
	if env.Success != nil && !*env.Success {
		return nil, &APIError{Type: "request_failed"}
	}

	return &env.ValidateResponse, nil
}

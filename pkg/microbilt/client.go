package microbilt

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rotisserie/eris"

	"github.com/sells-group/lead-verify/internal/failure"
)

const defaultBaseURL = "https://api.microbilt.com"

// Client runs person searches against the MicroBilt API.
type Client interface {
	Search(ctx context.Context, req PersonSearchRequest) (*PersonSearchResponse, error)
}

// PersonSearchRequest is the request body for POST /v1/person/search.
type PersonSearchRequest struct {
	Name  string `json:"name"`
	Phone string `json:"phone"`
	Email string `json:"email"`
}

// PersonSearchResponse is the response from POST /v1/person/search.
type PersonSearchResponse struct {
	Name            string           `json:"name"`
	Addresses       []Address        `json:"addresses"`
	CriminalRecords []CriminalRecord `json:"criminal_records"`
	Bankruptcies    []Bankruptcy     `json:"bankruptcies"`
	RiskFactors     []string         `json:"risk_factors"`
}

// APIError is reported in a 200 response body when the search is rejected.
type APIError struct {
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("microbilt: %s", e.Message)
}

type envelope struct {
	PersonSearchResponse
	Error string `json:"error"`
}

// Address is a reported address.
type Address struct {
	Street string `json:"street"`
	City   string `json:"city"`
	State  string `json:"state"`
	Zip    string `json:"zip"`
	Since  string `json:"since"`
}

// CriminalRecord is a reported criminal record.
type CriminalRecord struct {
	Offense      string `json:"offense"`
	Date         string `json:"date"`
	Jurisdiction string `json:"jurisdiction"`
	Disposition  string `json:"disposition"`
}

// Bankruptcy is a reported bankruptcy filing.
type Bankruptcy struct {
	Chapter string `json:"chapter"`
	FiledAt string `json:"filed_at"`
	Court   string `json:"court"`
	Status  string `json:"status"`
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

// NewClient creates a MicroBilt API client.
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

func (c *httpClient) Search(ctx context.Context, req PersonSearchRequest) (*PersonSearchResponse, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, eris.Wrap(err, "microbilt: marshal request")
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/person/search", bytes.NewReader(body))
	if err != nil {
		return nil, eris.Wrap(err, "microbilt: create request")
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, eris.Wrap(err, "microbilt: send request")
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, eris.Wrap(err, "microbilt: read response")
	}

	if resp.StatusCode != http.StatusOK {
		return nil, &failure.StatusError{Provider: "microbilt", StatusCode: resp.StatusCode, Body: string(respBody)}
	}

	var env envelope
	if err := json.Unmarshal(respBody, &env); err != nil {
		return nil, eris.Wrap(err, "microbilt: unmarshal response")
	}
	if env.Error != "" {
		return nil, &APIError{Message: env.Error}
	}

	return &env.PersonSearchResponse, nil
}

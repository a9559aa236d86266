// Package gsheets provides a client for the Google Sheets values API
package gsheets

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/minjaelee/finboard/internal/common"
	"github.com/minjaelee/finboard/internal/interfaces"
)

const (
	DefaultBaseURL = "https://sheets.googleapis.com/v4"
	DefaultTimeout = 15 * time.Second
)

// Client implements the SheetSource interface against the Sheets v4 values
// endpoint. Authentication uses an API key; the spreadsheet must be readable
// by the key's project.
type Client struct {
	baseURL       string
	apiKey        string
	spreadsheetID string
	httpClient    *http.Client
	logger        *common.Logger
}

// ClientOption configures the client
type ClientOption func(*Client)

// WithBaseURL sets the base URL
func WithBaseURL(baseURL string) ClientOption {
	return func(c *Client) {
		c.baseURL = baseURL
	}
}

// WithLogger sets the logger
func WithLogger(logger *common.Logger) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithTimeout sets the HTTP timeout
func WithTimeout(timeout time.Duration) ClientOption {
	return func(c *Client) {
		c.httpClient.Timeout = timeout
	}
}

// NewClient creates a new Google Sheets client
func NewClient(apiKey, spreadsheetID string, opts ...ClientOption) *Client {
	c := &Client{
		baseURL:       DefaultBaseURL,
		apiKey:        apiKey,
		spreadsheetID: spreadsheetID,
		httpClient: &http.Client{
			Timeout: DefaultTimeout,
		},
		logger: common.NewSilentLogger(),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// APIError represents an API error
type APIError struct {
	StatusCode int
	Message    string
	Endpoint   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("Sheets API error: %s (status: %d, endpoint: %s)", e.Message, e.StatusCode, e.Endpoint)
}

// valuesResponse mirrors the values.get payload.
type valuesResponse struct {
	Range  string     `json:"range"`
	Values [][]string `json:"values"`
}

// GetWorksheet retrieves all cells of a worksheet as string rows. The
// worksheet name doubles as the A1 range, which returns the full used grid.
func (c *Client) GetWorksheet(ctx context.Context, name string) ([][]string, error) {
	params := url.Values{}
	params.Set("key", c.apiKey)
	// All cells come back as display strings so numeric formatting survives.
	params.Set("valueRenderOption", "FORMATTED_VALUE")

	path := fmt.Sprintf("/spreadsheets/%s/values/%s",
		url.PathEscape(c.spreadsheetID), url.PathEscape(name))
	reqURL := fmt.Sprintf("%s%s?%s", c.baseURL, path, params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	c.logger.Debug().Str("worksheet", name).Msg("Sheets API request")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, &APIError{
			StatusCode: resp.StatusCode,
			Message:    string(body),
			Endpoint:   path,
		}
	}

	var values valuesResponse
	if err := json.NewDecoder(resp.Body).Decode(&values); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	if len(values.Values) == 0 {
		return nil, fmt.Errorf("worksheet %q is empty", name)
	}

	return values.Values, nil
}

// Ensure Client implements SheetSource
var _ interfaces.SheetSource = (*Client)(nil)

// Package feed fetches the upstream case and testing feeds over HTTP.
//
// Case feeds are CSV with a fixed, versioned header that is validated
// against the expected column contract before any row is trusted.
// Testing feeds are JSON arrays keyed by FIPS code and a compact
// integer date.
package feed

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/couchcryptid/covid-data-etl/internal/domain"
)

// Client fetches feeds with a shared HTTP client and timeout.
type Client struct {
	httpClient *http.Client
	logger     *slog.Logger
}

// NewClient creates a feed client.
func NewClient(timeout time.Duration, logger *slog.Logger) *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: timeout,
		},
		logger: logger,
	}
}

// get issues the request and returns the body reader. Network errors and
// non-2xx statuses are fetch failures.
func (c *Client) get(ctx context.Context, url string) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("create request for %s: %w", url, err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: get %s: %v", domain.ErrFetchFailure, url, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		resp.Body.Close()
		return nil, fmt.Errorf("%w: get %s: status %d", domain.ErrFetchFailure, url, resp.StatusCode)
	}
	return resp.Body, nil
}

// fetchCSV retrieves a CSV feed and returns its data rows after
// validating the header row exactly against the expected contract.
func (c *Client) fetchCSV(ctx context.Context, url string, expected []string) ([][]string, error) {
	start := time.Now()
	body, err := c.get(ctx, url)
	if err != nil {
		return nil, err
	}
	defer body.Close()

	r := csv.NewReader(body)
	header, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("%w: read header of %s: %v", domain.ErrFetchFailure, url, err)
	}
	if err := validateHeader(header, expected); err != nil {
		return nil, fmt.Errorf("%s: %w", url, err)
	}

	rows, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("%w: read rows of %s: %v", domain.ErrFetchFailure, url, err)
	}

	c.logger.Debug("fetched csv feed", "url", url, "rows", len(rows), "duration", time.Since(start))
	return rows, nil
}

// validateHeader requires the feed header to match the expected column
// list exactly, in order. Upstream schema drift must abort the run
// before any computation, not corrupt derived data silently.
func validateHeader(got, expected []string) error {
	if len(got) != len(expected) {
		return fmt.Errorf("%w: got columns %v, expected %v", domain.ErrSchemaMismatch, got, expected)
	}
	for i := range expected {
		if got[i] != expected[i] {
			return fmt.Errorf("%w: got columns %v, expected %v", domain.ErrSchemaMismatch, got, expected)
		}
	}
	return nil
}

package feed

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/couchcryptid/covid-data-etl/internal/domain"
)

// testingRow mirrors one object of the testing feeds' JSON arrays.
// Numeric fields are frequently null upstream, especially in the early
// weeks of a series.
type testingRow struct {
	Date     int    `json:"date"`
	Fips     string `json:"fips"`
	Positive *int64 `json:"positive"`
	Negative *int64 `json:"negative"`
	Total    *int64 `json:"totalTestResults"`
	Pending  *int64 `json:"pending"`
}

// NationalTesting fetches the nation-level testing feed. Rows carry no
// fips upstream and are assigned the reserved national code.
func (c *Client) NationalTesting(ctx context.Context, url string) ([]domain.TestingRecord, error) {
	return c.fetchTesting(ctx, url, true)
}

// StateTesting fetches the state-level testing feed, keyed by each row's
// own fips code.
func (c *Client) StateTesting(ctx context.Context, url string) ([]domain.TestingRecord, error) {
	return c.fetchTesting(ctx, url, false)
}

func (c *Client) fetchTesting(ctx context.Context, url string, national bool) ([]domain.TestingRecord, error) {
	body, err := c.get(ctx, url)
	if err != nil {
		return nil, err
	}
	defer body.Close()

	var rows []testingRow
	if err := json.NewDecoder(body).Decode(&rows); err != nil {
		return nil, fmt.Errorf("%w: decode %s: %v", domain.ErrFetchFailure, url, err)
	}

	records := make([]domain.TestingRecord, 0, len(rows))
	skipped := 0
	for _, row := range rows {
		date, ok := domain.NormalizeCompactDate(row.Date)
		if !ok {
			skipped++
			continue
		}
		code := domain.NationalCode
		if !national {
			code = domain.PadCode(row.Fips)
		}
		records = append(records, domain.TestingRecord{
			Code:     code,
			Date:     date,
			Positive: row.Positive,
			Negative: row.Negative,
			Total:    row.Total,
			Pending:  row.Pending,
		})
	}
	if skipped > 0 {
		c.logger.Warn("skipped testing rows with malformed dates", "url", url, "skipped", skipped)
	}
	return records, nil
}

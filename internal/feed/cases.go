package feed

import (
	"context"

	"github.com/couchcryptid/covid-data-etl/internal/domain"
)

// Expected header contracts for the case feeds. Any deviation is a
// schema mismatch and aborts the run.
var (
	nationalHeader = []string{"date", "cases", "deaths"}
	stateHeader    = []string{"date", "state", "fips", "cases", "deaths"}
	countyHeader   = []string{"date", "county", "state", "fips", "cases", "deaths"}
)

// NationalCases fetches the nation-level case feed. Rows are assigned
// the reserved national region code and name so the national series
// flows through the pipeline like any state.
func (c *Client) NationalCases(ctx context.Context, url string) ([]domain.CaseRecord, error) {
	rows, err := c.fetchCSV(ctx, url, nationalHeader)
	if err != nil {
		return nil, err
	}

	records := make([]domain.CaseRecord, len(rows))
	for i, row := range rows {
		records[i] = domain.CaseRecord{
			Date:   row[0],
			Name:   domain.NationalName,
			Code:   domain.NationalCode,
			Cases:  domain.ParseCount(row[1]),
			Deaths: domain.ParseCount(row[2]),
		}
	}
	return records, nil
}

// StateCases fetches the state-level case feed.
func (c *Client) StateCases(ctx context.Context, url string) ([]domain.CaseRecord, error) {
	rows, err := c.fetchCSV(ctx, url, stateHeader)
	if err != nil {
		return nil, err
	}

	records := make([]domain.CaseRecord, len(rows))
	for i, row := range rows {
		records[i] = domain.CaseRecord{
			Date:   row[0],
			Name:   row[1],
			Code:   domain.PadCode(row[2]),
			Cases:  domain.ParseCount(row[3]),
			Deaths: domain.ParseCount(row[4]),
		}
	}
	return records, nil
}

// CountyCases fetches the county-level case feed. The feed's own fips
// column is a county code, not the state code counties are keyed by
// downstream, so Code is left empty here; the pipeline resolves it from
// the state name through the region index.
func (c *Client) CountyCases(ctx context.Context, url string) ([]domain.CountyRecord, error) {
	rows, err := c.fetchCSV(ctx, url, countyHeader)
	if err != nil {
		return nil, err
	}

	records := make([]domain.CountyRecord, len(rows))
	for i, row := range rows {
		records[i] = domain.CountyRecord{
			Date:   row[0],
			County: row[1],
			State:  row[2],
			Cases:  domain.ParseCount(row[4]),
			Deaths: domain.ParseCount(row[5]),
		}
	}
	return records, nil
}

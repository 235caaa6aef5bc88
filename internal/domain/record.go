package domain

// NationalCode is the reserved region code for the national aggregate.
const NationalCode = "00"

// NationalName is the display name used for the national aggregate.
const NationalName = "US"

// CaseRecord is one row of a case feed: cumulative case and death counts
// for a region on a date. Counts are nil when the raw field was missing
// or non-numeric.
type CaseRecord struct {
	Date   string // YYYY-MM-DD
	Name   string // region display name, e.g. "Washington" or "US"
	Code   string // zero-padded FIPS code, "00" for the national aggregate
	Cases  *int64
	Deaths *int64
}

// CountyRecord is one row of the county case feed. County identity is the
// composite (state code, county name); counties carry no code of their own.
type CountyRecord struct {
	Date   string // YYYY-MM-DD
	County string
	State  string // state display name
	Code   string // state FIPS code
	Cases  *int64
	Deaths *int64
}

// TestingRecord is one row of a testing feed, keyed by region code and
// date. Total is the feed's explicit cumulative test count when it
// supplies one; Tests() reconstructs it from the components otherwise.
type TestingRecord struct {
	Code     string
	Date     string // YYYY-MM-DD, normalized from the feed's YYYYMMDD form
	Positive *int64
	Negative *int64
	Total    *int64
	Pending  *int64
}

// Tests returns the cumulative test count: the explicit total when
// present, otherwise positive + negative, otherwise nil.
func (r TestingRecord) Tests() *int64 {
	if r.Total != nil {
		return r.Total
	}
	if r.Positive == nil && r.Negative == nil {
		return nil
	}
	var sum int64
	if r.Positive != nil {
		sum += *r.Positive
	}
	if r.Negative != nil {
		sum += *r.Negative
	}
	return &sum
}

// TestingFields holds the testing columns of a unified row, cumulative
// and derived. Attached to a UnifiedRow only when a testing record
// matched that region and date.
type TestingFields struct {
	Tests       *int64
	NewTests    *int64
	Positive    *int64
	NewPositive *int64
	Negative    *int64
	NewNegative *int64
	Pending     *int64
}

// UnifiedRow joins a CaseRecord with its derived deltas and, when the
// testing feed had a matching entry, the testing fields.
type UnifiedRow struct {
	CaseRecord
	NewCases  *int64
	NewDeaths *int64
	Testing   *TestingFields
}

// CountyRow is a CountyRecord with its derived deltas. Counties never
// carry testing data.
type CountyRow struct {
	CountyRecord
	NewCases  *int64
	NewDeaths *int64
}

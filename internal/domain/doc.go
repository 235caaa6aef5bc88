// Package domain models US COVID-19 case and testing time series.
//
// # Data Sources
//
// Case and death counts come from the New York Times covid-19-data CSV
// feeds (us.csv, us-states.csv, us-counties.csv). Each row carries a
// calendar date and cumulative counts — running totals, never deltas.
// Cumulative counts are assumed monotonically non-decreasing within a
// region's date-ordered series; this is not enforced, and upstream
// corrections occasionally produce negative day-over-day differences.
//
// Testing totals come from the COVID Tracking Project daily JSON feeds
// (us/daily.json, states/daily.json). Testing rows are keyed by a FIPS
// region code and a compact 8-digit integer date (20200315), which is
// normalized to the case feeds' YYYY-MM-DD form before any join.
// Testing data exists only for states and the national aggregate, never
// for counties.
//
// # Region Identity
//
// States are identified by a zero-padded two-digit FIPS code. The code
// "00" is reserved for the national aggregate, display name "US", so the
// national series flows through the same pipeline as any state. Counties
// have no stable code of their own in the case feed; their identity is
// the composite (state FIPS, county name), since county names repeat
// across states.
//
// # Derived Metrics
//
// Every cumulative metric gets a day-over-day first difference (new
// cases, new deaths, new tests, ...). The first record of a region's
// series is a delta from an implicit zero baseline, so its new-metric
// equals its cumulative metric. Later records subtract the immediately
// preceding record in date order; skipped dates are not gap-filled.
// Missing or non-numeric cumulative values yield a null derived value
// rather than an error.
package domain

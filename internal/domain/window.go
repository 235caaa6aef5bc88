package domain

import (
	"fmt"
	"time"
)

const dateLayout = "2006-01-02"

// LatestDate returns the maximum date across the given case records.
// YYYY-MM-DD strings order lexicographically, so no parsing is needed.
func LatestDate(rows []CaseRecord) string {
	var latest string
	for _, r := range rows {
		if r.Date > latest {
			latest = r.Date
		}
	}
	return latest
}

// CutoffDate computes the trailing-window cutoff: latest minus the
// window plus a lookback margin. The extra lookback days give a
// downstream moving average lead-in data for its first displayed point;
// trimming the displayed range is the consumer's concern, not ours.
func CutoffDate(latest string, windowDays, lookbackDays int) (string, error) {
	t, err := time.Parse(dateLayout, latest)
	if err != nil {
		return "", fmt.Errorf("parse latest date %q: %w", latest, err)
	}
	return t.AddDate(0, 0, -(windowDays + lookbackDays)).Format(dateLayout), nil
}

// TrailingWindow returns the subset of rows with date >= cutoff. Rows
// are returned as-is, so a trailing row serializes byte-identical to its
// full-history counterpart.
func TrailingWindow(rows []UnifiedRow, cutoff string) []UnifiedRow {
	out := make([]UnifiedRow, 0, len(rows))
	for _, r := range rows {
		if r.Date >= cutoff {
			out = append(out, r)
		}
	}
	return out
}

// TrailingCountyWindow is TrailingWindow for county rows.
func TrailingCountyWindow(rows []CountyRow, cutoff string) []CountyRow {
	out := make([]CountyRow, 0, len(rows))
	for _, r := range rows {
		if r.Date >= cutoff {
			out = append(out, r)
		}
	}
	return out
}

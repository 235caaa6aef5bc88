package domain

import "time"

// RunSummary describes one completed extract run. Published to the
// optional notification topic so downstream consumers can invalidate
// caches without polling the output files.
type RunSummary struct {
	LatestDate        string    `json:"latest_date"`
	CutoffDate        string    `json:"cutoff_date"`
	StateRows         int       `json:"state_rows"`
	StateRecentRows   int       `json:"state_recent_rows"`
	CountyRows        int       `json:"county_rows"`
	CountyRecentRows  int       `json:"county_recent_rows"`
	CountyRowsDropped int       `json:"county_rows_dropped"`
	StartedAt         time.Time `json:"started_at"`
	CompletedAt       time.Time `json:"completed_at"`
}

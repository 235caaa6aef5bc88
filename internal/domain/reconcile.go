package domain

// TestingLookup indexes testing records by region code, then by
// normalized date.
type TestingLookup map[string]map[string]TestingRecord

// BuildTestingLookup indexes testing records for the reconciliation
// join. Duplicate (code, date) pairs collapse last-write-wins, matching
// the upstream feed's occasional republished rows.
func BuildTestingLookup(records []TestingRecord) TestingLookup {
	lookup := make(TestingLookup)
	for _, r := range records {
		byDate, ok := lookup[r.Code]
		if !ok {
			byDate = make(map[string]TestingRecord)
			lookup[r.Code] = byDate
		}
		byDate[r.Date] = r
	}
	return lookup
}

// Reconcile joins case records with testing records on (code, date),
// producing one UnifiedRow per case record in input order. Rows without
// a matching testing record — including every row of a region the
// testing feed does not cover — get a nil Testing field. Derived deltas
// are left nil; ComputeDeltas fills them.
func Reconcile(cases []CaseRecord, testing TestingLookup) []UnifiedRow {
	rows := make([]UnifiedRow, len(cases))
	for i, c := range cases {
		row := UnifiedRow{CaseRecord: c}
		if byDate, ok := testing[c.Code]; ok {
			if t, ok := byDate[c.Date]; ok {
				row.Testing = &TestingFields{
					Tests:    t.Tests(),
					Positive: t.Positive,
					Negative: t.Negative,
					Pending:  t.Pending,
				}
			}
		}
		rows[i] = row
	}
	return rows
}

package domain

// deltaState carries the last observed cumulative values for one region
// series. A value updates only when a record actually carries it, so a
// malformed cell neither produces a bogus delta nor poisons the next one.
type deltaState struct {
	cases, deaths             *int64
	tests, positive, negative *int64
}

// diff computes a first difference. A nil current value yields nil; a
// nil previous value means this is the series' first carrier of the
// metric, treated as a delta from an implicit zero baseline.
func diff(cur, prev *int64) *int64 {
	if cur == nil {
		return nil
	}
	if prev == nil {
		v := *cur
		return &v
	}
	v := *cur - *prev
	return &v
}

// advance returns cur when present, otherwise keeps prev.
func advance(prev, cur *int64) *int64 {
	if cur != nil {
		return cur
	}
	return prev
}

// ComputeDeltas fills the derived new-metric fields of unified rows.
// Rows are grouped by region code; each region's rows are assumed
// already sorted by ascending date. Deltas subtract the region's
// preceding record with no gap-filling of skipped dates, and one
// region's state never leaks into another's.
func ComputeDeltas(rows []UnifiedRow) []UnifiedRow {
	state := make(map[string]*deltaState)
	out := make([]UnifiedRow, len(rows))
	for i, row := range rows {
		st, ok := state[row.Code]
		if !ok {
			st = &deltaState{}
			state[row.Code] = st
		}

		row.NewCases = diff(row.Cases, st.cases)
		row.NewDeaths = diff(row.Deaths, st.deaths)
		st.cases = advance(st.cases, row.Cases)
		st.deaths = advance(st.deaths, row.Deaths)

		if row.Testing != nil {
			t := *row.Testing
			t.NewTests = diff(t.Tests, st.tests)
			t.NewPositive = diff(t.Positive, st.positive)
			t.NewNegative = diff(t.Negative, st.negative)
			st.tests = advance(st.tests, t.Tests)
			st.positive = advance(st.positive, t.Positive)
			st.negative = advance(st.negative, t.Negative)
			row.Testing = &t
		}

		out[i] = row
	}
	return out
}

// ComputeCountyDeltas fills the derived fields of county rows. Grouping
// is by the composite (state code, county name) since county names are
// not globally unique.
func ComputeCountyDeltas(records []CountyRecord) []CountyRow {
	state := make(map[string]*deltaState)
	out := make([]CountyRow, len(records))
	for i, rec := range records {
		key := rec.Code + "|" + rec.County
		st, ok := state[key]
		if !ok {
			st = &deltaState{}
			state[key] = st
		}

		row := CountyRow{CountyRecord: rec}
		row.NewCases = diff(rec.Cases, st.cases)
		row.NewDeaths = diff(rec.Deaths, st.deaths)
		st.cases = advance(st.cases, rec.Cases)
		st.deaths = advance(st.deaths, rec.Deaths)

		out[i] = row
	}
	return out
}

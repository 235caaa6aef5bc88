package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComputeDeltas(t *testing.T) {
	t.Run("first record is delta from zero", func(t *testing.T) {
		rows := ComputeDeltas([]UnifiedRow{
			{CaseRecord: CaseRecord{Date: "2020-01-01", Code: NationalCode, Cases: i64(1), Deaths: i64(0)}},
			{CaseRecord: CaseRecord{Date: "2020-01-02", Code: NationalCode, Cases: i64(3), Deaths: i64(1)}},
		})

		require.Len(t, rows, 2)
		assert.Equal(t, int64(1), *rows[0].NewCases)
		assert.Equal(t, int64(0), *rows[0].NewDeaths)
		assert.Equal(t, int64(2), *rows[1].NewCases)
		assert.Equal(t, int64(1), *rows[1].NewDeaths)
	})

	t.Run("regions do not share state", func(t *testing.T) {
		rows := ComputeDeltas([]UnifiedRow{
			{CaseRecord: CaseRecord{Date: "2020-03-01", Code: "53", Cases: i64(100)}},
			{CaseRecord: CaseRecord{Date: "2020-03-01", Code: "06", Cases: i64(7)}},
			{CaseRecord: CaseRecord{Date: "2020-03-02", Code: "53", Cases: i64(110)}},
			{CaseRecord: CaseRecord{Date: "2020-03-02", Code: "06", Cases: i64(9)}},
		})

		assert.Equal(t, int64(100), *rows[0].NewCases)
		assert.Equal(t, int64(7), *rows[1].NewCases)
		assert.Equal(t, int64(10), *rows[2].NewCases)
		assert.Equal(t, int64(2), *rows[3].NewCases)
	})

	t.Run("skipped dates are not gap-filled", func(t *testing.T) {
		rows := ComputeDeltas([]UnifiedRow{
			{CaseRecord: CaseRecord{Date: "2020-03-01", Code: "53", Cases: i64(10)}},
			{CaseRecord: CaseRecord{Date: "2020-03-05", Code: "53", Cases: i64(25)}},
		})

		// The delta spans the gap in one step.
		assert.Equal(t, int64(15), *rows[1].NewCases)
	})

	t.Run("nil cumulative yields nil delta", func(t *testing.T) {
		rows := ComputeDeltas([]UnifiedRow{
			{CaseRecord: CaseRecord{Date: "2020-03-01", Code: "53", Cases: i64(10)}},
			{CaseRecord: CaseRecord{Date: "2020-03-02", Code: "53", Cases: nil}},
			{CaseRecord: CaseRecord{Date: "2020-03-03", Code: "53", Cases: i64(14)}},
		})

		assert.Nil(t, rows[1].NewCases)
		// The malformed row does not reset the baseline.
		require.NotNil(t, rows[2].NewCases)
		assert.Equal(t, int64(4), *rows[2].NewCases)
	})

	t.Run("upstream correction gives a negative delta", func(t *testing.T) {
		rows := ComputeDeltas([]UnifiedRow{
			{CaseRecord: CaseRecord{Date: "2020-03-01", Code: "53", Cases: i64(10)}},
			{CaseRecord: CaseRecord{Date: "2020-03-02", Code: "53", Cases: i64(8)}},
		})

		assert.Equal(t, int64(-2), *rows[1].NewCases)
	})
}

func TestComputeDeltas_TestingMetrics(t *testing.T) {
	t.Run("first carrier is delta from zero", func(t *testing.T) {
		rows := ComputeDeltas([]UnifiedRow{
			{
				CaseRecord: CaseRecord{Date: "2020-03-01", Code: "53", Cases: i64(5)},
				Testing:    &TestingFields{Tests: i64(150), Positive: i64(100), Negative: i64(50)},
			},
			{
				CaseRecord: CaseRecord{Date: "2020-03-02", Code: "53", Cases: i64(8)},
				Testing:    &TestingFields{Tests: i64(200), Positive: i64(120), Negative: i64(80)},
			},
		})

		require.NotNil(t, rows[0].Testing)
		assert.Equal(t, int64(150), *rows[0].Testing.NewTests)
		assert.Equal(t, int64(100), *rows[0].Testing.NewPositive)
		assert.Equal(t, int64(50), *rows[0].Testing.NewNegative)
		assert.Equal(t, int64(50), *rows[1].Testing.NewTests)
		assert.Equal(t, int64(20), *rows[1].Testing.NewPositive)
		assert.Equal(t, int64(30), *rows[1].Testing.NewNegative)
	})

	t.Run("rows without testing do not break the testing baseline", func(t *testing.T) {
		rows := ComputeDeltas([]UnifiedRow{
			{
				CaseRecord: CaseRecord{Date: "2020-03-01", Code: "53", Cases: i64(5)},
				Testing:    &TestingFields{Tests: i64(100)},
			},
			{CaseRecord: CaseRecord{Date: "2020-03-02", Code: "53", Cases: i64(6)}},
			{
				CaseRecord: CaseRecord{Date: "2020-03-03", Code: "53", Cases: i64(7)},
				Testing:    &TestingFields{Tests: i64(130)},
			},
		})

		assert.Nil(t, rows[1].Testing)
		require.NotNil(t, rows[2].Testing)
		assert.Equal(t, int64(30), *rows[2].Testing.NewTests)
	})

	t.Run("input testing fields are not mutated", func(t *testing.T) {
		original := &TestingFields{Tests: i64(100)}
		ComputeDeltas([]UnifiedRow{
			{CaseRecord: CaseRecord{Date: "2020-03-01", Code: "53"}, Testing: original},
		})
		assert.Nil(t, original.NewTests)
	})
}

func TestComputeCountyDeltas(t *testing.T) {
	records := []CountyRecord{
		{Date: "2020-03-01", County: "King", State: "Washington", Code: "53", Cases: i64(10), Deaths: i64(1)},
		{Date: "2020-03-01", County: "King", State: "Texas", Code: "48", Cases: i64(3)},
		{Date: "2020-03-02", County: "King", State: "Washington", Code: "53", Cases: i64(15), Deaths: i64(1)},
		{Date: "2020-03-02", County: "King", State: "Texas", Code: "48", Cases: i64(4)},
	}

	rows := ComputeCountyDeltas(records)
	require.Len(t, rows, 4)

	// Same county name in two states must track separate baselines.
	assert.Equal(t, int64(10), *rows[0].NewCases)
	assert.Equal(t, int64(3), *rows[1].NewCases)
	assert.Equal(t, int64(5), *rows[2].NewCases)
	assert.Equal(t, int64(1), *rows[3].NewCases)

	assert.Equal(t, int64(1), *rows[0].NewDeaths)
	assert.Equal(t, int64(0), *rows[2].NewDeaths)
	assert.Nil(t, rows[1].NewDeaths)
}

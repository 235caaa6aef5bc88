package pipeline_test

import (
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/covid-data-etl/internal/config"
	"github.com/couchcryptid/covid-data-etl/internal/domain"
	"github.com/couchcryptid/covid-data-etl/internal/observability"
	"github.com/couchcryptid/covid-data-etl/internal/pipeline"
)

func i64(v int64) *int64 { return &v }

// --- mocks ---

type mockFeeds struct {
	national        []domain.CaseRecord
	states          []domain.CaseRecord
	counties        []domain.CountyRecord
	nationalTesting []domain.TestingRecord
	stateTesting    []domain.TestingRecord

	err error // returned by every method when set
}

func (m *mockFeeds) NationalCases(context.Context) ([]domain.CaseRecord, error) {
	return m.national, m.err
}
func (m *mockFeeds) StateCases(context.Context) ([]domain.CaseRecord, error) {
	return m.states, m.err
}
func (m *mockFeeds) CountyCases(context.Context) ([]domain.CountyRecord, error) {
	return m.counties, m.err
}
func (m *mockFeeds) NationalTesting(context.Context) ([]domain.TestingRecord, error) {
	return m.nationalTesting, m.err
}
func (m *mockFeeds) StateTesting(context.Context) ([]domain.TestingRecord, error) {
	return m.stateTesting, m.err
}

type mockWriter struct {
	cleared      bool
	states       []domain.UnifiedRow
	statesRecent []domain.UnifiedRow
	counties     []domain.CountyRow
	countyRecent []domain.CountyRow
	clearErr     error
}

func (m *mockWriter) Clear() error {
	m.cleared = true
	return m.clearErr
}

func (m *mockWriter) WriteStates(all, recent []domain.UnifiedRow) error {
	m.states = all
	m.statesRecent = recent
	return nil
}

func (m *mockWriter) WriteCounties(all, recent []domain.CountyRow) error {
	m.counties = all
	m.countyRecent = recent
	return nil
}

type mockNotifier struct {
	summaries []domain.RunSummary
	err       error
}

func (m *mockNotifier) NotifyRunComplete(_ context.Context, s domain.RunSummary) error {
	if m.err != nil {
		return m.err
	}
	m.summaries = append(m.summaries, s)
	return nil
}

// --- fixtures ---

func testConfig() *config.Config {
	return &config.Config{
		WindowDays:       90,
		LookbackDays:     7,
		MinSeriesRows:    2,
		MinCountyRegions: 1,
	}
}

func testFeeds() *mockFeeds {
	return &mockFeeds{
		national: []domain.CaseRecord{
			{Date: "2020-01-01", Name: "US", Code: "00", Cases: i64(1), Deaths: i64(0)},
			{Date: "2020-01-02", Name: "US", Code: "00", Cases: i64(3), Deaths: i64(1)},
		},
		states: []domain.CaseRecord{
			{Date: "2020-01-01", Name: "Washington", Code: "53", Cases: i64(1), Deaths: i64(0)},
			{Date: "2020-01-02", Name: "Washington", Code: "53", Cases: i64(2), Deaths: i64(0)},
		},
		counties: []domain.CountyRecord{
			{Date: "2020-01-01", County: "King", State: "Washington", Cases: i64(1)},
			{Date: "2020-01-02", County: "King", State: "Washington", Cases: i64(2)},
		},
		stateTesting: []domain.TestingRecord{
			{Code: "53", Date: "2020-01-02", Positive: i64(100), Negative: i64(50)},
		},
	}
}

func newPipeline(feeds pipeline.FeedSource, writer pipeline.ExtractWriter, notifier pipeline.RunNotifier, cfg *config.Config) *pipeline.Pipeline {
	return pipeline.New(
		feeds, writer, notifier,
		slog.Default(),
		observability.NewMetricsForTesting(),
		clockwork.NewFakeClock(),
		cfg,
	)
}

// --- tests ---

func TestRun_HappyPath(t *testing.T) {
	feeds := testFeeds()
	writer := &mockWriter{}
	notifier := &mockNotifier{}

	p := newPipeline(feeds, writer, notifier, testConfig())
	require.NoError(t, p.Run(context.Background()))

	assert.True(t, writer.cleared)
	require.Len(t, writer.states, 4)

	t.Run("national series is prepended with the reserved code", func(t *testing.T) {
		assert.Equal(t, "00", writer.states[0].Code)
		assert.Equal(t, "US", writer.states[0].Name)
		assert.Equal(t, "53", writer.states[2].Code)
	})

	t.Run("deltas are derived", func(t *testing.T) {
		assert.Equal(t, int64(1), *writer.states[0].NewCases)
		assert.Equal(t, int64(2), *writer.states[1].NewCases)
		assert.Equal(t, int64(1), *writer.states[1].NewDeaths)
	})

	t.Run("testing fields joined with deltas", func(t *testing.T) {
		require.NotNil(t, writer.states[3].Testing)
		assert.Equal(t, int64(150), *writer.states[3].Testing.Tests)
		assert.Equal(t, int64(150), *writer.states[3].Testing.NewTests)
		assert.Nil(t, writer.states[2].Testing)
	})

	t.Run("county rows resolved and derived", func(t *testing.T) {
		require.Len(t, writer.counties, 2)
		assert.Equal(t, "53", writer.counties[0].Code)
		assert.Equal(t, int64(1), *writer.counties[1].NewCases)
	})

	t.Run("short history falls entirely inside the window", func(t *testing.T) {
		assert.Len(t, writer.statesRecent, 4)
		assert.Len(t, writer.countyRecent, 2)
	})

	t.Run("notifier got the summary", func(t *testing.T) {
		require.Len(t, notifier.summaries, 1)
		s := notifier.summaries[0]
		assert.Equal(t, "2020-01-02", s.LatestDate)
		assert.Equal(t, "2019-09-27", s.CutoffDate)
		assert.Equal(t, 4, s.StateRows)
		assert.Equal(t, 2, s.CountyRows)
		assert.Equal(t, 0, s.CountyRowsDropped)
	})
}

func TestRun_TrailingWindowCutoff(t *testing.T) {
	feeds := testFeeds()
	// Push the national series far enough ahead that the old rows fall
	// outside the 97-day cut.
	feeds.national = append(feeds.national, domain.CaseRecord{
		Date: "2020-06-30", Name: "US", Code: "00", Cases: i64(100), Deaths: i64(10),
	})
	writer := &mockWriter{}

	p := newPipeline(feeds, writer, nil, testConfig())
	require.NoError(t, p.Run(context.Background()))

	// cutoff = 2020-06-30 - 97d = 2020-03-25; only the new row survives.
	require.Len(t, writer.statesRecent, 1)
	assert.Equal(t, "2020-06-30", writer.statesRecent[0].Date)
	assert.Empty(t, writer.countyRecent)
}

func TestRun_FetchFailureAborts(t *testing.T) {
	feeds := testFeeds()
	feeds.err = domain.ErrFetchFailure
	writer := &mockWriter{}

	p := newPipeline(feeds, writer, nil, testConfig())
	err := p.Run(context.Background())

	assert.ErrorIs(t, err, domain.ErrFetchFailure)
	assert.False(t, writer.cleared, "no output may be touched after a fetch failure")
}

func TestRun_SchemaMismatchAborts(t *testing.T) {
	feeds := testFeeds()
	feeds.err = domain.ErrSchemaMismatch
	writer := &mockWriter{}

	p := newPipeline(feeds, writer, nil, testConfig())
	err := p.Run(context.Background())

	assert.ErrorIs(t, err, domain.ErrSchemaMismatch)
	assert.False(t, writer.cleared)
	assert.Nil(t, writer.states)
}

func TestRun_InsufficientData(t *testing.T) {
	t.Run("short national feed", func(t *testing.T) {
		feeds := testFeeds()
		feeds.national = feeds.national[:1]
		writer := &mockWriter{}

		err := newPipeline(feeds, writer, nil, testConfig()).Run(context.Background())
		assert.ErrorIs(t, err, domain.ErrInsufficientData)
		assert.False(t, writer.cleared)
	})

	t.Run("too few county regions", func(t *testing.T) {
		cfg := testConfig()
		cfg.MinCountyRegions = 50
		writer := &mockWriter{}

		err := newPipeline(testFeeds(), writer, nil, cfg).Run(context.Background())
		assert.ErrorIs(t, err, domain.ErrInsufficientData)
		assert.False(t, writer.cleared)
	})
}

func TestRun_UnmappedCountyRowsDropped(t *testing.T) {
	feeds := testFeeds()
	feeds.counties = append(feeds.counties, domain.CountyRecord{
		Date: "2020-01-01", County: "San Juan", State: "Puerto Rico", Cases: i64(5),
	})
	writer := &mockWriter{}
	notifier := &mockNotifier{}

	p := newPipeline(feeds, writer, notifier, testConfig())
	require.NoError(t, p.Run(context.Background()))

	// The unmapped row is excluded from every output, without aborting.
	require.Len(t, writer.counties, 2)
	for _, row := range writer.counties {
		assert.NotEqual(t, "Puerto Rico", row.State)
	}
	require.Len(t, notifier.summaries, 1)
	assert.Equal(t, 1, notifier.summaries[0].CountyRowsDropped)
}

func TestRun_NotifierFailureDoesNotFailRun(t *testing.T) {
	writer := &mockWriter{}
	notifier := &mockNotifier{err: errors.New("broker down")}

	p := newPipeline(testFeeds(), writer, notifier, testConfig())
	assert.NoError(t, p.Run(context.Background()))
	assert.NotNil(t, writer.states)
}

func TestRun_ClearFailureAborts(t *testing.T) {
	writer := &mockWriter{clearErr: errors.New("permission denied")}

	err := newPipeline(testFeeds(), writer, nil, testConfig()).Run(context.Background())
	require.Error(t, err)
	assert.Nil(t, writer.states)
}

// Package pipeline orchestrates one extract run: fetch the feeds,
// reconcile and derive, then write the extract files.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"github.com/jonboulle/clockwork"
	"golang.org/x/sync/errgroup"

	"github.com/couchcryptid/covid-data-etl/internal/config"
	"github.com/couchcryptid/covid-data-etl/internal/domain"
	"github.com/couchcryptid/covid-data-etl/internal/observability"
)

// FeedSource fetches the five upstream feeds.
type FeedSource interface {
	NationalCases(ctx context.Context) ([]domain.CaseRecord, error)
	StateCases(ctx context.Context) ([]domain.CaseRecord, error)
	CountyCases(ctx context.Context) ([]domain.CountyRecord, error)
	NationalTesting(ctx context.Context) ([]domain.TestingRecord, error)
	StateTesting(ctx context.Context) ([]domain.TestingRecord, error)
}

// ExtractWriter clears prior output and writes the extract files.
type ExtractWriter interface {
	Clear() error
	WriteStates(all, recent []domain.UnifiedRow) error
	WriteCounties(all, recent []domain.CountyRow) error
}

// RunNotifier publishes a summary of a completed run.
type RunNotifier interface {
	NotifyRunComplete(ctx context.Context, summary domain.RunSummary) error
}

// Pipeline executes a single extract run end to end.
type Pipeline struct {
	feeds    FeedSource
	writer   ExtractWriter
	notifier RunNotifier // nil when notification is disabled
	logger   *slog.Logger
	metrics  *observability.Metrics
	clock    clockwork.Clock
	cfg      *config.Config
}

// New creates a Pipeline. Pass a nil notifier to disable run-completion
// events.
func New(feeds FeedSource, writer ExtractWriter, notifier RunNotifier, logger *slog.Logger, metrics *observability.Metrics, clock clockwork.Clock, cfg *config.Config) *Pipeline {
	return &Pipeline{
		feeds:    feeds,
		writer:   writer,
		notifier: notifier,
		logger:   logger,
		metrics:  metrics,
		clock:    clock,
		cfg:      cfg,
	}
}

// feedData holds the results of the fetch fan-out.
type feedData struct {
	national        []domain.CaseRecord
	states          []domain.CaseRecord
	counties        []domain.CountyRecord
	nationalTesting []domain.TestingRecord
	stateTesting    []domain.TestingRecord
}

// Run performs one complete extract run. Any returned error means the
// run failed and the process should exit non-zero; all validation
// happens before the output directory is touched.
func (p *Pipeline) Run(ctx context.Context) error {
	started := p.clock.Now()
	p.logger.Info("extract run started")

	data, err := p.fetchFeeds(ctx)
	if err != nil {
		return err
	}
	if err := p.checkSanity(data); err != nil {
		return err
	}

	index := domain.BuildRegionIndex(data.states)
	counties, dropped := p.resolveCounties(index, data.counties)

	// The national series is just another region: prepend it with the
	// reserved code and run it through the same reconciliation.
	cases := append(append([]domain.CaseRecord{}, data.national...), data.states...)
	testing := domain.BuildTestingLookup(append(data.nationalTesting, data.stateTesting...))

	unified := domain.ComputeDeltas(domain.Reconcile(cases, testing))
	countyRows := domain.ComputeCountyDeltas(counties)

	latest := domain.LatestDate(data.national)
	cutoff, err := domain.CutoffDate(latest, p.cfg.WindowDays, p.cfg.LookbackDays)
	if err != nil {
		return err
	}
	recent := domain.TrailingWindow(unified, cutoff)
	countyRecent := domain.TrailingCountyWindow(countyRows, cutoff)

	p.logger.Info("series reconciled",
		"rows", len(unified),
		"county_rows", len(countyRows),
		"latest_date", latest,
		"cutoff_date", cutoff,
	)

	if err := p.writer.Clear(); err != nil {
		return fmt.Errorf("clear prior output: %w", err)
	}
	if err := p.writer.WriteStates(unified, recent); err != nil {
		return fmt.Errorf("write state extract: %w", err)
	}
	if err := p.writer.WriteCounties(countyRows, countyRecent); err != nil {
		return fmt.Errorf("write county extracts: %w", err)
	}

	p.metrics.RowsWritten.WithLabelValues("states").Add(float64(len(unified)))
	p.metrics.RowsWritten.WithLabelValues("states_recent").Add(float64(len(recent)))
	p.metrics.RowsWritten.WithLabelValues("counties").Add(float64(len(countyRows)))
	p.metrics.RowsWritten.WithLabelValues("counties_recent").Add(float64(len(countyRecent)))
	p.metrics.RunDuration.Observe(p.clock.Since(started).Seconds())
	p.metrics.LastSuccess.Set(float64(p.clock.Now().Unix()))

	summary := domain.RunSummary{
		LatestDate:        latest,
		CutoffDate:        cutoff,
		StateRows:         len(unified),
		StateRecentRows:   len(recent),
		CountyRows:        len(countyRows),
		CountyRecentRows:  len(countyRecent),
		CountyRowsDropped: dropped,
		StartedAt:         started,
		CompletedAt:       p.clock.Now(),
	}
	if p.notifier != nil {
		if err := p.notifier.NotifyRunComplete(ctx, summary); err != nil {
			// The extract files are already in place; a lost
			// notification is not worth failing the run over.
			p.logger.Warn("run notification failed", "error", err)
		}
	}

	p.logger.Info("extract run complete", "duration", p.clock.Since(started), "latest_date", latest)
	return nil
}

// fetchFeeds retrieves all five feeds concurrently. The sources are
// unrelated services, so the fan-out shares no state; everything must
// land before reconciliation starts.
func (p *Pipeline) fetchFeeds(ctx context.Context) (feedData, error) {
	var data feedData
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() (err error) {
		data.national, err = p.feeds.NationalCases(ctx)
		return err
	})
	g.Go(func() (err error) {
		data.states, err = p.feeds.StateCases(ctx)
		return err
	})
	g.Go(func() (err error) {
		data.counties, err = p.feeds.CountyCases(ctx)
		return err
	})
	g.Go(func() (err error) {
		data.nationalTesting, err = p.feeds.NationalTesting(ctx)
		return err
	})
	g.Go(func() (err error) {
		data.stateTesting, err = p.feeds.StateTesting(ctx)
		return err
	})

	if err := g.Wait(); err != nil {
		return feedData{}, err
	}

	p.metrics.RowsFetched.WithLabelValues("national_cases").Add(float64(len(data.national)))
	p.metrics.RowsFetched.WithLabelValues("state_cases").Add(float64(len(data.states)))
	p.metrics.RowsFetched.WithLabelValues("county_cases").Add(float64(len(data.counties)))
	p.metrics.RowsFetched.WithLabelValues("national_testing").Add(float64(len(data.nationalTesting)))
	p.metrics.RowsFetched.WithLabelValues("state_testing").Add(float64(len(data.stateTesting)))

	return data, nil
}

// checkSanity rejects truncated or empty upstream responses before any
// computation or output clearing happens.
func (p *Pipeline) checkSanity(data feedData) error {
	if len(data.national) < p.cfg.MinSeriesRows {
		return fmt.Errorf("%w: national feed has %d rows, need at least %d",
			domain.ErrInsufficientData, len(data.national), p.cfg.MinSeriesRows)
	}
	if len(data.states) < p.cfg.MinSeriesRows {
		return fmt.Errorf("%w: state feed has %d rows, need at least %d",
			domain.ErrInsufficientData, len(data.states), p.cfg.MinSeriesRows)
	}

	regions := make(map[string]struct{})
	for _, r := range data.counties {
		regions[r.State] = struct{}{}
	}
	if len(regions) < p.cfg.MinCountyRegions {
		return fmt.Errorf("%w: county feed covers %d regions, need at least %d",
			domain.ErrInsufficientData, len(regions), p.cfg.MinCountyRegions)
	}
	return nil
}

// resolveCounties assigns each county row its state's region code.
// Rows naming a state absent from the index are dropped rather than
// aborting the run: upstream feed drift over one territory should not
// block the national refresh.
func (p *Pipeline) resolveCounties(index domain.RegionIndex, records []domain.CountyRecord) ([]domain.CountyRecord, int) {
	resolved := make([]domain.CountyRecord, 0, len(records))
	unknown := make(map[string]struct{})
	dropped := 0

	for _, rec := range records {
		code, ok := index.Resolve(rec.State)
		if !ok {
			unknown[rec.State] = struct{}{}
			dropped++
			continue
		}
		rec.Code = code
		resolved = append(resolved, rec)
	}

	if dropped > 0 {
		names := make([]string, 0, len(unknown))
		for name := range unknown {
			names = append(names, name)
		}
		sort.Strings(names)
		p.logger.Warn("dropped county rows with unmapped state names",
			"rows", dropped, "states", names)
		p.metrics.CountyRowsDropped.Add(float64(dropped))
	}

	return resolved, dropped
}

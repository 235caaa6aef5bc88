// Package extract serializes the final row sets to the dashboard's file
// layout: a national+state extract in two variants at the output root,
// and per-region county extracts under two directories.
package extract

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strconv"

	"github.com/couchcryptid/covid-data-etl/internal/domain"
)

const (
	statesFile       = "states.csv"
	statesRecentFile = "states_recent.csv"
	countiesDir      = "counties"
	countiesRecent   = "counties_recent"
)

var stateColumns = []string{
	"date", "name", "fips",
	"cases", "new_cases", "deaths", "new_deaths",
	"tests", "new_tests", "positive", "new_positive",
	"negative", "new_negative", "pending",
}

var countyColumns = []string{
	"date", "county", "state", "fips",
	"cases", "new_cases", "deaths", "new_deaths",
}

// Writer emits the extract files beneath a single output directory.
type Writer struct {
	dir    string
	logger *slog.Logger
}

// NewWriter creates a Writer rooted at dir. The directory is created on
// the first write.
func NewWriter(dir string, logger *slog.Logger) *Writer {
	return &Writer{dir: dir, logger: logger}
}

// Clear removes prior output. State files are deleted individually; the
// county directories are removed wholesale because the set of region
// codes can change between runs, leaving stale per-code files behind
// otherwise.
func (w *Writer) Clear() error {
	for _, name := range []string{statesFile, statesRecentFile} {
		if err := os.Remove(filepath.Join(w.dir, name)); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("remove %s: %w", name, err)
		}
	}
	for _, name := range []string{countiesDir, countiesRecent} {
		if err := os.RemoveAll(filepath.Join(w.dir, name)); err != nil {
			return fmt.Errorf("clear %s: %w", name, err)
		}
	}
	return nil
}

// WriteStates writes the national+state extract, full history and
// trailing window.
func (w *Writer) WriteStates(all, recent []domain.UnifiedRow) error {
	if err := os.MkdirAll(w.dir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	if err := w.writeStateFile(filepath.Join(w.dir, statesFile), all); err != nil {
		return err
	}
	if err := w.writeStateFile(filepath.Join(w.dir, statesRecentFile), recent); err != nil {
		return err
	}
	w.logger.Info("wrote state extract", "rows", len(all), "recent_rows", len(recent))
	return nil
}

// WriteCounties writes one full-history and one trailing-window file per
// state region code, named <code>.csv.
func (w *Writer) WriteCounties(all, recent []domain.CountyRow) error {
	if err := w.writeCountyDir(filepath.Join(w.dir, countiesDir), all); err != nil {
		return err
	}
	if err := w.writeCountyDir(filepath.Join(w.dir, countiesRecent), recent); err != nil {
		return err
	}
	w.logger.Info("wrote county extracts", "rows", len(all), "recent_rows", len(recent))
	return nil
}

func (w *Writer) writeStateFile(path string, rows []domain.UnifiedRow) error {
	records := make([][]string, 0, len(rows)+1)
	records = append(records, stateColumns)
	for _, r := range rows {
		rec := []string{
			r.Date, r.Name, r.Code,
			formatCount(r.Cases), formatCount(r.NewCases),
			formatCount(r.Deaths), formatCount(r.NewDeaths),
		}
		if t := r.Testing; t != nil {
			rec = append(rec,
				formatCount(t.Tests), formatCount(t.NewTests),
				formatCount(t.Positive), formatCount(t.NewPositive),
				formatCount(t.Negative), formatCount(t.NewNegative),
				formatCount(t.Pending),
			)
		} else {
			rec = append(rec, "", "", "", "", "", "", "")
		}
		records = append(records, rec)
	}
	return writeCSV(path, records)
}

func (w *Writer) writeCountyDir(dir string, rows []domain.CountyRow) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create %s: %w", dir, err)
	}

	byCode := make(map[string][]domain.CountyRow)
	for _, r := range rows {
		byCode[r.Code] = append(byCode[r.Code], r)
	}

	codes := make([]string, 0, len(byCode))
	for code := range byCode {
		codes = append(codes, code)
	}
	sort.Strings(codes)

	for _, code := range codes {
		records := make([][]string, 0, len(byCode[code])+1)
		records = append(records, countyColumns)
		for _, r := range byCode[code] {
			records = append(records, []string{
				r.Date, r.County, r.State, r.Code,
				formatCount(r.Cases), formatCount(r.NewCases),
				formatCount(r.Deaths), formatCount(r.NewDeaths),
			})
		}
		if err := writeCSV(filepath.Join(dir, code+".csv"), records); err != nil {
			return err
		}
	}
	return nil
}

func writeCSV(path string, records [][]string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}

	cw := csv.NewWriter(f)
	if err := cw.WriteAll(records); err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close %s: %w", path, err)
	}
	return nil
}

// formatCount serializes a nullable count; nulls become empty fields.
func formatCount(v *int64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatInt(*v, 10)
}

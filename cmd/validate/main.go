// Command validate performs offline integrity checks over a produced
// extract directory: header contracts, per-region delta consistency,
// and the trailing-window subset property. Useful after changing the
// pipeline or when a downstream consumer reports suspect numbers.
//
// Usage:
//
//	go run ./cmd/validate -extract-dir data/extract
package main

import (
	"encoding/csv"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
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

// phase tracks pass/fail for a validation phase.
type phase struct {
	name   string
	errors []string
}

func (p *phase) errorf(format string, args ...any) {
	p.errors = append(p.errors, fmt.Sprintf(format, args...))
}

func (p *phase) passed() bool { return len(p.errors) == 0 }

func main() {
	extractDir := flag.String("extract-dir", "data/extract", "directory containing the extract files")
	flag.Parse()

	phases := []*phase{
		validateStates(*extractDir),
		validateTrailingSubset(*extractDir),
		validateCounties(*extractDir),
	}

	failed := false
	for _, p := range phases {
		if p.passed() {
			fmt.Printf("PASS %s\n", p.name)
			continue
		}
		failed = true
		fmt.Printf("FAIL %s\n", p.name)
		for _, e := range p.errors {
			fmt.Printf("  - %s\n", e)
		}
	}
	if failed {
		os.Exit(1)
	}
}

func readExtract(p *phase, path string, columns []string) [][]string {
	f, err := os.Open(path)
	if err != nil {
		p.errorf("open %s: %v", path, err)
		return nil
	}
	defer f.Close()

	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		p.errorf("parse %s: %v", path, err)
		return nil
	}
	if len(records) == 0 {
		p.errorf("%s is empty", path)
		return nil
	}
	if strings.Join(records[0], ",") != strings.Join(columns, ",") {
		p.errorf("%s header %v does not match %v", path, records[0], columns)
		return nil
	}
	return records[1:]
}

// validateStates replays the delta computation over the cumulative
// columns and checks the derived columns agree.
func validateStates(dir string) *phase {
	p := &phase{name: "state extract delta consistency"}
	rows := readExtract(p, filepath.Join(dir, "states.csv"), stateColumns)
	if rows == nil {
		return p
	}

	type prev struct{ cases, deaths *int64 }
	last := make(map[string]*prev)

	for i, row := range rows {
		code := row[2]
		st, ok := last[code]
		if !ok {
			st = &prev{}
			last[code] = st
		}
		checkDelta(p, i, code+" new_cases", row[3], row[4], &st.cases)
		checkDelta(p, i, code+" new_deaths", row[5], row[6], &st.deaths)
	}
	return p
}

// checkDelta verifies derived = cumulative - previous cumulative (or
// the cumulative itself for a region's first carrier of the metric),
// and advances the baseline.
func checkDelta(p *phase, rowIdx int, label, cumulative, derived string, baseline **int64) {
	cur := parseCount(cumulative)
	if cur == nil {
		if derived != "" {
			p.errorf("row %d: %s is %q but cumulative is null", rowIdx, label, derived)
		}
		return
	}

	want := *cur
	if *baseline != nil {
		want = *cur - **baseline
	}
	got := parseCount(derived)
	if got == nil || *got != want {
		p.errorf("row %d: %s = %q, want %d", rowIdx, label, derived, want)
	}
	*baseline = cur
}

// validateTrailingSubset checks every trailing data row appears
// byte-identical in the full-history file, and that both files agree on
// the most recent date.
func validateTrailingSubset(dir string) *phase {
	p := &phase{name: "trailing window is a subset of full history"}

	allLines := readLines(p, filepath.Join(dir, "states.csv"))
	recentLines := readLines(p, filepath.Join(dir, "states_recent.csv"))
	if allLines == nil || recentLines == nil {
		return p
	}

	full := make(map[string]struct{}, len(allLines))
	for _, line := range allLines {
		full[line] = struct{}{}
	}
	for i, line := range recentLines[1:] {
		if _, ok := full[line]; !ok {
			p.errorf("trailing row %d not present in full history: %s", i, line)
		}
	}

	if maxDate(allLines[1:]) != maxDate(recentLines[1:]) {
		p.errorf("latest date differs between full history and trailing window")
	}
	return p
}

func validateCounties(dir string) *phase {
	p := &phase{name: "county extracts"}

	entries, err := os.ReadDir(filepath.Join(dir, "counties"))
	if err != nil {
		p.errorf("read counties dir: %v", err)
		return p
	}

	for _, entry := range entries {
		code := strings.TrimSuffix(entry.Name(), ".csv")
		rows := readExtract(p, filepath.Join(dir, "counties", entry.Name()), countyColumns)
		for i, row := range rows {
			if row[3] != code {
				p.errorf("%s row %d: fips %q does not match filename", entry.Name(), i, row[3])
			}
		}
	}
	return p
}

func readLines(p *phase, path string) []string {
	data, err := os.ReadFile(path)
	if err != nil {
		p.errorf("read %s: %v", path, err)
		return nil
	}
	lines := strings.Split(strings.TrimRight(string(data), "\n"), "\n")
	if len(lines) < 1 {
		p.errorf("%s is empty", path)
		return nil
	}
	return lines
}

func maxDate(lines []string) string {
	var latest string
	for _, line := range lines {
		if date, _, ok := strings.Cut(line, ","); ok && date > latest {
			latest = date
		}
	}
	return latest
}

func parseCount(s string) *int64 {
	if s == "" {
		return nil
	}
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return nil
	}
	return &v
}

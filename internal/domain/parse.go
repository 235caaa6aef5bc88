package domain

import (
	"strconv"
	"strings"
)

// ParseCount coerces a raw feed field to a cumulative count. Empty and
// non-numeric values become nil, never an error: a single malformed cell
// should not abort a run that already passed the schema check.
func ParseCount(s string) *int64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return nil
	}
	return &v
}

// NormalizeCompactDate converts a testing feed's 8-digit integer date
// (20200315) to the case feeds' YYYY-MM-DD form. Returns false when the
// value is not an 8-digit date.
func NormalizeCompactDate(d int) (string, bool) {
	if d < 10000000 || d > 99999999 {
		return "", false
	}
	s := strconv.Itoa(d)
	return s[:4] + "-" + s[4:6] + "-" + s[6:], true
}

// PadCode zero-pads a numeric region code to two digits so that codes
// arriving as "6" and "06" key the same region.
func PadCode(s string) string {
	s = strings.TrimSpace(s)
	if len(s) == 1 {
		return "0" + s
	}
	return s
}

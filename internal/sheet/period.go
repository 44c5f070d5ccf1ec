package sheet

import (
	"sort"
	"strconv"
	"strings"
	"time"
)

// Month is a calendar year-month in "2006-01" form, the period unit used to
// filter source rows.
type Month string

// MonthOf returns the Month containing t.
func MonthOf(t time.Time) Month {
	return Month(t.Format("2006-01"))
}

// Contains reports whether t falls inside the month.
func (m Month) Contains(t time.Time) bool {
	return MonthOf(t) == m
}

// dateLayouts are tried in order; day-first layouts come first, matching the
// locale convention of the source files.
var dateLayouts = []string{
	"02/01/2006 15:04:05",
	"02/01/2006 15:04",
	"02/01/2006",
	"2/1/2006",
	"02-01-2006",
	"2-1-2006",
	"02.01.2006",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02",
	"02-01-06",
	"01-02-06", // tealeg's default short date rendering (month first)
}

// excel serial date range worth trusting: 1954..2064 roughly
const (
	serialMin = 20000
	serialMax = 60000
)

// ParseDate parses a cell tolerantly as a date, trying day-first layouts
// first, then Excel serial day numbers. The second return is false when the
// cell is not a recognizable date.
func ParseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	if serial, err := strconv.ParseFloat(s, 64); err == nil && serial >= serialMin && serial <= serialMax {
		epoch := time.Date(1899, time.December, 30, 0, 0, 0, 0, time.UTC)
		return epoch.AddDate(0, 0, int(serial)), true
	}
	return time.Time{}, false
}

// FindDateColumn locates the date column of a raw table: a header named
// "data" or "date", otherwise the first column where most non-empty cells
// parse as dates. Returns -1 when the table carries no dates.
func FindDateColumn(t RawTable) int {
	for i, h := range t.Headers {
		n := NormalizeHeader(h)
		if n == "data" || n == "date" {
			return i
		}
	}
	for i := range t.Headers {
		nonEmpty, parsed := 0, 0
		for r := range t.Rows {
			cell := strings.TrimSpace(t.Cell(r, i))
			if cell == "" {
				continue
			}
			nonEmpty++
			if _, ok := ParseDate(cell); ok {
				parsed++
			}
		}
		if nonEmpty > 0 && parsed*2 > nonEmpty {
			return i
		}
	}
	return -1
}

// FilterMonth restricts a raw table to rows dated inside the month. A table
// with no date column passes through unfiltered; when a date column exists,
// rows whose date fails to parse are dropped from the filtered result.
func FilterMonth(t RawTable, m Month) RawTable {
	col := FindDateColumn(t)
	if col < 0 || m == "" {
		return t
	}
	out := RawTable{Source: t.Source, Headers: t.Headers}
	for i := range t.Rows {
		d, ok := ParseDate(t.Cell(i, col))
		if ok && m.Contains(d) {
			out.Rows = append(out.Rows, t.Rows[i])
		}
	}
	return out
}

// AvailableMonths scans the date column of each table and returns the
// distinct year-months found, sorted ascending. The caller's default
// selection is the last entry (most recent).
func AvailableMonths(tables ...RawTable) []Month {
	seen := make(map[Month]struct{})
	for _, t := range tables {
		col := FindDateColumn(t)
		if col < 0 {
			continue
		}
		for i := range t.Rows {
			if d, ok := ParseDate(t.Cell(i, col)); ok {
				seen[MonthOf(d)] = struct{}{}
			}
		}
	}
	months := make([]Month, 0, len(seen))
	for m := range seen {
		months = append(months, m)
	}
	sort.Slice(months, func(i, j int) bool { return months[i] < months[j] })
	return months
}

package sheet

import (
	"fmt"
	"sort"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// FieldSpec declares how one canonical field is recognized in a source
// table: a list of accepted header variants, matched after normalization.
type FieldSpec struct {
	Field    string
	Required bool
	Variants []string
}

// Mapping is the resolved canonical-field → column-index mapping for one
// RawTable. Built once per table, never mutated afterwards.
type Mapping struct {
	Source string
	cols   map[string]int
}

// NewMapping creates an empty mapping for the named source.
func NewMapping(source string) Mapping {
	return Mapping{Source: source, cols: make(map[string]int)}
}

// Set binds a canonical field to a column index.
func (m Mapping) Set(field string, col int) {
	m.cols[field] = col
}

// Col returns the column index for a canonical field, and whether the field
// was resolved at all.
func (m Mapping) Col(field string) (int, bool) {
	c, ok := m.cols[field]
	return c, ok
}

// MissingFieldsError reports required canonical fields that could not be
// resolved in a source table. This is a configuration problem with the
// workbook, not a cell-level one.
type MissingFieldsError struct {
	Source string
	Fields []string
}

func (e *MissingFieldsError) Error() string {
	return fmt.Sprintf("source %s: required column(s) not found: %s", e.Source, strings.Join(e.Fields, ", "))
}

var accentFold = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// NormalizeHeader reduces a header string to a comparable token: lower case,
// accents folded, the "≠" sign (including its frequent cp1252 mojibake) mapped
// to "!=", and everything outside [a-z0-9!=] dropped.
func NormalizeHeader(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.ReplaceAll(s, "≠", "!=")
	s = strings.ReplaceAll(s, "â‰", "!=")
	if folded, _, err := transform.String(accentFold, s); err == nil {
		s = folded
	}
	var b strings.Builder
	for _, r := range s {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '!' || r == '=' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// Resolve maps the canonical fields declared in specs onto the table's
// columns. Matching is exact against the normalized variant list; missing
// optional fields are simply absent from the mapping. Resolution is a pure
// function of the header strings and the specs, and deterministic: for each
// field the left-most matching column wins.
func Resolve(t RawTable, specs []FieldSpec) (Mapping, error) {
	normalized := make([]string, len(t.Headers))
	for i, h := range t.Headers {
		normalized[i] = NormalizeHeader(h)
	}

	m := NewMapping(t.Source)
	var missing []string
	for _, spec := range specs {
		col := -1
	scan:
		for i, n := range normalized {
			for _, v := range spec.Variants {
				if n == NormalizeHeader(v) {
					col = i
					break scan
				}
			}
		}
		if col >= 0 {
			m.Set(spec.Field, col)
		} else if spec.Required {
			missing = append(missing, spec.Field)
		}
	}

	if len(missing) > 0 {
		sort.Strings(missing)
		return m, &MissingFieldsError{Source: t.Source, Fields: missing}
	}
	return m, nil
}

// FindFTTHColumn locates the FTTH-positive completed-installations column.
// The column must mention FTTH without any negation token; headers naming
// completed installations ("impianti espletati") are preferred, any other
// FTTH header is the fallback.
func FindFTTHColumn(headers []string) int {
	fallback := -1
	for i, h := range headers {
		n := NormalizeHeader(h)
		if strings.Contains(n, "non") || strings.Contains(n, "!=") || !strings.Contains(n, "ftth") {
			continue
		}
		if strings.Contains(n, "impiantiespletati") {
			return i
		}
		if fallback < 0 {
			fallback = i
		}
	}
	return fallback
}

// FindNonFTTHColumn locates the non-FTTH completed-installations column: an
// FTTH header carrying a negation token ("non ftth" or "≠ ftth"). Some
// legacy files label the column "FTTC" instead, so that is the last resort.
func FindNonFTTHColumn(headers []string) int {
	for i, h := range headers {
		n := NormalizeHeader(h)
		negated := strings.Contains(n, "nonftth") || strings.Contains(n, "!=ftth")
		if negated && (strings.Contains(n, "impiantiespletati") || strings.Contains(n, "ftth")) {
			return i
		}
	}
	for i, h := range headers {
		n := NormalizeHeader(h)
		if strings.Contains(n, "impiantiespletati") && strings.Contains(n, "fttc") {
			return i
		}
	}
	return -1
}

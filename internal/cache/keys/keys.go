// Package keys builds cache key strings for resolved views.
package keys

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/cespare/xxhash/v2"
)

// ViewKey names one cached resolved view. aspect buckets the client
// viewport ratio (0 = unknown); policySig is the profile fingerprint
// so table edits roll the keys.
func ViewKey(dataset string, aspect float64, policySig string) string {
	ds := sanitizeDataset(strings.TrimSpace(dataset))
	ar := "na"
	if aspect > 0 {
		ar = fmt.Sprintf("%.2f", aspect)
	}
	sum := xxhash.Sum64String(policySig)
	return fmt.Sprintf("view:%s:ar=%s:p=%016x", ds, ar, sum)
}

// DatasetIndexKey names the per-dataset list of cached view keys,
// consulted on invalidation.
func DatasetIndexKey(dataset string) string {
	return "viewidx:" + sanitizeDataset(strings.TrimSpace(dataset))
}

// FootprintKey names the per-cell list of datasets whose project
// extents cover the H3 cell.
func FootprintKey(cell string, res int) string {
	return fmt.Sprintf("fp:%d:%s", res, cell)
}

func sanitizeDataset(s string) string {
	if s == "" {
		return ""
	}
	var b strings.Builder
	b.Grow(len(s))
	var prev rune
	for _, r := range s {
		var out rune
		switch {
		case isASCIIWhitespace(r):
			out = '_'
		case isAlphaNum(r) || r == '_' || r == '-' || r == '.':
			out = r
		default:
			out = '-'
		}
		if (out == '_' || out == '-') && out == prev {
			continue
		}
		b.WriteRune(out)
		prev = out
	}
	return b.String()
}

func isASCIIWhitespace(r rune) bool {
	return r == ' ' || r == '\t' || r == '\n' || r == '\r' || r == '\v' || r == '\f'
}

func isAlphaNum(r rune) bool {
	return (r >= 'a' && r <= 'z') ||
		(r >= 'A' && r <= 'Z') ||
		unicode.IsDigit(r)
}

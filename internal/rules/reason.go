// Package rules implements the structured-reason grammar (§4.5) and the
// safe-confirm/reject rule engines (§4.7) that re-read a persisted reason
// string rather than re-extracting signals from market titles.
//
// A pipeline's Score call produces a human-readable trace in
// pipeline.ScoreResult.Reason for logging. What gets persisted to
// market_links.reason for a non-auto-decided ("suggested") link is the
// canonical key=value encoding FormatReason produces from the same score
// components. Administrative sweeps (links:auto-confirm, links:auto-reject)
// load already-suggested links back out of storage, where only that
// persisted string survives — not the original Components map — and run
// the rule packs in this package against it.
package rules

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// FormatReason renders components as a sorted, deterministic key=value
// string. Sorting keys makes the output stable across map iteration and is
// what lets ParseReason(FormatReason(x)) == x hold (§8).
func FormatReason(components map[string]float64) string {
	keys := make([]string, 0, len(components))
	for k := range components {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s=%s", k, strconv.FormatFloat(components[k], 'f', 6, 64)))
	}
	return strings.Join(parts, " ")
}

// ParseReason inverts FormatReason, tolerating the legacy free-form
// Reason strings individual pipelines emit for logging: any token shaped
// like key=value is kept, trailing non-numeric suffixes (e.g. the
// "(0d)" in "date=0.90(0d)" or the "[STRONG]" in "num=0.85[STRONG]") are
// stripped so only the leading numeric value is parsed. Tokens whose value
// has no numeric prefix (e.g. "entity=BTC") are skipped.
func ParseReason(reason string) map[string]float64 {
	fields := make(map[string]float64)
	for _, tok := range strings.Fields(reason) {
		eq := strings.IndexByte(tok, '=')
		if eq < 0 {
			continue
		}
		key := tok[:eq]
		val := tok[eq+1:]
		if key == "" || val == "" {
			continue
		}
		end := 0
		for end < len(val) && isNumChar(val[end]) {
			end++
		}
		if end == 0 {
			continue
		}
		f, err := strconv.ParseFloat(val[:end], 64)
		if err != nil {
			continue
		}
		fields[key] = f
	}
	return fields
}

func isNumChar(b byte) bool {
	return (b >= '0' && b <= '9') || b == '.' || b == '-' || b == '+'
}

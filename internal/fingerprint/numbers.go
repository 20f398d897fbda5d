package fingerprint

import (
	"regexp"
	"strconv"
	"strings"
)

// NumberKind distinguishes the context a number appeared in, since "$50,000"
// and "50%" and a bare "50" all need different comparison treatment
// downstream (§4.1, §4.3 numeric signals).
type NumberKind string

const (
	KindMonetary  NumberKind = "monetary"
	KindPercent   NumberKind = "percent"
	KindPlain     NumberKind = "plain"
)

// ExtractedNumber is one numeric span found in a title, with unit suffixes
// (k/m/b/t) already folded into Value.
type ExtractedNumber struct {
	Value float64
	Kind  NumberKind
	Raw   string
}

var suffixMultiplier = map[string]float64{
	"k": 1e3, "m": 1e6, "mm": 1e6, "b": 1e9, "bn": 1e9, "t": 1e12, "tn": 1e12,
}

// reNumber matches an optional leading '$', digit groups with optional
// thousands separators and a decimal part, an optional unit suffix, and an
// optional trailing '%'.
var reNumber = regexp.MustCompile(`(?i)(\$)?(\d[\d,]*(?:\.\d+)?)\s?(k|m|mm|b|bn|t|tn)?(%)?`)

// ExtractNumbers finds every numeric span in title and resolves its kind and
// scaled value. A plain number (no '$' or '%') that starts inside a date span
// found by ExtractDates, such as the day and year of "January 21, 2026", is
// left out.
func ExtractNumbers(title string) []ExtractedNumber {
	inDate := make([]bool, len(title))
	for _, d := range ExtractDates(title) {
		for _, span := range regexp.MustCompile(regexp.QuoteMeta(d.Raw)).FindAllStringIndex(title, -1) {
			for j := span[0]; j < span[1]; j++ {
				inDate[j] = true
			}
		}
	}
	var out []ExtractedNumber
	for _, loc := range reNumber.FindAllStringSubmatchIndex(title, -1) {
		raw := title[loc[0]:loc[1]]
		if strings.TrimSpace(raw) == "" {
			continue
		}
		digits := title[loc[4]:loc[5]]
		if digits == "" {
			continue
		}
		val, err := strconv.ParseFloat(strings.ReplaceAll(digits, ",", ""), 64)
		if err != nil {
			continue
		}

		dollar := loc[2] != -1
		var suffix string
		if loc[6] != -1 {
			suffix = strings.ToLower(title[loc[6]:loc[7]])
		}
		percent := loc[8] != -1

		if mult, ok := suffixMultiplier[suffix]; ok {
			val *= mult
		}

		kind := KindPlain
		switch {
		case percent:
			kind = KindPercent
		case dollar:
			kind = KindMonetary
		}
		if kind == KindPlain && inDate[loc[4]] {
			continue
		}

		out = append(out, ExtractedNumber{Value: val, Kind: kind, Raw: raw})
	}
	return out
}

// PlainValues returns just the Value field of every extracted number,
// convenient for threshold comparison where Kind does not matter.
func PlainValues(nums []ExtractedNumber) []float64 {
	vals := make([]float64, len(nums))
	for i, n := range nums {
		vals[i] = n.Value
	}
	return vals
}

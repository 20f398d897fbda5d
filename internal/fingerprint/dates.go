package fingerprint

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// DatePrecision is the granularity a parsed date span carries.
type DatePrecision string

const (
	PrecisionDay     DatePrecision = "day"
	PrecisionMonth   DatePrecision = "month"
	PrecisionQuarter DatePrecision = "quarter"
	PrecisionYear    DatePrecision = "year"
)

// ExtractedDate is one date-like span found in a title.
type ExtractedDate struct {
	Year      int
	Month     int // 0 if not present
	Day       int // 0 if not present
	Quarter   int // 1-4, 0 if not present
	Precision DatePrecision
	Raw       string
}

var monthNames = map[string]int{
	"jan": 1, "january": 1, "feb": 2, "february": 2, "mar": 3, "march": 3,
	"apr": 4, "april": 4, "may": 5, "jun": 6, "june": 6, "jul": 7, "july": 7,
	"aug": 8, "august": 8, "sep": 9, "sept": 9, "september": 9, "oct": 10,
	"october": 10, "nov": 11, "november": 11, "dec": 12, "december": 12,
}

var monthNameAlt = func() string {
	names := make([]string, 0, len(monthNames))
	for n := range monthNames {
		names = append(names, n)
	}
	return strings.Join(names, "|")
}()

var (
	// "January 21, 2026" / "Jan 21 2026"
	reMonthDayYear = regexp.MustCompile(`(?i)\b(` + monthNameAlt + `)\.?\s+(\d{1,2})(?:st|nd|rd|th)?,?\s+(\d{4})\b`)
	// "2026-01-21"
	reISODate = regexp.MustCompile(`\b(\d{4})-(\d{1,2})-(\d{1,2})\b`)
	// "Q1 2026" / "Q1 2026"
	reQuarter = regexp.MustCompile(`(?i)\bQ([1-4])\s*(\d{4})\b`)
	// "January 2026" (month, no day)
	reMonthYear = regexp.MustCompile(`(?i)\b(` + monthNameAlt + `)\.?\s+(\d{4})\b`)
	// bare 4-digit year, last resort
	reYearOnly = regexp.MustCompile(`\b(20\d{2})\b`)
)

// ExtractDates finds every date-like span in title, most specific first.
// A span already consumed by a more specific pattern is not re-reported by
// a looser one.
func ExtractDates(title string) []ExtractedDate {
	var out []ExtractedDate
	consumed := make([]bool, len(title))
	mark := func(loc []int) {
		for i := loc[0]; i < loc[1] && i < len(consumed); i++ {
			consumed[i] = true
		}
	}
	anyConsumed := func(loc []int) bool {
		for i := loc[0]; i < loc[1] && i < len(consumed); i++ {
			if consumed[i] {
				return true
			}
		}
		return false
	}

	for _, loc := range reMonthDayYear.FindAllStringSubmatchIndex(title, -1) {
		if anyConsumed(loc) {
			continue
		}
		month := monthNames[strings.ToLower(title[loc[2]:loc[3]])]
		day, _ := strconv.Atoi(title[loc[4]:loc[5]])
		year, _ := strconv.Atoi(title[loc[6]:loc[7]])
		out = append(out, ExtractedDate{Year: year, Month: month, Day: day, Precision: PrecisionDay, Raw: title[loc[0]:loc[1]]})
		mark(loc)
	}

	for _, loc := range reISODate.FindAllStringSubmatchIndex(title, -1) {
		if anyConsumed(loc) {
			continue
		}
		year, _ := strconv.Atoi(title[loc[2]:loc[3]])
		month, _ := strconv.Atoi(title[loc[4]:loc[5]])
		day, _ := strconv.Atoi(title[loc[6]:loc[7]])
		out = append(out, ExtractedDate{Year: year, Month: month, Day: day, Precision: PrecisionDay, Raw: title[loc[0]:loc[1]]})
		mark(loc)
	}

	for _, loc := range reQuarter.FindAllStringSubmatchIndex(title, -1) {
		if anyConsumed(loc) {
			continue
		}
		q, _ := strconv.Atoi(title[loc[2]:loc[3]])
		year, _ := strconv.Atoi(title[loc[4]:loc[5]])
		out = append(out, ExtractedDate{Year: year, Quarter: q, Precision: PrecisionQuarter, Raw: title[loc[0]:loc[1]]})
		mark(loc)
	}

	for _, loc := range reMonthYear.FindAllStringSubmatchIndex(title, -1) {
		if anyConsumed(loc) {
			continue
		}
		month := monthNames[strings.ToLower(title[loc[2]:loc[3]])]
		year, _ := strconv.Atoi(title[loc[4]:loc[5]])
		out = append(out, ExtractedDate{Year: year, Month: month, Precision: PrecisionMonth, Raw: title[loc[0]:loc[1]]})
		mark(loc)
	}

	for _, loc := range reYearOnly.FindAllStringSubmatchIndex(title, -1) {
		if anyConsumed(loc) {
			continue
		}
		year, _ := strconv.Atoi(title[loc[2]:loc[3]])
		out = append(out, ExtractedDate{Year: year, Precision: PrecisionYear, Raw: title[loc[0]:loc[1]]})
		mark(loc)
	}

	return out
}

// SettleDate renders a day-precision date as YYYY-MM-DD; empty if the date
// does not carry day precision.
func (d ExtractedDate) SettleDate() string {
	if d.Precision != PrecisionDay || d.Month == 0 || d.Day == 0 {
		return ""
	}
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, d.Month, d.Day)
}

// SettlePeriod renders a non-day date as "YYYY-MM" or "YYYY-Qn".
func (d ExtractedDate) SettlePeriod() string {
	switch d.Precision {
	case PrecisionMonth:
		return fmt.Sprintf("%04d-%02d", d.Year, d.Month)
	case PrecisionQuarter:
		return fmt.Sprintf("%04d-Q%d", d.Year, d.Quarter)
	default:
		return ""
	}
}

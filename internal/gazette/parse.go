package gazette

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Display names look like "Victoria Government Gazette S 123 Dated 14 March 2024".
var (
	reDated   = regexp.MustCompile(`(?i)\bdated\s+(\d{1,2})(?:st|nd|rd|th)?\s+([a-z]+)\.?,?\s+(\d{4})\b`)
	reSpecial = regexp.MustCompile(`(?i:\bspecial\b|\bno\.?\s*s\s*\d+)|\bS\s*\d+\b`)
)

var months = map[string]time.Month{
	"jan": time.January, "january": time.January,
	"feb": time.February, "february": time.February,
	"mar": time.March, "march": time.March,
	"apr": time.April, "april": time.April,
	"may": time.May,
	"jun": time.June, "june": time.June,
	"jul": time.July, "july": time.July,
	"aug": time.August, "august": time.August,
	"sep": time.September, "sept": time.September, "september": time.September,
	"oct": time.October, "october": time.October,
	"nov": time.November, "november": time.November,
	"dec": time.December, "december": time.December,
}

// ParsePublished extracts the "Dated <day> <Month> <year>" date from a
// display name. It reports false when the name carries no valid date; it
// never panics on arbitrary anchor text.
func ParsePublished(name string, loc *time.Location) (time.Time, bool) {
	if loc == nil {
		loc = time.Local
	}
	m := reDated.FindStringSubmatch(name)
	if len(m) != 4 {
		return time.Time{}, false
	}
	day, err := strconv.Atoi(m[1])
	if err != nil {
		return time.Time{}, false
	}
	month, ok := months[strings.ToLower(m[2])]
	if !ok {
		return time.Time{}, false
	}
	year, err := strconv.Atoi(m[3])
	if err != nil {
		return time.Time{}, false
	}
	t := time.Date(year, month, day, 0, 0, 0, 0, loc)
	// time.Date normalises overflow (31 April -> 1 May); reject those.
	if t.Day() != day || t.Month() != month {
		return time.Time{}, false
	}
	return t, true
}

// ParseCategory classifies a display name. Anything not marked Special is
// treated as General.
func ParseCategory(name string) Category {
	if reSpecial.MatchString(name) {
		return Special
	}
	return General
}

// NormalizeName collapses whitespace in scraped anchor text.
func NormalizeName(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

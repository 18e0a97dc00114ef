package common

import (
	"regexp"
	"strings"
	"time"

	"github.com/araddon/dateparse"
)

const DateLayout = "2006-01-02"

var (
	reYearOnly  = regexp.MustCompile(`^\d{4}$`)
	reYearMonth = regexp.MustCompile(`^(\d{4})-(\d{1,2})$`)
	reISODate   = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}`)
	reFullYear  = regexp.MustCompile(`\d{4}`)
)

// NormalizeDate converts a loosely formatted date into YYYY-MM-DD.
// Year-only and year-month values are kept at their original precision.
// The second return value is false when the input could not be understood;
// callers keep the raw value in that case. Values without a four digit year
// are never completed with a guessed one.
func NormalizeDate(raw string) (string, bool) {
	value := strings.TrimSpace(raw)
	value = strings.Trim(value, `"'.,;`)
	if value == "" {
		return "", false
	}

	if reYearOnly.MatchString(value) {
		return value, true
	}
	if m := reYearMonth.FindStringSubmatch(value); m != nil {
		t, err := time.Parse("2006-1", m[1]+"-"+m[2])
		if err != nil {
			return "", false
		}
		return t.Format("2006-01"), true
	}
	if reISODate.MatchString(value) {
		if t, err := time.Parse(DateLayout, value[:10]); err == nil {
			return t.Format(DateLayout), true
		}
	}

	if !reFullYear.MatchString(value) {
		return "", false
	}
	t, err := dateparse.ParseAny(value)
	if err != nil || t.Year() == 0 {
		return "", false
	}
	return t.Format(DateLayout), true
}

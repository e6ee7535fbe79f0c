package parsing

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// ruMonths resolves Russian month names as they appear in announcement text.
// Both the genitive form used inside dates ("12 июля 2024") and the plain
// nominative are accepted; lookups are lowercase.
var ruMonths = map[string]time.Month{
	"января": time.January, "январь": time.January,
	"февраля": time.February, "февраль": time.February,
	"марта": time.March, "март": time.March,
	"апреля": time.April, "апрель": time.April,
	"мая": time.May, "май": time.May,
	"июня": time.June, "июнь": time.June,
	"июля": time.July, "июль": time.July,
	"августа": time.August, "август": time.August,
	"сентября": time.September, "сентябрь": time.September,
	"октября": time.October, "октябрь": time.October,
	"ноября": time.November, "ноябрь": time.November,
	"декабря": time.December, "декабрь": time.December,
}

var ruDateExpr = regexp.MustCompile(`^(\d{1,2})\s+([А-Яа-яЁё]+)\s+(\d{4})(?:\s+(\d{1,2}):(\d{2}))?$`)

// parseRussianDate parses "2 июля 2024" or "2 июля 2024 10:30" without
// touching the process locale. withTime reports whether a time of day was
// present.
func parseRussianDate(raw string) (t time.Time, withTime bool, err error) {
	m := ruDateExpr.FindStringSubmatch(strings.TrimSpace(raw))
	if m == nil {
		return time.Time{}, false, fmt.Errorf("unrecognized date %q", raw)
	}

	month, ok := ruMonths[strings.ToLower(m[2])]
	if !ok {
		return time.Time{}, false, fmt.Errorf("unknown month %q", m[2])
	}

	day, _ := strconv.Atoi(m[1])
	year, _ := strconv.Atoi(m[3])
	hour, minute := 0, 0
	if m[4] != "" {
		hour, _ = strconv.Atoi(m[4])
		minute, _ = strconv.Atoi(m[5])
		withTime = true
	}
	return time.Date(year, month, day, hour, minute, 0, 0, time.UTC), withTime, nil
}

package domain

import (
	"fmt"
	"sort"
	"time"
)

// Bound describes the granularity of one end of a DateRange.
type Bound int

const (
	// BoundNone marks an absent bound.
	BoundNone Bound = iota
	// BoundDate marks a calendar-date bound without a time of day.
	BoundDate
	// BoundDateTime marks a full timestamp bound.
	BoundDateTime
)

// DateRange is a closed maintenance interval. It is comparable, so identical
// intervals scraped twice collapse inside a DateRangeSet.
type DateRange struct {
	Start      time.Time
	End        time.Time
	StartBound Bound
	EndBound   Bound
}

func (r DateRange) String() string {
	return fmt.Sprintf("%s - %s", FormatBound(r.Start, r.StartBound), FormatBound(r.End, r.EndBound))
}

// EndsAfter reports whether the interval is still relevant at now. With debug
// set every interval counts as upcoming; demo announcements carry no real
// dates. An absent end never matches, and date-only ends compare at day
// granularity.
func (r DateRange) EndsAfter(now time.Time, debug bool) bool {
	if debug {
		return true
	}
	switch r.EndBound {
	case BoundNone:
		return false
	case BoundDate:
		return dateOf(r.End).After(dateOf(now))
	default:
		return !r.End.Before(now.UTC())
	}
}

// EndsBefore reports whether the interval is already over at now. Unlike
// EndsAfter, an absent end always counts as over; the asymmetry mirrors the
// debug toggle in EndsAfter and keeps undated records out of both buckets.
func (r DateRange) EndsBefore(now time.Time) bool {
	switch r.EndBound {
	case BoundNone:
		return true
	case BoundDate:
		return dateOf(r.End).Before(dateOf(now))
	default:
		return r.End.Before(now.UTC())
	}
}

func dateOf(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// FormatBound renders one bound for user-facing output: "-" when absent,
// ISO date for date-only bounds, "02.01.2006 15:04" for timestamps.
func FormatBound(t time.Time, b Bound) string {
	switch b {
	case BoundNone:
		return "-"
	case BoundDate:
		return t.Format("2006-01-02")
	default:
		return t.Format("02.01.2006 15:04")
	}
}

// DateRangeSet is a set of intervals keyed by value, deduplicating repeated
// announcements of the same window.
type DateRangeSet map[DateRange]struct{}

// Add inserts the interval into the set.
func (s DateRangeSet) Add(r DateRange) {
	s[r] = struct{}{}
}

// Sorted returns the intervals ordered by start ascending, undated first.
func (s DateRangeSet) Sorted() []DateRange {
	ranges := make([]DateRange, 0, len(s))
	for r := range s {
		ranges = append(ranges, r)
	}
	sort.Slice(ranges, func(i, j int) bool {
		if (ranges[i].StartBound == BoundNone) != (ranges[j].StartBound == BoundNone) {
			return ranges[i].StartBound == BoundNone
		}
		return ranges[i].Start.Before(ranges[j].Start)
	})
	return ranges
}

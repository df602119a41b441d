package domain

import (
	"errors"
	"sort"
	"time"
)

var (
	ErrInvalidScheduleKind = errors.New("invalid schedule kind")
	ErrInvalidWeekdays     = errors.New("invalid weekdays (must be 0-6)")
	ErrInvalidMonthDays    = errors.New("invalid month days (must be 1-31)")
	ErrInvalidDate         = errors.New("invalid date (must be YYYY-MM-DD)")
)

const (
	ScheduleManual   = "manual"
	ScheduleDaily    = "daily"
	ScheduleWeekdays = "weekdays"
	ScheduleWeekends = "weekends"
	ScheduleWeekly   = "weekly"
	ScheduleMonthly  = "monthly"
	ScheduleSpecific = "specific"
)

const dateLayout = "2006-01-02"

// DateKey renders a time as the ISO date string used everywhere as a
// map/set key (completed dates, history entries, one-off events).
func DateKey(t time.Time) string {
	return t.UTC().Format(dateLayout)
}

// ParseDateKey is the inverse of DateKey.
func ParseDateKey(s string) (time.Time, error) {
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return time.Time{}, ErrInvalidDate
	}
	return t, nil
}

// Schedule is the recurrence rule of a flow. Kind selects the variant;
// Weekdays is only meaningful for ScheduleWeekly, MonthDays for
// ScheduleMonthly and Date for ScheduleSpecific.
type Schedule struct {
	Kind      string `json:"kind"`
	Weekdays  []int  `json:"weekdays,omitempty"`
	MonthDays []int  `json:"month_days,omitempty"`
	Date      string `json:"date,omitempty"`
}

func normalizeDaySet(days []int) []int {
	if len(days) == 0 {
		return nil
	}

	seen := make(map[int]bool)
	var unique []int
	for _, d := range days {
		if !seen[d] {
			seen[d] = true
			unique = append(unique, d)
		}
	}

	sort.Ints(unique)
	return unique
}

func (s *Schedule) Validate() error {
	switch s.Kind {
	case ScheduleManual, ScheduleDaily, ScheduleWeekdays, ScheduleWeekends:
	case ScheduleWeekly:
		for _, d := range s.Weekdays {
			if d < 0 || d > 6 {
				return ErrInvalidWeekdays
			}
		}
	case ScheduleMonthly:
		for _, d := range s.MonthDays {
			if d < 1 || d > 31 {
				return ErrInvalidMonthDays
			}
		}
	case ScheduleSpecific:
		if _, err := ParseDateKey(s.Date); err != nil {
			return err
		}
	default:
		return ErrInvalidScheduleKind
	}
	return nil
}

// Normalize dedupes and sorts the day sets. Empty weekly/monthly sets
// are kept as-is: a flow with an empty set is simply never due.
func (s *Schedule) Normalize() {
	s.Weekdays = normalizeDaySet(s.Weekdays)
	s.MonthDays = normalizeDaySet(s.MonthDays)
}

// Matches reports whether the schedule makes a flow due on the given
// date. Manual schedules never match; those flows only run when the
// user starts them directly from the catalog.
func (s *Schedule) Matches(t time.Time) bool {
	dayOfWeek := int(t.Weekday())
	dayOfMonth := t.Day()

	switch s.Kind {
	case ScheduleDaily:
		return true
	case ScheduleWeekdays:
		return dayOfWeek >= 1 && dayOfWeek <= 5
	case ScheduleWeekends:
		return dayOfWeek == 0 || dayOfWeek == 6
	case ScheduleWeekly:
		for _, d := range s.Weekdays {
			if d == dayOfWeek {
				return true
			}
		}
		return false
	case ScheduleMonthly:
		for _, d := range s.MonthDays {
			if d == dayOfMonth {
				return true
			}
		}
		return false
	case ScheduleSpecific:
		return s.Date == DateKey(t)
	default:
		return false
	}
}

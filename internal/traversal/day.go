package traversal

import (
	"fmt"
	"time"
)

// Day is a calendar date with no time component.
type Day struct {
	Year  int
	Month time.Month
	Day   int
}

// DayKey returns the calendar date of t in t's own location.
// Offsets are not normalized: 2024-01-02 00:30 +0100 and 2024-01-01 23:30 +0000
// are the same instant but different days.
func DayKey(t time.Time) Day {
	y, m, d := t.Date()
	return Day{Year: y, Month: m, Day: d}
}

// ParseDay parses a YYYY-MM-DD string.
func ParseDay(s string) (Day, error) {
	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		return Day{}, fmt.Errorf("invalid day %q: %w", s, err)
	}
	return DayKey(t), nil
}

// String renders the day as YYYY-MM-DD.
func (d Day) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, int(d.Month), d.Day)
}

// Before reports whether d is an earlier calendar date than other.
func (d Day) Before(other Day) bool {
	return d.Compare(other) < 0
}

// Compare returns -1, 0 or +1 depending on whether d is before, equal to or after other.
func (d Day) Compare(other Day) int {
	switch {
	case d.Year != other.Year:
		return cmpInt(d.Year, other.Year)
	case d.Month != other.Month:
		return cmpInt(int(d.Month), int(other.Month))
	default:
		return cmpInt(d.Day, other.Day)
	}
}

// Time returns midnight UTC of the day.
func (d Day) Time() time.Time {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, time.UTC)
}

func cmpInt(a, b int) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

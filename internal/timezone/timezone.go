// Package timezone converts instants to and from mentor/viewer wall clocks.
//
// Wall-clock positions are represented as durations since local midnight
// rather than literal clock readings. That keeps conversions exact across DST
// transitions: on a spring-forward day local midnight plus 9h lands one wall
// hour later than on a regular day, and on a fall-back day one earlier, but
// ToWall and FromWall always invert each other.
package timezone

import (
	"fmt"
	"time"
)

// Date is a calendar date with no time-of-day or zone attached.
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

const dateLayout = "2006-01-02"

func ParseDate(s string) (Date, error) {
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return Date{}, fmt.Errorf("invalid date %q (want YYYY-MM-DD)", s)
	}
	return Date{Year: t.Year(), Month: t.Month(), Day: t.Day()}, nil
}

func (d Date) String() string {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, time.UTC).Format(dateLayout)
}

func (d Date) Weekday() time.Weekday {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, time.UTC).Weekday()
}

func (d Date) AddDays(n int) Date {
	t := time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, time.UTC).AddDate(0, 0, n)
	return Date{Year: t.Year(), Month: t.Month(), Day: t.Day()}
}

func (d Date) After(other Date) bool {
	if d.Year != other.Year {
		return d.Year > other.Year
	}
	if d.Month != other.Month {
		return d.Month > other.Month
	}
	return d.Day > other.Day
}

// LoadZone resolves an IANA zone name like "America/New_York".
func LoadZone(name string) (*time.Location, error) {
	if name == "" {
		return nil, fmt.Errorf("timezone name is empty")
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("unknown timezone %q: %w", name, err)
	}
	return loc, nil
}

// Midnight is the first instant of d in loc.
func Midnight(d Date, loc *time.Location) time.Time {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, loc)
}

// ToWall converts an instant into loc's calendar date and the elapsed time
// since that date's local midnight.
func ToWall(t time.Time, loc *time.Location) (Date, time.Duration) {
	lt := t.In(loc)
	d := Date{Year: lt.Year(), Month: lt.Month(), Day: lt.Day()}
	return d, lt.Sub(Midnight(d, loc))
}

// FromWall is the inverse of ToWall: local midnight of d in loc plus offset.
func FromWall(d Date, offset time.Duration, loc *time.Location) time.Time {
	return Midnight(d, loc).Add(offset)
}

// Clock formats the wall-clock reading of t in loc as "15:04". Display values
// cross the API boundary as plain local strings, never instants.
func Clock(t time.Time, loc *time.Location) string {
	return t.In(loc).Format("15:04")
}

// DateOf returns the calendar date of t in loc. Callers must not assume the
// date matches the date in any other zone.
func DateOf(t time.Time, loc *time.Location) Date {
	lt := t.In(loc)
	return Date{Year: lt.Year(), Month: lt.Month(), Day: lt.Day()}
}

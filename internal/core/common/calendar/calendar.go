// Package calendar handles date-only values and working-day arithmetic.
package calendar

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const Layout = "2006-01-02"

const (
	DurationFull          = "FULL"
	DurationHalfMorning   = "HALF_MORNING"
	DurationHalfAfternoon = "HALF_AFTERNOON"
)

var half = decimal.NewFromFloat(0.5)

// Date is a calendar day serialized as YYYY-MM-DD.
type Date struct {
	time.Time
}

func NewDate(t time.Time) Date {
	return Date{Time: Normalize(t)}
}

func (d Date) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(d.Format(Layout))
}

func (d *Date) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	if s == "" || s == "null" {
		d.Time = time.Time{}
		return nil
	}
	t, err := Parse(s)
	if err != nil {
		return err
	}
	d.Time = t
	return nil
}

func (d Date) String() string {
	return d.Format(Layout)
}

// Parse accepts YYYY-MM-DD or RFC3339 and returns UTC midnight of that day.
func Parse(s string) (time.Time, error) {
	if t, err := time.Parse(Layout, s); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q, expected YYYY-MM-DD", s)
	}
	return Normalize(t), nil
}

// Normalize drops the clock part, keeping the calendar day of t in its own location.
func Normalize(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// YearBounds returns [Jan 1 of year, Jan 1 of year+1).
func YearBounds(year int) (time.Time, time.Time) {
	from := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
	return from, from.AddDate(1, 0, 0)
}

func IsWeekend(t time.Time) bool {
	wd := t.Weekday()
	return wd == time.Saturday || wd == time.Sunday
}

// WorkingDays counts Monday to Friday days in [start, end] that are not holidays.
// A half-day start or end removes half a day when that day is itself a working day;
// a single-day span only looks at startDuration.
func WorkingDays(start, end time.Time, holidays map[string]bool, startDuration, endDuration string) decimal.Decimal {
	start, end = Normalize(start), Normalize(end)
	if end.Before(start) {
		return decimal.Zero
	}

	isWorking := func(t time.Time) bool {
		return !IsWeekend(t) && !holidays[t.Format(Layout)]
	}

	total := decimal.Zero
	for day := start; !day.After(end); day = day.AddDate(0, 0, 1) {
		if isWorking(day) {
			total = total.Add(decimal.NewFromInt(1))
		}
	}

	if start.Equal(end) {
		if isWorking(start) && isHalf(startDuration) {
			total = total.Sub(half)
		}
		return total
	}

	if isWorking(start) && isHalf(startDuration) {
		total = total.Sub(half)
	}
	if isWorking(end) && isHalf(endDuration) {
		total = total.Sub(half)
	}
	return total
}

// ConsecutiveDays is the calendar length of [start, end].
func ConsecutiveDays(start, end time.Time) int {
	return int(Normalize(end).Sub(Normalize(start)).Hours()/24) + 1
}

func isHalf(duration string) bool {
	return duration == DurationHalfMorning || duration == DurationHalfAfternoon
}

func ValidDuration(duration string) bool {
	return duration == "" || duration == DurationFull || isHalf(duration)
}

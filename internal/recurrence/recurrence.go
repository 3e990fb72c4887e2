// Package recurrence computes when a recurring transaction fires next.
package recurrence

import (
	"fmt"
	"time"

	"pennywise/internal/calendar"
	"pennywise/internal/models"
)

// Next returns the date one period of f after current.
//
// Monthly and yearly steps keep the day of month when the target month has
// it and otherwise clamp to the target month's last day, so Jan 31 is
// followed by Feb 28 (or 29) and Feb 29 by Feb 28 of the next year.
func Next(current time.Time, f models.Frequency) time.Time {
	current = calendar.Day(current)
	switch f {
	case models.FrequencyWeekly:
		return current.AddDate(0, 0, 7)
	case models.FrequencyMonthly:
		return addMonths(current, 1)
	case models.FrequencyYearly:
		return addMonths(current, 12)
	}
	panic(fmt.Sprintf("recurrence: unsupported frequency %q", f))
}

// addMonths adds n calendar months without overflowing into the month after.
func addMonths(d time.Time, n int) time.Time {
	first := time.Date(d.Year(), d.Month(), 1, 0, 0, 0, 0, time.UTC).AddDate(0, n, 0)
	day := d.Day()
	if last := calendar.DaysIn(first.Year(), first.Month()); day > last {
		day = last
	}
	return time.Date(first.Year(), first.Month(), day, 0, 0, 0, 0, time.UTC)
}

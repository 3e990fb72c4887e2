package scheduler

import (
	"fmt"
	"time"
)

type frequency int

const (
	daily frequency = iota
	monthly
)

// Rule is a wall-clock firing schedule evaluated in a fixed location.
type Rule struct {
	freq     frequency
	hour     int
	minute   int
	location *time.Location
}

// Daily fires every day at hour:minute in loc.
func Daily(hour, minute int, loc *time.Location) Rule {
	return Rule{freq: daily, hour: hour, minute: minute, location: orUTC(loc)}
}

// MonthlyOnFirst fires on the first day of every month at hour:minute in loc.
func MonthlyOnFirst(hour, minute int, loc *time.Location) Rule {
	return Rule{freq: monthly, hour: hour, minute: minute, location: orUTC(loc)}
}

func orUTC(loc *time.Location) *time.Location {
	if loc == nil {
		return time.UTC
	}
	return loc
}

// Location returns the zone the rule is evaluated in.
func (r Rule) Location() *time.Location {
	return r.location
}

// Next returns the first firing time strictly after after.
func (r Rule) Next(after time.Time) time.Time {
	t := after.In(r.location)
	y, m, d := t.Date()

	switch r.freq {
	case monthly:
		c := time.Date(y, m, 1, r.hour, r.minute, 0, 0, r.location)
		if !c.After(t) {
			c = time.Date(y, m+1, 1, r.hour, r.minute, 0, 0, r.location)
		}
		return c
	default:
		c := time.Date(y, m, d, r.hour, r.minute, 0, 0, r.location)
		if !c.After(t) {
			c = time.Date(y, m, d+1, r.hour, r.minute, 0, 0, r.location)
		}
		return c
	}
}

func (r Rule) String() string {
	at := fmt.Sprintf("%02d:%02d %s", r.hour, r.minute, r.location)
	if r.freq == monthly {
		return "monthly on day 1 at " + at
	}
	return "daily at " + at
}

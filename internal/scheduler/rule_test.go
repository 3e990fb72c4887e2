package scheduler

import (
	"testing"
	"time"
)

func TestDailyNext(t *testing.T) {
	rule := Daily(1, 0, time.UTC)

	tests := []struct {
		name  string
		after time.Time
		want  time.Time
	}{
		{"before_time_today", time.Date(2025, 3, 15, 0, 30, 0, 0, time.UTC), time.Date(2025, 3, 15, 1, 0, 0, 0, time.UTC)},
		{"exactly_at_time", time.Date(2025, 3, 15, 1, 0, 0, 0, time.UTC), time.Date(2025, 3, 16, 1, 0, 0, 0, time.UTC)},
		{"after_time_today", time.Date(2025, 3, 15, 12, 0, 0, 0, time.UTC), time.Date(2025, 3, 16, 1, 0, 0, 0, time.UTC)},
		{"month_end", time.Date(2025, 2, 28, 23, 0, 0, 0, time.UTC), time.Date(2025, 3, 1, 1, 0, 0, 0, time.UTC)},
		{"year_end", time.Date(2025, 12, 31, 2, 0, 0, 0, time.UTC), time.Date(2026, 1, 1, 1, 0, 0, 0, time.UTC)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := rule.Next(tt.after); !got.Equal(tt.want) {
				t.Errorf("Next(%s) = %s, want %s", tt.after, got, tt.want)
			}
		})
	}
}

func TestMonthlyOnFirstNext(t *testing.T) {
	rule := MonthlyOnFirst(0, 0, time.UTC)

	tests := []struct {
		name  string
		after time.Time
		want  time.Time
	}{
		{"mid_month", time.Date(2025, 1, 15, 10, 0, 0, 0, time.UTC), time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC)},
		{"exactly_at_first", time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC), time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)},
		{"last_instant_of_month", time.Date(2025, 2, 28, 23, 59, 59, 0, time.UTC), time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)},
		{"december", time.Date(2025, 12, 5, 0, 0, 0, 0, time.UTC), time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := rule.Next(tt.after); !got.Equal(tt.want) {
				t.Errorf("Next(%s) = %s, want %s", tt.after, got, tt.want)
			}
		})
	}
}

func TestMonthlyOnFirstNext_beforeFireTimeOnFirst(t *testing.T) {
	rule := MonthlyOnFirst(6, 30, time.UTC)

	got := rule.Next(time.Date(2025, 4, 1, 6, 0, 0, 0, time.UTC))
	want := time.Date(2025, 4, 1, 6, 30, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("got %s, want %s", got, want)
	}
}

func TestRuleNext_location(t *testing.T) {
	loc, err := time.LoadLocation("Asia/Tokyo")
	if err != nil {
		t.Skipf("time zone data unavailable: %v", err)
	}
	rule := Daily(1, 0, loc)

	// 2025-03-15 17:00 UTC is 2025-03-16 02:00 in Tokyo.
	got := rule.Next(time.Date(2025, 3, 15, 17, 0, 0, 0, time.UTC))
	want := time.Date(2025, 3, 17, 1, 0, 0, 0, loc)
	if !got.Equal(want) {
		t.Errorf("got %s, want %s", got, want)
	}
	if got.Location() != loc {
		t.Errorf("expected result in %s, got %s", loc, got.Location())
	}
}

func TestRuleNext_strictlyAdvances(t *testing.T) {
	for _, rule := range []Rule{Daily(1, 0, nil), MonthlyOnFirst(0, 0, nil)} {
		at := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
		for i := 0; i < 400; i++ {
			next := rule.Next(at)
			if !next.After(at) {
				t.Fatalf("%s: Next(%s) = %s does not advance", rule, at, next)
			}
			at = next
		}
	}
}

func TestRuleString(t *testing.T) {
	if got := Daily(1, 5, nil).String(); got != "daily at 01:05 UTC" {
		t.Errorf("unexpected daily string %q", got)
	}
	if got := MonthlyOnFirst(0, 0, nil).String(); got != "monthly on day 1 at 00:00 UTC" {
		t.Errorf("unexpected monthly string %q", got)
	}
}

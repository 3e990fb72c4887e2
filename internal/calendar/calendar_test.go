package calendar

import (
	"testing"
	"time"
)

func TestDay(t *testing.T) {
	loc := time.FixedZone("UTC+3", 3*60*60)
	got := Day(time.Date(2025, 6, 1, 1, 30, 0, 0, loc))
	want := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	if !got.Equal(want) || got.Location() != time.UTC {
		t.Errorf("expected %s in UTC, got %s", want, got)
	}
}

func TestToday(t *testing.T) {
	clock := &MockClock{FixedNow: time.Date(2025, 5, 31, 22, 0, 0, 0, time.UTC)}
	loc := time.FixedZone("UTC+3", 3*60*60)

	if got := Today(clock, loc); !got.Equal(time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("expected 2025-06-01 in UTC+3, got %s", got)
	}
	if got := Today(clock, time.UTC); !got.Equal(time.Date(2025, 5, 31, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("expected 2025-05-31 in UTC, got %s", got)
	}
}

func TestParseMonth(t *testing.T) {
	m, err := ParseMonth("2025-06")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if m.Year != 2025 || m.Month != time.June {
		t.Errorf("expected 2025-06, got %v", m)
	}
	if m.String() != "2025-06" {
		t.Errorf("expected String 2025-06, got %s", m.String())
	}
	if !m.End().Equal(time.Date(2025, 6, 30, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("unexpected month end %s", m.End())
	}
	if m.Next() != (Month{Year: 2025, Month: time.July}) {
		t.Errorf("unexpected next month %v", m.Next())
	}

	if _, err := ParseMonth("2025-13"); err == nil {
		t.Error("expected error for invalid month")
	}
}

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2024-02-29")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if FormatDate(d) != "2024-02-29" {
		t.Errorf("round trip failed: %s", FormatDate(d))
	}
	if _, err := ParseDate("2025-02-29"); err == nil {
		t.Error("expected error for non-existent date")
	}
}

func TestDaysIn(t *testing.T) {
	if DaysIn(2024, time.February) != 29 || DaysIn(2025, time.February) != 28 || DaysIn(2025, time.December) != 31 {
		t.Error("unexpected month lengths")
	}
}

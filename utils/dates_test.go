package utils

import (
	"testing"
	"time"
)

func TestParseDateAndCombine(t *testing.T) {
	loc := time.FixedZone("TRT", 3*60*60)

	day, err := ParseDate("2024-06-10", loc)
	if err != nil {
		t.Fatalf("ParseDate: %v", err)
	}
	start, err := CombineDateTime(day, "10:00")
	if err != nil {
		t.Fatalf("CombineDateTime: %v", err)
	}

	want := time.Date(2024, 6, 10, 7, 0, 0, 0, time.UTC)
	if !start.Equal(want) {
		t.Errorf("start = %s, want %s", start.UTC(), want)
	}
	if start.Location() != loc {
		t.Errorf("start location = %s, want TRT", start.Location())
	}
}

func TestParseDateRejectsBadInput(t *testing.T) {
	for _, in := range []string{"", "10/06/2024", "2024-13-01", "2024-06-10T10:00"} {
		if _, err := ParseDate(in, time.UTC); err == nil {
			t.Errorf("ParseDate(%q) expected error", in)
		}
	}
}

func TestParseClock(t *testing.T) {
	got, err := ParseClock("14:30")
	if err != nil || got != 14*60+30 {
		t.Fatalf("ParseClock(14:30) = %d, %v", got, err)
	}
	for _, in := range []string{"", "24:00", "9am", "14:3"} {
		if _, err := ParseClock(in); err == nil {
			t.Errorf("ParseClock(%q) expected error", in)
		}
	}
}

func TestDayBounds(t *testing.T) {
	ts := time.Date(2024, 6, 10, 15, 42, 7, 0, time.UTC)
	if got := BeginningOfDay(ts); !got.Equal(time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("BeginningOfDay = %s", got)
	}
	if got := EndOfDay(ts); !got.Equal(time.Date(2024, 6, 10, 23, 59, 59, 0, time.UTC)) {
		t.Errorf("EndOfDay = %s", got)
	}
	if got := DaysBetween(ts, ts.AddDate(0, 0, 3)); got != 3 {
		t.Errorf("DaysBetween = %d, want 3", got)
	}
}

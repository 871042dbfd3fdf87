package models

import (
	"testing"
	"time"
)

func TestAppointmentStatusTransitions(t *testing.T) {
	all := []AppointmentStatus{StatusPending, StatusConfirmed, StatusCompleted, StatusCancelled}
	allowed := map[AppointmentStatus][]AppointmentStatus{
		StatusPending:   {StatusConfirmed, StatusCancelled},
		StatusConfirmed: {StatusCompleted, StatusCancelled},
	}

	for _, from := range all {
		for _, to := range all {
			want := false
			for _, ok := range allowed[from] {
				if ok == to {
					want = true
				}
			}
			if got := from.CanTransitionTo(to); got != want {
				t.Errorf("%s -> %s = %v, want %v", from, to, got, want)
			}
		}
	}
}

func TestAppointmentStatusValid(t *testing.T) {
	for _, s := range []AppointmentStatus{StatusPending, StatusConfirmed, StatusCompleted, StatusCancelled} {
		if !s.Valid() {
			t.Errorf("%s should be valid", s)
		}
	}
	if AppointmentStatus("deleted").Valid() {
		t.Error("deleted should not be valid")
	}
}

func TestAppointmentOverlaps(t *testing.T) {
	base := time.Date(2024, 6, 10, 14, 0, 0, 0, time.UTC)
	a := Appointment{StartTime: base, EndTime: base.Add(30 * time.Minute)}

	cases := []struct {
		start, end time.Duration
		want       bool
	}{
		{-30 * time.Minute, 0, false},
		{-15 * time.Minute, 15 * time.Minute, true},
		{10 * time.Minute, 20 * time.Minute, true},
		{30 * time.Minute, time.Hour, false},
	}
	for _, tc := range cases {
		if got := a.Overlaps(base.Add(tc.start), base.Add(tc.end)); got != tc.want {
			t.Errorf("Overlaps(%v, %v) = %v, want %v", tc.start, tc.end, got, tc.want)
		}
	}
}

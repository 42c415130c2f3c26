package availability

import (
	"testing"
	"time"
)

func TestStarts_Basic(t *testing.T) {
	iv := Interval{Start: at(t, 9, 0), End: at(t, 11, 0)}

	starts := Starts([]Interval{iv}, 60*time.Minute, 60*time.Minute)
	if len(starts) != 2 {
		t.Fatalf("expected 2 starts, got %d", len(starts))
	}
	if !starts[0].Equal(at(t, 9, 0)) || !starts[1].Equal(at(t, 10, 0)) {
		t.Fatalf("expected 09:00 and 10:00, got %v", starts)
	}
}

func TestStarts_DurationMustFit(t *testing.T) {
	// 09:00-10:30 with 60-minute sessions: 09:30 fits, 10:00 does not.
	iv := Interval{Start: at(t, 9, 0), End: at(t, 10, 30)}

	starts := Starts([]Interval{iv}, 60*time.Minute, 30*time.Minute)
	if len(starts) != 2 {
		t.Fatalf("expected 2 starts, got %v", starts)
	}
	if !starts[1].Equal(at(t, 9, 30)) {
		t.Fatalf("expected last start 09:30, got %s", starts[1])
	}
}

func TestStarts_NonHourAligned(t *testing.T) {
	iv := Interval{Start: at(t, 9, 0), End: at(t, 10, 0)}

	starts := Starts([]Interval{iv}, 45*time.Minute, 45*time.Minute)
	if len(starts) != 1 {
		t.Fatalf("expected 1 start for 45-minute session, got %v", starts)
	}
}

func TestStarts_MultipleIntervalsChronological(t *testing.T) {
	intervals := []Interval{
		{Start: at(t, 14, 0), End: at(t, 16, 0)},
		{Start: at(t, 9, 0), End: at(t, 11, 0)},
	}

	starts := Starts(intervals, 60*time.Minute, 60*time.Minute)
	if len(starts) != 4 {
		t.Fatalf("expected 4 starts, got %v", starts)
	}
	for i := 1; i < len(starts); i++ {
		if !starts[i].After(starts[i-1]) {
			t.Fatalf("starts not strictly increasing: %v", starts)
		}
	}
}

func TestStarts_InvalidInput(t *testing.T) {
	iv := Interval{Start: at(t, 9, 0), End: at(t, 11, 0)}
	if got := Starts([]Interval{iv}, 0, 30*time.Minute); got != nil {
		t.Fatalf("expected nil for zero duration, got %v", got)
	}
	if got := Starts([]Interval{iv}, 30*time.Minute, 0); got != nil {
		t.Fatalf("expected nil for zero step, got %v", got)
	}
}

func TestMarkConflicts(t *testing.T) {
	starts := []time.Time{at(t, 9, 0), at(t, 10, 0), at(t, 11, 0)}
	busy := []Interval{{Start: at(t, 10, 0), End: at(t, 11, 0)}}

	slots := MarkConflicts(starts, 60*time.Minute, busy)
	if len(slots) != 3 {
		t.Fatalf("expected 3 slots, got %d", len(slots))
	}
	want := []bool{true, false, true}
	for i, s := range slots {
		if s.Available != want[i] {
			t.Fatalf("slot %s: expected available=%v", s.Start, want[i])
		}
	}
}

func TestMarkConflicts_PartialOverlap(t *testing.T) {
	// A booking 10:30-11:30 blocks both the 10:00 and the 11:00 hour slot.
	starts := []time.Time{at(t, 10, 0), at(t, 11, 0), at(t, 12, 0)}
	busy := []Interval{{Start: at(t, 10, 30), End: at(t, 11, 30)}}

	slots := MarkConflicts(starts, 60*time.Minute, busy)
	if slots[0].Available || slots[1].Available {
		t.Fatalf("overlapping slots should be unavailable: %v", slots)
	}
	if !slots[2].Available {
		t.Fatalf("12:00 should stay available: %v", slots)
	}
}

func TestMarkConflicts_TouchingIsNotOverlap(t *testing.T) {
	// Booking ends exactly when the slot starts.
	starts := []time.Time{at(t, 11, 0)}
	busy := []Interval{{Start: at(t, 10, 0), End: at(t, 11, 0)}}

	slots := MarkConflicts(starts, 60*time.Minute, busy)
	if !slots[0].Available {
		t.Fatal("half-open intervals should not conflict at the boundary")
	}
}

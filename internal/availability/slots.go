package availability

import "time"

// Slot is a candidate start instant with its conflict-filter verdict.
type Slot struct {
	Start     time.Time `json:"start"`
	Available bool      `json:"available"`
}

// Starts quantizes open intervals into candidate slot starts: within each
// interval [s, e) it emits s, s+step, s+2*step, ... while start+duration <= e.
// Output is chronological with duplicate starts removed.
func Starts(intervals []Interval, duration, step time.Duration) []time.Time {
	if duration <= 0 || step <= 0 {
		return nil
	}

	var starts []time.Time
	for _, iv := range Merge(intervals) {
		for t := iv.Start; !t.Add(duration).After(iv.End); t = t.Add(step) {
			if n := len(starts); n > 0 && !starts[n-1].Before(t) {
				continue
			}
			starts = append(starts, t)
		}
	}
	return starts
}

// MarkConflicts classifies candidate starts against booked intervals. A slot
// [s, s+duration) is unavailable when it overlaps any busy interval. This is a
// display-time computation only; reservation re-checks atomically.
func MarkConflicts(starts []time.Time, duration time.Duration, busy []Interval) []Slot {
	slots := make([]Slot, 0, len(starts))
	for _, s := range starts {
		slots = append(slots, Slot{
			Start:     s,
			Available: !overlapsAny(s, s.Add(duration), busy),
		})
	}
	return slots
}

func overlapsAny(start, end time.Time, busy []Interval) bool {
	for _, b := range busy {
		// Half-open intervals: [start,end) overlaps [b.Start,b.End) iff start < b.End && b.Start < end.
		if start.Before(b.End) && b.Start.Before(end) {
			return true
		}
	}
	return false
}

// Package availability turns a mentor's declared rules into bookable slots.
// All interval arithmetic is on absolute instants with half-open [start, end)
// semantics; wall-clock handling stays in the timezone package.
package availability

import (
	"sort"
	"time"
)

type Interval struct {
	Start time.Time
	End   time.Time
}

func (iv Interval) valid() bool {
	return iv.End.After(iv.Start)
}

// Clip restricts iv to [start, end). The zero Interval means no remainder.
func (iv Interval) Clip(start, end time.Time) Interval {
	s := iv.Start
	e := iv.End
	if s.Before(start) {
		s = start
	}
	if e.After(end) {
		e = end
	}
	if !e.After(s) {
		return Interval{}
	}
	return Interval{Start: s, End: e}
}

// Merge sorts intervals and unions any that overlap or touch. Invalid entries
// are dropped. The input slice is not modified.
func Merge(intervals []Interval) []Interval {
	var in []Interval
	for _, iv := range intervals {
		if iv.valid() {
			in = append(in, iv)
		}
	}
	if len(in) == 0 {
		return nil
	}
	sort.Slice(in, func(i, j int) bool {
		if !in[i].Start.Equal(in[j].Start) {
			return in[i].Start.Before(in[j].Start)
		}
		return in[i].End.Before(in[j].End)
	})

	merged := make([]Interval, 0, len(in))
	for _, cur := range in {
		if len(merged) == 0 {
			merged = append(merged, cur)
			continue
		}
		last := &merged[len(merged)-1]
		if cur.Start.After(last.End) {
			merged = append(merged, cur)
			continue
		}
		if cur.End.After(last.End) {
			last.End = cur.End
		}
	}
	return merged
}

// Subtract removes blocks from base. Both inputs may be unsorted and
// overlapping; the result is sorted and non-overlapping. Subtracting a block
// from the middle of an interval splits it in two.
func Subtract(base, blocks []Interval) []Interval {
	base = Merge(base)
	blocks = Merge(blocks)
	if len(base) == 0 || len(blocks) == 0 {
		return base
	}

	var out []Interval
	for _, b := range base {
		cursor := b.Start
		for _, blk := range blocks {
			if !blk.End.After(cursor) {
				continue
			}
			if !blk.Start.Before(b.End) {
				break
			}
			if blk.Start.After(cursor) {
				out = append(out, Interval{Start: cursor, End: blk.Start})
			}
			if blk.End.After(cursor) {
				cursor = blk.End
			}
		}
		if b.End.After(cursor) {
			out = append(out, Interval{Start: cursor, End: b.End})
		}
	}
	return out
}

// Overlaps reports whether [s1, e1) and [s2, e2) intersect.
func Overlaps(s1, e1, s2, e2 time.Time) bool {
	return s1.Before(e2) && s2.Before(e1)
}

package availability

import (
	"time"

	"github.com/mentorgrid/scheduling/internal/model"
	"github.com/mentorgrid/scheduling/internal/timezone"
)

// Resolve computes the open intervals for one calendar date from the mentor's
// full rule set. The date is interpreted in loc, the mentor's reference zone;
// a rule carrying its own zone is materialized in that zone instead.
//
// Recurring grants matching the date's weekday and additive one-offs
// intersecting the local day are unioned first, then block-out one-offs are
// subtracted. No rules for the date is an empty result, not an error.
func Resolve(rules []model.AvailabilityRule, date timezone.Date, loc *time.Location) []Interval {
	dayStart := timezone.Midnight(date, loc)
	dayEnd := timezone.Midnight(date.AddDays(1), loc)

	var grants []Interval
	var blocks []Interval

	for _, r := range rules {
		if r.Recurring {
			if r.Weekday != date.Weekday() {
				continue
			}
			ruleLoc := loc
			if r.Timezone != "" {
				if l, err := timezone.LoadZone(r.Timezone); err == nil {
					ruleLoc = l
				}
			}
			iv := Interval{
				Start: timezone.FromWall(date, time.Duration(r.StartMinute)*time.Minute, ruleLoc),
				End:   timezone.FromWall(date, time.Duration(r.EndMinute)*time.Minute, ruleLoc),
			}
			if !iv.valid() {
				continue
			}
			if r.IsAvailable {
				grants = append(grants, iv)
			} else {
				blocks = append(blocks, iv)
			}
			continue
		}

		iv := Interval{Start: r.StartTime, End: r.EndTime}
		if !iv.valid() {
			continue
		}
		if r.IsAvailable {
			// Additive one-offs count only where they touch this date.
			if clipped := iv.Clip(dayStart, dayEnd); clipped.valid() {
				grants = append(grants, clipped)
			}
		} else if Overlaps(iv.Start, iv.End, dayStart, dayEnd) {
			blocks = append(blocks, iv)
		}
	}

	return Subtract(grants, blocks)
}

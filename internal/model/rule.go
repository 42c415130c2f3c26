package model

import "time"

// AvailabilityRule is a mentor's declared availability, maintained by the
// profile CRUD and read-only here. Exactly one of the two shapes is populated:
// recurring rules carry Weekday plus wall-clock minute offsets, one-off rules
// carry absolute instants.
type AvailabilityRule struct {
	ID          string
	MentorID    string
	IsAvailable bool
	Recurring   bool

	// Recurring shape. StartMinute/EndMinute are minutes since local midnight
	// in the rule's reference timezone.
	Weekday     time.Weekday
	StartMinute int
	EndMinute   int

	// One-off shape, stored in UTC.
	StartTime time.Time
	EndTime   time.Time

	// Timezone is the IANA zone the wall-clock minutes are defined in.
	Timezone string
}

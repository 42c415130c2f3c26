package model

import "time"

type BookingStatus string

const (
	BookingStatusPending   BookingStatus = "pending"
	BookingStatusConfirmed BookingStatus = "confirmed"
	BookingStatusCompleted BookingStatus = "completed"
	BookingStatusCancelled BookingStatus = "cancelled"
)

type Booking struct {
	ID              string
	MentorID        string
	MenteeID        string
	SessionTypeID   string
	ScheduledAt     time.Time // UTC
	DurationMinutes int       // denormalized from the session type at creation, immutable
	Status          BookingStatus
	Notes           string
	MeetingPlatform string
	MeetingLink     string
	CreatedAt       time.Time
}

// EndsAt is the exclusive end of the booked interval.
func (b Booking) EndsAt() time.Time {
	return b.ScheduledAt.Add(time.Duration(b.DurationMinutes) * time.Minute)
}

// Blocks reports whether the booking occupies its interval for conflict purposes.
func (b Booking) Blocks() bool {
	return b.Status != BookingStatusCancelled
}

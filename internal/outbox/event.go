package outbox

import (
	"encoding/json"
	"time"

	"github.com/mentorgrid/scheduling/internal/model"
)

// Topic names double as event types; one event kind per topic.
const (
	TopicSessionReserved = "scheduling.session.reserved.v1"
)

// Event is the envelope written to the outbox table inside the reserving
// transaction. AggregateID keys the Kafka message, so events for one mentor
// stay ordered on a single partition.
type Event struct {
	AggregateType string
	AggregateID   string
	EventType     string
	Payload       []byte
}

type sessionReservedPayload struct {
	BookingID       string    `json:"booking_id"`
	MentorID        string    `json:"mentor_id"`
	MenteeID        string    `json:"mentee_id"`
	SessionTypeID   string    `json:"session_type_id"`
	ScheduledAt     time.Time `json:"scheduled_at"`
	DurationMinutes int       `json:"duration_minutes"`
	MeetingPlatform string    `json:"meeting_platform,omitempty"`
	MeetingLink     string    `json:"meeting_link,omitempty"`
}

// SessionReserved builds the event emitted when a booking is created.
func SessionReserved(b model.Booking) (Event, error) {
	payload, err := json.Marshal(sessionReservedPayload{
		BookingID:       b.ID,
		MentorID:        b.MentorID,
		MenteeID:        b.MenteeID,
		SessionTypeID:   b.SessionTypeID,
		ScheduledAt:     b.ScheduledAt,
		DurationMinutes: b.DurationMinutes,
		MeetingPlatform: b.MeetingPlatform,
		MeetingLink:     b.MeetingLink,
	})
	if err != nil {
		return Event{}, err
	}
	return Event{
		AggregateType: "booking",
		AggregateID:   b.MentorID,
		EventType:     TopicSessionReserved,
		Payload:       payload,
	}, nil
}

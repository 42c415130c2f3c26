package scheduling

import (
	"context"
	"time"

	"github.com/mentorgrid/scheduling/internal/availability"
	"github.com/mentorgrid/scheduling/internal/model"
	"github.com/mentorgrid/scheduling/internal/timezone"
)

// AvailabilityStore reads a mentor's declared rules. Rules are edited by the
// profile CRUD, never by this service.
type AvailabilityStore interface {
	ListRules(ctx context.Context, mentorID string) ([]model.AvailabilityRule, error)
}

// SessionTypeStore reads session-type definitions. Returns ErrNotFound for an
// unknown id.
type SessionTypeStore interface {
	GetSessionType(ctx context.Context, mentorID, sessionTypeID string) (model.SessionType, error)
}

// BookingStore owns the per-mentor non-overlap invariant. Reserve must insert
// the booking if and only if no non-cancelled booking for the same mentor
// overlaps it, as one atomic operation, and return ErrSlotConflict when it
// loses that race.
type BookingStore interface {
	ListBlocking(ctx context.Context, mentorID string, from, to time.Time) ([]model.Booking, error)
	ListByMentor(ctx context.Context, mentorID string, limit int) ([]model.Booking, error)
	Reserve(ctx context.Context, b *model.Booking) error
}

// SlotCache is an optional short-TTL cache of computed slot lists. Misses and
// cache failures must degrade to recomputation, never to an error.
type SlotCache interface {
	Get(ctx context.Context, mentorID string, date timezone.Date, sessionTypeID string) ([]availability.Slot, bool)
	Set(ctx context.Context, mentorID string, date timezone.Date, sessionTypeID string, slots []availability.Slot)
	Invalidate(ctx context.Context, mentorID string)
}

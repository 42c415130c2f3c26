package scheduling

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/mentorgrid/scheduling/internal/availability"
	"github.com/mentorgrid/scheduling/internal/model"
	"github.com/mentorgrid/scheduling/internal/timezone"
)

// maxDateRangeDays caps AvailableDates scans; the calendar UI requests at most
// two months at a time.
const maxDateRangeDays = 62

type Service struct {
	rules    AvailabilityStore
	sessions SessionTypeStore
	bookings BookingStore
	cache    SlotCache // nil disables caching
	logger   *slog.Logger

	// stepMinutes overrides the slot granularity; 0 means "step equals the
	// session duration", the default policy.
	stepMinutes int

	now func() time.Time
}

func NewService(rules AvailabilityStore, sessions SessionTypeStore, bookings BookingStore, cache SlotCache, logger *slog.Logger, stepMinutes int) *Service {
	return &Service{
		rules:       rules,
		sessions:    sessions,
		bookings:    bookings,
		cache:       cache,
		logger:      logger,
		stepMinutes: stepMinutes,
		now:         time.Now,
	}
}

// SlotView is one bookable start rendered for a viewer. DisplayDate and
// DisplayTime are wall-clock strings in the viewer's zone; Start stays UTC for
// the subsequent reserve call.
type SlotView struct {
	Start       time.Time
	DisplayDate string
	DisplayTime string
	Available   bool
}

// Slots computes the slot list for one calendar date. The date is interpreted
// in the mentor's reference zone; viewerZone only affects display fields.
// Mentors with no availability yield an empty list, not an error.
func (s *Service) Slots(ctx context.Context, mentorID string, date timezone.Date, sessionTypeID, viewerZone string) ([]SlotView, error) {
	viewerLoc, err := timezone.LoadZone(viewerZone)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSlot, err)
	}

	slots, err := s.computeSlots(ctx, mentorID, date, sessionTypeID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	views := make([]SlotView, 0, len(slots))
	for _, slot := range slots {
		if slot.Start.Before(now) {
			continue
		}
		views = append(views, SlotView{
			Start:       slot.Start.UTC(),
			DisplayDate: timezone.DateOf(slot.Start, viewerLoc).String(),
			DisplayTime: timezone.Clock(slot.Start, viewerLoc),
			Available:   slot.Available,
		})
	}
	return views, nil
}

// AvailableDates returns the dates in [from, to] with at least one open,
// future slot.
func (s *Service) AvailableDates(ctx context.Context, mentorID, sessionTypeID string, from, to timezone.Date) ([]timezone.Date, error) {
	if from.After(to) {
		return nil, fmt.Errorf("%w: date range is inverted", ErrInvalidSlot)
	}
	if !from.AddDays(maxDateRangeDays).After(to) {
		return nil, fmt.Errorf("%w: date range exceeds %d days", ErrInvalidSlot, maxDateRangeDays)
	}

	now := s.now()
	var dates []timezone.Date
	for d := from; !d.After(to); d = d.AddDays(1) {
		slots, err := s.computeSlots(ctx, mentorID, d, sessionTypeID)
		if err != nil {
			return nil, err
		}
		for _, slot := range slots {
			if slot.Available && !slot.Start.Before(now) {
				dates = append(dates, d)
				break
			}
		}
	}
	return dates, nil
}

type ReserveRequest struct {
	MentorID        string
	MenteeID        string
	SessionTypeID   string
	Start           time.Time
	Note            string
	MeetingPlatform string
}

// Reserve atomically books a slot. The start is re-validated against a fresh
// availability resolution, so a slot that disappeared since display fails with
// ErrInvalidSlot; losing the insert race fails with ErrSlotConflict. On
// success the booking is created with status pending and downstream
// notification dispatch is triggered through the booking store's outbox.
func (s *Service) Reserve(ctx context.Context, req ReserveRequest) (model.Booking, error) {
	if req.MentorID == "" || req.MenteeID == "" || req.SessionTypeID == "" || req.Start.IsZero() {
		return model.Booking{}, fmt.Errorf("%w: missing required fields", ErrInvalidSlot)
	}
	if !req.Start.After(s.now()) {
		return model.Booking{}, fmt.Errorf("%w: start is in the past", ErrInvalidSlot)
	}

	st, err := s.sessions.GetSessionType(ctx, req.MentorID, req.SessionTypeID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return model.Booking{}, fmt.Errorf("%w: unknown session type %s", ErrInvalidSlot, req.SessionTypeID)
		}
		return model.Booking{}, fmt.Errorf("%w: load session type: %v", ErrStoreUnavailable, err)
	}
	if req.MeetingPlatform != "" && !st.SupportsPlatform(req.MeetingPlatform) {
		return model.Booking{}, fmt.Errorf("%w: session type does not offer platform %q", ErrInvalidSlot, req.MeetingPlatform)
	}

	rules, err := s.rules.ListRules(ctx, req.MentorID)
	if err != nil {
		return model.Booking{}, fmt.Errorf("%w: load availability rules: %v", ErrStoreUnavailable, err)
	}
	mentorLoc := mentorZone(rules)

	// Fresh resolver + generator run for the slot's date in the mentor zone.
	date := timezone.DateOf(req.Start, mentorLoc)
	starts := s.candidateStarts(rules, date, mentorLoc, st.DurationMinutes)
	valid := false
	for _, c := range starts {
		if c.Equal(req.Start) {
			valid = true
			break
		}
	}
	if !valid {
		return model.Booking{}, fmt.Errorf("%w: %s is not a bookable start for %s", ErrInvalidSlot, req.Start.UTC().Format(time.RFC3339), date)
	}

	booking := model.Booking{
		ID:              uuid.NewString(),
		MentorID:        req.MentorID,
		MenteeID:        req.MenteeID,
		SessionTypeID:   req.SessionTypeID,
		ScheduledAt:     req.Start.UTC(),
		DurationMinutes: st.DurationMinutes,
		Status:          model.BookingStatusPending,
		Notes:           req.Note,
		MeetingPlatform: req.MeetingPlatform,
		MeetingLink:     st.PlatformContacts[req.MeetingPlatform],
	}

	if err := s.bookings.Reserve(ctx, &booking); err != nil {
		if errors.Is(err, ErrSlotConflict) {
			return model.Booking{}, err
		}
		return model.Booking{}, fmt.Errorf("%w: reserve booking: %v", ErrStoreUnavailable, err)
	}

	if s.cache != nil {
		s.cache.Invalidate(ctx, req.MentorID)
	}

	s.logger.Info("slot reserved",
		"booking_id", booking.ID,
		"mentor_id", booking.MentorID,
		"mentee_id", booking.MenteeID,
		"scheduled_at", booking.ScheduledAt.Format(time.RFC3339),
		"duration_minutes", booking.DurationMinutes,
	)
	return booking, nil
}

// Bookings lists a mentor's bookings for the calendar UI, newest first.
func (s *Service) Bookings(ctx context.Context, mentorID string, limit int) ([]model.Booking, error) {
	out, err := s.bookings.ListByMentor(ctx, mentorID, limit)
	if err != nil {
		return nil, fmt.Errorf("%w: list bookings: %v", ErrStoreUnavailable, err)
	}
	return out, nil
}

// computeSlots runs resolver -> generator -> conflict filter for one date,
// consulting the cache first.
func (s *Service) computeSlots(ctx context.Context, mentorID string, date timezone.Date, sessionTypeID string) ([]availability.Slot, error) {
	if s.cache != nil {
		if slots, ok := s.cache.Get(ctx, mentorID, date, sessionTypeID); ok {
			return slots, nil
		}
	}

	st, err := s.sessions.GetSessionType(ctx, mentorID, sessionTypeID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, fmt.Errorf("%w: unknown session type %s", ErrInvalidSlot, sessionTypeID)
		}
		return nil, fmt.Errorf("%w: load session type: %v", ErrStoreUnavailable, err)
	}

	rules, err := s.rules.ListRules(ctx, mentorID)
	if err != nil {
		return nil, fmt.Errorf("%w: load availability rules: %v", ErrStoreUnavailable, err)
	}
	if len(rules) == 0 {
		return nil, nil
	}

	mentorLoc := mentorZone(rules)
	starts := s.candidateStarts(rules, date, mentorLoc, st.DurationMinutes)
	if len(starts) == 0 {
		return nil, nil
	}

	duration := time.Duration(st.DurationMinutes) * time.Minute
	from := starts[0]
	to := starts[len(starts)-1].Add(duration)
	booked, err := s.bookings.ListBlocking(ctx, mentorID, from, to)
	if err != nil {
		return nil, fmt.Errorf("%w: load bookings: %v", ErrStoreUnavailable, err)
	}

	busy := make([]availability.Interval, 0, len(booked))
	for _, b := range booked {
		if b.Blocks() {
			busy = append(busy, availability.Interval{Start: b.ScheduledAt, End: b.EndsAt()})
		}
	}

	slots := availability.MarkConflicts(starts, duration, busy)
	if s.cache != nil {
		s.cache.Set(ctx, mentorID, date, sessionTypeID, slots)
	}
	return slots, nil
}

func (s *Service) candidateStarts(rules []model.AvailabilityRule, date timezone.Date, mentorLoc *time.Location, durationMinutes int) []time.Time {
	duration := time.Duration(durationMinutes) * time.Minute
	step := duration
	if s.stepMinutes > 0 {
		step = time.Duration(s.stepMinutes) * time.Minute
	}
	intervals := availability.Resolve(rules, date, mentorLoc)
	return availability.Starts(intervals, duration, step)
}

// mentorZone picks the reference zone from the rule set. Rules for one mentor
// share a zone; rows without one fall back to UTC.
func mentorZone(rules []model.AvailabilityRule) *time.Location {
	for _, r := range rules {
		if r.Timezone == "" {
			continue
		}
		if loc, err := timezone.LoadZone(r.Timezone); err == nil {
			return loc
		}
	}
	return time.UTC
}

package scheduling

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/mentorgrid/scheduling/internal/model"
	"github.com/mentorgrid/scheduling/internal/timezone"
)

// --- in-memory stores ---

type memRules struct {
	rules []model.AvailabilityRule
	err   error
}

func (m *memRules) ListRules(_ context.Context, mentorID string) ([]model.AvailabilityRule, error) {
	if m.err != nil {
		return nil, m.err
	}
	var out []model.AvailabilityRule
	for _, r := range m.rules {
		if r.MentorID == mentorID {
			out = append(out, r)
		}
	}
	return out, nil
}

type memSessions struct {
	types map[string]model.SessionType
}

func (m *memSessions) GetSessionType(_ context.Context, mentorID, sessionTypeID string) (model.SessionType, error) {
	st, ok := m.types[sessionTypeID]
	if !ok || st.MentorID != mentorID {
		return model.SessionType{}, ErrNotFound
	}
	return st, nil
}

// memBookings enforces the same guarantee as the Postgres exclusion
// constraint: at most one non-cancelled booking per mentor per overlapping
// interval, checked and inserted under one lock.
type memBookings struct {
	mu       sync.Mutex
	bookings []model.Booking
}

func (m *memBookings) Reserve(_ context.Context, b *model.Booking) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.bookings {
		if existing.MentorID != b.MentorID || !existing.Blocks() {
			continue
		}
		if b.ScheduledAt.Before(existing.EndsAt()) && existing.ScheduledAt.Before(b.EndsAt()) {
			return ErrSlotConflict
		}
	}
	b.CreatedAt = time.Now().UTC()
	m.bookings = append(m.bookings, *b)
	return nil
}

func (m *memBookings) ListBlocking(_ context.Context, mentorID string, from, to time.Time) ([]model.Booking, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []model.Booking
	for _, b := range m.bookings {
		if b.MentorID == mentorID && b.Blocks() && b.ScheduledAt.Before(to) && b.EndsAt().After(from) {
			out = append(out, b)
		}
	}
	return out, nil
}

func (m *memBookings) ListByMentor(_ context.Context, mentorID string, limit int) ([]model.Booking, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []model.Booking
	for _, b := range m.bookings {
		if b.MentorID == mentorID {
			out = append(out, b)
		}
		if limit > 0 && len(out) >= limit {
			break
		}
	}
	return out, nil
}

// --- fixture ---

// Monday 2026-02-16, New York still on EST (UTC-5).
var monday = timezone.Date{Year: 2026, Month: time.February, Day: 16}

const (
	mentor  = "mentor-1"
	mentee  = "mentee-1"
	session = "sess-60"
)

func nyTime(t *testing.T, hour, min int) time.Time {
	t.Helper()
	loc, err := timezone.LoadZone("America/New_York")
	if err != nil {
		t.Fatalf("LoadZone: %v", err)
	}
	return timezone.FromWall(monday, time.Duration(hour)*time.Hour+time.Duration(min)*time.Minute, loc)
}

func newFixture(t *testing.T, rules []model.AvailabilityRule) (*Service, *memBookings) {
	t.Helper()
	bookings := &memBookings{}
	svc := NewService(
		&memRules{rules: rules},
		&memSessions{types: map[string]model.SessionType{
			session: {
				ID:               session,
				MentorID:         mentor,
				DurationMinutes:  60,
				MeetingPlatforms: []string{"zoom"},
				PlatformContacts: map[string]string{"zoom": "https://zoom.example/mentor-1"},
			},
		}},
		bookings,
		nil,
		slog.New(slog.DiscardHandler),
		0,
	)
	// Deterministic clock well before the fixture Monday.
	svc.now = func() time.Time { return time.Date(2026, 2, 1, 12, 0, 0, 0, time.UTC) }
	return svc, bookings
}

func mondayNineToFive() []model.AvailabilityRule {
	return []model.AvailabilityRule{{
		ID:          "r1",
		MentorID:    mentor,
		IsAvailable: true,
		Recurring:   true,
		Weekday:     time.Monday,
		StartMinute: 540,
		EndMinute:   1020,
		Timezone:    "America/New_York",
	}}
}

func lunchBlockOut(t *testing.T) model.AvailabilityRule {
	return model.AvailabilityRule{
		ID:        "b1",
		MentorID:  mentor,
		Recurring: false,
		StartTime: nyTime(t, 12, 0),
		EndTime:   nyTime(t, 13, 0),
	}
}

// --- tests ---

func TestSlots_NoRulesIsEmptyNotError(t *testing.T) {
	svc, _ := newFixture(t, nil)

	for d := monday; !d.After(monday.AddDays(6)); d = d.AddDays(1) {
		views, err := svc.Slots(context.Background(), mentor, d, session, "America/New_York")
		if err != nil {
			t.Fatalf("Slots(%s): %v", d, err)
		}
		if len(views) != 0 {
			t.Fatalf("Slots(%s): expected empty, got %v", d, views)
		}
	}
}

func TestSlots_BlockOutSubtraction(t *testing.T) {
	svc, _ := newFixture(t, append(mondayNineToFive(), lunchBlockOut(t)))

	views, err := svc.Slots(context.Background(), mentor, monday, session, "America/New_York")
	if err != nil {
		t.Fatalf("Slots: %v", err)
	}

	want := []string{"09:00", "10:00", "11:00", "13:00", "14:00", "15:00", "16:00"}
	if len(views) != len(want) {
		t.Fatalf("expected %d slots, got %d: %v", len(want), len(views), views)
	}
	for i, v := range views {
		if v.DisplayTime != want[i] {
			t.Fatalf("slot %d: expected %s, got %s", i, want[i], v.DisplayTime)
		}
		if !v.Available {
			t.Fatalf("slot %s should be available", v.DisplayTime)
		}
	}
}

func TestSlots_ConflictFilter(t *testing.T) {
	svc, bookings := newFixture(t, append(mondayNineToFive(), lunchBlockOut(t)))
	bookings.bookings = append(bookings.bookings, model.Booking{
		ID:              "existing",
		MentorID:        mentor,
		MenteeID:        "other-mentee",
		SessionTypeID:   session,
		ScheduledAt:     nyTime(t, 14, 0).UTC(),
		DurationMinutes: 60,
		Status:          model.BookingStatusConfirmed,
	})

	views, err := svc.Slots(context.Background(), mentor, monday, session, "America/New_York")
	if err != nil {
		t.Fatalf("Slots: %v", err)
	}
	for _, v := range views {
		wantAvailable := v.DisplayTime != "14:00"
		if v.Available != wantAvailable {
			t.Fatalf("slot %s: expected available=%v", v.DisplayTime, wantAvailable)
		}
	}
}

func TestSlots_CancelledBookingDoesNotBlock(t *testing.T) {
	svc, bookings := newFixture(t, mondayNineToFive())
	bookings.bookings = append(bookings.bookings, model.Booking{
		ID:              "cancelled",
		MentorID:        mentor,
		ScheduledAt:     nyTime(t, 14, 0).UTC(),
		DurationMinutes: 60,
		Status:          model.BookingStatusCancelled,
	})

	views, err := svc.Slots(context.Background(), mentor, monday, session, "America/New_York")
	if err != nil {
		t.Fatalf("Slots: %v", err)
	}
	for _, v := range views {
		if !v.Available {
			t.Fatalf("slot %s should be available, cancelled bookings do not block", v.DisplayTime)
		}
	}
}

func TestSlots_CrossZoneDisplay(t *testing.T) {
	svc, _ := newFixture(t, mondayNineToFive())

	views, err := svc.Slots(context.Background(), mentor, monday, session, "Asia/Kolkata")
	if err != nil {
		t.Fatalf("Slots: %v", err)
	}
	if len(views) == 0 {
		t.Fatal("expected slots")
	}
	// 09:00 EST is 19:30 IST on the same calendar date.
	if views[0].DisplayTime != "19:30" {
		t.Fatalf("expected 19:30 for the viewer, got %s", views[0].DisplayTime)
	}
	if views[0].DisplayDate != monday.String() {
		t.Fatalf("expected display date %s, got %s", monday, views[0].DisplayDate)
	}
	// The 16:00 EST slot is 02:30 IST the next day; the date shift is correct
	// behavior, not a bug.
	last := views[len(views)-1]
	if last.DisplayTime != "02:30" || last.DisplayDate != monday.AddDays(1).String() {
		t.Fatalf("expected 02:30 on %s, got %s on %s", monday.AddDays(1), last.DisplayTime, last.DisplayDate)
	}
}

func TestSlots_InvalidViewerZone(t *testing.T) {
	svc, _ := newFixture(t, mondayNineToFive())

	_, err := svc.Slots(context.Background(), mentor, monday, session, "Mars/Olympus_Mons")
	if !errors.Is(err, ErrInvalidSlot) {
		t.Fatalf("expected ErrInvalidSlot, got %v", err)
	}
}

func TestSlots_StoreFailure(t *testing.T) {
	svc, _ := newFixture(t, nil)
	svc.rules = &memRules{err: errors.New("connection refused")}

	_, err := svc.Slots(context.Background(), mentor, monday, session, "UTC")
	if !errors.Is(err, ErrStoreUnavailable) {
		t.Fatalf("expected ErrStoreUnavailable, got %v", err)
	}
}

func TestAvailableDates(t *testing.T) {
	svc, _ := newFixture(t, mondayNineToFive())

	dates, err := svc.AvailableDates(context.Background(), mentor, session, monday, monday.AddDays(13))
	if err != nil {
		t.Fatalf("AvailableDates: %v", err)
	}
	// Two Mondays in a two-week window.
	if len(dates) != 2 {
		t.Fatalf("expected 2 dates, got %v", dates)
	}
	if dates[0] != monday || dates[1] != monday.AddDays(7) {
		t.Fatalf("expected consecutive Mondays, got %v", dates)
	}
}

func TestAvailableDates_RangeTooLarge(t *testing.T) {
	svc, _ := newFixture(t, mondayNineToFive())

	_, err := svc.AvailableDates(context.Background(), mentor, session, monday, monday.AddDays(90))
	if !errors.Is(err, ErrInvalidSlot) {
		t.Fatalf("expected ErrInvalidSlot, got %v", err)
	}
}

func TestReserve_Success(t *testing.T) {
	svc, bookings := newFixture(t, mondayNineToFive())

	b, err := svc.Reserve(context.Background(), ReserveRequest{
		MentorID:        mentor,
		MenteeID:        mentee,
		SessionTypeID:   session,
		Start:           nyTime(t, 10, 0),
		Note:            "intro chat",
		MeetingPlatform: "zoom",
	})
	if err != nil {
		t.Fatalf("Reserve: %v", err)
	}
	if b.Status != model.BookingStatusPending {
		t.Fatalf("expected pending status, got %s", b.Status)
	}
	if b.DurationMinutes != 60 {
		t.Fatalf("expected denormalized duration 60, got %d", b.DurationMinutes)
	}
	if b.MeetingLink != "https://zoom.example/mentor-1" {
		t.Fatalf("expected meeting link from session type, got %q", b.MeetingLink)
	}
	if len(bookings.bookings) != 1 {
		t.Fatalf("expected 1 stored booking, got %d", len(bookings.bookings))
	}
}

func TestReserve_StartOutsideAvailability(t *testing.T) {
	svc, _ := newFixture(t, append(mondayNineToFive(), lunchBlockOut(t)))

	cases := map[string]time.Time{
		"blocked lunch hour": nyTime(t, 12, 0),
		"off-grid start":     nyTime(t, 10, 30),
		"before opening":     nyTime(t, 8, 0),
		"too late to fit":    nyTime(t, 16, 30),
	}
	for name, start := range cases {
		_, err := svc.Reserve(context.Background(), ReserveRequest{
			MentorID:      mentor,
			MenteeID:      mentee,
			SessionTypeID: session,
			Start:         start,
		})
		if !errors.Is(err, ErrInvalidSlot) {
			t.Fatalf("%s: expected ErrInvalidSlot, got %v", name, err)
		}
	}
}

func TestReserve_PastStart(t *testing.T) {
	svc, _ := newFixture(t, mondayNineToFive())
	svc.now = func() time.Time { return nyTime(t, 11, 0) }

	_, err := svc.Reserve(context.Background(), ReserveRequest{
		MentorID:      mentor,
		MenteeID:      mentee,
		SessionTypeID: session,
		Start:         nyTime(t, 10, 0),
	})
	if !errors.Is(err, ErrInvalidSlot) {
		t.Fatalf("expected ErrInvalidSlot for past start, got %v", err)
	}
}

func TestReserve_UnknownSessionType(t *testing.T) {
	svc, _ := newFixture(t, mondayNineToFive())

	_, err := svc.Reserve(context.Background(), ReserveRequest{
		MentorID:      mentor,
		MenteeID:      mentee,
		SessionTypeID: "nope",
		Start:         nyTime(t, 10, 0),
	})
	if !errors.Is(err, ErrInvalidSlot) {
		t.Fatalf("expected ErrInvalidSlot, got %v", err)
	}
}

func TestReserve_UnsupportedPlatform(t *testing.T) {
	svc, _ := newFixture(t, mondayNineToFive())

	_, err := svc.Reserve(context.Background(), ReserveRequest{
		MentorID:        mentor,
		MenteeID:        mentee,
		SessionTypeID:   session,
		Start:           nyTime(t, 10, 0),
		MeetingPlatform: "carrier-pigeon",
	})
	if !errors.Is(err, ErrInvalidSlot) {
		t.Fatalf("expected ErrInvalidSlot, got %v", err)
	}
}

func TestReserve_ConcurrentSingleWinner(t *testing.T) {
	// One window of exactly one session length: a single bookable slot.
	rules := []model.AvailabilityRule{{
		ID:          "narrow",
		MentorID:    mentor,
		IsAvailable: true,
		Recurring:   true,
		Weekday:     time.Monday,
		StartMinute: 600,
		EndMinute:   660,
		Timezone:    "America/New_York",
	}}
	svc, bookings := newFixture(t, rules)

	start := nyTime(t, 10, 0)
	errs := make(chan error, 2)
	var wg sync.WaitGroup
	for _, who := range []string{"mentee-a", "mentee-b"} {
		wg.Add(1)
		go func(menteeID string) {
			defer wg.Done()
			_, err := svc.Reserve(context.Background(), ReserveRequest{
				MentorID:      mentor,
				MenteeID:      menteeID,
				SessionTypeID: session,
				Start:         start,
			})
			errs <- err
		}(who)
	}
	wg.Wait()
	close(errs)

	var wins, conflicts int
	for err := range errs {
		switch {
		case err == nil:
			wins++
		case errors.Is(err, ErrSlotConflict):
			conflicts++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if wins != 1 || conflicts != 1 {
		t.Fatalf("expected exactly one winner and one conflict, got %d/%d", wins, conflicts)
	}
	if len(bookings.bookings) != 1 {
		t.Fatalf("expected exactly 1 booking, got %d", len(bookings.bookings))
	}
}

func TestReserve_ConflictAfterRefreshShowsUnavailable(t *testing.T) {
	svc, _ := newFixture(t, mondayNineToFive())

	req := ReserveRequest{
		MentorID:      mentor,
		MenteeID:      mentee,
		SessionTypeID: session,
		Start:         nyTime(t, 9, 0),
	}
	if _, err := svc.Reserve(context.Background(), req); err != nil {
		t.Fatalf("first reserve: %v", err)
	}

	req.MenteeID = "mentee-2"
	if _, err := svc.Reserve(context.Background(), req); !errors.Is(err, ErrSlotConflict) {
		t.Fatalf("expected ErrSlotConflict, got %v", err)
	}

	// The loser re-fetches: the contested slot now shows unavailable.
	views, err := svc.Slots(context.Background(), mentor, monday, session, "America/New_York")
	if err != nil {
		t.Fatalf("Slots: %v", err)
	}
	if views[0].DisplayTime != "09:00" || views[0].Available {
		t.Fatalf("expected 09:00 unavailable after booking, got %+v", views[0])
	}
}

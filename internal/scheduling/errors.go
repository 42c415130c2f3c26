package scheduling

import "errors"

// Reservation failures are always typed so callers can tell "pick another
// slot" (ErrInvalidSlot, ErrSlotConflict) from "try again later"
// (ErrStoreUnavailable). Match with errors.Is.
var (
	// ErrInvalidSlot: the requested start is not inside any currently
	// resolved availability interval (stale display, edited rules, or
	// malformed input).
	ErrInvalidSlot = errors.New("slot is not inside current availability")

	// ErrSlotConflict: the atomic reservation lost the race to another
	// booking. The caller should re-fetch slots before re-prompting.
	ErrSlotConflict = errors.New("slot already booked")

	// ErrStoreUnavailable: a store read or write failed. Retry policy belongs
	// to the caller; this service never retries on its own.
	ErrStoreUnavailable = errors.New("store unavailable")

	// ErrNotFound is returned by stores for missing rows; the service maps it
	// onto ErrInvalidSlot where it reaches a reservation path.
	ErrNotFound = errors.New("not found")
)

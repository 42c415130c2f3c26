package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/mentorgrid/scheduling/internal/model"
	"github.com/mentorgrid/scheduling/internal/outbox"
	"github.com/mentorgrid/scheduling/internal/scheduling"
	"github.com/mentorgrid/scheduling/libs/db"
)

// BookingRepository persists bookings. The bookings table carries an
// exclusion constraint over (mentor_id, tstzrange(scheduled_at, ends_at))
// restricted to non-cancelled rows, so the insert itself is the overlap
// check; no SELECT-then-INSERT window exists.
type BookingRepository struct {
	pool   *db.Pool
	outbox *outbox.Repository
}

func NewBookingRepository(pool *db.Pool, outboxRepo *outbox.Repository) *BookingRepository {
	return &BookingRepository{pool: pool, outbox: outboxRepo}
}

// Reserve inserts the booking and its notification event in one transaction.
// A constraint violation maps to scheduling.ErrSlotConflict.
func (r *BookingRepository) Reserve(ctx context.Context, b *model.Booking) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	err = tx.QueryRow(ctx, `
		INSERT INTO bookings
			(id, mentor_id, mentee_id, session_type_id, scheduled_at, duration_minutes, status, notes, meeting_platform, meeting_link)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING created_at
	`, b.ID, b.MentorID, b.MenteeID, b.SessionTypeID, b.ScheduledAt, b.DurationMinutes,
		b.Status, b.Notes, b.MeetingPlatform, b.MeetingLink).Scan(&b.CreatedAt)
	if err != nil {
		if IsConflict(err) {
			return fmt.Errorf("%w: mentor %s at %s", scheduling.ErrSlotConflict, b.MentorID, b.ScheduledAt.Format(time.RFC3339))
		}
		return err
	}

	evt, err := outbox.SessionReserved(*b)
	if err != nil {
		return err
	}
	if err := r.outbox.Insert(ctx, tx, evt); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

// ListBlocking returns the non-cancelled bookings overlapping [from, to).
func (r *BookingRepository) ListBlocking(ctx context.Context, mentorID string, from, to time.Time) ([]model.Booking, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, mentor_id, mentee_id, session_type_id, scheduled_at, duration_minutes,
			status, COALESCE(notes, ''), COALESCE(meeting_platform, ''), COALESCE(meeting_link, ''), created_at
		FROM bookings
		WHERE mentor_id = $1
			AND status <> 'cancelled'
			AND scheduled_at < $3
			AND scheduled_at + make_interval(mins => duration_minutes) > $2
		ORDER BY scheduled_at ASC
	`, mentorID, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanBookings(rows)
}

func (r *BookingRepository) ListByMentor(ctx context.Context, mentorID string, limit int) ([]model.Booking, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := r.pool.Query(ctx, `
		SELECT id, mentor_id, mentee_id, session_type_id, scheduled_at, duration_minutes,
			status, COALESCE(notes, ''), COALESCE(meeting_platform, ''), COALESCE(meeting_link, ''), created_at
		FROM bookings
		WHERE mentor_id = $1
		ORDER BY scheduled_at DESC
		LIMIT $2
	`, mentorID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanBookings(rows)
}

func scanBookings(rows pgx.Rows) ([]model.Booking, error) {
	var bookings []model.Booking
	for rows.Next() {
		var b model.Booking
		if err := rows.Scan(
			&b.ID,
			&b.MentorID,
			&b.MenteeID,
			&b.SessionTypeID,
			&b.ScheduledAt,
			&b.DurationMinutes,
			&b.Status,
			&b.Notes,
			&b.MeetingPlatform,
			&b.MeetingLink,
			&b.CreatedAt,
		); err != nil {
			return nil, err
		}
		b.ScheduledAt = b.ScheduledAt.UTC()
		bookings = append(bookings, b)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return bookings, nil
}

func IsConflict(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23P01"
}

func IsNotFound(err error) bool {
	return errors.Is(err, pgx.ErrNoRows)
}

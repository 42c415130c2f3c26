package storage

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/mentorgrid/scheduling/internal/model"
	"github.com/mentorgrid/scheduling/internal/scheduling"
	"github.com/mentorgrid/scheduling/libs/db"
)

type SessionTypeRepository struct {
	pool *db.Pool
}

func NewSessionTypeRepository(pool *db.Pool) *SessionTypeRepository {
	return &SessionTypeRepository{pool: pool}
}

func (r *SessionTypeRepository) GetSessionType(ctx context.Context, mentorID, sessionTypeID string) (model.SessionType, error) {
	var st model.SessionType
	var contacts []byte
	err := r.pool.QueryRow(ctx, `
		SELECT id, mentor_id, duration_minutes,
			COALESCE(meeting_platforms, '{}'),
			COALESCE(platform_contacts, '{}'::jsonb)
		FROM session_types
		WHERE id = $1 AND mentor_id = $2
	`, sessionTypeID, mentorID).Scan(
		&st.ID,
		&st.MentorID,
		&st.DurationMinutes,
		&st.MeetingPlatforms,
		&contacts,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.SessionType{}, scheduling.ErrNotFound
		}
		return model.SessionType{}, err
	}

	if len(contacts) > 0 {
		if err := json.Unmarshal(contacts, &st.PlatformContacts); err != nil {
			return model.SessionType{}, err
		}
	}
	return st, nil
}

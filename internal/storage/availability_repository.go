package storage

import (
	"context"
	"time"

	"github.com/mentorgrid/scheduling/internal/model"
	"github.com/mentorgrid/scheduling/libs/db"
)

// AvailabilityRepository reads the availability_rules table. Recurring rows
// fill weekday/start_minute/end_minute, one-off rows fill start_time/end_time;
// the unused columns are NULL.
type AvailabilityRepository struct {
	pool *db.Pool
}

func NewAvailabilityRepository(pool *db.Pool) *AvailabilityRepository {
	return &AvailabilityRepository{pool: pool}
}

func (r *AvailabilityRepository) ListRules(ctx context.Context, mentorID string) ([]model.AvailabilityRule, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, mentor_id, is_available, recurring,
			weekday, start_minute, end_minute,
			start_time, end_time,
			COALESCE(timezone, '')
		FROM availability_rules
		WHERE mentor_id = $1
		ORDER BY id
	`, mentorID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var rules []model.AvailabilityRule
	for rows.Next() {
		var rule model.AvailabilityRule
		var weekday, startMinute, endMinute *int
		var startTime, endTime *time.Time
		if err := rows.Scan(
			&rule.ID,
			&rule.MentorID,
			&rule.IsAvailable,
			&rule.Recurring,
			&weekday,
			&startMinute,
			&endMinute,
			&startTime,
			&endTime,
			&rule.Timezone,
		); err != nil {
			return nil, err
		}
		if weekday != nil {
			rule.Weekday = time.Weekday(*weekday)
		}
		if startMinute != nil {
			rule.StartMinute = *startMinute
		}
		if endMinute != nil {
			rule.EndMinute = *endMinute
		}
		if startTime != nil {
			rule.StartTime = startTime.UTC()
		}
		if endTime != nil {
			rule.EndTime = endTime.UTC()
		}
		rules = append(rules, rule)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return rules, nil
}

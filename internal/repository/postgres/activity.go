package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/jwalitptl/carewatch-api/internal/model"
	"github.com/jwalitptl/carewatch-api/internal/repository"
)

type activityRepository struct {
	BaseRepository
}

func NewActivityRepository(db *sqlx.DB) repository.ActivityRepository {
	return &activityRepository{NewBaseRepository(db)}
}

func (r *activityRepository) Record(ctx context.Context, a *model.DeviceActivity) error {
	return r.WithTx(ctx, func(tx *sqlx.Tx) error {
		insert := `
			INSERT INTO device_activity (
				id, elderly_profile_id, device_id, sms_from, sms_body, received_at, created_at
			) VALUES ($1, $2, $3, $4, $5, $6, $7)
		`
		if _, err := tx.ExecContext(ctx, insert,
			a.ID,
			a.ElderlyProfileID,
			a.DeviceID,
			a.SMSFrom,
			a.SMSBody,
			a.ReceivedAt,
			a.CreatedAt,
		); err != nil {
			return fmt.Errorf("failed to record device activity: %w", err)
		}

		update := `UPDATE elderly_profiles SET last_activity_at = $1, updated_at = $1 WHERE id = $2`
		res, err := tx.ExecContext(ctx, update, a.ReceivedAt, a.ElderlyProfileID)
		if err != nil {
			return fmt.Errorf("failed to update last activity: %w", err)
		}
		return expectOneRow("elderly profile", res)
	})
}

func (r *activityRepository) ListByProfile(ctx context.Context, profileID uuid.UUID, page model.Pagination) ([]*model.DeviceActivity, error) {
	page = page.Normalize()
	query := `
		SELECT id, elderly_profile_id, device_id, sms_from, sms_body, received_at, created_at
		FROM device_activity
		WHERE elderly_profile_id = $1
		ORDER BY received_at DESC
		LIMIT $2 OFFSET $3
	`
	activity := []*model.DeviceActivity{}
	if err := r.db.SelectContext(ctx, &activity, query, profileID, page.Limit, page.Offset); err != nil {
		return nil, fmt.Errorf("failed to list device activity: %w", err)
	}
	return activity, nil
}

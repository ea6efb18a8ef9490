package postgres

import (
	"context"
	"database/sql"
	stderrors "errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/jwalitptl/carewatch-api/internal/model"
	"github.com/jwalitptl/carewatch-api/internal/repository"
	"github.com/jwalitptl/carewatch-api/pkg/errors"
)

const alertHistoryColumns = `id, dispatch_id, elderly_profile_id, contact_id, alert_method, message, status,
	error_message, created_at, sent_at, acknowledged_at`

type alertHistoryRepository struct {
	db *sqlx.DB
}

func NewAlertHistoryRepository(db *sqlx.DB) repository.AlertHistoryRepository {
	return &alertHistoryRepository{db: db}
}

func (r *alertHistoryRepository) Create(ctx context.Context, e *model.AlertHistory) error {
	query := `
		INSERT INTO alert_history (
			id, dispatch_id, elderly_profile_id, contact_id, alert_method, message, status,
			error_message, created_at, sent_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	_, err := r.db.ExecContext(ctx, query,
		e.ID,
		e.DispatchID,
		e.ElderlyProfileID,
		e.ContactID,
		e.AlertMethod,
		e.Message,
		e.Status,
		e.ErrorMessage,
		e.CreatedAt,
		e.SentAt,
	)
	if err != nil {
		return fmt.Errorf("failed to record alert history: %w", err)
	}
	return nil
}

func (r *alertHistoryRepository) Get(ctx context.Context, id uuid.UUID) (*model.AlertHistory, error) {
	query := `SELECT ` + alertHistoryColumns + ` FROM alert_history WHERE id = $1`
	var e model.AlertHistory
	if err := r.db.GetContext(ctx, &e, query, id); err != nil {
		return nil, notFound("alert", err)
	}
	return &e, nil
}

func (r *alertHistoryRepository) ListByProfile(ctx context.Context, profileID uuid.UUID, page model.Pagination) ([]*model.AlertHistory, error) {
	page = page.Normalize()
	query := `SELECT ` + alertHistoryColumns + `
		FROM alert_history
		WHERE elderly_profile_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3`
	entries := []*model.AlertHistory{}
	if err := r.db.SelectContext(ctx, &entries, query, profileID, page.Limit, page.Offset); err != nil {
		return nil, fmt.Errorf("failed to list alert history: %w", err)
	}
	return entries, nil
}

func (r *alertHistoryRepository) Acknowledge(ctx context.Context, id uuid.UUID, at time.Time) (*model.AlertHistory, error) {
	query := `
		UPDATE alert_history
		SET status = $1, acknowledged_at = $2
		WHERE id = $3 AND status = $4
		RETURNING ` + alertHistoryColumns
	var e model.AlertHistory
	err := r.db.GetContext(ctx, &e, query, model.AlertStatusAcknowledged, at, id, model.AlertStatusSent)
	if err == nil {
		return &e, nil
	}
	if !stderrors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("failed to acknowledge alert: %w", err)
	}

	current, getErr := r.Get(ctx, id)
	if getErr != nil {
		return nil, getErr
	}
	return nil, errors.Conflict(fmt.Sprintf("alert is %s, only sent alerts can be acknowledged", current.Status), nil)
}

package postgres

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/jwalitptl/carewatch-api/internal/model"
	"github.com/jwalitptl/carewatch-api/internal/repository"
	"github.com/jwalitptl/carewatch-api/pkg/errors"
)

const caregiverColumns = `id, email, full_name, password_hash, phone_number, notification_method, created_at, updated_at`

type caregiverRepository struct {
	db *sqlx.DB
}

func NewCaregiverRepository(db *sqlx.DB) repository.CaregiverRepository {
	return &caregiverRepository{db: db}
}

func (r *caregiverRepository) Create(ctx context.Context, c *model.Caregiver) error {
	query := `
		INSERT INTO caregivers (id, email, full_name, password_hash, phone_number, notification_method, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	if c.NotificationMethod == "" {
		c.NotificationMethod = model.AlertMethodEmail
	}
	_, err := r.db.ExecContext(ctx, query,
		c.ID,
		strings.ToLower(c.Email),
		c.FullName,
		c.PasswordHash,
		c.PhoneNumber,
		c.NotificationMethod,
		c.CreatedAt,
		c.UpdatedAt,
	)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
			return errors.Conflict("email already registered", err)
		}
		return fmt.Errorf("failed to create caregiver: %w", err)
	}
	return nil
}

func (r *caregiverRepository) GetByEmail(ctx context.Context, email string) (*model.Caregiver, error) {
	query := `SELECT ` + caregiverColumns + ` FROM caregivers WHERE email = $1`
	var c model.Caregiver
	if err := r.db.GetContext(ctx, &c, query, strings.ToLower(email)); err != nil {
		return nil, notFound("caregiver", err)
	}
	return &c, nil
}

func (r *caregiverRepository) Get(ctx context.Context, id uuid.UUID) (*model.Caregiver, error) {
	query := `SELECT ` + caregiverColumns + ` FROM caregivers WHERE id = $1`
	var c model.Caregiver
	if err := r.db.GetContext(ctx, &c, query, id); err != nil {
		return nil, notFound("caregiver", err)
	}
	return &c, nil
}

func (r *caregiverRepository) Update(ctx context.Context, c *model.Caregiver) error {
	query := `
		UPDATE caregivers
		SET full_name = $1, phone_number = $2, notification_method = $3, updated_at = $4
		WHERE id = $5
	`
	c.UpdatedAt = time.Now()
	res, err := r.db.ExecContext(ctx, query,
		c.FullName,
		c.PhoneNumber,
		c.NotificationMethod,
		c.UpdatedAt,
		c.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update caregiver: %w", err)
	}
	return expectOneRow("caregiver", res)
}

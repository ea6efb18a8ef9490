package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/jwalitptl/carewatch-api/internal/model"
	"github.com/jwalitptl/carewatch-api/internal/repository"
	"github.com/jwalitptl/carewatch-api/pkg/errors"
)

const deviceColumns = `id, caregiver_id, device_name, phone_number, inactivity_threshold_hours, is_active, created_at, updated_at`

type deviceRepository struct {
	db *sqlx.DB
}

func NewDeviceRepository(db *sqlx.DB) repository.DeviceRepository {
	return &deviceRepository{db: db}
}

func duplicateDevice(err error) error {
	if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
		return errors.Conflict("device phone number is already registered", err)
	}
	return nil
}

func (r *deviceRepository) Create(ctx context.Context, d *model.Device) error {
	query := `
		INSERT INTO devices (` + deviceColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err := r.db.ExecContext(ctx, query,
		d.ID,
		d.CaregiverID,
		d.DeviceName,
		d.PhoneNumber,
		d.InactivityThresholdHours,
		d.IsActive,
		d.CreatedAt,
		d.UpdatedAt,
	)
	if err != nil {
		if conflict := duplicateDevice(err); conflict != nil {
			return conflict
		}
		return fmt.Errorf("failed to create device: %w", err)
	}
	return nil
}

func (r *deviceRepository) Get(ctx context.Context, id uuid.UUID) (*model.Device, error) {
	query := `SELECT ` + deviceColumns + ` FROM devices WHERE id = $1`
	var d model.Device
	if err := r.db.GetContext(ctx, &d, query, id); err != nil {
		return nil, notFound("device", err)
	}
	return &d, nil
}

func (r *deviceRepository) Update(ctx context.Context, d *model.Device) error {
	query := `
		UPDATE devices
		SET device_name = $1, phone_number = $2, inactivity_threshold_hours = $3, is_active = $4, updated_at = $5
		WHERE id = $6
	`
	d.UpdatedAt = time.Now()
	res, err := r.db.ExecContext(ctx, query,
		d.DeviceName,
		d.PhoneNumber,
		d.InactivityThresholdHours,
		d.IsActive,
		d.UpdatedAt,
		d.ID,
	)
	if err != nil {
		if conflict := duplicateDevice(err); conflict != nil {
			return conflict
		}
		return fmt.Errorf("failed to update device: %w", err)
	}
	return expectOneRow("device", res)
}

func (r *deviceRepository) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM devices WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete device: %w", err)
	}
	return expectOneRow("device", res)
}

func (r *deviceRepository) ListByCaregiver(ctx context.Context, caregiverID uuid.UUID) ([]*model.Device, error) {
	query := `SELECT ` + deviceColumns + ` FROM devices WHERE caregiver_id = $1 ORDER BY created_at DESC`
	devices := []*model.Device{}
	if err := r.db.SelectContext(ctx, &devices, query, caregiverID); err != nil {
		return nil, fmt.Errorf("failed to list devices: %w", err)
	}
	return devices, nil
}

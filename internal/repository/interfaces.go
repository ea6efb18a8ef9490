package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/jwalitptl/carewatch-api/internal/model"
)

// All repository interfaces in one file
type (
	CaregiverRepository interface {
		Create(ctx context.Context, caregiver *model.Caregiver) error
		GetByEmail(ctx context.Context, email string) (*model.Caregiver, error)
		Get(ctx context.Context, id uuid.UUID) (*model.Caregiver, error)
		// Update writes the editable settings; email and password are untouched.
		Update(ctx context.Context, caregiver *model.Caregiver) error
	}

	// DeviceRepository stores monitoring devices per caregiver.
	DeviceRepository interface {
		Create(ctx context.Context, device *model.Device) error
		Get(ctx context.Context, id uuid.UUID) (*model.Device, error)
		Update(ctx context.Context, device *model.Device) error
		Delete(ctx context.Context, id uuid.UUID) error
		// ListByCaregiver returns newest first.
		ListByCaregiver(ctx context.Context, caregiverID uuid.UUID) ([]*model.Device, error)
	}

	// ProfileRepository stores monitored individuals.
	ProfileRepository interface {
		Create(ctx context.Context, profile *model.ElderlyProfile) error
		Get(ctx context.Context, id uuid.UUID) (*model.ElderlyProfile, error)
		Update(ctx context.Context, profile *model.ElderlyProfile) error
		Delete(ctx context.Context, id uuid.UUID) error
		ListByCaregiver(ctx context.Context, caregiverID uuid.UUID) ([]*model.ElderlyProfile, error)
		// FindByDevicePhone returns NotFound unless exactly one profile carries the number.
		FindByDevicePhone(ctx context.Context, phone string) (*model.ElderlyProfile, error)
	}

	// ContactRepository is the contact directory.
	ContactRepository interface {
		Create(ctx context.Context, contact *model.Contact) error
		Get(ctx context.Context, id uuid.UUID) (*model.Contact, error)
		Update(ctx context.Context, contact *model.Contact) error
		Delete(ctx context.Context, id uuid.UUID) error
		// ListByProfile returns contacts primary first.
		ListByProfile(ctx context.Context, profileID uuid.UUID) ([]*model.Contact, error)
	}

	// AlertHistoryRepository is the delivery ledger.
	AlertHistoryRepository interface {
		Create(ctx context.Context, entry *model.AlertHistory) error
		Get(ctx context.Context, id uuid.UUID) (*model.AlertHistory, error)
		ListByProfile(ctx context.Context, profileID uuid.UUID, page model.Pagination) ([]*model.AlertHistory, error)
		// Acknowledge moves a sent entry to acknowledged. Returns Conflict for any other status.
		Acknowledge(ctx context.Context, id uuid.UUID, at time.Time) (*model.AlertHistory, error)
	}

	ActivityRepository interface {
		// Record appends the signal and refreshes the profile's last activity in one transaction.
		Record(ctx context.Context, activity *model.DeviceActivity) error
		ListByProfile(ctx context.Context, profileID uuid.UUID, page model.Pagination) ([]*model.DeviceActivity, error)
	}

	OutboxRepository interface {
		Create(ctx context.Context, event *model.OutboxEvent) error
		GetPendingEvents(ctx context.Context, limit int) ([]*model.OutboxEvent, error)
		UpdateStatus(ctx context.Context, id uuid.UUID, status model.OutboxStatus, errorMessage *string, retryAt *time.Time) error
		DeleteProcessedBefore(ctx context.Context, before time.Time) (int64, error)
	}
)

package device

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jwalitptl/carewatch-api/internal/model"
	"github.com/jwalitptl/carewatch-api/internal/repository"
	"github.com/jwalitptl/carewatch-api/pkg/errors"
)

type Service struct {
	repo repository.DeviceRepository
	now  func() time.Time
}

func NewService(repo repository.DeviceRepository) *Service {
	return &Service{repo: repo, now: time.Now}
}

func (s *Service) Create(ctx context.Context, caregiverID uuid.UUID, req *model.CreateDeviceRequest) (*model.Device, error) {
	now := s.now()
	d := &model.Device{
		ID:                       uuid.New(),
		CaregiverID:              caregiverID,
		DeviceName:               strings.TrimSpace(req.DeviceName),
		PhoneNumber:              strings.TrimSpace(req.PhoneNumber),
		InactivityThresholdHours: model.DefaultInactivityThresholdHours,
		IsActive:                 true,
		CreatedAt:                now,
		UpdatedAt:                now,
	}
	if req.InactivityThresholdHours != nil {
		d.InactivityThresholdHours = *req.InactivityThresholdHours
	}
	if req.IsActive != nil {
		d.IsActive = *req.IsActive
	}

	if err := validate(d); err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, d); err != nil {
		return nil, fmt.Errorf("failed to create device: %w", err)
	}
	return d, nil
}

// Get returns the device only when caregiverID owns it. Foreign devices look missing.
func (s *Service) Get(ctx context.Context, caregiverID, id uuid.UUID) (*model.Device, error) {
	d, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get device: %w", err)
	}
	if d.CaregiverID != caregiverID {
		return nil, errors.NotFound("device", nil)
	}
	return d, nil
}

func (s *Service) List(ctx context.Context, caregiverID uuid.UUID) ([]*model.Device, error) {
	devices, err := s.repo.ListByCaregiver(ctx, caregiverID)
	if err != nil {
		return nil, fmt.Errorf("failed to list devices: %w", err)
	}
	return devices, nil
}

func (s *Service) Update(ctx context.Context, caregiverID, id uuid.UUID, req *model.UpdateDeviceRequest) (*model.Device, error) {
	d, err := s.Get(ctx, caregiverID, id)
	if err != nil {
		return nil, err
	}

	if req.DeviceName != nil {
		d.DeviceName = strings.TrimSpace(*req.DeviceName)
	}
	if req.PhoneNumber != nil {
		d.PhoneNumber = strings.TrimSpace(*req.PhoneNumber)
	}
	if req.InactivityThresholdHours != nil {
		d.InactivityThresholdHours = *req.InactivityThresholdHours
	}
	if req.IsActive != nil {
		d.IsActive = *req.IsActive
	}

	if err := validate(d); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, d); err != nil {
		return nil, fmt.Errorf("failed to update device: %w", err)
	}
	return d, nil
}

func (s *Service) Delete(ctx context.Context, caregiverID, id uuid.UUID) error {
	if _, err := s.Get(ctx, caregiverID, id); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete device: %w", err)
	}
	return nil
}

func validate(d *model.Device) error {
	if d.DeviceName == "" {
		return errors.BadRequest("device name is required", nil)
	}
	if d.PhoneNumber == "" {
		return errors.BadRequest("phone number is required", nil)
	}
	if d.InactivityThresholdHours <= 0 {
		return errors.BadRequest("inactivity threshold must be greater than 0", nil)
	}
	return nil
}

package profile

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jwalitptl/carewatch-api/internal/model"
	"github.com/jwalitptl/carewatch-api/internal/repository"
	"github.com/jwalitptl/carewatch-api/pkg/errors"
)

type Service struct {
	repo repository.ProfileRepository
	now  func() time.Time
}

func NewService(repo repository.ProfileRepository) *Service {
	return &Service{repo: repo, now: time.Now}
}

func (s *Service) Create(ctx context.Context, caregiverID uuid.UUID, req *model.CreateProfileRequest) (*model.ElderlyProfile, error) {
	now := s.now()
	p := &model.ElderlyProfile{
		ID:                       uuid.New(),
		CaregiverID:              caregiverID,
		FullName:                 strings.TrimSpace(req.FullName),
		Age:                      req.Age,
		Address:                  req.Address,
		MedicalNotes:             req.MedicalNotes,
		DevicePhoneNumber:        normalizePhone(req.DevicePhoneNumber),
		InactivityThresholdHours: model.DefaultInactivityThresholdHours,
		LastActivityAt:           &now,
		Status:                   model.ProfileStatusActive,
		CreatedAt:                now,
		UpdatedAt:                now,
	}
	if req.InactivityThresholdHours != nil {
		p.InactivityThresholdHours = *req.InactivityThresholdHours
	}

	if err := s.validate(ctx, p); err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, p); err != nil {
		return nil, fmt.Errorf("failed to create elderly profile: %w", err)
	}
	return p, nil
}

// Get returns the profile only when caregiverID owns it. Foreign profiles look missing.
func (s *Service) Get(ctx context.Context, caregiverID, id uuid.UUID) (*model.ElderlyProfile, error) {
	p, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get elderly profile: %w", err)
	}
	if p.CaregiverID != caregiverID {
		return nil, errors.NotFound("elderly profile", nil)
	}
	return p, nil
}

func (s *Service) List(ctx context.Context, caregiverID uuid.UUID) ([]*model.ElderlyProfile, error) {
	profiles, err := s.repo.ListByCaregiver(ctx, caregiverID)
	if err != nil {
		return nil, fmt.Errorf("failed to list elderly profiles: %w", err)
	}
	return profiles, nil
}

func (s *Service) Update(ctx context.Context, caregiverID, id uuid.UUID, req *model.UpdateProfileRequest) (*model.ElderlyProfile, error) {
	p, err := s.Get(ctx, caregiverID, id)
	if err != nil {
		return nil, err
	}

	if req.FullName != nil {
		p.FullName = strings.TrimSpace(*req.FullName)
	}
	if req.Age != nil {
		p.Age = req.Age
	}
	if req.Address != nil {
		p.Address = req.Address
	}
	if req.MedicalNotes != nil {
		p.MedicalNotes = req.MedicalNotes
	}
	if req.DevicePhoneNumber != nil {
		p.DevicePhoneNumber = normalizePhone(req.DevicePhoneNumber)
	}
	if req.InactivityThresholdHours != nil {
		p.InactivityThresholdHours = *req.InactivityThresholdHours
	}
	if req.Status != nil {
		p.Status = *req.Status
	}

	if err := s.validate(ctx, p); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, p); err != nil {
		return nil, fmt.Errorf("failed to update elderly profile: %w", err)
	}
	return p, nil
}

func (s *Service) Delete(ctx context.Context, caregiverID, id uuid.UUID) error {
	if _, err := s.Get(ctx, caregiverID, id); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete elderly profile: %w", err)
	}
	return nil
}

// Status classifies the profile by time since its last activity.
func (s *Service) Status(ctx context.Context, caregiverID, id uuid.UUID) (*model.ActivityStatus, error) {
	p, err := s.Get(ctx, caregiverID, id)
	if err != nil {
		return nil, err
	}
	return Classify(p, s.now()), nil
}

// Classify is active strictly below the threshold and inactive at or above it.
func Classify(p *model.ElderlyProfile, now time.Time) *model.ActivityStatus {
	status := &model.ActivityStatus{
		ProfileID:      p.ID,
		ThresholdHours: p.InactivityThresholdHours,
		LastActivityAt: p.LastActivityAt,
	}
	if p.LastActivityAt == nil {
		status.Status = model.ActivityStateUnknown
		status.Message = "No activity recorded"
		return status
	}

	hours := now.Sub(*p.LastActivityAt).Hours()
	status.HoursSince = &hours
	if hours < float64(p.InactivityThresholdHours) {
		status.Status = model.ActivityStateActive
		status.Message = "Active recently"
	} else {
		status.Status = model.ActivityStateInactive
		status.Message = fmt.Sprintf("Inactive for %dh", int(math.Floor(hours)))
	}
	return status
}

func (s *Service) validate(ctx context.Context, p *model.ElderlyProfile) error {
	if p.FullName == "" {
		return errors.BadRequest("full name is required", nil)
	}
	if p.InactivityThresholdHours <= 0 {
		return errors.BadRequest("inactivity threshold must be greater than 0", nil)
	}
	if p.DevicePhoneNumber == nil {
		return nil
	}

	existing, err := s.repo.FindByDevicePhone(ctx, *p.DevicePhoneNumber)
	switch {
	case err == nil && existing.ID != p.ID:
		return errors.Conflict("device phone number is already registered", nil)
	case err != nil && !errors.IsNotFound(err):
		return fmt.Errorf("failed to check device phone number: %w", err)
	}
	return nil
}

func normalizePhone(phone *string) *string {
	if phone == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*phone)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

// Package caregiver serves the signed-in caregiver's own account settings.
package caregiver

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/jwalitptl/carewatch-api/internal/model"
	"github.com/jwalitptl/carewatch-api/internal/repository"
	"github.com/jwalitptl/carewatch-api/pkg/errors"
)

type Service struct {
	repo repository.CaregiverRepository
}

func NewService(repo repository.CaregiverRepository) *Service {
	return &Service{repo: repo}
}

func (s *Service) Me(ctx context.Context, caregiverID uuid.UUID) (*model.Caregiver, error) {
	c, err := s.repo.Get(ctx, caregiverID)
	if err != nil {
		return nil, fmt.Errorf("failed to get caregiver: %w", err)
	}
	return c, nil
}

// UpdateSettings applies the non-nil fields. An empty phone number clears it.
func (s *Service) UpdateSettings(ctx context.Context, caregiverID uuid.UUID, req *model.UpdateSettingsRequest) (*model.Caregiver, error) {
	c, err := s.Me(ctx, caregiverID)
	if err != nil {
		return nil, err
	}

	if req.FullName != nil {
		name := strings.TrimSpace(*req.FullName)
		if name == "" {
			return nil, errors.BadRequest("full name is required", nil)
		}
		c.FullName = name
	}
	if req.PhoneNumber != nil {
		phone := strings.TrimSpace(*req.PhoneNumber)
		if phone == "" {
			c.PhoneNumber = nil
		} else {
			c.PhoneNumber = &phone
		}
	}
	if req.NotificationMethod != nil {
		if !req.NotificationMethod.Valid() {
			return nil, errors.BadRequest("notification method must be one of email, sms, voice_call", nil)
		}
		c.NotificationMethod = *req.NotificationMethod
	}

	if err := s.repo.Update(ctx, c); err != nil {
		return nil, fmt.Errorf("failed to update caregiver: %w", err)
	}
	return c, nil
}

package contact

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
	repo repository.ContactRepository
}

func NewService(repo repository.ContactRepository) *Service {
	return &Service{repo: repo}
}

func (s *Service) Create(ctx context.Context, profileID uuid.UUID, req *model.CreateContactRequest) (*model.Contact, error) {
	c := &model.Contact{
		ID:               uuid.New(),
		ElderlyProfileID: profileID,
		FullName:         strings.TrimSpace(req.FullName),
		Relationship:     trimmed(req.Relationship),
		Email:            trimmed(req.Email),
		Phone:            trimmed(req.Phone),
		AlertMethods:     model.AlertMethods(req.AlertMethods),
		IsPrimary:        req.IsPrimary,
		CreatedAt:        time.Now(),
	}
	if err := Validate(c); err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, c); err != nil {
		return nil, fmt.Errorf("failed to create contact: %w", err)
	}
	return c, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*model.Contact, error) {
	c, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get contact: %w", err)
	}
	return c, nil
}

// ListByProfile returns the profile's contacts, primary first.
func (s *Service) ListByProfile(ctx context.Context, profileID uuid.UUID) ([]*model.Contact, error) {
	contacts, err := s.repo.ListByProfile(ctx, profileID)
	if err != nil {
		return nil, fmt.Errorf("failed to list contacts: %w", err)
	}
	return contacts, nil
}

// Update applies the request fields that are set. An empty email or phone clears it.
func (s *Service) Update(ctx context.Context, id uuid.UUID, req *model.UpdateContactRequest) (*model.Contact, error) {
	c, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.FullName != nil {
		c.FullName = strings.TrimSpace(*req.FullName)
	}
	if req.Relationship != nil {
		c.Relationship = trimmed(req.Relationship)
	}
	if req.Email != nil {
		c.Email = trimmed(req.Email)
	}
	if req.Phone != nil {
		c.Phone = trimmed(req.Phone)
	}
	if req.AlertMethods != nil {
		c.AlertMethods = model.AlertMethods(req.AlertMethods)
	}
	if req.IsPrimary != nil {
		c.IsPrimary = *req.IsPrimary
	}

	if err := Validate(c); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, c); err != nil {
		return nil, fmt.Errorf("failed to update contact: %w", err)
	}
	return c, nil
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete contact: %w", err)
	}
	return nil
}

// Validate checks the write-time contact invariants: a name, at least one
// destination, and a non-empty set of distinct channels each backed by a destination.
func Validate(c *model.Contact) error {
	if c.FullName == "" {
		return errors.BadRequest("full name is required", nil)
	}
	if !c.HasEmail() && !c.HasPhone() {
		return errors.BadRequest("email or phone is required", nil)
	}
	if len(c.AlertMethods) == 0 {
		return errors.BadRequest("at least one alert method is required", nil)
	}

	seen := make(map[model.AlertMethod]bool, len(c.AlertMethods))
	for _, m := range c.AlertMethods {
		if !m.Valid() {
			return errors.BadRequest(fmt.Sprintf("unsupported alert method %q", m), nil)
		}
		if seen[m] {
			return errors.BadRequest(fmt.Sprintf("duplicate alert method %q", m), nil)
		}
		seen[m] = true
		if _, ok := c.Destination(m); !ok {
			return errors.BadRequest(fmt.Sprintf("alert method %s requires %s", m, requiredField(m)), nil)
		}
	}
	return nil
}

func requiredField(m model.AlertMethod) string {
	if m == model.AlertMethodEmail {
		return "an email address"
	}
	return "a phone number"
}

func trimmed(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}

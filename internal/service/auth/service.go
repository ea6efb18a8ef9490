package auth

import (
	"context"
	stderrors "errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jwalitptl/carewatch-api/internal/model"
	"github.com/jwalitptl/carewatch-api/internal/repository"
	"github.com/jwalitptl/carewatch-api/pkg/auth"
	"github.com/jwalitptl/carewatch-api/pkg/errors"
	"github.com/jwalitptl/carewatch-api/pkg/security"
)

var ErrInvalidCredentials = stderrors.New("invalid credentials")

type Service struct {
	caregivers repository.CaregiverRepository
	jwtSvc     auth.JWTService
	hasher     security.PasswordHasher
	// dummyHash is compared against for unknown emails so both login failures cost one bcrypt.
	dummyHash  string
}

func NewService(caregivers repository.CaregiverRepository, jwtSvc auth.JWTService, hasher security.PasswordHasher) *Service {
	dummy, _ := hasher.Hash("carewatch-unknown-caregiver")
	return &Service{
		caregivers: caregivers,
		jwtSvc:     jwtSvc,
		hasher:     hasher,
		dummyHash:  dummy,
	}
}

func (s *Service) Register(ctx context.Context, req *model.RegisterRequest) (*model.TokenResponse, error) {
	hash, err := s.hasher.Hash(req.Password)
	if err != nil {
		switch {
		case stderrors.Is(err, security.ErrPasswordTooShort):
			return nil, errors.BadRequest(fmt.Sprintf("password must be at least %d characters", security.MinPasswordLen), err)
		case stderrors.Is(err, security.ErrPasswordTooLong):
			return nil, errors.BadRequest(fmt.Sprintf("password must be at most %d bytes", security.MaxPasswordLen), err)
		}
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	now := time.Now()
	caregiver := &model.Caregiver{
		ID:                 uuid.New(),
		Email:              strings.ToLower(strings.TrimSpace(req.Email)),
		FullName:           strings.TrimSpace(req.FullName),
		PasswordHash:       hash,
		PhoneNumber:        req.PhoneNumber,
		NotificationMethod: model.AlertMethodEmail,
		CreatedAt:          now,
		UpdatedAt:          now,
	}
	if caregiver.FullName == "" {
		return nil, errors.BadRequest("full name is required", nil)
	}
	if err := s.caregivers.Create(ctx, caregiver); err != nil {
		return nil, fmt.Errorf("failed to register caregiver: %w", err)
	}
	return s.issue(caregiver)
}

func (s *Service) Login(ctx context.Context, email, password string) (*model.TokenResponse, error) {
	caregiver, err := s.caregivers.GetByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		if errors.IsNotFound(err) {
			_ = s.hasher.Compare(s.dummyHash, password)
			return nil, errors.Unauthorized(ErrInvalidCredentials)
		}
		return nil, fmt.Errorf("failed to load caregiver: %w", err)
	}
	if err := s.hasher.Compare(caregiver.PasswordHash, password); err != nil {
		return nil, errors.Unauthorized(ErrInvalidCredentials)
	}
	return s.issue(caregiver)
}

// Authenticate resolves a bearer token into its claims.
func (s *Service) Authenticate(token string) (*auth.Claims, error) {
	claims, err := s.jwtSvc.ValidateToken(token)
	if err != nil {
		return nil, errors.Unauthorized(err)
	}
	return claims, nil
}

func (s *Service) issue(caregiver *model.Caregiver) (*model.TokenResponse, error) {
	token, expiresAt, err := s.jwtSvc.GenerateAccessToken(caregiver.ID, caregiver.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}
	return &model.TokenResponse{
		AccessToken: token,
		TokenType:   "Bearer",
		ExpiresAt:   expiresAt,
		Caregiver:   caregiver,
	}, nil
}

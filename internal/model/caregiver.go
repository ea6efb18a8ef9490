package model

import (
	"time"

	"github.com/google/uuid"
)

// Caregiver owns monitored profiles. NotificationMethod is their own preferred
// alert channel.
type Caregiver struct {
	ID                 uuid.UUID   `json:"id" db:"id"`
	Email              string      `json:"email" db:"email"`
	FullName           string      `json:"full_name" db:"full_name"`
	PasswordHash       string      `json:"-" db:"password_hash"`
	PhoneNumber        *string     `json:"phone_number" db:"phone_number"`
	NotificationMethod AlertMethod `json:"notification_method" db:"notification_method"`
	CreatedAt          time.Time   `json:"created_at" db:"created_at"`
	UpdatedAt          time.Time   `json:"updated_at" db:"updated_at"`
}

// UpdateSettingsRequest edits the caregiver's own account settings.
type UpdateSettingsRequest struct {
	FullName           *string      `json:"full_name" binding:"omitempty,max=200"`
	PhoneNumber        *string      `json:"phone_number" binding:"omitempty,max=25"`
	NotificationMethod *AlertMethod `json:"notification_method" binding:"omitempty,alert_method"`
}

type RegisterRequest struct {
	Email       string  `json:"email" binding:"required,email"`
	FullName    string  `json:"full_name" binding:"required,max=200"`
	Password    string  `json:"password" binding:"required,min=8,max=72"`
	PhoneNumber *string `json:"phone_number" binding:"omitempty,max=25"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type TokenResponse struct {
	AccessToken string     `json:"access_token"`
	TokenType   string     `json:"token_type"`
	ExpiresAt   time.Time  `json:"expires_at"`
	Caregiver   *Caregiver `json:"caregiver"`
}

package model

import (
	"time"

	"github.com/google/uuid"
)

// Device is a monitoring unit registered by a caregiver.
type Device struct {
	ID                       uuid.UUID `json:"id" db:"id"`
	CaregiverID              uuid.UUID `json:"caregiver_id" db:"caregiver_id"`
	DeviceName               string    `json:"device_name" db:"device_name"`
	PhoneNumber              string    `json:"phone_number" db:"phone_number"`
	InactivityThresholdHours int       `json:"inactivity_threshold_hours" db:"inactivity_threshold_hours"`
	IsActive                 bool      `json:"is_active" db:"is_active"`
	CreatedAt                time.Time `json:"created_at" db:"created_at"`
	UpdatedAt                time.Time `json:"updated_at" db:"updated_at"`
}

type CreateDeviceRequest struct {
	DeviceName               string `json:"device_name" binding:"required,max=100"`
	PhoneNumber              string `json:"phone_number" binding:"required,max=25"`
	InactivityThresholdHours *int   `json:"inactivity_threshold_hours"`
	IsActive                 *bool  `json:"is_active"`
}

type UpdateDeviceRequest struct {
	DeviceName               *string `json:"device_name" binding:"omitempty,max=100"`
	PhoneNumber              *string `json:"phone_number" binding:"omitempty,max=25"`
	InactivityThresholdHours *int    `json:"inactivity_threshold_hours"`
	IsActive                 *bool   `json:"is_active"`
}

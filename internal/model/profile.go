package model

import (
	"time"

	"github.com/google/uuid"
)

const (
	DefaultInactivityThresholdHours = 24
	ProfileStatusActive             = "active"
)

// ElderlyProfile is a monitored individual owned by a caregiver.
type ElderlyProfile struct {
	ID                       uuid.UUID  `json:"id" db:"id"`
	CaregiverID              uuid.UUID  `json:"caregiver_id" db:"caregiver_id"`
	FullName                 string     `json:"full_name" db:"full_name"`
	Age                      *int       `json:"age" db:"age"`
	Address                  *string    `json:"address" db:"address"`
	MedicalNotes             *string    `json:"medical_notes" db:"medical_notes"`
	DevicePhoneNumber        *string    `json:"device_phone_number" db:"device_phone_number"`
	InactivityThresholdHours int        `json:"inactivity_threshold_hours" db:"inactivity_threshold_hours"`
	LastActivityAt           *time.Time `json:"last_activity_at" db:"last_activity_at"`
	Status                   string     `json:"status" db:"status"`
	CreatedAt                time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt                time.Time  `json:"updated_at" db:"updated_at"`
}

// AddressOrDefault is what alert templates print for the address.
func (p *ElderlyProfile) AddressOrDefault() string {
	if p.Address == nil || *p.Address == "" {
		return "Not provided"
	}
	return *p.Address
}

type CreateProfileRequest struct {
	FullName                 string  `json:"full_name" binding:"required,max=200"`
	Age                      *int    `json:"age" binding:"omitempty,min=0,max=150"`
	Address                  *string `json:"address" binding:"omitempty,max=500"`
	MedicalNotes             *string `json:"medical_notes"`
	DevicePhoneNumber        *string `json:"device_phone_number" binding:"omitempty,max=25"`
	InactivityThresholdHours *int    `json:"inactivity_threshold_hours"`
}

type UpdateProfileRequest struct {
	FullName                 *string `json:"full_name" binding:"omitempty,max=200"`
	Age                      *int    `json:"age" binding:"omitempty,min=0,max=150"`
	Address                  *string `json:"address" binding:"omitempty,max=500"`
	MedicalNotes             *string `json:"medical_notes"`
	DevicePhoneNumber        *string `json:"device_phone_number" binding:"omitempty,max=25"`
	InactivityThresholdHours *int    `json:"inactivity_threshold_hours"`
	Status                   *string `json:"status" binding:"omitempty,oneof=active paused archived"`
}

type ActivityState string

const (
	ActivityStateUnknown  ActivityState = "unknown"
	ActivityStateActive   ActivityState = "active"
	ActivityStateInactive ActivityState = "inactive"
)

// ActivityStatus is the computed, read-only view of a profile's inactivity.
type ActivityStatus struct {
	ProfileID      uuid.UUID     `json:"profile_id"`
	Status         ActivityState `json:"status"`
	HoursSince     *float64      `json:"hours_since,omitempty"`
	ThresholdHours int           `json:"threshold_hours"`
	LastActivityAt *time.Time    `json:"last_activity_at"`
	Message        string        `json:"message"`
}

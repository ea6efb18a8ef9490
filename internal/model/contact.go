package model

import (
	"database/sql/driver"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

type AlertMethod string

const (
	AlertMethodEmail     AlertMethod = "email"
	AlertMethodSMS       AlertMethod = "sms"
	AlertMethodVoiceCall AlertMethod = "voice_call"
)

// Valid reports whether m is one of the supported channels.
func (m AlertMethod) Valid() bool {
	switch m {
	case AlertMethodEmail, AlertMethodSMS, AlertMethodVoiceCall:
		return true
	}
	return false
}

// AlertMethods maps onto the alert_method[] column.
type AlertMethods []AlertMethod

func (a *AlertMethods) Scan(src interface{}) error {
	var raw pq.StringArray
	if err := raw.Scan(src); err != nil {
		return fmt.Errorf("failed to scan alert methods: %w", err)
	}
	out := make(AlertMethods, 0, len(raw))
	for _, m := range raw {
		out = append(out, AlertMethod(m))
	}
	*a = out
	return nil
}

func (a AlertMethods) Value() (driver.Value, error) {
	raw := make(pq.StringArray, 0, len(a))
	for _, m := range a {
		raw = append(raw, string(m))
	}
	return raw.Value()
}

// Contact is an emergency contact of a monitored individual.
type Contact struct {
	ID               uuid.UUID    `json:"id" db:"id"`
	ElderlyProfileID uuid.UUID    `json:"elderly_profile_id" db:"elderly_profile_id"`
	FullName         string       `json:"full_name" db:"full_name"`
	Relationship     *string      `json:"relationship" db:"relationship"`
	Email            *string      `json:"email" db:"email"`
	Phone            *string      `json:"phone" db:"phone"`
	AlertMethods     AlertMethods `json:"alert_methods" db:"alert_methods"`
	IsPrimary        bool         `json:"is_primary" db:"is_primary"`
	CreatedAt        time.Time    `json:"created_at" db:"created_at"`
}

// HasEmail reports whether an email destination is present.
func (c *Contact) HasEmail() bool {
	return c.Email != nil && *c.Email != ""
}

// HasPhone reports whether a phone destination is present.
func (c *Contact) HasPhone() bool {
	return c.Phone != nil && *c.Phone != ""
}

// Destination returns the address a channel would deliver to, if the contact has one.
func (c *Contact) Destination(m AlertMethod) (string, bool) {
	switch m {
	case AlertMethodEmail:
		if c.HasEmail() {
			return *c.Email, true
		}
	case AlertMethodSMS, AlertMethodVoiceCall:
		if c.HasPhone() {
			return *c.Phone, true
		}
	}
	return "", false
}

type CreateContactRequest struct {
	FullName     string        `json:"full_name" binding:"required,max=200"`
	Relationship *string       `json:"relationship" binding:"omitempty,max=50"`
	Email        *string       `json:"email" binding:"omitempty,email"`
	Phone        *string       `json:"phone" binding:"omitempty,max=25"`
	AlertMethods []AlertMethod `json:"alert_methods" binding:"required,min=1,dive,alert_method"`
	IsPrimary    bool          `json:"is_primary"`
}

type UpdateContactRequest struct {
	FullName     *string       `json:"full_name" binding:"omitempty,max=200"`
	Relationship *string       `json:"relationship" binding:"omitempty,max=50"`
	Email        *string       `json:"email" binding:"omitempty,email"`
	Phone        *string       `json:"phone" binding:"omitempty,max=25"`
	AlertMethods []AlertMethod `json:"alert_methods" binding:"omitempty,min=1,dive,alert_method"`
	IsPrimary    *bool         `json:"is_primary"`
}

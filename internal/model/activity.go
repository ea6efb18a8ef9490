package model

import (
	"time"

	"github.com/google/uuid"
)

// DeviceActivity is an inbound device signal. Rows are append-only.
type DeviceActivity struct {
	ID               uuid.UUID `json:"id" db:"id"`
	ElderlyProfileID uuid.UUID `json:"elderly_profile_id" db:"elderly_profile_id"`
	DeviceID         *string   `json:"device_id" db:"device_id"`
	SMSFrom          *string   `json:"sms_from" db:"sms_from"`
	SMSBody          *string   `json:"sms_body" db:"sms_body"`
	ReceivedAt       time.Time `json:"received_at" db:"received_at"`
	CreatedAt        time.Time `json:"created_at" db:"created_at"`
}

// InboundSMS is the form-encoded webhook payload sent by the SMS provider.
type InboundSMS struct {
	From       string `form:"From" binding:"required,max=32"`
	Body       string `form:"Body" binding:"max=1600"`
	MessageSid string `form:"MessageSid" binding:"max=64"`
}

package model

import (
	"time"

	"github.com/google/uuid"
)

type AlertStatus string

const (
	AlertStatusPending      AlertStatus = "pending"
	AlertStatusSent         AlertStatus = "sent"
	AlertStatusFailed       AlertStatus = "failed"
	AlertStatusAcknowledged AlertStatus = "acknowledged"
)

// AlertHistory is one delivery ledger entry: a single channel of a single dispatch.
type AlertHistory struct {
	ID               uuid.UUID   `json:"id" db:"id"`
	DispatchID       uuid.UUID   `json:"dispatch_id" db:"dispatch_id"`
	ElderlyProfileID uuid.UUID   `json:"elderly_profile_id" db:"elderly_profile_id"`
	ContactID        *uuid.UUID  `json:"contact_id" db:"contact_id"`
	AlertMethod      AlertMethod `json:"alert_method" db:"alert_method"`
	Message          string      `json:"message" db:"message"`
	Status           AlertStatus `json:"status" db:"status"`
	ErrorMessage     *string     `json:"error_message" db:"error_message"`
	CreatedAt        time.Time   `json:"created_at" db:"created_at"`
	SentAt           *time.Time  `json:"sent_at" db:"sent_at"`
	AcknowledgedAt   *time.Time  `json:"acknowledged_at" db:"acknowledged_at"`
}

// DispatchRequest is the body accepted by the alert dispatch endpoint.
type DispatchRequest struct {
	ElderlyProfileID string `json:"elderly_profile_id" binding:"required,uuid"`
	ContactID        string `json:"contact_id" binding:"required,uuid"`
	Message          string `json:"message" binding:"required,max=1000"`
}

// ChannelResult is the per-channel outcome reported back to the caller.
type ChannelResult struct {
	Method AlertMethod `json:"method"`
	Status AlertStatus `json:"status"`
	Error  *string     `json:"error"`
}

// DispatchResult aggregates all channel outcomes of one dispatch.
type DispatchResult struct {
	DispatchID     uuid.UUID       `json:"dispatch_id"`
	Success        bool            `json:"success"`
	PartialSuccess bool            `json:"partial_success"`
	Results        []ChannelResult `json:"results"`
	Message        string          `json:"message"`
}

// RenderedAlert is an alert rendered for one channel. Text is the SMS body or
// the voice script; HTML is only used by email.
type RenderedAlert struct {
	Subject string
	Text    string
	HTML    string
}

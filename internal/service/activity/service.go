package activity

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jwalitptl/carewatch-api/internal/model"
	"github.com/jwalitptl/carewatch-api/internal/repository"
	"github.com/jwalitptl/carewatch-api/internal/service/event"
	"github.com/jwalitptl/carewatch-api/pkg/errors"
	"github.com/jwalitptl/carewatch-api/pkg/logger"
	"github.com/jwalitptl/carewatch-api/pkg/metrics"
)

type Service struct {
	profiles repository.ProfileRepository
	activity repository.ActivityRepository
	events   event.Emitter
	logger   *logger.Logger
	metrics  *metrics.Metrics
	now      func() time.Time
}

func NewService(
	profiles repository.ProfileRepository,
	activity repository.ActivityRepository,
	events event.Emitter,
	logger *logger.Logger,
	metrics *metrics.Metrics,
) *Service {
	return &Service{
		profiles: profiles,
		activity: activity,
		events:   events,
		logger:   logger,
		metrics:  metrics,
		now:      time.Now,
	}
}

// Record stores an inbound device signal for the profile registered on the
// sender's number and refreshes that profile's last activity.
func (s *Service) Record(ctx context.Context, in *model.InboundSMS) (*model.DeviceActivity, error) {
	from := strings.TrimSpace(in.From)
	if from == "" {
		return nil, errors.BadRequest("From is required", nil)
	}

	profile, err := s.profiles.FindByDevicePhone(ctx, from)
	if err != nil {
		if errors.IsNotFound(err) {
			s.metrics.ActivitySignals.WithLabelValues("unmatched").Inc()
			s.logger.Warn("Profile not found for device", "from", from, "error", err.Error())
		} else {
			s.metrics.ActivitySignals.WithLabelValues("error").Inc()
		}
		return nil, fmt.Errorf("failed to resolve device owner: %w", err)
	}

	now := s.now()
	a := &model.DeviceActivity{
		ID:               uuid.New(),
		ElderlyProfileID: profile.ID,
		DeviceID:         optional(in.MessageSid),
		SMSFrom:          &from,
		SMSBody:          optional(in.Body),
		ReceivedAt:       now,
		CreatedAt:        now,
	}
	if err := s.activity.Record(ctx, a); err != nil {
		s.metrics.ActivitySignals.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("failed to record activity: %w", err)
	}
	s.metrics.ActivitySignals.WithLabelValues("recorded").Inc()
	s.logger.Info("Activity recorded", "profile_id", profile.ID.String())

	if err := s.events.Emit(ctx, model.EventActivityRecorded, map[string]interface{}{
		"activity_id":        a.ID,
		"elderly_profile_id": a.ElderlyProfileID,
		"received_at":        a.ReceivedAt,
	}); err != nil {
		s.logger.Error(err, "Failed to emit activity event", "profile_id", profile.ID.String())
	}
	return a, nil
}

// List returns a profile's signals, newest first.
func (s *Service) List(ctx context.Context, profileID uuid.UUID, page model.Pagination) ([]*model.DeviceActivity, error) {
	activity, err := s.activity.ListByProfile(ctx, profileID, page)
	if err != nil {
		return nil, fmt.Errorf("failed to list activity: %w", err)
	}
	return activity, nil
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

package alert

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/jwalitptl/carewatch-api/internal/model"
	"github.com/jwalitptl/carewatch-api/internal/repository"
	"github.com/jwalitptl/carewatch-api/internal/service/event"
	"github.com/jwalitptl/carewatch-api/pkg/errors"
	"github.com/jwalitptl/carewatch-api/pkg/logger"
	"github.com/jwalitptl/carewatch-api/pkg/metrics"
)

const (
	MessageAllSent    = "All alerts sent successfully"
	MessageSomeSent   = "Some alerts sent successfully"
	MessageAllFailed  = "All alerts failed to send"
	MessageNoChannels = "No alert methods configured for contact"

	defaultChannelTimeout = 15 * time.Second
)

// Sender delivers a rendered alert to one destination over one channel.
type Sender interface {
	Send(ctx context.Context, destination string, msg model.RenderedAlert) error
}

type Config struct {
	// ChannelTimeout bounds each channel's send independently.
	ChannelTimeout time.Duration
}

type Service struct {
	profiles repository.ProfileRepository
	contacts repository.ContactRepository
	ledger   repository.AlertHistoryRepository
	senders  map[model.AlertMethod]Sender
	events   event.Emitter
	config   Config
	logger   *logger.Logger
	metrics  *metrics.Metrics
	now      func() time.Time
}

func NewService(
	profiles repository.ProfileRepository,
	contacts repository.ContactRepository,
	ledger repository.AlertHistoryRepository,
	senders map[model.AlertMethod]Sender,
	events event.Emitter,
	config Config,
	logger *logger.Logger,
	metrics *metrics.Metrics,
) *Service {
	if config.ChannelTimeout <= 0 {
		config.ChannelTimeout = defaultChannelTimeout
	}
	return &Service{
		profiles: profiles,
		contacts: contacts,
		ledger:   ledger,
		senders:  senders,
		events:   events,
		config:   config,
		logger:   logger,
		metrics:  metrics,
		now:      time.Now,
	}
}

// Dispatch fans message out to every channel of the contact concurrently and
// records one ledger entry per channel. Only setup failures are returned as errors;
// channel failures are reported in the result.
func (s *Service) Dispatch(ctx context.Context, profileID, contactID uuid.UUID, message string) (*model.DispatchResult, error) {
	timer := prometheus.NewTimer(s.metrics.AlertDispatchDuration)
	defer timer.ObserveDuration()

	contact, err := s.contacts.Get(ctx, contactID)
	if err != nil {
		return nil, fmt.Errorf("failed to get contact: %w", err)
	}
	profile, err := s.profiles.Get(ctx, profileID)
	if err != nil {
		return nil, fmt.Errorf("failed to get elderly profile: %w", err)
	}
	if contact.ElderlyProfileID != profile.ID {
		return nil, errors.NotFound("contact", nil)
	}

	dispatchID := uuid.New()
	log := s.logger.WithFields(map[string]interface{}{
		"dispatch_id": dispatchID.String(),
		"profile_id":  profile.ID.String(),
		"contact_id":  contact.ID.String(),
	})

	methods := contact.AlertMethods
	results := make([]model.ChannelResult, len(methods))

	var wg sync.WaitGroup
	for i, method := range methods {
		wg.Add(1)
		go func(i int, method model.AlertMethod) {
			defer wg.Done()
			results[i] = s.deliver(ctx, log, dispatchID, profile, contact, method, message)
		}(i, method)
	}
	wg.Wait()

	result := Aggregate(dispatchID, results)
	log.Info("Alert dispatched", "channels", len(results), "outcome", result.Message)

	if err := s.events.Emit(context.WithoutCancel(ctx), model.EventAlertDispatched, map[string]interface{}{
		"dispatch_id":        dispatchID,
		"elderly_profile_id": profile.ID,
		"contact_id":         contact.ID,
		"success":            result.Success,
		"partial_success":    result.PartialSuccess,
		"results":            result.Results,
	}); err != nil {
		log.Error(err, "Failed to emit dispatch event")
	}

	return result, nil
}

func (s *Service) deliver(
	ctx context.Context,
	log *logger.Logger,
	dispatchID uuid.UUID,
	profile *model.ElderlyProfile,
	contact *model.Contact,
	method model.AlertMethod,
	message string,
) model.ChannelResult {
	sendErr := s.attempt(ctx, profile, contact, method, message)

	now := s.now()
	contactID := contact.ID
	entry := &model.AlertHistory{
		ID:               uuid.New(),
		DispatchID:       dispatchID,
		ElderlyProfileID: profile.ID,
		ContactID:        &contactID,
		AlertMethod:      method,
		Message:          message,
		Status:           model.AlertStatusSent,
		CreatedAt:        now,
		SentAt:           &now,
	}
	result := model.ChannelResult{Method: method, Status: model.AlertStatusSent}
	if sendErr != nil {
		errText := sendErr.Error()
		entry.Status = model.AlertStatusFailed
		entry.SentAt = nil
		entry.ErrorMessage = &errText
		result.Status = model.AlertStatusFailed
		result.Error = &errText
		log.Warn("Alert channel failed", "method", string(method), "error", errText)
	}
	s.metrics.AlertChannelResults.WithLabelValues(string(method), string(result.Status)).Inc()

	// The request may be gone by now; the ledger row must still be written.
	if err := s.ledger.Create(context.WithoutCancel(ctx), entry); err != nil {
		s.metrics.AlertLedgerFailures.Inc()
		log.Error(&PersistenceError{Method: method, Err: err}, "Failed to write alert history")
	}
	return result
}

func (s *Service) attempt(ctx context.Context, profile *model.ElderlyProfile, contact *model.Contact, method model.AlertMethod, message string) error {
	sender, ok := s.senders[method]
	destination, hasDestination := contact.Destination(method)
	if !method.Valid() || !ok || sender == nil || !hasDestination {
		return &ValidationGap{Method: method}
	}

	sendCtx, cancel := context.WithTimeout(ctx, s.config.ChannelTimeout)
	defer cancel()

	if err := sender.Send(sendCtx, destination, Render(method, profile, contact, message)); err != nil {
		return &ChannelError{Method: method, Err: err}
	}
	return nil
}

// Aggregate folds per-channel outcomes into the dispatch result.
func Aggregate(dispatchID uuid.UUID, results []model.ChannelResult) *model.DispatchResult {
	if results == nil {
		results = []model.ChannelResult{}
	}
	sent := 0
	for _, r := range results {
		if r.Status == model.AlertStatusSent {
			sent++
		}
	}

	res := &model.DispatchResult{
		DispatchID: dispatchID,
		Results:    results,
		Success:    sent == len(results),
	}
	res.PartialSuccess = !res.Success && sent > 0

	switch {
	case len(results) == 0:
		res.Message = MessageNoChannels
	case res.Success:
		res.Message = MessageAllSent
	case res.PartialSuccess:
		res.Message = MessageSomeSent
	default:
		res.Message = MessageAllFailed
	}
	return res
}

// StatusCode maps a dispatch result onto 200, 207 or 500.
func StatusCode(res *model.DispatchResult) int {
	switch {
	case res.Success:
		return http.StatusOK
	case res.PartialSuccess:
		return http.StatusMultiStatus
	default:
		return http.StatusInternalServerError
	}
}

// History lists a profile's ledger, newest first.
func (s *Service) History(ctx context.Context, profileID uuid.UUID, page model.Pagination) ([]*model.AlertHistory, error) {
	entries, err := s.ledger.ListByProfile(ctx, profileID, page)
	if err != nil {
		return nil, fmt.Errorf("failed to list alert history: %w", err)
	}
	return entries, nil
}

// Get returns one ledger entry.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*model.AlertHistory, error) {
	entry, err := s.ledger.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get alert: %w", err)
	}
	return entry, nil
}

// Acknowledge moves a sent entry to acknowledged.
func (s *Service) Acknowledge(ctx context.Context, id uuid.UUID) (*model.AlertHistory, error) {
	entry, err := s.ledger.Acknowledge(ctx, id, s.now())
	if err != nil {
		return nil, fmt.Errorf("failed to acknowledge alert: %w", err)
	}
	if err := s.events.Emit(ctx, model.EventAlertAcknowledged, map[string]interface{}{
		"alert_id":           entry.ID,
		"dispatch_id":        entry.DispatchID,
		"elderly_profile_id": entry.ElderlyProfileID,
		"acknowledged_at":    entry.AcknowledgedAt,
	}); err != nil {
		s.logger.Error(err, "Failed to emit acknowledgement event", "alert_id", entry.ID.String())
	}
	return entry, nil
}

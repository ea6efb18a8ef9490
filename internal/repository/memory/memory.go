// Package memory holds map-backed repositories for tests and local runs without Postgres.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/jwalitptl/carewatch-api/internal/model"
	"github.com/jwalitptl/carewatch-api/internal/repository"
	"github.com/jwalitptl/carewatch-api/pkg/errors"
)

var (
	_ repository.CaregiverRepository    = (*CaregiverRepository)(nil)
	_ repository.DeviceRepository       = (*DeviceRepository)(nil)
	_ repository.ProfileRepository      = (*ProfileRepository)(nil)
	_ repository.ContactRepository      = (*ContactRepository)(nil)
	_ repository.AlertHistoryRepository = (*AlertHistoryRepository)(nil)
	_ repository.ActivityRepository     = (*ActivityRepository)(nil)
	_ repository.OutboxRepository       = (*OutboxRepository)(nil)
)

// Store shares one lock across every repository so multi-table writes stay atomic.
type Store struct {
	mu         sync.RWMutex
	caregivers map[uuid.UUID]*model.Caregiver
	devices    map[uuid.UUID]*model.Device
	profiles   map[uuid.UUID]*model.ElderlyProfile
	contacts   map[uuid.UUID]*model.Contact
	alerts     map[uuid.UUID]*model.AlertHistory
	activity   []*model.DeviceActivity
	outbox     []*model.OutboxEvent

	// Fail* inject errors for the next matching call.
	FailAlertCreate    error
	FailActivityRecord error
}

func NewStore() *Store {
	return &Store{
		caregivers: map[uuid.UUID]*model.Caregiver{},
		devices:    map[uuid.UUID]*model.Device{},
		profiles:   map[uuid.UUID]*model.ElderlyProfile{},
		contacts:   map[uuid.UUID]*model.Contact{},
		alerts:     map[uuid.UUID]*model.AlertHistory{},
	}
}

func (s *Store) Caregivers() *CaregiverRepository { return &CaregiverRepository{s} }
func (s *Store) Devices() *DeviceRepository       { return &DeviceRepository{s} }
func (s *Store) Profiles() *ProfileRepository     { return &ProfileRepository{s} }
func (s *Store) Contacts() *ContactRepository     { return &ContactRepository{s} }
func (s *Store) Alerts() *AlertHistoryRepository  { return &AlertHistoryRepository{s} }
func (s *Store) Activity() *ActivityRepository    { return &ActivityRepository{s} }
func (s *Store) Outbox() *OutboxRepository        { return &OutboxRepository{s} }

func page[T any](items []T, p model.Pagination) []T {
	p = p.Normalize()
	if p.Offset >= len(items) {
		return []T{}
	}
	end := p.Offset + p.Limit
	if end > len(items) {
		end = len(items)
	}
	return items[p.Offset:end]
}

type CaregiverRepository struct{ s *Store }

func (r *CaregiverRepository) Create(_ context.Context, c *model.Caregiver) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, existing := range r.s.caregivers {
		if strings.EqualFold(existing.Email, c.Email) {
			return errors.Conflict("email already registered", nil)
		}
	}
	if c.NotificationMethod == "" {
		c.NotificationMethod = model.AlertMethodEmail
	}
	cp := *c
	cp.Email = strings.ToLower(c.Email)
	r.s.caregivers[c.ID] = &cp
	return nil
}

func (r *CaregiverRepository) GetByEmail(_ context.Context, email string) (*model.Caregiver, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, c := range r.s.caregivers {
		if strings.EqualFold(c.Email, email) {
			cp := *c
			return &cp, nil
		}
	}
	return nil, errors.NotFound("caregiver", nil)
}

func (r *CaregiverRepository) Get(_ context.Context, id uuid.UUID) (*model.Caregiver, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	c, ok := r.s.caregivers[id]
	if !ok {
		return nil, errors.NotFound("caregiver", nil)
	}
	cp := *c
	return &cp, nil
}

func (r *CaregiverRepository) Update(_ context.Context, c *model.Caregiver) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	existing, ok := r.s.caregivers[c.ID]
	if !ok {
		return errors.NotFound("caregiver", nil)
	}
	c.UpdatedAt = time.Now()
	existing.FullName = c.FullName
	existing.PhoneNumber = c.PhoneNumber
	existing.NotificationMethod = c.NotificationMethod
	existing.UpdatedAt = c.UpdatedAt
	return nil
}

type DeviceRepository struct{ s *Store }

// phoneTaken mirrors the (caregiver_id, phone_number) unique constraint.
func (r *DeviceRepository) phoneTaken(d *model.Device) bool {
	for id, existing := range r.s.devices {
		if id != d.ID && existing.CaregiverID == d.CaregiverID && existing.PhoneNumber == d.PhoneNumber {
			return true
		}
	}
	return false
}

func (r *DeviceRepository) Create(_ context.Context, d *model.Device) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.phoneTaken(d) {
		return errors.Conflict("device phone number is already registered", nil)
	}
	cp := *d
	r.s.devices[d.ID] = &cp
	return nil
}

func (r *DeviceRepository) Get(_ context.Context, id uuid.UUID) (*model.Device, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	d, ok := r.s.devices[id]
	if !ok {
		return nil, errors.NotFound("device", nil)
	}
	cp := *d
	return &cp, nil
}

func (r *DeviceRepository) Update(_ context.Context, d *model.Device) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.devices[d.ID]; !ok {
		return errors.NotFound("device", nil)
	}
	if r.phoneTaken(d) {
		return errors.Conflict("device phone number is already registered", nil)
	}
	d.UpdatedAt = time.Now()
	cp := *d
	r.s.devices[d.ID] = &cp
	return nil
}

func (r *DeviceRepository) Delete(_ context.Context, id uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.devices[id]; !ok {
		return errors.NotFound("device", nil)
	}
	delete(r.s.devices, id)
	return nil
}

func (r *DeviceRepository) ListByCaregiver(_ context.Context, caregiverID uuid.UUID) ([]*model.Device, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := []*model.Device{}
	for _, d := range r.s.devices {
		if d.CaregiverID == caregiverID {
			cp := *d
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

type ProfileRepository struct{ s *Store }

func (r *ProfileRepository) Create(_ context.Context, p *model.ElderlyProfile) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cp := *p
	r.s.profiles[p.ID] = &cp
	return nil
}

func (r *ProfileRepository) Get(_ context.Context, id uuid.UUID) (*model.ElderlyProfile, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	p, ok := r.s.profiles[id]
	if !ok {
		return nil, errors.NotFound("elderly profile", nil)
	}
	cp := *p
	return &cp, nil
}

func (r *ProfileRepository) Update(_ context.Context, p *model.ElderlyProfile) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	existing, ok := r.s.profiles[p.ID]
	if !ok {
		return errors.NotFound("elderly profile", nil)
	}
	cp := *p
	cp.LastActivityAt = existing.LastActivityAt
	cp.UpdatedAt = time.Now()
	r.s.profiles[p.ID] = &cp
	return nil
}

func (r *ProfileRepository) Delete(_ context.Context, id uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.profiles[id]; !ok {
		return errors.NotFound("elderly profile", nil)
	}
	delete(r.s.profiles, id)
	for cid, c := range r.s.contacts {
		if c.ElderlyProfileID == id {
			delete(r.s.contacts, cid)
		}
	}
	return nil
}

func (r *ProfileRepository) ListByCaregiver(_ context.Context, caregiverID uuid.UUID) ([]*model.ElderlyProfile, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := []*model.ElderlyProfile{}
	for _, p := range r.s.profiles {
		if p.CaregiverID == caregiverID {
			cp := *p
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r *ProfileRepository) FindByDevicePhone(_ context.Context, phone string) (*model.ElderlyProfile, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var match *model.ElderlyProfile
	for _, p := range r.s.profiles {
		if p.DevicePhoneNumber != nil && *p.DevicePhoneNumber == phone {
			if match != nil {
				return nil, errors.NotFound("profile", nil)
			}
			match = p
		}
	}
	if match == nil {
		return nil, errors.NotFound("profile", nil)
	}
	cp := *match
	return &cp, nil
}

type ContactRepository struct{ s *Store }

func (r *ContactRepository) clearPrimary(profileID, keep uuid.UUID) {
	for id, c := range r.s.contacts {
		if c.ElderlyProfileID == profileID && id != keep {
			c.IsPrimary = false
		}
	}
}

func (r *ContactRepository) Create(_ context.Context, c *model.Contact) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if c.IsPrimary {
		r.clearPrimary(c.ElderlyProfileID, c.ID)
	}
	cp := *c
	r.s.contacts[c.ID] = &cp
	return nil
}

func (r *ContactRepository) Get(_ context.Context, id uuid.UUID) (*model.Contact, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	c, ok := r.s.contacts[id]
	if !ok {
		return nil, errors.NotFound("contact", nil)
	}
	cp := *c
	return &cp, nil
}

func (r *ContactRepository) Update(_ context.Context, c *model.Contact) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.contacts[c.ID]; !ok {
		return errors.NotFound("contact", nil)
	}
	if c.IsPrimary {
		r.clearPrimary(c.ElderlyProfileID, c.ID)
	}
	cp := *c
	r.s.contacts[c.ID] = &cp
	return nil
}

func (r *ContactRepository) Delete(_ context.Context, id uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.contacts[id]; !ok {
		return errors.NotFound("contact", nil)
	}
	delete(r.s.contacts, id)
	return nil
}

func (r *ContactRepository) ListByProfile(_ context.Context, profileID uuid.UUID) ([]*model.Contact, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := []*model.Contact{}
	for _, c := range r.s.contacts {
		if c.ElderlyProfileID == profileID {
			cp := *c
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].IsPrimary != out[j].IsPrimary {
			return out[i].IsPrimary
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

type AlertHistoryRepository struct{ s *Store }

func (r *AlertHistoryRepository) Create(_ context.Context, e *model.AlertHistory) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.FailAlertCreate != nil {
		return r.s.FailAlertCreate
	}
	cp := *e
	r.s.alerts[e.ID] = &cp
	return nil
}

func (r *AlertHistoryRepository) Get(_ context.Context, id uuid.UUID) (*model.AlertHistory, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	e, ok := r.s.alerts[id]
	if !ok {
		return nil, errors.NotFound("alert", nil)
	}
	cp := *e
	return &cp, nil
}

func (r *AlertHistoryRepository) ListByProfile(_ context.Context, profileID uuid.UUID, p model.Pagination) ([]*model.AlertHistory, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := []*model.AlertHistory{}
	for _, e := range r.s.alerts {
		if e.ElderlyProfileID == profileID {
			cp := *e
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return page(out, p), nil
}

func (r *AlertHistoryRepository) Acknowledge(_ context.Context, id uuid.UUID, at time.Time) (*model.AlertHistory, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	e, ok := r.s.alerts[id]
	if !ok {
		return nil, errors.NotFound("alert", nil)
	}
	if e.Status != model.AlertStatusSent {
		return nil, errors.Conflict("only sent alerts can be acknowledged", nil)
	}
	e.Status = model.AlertStatusAcknowledged
	e.AcknowledgedAt = &at
	cp := *e
	return &cp, nil
}

type ActivityRepository struct{ s *Store }

func (r *ActivityRepository) Record(_ context.Context, a *model.DeviceActivity) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.FailActivityRecord != nil {
		return r.s.FailActivityRecord
	}
	p, ok := r.s.profiles[a.ElderlyProfileID]
	if !ok {
		return errors.NotFound("elderly profile", nil)
	}
	cp := *a
	r.s.activity = append(r.s.activity, &cp)
	at := a.ReceivedAt
	p.LastActivityAt = &at
	p.UpdatedAt = at
	return nil
}

func (r *ActivityRepository) ListByProfile(_ context.Context, profileID uuid.UUID, p model.Pagination) ([]*model.DeviceActivity, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := []*model.DeviceActivity{}
	for i := len(r.s.activity) - 1; i >= 0; i-- {
		if a := r.s.activity[i]; a.ElderlyProfileID == profileID {
			cp := *a
			out = append(out, &cp)
		}
	}
	return page(out, p), nil
}

type OutboxRepository struct{ s *Store }

func (r *OutboxRepository) Create(_ context.Context, e *model.OutboxEvent) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cp := *e
	r.s.outbox = append(r.s.outbox, &cp)
	return nil
}

func (r *OutboxRepository) GetPendingEvents(_ context.Context, limit int) ([]*model.OutboxEvent, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	now := time.Now()
	out := []*model.OutboxEvent{}
	for _, e := range r.s.outbox {
		if len(out) == limit {
			break
		}
		due := e.RetryAt == nil || !e.RetryAt.After(now)
		if (e.Status == model.OutboxStatusPending || e.Status == model.OutboxStatusRetry) && due {
			cp := *e
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *OutboxRepository) UpdateStatus(_ context.Context, id uuid.UUID, status model.OutboxStatus, errorMessage *string, retryAt *time.Time) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, e := range r.s.outbox {
		if e.ID == id {
			e.Status = status
			e.ErrorMessage = errorMessage
			e.RetryAt = retryAt
			e.UpdatedAt = time.Now()
			if status == model.OutboxStatusProcessed {
				now := time.Now()
				e.ProcessedAt = &now
			} else {
				e.RetryCount++
			}
			return nil
		}
	}
	return errors.NotFound("outbox event", nil)
}

func (r *OutboxRepository) DeleteProcessedBefore(_ context.Context, before time.Time) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	kept := r.s.outbox[:0]
	var deleted int64
	for _, e := range r.s.outbox {
		if e.Status == model.OutboxStatusProcessed && e.ProcessedAt != nil && e.ProcessedAt.Before(before) {
			deleted++
			continue
		}
		kept = append(kept, e)
	}
	r.s.outbox = kept
	return deleted, nil
}

// ActivityCount is the number of stored signals.
func (s *Store) ActivityCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.activity)
}

// AlertCount is the number of ledger entries.
func (s *Store) AlertCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.alerts)
}

// Events returns a copy of the outbox.
func (s *Store) Events() []model.OutboxEvent {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.OutboxEvent, 0, len(s.outbox))
	for _, e := range s.outbox {
		out = append(out, *e)
	}
	return out
}

package postgres

import (
	"context"
	"encoding/base64"
	stderrors "errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/jwalitptl/carewatch-api/internal/model"
	"github.com/jwalitptl/carewatch-api/internal/repository"
	"github.com/jwalitptl/carewatch-api/pkg/errors"
	"github.com/jwalitptl/carewatch-api/pkg/security"
)

// ErrAmbiguousDevice is wrapped into NotFound when a device number maps to several profiles.
var ErrAmbiguousDevice = stderrors.New("device phone number registered on more than one profile")

const profileColumns = `id, caregiver_id, full_name, age, address, medical_notes, device_phone_number,
	inactivity_threshold_hours, last_activity_at, status, created_at, updated_at`

// sealedNotesPrefix marks medical notes stored as base64 AES-GCM ciphertext.
const sealedNotesPrefix = "enc:v1:"

type profileRepository struct {
	db    *sqlx.DB
	notes security.Encryptor
}

type ProfileOption func(*profileRepository)

// WithNotesEncryptor encrypts medical notes on write and decrypts them on read.
func WithNotesEncryptor(enc security.Encryptor) ProfileOption {
	return func(r *profileRepository) {
		r.notes = enc
	}
}

func NewProfileRepository(db *sqlx.DB, opts ...ProfileOption) repository.ProfileRepository {
	r := &profileRepository{db: db}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *profileRepository) sealNotes(notes *string) (*string, error) {
	if r.notes == nil || notes == nil {
		return notes, nil
	}
	ciphertext, err := r.notes.Encrypt([]byte(*notes))
	if err != nil {
		return nil, fmt.Errorf("failed to encrypt medical notes: %w", err)
	}
	sealed := sealedNotesPrefix + base64.StdEncoding.EncodeToString(ciphertext)
	return &sealed, nil
}

// openNotes decrypts in place. Rows written before a key was configured stay plaintext.
func (r *profileRepository) openNotes(profiles ...*model.ElderlyProfile) error {
	for _, p := range profiles {
		if p.MedicalNotes == nil || !strings.HasPrefix(*p.MedicalNotes, sealedNotesPrefix) {
			continue
		}
		if r.notes == nil {
			return fmt.Errorf("medical notes for profile %s are encrypted but no key is configured", p.ID)
		}
		raw, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(*p.MedicalNotes, sealedNotesPrefix))
		if err != nil {
			return fmt.Errorf("failed to decode medical notes: %w", err)
		}
		plain, err := r.notes.Decrypt(raw)
		if err != nil {
			return fmt.Errorf("failed to decrypt medical notes: %w", err)
		}
		notes := string(plain)
		p.MedicalNotes = &notes
	}
	return nil
}

func (r *profileRepository) Create(ctx context.Context, p *model.ElderlyProfile) error {
	query := `
		INSERT INTO elderly_profiles (
			id, caregiver_id, full_name, age, address, medical_notes, device_phone_number,
			inactivity_threshold_hours, last_activity_at, status, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`
	notes, err := r.sealNotes(p.MedicalNotes)
	if err != nil {
		return err
	}
	_, err = r.db.ExecContext(ctx, query,
		p.ID,
		p.CaregiverID,
		p.FullName,
		p.Age,
		p.Address,
		notes,
		p.DevicePhoneNumber,
		p.InactivityThresholdHours,
		p.LastActivityAt,
		p.Status,
		p.CreatedAt,
		p.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create elderly profile: %w", err)
	}
	return nil
}

func (r *profileRepository) Get(ctx context.Context, id uuid.UUID) (*model.ElderlyProfile, error) {
	query := `SELECT ` + profileColumns + ` FROM elderly_profiles WHERE id = $1`
	var p model.ElderlyProfile
	if err := r.db.GetContext(ctx, &p, query, id); err != nil {
		return nil, notFound("elderly profile", err)
	}
	if err := r.openNotes(&p); err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *profileRepository) Update(ctx context.Context, p *model.ElderlyProfile) error {
	query := `
		UPDATE elderly_profiles
		SET full_name = $1, age = $2, address = $3, medical_notes = $4, device_phone_number = $5,
			inactivity_threshold_hours = $6, status = $7, updated_at = $8
		WHERE id = $9
	`
	notes, err := r.sealNotes(p.MedicalNotes)
	if err != nil {
		return err
	}
	p.UpdatedAt = time.Now()
	res, err := r.db.ExecContext(ctx, query,
		p.FullName,
		p.Age,
		p.Address,
		notes,
		p.DevicePhoneNumber,
		p.InactivityThresholdHours,
		p.Status,
		p.UpdatedAt,
		p.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update elderly profile: %w", err)
	}
	return expectOneRow("elderly profile", res)
}

func (r *profileRepository) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM elderly_profiles WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete elderly profile: %w", err)
	}
	return expectOneRow("elderly profile", res)
}

func (r *profileRepository) ListByCaregiver(ctx context.Context, caregiverID uuid.UUID) ([]*model.ElderlyProfile, error) {
	query := `SELECT ` + profileColumns + ` FROM elderly_profiles WHERE caregiver_id = $1 ORDER BY created_at DESC`
	profiles := []*model.ElderlyProfile{}
	if err := r.db.SelectContext(ctx, &profiles, query, caregiverID); err != nil {
		return nil, fmt.Errorf("failed to list elderly profiles: %w", err)
	}
	if err := r.openNotes(profiles...); err != nil {
		return nil, err
	}
	return profiles, nil
}

func (r *profileRepository) FindByDevicePhone(ctx context.Context, phone string) (*model.ElderlyProfile, error) {
	query := `SELECT ` + profileColumns + ` FROM elderly_profiles WHERE device_phone_number = $1 LIMIT 2`
	var matches []*model.ElderlyProfile
	if err := r.db.SelectContext(ctx, &matches, query, phone); err != nil {
		return nil, fmt.Errorf("failed to find profile by device phone: %w", err)
	}
	switch len(matches) {
	case 0:
		return nil, errors.NotFound("profile", nil)
	case 1:
		if err := r.openNotes(matches[0]); err != nil {
			return nil, err
		}
		return matches[0], nil
	default:
		return nil, errors.NotFound("profile", ErrAmbiguousDevice)
	}
}

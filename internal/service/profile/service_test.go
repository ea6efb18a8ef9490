package profile

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/carewatch-api/internal/model"
	"github.com/jwalitptl/carewatch-api/internal/repository/memory"
	"github.com/jwalitptl/carewatch-api/pkg/errors"
)

func intPtr(i int) *int       { return &i }
func strPtr(s string) *string { return &s }

func TestService_CreateDefaults(t *testing.T) {
	svc := NewService(memory.NewStore().Profiles())
	caregiverID := uuid.New()

	p, err := svc.Create(context.Background(), caregiverID, &model.CreateProfileRequest{FullName: " Margaret "})
	require.NoError(t, err)

	assert.Equal(t, "Margaret", p.FullName)
	assert.Equal(t, model.DefaultInactivityThresholdHours, p.InactivityThresholdHours)
	assert.Equal(t, model.ProfileStatusActive, p.Status)
	require.NotNil(t, p.LastActivityAt)
	assert.WithinDuration(t, time.Now(), *p.LastActivityAt, time.Second)
}

func TestService_CreateRejectsBadThreshold(t *testing.T) {
	svc := NewService(memory.NewStore().Profiles())

	_, err := svc.Create(context.Background(), uuid.New(), &model.CreateProfileRequest{
		FullName:                 "Margaret",
		InactivityThresholdHours: intPtr(0),
	})
	assert.True(t, errors.IsCode(err, errors.ErrBadRequest))
}

func TestService_DevicePhoneMustBeUnique(t *testing.T) {
	svc := NewService(memory.NewStore().Profiles())
	caregiverID := uuid.New()

	first, err := svc.Create(context.Background(), caregiverID, &model.CreateProfileRequest{
		FullName:          "Margaret",
		DevicePhoneNumber: strPtr("+15550001111"),
	})
	require.NoError(t, err)

	_, err = svc.Create(context.Background(), caregiverID, &model.CreateProfileRequest{
		FullName:          "Harold",
		DevicePhoneNumber: strPtr("+15550001111"),
	})
	assert.True(t, errors.IsCode(err, errors.ErrConflict))

	// Re-saving the owner of the number is fine.
	_, err = svc.Update(context.Background(), caregiverID, first.ID, &model.UpdateProfileRequest{
		DevicePhoneNumber: strPtr("+15550001111"),
	})
	assert.NoError(t, err)
}

func TestService_OwnershipHidesForeignProfiles(t *testing.T) {
	svc := NewService(memory.NewStore().Profiles())
	owner := uuid.New()

	p, err := svc.Create(context.Background(), owner, &model.CreateProfileRequest{FullName: "Margaret"})
	require.NoError(t, err)

	_, err = svc.Get(context.Background(), uuid.New(), p.ID)
	assert.True(t, errors.IsNotFound(err))
	assert.True(t, errors.IsNotFound(svc.Delete(context.Background(), uuid.New(), p.ID)))

	got, err := svc.Get(context.Background(), owner, p.ID)
	require.NoError(t, err)
	assert.Equal(t, p.ID, got.ID)
}

func TestClassify(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	at := func(d time.Duration) *time.Time {
		ts := now.Add(-d)
		return &ts
	}

	tests := []struct {
		name    string
		last    *time.Time
		want    model.ActivityState
		message string
	}{
		{"never", nil, model.ActivityStateUnknown, "No activity recorded"},
		{"recent", at(2 * time.Hour), model.ActivityStateActive, "Active recently"},
		{"just below threshold", at(24*time.Hour - time.Second), model.ActivityStateActive, "Active recently"},
		{"at threshold", at(24 * time.Hour), model.ActivityStateInactive, "Inactive for 24h"},
		{"well past", at(30*time.Hour + 40*time.Minute), model.ActivityStateInactive, "Inactive for 30h"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := &model.ElderlyProfile{ID: uuid.New(), InactivityThresholdHours: 24, LastActivityAt: tt.last}
			status := Classify(p, now)
			assert.Equal(t, tt.want, status.Status)
			assert.Equal(t, tt.message, status.Message)
			assert.Equal(t, 24, status.ThresholdHours)
			if tt.last == nil {
				assert.Nil(t, status.HoursSince)
			} else {
				assert.NotNil(t, status.HoursSince)
			}
		})
	}
}

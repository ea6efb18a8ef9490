package activity

import (
	"context"
	stderrors "errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/carewatch-api/internal/model"
	"github.com/jwalitptl/carewatch-api/internal/repository/memory"
	"github.com/jwalitptl/carewatch-api/internal/service/event"
	"github.com/jwalitptl/carewatch-api/pkg/errors"
	"github.com/jwalitptl/carewatch-api/pkg/logger"
	"github.com/jwalitptl/carewatch-api/pkg/metrics"
)

func setup(t *testing.T) (*memory.Store, *Service, *model.ElderlyProfile) {
	store := memory.NewStore()
	svc := NewService(store.Profiles(), store.Activity(), event.NewService(store.Outbox()), logger.Nop(), metrics.New("test"))

	phone := "+15550001111"
	last := time.Now().Add(-48 * time.Hour)
	p := &model.ElderlyProfile{
		ID:                       uuid.New(),
		CaregiverID:              uuid.New(),
		FullName:                 "Margaret Smith",
		DevicePhoneNumber:        &phone,
		InactivityThresholdHours: 24,
		LastActivityAt:           &last,
	}
	require.NoError(t, store.Profiles().Create(context.Background(), p))
	return store, svc, p
}

func TestRecord_MatchingDevice(t *testing.T) {
	store, svc, p := setup(t)

	a, err := svc.Record(context.Background(), &model.InboundSMS{From: "+15550001111", Body: "OK", MessageSid: "SM123"})
	require.NoError(t, err)

	assert.Equal(t, p.ID, a.ElderlyProfileID)
	require.NotNil(t, a.DeviceID)
	assert.Equal(t, "SM123", *a.DeviceID)
	assert.Equal(t, 1, store.ActivityCount())

	updated, err := store.Profiles().Get(context.Background(), p.ID)
	require.NoError(t, err)
	require.NotNil(t, updated.LastActivityAt)
	assert.WithinDuration(t, time.Now(), *updated.LastActivityAt, 2*time.Second)

	events := store.Events()
	require.Len(t, events, 1)
	assert.Equal(t, model.EventActivityRecorded, events[0].EventType)
}

func TestRecord_UnknownDevice(t *testing.T) {
	store, svc, p := setup(t)

	_, err := svc.Record(context.Background(), &model.InboundSMS{From: "+19999999999", Body: "OK"})
	assert.True(t, errors.IsNotFound(err))
	assert.Zero(t, store.ActivityCount())

	unchanged, err := store.Profiles().Get(context.Background(), p.ID)
	require.NoError(t, err)
	assert.Equal(t, p.LastActivityAt.Unix(), unchanged.LastActivityAt.Unix())
	assert.Empty(t, store.Events())
}

func TestRecord_MissingFrom(t *testing.T) {
	_, svc, _ := setup(t)

	_, err := svc.Record(context.Background(), &model.InboundSMS{From: "  "})
	assert.True(t, errors.IsCode(err, errors.ErrBadRequest))
}

func TestRecord_WriteFailureLeavesNoTrace(t *testing.T) {
	store, svc, p := setup(t)
	store.FailActivityRecord = stderrors.New("connection reset")

	_, err := svc.Record(context.Background(), &model.InboundSMS{From: "+15550001111"})
	require.Error(t, err)
	assert.False(t, errors.IsNotFound(err))
	assert.Zero(t, store.ActivityCount())

	unchanged, err := store.Profiles().Get(context.Background(), p.ID)
	require.NoError(t, err)
	assert.Equal(t, p.LastActivityAt.Unix(), unchanged.LastActivityAt.Unix())
}

func TestList_NewestFirst(t *testing.T) {
	_, svc, p := setup(t)

	for _, sid := range []string{"SM1", "SM2"} {
		_, err := svc.Record(context.Background(), &model.InboundSMS{From: "+15550001111", MessageSid: sid})
		require.NoError(t, err)
	}

	list, err := svc.List(context.Background(), p.ID, model.Pagination{})
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "SM2", *list[0].DeviceID)
}

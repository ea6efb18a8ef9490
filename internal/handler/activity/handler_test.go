package activity

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/carewatch-api/internal/middleware"
	"github.com/jwalitptl/carewatch-api/internal/model"
	"github.com/jwalitptl/carewatch-api/internal/repository/memory"
	activitysvc "github.com/jwalitptl/carewatch-api/internal/service/activity"
	"github.com/jwalitptl/carewatch-api/internal/service/event"
	"github.com/jwalitptl/carewatch-api/internal/service/profile"
	"github.com/jwalitptl/carewatch-api/pkg/logger"
	"github.com/jwalitptl/carewatch-api/pkg/metrics"
)

const devicePhone = "+15550001111"

type testEnv struct {
	store     *memory.Store
	router    *gin.Engine
	caregiver uuid.UUID
	profile   *model.ElderlyProfile
}

func newTestEnv(t *testing.T) *testEnv {
	gin.SetMode(gin.TestMode)
	require.NoError(t, middleware.RegisterValidators())

	store := memory.NewStore()
	env := &testEnv{store: store, caregiver: uuid.New()}

	svc := activitysvc.NewService(store.Profiles(), store.Activity(), event.NewService(store.Outbox()),
		logger.Nop(), metrics.New("test"))
	h := NewHandler(svc, profile.NewService(store.Profiles()))

	env.router = gin.New()
	h.RegisterServiceRoutes(env.router)
	h.RegisterRoutes(env.router.Group("/api/v1", func(c *gin.Context) {
		c.Set(middleware.ContextCaregiverID, env.caregiver)
	}))

	phone := devicePhone
	last := time.Now().Add(-72 * time.Hour)
	env.profile = &model.ElderlyProfile{
		ID:                       uuid.New(),
		CaregiverID:              env.caregiver,
		FullName:                 "Margaret Smith",
		DevicePhoneNumber:        &phone,
		InactivityThresholdHours: 24,
		LastActivityAt:           &last,
		Status:                   model.ProfileStatusActive,
	}
	require.NoError(t, store.Profiles().Create(context.Background(), env.profile))
	return env
}

func (e *testEnv) postSMS(form url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/webhooks/sms", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func TestReceiveSMS_Recorded(t *testing.T) {
	env := newTestEnv(t)

	w := env.postSMS(url.Values{"From": {devicePhone}, "Body": {"OK"}, "MessageSid": {"SM1"}})
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"success":true,"message":"Activity recorded"}`, w.Body.String())
	assert.Equal(t, 1, env.store.ActivityCount())

	p, err := env.store.Profiles().Get(context.Background(), env.profile.ID)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now(), *p.LastActivityAt, 2*time.Second)
}

func TestReceiveSMS_MissingFrom(t *testing.T) {
	env := newTestEnv(t)

	w := env.postSMS(url.Values{"Body": {"OK"}})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.NotEmpty(t, body["error"])
	assert.Zero(t, env.store.ActivityCount())
}

func TestReceiveSMS_UnknownDevice(t *testing.T) {
	env := newTestEnv(t)

	w := env.postSMS(url.Values{"From": {"+19999999999"}, "Body": {"OK"}})
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Profile not found", w.Body.String())
	assert.Zero(t, env.store.ActivityCount())
}

func TestReceiveSMS_WriteFailure(t *testing.T) {
	env := newTestEnv(t)
	env.store.FailActivityRecord = stderrors.New("connection reset")

	w := env.postSMS(url.Values{"From": {devicePhone}})
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"error":"Internal server error"}`, w.Body.String())
}

func TestListActivity(t *testing.T) {
	env := newTestEnv(t)
	for i := 0; i < 3; i++ {
		require.Equal(t, http.StatusOK, env.postSMS(url.Values{"From": {devicePhone}}).Code)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/profiles/"+env.profile.ID.String()+"/activity?limit=2", nil)
	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Data []*model.DeviceActivity `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Len(t, body.Data, 2)

	env.caregiver = uuid.New()
	w = httptest.NewRecorder()
	env.router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/profiles/"+env.profile.ID.String()+"/activity", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

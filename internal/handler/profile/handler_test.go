package profile

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/carewatch-api/internal/middleware"
	"github.com/jwalitptl/carewatch-api/internal/model"
	"github.com/jwalitptl/carewatch-api/internal/repository/memory"
	profilesvc "github.com/jwalitptl/carewatch-api/internal/service/profile"
)

type testEnv struct {
	router    *gin.Engine
	caregiver uuid.UUID
}

func newTestEnv(t *testing.T) *testEnv {
	gin.SetMode(gin.TestMode)
	require.NoError(t, middleware.RegisterValidators())

	env := &testEnv{caregiver: uuid.New()}
	h := NewHandler(profilesvc.NewService(memory.NewStore().Profiles()))
	env.router = gin.New()
	h.RegisterRoutes(env.router.Group("/api/v1", func(c *gin.Context) {
		c.Set(middleware.ContextCaregiverID, env.caregiver)
	}))
	return env
}

func (e *testEnv) do(t *testing.T, method, path, body string, out interface{}) int {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)

	if out != nil && w.Body.Len() > 0 {
		var envelope struct {
			Data json.RawMessage `json:"data"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
		require.NoError(t, json.Unmarshal(envelope.Data, out))
	}
	return w.Code
}

func TestProfileLifecycle(t *testing.T) {
	env := newTestEnv(t)

	var created model.ElderlyProfile
	status := env.do(t, http.MethodPost, "/api/v1/profiles",
		`{"full_name":"Margaret Smith","device_phone_number":"+15550001111","inactivity_threshold_hours":12}`, &created)
	require.Equal(t, http.StatusCreated, status)
	assert.Equal(t, env.caregiver, created.CaregiverID)
	assert.Equal(t, 12, created.InactivityThresholdHours)
	path := "/api/v1/profiles/" + created.ID.String()

	var list []*model.ElderlyProfile
	require.Equal(t, http.StatusOK, env.do(t, http.MethodGet, "/api/v1/profiles", "", &list))
	assert.Len(t, list, 1)

	var updated model.ElderlyProfile
	require.Equal(t, http.StatusOK, env.do(t, http.MethodPut, path, `{"address":"12 Elm St"}`, &updated))
	require.NotNil(t, updated.Address)
	assert.Equal(t, "12 Elm St", *updated.Address)

	var st model.ActivityStatus
	require.Equal(t, http.StatusOK, env.do(t, http.MethodGet, path+"/status", "", &st))
	assert.Equal(t, model.ActivityStateActive, st.Status)
	assert.Equal(t, "Active recently", st.Message)

	assert.Equal(t, http.StatusNoContent, env.do(t, http.MethodDelete, path, "", nil))
	assert.Equal(t, http.StatusNotFound, env.do(t, http.MethodGet, path, "", nil))
}

func TestCreate_Validation(t *testing.T) {
	env := newTestEnv(t)

	assert.Equal(t, http.StatusBadRequest, env.do(t, http.MethodPost, "/api/v1/profiles", `{}`, nil))
	assert.Equal(t, http.StatusBadRequest,
		env.do(t, http.MethodPost, "/api/v1/profiles", `{"full_name":"A","inactivity_threshold_hours":0}`, nil))

	require.Equal(t, http.StatusCreated,
		env.do(t, http.MethodPost, "/api/v1/profiles", `{"full_name":"A","device_phone_number":"+1555"}`, nil))
	assert.Equal(t, http.StatusConflict,
		env.do(t, http.MethodPost, "/api/v1/profiles", `{"full_name":"B","device_phone_number":"+1555"}`, nil))
}

func TestForeignProfileIsHidden(t *testing.T) {
	env := newTestEnv(t)

	var created model.ElderlyProfile
	require.Equal(t, http.StatusCreated,
		env.do(t, http.MethodPost, "/api/v1/profiles", `{"full_name":"Margaret Smith"}`, &created))

	env.caregiver = uuid.New()
	path := "/api/v1/profiles/" + created.ID.String()
	assert.Equal(t, http.StatusNotFound, env.do(t, http.MethodGet, path, "", nil))
	assert.Equal(t, http.StatusNotFound, env.do(t, http.MethodGet, path+"/status", "", nil))
	assert.Equal(t, http.StatusNotFound, env.do(t, http.MethodDelete, path, "", nil))

	var list []*model.ElderlyProfile
	require.Equal(t, http.StatusOK, env.do(t, http.MethodGet, "/api/v1/profiles", "", &list))
	assert.Empty(t, list)
}

func TestGet_BadID(t *testing.T) {
	env := newTestEnv(t)
	assert.Equal(t, http.StatusBadRequest, env.do(t, http.MethodGet, "/api/v1/profiles/123", "", nil))
}

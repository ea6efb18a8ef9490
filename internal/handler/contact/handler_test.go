package contact

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
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
	contactsvc "github.com/jwalitptl/carewatch-api/internal/service/contact"
	"github.com/jwalitptl/carewatch-api/internal/service/profile"
)

type testEnv struct {
	store     *memory.Store
	router    *gin.Engine
	caregiver uuid.UUID
	profile   *model.ElderlyProfile
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func newTestEnv(t *testing.T) *testEnv {
	gin.SetMode(gin.TestMode)
	require.NoError(t, middleware.RegisterValidators())

	store := memory.NewStore()
	env := &testEnv{store: store, caregiver: uuid.New()}

	h := NewHandler(contactsvc.NewService(store.Contacts()), profile.NewService(store.Profiles()))
	env.router = gin.New()
	h.RegisterRoutes(env.router.Group("/api/v1", func(c *gin.Context) {
		c.Set(middleware.ContextCaregiverID, env.caregiver)
	}))

	env.profile = &model.ElderlyProfile{
		ID:                       uuid.New(),
		CaregiverID:              env.caregiver,
		FullName:                 "Margaret Smith",
		InactivityThresholdHours: 24,
		CreatedAt:                time.Now(),
	}
	require.NoError(t, store.Profiles().Create(context.Background(), env.profile))
	return env
}

func (e *testEnv) do(t *testing.T, method, path, body string) (int, envelope) {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)

	var env envelope
	if w.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	}
	return w.Code, env
}

func (e *testEnv) contactsPath() string {
	return "/api/v1/profiles/" + e.profile.ID.String() + "/contacts"
}

func TestCreateAndList(t *testing.T) {
	env := newTestEnv(t)

	status, body := env.do(t, http.MethodPost, env.contactsPath(),
		`{"full_name":"Jane Smith","phone":"+15551112222","alert_methods":["sms","voice_call"],"is_primary":true}`)
	require.Equal(t, http.StatusCreated, status)

	var created model.Contact
	require.NoError(t, json.Unmarshal(body.Data, &created))
	assert.Equal(t, env.profile.ID, created.ElderlyProfileID)
	assert.True(t, created.IsPrimary)

	status, body = env.do(t, http.MethodGet, env.contactsPath(), "")
	require.Equal(t, http.StatusOK, status)
	var list []*model.Contact
	require.NoError(t, json.Unmarshal(body.Data, &list))
	assert.Len(t, list, 1)
}

func TestCreate_Rejected(t *testing.T) {
	env := newTestEnv(t)

	tests := []struct {
		name string
		body string
	}{
		{"unknown method", `{"full_name":"Jane","phone":"+1555","alert_methods":["pager"]}`},
		{"empty methods", `{"full_name":"Jane","phone":"+1555","alert_methods":[]}`},
		{"no destination", `{"full_name":"Jane","alert_methods":["sms"]}`},
		{"unsatisfiable method", `{"full_name":"Jane","phone":"+1555","alert_methods":["email"]}`},
		{"duplicate method", `{"full_name":"Jane","phone":"+1555","alert_methods":["sms","sms"]}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, body := env.do(t, http.MethodPost, env.contactsPath(), tt.body)
			assert.Equal(t, http.StatusBadRequest, status)
			require.NotNil(t, body.Error)
			assert.NotEmpty(t, body.Error.Message)
		})
	}
}

func TestGetUpdateDelete(t *testing.T) {
	env := newTestEnv(t)
	_, body := env.do(t, http.MethodPost, env.contactsPath(),
		`{"full_name":"Jane Smith","email":"jane@example.com","alert_methods":["email"]}`)
	var created model.Contact
	require.NoError(t, json.Unmarshal(body.Data, &created))
	path := "/api/v1/contacts/" + created.ID.String()

	status, _ := env.do(t, http.MethodGet, path, "")
	assert.Equal(t, http.StatusOK, status)

	status, body = env.do(t, http.MethodPut, path, `{"phone":"+15551112222","alert_methods":["email","sms"]}`)
	require.Equal(t, http.StatusOK, status)
	var updated model.Contact
	require.NoError(t, json.Unmarshal(body.Data, &updated))
	assert.Equal(t, model.AlertMethods{model.AlertMethodEmail, model.AlertMethodSMS}, updated.AlertMethods)

	status, _ = env.do(t, http.MethodPut, path, `{"email":""}`)
	assert.Equal(t, http.StatusBadRequest, status, "clearing the only email leaves the email channel unsatisfiable")

	status, _ = env.do(t, http.MethodDelete, path, "")
	assert.Equal(t, http.StatusNoContent, status)

	status, _ = env.do(t, http.MethodGet, path, "")
	assert.Equal(t, http.StatusNotFound, status)
}

func TestUpdate_InvalidEmailRejected(t *testing.T) {
	env := newTestEnv(t)
	_, body := env.do(t, http.MethodPost, env.contactsPath(),
		`{"full_name":"Jane Smith","email":"jane@example.com","alert_methods":["email"]}`)
	var created model.Contact
	require.NoError(t, json.Unmarshal(body.Data, &created))
	path := "/api/v1/contacts/" + created.ID.String()

	status, body := env.do(t, http.MethodPut, path, `{"email":"not-an-email"}`)
	assert.Equal(t, http.StatusBadRequest, status)
	require.NotNil(t, body.Error)

	stored, err := env.store.Contacts().Get(context.Background(), created.ID)
	require.NoError(t, err)
	require.NotNil(t, stored.Email)
	assert.Equal(t, "jane@example.com", *stored.Email)
}

func TestForeignCaregiverSeesNothing(t *testing.T) {
	env := newTestEnv(t)
	_, body := env.do(t, http.MethodPost, env.contactsPath(),
		`{"full_name":"Jane Smith","email":"jane@example.com","alert_methods":["email"]}`)
	var created model.Contact
	require.NoError(t, json.Unmarshal(body.Data, &created))

	env.caregiver = uuid.New()

	status, _ := env.do(t, http.MethodGet, env.contactsPath(), "")
	assert.Equal(t, http.StatusNotFound, status)

	status, body = env.do(t, http.MethodGet, "/api/v1/contacts/"+created.ID.String(), "")
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "contact not found", body.Error.Message)

	status, _ = env.do(t, http.MethodDelete, "/api/v1/contacts/"+created.ID.String(), "")
	assert.Equal(t, http.StatusNotFound, status)
	assert.Len(t, mustList(t, env), 1)
}

func mustList(t *testing.T, env *testEnv) []*model.Contact {
	contacts, err := env.store.Contacts().ListByProfile(context.Background(), env.profile.ID)
	require.NoError(t, err)
	return contacts
}

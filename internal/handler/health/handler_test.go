package health

import (
	"context"
	stderrors "errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type pingFunc func(ctx context.Context) error

func (f pingFunc) PingContext(ctx context.Context) error { return f(ctx) }

func get(r *gin.Engine, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
	return w
}

func TestLiveness(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	NewHandler(pingFunc(func(context.Context) error { return stderrors.New("down") })).RegisterRoutes(r)

	w := get(r, "/health/live")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"UP"}`, w.Body.String())
}

func TestReadiness(t *testing.T) {
	gin.SetMode(gin.TestMode)

	db, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)
	defer db.Close()

	r := gin.New()
	NewHandler(db).RegisterRoutes(r)

	mock.ExpectPing()
	assert.Equal(t, http.StatusOK, get(r, "/health/ready").Code)

	mock.ExpectPing().WillReturnError(stderrors.New("connection refused"))
	w := get(r, "/health/ready")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Contains(t, w.Body.String(), "DOWN")

	require.NoError(t, mock.ExpectationsWereMet())
}

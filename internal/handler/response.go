package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/carewatch-api/internal/middleware"
	"github.com/jwalitptl/carewatch-api/pkg/errors"
	"github.com/jwalitptl/carewatch-api/pkg/httputil"
)

// ErrorBody is the flat error shape used by the service endpoints.
type ErrorBody struct {
	Error string `json:"error"`
}

// Fail writes err in the API envelope. Server errors are attached to the
// context so the error middleware logs their cause.
func Fail(c *gin.Context, err error) {
	status, _ := httputil.StatusAndMessage(err)
	if status >= http.StatusInternalServerError {
		_ = c.Error(err)
	}
	httputil.RespondWithError(c, err)
}

// FailFlat writes err as {"error": message}.
func FailFlat(c *gin.Context, err error) {
	status, message := httputil.StatusAndMessage(err)
	if status >= http.StatusInternalServerError {
		_ = c.Error(err)
	}
	c.JSON(status, ErrorBody{Error: message})
}

// BindJSON binds and validates the body. On failure it responds 400 and returns false.
func BindJSON(c *gin.Context, dst interface{}) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		Fail(c, errors.BadRequest(middleware.ValidationMessage(err), err))
		return false
	}
	return true
}

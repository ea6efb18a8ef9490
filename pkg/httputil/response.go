package httputil

import (
	stderrors "errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/jwalitptl/carewatch-api/pkg/errors"
)

// Response wraps all API responses
type Response struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   *Error      `json:"error,omitempty"`
}

// Error represents API error
type Error struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// RespondWithSuccess sends a success response
func RespondWithSuccess(c *gin.Context, data interface{}) {
	RespondWithStatus(c, http.StatusOK, data)
}

// RespondWithStatus sends a success response with an explicit status code
func RespondWithStatus(c *gin.Context, status int, data interface{}) {
	c.JSON(status, Response{
		Success: true,
		Data:    data,
	})
}

// RespondWithError sends an error response
func RespondWithError(c *gin.Context, err error) {
	statusCode, message := StatusAndMessage(err)

	c.JSON(statusCode, Response{
		Success: false,
		Error: &Error{
			Code:    statusCode,
			Message: message,
		},
	})
}

// StatusAndMessage resolves the HTTP status and client-facing message for err.
// Internal errors never leak their cause.
func StatusAndMessage(err error) (int, string) {
	var appErr *errors.AppError
	if stderrors.As(err, &appErr) {
		status := appErr.StatusCode()
		if status == http.StatusInternalServerError {
			return status, "Internal server error"
		}
		return status, appErr.Message
	}
	return http.StatusInternalServerError, "Internal server error"
}

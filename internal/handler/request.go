package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/jwalitptl/carewatch-api/internal/middleware"
	"github.com/jwalitptl/carewatch-api/internal/model"
	"github.com/jwalitptl/carewatch-api/pkg/errors"
)

// ParamID parses a uuid path parameter, responding 400 when it is malformed.
func ParamID(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		Fail(c, errors.BadRequest("invalid "+name, err))
		return uuid.Nil, false
	}
	return id, true
}

// Caregiver returns the authenticated caregiver, responding 401 when absent.
func Caregiver(c *gin.Context) (uuid.UUID, bool) {
	id, ok := middleware.CaregiverID(c)
	if !ok {
		Fail(c, errors.Unauthorized(nil))
		return uuid.Nil, false
	}
	return id, true
}

// Page reads limit/offset query parameters.
func Page(c *gin.Context) (model.Pagination, bool) {
	var page model.Pagination
	if err := c.ShouldBindQuery(&page); err != nil {
		Fail(c, errors.BadRequest("invalid pagination", err))
		return page, false
	}
	return page.Normalize(), true
}

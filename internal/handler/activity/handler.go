package activity

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/jwalitptl/carewatch-api/internal/handler"
	"github.com/jwalitptl/carewatch-api/internal/middleware"
	"github.com/jwalitptl/carewatch-api/internal/model"
	"github.com/jwalitptl/carewatch-api/pkg/errors"
	"github.com/jwalitptl/carewatch-api/pkg/httputil"
)

type Service interface {
	Record(ctx context.Context, in *model.InboundSMS) (*model.DeviceActivity, error)
	List(ctx context.Context, profileID uuid.UUID, page model.Pagination) ([]*model.DeviceActivity, error)
}

type ProfileLookup interface {
	Get(ctx context.Context, caregiverID, id uuid.UUID) (*model.ElderlyProfile, error)
}

type Handler struct {
	svc      Service
	profiles ProfileLookup
}

func NewHandler(svc Service, profiles ProfileLookup) *Handler {
	return &Handler{svc: svc, profiles: profiles}
}

// RegisterServiceRoutes mounts the SMS provider webhook.
func (h *Handler) RegisterServiceRoutes(r gin.IRoutes) {
	r.POST("/webhooks/sms", h.ReceiveSMS)
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	r.GET("/profiles/:id/activity", h.List)
}

// ReceiveSMS records a device check-in sent by the SMS provider.
func (h *Handler) ReceiveSMS(c *gin.Context) {
	var in model.InboundSMS
	if err := c.ShouldBind(&in); err != nil {
		c.JSON(http.StatusBadRequest, handler.ErrorBody{Error: middleware.ValidationMessage(err)})
		return
	}

	if _, err := h.svc.Record(c.Request.Context(), &in); err != nil {
		if errors.IsNotFound(err) {
			c.String(http.StatusNotFound, "Profile not found")
			return
		}
		handler.FailFlat(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Activity recorded",
	})
}

func (h *Handler) List(c *gin.Context) {
	caregiverID, ok := handler.Caregiver(c)
	if !ok {
		return
	}
	profileID, ok := handler.ParamID(c, "id")
	if !ok {
		return
	}
	page, ok := handler.Page(c)
	if !ok {
		return
	}
	if _, err := h.profiles.Get(c.Request.Context(), caregiverID, profileID); err != nil {
		handler.Fail(c, err)
		return
	}

	activity, err := h.svc.List(c.Request.Context(), profileID, page)
	if err != nil {
		handler.Fail(c, err)
		return
	}
	httputil.RespondWithSuccess(c, activity)
}

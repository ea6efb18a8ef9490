package alert

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/jwalitptl/carewatch-api/internal/handler"
	"github.com/jwalitptl/carewatch-api/internal/middleware"
	"github.com/jwalitptl/carewatch-api/internal/model"
	alertsvc "github.com/jwalitptl/carewatch-api/internal/service/alert"
	"github.com/jwalitptl/carewatch-api/pkg/errors"
	"github.com/jwalitptl/carewatch-api/pkg/httputil"
)

type Service interface {
	Dispatch(ctx context.Context, profileID, contactID uuid.UUID, message string) (*model.DispatchResult, error)
	History(ctx context.Context, profileID uuid.UUID, page model.Pagination) ([]*model.AlertHistory, error)
	Get(ctx context.Context, id uuid.UUID) (*model.AlertHistory, error)
	Acknowledge(ctx context.Context, id uuid.UUID) (*model.AlertHistory, error)
}

// ProfileLookup resolves a profile on behalf of a caregiver.
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

// RegisterServiceRoutes mounts the machine-facing dispatch endpoint.
func (h *Handler) RegisterServiceRoutes(r gin.IRoutes) {
	r.POST("/functions/send-alert", h.SendAlert)
}

// RegisterRoutes mounts the caregiver-facing routes. r must already require authentication.
func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	r.POST("/alerts/dispatch", h.Dispatch)
	r.POST("/alerts/:id/acknowledge", h.Acknowledge)
	r.GET("/profiles/:id/alerts", h.History)
}

// SendAlert dispatches an alert and answers with the raw dispatch result.
// The status reflects the aggregate outcome: 200, 207 or 500.
func (h *Handler) SendAlert(c *gin.Context) {
	profileID, contactID, message, ok := bindDispatch(c)
	if !ok {
		return
	}
	h.dispatch(c, profileID, contactID, message)
}

// Dispatch is SendAlert for an authenticated caregiver, limited to their own profiles.
func (h *Handler) Dispatch(c *gin.Context) {
	caregiverID, ok := handler.Caregiver(c)
	if !ok {
		return
	}
	profileID, contactID, message, ok := bindDispatch(c)
	if !ok {
		return
	}
	if _, err := h.profiles.Get(c.Request.Context(), caregiverID, profileID); err != nil {
		handler.FailFlat(c, err)
		return
	}
	h.dispatch(c, profileID, contactID, message)
}

func (h *Handler) dispatch(c *gin.Context, profileID, contactID uuid.UUID, message string) {
	res, err := h.svc.Dispatch(c.Request.Context(), profileID, contactID, message)
	if err != nil {
		handler.FailFlat(c, err)
		return
	}
	c.JSON(alertsvc.StatusCode(res), res)
}

func bindDispatch(c *gin.Context) (uuid.UUID, uuid.UUID, string, bool) {
	var req model.DispatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.ErrorBody{Error: middleware.ValidationMessage(err)})
		return uuid.Nil, uuid.Nil, "", false
	}
	profileID, err := uuid.Parse(req.ElderlyProfileID)
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.ErrorBody{Error: "invalid elderly_profile_id"})
		return uuid.Nil, uuid.Nil, "", false
	}
	contactID, err := uuid.Parse(req.ContactID)
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.ErrorBody{Error: "invalid contact_id"})
		return uuid.Nil, uuid.Nil, "", false
	}
	return profileID, contactID, req.Message, true
}

func (h *Handler) History(c *gin.Context) {
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

	entries, err := h.svc.History(c.Request.Context(), profileID, page)
	if err != nil {
		handler.Fail(c, err)
		return
	}
	httputil.RespondWithSuccess(c, entries)
}

func (h *Handler) Acknowledge(c *gin.Context) {
	caregiverID, ok := handler.Caregiver(c)
	if !ok {
		return
	}
	id, ok := handler.ParamID(c, "id")
	if !ok {
		return
	}

	entry, err := h.svc.Get(c.Request.Context(), id)
	if err != nil {
		handler.Fail(c, err)
		return
	}
	if _, err := h.profiles.Get(c.Request.Context(), caregiverID, entry.ElderlyProfileID); err != nil {
		if errors.IsNotFound(err) {
			err = errors.NotFound("alert", nil)
		}
		handler.Fail(c, err)
		return
	}

	entry, err = h.svc.Acknowledge(c.Request.Context(), id)
	if err != nil {
		handler.Fail(c, err)
		return
	}
	httputil.RespondWithSuccess(c, entry)
}

package caregiver

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/jwalitptl/carewatch-api/internal/handler"
	"github.com/jwalitptl/carewatch-api/internal/model"
	"github.com/jwalitptl/carewatch-api/pkg/httputil"
)

type Service interface {
	Me(ctx context.Context, caregiverID uuid.UUID) (*model.Caregiver, error)
	UpdateSettings(ctx context.Context, caregiverID uuid.UUID, req *model.UpdateSettingsRequest) (*model.Caregiver, error)
}

type Handler struct {
	svc Service
}

func NewHandler(svc Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	r.GET("/me", h.Get)
	r.PUT("/me", h.Update)
}

func (h *Handler) Get(c *gin.Context) {
	caregiverID, ok := handler.Caregiver(c)
	if !ok {
		return
	}
	me, err := h.svc.Me(c.Request.Context(), caregiverID)
	if err != nil {
		handler.Fail(c, err)
		return
	}
	httputil.RespondWithSuccess(c, me)
}

func (h *Handler) Update(c *gin.Context) {
	caregiverID, ok := handler.Caregiver(c)
	if !ok {
		return
	}
	var req model.UpdateSettingsRequest
	if !handler.BindJSON(c, &req) {
		return
	}

	me, err := h.svc.UpdateSettings(c.Request.Context(), caregiverID, &req)
	if err != nil {
		handler.Fail(c, err)
		return
	}
	httputil.RespondWithSuccess(c, me)
}

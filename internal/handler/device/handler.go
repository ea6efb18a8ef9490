package device

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/jwalitptl/carewatch-api/internal/handler"
	"github.com/jwalitptl/carewatch-api/internal/model"
	"github.com/jwalitptl/carewatch-api/pkg/httputil"
)

type Service interface {
	Create(ctx context.Context, caregiverID uuid.UUID, req *model.CreateDeviceRequest) (*model.Device, error)
	Get(ctx context.Context, caregiverID, id uuid.UUID) (*model.Device, error)
	List(ctx context.Context, caregiverID uuid.UUID) ([]*model.Device, error)
	Update(ctx context.Context, caregiverID, id uuid.UUID, req *model.UpdateDeviceRequest) (*model.Device, error)
	Delete(ctx context.Context, caregiverID, id uuid.UUID) error
}

type Handler struct {
	svc Service
}

func NewHandler(svc Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	devices := r.Group("/devices")
	{
		devices.POST("", h.Create)
		devices.GET("", h.List)
		devices.GET("/:id", h.Get)
		devices.PUT("/:id", h.Update)
		devices.DELETE("/:id", h.Delete)
	}
}

func (h *Handler) Create(c *gin.Context) {
	caregiverID, ok := handler.Caregiver(c)
	if !ok {
		return
	}
	var req model.CreateDeviceRequest
	if !handler.BindJSON(c, &req) {
		return
	}

	d, err := h.svc.Create(c.Request.Context(), caregiverID, &req)
	if err != nil {
		handler.Fail(c, err)
		return
	}
	httputil.RespondWithStatus(c, http.StatusCreated, d)
}

func (h *Handler) List(c *gin.Context) {
	caregiverID, ok := handler.Caregiver(c)
	if !ok {
		return
	}
	devices, err := h.svc.List(c.Request.Context(), caregiverID)
	if err != nil {
		handler.Fail(c, err)
		return
	}
	httputil.RespondWithSuccess(c, devices)
}

func (h *Handler) Get(c *gin.Context) {
	caregiverID, id, ok := ids(c)
	if !ok {
		return
	}
	d, err := h.svc.Get(c.Request.Context(), caregiverID, id)
	if err != nil {
		handler.Fail(c, err)
		return
	}
	httputil.RespondWithSuccess(c, d)
}

func (h *Handler) Update(c *gin.Context) {
	caregiverID, id, ok := ids(c)
	if !ok {
		return
	}
	var req model.UpdateDeviceRequest
	if !handler.BindJSON(c, &req) {
		return
	}

	d, err := h.svc.Update(c.Request.Context(), caregiverID, id, &req)
	if err != nil {
		handler.Fail(c, err)
		return
	}
	httputil.RespondWithSuccess(c, d)
}

func (h *Handler) Delete(c *gin.Context) {
	caregiverID, id, ok := ids(c)
	if !ok {
		return
	}
	if err := h.svc.Delete(c.Request.Context(), caregiverID, id); err != nil {
		handler.Fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func ids(c *gin.Context) (uuid.UUID, uuid.UUID, bool) {
	caregiverID, ok := handler.Caregiver(c)
	if !ok {
		return uuid.Nil, uuid.Nil, false
	}
	id, ok := handler.ParamID(c, "id")
	if !ok {
		return uuid.Nil, uuid.Nil, false
	}
	return caregiverID, id, true
}

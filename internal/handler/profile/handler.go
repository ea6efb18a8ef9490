package profile

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
	Create(ctx context.Context, caregiverID uuid.UUID, req *model.CreateProfileRequest) (*model.ElderlyProfile, error)
	Get(ctx context.Context, caregiverID, id uuid.UUID) (*model.ElderlyProfile, error)
	List(ctx context.Context, caregiverID uuid.UUID) ([]*model.ElderlyProfile, error)
	Update(ctx context.Context, caregiverID, id uuid.UUID, req *model.UpdateProfileRequest) (*model.ElderlyProfile, error)
	Delete(ctx context.Context, caregiverID, id uuid.UUID) error
	Status(ctx context.Context, caregiverID, id uuid.UUID) (*model.ActivityStatus, error)
}

type Handler struct {
	svc Service
}

func NewHandler(svc Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	profiles := r.Group("/profiles")
	{
		profiles.POST("", h.Create)
		profiles.GET("", h.List)
		profiles.GET("/:id", h.Get)
		profiles.PUT("/:id", h.Update)
		profiles.DELETE("/:id", h.Delete)
		profiles.GET("/:id/status", h.Status)
	}
}

func (h *Handler) Create(c *gin.Context) {
	caregiverID, ok := handler.Caregiver(c)
	if !ok {
		return
	}
	var req model.CreateProfileRequest
	if !handler.BindJSON(c, &req) {
		return
	}

	p, err := h.svc.Create(c.Request.Context(), caregiverID, &req)
	if err != nil {
		handler.Fail(c, err)
		return
	}
	httputil.RespondWithStatus(c, http.StatusCreated, p)
}

func (h *Handler) List(c *gin.Context) {
	caregiverID, ok := handler.Caregiver(c)
	if !ok {
		return
	}
	profiles, err := h.svc.List(c.Request.Context(), caregiverID)
	if err != nil {
		handler.Fail(c, err)
		return
	}
	httputil.RespondWithSuccess(c, profiles)
}

func (h *Handler) Get(c *gin.Context) {
	caregiverID, id, ok := ids(c)
	if !ok {
		return
	}
	p, err := h.svc.Get(c.Request.Context(), caregiverID, id)
	if err != nil {
		handler.Fail(c, err)
		return
	}
	httputil.RespondWithSuccess(c, p)
}

func (h *Handler) Update(c *gin.Context) {
	caregiverID, id, ok := ids(c)
	if !ok {
		return
	}
	var req model.UpdateProfileRequest
	if !handler.BindJSON(c, &req) {
		return
	}

	p, err := h.svc.Update(c.Request.Context(), caregiverID, id, &req)
	if err != nil {
		handler.Fail(c, err)
		return
	}
	httputil.RespondWithSuccess(c, p)
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

// Status reports how long the individual has been inactive. Read-only.
func (h *Handler) Status(c *gin.Context) {
	caregiverID, id, ok := ids(c)
	if !ok {
		return
	}
	status, err := h.svc.Status(c.Request.Context(), caregiverID, id)
	if err != nil {
		handler.Fail(c, err)
		return
	}
	httputil.RespondWithSuccess(c, status)
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

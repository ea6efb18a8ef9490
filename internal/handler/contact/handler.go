package contact

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/jwalitptl/carewatch-api/internal/handler"
	"github.com/jwalitptl/carewatch-api/internal/model"
	"github.com/jwalitptl/carewatch-api/pkg/errors"
	"github.com/jwalitptl/carewatch-api/pkg/httputil"
)

type Service interface {
	Create(ctx context.Context, profileID uuid.UUID, req *model.CreateContactRequest) (*model.Contact, error)
	Get(ctx context.Context, id uuid.UUID) (*model.Contact, error)
	ListByProfile(ctx context.Context, profileID uuid.UUID) ([]*model.Contact, error)
	Update(ctx context.Context, id uuid.UUID, req *model.UpdateContactRequest) (*model.Contact, error)
	Delete(ctx context.Context, id uuid.UUID) error
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

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	r.GET("/profiles/:id/contacts", h.List)
	r.POST("/profiles/:id/contacts", h.Create)

	contacts := r.Group("/contacts")
	{
		contacts.GET("/:id", h.Get)
		contacts.PUT("/:id", h.Update)
		contacts.DELETE("/:id", h.Delete)
	}
}

// ownedProfile resolves the :id profile for the caller, responding on failure.
func (h *Handler) ownedProfile(c *gin.Context) (uuid.UUID, bool) {
	caregiverID, ok := handler.Caregiver(c)
	if !ok {
		return uuid.Nil, false
	}
	profileID, ok := handler.ParamID(c, "id")
	if !ok {
		return uuid.Nil, false
	}
	if _, err := h.profiles.Get(c.Request.Context(), caregiverID, profileID); err != nil {
		handler.Fail(c, err)
		return uuid.Nil, false
	}
	return profileID, true
}

// ownedContact loads the :id contact, hiding contacts of other caregivers' profiles.
func (h *Handler) ownedContact(c *gin.Context) (*model.Contact, bool) {
	caregiverID, ok := handler.Caregiver(c)
	if !ok {
		return nil, false
	}
	id, ok := handler.ParamID(c, "id")
	if !ok {
		return nil, false
	}
	contact, err := h.svc.Get(c.Request.Context(), id)
	if err != nil {
		handler.Fail(c, err)
		return nil, false
	}
	if _, err := h.profiles.Get(c.Request.Context(), caregiverID, contact.ElderlyProfileID); err != nil {
		if errors.IsNotFound(err) {
			err = errors.NotFound("contact", nil)
		}
		handler.Fail(c, err)
		return nil, false
	}
	return contact, true
}

func (h *Handler) List(c *gin.Context) {
	profileID, ok := h.ownedProfile(c)
	if !ok {
		return
	}
	contacts, err := h.svc.ListByProfile(c.Request.Context(), profileID)
	if err != nil {
		handler.Fail(c, err)
		return
	}
	httputil.RespondWithSuccess(c, contacts)
}

func (h *Handler) Create(c *gin.Context) {
	profileID, ok := h.ownedProfile(c)
	if !ok {
		return
	}
	var req model.CreateContactRequest
	if !handler.BindJSON(c, &req) {
		return
	}

	contact, err := h.svc.Create(c.Request.Context(), profileID, &req)
	if err != nil {
		handler.Fail(c, err)
		return
	}
	httputil.RespondWithStatus(c, http.StatusCreated, contact)
}

func (h *Handler) Get(c *gin.Context) {
	contact, ok := h.ownedContact(c)
	if !ok {
		return
	}
	httputil.RespondWithSuccess(c, contact)
}

func (h *Handler) Update(c *gin.Context) {
	contact, ok := h.ownedContact(c)
	if !ok {
		return
	}
	var req model.UpdateContactRequest
	if !handler.BindJSON(c, &req) {
		return
	}

	updated, err := h.svc.Update(c.Request.Context(), contact.ID, &req)
	if err != nil {
		handler.Fail(c, err)
		return
	}
	httputil.RespondWithSuccess(c, updated)
}

func (h *Handler) Delete(c *gin.Context) {
	contact, ok := h.ownedContact(c)
	if !ok {
		return
	}
	if err := h.svc.Delete(c.Request.Context(), contact.ID); err != nil {
		handler.Fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

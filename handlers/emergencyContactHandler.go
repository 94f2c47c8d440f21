package handlers

import (
	"SmartClinic/middlewares"
	"SmartClinic/models"
	"SmartClinic/services"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type EmergencyContactHandler struct {
	service *services.EmergencyContactService
	log     *zap.Logger
}

// NewEmergencyContactHandler initializes a new EmergencyContactHandler.
func NewEmergencyContactHandler(service *services.EmergencyContactService, log *zap.Logger) *EmergencyContactHandler {
	return &EmergencyContactHandler{service: service, log: log}
}

// CreateEmergencyContact handles creating a new emergency contact.
func (h *EmergencyContactHandler) CreateEmergencyContact(c *gin.Context) {
	var in models.EmergencyContactInput
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, "Invalid request body")
		return
	}
	contact, err := h.service.Create(c.Request.Context(), middlewares.ActorFromContext(c), in)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	middlewares.RespondJSON(c, http.StatusCreated, "Emergency contact added", gin.H{"contact": contact})
}

// GetAllEmergencyContacts lists the caller's contacts, primary first.
func (h *EmergencyContactHandler) GetAllEmergencyContacts(c *gin.Context) {
	contacts, err := h.service.List(c.Request.Context(), middlewares.ActorFromContext(c))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	middlewares.RespondJSON(c, http.StatusOK, "ok", gin.H{"contacts": contacts})
}

func (h *EmergencyContactHandler) SetPrimaryEmergencyContact(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	contact, err := h.service.SetPrimary(c.Request.Context(), middlewares.ActorFromContext(c), id)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	middlewares.RespondJSON(c, http.StatusOK, "Primary contact updated", gin.H{"contact": contact})
}

// DeleteEmergencyContact removes one of the caller's contacts.
func (h *EmergencyContactHandler) DeleteEmergencyContact(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	if err := h.service.Delete(c.Request.Context(), middlewares.ActorFromContext(c), id); err != nil {
		respondError(c, h.log, err)
		return
	}
	middlewares.RespondJSON(c, http.StatusOK, "Emergency contact deleted", nil)
}

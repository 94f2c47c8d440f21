package handlers

import (
	"SmartClinic/middlewares"
	"SmartClinic/models"
	"SmartClinic/services"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type AmbulanceHandler struct {
	service *services.AmbulanceService
	log     *zap.Logger
}

func NewAmbulanceHandler(service *services.AmbulanceService, log *zap.Logger) *AmbulanceHandler {
	return &AmbulanceHandler{service: service, log: log}
}

func (h *AmbulanceHandler) BookAmbulance(c *gin.Context) {
	var req models.AmbulanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request body")
		return
	}
	booking, err := h.service.Book(c.Request.Context(), middlewares.ActorFromContext(c), req)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	middlewares.RespondJSON(c, http.StatusCreated, "Ambulance requested", gin.H{"booking": booking})
}

// AmbulanceStatus returns one of the caller's bookings.
func (h *AmbulanceHandler) AmbulanceStatus(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	booking, err := h.service.Get(c.Request.Context(), middlewares.ActorFromContext(c), id)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	middlewares.RespondJSON(c, http.StatusOK, "ok", gin.H{"booking": booking})
}

func (h *AmbulanceHandler) ListAmbulanceBookings(c *gin.Context) {
	bookings, err := h.service.List(c.Request.Context(), middlewares.ActorFromContext(c))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	middlewares.RespondJSON(c, http.StatusOK, "ok", gin.H{"bookings": bookings})
}

func (h *AmbulanceHandler) DeleteAmbulanceBooking(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	if err := h.service.Delete(c.Request.Context(), middlewares.ActorFromContext(c), id); err != nil {
		respondError(c, h.log, err)
		return
	}
	middlewares.RespondJSON(c, http.StatusOK, "Ambulance booking deleted", nil)
}

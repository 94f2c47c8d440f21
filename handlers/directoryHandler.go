package handlers

import (
	"SmartClinic/middlewares"
	"SmartClinic/models"
	"SmartClinic/services"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type DirectoryHandler struct {
	service *services.DirectoryService
	log     *zap.Logger
}

func NewDirectoryHandler(service *services.DirectoryService, log *zap.Logger) *DirectoryHandler {
	return &DirectoryHandler{service: service, log: log}
}

func (h *DirectoryHandler) RegisterHospital(c *gin.Context) {
	var in models.HospitalInput
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, "Invalid request body")
		return
	}
	hospital, err := h.service.RegisterHospital(c.Request.Context(), middlewares.ActorFromContext(c), in)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	middlewares.RespondJSON(c, http.StatusCreated, "Hospital registered", gin.H{"hospital": hospital})
}

func (h *DirectoryHandler) ListHospitals(c *gin.Context) {
	hospitals, err := h.service.ListHospitals(c.Request.Context())
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	middlewares.RespondJSON(c, http.StatusOK, "ok", gin.H{"hospitals": hospitals})
}

// GetHospital returns the hospital with its doctors.
func (h *DirectoryHandler) GetHospital(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	hospital, err := h.service.GetHospital(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	middlewares.RespondJSON(c, http.StatusOK, "ok", gin.H{"hospital": hospital})
}

func (h *DirectoryHandler) ListHospitalDoctors(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	doctors, err := h.service.ListDoctorsByHospital(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	middlewares.RespondJSON(c, http.StatusOK, "ok", gin.H{"doctors": doctors})
}

// AddDoctor creates a doctor account under the caller's hospital.
func (h *DirectoryHandler) AddDoctor(c *gin.Context) {
	hospitalID, ok := paramID(c, "id")
	if !ok {
		return
	}
	var in models.DoctorInput
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, "Invalid request body: experience and consultation_fee must be numeric")
		return
	}
	doctor, err := h.service.AddDoctor(c.Request.Context(), middlewares.ActorFromContext(c), hospitalID, in)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	middlewares.RespondJSON(c, http.StatusCreated, "Doctor added", gin.H{"doctor": doctor})
}

func (h *DirectoryHandler) ListDoctors(c *gin.Context) {
	doctors, err := h.service.ListDoctors(c.Request.Context(), strings.TrimSpace(c.Query("specialization")))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	middlewares.RespondJSON(c, http.StatusOK, "ok", gin.H{"doctors": doctors})
}

func (h *DirectoryHandler) GetDoctor(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	doctor, err := h.service.GetDoctor(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	middlewares.RespondJSON(c, http.StatusOK, "ok", gin.H{"doctor": doctor})
}

func (h *DirectoryHandler) ListSpecializations(c *gin.Context) {
	specs, err := h.service.ListSpecializations(c.Request.Context())
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	middlewares.RespondJSON(c, http.StatusOK, "ok", gin.H{"specializations": specs})
}

func (h *DirectoryHandler) SetAvailability(c *gin.Context) {
	doctorID, ok := paramID(c, "id")
	if !ok {
		return
	}
	var body struct {
		Slots []models.AvailabilitySlot `json:"slots"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		badRequest(c, "Invalid request body")
		return
	}
	slots, err := h.service.SetAvailability(c.Request.Context(), middlewares.ActorFromContext(c), doctorID, body.Slots)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	middlewares.RespondJSON(c, http.StatusOK, "Availability updated", gin.H{"availability": slots})
}

func (h *DirectoryHandler) ListAvailability(c *gin.Context) {
	doctorID, ok := paramID(c, "id")
	if !ok {
		return
	}
	slots, err := h.service.ListAvailability(c.Request.Context(), doctorID)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	middlewares.RespondJSON(c, http.StatusOK, "ok", gin.H{"availability": slots})
}

// Stats serves the public aggregate counts.
func (h *DirectoryHandler) Stats(c *gin.Context) {
	stats, err := h.service.Stats(c.Request.Context())
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	middlewares.RespondJSON(c, http.StatusOK, "ok", gin.H{"stats": stats})
}

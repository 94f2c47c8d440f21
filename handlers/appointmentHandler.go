package handlers

import (
	"SmartClinic/middlewares"
	"SmartClinic/models"
	"SmartClinic/services"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type AppointmentHandler struct {
	service *services.AppointmentService
	log     *zap.Logger
}

func NewAppointmentHandler(service *services.AppointmentService, log *zap.Logger) *AppointmentHandler {
	return &AppointmentHandler{service: service, log: log}
}

func (h *AppointmentHandler) CreateAppointment(c *gin.Context) {
	var req models.BookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request body")
		return
	}
	appointment, err := h.service.Book(c.Request.Context(), middlewares.ActorFromContext(c), req)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	middlewares.RespondJSON(c, http.StatusCreated, "Appointment booked", gin.H{"appointment": appointment})
}

func (h *AppointmentHandler) GetAppointmentByID(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	appointment, err := h.service.Get(c.Request.Context(), middlewares.ActorFromContext(c), id)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	middlewares.RespondJSON(c, http.StatusOK, "ok", gin.H{"appointment": appointment})
}

func (h *AppointmentHandler) ApproveAppointment(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	appointment, err := h.service.Approve(c.Request.Context(), middlewares.ActorFromContext(c), id)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	middlewares.RespondJSON(c, http.StatusOK, "Appointment approved", gin.H{"appointment": appointment})
}

// CompleteAppointment accepts an optional medical record body.
func (h *AppointmentHandler) CompleteAppointment(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var record *models.MedicalRecord
	if c.Request.ContentLength != 0 {
		record = &models.MedicalRecord{}
		if err := c.ShouldBindJSON(record); err != nil {
			badRequest(c, "Invalid request body")
			return
		}
	}
	appointment, err := h.service.Complete(c.Request.Context(), middlewares.ActorFromContext(c), id, record)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	middlewares.RespondJSON(c, http.StatusOK, "Appointment completed", gin.H{"appointment": appointment})
}

// RecordConsultation saves the medical record, optionally completing the visit.
func (h *AppointmentHandler) RecordConsultation(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var body struct {
		models.MedicalRecord
		MarkCompleted bool `json:"mark_completed"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		badRequest(c, "Invalid request body")
		return
	}
	appointment, err := h.service.RecordConsultation(c.Request.Context(), middlewares.ActorFromContext(c), id, body.MedicalRecord, body.MarkCompleted)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	middlewares.RespondJSON(c, http.StatusOK, "Medical record saved", gin.H{"appointment": appointment})
}

// UpdateStatus is the AJAX status switch used by the doctor dashboard.
func (h *AppointmentHandler) UpdateStatus(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var body struct {
		Status models.AppointmentStatus `json:"status"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		badRequest(c, "Invalid request body")
		return
	}
	appointment, err := h.service.UpdateStatus(c.Request.Context(), middlewares.ActorFromContext(c), id, body.Status)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	middlewares.RespondJSON(c, http.StatusOK, "Appointment "+string(appointment.Status), gin.H{"appointment": appointment})
}

func (h *AppointmentHandler) CancelAppointment(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	if err := h.service.Cancel(c.Request.Context(), middlewares.ActorFromContext(c), id); err != nil {
		respondError(c, h.log, err)
		return
	}
	middlewares.RespondJSON(c, http.StatusOK, "Appointment cancelled", nil)
}

func (h *AppointmentHandler) PatientDashboard(c *gin.Context) {
	dashboard, err := h.service.PatientDashboard(c.Request.Context(), middlewares.ActorFromContext(c))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	middlewares.RespondJSON(c, http.StatusOK, "ok", gin.H{"dashboard": dashboard})
}

func (h *AppointmentHandler) MedicalHistory(c *gin.Context) {
	history, err := h.service.MedicalHistory(c.Request.Context(), middlewares.ActorFromContext(c))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	middlewares.RespondJSON(c, http.StatusOK, "ok", gin.H{"history": history})
}

func (h *AppointmentHandler) DoctorDashboard(c *gin.Context) {
	dashboard, err := h.service.DoctorDashboard(c.Request.Context(), middlewares.ActorFromContext(c))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	middlewares.RespondJSON(c, http.StatusOK, "ok", gin.H{"dashboard": dashboard})
}

func (h *AppointmentHandler) HospitalDashboard(c *gin.Context) {
	dashboard, err := h.service.HospitalDashboard(c.Request.Context(), middlewares.ActorFromContext(c))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	middlewares.RespondJSON(c, http.StatusOK, "ok", gin.H{"dashboard": dashboard})
}

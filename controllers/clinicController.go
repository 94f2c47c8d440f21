package controllers

import (
	"SmartClinic/handlers"
	"SmartClinic/middlewares"
	"SmartClinic/models"

	"github.com/gin-gonic/gin"
)

// ClinicHandlers groups the handlers mounted under /api.
type ClinicHandlers struct {
	Directory        *handlers.DirectoryHandler
	Appointment      *handlers.AppointmentHandler
	EmergencyContact *handlers.EmergencyContactHandler
	Ambulance        *handlers.AmbulanceHandler
	Chat             *handlers.ChatHandler
}

func SetupClinicRoutes(router *gin.Engine, h ClinicHandlers) {
	api := router.Group("/api")

	// Public directory and stats
	api.GET("/hospitals", h.Directory.ListHospitals)
	api.GET("/hospitals/:id", h.Directory.GetHospital)
	api.GET("/hospitals/:id/doctors", h.Directory.ListHospitalDoctors)
	api.GET("/doctors", h.Directory.ListDoctors)
	api.GET("/doctors/:id", h.Directory.GetDoctor)
	api.GET("/doctors/:id/availability", h.Directory.ListAvailability)
	api.GET("/specializations", h.Directory.ListSpecializations)
	api.GET("/stats", h.Directory.Stats)
	api.POST("/chat", h.Chat.Chat)

	admin := api.Group("", middlewares.RequireRole(models.RoleHospitalAdmin))
	{
		admin.POST("/hospitals", h.Directory.RegisterHospital)
		admin.POST("/hospitals/:id/doctors", h.Directory.AddDoctor)
		admin.GET("/dashboard/hospital", h.Appointment.HospitalDashboard)
	}

	staff := api.Group("", middlewares.RequireRole(models.RoleDoctor, models.RoleHospitalAdmin))
	{
		staff.PUT("/doctors/:id/availability", h.Directory.SetAvailability)
	}

	doctor := api.Group("", middlewares.RequireRole(models.RoleDoctor))
	{
		doctor.GET("/dashboard/doctor", h.Appointment.DoctorDashboard)
		doctor.POST("/appointments/:id/approve", h.Appointment.ApproveAppointment)
		doctor.POST("/appointments/:id/complete", h.Appointment.CompleteAppointment)
		doctor.PUT("/appointments/:id/record", h.Appointment.RecordConsultation)
		doctor.POST("/appointments/:id/status", h.Appointment.UpdateStatus)
	}

	patient := api.Group("", middlewares.RequireRole(models.RolePatient))
	{
		patient.GET("/dashboard/patient", h.Appointment.PatientDashboard)
		patient.GET("/medical-history", h.Appointment.MedicalHistory)
		patient.POST("/appointments", h.Appointment.CreateAppointment)
		patient.DELETE("/appointments/:id", h.Appointment.CancelAppointment)
	}

	user := api.Group("", middlewares.RequireAuthenticated())
	{
		user.GET("/appointments/:id", h.Appointment.GetAppointmentByID)

		user.POST("/emergency-contacts", h.EmergencyContact.CreateEmergencyContact)
		user.GET("/emergency-contacts", h.EmergencyContact.GetAllEmergencyContacts)
		user.POST("/emergency-contacts/:id/primary", h.EmergencyContact.SetPrimaryEmergencyContact)
		user.DELETE("/emergency-contacts/:id", h.EmergencyContact.DeleteEmergencyContact)

		user.POST("/ambulance-bookings", h.Ambulance.BookAmbulance)
		user.GET("/ambulance-bookings", h.Ambulance.ListAmbulanceBookings)
		user.GET("/ambulance-bookings/:id", h.Ambulance.AmbulanceStatus)
		user.DELETE("/ambulance-bookings/:id", h.Ambulance.DeleteAmbulanceBooking)
	}
}

package models

import "time"

// Registration is the sign-up form for every role. Hospital fields are only
// read when Role is hospital_admin.
type Registration struct {
	Email    string              `json:"email" form:"email"`
	Password string              `json:"password" form:"password"`
	Name     string              `json:"name" form:"name"`
	Role     Role                `json:"role" form:"user_type"`
	Phone    string              `json:"phone" form:"phone"`
	Profile  PatientProfileInput `json:"profile"`
	Hospital *HospitalInput      `json:"hospital,omitempty"`
}

// PatientProfileInput carries the optional patient fields.
type PatientProfileInput struct {
	Age              *int     `json:"age" form:"age"`
	Gender           string   `json:"gender" form:"gender"`
	BloodGroup       string   `json:"blood_group" form:"blood_group"`
	Height           *float64 `json:"height" form:"height"`
	Weight           *float64 `json:"weight" form:"weight"`
	Address          string   `json:"address" form:"address"`
	EmergencyContact string   `json:"emergency_contact" form:"emergency_contact"`
}

// ProfileUpdate is the self-service profile edit.
type ProfileUpdate struct {
	Name    string               `json:"name" form:"name"`
	Phone   string               `json:"phone" form:"phone"`
	Profile *PatientProfileInput `json:"profile,omitempty"`
}

// Credentials is the login form. Role selects the login surface.
type Credentials struct {
	Email    string `json:"email" form:"email"`
	Password string `json:"password" form:"password"`
	Role     Role   `json:"role" form:"user_type"`
}

type HospitalInput struct {
	Name        string `json:"name" form:"name"`
	Address     string `json:"address" form:"address"`
	Contact     string `json:"contact" form:"contact"`
	Description string `json:"description" form:"description"`
}

// DoctorInput creates a doctor account and its profile.
type DoctorInput struct {
	Name            string  `json:"name" form:"name"`
	Email           string  `json:"email" form:"email"`
	Password        string  `json:"password" form:"password"`
	Phone           string  `json:"phone" form:"phone"`
	Specialization  string  `json:"specialization" form:"specialization"`
	Experience      int     `json:"experience" form:"experience"`
	ConsultationFee float64 `json:"consultation_fee" form:"consultation_fee"`
	About           string  `json:"about" form:"about"`
}

type AvailabilitySlot struct {
	DayOfWeek int    `json:"day_of_week"`
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
}

// BookingRequest is the patient's appointment request.
type BookingRequest struct {
	DoctorID        uint      `json:"doctor_id"`
	AppointmentTime time.Time `json:"appointment_time"`
	Symptoms        string    `json:"symptoms"`
}

type EmergencyContactInput struct {
	Name         string `json:"name" form:"name"`
	Relationship string `json:"relationship" form:"relationship"`
	Phone        string `json:"phone" form:"phone"`
	Email        string `json:"email" form:"email"`
	IsPrimary    bool   `json:"is_primary" form:"is_primary"`
}

type AmbulanceRequest struct {
	PatientName         string   `json:"patient_name" form:"patient_name"`
	Phone               string   `json:"phone" form:"phone"`
	PickupAddress       string   `json:"pickup_address" form:"pickup_address"`
	PickupLat           float64  `json:"pickup_lat" form:"pickup_lat"`
	PickupLng           float64  `json:"pickup_lng" form:"pickup_lng"`
	DestinationHospital string   `json:"destination_hospital" form:"destination_hospital"`
	DestinationLat      *float64 `json:"destination_lat" form:"destination_lat"`
	DestinationLng      *float64 `json:"destination_lng" form:"destination_lng"`
	EmergencyType       string   `json:"emergency_type" form:"emergency_type"`
	PatientCondition    string   `json:"patient_condition" form:"patient_condition"`
}

// DispatchUpdate advances an ambulance booking; used by operator tooling.
type DispatchUpdate struct {
	Status           AmbulanceStatus
	AmbulanceNumber  string
	DriverName       string
	DriverPhone      string
	EstimatedArrival *time.Time
}

// SystemStats are the read-only aggregate counts shared with the assistant and
// the public stats endpoint.
type SystemStats struct {
	Hospitals             int64    `json:"hospitals"`
	Doctors               int64    `json:"doctors"`
	Patients              int64    `json:"patients"`
	Appointments          int64    `json:"appointments"`
	PendingAppointments   int64    `json:"pending_appointments"`
	CompletedAppointments int64    `json:"completed_appointments"`
	MonthlyAppointments   int64    `json:"monthly_appointments"`
	HospitalNames         []string `json:"hospital_names"`
	Specializations       []string `json:"specializations"`
}

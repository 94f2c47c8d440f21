package models

import (
	"time"
)

// AppointmentStatus is the lifecycle state of an appointment.
type AppointmentStatus string

const (
	StatusPending   AppointmentStatus = "pending"
	StatusApproved  AppointmentStatus = "approved"
	StatusCompleted AppointmentStatus = "completed"
	StatusCancelled AppointmentStatus = "cancelled"
)

var appointmentTransitions = map[AppointmentStatus][]AppointmentStatus{
	StatusPending:  {StatusApproved, StatusCompleted, StatusCancelled},
	StatusApproved: {StatusCompleted},
}

// IsValid reports whether s is a known status.
func (s AppointmentStatus) IsValid() bool {
	switch s {
	case StatusPending, StatusApproved, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

// IsTerminal reports whether no transition leaves s.
func (s AppointmentStatus) IsTerminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

// CanTransitionTo reports whether next is an allowed edge from s.
func (s AppointmentStatus) CanTransitionTo(next AppointmentStatus) bool {
	for _, allowed := range appointmentTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Appointment is a booking of a doctor by a patient. HospitalID is copied from
// the doctor at booking time.
type Appointment struct {
	ID              uint              `gorm:"primaryKey;autoIncrement;column:id" json:"id"`
	DoctorID        uint              `gorm:"not null;index:idx_appointment_doctor_time;column:doctor_id" json:"doctor_id"`
	PatientID       uint              `gorm:"not null;index;column:patient_id" json:"patient_id"`
	HospitalID      uint              `gorm:"not null;index;column:hospital_id" json:"hospital_id"`
	AppointmentTime time.Time         `gorm:"not null;index:idx_appointment_doctor_time;column:appointment_time" json:"appointment_time"`
	Status          AppointmentStatus `gorm:"size:20;not null;default:pending;index;column:status;check:status IN ('pending', 'approved', 'completed', 'cancelled')" json:"status"`
	Symptoms        string            `gorm:"type:text;column:symptoms" json:"symptoms,omitempty"`
	Diagnosis       string            `gorm:"type:text;column:diagnosis" json:"diagnosis,omitempty"`
	Prescription    string            `gorm:"type:text;column:prescription" json:"prescription,omitempty"`
	TreatmentPlan   string            `gorm:"type:text;column:treatment_plan" json:"treatment_plan,omitempty"`
	FollowUpDate    *time.Time        `gorm:"column:follow_up_date" json:"follow_up_date,omitempty"`
	TestResults     string            `gorm:"type:text;column:test_results" json:"test_results,omitempty"`
	DoctorNotes     string            `gorm:"type:text;column:doctor_notes" json:"doctor_notes,omitempty"`
	CompletedAt     *time.Time        `gorm:"column:completed_at" json:"completed_at,omitempty"`
	CreatedAt       time.Time         `gorm:"autoCreateTime;column:created_at" json:"created_at"`
	Doctor          *Doctor           `gorm:"foreignKey:DoctorID;references:ID" json:"doctor,omitempty"`
	Patient         *User             `gorm:"foreignKey:PatientID;references:ID" json:"patient,omitempty"`
	Hospital        *Hospital         `gorm:"foreignKey:HospitalID;references:ID" json:"hospital,omitempty"`
}

func (Appointment) TableName() string {
	return "appointments"
}

// MedicalRecord is the set of doctor-entered consultation fields.
type MedicalRecord struct {
	Diagnosis     string     `json:"diagnosis"`
	Prescription  string     `json:"prescription"`
	TreatmentPlan string     `json:"treatment_plan"`
	FollowUpDate  *time.Time `json:"follow_up_date"`
	TestResults   string     `json:"test_results"`
	DoctorNotes   string     `json:"doctor_notes"`
}

// ApplyRecord copies the consultation fields onto the appointment. An omitted
// follow-up date keeps the one already recorded.
func (a *Appointment) ApplyRecord(r MedicalRecord) {
	a.Diagnosis = r.Diagnosis
	a.Prescription = r.Prescription
	a.TreatmentPlan = r.TreatmentPlan
	if r.FollowUpDate != nil {
		a.FollowUpDate = r.FollowUpDate
	}
	a.TestResults = r.TestResults
	a.DoctorNotes = r.DoctorNotes
}

// AmbulanceStatus is the lifecycle state of an ambulance booking.
type AmbulanceStatus string

const (
	AmbulanceRequested  AmbulanceStatus = "requested"
	AmbulanceDispatched AmbulanceStatus = "dispatched"
	AmbulanceArrived    AmbulanceStatus = "arrived"
	AmbulanceCompleted  AmbulanceStatus = "completed"
	AmbulanceCancelled  AmbulanceStatus = "cancelled"
)

var ambulanceTransitions = map[AmbulanceStatus][]AmbulanceStatus{
	AmbulanceRequested:  {AmbulanceDispatched, AmbulanceCancelled},
	AmbulanceDispatched: {AmbulanceArrived, AmbulanceCancelled},
	AmbulanceArrived:    {AmbulanceCompleted},
}

// CanTransitionTo reports whether next is an allowed edge from s.
func (s AmbulanceStatus) CanTransitionTo(next AmbulanceStatus) bool {
	for _, allowed := range ambulanceTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// AmbulanceBooking is an emergency transport request made by a user.
type AmbulanceBooking struct {
	ID                  uint            `gorm:"primaryKey;autoIncrement;column:id" json:"id"`
	UserID              uint            `gorm:"not null;index;column:user_id" json:"user_id"`
	PatientName         string          `gorm:"size:100;not null;column:patient_name" json:"patient_name"`
	Phone               string          `gorm:"size:20;not null;column:phone" json:"phone"`
	PickupAddress       string          `gorm:"size:500;not null;column:pickup_address" json:"pickup_address"`
	PickupLat           float64         `gorm:"column:pickup_lat" json:"pickup_lat"`
	PickupLng           float64         `gorm:"column:pickup_lng" json:"pickup_lng"`
	DestinationHospital string          `gorm:"size:200;column:destination_hospital" json:"destination_hospital,omitempty"`
	DestinationLat      *float64        `gorm:"column:destination_lat" json:"destination_lat,omitempty"`
	DestinationLng      *float64        `gorm:"column:destination_lng" json:"destination_lng,omitempty"`
	EmergencyType       string          `gorm:"size:100;column:emergency_type" json:"emergency_type,omitempty"`
	PatientCondition    string          `gorm:"type:text;column:patient_condition" json:"patient_condition,omitempty"`
	Status              AmbulanceStatus `gorm:"size:20;not null;default:requested;index;column:status;check:status IN ('requested', 'dispatched', 'arrived', 'completed', 'cancelled')" json:"status"`
	AmbulanceNumber     string          `gorm:"size:50;column:ambulance_number" json:"ambulance_number,omitempty"`
	DriverName          string          `gorm:"size:100;column:driver_name" json:"driver_name,omitempty"`
	DriverPhone         string          `gorm:"size:20;column:driver_phone" json:"driver_phone,omitempty"`
	EstimatedArrival    *time.Time      `gorm:"column:estimated_arrival" json:"estimated_arrival,omitempty"`
	CreatedAt           time.Time       `gorm:"autoCreateTime;column:created_at" json:"created_at"`
	UpdatedAt           time.Time       `gorm:"autoUpdateTime;column:updated_at" json:"updated_at"`
}

func (AmbulanceBooking) TableName() string {
	return "ambulance_bookings"
}

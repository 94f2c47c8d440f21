package models

import (
	"time"
)

// Hospital is owned by exactly one hospital_admin user.
type Hospital struct {
	ID          uint      `gorm:"primaryKey;autoIncrement;column:id" json:"id"`
	Name        string    `gorm:"size:200;not null;index;column:name" json:"name"`
	Address     string    `gorm:"size:500;not null;column:address" json:"address"`
	Contact     string    `gorm:"size:20;column:contact" json:"contact"`
	Description string    `gorm:"type:text;column:description" json:"description"`
	AdminID     uint      `gorm:"not null;uniqueIndex;column:admin_id" json:"admin_id"`
	CreatedAt   time.Time `gorm:"autoCreateTime;column:created_at" json:"created_at"`
	Doctors     []Doctor  `gorm:"foreignKey:HospitalID;references:ID" json:"doctors,omitempty"`
}

func (Hospital) TableName() string {
	return "hospitals"
}

// Doctor is the profile attached 1:1 to a doctor user.
type Doctor struct {
	ID              uint                 `gorm:"primaryKey;autoIncrement;column:id" json:"id"`
	UserID          uint                 `gorm:"not null;uniqueIndex;column:user_id" json:"user_id"`
	HospitalID      uint                 `gorm:"not null;index;column:hospital_id" json:"hospital_id"`
	Specialization  string               `gorm:"size:100;not null;index;column:specialization" json:"specialization"`
	Experience      int                  `gorm:"column:experience;check:experience >= 0" json:"experience"`
	ConsultationFee float64              `gorm:"column:consultation_fee;default:50;check:consultation_fee >= 0" json:"consultation_fee"`
	About           string               `gorm:"type:text;column:about" json:"about"`
	User            *User                `gorm:"foreignKey:UserID;references:ID" json:"user,omitempty"`
	Hospital        *Hospital            `gorm:"foreignKey:HospitalID;references:ID" json:"-"`
	Availability    []DoctorAvailability `gorm:"foreignKey:DoctorID;references:ID;constraint:OnDelete:CASCADE" json:"availability,omitempty"`
}

func (Doctor) TableName() string {
	return "doctors"
}

// Name is the display name of the linked user.
func (d Doctor) Name() string {
	if d.User == nil {
		return "Unknown"
	}
	return d.User.Name
}

// DoctorAvailability is a recurring weekly slot. Times are "HH:MM".
type DoctorAvailability struct {
	ID        uint   `gorm:"primaryKey;autoIncrement;column:id" json:"id"`
	DoctorID  uint   `gorm:"not null;index;column:doctor_id" json:"doctor_id"`
	DayOfWeek int    `gorm:"not null;column:day_of_week;check:day_of_week BETWEEN 0 AND 6" json:"day_of_week"`
	StartTime string `gorm:"size:5;not null;column:start_time" json:"start_time"`
	EndTime   string `gorm:"size:5;not null;column:end_time;check:end_time > start_time" json:"end_time"`
}

func (DoctorAvailability) TableName() string {
	return "doctor_availability"
}

// Covers reports whether t falls inside the slot, comparing wall-clock time in
// t's location. Callers convert t to the clinic zone first. Day-of-week
// follows time.Weekday (Sunday = 0).
func (a DoctorAvailability) Covers(t time.Time) bool {
	if int(t.Weekday()) != a.DayOfWeek {
		return false
	}
	clock := t.Format("15:04")
	return clock >= a.StartTime && clock < a.EndTime
}

// EmergencyContact belongs to a patient; at most one per user is primary.
type EmergencyContact struct {
	ID           uint      `gorm:"primaryKey;autoIncrement;column:id" json:"id"`
	UserID       uint      `gorm:"not null;index;column:user_id" json:"user_id"`
	Name         string    `gorm:"size:100;not null;column:name" json:"name"`
	Relationship string    `gorm:"size:50;not null;column:relationship" json:"relationship"`
	Phone        string    `gorm:"size:20;not null;column:phone" json:"phone"`
	Email        string    `gorm:"size:120;column:email" json:"email,omitempty"`
	IsPrimary    bool      `gorm:"not null;default:false;column:is_primary" json:"is_primary"`
	CreatedAt    time.Time `gorm:"autoCreateTime;column:created_at" json:"created_at"`
}

func (EmergencyContact) TableName() string {
	return "emergency_contacts"
}

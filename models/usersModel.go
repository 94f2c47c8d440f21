package models

import (
	"time"
)

// Role is the fixed account type of a user.
type Role string

const (
	RolePatient       Role = "patient"
	RoleDoctor        Role = "doctor"
	RoleHospitalAdmin Role = "hospital_admin"
)

// AllRoles lists every valid role.
var AllRoles = []Role{RolePatient, RoleDoctor, RoleHospitalAdmin}

// IsValid reports whether r is one of the known roles.
func (r Role) IsValid() bool {
	for _, role := range AllRoles {
		if r == role {
			return true
		}
	}
	return false
}

// User is the base identity record. Role-specific data lives in exactly one of
// PatientProfile, DoctorProfile or Hospital, selected by Role.
type User struct {
	ID             uint            `gorm:"primaryKey;autoIncrement;column:id" json:"id"`
	Email          string          `gorm:"size:120;not null;uniqueIndex;column:email" json:"email"`
	PasswordHash   string          `gorm:"size:256;not null;column:password_hash" json:"-"`
	Name           string          `gorm:"size:100;not null;column:name" json:"name"`
	Role           Role            `gorm:"size:20;not null;index;column:role;check:role IN ('patient', 'doctor', 'hospital_admin')" json:"role"`
	Phone          string          `gorm:"size:20;column:phone" json:"phone"`
	CreatedAt      time.Time       `gorm:"autoCreateTime;column:created_at" json:"created_at"`
	PatientProfile *PatientProfile `gorm:"foreignKey:UserID;references:ID;constraint:OnDelete:CASCADE" json:"patient_profile,omitempty"`
	DoctorProfile  *Doctor         `gorm:"foreignKey:UserID;references:ID" json:"doctor_profile,omitempty"`
	Hospital       *Hospital       `gorm:"foreignKey:AdminID;references:ID" json:"hospital,omitempty"`
}

func (User) TableName() string {
	return "users"
}

// PatientProfile holds the optional personal fields a patient may fill in.
type PatientProfile struct {
	UserID           uint     `gorm:"primaryKey;column:user_id" json:"user_id"`
	Age              *int     `gorm:"column:age" json:"age,omitempty"`
	Gender           string   `gorm:"size:10;column:gender" json:"gender,omitempty"`
	BloodGroup       string   `gorm:"size:5;column:blood_group" json:"blood_group,omitempty"`
	Height           *float64 `gorm:"column:height" json:"height,omitempty"`
	Weight           *float64 `gorm:"column:weight" json:"weight,omitempty"`
	Address          string   `gorm:"size:500;column:address" json:"address,omitempty"`
	EmergencyContact string   `gorm:"size:20;column:emergency_contact" json:"emergency_contact,omitempty"`
}

func (PatientProfile) TableName() string {
	return "patient_profiles"
}

// Actor is the authenticated caller of an operation, taken from the session.
type Actor struct {
	UserID uint
	Role   Role
	Name   string
}

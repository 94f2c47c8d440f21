package repositories

import (
	"SmartClinic/models"
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// AppointmentCount filters Count. Zero fields are ignored.
type AppointmentCount struct {
	Status       models.AppointmentStatus
	CreatedSince time.Time
}

type AppointmentRepository interface {
	Create(ctx context.Context, appointment *models.Appointment) error
	GetByID(ctx context.Context, id uint) (*models.Appointment, error)
	Update(ctx context.Context, appointment *models.Appointment) error
	Delete(ctx context.Context, id uint) error
	ListByPatient(ctx context.Context, patientID uint) ([]models.Appointment, error)
	ListByDoctor(ctx context.Context, doctorID uint) ([]models.Appointment, error)
	ListByHospital(ctx context.Context, hospitalID uint) ([]models.Appointment, error)
	ListAll(ctx context.Context) ([]models.Appointment, error)
	HasActiveAt(ctx context.Context, doctorID uint, at time.Time) (bool, error)
	Count(ctx context.Context, filter AppointmentCount) (int64, error)
}

type appointmentRepository struct {
	db *gorm.DB
}

func NewAppointmentRepository(db *gorm.DB) AppointmentRepository {
	return &appointmentRepository{db: db}
}

func (r *appointmentRepository) withRelations(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Preload("Doctor").
		Preload("Doctor.User").
		Preload("Patient").
		Preload("Hospital")
}

func (r *appointmentRepository) Create(ctx context.Context, appointment *models.Appointment) error {
	if err := r.db.WithContext(ctx).Omit(clause.Associations).Create(appointment).Error; err != nil {
		return fmt.Errorf("failed to create appointment: %w", err)
	}
	return nil
}

// GetByID returns nil, nil when the appointment does not exist.
func (r *appointmentRepository) GetByID(ctx context.Context, id uint) (*models.Appointment, error) {
	var appointment models.Appointment
	if err := r.withRelations(ctx).First(&appointment, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get appointment: %w", err)
	}
	return &appointment, nil
}

func (r *appointmentRepository) Update(ctx context.Context, appointment *models.Appointment) error {
	result := r.db.WithContext(ctx).Model(&models.Appointment{}).
		Where("id = ?", appointment.ID).
		Select("status", "diagnosis", "prescription", "treatment_plan", "follow_up_date",
			"test_results", "doctor_notes", "completed_at").
		Updates(appointment)
	if result.Error != nil {
		return fmt.Errorf("failed to update appointment: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *appointmentRepository) Delete(ctx context.Context, id uint) error {
	result := r.db.WithContext(ctx).Delete(&models.Appointment{}, id)
	if result.Error != nil {
		return fmt.Errorf("failed to delete appointment: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *appointmentRepository) ListByPatient(ctx context.Context, patientID uint) ([]models.Appointment, error) {
	return r.list(ctx, "patient_id = ?", patientID)
}

func (r *appointmentRepository) ListByDoctor(ctx context.Context, doctorID uint) ([]models.Appointment, error) {
	return r.list(ctx, "doctor_id = ?", doctorID)
}

func (r *appointmentRepository) ListByHospital(ctx context.Context, hospitalID uint) ([]models.Appointment, error) {
	return r.list(ctx, "hospital_id = ?", hospitalID)
}

func (r *appointmentRepository) ListAll(ctx context.Context) ([]models.Appointment, error) {
	var appointments []models.Appointment
	if err := r.db.WithContext(ctx).Order("id").Find(&appointments).Error; err != nil {
		return nil, fmt.Errorf("failed to list appointments: %w", err)
	}
	return appointments, nil
}

func (r *appointmentRepository) list(ctx context.Context, query string, arg interface{}) ([]models.Appointment, error) {
	var appointments []models.Appointment
	err := r.withRelations(ctx).Where(query, arg).Order("appointment_time").Find(&appointments).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list appointments: %w", err)
	}
	return appointments, nil
}

// HasActiveAt reports whether the doctor holds a pending or approved
// appointment at exactly at.
func (r *appointmentRepository) HasActiveAt(ctx context.Context, doctorID uint, at time.Time) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Appointment{}).
		Where("doctor_id = ? AND appointment_time = ? AND status IN ?", doctorID, at,
			[]models.AppointmentStatus{models.StatusPending, models.StatusApproved}).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to check doctor slot: %w", err)
	}
	return count > 0, nil
}

func (r *appointmentRepository) Count(ctx context.Context, filter AppointmentCount) (int64, error) {
	query := r.db.WithContext(ctx).Model(&models.Appointment{})
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if !filter.CreatedSince.IsZero() {
		query = query.Where("created_at >= ?", filter.CreatedSince)
	}
	var count int64
	if err := query.Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count appointments: %w", err)
	}
	return count, nil
}

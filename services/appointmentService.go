package services

import (
	"SmartClinic/database"
	"SmartClinic/metrics"
	"SmartClinic/models"
	"SmartClinic/repositories"
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

const bookingLockTTL = 10 * time.Second

// AppointmentService owns the appointment ledger and its status lifecycle.
type AppointmentService struct {
	appointments repositories.AppointmentRepository
	directory    repositories.DirectoryRepository
	locker       Locker
	metrics      *metrics.Collector
	log          *zap.Logger
	now          func() time.Time
	location     *time.Location
}

func NewAppointmentService(
	appointments repositories.AppointmentRepository,
	directory repositories.DirectoryRepository,
	locker Locker,
	collector *metrics.Collector,
	log *zap.Logger,
) *AppointmentService {
	return &AppointmentService{
		appointments: appointments,
		directory:    directory,
		locker:       locker,
		metrics:      collector,
		log:          log,
		now:          time.Now,
		location:     time.UTC,
	}
}

// InLocation sets the zone availability windows are evaluated in.
func (s *AppointmentService) InLocation(loc *time.Location) *AppointmentService {
	if loc != nil {
		s.location = loc
	}
	return s
}

// Book creates a pending appointment for the acting patient. The hospital is
// copied from the doctor. The slot must be in the future, inside the doctor's
// availability when any is defined, and not already held by a pending or
// approved appointment of the same doctor.
func (s *AppointmentService) Book(ctx context.Context, actor models.Actor, req models.BookingRequest) (appointment *models.Appointment, err error) {
	ctx, span := startSpan(ctx, "AppointmentService.Book", attribute.Int64("doctor_id", int64(req.DoctorID)))
	defer func() { endSpan(span, err) }()

	if err := Authorize(actor, ActionBookAppointment); err != nil {
		return nil, err
	}
	if req.DoctorID == 0 {
		return nil, invalidField("doctor_id", "cannot be blank")
	}
	if req.AppointmentTime.IsZero() {
		return nil, invalidField("appointment_time", "cannot be blank")
	}
	if !req.AppointmentTime.After(s.now()) {
		return nil, invalidField("appointment_time", "must be in the future")
	}

	doctor, err := s.directory.GetDoctor(ctx, req.DoctorID)
	if err != nil {
		return nil, storageErr("book appointment", err)
	}
	if doctor == nil {
		return nil, ErrNotFound
	}

	release, err := s.locker.Acquire(ctx, appointmentLockKey(doctor.ID, req.AppointmentTime), bookingLockTTL)
	if err != nil {
		if errors.Is(err, database.ErrLockNotAcquired) {
			return nil, ErrSlotUnavailable
		}
		return nil, storageErr("book appointment", err)
	}
	defer release()

	if !withinAvailability(doctor.Availability, req.AppointmentTime.In(s.location)) {
		return nil, ErrSlotUnavailable
	}
	taken, err := s.appointments.HasActiveAt(ctx, doctor.ID, req.AppointmentTime)
	if err != nil {
		return nil, storageErr("book appointment", err)
	}
	if taken {
		return nil, ErrSlotUnavailable
	}

	appointment = &models.Appointment{
		DoctorID:        doctor.ID,
		PatientID:       actor.UserID,
		HospitalID:      doctor.HospitalID,
		AppointmentTime: req.AppointmentTime,
		Status:          models.StatusPending,
		Symptoms:        req.Symptoms,
	}
	if err := s.appointments.Create(ctx, appointment); err != nil {
		s.log.Error("failed to create appointment", zap.Uint("doctor_id", doctor.ID), zap.Error(err))
		return nil, storageErr("book appointment", err)
	}
	s.metrics.ObserveTransition(string(models.StatusPending))
	s.log.Info("appointment booked",
		zap.Uint("appointment_id", appointment.ID),
		zap.Uint("doctor_id", doctor.ID),
		zap.Uint("patient_id", actor.UserID),
	)
	return appointment, nil
}

func appointmentLockKey(doctorID uint, at time.Time) string {
	return fmt.Sprintf("appointment_lock:%d:%d", doctorID, at.Unix())
}

// withinAvailability is true when the doctor has no slots or any slot covers t.
func withinAvailability(slots []models.DoctorAvailability, t time.Time) bool {
	if len(slots) == 0 {
		return true
	}
	for _, slot := range slots {
		if slot.Covers(t) {
			return true
		}
	}
	return false
}

// loadForDoctor fetches the appointment and authorizes action against the
// appointment's doctor.
func (s *AppointmentService) loadForDoctor(ctx context.Context, actor models.Actor, id uint, action Action) (*models.Appointment, error) {
	appointment, err := s.appointments.GetByID(ctx, id)
	if err != nil {
		return nil, storageErr("load appointment", err)
	}
	if appointment == nil {
		if actor.UserID == 0 {
			return nil, ErrUnauthorized
		}
		return nil, ErrNotFound
	}
	var doctorUserID uint
	if appointment.Doctor != nil {
		doctorUserID = appointment.Doctor.UserID
	}
	if err := Authorize(actor, action, doctorUserID); err != nil {
		return nil, err
	}
	return appointment, nil
}

func (s *AppointmentService) save(ctx context.Context, appointment *models.Appointment, op string) error {
	if err := s.appointments.Update(ctx, appointment); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return ErrNotFound
		}
		s.log.Error("failed to update appointment", zap.String("op", op), zap.Uint("appointment_id", appointment.ID), zap.Error(err))
		return storageErr(op, err)
	}
	return nil
}

// Approve moves a pending appointment to approved. Concurrent approvals of
// the same appointment both succeed; the last write wins.
func (s *AppointmentService) Approve(ctx context.Context, actor models.Actor, id uint) (appointment *models.Appointment, err error) {
	ctx, span := startSpan(ctx, "AppointmentService.Approve", attribute.Int64("appointment_id", int64(id)))
	defer func() { endSpan(span, err) }()

	appointment, err = s.loadForDoctor(ctx, actor, id, ActionApproveAppointment)
	if err != nil {
		return nil, err
	}
	if !appointment.Status.CanTransitionTo(models.StatusApproved) {
		return nil, ErrInvalidTransition
	}
	appointment.Status = models.StatusApproved
	if err := s.save(ctx, appointment, "approve appointment"); err != nil {
		return nil, err
	}
	s.metrics.ObserveTransition(string(models.StatusApproved))
	return appointment, nil
}

// Complete moves a pending or approved appointment to completed, stamping
// completed_at and attaching record when given.
func (s *AppointmentService) Complete(ctx context.Context, actor models.Actor, id uint, record *models.MedicalRecord) (appointment *models.Appointment, err error) {
	ctx, span := startSpan(ctx, "AppointmentService.Complete", attribute.Int64("appointment_id", int64(id)))
	defer func() { endSpan(span, err) }()

	appointment, err = s.loadForDoctor(ctx, actor, id, ActionCompleteAppointment)
	if err != nil {
		return nil, err
	}
	if !appointment.Status.CanTransitionTo(models.StatusCompleted) {
		return nil, ErrInvalidTransition
	}
	if record != nil {
		appointment.ApplyRecord(*record)
	}
	s.markCompleted(appointment)
	if err := s.save(ctx, appointment, "complete appointment"); err != nil {
		return nil, err
	}
	s.metrics.ObserveTransition(string(models.StatusCompleted))
	return appointment, nil
}

func (s *AppointmentService) markCompleted(appointment *models.Appointment) {
	now := s.now()
	appointment.Status = models.StatusCompleted
	appointment.CompletedAt = &now
}

// RecordConsultation attaches or edits the medical record of a non-cancelled
// appointment. With markCompleted an open appointment is also completed.
func (s *AppointmentService) RecordConsultation(ctx context.Context, actor models.Actor, id uint, record models.MedicalRecord, markCompleted bool) (appointment *models.Appointment, err error) {
	ctx, span := startSpan(ctx, "AppointmentService.RecordConsultation", attribute.Int64("appointment_id", int64(id)))
	defer func() { endSpan(span, err) }()

	appointment, err = s.loadForDoctor(ctx, actor, id, ActionRecordConsultation)
	if err != nil {
		return nil, err
	}
	if appointment.Status == models.StatusCancelled {
		return nil, ErrInvalidTransition
	}

	completing := markCompleted && appointment.Status != models.StatusCompleted
	appointment.ApplyRecord(record)
	if completing {
		s.markCompleted(appointment)
	}
	if err := s.save(ctx, appointment, "record consultation"); err != nil {
		return nil, err
	}
	if completing {
		s.metrics.ObserveTransition(string(models.StatusCompleted))
	}
	return appointment, nil
}

// UpdateStatus dispatches a doctor's status change. Only approved and
// completed are accepted targets.
func (s *AppointmentService) UpdateStatus(ctx context.Context, actor models.Actor, id uint, status models.AppointmentStatus) (*models.Appointment, error) {
	switch status {
	case models.StatusApproved:
		return s.Approve(ctx, actor, id)
	case models.StatusCompleted:
		return s.Complete(ctx, actor, id, nil)
	default:
		return nil, invalidField("status", "must be approved or completed")
	}
}

// Cancel removes the acting patient's pending appointment.
func (s *AppointmentService) Cancel(ctx context.Context, actor models.Actor, id uint) (err error) {
	ctx, span := startSpan(ctx, "AppointmentService.Cancel", attribute.Int64("appointment_id", int64(id)))
	defer func() { endSpan(span, err) }()

	appointment, err := s.appointments.GetByID(ctx, id)
	if err != nil {
		return storageErr("cancel appointment", err)
	}
	if appointment == nil {
		if actor.UserID == 0 {
			return ErrUnauthorized
		}
		return ErrNotFound
	}
	if err := Authorize(actor, ActionCancelAppointment, appointment.PatientID); err != nil {
		return err
	}
	if !appointment.Status.CanTransitionTo(models.StatusCancelled) {
		return ErrInvalidTransition
	}
	// Cancellation deletes the row; there is no cancelled record left behind.
	if err := s.appointments.Delete(ctx, id); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return ErrNotFound
		}
		s.log.Error("failed to delete appointment", zap.Uint("appointment_id", id), zap.Error(err))
		return storageErr("cancel appointment", err)
	}
	s.metrics.ObserveTransition(string(models.StatusCancelled))
	s.log.Info("appointment cancelled", zap.Uint("appointment_id", id), zap.Uint("patient_id", actor.UserID))
	return nil
}

// Get returns the appointment to its patient, its doctor or the admin of its
// hospital.
func (s *AppointmentService) Get(ctx context.Context, actor models.Actor, id uint) (*models.Appointment, error) {
	appointment, err := s.appointments.GetByID(ctx, id)
	if err != nil {
		return nil, storageErr("get appointment", err)
	}
	if appointment == nil {
		if actor.UserID == 0 {
			return nil, ErrUnauthorized
		}
		return nil, ErrNotFound
	}
	var doctorUserID, adminID uint
	if appointment.Doctor != nil {
		doctorUserID = appointment.Doctor.UserID
	}
	if appointment.Hospital != nil {
		adminID = appointment.Hospital.AdminID
	}
	if err := Authorize(actor, ActionViewAppointment, appointment.PatientID, doctorUserID, adminID); err != nil {
		return nil, err
	}
	return appointment, nil
}

func (s *AppointmentService) PatientDashboard(ctx context.Context, actor models.Actor) (*PatientDashboard, error) {
	if err := requireRole(actor, models.RolePatient); err != nil {
		return nil, err
	}
	list, err := s.appointments.ListByPatient(ctx, actor.UserID)
	if err != nil {
		return nil, storageErr("patient dashboard", err)
	}
	dashboard := PartitionPatient(list, s.now())
	return &dashboard, nil
}

// MedicalHistory lists the patient's completed appointments, most recently
// completed first.
func (s *AppointmentService) MedicalHistory(ctx context.Context, actor models.Actor) ([]models.Appointment, error) {
	if err := requireRole(actor, models.RolePatient); err != nil {
		return nil, err
	}
	list, err := s.appointments.ListByPatient(ctx, actor.UserID)
	if err != nil {
		return nil, storageErr("medical history", err)
	}
	return CompletedHistory(list), nil
}

func (s *AppointmentService) DoctorDashboard(ctx context.Context, actor models.Actor) (*DoctorDashboard, error) {
	if err := requireRole(actor, models.RoleDoctor); err != nil {
		return nil, err
	}
	doctor, err := s.directory.GetDoctorByUser(ctx, actor.UserID)
	if err != nil {
		return nil, storageErr("doctor dashboard", err)
	}
	if doctor == nil {
		return nil, ErrNotFound
	}
	list, err := s.appointments.ListByDoctor(ctx, doctor.ID)
	if err != nil {
		return nil, storageErr("doctor dashboard", err)
	}
	dashboard := PartitionDoctor(list, s.now())
	dashboard.Doctor = doctor
	return &dashboard, nil
}

func (s *AppointmentService) HospitalDashboard(ctx context.Context, actor models.Actor) (*HospitalDashboard, error) {
	if err := requireRole(actor, models.RoleHospitalAdmin); err != nil {
		return nil, err
	}
	hospital, err := s.directory.GetHospitalByAdmin(ctx, actor.UserID)
	if err != nil {
		return nil, storageErr("hospital dashboard", err)
	}
	if hospital == nil {
		return nil, ErrNotFound
	}
	doctors, err := s.directory.ListDoctorsByHospital(ctx, hospital.ID)
	if err != nil {
		return nil, storageErr("hospital dashboard", err)
	}
	list, err := s.appointments.ListByHospital(ctx, hospital.ID)
	if err != nil {
		return nil, storageErr("hospital dashboard", err)
	}
	dashboard := PartitionHospital(list, s.now())
	dashboard.Hospital = hospital
	dashboard.Doctors = doctors
	return &dashboard, nil
}

func requireRole(actor models.Actor, role models.Role) error {
	if actor.UserID == 0 {
		return ErrUnauthorized
	}
	if actor.Role != role {
		return ErrForbidden
	}
	return nil
}

// sortByTime orders appointments by appointment time, descending when desc.
func sortByTime(list []models.Appointment, desc bool) {
	sort.SliceStable(list, func(i, j int) bool {
		if desc {
			return list[i].AppointmentTime.After(list[j].AppointmentTime)
		}
		return list[i].AppointmentTime.Before(list[j].AppointmentTime)
	})
}

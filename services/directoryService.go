package services

import (
	"SmartClinic/cache"
	"SmartClinic/models"
	"SmartClinic/repositories"
	"SmartClinic/utils"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

const (
	statsCacheKey    = "stats:system"
	statsCacheExpiry = time.Minute
)

// DirectoryService manages hospitals, their doctors and doctor availability.
type DirectoryService struct {
	users        repositories.UserRepository
	directory    repositories.DirectoryRepository
	appointments repositories.AppointmentRepository
	cache        cache.Store
	log          *zap.Logger
	now          func() time.Time
}

func NewDirectoryService(
	users repositories.UserRepository,
	directory repositories.DirectoryRepository,
	appointments repositories.AppointmentRepository,
	store cache.Store,
	log *zap.Logger,
) *DirectoryService {
	return &DirectoryService{
		users:        users,
		directory:    directory,
		appointments: appointments,
		cache:        store,
		log:          log,
		now:          time.Now,
	}
}

// RegisterHospital creates the hospital owned by the acting admin. An admin
// owns at most one hospital.
func (s *DirectoryService) RegisterHospital(ctx context.Context, actor models.Actor, in models.HospitalInput) (hospital *models.Hospital, err error) {
	ctx, span := startSpan(ctx, "DirectoryService.RegisterHospital")
	defer func() { endSpan(span, err) }()

	if err := Authorize(actor, ActionManageHospital, actor.UserID); err != nil {
		return nil, err
	}
	if err := utils.ValidateHospital(in); err != nil {
		return nil, fromOzzo(err)
	}

	existing, err := s.directory.GetHospitalByAdmin(ctx, actor.UserID)
	if err != nil {
		return nil, storageErr("register hospital", err)
	}
	if existing != nil {
		return nil, ErrHospitalExists
	}

	hospital = &models.Hospital{
		Name:        strings.TrimSpace(in.Name),
		Address:     in.Address,
		Contact:     in.Contact,
		Description: in.Description,
		AdminID:     actor.UserID,
	}
	if err := s.directory.CreateHospital(ctx, hospital); err != nil {
		if errors.Is(err, repositories.ErrDuplicate) {
			return nil, ErrHospitalExists
		}
		s.log.Error("failed to create hospital", zap.Uint("admin_id", actor.UserID), zap.Error(err))
		return nil, storageErr("register hospital", err)
	}
	s.log.Info("hospital registered", zap.Uint("hospital_id", hospital.ID), zap.Uint("admin_id", actor.UserID))
	return hospital, nil
}

// AddDoctor creates a doctor account and profile in the admin's own hospital.
func (s *DirectoryService) AddDoctor(ctx context.Context, actor models.Actor, hospitalID uint, in models.DoctorInput) (doctor *models.Doctor, err error) {
	ctx, span := startSpan(ctx, "DirectoryService.AddDoctor", attribute.Int64("hospital_id", int64(hospitalID)))
	defer func() { endSpan(span, err) }()

	hospital, err := s.directory.GetHospital(ctx, hospitalID)
	if err != nil {
		return nil, storageErr("add doctor", err)
	}
	if hospital == nil {
		if actor.UserID == 0 {
			return nil, ErrUnauthorized
		}
		return nil, ErrNotFound
	}
	if err := Authorize(actor, ActionManageHospital, hospital.AdminID); err != nil {
		return nil, err
	}

	in.Email = normalizeEmail(in.Email)
	if err := utils.ValidateDoctor(in); err != nil {
		return nil, fromOzzo(err)
	}
	exists, err := s.users.EmailExists(ctx, in.Email)
	if err != nil {
		return nil, storageErr("add doctor", err)
	}
	if exists {
		return nil, ErrDuplicateEmail
	}

	hashed, err := utils.HashPassword(in.Password)
	if err != nil {
		return nil, err
	}
	user := &models.User{
		Email:        in.Email,
		PasswordHash: hashed,
		Name:         strings.TrimSpace(in.Name),
		Role:         models.RoleDoctor,
		Phone:        in.Phone,
	}
	doctor = &models.Doctor{
		HospitalID:      hospital.ID,
		Specialization:  strings.TrimSpace(in.Specialization),
		Experience:      in.Experience,
		ConsultationFee: in.ConsultationFee,
		About:           in.About,
	}
	if err := s.directory.CreateDoctor(ctx, user, doctor); err != nil {
		if errors.Is(err, repositories.ErrDuplicate) {
			return nil, ErrDuplicateEmail
		}
		s.log.Error("failed to create doctor", zap.Uint("hospital_id", hospital.ID), zap.Error(err))
		return nil, storageErr("add doctor", err)
	}
	s.log.Info("doctor added", zap.Uint("doctor_id", doctor.ID), zap.Uint("hospital_id", hospital.ID))
	return doctor, nil
}

func (s *DirectoryService) ListHospitals(ctx context.Context) ([]models.Hospital, error) {
	hospitals, err := s.directory.ListHospitals(ctx)
	if err != nil {
		return nil, storageErr("list hospitals", err)
	}
	return hospitals, nil
}

// GetHospital returns the hospital with its doctors attached.
func (s *DirectoryService) GetHospital(ctx context.Context, id uint) (*models.Hospital, error) {
	hospital, err := s.directory.GetHospital(ctx, id)
	if err != nil {
		return nil, storageErr("get hospital", err)
	}
	if hospital == nil {
		return nil, ErrNotFound
	}
	doctors, err := s.directory.ListDoctorsByHospital(ctx, id)
	if err != nil {
		return nil, storageErr("get hospital", err)
	}
	hospital.Doctors = doctors
	return hospital, nil
}

func (s *DirectoryService) ListDoctorsByHospital(ctx context.Context, hospitalID uint) ([]models.Doctor, error) {
	hospital, err := s.GetHospital(ctx, hospitalID)
	if err != nil {
		return nil, err
	}
	return hospital.Doctors, nil
}

func (s *DirectoryService) GetDoctor(ctx context.Context, id uint) (*models.Doctor, error) {
	doctor, err := s.directory.GetDoctor(ctx, id)
	if err != nil {
		return nil, storageErr("get doctor", err)
	}
	if doctor == nil {
		return nil, ErrNotFound
	}
	return doctor, nil
}

// ListDoctors returns every doctor, or only those with the given
// specialization when it is not empty.
func (s *DirectoryService) ListDoctors(ctx context.Context, specialization string) ([]models.Doctor, error) {
	doctors, err := s.directory.ListDoctors(ctx, strings.TrimSpace(specialization))
	if err != nil {
		return nil, storageErr("list doctors", err)
	}
	return doctors, nil
}

func (s *DirectoryService) ListSpecializations(ctx context.Context) ([]string, error) {
	specializations, err := s.directory.ListSpecializations(ctx)
	if err != nil {
		return nil, storageErr("list specializations", err)
	}
	return specializations, nil
}

// SetAvailability replaces the doctor's weekly slots. The doctor and the admin
// of the doctor's hospital may do this.
func (s *DirectoryService) SetAvailability(ctx context.Context, actor models.Actor, doctorID uint, slots []models.AvailabilitySlot) (out []models.DoctorAvailability, err error) {
	ctx, span := startSpan(ctx, "DirectoryService.SetAvailability", attribute.Int64("doctor_id", int64(doctorID)))
	defer func() { endSpan(span, err) }()

	doctor, err := s.GetDoctor(ctx, doctorID)
	if err != nil {
		return nil, err
	}
	var adminID uint
	if hospital, err := s.directory.GetHospital(ctx, doctor.HospitalID); err != nil {
		return nil, storageErr("set availability", err)
	} else if hospital != nil {
		adminID = hospital.AdminID
	}
	if err := Authorize(actor, ActionManageAvailability, doctor.UserID, adminID); err != nil {
		return nil, err
	}

	out = make([]models.DoctorAvailability, 0, len(slots))
	for i, slot := range slots {
		if err := utils.ValidateSlot(slot); err != nil {
			verr := fromOzzo(err)
			var fields *ValidationError
			if errors.As(verr, &fields) {
				prefixed := make(map[string]string, len(fields.Fields))
				for k, v := range fields.Fields {
					prefixed[fmt.Sprintf("slots[%d].%s", i, k)] = v
				}
				return nil, &ValidationError{Fields: prefixed}
			}
			return nil, verr
		}
		out = append(out, models.DoctorAvailability{
			DayOfWeek: slot.DayOfWeek,
			StartTime: slot.StartTime,
			EndTime:   slot.EndTime,
		})
	}

	if err := s.directory.ReplaceAvailability(ctx, doctor.ID, out); err != nil {
		s.log.Error("failed to replace availability", zap.Uint("doctor_id", doctor.ID), zap.Error(err))
		return nil, storageErr("set availability", err)
	}
	return out, nil
}

func (s *DirectoryService) ListAvailability(ctx context.Context, doctorID uint) ([]models.DoctorAvailability, error) {
	if _, err := s.GetDoctor(ctx, doctorID); err != nil {
		return nil, err
	}
	slots, err := s.directory.ListAvailability(ctx, doctorID)
	if err != nil {
		return nil, storageErr("list availability", err)
	}
	return slots, nil
}

// Stats returns read-only aggregate counts, cached briefly.
func (s *DirectoryService) Stats(ctx context.Context) (stats *models.SystemStats, err error) {
	ctx, span := startSpan(ctx, "DirectoryService.Stats")
	defer func() { endSpan(span, err) }()

	if cached, err := s.cache.Get(ctx, statsCacheKey); err == nil && cached != "" {
		var st models.SystemStats
		if json.Unmarshal([]byte(cached), &st) == nil {
			return &st, nil
		}
	} else if err != nil {
		s.log.Warn("failed to read stats cache", zap.Error(err))
	}

	stats = &models.SystemStats{}
	now := s.now()
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())

	steps := []struct {
		dst *int64
		fn  func() (int64, error)
	}{
		{&stats.Hospitals, func() (int64, error) { return s.directory.CountHospitals(ctx) }},
		{&stats.Doctors, func() (int64, error) { return s.directory.CountDoctors(ctx) }},
		{&stats.Patients, func() (int64, error) { return s.users.CountByRole(ctx, models.RolePatient) }},
		{&stats.Appointments, func() (int64, error) {
			return s.appointments.Count(ctx, repositories.AppointmentCount{})
		}},
		{&stats.PendingAppointments, func() (int64, error) {
			return s.appointments.Count(ctx, repositories.AppointmentCount{Status: models.StatusPending})
		}},
		{&stats.CompletedAppointments, func() (int64, error) {
			return s.appointments.Count(ctx, repositories.AppointmentCount{Status: models.StatusCompleted})
		}},
		{&stats.MonthlyAppointments, func() (int64, error) {
			return s.appointments.Count(ctx, repositories.AppointmentCount{CreatedSince: monthStart})
		}},
	}
	for _, step := range steps {
		n, err := step.fn()
		if err != nil {
			return nil, storageErr("stats", err)
		}
		*step.dst = n
	}

	hospitals, err := s.directory.ListHospitals(ctx)
	if err != nil {
		return nil, storageErr("stats", err)
	}
	stats.HospitalNames = make([]string, 0, len(hospitals))
	for _, h := range hospitals {
		stats.HospitalNames = append(stats.HospitalNames, h.Name)
	}
	if stats.Specializations, err = s.directory.ListSpecializations(ctx); err != nil {
		return nil, storageErr("stats", err)
	}

	if payload, err := json.Marshal(stats); err == nil {
		if err := s.cache.Set(ctx, statsCacheKey, payload, statsCacheExpiry); err != nil {
			s.log.Warn("failed to write stats cache", zap.Error(err))
		}
	}
	return stats, nil
}

package memrepo

import (
	"SmartClinic/models"
	"SmartClinic/repositories"
	"context"
	"sort"
	"time"
)

type AppointmentRepo struct{ s *state }

func (r *AppointmentRepo) Create(ctx context.Context, appointment *models.Appointment) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	appointment.ID = r.s.id()
	appointment.CreatedAt = r.s.now()
	stored := *appointment
	stored.Doctor, stored.Patient, stored.Hospital = nil, nil, nil
	r.s.appointments[appointment.ID] = stored
	return nil
}

func (r *AppointmentRepo) GetByID(ctx context.Context, id uint) (*models.Appointment, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.s.appointment(id), nil
}

func (r *AppointmentRepo) Update(ctx context.Context, appointment *models.Appointment) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	stored, ok := r.s.appointments[appointment.ID]
	if !ok {
		return repositories.ErrNotFound
	}
	stored.Status = appointment.Status
	stored.Diagnosis = appointment.Diagnosis
	stored.Prescription = appointment.Prescription
	stored.TreatmentPlan = appointment.TreatmentPlan
	stored.FollowUpDate = appointment.FollowUpDate
	stored.TestResults = appointment.TestResults
	stored.DoctorNotes = appointment.DoctorNotes
	stored.CompletedAt = appointment.CompletedAt
	r.s.appointments[appointment.ID] = stored
	return nil
}

func (r *AppointmentRepo) Delete(ctx context.Context, id uint) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.appointments[id]; !ok {
		return repositories.ErrNotFound
	}
	delete(r.s.appointments, id)
	return nil
}

func (r *AppointmentRepo) ListByPatient(ctx context.Context, patientID uint) ([]models.Appointment, error) {
	return r.list(func(a models.Appointment) bool { return a.PatientID == patientID }), nil
}

func (r *AppointmentRepo) ListByDoctor(ctx context.Context, doctorID uint) ([]models.Appointment, error) {
	return r.list(func(a models.Appointment) bool { return a.DoctorID == doctorID }), nil
}

func (r *AppointmentRepo) ListByHospital(ctx context.Context, hospitalID uint) ([]models.Appointment, error) {
	return r.list(func(a models.Appointment) bool { return a.HospitalID == hospitalID }), nil
}

func (r *AppointmentRepo) ListAll(ctx context.Context) ([]models.Appointment, error) {
	return r.list(func(models.Appointment) bool { return true }), nil
}

func (r *AppointmentRepo) list(match func(models.Appointment) bool) []models.Appointment {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []models.Appointment
	for id, a := range r.s.appointments {
		if match(a) {
			out = append(out, *r.s.appointment(id))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].AppointmentTime.Equal(out[j].AppointmentTime) {
			return out[i].AppointmentTime.Before(out[j].AppointmentTime)
		}
		return out[i].ID < out[j].ID
	})
	return out
}

func (r *AppointmentRepo) HasActiveAt(ctx context.Context, doctorID uint, at time.Time) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, a := range r.s.appointments {
		if a.DoctorID == doctorID && a.AppointmentTime.Equal(at) &&
			(a.Status == models.StatusPending || a.Status == models.StatusApproved) {
			return true, nil
		}
	}
	return false, nil
}

func (r *AppointmentRepo) Count(ctx context.Context, filter repositories.AppointmentCount) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var n int64
	for _, a := range r.s.appointments {
		if filter.Status != "" && a.Status != filter.Status {
			continue
		}
		if !filter.CreatedSince.IsZero() && a.CreatedAt.Before(filter.CreatedSince) {
			continue
		}
		n++
	}
	return n, nil
}

package memrepo

import (
	"SmartClinic/models"
	"SmartClinic/repositories"
	"context"
	"sort"
)

type DirectoryRepo struct{ s *state }

func (r *DirectoryRepo) CreateHospital(ctx context.Context, hospital *models.Hospital) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, h := range r.s.hospitals {
		if h.AdminID == hospital.AdminID {
			return repositories.ErrDuplicate
		}
	}
	hospital.ID = r.s.id()
	hospital.CreatedAt = r.s.now()
	stored := *hospital
	stored.Doctors = nil
	r.s.hospitals[hospital.ID] = stored
	return nil
}

func (r *DirectoryRepo) GetHospital(ctx context.Context, id uint) (*models.Hospital, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	h, ok := r.s.hospitals[id]
	if !ok {
		return nil, nil
	}
	return &h, nil
}

func (r *DirectoryRepo) GetHospitalByAdmin(ctx context.Context, adminID uint) (*models.Hospital, error) {
	return r.findHospital(func(h models.Hospital) bool { return h.AdminID == adminID })
}

func (r *DirectoryRepo) GetHospitalByName(ctx context.Context, name string) (*models.Hospital, error) {
	return r.findHospital(func(h models.Hospital) bool { return h.Name == name })
}

func (r *DirectoryRepo) findHospital(match func(models.Hospital) bool) (*models.Hospital, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	hospitals := r.sortedHospitals()
	for i := range hospitals {
		if match(hospitals[i]) {
			return &hospitals[i], nil
		}
	}
	return nil, nil
}

func (r *DirectoryRepo) sortedHospitals() []models.Hospital {
	out := make([]models.Hospital, 0, len(r.s.hospitals))
	for _, h := range r.s.hospitals {
		out = append(out, h)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (r *DirectoryRepo) ListHospitals(ctx context.Context) ([]models.Hospital, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := r.sortedHospitals()
	sort.SliceStable(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r *DirectoryRepo) CreateDoctor(ctx context.Context, user *models.User, doctor *models.Doctor) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.emailTaken(user.Email) {
		return repositories.ErrDuplicate
	}
	user.ID = r.s.id()
	user.CreatedAt = r.s.now()
	r.s.users[user.ID] = *user

	doctor.ID = r.s.id()
	doctor.UserID = user.ID
	stored := *doctor
	stored.User, stored.Hospital, stored.Availability = nil, nil, nil
	r.s.doctors[doctor.ID] = stored
	doctor.User = user
	return nil
}

func (r *DirectoryRepo) GetDoctor(ctx context.Context, id uint) (*models.Doctor, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.s.doctor(id), nil
}

func (r *DirectoryRepo) GetDoctorByUser(ctx context.Context, userID uint) (*models.Doctor, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for id, d := range r.s.doctors {
		if d.UserID == userID {
			return r.s.doctor(id), nil
		}
	}
	return nil, nil
}

func (r *DirectoryRepo) ListDoctors(ctx context.Context, specialization string) ([]models.Doctor, error) {
	return r.listDoctors(func(d models.Doctor) bool {
		return specialization == "" || d.Specialization == specialization
	}), nil
}

func (r *DirectoryRepo) ListDoctorsByHospital(ctx context.Context, hospitalID uint) ([]models.Doctor, error) {
	return r.listDoctors(func(d models.Doctor) bool { return d.HospitalID == hospitalID }), nil
}

func (r *DirectoryRepo) listDoctors(match func(models.Doctor) bool) []models.Doctor {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []models.Doctor
	for id, d := range r.s.doctors {
		if match(d) {
			out = append(out, *r.s.doctor(id))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (r *DirectoryRepo) ListSpecializations(ctx context.Context) ([]string, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	seen := map[string]bool{}
	var out []string
	for _, d := range r.s.doctors {
		if !seen[d.Specialization] {
			seen[d.Specialization] = true
			out = append(out, d.Specialization)
		}
	}
	sort.Strings(out)
	return out, nil
}

func (r *DirectoryRepo) ReplaceAvailability(ctx context.Context, doctorID uint, slots []models.DoctorAvailability) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for id, a := range r.s.availability {
		if a.DoctorID == doctorID {
			delete(r.s.availability, id)
		}
	}
	for i := range slots {
		slots[i].ID = r.s.id()
		slots[i].DoctorID = doctorID
		r.s.availability[slots[i].ID] = slots[i]
	}
	return nil
}

func (r *DirectoryRepo) ListAvailability(ctx context.Context, doctorID uint) ([]models.DoctorAvailability, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.s.slots(doctorID), nil
}

func (r *DirectoryRepo) CountHospitals(ctx context.Context) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return int64(len(r.s.hospitals)), nil
}

func (r *DirectoryRepo) CountDoctors(ctx context.Context) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return int64(len(r.s.doctors)), nil
}

// Package memrepo holds in-memory repository implementations for tests and
// local tooling runs.
package memrepo

import (
	"SmartClinic/database"
	"SmartClinic/models"
	"SmartClinic/repositories"
	"context"
	"sort"
	"sync"
	"time"
)

type state struct {
	mu           sync.Mutex
	nextID       uint
	users        map[uint]models.User
	profiles     map[uint]models.PatientProfile
	hospitals    map[uint]models.Hospital
	doctors      map[uint]models.Doctor
	availability map[uint]models.DoctorAvailability
	appointments map[uint]models.Appointment
	contacts     map[uint]models.EmergencyContact
	ambulances   map[uint]models.AmbulanceBooking
	now          func() time.Time
}

func (s *state) id() uint {
	s.nextID++
	return s.nextID
}

// Repos bundles one store shared by every repository.
type Repos struct {
	Users        *UserRepo
	Directory    *DirectoryRepo
	Appointments *AppointmentRepo
	Contacts     *ContactRepo
	Ambulances   *AmbulanceRepo
}

func New() *Repos {
	s := &state{
		users:        map[uint]models.User{},
		profiles:     map[uint]models.PatientProfile{},
		hospitals:    map[uint]models.Hospital{},
		doctors:      map[uint]models.Doctor{},
		availability: map[uint]models.DoctorAvailability{},
		appointments: map[uint]models.Appointment{},
		contacts:     map[uint]models.EmergencyContact{},
		ambulances:   map[uint]models.AmbulanceBooking{},
		now:          time.Now,
	}
	return &Repos{
		Users:        &UserRepo{s},
		Directory:    &DirectoryRepo{s},
		Appointments: &AppointmentRepo{s},
		Contacts:     &ContactRepo{s},
		Ambulances:   &AmbulanceRepo{s},
	}
}

var (
	_ repositories.UserRepository             = (*UserRepo)(nil)
	_ repositories.DirectoryRepository        = (*DirectoryRepo)(nil)
	_ repositories.AppointmentRepository      = (*AppointmentRepo)(nil)
	_ repositories.EmergencyContactRepository = (*ContactRepo)(nil)
	_ repositories.AmbulanceRepository        = (*AmbulanceRepo)(nil)
)

func (s *state) emailTaken(email string) bool {
	for _, u := range s.users {
		if u.Email == email {
			return true
		}
	}
	return false
}

// user returns a detached copy without associations.
func (s *state) user(id uint) *models.User {
	u, ok := s.users[id]
	if !ok {
		return nil
	}
	u.PatientProfile, u.DoctorProfile, u.Hospital = nil, nil, nil
	return &u
}

func (s *state) doctor(id uint) *models.Doctor {
	d, ok := s.doctors[id]
	if !ok {
		return nil
	}
	d.User = s.user(d.UserID)
	d.Hospital = nil
	d.Availability = s.slots(d.ID)
	return &d
}

func (s *state) slots(doctorID uint) []models.DoctorAvailability {
	var out []models.DoctorAvailability
	for _, a := range s.availability {
		if a.DoctorID == doctorID {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].DayOfWeek != out[j].DayOfWeek {
			return out[i].DayOfWeek < out[j].DayOfWeek
		}
		return out[i].StartTime < out[j].StartTime
	})
	return out
}

func (s *state) appointment(id uint) *models.Appointment {
	a, ok := s.appointments[id]
	if !ok {
		return nil
	}
	a.Doctor = s.doctor(a.DoctorID)
	a.Patient = s.user(a.PatientID)
	if h, ok := s.hospitals[a.HospitalID]; ok {
		h.Doctors = nil
		a.Hospital = &h
	}
	return &a
}

// Locker is an in-process stand-in for database.RedisLocker.
type Locker struct {
	mu   sync.Mutex
	held map[string]bool
}

func NewLocker() *Locker {
	return &Locker{held: map[string]bool{}}
}

func (l *Locker) Acquire(ctx context.Context, key string, ttl time.Duration) (func(), error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.held[key] {
		return nil, database.ErrLockNotAcquired
	}
	l.held[key] = true
	return func() {
		l.mu.Lock()
		delete(l.held, key)
		l.mu.Unlock()
	}, nil
}

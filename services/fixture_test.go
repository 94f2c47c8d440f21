package services

import (
	"SmartClinic/cache"
	"SmartClinic/metrics"
	"SmartClinic/models"
	"SmartClinic/repositories/memrepo"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fixture struct {
	repos        *memrepo.Repos
	store        *cache.Memory
	users        UserService
	directory    *DirectoryService
	appointments *AppointmentService
	contacts     *EmergencyContactService
	ambulances   *AmbulanceService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	repos := memrepo.New()
	store := cache.NewMemory()
	log := zap.NewNop()
	return &fixture{
		repos:     repos,
		store:     store,
		users:     NewUserService(repos.Users, log),
		directory: NewDirectoryService(repos.Users, repos.Directory, repos.Appointments, store, log),
		appointments: NewAppointmentService(repos.Appointments, repos.Directory, memrepo.NewLocker(), metrics.NewCollector("test"), log).
			InLocation(time.Local),
		contacts:   NewEmergencyContactService(repos.Contacts, log),
		ambulances: NewAmbulanceService(repos.Ambulances, nil, log),
	}
}

func actorOf(u *models.User) models.Actor {
	return models.Actor{UserID: u.ID, Role: u.Role, Name: u.Name}
}

func (f *fixture) registerPatient(t *testing.T, email string) models.Actor {
	t.Helper()
	user, err := f.users.Register(context.Background(), models.Registration{
		Email: email, Password: "pw1", Name: "Patient " + email, Role: models.RolePatient,
	})
	require.NoError(t, err)
	return actorOf(user)
}

func (f *fixture) registerAdmin(t *testing.T, email, hospitalName string) (models.Actor, *models.Hospital) {
	t.Helper()
	user, err := f.users.Register(context.Background(), models.Registration{
		Email: email, Password: "pw1", Name: "Admin " + email, Role: models.RoleHospitalAdmin,
		Hospital: &models.HospitalInput{Name: hospitalName, Address: "1 Main St", Contact: "+1 555 0100"},
	})
	require.NoError(t, err)
	require.NotNil(t, user.Hospital)
	return actorOf(user), user.Hospital
}

func (f *fixture) addDoctor(t *testing.T, admin models.Actor, hospitalID uint, email, specialization string) (models.Actor, *models.Doctor) {
	t.Helper()
	doctor, err := f.directory.AddDoctor(context.Background(), admin, hospitalID, models.DoctorInput{
		Name: "Dr " + email, Email: email, Password: "pw1", Specialization: specialization, ConsultationFee: 100,
	})
	require.NoError(t, err)
	return models.Actor{UserID: doctor.UserID, Role: models.RoleDoctor, Name: "Dr " + email}, doctor
}

// clinic sets up one hospital with one doctor and one patient.
func (f *fixture) clinic(t *testing.T) (admin, doctor, patient models.Actor, doc *models.Doctor) {
	t.Helper()
	admin, hospital := f.registerAdmin(t, "admin@x.com", "City Clinic")
	doctor, doc = f.addDoctor(t, admin, hospital.ID, "doc@x.com", "Cardiology")
	patient = f.registerPatient(t, "pat@x.com")
	return admin, doctor, patient, doc
}

func tomorrowAt(hour int) time.Time {
	d := time.Now().AddDate(0, 0, 1)
	return time.Date(d.Year(), d.Month(), d.Day(), hour, 0, 0, 0, time.Local)
}

func (f *fixture) book(t *testing.T, patient models.Actor, doctorID uint, at time.Time) *models.Appointment {
	t.Helper()
	appointment, err := f.appointments.Book(context.Background(), patient, models.BookingRequest{DoctorID: doctorID, AppointmentTime: at})
	require.NoError(t, err)
	return appointment
}

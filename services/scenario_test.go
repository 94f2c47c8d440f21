package services

import (
	"SmartClinic/models"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEndToEndBookingFlow(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	patient := f.registerPatient(t, "pat@x.com")
	admin, hospital := f.registerAdmin(t, "admin@x.com", "City Clinic")
	assert.Equal(t, "City Clinic", hospital.Name)
	assert.Equal(t, admin.UserID, hospital.AdminID)

	doctor, doc := f.addDoctor(t, admin, hospital.ID, "doc@x.com", "Cardiology")
	assert.Equal(t, float64(100), doc.ConsultationFee)
	assert.Equal(t, hospital.ID, doc.HospitalID)

	// The patient can sign in with the registered credentials.
	user, err := f.users.Login(ctx, models.Credentials{Email: "pat@x.com", Password: "pw1", Role: models.RolePatient})
	require.NoError(t, err)
	assert.Equal(t, patient.UserID, user.ID)

	appointment := f.book(t, patient, doc.ID, tomorrowAt(10))
	assert.Equal(t, models.StatusPending, appointment.Status)
	assert.Equal(t, hospital.ID, appointment.HospitalID)

	approved, err := f.appointments.Approve(ctx, doctor, appointment.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusApproved, approved.Status)

	completed, err := f.appointments.Complete(ctx, doctor, appointment.ID, &models.MedicalRecord{Diagnosis: "Mild arrhythmia"})
	require.NoError(t, err)
	assert.Equal(t, models.StatusCompleted, completed.Status)
	require.NotNil(t, completed.CompletedAt)

	history, err := f.appointments.MedicalHistory(ctx, patient)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, appointment.ID, history[0].ID)
	assert.Equal(t, "Mild arrhythmia", history[0].Diagnosis)
	assert.NotNil(t, history[0].CompletedAt)

	stats, err := f.directory.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), stats.Hospitals)
	assert.Equal(t, int64(1), stats.Doctors)
	assert.Equal(t, int64(1), stats.Patients)
	assert.Equal(t, int64(1), stats.Appointments)
	assert.Equal(t, int64(1), stats.CompletedAppointments)
	assert.Equal(t, []string{"City Clinic"}, stats.HospitalNames)
	assert.Equal(t, []string{"Cardiology"}, stats.Specializations)
}

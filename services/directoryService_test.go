package services

import (
	"SmartClinic/models"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterHospital_OnePerAdmin(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	admin, _ := f.registerAdmin(t, "admin@x.com", "City Clinic")

	_, err := f.directory.RegisterHospital(ctx, admin, models.HospitalInput{Name: "Second", Address: "2 Side St", Contact: "5550101"})
	assert.ErrorIs(t, err, ErrHospitalExists)

	patient := f.registerPatient(t, "pat@x.com")
	_, err = f.directory.RegisterHospital(ctx, patient, models.HospitalInput{Name: "Mine", Address: "x", Contact: "5550101"})
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = f.directory.RegisterHospital(ctx, models.Actor{}, models.HospitalInput{})
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestAddDoctor_Authorization(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	admin, hospital := f.registerAdmin(t, "admin@x.com", "City Clinic")
	other, _ := f.registerAdmin(t, "other@x.com", "Harbor Hospital")
	in := models.DoctorInput{Name: "Dr Rao", Email: "doc@x.com", Password: "pw1", Specialization: "Cardiology"}

	_, err := f.directory.AddDoctor(ctx, other, hospital.ID, in)
	assert.ErrorIs(t, err, ErrForbidden, "admin of another hospital")

	_, err = f.directory.AddDoctor(ctx, admin, 9999, in)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = f.directory.AddDoctor(ctx, admin, hospital.ID, in)
	require.NoError(t, err)

	_, err = f.directory.AddDoctor(ctx, admin, hospital.ID, in)
	assert.ErrorIs(t, err, ErrDuplicateEmail)

	bad := in
	bad.Email = "doc2@x.com"
	bad.Specialization = ""
	_, err = f.directory.AddDoctor(ctx, admin, hospital.ID, bad)
	assert.ErrorIs(t, err, ErrValidation)
}

func TestDirectoryReads(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	admin, hospital := f.registerAdmin(t, "admin@x.com", "City Clinic")
	f.addDoctor(t, admin, hospital.ID, "doc@x.com", "Cardiology")
	f.addDoctor(t, admin, hospital.ID, "derm@x.com", "Dermatology")

	hospitals, err := f.directory.ListHospitals(ctx)
	require.NoError(t, err)
	require.Len(t, hospitals, 1)

	got, err := f.directory.GetHospital(ctx, hospital.ID)
	require.NoError(t, err)
	assert.Len(t, got.Doctors, 2)

	_, err = f.directory.GetHospital(ctx, 9999)
	assert.ErrorIs(t, err, ErrNotFound)

	cardio, err := f.directory.ListDoctors(ctx, "Cardiology")
	require.NoError(t, err)
	require.Len(t, cardio, 1)
	assert.Equal(t, "Dr doc@x.com", cardio[0].Name())

	all, err := f.directory.ListDoctors(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, 2)

	specs, err := f.directory.ListSpecializations(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"Cardiology", "Dermatology"}, specs)
}

func TestSetAvailability(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	admin, hospital := f.registerAdmin(t, "admin@x.com", "City Clinic")
	doctor, doc := f.addDoctor(t, admin, hospital.ID, "doc@x.com", "Cardiology")
	otherDoctor, _ := f.addDoctor(t, admin, hospital.ID, "doc2@x.com", "Cardiology")
	stranger, _ := f.registerAdmin(t, "stranger@x.com", "Harbor Hospital")

	slots := []models.AvailabilitySlot{{DayOfWeek: 1, StartTime: "09:00", EndTime: "12:00"}}

	_, err := f.directory.SetAvailability(ctx, doctor, doc.ID, slots)
	require.NoError(t, err)

	_, err = f.directory.SetAvailability(ctx, admin, doc.ID, append(slots, models.AvailabilitySlot{DayOfWeek: 3, StartTime: "14:00", EndTime: "16:00"}))
	require.NoError(t, err, "the hospital's admin may manage the doctor's slots")

	_, err = f.directory.SetAvailability(ctx, otherDoctor, doc.ID, slots)
	assert.ErrorIs(t, err, ErrForbidden)
	_, err = f.directory.SetAvailability(ctx, stranger, doc.ID, slots)
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = f.directory.SetAvailability(ctx, doctor, doc.ID, []models.AvailabilitySlot{
		{DayOfWeek: 1, StartTime: "09:00", EndTime: "12:00"},
		{DayOfWeek: 2, StartTime: "15:00", EndTime: "10:00"},
	})
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "slots[1].end_time")

	stored, err := f.directory.ListAvailability(ctx, doc.ID)
	require.NoError(t, err)
	assert.Len(t, stored, 2, "a rejected update leaves the previous slots")
}

func TestStats_Cached(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.registerAdmin(t, "admin@x.com", "City Clinic")

	first, err := f.directory.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), first.Hospitals)

	f.registerAdmin(t, "admin2@x.com", "Harbor Hospital")
	second, err := f.directory.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), second.Hospitals, "served from cache")

	require.NoError(t, f.store.Delete(ctx, statsCacheKey))
	third, err := f.directory.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), third.Hospitals)
}

package services

import (
	"SmartClinic/models"
	"SmartClinic/repositories"
	"SmartClinic/repositories/memrepo"
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestBook_Validation(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	admin, doctor, patient, doc := f.clinic(t)

	t.Run("past time", func(t *testing.T) {
		_, err := f.appointments.Book(ctx, patient, models.BookingRequest{DoctorID: doc.ID, AppointmentTime: time.Now().Add(-time.Hour)})
		var verr *ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Equal(t, "must be in the future", verr.Fields["appointment_time"])
	})

	t.Run("now is not the future", func(t *testing.T) {
		fixed := time.Date(2030, 1, 1, 10, 0, 0, 0, time.UTC)
		f.appointments.now = func() time.Time { return fixed }
		defer func() { f.appointments.now = time.Now }()

		_, err := f.appointments.Book(ctx, patient, models.BookingRequest{DoctorID: doc.ID, AppointmentTime: fixed})
		assert.ErrorIs(t, err, ErrValidation)
	})

	t.Run("unknown doctor", func(t *testing.T) {
		_, err := f.appointments.Book(ctx, patient, models.BookingRequest{DoctorID: 9999, AppointmentTime: tomorrowAt(10)})
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("only patients book", func(t *testing.T) {
		_, err := f.appointments.Book(ctx, doctor, models.BookingRequest{DoctorID: doc.ID, AppointmentTime: tomorrowAt(10)})
		assert.ErrorIs(t, err, ErrForbidden)
		_, err = f.appointments.Book(ctx, admin, models.BookingRequest{DoctorID: doc.ID, AppointmentTime: tomorrowAt(10)})
		assert.ErrorIs(t, err, ErrForbidden)
		_, err = f.appointments.Book(ctx, models.Actor{}, models.BookingRequest{DoctorID: doc.ID, AppointmentTime: tomorrowAt(10)})
		assert.ErrorIs(t, err, ErrUnauthorized)
	})
}

func TestBook_CopiesHospitalFromDoctor(t *testing.T) {
	f := newFixture(t)
	_, _, patient, doc := f.clinic(t)

	appointment := f.book(t, patient, doc.ID, tomorrowAt(11))
	assert.Equal(t, doc.HospitalID, appointment.HospitalID)
	assert.Equal(t, patient.UserID, appointment.PatientID)
	assert.Equal(t, models.StatusPending, appointment.Status)
}

func TestBook_SlotConflicts(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	_, doctor, patient, doc := f.clinic(t)
	other := f.registerPatient(t, "other@x.com")

	first := f.book(t, patient, doc.ID, tomorrowAt(10))

	_, err := f.appointments.Book(ctx, other, models.BookingRequest{DoctorID: doc.ID, AppointmentTime: tomorrowAt(10)})
	assert.ErrorIs(t, err, ErrSlotUnavailable)
	assert.ErrorIs(t, err, ErrValidation)

	// A completed visit frees the slot.
	_, err = f.appointments.Complete(ctx, doctor, first.ID, nil)
	require.NoError(t, err)
	f.book(t, other, doc.ID, tomorrowAt(10))
}

func TestBook_OutsideAvailability(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	_, doctor, patient, doc := f.clinic(t)

	at := tomorrowAt(10)
	_, err := f.directory.SetAvailability(ctx, doctor, doc.ID, []models.AvailabilitySlot{
		{DayOfWeek: int(at.Weekday()), StartTime: "09:00", EndTime: "10:00"},
	})
	require.NoError(t, err)

	_, err = f.appointments.Book(ctx, patient, models.BookingRequest{DoctorID: doc.ID, AppointmentTime: at})
	assert.ErrorIs(t, err, ErrSlotUnavailable)

	f.book(t, patient, doc.ID, tomorrowAt(9))
}

func TestBook_AvailabilityUsesClinicZone(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	_, doctor, patient, doc := f.clinic(t)
	ist := time.FixedZone("IST", 5*3600+30*60)
	f.appointments.InLocation(ist)

	// 2030-01-07 is a Monday.
	_, err := f.directory.SetAvailability(ctx, doctor, doc.ID, []models.AvailabilitySlot{
		{DayOfWeek: int(time.Monday), StartTime: "09:00", EndTime: "12:00"},
	})
	require.NoError(t, err)

	// 04:30Z is 10:00 in the clinic zone.
	f.book(t, patient, doc.ID, time.Date(2030, 1, 7, 4, 30, 0, 0, time.UTC))
	f.book(t, patient, doc.ID, time.Date(2030, 1, 7, 11, 0, 0, 0, ist))

	// 10:00Z is 15:30 in the clinic zone.
	_, err = f.appointments.Book(ctx, patient, models.BookingRequest{
		DoctorID: doc.ID, AppointmentTime: time.Date(2030, 1, 7, 10, 0, 0, 0, time.UTC),
	})
	assert.ErrorIs(t, err, ErrSlotUnavailable)
}

func TestBook_LockHeld(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	_, _, patient, doc := f.clinic(t)
	locker := memrepo.NewLocker()
	f.appointments.locker = locker

	at := tomorrowAt(10)
	release, err := locker.Acquire(ctx, appointmentLockKey(doc.ID, at), time.Second)
	require.NoError(t, err)

	_, err = f.appointments.Book(ctx, patient, models.BookingRequest{DoctorID: doc.ID, AppointmentTime: at})
	assert.ErrorIs(t, err, ErrSlotUnavailable)

	release()
	f.book(t, patient, doc.ID, at)
}

func TestApprove_OwnershipAndTransitions(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	admin, doctor, patient, doc := f.clinic(t)
	hospitalID := doc.HospitalID
	otherDoctor, _ := f.addDoctor(t, admin, hospitalID, "doc2@x.com", "Cardiology")

	appointment := f.book(t, patient, doc.ID, tomorrowAt(10))

	_, err := f.appointments.Approve(ctx, otherDoctor, appointment.ID)
	assert.ErrorIs(t, err, ErrForbidden, "a doctor may only act on their own appointments")
	_, err = f.appointments.Approve(ctx, patient, appointment.ID)
	assert.ErrorIs(t, err, ErrForbidden)
	_, err = f.appointments.Approve(ctx, doctor, 9999)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = f.appointments.Approve(ctx, doctor, appointment.ID)
	require.NoError(t, err)

	_, err = f.appointments.Approve(ctx, doctor, appointment.ID)
	assert.ErrorIs(t, err, ErrInvalidTransition, "approved cannot be approved again")

	_, err = f.appointments.Complete(ctx, doctor, appointment.ID, nil)
	require.NoError(t, err)

	_, err = f.appointments.Approve(ctx, doctor, appointment.ID)
	assert.ErrorIs(t, err, ErrInvalidTransition)
	_, err = f.appointments.Complete(ctx, doctor, appointment.ID, nil)
	assert.ErrorIs(t, err, ErrInvalidTransition, "completed is terminal")
	assert.ErrorIs(t, f.appointments.Cancel(ctx, patient, appointment.ID), ErrValidation)
}

func TestComplete_FromPendingWithRecord(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	_, doctor, patient, doc := f.clinic(t)
	appointment := f.book(t, patient, doc.ID, tomorrowAt(10))

	follow := tomorrowAt(10).AddDate(0, 0, 14)
	completed, err := f.appointments.Complete(ctx, doctor, appointment.ID, &models.MedicalRecord{
		Diagnosis: "Hypertension", Prescription: "Amlodipine 5mg", FollowUpDate: &follow,
	})
	require.NoError(t, err)
	assert.Equal(t, models.StatusCompleted, completed.Status)

	stored, err := f.appointments.Get(ctx, patient, appointment.ID)
	require.NoError(t, err)
	assert.Equal(t, "Hypertension", stored.Diagnosis)
	assert.Equal(t, "Amlodipine 5mg", stored.Prescription)
	require.NotNil(t, stored.FollowUpDate)
	assert.True(t, follow.Equal(*stored.FollowUpDate))
	assert.NotNil(t, stored.CompletedAt)
}

func TestRecordConsultation(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	_, doctor, patient, doc := f.clinic(t)
	appointment := f.book(t, patient, doc.ID, tomorrowAt(10))

	saved, err := f.appointments.RecordConsultation(ctx, doctor, appointment.ID, models.MedicalRecord{DoctorNotes: "ECG ordered"}, false)
	require.NoError(t, err)
	assert.Equal(t, models.StatusPending, saved.Status)
	assert.Equal(t, "ECG ordered", saved.DoctorNotes)

	saved, err = f.appointments.RecordConsultation(ctx, doctor, appointment.ID, models.MedicalRecord{DoctorNotes: "ECG normal", TestResults: "normal"}, true)
	require.NoError(t, err)
	assert.Equal(t, models.StatusCompleted, saved.Status)
	require.NotNil(t, saved.CompletedAt)
	completedAt := *saved.CompletedAt

	// Editing a completed record keeps the original completion time.
	saved, err = f.appointments.RecordConsultation(ctx, doctor, appointment.ID, models.MedicalRecord{DoctorNotes: "amended"}, true)
	require.NoError(t, err)
	assert.Equal(t, "amended", saved.DoctorNotes)
	assert.True(t, completedAt.Equal(*saved.CompletedAt))
}

func TestUpdateStatus(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	_, doctor, patient, doc := f.clinic(t)
	appointment := f.book(t, patient, doc.ID, tomorrowAt(10))

	_, err := f.appointments.UpdateStatus(ctx, doctor, appointment.ID, models.StatusCancelled)
	assert.ErrorIs(t, err, ErrValidation)
	_, err = f.appointments.UpdateStatus(ctx, doctor, appointment.ID, models.StatusPending)
	assert.ErrorIs(t, err, ErrValidation)

	updated, err := f.appointments.UpdateStatus(ctx, doctor, appointment.ID, models.StatusApproved)
	require.NoError(t, err)
	assert.Equal(t, models.StatusApproved, updated.Status)

	updated, err = f.appointments.UpdateStatus(ctx, doctor, appointment.ID, models.StatusCompleted)
	require.NoError(t, err)
	assert.Equal(t, models.StatusCompleted, updated.Status)
}

func TestCancel(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	_, doctor, patient, doc := f.clinic(t)
	other := f.registerPatient(t, "other@x.com")

	appointment := f.book(t, patient, doc.ID, tomorrowAt(10))

	assert.ErrorIs(t, f.appointments.Cancel(ctx, other, appointment.ID), ErrForbidden)
	assert.ErrorIs(t, f.appointments.Cancel(ctx, doctor, appointment.ID), ErrForbidden)
	assert.ErrorIs(t, f.appointments.Cancel(ctx, models.Actor{}, appointment.ID), ErrUnauthorized)

	require.NoError(t, f.appointments.Cancel(ctx, patient, appointment.ID))

	_, err := f.appointments.Get(ctx, patient, appointment.ID)
	assert.ErrorIs(t, err, ErrNotFound, "cancellation removes the row")
	assert.ErrorIs(t, f.appointments.Cancel(ctx, patient, appointment.ID), ErrNotFound)

	approved := f.book(t, patient, doc.ID, tomorrowAt(11))
	_, err = f.appointments.Approve(ctx, doctor, approved.ID)
	require.NoError(t, err)
	err = f.appointments.Cancel(ctx, patient, approved.ID)
	assert.ErrorIs(t, err, ErrInvalidTransition, "only pending appointments can be cancelled")
}

func TestGet_Visibility(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	admin, doctor, patient, doc := f.clinic(t)
	other := f.registerPatient(t, "other@x.com")
	otherAdmin, _ := f.registerAdmin(t, "other-admin@x.com", "Harbor Hospital")

	appointment := f.book(t, patient, doc.ID, tomorrowAt(10))

	for _, actor := range []models.Actor{patient, doctor, admin} {
		got, err := f.appointments.Get(ctx, actor, appointment.ID)
		require.NoError(t, err)
		assert.Equal(t, appointment.ID, got.ID)
	}
	for _, actor := range []models.Actor{other, otherAdmin} {
		_, err := f.appointments.Get(ctx, actor, appointment.ID)
		assert.ErrorIs(t, err, ErrForbidden)
	}
}

// pausingRepo holds every GetByID until both readers have loaded the row, so
// two approvals observe the same pending state.
type pausingRepo struct {
	repositories.AppointmentRepository
	readers sync.WaitGroup
}

func (r *pausingRepo) GetByID(ctx context.Context, id uint) (*models.Appointment, error) {
	appointment, err := r.AppointmentRepository.GetByID(ctx, id)
	r.readers.Done()
	r.readers.Wait()
	return appointment, err
}

// Two concurrent approvals of the same appointment both succeed. There is no
// optimistic locking on status updates, so the last write wins.
func TestApprove_ConcurrentLastWriteWins(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	_, doctor, patient, doc := f.clinic(t)
	appointment := f.book(t, patient, doc.ID, tomorrowAt(10))

	repo := &pausingRepo{AppointmentRepository: f.repos.Appointments}
	repo.readers.Add(2)
	svc := NewAppointmentService(repo, f.repos.Directory, memrepo.NewLocker(), nil, zap.NewNop())

	errs := make([]error, 2)
	var wg sync.WaitGroup
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = svc.Approve(ctx, doctor, appointment.ID)
		}(i)
	}
	wg.Wait()

	assert.NoError(t, errs[0])
	assert.NoError(t, errs[1])

	stored, err := f.appointments.Get(ctx, doctor, appointment.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusApproved, stored.Status)
}

func TestDashboards(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	admin, doctor, patient, doc := f.clinic(t)

	pending := f.book(t, patient, doc.ID, tomorrowAt(9))
	approved := f.book(t, patient, doc.ID, tomorrowAt(10))
	done := f.book(t, patient, doc.ID, tomorrowAt(11))
	_, err := f.appointments.Approve(ctx, doctor, approved.ID)
	require.NoError(t, err)
	_, err = f.appointments.Complete(ctx, doctor, done.ID, nil)
	require.NoError(t, err)

	pd, err := f.appointments.PatientDashboard(ctx, patient)
	require.NoError(t, err)
	require.Len(t, pd.Upcoming, 2)
	assert.Equal(t, pending.ID, pd.Upcoming[0].ID)
	assert.Equal(t, approved.ID, pd.Upcoming[1].ID)
	require.Len(t, pd.Past, 1)
	assert.Equal(t, done.ID, pd.Past[0].ID)

	dd, err := f.appointments.DoctorDashboard(ctx, doctor)
	require.NoError(t, err)
	assert.Equal(t, doc.ID, dd.Doctor.ID)
	assert.Len(t, dd.Pending, 1)
	assert.Len(t, dd.Upcoming, 1, "approved tomorrow is upcoming, not today")
	assert.Len(t, dd.Completed, 1)

	hd, err := f.appointments.HospitalDashboard(ctx, admin)
	require.NoError(t, err)
	assert.Equal(t, "City Clinic", hd.Hospital.Name)
	assert.Len(t, hd.Doctors, 1)
	assert.Len(t, hd.Pending, 1)
	assert.Len(t, hd.Completed, 1)

	_, err = f.appointments.PatientDashboard(ctx, doctor)
	assert.ErrorIs(t, err, ErrForbidden)
	_, err = f.appointments.DoctorDashboard(ctx, models.Actor{})
	assert.ErrorIs(t, err, ErrUnauthorized)
	_, err = f.appointments.MedicalHistory(ctx, admin)
	assert.ErrorIs(t, err, ErrForbidden)
}

package services

import (
	"SmartClinic/models"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func ids(list []models.Appointment) []uint {
	out := []uint{}
	for _, a := range list {
		out = append(out, a.ID)
	}
	return out
}

func TestPartitions(t *testing.T) {
	now := time.Date(2030, 3, 10, 12, 0, 0, 0, time.UTC)
	completedEarly := now.Add(-48 * time.Hour)
	completedLate := now.Add(-time.Hour)
	list := []models.Appointment{
		{ID: 1, Status: models.StatusPending, AppointmentTime: now.Add(48 * time.Hour)},
		{ID: 2, Status: models.StatusPending, AppointmentTime: now.Add(2 * time.Hour)},
		{ID: 3, Status: models.StatusApproved, AppointmentTime: now.Add(3 * time.Hour)},
		{ID: 4, Status: models.StatusApproved, AppointmentTime: now.Add(30 * time.Hour)},
		{ID: 5, Status: models.StatusCompleted, AppointmentTime: now.Add(-72 * time.Hour), CompletedAt: &completedEarly},
		{ID: 6, Status: models.StatusCompleted, AppointmentTime: now.Add(-4 * time.Hour), CompletedAt: &completedLate},
		{ID: 7, Status: models.StatusApproved, AppointmentTime: now.Add(-2 * time.Hour)},
		{ID: 8, Status: models.StatusCompleted, AppointmentTime: now.Add(-96 * time.Hour)},
	}

	t.Run("patient", func(t *testing.T) {
		d := PartitionPatient(list, now)
		assert.Equal(t, []uint{2, 3, 4, 1}, ids(d.Upcoming))
		assert.Equal(t, []uint{6, 5, 8}, ids(d.Past))
	})

	t.Run("doctor", func(t *testing.T) {
		d := PartitionDoctor(list, now)
		assert.Equal(t, []uint{2, 1}, ids(d.Pending))
		assert.Equal(t, []uint{7, 3}, ids(d.Today), "approved earlier today still counts as today")
		assert.Equal(t, []uint{4}, ids(d.Upcoming))
		assert.Equal(t, []uint{6, 5, 8}, ids(d.Completed))
	})

	t.Run("hospital", func(t *testing.T) {
		d := PartitionHospital(list, now)
		assert.Equal(t, []uint{6, 7, 2, 3}, ids(d.Today))
		assert.Equal(t, []uint{2, 1}, ids(d.Pending))
		assert.Equal(t, []uint{6, 5, 8}, ids(d.Completed))
	})

	t.Run("history", func(t *testing.T) {
		assert.Equal(t, []uint{6, 5, 8}, ids(CompletedHistory(list)))
	})

	t.Run("empty", func(t *testing.T) {
		d := PartitionPatient(nil, now)
		assert.NotNil(t, d.Upcoming)
		assert.NotNil(t, d.Past)
		assert.NotNil(t, CompletedHistory(nil))
	})
}

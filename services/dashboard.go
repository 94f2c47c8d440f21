package services

import (
	"SmartClinic/models"
	"sort"
	"time"
)

type PatientDashboard struct {
	Upcoming []models.Appointment `json:"upcoming"`
	Past     []models.Appointment `json:"past"`
}

type DoctorDashboard struct {
	Doctor    *models.Doctor       `json:"doctor"`
	Pending   []models.Appointment `json:"pending"`
	Today     []models.Appointment `json:"today"`
	Upcoming  []models.Appointment `json:"upcoming"`
	Completed []models.Appointment `json:"completed"`
}

type HospitalDashboard struct {
	Hospital  *models.Hospital     `json:"hospital"`
	Doctors   []models.Doctor      `json:"doctors"`
	Today     []models.Appointment `json:"today"`
	Pending   []models.Appointment `json:"pending"`
	Completed []models.Appointment `json:"completed"`
}

func isOpen(s models.AppointmentStatus) bool {
	return s == models.StatusPending || s == models.StatusApproved
}

// PartitionPatient splits a patient's appointments into upcoming (future,
// pending or approved, soonest first) and past (completed or cancelled,
// latest first).
func PartitionPatient(list []models.Appointment, now time.Time) PatientDashboard {
	d := PatientDashboard{Upcoming: []models.Appointment{}, Past: []models.Appointment{}}
	for _, a := range list {
		switch {
		case a.Status.IsTerminal():
			d.Past = append(d.Past, a)
		case isOpen(a.Status) && a.AppointmentTime.After(now):
			d.Upcoming = append(d.Upcoming, a)
		}
	}
	sortByTime(d.Upcoming, false)
	sortByTime(d.Past, true)
	return d
}

// PartitionDoctor splits a doctor's appointments into pending, approved
// today, approved on a later day (all ascending) and completed (descending).
// Days are taken in now's location.
func PartitionDoctor(list []models.Appointment, now time.Time) DoctorDashboard {
	d := DoctorDashboard{
		Pending:   []models.Appointment{},
		Today:     []models.Appointment{},
		Upcoming:  []models.Appointment{},
		Completed: []models.Appointment{},
	}
	today := startOfDay(now)
	tomorrow := today.AddDate(0, 0, 1)
	for _, a := range list {
		at := a.AppointmentTime.In(now.Location())
		switch a.Status {
		case models.StatusPending:
			d.Pending = append(d.Pending, a)
		case models.StatusApproved:
			if !at.Before(today) && at.Before(tomorrow) {
				d.Today = append(d.Today, a)
			} else if !at.Before(tomorrow) {
				d.Upcoming = append(d.Upcoming, a)
			}
		case models.StatusCompleted:
			d.Completed = append(d.Completed, a)
		}
	}
	sortByTime(d.Pending, false)
	sortByTime(d.Today, false)
	sortByTime(d.Upcoming, false)
	sortByTime(d.Completed, true)
	return d
}

// PartitionHospital gives today's appointments in any status and pending
// ones (ascending), and completed ones (descending).
func PartitionHospital(list []models.Appointment, now time.Time) HospitalDashboard {
	d := HospitalDashboard{
		Today:     []models.Appointment{},
		Pending:   []models.Appointment{},
		Completed: []models.Appointment{},
	}
	today := startOfDay(now)
	tomorrow := today.AddDate(0, 0, 1)
	for _, a := range list {
		at := a.AppointmentTime.In(now.Location())
		if !at.Before(today) && at.Before(tomorrow) {
			d.Today = append(d.Today, a)
		}
		switch a.Status {
		case models.StatusPending:
			d.Pending = append(d.Pending, a)
		case models.StatusCompleted:
			d.Completed = append(d.Completed, a)
		}
	}
	sortByTime(d.Today, false)
	sortByTime(d.Pending, false)
	sortByTime(d.Completed, true)
	return d
}

// CompletedHistory keeps completed appointments ordered by completion time,
// latest first. Rows without a completion time sort last.
func CompletedHistory(list []models.Appointment) []models.Appointment {
	out := []models.Appointment{}
	for _, a := range list {
		if a.Status == models.StatusCompleted {
			out = append(out, a)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		ci, cj := out[i].CompletedAt, out[j].CompletedAt
		switch {
		case ci == nil:
			return false
		case cj == nil:
			return true
		default:
			return ci.After(*cj)
		}
	})
	return out
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

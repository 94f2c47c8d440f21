package assistant

import (
	"SmartClinic/models"
	"fmt"
	"strings"
)

const disclaimer = "Please consult a doctor before taking any medication. You can book an appointment through SmartClinic."

type rule struct {
	keywords []string
	answer   func(stats *models.SystemStats) string
}

func fixed(text string) func(*models.SystemStats) string {
	return func(*models.SystemStats) string { return text }
}

// rules are checked in order; the first rule with a matching keyword answers.
var rules = []rule{
	{
		keywords: []string{"chest pain", "can't breathe", "cannot breathe", "unconscious", "severe bleeding", "stroke"},
		answer: fixed("This may be a medical emergency. Call your local emergency number now, " +
			"or use the Emergency page to request an ambulance."),
	},
	{
		keywords: []string{"ambulance", "emergency"},
		answer: fixed("You can request an ambulance from the Emergency page. Give your pickup address and a phone " +
			"number, then follow the booking status until it is dispatched."),
	},
	{
		keywords: []string{"book", "appointment", "schedule"},
		answer: fixed("To book an appointment, open Hospitals, choose a hospital and a doctor, then pick a future " +
			"date and time. The booking stays pending until the doctor approves it."),
	},
	{
		keywords: []string{"cancel"},
		answer: fixed("You can cancel an appointment from your dashboard while it is still pending. " +
			"Approved appointments can no longer be cancelled online."),
	},
	{
		keywords: []string{"history", "prescription", "record"},
		answer: fixed("Your completed consultations, with diagnosis, prescription and treatment plan, " +
			"are listed under Medical History on your dashboard."),
	},
	{
		keywords: []string{"hospital", "clinic"},
		answer: func(stats *models.SystemStats) string {
			if len(stats.HospitalNames) == 0 {
				return "No hospitals are registered yet."
			}
			return fmt.Sprintf("We have %d registered hospitals: %s.", stats.Hospitals, strings.Join(stats.HospitalNames, ", "))
		},
	},
	{
		keywords: []string{"doctor", "specialist", "specialization"},
		answer: func(stats *models.SystemStats) string {
			if len(stats.Specializations) == 0 {
				return fmt.Sprintf("%d doctors are available.", stats.Doctors)
			}
			return fmt.Sprintf("%d doctors are available across these specializations: %s.",
				stats.Doctors, strings.Join(stats.Specializations, ", "))
		},
	},
	{
		keywords: []string{"headache", "migraine"},
		answer: fixed("For a mild headache, rest in a quiet dark room, drink water and try a cold compress. " +
			"See a General Physician if it is severe, lasts for days, or comes with fever or vision problems. " + disclaimer),
	},
	{
		keywords: []string{"fever", "temperature"},
		answer: fixed("For a fever, rest and drink plenty of fluids. See a doctor if it lasts more than three days " +
			"or is very high. " + disclaimer),
	},
	{
		keywords: []string{"cough", "cold", "flu", "sore throat"},
		answer: fixed("Most colds improve with rest, fluids and warm drinks. See a doctor if you have trouble " +
			"breathing or symptoms last over a week. " + disclaimer),
	},
	{
		keywords: []string{"hello", "hi ", "hey"},
		answer: fixed("Hello! I am the SmartClinic assistant. Ask me about hospitals, doctors, booking appointments " +
			"or general health questions."),
	},
}

// RuleResponse answers from the keyword table and the live counts.
func RuleResponse(message string, stats *models.SystemStats) string {
	if stats == nil {
		stats = &models.SystemStats{}
	}
	text := " " + strings.ToLower(message) + " "
	for _, r := range rules {
		for _, kw := range r.keywords {
			if strings.Contains(text, kw) {
				return r.answer(stats)
			}
		}
	}
	return fmt.Sprintf("I can help with booking appointments, finding doctors and hospitals, and general health "+
		"questions. SmartClinic currently lists %d hospitals and %d doctors. What would you like to know?",
		stats.Hospitals, stats.Doctors)
}

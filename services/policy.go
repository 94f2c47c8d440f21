package services

import "SmartClinic/models"

// Action names a guarded operation.
type Action string

const (
	ActionBookAppointment         Action = "book_appointment"
	ActionApproveAppointment      Action = "approve_appointment"
	ActionCompleteAppointment     Action = "complete_appointment"
	ActionRecordConsultation      Action = "record_consultation"
	ActionCancelAppointment       Action = "cancel_appointment"
	ActionViewAppointment         Action = "view_appointment"
	ActionManageHospital          Action = "manage_hospital"
	ActionManageAvailability      Action = "manage_availability"
	ActionManageEmergencyContacts Action = "manage_emergency_contacts"
	ActionManageAmbulanceBooking  Action = "manage_ambulance_booking"
)

type capability struct {
	roles []models.Role
	owner bool // actor must be the owner of the target
}

var capabilities = map[Action]capability{
	ActionBookAppointment:         {roles: []models.Role{models.RolePatient}},
	ActionApproveAppointment:      {roles: []models.Role{models.RoleDoctor}, owner: true},
	ActionCompleteAppointment:     {roles: []models.Role{models.RoleDoctor}, owner: true},
	ActionRecordConsultation:      {roles: []models.Role{models.RoleDoctor}, owner: true},
	ActionCancelAppointment:       {roles: []models.Role{models.RolePatient}, owner: true},
	ActionViewAppointment:         {roles: models.AllRoles, owner: true},
	ActionManageHospital:          {roles: []models.Role{models.RoleHospitalAdmin}, owner: true},
	ActionManageAvailability:      {roles: []models.Role{models.RoleDoctor, models.RoleHospitalAdmin}, owner: true},
	ActionManageEmergencyContacts: {roles: models.AllRoles, owner: true},
	ActionManageAmbulanceBooking:  {roles: models.AllRoles, owner: true},
}

// Authorize checks that actor may perform action on a target owned by any of
// ownerIDs. A zero actor is ErrUnauthorized; a wrong role or a non-owner is
// ErrForbidden. For actions without an ownership requirement ownerIDs is ignored.
func Authorize(actor models.Actor, action Action, ownerIDs ...uint) error {
	if actor.UserID == 0 {
		return ErrUnauthorized
	}
	capab, ok := capabilities[action]
	if !ok {
		return ErrForbidden
	}

	allowed := false
	for _, role := range capab.roles {
		if actor.Role == role {
			allowed = true
			break
		}
	}
	if !allowed {
		return ErrForbidden
	}
	if !capab.owner {
		return nil
	}
	for _, id := range ownerIDs {
		if id != 0 && id == actor.UserID {
			return nil
		}
	}
	return ErrForbidden
}

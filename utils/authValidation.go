package utils

import (
	"SmartClinic/models"
	"errors"
	"regexp"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
)

var (
	clockRegex = regexp.MustCompile(`^([01]\d|2[0-3]):[0-5]\d$`)
	phoneRegex = regexp.MustCompile(`^\+?[0-9 ()\-]{6,20}$`)

	bloodGroups = []interface{}{"A+", "A-", "B+", "B-", "AB+", "AB-", "O+", "O-"}
	genders     = []interface{}{"male", "female", "other"}
)

var ErrSlotOrder = errors.New("end_time must be after start_time")

// passwordRules bounds the password to what bcrypt accepts.
var passwordRules = []validation.Rule{
	validation.Required.Error("password cannot be blank"),
	validation.Length(1, 72),
}

func roleValues() []interface{} {
	out := make([]interface{}, 0, len(models.AllRoles))
	for _, r := range models.AllRoles {
		out = append(out, r)
	}
	return out
}

// ValidateRegistration checks the sign-up form. Hospital details are required
// for hospital admins.
func ValidateRegistration(reg models.Registration) error {
	err := validation.ValidateStruct(&reg,
		validation.Field(&reg.Email, validation.Required, is.EmailFormat),
		validation.Field(&reg.Password, passwordRules...),
		validation.Field(&reg.Name, validation.Required, validation.Length(1, 100)),
		validation.Field(&reg.Role, validation.Required, validation.In(roleValues()...)),
		validation.Field(&reg.Phone, validation.Match(phoneRegex)),
		validation.Field(&reg.Hospital, validation.When(reg.Role == models.RoleHospitalAdmin, validation.Required.Error("hospital details are required"))),
	)
	if err != nil {
		return err
	}
	if reg.Role == models.RoleHospitalAdmin {
		if err := ValidateHospital(*reg.Hospital); err != nil {
			return err
		}
	}
	if reg.Role == models.RolePatient {
		return ValidatePatientProfile(reg.Profile)
	}
	return nil
}

func ValidatePatientProfile(p models.PatientProfileInput) error {
	return validation.ValidateStruct(&p,
		validation.Field(&p.Age, validation.Min(0), validation.Max(150)),
		validation.Field(&p.Gender, validation.In(genders...)),
		validation.Field(&p.BloodGroup, validation.In(bloodGroups...)),
		validation.Field(&p.Height, validation.Min(0.0)),
		validation.Field(&p.Weight, validation.Min(0.0)),
		validation.Field(&p.Address, validation.Length(0, 500)),
		validation.Field(&p.EmergencyContact, validation.Match(phoneRegex)),
	)
}

func ValidateProfileUpdate(u models.ProfileUpdate) error {
	err := validation.ValidateStruct(&u,
		validation.Field(&u.Name, validation.Required, validation.Length(1, 100)),
		validation.Field(&u.Phone, validation.Match(phoneRegex)),
	)
	if err != nil {
		return err
	}
	if u.Profile != nil {
		return ValidatePatientProfile(*u.Profile)
	}
	return nil
}

func ValidateCredentials(c models.Credentials) error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.Email, validation.Required, is.EmailFormat),
		validation.Field(&c.Password, validation.Required),
		validation.Field(&c.Role, validation.Required, validation.In(roleValues()...)),
	)
}

func ValidateHospital(h models.HospitalInput) error {
	return validation.ValidateStruct(&h,
		validation.Field(&h.Name, validation.Required, validation.Length(1, 200)),
		validation.Field(&h.Address, validation.Required, validation.Length(1, 500)),
		validation.Field(&h.Contact, validation.Required, validation.Match(phoneRegex)),
	)
}

func ValidateDoctor(d models.DoctorInput) error {
	return validation.ValidateStruct(&d,
		validation.Field(&d.Name, validation.Required, validation.Length(1, 100)),
		validation.Field(&d.Email, validation.Required, is.EmailFormat),
		validation.Field(&d.Password, passwordRules...),
		validation.Field(&d.Phone, validation.Match(phoneRegex)),
		validation.Field(&d.Specialization, validation.Required, validation.Length(1, 100)),
		validation.Field(&d.Experience, validation.Min(0), validation.Max(80)),
		validation.Field(&d.ConsultationFee, validation.Min(0.0)),
	)
}

// ValidateSlot checks day range, HH:MM format and start < end.
func ValidateSlot(s models.AvailabilitySlot) error {
	err := validation.ValidateStruct(&s,
		validation.Field(&s.DayOfWeek, validation.Min(0), validation.Max(6)),
		validation.Field(&s.StartTime, validation.Required, validation.Match(clockRegex)),
		validation.Field(&s.EndTime, validation.Required, validation.Match(clockRegex)),
	)
	if err != nil {
		return err
	}
	// zero-padded clocks compare correctly as strings
	if s.EndTime <= s.StartTime {
		return validation.Errors{"end_time": ErrSlotOrder}
	}
	return nil
}

func ValidateEmergencyContact(c models.EmergencyContactInput) error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.Name, validation.Required, validation.Length(1, 100)),
		validation.Field(&c.Relationship, validation.Required, validation.Length(1, 50)),
		validation.Field(&c.Phone, validation.Required, validation.Match(phoneRegex)),
		validation.Field(&c.Email, is.EmailFormat),
	)
}

func ValidateAmbulanceRequest(a models.AmbulanceRequest) error {
	return validation.ValidateStruct(&a,
		validation.Field(&a.PatientName, validation.Required, validation.Length(1, 100)),
		validation.Field(&a.Phone, validation.Required, validation.Match(phoneRegex)),
		validation.Field(&a.PickupAddress, validation.Required, validation.Length(1, 500)),
		validation.Field(&a.PickupLat, validation.Min(-90.0), validation.Max(90.0)),
		validation.Field(&a.PickupLng, validation.Min(-180.0), validation.Max(180.0)),
		validation.Field(&a.DestinationLat, validation.Min(-90.0), validation.Max(90.0)),
		validation.Field(&a.DestinationLng, validation.Min(-180.0), validation.Max(180.0)),
	)
}

// ValidatePassword is used by the offline password reset.
func ValidatePassword(password string) error {
	return validation.Validate(password, passwordRules...)
}

// ValidateAccount checks the base identity fields of an account created
// outside the registration form.
func ValidateAccount(email, password, name string, role models.Role) error {
	return validation.Errors{
		"email":    validation.Validate(email, validation.Required, is.EmailFormat),
		"password": validation.Validate(password, passwordRules...),
		"name":     validation.Validate(name, validation.Required, validation.Length(1, 100)),
		"role":     validation.Validate(role, validation.Required, validation.In(roleValues()...)),
	}.Filter()
}

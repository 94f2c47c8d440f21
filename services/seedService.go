package services

import (
	"SmartClinic/models"
	"SmartClinic/repositories"
	"SmartClinic/utils"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// Seed is the bulk-load file format. Hospitals reference their admin by
// email and doctors reference their hospital by name.
type Seed struct {
	Users     []SeedUser     `yaml:"users"`
	Hospitals []SeedHospital `yaml:"hospitals"`
	Doctors   []SeedDoctor   `yaml:"doctors"`
}

type SeedUser struct {
	Email    string      `yaml:"email"`
	Password string      `yaml:"password"`
	Name     string      `yaml:"name"`
	Role     models.Role `yaml:"role"`
	Phone    string      `yaml:"phone"`
}

type SeedHospital struct {
	Name        string `yaml:"name"`
	Address     string `yaml:"address"`
	Contact     string `yaml:"contact"`
	Description string `yaml:"description"`
	AdminEmail  string `yaml:"admin_email"`
}

type SeedDoctor struct {
	Name            string  `yaml:"name"`
	Email           string  `yaml:"email"`
	Password        string  `yaml:"password"`
	Phone           string  `yaml:"phone"`
	Specialization  string  `yaml:"specialization"`
	Experience      int     `yaml:"experience"`
	ConsultationFee float64 `yaml:"consultation_fee"`
	About           string  `yaml:"about"`
	HospitalName    string  `yaml:"hospital_name"`
}

// ImportReport counts what an import created and what it skipped as already
// present.
type ImportReport struct {
	UsersCreated     int `json:"users_created"`
	UsersSkipped     int `json:"users_skipped"`
	HospitalsCreated int `json:"hospitals_created"`
	HospitalsSkipped int `json:"hospitals_skipped"`
	DoctorsCreated   int `json:"doctors_created"`
	DoctorsSkipped   int `json:"doctors_skipped"`
}

// ParseSeed decodes a seed file, rejecting unknown keys.
func ParseSeed(r io.Reader) (*Seed, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	var seed Seed
	if err := dec.Decode(&seed); err != nil {
		if errors.Is(err, io.EOF) {
			return &seed, nil
		}
		return nil, fmt.Errorf("failed to parse seed file: %w", err)
	}
	return &seed, nil
}

type SeedImporter struct {
	users     repositories.UserRepository
	directory repositories.DirectoryRepository
	log       *zap.Logger
}

func NewSeedImporter(users repositories.UserRepository, directory repositories.DirectoryRepository, log *zap.Logger) *SeedImporter {
	return &SeedImporter{users: users, directory: directory, log: log}
}

// Import loads users, then hospitals, then doctors. Existing emails and
// hospitals are skipped, so running the same file twice is harmless.
func (i *SeedImporter) Import(ctx context.Context, seed *Seed) (*ImportReport, error) {
	report := &ImportReport{}

	for n, su := range seed.Users {
		email := normalizeEmail(su.Email)
		if err := utils.ValidateAccount(email, su.Password, su.Name, su.Role); err != nil {
			return report, fmt.Errorf("users[%d]: %w", n, fromOzzo(err))
		}
		exists, err := i.users.EmailExists(ctx, email)
		if err != nil {
			return report, storageErr("import users", err)
		}
		if exists {
			report.UsersSkipped++
			continue
		}
		if su.Role == models.RoleDoctor {
			return report, fmt.Errorf("users[%d]: %w", n, invalidField("role", "doctors are imported in the doctors section"))
		}
		hashed, err := utils.HashPassword(su.Password)
		if err != nil {
			return report, err
		}
		user := &models.User{Email: email, PasswordHash: hashed, Name: su.Name, Role: su.Role, Phone: su.Phone}
		if su.Role == models.RolePatient {
			user.PatientProfile = &models.PatientProfile{}
		}
		if err := i.users.CreateUser(ctx, user); err != nil {
			return report, storageErr("import users", err)
		}
		report.UsersCreated++
	}

	for n, sh := range seed.Hospitals {
		in := models.HospitalInput{Name: sh.Name, Address: sh.Address, Contact: sh.Contact, Description: sh.Description}
		if err := utils.ValidateHospital(in); err != nil {
			return report, fmt.Errorf("hospitals[%d]: %w", n, fromOzzo(err))
		}
		admin, err := i.users.GetUserByEmail(ctx, normalizeEmail(sh.AdminEmail))
		if err != nil {
			return report, storageErr("import hospitals", err)
		}
		if admin == nil || admin.Role != models.RoleHospitalAdmin {
			return report, fmt.Errorf("hospitals[%d]: %w", n, invalidField("admin_email", "must name a hospital_admin account"))
		}
		existing, err := i.directory.GetHospitalByAdmin(ctx, admin.ID)
		if err != nil {
			return report, storageErr("import hospitals", err)
		}
		if existing != nil {
			report.HospitalsSkipped++
			continue
		}
		hospital := &models.Hospital{
			Name:        strings.TrimSpace(sh.Name),
			Address:     sh.Address,
			Contact:     sh.Contact,
			Description: sh.Description,
			AdminID:     admin.ID,
		}
		if err := i.directory.CreateHospital(ctx, hospital); err != nil {
			return report, storageErr("import hospitals", err)
		}
		report.HospitalsCreated++
	}

	for n, sd := range seed.Doctors {
		in := models.DoctorInput{
			Name:            sd.Name,
			Email:           normalizeEmail(sd.Email),
			Password:        sd.Password,
			Phone:           sd.Phone,
			Specialization:  sd.Specialization,
			Experience:      sd.Experience,
			ConsultationFee: sd.ConsultationFee,
			About:           sd.About,
		}
		if err := utils.ValidateDoctor(in); err != nil {
			return report, fmt.Errorf("doctors[%d]: %w", n, fromOzzo(err))
		}
		exists, err := i.users.EmailExists(ctx, in.Email)
		if err != nil {
			return report, storageErr("import doctors", err)
		}
		if exists {
			report.DoctorsSkipped++
			continue
		}
		hospital, err := i.directory.GetHospitalByName(ctx, strings.TrimSpace(sd.HospitalName))
		if err != nil {
			return report, storageErr("import doctors", err)
		}
		if hospital == nil {
			return report, fmt.Errorf("doctors[%d]: %w", n, invalidField("hospital_name", "unknown hospital"))
		}
		hashed, err := utils.HashPassword(in.Password)
		if err != nil {
			return report, err
		}
		user := &models.User{Email: in.Email, PasswordHash: hashed, Name: in.Name, Role: models.RoleDoctor, Phone: in.Phone}
		doctor := &models.Doctor{
			HospitalID:      hospital.ID,
			Specialization:  in.Specialization,
			Experience:      in.Experience,
			ConsultationFee: in.ConsultationFee,
			About:           in.About,
		}
		if err := i.directory.CreateDoctor(ctx, user, doctor); err != nil {
			return report, storageErr("import doctors", err)
		}
		report.DoctorsCreated++
	}

	i.log.Info("seed imported",
		zap.Int("users_created", report.UsersCreated),
		zap.Int("hospitals_created", report.HospitalsCreated),
		zap.Int("doctors_created", report.DoctorsCreated),
	)
	return report, nil
}

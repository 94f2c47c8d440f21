package services

import (
	"SmartClinic/models"
	"SmartClinic/repositories"
	"SmartClinic/utils"
	"context"
	"errors"
	"strings"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

type UserService interface {
	Register(ctx context.Context, reg models.Registration) (*models.User, error)
	Login(ctx context.Context, creds models.Credentials) (*models.User, error)
	Profile(ctx context.Context, actor models.Actor) (*models.User, error)
	UpdateProfile(ctx context.Context, actor models.Actor, update models.ProfileUpdate) (*models.User, error)
	ResetPassword(ctx context.Context, email, password string) error
}

type userService struct {
	userRepo repositories.UserRepository
	log      *zap.Logger
}

func NewUserService(userRepo repositories.UserRepository, log *zap.Logger) UserService {
	return &userService{userRepo: userRepo, log: log}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Register creates the account. A hospital admin's hospital is created in the
// same transaction.
func (s *userService) Register(ctx context.Context, reg models.Registration) (user *models.User, err error) {
	ctx, span := startSpan(ctx, "UserService.Register", attribute.String("role", string(reg.Role)))
	defer func() { endSpan(span, err) }()

	reg.Email = normalizeEmail(reg.Email)
	if err := utils.ValidateRegistration(reg); err != nil {
		return nil, fromOzzo(err)
	}

	exists, err := s.userRepo.EmailExists(ctx, reg.Email)
	if err != nil {
		s.log.Error("failed to check email", zap.Error(err))
		return nil, storageErr("register", err)
	}
	if exists {
		return nil, ErrDuplicateEmail
	}

	hashed, err := utils.HashPassword(reg.Password)
	if err != nil {
		return nil, err
	}

	user = &models.User{
		Email:        reg.Email,
		PasswordHash: hashed,
		Name:         strings.TrimSpace(reg.Name),
		Role:         reg.Role,
		Phone:        reg.Phone,
	}
	switch reg.Role {
	case models.RolePatient:
		user.PatientProfile = patientProfile(reg.Profile)
	case models.RoleHospitalAdmin:
		user.Hospital = &models.Hospital{
			Name:        strings.TrimSpace(reg.Hospital.Name),
			Address:     reg.Hospital.Address,
			Contact:     reg.Hospital.Contact,
			Description: reg.Hospital.Description,
		}
	}

	if err := s.userRepo.CreateUser(ctx, user); err != nil {
		if errors.Is(err, repositories.ErrDuplicate) {
			return nil, ErrDuplicateEmail
		}
		s.log.Error("failed to create user", zap.String("role", string(reg.Role)), zap.Error(err))
		return nil, storageErr("register", err)
	}

	s.log.Info("user registered", zap.Uint("user_id", user.ID), zap.String("role", string(user.Role)))
	return user, nil
}

func patientProfile(in models.PatientProfileInput) *models.PatientProfile {
	return &models.PatientProfile{
		Age:              in.Age,
		Gender:           in.Gender,
		BloodGroup:       in.BloodGroup,
		Height:           in.Height,
		Weight:           in.Weight,
		Address:          in.Address,
		EmergencyContact: in.EmergencyContact,
	}
}

// Login verifies the credentials, then that the account holds the requested
// role. Correct credentials on the wrong login surface give ErrRoleMismatch.
func (s *userService) Login(ctx context.Context, creds models.Credentials) (user *models.User, err error) {
	ctx, span := startSpan(ctx, "UserService.Login")
	defer func() { endSpan(span, err) }()

	creds.Email = normalizeEmail(creds.Email)
	if err := utils.ValidateCredentials(creds); err != nil {
		return nil, fromOzzo(err)
	}

	user, err = s.userRepo.GetUserByEmail(ctx, creds.Email)
	if err != nil {
		s.log.Error("failed to load user for login", zap.Error(err))
		return nil, storageErr("login", err)
	}
	if user == nil || !utils.CheckPassword(user.PasswordHash, creds.Password) {
		return nil, ErrInvalidCredentials
	}
	if user.Role != creds.Role {
		return nil, ErrRoleMismatch
	}
	return user, nil
}

func (s *userService) Profile(ctx context.Context, actor models.Actor) (*models.User, error) {
	if actor.UserID == 0 {
		return nil, ErrUnauthorized
	}
	user, err := s.userRepo.GetUserByID(ctx, actor.UserID)
	if err != nil {
		return nil, storageErr("profile", err)
	}
	if user == nil {
		return nil, ErrNotFound
	}
	return user, nil
}

// UpdateProfile changes name and phone. Patient profile fields are only
// accepted from patients.
func (s *userService) UpdateProfile(ctx context.Context, actor models.Actor, update models.ProfileUpdate) (user *models.User, err error) {
	ctx, span := startSpan(ctx, "UserService.UpdateProfile")
	defer func() { endSpan(span, err) }()

	if actor.UserID == 0 {
		return nil, ErrUnauthorized
	}
	if update.Profile != nil && actor.Role != models.RolePatient {
		return nil, ErrForbidden
	}
	if err := utils.ValidateProfileUpdate(update); err != nil {
		return nil, fromOzzo(err)
	}

	changes := &models.User{
		ID:    actor.UserID,
		Role:  actor.Role,
		Name:  strings.TrimSpace(update.Name),
		Phone: update.Phone,
	}
	if update.Profile != nil {
		changes.PatientProfile = patientProfile(*update.Profile)
	}
	if err := s.userRepo.UpdateUserProfile(ctx, changes); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrNotFound
		}
		s.log.Error("failed to update profile", zap.Uint("user_id", actor.UserID), zap.Error(err))
		return nil, storageErr("update profile", err)
	}
	return s.Profile(ctx, actor)
}

// ResetPassword replaces the credential of the account with email. It has no
// HTTP surface and is run from the operator CLI.
func (s *userService) ResetPassword(ctx context.Context, email, password string) error {
	if err := utils.ValidatePassword(password); err != nil {
		return invalidField("password", err.Error())
	}
	user, err := s.userRepo.GetUserByEmail(ctx, normalizeEmail(email))
	if err != nil {
		return storageErr("reset password", err)
	}
	if user == nil {
		return ErrNotFound
	}
	hashed, err := utils.HashPassword(password)
	if err != nil {
		return err
	}
	if err := s.userRepo.UpdateUserPassword(ctx, user.ID, hashed); err != nil {
		return storageErr("reset password", err)
	}
	s.log.Info("password reset", zap.Uint("user_id", user.ID))
	return nil
}

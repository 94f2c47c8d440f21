package repositories

import (
	"SmartClinic/cache"
	"SmartClinic/models"
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type UserRepository interface {
	EmailExists(ctx context.Context, email string) (bool, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUserByID(ctx context.Context, userID uint) (*models.User, error)
	CreateUser(ctx context.Context, user *models.User) error
	UpdateUserProfile(ctx context.Context, user *models.User) error
	UpdateUserPassword(ctx context.Context, userID uint, passwordHash string) error
	GetAllUsers(ctx context.Context) ([]models.User, error)
	CountByRole(ctx context.Context, role models.Role) (int64, error)
}

type userRepository struct {
	db    *gorm.DB
	cache cache.Store
	log   *zap.Logger
}

func NewUserRepository(db *gorm.DB, cache cache.Store, log *zap.Logger) UserRepository {
	return &userRepository{db: db, cache: cache, log: log}
}

func (r *userRepository) EmailExists(ctx context.Context, email string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.User{}).Where("email = ?", email).Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to check email existence: %w", err)
	}
	return count > 0, nil
}

// GetUserByEmail returns nil, nil when no user has the email. The credential
// hash is included.
func (r *userRepository) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	err := r.db.WithContext(ctx).Where("email = ?", email).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get user by email: %w", err)
	}
	return &user, nil
}

// GetUserByID loads the user with its role profile.
func (r *userRepository) GetUserByID(ctx context.Context, userID uint) (*models.User, error) {
	var user models.User
	err := r.db.WithContext(ctx).
		Preload("PatientProfile").
		Preload("DoctorProfile").
		Preload("Hospital").
		First(&user, userID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return &user, nil
}

// CreateUser inserts the user and, when present, its patient profile or owned
// hospital in one transaction.
func (r *userRepository) CreateUser(ctx context.Context, user *models.User) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(user).Error; err != nil {
			return translate(err)
		}
		if user.PatientProfile != nil {
			user.PatientProfile.UserID = user.ID
			if err := tx.Create(user.PatientProfile).Error; err != nil {
				return err
			}
		}
		if user.Hospital != nil {
			user.Hospital.AdminID = user.ID
			if err := tx.Omit(clause.Associations).Create(user.Hospital).Error; err != nil {
				return translate(err)
			}
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrDuplicate) {
			return err
		}
		return fmt.Errorf("failed to create user: %w", err)
	}
	if user.Hospital != nil {
		invalidateDirectory(ctx, r.cache, r.log)
	}
	return nil
}

// UpdateUserProfile saves name and phone, and upserts the patient profile when
// one is attached.
func (r *userRepository) UpdateUserProfile(ctx context.Context, user *models.User) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&models.User{}).Where("id = ?", user.ID).Updates(map[string]interface{}{
			"name":  user.Name,
			"phone": user.Phone,
		})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrNotFound
		}
		if user.PatientProfile != nil {
			user.PatientProfile.UserID = user.ID
			if err := tx.Clauses(clause.OnConflict{UpdateAll: true}).Create(user.PatientProfile).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return err
		}
		return fmt.Errorf("failed to update user profile: %w", err)
	}
	// Doctor names are part of cached directory entries.
	if user.Role == models.RoleDoctor {
		invalidateDirectory(ctx, r.cache, r.log)
	}
	return nil
}

func (r *userRepository) UpdateUserPassword(ctx context.Context, userID uint, passwordHash string) error {
	result := r.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", userID).Update("password_hash", passwordHash)
	if result.Error != nil {
		return fmt.Errorf("failed to update password: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *userRepository) GetAllUsers(ctx context.Context) ([]models.User, error) {
	var users []models.User
	if err := r.db.WithContext(ctx).Order("id").Find(&users).Error; err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	return users, nil
}

func (r *userRepository) CountByRole(ctx context.Context, role models.Role) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.User{}).Where("role = ?", role).Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count users: %w", err)
	}
	return count, nil
}

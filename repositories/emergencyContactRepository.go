package repositories

import (
	"SmartClinic/models"
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
)

type EmergencyContactRepository interface {
	Create(ctx context.Context, contact *models.EmergencyContact) error
	GetByID(ctx context.Context, id uint) (*models.EmergencyContact, error)
	ListByUser(ctx context.Context, userID uint) ([]models.EmergencyContact, error)
	SetPrimary(ctx context.Context, userID, id uint) error
	Delete(ctx context.Context, id uint) error
}

type emergencyContactRepository struct {
	db *gorm.DB
}

func NewEmergencyContactRepository(db *gorm.DB) EmergencyContactRepository {
	return &emergencyContactRepository{db: db}
}

// Create inserts the contact. A primary contact demotes the user's other
// contacts in the same transaction.
func (r *emergencyContactRepository) Create(ctx context.Context, contact *models.EmergencyContact) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if contact.IsPrimary {
			if err := clearPrimary(tx, contact.UserID); err != nil {
				return err
			}
		}
		return tx.Create(contact).Error
	})
	if err != nil {
		return fmt.Errorf("failed to create emergency contact: %w", err)
	}
	return nil
}

func (r *emergencyContactRepository) GetByID(ctx context.Context, id uint) (*models.EmergencyContact, error) {
	var contact models.EmergencyContact
	if err := r.db.WithContext(ctx).First(&contact, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get emergency contact: %w", err)
	}
	return &contact, nil
}

// ListByUser returns the primary contact first, then by creation order.
func (r *emergencyContactRepository) ListByUser(ctx context.Context, userID uint) ([]models.EmergencyContact, error) {
	var contacts []models.EmergencyContact
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).Order("is_primary DESC, created_at, id").Find(&contacts).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list emergency contacts: %w", err)
	}
	return contacts, nil
}

func (r *emergencyContactRepository) SetPrimary(ctx context.Context, userID, id uint) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := clearPrimary(tx, userID); err != nil {
			return err
		}
		result := tx.Model(&models.EmergencyContact{}).
			Where("id = ? AND user_id = ?", id, userID).
			Update("is_primary", true)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrNotFound
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return err
		}
		return fmt.Errorf("failed to set primary contact: %w", err)
	}
	return nil
}

func clearPrimary(tx *gorm.DB, userID uint) error {
	return tx.Model(&models.EmergencyContact{}).
		Where("user_id = ? AND is_primary = ?", userID, true).
		Update("is_primary", false).Error
}

func (r *emergencyContactRepository) Delete(ctx context.Context, id uint) error {
	result := r.db.WithContext(ctx).Delete(&models.EmergencyContact{}, id)
	if result.Error != nil {
		return fmt.Errorf("failed to delete emergency contact: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

package repositories

import (
	"SmartClinic/models"
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
)

type AmbulanceRepository interface {
	Create(ctx context.Context, booking *models.AmbulanceBooking) error
	GetByID(ctx context.Context, id uint) (*models.AmbulanceBooking, error)
	ListByUser(ctx context.Context, userID uint) ([]models.AmbulanceBooking, error)
	Update(ctx context.Context, booking *models.AmbulanceBooking) error
	Delete(ctx context.Context, id uint) error
}

type ambulanceRepository struct {
	db *gorm.DB
}

func NewAmbulanceRepository(db *gorm.DB) AmbulanceRepository {
	return &ambulanceRepository{db: db}
}

func (r *ambulanceRepository) Create(ctx context.Context, booking *models.AmbulanceBooking) error {
	if err := r.db.WithContext(ctx).Create(booking).Error; err != nil {
		return fmt.Errorf("failed to create ambulance booking: %w", err)
	}
	return nil
}

func (r *ambulanceRepository) GetByID(ctx context.Context, id uint) (*models.AmbulanceBooking, error) {
	var booking models.AmbulanceBooking
	if err := r.db.WithContext(ctx).First(&booking, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get ambulance booking: %w", err)
	}
	return &booking, nil
}

func (r *ambulanceRepository) ListByUser(ctx context.Context, userID uint) ([]models.AmbulanceBooking, error) {
	var bookings []models.AmbulanceBooking
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).Order("created_at DESC, id DESC").Find(&bookings).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list ambulance bookings: %w", err)
	}
	return bookings, nil
}

// Update saves the dispatch fields of the booking.
func (r *ambulanceRepository) Update(ctx context.Context, booking *models.AmbulanceBooking) error {
	result := r.db.WithContext(ctx).Model(&models.AmbulanceBooking{}).
		Where("id = ?", booking.ID).
		Select("status", "ambulance_number", "driver_name", "driver_phone", "estimated_arrival").
		Updates(booking)
	if result.Error != nil {
		return fmt.Errorf("failed to update ambulance booking: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *ambulanceRepository) Delete(ctx context.Context, id uint) error {
	result := r.db.WithContext(ctx).Delete(&models.AmbulanceBooking{}, id)
	if result.Error != nil {
		return fmt.Errorf("failed to delete ambulance booking: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

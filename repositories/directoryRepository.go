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

// DirectoryRepository stores hospitals, doctor profiles and weekly
// availability. Reads are served from the cache when possible.
type DirectoryRepository interface {
	CreateHospital(ctx context.Context, hospital *models.Hospital) error
	GetHospital(ctx context.Context, id uint) (*models.Hospital, error)
	GetHospitalByAdmin(ctx context.Context, adminID uint) (*models.Hospital, error)
	GetHospitalByName(ctx context.Context, name string) (*models.Hospital, error)
	ListHospitals(ctx context.Context) ([]models.Hospital, error)
	CreateDoctor(ctx context.Context, user *models.User, doctor *models.Doctor) error
	GetDoctor(ctx context.Context, id uint) (*models.Doctor, error)
	GetDoctorByUser(ctx context.Context, userID uint) (*models.Doctor, error)
	ListDoctors(ctx context.Context, specialization string) ([]models.Doctor, error)
	ListDoctorsByHospital(ctx context.Context, hospitalID uint) ([]models.Doctor, error)
	ListSpecializations(ctx context.Context) ([]string, error)
	ReplaceAvailability(ctx context.Context, doctorID uint, slots []models.DoctorAvailability) error
	ListAvailability(ctx context.Context, doctorID uint) ([]models.DoctorAvailability, error)
	CountHospitals(ctx context.Context) (int64, error)
	CountDoctors(ctx context.Context) (int64, error)
}

type directoryRepository struct {
	db    *gorm.DB
	cache cache.Store
	log   *zap.Logger
}

func NewDirectoryRepository(db *gorm.DB, cache cache.Store, log *zap.Logger) DirectoryRepository {
	return &directoryRepository{db: db, cache: cache, log: log}
}

func (r *directoryRepository) CreateHospital(ctx context.Context, hospital *models.Hospital) error {
	if err := r.db.WithContext(ctx).Omit(clause.Associations).Create(hospital).Error; err != nil {
		if err = translate(err); errors.Is(err, ErrDuplicate) {
			return err
		}
		return fmt.Errorf("failed to create hospital: %w", err)
	}
	invalidateDirectory(ctx, r.cache, r.log)
	return nil
}

func (r *directoryRepository) GetHospital(ctx context.Context, id uint) (*models.Hospital, error) {
	cacheKey := fmt.Sprintf("%shospital:%d", directoryCachePrefix, id)
	var hospital models.Hospital
	if readCache(ctx, r.cache, r.log, cacheKey, &hospital) {
		return &hospital, nil
	}

	if err := r.db.WithContext(ctx).First(&hospital, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get hospital: %w", err)
	}
	writeCache(ctx, r.cache, r.log, cacheKey, hospital, DirectoryCacheExpiry)
	return &hospital, nil
}

func (r *directoryRepository) GetHospitalByAdmin(ctx context.Context, adminID uint) (*models.Hospital, error) {
	return r.findHospital(ctx, "admin_id = ?", adminID)
}

func (r *directoryRepository) GetHospitalByName(ctx context.Context, name string) (*models.Hospital, error) {
	return r.findHospital(ctx, "name = ?", name)
}

func (r *directoryRepository) findHospital(ctx context.Context, query string, arg interface{}) (*models.Hospital, error) {
	var hospital models.Hospital
	if err := r.db.WithContext(ctx).Where(query, arg).First(&hospital).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find hospital: %w", err)
	}
	return &hospital, nil
}

func (r *directoryRepository) ListHospitals(ctx context.Context) ([]models.Hospital, error) {
	cacheKey := directoryCachePrefix + "hospitals"
	var hospitals []models.Hospital
	if readCache(ctx, r.cache, r.log, cacheKey, &hospitals) {
		return hospitals, nil
	}

	if err := r.db.WithContext(ctx).Order("name").Find(&hospitals).Error; err != nil {
		return nil, fmt.Errorf("failed to list hospitals: %w", err)
	}
	writeCache(ctx, r.cache, r.log, cacheKey, hospitals, DirectoryCacheExpiry)
	return hospitals, nil
}

// CreateDoctor inserts the doctor account and its profile atomically.
func (r *directoryRepository) CreateDoctor(ctx context.Context, user *models.User, doctor *models.Doctor) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(user).Error; err != nil {
			return translate(err)
		}
		doctor.UserID = user.ID
		if err := tx.Omit(clause.Associations).Create(doctor).Error; err != nil {
			return translate(err)
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrDuplicate) {
			return err
		}
		return fmt.Errorf("failed to create doctor: %w", err)
	}
	doctor.User = user
	invalidateDirectory(ctx, r.cache, r.log)
	return nil
}

func (r *directoryRepository) doctorQuery(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Preload("User").
		Preload("Availability", func(db *gorm.DB) *gorm.DB {
			return db.Order("day_of_week, start_time")
		})
}

func (r *directoryRepository) GetDoctor(ctx context.Context, id uint) (*models.Doctor, error) {
	cacheKey := fmt.Sprintf("%sdoctor:%d", directoryCachePrefix, id)
	var doctor models.Doctor
	if readCache(ctx, r.cache, r.log, cacheKey, &doctor) {
		return &doctor, nil
	}

	if err := r.doctorQuery(ctx).First(&doctor, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get doctor: %w", err)
	}
	writeCache(ctx, r.cache, r.log, cacheKey, doctor, DirectoryCacheExpiry)
	return &doctor, nil
}

func (r *directoryRepository) GetDoctorByUser(ctx context.Context, userID uint) (*models.Doctor, error) {
	var doctor models.Doctor
	if err := r.doctorQuery(ctx).Where("user_id = ?", userID).First(&doctor).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get doctor by user: %w", err)
	}
	return &doctor, nil
}

func (r *directoryRepository) ListDoctors(ctx context.Context, specialization string) ([]models.Doctor, error) {
	cacheKey := directoryCachePrefix + "doctors:" + specialization
	var doctors []models.Doctor
	if readCache(ctx, r.cache, r.log, cacheKey, &doctors) {
		return doctors, nil
	}

	query := r.doctorQuery(ctx)
	if specialization != "" {
		query = query.Where("specialization = ?", specialization)
	}
	if err := query.Order("id").Find(&doctors).Error; err != nil {
		return nil, fmt.Errorf("failed to list doctors: %w", err)
	}
	writeCache(ctx, r.cache, r.log, cacheKey, doctors, DirectoryCacheExpiry)
	return doctors, nil
}

func (r *directoryRepository) ListDoctorsByHospital(ctx context.Context, hospitalID uint) ([]models.Doctor, error) {
	cacheKey := fmt.Sprintf("%shospital:%d:doctors", directoryCachePrefix, hospitalID)
	var doctors []models.Doctor
	if readCache(ctx, r.cache, r.log, cacheKey, &doctors) {
		return doctors, nil
	}

	if err := r.doctorQuery(ctx).Where("hospital_id = ?", hospitalID).Order("id").Find(&doctors).Error; err != nil {
		return nil, fmt.Errorf("failed to list hospital doctors: %w", err)
	}
	writeCache(ctx, r.cache, r.log, cacheKey, doctors, DirectoryCacheExpiry)
	return doctors, nil
}

func (r *directoryRepository) ListSpecializations(ctx context.Context) ([]string, error) {
	cacheKey := directoryCachePrefix + "specializations"
	var specializations []string
	if readCache(ctx, r.cache, r.log, cacheKey, &specializations) {
		return specializations, nil
	}

	err := r.db.WithContext(ctx).Model(&models.Doctor{}).
		Distinct().
		Order("specialization").
		Pluck("specialization", &specializations).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list specializations: %w", err)
	}
	writeCache(ctx, r.cache, r.log, cacheKey, specializations, DirectoryCacheExpiry)
	return specializations, nil
}

// ReplaceAvailability swaps the doctor's weekly slots in one transaction.
func (r *directoryRepository) ReplaceAvailability(ctx context.Context, doctorID uint, slots []models.DoctorAvailability) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("doctor_id = ?", doctorID).Delete(&models.DoctorAvailability{}).Error; err != nil {
			return err
		}
		if len(slots) == 0 {
			return nil
		}
		for i := range slots {
			slots[i].ID = 0
			slots[i].DoctorID = doctorID
		}
		return tx.Create(&slots).Error
	})
	if err != nil {
		return fmt.Errorf("failed to replace availability: %w", err)
	}
	invalidateDirectory(ctx, r.cache, r.log)
	return nil
}

func (r *directoryRepository) ListAvailability(ctx context.Context, doctorID uint) ([]models.DoctorAvailability, error) {
	var slots []models.DoctorAvailability
	err := r.db.WithContext(ctx).Where("doctor_id = ?", doctorID).Order("day_of_week, start_time").Find(&slots).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list availability: %w", err)
	}
	return slots, nil
}

func (r *directoryRepository) CountHospitals(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.Hospital{}).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count hospitals: %w", err)
	}
	return count, nil
}

func (r *directoryRepository) CountDoctors(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.Doctor{}).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count doctors: %w", err)
	}
	return count, nil
}

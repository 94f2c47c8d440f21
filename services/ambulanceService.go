package services

import (
	"SmartClinic/metrics"
	"SmartClinic/models"
	"SmartClinic/repositories"
	"SmartClinic/utils"
	"context"
	"errors"
	"strings"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

type AmbulanceService struct {
	repository repositories.AmbulanceRepository
	metrics    *metrics.Collector
	log        *zap.Logger
}

func NewAmbulanceService(repository repositories.AmbulanceRepository, collector *metrics.Collector, log *zap.Logger) *AmbulanceService {
	return &AmbulanceService{repository: repository, metrics: collector, log: log}
}

// Book records an ambulance request by the acting user.
func (s *AmbulanceService) Book(ctx context.Context, actor models.Actor, req models.AmbulanceRequest) (booking *models.AmbulanceBooking, err error) {
	ctx, span := startSpan(ctx, "AmbulanceService.Book")
	defer func() { endSpan(span, err) }()

	if err := Authorize(actor, ActionManageAmbulanceBooking, actor.UserID); err != nil {
		return nil, err
	}
	if err := utils.ValidateAmbulanceRequest(req); err != nil {
		return nil, fromOzzo(err)
	}
	booking = &models.AmbulanceBooking{
		UserID:              actor.UserID,
		PatientName:         strings.TrimSpace(req.PatientName),
		Phone:               req.Phone,
		PickupAddress:       req.PickupAddress,
		PickupLat:           req.PickupLat,
		PickupLng:           req.PickupLng,
		DestinationHospital: req.DestinationHospital,
		DestinationLat:      req.DestinationLat,
		DestinationLng:      req.DestinationLng,
		EmergencyType:       req.EmergencyType,
		PatientCondition:    req.PatientCondition,
		Status:              models.AmbulanceRequested,
	}
	if err := s.repository.Create(ctx, booking); err != nil {
		s.log.Error("failed to create ambulance booking", zap.Uint("user_id", actor.UserID), zap.Error(err))
		return nil, storageErr("book ambulance", err)
	}
	s.metrics.ObserveAmbulanceBooking()
	s.log.Info("ambulance requested", zap.Uint("booking_id", booking.ID), zap.Uint("user_id", actor.UserID))
	return booking, nil
}

// Get returns the booking to its owner.
func (s *AmbulanceService) Get(ctx context.Context, actor models.Actor, id uint) (*models.AmbulanceBooking, error) {
	if actor.UserID == 0 {
		return nil, ErrUnauthorized
	}
	booking, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := Authorize(actor, ActionManageAmbulanceBooking, booking.UserID); err != nil {
		return nil, err
	}
	return booking, nil
}

func (s *AmbulanceService) load(ctx context.Context, id uint) (*models.AmbulanceBooking, error) {
	booking, err := s.repository.GetByID(ctx, id)
	if err != nil {
		return nil, storageErr("get ambulance booking", err)
	}
	if booking == nil {
		return nil, ErrNotFound
	}
	return booking, nil
}

// List returns the acting user's bookings, newest first.
func (s *AmbulanceService) List(ctx context.Context, actor models.Actor) ([]models.AmbulanceBooking, error) {
	if err := Authorize(actor, ActionManageAmbulanceBooking, actor.UserID); err != nil {
		return nil, err
	}
	bookings, err := s.repository.ListByUser(ctx, actor.UserID)
	if err != nil {
		return nil, storageErr("list ambulance bookings", err)
	}
	return bookings, nil
}

// Delete withdraws a booking that has not been dispatched yet.
func (s *AmbulanceService) Delete(ctx context.Context, actor models.Actor, id uint) error {
	booking, err := s.Get(ctx, actor, id)
	if err != nil {
		return err
	}
	if booking.Status != models.AmbulanceRequested {
		return invalidField("status", "only requested bookings can be deleted")
	}
	if err := s.repository.Delete(ctx, id); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return ErrNotFound
		}
		return storageErr("delete ambulance booking", err)
	}
	return nil
}

// UpdateStatus advances a booking along its dispatch lifecycle. It is an
// operator action with no session actor.
func (s *AmbulanceService) UpdateStatus(ctx context.Context, id uint, update models.DispatchUpdate) (booking *models.AmbulanceBooking, err error) {
	ctx, span := startSpan(ctx, "AmbulanceService.UpdateStatus", attribute.Int64("booking_id", int64(id)))
	defer func() { endSpan(span, err) }()

	booking, err = s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if !booking.Status.CanTransitionTo(update.Status) {
		return nil, ErrInvalidTransition
	}
	if update.Status == models.AmbulanceDispatched && strings.TrimSpace(update.AmbulanceNumber) == "" {
		return nil, invalidField("ambulance_number", "required when dispatching")
	}

	booking.Status = update.Status
	if update.AmbulanceNumber != "" {
		booking.AmbulanceNumber = update.AmbulanceNumber
	}
	if update.DriverName != "" {
		booking.DriverName = update.DriverName
	}
	if update.DriverPhone != "" {
		booking.DriverPhone = update.DriverPhone
	}
	if update.EstimatedArrival != nil {
		booking.EstimatedArrival = update.EstimatedArrival
	}
	if err := s.repository.Update(ctx, booking); err != nil {
		return nil, storageErr("update ambulance booking", err)
	}
	s.log.Info("ambulance booking updated", zap.Uint("booking_id", id), zap.String("status", string(update.Status)))
	return booking, nil
}

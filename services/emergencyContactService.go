package services

import (
	"SmartClinic/models"
	"SmartClinic/repositories"
	"SmartClinic/utils"
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"
)

type EmergencyContactService struct {
	repository repositories.EmergencyContactRepository
	log        *zap.Logger
}

func NewEmergencyContactService(repository repositories.EmergencyContactRepository, log *zap.Logger) *EmergencyContactService {
	return &EmergencyContactService{repository: repository, log: log}
}

// Create adds a contact for the acting user. A primary contact replaces any
// previous primary.
func (s *EmergencyContactService) Create(ctx context.Context, actor models.Actor, in models.EmergencyContactInput) (*models.EmergencyContact, error) {
	if err := Authorize(actor, ActionManageEmergencyContacts, actor.UserID); err != nil {
		return nil, err
	}
	if err := utils.ValidateEmergencyContact(in); err != nil {
		return nil, fromOzzo(err)
	}
	contact := &models.EmergencyContact{
		UserID:       actor.UserID,
		Name:         strings.TrimSpace(in.Name),
		Relationship: in.Relationship,
		Phone:        in.Phone,
		Email:        in.Email,
		IsPrimary:    in.IsPrimary,
	}
	if err := s.repository.Create(ctx, contact); err != nil {
		s.log.Error("failed to create emergency contact", zap.Uint("user_id", actor.UserID), zap.Error(err))
		return nil, storageErr("create emergency contact", err)
	}
	return contact, nil
}

// List returns the acting user's contacts, primary first.
func (s *EmergencyContactService) List(ctx context.Context, actor models.Actor) ([]models.EmergencyContact, error) {
	if err := Authorize(actor, ActionManageEmergencyContacts, actor.UserID); err != nil {
		return nil, err
	}
	contacts, err := s.repository.ListByUser(ctx, actor.UserID)
	if err != nil {
		return nil, storageErr("list emergency contacts", err)
	}
	return contacts, nil
}

func (s *EmergencyContactService) owned(ctx context.Context, actor models.Actor, id uint) (*models.EmergencyContact, error) {
	if actor.UserID == 0 {
		return nil, ErrUnauthorized
	}
	contact, err := s.repository.GetByID(ctx, id)
	if err != nil {
		return nil, storageErr("get emergency contact", err)
	}
	if contact == nil {
		return nil, ErrNotFound
	}
	if err := Authorize(actor, ActionManageEmergencyContacts, contact.UserID); err != nil {
		return nil, err
	}
	return contact, nil
}

// SetPrimary makes the contact the user's only primary one. Repeating the
// call leaves the same single primary.
func (s *EmergencyContactService) SetPrimary(ctx context.Context, actor models.Actor, id uint) (*models.EmergencyContact, error) {
	contact, err := s.owned(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if err := s.repository.SetPrimary(ctx, actor.UserID, id); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrNotFound
		}
		s.log.Error("failed to set primary contact", zap.Uint("contact_id", id), zap.Error(err))
		return nil, storageErr("set primary contact", err)
	}
	contact.IsPrimary = true
	return contact, nil
}

func (s *EmergencyContactService) Delete(ctx context.Context, actor models.Actor, id uint) error {
	if _, err := s.owned(ctx, actor, id); err != nil {
		return err
	}
	if err := s.repository.Delete(ctx, id); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return ErrNotFound
		}
		return storageErr("delete emergency contact", err)
	}
	return nil
}

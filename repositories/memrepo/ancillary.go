package memrepo

import (
	"SmartClinic/models"
	"SmartClinic/repositories"
	"context"
	"sort"
)

type ContactRepo struct{ s *state }

func (r *ContactRepo) Create(ctx context.Context, contact *models.EmergencyContact) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if contact.IsPrimary {
		r.clearPrimary(contact.UserID)
	}
	contact.ID = r.s.id()
	contact.CreatedAt = r.s.now()
	r.s.contacts[contact.ID] = *contact
	return nil
}

func (r *ContactRepo) clearPrimary(userID uint) {
	for id, c := range r.s.contacts {
		if c.UserID == userID && c.IsPrimary {
			c.IsPrimary = false
			r.s.contacts[id] = c
		}
	}
}

func (r *ContactRepo) GetByID(ctx context.Context, id uint) (*models.EmergencyContact, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c, ok := r.s.contacts[id]
	if !ok {
		return nil, nil
	}
	return &c, nil
}

func (r *ContactRepo) ListByUser(ctx context.Context, userID uint) ([]models.EmergencyContact, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []models.EmergencyContact
	for _, c := range r.s.contacts {
		if c.UserID == userID {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].IsPrimary != out[j].IsPrimary {
			return out[i].IsPrimary
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (r *ContactRepo) SetPrimary(ctx context.Context, userID, id uint) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c, ok := r.s.contacts[id]
	if !ok || c.UserID != userID {
		return repositories.ErrNotFound
	}
	r.clearPrimary(userID)
	c.IsPrimary = true
	r.s.contacts[id] = c
	return nil
}

func (r *ContactRepo) Delete(ctx context.Context, id uint) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.contacts[id]; !ok {
		return repositories.ErrNotFound
	}
	delete(r.s.contacts, id)
	return nil
}

type AmbulanceRepo struct{ s *state }

func (r *AmbulanceRepo) Create(ctx context.Context, booking *models.AmbulanceBooking) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	booking.ID = r.s.id()
	booking.CreatedAt = r.s.now()
	booking.UpdatedAt = booking.CreatedAt
	r.s.ambulances[booking.ID] = *booking
	return nil
}

func (r *AmbulanceRepo) GetByID(ctx context.Context, id uint) (*models.AmbulanceBooking, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	b, ok := r.s.ambulances[id]
	if !ok {
		return nil, nil
	}
	return &b, nil
}

func (r *AmbulanceRepo) ListByUser(ctx context.Context, userID uint) ([]models.AmbulanceBooking, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []models.AmbulanceBooking
	for _, b := range r.s.ambulances {
		if b.UserID == userID {
			out = append(out, b)
		}
	}
	// ids grow with creation time
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (r *AmbulanceRepo) Update(ctx context.Context, booking *models.AmbulanceBooking) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	stored, ok := r.s.ambulances[booking.ID]
	if !ok {
		return repositories.ErrNotFound
	}
	stored.Status = booking.Status
	stored.AmbulanceNumber = booking.AmbulanceNumber
	stored.DriverName = booking.DriverName
	stored.DriverPhone = booking.DriverPhone
	stored.EstimatedArrival = booking.EstimatedArrival
	stored.UpdatedAt = r.s.now()
	r.s.ambulances[booking.ID] = stored
	return nil
}

func (r *AmbulanceRepo) Delete(ctx context.Context, id uint) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.ambulances[id]; !ok {
		return repositories.ErrNotFound
	}
	delete(r.s.ambulances, id)
	return nil
}

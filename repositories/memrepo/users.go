package memrepo

import (
	"SmartClinic/models"
	"SmartClinic/repositories"
	"context"
	"sort"
)

type UserRepo struct{ s *state }

func (r *UserRepo) EmailExists(ctx context.Context, email string) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.s.emailTaken(email), nil
}

func (r *UserRepo) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for id, u := range r.s.users {
		if u.Email == email {
			return r.s.user(id), nil
		}
	}
	return nil, nil
}

func (r *UserRepo) GetUserByID(ctx context.Context, userID uint) (*models.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u := r.s.user(userID)
	if u == nil {
		return nil, nil
	}
	if p, ok := r.s.profiles[userID]; ok {
		u.PatientProfile = &p
	}
	for id, d := range r.s.doctors {
		if d.UserID == userID {
			u.DoctorProfile = r.s.doctor(id)
			u.DoctorProfile.User = nil
		}
	}
	for _, h := range r.s.hospitals {
		if h.AdminID == userID {
			h.Doctors = nil
			u.Hospital = &h
		}
	}
	return u, nil
}

func (r *UserRepo) CreateUser(ctx context.Context, user *models.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.emailTaken(user.Email) {
		return repositories.ErrDuplicate
	}
	user.ID = r.s.id()
	user.CreatedAt = r.s.now()
	stored := *user
	stored.PatientProfile, stored.DoctorProfile, stored.Hospital = nil, nil, nil
	r.s.users[user.ID] = stored

	if user.PatientProfile != nil {
		user.PatientProfile.UserID = user.ID
		r.s.profiles[user.ID] = *user.PatientProfile
	}
	if user.Hospital != nil {
		user.Hospital.AdminID = user.ID
		user.Hospital.ID = r.s.id()
		user.Hospital.CreatedAt = r.s.now()
		r.s.hospitals[user.Hospital.ID] = *user.Hospital
	}
	return nil
}

func (r *UserRepo) UpdateUserProfile(ctx context.Context, user *models.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	stored, ok := r.s.users[user.ID]
	if !ok {
		return repositories.ErrNotFound
	}
	stored.Name = user.Name
	stored.Phone = user.Phone
	r.s.users[user.ID] = stored
	if user.PatientProfile != nil {
		user.PatientProfile.UserID = user.ID
		r.s.profiles[user.ID] = *user.PatientProfile
	}
	return nil
}

func (r *UserRepo) UpdateUserPassword(ctx context.Context, userID uint, passwordHash string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	stored, ok := r.s.users[userID]
	if !ok {
		return repositories.ErrNotFound
	}
	stored.PasswordHash = passwordHash
	r.s.users[userID] = stored
	return nil
}

func (r *UserRepo) GetAllUsers(ctx context.Context) ([]models.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := make([]models.User, 0, len(r.s.users))
	for id := range r.s.users {
		out = append(out, *r.s.user(id))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *UserRepo) CountByRole(ctx context.Context, role models.Role) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var n int64
	for _, u := range r.s.users {
		if u.Role == role {
			n++
		}
	}
	return n, nil
}

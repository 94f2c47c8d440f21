package utils

import (
	"SmartClinic/models"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/o1egl/paseto"
)

var (
	ErrTokenInvalid        = errors.New("invalid session token")
	ErrTokenExpired        = errors.New("session token expired")
	ErrInvalidSymmetricKey = errors.New("symmetric key must be 32 bytes long")
)

// SessionClaims is the data carried in the session token.
type SessionClaims struct {
	TokenID string      `json:"jti"`
	UserID  uint        `json:"userId"`
	Role    models.Role `json:"role"`
	Name    string      `json:"name"`
	Expiry  time.Time   `json:"expiry"`
}

// Actor returns the caller identity carried by the claims.
func (c *SessionClaims) Actor() models.Actor {
	return models.Actor{UserID: c.UserID, Role: c.Role, Name: c.Name}
}

// TokenMaker issues and verifies PASETO v2 local session tokens.
type TokenMaker struct {
	symmetricKey []byte
	ttl          time.Duration
	now          func() time.Time
}

// NewTokenMaker ensures the key has the correct length (32 bytes).
func NewTokenMaker(symmetricKey []byte, ttl time.Duration) (*TokenMaker, error) {
	if len(symmetricKey) != 32 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidSymmetricKey, len(symmetricKey))
	}
	return &TokenMaker{symmetricKey: symmetricKey, ttl: ttl, now: time.Now}, nil
}

// TTL is the lifetime of issued tokens.
func (m *TokenMaker) TTL() time.Duration {
	return m.ttl
}

// GenerateToken issues a session token for the actor.
func (m *TokenMaker) GenerateToken(actor models.Actor) (string, *SessionClaims, error) {
	claims := &SessionClaims{
		TokenID: uuid.New().String(),
		UserID:  actor.UserID,
		Role:    actor.Role,
		Name:    actor.Name,
		Expiry:  m.now().Add(m.ttl),
	}

	token, err := paseto.NewV2().Encrypt(m.symmetricKey, claims, nil)
	if err != nil {
		return "", nil, fmt.Errorf("failed to generate token: %w", err)
	}
	return token, claims, nil
}

// ValidateToken decrypts the token and checks its claims and expiry.
func (m *TokenMaker) ValidateToken(tokenString string) (*SessionClaims, error) {
	var claims SessionClaims
	if err := paseto.NewV2().Decrypt(tokenString, m.symmetricKey, &claims, nil); err != nil {
		return nil, ErrTokenInvalid
	}

	if claims.UserID == 0 || !claims.Role.IsValid() {
		return nil, ErrTokenInvalid
	}

	if m.now().After(claims.Expiry) {
		return nil, ErrTokenExpired
	}
	return &claims, nil
}

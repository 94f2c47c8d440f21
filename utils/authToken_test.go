package utils

import (
	"SmartClinic/models"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testKey = []byte(strings.Repeat("k", 32))

func TestNewTokenMaker_KeyLength(t *testing.T) {
	_, err := NewTokenMaker([]byte("short"), time.Hour)
	assert.ErrorIs(t, err, ErrInvalidSymmetricKey)

	maker, err := NewTokenMaker(testKey, time.Hour)
	require.NoError(t, err)
	assert.Equal(t, time.Hour, maker.TTL())
}

func TestTokenMaker_RoundTrip(t *testing.T) {
	maker, err := NewTokenMaker(testKey, time.Hour)
	require.NoError(t, err)

	actor := models.Actor{UserID: 7, Role: models.RoleDoctor, Name: "Dr. Rao"}
	token, issued, err := maker.GenerateToken(actor)
	require.NoError(t, err)
	assert.NotEmpty(t, issued.TokenID)

	claims, err := maker.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, actor, claims.Actor())
	assert.Equal(t, issued.TokenID, claims.TokenID)
}

func TestTokenMaker_UniqueTokenIDs(t *testing.T) {
	maker, err := NewTokenMaker(testKey, time.Hour)
	require.NoError(t, err)

	actor := models.Actor{UserID: 1, Role: models.RolePatient, Name: "Pat"}
	_, first, err := maker.GenerateToken(actor)
	require.NoError(t, err)
	_, second, err := maker.GenerateToken(actor)
	require.NoError(t, err)
	assert.NotEqual(t, first.TokenID, second.TokenID)
}

func TestTokenMaker_Expired(t *testing.T) {
	maker, err := NewTokenMaker(testKey, time.Minute)
	require.NoError(t, err)

	issuedAt := time.Date(2030, 1, 1, 10, 0, 0, 0, time.UTC)
	maker.now = func() time.Time { return issuedAt }
	token, _, err := maker.GenerateToken(models.Actor{UserID: 1, Role: models.RolePatient})
	require.NoError(t, err)

	maker.now = func() time.Time { return issuedAt.Add(2 * time.Minute) }
	_, err = maker.ValidateToken(token)
	assert.ErrorIs(t, err, ErrTokenExpired)
}

func TestTokenMaker_RejectsForeignKeyAndGarbage(t *testing.T) {
	maker, err := NewTokenMaker(testKey, time.Hour)
	require.NoError(t, err)
	other, err := NewTokenMaker([]byte(strings.Repeat("x", 32)), time.Hour)
	require.NoError(t, err)

	token, _, err := other.GenerateToken(models.Actor{UserID: 1, Role: models.RolePatient})
	require.NoError(t, err)

	_, err = maker.ValidateToken(token)
	assert.ErrorIs(t, err, ErrTokenInvalid)

	_, err = maker.ValidateToken("v2.local.garbage")
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestPassword_HashAndCheck(t *testing.T) {
	hash, err := HashPassword("pw1")
	require.NoError(t, err)
	assert.NotEqual(t, "pw1", hash)
	assert.True(t, CheckPassword(hash, "pw1"))
	assert.False(t, CheckPassword(hash, "pw2"))
}

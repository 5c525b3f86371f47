package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJWTManager_AccessTokenRoundTrip(t *testing.T) {
	m := NewJWTManager("secret", time.Hour, 24*time.Hour)

	token, err := m.GenerateAccessToken("admin-1", "ops@example.com", RoleAdmin)
	require.NoError(t, err)

	claims, err := m.ValidateAccessToken(token)
	require.NoError(t, err)
	assert.Equal(t, "admin-1", claims.Subject)
	assert.Equal(t, "ops@example.com", claims.Email)
	assert.Equal(t, RoleAdmin, claims.Role)
}

func TestJWTManager_RejectsWrongPurpose(t *testing.T) {
	m := NewJWTManager("secret", time.Hour, 24*time.Hour)

	approval, err := m.GenerateApprovalToken("new@example.com")
	require.NoError(t, err)

	_, err = m.ValidateAccessToken(approval)
	assert.ErrorIs(t, err, ErrInvalidToken)

	claims, err := m.ValidateApprovalToken(approval)
	require.NoError(t, err)
	assert.Equal(t, "new@example.com", claims.Email)
}

func TestJWTManager_RejectsExpiredAndForeignTokens(t *testing.T) {
	issued := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	m := NewJWTManager("secret", time.Hour, time.Hour)
	m.now = func() time.Time { return issued }

	token, err := m.GenerateAccessToken("a", "a@example.com", RoleAdmin)
	require.NoError(t, err)

	m.now = func() time.Time { return issued.Add(2 * time.Hour) }
	_, err = m.ValidateAccessToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)

	other := NewJWTManager("other-secret", time.Hour, time.Hour)
	foreign, err := other.GenerateAccessToken("a", "a@example.com", RoleAdmin)
	require.NoError(t, err)
	_, err = NewJWTManager("secret", time.Hour, time.Hour).ValidateAccessToken(foreign)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("correct horse")
	require.NoError(t, err)

	assert.True(t, IsBcryptHash(hash))
	assert.True(t, CheckPassword(hash, "correct horse"))
	assert.False(t, CheckPassword(hash, "wrong"))
	assert.False(t, CheckPassword("$2a$10$placeholder_hash_here", "anything"))
	assert.False(t, IsBcryptHash("$2a$10$placeholder_hash_here"))

	assert.ErrorIs(t, ValidatePassword("short"), ErrWeakPassword)
	assert.NoError(t, ValidatePassword("long enough"))
}

package jwt

import (
	"crypto/rand"
	"crypto/rsa"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"helpdesk-service/internal/domain/auth"
)

func newTestManager(t *testing.T, ttl time.Duration) *Manager {
	t.Helper()

	priv, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	return &Manager{
		Generator: NewGenerator(priv, "helpdesk", "helpdesk-clients", "test-key", ttl),
		Verifier:  NewVerifier(&priv.PublicKey, "helpdesk", "helpdesk-clients"),
	}
}

func testUser() *auth.User {
	return &auth.User{ID: 42, Email: "a@x.com", Status: auth.StatusActive}
}

func TestAccessTokenRoundTrip(t *testing.T) {
	m := newTestManager(t, time.Hour)
	companyID := int64(7)

	roleSet := []auth.RoleAssignment{
		{Code: auth.RoleAgent, CompanyID: &companyID},
		{Code: auth.RoleUser},
	}
	active := roleSet[0]

	signed, jti, err := m.Generator.GenerateAccessToken(testUser(), 99, roleSet, &active)
	require.NoError(t, err)
	require.NotEmpty(t, jti)

	claims, err := m.Verifier.Verify(signed)
	require.NoError(t, err)

	assert.Equal(t, int64(42), claims.UserID)
	assert.Equal(t, "a@x.com", claims.Email)
	assert.Equal(t, int64(99), claims.SessionID)
	assert.Equal(t, "42", claims.Subject)
	assert.Equal(t, jti, claims.ID)
	assert.Equal(t, roleSet, claims.Roles)
	require.NotNil(t, claims.ActiveRole)
	assert.True(t, claims.ActiveRole.Equal(active))
}

func TestNullActiveRoleSurvivesRoundTrip(t *testing.T) {
	m := newTestManager(t, time.Hour)

	roleSet := []auth.RoleAssignment{{Code: auth.RoleUser}, {Code: auth.RolePlatformAdmin}}
	signed, _, err := m.Generator.GenerateAccessToken(testUser(), 1, roleSet, nil)
	require.NoError(t, err)

	claims, err := m.Verifier.Verify(signed)
	require.NoError(t, err)
	assert.Nil(t, claims.ActiveRole)
	assert.Len(t, claims.Roles, 2)
}

func TestExpiredTokenFailsClosed(t *testing.T) {
	m := newTestManager(t, -time.Minute)

	signed, _, err := m.Generator.GenerateAccessToken(testUser(), 1, []auth.RoleAssignment{{Code: auth.RoleUser}}, nil)
	require.NoError(t, err)

	_, err = m.Verifier.Verify(signed)
	assert.Error(t, err)
}

func TestVerifyAllowExpiredRecoversClaims(t *testing.T) {
	m := newTestManager(t, -time.Minute)
	companyID := int64(3)
	active := auth.RoleAssignment{Code: auth.RoleCompanyAdmin, CompanyID: &companyID}

	signed, _, err := m.Generator.GenerateAccessToken(testUser(), 5, []auth.RoleAssignment{active}, &active)
	require.NoError(t, err)

	claims, err := m.Verifier.VerifyAllowExpired(signed)
	require.NoError(t, err)
	require.NotNil(t, claims.ActiveRole)
	assert.True(t, claims.ActiveRole.Equal(active))
	assert.Equal(t, int64(5), claims.SessionID)
}

func TestWrongKeyRejected(t *testing.T) {
	m := newTestManager(t, time.Hour)
	other := newTestManager(t, time.Hour)

	signed, _, err := m.Generator.GenerateAccessToken(testUser(), 1, []auth.RoleAssignment{{Code: auth.RoleUser}}, nil)
	require.NoError(t, err)

	_, err = other.Verifier.Verify(signed)
	assert.Error(t, err)

	_, err = other.Verifier.VerifyAllowExpired(signed)
	assert.Error(t, err)
}

func TestWrongIssuerRejected(t *testing.T) {
	priv, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	gen := NewGenerator(priv, "someone-else", "helpdesk-clients", "", time.Hour)
	ver := NewVerifier(&priv.PublicKey, "helpdesk", "helpdesk-clients")

	signed, _, err := gen.GenerateAccessToken(testUser(), 1, []auth.RoleAssignment{{Code: auth.RoleUser}}, nil)
	require.NoError(t, err)

	_, err = ver.Verify(signed)
	assert.Error(t, err)
}

package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/noah-isme/sma-dashboard-api/internal/models"
	"github.com/noah-isme/sma-dashboard-api/internal/store"
	appErrors "github.com/noah-isme/sma-dashboard-api/pkg/errors"
)

type stubCredentials map[string]store.Credential

func (s stubCredentials) LookupCredential(username string) (store.Credential, bool) {
	cred, ok := s[username]
	return cred, ok
}

func newAuthForTest(creds stubCredentials) *AuthService {
	return NewAuthService(creds, nil, nil, AuthConfig{Secret: "test-secret", Expiration: time.Hour, Issuer: "dashboard"})
}

func TestLoginIssuesIdentityToken(t *testing.T) {
	auth := newAuthForTest(stubCredentials{
		"siti": {Username: "siti", Secret: "Sekolah123", Role: models.RoleTeacher, DisplayName: "Siti Rahma"},
	})

	resp, err := auth.Login(LoginRequest{Username: "siti", Password: "Sekolah123"})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.AccessToken)
	assert.Equal(t, models.RoleTeacher, resp.Identity.Role)

	claims, err := auth.ValidateToken(resp.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "siti", claims.Subject)
	assert.Equal(t, models.Identity{Role: models.RoleTeacher, DisplayName: "Siti Rahma"}, claims.Identity())
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	auth := newAuthForTest(stubCredentials{
		"siti": {Username: "siti", Secret: "Sekolah123", Role: models.RoleTeacher, DisplayName: "Siti Rahma"},
	})

	_, err := auth.Login(LoginRequest{Username: "siti", Password: "wrong"})
	assert.Equal(t, appErrors.ErrInvalidCredentials.Code, appErrors.FromError(err).Code)

	_, err = auth.Login(LoginRequest{Username: "nobody", Password: "Sekolah123"})
	assert.Equal(t, appErrors.ErrInvalidCredentials.Code, appErrors.FromError(err).Code)

	_, err = auth.Login(LoginRequest{Username: "", Password: ""})
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestLoginAcceptsHashedSeedSecrets(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("Admin123"), bcrypt.MinCost)
	require.NoError(t, err)

	auth := newAuthForTest(stubCredentials{
		"admin": {Username: "admin", Secret: string(hash), Role: models.RoleAdmin, DisplayName: "Administrator"},
	})

	resp, err := auth.Login(LoginRequest{Username: "admin", Password: "Admin123"})
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, resp.Identity.Role)

	_, err = auth.Login(LoginRequest{Username: "admin", Password: "Admin124"})
	assert.Error(t, err)
}

func TestValidateTokenRejectsTampering(t *testing.T) {
	auth := newAuthForTest(stubCredentials{
		"siti": {Username: "siti", Secret: "Sekolah123", Role: models.RoleTeacher, DisplayName: "Siti Rahma"},
	})
	resp, err := auth.Login(LoginRequest{Username: "siti", Password: "Sekolah123"})
	require.NoError(t, err)

	other := NewAuthService(nil, nil, nil, AuthConfig{Secret: "different-secret", Expiration: time.Hour})
	_, err = other.ValidateToken(resp.AccessToken)
	assert.Error(t, err)

	_, err = auth.ValidateToken("not-a-token")
	assert.Error(t, err)
}

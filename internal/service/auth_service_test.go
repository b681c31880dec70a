package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/noah-isme/presensi-qr-api/internal/models"
	"github.com/noah-isme/presensi-qr-api/pkg/config"
	appErrors "github.com/noah-isme/presensi-qr-api/pkg/errors"
)

type fakeSessionState struct {
	authenticated bool
	calls         int
}

func (f *fakeSessionState) SetAuthenticated(_ context.Context, authenticated bool) error {
	f.authenticated = authenticated
	f.calls++
	return nil
}

func newAuthFixture(t *testing.T, state *fakeSessionState) *AuthService {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("rahasia123"), bcrypt.MinCost)
	require.NoError(t, err)
	return NewAuthService(state, nil, nil, config.AuthConfig{
		AdminUsername:     "admin",
		AdminPasswordHash: string(hash),
		JWTSecret:         "test_secret",
		JWTExpiration:     time.Hour,
		Issuer:            "presensi-qr-api",
	})
}

func TestAuthLoginIssuesValidToken(t *testing.T) {
	state := &fakeSessionState{}
	svc := newAuthFixture(t, state)

	resp, err := svc.Login(context.Background(), models.LoginRequest{
		Username: "admin",
		Password: "rahasia123",
	})
	require.NoError(t, err)
	assert.Equal(t, "admin", resp.Username)
	assert.Equal(t, int64(3600), resp.ExpiresIn)
	assert.True(t, state.authenticated)

	claims, err := svc.ValidateToken(resp.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "admin", claims.Username)
	assert.Equal(t, "presensi-qr-api", claims.Issuer)
}

func TestAuthLoginWrongPassword(t *testing.T) {
	state := &fakeSessionState{}
	svc := newAuthFixture(t, state)

	_, err := svc.Login(context.Background(), models.LoginRequest{
		Username: "admin",
		Password: "salah",
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInvalidCredentials.Code, appErrors.FromError(err).Code)
	assert.False(t, state.authenticated)
}

func TestAuthLoginWrongUsername(t *testing.T) {
	svc := newAuthFixture(t, &fakeSessionState{})

	_, err := svc.Login(context.Background(), models.LoginRequest{
		Username: "root",
		Password: "rahasia123",
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInvalidCredentials.Code, appErrors.FromError(err).Code)
}

func TestAuthLogoutClearsSession(t *testing.T) {
	state := &fakeSessionState{authenticated: true}
	svc := newAuthFixture(t, state)

	require.NoError(t, svc.Logout(context.Background()))
	assert.False(t, state.authenticated)
}

func TestAuthValidateTokenRejectsGarbage(t *testing.T) {
	svc := newAuthFixture(t, &fakeSessionState{})

	_, err := svc.ValidateToken("not.a.token")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrUnauthorized.Code, appErrors.FromError(err).Code)
}

func TestAuthValidateTokenRejectsForeignSignature(t *testing.T) {
	state := &fakeSessionState{}
	issuer := newAuthFixture(t, state)

	resp, err := issuer.Login(context.Background(), models.LoginRequest{
		Username: "admin",
		Password: "rahasia123",
	})
	require.NoError(t, err)

	hash, err := bcrypt.GenerateFromPassword([]byte("rahasia123"), bcrypt.MinCost)
	require.NoError(t, err)
	other := NewAuthService(state, nil, nil, config.AuthConfig{
		AdminUsername:     "admin",
		AdminPasswordHash: string(hash),
		JWTSecret:         "different_secret",
		JWTExpiration:     time.Hour,
	})

	_, err = other.ValidateToken(resp.AccessToken)
	require.Error(t, err)
}

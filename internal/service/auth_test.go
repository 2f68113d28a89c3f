package service

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/tobiasgaitan/TiendaLasMotos-sub001/internal/model"
)

func newTestAuthService(t *testing.T) *AuthService {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("motos-2024!"), bcrypt.MinCost)
	require.NoError(t, err)
	return NewAuthService("admin", string(hash), "test-secret", time.Hour, newTestLogger())
}

func TestSignIn(t *testing.T) {
	svc := newTestAuthService(t)

	token, err := svc.SignIn(context.Background(), model.SignInInput{Username: "admin", Password: "motos-2024!"})
	require.NoError(t, err)

	subject, err := svc.ParseToken(token)
	require.NoError(t, err)
	assert.Equal(t, "admin", subject)
}

func TestSignIn_InvalidCredentials(t *testing.T) {
	svc := newTestAuthService(t)

	_, err := svc.SignIn(context.Background(), model.SignInInput{Username: "admin", Password: "otra-clave"})
	assert.ErrorIs(t, err, model.ErrInvalidCredentials)

	_, err = svc.SignIn(context.Background(), model.SignInInput{Username: "vendedor", Password: "motos-2024!"})
	assert.ErrorIs(t, err, model.ErrInvalidCredentials)

	_, err = svc.SignIn(context.Background(), model.SignInInput{Username: "admin", Password: "corta"})
	assert.ErrorIs(t, err, model.ErrInvalidInput)
}

func TestSignIn_DisabledWithoutHash(t *testing.T) {
	svc := NewAuthService("admin", "", "test-secret", time.Hour, newTestLogger())

	_, err := svc.SignIn(context.Background(), model.SignInInput{Username: "admin", Password: "cualquier-clave"})
	assert.ErrorIs(t, err, model.ErrInvalidCredentials)
}

func TestParseToken_Rejects(t *testing.T) {
	svc := newTestAuthService(t)

	expired := newTestAuthService(t)
	expired.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	old, err := expired.GenerateJWTToken("admin")
	require.NoError(t, err)
	_, err = svc.ParseToken(old)
	assert.Error(t, err)

	other := NewAuthService("admin", "", "otro-secreto", time.Hour, newTestLogger())
	forged, err := other.GenerateJWTToken("admin")
	require.NoError(t, err)
	_, err = svc.ParseToken(forged)
	assert.Error(t, err)

	none, err := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.RegisteredClaims{Subject: "admin"}).
		SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)
	_, err = svc.ParseToken(none)
	assert.Error(t, err)

	_, err = svc.ParseToken("no-es-un-token")
	assert.Error(t, err)
}

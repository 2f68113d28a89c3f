package service

import (
	"context"
	"crypto/subtle"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"

	"github.com/tobiasgaitan/TiendaLasMotos-sub001/internal/model"
)

// AuthService autentica al administrador de la consola de cotizaciones
type AuthService struct {
	adminUser         string
	adminPasswordHash []byte
	jwtSecret         string
	tokenExpiry       time.Duration
	now               func() time.Time
	logger            *logrus.Logger
}

func NewAuthService(adminUser, adminPasswordHash, jwtSecret string, tokenExpiry time.Duration, logger *logrus.Logger) *AuthService {
	if adminPasswordHash == "" {
		logger.Warn("ADMIN_PASSWORD_HASH vacío: el acceso administrativo queda deshabilitado")
	}
	return &AuthService{
		adminUser:         adminUser,
		adminPasswordHash: []byte(adminPasswordHash),
		jwtSecret:         jwtSecret,
		tokenExpiry:       tokenExpiry,
		now:               time.Now,
		logger:            logger,
	}
}

// SignIn valida las credenciales del administrador y genera el JWT
func (s *AuthService) SignIn(ctx context.Context, input model.SignInInput) (string, error) {
	s.logger.WithField("username", input.Username).Info("Intento de inicio de sesión")

	if err := input.Validate(); err != nil {
		return "", err
	}

	if len(s.adminPasswordHash) == 0 ||
		subtle.ConstantTimeCompare([]byte(input.Username), []byte(s.adminUser)) != 1 {
		s.logger.Warn("Usuario desconocido en inicio de sesión")
		return "", model.ErrInvalidCredentials
	}

	// Verificación de la contraseña
	if err := bcrypt.CompareHashAndPassword(s.adminPasswordHash, []byte(input.Password)); err != nil {
		s.logger.Warn("Contraseña incorrecta en inicio de sesión")
		return "", model.ErrInvalidCredentials
	}

	token, err := s.GenerateJWTToken(input.Username)
	if err != nil {
		s.logger.WithError(err).Error("No se pudo generar el token JWT")
		return "", fmt.Errorf("failed to generate token: %w", err)
	}

	s.logger.WithField("username", input.Username).Info("Administrador autenticado")
	return token, nil
}

func (s *AuthService) GenerateJWTToken(subject string) (string, error) {
	now := s.now()
	claims := jwt.RegisteredClaims{
		Subject:   subject,
		ExpiresAt: jwt.NewNumericDate(now.Add(s.tokenExpiry)),
		IssuedAt:  jwt.NewNumericDate(now),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.jwtSecret))
}

// ParseToken valida firma y vigencia; devuelve el subject
func (s *AuthService) ParseToken(tokenString string) (string, error) {
	claims := &jwt.RegisteredClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return []byte(s.jwtSecret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(s.now))

	if err != nil || !token.Valid {
		s.logger.WithError(err).Warn("Token JWT inválido")
		return "", fmt.Errorf("invalid token: %w", err)
	}

	if claims.Subject == "" {
		s.logger.Error("El token no tiene subject")
		return "", fmt.Errorf("invalid token claims")
	}
	return claims.Subject, nil
}

package service

import (
	"context"
	"time"

	"github.com/gamevault/gamevault/internal/pkg/jwt"
)

// AuthService exchanges the instance password for an access token. There is
// exactly one account, so login carries no identity beyond the password.
type AuthService struct {
	settings *SettingsService
	secret   []byte
	ttl      time.Duration
}

func NewAuthService(settings *SettingsService, secret []byte, ttl time.Duration) *AuthService {
	return &AuthService{settings: settings, secret: secret, ttl: ttl}
}

func (s *AuthService) Login(ctx context.Context, plainPassword string) (string, error) {
	if err := s.settings.VerifyPassword(ctx, plainPassword); err != nil {
		return "", err
	}
	return jwt.GenerateToken(s.secret, s.ttl)
}

// Setup sets the initial password on a fresh instance and returns a token.
func (s *AuthService) Setup(ctx context.Context, plainPassword string) (string, error) {
	if err := s.settings.SetPassword(ctx, "", plainPassword); err != nil {
		return "", err
	}
	return jwt.GenerateToken(s.secret, s.ttl)
}

func (s *AuthService) ParseToken(tokenString string) error {
	_, err := jwt.ParseToken(tokenString, s.secret)
	return err
}

package service

import (
	"context"

	"github.com/gamevault/gamevault/internal/config"
	appErr "github.com/gamevault/gamevault/internal/pkg/errors"
	"github.com/gamevault/gamevault/internal/pkg/password"
	"github.com/gamevault/gamevault/internal/repo"
)

const (
	settingPasswordHash = "password_hash"
	settingSteamAPIKey  = "steam_api_key"
	settingSteamUserID  = "steam_user_id"
)

// SettingsService persists instance-level settings. Values stored here
// override their config-file counterparts, so the Steam API key can be set
// from the UI without a restart.
type SettingsService struct {
	settings *repo.SettingsRepo
	cfg      *config.Config
}

func NewSettingsService(settings *repo.SettingsRepo, cfg *config.Config) *SettingsService {
	return &SettingsService{settings: settings, cfg: cfg}
}

// EffectiveSteamAPIKey prefers the stored key over the configured one.
func (s *SettingsService) EffectiveSteamAPIKey(ctx context.Context) string {
	key, err := s.settings.Get(ctx, settingSteamAPIKey)
	if err == nil && key != "" {
		return key
	}
	return s.cfg.Steam.APIKey
}

func (s *SettingsService) SetSteamAPIKey(ctx context.Context, key string) error {
	if key == "" {
		return s.settings.Delete(ctx, settingSteamAPIKey)
	}
	return s.settings.Set(ctx, settingSteamAPIKey, key)
}

// DefaultSteamUserID remembers the last validated profile for pre-filling
// the import form.
func (s *SettingsService) DefaultSteamUserID(ctx context.Context) string {
	userID, err := s.settings.Get(ctx, settingSteamUserID)
	if err != nil {
		return ""
	}
	return userID
}

func (s *SettingsService) SetDefaultSteamUserID(ctx context.Context, userID string) error {
	return s.settings.Set(ctx, settingSteamUserID, userID)
}

func (s *SettingsService) HasPassword(ctx context.Context) (bool, error) {
	_, err := s.settings.Get(ctx, settingPasswordHash)
	if appErr.IsNotFound(err) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// SetPassword sets the single instance password. When one already exists the
// current password must verify first.
func (s *SettingsService) SetPassword(ctx context.Context, current, next string) error {
	if next == "" {
		return appErr.ErrInvalid
	}
	exists, err := s.HasPassword(ctx)
	if err != nil {
		return err
	}
	if exists {
		if err := s.VerifyPassword(ctx, current); err != nil {
			return err
		}
	}
	hash, err := password.Hash(next)
	if err != nil {
		return err
	}
	return s.settings.Set(ctx, settingPasswordHash, hash)
}

func (s *SettingsService) VerifyPassword(ctx context.Context, plain string) error {
	hash, err := s.settings.Get(ctx, settingPasswordHash)
	if appErr.IsNotFound(err) {
		return appErr.ErrUnauthorized
	}
	if err != nil {
		return err
	}
	if err := password.Compare(hash, plain); err != nil {
		return appErr.ErrUnauthorized
	}
	return nil
}

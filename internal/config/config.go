package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/xxxsen/common/logger"
)

type Config struct {
	DBPath        string          `json:"db_path"`
	JWTSecret     string          `json:"jwt_secret"`
	Port          int             `json:"port"`
	BaseURL       string          `json:"base_url"`
	TokenTTLHours int             `json:"token_ttl_hours"`
	CORSOrigins   []string        `json:"cors_origins"`
	LogConfig     logger.LogConfig `json:"log_config"`
	Library       LibraryConfig   `json:"library"`
	Steam         SteamConfig     `json:"steam"`
	Metadata      MetadataConfig  `json:"metadata"`
	Import        ImportConfig    `json:"import"`
}

type LibraryConfig struct {
	Store            FileStoreConfig `json:"store"`
	ThumbnailQuality int             `json:"thumbnail_quality"`
	MaxUploadSizeMB  int             `json:"max_upload_size_mb"`
}

type FileStoreConfig struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
}

type SteamConfig struct {
	APIKey      string `json:"api_key"`
	RateLimitMS int    `json:"rate_limit_ms"`
}

type MetadataConfig struct {
	SteamGridDBAPIKey string `json:"steamgriddb_api_key"`
	CacheSize         int    `json:"cache_size"`
	CacheTTLMinutes   int    `json:"cache_ttl_minutes"`
}

type ImportConfig struct {
	SessionMaxAgeHours int `json:"session_max_age_hours"`
}

func (l LibraryConfig) MaxUploadSizeBytes() int64 {
	return int64(l.MaxUploadSizeMB) * 1024 * 1024
}

func Load(path string) (*Config, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open config: %w", err)
	}
	defer file.Close()

	var cfg Config
	if err := json.NewDecoder(file).Decode(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if cfg.DBPath == "" {
		return nil, fmt.Errorf("db_path is required")
	}
	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("jwt_secret is required")
	}
	if cfg.Port == 0 {
		return nil, fmt.Errorf("port is required")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = fmt.Sprintf("http://localhost:%d", cfg.Port)
	}
	if cfg.TokenTTLHours == 0 {
		cfg.TokenTTLHours = 24 * 30
	}
	if cfg.LogConfig.Level == "" {
		cfg.LogConfig.Level = "info"
	}
	if cfg.Library.Store.Type == "" {
		return nil, fmt.Errorf("library.store.type is required")
	}
	if cfg.Library.ThumbnailQuality == 0 {
		cfg.Library.ThumbnailQuality = 85
	}
	if cfg.Library.MaxUploadSizeMB == 0 {
		cfg.Library.MaxUploadSizeMB = 50
	}
	if cfg.Steam.RateLimitMS == 0 {
		cfg.Steam.RateLimitMS = 1000
	}
	if cfg.Metadata.CacheSize == 0 {
		cfg.Metadata.CacheSize = 256
	}
	if cfg.Metadata.CacheTTLMinutes == 0 {
		cfg.Metadata.CacheTTLMinutes = 60
	}
	if cfg.Import.SessionMaxAgeHours == 0 {
		cfg.Import.SessionMaxAgeHours = 24
	}
	return &cfg, nil
}

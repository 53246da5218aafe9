package service

import (
	"bytes"
	"database/sql"
	"image"
	"image/color"
	"image/jpeg"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/gamevault/gamevault/internal/config"
	"github.com/gamevault/gamevault/internal/filestore"
	"github.com/gamevault/gamevault/internal/repo"
)

type fixture struct {
	db          *sql.DB
	games       *repo.GameRepo
	shots       *repo.ScreenshotRepo
	annotations *repo.AnnotationRepo
	shares      *repo.ShareRepo
	sessions    *repo.ImportSessionRepo
	settings    *repo.SettingsRepo
	fts         *repo.FTSRepo
	store       filestore.Store

	cfg *config.Config

	settingsService   *SettingsService
	authService       *AuthService
	gameService       *GameService
	screenshotService *ScreenshotService
	uploadService     *UploadService
	shareService      *ShareService
	searchService     *SearchService
	timelineService   *TimelineService
}

func newFixture(t *testing.T) *fixture {
	dir := t.TempDir()
	db, err := repo.Open(filepath.Join(dir, "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, repo.ApplyMigrations(db))

	store, err := filestore.New(config.FileStoreConfig{
		Type: "local",
		Data: map[string]interface{}{"dir": filepath.Join(dir, "library")},
	})
	require.NoError(t, err)

	cfg := &config.Config{
		BaseURL:   "http://localhost:8080",
		JWTSecret: "test-secret",
	}
	cfg.Steam.APIKey = "config-key"

	f := &fixture{
		db:          db,
		games:       repo.NewGameRepo(db),
		shots:       repo.NewScreenshotRepo(db),
		annotations: repo.NewAnnotationRepo(db),
		shares:      repo.NewShareRepo(db),
		sessions:    repo.NewImportSessionRepo(db),
		settings:    repo.NewSettingsRepo(db),
		fts:         repo.NewFTSRepo(db),
		store:       store,
		cfg:         cfg,
	}
	f.settingsService = NewSettingsService(f.settings, cfg)
	f.authService = NewAuthService(f.settingsService, []byte(cfg.JWTSecret), time.Hour)
	f.gameService = NewGameService(f.games, f.shots, f.fts, store)
	f.screenshotService = NewScreenshotService(f.shots, f.games, f.annotations, f.fts, store)
	f.uploadService = NewUploadService(f.games, f.shots, f.screenshotService, store, 85, 10<<20)
	f.shareService = NewShareService(f.shares, f.shots, cfg.BaseURL)
	f.searchService = NewSearchService(f.fts)
	f.timelineService = NewTimelineService(f.shots)
	return f
}

// testJPEG renders a small real JPEG so format detection and preview
// generation run against actual image data.
func testJPEG(t *testing.T, width, height int) []byte {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for x := 0; x < width; x++ {
		for y := 0; y < height; y++ {
			img.Set(x, y, color.RGBA{R: uint8(x % 256), G: uint8(y % 256), B: 100, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, jpeg.Encode(&buf, img, nil))
	return buf.Bytes()
}

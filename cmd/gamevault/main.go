package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"github.com/xxxsen/common/logger"
	"github.com/xxxsen/common/logutil"
	"github.com/xxxsen/common/webapi"
	"go.uber.org/zap"

	"github.com/gamevault/gamevault/internal/config"
	"github.com/gamevault/gamevault/internal/filestore"
	"github.com/gamevault/gamevault/internal/handler"
	"github.com/gamevault/gamevault/internal/importer"
	"github.com/gamevault/gamevault/internal/job"
	"github.com/gamevault/gamevault/internal/middleware"
	"github.com/gamevault/gamevault/internal/progress"
	"github.com/gamevault/gamevault/internal/repo"
	"github.com/gamevault/gamevault/internal/schedule"
	"github.com/gamevault/gamevault/internal/service"
)

func main() {
	var configPath string

	rootCmd := &cobra.Command{
		Use:   "gamevault",
		Short: "gamevault screenshot library server",
	}

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "run gamevault server",
		RunE: func(cmd *cobra.Command, args []string) error {
			if configPath == "" {
				return fmt.Errorf("--config is required")
			}
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			logger.Init(
				cfg.LogConfig.File,
				cfg.LogConfig.Level,
				int(cfg.LogConfig.FileCount),
				int(cfg.LogConfig.FileSize),
				int(cfg.LogConfig.KeepDays),
				cfg.LogConfig.Console,
			)
			logutil.GetLogger(context.Background()).Info("config loaded", zap.String("config", configPath))

			db, err := repo.Open(cfg.DBPath)
			if err != nil {
				return fmt.Errorf("open db: %w", err)
			}
			if err := repo.ApplyMigrations(db); err != nil {
				return fmt.Errorf("migrations: %w", err)
			}
			return runServer(cfg, db)
		},
	}

	runCmd.Flags().StringVar(&configPath, "config", "", "path to config.json")
	rootCmd.AddCommand(runCmd)

	if err := rootCmd.Execute(); err != nil {
		logutil.GetLogger(context.Background()).Fatal("startup error", zap.Error(err))
	}
}

func runServer(cfg *config.Config, db *sql.DB) error {
	logutil.GetLogger(context.Background()).Info(
		"starting server",
		zap.Int("port", cfg.Port),
		zap.String("db_path", cfg.DBPath),
		zap.String("file_store", cfg.Library.Store.Type),
	)

	store, err := filestore.New(cfg.Library.Store)
	if err != nil {
		return fmt.Errorf("init file store: %w", err)
	}

	gameRepo := repo.NewGameRepo(db)
	screenshotRepo := repo.NewScreenshotRepo(db)
	annotationRepo := repo.NewAnnotationRepo(db)
	shareRepo := repo.NewShareRepo(db)
	sessionRepo := repo.NewImportSessionRepo(db)
	settingsRepo := repo.NewSettingsRepo(db)
	ftsRepo := repo.NewFTSRepo(db)

	settingsService := service.NewSettingsService(settingsRepo, cfg)
	authService := service.NewAuthService(settingsService, []byte(cfg.JWTSecret), time.Hour*time.Duration(cfg.TokenTTLHours))
	gameService := service.NewGameService(gameRepo, screenshotRepo, ftsRepo, store)
	screenshotService := service.NewScreenshotService(screenshotRepo, gameRepo, annotationRepo, ftsRepo, store)
	uploadService := service.NewUploadService(
		gameRepo, screenshotRepo, screenshotService, store,
		cfg.Library.ThumbnailQuality, cfg.Library.MaxUploadSizeBytes(),
	)
	shareService := service.NewShareService(shareRepo, screenshotRepo, cfg.BaseURL)
	searchService := service.NewSearchService(ftsRepo)
	timelineService := service.NewTimelineService(screenshotRepo)
	metadataService := service.NewMetadataService(
		gameRepo, store, cfg.Metadata.SteamGridDBAPIKey,
		cfg.Metadata.CacheSize, time.Duration(cfg.Metadata.CacheTTLMinutes)*time.Minute,
	)

	registry := progress.NewRegistry()
	rateLimit := time.Duration(cfg.Steam.RateLimitMS) * time.Millisecond
	importService := importer.New(importer.Deps{
		Sessions:    sessionRepo,
		Shots:       screenshotRepo,
		Games:       gameService,
		Screenshots: screenshotService,
		Metadata:    metadataService,
		Settings:    settingsService,
		Registry:    registry,
		Store:       store,
		RateLimit:   rateLimit,
		Quality:     cfg.Library.ThumbnailQuality,
	})

	fileURL := func(key string) string { return store.URL(key, cfg.BaseURL) }
	deps := handler.RouterDeps{
		Auth:        handler.NewAuthHandler(authService, settingsService),
		Games:       handler.NewGameHandler(gameService, metadataService),
		Screenshots: handler.NewScreenshotHandler(screenshotService, uploadService),
		Search:      handler.NewSearchHandler(searchService, timelineService),
		Shares:      handler.NewShareHandler(shareService, screenshotService, gameService, fileURL),
		Settings:    handler.NewSettingsHandler(settingsService),
		Steam:       handler.NewSteamHandler(importService, settingsService, nil, rateLimit),
		Files:       handler.NewFileHandler(store),
		Gallery:     handler.NewGalleryHandler(gameService, screenshotService, store),
		JWTSecret:   []byte(cfg.JWTSecret),
	}

	engine, err := webapi.NewEngine(
		"/api/v1",
		fmt.Sprintf("0.0.0.0:%d", cfg.Port),
		webapi.WithRegister(func(group *gin.RouterGroup) {
			handler.RegisterRoutes(group, deps)
		}),
		webapi.WithExtraMiddlewares(
			middleware.CORS(cfg.CORSOrigins),
			gzip.Gzip(gzip.DefaultCompression),
		),
	)
	if err != nil {
		return fmt.Errorf("init web engine: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	scheduler := schedule.NewCronScheduler()
	sweep := job.NewSessionSweepJob(sessionRepo, registry, time.Duration(cfg.Import.SessionMaxAgeHours)*time.Hour)
	if err := scheduler.AddJob(sweep); err != nil {
		return fmt.Errorf("schedule sweep: %w", err)
	}
	scheduler.Start(ctx)
	defer scheduler.Stop()

	logutil.GetLogger(context.Background()).Info("http server listening", zap.String("addr", fmt.Sprintf("0.0.0.0:%d", cfg.Port)))
	go func() {
		if err := engine.Run(); err != nil && err != http.ErrServerClosed {
			logutil.GetLogger(context.Background()).Error("server error", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logutil.GetLogger(context.Background()).Info("server stopping...")
	return nil
}

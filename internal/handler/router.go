package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/gamevault/gamevault/internal/middleware"
	"github.com/gamevault/gamevault/internal/pkg/response"
)

type RouterDeps struct {
	Auth        *AuthHandler
	Games       *GameHandler
	Screenshots *ScreenshotHandler
	Search      *SearchHandler
	Shares      *ShareHandler
	Settings    *SettingsHandler
	Steam       *SteamHandler
	Files       *FileHandler
	Gallery     *GalleryHandler
	JWTSecret   []byte
}

func RegisterRoutes(api *gin.RouterGroup, deps RouterDeps) {
	api.GET("/health", func(c *gin.Context) { response.Success(c, gin.H{"status": "ok"}) })

	api.GET("/auth/status", deps.Auth.Status)
	api.POST("/auth/setup", deps.Auth.Setup)
	api.POST("/auth/login", deps.Auth.Login)

	api.GET("/public/share/:token", deps.Shares.PublicGet)
	api.GET("/public/share/:token/page", deps.Shares.PublicPage)
	api.GET("/files/*key", deps.Files.Get)

	api.GET("/public/gallery/games", deps.Gallery.ListGames)
	api.GET("/public/gallery/games/:id", deps.Gallery.GetGame)
	api.GET("/public/gallery/games/:id/screenshots", deps.Gallery.ListScreenshots)
	api.GET("/public/gallery/games/:id/cover", deps.Gallery.Cover)
	api.GET("/public/gallery/screenshots/:id/image", deps.Gallery.Image)
	api.GET("/public/gallery/screenshots/:id/thumb/:size", deps.Gallery.Thumb)

	authGroup := api.Group("")
	authGroup.Use(middleware.JWTAuth(deps.JWTSecret))

	authGroup.GET("/metadata/search", deps.Games.SearchMetadata)

	authGroup.GET("/games", deps.Games.List)
	authGroup.POST("/games", deps.Games.Create)
	authGroup.GET("/games/:id", deps.Games.Get)
	authGroup.PUT("/games/:id", deps.Games.Update)
	authGroup.DELETE("/games/:id", deps.Games.Delete)
	authGroup.POST("/games/:id/metadata", deps.Games.RefreshMetadata)
	authGroup.GET("/games/:id/screenshots", deps.Screenshots.ListByGame)
	authGroup.POST("/games/:id/screenshots", deps.Screenshots.Upload)

	authGroup.GET("/screenshots/:id", deps.Screenshots.Get)
	authGroup.PUT("/screenshots/:id", deps.Screenshots.Update)
	authGroup.DELETE("/screenshots/:id", deps.Screenshots.Delete)
	authGroup.GET("/screenshots/:id/annotation", deps.Screenshots.GetAnnotation)
	authGroup.PUT("/screenshots/:id/annotation", deps.Screenshots.PutAnnotation)
	authGroup.DELETE("/screenshots/:id/annotation", deps.Screenshots.DeleteAnnotation)
	authGroup.POST("/screenshots/:id/share", deps.Shares.Create)
	authGroup.GET("/screenshots/:id/share", deps.Shares.GetActive)
	authGroup.DELETE("/screenshots/:id/share", deps.Shares.Revoke)

	authGroup.GET("/search", deps.Search.Search)
	authGroup.GET("/timeline", deps.Search.TimelineDays)
	authGroup.GET("/timeline/:day", deps.Search.TimelineDay)

	authGroup.GET("/settings", deps.Settings.Get)
	authGroup.PUT("/settings", deps.Settings.Update)
	authGroup.PUT("/settings/password", deps.Settings.ChangePassword)

	authGroup.POST("/steam/validate", deps.Steam.Validate)
	authGroup.POST("/steam/games", deps.Steam.DiscoverGames)
	authGroup.POST("/steam/import", deps.Steam.StartImport)
	authGroup.GET("/steam/import/:id", deps.Steam.GetSession)
	authGroup.GET("/steam/import/:id/progress", deps.Steam.Progress)
	authGroup.POST("/steam/import/:id/cancel", deps.Steam.CancelImport)
}

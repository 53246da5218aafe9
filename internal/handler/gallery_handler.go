package handler

import (
	"io"
	"mime"
	"net/http"
	"path"

	"github.com/gin-gonic/gin"

	"github.com/gamevault/gamevault/internal/filestore"
	"github.com/gamevault/gamevault/internal/model"
	"github.com/gamevault/gamevault/internal/pkg/response"
	"github.com/gamevault/gamevault/internal/service"
)

// GalleryHandler is the unauthenticated read-only surface: games flagged
// public are browsable by anyone. A private game 404s everywhere here, so
// the gallery never confirms it exists.
type GalleryHandler struct {
	games       *service.GameService
	screenshots *service.ScreenshotService
	store       filestore.Store
}

func NewGalleryHandler(games *service.GameService, screenshots *service.ScreenshotService, store filestore.Store) *GalleryHandler {
	return &GalleryHandler{games: games, screenshots: screenshots, store: store}
}

func (h *GalleryHandler) ListGames(c *gin.Context) {
	games, err := h.games.ListPublic(c.Request.Context(), c.Query("sort"))
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, games)
}

func (h *GalleryHandler) GetGame(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	game, err := h.games.GetPublic(c.Request.Context(), id)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, game)
}

func (h *GalleryHandler) ListScreenshots(c *gin.Context) {
	gameID, ok := pathID(c, "id")
	if !ok {
		return
	}
	if _, err := h.games.GetPublic(c.Request.Context(), gameID); err != nil {
		handleError(c, err)
		return
	}
	filter := searchFilterFromQuery(c)
	shots, total, err := h.screenshots.ListByGame(c.Request.Context(), gameID, filter.Offset, filter.Limit)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, gin.H{"screenshots": shots, "total": total})
}

func (h *GalleryHandler) Cover(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	game, err := h.games.GetPublic(c.Request.Context(), id)
	if err != nil {
		handleError(c, err)
		return
	}
	if game.CoverPath == "" {
		response.Error(c, http.StatusNotFound, "not_found", "game has no cover")
		return
	}
	h.serve(c, game.CoverPath)
}

func (h *GalleryHandler) Image(c *gin.Context) {
	shot, ok := h.publicScreenshot(c)
	if !ok {
		return
	}
	h.serve(c, shot.FilePath)
}

// Thumb serves a preview rendition; a screenshot predating preview
// generation falls back to the full image.
func (h *GalleryHandler) Thumb(c *gin.Context) {
	shot, ok := h.publicScreenshot(c)
	if !ok {
		return
	}
	var key string
	switch c.Param("size") {
	case "sm":
		key = shot.ThumbSmall
	case "md":
		key = shot.ThumbMedium
	default:
		response.Error(c, http.StatusBadRequest, "invalid", "invalid thumbnail size")
		return
	}
	if key == "" {
		key = shot.FilePath
	}
	h.serve(c, key)
}

// publicScreenshot loads the screenshot and gates it on its game being
// public.
func (h *GalleryHandler) publicScreenshot(c *gin.Context) (*model.Screenshot, bool) {
	id, ok := pathID(c, "id")
	if !ok {
		return nil, false
	}
	shot, err := h.screenshots.Get(c.Request.Context(), id)
	if err != nil {
		handleError(c, err)
		return nil, false
	}
	if _, err := h.games.GetPublic(c.Request.Context(), shot.GameID); err != nil {
		handleError(c, err)
		return nil, false
	}
	return shot, true
}

func (h *GalleryHandler) serve(c *gin.Context, key string) {
	r, err := h.store.Open(c.Request.Context(), key)
	if err != nil {
		response.Error(c, http.StatusNotFound, "not_found", "file not found")
		return
	}
	defer r.Close()

	contentType := mime.TypeByExtension(path.Ext(key))
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	c.Header("Content-Type", contentType)
	c.Header("Cache-Control", "public, max-age=86400")
	c.Status(http.StatusOK)
	_, _ = io.Copy(c.Writer, r)
}

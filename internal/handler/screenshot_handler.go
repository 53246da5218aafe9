package handler

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/gamevault/gamevault/internal/pkg/response"
	"github.com/gamevault/gamevault/internal/service"
)

type ScreenshotHandler struct {
	screenshots *service.ScreenshotService
	uploads     *service.UploadService
}

func NewScreenshotHandler(screenshots *service.ScreenshotService, uploads *service.UploadService) *ScreenshotHandler {
	return &ScreenshotHandler{screenshots: screenshots, uploads: uploads}
}

func (h *ScreenshotHandler) ListByGame(c *gin.Context) {
	gameID, ok := pathID(c, "id")
	if !ok {
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

// Upload accepts one multipart image for a game.
func (h *ScreenshotHandler) Upload(c *gin.Context) {
	gameID, ok := pathID(c, "id")
	if !ok {
		return
	}
	file, header, err := c.Request.FormFile("file")
	if err != nil {
		response.Error(c, http.StatusBadRequest, "invalid", "missing file")
		return
	}
	defer file.Close()
	if max := h.uploads.MaxBytes(); max > 0 && header.Size > max {
		response.Error(c, http.StatusRequestEntityTooLarge, "too_large", "file exceeds upload limit")
		return
	}
	data, err := io.ReadAll(io.LimitReader(file, h.uploads.MaxBytes()+1))
	if err != nil {
		handleError(c, err)
		return
	}
	shot, err := h.uploads.Upload(c.Request.Context(), gameID, header.Filename, data)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, shot)
}

func (h *ScreenshotHandler) Get(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	shot, err := h.screenshots.Get(c.Request.Context(), id)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, shot)
}

type updateScreenshotRequest struct {
	Favorite *bool   `json:"favorite"`
	Caption  *string `json:"caption"`
}

func (h *ScreenshotHandler) Update(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req updateScreenshotRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid", "invalid request")
		return
	}
	ctx := c.Request.Context()
	shot, err := h.screenshots.Get(ctx, id)
	if err != nil {
		handleError(c, err)
		return
	}
	if req.Favorite != nil {
		if shot, err = h.screenshots.SetFavorite(ctx, id, *req.Favorite); err != nil {
			handleError(c, err)
			return
		}
	}
	if req.Caption != nil {
		if shot, err = h.screenshots.SetCaption(ctx, id, *req.Caption); err != nil {
			handleError(c, err)
			return
		}
	}
	response.Success(c, shot)
}

func (h *ScreenshotHandler) Delete(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.screenshots.Delete(c.Request.Context(), id); err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, gin.H{"deleted": true})
}

func (h *ScreenshotHandler) GetAnnotation(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	annotation, err := h.screenshots.GetAnnotation(c.Request.Context(), id)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, annotation)
}

type annotateRequest struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

func (h *ScreenshotHandler) PutAnnotation(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req annotateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid", "invalid request")
		return
	}
	annotation, err := h.screenshots.Annotate(c.Request.Context(), id, req.Title, req.Content)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, annotation)
}

func (h *ScreenshotHandler) DeleteAnnotation(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.screenshots.DeleteAnnotation(c.Request.Context(), id); err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, gin.H{"deleted": true})
}

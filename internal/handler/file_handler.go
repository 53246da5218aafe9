package handler

import (
	"io"
	"mime"
	"net/http"
	"path"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/gamevault/gamevault/internal/filestore"
	"github.com/gamevault/gamevault/internal/pkg/response"
)

// FileHandler serves library files for store backends without their own
// public URL. Keys are nested paths, so the route uses a wildcard.
type FileHandler struct {
	store filestore.Store
}

func NewFileHandler(store filestore.Store) *FileHandler {
	return &FileHandler{store: store}
}

func (h *FileHandler) Get(c *gin.Context) {
	key := strings.TrimPrefix(c.Param("key"), "/")
	if key == "" {
		response.Error(c, http.StatusBadRequest, "invalid", "missing file key")
		return
	}
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

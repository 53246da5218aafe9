package handler

import (
	"bytes"
	"html/template"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/yuin/goldmark"

	appErr "github.com/gamevault/gamevault/internal/pkg/errors"
	"github.com/gamevault/gamevault/internal/pkg/response"
	"github.com/gamevault/gamevault/internal/service"
)

type ShareHandler struct {
	shares      *service.ShareService
	screenshots *service.ScreenshotService
	games       *service.GameService
	fileURL     func(key string) string
	markdown    goldmark.Markdown
}

func NewShareHandler(
	shares *service.ShareService,
	screenshots *service.ScreenshotService,
	games *service.GameService,
	fileURL func(key string) string,
) *ShareHandler {
	return &ShareHandler{
		shares:      shares,
		screenshots: screenshots,
		games:       games,
		fileURL:     fileURL,
		markdown:    goldmark.New(),
	}
}

type createShareRequest struct {
	ExpiresInHours int `json:"expires_in_hours"`
}

func (h *ShareHandler) Create(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req createShareRequest
	if err := c.ShouldBindJSON(&req); err != nil && c.Request.ContentLength > 0 {
		response.Error(c, http.StatusBadRequest, "invalid", "invalid request")
		return
	}
	link, err := h.shares.Create(c.Request.Context(), id, req.ExpiresInHours)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, link)
}

func (h *ShareHandler) GetActive(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	link, err := h.shares.GetForScreenshot(c.Request.Context(), id)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, link)
}

func (h *ShareHandler) Revoke(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.shares.Revoke(c.Request.Context(), id); err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, gin.H{"revoked": true})
}

// PublicGet returns the shared screenshot as JSON for API consumers.
func (h *ShareHandler) PublicGet(c *gin.Context) {
	ctx := c.Request.Context()
	_, shot, err := h.shares.Resolve(ctx, c.Param("token"))
	if err != nil {
		handleError(c, err)
		return
	}
	annotation, err := h.screenshots.GetAnnotation(ctx, shot.ID)
	if err != nil && !appErr.IsNotFound(err) {
		handleError(c, err)
		return
	}
	game, err := h.games.Get(ctx, shot.GameID)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, gin.H{
		"screenshot": shot,
		"annotation": annotation,
		"game":       gin.H{"id": game.ID, "name": game.Name},
		"image_url":  h.fileURL(shot.FilePath),
	})
}

var sharePageTemplate = template.Must(template.New("share").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<meta property="og:title" content="{{.Title}}">
<meta property="og:type" content="website">
<meta property="og:image" content="{{.ImageURL}}">
{{- if .Description}}
<meta property="og:description" content="{{.Description}}">
{{- end}}
<meta name="twitter:card" content="summary_large_image">
<style>
body { margin: 0; background: #111; color: #eee; font-family: sans-serif; }
main { max-width: 960px; margin: 0 auto; padding: 2rem 1rem; }
img { max-width: 100%; border-radius: 4px; }
.annotation { margin-top: 1.5rem; line-height: 1.6; }
</style>
</head>
<body>
<main>
<h1>{{.Title}}</h1>
<img src="{{.ImageURL}}" alt="{{.Title}}">
{{- if .AnnotationHTML}}
<div class="annotation">{{.AnnotationHTML}}</div>
{{- end}}
</main>
</body>
</html>
`))

type sharePageData struct {
	Title          string
	Description    string
	ImageURL       string
	AnnotationHTML template.HTML
}

// PublicPage renders the shared screenshot as an HTML page with Open Graph
// tags so chat clients unfurl a preview. Annotation markdown is rendered
// server side.
func (h *ShareHandler) PublicPage(c *gin.Context) {
	ctx := c.Request.Context()
	_, shot, err := h.shares.Resolve(ctx, c.Param("token"))
	if err != nil {
		handleError(c, err)
		return
	}
	game, err := h.games.Get(ctx, shot.GameID)
	if err != nil {
		handleError(c, err)
		return
	}

	data := sharePageData{
		Title:       game.Name,
		Description: shot.Caption,
		ImageURL:    h.fileURL(shot.FilePath),
	}
	if annotation, err := h.screenshots.GetAnnotation(ctx, shot.ID); err == nil {
		if annotation.Title != "" {
			data.Title = annotation.Title + " - " + game.Name
		}
		var rendered bytes.Buffer
		if err := h.markdown.Convert([]byte(annotation.Content), &rendered); err == nil {
			data.AnnotationHTML = template.HTML(rendered.String())
		}
		if data.Description == "" {
			data.Description = firstLine(annotation.Content)
		}
	}

	var page bytes.Buffer
	if err := sharePageTemplate.Execute(&page, data); err != nil {
		handleError(c, err)
		return
	}
	c.Data(http.StatusOK, "text/html; charset=utf-8", page.Bytes())
}

func firstLine(text string) string {
	line := strings.TrimSpace(text)
	if i := strings.IndexByte(line, '\n'); i >= 0 {
		line = line[:i]
	}
	if len(line) > 200 {
		line = line[:200]
	}
	return strings.TrimSpace(line)
}

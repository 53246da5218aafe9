package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/gamevault/gamevault/internal/pkg/response"
	"github.com/gamevault/gamevault/internal/service"
)

type GameHandler struct {
	games    *service.GameService
	metadata *service.MetadataService
}

func NewGameHandler(games *service.GameService, metadata *service.MetadataService) *GameHandler {
	return &GameHandler{games: games, metadata: metadata}
}

func (h *GameHandler) List(c *gin.Context) {
	games, err := h.games.List(c.Request.Context(), c.Query("sort"))
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, games)
}

func (h *GameHandler) Get(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	game, err := h.games.Get(c.Request.Context(), id)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, game)
}

type createGameRequest struct {
	Name string `json:"name"`
}

func (h *GameHandler) Create(c *gin.Context) {
	var req createGameRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid", "invalid request")
		return
	}
	game, err := h.games.CreateManual(c.Request.Context(), req.Name)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, game)
}

type updateGameRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	Developer   *string `json:"developer"`
	Publisher   *string `json:"publisher"`
	ReleaseDate *string `json:"release_date"`
	Genres      *string `json:"genres"`
	IsPublic    *bool   `json:"is_public"`
}

func (h *GameHandler) Update(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req updateGameRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid", "invalid request")
		return
	}
	fields := map[string]interface{}{}
	if req.Name != nil {
		fields["name"] = *req.Name
	}
	if req.Description != nil {
		fields["description"] = *req.Description
	}
	if req.Developer != nil {
		fields["developer"] = *req.Developer
	}
	if req.Publisher != nil {
		fields["publisher"] = *req.Publisher
	}
	if req.ReleaseDate != nil {
		fields["release_date"] = *req.ReleaseDate
	}
	if req.Genres != nil {
		fields["genres"] = *req.Genres
	}
	if req.IsPublic != nil {
		fields["is_public"] = *req.IsPublic
	}
	game, err := h.games.Update(c.Request.Context(), id, fields)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, game)
}

func (h *GameHandler) Delete(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.games.Delete(c.Request.Context(), id); err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, gin.H{"deleted": true})
}

// RefreshMetadata pulls store metadata and cover art for the game.
func (h *GameHandler) RefreshMetadata(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.metadata.Apply(c.Request.Context(), id); err != nil {
		handleError(c, err)
		return
	}
	game, err := h.games.Get(c.Request.Context(), id)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, game)
}

// SearchMetadata looks a title up in the Steam store catalog, for linking a
// manual game to its store identity. Upstream trouble reads as no matches.
func (h *GameHandler) SearchMetadata(c *gin.Context) {
	response.Success(c, gin.H{
		"results": h.metadata.SearchExternal(c.Request.Context(), c.Query("q")),
	})
}

package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/gamevault/gamevault/internal/pkg/response"
	"github.com/gamevault/gamevault/internal/service"
)

type SettingsHandler struct {
	settings *service.SettingsService
}

func NewSettingsHandler(settings *service.SettingsService) *SettingsHandler {
	return &SettingsHandler{settings: settings}
}

// Get reports settings state without echoing secrets back.
func (h *SettingsHandler) Get(c *gin.Context) {
	ctx := c.Request.Context()
	response.Success(c, gin.H{
		"steam_api_key_set":     h.settings.EffectiveSteamAPIKey(ctx) != "",
		"default_steam_user_id": h.settings.DefaultSteamUserID(ctx),
	})
}

type updateSettingsRequest struct {
	SteamAPIKey        *string `json:"steam_api_key"`
	DefaultSteamUserID *string `json:"default_steam_user_id"`
}

func (h *SettingsHandler) Update(c *gin.Context) {
	var req updateSettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid", "invalid request")
		return
	}
	ctx := c.Request.Context()
	if req.SteamAPIKey != nil {
		if err := h.settings.SetSteamAPIKey(ctx, *req.SteamAPIKey); err != nil {
			handleError(c, err)
			return
		}
	}
	if req.DefaultSteamUserID != nil {
		if err := h.settings.SetDefaultSteamUserID(ctx, *req.DefaultSteamUserID); err != nil {
			handleError(c, err)
			return
		}
	}
	h.Get(c)
}

type changePasswordRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

func (h *SettingsHandler) ChangePassword(c *gin.Context) {
	var req changePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid", "invalid request")
		return
	}
	if err := h.settings.SetPassword(c.Request.Context(), req.CurrentPassword, req.NewPassword); err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, gin.H{"changed": true})
}

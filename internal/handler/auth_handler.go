package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/gamevault/gamevault/internal/pkg/response"
	"github.com/gamevault/gamevault/internal/service"
)

type AuthHandler struct {
	auth     *service.AuthService
	settings *service.SettingsService
}

func NewAuthHandler(auth *service.AuthService, settings *service.SettingsService) *AuthHandler {
	return &AuthHandler{auth: auth, settings: settings}
}

type loginRequest struct {
	Password string `json:"password"`
}

// Status tells a fresh frontend whether setup is still needed.
func (h *AuthHandler) Status(c *gin.Context) {
	hasPassword, err := h.settings.HasPassword(c.Request.Context())
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, gin.H{"initialized": hasPassword})
}

// Setup sets the instance password on first run and logs in.
func (h *AuthHandler) Setup(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid", "invalid request")
		return
	}
	token, err := h.auth.Setup(c.Request.Context(), req.Password)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, gin.H{"token": token})
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid", "invalid request")
		return
	}
	token, err := h.auth.Login(c.Request.Context(), req.Password)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, gin.H{"token": token})
}

package handler

import (
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/gamevault/gamevault/internal/importer"
	"github.com/gamevault/gamevault/internal/pkg/response"
	"github.com/gamevault/gamevault/internal/progress"
	"github.com/gamevault/gamevault/internal/service"
	"github.com/gamevault/gamevault/internal/steam"
)

// keepaliveInterval is how often an idle progress stream emits a comment to
// keep proxies from closing it.
const keepaliveInterval = 30 * time.Second

type SteamHandler struct {
	importer  *importer.Service
	settings  *service.SettingsService
	factory   steam.Factory
	rateLimit time.Duration
}

func NewSteamHandler(imp *importer.Service, settings *service.SettingsService, factory steam.Factory, rateLimit time.Duration) *SteamHandler {
	if factory == nil {
		factory = steam.New
	}
	return &SteamHandler{importer: imp, settings: settings, factory: factory, rateLimit: rateLimit}
}

type steamCredentialsRequest struct {
	SteamUserID      string `json:"steam_user_id"`
	SteamLoginSecure string `json:"steam_login_secure"`
	SessionID        string `json:"session_id"`
}

func (h *SteamHandler) source(c *gin.Context, req steamCredentialsRequest) steam.Source {
	return h.factory(steam.Options{
		UserID: req.SteamUserID,
		Credentials: steam.Credentials{
			SteamLoginSecure: req.SteamLoginSecure,
			SessionID:        req.SessionID,
			APIKey:           h.settings.EffectiveSteamAPIKey(c.Request.Context()),
		},
		RateLimit: h.rateLimit,
	})
}

// Validate checks that a profile exists and is reachable with the given
// credentials before an import is started.
func (h *SteamHandler) Validate(c *gin.Context) {
	var req steamCredentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.SteamUserID == "" {
		response.Error(c, http.StatusBadRequest, "invalid", "steam_user_id is required")
		return
	}
	profile, err := h.source(c, req).ValidateProfile(c.Request.Context())
	if err == steam.ErrProfileNotFound {
		response.Error(c, http.StatusNotFound, "profile_not_found", "steam profile not found or private")
		return
	}
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, profile)
}

type discoverGamesRequest struct {
	steamCredentialsRequest
	FetchCounts bool `json:"fetch_counts"`
}

// DiscoverGames lists the profile's games with screenshots, for the
// pre-import selection UI.
func (h *SteamHandler) DiscoverGames(c *gin.Context) {
	var req discoverGamesRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.SteamUserID == "" {
		response.Error(c, http.StatusBadRequest, "invalid", "steam_user_id is required")
		return
	}
	games, err := h.source(c, req.steamCredentialsRequest).DiscoverGames(c.Request.Context(), req.FetchCounts)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, games)
}

type startImportRequest struct {
	steamCredentialsRequest
	GameFilter   []int64 `json:"game_filter"`
	FetchDetails bool    `json:"fetch_details"`
}

func (h *SteamHandler) StartImport(c *gin.Context) {
	var req startImportRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.SteamUserID == "" {
		response.Error(c, http.StatusBadRequest, "invalid", "steam_user_id is required")
		return
	}
	session, err := h.importer.Start(c.Request.Context(), importer.StartRequest{
		SteamUserID:      req.SteamUserID,
		SteamLoginSecure: req.SteamLoginSecure,
		SessionID:        req.SessionID,
		GameFilter:       req.GameFilter,
		FetchDetails:     req.FetchDetails,
	})
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, session)
}

func (h *SteamHandler) GetSession(c *gin.Context) {
	session, err := h.importer.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, session)
}

func (h *SteamHandler) CancelImport(c *gin.Context) {
	if err := h.importer.Cancel(c.Request.Context(), c.Param("id")); err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, gin.H{"cancelled": true})
}

// Progress streams session events as server-sent events until the done
// sentinel. Idle periods emit keepalive comments; the queue is released
// once the stream terminates normally.
func (h *SteamHandler) Progress(c *gin.Context) {
	sessionID := c.Param("id")
	if _, err := h.importer.Get(c.Request.Context(), sessionID); err != nil {
		handleError(c, err)
		return
	}
	queue := h.importer.Subscribe(sessionID)

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")

	done := false
	c.Stream(func(w io.Writer) bool {
		event, ok, err := queue.Pop(c.Request.Context(), keepaliveInterval)
		if err != nil {
			// Client went away; the import keeps running.
			return false
		}
		if !ok {
			_, _ = io.WriteString(w, ": keepalive\n\n")
			return true
		}
		payload, err := json.Marshal(event)
		if err != nil {
			return true
		}
		_, _ = io.WriteString(w, "data: "+string(payload)+"\n\n")
		if event.Kind == progress.KindDone {
			done = true
			return false
		}
		return true
	})
	if done {
		h.importer.Release(sessionID)
	}
}

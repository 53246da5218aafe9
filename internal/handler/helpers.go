package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	appErr "github.com/gamevault/gamevault/internal/pkg/errors"
	"github.com/gamevault/gamevault/internal/pkg/response"
	"github.com/gamevault/gamevault/internal/repo"
)

func handleError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	logutil.GetLogger(c.Request.Context()).Warn("request failed",
		zap.String("method", c.Request.Method),
		zap.String("path", c.Request.URL.Path),
		zap.Error(err),
	)
	switch {
	case appErr.IsNotFound(err):
		response.Error(c, http.StatusNotFound, "not_found", "not found")
	case errors.Is(err, appErr.ErrUnauthorized):
		response.Error(c, http.StatusUnauthorized, "unauthorized", "unauthorized")
	case errors.Is(err, appErr.ErrForbidden):
		response.Error(c, http.StatusForbidden, "forbidden", "forbidden")
	case errors.Is(err, appErr.ErrInvalid):
		response.Error(c, http.StatusBadRequest, "invalid", err.Error())
	case appErr.IsConflict(err):
		response.Error(c, http.StatusConflict, "conflict", "conflict")
	case errors.Is(err, appErr.ErrShareExpired):
		response.Error(c, http.StatusGone, "share_expired", "share link expired")
	case errors.Is(err, appErr.ErrDuplicateImage):
		response.Error(c, http.StatusConflict, "duplicate_image", "identical image already in library")
	case errors.Is(err, appErr.ErrImportNotRunning):
		response.Error(c, http.StatusConflict, "import_not_running", "import already finished")
	default:
		response.Error(c, http.StatusInternalServerError, "internal", "internal error")
	}
}

func pathID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		response.Error(c, http.StatusBadRequest, "invalid", "invalid id")
		return 0, false
	}
	return id, true
}

// searchFilterFromQuery parses the shared filter parameters used by search,
// browse and timeline endpoints.
func searchFilterFromQuery(c *gin.Context) repo.SearchFilter {
	filter := repo.SearchFilter{Sort: c.Query("sort")}
	if gameID, err := strconv.ParseInt(c.Query("game_id"), 10, 64); err == nil && gameID > 0 {
		filter.GameID = &gameID
	}
	if from, err := strconv.ParseInt(c.Query("date_from"), 10, 64); err == nil {
		filter.DateFrom = &from
	}
	if to, err := strconv.ParseInt(c.Query("date_to"), 10, 64); err == nil {
		filter.DateTo = &to
	}
	filter.FavoritesOnly = c.Query("favorites") == "true"
	if offset, err := strconv.ParseUint(c.Query("offset"), 10, 32); err == nil {
		filter.Offset = uint(offset)
	}
	if limit, err := strconv.ParseUint(c.Query("limit"), 10, 32); err == nil {
		filter.Limit = uint(limit)
	}
	return filter
}

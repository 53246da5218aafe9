package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/gamevault/gamevault/internal/pkg/response"
	"github.com/gamevault/gamevault/internal/service"
)

type SearchHandler struct {
	search   *service.SearchService
	timeline *service.TimelineService
}

func NewSearchHandler(search *service.SearchService, timeline *service.TimelineService) *SearchHandler {
	return &SearchHandler{search: search, timeline: timeline}
}

// Search serves both full-text queries and filtered browsing; q is optional.
func (h *SearchHandler) Search(c *gin.Context) {
	result, err := h.search.Search(c.Request.Context(), c.Query("q"), searchFilterFromQuery(c))
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, result)
}

func (h *SearchHandler) TimelineDays(c *gin.Context) {
	days, err := h.timeline.Days(c.Request.Context(), searchFilterFromQuery(c))
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, days)
}

func (h *SearchHandler) TimelineDay(c *gin.Context) {
	shots, err := h.timeline.Day(c.Request.Context(), c.Param("day"), searchFilterFromQuery(c))
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, shots)
}

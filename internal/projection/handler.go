package projection

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	httperr "github.com/aevon-lab/folio-analytics/internal/core/errors"
	"github.com/aevon-lab/folio-analytics/internal/hub"
)

// RegisterRoutes registers all projection API routes on the given router.
func (s *Service) RegisterRoutes(r gin.IRouter) {
	r.GET("/v1/sessions/:session_id", s.HandleQuerySession)
	r.GET("/v1/analytics", s.HandleQueryAnalytics)
}

// HandleQueryAnalytics handles GET /v1/analytics
// Query parameters: window
func (s *Service) HandleQueryAnalytics(c *gin.Context) {
	var query AnalyticsQueryRequest
	if err := c.ShouldBindQuery(&query); err != nil {
		c.JSON(http.StatusBadRequest, httperr.ErrorResponse{
			ErrorType: httperr.HttpInvalidRequestError,
			Message:   "Invalid query parameters",
			Details:   err.Error(),
		})
		return
	}

	resp, err := s.QueryAnalytics(query)
	if err != nil {
		if errors.Is(err, ErrInvalidQuery) {
			c.JSON(http.StatusBadRequest, httperr.ErrorResponse{
				ErrorType: httperr.HttpInvalidRequestError,
				Message:   "Invalid analytics query",
				Details:   err.Error(),
			})
			return
		}

		slog.Error("[Projection] Analytics query failed", "error", err)
		c.JSON(http.StatusInternalServerError, httperr.ErrorResponse{
			ErrorType: httperr.HttpInternalError,
			Message:   "Failed to compute analytics",
		})
		return
	}

	c.JSON(http.StatusOK, resp)
}

// HandleQuerySession handles GET /v1/sessions/:session_id
func (s *Service) HandleQuerySession(c *gin.Context) {
	id := c.Param("session_id")

	resp, err := s.QuerySession(id)
	if err != nil {
		if errors.Is(err, hub.ErrSessionNotFound) {
			c.JSON(http.StatusNotFound, httperr.ErrorResponse{
				ErrorType: httperr.HttpSessionNotFoundError,
				Message:   "Session not found",
				Details:   map[string]interface{}{"session_id": id},
			})
			return
		}

		slog.Error("[Projection] Session query failed", "session_id", id, "error", err)
		c.JSON(http.StatusInternalServerError, httperr.ErrorResponse{
			ErrorType: httperr.HttpInternalError,
			Message:   "Failed to query session",
		})
		return
	}

	c.JSON(http.StatusOK, resp)
}

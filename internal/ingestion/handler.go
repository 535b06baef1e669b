package ingestion

import (
	"bytes"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	v1 "github.com/aevon-lab/folio-analytics/internal/api/v1"
	httperr "github.com/aevon-lab/folio-analytics/internal/core/errors"
	"github.com/aevon-lab/folio-analytics/internal/hub"
)

const (
	msgReadBodyFailed  = "Failed to read request body"
	msgInvalidJSON     = "Invalid JSON body"
	msgSessionNotFound = "Session not found"
	msgShuttingDown    = "Service is shutting down"
	msgInternal        = "Failed to process request"
)

// ingestionError carries the structured HTTP error shape from a helper back to the handler.
// Helpers return this instead of writing to gin.Context directly, keeping them decoupled from HTTP.
type ingestionError struct {
	statusCode int
	errorType  string
	message    string
	details    interface{}
}

func (e *ingestionError) Error() string {
	return e.message
}

// StartSessionHandler handles POST /v1/sessions.
func (s *Service) StartSessionHandler(c *gin.Context) {
	var req v1.StartSessionRequest
	if err := s.bindBody(c, &req); err != nil {
		writeError(c, err)
		return
	}

	session, err := s.sessions.StartSession(c.Request.Context(), req)
	if err != nil {
		writeError(c, hubError(err, ""))
		return
	}

	slog.Info("[Ingestion] Session started",
		"session_id", session.SessionID,
		"device", session.DeviceInfo.DeviceType,
		"capabilities", len(req.Capabilities),
	)
	c.JSON(http.StatusCreated, gin.H{"session": session})
}

// SignalsHandler handles POST /v1/sessions/:session_id/signals, the beacon
// endpoint. Signals that cannot be decoded are dropped and counted.
func (s *Service) SignalsHandler(c *gin.Context) {
	id := c.Param("session_id")

	var batch v1.SignalBatch
	if err := s.bindBody(c, &batch); err != nil {
		writeError(c, err)
		return
	}

	res, err := s.sessions.Dispatch(id, batch.Signals)
	if err != nil {
		writeError(c, hubError(err, id))
		return
	}

	if res.Dropped > 0 {
		slog.Debug("[Ingestion] Dropped signals", "session_id", id, "dropped", res.Dropped)
	}
	c.JSON(http.StatusAccepted, gin.H{
		"status":   "accepted",
		"accepted": res.Accepted,
		"dropped":  res.Dropped,
	})
}

// TrackHandler handles POST /v1/sessions/:session_id/events.
func (s *Service) TrackHandler(c *gin.Context) {
	id := c.Param("session_id")

	var req v1.TrackRequest
	if err := s.bindBody(c, &req); err != nil {
		writeError(c, err)
		return
	}
	if err := req.Validate(); err != nil {
		slog.Warn("[Ingestion] Track request rejected", "session_id", id, "error", err)
		writeError(c, &ingestionError{
			statusCode: http.StatusBadRequest,
			errorType:  httperr.HttpInvalidRequestError,
			message:    err.Error(),
			details:    map[string]interface{}{"type": req.Type},
		})
		return
	}

	if err := s.sessions.Track(id, req); err != nil {
		writeError(c, hubError(err, id))
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"status": "accepted"})
}

// EndSessionHandler handles POST /v1/sessions/:session_id/end.
func (s *Service) EndSessionHandler(c *gin.Context) {
	id := c.Param("session_id")

	session, err := s.sessions.EndSession(c.Request.Context(), id)
	if err != nil {
		writeError(c, hubError(err, id))
		return
	}
	c.JSON(http.StatusOK, gin.H{"session": session})
}

// bindBody reads at most maxBodySizeBytes of the request body and binds it into dst.
func (s *Service) bindBody(c *gin.Context, dst interface{}) *ingestionError {
	maxBytes := int64(s.maxBodySizeBytes)
	limitedBody := io.LimitReader(c.Request.Body, maxBytes+1) // +1 to detect oversized requests

	bodyBytes, err := io.ReadAll(limitedBody)
	if err != nil {
		slog.Error("[Ingestion] Failed to read request body", "error", err)
		return &ingestionError{
			statusCode: http.StatusInternalServerError,
			errorType:  httperr.HttpInternalError,
			message:    msgReadBodyFailed,
		}
	}

	if int64(len(bodyBytes)) > maxBytes {
		slog.Warn("[Ingestion] Request body exceeds maximum size", "size", len(bodyBytes), "max", maxBytes)
		return &ingestionError{
			statusCode: http.StatusRequestEntityTooLarge,
			errorType:  httperr.HttpInvalidJsonError,
			message:    "Request body exceeds maximum allowed size",
			details: map[string]interface{}{
				"max_size_kb": maxBytes / 1024,
			},
		}
	}

	c.Request.Body = io.NopCloser(bytes.NewReader(bodyBytes))

	if err := c.ShouldBindJSON(dst); err != nil {
		slog.Warn("[Ingestion] Invalid JSON body received", "error", err, "payload_size", len(bodyBytes))
		return &ingestionError{
			statusCode: http.StatusBadRequest,
			errorType:  httperr.HttpInvalidJsonError,
			message:    msgInvalidJSON,
			details:    err.Error(),
		}
	}
	return nil
}

// hubError maps hub failures to HTTP errors.
func hubError(err error, sessionID string) *ingestionError {
	switch {
	case errors.Is(err, hub.ErrSessionNotFound):
		return &ingestionError{
			statusCode: http.StatusNotFound,
			errorType:  httperr.HttpSessionNotFoundError,
			message:    msgSessionNotFound,
			details:    map[string]interface{}{"session_id": sessionID},
		}
	case errors.Is(err, hub.ErrClosed):
		return &ingestionError{
			statusCode: http.StatusServiceUnavailable,
			errorType:  httperr.HttpUnavailableError,
			message:    msgShuttingDown,
		}
	}

	slog.Error("[Ingestion] Request failed", "session_id", sessionID, "error", err)
	return &ingestionError{
		statusCode: http.StatusInternalServerError,
		errorType:  httperr.HttpInternalError,
		message:    msgInternal,
	}
}

// writeError serializes an ingestionError as the JSON HTTP response.
func writeError(c *gin.Context, err *ingestionError) {
	c.JSON(err.statusCode, httperr.ErrorResponse{
		ErrorType: err.errorType,
		Message:   err.message,
		Details:   err.details,
	})
}

package http

import (
	"context"
	"errors"
	"net/http"

	"github.com/GriffinCanCode/webtop/internal/domain/session"
	"github.com/GriffinCanCode/webtop/internal/shared/types"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// SaveSessionRequest names a workspace snapshot
type SaveSessionRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// sessionStatus maps session errors to HTTP status codes
func sessionStatus(err error) int {
	switch {
	case errors.Is(err, session.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, session.ErrInvalid):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// SaveSession captures the current workspace. An empty name saves the
// default session.
func (h *Handlers) SaveSession(c *gin.Context) {
	var req SaveSessionRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request: " + err.Error()})
			return
		}
	}

	var sess *types.Session
	err := h.trace(c, "session.save", func(ctx context.Context) error {
		var err error
		if req.Name == "" {
			sess, err = h.sessions.SaveDefault(ctx)
		} else {
			sess, err = h.sessions.Save(ctx, req.Name, req.Description)
		}
		return err
	})
	if err != nil {
		h.logger.Warn("Failed to save session", zap.String("name", req.Name), zap.Error(err))
		c.JSON(sessionStatus(err), gin.H{"error": err.Error()})
		return
	}
	if h.metrics != nil {
		h.metrics.IncSessionsSaved()
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"session": sess.ToMetadata(),
	})
}

// ListSessions returns saved sessions, newest first
func (h *Handlers) ListSessions(c *gin.Context) {
	sessions, err := h.sessions.List()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"sessions": sessions,
		"stats":    h.sessions.Stats(),
	})
}

// GetSession returns one saved session with its workspace
func (h *Handlers) GetSession(c *gin.Context) {
	sess, err := h.sessions.Load(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.JSON(sessionStatus(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, sess)
}

// RestoreSession replaces the live windows with a saved workspace
func (h *Handlers) RestoreSession(c *gin.Context) {
	sessionID := c.Param("id")

	var res *types.RestoreResult
	err := h.trace(c, "session.restore", func(ctx context.Context) error {
		var err error
		res, err = h.sessions.Restore(ctx, sessionID)
		return err
	})
	if err != nil {
		c.JSON(sessionStatus(err), gin.H{"error": err.Error()})
		return
	}
	if h.metrics != nil {
		h.metrics.IncSessionsRestored()
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"result":  res,
	})
}

// DeleteSession removes a saved session
func (h *Handlers) DeleteSession(c *gin.Context) {
	sessionID := c.Param("id")
	if err := h.sessions.Delete(c.Request.Context(), sessionID); err != nil {
		c.JSON(sessionStatus(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "session_id": sessionID})
}

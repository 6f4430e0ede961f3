package http

import (
	"net/http"
	"strconv"
	"time"

	"github.com/GriffinCanCode/webtop/internal/domain/desktop"
	"github.com/gin-gonic/gin"
)

// MaxPollWait bounds how long a change poll is held open
const MaxPollWait = 25 * time.Second

// TaskActionRequest carries a task button context menu action
type TaskActionRequest struct {
	Action string `json:"action" binding:"required"`
}

// TaskClickRequest carries the mouse button of a task button click
type TaskClickRequest struct {
	Button desktop.MouseButton `json:"button"`
}

// GetTaskbar returns one button per live window
func (h *Handlers) GetTaskbar(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"buttons":   desktop.Taskbar(h.windows, h.windows.Registry()),
		"active_id": h.windows.ActiveID(),
	})
}

// ClickTask handles a click on a task button
func (h *Handlers) ClickTask(c *gin.Context) {
	id, ok := appID(c)
	if !ok {
		return
	}

	var req TaskClickRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request: " + err.Error()})
			return
		}
	}
	result(c, id, desktop.ClickTask(h.windows, id, req.Button))
}

// TaskAction runs a context menu action on a task button
func (h *Handlers) TaskAction(c *gin.Context) {
	id, ok := appID(c)
	if !ok {
		return
	}

	var req TaskActionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request: " + err.Error()})
		return
	}
	switch req.Action {
	case desktop.ActionRestore, desktop.ActionMinimize, desktop.ActionMaximize, desktop.ActionClose:
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown action: " + req.Action})
		return
	}
	result(c, id, desktop.TaskAction(h.windows, id, req.Action))
}

// GetStartMenu returns the launchable apps
func (h *Handlers) GetStartMenu(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"items": desktop.StartMenu(h.windows.Registry())})
}

// Launch opens an app from the start menu
func (h *Handlers) Launch(c *gin.Context) {
	id, ok := appID(c)
	if !ok {
		return
	}
	result(c, id, desktop.Launch(h.windows, h.windows.Registry(), id))
}

// GetIcons returns the desktop shortcuts
func (h *Handlers) GetIcons(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"icons": desktop.Icons(h.windows.Registry())})
}

// PollChanges blocks until the desktop revision moves past the one given
// in ?revision, the wait elapses or the client goes away.
func (h *Handlers) PollChanges(c *gin.Context) {
	since, err := strconv.ParseUint(c.DefaultQuery("revision", "0"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "revision must be a non-negative integer"})
		return
	}
	wait := MaxPollWait
	if raw := c.Query("wait"); raw != "" {
		d, err := time.ParseDuration(raw)
		if err != nil || d < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid wait duration"})
			return
		}
		wait = min(d, MaxPollWait)
	}

	timer := time.NewTimer(wait)
	defer timer.Stop()

	for {
		changed := h.tracker.Changed()
		if rev := h.tracker.Revision(); rev > since {
			c.JSON(http.StatusOK, gin.H{
				"changed":  true,
				"revision": rev,
				"last":     h.tracker.Last(),
			})
			return
		}
		select {
		case <-changed:
		case <-timer.C:
			c.JSON(http.StatusOK, gin.H{"changed": false, "revision": h.tracker.Revision()})
			return
		case <-c.Request.Context().Done():
			return
		}
	}
}

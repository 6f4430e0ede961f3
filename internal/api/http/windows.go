package http

import (
	"net/http"
	"strings"

	"github.com/GriffinCanCode/webtop/internal/domain/window"
	"github.com/GriffinCanCode/webtop/internal/shared/types"
	"github.com/GriffinCanCode/webtop/internal/shared/utils"
	"github.com/gin-gonic/gin"
	"github.com/microcosm-cc/bluemonday"
)

var titlePolicy = bluemonday.StrictPolicy()

// OpenRequest optionally places a newly created window
type OpenRequest struct {
	Top  *int `json:"top"`
	Left *int `json:"left"`
}

// MetaRequest overrides the title and icon of a live window. Nil fields are
// left unchanged; empty strings revert to the registered values.
type MetaRequest struct {
	Title *string `json:"title"`
	Icon  *string `json:"icon"`
}

// FragmentRequest carries a location fragment change
type FragmentRequest struct {
	Fragment string `json:"fragment"`
}

// GetState returns the open ids, the active id and the registered ids
func (h *Handlers) GetState(c *gin.Context) {
	c.JSON(http.StatusOK, h.windows.GetState())
}

// ListWindows returns the live windows in ascending z order
func (h *Handlers) ListWindows(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"windows": h.windows.Windows(),
		"stats":   h.windows.Stats(),
	})
}

// GetWindow returns one live window
func (h *Handlers) GetWindow(c *gin.Context) {
	id, ok := appID(c)
	if !ok {
		return
	}
	w, ok := h.windows.Window(id)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "window not open"})
		return
	}
	c.JSON(http.StatusOK, w)
}

// OpenWindow opens or focuses the window of an app
func (h *Handlers) OpenWindow(c *gin.Context) {
	id, ok := appID(c)
	if !ok {
		return
	}

	var pos *types.Position
	if c.Request.ContentLength > 0 {
		var req OpenRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request: " + err.Error()})
			return
		}
		if req.Top != nil && req.Left != nil {
			pos = &types.Position{Top: *req.Top, Left: *req.Left}
		}
	}

	result(c, id, h.windows.Open(id, pos))
}

// windowOp adapts a single-id window operation to a handler
func (h *Handlers) windowOp(op func(id string) bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := appID(c)
		if !ok {
			return
		}
		result(c, id, op(id))
	}
}

// UpdateGeometry merges a partial rectangle into a window
func (h *Handlers) UpdateGeometry(c *gin.Context) {
	id, ok := appID(c)
	if !ok {
		return
	}

	var patch types.GeometryPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request: " + err.Error()})
		return
	}
	for field, value := range map[string]*string{
		"top":    patch.Top,
		"left":   patch.Left,
		"width":  patch.Width,
		"height": patch.Height,
	} {
		if err := utils.ValidateLength(value, field); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	}

	result(c, id, h.windows.UpdateGeometry(id, patch))
}

// SetWindowMeta sets the title and icon shown for a live window
func (h *Handlers) SetWindowMeta(c *gin.Context) {
	id, ok := appID(c)
	if !ok {
		return
	}

	var req MetaRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request: " + err.Error()})
		return
	}
	if req.Title == nil && req.Icon == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "title or icon is required"})
		return
	}
	if req.Title != nil {
		if err := utils.ValidateString(*req.Title, "title", 0, utils.MaxTitleLength, false); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	}
	if req.Icon != nil {
		if err := utils.ValidateString(*req.Icon, "icon", 0, utils.MaxIconLength, false); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	}

	success := true
	if req.Title != nil {
		success = h.windows.SetTitle(id, strings.TrimSpace(titlePolicy.Sanitize(*req.Title)))
	}
	if req.Icon != nil {
		success = h.windows.SetIcon(id, *req.Icon) && success
	}
	result(c, id, success)
}

// HandleKey dispatches a keyboard shortcut
func (h *Handlers) HandleKey(c *gin.Context) {
	var ev window.KeyEvent
	if err := c.ShouldBindJSON(&ev); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request: " + err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"handled":   h.windows.HandleKey(ev),
		"active_id": h.windows.ActiveID(),
	})
}

// HandleFragment reacts to a location fragment change
func (h *Handlers) HandleFragment(c *gin.Context) {
	var req FragmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request: " + err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"opened":    h.windows.HandleFragment(req.Fragment),
		"active_id": h.windows.ActiveID(),
	})
}

// GetViewport returns the current viewport metrics
func (h *Handlers) GetViewport(c *gin.Context) {
	c.JSON(http.StatusOK, h.viewport.Metrics())
}

// SetViewport stores the viewport reported by the front end and refits
// maximized windows
func (h *Handlers) SetViewport(c *gin.Context) {
	var m window.ViewportMetrics
	if err := c.ShouldBindJSON(&m); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request: " + err.Error()})
		return
	}
	if m.Width < 0 || m.Height < 0 || m.TaskbarHeight < 0 || m.SafeBottom < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "viewport metrics must not be negative"})
		return
	}

	h.viewport.Set(m)
	c.JSON(http.StatusOK, gin.H{
		"viewport": m,
		"relaid":   h.windows.Relayout(),
		"small":    m.SmallScreen(),
	})
}

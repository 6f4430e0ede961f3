package http

import (
	"errors"
	"net/http"

	"github.com/GriffinCanCode/webtop/internal/domain/registry"
	"github.com/GriffinCanCode/webtop/internal/shared/types"
	"github.com/gin-gonic/gin"
)

// ListApps returns the registered apps in registration order
func (h *Handlers) ListApps(c *gin.Context) {
	reg := h.windows.Registry()
	apps := reg.List()
	summaries := make([]types.AppSummary, 0, len(apps))
	for _, def := range apps {
		summaries = append(summaries, def.Summary())
	}
	c.JSON(http.StatusOK, gin.H{
		"apps":       summaries,
		"categories": reg.Categories(),
		"stats":      reg.Stats(),
	})
}

// GetApp returns one registered app
func (h *Handlers) GetApp(c *gin.Context) {
	id, ok := appID(c)
	if !ok {
		return
	}
	def, ok := h.windows.Registry().Get(id)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "app not registered"})
		return
	}
	c.JSON(http.StatusOK, def.Summary())
}

// RegisterApp adds or replaces an app definition
func (h *Handlers) RegisterApp(c *gin.Context) {
	var def types.AppDefinition
	if err := c.ShouldBindJSON(&def); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request: " + err.Error()})
		return
	}

	replaced := h.windows.Registry().Has(def.ID)
	if err := h.windows.RegisterApp(def); err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, registry.ErrInvalidDefinition) {
			status = http.StatusBadRequest
		}
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}
	h.syncRegistryGauge()

	status := http.StatusCreated
	if replaced {
		status = http.StatusOK
	}
	c.JSON(status, gin.H{
		"success":  true,
		"app_id":   def.ID,
		"replaced": replaced,
	})
}

// UnregisterApp removes an app definition and closes its window
func (h *Handlers) UnregisterApp(c *gin.Context) {
	id, ok := appID(c)
	if !ok {
		return
	}
	removed := h.windows.UnregisterApp(id)
	h.syncRegistryGauge()
	result(c, id, removed)
}

func (h *Handlers) syncRegistryGauge() {
	if h.metrics != nil {
		h.metrics.SetRegistryApps(h.windows.Registry().Len())
	}
}

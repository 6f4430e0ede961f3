package http

import "github.com/gin-gonic/gin"

// RegisterRoutes mounts every handler on r
func (h *Handlers) RegisterRoutes(r gin.IRouter) {
	r.GET("/", h.Root)
	r.GET("/health", h.Health)

	// Desktop state
	r.GET("/state", h.GetState)
	r.GET("/changes", h.PollChanges)
	r.GET("/viewport", h.GetViewport)
	r.PUT("/viewport", h.SetViewport)
	r.POST("/keys", h.HandleKey)
	r.POST("/fragment", h.HandleFragment)

	// App registry
	r.GET("/apps", h.ListApps)
	r.POST("/apps", h.RegisterApp)
	r.GET("/apps/:id", h.GetApp)
	r.DELETE("/apps/:id", h.UnregisterApp)

	// Window lifecycle
	windows := r.Group("/windows")
	windows.GET("", h.ListWindows)
	windows.GET("/:id", h.GetWindow)
	windows.POST("/:id/open", h.OpenWindow)
	windows.POST("/:id/close", h.windowOp(h.windows.Close))
	windows.POST("/:id/minimize", h.windowOp(h.windows.Minimize))
	windows.POST("/:id/restore", h.windowOp(h.windows.Restore))
	windows.POST("/:id/toggle", h.windowOp(h.windows.Toggle))
	windows.POST("/:id/focus", h.windowOp(h.windows.Focus))
	windows.POST("/:id/maximize", h.windowOp(h.windows.ToggleMaximize))
	windows.PATCH("/:id/geometry", h.UpdateGeometry)
	windows.PATCH("/:id/meta", h.SetWindowMeta)

	// Taskbar, start menu and desktop icons
	r.GET("/taskbar", h.GetTaskbar)
	r.POST("/taskbar/:id/click", h.ClickTask)
	r.POST("/taskbar/:id/action", h.TaskAction)
	r.GET("/start-menu", h.GetStartMenu)
	r.POST("/start-menu/:id/launch", h.Launch)
	r.GET("/icons", h.GetIcons)

	// Sessions
	if h.sessions != nil {
		r.POST("/sessions", h.SaveSession)
		r.GET("/sessions", h.ListSessions)
		r.GET("/sessions/:id", h.GetSession)
		r.POST("/sessions/:id/restore", h.RestoreSession)
		r.DELETE("/sessions/:id", h.DeleteSession)
	}

	// Front end logs
	r.POST("/logs", h.StreamLogs)

	r.GET("/metrics/json", h.GetMetricsReport)
}

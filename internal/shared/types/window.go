package types

// Geometry is a window rectangle. Values are opaque CSS lengths ("120px",
// "calc(100vw - 16px)") and are not parsed by the window manager.
type Geometry struct {
	Top    string `json:"top"`
	Left   string `json:"left"`
	Width  string `json:"width"`
	Height string `json:"height"`
}

// GeometryPatch is a partial Geometry. Nil fields are left unchanged.
type GeometryPatch struct {
	Top    *string `json:"top,omitempty"`
	Left   *string `json:"left,omitempty"`
	Width  *string `json:"width,omitempty"`
	Height *string `json:"height,omitempty"`
}

// Apply merges the patch into g and returns the result
func (p GeometryPatch) Apply(g Geometry) Geometry {
	if p.Top != nil {
		g.Top = *p.Top
	}
	if p.Left != nil {
		g.Left = *p.Left
	}
	if p.Width != nil {
		g.Width = *p.Width
	}
	if p.Height != nil {
		g.Height = *p.Height
	}
	return g
}

// Empty reports whether the patch sets no field
func (p GeometryPatch) Empty() bool {
	return p.Top == nil && p.Left == nil && p.Width == nil && p.Height == nil
}

// MoveTo builds a patch that only sets top and left
func MoveTo(top, left string) GeometryPatch {
	return GeometryPatch{Top: &top, Left: &left}
}

// WindowInstance is the live window of one app.
// RestoreGeometry holds the pre-maximize rectangle while Maximized is set.
// Meta holds the title and icon overrides set while the window is live.
type WindowInstance struct {
	AppID           string     `json:"app_id"`
	Open            bool       `json:"open"`
	Minimized       bool       `json:"minimized"`
	Maximized       bool       `json:"maximized"`
	Geometry        Geometry   `json:"geometry"`
	RestoreGeometry *Geometry  `json:"restore_geometry,omitempty"`
	ZIndex          int        `json:"z_index"`
	Meta            WindowMeta `json:"meta"`
}

// Visible reports whether the window is open and not minimized
func (w WindowInstance) Visible() bool {
	return w.Open && !w.Minimized
}

// State is the full window manager state
type State struct {
	Windows  map[string]WindowInstance `json:"windows"`
	ActiveID string                    `json:"active_id,omitempty"`
	ZCounter int                       `json:"z_counter"`
}

// Snapshot is the read-only summary returned by GetState
type Snapshot struct {
	Open       []string `json:"open"`
	ActiveID   string   `json:"active_id,omitempty"`
	Registered []string `json:"registered"`
	Fragment   string   `json:"fragment"`
}

// Stats contains window manager statistics
type Stats struct {
	OpenWindows      int    `json:"open_windows"`
	MinimizedWindows int    `json:"minimized_windows"`
	MaximizedWindows int    `json:"maximized_windows"`
	RegisteredApps   int    `json:"registered_apps"`
	ActiveID         string `json:"active_id,omitempty"`
	ZCounter         int    `json:"z_counter"`
	Ready            bool   `json:"ready"`
}

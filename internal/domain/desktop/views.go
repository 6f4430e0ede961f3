package desktop

import (
	"github.com/GriffinCanCode/webtop/internal/shared/types"
)

// WindowManager is the part of the window manager the views drive
type WindowManager interface {
	Windows() []types.WindowInstance
	ActiveID() string
	Open(id string, defaultPos *types.Position) bool
	Close(id string) bool
	Minimize(id string) bool
	Restore(id string) bool
	Toggle(id string) bool
	ToggleMaximize(id string) bool
}

// Catalog looks up registered apps
type Catalog interface {
	Get(id string) (types.AppDefinition, bool)
	List() []types.AppDefinition
}

// MouseButton is a pointer button as reported by the browser
type MouseButton int

const (
	ButtonLeft   MouseButton = 0
	ButtonMiddle MouseButton = 1
	ButtonRight  MouseButton = 2
)

// Context menu actions on a task button
const (
	ActionRestore  = "restore"
	ActionMinimize = "minimize"
	ActionMaximize = "maximize"
	ActionClose    = "close"
)

// TaskButton is one taskbar entry
type TaskButton struct {
	AppID     string     `json:"app_id"`
	Title     string     `json:"title"`
	Icon      types.Icon `json:"icon"`
	Active    bool       `json:"active"`
	Minimized bool       `json:"minimized"`
	Maximized bool       `json:"maximized"`
}

// MenuItem is one start menu entry
type MenuItem struct {
	AppID    string     `json:"app_id"`
	Title    string     `json:"title"`
	Icon     types.Icon `json:"icon"`
	Category string     `json:"category,omitempty"`
}

// DesktopIcon is an app shortcut placed on the desktop
type DesktopIcon struct {
	AppID    string         `json:"app_id"`
	Title    string         `json:"title"`
	Icon     types.Icon     `json:"icon"`
	Position types.Position `json:"position"`
}

// Taskbar returns one button per live window in ascending z order. A
// button is active when its window is the active one and not minimized.
// Title and icon overrides set on the window win over the registered ones.
func Taskbar(wm WindowManager, apps Catalog) []TaskButton {
	active := wm.ActiveID()
	windows := wm.Windows()

	buttons := make([]TaskButton, 0, len(windows))
	for _, w := range windows {
		b := TaskButton{
			AppID:     w.AppID,
			Title:     w.AppID,
			Active:    w.AppID == active && !w.Minimized,
			Minimized: w.Minimized,
			Maximized: w.Maximized,
		}
		if def, ok := apps.Get(w.AppID); ok {
			b.Title = def.Title
			b.Icon = def.Icon
		}
		if w.Meta.Title != "" {
			b.Title = w.Meta.Title
		}
		if w.Meta.Icon != "" {
			b.Icon = types.Icon{Src: w.Meta.Icon}
		}
		buttons = append(buttons, b)
	}
	return buttons
}

// ClickTask handles a click on a task button: left toggles the window,
// middle closes it. Other buttons do nothing.
func ClickTask(wm WindowManager, id string, button MouseButton) bool {
	switch button {
	case ButtonLeft:
		return wm.Toggle(id)
	case ButtonMiddle:
		return wm.Close(id)
	}
	return false
}

// TaskAction runs a task button context menu action
func TaskAction(wm WindowManager, id, action string) bool {
	switch action {
	case ActionRestore:
		return wm.Restore(id)
	case ActionMinimize:
		return wm.Minimize(id)
	case ActionMaximize:
		return wm.ToggleMaximize(id)
	case ActionClose:
		return wm.Close(id)
	}
	return false
}

// StartMenu lists the registered apps in registration order
func StartMenu(apps Catalog) []MenuItem {
	defs := apps.List()
	items := make([]MenuItem, 0, len(defs))
	for _, def := range defs {
		items = append(items, MenuItem{
			AppID:    def.ID,
			Title:    def.Title,
			Icon:     def.Icon,
			Category: def.Category,
		})
	}
	return items
}

// Launch opens an app from the start menu or a desktop icon, placing a new
// window at the app's default position.
func Launch(wm WindowManager, apps Catalog, id string) bool {
	def, ok := apps.Get(id)
	if !ok {
		return false
	}
	return wm.Open(id, def.DefaultPos)
}

// Icons lists the apps that have a desktop position
func Icons(apps Catalog) []DesktopIcon {
	var icons []DesktopIcon
	for _, def := range apps.List() {
		if def.DesktopPos == nil {
			continue
		}
		icons = append(icons, DesktopIcon{
			AppID:    def.ID,
			Title:    def.Title,
			Icon:     def.Icon,
			Position: *def.DesktopPos,
		})
	}
	return icons
}

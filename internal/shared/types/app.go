package types

import "strconv"

// Icon is an opaque icon handle. The core never interprets it.
type Icon struct {
	Src  string `json:"src" yaml:"src" toml:"src"`
	MIME string `json:"mime,omitempty" yaml:"mime,omitempty" toml:"mime,omitempty"`
}

// ContentRef points at the front-end bundle that renders an app.
// It is the usual value of AppDefinition.Content for apps loaded from manifests.
type ContentRef struct {
	Entry string `json:"entry" yaml:"entry" toml:"entry"`
	Kind  string `json:"kind,omitempty" yaml:"kind,omitempty" toml:"kind,omitempty"`
}

// Position is a pixel offset used for default window placement
type Position struct {
	Top  int `json:"top" yaml:"top" toml:"top"`
	Left int `json:"left" yaml:"left" toml:"left"`
}

// Px formats n as a CSS pixel length
func Px(n int) string {
	return strconv.Itoa(n) + "px"
}

// AppDefinition describes a registered application.
//
// Content is the app's content factory handle. The window manager stores it
// and hands it back to callers; it is never invoked by the core.
type AppDefinition struct {
	ID           string    `json:"id"`
	Title        string    `json:"title"`
	Icon         Icon      `json:"icon"`
	Content      any       `json:"content,omitempty"`
	DefaultPos   *Position `json:"default_pos,omitempty"`
	DefaultWidth int       `json:"default_width,omitempty"`
	DesktopPos   *Position `json:"desktop_pos,omitempty"`
	Category     string    `json:"category,omitempty"`
}

// AppSummary is the serialisable view of a registered app
type AppSummary struct {
	ID           string    `json:"id"`
	Title        string    `json:"title"`
	Icon         Icon      `json:"icon"`
	DefaultPos   *Position `json:"default_pos,omitempty"`
	DefaultWidth int       `json:"default_width,omitempty"`
	DesktopPos   *Position `json:"desktop_pos,omitempty"`
	Category     string    `json:"category,omitempty"`
}

// Summary drops the content handle
func (d AppDefinition) Summary() AppSummary {
	return AppSummary{
		ID:           d.ID,
		Title:        d.Title,
		Icon:         d.Icon,
		DefaultPos:   d.DefaultPos,
		DefaultWidth: d.DefaultWidth,
		DesktopPos:   d.DesktopPos,
		Category:     d.Category,
	}
}

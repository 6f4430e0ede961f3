package window

import "sort"

// KeyEvent is a keyboard event from the host
type KeyEvent struct {
	Key   string `json:"key"`
	Alt   bool   `json:"alt"`
	Ctrl  bool   `json:"ctrl"`
	Meta  bool   `json:"meta"`
	Shift bool   `json:"shift"`
	// Editable is set when focus is inside a text field
	Editable bool `json:"editable"`
}

// HandleKey dispatches the global shortcuts. Escape minimizes the active
// window, x closes it and Alt+Tab cycles focus through visible windows in
// ascending z order. Keys typed into editable fields are ignored.
func (m *Manager) HandleKey(ev KeyEvent) bool {
	if ev.Editable {
		return false
	}

	switch {
	case ev.Alt && ev.Key == "Tab":
		return m.cycleFocus()
	case ev.Alt || ev.Ctrl || ev.Meta:
		return false
	case ev.Key == "Escape":
		if active := m.ActiveID(); active != "" {
			return m.Minimize(active)
		}
	case ev.Key == "x" || ev.Key == "X":
		if active := m.ActiveID(); active != "" {
			return m.Close(active)
		}
	}
	return false
}

// cycleFocus focuses the visible window after the active one, wrapping
func (m *Manager) cycleFocus() bool {
	m.mu.Lock()
	visible := make([]string, 0, len(m.windows))
	for id, w := range m.windows {
		if w.Visible() {
			visible = append(visible, id)
		}
	}
	sort.Slice(visible, func(i, j int) bool {
		return m.windows[visible[i]].ZIndex < m.windows[visible[j]].ZIndex
	})
	active := m.activeID
	m.mu.Unlock()

	if len(visible) == 0 {
		return false
	}

	next := 0
	for i, id := range visible {
		if id == active {
			next = (i + 1) % len(visible)
			break
		}
	}
	return m.Focus(visible[next])
}

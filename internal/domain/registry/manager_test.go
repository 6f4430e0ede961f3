package registry

import (
	"testing"

	"github.com/GriffinCanCode/webtop/internal/shared/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func def(id, title string) types.AppDefinition {
	return types.AppDefinition{ID: id, Title: title, Content: types.ContentRef{Entry: id}}
}

func TestRegisterValidation(t *testing.T) {
	tests := []struct {
		name string
		def  types.AppDefinition
	}{
		{"missing id", types.AppDefinition{Title: "x", Content: "factory"}},
		{"blank id", types.AppDefinition{ID: "  ", Content: "factory"}},
		{"missing content", types.AppDefinition{ID: "notes", Title: "Notes"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := NewManager(nil)
			_, err := m.Register(tt.def)
			assert.ErrorIs(t, err, ErrInvalidDefinition)
			assert.Equal(t, 0, m.Len())
		})
	}
}

func TestRegisterOverwriteKeepsOrder(t *testing.T) {
	m := NewManager(nil)

	for _, d := range []types.AppDefinition{def("about", "About"), def("notes", "Notes"), def("doom", "DOOM")} {
		replaced, err := m.Register(d)
		require.NoError(t, err)
		assert.False(t, replaced)
	}

	replaced, err := m.Register(def("notes", "Notepad"))
	require.NoError(t, err)
	assert.True(t, replaced)

	assert.Equal(t, []string{"about", "notes", "doom"}, m.IDs())
	got, ok := m.Get("notes")
	require.True(t, ok)
	assert.Equal(t, "Notepad", got.Title)
	assert.Len(t, m.List(), 3)
}

func TestRegisterDefaultsTitleToID(t *testing.T) {
	m := NewManager(nil)
	_, err := m.Register(def("paint", ""))
	require.NoError(t, err)

	got, _ := m.Get("paint")
	assert.Equal(t, "paint", got.Title)
}

func TestUnregister(t *testing.T) {
	m := NewManager(nil)
	_, _ = m.Register(def("a", "A"))
	_, _ = m.Register(def("b", "B"))
	_, _ = m.Register(def("c", "C"))

	assert.True(t, m.Unregister("b"))
	assert.False(t, m.Unregister("b"))
	assert.False(t, m.Has("b"))
	assert.Equal(t, []string{"a", "c"}, m.IDs())
}

func TestStats(t *testing.T) {
	m := NewManager(nil)
	for _, d := range DefaultApps() {
		_, err := m.Register(d)
		require.NoError(t, err)
	}
	_, _ = m.Register(def("scratch", "Scratch"))

	stats := m.Stats()
	assert.Equal(t, 8, stats.TotalApps)
	assert.Equal(t, 7, stats.Categories["desktop"])
	assert.Equal(t, 1, stats.Categories["uncategorized"])
	assert.Equal(t, []string{"desktop", "uncategorized"}, m.Categories())
}

func TestTargetAdapter(t *testing.T) {
	m := NewManager(nil)
	target := m.Target()

	require.NoError(t, target.RegisterApp(def("notes", "Notes")))
	assert.True(t, m.Has("notes"))
	assert.True(t, target.UnregisterApp("notes"))
	assert.ErrorIs(t, target.RegisterApp(types.AppDefinition{ID: "x"}), ErrInvalidDefinition)
}

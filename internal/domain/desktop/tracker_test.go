package desktop

import (
	"testing"
	"time"

	"github.com/GriffinCanCode/webtop/internal/shared/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTrackerCountsEvents(t *testing.T) {
	wm, _ := newDesktop(t, def("notes", "Notepad"))
	tracker := NewTracker(wm)
	defer tracker.Close()

	changed := tracker.Changed()
	require.True(t, wm.Open("notes", nil))

	select {
	case <-changed:
	case <-time.After(time.Second):
		t.Fatal("tracker was not woken")
	}
	assert.Equal(t, uint64(2), tracker.Revision(), "opened and focused")
	assert.Equal(t, types.EventFocused, tracker.Last().Kind)

	tracker.Close()
	wm.Close("notes")
	assert.Equal(t, uint64(2), tracker.Revision())
}

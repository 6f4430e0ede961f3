package window

import (
	"sync"

	"github.com/GriffinCanCode/webtop/internal/shared/utils"
)

// Location is the host's navigable fragment (the URL hash in a browser)
type Location interface {
	Fragment() string
	// Replace sets the fragment without triggering a fragment change
	Replace(fragment string)
}

// MemoryLocation keeps the fragment in memory
type MemoryLocation struct {
	mu       sync.RWMutex
	fragment string
}

// NewMemoryLocation creates a location with an initial fragment
func NewMemoryLocation(fragment string) *MemoryLocation {
	return &MemoryLocation{fragment: utils.NormalizeFragment(fragment)}
}

// Fragment returns the current fragment without a leading '#'
func (l *MemoryLocation) Fragment() string {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.fragment
}

// Replace sets the fragment
func (l *MemoryLocation) Replace(fragment string) {
	l.mu.Lock()
	l.fragment = utils.NormalizeFragment(fragment)
	l.mu.Unlock()
}

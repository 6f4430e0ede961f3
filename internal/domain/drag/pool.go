package drag

import (
	"sync"

	"github.com/GriffinCanCode/webtop/internal/domain/window"
)

// Pool holds one controller per window id for a single pointer source
// such as a WebSocket connection.
type Pool struct {
	wm       WindowManager
	viewport window.Viewport
	surface  Surface
	opts     Options

	mu          sync.Mutex
	controllers map[string]*Controller
}

// NewPool creates an empty pool
func NewPool(wm WindowManager, viewport window.Viewport, surface Surface, opts Options) *Pool {
	return &Pool{
		wm:          wm,
		viewport:    viewport,
		surface:     surface,
		opts:        opts,
		controllers: make(map[string]*Controller),
	}
}

// Get returns the controller for id, creating it on first use
func (p *Pool) Get(id string) *Controller {
	p.mu.Lock()
	defer p.mu.Unlock()

	c, ok := p.controllers[id]
	if !ok {
		c = New(id, p.wm, p.viewport, p.surface, p.opts)
		p.controllers[id] = c
	}
	return c
}

// Down starts a drag of id
func (p *Pool) Down(id string, ptr Pointer) bool {
	return p.Get(id).Down(ptr)
}

// Move moves the drag of id
func (p *Pool) Move(id string, ptr Pointer) {
	if c := p.lookup(id); c != nil {
		c.Move(ptr)
	}
}

// Up ends the drag of id
func (p *Pool) Up(id string) bool {
	if c := p.lookup(id); c != nil {
		return c.Up()
	}
	return false
}

// Cancel cancels the drag of id
func (p *Pool) Cancel(id string) bool {
	if c := p.lookup(id); c != nil {
		return c.Cancel()
	}
	return false
}

// Active returns the ids with a drag in progress
func (p *Pool) Active() []string {
	p.mu.Lock()
	defer p.mu.Unlock()

	var ids []string
	for id, c := range p.controllers {
		if c.Active() {
			ids = append(ids, id)
		}
	}
	return ids
}

// Close cancels every active drag and empties the pool
func (p *Pool) Close() {
	p.mu.Lock()
	controllers := p.controllers
	p.controllers = make(map[string]*Controller)
	p.mu.Unlock()

	for _, c := range controllers {
		c.Cancel()
	}
}

func (p *Pool) lookup(id string) *Controller {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.controllers[id]
}

// internal/irq/controller.go
package irq

import (
	"fmt"
	"sync"
)

// Controller is a host-side interrupt controller.
//
// A single lock stands for "interrupts globally masked": it is held for the
// whole of every dispatch and by every critical section, so a handler never
// overlaps a critical section or another handler.
type Controller struct {
	mu    sync.Mutex
	lines map[int]*line
}

type line struct {
	handler func()
	enabled bool
	count   uint64
}

// New creates an empty controller.
func New() *Controller {
	return &Controller{lines: make(map[int]*line)}
}

// Attach registers h on the line. A line holds at most one handler.
func (c *Controller) Attach(n int, h func()) error {
	if n < 0 {
		return fmt.Errorf("irq: invalid line %d", n)
	}
	if h == nil {
		return fmt.Errorf("irq: nil handler for line %d", n)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if l, ok := c.lines[n]; ok && l.handler != nil {
		return fmt.Errorf("irq: line %d already attached", n)
	}
	c.lines[n] = &line{handler: h}
	return nil
}

// Detach removes the line's handler. The line is left disabled.
func (c *Controller) Detach(n int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.lines, n)
}

// Enable unmasks the line. No-op for an unattached line.
func (c *Controller) Enable(n int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if l, ok := c.lines[n]; ok {
		l.enabled = true
	}
}

// Disable masks the line.
func (c *Controller) Disable(n int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if l, ok := c.lines[n]; ok {
		l.enabled = false
	}
}

// Enabled reports whether the line is attached and unmasked.
func (c *Controller) Enabled(n int) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	l, ok := c.lines[n]
	return ok && l.enabled
}

// Count returns how many times the line's handler has run.
func (c *Controller) Count(n int) uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	if l, ok := c.lines[n]; ok {
		return l.count
	}
	return 0
}

// EnterCritical masks all interrupts until the returned function is called.
// Not reentrant.
func (c *Controller) EnterCritical() (leave func()) {
	c.mu.Lock()
	return c.mu.Unlock
}

// Raise delivers one interrupt on the line. The handler runs with all
// interrupts masked. It reports whether a handler ran.
func (c *Controller) Raise(n int) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	l, ok := c.lines[n]
	if !ok || !l.enabled || l.handler == nil {
		return false
	}

	l.count++
	l.handler()
	return true
}

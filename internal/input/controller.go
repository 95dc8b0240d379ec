package input

import (
	"sync"

	"github.com/charmbracelet/log"
)

// Controller holds down exactly the keys of the most recent target set.
// Each Apply presses keys that are newly wanted and releases keys that no
// longer are; a key is never pressed twice without a release in between.
type Controller struct {
	injector Injector
	logger   *log.Logger

	mu      sync.Mutex
	held    KeySet
	presses int
}

// NewController creates a controller over injector.
func NewController(injector Injector, logger *log.Logger) *Controller {
	return &Controller{
		injector: injector,
		logger:   logger.WithPrefix("input"),
	}
}

// Apply makes target the set of held keys. Injection failures are logged.
// A key whose release failed stays held so the next Apply retries it.
func (c *Controller) Apply(target KeySet) {
	c.mu.Lock()
	defer c.mu.Unlock()

	stuck := KeySet(0)
	for _, k := range c.held.Minus(target).Keys() {
		if err := c.injector.KeyUp(k); err != nil {
			c.logger.Warn("key release failed", "key", k, "err", err)
			stuck = stuck.With(k)
		}
	}
	for _, k := range target.Minus(c.held).Keys() {
		if err := c.injector.KeyDown(k); err != nil {
			c.logger.Warn("key press failed", "key", k, "err", err)
		}
		c.presses++
	}
	c.held = target | stuck
}

// ReleaseAll releases every held key.
func (c *Controller) ReleaseAll() {
	c.Apply(0)
}

// Held returns the keys currently held down.
func (c *Controller) Held() KeySet {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.held
}

// Presses returns how many key presses have been sent.
func (c *Controller) Presses() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.presses
}

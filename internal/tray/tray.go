// Package tray provides the system tray menu used when the controller runs
// without its debug window.
package tray

import (
	"sync"

	"github.com/getlantern/systray"
)

// Tray is the headless controller's status and control surface.
type Tray struct {
	title    string
	onToggle func(enabled bool)
	onQuit   func()
	enabled  bool
	mu       sync.RWMutex

	// Menu items stored for later updates
	menuToggle     *systray.MenuItem
	menuLastAction *systray.MenuItem
}

// New creates a Tray titled title, with the controller enabled.
func New(title string) *Tray {
	return &Tray{
		title:   title,
		enabled: true,
	}
}

// OnToggle sets the callback invoked when the user enables or disables
// the controller.
func (t *Tray) OnToggle(fn func(enabled bool)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onToggle = fn
}

// OnQuit sets the callback invoked when the user picks Quit.
func (t *Tray) OnQuit(fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onQuit = fn
}

// Run starts the tray event loop. It blocks until Quit, and must be called
// from the main goroutine.
func (t *Tray) Run() {
	systray.Run(t.onReady, func() {})
}

// Quit ends Run from any goroutine.
func (t *Tray) Quit() {
	systray.Quit()
}

func (t *Tray) onReady() {
	systray.SetTitle(t.title)
	systray.SetTooltip(t.title + " gesture controller")

	t.mu.Lock()
	t.menuToggle = systray.AddMenuItem(toggleTitle(t.enabled), "Enable or disable key output")
	systray.AddSeparator()
	t.menuLastAction = systray.AddMenuItem(lastActionTitle(""), "Most recent action")
	t.menuLastAction.Disable()
	t.mu.Unlock()

	systray.AddSeparator()
	menuQuit := systray.AddMenuItem("Quit", "Release all keys and quit")

	go func() {
		for {
			select {
			case <-t.menuToggle.ClickedCh:
				t.Toggle()
			case <-menuQuit.ClickedCh:
				t.handleQuit()
				return
			}
		}
	}()
}

// Toggle flips the enabled state and notifies the toggle callback.
func (t *Tray) Toggle() {
	t.mu.Lock()
	t.enabled = !t.enabled
	enabled := t.enabled
	if t.menuToggle != nil {
		t.menuToggle.SetTitle(toggleTitle(enabled))
	}
	callback := t.onToggle
	t.mu.Unlock()

	// Call the callback outside the lock to prevent deadlocks
	if callback != nil {
		callback(enabled)
	}
}

func (t *Tray) handleQuit() {
	t.mu.RLock()
	callback := t.onQuit
	t.mu.RUnlock()

	if callback != nil {
		callback()
	}

	systray.Quit()
}

// SetLastAction updates the last action display in the menu.
func (t *Tray) SetLastAction(name string) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	if t.menuLastAction != nil {
		t.menuLastAction.SetTitle(lastActionTitle(name))
	}
}

// IsEnabled returns the current enabled state.
func (t *Tray) IsEnabled() bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.enabled
}

func toggleTitle(enabled bool) string {
	if enabled {
		return "● Enabled"
	}
	return "○ Disabled"
}

func lastActionTitle(name string) string {
	if name == "" {
		return "Last: none"
	}
	return "Last: " + name
}

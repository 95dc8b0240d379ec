package input

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"sync"
	"time"

	"github.com/go-vgo/robotgo"
)

// ErrUnsupportedOS is returned by NewInjector for hosts without a back-end.
var ErrUnsupportedOS = errors.New("keyboard injection not supported on this OS")

// Injector sends synthetic key events to the operating system.
type Injector interface {
	KeyDown(k Key) error
	KeyUp(k Key) error
}

// NewInjector selects the key back-end for goos (a runtime.GOOS value).
func NewInjector(goos string) (Injector, error) {
	switch goos {
	case "windows", "linux":
		return RobotInjector{}, nil
	case "darwin":
		return NewAppleScriptInjector(), nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedOS, goos)
	}
}

// RobotInjector drives the keyboard through robotgo.
type RobotInjector struct{}

// KeyDown presses k.
func (RobotInjector) KeyDown(k Key) error {
	if err := robotgo.KeyToggle(k.String(), "down"); err != nil {
		return fmt.Errorf("key down %s: %w", k, err)
	}
	return nil
}

// KeyUp releases k.
func (RobotInjector) KeyUp(k Key) error {
	if err := robotgo.KeyToggle(k.String(), "up"); err != nil {
		return fmt.Errorf("key up %s: %w", k, err)
	}
	return nil
}

// AppleScriptInjector drives the keyboard through System Events on macOS.
type AppleScriptInjector struct {
	run func(script string) error
}

// NewAppleScriptInjector creates an injector that shells out to osascript.
func NewAppleScriptInjector() *AppleScriptInjector {
	return &AppleScriptInjector{run: runAppleScript}
}

// KeyDown presses k.
func (a *AppleScriptInjector) KeyDown(k Key) error {
	return a.run(keyScript("key down", k))
}

// KeyUp releases k.
func (a *AppleScriptInjector) KeyUp(k Key) error {
	return a.run(keyScript("key up", k))
}

func keyScript(verb string, k Key) string {
	return fmt.Sprintf(`tell application "System Events" to %s "%s"`, verb, k)
}

// scriptTimeout bounds one osascript call.
const scriptTimeout = 2 * time.Second

// runAppleScript executes an AppleScript command and returns any error.
func runAppleScript(script string) error {
	ctx, cancel := context.WithTimeout(context.Background(), scriptTimeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, "osascript", "-e", script)
	output, err := cmd.CombinedOutput()
	if ctx.Err() == context.DeadlineExceeded {
		return fmt.Errorf("osascript timed out after %s", scriptTimeout)
	}
	if err != nil {
		return fmt.Errorf("%w: %s", err, string(output))
	}
	return nil
}

// Event is one call recorded by a Recorder.
type Event struct {
	Key  Key
	Down bool
}

func (e Event) String() string {
	if e.Down {
		return "+" + e.Key.String()
	}
	return "-" + e.Key.String()
}

// Recorder is an Injector that records calls instead of sending them.
// It is safe for concurrent use.
type Recorder struct {
	mu     sync.Mutex
	events []Event
	err    error
}

// KeyDown records a press.
func (r *Recorder) KeyDown(k Key) error {
	return r.record(Event{Key: k, Down: true})
}

// KeyUp records a release.
func (r *Recorder) KeyUp(k Key) error {
	return r.record(Event{Key: k})
}

func (r *Recorder) record(e Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
	return r.err
}

// SetError makes subsequent calls return err after recording.
func (r *Recorder) SetError(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.err = err
}

// Events returns a copy of the recorded calls.
func (r *Recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Event(nil), r.events...)
}

// Reset clears the recorded calls.
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = nil
}

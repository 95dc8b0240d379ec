package overlay

import "gocv.io/x/gocv"

// QuitKey closes the debug window.
const QuitKey = 'q'

// Window is an OpenCV highgui window. It must be used from the main
// goroutine on platforms whose GUI toolkits require it.
type Window struct {
	win *gocv.Window
}

// NewWindow opens a window titled name.
func NewWindow(name string) *Window {
	return &Window{win: gocv.NewWindow(name)}
}

// Show displays frame and polls the keyboard for one millisecond. It
// reports whether the user asked to quit.
func (w *Window) Show(frame *gocv.Mat) bool {
	w.win.IMShow(*frame)
	return w.win.WaitKey(1) == QuitKey
}

// Close destroys the window.
func (w *Window) Close() error {
	return w.win.Close()
}

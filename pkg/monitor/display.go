package monitor

import "gocv.io/x/gocv"

// WindowTitle is the title of the live view window.
const WindowTitle = "Live Emotion Detection"

// Display shows annotated frames and reports quit requests.
type Display interface {
	// Show presents frame. The frame is only valid during the call.
	Show(frame gocv.Mat)

	// QuitRequested polls for the quit key. It must not block.
	QuitRequested() bool

	Close() error
}

// Key codes that end the session.
const (
	keyQuit      = 'q'
	keyQuitUpper = 'Q'
	keyEscape    = 27
)

// Window displays frames in an OpenCV HighGUI window.
type Window struct {
	window *gocv.Window
}

// NewWindow opens the live view window.
func NewWindow(title string) *Window {
	if title == "" {
		title = WindowTitle
	}
	return &Window{window: gocv.NewWindow(title)}
}

// Show implements Display.
func (w *Window) Show(frame gocv.Mat) {
	w.window.IMShow(frame)
}

// QuitRequested implements Display. WaitKey(1) also lets HighGUI
// process window events, so it runs once per frame.
func (w *Window) QuitRequested() bool {
	return isQuitKey(w.window.WaitKey(1))
}

// Close implements Display.
func (w *Window) Close() error {
	return w.window.Close()
}

func isQuitKey(key int) bool {
	if key < 0 {
		return false
	}
	// Some backends report modifier bits above the low byte
	switch key & 0xFF {
	case keyQuit, keyQuitUpper, keyEscape:
		return true
	}
	return false
}

package camera

import "errors"

var (
	// ErrOpen is returned when the camera cannot be opened.
	ErrOpen = errors.New("camera: open failed")

	// ErrRead is returned when a frame cannot be read.
	// The monitor treats it as fatal.
	ErrRead = errors.New("camera: read failed")

	// ErrClosed is returned when reading from a closed source.
	ErrClosed = errors.New("camera: source closed")

	// ErrEmptyFrame is returned for frames without pixels.
	ErrEmptyFrame = errors.New("camera: empty frame")
)

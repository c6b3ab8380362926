// Package detection provides face detection using computer vision
package detection

import (
	"image"

	"gocv.io/x/gocv"
)

// Face is a detected face in pixel coordinates of the source frame
type Face struct {
	Rect       image.Rectangle
	Confidence float64 // Detection confidence (0-1)
}

// Area returns the area of the bounding box in pixels
func (f Face) Area() int {
	return f.Rect.Dx() * f.Rect.Dy()
}

// Detector is the interface for face detection backends
type Detector interface {
	// Detect finds faces in a BGR frame
	Detect(frame gocv.Mat) ([]Face, error)

	// Close releases resources
	Close() error
}

// Config holds detector configuration
type Config struct {
	ModelPath        string  // Path to ONNX model
	ConfidenceThresh float64 // Minimum confidence (default 0.6)
	NMSThresh        float64 // Non-maximum suppression threshold
	InputWidth       int     // Initial model input width
	InputHeight      int     // Initial model input height
}

// DefaultConfig returns production defaults for YuNet.
// The input size follows the frame size at detection time.
func DefaultConfig() Config {
	return Config{
		ModelPath:        "models/face_detection_yunet_2023mar.onnx",
		ConfidenceThresh: 0.6,
		NMSThresh:        0.3,
		InputWidth:       320,
		InputHeight:      240,
	}
}

// ClampRect restricts r to bounds. The result may be empty.
func ClampRect(r, bounds image.Rectangle) image.Rectangle {
	return r.Canon().Intersect(bounds)
}

// SortByArea orders faces largest first, in place.
func SortByArea(faces []Face) {
	for i := 1; i < len(faces); i++ {
		for j := i; j > 0 && faces[j].Area() > faces[j-1].Area(); j-- {
			faces[j], faces[j-1] = faces[j-1], faces[j]
		}
	}
}

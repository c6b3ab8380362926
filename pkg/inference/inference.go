// Package inference wraps facial emotion classifiers behind a single
// Classifier interface.
//
// Backends:
//   - DeepFace: HTTP client for a DeepFace REST service (POST /analyze).
//   - FERPlus: local YuNet face detection plus the FER+ ONNX model via GoCV.
//   - Chain: tries several classifiers in order until one succeeds.
//
// Example usage:
//
//	clf, _ := inference.New(
//	    inference.WithBackend(inference.BackendDeepFace),
//	    inference.WithDeepFaceURL("http://localhost:5005"),
//	)
//	defer clf.Close()
//
//	detections, err := clf.Analyze(ctx, frame)
//
// "No faces" is not an error: Analyze returns an empty slice.
package inference

import (
	"context"

	"github.com/teslashibe/moodcam/pkg/emotions"
	"gocv.io/x/gocv"
)

// Classifier analyses one frame and reports every face it finds.
type Classifier interface {
	// Analyze returns zero or more detections for the frame.
	// Coordinates are in pixels of the frame as passed in.
	Analyze(ctx context.Context, frame gocv.Mat) ([]emotions.Detection, error)

	// Name identifies the backend in logs.
	Name() string

	// Close releases any resources held by the classifier.
	Close() error
}

// Backend names accepted by New.
const (
	BackendDeepFace = "deepface"
	BackendFERPlus  = "ferplus"
	BackendAuto     = "auto" // DeepFace, falling back to FERPlus
)

// Backends lists the accepted backend names.
func Backends() []string {
	return []string{BackendDeepFace, BackendFERPlus, BackendAuto}
}

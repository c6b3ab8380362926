package monitor

import (
	"sync/atomic"
	"time"

	"github.com/teslashibe/moodcam/pkg/emotions"
	"github.com/teslashibe/moodcam/pkg/overlay"
	"gocv.io/x/gocv"
)

// Analysis is the outcome of one classifier call.
type Analysis struct {
	ID         string               `json:"id"`
	Frame      uint64               `json:"frame"`
	At         time.Time            `json:"at"`
	Duration   time.Duration        `json:"duration"`
	Backend    string               `json:"backend"`
	Detections []emotions.Detection `json:"-"`
	Faces      []Face               `json:"faces"`
	Err        error                `json:"-"`
	Error      string               `json:"error,omitempty"`
}

// Face is a detection with its rendered label.
type Face struct {
	Region      emotions.Region `json:"region"`
	Emotion     string          `json:"emotion"`
	Probability float64         `json:"probability"`
	Label       string          `json:"label"`
}

// Failed reports whether the classifier returned an error.
func (a Analysis) Failed() bool {
	return a.Err != nil
}

func facesOf(dets []emotions.Detection) []Face {
	faces := make([]Face, 0, len(dets))
	for _, d := range dets {
		faces = append(faces, Face{
			Region:      d.Region,
			Emotion:     d.Dominant,
			Probability: d.Probability(),
			Label:       d.Label(),
		})
	}
	return faces
}

// Observer receives loop events. Calls happen on the loop goroutine
// and must return quickly.
type Observer interface {
	OnAnalysis(a Analysis)

	// OnFrame receives the annotated frame. It is only valid during the call.
	OnFrame(frame gocv.Mat)
}

type nopObserver struct{}

func (nopObserver) OnAnalysis(Analysis) {}
func (nopObserver) OnFrame(gocv.Mat) {}

// Renderer draws annotations onto a frame.
type Renderer interface {
	Draw(dst *gocv.Mat, anns []overlay.Annotation)
}

// Annotate turns detections into overlay annotations.
// Detections with an unusable region are skipped.
func Annotate(dets []emotions.Detection) []overlay.Annotation {
	if len(dets) == 0 {
		return nil
	}
	anns := make([]overlay.Annotation, 0, len(dets))
	for _, d := range dets {
		if !d.Region.Valid() {
			continue
		}
		anns = append(anns, overlay.Annotation{Rect: d.Region.Rect(), Text: d.Label()})
	}
	return anns
}

// Stats counts loop activity. Safe for concurrent reads.
type Stats struct {
	frames     atomic.Uint64
	analyses   atomic.Uint64
	failures   atomic.Uint64
	detections atomic.Uint64
}

// StatsSnapshot is a point-in-time copy of Stats.
type StatsSnapshot struct {
	Frames     uint64 `json:"frames"`
	Analyses   uint64 `json:"analyses"`
	Failures   uint64 `json:"failures"`
	Detections uint64 `json:"detections"`
}

// Snapshot returns the current counters.
func (s *Stats) Snapshot() StatsSnapshot {
	return StatsSnapshot{
		Frames:     s.frames.Load(),
		Analyses:   s.analyses.Load(),
		Failures:   s.failures.Load(),
		Detections: s.detections.Load(),
	}
}

// Package emotions turns raw facial-emotion classifier output into the short
// labels drawn over the live video.
//
// A classifier reports, per face, a region, a dominant emotion and a score per
// emotion. MapLabel and Compose reduce that to text such as "Crying (71%)".
package emotions

import (
	"image"
	"sort"
)

// Emotion names produced by the supported classifiers.
const (
	Happy    = "happy"
	Angry    = "angry"
	Sad      = "sad"
	Neutral  = "neutral"
	Surprise = "surprise"
	Fear     = "fear"
	Disgust  = "disgust"
)

// Vocabulary lists the emotions every classifier backend is expected to report.
var Vocabulary = []string{Angry, Disgust, Fear, Happy, Sad, Surprise, Neutral}

// Region is a face bounding box in pixels of the analysed frame.
type Region struct {
	X int `json:"x"`
	Y int `json:"y"`
	W int `json:"w"`
	H int `json:"h"`
}

// Valid reports whether the region has a positive size.
func (r Region) Valid() bool {
	return r.W > 0 && r.H > 0
}

// Rect converts the region to an image.Rectangle.
func (r Region) Rect() image.Rectangle {
	return image.Rect(r.X, r.Y, r.X+r.W, r.Y+r.H)
}

// RegionFromRect converts an image.Rectangle to a Region.
func RegionFromRect(r image.Rectangle) Region {
	return Region{X: r.Min.X, Y: r.Min.Y, W: r.Dx(), H: r.Dy()}
}

// Scores maps emotion name to probability (0-1).
type Scores map[string]float64

// Dominant returns the highest scoring emotion and its probability.
// Ties go to the alphabetically first name so the result is deterministic.
func (s Scores) Dominant() (string, float64) {
	if len(s) == 0 {
		return "", 0
	}

	names := make([]string, 0, len(s))
	for name := range s {
		names = append(names, name)
	}
	sort.Strings(names)

	best := names[0]
	for _, name := range names[1:] {
		if s[name] > s[best] {
			best = name
		}
	}
	return best, s[best]
}

// Detection is one face found in one analysed frame.
type Detection struct {
	Region   Region `json:"region"`
	Dominant string `json:"dominant_emotion"`
	Scores   Scores `json:"emotion"`
}

// Probability returns the score of the dominant emotion, 0 if missing.
func (d Detection) Probability() float64 {
	return d.Scores[d.Dominant]
}

// Label returns the overlay text for the detection.
func (d Detection) Label() string {
	return Compose(d.Dominant, d.Probability())
}

// Package camera opens the frame sources moodcam reads from.
//
// A Source fills a gocv.Mat with the next BGR frame. Two sources exist:
// a local capture device (webcam) and a WebRTC stream published by a
// GStreamer webrtcsink, for cameras attached to another machine.
package camera

import "fmt"

// Source kinds.
const (
	SourceDevice = "device"
	SourceStream = "stream"
)

// Config holds camera configuration.
type Config struct {
	// Source selects the frame source: "device" or "stream".
	Source string `json:"source"`

	// === Local device ===
	Device int `json:"device"` // Capture device index
	Width  int `json:"width"`  // Requested frame width (best effort)
	Height int `json:"height"` // Requested frame height (best effort)

	// === WebRTC stream ===
	// SignallingURL is the webrtcsink signalling server, e.g. ws://host:8443.
	SignallingURL string `json:"signalling_url"`

	// Producer is the "name" meta of the producer to consume.
	// Empty picks the first producer listed.
	Producer string `json:"producer"`
}

// Limits for requested resolutions.
const (
	MinWidth  = 160
	MinHeight = 120
	MaxWidth  = 3840
	MaxHeight = 2160
)

// DefaultConfig returns the default configuration: device 0 at 320x240.
// Small frames keep the analysis round trip short.
func DefaultConfig() Config {
	return Config{
		Source: SourceDevice,
		Device: 0,
		Width:  320,
		Height: 240,
	}
}

// Validate checks if the config values are within valid ranges.
// Returns a list of validation errors, or nil if valid.
func (c *Config) Validate() []string {
	var errors []string

	switch c.Source {
	case SourceDevice, "":
		if c.Device < 0 {
			errors = append(errors, "device index must not be negative")
		}
	case SourceStream:
		if c.SignallingURL == "" {
			errors = append(errors, "signalling_url is required for stream source")
		}
	default:
		errors = append(errors, "source must be device or stream")
	}

	if c.Width < MinWidth || c.Width > MaxWidth {
		errors = append(errors, fmt.Sprintf("width must be between %d and %d", MinWidth, MaxWidth))
	}
	if c.Height < MinHeight || c.Height > MaxHeight {
		errors = append(errors, fmt.Sprintf("height must be between %d and %d", MinHeight, MaxHeight))
	}

	return errors
}

package camera

import (
	"fmt"
	"strings"

	"gocv.io/x/gocv"
)

// Source produces frames. It is owned by one goroutine.
type Source interface {
	// Read fills dst with the next frame.
	// Any error is final: the source will not recover.
	Read(dst *gocv.Mat) error

	// Close releases the device or connection.
	Close() error
}

// Open creates the source described by cfg.
func Open(cfg Config) (Source, error) {
	if problems := cfg.Validate(); len(problems) > 0 {
		return nil, fmt.Errorf("%w: %s", ErrOpen, strings.Join(problems, "; "))
	}

	switch cfg.Source {
	case SourceStream:
		return OpenStream(cfg)
	default:
		return OpenDevice(cfg)
	}
}

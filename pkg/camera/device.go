package camera

import (
	"fmt"

	"github.com/teslashibe/moodcam/internal/log"
	"gocv.io/x/gocv"
)

// Device reads frames from a local capture device.
type Device struct {
	capture *gocv.VideoCapture
	index   int
	closed  bool
}

// OpenDevice opens the capture device and requests the configured resolution.
// The driver may pick a different size; Size reports the actual one.
func OpenDevice(cfg Config) (*Device, error) {
	capture, err := gocv.OpenVideoCapture(cfg.Device)
	if err != nil {
		return nil, fmt.Errorf("%w: device %d: %v", ErrOpen, cfg.Device, err)
	}
	if !capture.IsOpened() {
		capture.Close()
		return nil, fmt.Errorf("%w: device %d", ErrOpen, cfg.Device)
	}

	capture.Set(gocv.VideoCaptureFrameWidth, float64(cfg.Width))
	capture.Set(gocv.VideoCaptureFrameHeight, float64(cfg.Height))

	d := &Device{capture: capture, index: cfg.Device}
	w, h := d.Size()
	log.Info("camera opened", "device", cfg.Device, "requested", fmt.Sprintf("%dx%d", cfg.Width, cfg.Height),
		"actual", fmt.Sprintf("%dx%d", w, h))

	return d, nil
}

// Size returns the resolution reported by the driver.
func (d *Device) Size() (width, height int) {
	return int(d.capture.Get(gocv.VideoCaptureFrameWidth)), int(d.capture.Get(gocv.VideoCaptureFrameHeight))
}

// Read implements Source.
func (d *Device) Read(dst *gocv.Mat) error {
	if d.closed {
		return ErrClosed
	}
	if ok := d.capture.Read(dst); !ok {
		return fmt.Errorf("%w: device %d", ErrRead, d.index)
	}
	if dst.Empty() {
		return fmt.Errorf("%w: device %d: %v", ErrRead, d.index, ErrEmptyFrame)
	}
	return nil
}

// Close implements Source.
func (d *Device) Close() error {
	if d.closed {
		return nil
	}
	d.closed = true
	return d.capture.Close()
}

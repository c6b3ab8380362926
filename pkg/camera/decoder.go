package camera

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"sync"
	"time"
)

const (
	nalTypeSPS = 7

	// maxGOPBytes bounds the buffered group of pictures.
	maxGOPBytes   = 4 << 20
	decodeTimeout = 500 * time.Millisecond
	minJPEGSize   = 1000
	ffmpegQuality = "3"
	ffmpegBinary  = "ffmpeg"
)

var jpegSOI = []byte{0xFF, 0xD8}

// h264Decoder buffers Annex-B NAL units from the last keyframe and
// decodes the newest picture to JPEG with a short-lived ffmpeg process.
type h264Decoder struct {
	mu         sync.Mutex
	gop        bytes.Buffer
	haveSPS    bool
	lastDecode time.Time
	window     time.Duration
}

func newH264Decoder(window time.Duration) *h264Decoder {
	return &h264Decoder{window: window}
}

// Push appends nal to the current group of pictures. When marker ends an
// access unit and the decode window has elapsed it returns a JPEG.
func (d *h264Decoder) Push(nal []byte, marker bool) ([]byte, error) {
	d.mu.Lock()
	if containsNAL(nal, nalTypeSPS) {
		d.gop.Reset()
		d.haveSPS = true
	}
	if !d.haveSPS {
		d.mu.Unlock()
		return nil, nil
	}
	if d.gop.Len()+len(nal) > maxGOPBytes {
		// Wait for the next keyframe rather than grow without bound
		d.gop.Reset()
		d.haveSPS = false
		d.mu.Unlock()
		return nil, fmt.Errorf("group of pictures exceeds %d bytes", maxGOPBytes)
	}
	d.gop.Write(nal)

	if !marker || time.Since(d.lastDecode) < d.window {
		d.mu.Unlock()
		return nil, nil
	}
	d.lastDecode = time.Now()
	data := bytes.Clone(d.gop.Bytes())
	d.mu.Unlock()

	return decodeLastFrame(data)
}

// decodeLastFrame runs ffmpeg over an Annex-B buffer and returns the last
// picture as JPEG.
func decodeLastFrame(h264 []byte) ([]byte, error) {
	ctx, cancel := context.WithTimeout(context.Background(), decodeTimeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, ffmpegBinary,
		"-loglevel", "error",
		"-f", "h264",
		"-i", "pipe:0",
		"-f", "image2pipe",
		"-vcodec", "mjpeg",
		"-q:v", ffmpegQuality,
		"pipe:1",
	)

	var stdout, stderr bytes.Buffer
	cmd.Stdin = bytes.NewReader(h264)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, fmt.Errorf("ffmpeg timed out after %s", decodeTimeout)
		}
		return nil, fmt.Errorf("ffmpeg: %w: %s", err, bytes.TrimSpace(stderr.Bytes()))
	}

	frame := lastJPEG(stdout.Bytes())
	if len(frame) < minJPEGSize {
		return nil, nil
	}
	return frame, nil
}

// lastJPEG returns the final image of a concatenated MJPEG stream.
// SOI never appears inside entropy-coded data, so the last SOI starts
// the last image.
func lastJPEG(stream []byte) []byte {
	i := bytes.LastIndex(stream, jpegSOI)
	if i < 0 {
		return nil
	}
	return stream[i:]
}

// containsNAL reports whether an Annex-B buffer holds a NAL unit of type t.
func containsNAL(annexB []byte, t byte) bool {
	for i := 0; i+3 < len(annexB); i++ {
		if annexB[i] == 0 && annexB[i+1] == 0 && annexB[i+2] == 1 {
			if annexB[i+3]&0x1F == t {
				return true
			}
			i += 2
		}
	}
	return false
}

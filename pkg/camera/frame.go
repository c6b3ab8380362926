package camera

import (
	"fmt"

	"gocv.io/x/gocv"
)

// DefaultJPEGQuality is used when encoding frames for analysis or streaming.
const DefaultJPEGQuality = 85

// EncodeJPEG encodes a BGR frame as JPEG.
func EncodeJPEG(frame gocv.Mat, quality int) ([]byte, error) {
	if frame.Empty() {
		return nil, ErrEmptyFrame
	}
	if quality < 1 || quality > 100 {
		quality = DefaultJPEGQuality
	}

	buf, err := gocv.IMEncodeWithParams(gocv.JPEGFileExt, frame, []int{gocv.IMWriteJpegQuality, quality})
	if err != nil {
		return nil, fmt.Errorf("encode jpeg: %w", err)
	}
	defer buf.Close()

	// Copy out of the native buffer before it is freed
	src := buf.GetBytes()
	data := make([]byte, len(src))
	copy(data, src)
	return data, nil
}

// DecodeJPEG decodes JPEG bytes into dst, replacing its contents.
func DecodeJPEG(data []byte, dst *gocv.Mat) error {
	img, err := gocv.IMDecode(data, gocv.IMReadColor)
	if err != nil {
		return fmt.Errorf("decode image: %w", err)
	}
	defer img.Close()

	if img.Empty() {
		return ErrEmptyFrame
	}
	img.CopyTo(dst)
	return nil
}

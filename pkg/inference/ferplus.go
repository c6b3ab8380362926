package inference

import (
	"context"
	"fmt"
	"image"
	"log/slog"
	"os"
	"sync"

	"github.com/teslashibe/moodcam/pkg/debug"
	"github.com/teslashibe/moodcam/pkg/detection"
	"github.com/teslashibe/moodcam/pkg/emotions"
	"gocv.io/x/gocv"
)

// FERPlusClasses is the output order of the FER+ model.
var FERPlusClasses = []string{
	"neutral", "happiness", "surprise", "sadness", "anger", "disgust", "fear", "contempt",
}

// ferPlusNames maps FER+ class names onto the DeepFace vocabulary.
// contempt has no DeepFace equivalent and is kept as is.
var ferPlusNames = map[string]string{
	"neutral":   emotions.Neutral,
	"happiness": emotions.Happy,
	"surprise":  emotions.Surprise,
	"sadness":   emotions.Sad,
	"anger":     emotions.Angry,
	"disgust":   emotions.Disgust,
	"fear":      emotions.Fear,
	"contempt":  "contempt",
}

// ferPlusInputSize is the model's grayscale input size.
var ferPlusInputSize = image.Pt(64, 64)

// FERPlus classifies emotions locally: YuNet finds faces and the FER+
// network scores each face crop.
type FERPlus struct {
	detector detection.Detector
	net      gocv.Net
	logger   *slog.Logger
	mu       sync.Mutex // Protects inference
}

// NewFERPlus loads the face detector and the FER+ model.
func NewFERPlus(cfg *Config) (*FERPlus, error) {
	if _, err := os.Stat(cfg.FERPlusModel); os.IsNotExist(err) {
		return nil, fmt.Errorf("%w: %s", ErrModelNotFound, cfg.FERPlusModel)
	}

	detector, err := detection.NewYuNet(cfg.Detector)
	if err != nil {
		return nil, fmt.Errorf("face detector: %w", err)
	}

	net := gocv.ReadNetFromONNX(cfg.FERPlusModel)
	if net.Empty() {
		detector.Close()
		return nil, fmt.Errorf("failed to load FER+ model from %s", cfg.FERPlusModel)
	}
	net.SetPreferableBackend(gocv.NetBackendDefault)
	net.SetPreferableTarget(gocv.NetTargetCPU)

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return newFERPlus(detector, net, logger), nil
}

func newFERPlus(detector detection.Detector, net gocv.Net, logger *slog.Logger) *FERPlus {
	return &FERPlus{
		detector: detector,
		net:      net,
		logger:   logger.With("component", "inference.ferplus"),
	}
}

// Name implements Classifier.
func (f *FERPlus) Name() string {
	return BackendFERPlus
}

// Analyze implements Classifier.
func (f *FERPlus) Analyze(ctx context.Context, frame gocv.Mat) ([]emotions.Detection, error) {
	if frame.Empty() {
		return nil, WrapError(BackendFERPlus, ErrEmptyFrame)
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	faces, err := f.detector.Detect(frame)
	if err != nil {
		return nil, WrapError(BackendFERPlus, err)
	}

	bounds := image.Rect(0, 0, frame.Cols(), frame.Rows())
	detections := make([]emotions.Detection, 0, len(faces))
	for _, face := range faces {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		rect := detection.ClampRect(face.Rect, bounds)
		if rect.Empty() {
			continue
		}

		logits, err := f.score(frame, rect)
		if err != nil {
			return nil, WrapError(BackendFERPlus, err)
		}

		scores := ferPlusScores(logits)
		dominant, prob := scores.Dominant()
		det := emotions.Detection{
			Region:   emotions.RegionFromRect(rect),
			Dominant: dominant,
			Scores:   scores,
		}
		detections = append(detections, det)

		debug.AnalysisLog("Emotion: %s, Probability: %.3f, Label: %s\n", dominant, prob, det.Label())
	}

	f.logger.Debug("analysis complete", "faces", len(detections))
	return detections, nil
}

// score runs the network on one face crop and returns the raw logits.
func (f *FERPlus) score(frame gocv.Mat, rect image.Rectangle) ([]float32, error) {
	roi := frame.Region(rect)
	defer roi.Close()

	gray := gocv.NewMat()
	defer gray.Close()
	gocv.CvtColor(roi, &gray, gocv.ColorBGRToGray)

	resized := gocv.NewMat()
	defer resized.Close()
	gocv.Resize(gray, &resized, ferPlusInputSize, 0, 0, gocv.InterpolationLinear)

	// FER+ takes raw 0-255 grayscale, no mean subtraction
	blob := gocv.BlobFromImage(resized, 1.0, ferPlusInputSize, gocv.NewScalar(0, 0, 0, 0), false, false)
	defer blob.Close()

	f.net.SetInput(blob, "")
	output := f.net.Forward("")
	defer output.Close()

	data, err := output.DataPtrFloat32()
	if err != nil {
		return nil, fmt.Errorf("read output: %w", err)
	}
	if len(data) < len(FERPlusClasses) {
		return nil, fmt.Errorf("unexpected output size %d", len(data))
	}

	logits := make([]float32, len(FERPlusClasses))
	copy(logits, data)
	return logits, nil
}

// ferPlusScores turns FER+ logits into named probabilities.
func ferPlusScores(logits []float32) emotions.Scores {
	probs := emotions.Softmax(logits)
	scores := make(emotions.Scores, len(probs))
	for i, p := range probs {
		if i >= len(FERPlusClasses) {
			break
		}
		scores[ferPlusNames[FERPlusClasses[i]]] = p
	}
	return scores
}

// Close implements Classifier.
func (f *FERPlus) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.net.Close()
	return f.detector.Close()
}

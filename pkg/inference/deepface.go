package inference

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/teslashibe/moodcam/internal/httpc"
	"github.com/teslashibe/moodcam/pkg/camera"
	"github.com/teslashibe/moodcam/pkg/debug"
	"github.com/teslashibe/moodcam/pkg/emotions"
	"gocv.io/x/gocv"
)

// DeepFace analyses frames through a DeepFace REST service.
//
// The service is started with `deepface api` (or the official Docker image)
// and exposes POST /analyze. Detection is never enforced, so frames without
// faces come back as an empty result instead of an error.
type DeepFace struct {
	baseURL         string
	detectorBackend string
	quality         int
	http            *http.Client
	logger          *slog.Logger
}

// NewDeepFace creates a DeepFace client.
func NewDeepFace(cfg *Config) *DeepFace {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &DeepFace{
		baseURL:         strings.TrimSuffix(cfg.DeepFaceURL, "/"),
		detectorBackend: cfg.DetectorBackend,
		quality:         cfg.JPEGQuality,
		http:            httpc.NewClient(cfg.Timeout),
		logger:          logger.With("component", "inference.deepface"),
	}
}

// Name implements Classifier.
func (d *DeepFace) Name() string {
	return BackendDeepFace
}

// analyzeRequest is the body of POST /analyze.
type analyzeRequest struct {
	Img              string   `json:"img"`
	Actions          []string `json:"actions"`
	DetectorBackend  string   `json:"detector_backend,omitempty"`
	EnforceDetection bool     `json:"enforce_detection"`
	Align            bool     `json:"align"`
}

// Analyze implements Classifier.
func (d *DeepFace) Analyze(ctx context.Context, frame gocv.Mat) ([]emotions.Detection, error) {
	if frame.Empty() {
		return nil, WrapError(BackendDeepFace, ErrEmptyFrame)
	}

	start := time.Now()

	jpegData, err := camera.EncodeJPEG(frame, d.quality)
	if err != nil {
		return nil, WrapError(BackendDeepFace, err)
	}

	req := analyzeRequest{
		Img:              "data:image/jpeg;base64," + base64.StdEncoding.EncodeToString(jpegData),
		Actions:          []string{"emotion"},
		DetectorBackend:  d.detectorBackend,
		EnforceDetection: false,
		Align:            true,
	}

	resp, err := httpc.PostJSON(ctx, d.http, d.baseURL+"/analyze", req)
	if err != nil {
		return nil, WrapError(BackendDeepFace, fmt.Errorf("request failed: %w", err))
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, WrapError(BackendDeepFace, fmt.Errorf("read response: %w", err))
	}

	if resp.StatusCode != http.StatusOK {
		return nil, WrapError(BackendDeepFace, parseAPIError(resp.StatusCode, body))
	}

	detections, skipped, err := parseAnalyzeResponse(body)
	if err != nil {
		return nil, WrapError(BackendDeepFace, err)
	}

	d.logger.Debug("analysis complete",
		"faces", len(detections),
		"skipped", skipped,
		"latency_ms", time.Since(start).Milliseconds(),
	)
	for _, det := range detections {
		debug.AnalysisLog("Emotion: %s, Probability: %.3f, Label: %s\n",
			det.Dominant, det.Probability(), det.Label())
	}

	return detections, nil
}

// Health checks that the service answers on its root endpoint.
func (d *DeepFace) Health(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, d.baseURL+"/", nil)
	if err != nil {
		return WrapError(BackendDeepFace, err)
	}
	resp, err := d.http.Do(req)
	if err != nil {
		return WrapError(BackendDeepFace, fmt.Errorf("%w: %v", ErrBackendUnavailable, err))
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode >= 400 {
		return WrapError(BackendDeepFace, &APIError{StatusCode: resp.StatusCode, Message: "health check failed"})
	}
	return nil
}

// Close implements Classifier.
func (d *DeepFace) Close() error {
	d.http.CloseIdleConnections()
	return nil
}

// apiFace is one entry of the DeepFace analyze result.
// Region fields are pointers so a missing region can be told apart from 0.
type apiFace struct {
	Region *struct {
		X *float64 `json:"x"`
		Y *float64 `json:"y"`
		W *float64 `json:"w"`
		H *float64 `json:"h"`
	} `json:"region"`
	DominantEmotion string             `json:"dominant_emotion"`
	Emotion         map[string]float64 `json:"emotion"`
}

// toDetection converts an API face. ok is false when the region is missing.
func (f apiFace) toDetection() (emotions.Detection, bool) {
	r := f.Region
	if r == nil || r.X == nil || r.Y == nil || r.W == nil || r.H == nil {
		return emotions.Detection{}, false
	}

	det := emotions.Detection{
		Region: emotions.Region{
			X: int(*r.X),
			Y: int(*r.Y),
			W: int(*r.W),
			H: int(*r.H),
		},
		Dominant: f.DominantEmotion,
		Scores:   emotions.NormalizePercent(f.Emotion),
	}
	if det.Dominant == "" {
		det.Dominant = emotions.Neutral
	}
	if !det.Region.Valid() {
		return emotions.Detection{}, false
	}
	return det, true
}

// parseAnalyzeResponse accepts the shapes DeepFace has used over time:
// {"results": [...]}, a bare list, a single object, or {"instance_1": {...}}.
func parseAnalyzeResponse(body []byte) ([]emotions.Detection, int, error) {
	faces, err := decodeFaces(body)
	if err != nil {
		return nil, 0, fmt.Errorf("decode response: %w", err)
	}

	detections := make([]emotions.Detection, 0, len(faces))
	skipped := 0
	for _, f := range faces {
		det, ok := f.toDetection()
		if !ok {
			skipped++
			continue
		}
		detections = append(detections, det)
	}
	return detections, skipped, nil
}

func decodeFaces(body []byte) ([]apiFace, error) {
	trimmed := strings.TrimSpace(string(body))
	if strings.HasPrefix(trimmed, "[") {
		var faces []apiFace
		err := json.Unmarshal(body, &faces)
		return faces, err
	}

	var envelope map[string]json.RawMessage
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, err
	}

	if raw, ok := envelope["results"]; ok {
		return decodeFaces(raw)
	}

	// Single face object
	if _, ok := envelope["region"]; ok {
		var face apiFace
		err := json.Unmarshal(body, &face)
		return []apiFace{face}, err
	}

	// Legacy {"instance_1": {...}, "instance_2": {...}}
	var faces []apiFace
	for i := 1; ; i++ {
		raw, ok := envelope[fmt.Sprintf("instance_%d", i)]
		if !ok {
			break
		}
		var face apiFace
		if err := json.Unmarshal(raw, &face); err != nil {
			return nil, err
		}
		faces = append(faces, face)
	}
	return faces, nil
}

func parseAPIError(status int, body []byte) error {
	var errResp struct {
		Error string `json:"error"`
	}
	msg := strings.TrimSpace(string(body))
	if json.Unmarshal(body, &errResp) == nil && errResp.Error != "" {
		msg = errResp.Error
	}
	if len(msg) > 200 {
		msg = msg[:200]
	}
	return &APIError{StatusCode: status, Message: msg}
}

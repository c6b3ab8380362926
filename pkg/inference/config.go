package inference

import (
	"log/slog"
	"time"

	"github.com/teslashibe/moodcam/pkg/detection"
)

// Config holds classifier configuration.
type Config struct {
	// Backend selects the classifier: deepface, ferplus or auto.
	Backend string

	// DeepFace service
	DeepFaceURL     string        // Base URL, e.g. http://localhost:5005
	DetectorBackend string        // DeepFace face detector (opencv, retinaface, mtcnn, ...)
	Timeout         time.Duration // Per-request timeout
	JPEGQuality     int           // Quality of the uploaded frame

	// Local FER+ backend
	FERPlusModel string           // Path to emotion-ferplus-8.onnx
	Detector     detection.Config // YuNet face detector

	// Observability
	Logger *slog.Logger
}

// Option is a functional option for configuring classifiers.
type Option func(*Config)

// WithBackend sets the backend name.
func WithBackend(name string) Option {
	return func(c *Config) { c.Backend = name }
}

// WithDeepFaceURL sets the DeepFace service base URL.
func WithDeepFaceURL(url string) Option {
	return func(c *Config) { c.DeepFaceURL = url }
}

// WithDetectorBackend sets the DeepFace face detector backend.
func WithDetectorBackend(name string) Option {
	return func(c *Config) { c.DetectorBackend = name }
}

// WithTimeout sets the DeepFace request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Config) { c.Timeout = d }
}

// WithFERPlusModel sets the FER+ ONNX model path.
func WithFERPlusModel(path string) Option {
	return func(c *Config) { c.FERPlusModel = path }
}

// WithFaceModel sets the YuNet face detection model path.
func WithFaceModel(path string) Option {
	return func(c *Config) { c.Detector.ModelPath = path }
}

// WithLogger sets the structured logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Config) { c.Logger = l }
}

// DefaultConfig returns defaults matching a local DeepFace service.
func DefaultConfig() *Config {
	return &Config{
		Backend:         BackendDeepFace,
		DeepFaceURL:     "http://localhost:5005",
		DetectorBackend: "opencv",
		Timeout:         10 * time.Second,
		JPEGQuality:     90,
		FERPlusModel:    "models/emotion-ferplus-8.onnx",
		Detector:        detection.DefaultConfig(),
		Logger:          slog.Default(),
	}
}

// Apply applies functional options to the config.
func (c *Config) Apply(opts ...Option) {
	for _, opt := range opts {
		opt(c)
	}
}

// Validate checks the configuration. Returns a list of problems, or nil.
func (c *Config) Validate() []string {
	var errors []string

	switch c.Backend {
	case BackendDeepFace, BackendAuto:
		if c.DeepFaceURL == "" {
			errors = append(errors, "deepface url is required")
		}
		if c.Timeout <= 0 {
			errors = append(errors, "timeout must be positive")
		}
	case BackendFERPlus:
	default:
		errors = append(errors, "backend must be deepface, ferplus, or auto")
	}

	if c.Backend == BackendFERPlus || c.Backend == BackendAuto {
		if c.FERPlusModel == "" {
			errors = append(errors, "ferplus model path is required")
		}
		if c.Detector.ModelPath == "" {
			errors = append(errors, "face detection model path is required")
		}
	}

	if c.JPEGQuality < 1 || c.JPEGQuality > 100 {
		errors = append(errors, "jpeg quality must be between 1 and 100")
	}

	return errors
}

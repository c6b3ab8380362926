package inference

import (
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/teslashibe/moodcam/pkg/emotions"
)

func TestFERPlusScores(t *testing.T) {
	// happiness strongly ahead
	logits := []float32{0, 8, 0, 0, 0, 0, 0, 0}
	scores := ferPlusScores(logits)

	if len(scores) != len(FERPlusClasses) {
		t.Fatalf("expected %d scores, got %d", len(FERPlusClasses), len(scores))
	}

	name, prob := scores.Dominant()
	if name != emotions.Happy {
		t.Errorf("dominant: got %q, want happy", name)
	}
	if prob < 0.99 {
		t.Errorf("probability: got %v", prob)
	}

	var sum float64
	for _, p := range scores {
		sum += p
	}
	if math.Abs(sum-1) > 1e-9 {
		t.Errorf("scores sum to %v", sum)
	}
}

func TestFERPlusScores_Vocabulary(t *testing.T) {
	scores := ferPlusScores(make([]float32, len(FERPlusClasses)))
	for _, name := range emotions.Vocabulary {
		if _, ok := scores[name]; !ok {
			t.Errorf("missing %q in FER+ scores", name)
		}
	}
	if _, ok := scores["contempt"]; !ok {
		t.Error("contempt should pass through")
	}
	if got := emotions.MapLabel("contempt", 0.5); got != "Contempt" {
		t.Errorf("contempt label: got %q", got)
	}
}

func TestNewFERPlus_MissingModel(t *testing.T) {
	cfg := DefaultConfig()
	cfg.FERPlusModel = "/nonexistent/emotion.onnx"
	if _, err := NewFERPlus(cfg); !errors.Is(err, ErrModelNotFound) {
		t.Errorf("expected ErrModelNotFound, got %v", err)
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"default", func(c *Config) {}, false},
		{"ferplus", func(c *Config) { c.Backend = BackendFERPlus }, false},
		{"auto", func(c *Config) { c.Backend = BackendAuto }, false},
		{"unknown backend", func(c *Config) { c.Backend = "magic" }, true},
		{"missing url", func(c *Config) { c.DeepFaceURL = "" }, true},
		{"zero timeout", func(c *Config) { c.Timeout = 0 }, true},
		{"bad quality", func(c *Config) { c.JPEGQuality = 0 }, true},
		{"ferplus without model", func(c *Config) { c.Backend = BackendFERPlus; c.FERPlusModel = "" }, true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tc.mutate(cfg)
			problems := cfg.Validate()
			if (len(problems) > 0) != tc.wantErr {
				t.Errorf("Validate() = %v, wantErr %v", problems, tc.wantErr)
			}
		})
	}
}

func TestNew(t *testing.T) {
	clf, err := New(WithBackend(BackendDeepFace), WithDeepFaceURL("http://localhost:1"))
	if err != nil {
		t.Fatalf("New(deepface) failed: %v", err)
	}
	defer clf.Close()
	if clf.Name() != BackendDeepFace {
		t.Errorf("Name() = %q", clf.Name())
	}

	if _, err := New(WithBackend("magic")); !errors.Is(err, ErrUnknownBackend) {
		t.Errorf("expected ErrUnknownBackend, got %v", err)
	}

	if _, err := New(WithBackend(BackendFERPlus), WithFERPlusModel("/nonexistent.onnx")); err == nil {
		t.Error("expected error for missing FER+ model")
	}

	// auto degrades to deepface alone when the local models are missing
	auto, err := New(WithBackend(BackendAuto), WithFERPlusModel("/nonexistent.onnx"))
	if err != nil {
		t.Fatalf("New(auto) failed: %v", err)
	}
	if auto.Name() != BackendDeepFace {
		t.Errorf("auto without models: Name() = %q", auto.Name())
	}
}

func TestWrapError(t *testing.T) {
	if WrapError("x", nil) != nil {
		t.Error("WrapError(nil) should be nil")
	}

	base := errors.New("boom")
	err := WrapError("deepface", base)
	if !errors.Is(err, base) {
		t.Error("wrapped error should unwrap to base")
	}
	if !strings.Contains(err.Error(), "deepface") {
		t.Errorf("error should name backend: %v", err)
	}

	// Already wrapped errors keep their original backend
	again := WrapError("chain", err)
	var ce *ClassifierError
	if !errors.As(again, &ce) || ce.Backend != "deepface" {
		t.Errorf("double wrap: got %v", again)
	}
}

func TestChainError(t *testing.T) {
	e1 := errors.New("first")
	e2 := errors.New("second")
	err := &ChainError{Errors: []error{e1, e2}}

	if !errors.Is(err, e2) {
		t.Error("ChainError should unwrap to the last error")
	}
	if !strings.Contains(err.Error(), "all 2 classifiers failed") {
		t.Errorf("Error() = %q", err.Error())
	}
}

package emotions

import (
	"image"
	"math"
	"testing"
)

func TestMapLabel(t *testing.T) {
	tests := []struct {
		name     string
		emotion  string
		prob     float64
		expected string
	}{
		{"happy", "happy", 0.9, "Happy"},
		{"happy uppercase", "HAPPY", 0.99, "Happy"},
		{"angry", "angry", 0.5, "Angry"},
		{"sad at threshold", "sad", 0.65, "Crying"},
		{"sad above threshold", "sad", 0.9, "Crying"},
		{"sad below threshold", "sad", 0.649, "Sad"},
		{"sad zero", "Sad", 0, "Sad"},
		{"neutral", "neutral", 0.3, "Feeling/Neutral"},
		{"surprise", "surprise", 0.3, "Surprised"},
		{"fear", "fear", 0.3, "Fearful"},
		{"disgust", "Disgust", 0.3, "Disgust"},
		{"unknown", "xyz", 0.5, "Xyz"},
		{"unknown keeps case", "conTEMPT", 0.5, "ConTEMPT"},
		{"unknown unicode", "ärger", 0.5, "Ärger"},
		{"blank", "", 0.5, Unknown},
		{"whitespace", "   ", 0.5, Unknown},
		{"padded name is not trimmed", " happy", 0.5, " happy"},
		{"trailing space falls back", "Happy ", 0.5, "Happy "},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := MapLabel(tc.emotion, tc.prob)
			if got != tc.expected {
				t.Errorf("MapLabel(%q, %v) = %q, want %q", tc.emotion, tc.prob, got, tc.expected)
			}
		})
	}
}

func TestMapLabel_Total(t *testing.T) {
	names := append([]string{"", "x", "CONTEMPT", "  happy  "}, Vocabulary...)
	for _, name := range names {
		for p := 0.0; p <= 1.0; p += 0.05 {
			if got := MapLabel(name, p); got == "" {
				t.Errorf("MapLabel(%q, %.2f) returned empty string", name, p)
			}
		}
	}
}

func TestCompose(t *testing.T) {
	tests := []struct {
		emotion  string
		prob     float64
		expected string
	}{
		{"angry", 0.873, "Angry (87%)"},
		{"angry", 0.879, "Angry (87%)"},
		{"sad", 0.65, "Crying (65%)"},
		{"happy", 1.0, "Happy (100%)"},
		{"neutral", 0, "Feeling/Neutral (0%)"},
		{"xyz", 0.5, "Xyz (50%)"},
	}

	for _, tc := range tests {
		t.Run(tc.expected, func(t *testing.T) {
			if got := Compose(tc.emotion, tc.prob); got != tc.expected {
				t.Errorf("Compose(%q, %v) = %q, want %q", tc.emotion, tc.prob, got, tc.expected)
			}
		})
	}
}

func TestPercent_WholePercentages(t *testing.T) {
	// Scores scaled down from whole percentages must keep their value
	for pct := 0; pct <= 100; pct++ {
		if got := Percent(float64(pct) / 100); got != pct {
			t.Errorf("Percent(%d/100) = %d, want %d", pct, got, pct)
		}
	}
}

func TestPercent_Truncates(t *testing.T) {
	if got := Percent(0.999); got != 99 {
		t.Errorf("Percent(0.999) = %d, want 99", got)
	}
	if got := Percent(0.005); got != 0 {
		t.Errorf("Percent(0.005) = %d, want 0", got)
	}
}

func TestDetection_Label(t *testing.T) {
	d := Detection{
		Region:   Region{X: 10, Y: 20, W: 30, H: 40},
		Dominant: "sad",
		Scores:   Scores{"sad": 0.71, "neutral": 0.2},
	}
	if got := d.Label(); got != "Crying (71%)" {
		t.Errorf("Label() = %q", got)
	}

	d.Dominant = "fear"
	if got := d.Label(); got != "Fearful (0%)" {
		t.Errorf("missing score: Label() = %q", got)
	}
}

func TestDetection_Validate(t *testing.T) {
	if err := (Detection{}).Validate(); err != ErrMissingRegion {
		t.Errorf("empty detection: got %v, want ErrMissingRegion", err)
	}
	if err := (Detection{Region: Region{X: 5, Y: 5}}).Validate(); err != ErrInvalidRegion {
		t.Errorf("zero size: got %v, want ErrInvalidRegion", err)
	}
	if err := (Detection{Region: Region{W: 1, H: 1}}).Validate(); err != nil {
		t.Errorf("valid region at origin: got %v", err)
	}
}

func TestRegion_Rect(t *testing.T) {
	r := Region{X: 10, Y: 20, W: 30, H: 40}
	want := image.Rect(10, 20, 40, 60)
	if got := r.Rect(); got != want {
		t.Errorf("Rect() = %v, want %v", got, want)
	}
	if back := RegionFromRect(want); back != r {
		t.Errorf("RegionFromRect() = %+v, want %+v", back, r)
	}
}

func TestScores_Dominant(t *testing.T) {
	tests := []struct {
		name     string
		scores   Scores
		wantName string
		wantProb float64
	}{
		{"empty", Scores{}, "", 0},
		{"single", Scores{"happy": 0.4}, "happy", 0.4},
		{"clear winner", Scores{"happy": 0.1, "sad": 0.8, "angry": 0.1}, "sad", 0.8},
		{"tie picks first name", Scores{"sad": 0.5, "angry": 0.5}, "angry", 0.5},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			name, prob := tc.scores.Dominant()
			if name != tc.wantName || prob != tc.wantProb {
				t.Errorf("Dominant() = (%q, %v), want (%q, %v)", name, prob, tc.wantName, tc.wantProb)
			}
		})
	}
}

func TestSoftmax(t *testing.T) {
	if Softmax(nil) != nil {
		t.Error("Softmax(nil) should be nil")
	}

	probs := Softmax([]float32{1, 2, 3, 1000})
	var sum float64
	for _, p := range probs {
		if math.IsNaN(p) || p < 0 || p > 1 {
			t.Fatalf("probability out of range: %v", p)
		}
		sum += p
	}
	if math.Abs(sum-1) > 1e-9 {
		t.Errorf("probabilities sum to %v, want 1", sum)
	}
	if probs[3] < 0.999 {
		t.Errorf("largest logit should dominate, got %v", probs[3])
	}

	even := Softmax([]float32{0, 0})
	if math.Abs(even[0]-0.5) > 1e-9 || math.Abs(even[1]-0.5) > 1e-9 {
		t.Errorf("equal logits: got %v", even)
	}
}

func TestNormalizePercent(t *testing.T) {
	pct := NormalizePercent(Scores{"happy": 87.5, "sad": 12.5})
	if math.Abs(pct["happy"]-0.875) > 1e-9 || math.Abs(pct["sad"]-0.125) > 1e-9 {
		t.Errorf("percent scores not rescaled: %v", pct)
	}

	unit := NormalizePercent(Scores{"happy": 0.9, "sad": 0.1})
	if unit["happy"] != 0.9 || unit["sad"] != 0.1 {
		t.Errorf("unit scores changed: %v", unit)
	}

	neg := NormalizePercent(Scores{"happy": -0.1})
	if neg["happy"] != 0 {
		t.Errorf("negative score not clamped: %v", neg)
	}
}

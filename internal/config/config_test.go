package config

import (
	"testing"
	"time"
)

func TestString(t *testing.T) {
	t.Setenv("MOODCAM_TEST_STR", "")
	if got := String("MOODCAM_TEST_STR", "def"); got != "def" {
		t.Errorf("unset: got %q, want def", got)
	}
	t.Setenv("MOODCAM_TEST_STR", "set")
	if got := String("MOODCAM_TEST_STR", "def"); got != "set" {
		t.Errorf("set: got %q, want set", got)
	}
}

func TestInt(t *testing.T) {
	t.Setenv("MOODCAM_TEST_INT", "2")
	if got := Int("MOODCAM_TEST_INT", 0); got != 2 {
		t.Errorf("got %d, want 2", got)
	}
	t.Setenv("MOODCAM_TEST_INT", "two")
	if got := Int("MOODCAM_TEST_INT", 7); got != 7 {
		t.Errorf("invalid: got %d, want 7", got)
	}
}

func TestDuration(t *testing.T) {
	tests := []struct {
		val  string
		want time.Duration
	}{
		{"", DefaultInterval},
		{"250ms", 250 * time.Millisecond},
		{"2", 2 * time.Second},
		{"1.5", 1500 * time.Millisecond},
		{"soon", DefaultInterval},
	}

	for _, tc := range tests {
		t.Run(tc.val, func(t *testing.T) {
			t.Setenv("MOODCAM_TEST_DUR", tc.val)
			if got := Duration("MOODCAM_TEST_DUR", DefaultInterval); got != tc.want {
				t.Errorf("Duration(%q) = %v, want %v", tc.val, got, tc.want)
			}
		})
	}
}

func TestDeepFaceURL(t *testing.T) {
	t.Setenv(EnvDeepFaceURL, "")
	if got := DeepFaceURL(); got != DefaultDeepFaceURL {
		t.Errorf("got %q, want %q", got, DefaultDeepFaceURL)
	}
	t.Setenv(EnvDeepFaceURL, "http://gpu-box:5005")
	if got := DeepFaceURL(); got != "http://gpu-box:5005" {
		t.Errorf("got %q", got)
	}
}

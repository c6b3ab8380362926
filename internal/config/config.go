// Package config provides configuration helpers for moodcam commands.
// Flags win over environment variables, which win over built-in defaults.
package config

import (
	"os"
	"strconv"
	"time"
)

// Environment variable names.
const (
	EnvDevice      = "MOODCAM_DEVICE"
	EnvInterval    = "MOODCAM_INTERVAL"
	EnvBackend     = "MOODCAM_BACKEND"
	EnvLogLevel    = "MOODCAM_LOG_LEVEL"
	EnvHTTPPort    = "MOODCAM_HTTP"
	EnvSignalling  = "MOODCAM_SIGNALLING"
	EnvDeepFaceURL = "DEEPFACE_URL"
)

// Defaults.
const (
	DefaultDeepFaceURL = "http://localhost:5005"
	DefaultBackend     = "deepface"
	DefaultInterval    = time.Second
)

// String returns the env var value or def when unset or empty.
func String(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// Int returns the env var parsed as an int, or def when unset or invalid.
func Int(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

// Duration returns the env var parsed with time.ParseDuration.
// A bare number is read as seconds ("1.5" == 1.5s).
func Duration(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	if d, err := time.ParseDuration(v); err == nil {
		return d
	}
	if secs, err := strconv.ParseFloat(v, 64); err == nil {
		return time.Duration(secs * float64(time.Second))
	}
	return def
}

// DeepFaceURL returns the DeepFace service base URL.
func DeepFaceURL() string {
	return String(EnvDeepFaceURL, DefaultDeepFaceURL)
}

package main

import (
	"encoding/json"
	"flag"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/teslashibe/moodcam/internal/config"
	"github.com/teslashibe/moodcam/pkg/camera"
	"github.com/teslashibe/moodcam/pkg/inference"
	"github.com/teslashibe/moodcam/pkg/monitor"
	"github.com/teslashibe/moodcam/pkg/web"
)

func parse(t *testing.T, args ...string) (options, error) {
	t.Helper()
	fs := flag.NewFlagSet("moodcam", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	return parseFlags(fs, args)
}

func TestParseFlagsDefaults(t *testing.T) {
	for _, key := range []string{config.EnvDevice, config.EnvInterval, config.EnvBackend, config.EnvHTTPPort, config.EnvDeepFaceURL} {
		t.Setenv(key, "")
	}

	opts, err := parse(t)
	if err != nil {
		t.Fatalf("parseFlags() error = %v", err)
	}
	if opts.Camera != camera.DefaultConfig() {
		t.Errorf("camera = %+v, want defaults", opts.Camera)
	}
	if opts.Interval != time.Second {
		t.Errorf("interval = %s, want 1s", opts.Interval)
	}
	if opts.Backend != "deepface" || opts.DeepFaceURL != config.DefaultDeepFaceURL {
		t.Errorf("backend = %s at %s", opts.Backend, opts.DeepFaceURL)
	}
	if opts.HTTPAddr != "" {
		t.Errorf("dashboard should be off by default, got %q", opts.HTTPAddr)
	}
}

func TestParseFlags(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		check   func(t *testing.T, o options)
		wantErr bool
	}{
		{
			name: "preset",
			args: []string{"-preset", "vga"},
			check: func(t *testing.T, o options) {
				if o.Camera.Width != 640 || o.Camera.Height != 480 {
					t.Errorf("size = %dx%d", o.Camera.Width, o.Camera.Height)
				}
			},
		},
		{
			name:    "unknown preset",
			args:    []string{"-preset", "8k"},
			wantErr: true,
		},
		{
			name: "bare port",
			args: []string{"-http", "8080"},
			check: func(t *testing.T, o options) {
				if o.HTTPAddr != ":8080" {
					t.Errorf("HTTPAddr = %q, want :8080", o.HTTPAddr)
				}
			},
		},
		{
			name: "stream source",
			args: []string{"-source", "stream", "-signalling", "ws://cam:8443", "-producer", "desk"},
			check: func(t *testing.T, o options) {
				if o.Camera.Source != camera.SourceStream || o.Camera.Producer != "desk" {
					t.Errorf("camera = %+v", o.Camera)
				}
			},
		},
		{
			name:    "stream without signalling",
			args:    []string{"-source", "stream"},
			wantErr: true,
		},
		{
			name:    "zero interval",
			args:    []string{"-interval", "0s"},
			wantErr: true,
		},
		{
			name: "custom interval",
			args: []string{"-interval", "2500ms"},
			check: func(t *testing.T, o options) {
				if o.Interval != 2500*time.Millisecond {
					t.Errorf("interval = %s", o.Interval)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(config.EnvSignalling, "")
			opts, err := parse(t, tt.args...)
			if (err != nil) != tt.wantErr {
				t.Fatalf("parseFlags() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.check != nil {
				tt.check(t, opts)
			}
		})
	}
}

func TestParseFlagsEnvFallback(t *testing.T) {
	t.Setenv(config.EnvDevice, "2")
	t.Setenv(config.EnvInterval, "1.5")
	t.Setenv(config.EnvDeepFaceURL, "http://gpu-box:5005")

	opts, err := parse(t)
	if err != nil {
		t.Fatalf("parseFlags() error = %v", err)
	}
	if opts.Camera.Device != 2 {
		t.Errorf("device = %d, want 2", opts.Camera.Device)
	}
	if opts.Interval != 1500*time.Millisecond {
		t.Errorf("interval = %s, want 1.5s", opts.Interval)
	}
	if opts.DeepFaceURL != "http://gpu-box:5005" {
		t.Errorf("deepface url = %s", opts.DeepFaceURL)
	}

	// Flags win over the environment
	opts, err = parse(t, "-device", "1")
	if err != nil {
		t.Fatalf("parseFlags() error = %v", err)
	}
	if opts.Camera.Device != 1 {
		t.Errorf("device = %d, want 1", opts.Camera.Device)
	}
}

func TestAttachDashboardServesStatsImmediately(t *testing.T) {
	opts := options{Camera: camera.DefaultConfig(), Interval: time.Second, HTTPAddr: ":0"}
	m := monitor.New(nil, inference.NewMock(), nil)

	srv := attachDashboard(m, opts, "mock")

	resp, err := srv.App().Test(httptest.NewRequest(http.MethodGet, "/api/status", nil))
	if err != nil {
		t.Fatalf("GET /api/status: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}

	var status web.Status
	if err := json.NewDecoder(resp.Body).Decode(&status); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if status.Classifier != "mock" || status.Stats.Frames != 0 {
		t.Errorf("status = %+v", status)
	}
}

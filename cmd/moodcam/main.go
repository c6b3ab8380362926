// moodcam - live webcam emotion overlay
//
// Reads frames from a webcam (or a WebRTC stream), sends one frame per
// interval to an emotion classifier and draws a labelled box around
// every face it reports.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/teslashibe/moodcam/internal/config"
	"github.com/teslashibe/moodcam/internal/log"
	"github.com/teslashibe/moodcam/pkg/camera"
	"github.com/teslashibe/moodcam/pkg/debug"
	"github.com/teslashibe/moodcam/pkg/inference"
	"github.com/teslashibe/moodcam/pkg/monitor"
	"github.com/teslashibe/moodcam/pkg/sampler"
	"github.com/teslashibe/moodcam/pkg/web"
)

// options is everything the command line controls.
type options struct {
	Camera   camera.Config
	Interval time.Duration

	Backend         string
	DeepFaceURL     string
	DetectorBackend string
	YuNetModel      string
	FERPlusModel    string

	HTTPAddr string
	LogLevel string
	Debug    bool
}

func main() {
	opts, err := parseFlags(flag.CommandLine, os.Args[1:])
	if err != nil {
		fmt.Fprintf(os.Stderr, "❌ %v\n", err)
		os.Exit(2)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, opts); err != nil {
		fmt.Fprintf(os.Stderr, "❌ %v\n", err)
		os.Exit(1)
	}
	fmt.Println("👋 Goodbye!")
}

// parseFlags parses command line flags with environment fallbacks.
func parseFlags(fs *flag.FlagSet, args []string) (options, error) {
	cam := camera.DefaultConfig()
	infer := inference.DefaultConfig()

	device := fs.Int("device", config.Int(config.EnvDevice, cam.Device), "Camera device index (env "+config.EnvDevice+")")
	width := fs.Int("width", cam.Width, "Requested frame width")
	height := fs.Int("height", cam.Height, "Requested frame height")
	preset := fs.String("preset", "", "Resolution preset: "+strings.Join(camera.PresetNames(), ", "))
	source := fs.String("source", camera.SourceDevice, "Frame source: device or stream")
	signalling := fs.String("signalling", config.String(config.EnvSignalling, ""), "webrtcsink signalling URL for -source stream (env "+config.EnvSignalling+")")
	producer := fs.String("producer", "", "Stream producer name (default: first listed)")
	interval := fs.Duration("interval", config.Duration(config.EnvInterval, config.DefaultInterval), "Minimum time between analyses (env "+config.EnvInterval+")")
	backend := fs.String("backend", config.String(config.EnvBackend, config.DefaultBackend), "Classifier: "+strings.Join(inference.Backends(), ", ")+" (env "+config.EnvBackend+")")
	deepfaceURL := fs.String("deepface-url", config.DeepFaceURL(), "DeepFace service URL (env "+config.EnvDeepFaceURL+")")
	detectorBackend := fs.String("detector-backend", infer.DetectorBackend, "DeepFace face detector backend")
	yunetModel := fs.String("yunet-model", infer.Detector.ModelPath, "YuNet face model for the ferplus backend")
	ferplusModel := fs.String("ferplus-model", infer.FERPlusModel, "FER+ emotion model for the ferplus backend")
	httpAddr := fs.String("http", config.String(config.EnvHTTPPort, ""), "Serve the dashboard on this address, e.g. :8080 (env "+config.EnvHTTPPort+")")
	logLevel := fs.String("log-level", config.String(config.EnvLogLevel, "info"), "Log level: debug, info, warn, error (env "+config.EnvLogLevel+")")
	debugFlag := fs.Bool("debug", false, "Print every detection")

	if err := fs.Parse(args); err != nil {
		return options{}, err
	}

	if *preset != "" {
		p := camera.GetPreset(*preset)
		if p == nil {
			return options{}, fmt.Errorf("unknown preset %q (valid: %s)", *preset, strings.Join(camera.PresetNames(), ", "))
		}
		*width, *height = p.Width, p.Height
	}

	cam.Source = *source
	cam.Device = *device
	cam.Width, cam.Height = *width, *height
	cam.SignallingURL = *signalling
	cam.Producer = *producer
	if problems := cam.Validate(); len(problems) > 0 {
		return options{}, fmt.Errorf("camera config: %s", strings.Join(problems, "; "))
	}
	if *interval <= 0 {
		return options{}, errors.New("interval must be positive")
	}

	addr := *httpAddr
	if addr != "" && !strings.Contains(addr, ":") {
		addr = ":" + addr
	}

	return options{
		Camera:          cam,
		Interval:        *interval,
		Backend:         *backend,
		DeepFaceURL:     *deepfaceURL,
		DetectorBackend: *detectorBackend,
		YuNetModel:      *yunetModel,
		FERPlusModel:    *ferplusModel,
		HTTPAddr:        addr,
		LogLevel:        *logLevel,
		Debug:           *debugFlag,
	}, nil
}

func run(ctx context.Context, opts options) error {
	level := opts.LogLevel
	if opts.Debug {
		level = "debug"
		debug.Enabled = true
		debug.Analysis = true
	}
	log.Init(level)

	printBanner(opts)

	classifier, err := inference.New(
		inference.WithBackend(opts.Backend),
		inference.WithDeepFaceURL(opts.DeepFaceURL),
		inference.WithDetectorBackend(opts.DetectorBackend),
		inference.WithFERPlusModel(opts.FERPlusModel),
		inference.WithFaceModel(opts.YuNetModel),
		inference.WithLogger(log.With("component", "inference")),
	)
	if err != nil {
		return fmt.Errorf("classifier: %w", err)
	}
	defer classifier.Close()

	if hc, ok := classifier.(interface{ Health(context.Context) error }); ok {
		if err := hc.Health(ctx); err != nil {
			// Not fatal: the loop keeps running and retries every interval
			log.Warn("⚠️  classifier not reachable yet", "backend", classifier.Name(), "error", err)
		}
	}

	source, err := camera.Open(opts.Camera)
	if err != nil {
		return err
	}

	// The window needs the camera; opening it last keeps failures tidy
	display := monitor.NewWindow(monitor.WindowTitle)

	m := monitor.New(source, classifier, display,
		monitor.WithSampler(sampler.New(opts.Interval, nil)),
	)

	if opts.HTTPAddr != "" {
		attachDashboard(m, opts, classifier.Name()).StartAsync(ctx)
	}

	fmt.Println("Press 'q' to quit.")
	return m.Run(ctx)
}

// attachDashboard creates the web server for a built monitor and
// registers it as the loop observer. It must run before m.Run.
func attachDashboard(m *monitor.Monitor, opts options, classifier string) *web.Server {
	info := web.Info{Classifier: classifier, Interval: opts.Interval, Camera: opts.Camera}
	srv := web.NewServer(opts.HTTPAddr, info, m.Stats)
	m.SetObserver(srv)
	return srv
}

func printBanner(opts options) {
	fmt.Println("😀 moodcam - live emotion detection")
	fmt.Println("===================================")
	if opts.Camera.Source == camera.SourceStream {
		fmt.Printf("📷 Stream:     %s\n", opts.Camera.SignallingURL)
	} else {
		fmt.Printf("📷 Camera:     device %d (%dx%d)\n", opts.Camera.Device, opts.Camera.Width, opts.Camera.Height)
	}
	fmt.Printf("🧠 Classifier: %s\n", opts.Backend)
	if opts.Backend != inference.BackendFERPlus {
		fmt.Printf("   DeepFace:   %s\n", opts.DeepFaceURL)
	}
	fmt.Printf("⏱️  Interval:   %s\n", opts.Interval)
	if opts.HTTPAddr != "" {
		fmt.Printf("🌐 Dashboard:  http://localhost%s\n", opts.HTTPAddr)
	}
	fmt.Println()
}

// Package web serves a live dashboard for moodcam: the annotated video,
// the latest detections and a short history.
package web

import (
	"context"
	"embed"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/filesystem"
	"github.com/gofiber/websocket/v2"
	"github.com/teslashibe/moodcam/internal/log"
	"github.com/teslashibe/moodcam/pkg/camera"
	"github.com/teslashibe/moodcam/pkg/hub"
	"github.com/teslashibe/moodcam/pkg/monitor"
	"gocv.io/x/gocv"
)

//go:embed static
var static embed.FS

const (
	// HistorySize is how many analyses /api/history keeps.
	HistorySize = 100

	// DefaultFrameInterval throttles /ws/camera.
	DefaultFrameInterval = 200 * time.Millisecond
)

// StatsFunc reports loop counters.
type StatsFunc func() monitor.StatsSnapshot

// Status is the /api/status payload.
type Status struct {
	Started    time.Time             `json:"started"`
	Uptime     string                `json:"uptime"`
	Classifier string                `json:"classifier"`
	Interval   string                `json:"interval"`
	Camera     camera.Config         `json:"camera"`
	Stats      monitor.StatsSnapshot `json:"stats"`
	Clients    map[string]int        `json:"clients"`
}

// Info describes the running session for /api/status.
type Info struct {
	Classifier string
	Interval   time.Duration
	Camera     camera.Config
}

// Server is the web dashboard server. It implements monitor.Observer.
type Server struct {
	app    *fiber.App
	addr   string
	logger *slog.Logger

	info    Info
	started time.Time
	stats   StatsFunc

	// Analysis buffer (last HistorySize entries)
	history   []monitor.Analysis
	latest    *monitor.Analysis
	historyMu sync.RWMutex

	// Frame throttling
	frameInterval time.Duration
	lastFrame     time.Time
	jpegQuality   int

	// Hubs for websocket broadcast
	detectionHub *hub.Hub
	cameraHub    *hub.Hub
}

// NewServer creates the dashboard server listening on addr (e.g. ":8080").
func NewServer(addr string, info Info, stats StatsFunc) *Server {
	s := &Server{
		addr:          addr,
		logger:        log.With("component", "web"),
		info:          info,
		started:       time.Now(),
		stats:         stats,
		history:       make([]monitor.Analysis, 0, HistorySize),
		frameInterval: DefaultFrameInterval,
		jpegQuality:   camera.DefaultJPEGQuality,
		detectionHub:  hub.New("detections"),
		cameraHub:     hub.New("camera"),
	}
	if s.stats == nil {
		s.stats = func() monitor.StatsSnapshot { return monitor.StatsSnapshot{} }
	}

	app := fiber.New(fiber.Config{
		AppName:               "moodcam",
		DisableStartupMessage: true,
	})

	// CORS for local development
	app.Use(cors.New())

	// API routes
	api := app.Group("/api")
	api.Get("/status", s.handleStatus)
	api.Get("/detections", s.handleDetections)
	api.Get("/history", s.handleHistory)

	// WebSocket upgrade middleware
	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})

	app.Get("/ws/detections", websocket.New(s.handleDetectionsWS))
	app.Get("/ws/camera", websocket.New(s.handleCameraWS))

	// Static dashboard
	app.Use("/", filesystem.New(filesystem.Config{
		Root:       http.FS(static),
		PathPrefix: "static",
		Index:      "index.html",
	}))

	s.app = app
	return s
}

// Start runs the hubs and the HTTP server until ctx is cancelled.
func (s *Server) Start(ctx context.Context) error {
	s.logger.Info("🌐 web dashboard", "url", "http://localhost"+s.addr)

	go s.detectionHub.Run(ctx)
	go s.cameraHub.Run(ctx)

	go func() {
		<-ctx.Done()
		s.Shutdown()
	}()

	return s.app.Listen(s.addr)
}

// StartAsync starts the web server in a goroutine
func (s *Server) StartAsync(ctx context.Context) {
	go func() {
		if err := s.Start(ctx); err != nil {
			s.logger.Warn("⚠️  web server error", "error", err)
		}
	}()
}

// OnAnalysis records an analysis and broadcasts it to detection clients.
func (s *Server) OnAnalysis(a monitor.Analysis) {
	s.historyMu.Lock()
	s.history = append(s.history, a)
	if len(s.history) > HistorySize {
		s.history = s.history[1:]
	}
	s.latest = &a
	s.historyMu.Unlock()

	if err := s.detectionHub.BroadcastJSON(a); err != nil {
		s.logger.Warn("encode analysis failed", "error", err)
	}
}

// OnFrame sends the annotated frame to camera clients, at most once
// per frame interval and only while someone is watching.
func (s *Server) OnFrame(frame gocv.Mat) {
	if s.cameraHub.ClientCount() == 0 {
		return
	}
	now := time.Now()
	if now.Sub(s.lastFrame) < s.frameInterval {
		return
	}
	s.lastFrame = now

	data, err := camera.EncodeJPEG(frame, s.jpegQuality)
	if err != nil {
		s.logger.Debug("frame encode failed", "error", err)
		return
	}
	s.cameraHub.BroadcastFrame(data)
}

// Latest returns the most recent analysis, if any.
func (s *Server) Latest() (monitor.Analysis, bool) {
	s.historyMu.RLock()
	defer s.historyMu.RUnlock()
	if s.latest == nil {
		return monitor.Analysis{}, false
	}
	return *s.latest, true
}

// History returns a copy of the recent analyses, oldest first.
func (s *Server) History() []monitor.Analysis {
	s.historyMu.RLock()
	defer s.historyMu.RUnlock()
	out := make([]monitor.Analysis, len(s.history))
	copy(out, s.history)
	return out
}

// App exposes the fiber app for tests.
func (s *Server) App() *fiber.App {
	return s.app
}

// Shutdown gracefully stops the web server
func (s *Server) Shutdown() error {
	return s.app.Shutdown()
}

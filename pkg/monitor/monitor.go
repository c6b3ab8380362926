// Package monitor runs the capture, analyse, draw and display loop.
//
// Every frame is read and displayed. At most one frame per sampling
// interval is sent to the classifier, and only that frame carries boxes:
// detections are never carried over to later frames, whose faces may
// have moved.
package monitor

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/benbjohnson/clock"
	"github.com/google/uuid"
	"github.com/teslashibe/moodcam/internal/log"
	"github.com/teslashibe/moodcam/pkg/camera"
	"github.com/teslashibe/moodcam/pkg/emotions"
	"github.com/teslashibe/moodcam/pkg/inference"
	"github.com/teslashibe/moodcam/pkg/overlay"
	"github.com/teslashibe/moodcam/pkg/sampler"
	"gocv.io/x/gocv"
)

// Monitor owns the camera and window for the duration of Run.
type Monitor struct {
	source     camera.Source
	classifier inference.Classifier
	display    Display
	renderer   Renderer
	sampler    *sampler.Sampler
	clock      clock.Clock
	observer   Observer
	logger     *slog.Logger

	stats Stats
}

// Option configures a Monitor.
type Option func(*Monitor)

// WithRenderer replaces the default overlay renderer.
func WithRenderer(r Renderer) Option {
	return func(m *Monitor) { m.renderer = r }
}

// WithSampler sets the analysis schedule.
func WithSampler(s *sampler.Sampler) Option {
	return func(m *Monitor) { m.sampler = s }
}

// WithClock sets the clock used for timing analyses.
func WithClock(c clock.Clock) Option {
	return func(m *Monitor) { m.clock = c }
}

// WithObserver registers a loop observer.
func WithObserver(o Observer) Option {
	return func(m *Monitor) { m.observer = o }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(m *Monitor) { m.logger = l }
}

// New creates a monitor. Run takes ownership of source and display;
// the caller keeps ownership of classifier.
func New(source camera.Source, classifier inference.Classifier, display Display, opts ...Option) *Monitor {
	m := &Monitor{
		source:     source,
		classifier: classifier,
		display:    display,
	}
	for _, opt := range opts {
		opt(m)
	}

	if m.clock == nil {
		m.clock = clock.New()
	}
	if m.sampler == nil {
		m.sampler = sampler.New(sampler.DefaultInterval, m.clock)
	}
	if m.renderer == nil {
		m.renderer = overlay.NewRenderer()
	}
	if m.observer == nil {
		m.observer = nopObserver{}
	}
	if m.logger == nil {
		m.logger = log.With("component", "monitor")
	}
	return m
}

// SetObserver replaces the loop observer. Call it before Run.
func (m *Monitor) SetObserver(o Observer) {
	if o == nil {
		o = nopObserver{}
	}
	m.observer = o
}

// Stats returns the loop counters.
func (m *Monitor) Stats() StatsSnapshot {
	return m.stats.Snapshot()
}

// Run loops until the user quits, ctx is cancelled or a frame cannot be
// read. Quitting and cancellation return nil. A read failure is fatal and
// returned. The source and display are closed on every path.
func (m *Monitor) Run(ctx context.Context) error {
	defer m.closeResources()

	frame := gocv.NewMat()
	defer frame.Close()

	m.logger.Info("monitor started",
		"classifier", m.classifier.Name(),
		"interval", m.sampler.Interval())

	for {
		if ctx.Err() != nil {
			m.logger.Info("monitor stopped", "reason", "cancelled")
			return nil
		}

		if err := m.source.Read(&frame); err != nil {
			m.logger.Error("frame read failed", "error", err)
			return fmt.Errorf("monitor: %w", err)
		}
		n := m.stats.frames.Add(1)

		var dets []emotions.Detection
		if m.sampler.Due() {
			dets = m.analyze(ctx, frame, n)
		}

		m.present(frame, dets)

		if m.display.QuitRequested() {
			m.logger.Info("monitor stopped", "reason", "quit")
			return nil
		}
	}
}

// analyze runs the classifier on the original frame. Failures are logged
// and yield no detections; the sampler is marked either way.
func (m *Monitor) analyze(ctx context.Context, frame gocv.Mat, n uint64) []emotions.Detection {
	at := m.sampler.Mark()
	dets, err := m.classify(ctx, frame)

	a := Analysis{
		ID:       uuid.NewString(),
		Frame:    n,
		At:       at,
		Duration: m.clock.Since(at),
		Backend:  m.classifier.Name(),
	}
	m.stats.analyses.Add(1)

	if err != nil {
		m.stats.failures.Add(1)
		m.logger.Warn("analysis failed", "frame", n, "error", err)
		a.Err = err
		a.Error = err.Error()
		dets = nil
	}

	dets = usable(dets)
	a.Detections = dets
	a.Faces = facesOf(dets)
	m.stats.detections.Add(uint64(len(dets)))

	m.logger.Debug("analysis complete", "frame", n, "faces", len(dets), "duration", a.Duration)

	m.observer.OnAnalysis(a)
	return dets
}

// classify calls the classifier, turning a panic into a ClassifierError
// so a faulty backend cannot take the loop down.
func (m *Monitor) classify(ctx context.Context, frame gocv.Mat) (dets []emotions.Detection, err error) {
	defer func() {
		if r := recover(); r != nil {
			dets = nil
			err = inference.WrapError(m.classifier.Name(), fmt.Errorf("panic: %v", r))
		}
	}()
	return m.classifier.Analyze(ctx, frame)
}

// usable drops detections whose region cannot be drawn.
func usable(dets []emotions.Detection) []emotions.Detection {
	var out []emotions.Detection
	for _, d := range dets {
		if d.Region.Valid() {
			out = append(out, d)
		}
	}
	return out
}

// present draws on a copy so the analysed frame stays untouched.
func (m *Monitor) present(frame gocv.Mat, dets []emotions.Detection) {
	view := frame.Clone()
	defer view.Close()

	m.renderer.Draw(&view, Annotate(dets))
	m.observer.OnFrame(view)
	m.display.Show(view)
}

func (m *Monitor) closeResources() {
	if err := m.source.Close(); err != nil {
		m.logger.Warn("camera close failed", "error", err)
	}
	if err := m.display.Close(); err != nil {
		m.logger.Warn("display close failed", "error", err)
	}
}

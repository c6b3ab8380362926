package web

import (
	"encoding/json"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"github.com/teslashibe/moodcam/pkg/hub"
)

// handleStatus returns session info and loop counters
func (s *Server) handleStatus(c *fiber.Ctx) error {
	return c.JSON(Status{
		Started:    s.started,
		Uptime:     time.Since(s.started).Round(time.Second).String(),
		Classifier: s.info.Classifier,
		Interval:   s.info.Interval.String(),
		Camera:     s.info.Camera,
		Stats:      s.stats(),
		Clients: map[string]int{
			"detections": s.detectionHub.ClientCount(),
			"camera":     s.cameraHub.ClientCount(),
		},
	})
}

// handleDetections returns the latest analysis
func (s *Server) handleDetections(c *fiber.Ctx) error {
	a, ok := s.Latest()
	if !ok {
		return c.Status(fiber.StatusNoContent).Send(nil)
	}
	return c.JSON(a)
}

// handleHistory returns recent analyses, newest last.
// ?limit=N trims to the last N.
func (s *Server) handleHistory(c *fiber.Ctx) error {
	history := s.History()

	limit := c.QueryInt("limit", len(history))
	if limit < 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "limit must not be negative",
		})
	}
	if limit < len(history) {
		history = history[len(history)-limit:]
	}
	return c.JSON(history)
}

// handleDetectionsWS streams analyses, starting with the latest one
func (s *Server) handleDetectionsWS(c *websocket.Conn) {
	if a, ok := s.Latest(); ok {
		if data, err := json.Marshal(a); err == nil {
			c.WriteMessage(websocket.TextMessage, data)
		}
	}

	client := hub.NewClient(s.detectionHub, c)
	if client == nil {
		return
	}
	client.Run()
}

// handleCameraWS streams annotated JPEG frames
func (s *Server) handleCameraWS(c *websocket.Conn) {
	client := hub.NewClient(s.cameraHub, c)
	if client == nil {
		return
	}
	client.Run()
}

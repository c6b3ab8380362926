package camera

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/pion/rtp"
	"github.com/pion/rtp/codecs"
	"github.com/pion/webrtc/v3"
	"github.com/teslashibe/moodcam/internal/log"
	"gocv.io/x/gocv"
)

// Stream timeouts.
const (
	streamDialTimeout  = 10 * time.Second
	streamFirstFrame   = 15 * time.Second
	streamReadTimeout  = 5 * time.Second
	streamDecodeWindow = 100 * time.Millisecond
)

// Stream receives H264 video over WebRTC from a GStreamer webrtcsink
// signalling server and hands out decoded frames.
type Stream struct {
	signallingURL string
	producerName  string
	logger        *slog.Logger

	ws      *websocket.Conn
	pc      *webrtc.PeerConnection
	wsMutex sync.Mutex

	myPeerID   string
	producerID string

	// Written by the signalling goroutine, read from pion callbacks
	sessionMu sync.Mutex
	sessionID string

	decoder *h264Decoder

	// Latest decoded frame
	frameMu   sync.Mutex
	frameCond *sync.Cond
	latest    []byte
	frameSeq  uint64
	readSeq   uint64

	closeOnce sync.Once
	closed    bool
}

// OpenStream connects to the signalling server and waits for the first frame.
func OpenStream(cfg Config) (*Stream, error) {
	s := &Stream{
		signallingURL: cfg.SignallingURL,
		producerName:  cfg.Producer,
		logger:        log.With("component", "camera.stream"),
		decoder:       newH264Decoder(streamDecodeWindow),
	}
	s.frameCond = sync.NewCond(&s.frameMu)

	if err := s.connect(); err != nil {
		s.Close()
		return nil, fmt.Errorf("%w: %v", ErrOpen, err)
	}

	if !s.waitFrame(streamFirstFrame) {
		s.Close()
		return nil, fmt.Errorf("%w: timeout waiting for video", ErrOpen)
	}

	return s, nil
}

func (s *Stream) connect() error {
	dialer := websocket.Dialer{
		HandshakeTimeout: streamDialTimeout,
	}

	var err error
	s.ws, _, err = dialer.Dial(s.signallingURL, nil)
	if err != nil {
		return fmt.Errorf("signalling connect failed: %w", err)
	}

	if err := s.waitForWelcome(); err != nil {
		return fmt.Errorf("welcome failed: %w", err)
	}
	if err := s.findProducer(); err != nil {
		return fmt.Errorf("find producer failed: %w", err)
	}
	if err := s.createPeerConnection(); err != nil {
		return fmt.Errorf("peer connection failed: %w", err)
	}
	if err := s.startSession(); err != nil {
		return fmt.Errorf("start session failed: %w", err)
	}

	s.logger.Info("stream session requested", "producer", s.producerID)

	go s.handleSignalling()
	return nil
}

// readJSON reads one signalling message with a deadline.
func (s *Stream) readJSON(timeout time.Duration, v any) error {
	s.ws.SetReadDeadline(time.Now().Add(timeout))
	defer s.ws.SetReadDeadline(time.Time{})

	_, msg, err := s.ws.ReadMessage()
	if err != nil {
		return err
	}
	return json.Unmarshal(msg, v)
}

func (s *Stream) writeJSON(v any) error {
	s.wsMutex.Lock()
	defer s.wsMutex.Unlock()
	return s.ws.WriteJSON(v)
}

func (s *Stream) waitForWelcome() error {
	var welcome struct {
		Type   string `json:"type"`
		PeerID string `json:"peerId"`
	}
	if err := s.readJSON(streamDialTimeout, &welcome); err != nil {
		return err
	}
	if welcome.Type != "welcome" {
		return fmt.Errorf("expected welcome, got %s", welcome.Type)
	}
	s.myPeerID = welcome.PeerID
	return nil
}

// producer is one entry of the signalling "list" reply.
type producer struct {
	ID   string            `json:"id"`
	Meta map[string]string `json:"meta"`
}

func (s *Stream) findProducer() error {
	if err := s.writeJSON(map[string]string{"type": "list"}); err != nil {
		return err
	}

	var listResp struct {
		Type      string     `json:"type"`
		Producers []producer `json:"producers"`
	}
	if err := s.readJSON(5*time.Second, &listResp); err != nil {
		return err
	}

	id, err := pickProducer(listResp.Producers, s.producerName)
	if err != nil {
		return err
	}
	s.producerID = id
	return nil
}

// pickProducer returns the producer whose "name" meta matches name,
// or the first one when name is empty.
func pickProducer(producers []producer, name string) (string, error) {
	for _, p := range producers {
		if name == "" || p.Meta["name"] == name {
			return p.ID, nil
		}
	}
	if name == "" {
		return "", fmt.Errorf("no producers available")
	}
	return "", fmt.Errorf("producer %q not found in %d producers", name, len(producers))
}

func (s *Stream) createPeerConnection() error {
	var err error
	s.pc, err = webrtc.NewPeerConnection(webrtc.Configuration{})
	if err != nil {
		return err
	}

	// Receive-only video
	if _, err = s.pc.AddTransceiverFromKind(webrtc.RTPCodecTypeVideo, webrtc.RTPTransceiverInit{
		Direction: webrtc.RTPTransceiverDirectionRecvonly,
	}); err != nil {
		return err
	}

	s.pc.OnTrack(func(track *webrtc.TrackRemote, receiver *webrtc.RTPReceiver) {
		s.logger.Info("got track", "kind", track.Kind().String(), "codec", track.Codec().MimeType)
		if track.Kind() == webrtc.RTPCodecTypeVideo {
			go s.handleVideoTrack(track)
		}
	})

	s.pc.OnICECandidate(func(candidate *webrtc.ICECandidate) {
		if candidate != nil {
			s.sendICECandidate(candidate)
		}
	})

	s.pc.OnConnectionStateChange(func(state webrtc.PeerConnectionState) {
		s.logger.Debug("connection state", "state", state.String())
		if state == webrtc.PeerConnectionStateFailed || state == webrtc.PeerConnectionStateClosed {
			s.markClosed()
		}
	})

	return nil
}

func (s *Stream) startSession() error {
	return s.writeJSON(map[string]string{
		"type":   "startSession",
		"peerId": s.producerID,
	})
}

// signalMessage covers every message type we handle.
type signalMessage struct {
	Type      string `json:"type"`
	SessionID string `json:"sessionId"`
	SDP       *struct {
		Type string `json:"type"`
		SDP  string `json:"sdp"`
	} `json:"sdp"`
	ICE *struct {
		Candidate     string  `json:"candidate"`
		SDPMid        *string `json:"sdpMid"`
		SDPMLineIndex *uint16 `json:"sdpMLineIndex"`
	} `json:"ice"`
}

func (s *Stream) handleSignalling() {
	defer s.markClosed()

	for {
		_, raw, err := s.ws.ReadMessage()
		if err != nil {
			if !s.isClosed() {
				s.logger.Warn("signalling error", "error", err)
			}
			return
		}

		var msg signalMessage
		if err := json.Unmarshal(raw, &msg); err != nil {
			s.logger.Debug("ignoring malformed signalling message", "error", err)
			continue
		}

		switch msg.Type {
		case "sessionStarted":
			s.setSession(msg.SessionID)
		case "peer":
			s.handlePeerMessage(msg)
		case "endSession":
			s.logger.Info("producer ended session")
			return
		}
	}
}

func (s *Stream) handlePeerMessage(msg signalMessage) {
	if msg.SDP != nil && msg.SDP.Type == "offer" {
		offer := webrtc.SessionDescription{Type: webrtc.SDPTypeOffer, SDP: msg.SDP.SDP}
		if err := s.pc.SetRemoteDescription(offer); err != nil {
			s.logger.Warn("SetRemoteDescription failed", "error", err)
			return
		}

		answer, err := s.pc.CreateAnswer(nil)
		if err != nil {
			s.logger.Warn("CreateAnswer failed", "error", err)
			return
		}
		if err := s.pc.SetLocalDescription(answer); err != nil {
			s.logger.Warn("SetLocalDescription failed", "error", err)
			return
		}

		s.writeJSON(map[string]any{
			"type":      "peer",
			"sessionId": s.session(),
			"sdp": map[string]string{
				"type": answer.Type.String(),
				"sdp":  answer.SDP,
			},
		})
	}

	if msg.ICE != nil {
		if err := s.pc.AddICECandidate(webrtc.ICECandidateInit{
			Candidate:     msg.ICE.Candidate,
			SDPMid:        msg.ICE.SDPMid,
			SDPMLineIndex: msg.ICE.SDPMLineIndex,
		}); err != nil {
			s.logger.Debug("AddICECandidate failed", "error", err)
		}
	}
}

func (s *Stream) sendICECandidate(candidate *webrtc.ICECandidate) {
	session := s.session()
	if session == "" {
		return
	}

	init := candidate.ToJSON()
	s.writeJSON(map[string]any{
		"type":      "peer",
		"sessionId": session,
		"ice": map[string]any{
			"candidate":     init.Candidate,
			"sdpMid":        init.SDPMid,
			"sdpMLineIndex": init.SDPMLineIndex,
		},
	})
}

func (s *Stream) setSession(id string) {
	s.sessionMu.Lock()
	defer s.sessionMu.Unlock()
	s.sessionID = id
}

func (s *Stream) session() string {
	s.sessionMu.Lock()
	defer s.sessionMu.Unlock()
	return s.sessionID
}

func (s *Stream) handleVideoTrack(track *webrtc.TrackRemote) {
	depacketizer := &codecs.H264Packet{}

	for !s.isClosed() {
		packet, _, err := track.ReadRTP()
		if err != nil {
			s.logger.Warn("video track ended", "error", err)
			s.markClosed()
			return
		}
		s.handlePacket(depacketizer, packet)
	}
}

func (s *Stream) handlePacket(depacketizer *codecs.H264Packet, packet *rtp.Packet) {
	nal, err := depacketizer.Unmarshal(packet.Payload)
	if err != nil || len(nal) == 0 {
		return
	}

	jpegData, err := s.decoder.Push(nal, packet.Marker)
	if err != nil {
		s.logger.Debug("decode failed", "error", err)
		return
	}
	if jpegData != nil {
		s.publish(jpegData)
	}
}

func (s *Stream) publish(jpegData []byte) {
	s.frameMu.Lock()
	s.latest = jpegData
	s.frameSeq++
	s.frameMu.Unlock()
	s.frameCond.Broadcast()
}

// waitFrame blocks until a frame newer than the last one read arrives.
func (s *Stream) waitFrame(timeout time.Duration) bool {
	timer := time.AfterFunc(timeout, s.frameCond.Broadcast)
	defer timer.Stop()

	deadline := time.Now().Add(timeout)

	s.frameMu.Lock()
	defer s.frameMu.Unlock()
	for s.frameSeq == s.readSeq && !s.closed && time.Now().Before(deadline) {
		s.frameCond.Wait()
	}
	return s.frameSeq != s.readSeq
}

// Read implements Source. It blocks until a new frame has been decoded.
func (s *Stream) Read(dst *gocv.Mat) error {
	if !s.waitFrame(streamReadTimeout) {
		if s.isClosed() {
			return fmt.Errorf("%w: %v", ErrRead, ErrClosed)
		}
		return fmt.Errorf("%w: no frame within %s", ErrRead, streamReadTimeout)
	}

	s.frameMu.Lock()
	data := s.latest
	s.readSeq = s.frameSeq
	s.frameMu.Unlock()

	if err := DecodeJPEG(data, dst); err != nil {
		return fmt.Errorf("%w: %v", ErrRead, err)
	}
	return nil
}

func (s *Stream) markClosed() {
	s.frameMu.Lock()
	s.closed = true
	s.frameMu.Unlock()
	s.frameCond.Broadcast()
}

func (s *Stream) isClosed() bool {
	s.frameMu.Lock()
	defer s.frameMu.Unlock()
	return s.closed
}

// Close implements Source.
func (s *Stream) Close() error {
	s.closeOnce.Do(func() {
		s.markClosed()
		if s.pc != nil {
			s.pc.Close()
		}
		if s.ws != nil {
			s.ws.Close()
		}
	})
	return nil
}

// Package hub fans dashboard messages out to websocket clients.
// A single goroutine owns the client set; clients and publishers talk
// to it over channels.
package hub

import "github.com/gofiber/websocket/v2"

// Kind says how a message is framed on the websocket.
type Kind int

const (
	// KindJSON is an encoded JSON document, sent as a text frame.
	KindJSON Kind = iota
	// KindFrame is a JPEG image, sent as a binary frame.
	KindFrame
)

// Message is one broadcast payload. Data is shared between clients and
// must not be modified after broadcasting.
type Message struct {
	Kind Kind
	Data []byte
}

// JSON wraps pre-encoded JSON.
func JSON(data []byte) Message {
	return Message{Kind: KindJSON, Data: data}
}

// Frame wraps a JPEG frame.
func Frame(jpeg []byte) Message {
	return Message{Kind: KindFrame, Data: jpeg}
}

func (m Message) wsType() int {
	if m.Kind == KindFrame {
		return websocket.BinaryMessage
	}
	return websocket.TextMessage
}

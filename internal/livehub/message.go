// Package livehub realizes the external-driver side of spec §6: it hosts
// one editor.Controller per open document behind an HTTP surface so the
// core can be exercised by a real browser (or any other client) over a
// network connection. Not collaborative multi-user merging — one writer
// session per document, plus any number of read-only viewer streams.
//
// Grounded on blueprints/chat/app/web/ws (Connection/Hub shape) and on
// app.go's graceful-shutdown pattern, both from the teacher.
package livehub

import "encoding/json"

// Op names the kind of frame exchanged over a writer's websocket
// connection, mirroring the teacher's ws.Message op-code envelope
// (connection.go) but JSON-string-tagged instead of integer-coded since
// nexo has no protocol-version backward-compatibility concern to optimize
// wire size for.
type Op string

const (
	// OpHello is sent once, immediately after a writer connects: the
	// current document snapshot plus the session id.
	OpHello Op = "hello"
	// OpInput is sent client->server: one input.Event as JSON.
	OpInput Op = "input"
	// OpRender is sent server->client: the container's current
	// innerHTML, for the host shim to mirror into the real DOM (the
	// shim's only job per §11 of SPEC_FULL.md).
	OpRender Op = "render"
	// OpAck is sent server->client after a command is undone or redone,
	// carrying the transaction description.
	OpAck Op = "ack"
	// OpError is sent server->client when a frame could not be
	// processed.
	OpError Op = "error"
)

// Message is the wire envelope for every frame in either direction.
type Message struct {
	Op   Op              `json:"op"`
	Data json.RawMessage `json:"data,omitempty"`
}

// HelloData is OpHello's payload.
type HelloData struct {
	SessionID string          `json:"sessionId"`
	Document  json.RawMessage `json:"document"`
}

// RenderData is OpRender's payload.
type RenderData struct {
	HTML string `json:"html"`
}

// AckData is OpAck's payload.
type AckData struct {
	Description string `json:"description"`
}

// ErrorData is OpError's payload.
type ErrorData struct {
	Message string `json:"message"`
}

// build wraps data into a Message for op, along with the Message's own
// JSON encoding for the websocket writer.
func build(op Op, data any) (Message, []byte, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return Message{}, nil, err
	}
	m := Message{Op: op, Data: raw}
	frame, err := json.Marshal(m)
	if err != nil {
		return Message{}, nil, err
	}
	return m, frame, nil
}

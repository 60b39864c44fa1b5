package livehub

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/net/html"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/cosmic-gao/nexo-sub000/editor"
	"github.com/cosmic-gao/nexo-sub000/internal/eventbus"
	"github.com/cosmic-gao/nexo-sub000/internal/input"
)

// Connection timing, straight off blueprints/chat/app/web/ws/connection.go.
const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512 * 1024
)

// Session is one open document driven by a single writer connection, plus
// any number of read-only viewer channels fed the same render stream.
type Session struct {
	ID    string
	DocID string

	ctrl *editor.Controller
	ih   *input.InputHandler
	kh   *input.KeyboardHandler
	sh   *input.SelectionHandler

	log *slog.Logger

	conn   *websocket.Conn
	sendCh chan []byte

	viewersMu sync.Mutex
	viewers   map[chan any]bool

	unsubs []func()

	ctx    context.Context
	cancel context.CancelFunc
	once   sync.Once
}

// newSession wires a fresh editor.Controller to the input handler trio and
// subscribes its own render/ack forwarding to the controller's event bus.
func newSession(docID string, ctrl *editor.Controller, log *slog.Logger) *Session {
	sh := input.NewSelectionHandler(ctrl)
	ctx, cancel := context.WithCancel(context.Background())
	s := &Session{
		ID:      "sess_" + uuid.NewString(),
		DocID:   docID,
		ctrl:    ctrl,
		ih:      input.New(ctrl),
		kh:      input.NewKeyboardHandler(ctrl, sh),
		sh:      sh,
		log:     log,
		sendCh:  make(chan []byte, 256),
		viewers: make(map[chan any]bool),
		ctx:     ctx,
		cancel:  cancel,
	}

	container := &html.Node{Type: html.ElementNode, Data: "div"}
	ctrl.Init(container)
	ctrl.Compiler().Render(ctrl.GetDocument())

	s.unsubs = append(s.unsubs,
		ctrl.On(eventbus.DocumentChanged, func(eventbus.Event) { s.broadcastRender() }),
		ctrl.On(eventbus.CommandExecuted, func(ev eventbus.Event) { s.ackOne(ev) }),
		ctrl.On(eventbus.CommandUndone, func(ev eventbus.Event) { s.ackOne(ev) }),
		ctrl.On(eventbus.CommandRedone, func(ev eventbus.Event) { s.ackOne(ev) }),
	)
	return s
}

// Attach binds conn as this session's sole writer connection and starts
// its pumps (ws/connection.go's Start).
func (s *Session) Attach(conn *websocket.Conn) {
	s.conn = conn
	go s.writePump()
	go s.readPump()
	s.sendHello()
}

// AddViewer registers ch to receive every subsequent frame as a Message
// value, used by the SSE endpoint (mizu's Ctx.SSE marshals each item it
// receives, so viewers get the pre-marshal Message while the ws writer
// gets encoded []byte frames).
// RemoveViewer must be called when the viewer's request context ends.
func (s *Session) AddViewer(ch chan any) {
	s.viewersMu.Lock()
	s.viewers[ch] = true
	s.viewersMu.Unlock()
}

func (s *Session) RemoveViewer(ch chan any) {
	s.viewersMu.Lock()
	delete(s.viewers, ch)
	s.viewersMu.Unlock()
}

// Close tears the session down: its writer connection, its viewer
// channels, and its event-bus subscriptions.
func (s *Session) Close() {
	s.once.Do(func() {
		s.cancel()
		for _, unsub := range s.unsubs {
			unsub()
		}
		close(s.sendCh)
		if s.conn != nil {
			s.conn.Close()
		}
		s.viewersMu.Lock()
		for ch := range s.viewers {
			close(ch)
		}
		s.viewers = nil
		s.viewersMu.Unlock()
		s.ctrl.Compiler().Destroy()
	})
}

func (s *Session) sendHello() {
	doc, err := s.ctrl.ToJSON()
	if err != nil {
		return
	}
	s.publish(OpHello, HelloData{SessionID: s.ID, Document: doc})
}

func (s *Session) broadcastRender() {
	s.publish(OpRender, RenderData{HTML: s.renderHTML()})
}

// publish encodes data under op, queues it for the writer connection, and
// fans it out to every registered viewer channel.
func (s *Session) publish(op Op, data any) {
	msg, frame, err := build(op, data)
	if err != nil {
		return
	}
	s.send(frame)
	s.viewersMu.Lock()
	defer s.viewersMu.Unlock()
	for ch := range s.viewers {
		select {
		case ch <- msg:
		default:
		}
	}
}

func (s *Session) renderHTML() string {
	container := s.ctrl.Compiler().GetContainer()
	if container == nil {
		return ""
	}
	var buf bytes.Buffer
	for c := container.FirstChild; c != nil; c = c.NextSibling {
		_ = html.Render(&buf, c)
	}
	return buf.String()
}

func (s *Session) ackOne(ev eventbus.Event) {
	desc, _ := ev.Payload.(string)
	s.publish(OpAck, AckData{Description: desc})
}

func (s *Session) sendError(msg string) {
	s.publish(OpError, ErrorData{Message: msg})
}

func (s *Session) send(b []byte) {
	select {
	case s.sendCh <- b:
	default:
		s.log.Warn("livehub: send buffer full, dropping frame", slog.String("session", s.ID))
	}
}

func (s *Session) readPump() {
	defer s.Close()

	s.conn.SetReadLimit(maxMessageSize)
	s.conn.SetReadDeadline(time.Now().Add(pongWait))
	s.conn.SetPongHandler(func(string) error {
		s.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		select {
		case <-s.ctx.Done():
			return
		default:
		}

		_, raw, err := s.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				s.log.Warn("livehub: read error", slog.Any("error", err))
			}
			return
		}
		s.handleFrame(raw)
	}
}

func (s *Session) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		s.conn.Close()
	}()

	for {
		select {
		case <-s.ctx.Done():
			return

		case msg, ok := <-s.sendCh:
			s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				s.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := s.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}

		case <-ticker.C:
			s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := s.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (s *Session) handleFrame(raw []byte) {
	var m Message
	if err := json.Unmarshal(raw, &m); err != nil {
		s.sendError("invalid frame")
		return
	}
	if m.Op != OpInput {
		s.sendError("unknown op")
		return
	}
	var ev input.Event
	if err := json.Unmarshal(m.Data, &ev); err != nil {
		s.sendError("invalid input event")
		return
	}
	s.dispatch(ev)
}

// dispatch routes one input.Event to the handler matching its Name, the
// same split §4.10 draws between the three input handlers.
func (s *Session) dispatch(ev input.Event) {
	switch ev.Name {
	case "compositionstart":
		s.ih.HandleCompositionStart(ev.Target)
	case "compositionend":
		s.ih.HandleCompositionEnd(ev)
	case "input":
		s.ih.Handle(ev)
	case "keydown":
		s.kh.Handle(ev)
	case "mousedown":
		s.sh.HandleMouseDown(ev)
	case "mousemove":
		s.sh.HandleMouseMove(ev)
	case "mouseup":
		s.sh.HandleMouseUp()
	default:
		s.sendError("unhandled event: " + ev.Name)
	}
}

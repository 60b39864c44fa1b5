package livehub

import (
	"net/http"

	"github.com/go-mizu/mizu"
	"github.com/gorilla/websocket"
)

// Server exposes a Hub's sessions over HTTP: one endpoint to bootstrap a
// document snapshot, one websocket endpoint for the single writer
// connection, and one SSE endpoint for read-only viewers. Routing and
// graceful shutdown are mizu.App's own (app.go) — there is no reason to
// reimplement what the teacher's own App already does correctly.
type Server struct {
	hub      *Hub
	app      *mizu.App
	upgrader websocket.Upgrader
}

// NewServer wires hub's sessions onto a fresh mizu.App.
func NewServer(hub *Hub, opts ...mizu.AppOption) *Server {
	s := &Server{
		hub: hub,
		app: mizu.New(opts...),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
	}
	s.routes()
	return s
}

func (s *Server) routes() {
	s.app.Get("/nexo/{docId}", s.handleBootstrap)
	s.app.Get("/nexo/{docId}/ws", s.handleWebSocket)
	s.app.Get("/nexo/{docId}/stream", s.handleStream)
}

// Listen starts the server, blocking until SIGINT/SIGTERM trigger a
// graceful drain (mizu.App.Listen).
func (s *Server) Listen(addr string) error {
	return s.app.Listen(addr)
}

// Close tears down every open session. Call after Listen returns.
func (s *Server) Close() {
	s.hub.CloseAll()
}

func (s *Server) handleBootstrap(c *mizu.Ctx) error {
	docID := c.Param("docId")
	session := s.hub.GetOrCreateSession(docID)
	doc, err := session.ctrl.ToJSON()
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, HelloData{SessionID: session.ID, Document: doc})
}

func (s *Server) handleWebSocket(c *mizu.Ctx) error {
	docID := c.Param("docId")
	session := s.hub.GetOrCreateSession(docID)

	conn, err := s.upgrader.Upgrade(c.Writer(), c.Request(), nil)
	if err != nil {
		return err
	}
	session.Attach(conn)
	return nil
}

func (s *Server) handleStream(c *mizu.Ctx) error {
	docID := c.Param("docId")
	session := s.hub.GetOrCreateSession(docID)

	ch := make(chan any, 16)
	session.AddViewer(ch)
	defer session.RemoveViewer(ch)

	return c.SSE(ch)
}

package socket

import (
	"context"
	"net/http"

	"field_mates_server/logging"
	"field_mates_server/models"

	socketio "github.com/googollee/go-socket.io"
)

// NotificationEvent is the event name clients receive notifications under.
const NotificationEvent = "recordChanged"

// RoomFor is the room that receives notifications about records of
// recordType.
func RoomFor(recordType string) string {
	return "records:" + recordType
}

// Server is a Socket.IO server that pushes change notifications to the
// clients that joined the room of the changed record type.
type Server struct {
	io  *socketio.Server
	log logging.Logger
}

// NewSocketServer initializes and returns a new Socket.IO server
func NewSocketServer(log logging.Logger) *Server {
	log = logging.OrNoOp(log)
	server := socketio.NewServer(nil)

	server.OnConnect("/", func(c socketio.Conn) error {
		log.Debugf("socket connected: %s", c.ID())
		return nil
	})

	// clients join with the record type they want to hear about
	server.OnEvent("/", "join", func(c socketio.Conn, recordType string) {
		if recordType == "" {
			log.Warnf("socket %s sent join without a record type", c.ID())
			return
		}
		log.Debugf("socket %s joined %s", c.ID(), RoomFor(recordType))
		c.Join(RoomFor(recordType))
	})

	server.OnEvent("/", "leave", func(c socketio.Conn, recordType string) {
		c.Leave(RoomFor(recordType))
	})

	server.OnError("/", func(c socketio.Conn, err error) {
		log.Warnf("socket error: %v", err)
	})

	server.OnDisconnect("/", func(c socketio.Conn, reason string) {
		log.Debugf("socket disconnected: %s (%s)", c.ID(), reason)
	})

	return &Server{io: server, log: log}
}

// Serve runs the server until Close is called.
func (s *Server) Serve() error {
	return s.io.Serve()
}

func (s *Server) Close() error {
	return s.io.Close()
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.io.ServeHTTP(w, r)
}

// Push broadcasts n to the room of its record type.
func (s *Server) Push(ctx context.Context, n models.Notification) error {
	s.io.BroadcastToRoom("/", RoomFor(n.RecordType), NotificationEvent, n)
	return nil
}

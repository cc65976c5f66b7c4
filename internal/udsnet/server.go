package udsnet

import (
	"bufio"
	"log/slog"
	"net"
	"os"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/routerd/routerd/internal/evloop"
	"github.com/routerd/routerd/internal/logger"
)

// Entry is one accepted connection. A connection carries exactly one
// request/response exchange; there is no keep-alive.
type Entry struct {
	ID   uint64
	conn *net.UnixConn
}

// Write sends a raw response frame and closes the connection.
func (e *Entry) Write(frame []byte) error {
	_, err := e.conn.Write(frame)
	closeErr := e.conn.Close()
	if err != nil {
		return err
	}
	return closeErr
}

// Close drops the connection without writing a response, e.g. on malformed
// framing the handler chose not to answer.
func (e *Entry) Close() error {
	return e.conn.Close()
}

// MessageHandler is invoked once per accepted connection with the raw frame
// read from it. Handlers decode with DecodeRequest and reply via Entry.Write.
type MessageHandler func(entry *Entry, frame []byte)

// Server accepts connections on a UNIX socket and delivers one framed message
// per connection to handler, via the event loop's channel-poll mechanism
// rather than raw epoll over net.Conn descriptors: accept and read both block
// on goroutines, and completed reads are handed to the loop as closures
// draining a buffered channel each tick.
type Server struct {
	name     string
	path     string
	listener *net.UnixListener
	handler  MessageHandler

	nextID uint64
	events chan evloop.ChannelEvent

	mu     sync.Mutex
	closed bool
}

// Listen binds a UNIX socket at path, removing any stale socket file first,
// and registers the server with loop as a channel handler.
func Listen(name, path string, loop *evloop.Loop, handler MessageHandler) (*Server, error) {
	_ = os.Remove(path)

	addr := &net.UnixAddr{Name: path, Net: "unix"}
	l, err := net.ListenUnix("unix", addr)
	if err != nil {
		return nil, err
	}

	s := &Server{
		name:     name,
		path:     path,
		listener: l,
		handler:  handler,
		events:   make(chan evloop.ChannelEvent, 256),
	}

	loop.RegisterChannel(s)
	go s.acceptLoop()

	return s, nil
}

// PollChannel drains every completed-read event queued since the last tick.
func (s *Server) PollChannel() []evloop.ChannelEvent {
	var out []evloop.ChannelEvent
	for {
		select {
		case ev := <-s.events:
			out = append(out, ev)
		default:
			return out
		}
	}
}

func (s *Server) acceptLoop() {
	for {
		conn, err := s.listener.AcceptUnix()
		if err != nil {
			s.mu.Lock()
			closed := s.closed
			s.mu.Unlock()
			if !closed {
				logger.Error("uds accept failed", slog.String("socket", s.name), logger.Err(err))
			}
			return
		}
		entry := &Entry{ID: atomic.AddUint64(&s.nextID, 1), conn: conn}
		go s.readEntry(entry)
	}
}

// readEntry reads exactly one frame: the request line, the blank separator
// line, and the body line, then hands the reassembled frame to the handler
// on the event loop's goroutine.
func (s *Server) readEntry(entry *Entry) {
	r := bufio.NewReader(entry.conn)

	reqLine, err := r.ReadString('\n')
	if err != nil && reqLine == "" {
		_ = entry.conn.Close()
		return
	}

	blank, err := r.ReadString('\n')
	_ = err // a peer that closes after the request line yields a frame with an empty body

	bodyLine, _ := r.ReadString('\n')

	frame := strings.TrimRight(reqLine, "\n") + "\n" + strings.TrimRight(blank, "\n") + "\n" + strings.TrimRight(bodyLine, "\n")

	s.events <- evloop.ChannelEvent{Handle: func() {
		s.handler(entry, []byte(frame))
	}}
}

// Close stops accepting new connections and removes the socket file.
func (s *Server) Close() error {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()

	err := s.listener.Close()
	_ = os.Remove(s.path)
	return err
}

package ipc

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"path/filepath"
	"time"

	"github.com/bnema/regmsg/internal/command"
	"github.com/bnema/regmsg/internal/logger"
)

const (
	replyAttempts     = 3
	replyRetryBackoff = 100 * time.Millisecond
)

// Server answers command requests over a Unix socket. Requests are
// handled strictly one at a time; a failing request never brings the
// daemon down.
type Server struct {
	socketPath string
	registry   *command.Registry
	listener   net.Listener
}

// NewServer returns an unbound server for the given socket path.
func NewServer(socketPath string, registry *command.Registry) *Server {
	return &Server{
		socketPath: socketPath,
		registry:   registry,
	}
}

// Start binds the Unix socket, replacing any stale socket file.
func (s *Server) Start() error {
	if _, err := os.Stat(s.socketPath); err == nil {
		logger.Warnf("Removing stale socket file: %s", s.socketPath)
		if err := os.Remove(s.socketPath); err != nil {
			return fmt.Errorf("failed to remove stale socket: %w", err)
		}
	}
	if err := os.MkdirAll(filepath.Dir(s.socketPath), 0755); err != nil {
		return fmt.Errorf("failed to create socket directory: %w", err)
	}

	listener, err := net.Listen("unix", s.socketPath)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.socketPath, err)
	}
	if err := os.Chmod(s.socketPath, 0660); err != nil {
		listener.Close()
		return fmt.Errorf("failed to set socket permissions: %w", err)
	}

	s.listener = listener
	logger.Infof("Listening on %s", s.socketPath)
	return nil
}

// Run accepts connections until the context is cancelled. Must be
// called after Start.
func (s *Server) Run(ctx context.Context) error {
	go func() {
		<-ctx.Done()
		s.listener.Close()
	}()

	for {
		conn, err := s.listener.Accept()
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("accept failed: %w", err)
		}
		s.handleConn(conn)
	}
}

// Stop removes the socket file after the listener is closed.
func (s *Server) Stop() {
	if s.listener != nil {
		s.listener.Close()
	}
	if err := os.Remove(s.socketPath); err != nil && !os.IsNotExist(err) {
		logger.Warnf("Failed to remove socket file: %v", err)
	}
}

// handleConn serves request/reply pairs on one connection until the
// client hangs up.
func (s *Server) handleConn(conn net.Conn) {
	defer conn.Close()

	for {
		request, err := ReadFrame(conn)
		if err != nil {
			if errors.Is(err, io.EOF) {
				return
			}
			logger.Warnf("Rejecting request: %v", err)
			// The stream cannot be resynchronized after a framing
			// violation, so reply and drop the connection.
			s.sendReply(conn, "Error: "+err.Error())
			return
		}

		response := s.dispatch(request)
		s.sendReply(conn, response)
	}
}

func (s *Server) dispatch(request string) string {
	result, err := s.registry.Handle(request)
	if err != nil {
		logger.Errorf("Command failed: %v", err)
		return "Error: " + err.Error()
	}
	return result
}

// sendReply attempts to deliver a reply a bounded number of times with
// linear backoff. Exhaustion is logged and swallowed so the serve loop
// keeps going.
func (s *Server) sendReply(w io.Writer, response string) {
	for attempt := 1; attempt <= replyAttempts; attempt++ {
		err := WriteFrame(w, response)
		if err == nil {
			return
		}
		logger.Warnf("Failed to send reply (attempt %d/%d): %v", attempt, replyAttempts, err)
		if attempt < replyAttempts {
			time.Sleep(replyRetryBackoff * time.Duration(attempt))
		}
	}
	logger.Errorf("Giving up on reply after %d attempts", replyAttempts)
}

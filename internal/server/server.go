package server

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net"
	"sync"

	"github.com/google/uuid"
)

// Server serves the command protocol over TCP. Connections are handled one
// at a time, and the commands of a connection in order, so the engine never
// sees concurrent calls.
type Server struct {
	dispatcher *Dispatcher
	logger     *slog.Logger

	mu       sync.Mutex
	listener net.Listener
}

// NewServer creates a server that executes requests with dispatcher
func NewServer(dispatcher *Dispatcher, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{dispatcher: dispatcher, logger: logger}
}

// ListenAndServe listens on address and serves until ctx is cancelled
func (s *Server) ListenAndServe(ctx context.Context, address string) error {
	var lc net.ListenConfig
	ln, err := lc.Listen(ctx, "tcp", address)
	if err != nil {
		return err
	}
	return s.Serve(ctx, ln)
}

// Serve accepts connections on ln until ctx is cancelled or ln fails
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	s.mu.Lock()
	s.listener = ln
	s.mu.Unlock()

	stop := context.AfterFunc(ctx, func() {
		ln.Close()
	})
	defer stop()

	s.logger.Info("server listening", "address", ln.Addr().String())

	for {
		conn, err := ln.Accept()
		if err != nil {
			if ctx.Err() != nil {
				s.logger.Info("server stopped")
				return nil
			}
			return err
		}

		s.ServeConn(ctx, conn)
	}
}

// Addr returns the listening address, or nil before Serve
func (s *Server) Addr() net.Addr {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener == nil {
		return nil
	}
	return s.listener.Addr()
}

// ServeConn runs the request loop of one connection until quit, EOF or
// cancellation, then closes it
func (s *Server) ServeConn(ctx context.Context, conn net.Conn) {
	logger := s.logger.With("conn_id", uuid.NewString(), "remote", conn.RemoteAddr().String())
	logger.Info("connection accepted")

	stop := context.AfterFunc(ctx, func() {
		conn.Close()
	})
	defer stop()
	defer conn.Close()

	for {
		req, err := ReadRequest(conn)
		if err != nil {
			switch {
			case errors.Is(err, io.EOF) || ctx.Err() != nil:
				logger.Info("connection closed")
			case errors.Is(err, ErrUnknownCommand):
				// the rest of the frame cannot be skipped, so the connection ends here
				logger.Warn("bad request", "error", err)
				WriteResponse(conn, Response{OK: false, Message: err.Error()})
			default:
				logger.Warn("connection failed", "error", err)
			}
			return
		}

		logger.Debug("request", "command", req.Command.String(), "args", len(req.Args))
		resp, quit := s.dispatcher.Dispatch(req)
		if err := WriteResponse(conn, resp); err != nil {
			logger.Warn("failed to send response", "error", err)
			return
		}
		if quit {
			logger.Info("client quit")
			return
		}
	}
}

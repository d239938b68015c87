package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/honeycarbs/hirepipe/internal/config"
	"github.com/honeycarbs/hirepipe/internal/notify"
	"github.com/honeycarbs/hirepipe/pkg/logging"
)

const Version = "0.1.0"

// Server wraps an MCP SDK server with an HTTP listener
type Server struct {
	logger *logging.Logger
	config config.Config
	hub    *notify.Hub

	srv       *http.Server
	started   atomic.Bool
	closing   chan struct{}
	closeOnce sync.Once
}

// NewServer constructs the MCP HTTP server with every tool registered
func NewServer(log *logging.Logger, cfg config.Config, res *Resources) *Server {
	mcpServer := NewMCPServer(log, res)

	handler := sdkmcp.NewStreamableHTTPHandler(func(req *http.Request) *sdkmcp.Server {
		return mcpServer
	}, nil)

	s := &Server{
		logger:  log,
		config:  cfg,
		hub:     res.Notifications,
		closing: make(chan struct{}),
	}

	mux := http.NewServeMux()
	mux.Handle("/mcp/stream", handler)
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	mux.HandleFunc("GET /notifications", s.streamNotifications)

	s.srv = &http.Server{
		Addr:              cfg.Addr(),
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	return s
}

// NewMCPServer builds the SDK server and registers the tools; it carries no transport
func NewMCPServer(log *logging.Logger, res *Resources) *sdkmcp.Server {
	impl := &sdkmcp.Implementation{
		Name:    "hirepipe",
		Version: Version,
	}

	mcpServer := sdkmcp.NewServer(impl, nil)
	NewToolRegistry(log).RegisterAll(mcpServer, res)
	return mcpServer
}

// Run starts the HTTP server and blocks until shutdown
func (s *Server) Run() error {
	if !s.started.CompareAndSwap(false, true) {
		return nil
	}

	s.logger.Info("MCP HTTP server listening", "addr", s.srv.Addr)

	if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutdown requested for MCP HTTP server")
	s.closeOnce.Do(func() { close(s.closing) })

	if err := s.srv.Shutdown(ctx); err != nil {
		s.logger.Warn("MCP HTTP server shutdown with error", "err", err)
		return err
	}

	s.logger.Info("MCP HTTP server shutdown complete")
	return nil
}

// streamNotifications relays hub notifications as server-sent events
func (s *Server) streamNotifications(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok || s.hub == nil {
		http.Error(w, "streaming unsupported", http.StatusNotImplemented)
		return
	}

	ch := s.hub.Subscribe()
	defer s.hub.Unsubscribe(ch)

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			return
		case <-s.closing:
			return
		case n, ok := <-ch:
			if !ok {
				return
			}
			b, err := json.Marshal(n)
			if err != nil {
				s.logger.Warn("encode notification", "err", err)
				continue
			}
			if _, err := fmt.Fprintf(w, "event: %s\ndata: %s\n\n", n.Level, b); err != nil {
				return
			}
			flusher.Flush()
		}
	}
}

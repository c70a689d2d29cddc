package server

import (
	"context"
	"net/http"
	"net/url"
	"os/signal"
	"strings"
	"syscall"

	"github.com/thef4tdaddy/chastityOS-sub012/internal/config"
	"github.com/thef4tdaddy/chastityOS-sub012/internal/logger"
)

type server struct {
	httpServer *httpServer
	logger     *logger.Logger
}

// NewServer wraps handler in a managed HTTP server bound to the host:port
// part of cfg.HTTPAddress. The same config section the adapter dials with
// also names the dev remote's listen address, so client and server read one
// setting.
func NewServer(handler http.Handler, cfg config.Remote, log *logger.Logger) (Server, error) {
	log.Info().Msg("creating new server...")

	address := listenAddress(cfg.HTTPAddress)
	if address == "" {
		return nil, errNoListenAddress
	}

	return &server{
		httpServer: newHTTPServer(handler, address, log),
		logger:     log,
	}, nil
}

// RunServer launches the HTTP server and blocks until a stop signal
// (SIGTERM, SIGINT, SIGQUIT) arrives, then shuts it down gracefully.
func (s *server) RunServer() {
	idleConnectionsClosed := make(chan struct{})
	ctx, stop := signal.NotifyContext(
		context.Background(),
		syscall.SIGTERM,
		syscall.SIGINT,
		syscall.SIGQUIT,
	)
	defer stop()

	// listen for stop signals
	go func() {
		<-ctx.Done()

		s.Shutdown()

		close(idleConnectionsClosed)
	}()

	s.logger.Info().Str("address", s.httpServer.server.Addr).Msg("Launching HTTP server")
	go s.httpServer.RunServer()

	<-idleConnectionsClosed
	s.logger.Info().Msg("server Shutdown gracefully")
}

func (s *server) Shutdown() {
	s.httpServer.Shutdown()
}

// listenAddress extracts the host:port to bind from a configured address
// that may carry a scheme, as the client-facing setting does.
func listenAddress(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}

	if strings.Contains(raw, "://") {
		if u, err := url.Parse(raw); err == nil && u.Host != "" {
			return u.Host
		}
	}

	return raw
}

package utils

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
)

const (
	defaultReadTimeout     = 60 * time.Second
	defaultWriteTimeout    = defaultReadTimeout
	defaultShutdownTimeout = 30 * time.Second
)

// Server wraps http.Server with signal-driven graceful shutdown.
type Server struct {
	*http.Server

	signalChan chan os.Signal
	onShutdown []func(context.Context) error
}

// NewServer creates a Server with timeouts and handler. Hooks run after HTTP shutdown, in order.
func NewServer(addr string, handler http.Handler, hooks ...func(context.Context) error) *Server {
	return &Server{
		Server: &http.Server{
			Addr:              addr,
			Handler:           handler,
			ReadTimeout:       defaultReadTimeout,
			ReadHeaderTimeout: 10 * time.Second,
			WriteTimeout:      defaultWriteTimeout,
		},
		signalChan: make(chan os.Signal, 1),
		onShutdown: hooks,
	}
}

// Serve accepts connections on ln until SIGINT/SIGTERM or ctx cancellation, then drains in-flight requests.
func (srv *Server) Serve(ctx context.Context, ln net.Listener) error {
	signal.Notify(srv.signalChan, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(srv.signalChan)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Server.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case sig := <-srv.signalChan:
		Sugar.Infof("received %s, graceful shutting down HTTP server", sig)
	case <-ctx.Done():
		Sugar.Info("context cancelled, graceful shutting down HTTP server")
	}

	return srv.shutdown()
}

func (srv *Server) shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), defaultShutdownTimeout)
	defer cancel()

	err := srv.Shutdown(ctx)
	if err != nil {
		Sugar.Errorf("HTTP server shutdown error: %v", err)
	} else {
		Sugar.Info("HTTP server shutdown success")
	}
	for _, hook := range srv.onShutdown {
		if hookErr := hook(ctx); hookErr != nil {
			Sugar.Warnf("shutdown hook failed: %v", hookErr)
		}
	}
	return err
}

// GraceServer listens on addr and serves handler until a termination signal arrives.
func GraceServer(addr string, handler http.Handler, hooks ...func(context.Context) error) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	return NewServer(addr, handler, hooks...).Serve(context.Background(), ln)
}

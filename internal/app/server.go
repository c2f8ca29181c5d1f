package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/samvad-hq/samvad-wiki-quiz/internal/api"
	"github.com/samvad-hq/samvad-wiki-quiz/internal/config"
	"github.com/samvad-hq/samvad-wiki-quiz/internal/logger"
)

// Server is the HTTP runtime of the quiz service.
type Server struct {
	cfg        *config.Config
	rt         *Runtime
	httpServer *http.Server
	log        logger.Logger
}

// NewServer builds the runtime and the HTTP server around it.
func NewServer(ctx context.Context, cfg *config.Config, log logger.Logger) (*Server, error) {
	rt, err := NewRuntime(ctx, cfg, log)
	if err != nil {
		return nil, err
	}
	log = logger.Ensure(log)

	handlers := api.NewHandlers(rt.Service(), rt.Store(), log)
	router := api.NewRouter(handlers, api.RouterOptions{
		AllowedOrigins: cfg.AllowedOrigins(),
		Logger:         log,
	})

	return &Server{
		cfg: cfg,
		rt:  rt,
		httpServer: &http.Server{
			Addr:              cfg.HTTPAddr,
			Handler:           router,
			ReadHeaderTimeout: 5 * time.Second,
			// generation may use the whole request budget before writing
			WriteTimeout: cfg.RequestTimeout + 5*time.Second,
			IdleTimeout:  60 * time.Second,
		},
		log: log,
	}, nil
}

// Run serves until ctx is cancelled, then drains in-flight requests within the shutdown timeout.
func (s *Server) Run(ctx context.Context) error {
	if s == nil || s.httpServer == nil {
		return fmt.Errorf("server is not initialized")
	}
	defer s.close()

	errCh := make(chan error, 1)
	go func() {
		s.log.InfoObj("http server listening", "server_state", map[string]any{
			"addr":                  s.cfg.HTTPAddr,
			"request_timeout_ms":    s.cfg.RequestTimeout.Milliseconds(),
			"storage_type":          s.cfg.StorageType,
			"publishers_configured": s.rt.fanout.Size(),
		})
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok && err != nil {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	case <-ctx.Done():
		s.log.InfoObj("http server shutting down", "reason", ctx.Err().Error())
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
	defer cancel()
	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http server shutdown: %w", err)
	}
	return nil
}

func (s *Server) close() {
	if err := s.rt.Close(); err != nil {
		s.log.ErrorObj("runtime close failed", "error", err.Error())
	}
}

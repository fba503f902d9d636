package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/gin-gonic/gin"

	hubinadapter "lectern/internal/modules/hub/adapter/in"
	huboutadapter "lectern/internal/modules/hub/adapter/out"
	hubservice "lectern/internal/modules/hub/service"
	hubusecase "lectern/internal/modules/hub/usecase"
	"lectern/internal/platform/clock"
	"lectern/internal/platform/config"
	"lectern/internal/platform/logger"
)

const shutdownTimeout = 5 * time.Second

// HubServer is the remote authority clients sync against.
type HubServer struct {
	Handler http.Handler
	store   *huboutadapter.GormStore
	addr    string
	log     *logger.Logger
}

func NewHubServer(cfg config.Config, log *logger.Logger) (*HubServer, error) {
	if log == nil {
		log = logger.Discard()
	}
	if err := os.MkdirAll(filepath.Dir(cfg.Hub.DBPath), 0o755); err != nil {
		return nil, fmt.Errorf("create hub db dir: %w", err)
	}
	store, err := huboutadapter.OpenGormStore(cfg.Hub.DBPath)
	if err != nil {
		return nil, err
	}
	if os.Getenv(gin.EnvGinMode) == "" {
		gin.SetMode(gin.ReleaseMode)
	}
	if cfg.Hub.Token == "" {
		log.Warn("hub: no token configured, API is open")
	}
	authority := hubservice.NewAuthority(clock.SystemClock{}, store, log)
	handler := hubinadapter.NewHTTPHandler(hubusecase.NewInteractor(authority), hubinadapter.Options{
		Token:  cfg.Hub.Token,
		User:   cfg.Hub.User,
		Logger: log,
	})
	return &HubServer{Handler: handler.Router(), store: store, addr: cfg.Hub.Addr, log: log}, nil
}

// Serve listens until ctx ends, then shuts down gracefully.
func (s *HubServer) Serve(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.addr,
		Handler:           s.Handler,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		s.log.Info("hub: listening", "addr", s.addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	s.log.Info("hub: shutting down")
	return srv.Shutdown(shutdownCtx)
}

func (s *HubServer) Close() error {
	return s.store.Close()
}

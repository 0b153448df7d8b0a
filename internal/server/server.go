package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/sirupsen/logrus"

	"restaurant/internal/config"
	"restaurant/internal/metrics"
	"restaurant/internal/middleware"
	"restaurant/internal/repository"
)

const shutdownTimeout = 10 * time.Second

func New(cfg config.Config, log *logrus.Logger, m *metrics.Metrics, userRepo repository.UserRepository, h Handlers) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(echomw.Recover())
	e.Use(middleware.RequestLogger(log, m))

	RegisterRoutes(e, cfg, userRepo, m, h)
	return e
}

// ctxがキャンセルされるまでサーブし、その後graceful shutdownする
func Start(ctx context.Context, e *echo.Echo, addr string, log *logrus.Logger) error {
	errCh := make(chan error, 1)
	go func() {
		log.WithField("addr", addr).Info("server started")
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return e.Shutdown(shutdownCtx)
}

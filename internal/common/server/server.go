package server

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/talkroom-app/backend/internal/common/constants"
	"github.com/talkroom-app/backend/internal/common/logger"
)

// ShutdownHook runs during graceful shutdown, before in-flight requests
// are drained. Hooks run in registration order.
type ShutdownHook func(ctx context.Context) error

// Run serves until SIGINT or SIGTERM, then drains connections, runs the
// hooks and shuts the server down within the configured timeout.
func Run(srv *http.Server, log *logger.Logger, serviceName string, hooks ...ShutdownHook) {
	errCh := make(chan error, 1)
	go func() {
		log.Infof("%s listening on %s", serviceName, srv.Addr)
		errCh <- srv.ListenAndServe()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("%s failed to serve: %v", serviceName, err)
		}
		return
	case sig := <-quit:
		log.Infof("%s received %v, shutting down", serviceName, sig)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), constants.ShutdownTimeout)
	defer cancel()

	srv.SetKeepAlivesEnabled(false)

	hookCtx, hookCancel := context.WithTimeout(shutdownCtx, constants.DrainTimeout)
	defer hookCancel()
	for i, hook := range hooks {
		if err := hook(hookCtx); err != nil {
			log.Errorf("%s shutdown hook %d failed: %v", serviceName, i, err)
		}
	}

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Errorf("%s forced shutdown: %v", serviceName, err)
		return
	}
	log.Infof("%s stopped gracefully", serviceName)
}

package rest

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"
)

// Start - starts the match-directory HTTP server and shuts it down when ctx
// is canceled.
func Start(ctx context.Context, port string, handlers *Handlers) error {
	srv := &http.Server{
		Addr:         ":" + port,
		Handler:      handlers.Routes(),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  30 * time.Second,
	}

	go func() {
		<-ctx.Done()
		_ = srv.Shutdown(context.Background())
	}()

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("failed to start server: %w", err)
	}

	return nil
}

package rest

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

const shutdownTimeout = 5 * time.Second

// NewRouter - wires the HTTP API. Extra routes (the websocket endpoint) are mounted by the caller.
func NewRouter(ping PingHandler, games GameHandler) chi.Router {
	router := chi.NewRouter()
	router.Use(middleware.Recoverer)

	router.Get("/ping", ping.PingHandler)

	router.Post("/games", games.CreateGame)
	router.Route("/games/{id}", func(r chi.Router) {
		r.Get("/", games.GetGame)
		r.Delete("/", games.DeleteGame)
		r.Post("/turn", games.MakeTurn)
		r.Post("/undo", games.Undo)
		r.Post("/redo", games.Redo)
		r.Post("/restart", games.Restart)
	})

	router.Get("/stats/{mode}", games.Stats)

	return router
}

// Start - serves handler until ctx is canceled.
func Start(ctx context.Context, port string, handler http.Handler) error {
	srv := &http.Server{
		Addr:        ":" + port,
		Handler:     handler,
		ReadTimeout: 10 * time.Second,
		IdleTimeout: 30 * time.Second,
	}

	go func() {
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		_ = srv.Shutdown(shutdownCtx)
	}()

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("failed to start server: %w", err)
	}

	return nil
}

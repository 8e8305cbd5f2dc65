package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/spf13/cobra"

	"github.com/loopspot/loopspot/api"
	"github.com/loopspot/loopspot/internal/domain"
	"github.com/loopspot/loopspot/internal/handler"
	"github.com/loopspot/loopspot/internal/middleware"
)

const shutdownGrace = 15 * time.Second

func newServeCmd(configPath func() string) *cobra.Command {
	var here string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the loop API on this device",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			fix, err := parseCoordinate(here)
			if err != nil {
				return err
			}

			a, err := loadApp(cmd.Context(), configPath(), os.Stdout)
			if err != nil {
				return err
			}
			defer a.Close()

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return a.serve(ctx, fix)
		},
	}
	cmd.Flags().StringVar(&here, "here", "", `device position as "lat,lon" for the initial map region`)
	return cmd
}

// newRouter wraps the API routes in the cross-cutting middleware.
// Order: RequestID → echo id → RealIP → Logger → Recoverer → CORS → body limit.
func (a *app) newRouter(here *domain.Coordinate) http.Handler {
	srv := handler.NewServer(a.loops, a.sessions, a.export, a.mapCenter(here),
		handler.WithProfile(handler.Profile{DisplayName: a.cfg.DisplayName, Email: a.cfg.Email}),
		handler.WithOpenAPI(api.OpenAPI),
		handler.WithLogger(a.log),
	)

	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(middleware.NewRequestIDHeader)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.NewSlogLogger(a.log))
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.NewCORSHandler(a.cfg.CORSOrigins, a.log))
	r.Use(middleware.NewMaxBodySizeHandler(a.cfg.MaxBodyBytes))
	r.Mount("/", handler.Handler(srv))
	return r
}

// serve runs the HTTP server until ctx is cancelled, then gives in-flight
// requests shutdownGrace to finish.
func (a *app) serve(ctx context.Context, here *domain.Coordinate) error {
	srv := &http.Server{
		Addr:         a.cfg.Addr(),
		Handler:      a.newRouter(here),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		a.log.Info("server starting", "addr", srv.Addr, "store", a.cfg.StoreDriver)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("cli: serve: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	a.log.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("cli: shutdown: %w", err)
	}
	a.log.Info("server stopped")
	return nil
}

// parseCoordinate reads "lat,lon". An empty string means no position.
func parseCoordinate(s string) (*domain.Coordinate, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}
	lat, lon, ok := strings.Cut(s, ",")
	if !ok {
		return nil, fmt.Errorf("--here %q: want lat,lon", s)
	}
	var c domain.Coordinate
	var err error
	if c.Latitude, err = strconv.ParseFloat(strings.TrimSpace(lat), 64); err != nil {
		return nil, fmt.Errorf("--here latitude: %w", err)
	}
	if c.Longitude, err = strconv.ParseFloat(strings.TrimSpace(lon), 64); err != nil {
		return nil, fmt.Errorf("--here longitude: %w", err)
	}
	if !c.Valid() {
		return nil, fmt.Errorf("--here %q: out of range", s)
	}
	return &c, nil
}

package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"

	"github.com/loopspot/loopspot/internal/config"
	"github.com/loopspot/loopspot/internal/domain"
	"github.com/loopspot/loopspot/internal/idgen"
	"github.com/loopspot/loopspot/internal/linkcodec"
	"github.com/loopspot/loopspot/internal/repo"
	"github.com/loopspot/loopspot/internal/service"
)

// app is the wired object graph shared by every command.
type app struct {
	cfg      config.Config
	log      *slog.Logger
	codec    *linkcodec.Codec
	loops    *service.LoopService
	sessions *service.SessionManager
	export   *service.ExportService
	closers  []func()
}

// newLogger returns a JSON slog logger at the named level; unknown levels
// fall back to info.
func newLogger(level string, w io.Writer) *slog.Logger {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: lvl}))
}

// loadApp reads configuration and wires the services on top of the
// configured store. Callers must Close the result.
func loadApp(ctx context.Context, configPath string, logOut io.Writer) (*app, error) {
	cfg, err := config.LoadFile(configPath)
	if err != nil {
		return nil, err
	}
	return newApp(ctx, cfg, newLogger(cfg.LogLevel, logOut))
}

func newApp(ctx context.Context, cfg config.Config, log *slog.Logger) (*app, error) {
	a := &app{cfg: cfg, log: log}

	store, err := a.openStore(ctx)
	if err != nil {
		a.Close()
		return nil, err
	}

	opts := []linkcodec.Option{linkcodec.WithLocation(cfg.Location())}
	if cfg.LinkBaseURL != "" {
		opts = append(opts, linkcodec.WithBaseURL(cfg.LinkBaseURL))
	}
	a.codec = linkcodec.New(cfg.LinkScheme, opts...)

	a.loops = service.NewLoopService(store, idgen.New(), a.codec, log)
	a.sessions = service.NewSessionManager(a.loops, idgen.NewSequence())
	a.export = service.NewExportService(a.loops)
	return a, nil
}

// openStore builds the LoopStore named by cfg.StoreDriver and registers
// whatever it needs closed.
func (a *app) openStore(ctx context.Context) (repo.LoopStore, error) {
	switch a.cfg.StoreDriver {
	case config.DriverMemory:
		return repo.NewMemoryStore(), nil

	case config.DriverFile:
		return repo.NewFileStore(a.cfg.StorePath), nil

	case config.DriverSQLite:
		db, err := repo.OpenSQLite(ctx, a.cfg.SQLitePath())
		if err != nil {
			return nil, fmt.Errorf("cli: open sqlite store: %w", err)
		}
		a.closers = append(a.closers, func() { db.Close() })
		return repo.NewSQLiteStore(db), nil

	case config.DriverPostgres:
		// New() does not open connections immediately; Ping does.
		pool, err := pgxpool.New(ctx, a.cfg.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("cli: create database pool: %w", err)
		}
		a.closers = append(a.closers, pool.Close)
		if err := pool.Ping(ctx); err != nil {
			return nil, fmt.Errorf("cli: connect to database: %w", err)
		}

		// goose needs database/sql; borrow a handle on the same pool.
		sqlDB := stdlib.OpenDBFromPool(pool)
		defer sqlDB.Close()
		if err := repo.Migrate(ctx, sqlDB); err != nil {
			return nil, fmt.Errorf("cli: %w", err)
		}
		a.log.Info("database connection established")
		return repo.NewPostgresStore(pool), nil
	}
	return nil, fmt.Errorf("cli: unknown store driver %q", a.cfg.StoreDriver)
}

// Close releases the store in reverse order of opening.
func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}

// mapCenter builds the region finder for GET /map/center. here, when set,
// stands in for the device position.
func (a *app) mapCenter(here *domain.Coordinate) *service.MapCenter {
	var locator service.Locator
	if here != nil {
		fix := *here
		locator = service.LocatorFunc(func(context.Context) (domain.Coordinate, error) { return fix, nil })
	}
	fallback := domain.Coordinate{Latitude: a.cfg.DefaultLatitude, Longitude: a.cfg.DefaultLongitude}
	return service.NewMapCenter(locator, fallback, a.log)
}

// Package handler implements the HTTP handlers for the loopd API.
// All handlers are methods on Server. Methods are split into domain-specific
// files (health.go, loop.go, session.go, etc.) but all share the same Server
// struct so they can access its dependencies.
package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/loopspot/loopspot/internal/domain"
	"github.com/loopspot/loopspot/internal/service"
)

// LoopServicer defines the business operations the loop handlers depend on.
// Defining the interface here (in the consumer package) follows the Go
// convention: "accept interfaces, return concrete types". It lets handler
// tests inject a mock without touching the store or service layer.
type LoopServicer interface {
	Create(ctx context.Context, in service.CreateLoopInput) (domain.Loop, error)
	Get(ctx context.Context, id string) (domain.Loop, error)
	Resolve(ctx context.Context, id string, payload *domain.SharePayload) (domain.Loop, error)
	List(ctx context.Context, p domain.PaginationParams) ([]domain.Loop, int64, error)
	Discard(ctx context.Context, id string) error
	OpenLink(ctx context.Context, raw string) (domain.Loop, error)
	Share(ctx context.Context, id string) (service.ShareLink, error)
	ShareLinkFor(l domain.Loop) service.ShareLink
}

// SessionOpener hands out per-loop editor sessions.
type SessionOpener interface {
	Open(ctx context.Context, loopID string) (*service.Session, error)
	Forget(loopID string)
}

// ExportServicer defines the export operation the export handler depends on.
type ExportServicer interface {
	Export(ctx context.Context) ([]domain.ExportRow, error)
}

// RegionFinder picks the initial map region.
type RegionFinder interface {
	Region(ctx context.Context) service.Region
}

// Profile describes the signed-in user as reported by the auth provider.
type Profile struct {
	DisplayName string
	Email       string
}

// Server serves every API endpoint.
// Methods are in domain-specific files but all operate on this struct.
type Server struct {
	loops    LoopServicer
	sessions SessionOpener
	export   ExportServicer
	region   RegionFinder
	profile  Profile
	openAPI  []byte
	log      *slog.Logger
}

// Option configures optional Server dependencies.
type Option func(*Server)

// WithProfile sets the user shown by GET /profile.
func WithProfile(p Profile) Option {
	return func(s *Server) { s.profile = p }
}

// WithOpenAPI sets the document served at GET /openapi.yaml.
func WithOpenAPI(doc []byte) Option {
	return func(s *Server) { s.openAPI = doc }
}

// WithLogger sets the logger used for server-side failures.
func WithLogger(l *slog.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.log = l
		}
	}
}

// NewServer constructs the Server with all its dependencies. Any of them may
// be nil when a test exercises only part of the API.
func NewServer(loops LoopServicer, sessions SessionOpener, export ExportServicer, region RegionFinder, opts ...Option) *Server {
	s := &Server{loops: loops, sessions: sessions, export: export, region: region, log: slog.Default()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// NewHealthHandler returns a Server for health-check-only use.
func NewHealthHandler() *Server {
	return NewServer(nil, nil, nil, nil)
}

// Handler registers every route of s on a fresh chi router. Callers add
// cross-cutting middleware (request id, logging, CORS) around it.
func Handler(s *Server) http.Handler {
	r := chi.NewRouter()

	r.Get("/healthz", s.GetHealth)
	r.Get("/openapi.yaml", s.GetOpenAPI)
	r.Get("/profile", s.GetProfile)
	r.Get("/map/center", s.GetMapCenter)
	r.Get("/export", s.GetExport)

	r.Route("/loops", func(r chi.Router) {
		r.Get("/", s.ListLoops)
		r.Post("/", s.CreateLoop)
		r.Route("/{loopId}", func(r chi.Router) {
			r.Get("/", s.GetLoop)
			r.Delete("/", s.DeleteLoop)
			r.Get("/share", s.ShareLoop)

			r.Get("/session", s.GetSession)
			r.Post("/session/adding", s.StartAdding)
			r.Post("/session/point", s.ChoosePoint)
			r.Post("/session/confirm", s.ConfirmPlacement)
			r.Post("/session/select", s.SelectWaypoint)
			r.Post("/session/save", s.SaveEdit)
			r.Post("/session/cancel", s.CancelSession)
			r.Post("/session/clear", s.ClearWaypoints)
			r.Post("/session/sync", s.SyncSession)
		})
	})

	r.Post("/links/open", s.OpenLink)
	r.Get("/loop/{loopId}", s.DeepLink)

	return r
}

// Package middleware provides reusable HTTP middleware for the loopd API.
package middleware

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/rs/cors"
)

// NewCORSHandler returns a middleware that applies CORS headers for the
// configured origins. Entries are full origins ("http://localhost:8081");
// rs/cors also accepts "*" and one wildcard per entry ("https://*.example.com").
// An empty list denies every cross-origin request.
//
// rs/cors debug output is routed to log at debug level.
func NewCORSHandler(allowedOrigins []string, log *slog.Logger) func(http.Handler) http.Handler {
	opts := cors.Options{
		AllowedOrigins: normaliseOrigins(allowedOrigins),
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type"},
		ExposedHeaders: []string{"X-Request-Id"},
	}
	// rs/cors treats an empty list as "*".
	if len(opts.AllowedOrigins) == 0 {
		opts.AllowOriginFunc = func(string) bool { return false }
	}
	if log != nil && log.Enabled(context.Background(), slog.LevelDebug) {
		opts.Debug = true
		opts.Logger = corsLogger{log: log}
	}

	c := cors.New(opts)
	return func(next http.Handler) http.Handler {
		return c.Handler(next)
	}
}

// normaliseOrigins trims blanks and trailing slashes; browsers never send either.
func normaliseOrigins(in []string) []string {
	out := make([]string, 0, len(in))
	for _, o := range in {
		o = strings.TrimRight(strings.TrimSpace(o), "/")
		if o != "" {
			out = append(out, o)
		}
	}
	return out
}

type corsLogger struct{ log *slog.Logger }

func (l corsLogger) Printf(format string, v ...any) {
	l.log.Debug(strings.TrimSpace(fmt.Sprintf(format, v...)), "component", "cors")
}

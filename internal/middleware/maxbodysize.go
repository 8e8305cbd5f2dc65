package middleware

import (
	"net/http"
	"strconv"
)

// NewMaxBodySizeHandler caps request bodies at limit bytes. A declared
// Content-Length over the limit is answered with 413 straight away; bodies of
// unknown length are wrapped in http.MaxBytesReader so the handler's decode
// fails once the limit is crossed.
// The 413 body matches the error envelope written by the handler package.
func NewMaxBodySizeHandler(limit int64) func(http.Handler) http.Handler {
	body := []byte(`{"error":{"code":"body_too_large","message":"request body exceeds ` + strconv.FormatInt(limit, 10) + ` bytes"}}` + "\n")

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.ContentLength > limit {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusRequestEntityTooLarge)
				//nolint:errcheck
				w.Write(body)
				return
			}
			if r.Body != nil {
				r.Body = http.MaxBytesReader(w, r.Body, limit)
			}
			next.ServeHTTP(w, r)
		})
	}
}

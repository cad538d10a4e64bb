package server

import (
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// NewRouter mounts every route of each [Handler] on a chi router.
//
// Middleware is applied in the order given, inside recovery and request id assignment.
func NewRouter(handlers []Handler, middlewares ...Middleware) chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer, middleware.RequestID)
	for _, m := range middlewares {
		r.Use(m)
	}

	for _, h := range handlers {
		for _, route := range h.Routes() {
			r.Handle(route, h)
		}
	}

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "Not found", http.StatusNotFound)
	})

	return r
}

// RequestLogger logs method, path, status and duration of each request at debug level.
//
// Query strings and bodies are never logged.
func RequestLogger(logger *log.Logger) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()

			next.ServeHTTP(ww, r)

			logger.Debug("callback request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"duration", time.Since(start),
				"request", middleware.GetReqID(r.Context()),
			)
		})
	}
}

package http

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	chimid "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/softdeskhq/softdesk/internal/infrastructure/http/handlers"
	"github.com/softdeskhq/softdesk/internal/infrastructure/http/middleware"
)

type RouterConfig struct {
	AuthHandler     *handlers.AuthHandler
	HealthHandler   *handlers.HealthHandler
	UsersHandler    *handlers.UsersHandler
	ProjectsHandler *handlers.ProjectsHandler
	IssuesHandler   *handlers.IssuesHandler
	CommentsHandler *handlers.CommentsHandler
	RequireJWT      func(http.Handler) http.Handler // authenticated routes
	OptionalJWT     func(http.Handler) http.Handler // signup: the policy rules on authentication itself
	Log             zerolog.Logger
	Secure          func(http.Handler) http.Handler
	Metrics         bool // expose /metrics
}

func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()
	r.Use(chimid.RequestID)
	r.Use(chimid.RealIP)
	r.Use(loggerMiddleware(cfg.Log))
	r.Use(chimid.Recoverer)
	if cfg.Metrics {
		r.Use(middleware.PrometheusMiddleware)
	}
	if cfg.Secure != nil {
		r.Use(cfg.Secure)
	}
	r.Use(chimid.AllowContentType("application/json"))

	if cfg.HealthHandler != nil {
		r.Get("/health", cfg.HealthHandler.ServeHTTP)
	} else {
		r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte(`{"status":"ok"}`))
		})
	}
	if cfg.Metrics {
		r.Handle("/metrics", promhttp.Handler())
	}

	r.Route("/api", func(r chi.Router) {
		r.Post("/token/", cfg.AuthHandler.Token)
		r.Post("/token/refresh/", cfg.AuthHandler.Refresh)

		r.Route("/user", func(r chi.Router) {
			// OPTIONS is a metadata probe, open to everyone.
			r.Options("/", allowMethods("GET", "POST", "OPTIONS"))
			r.Options("/{userID}", allowMethods("GET", "PUT", "PATCH", "DELETE", "OPTIONS"))
			r.With(cfg.OptionalJWT).Post("/", cfg.UsersHandler.Create)
			r.Group(func(r chi.Router) {
				r.Use(cfg.RequireJWT)
				r.Get("/", cfg.UsersHandler.List)
				r.Get("/{userID}", cfg.UsersHandler.Retrieve)
				r.Put("/{userID}", cfg.UsersHandler.Update)
				r.Patch("/{userID}", cfg.UsersHandler.PartialUpdate)
				r.Delete("/{userID}", cfg.UsersHandler.Destroy)
			})
		})

		r.Route("/project", func(r chi.Router) {
			r.Options("/", allowMethods("GET", "POST", "OPTIONS"))
			r.Options("/{projectID}", allowMethods("GET", "PUT", "PATCH", "DELETE", "OPTIONS"))
			r.Group(func(r chi.Router) {
				r.Use(cfg.RequireJWT)
				r.Get("/", cfg.ProjectsHandler.List)
				r.Post("/", cfg.ProjectsHandler.Create)
				r.Route("/{projectID}", func(r chi.Router) {
					r.Get("/", cfg.ProjectsHandler.Retrieve)
					r.Put("/", cfg.ProjectsHandler.Update)
					r.Patch("/", cfg.ProjectsHandler.PartialUpdate)
					r.Delete("/", cfg.ProjectsHandler.Destroy)
					r.Post("/add_contributor", cfg.ProjectsHandler.AddContributor)
					r.Post("/remove_contributor", cfg.ProjectsHandler.RemoveContributor)

					r.Route("/issue", func(r chi.Router) {
						r.Get("/", cfg.IssuesHandler.List)
						r.Post("/", cfg.IssuesHandler.Create)
						r.Route("/{issueID}", func(r chi.Router) {
							r.Get("/", cfg.IssuesHandler.Retrieve)
							r.Put("/", cfg.IssuesHandler.Update)
							r.Patch("/", cfg.IssuesHandler.PartialUpdate)
							r.Delete("/", cfg.IssuesHandler.Destroy)

							r.Route("/comment", func(r chi.Router) {
								r.Get("/", cfg.CommentsHandler.List)
								r.Post("/", cfg.CommentsHandler.Create)
								r.Route("/{commentID}", func(r chi.Router) {
									r.Get("/", cfg.CommentsHandler.Retrieve)
									r.Put("/", cfg.CommentsHandler.Update)
									r.Patch("/", cfg.CommentsHandler.PartialUpdate)
									r.Delete("/", cfg.CommentsHandler.Destroy)
								})
							})
						})
					})
				})
			})
		})
	})

	return r
}

// allowMethods answers an OPTIONS probe with the route's method set.
func allowMethods(methods ...string) http.HandlerFunc {
	allow := strings.Join(methods, ", ")
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Allow", allow)
		w.WriteHeader(http.StatusOK)
	}
}

func loggerMiddleware(log zerolog.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			reqID := chimid.GetReqID(r.Context())
			log.Info().
				Str("request_id", reqID).
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Msg("request")
			next.ServeHTTP(w, r)
		})
	}
}

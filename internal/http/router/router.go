// Package router assembles the HTTP surface: middleware stack, health
// probes, auth endpoints and the protected catalog routes.
package router

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/poofware/cinema-api/internal/domain"
	"github.com/poofware/cinema-api/internal/health"
	"github.com/poofware/cinema-api/internal/http/handler"
	"github.com/poofware/cinema-api/internal/http/middleware"
	"github.com/poofware/cinema-api/internal/http/response"
	"github.com/poofware/cinema-api/internal/security"
	"github.com/poofware/cinema-api/internal/service"
)

type Dependencies struct {
	AuthHandler       *handler.AuthHandler
	DirectorHandler   *handler.DirectorHandler
	MovieHandler      *handler.MovieHandler
	UserHandler       *handler.UserHandler
	JWTManager        *security.JWTManager
	Blacklist         service.TokenBlacklist
	CORSOrigins       []string
	APIRateLimitRPM   int
	AuthRateLimitRPM  int
	GlobalRateLimiter GlobalRateLimiterFunc
	AuthRateLimiter   AuthRateLimiterFunc
	Readiness         *health.ProbeRunner
	EnableOTelHTTP    bool
}

type GlobalRateLimiterFunc func(http.Handler) http.Handler
type AuthRateLimiterFunc func(http.Handler) http.Handler

func NewRouter(dep Dependencies) http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(middleware.StructuredRequestLogger)
	r.Use(middleware.SecurityHeaders)
	r.Use(middleware.CORS(dep.CORSOrigins))
	r.Use(middleware.BodyLimit(1 << 20))
	if dep.GlobalRateLimiter != nil {
		r.Use(dep.GlobalRateLimiter)
	} else {
		r.Use(middleware.NewRateLimiter(dep.APIRateLimitRPM, time.Minute).Middleware())
	}

	authLimiter := dep.AuthRateLimiter
	if authLimiter == nil {
		authLimiter = middleware.NewRateLimiter(dep.AuthRateLimitRPM, time.Minute).Middleware()
	}

	authGate := middleware.Auth(dep.JWTManager, dep.Blacklist)

	r.Get("/health/live", func(w http.ResponseWriter, r *http.Request) {
		response.JSON(w, r, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Get("/health/ready", func(w http.ResponseWriter, r *http.Request) {
		if dep.Readiness == nil {
			response.JSON(w, r, http.StatusOK, map[string]any{"status": "ready", "checks": []any{}})
			return
		}
		ready, results := dep.Readiness.Ready(r.Context())
		if ready {
			response.JSON(w, r, http.StatusOK, map[string]any{"status": "ready", "checks": results})
			return
		}
		response.Error(w, r, http.StatusServiceUnavailable, "DEPENDENCY_UNREADY", "dependencies are not ready", map[string]any{"checks": results})
	})

	r.Route("/api", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.With(authLimiter).Post("/login", dep.AuthHandler.Login)
			r.With(authLimiter).Post("/register", dep.AuthHandler.Register)
			r.With(authGate, authLimiter).Post("/logout", dep.AuthHandler.Logout)
		})

		r.Route("/directors", func(r chi.Router) {
			r.Use(authGate)
			r.Get("/", dep.DirectorHandler.List)
			r.Post("/", dep.DirectorHandler.Create)
			r.Get("/{id}", dep.DirectorHandler.Get)
			r.Put("/{id}", dep.DirectorHandler.Update)
			r.Delete("/{id}", dep.DirectorHandler.Delete)
		})

		r.Route("/movies", func(r chi.Router) {
			r.Use(authGate)
			r.Get("/", dep.MovieHandler.List)
			r.Post("/", dep.MovieHandler.Create)
			r.Get("/{id}", dep.MovieHandler.Get)
			r.Put("/{id}", dep.MovieHandler.Update)
			r.Delete("/{id}", dep.MovieHandler.Delete)
		})

		r.Route("/users", func(r chi.Router) {
			r.Use(authGate)
			r.Use(middleware.RequireRole(domain.RoleAdmin))
			r.Get("/", dep.UserHandler.List)
			r.Post("/", dep.UserHandler.Create)
			r.Get("/{id}", dep.UserHandler.Get)
			r.Put("/{id}", dep.UserHandler.Update)
			r.Delete("/{id}", dep.UserHandler.Delete)
		})
	})

	var h http.Handler = r
	if dep.EnableOTelHTTP {
		h = otelhttp.NewHandler(r, "http.server")
	}
	return h
}

package http

import (
	"log/slog"
	"net/http"
	"os"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httplog/v3"
	"github.com/go-chi/jwtauth/v5"
	"github.com/smc-analytics/attendance-dashboard/internal/handler/http/middleware"
	"github.com/smc-analytics/attendance-dashboard/internal/handler/http/response"
	"github.com/smc-analytics/attendance-dashboard/internal/pkg/jwt"
)

// RouterConfig carries the request-logging and access settings.
type RouterConfig struct {
	AppName          string
	Version          string
	Env              string
	LogLevel         slog.Level
	AllowedOrigins   []string
	AllowedPositions []string
}

// NewRouter wires the HTTP surface. A nil JWTService leaves /api/v1 open.
func NewRouter(cfg RouterConfig, JWTService jwt.Service, attendanceHandler AttendanceHandler, eventsHandler EventsHandler) *chi.Mux {
	r := chi.NewRouter()
	logFormat := httplog.SchemaECS.Concise(cfg.Env != "production")
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level:       cfg.LogLevel,
		ReplaceAttr: logFormat.ReplaceAttr,
	})).With(
		slog.String("app", cfg.AppName),
		slog.String("version", cfg.Version),
		slog.String("env", cfg.Env),
	)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowCredentials: true,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Content-Disposition"},
		MaxAge:           300,
	}))

	r.Use(httplog.RequestLogger(logger, &httplog.Options{
		Level:  slog.LevelDebug,
		Schema: httplog.SchemaECS,
	}))

	r.Use(chiMiddleware.CleanPath)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Heartbeat("/"))

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		response.NotFound(w, "Route not found")
	})

	// Unauthenticated passthrough of the upstream tables
	r.Get("/api/sheets/data", attendanceHandler.RawData)

	r.Route("/api/v1", func(r chi.Router) {
		if JWTService != nil {
			// EventSource cannot set headers, so ?jwt= is accepted too
			r.Use(jwtauth.Verify(JWTService.JWTAuth(), jwtauth.TokenFromHeader, jwtauth.TokenFromQuery))
			r.Use(middleware.AuthRequired(JWTService.JWTAuth()))
			if len(cfg.AllowedPositions) > 0 {
				r.Use(middleware.RequirePosition(cfg.AllowedPositions))
			}
		}

		r.Route("/snapshot", func(r chi.Router) {
			r.Get("/", attendanceHandler.Snapshot)
			r.Post("/refresh", attendanceHandler.Refresh)
		})

		r.Route("/attendance", func(r chi.Router) {
			r.Get("/records", attendanceHandler.Records)
			r.Get("/summary", attendanceHandler.Summary)
			r.Get("/today", attendanceHandler.Today)
			r.Get("/yesterday", attendanceHandler.Yesterday)
			r.Get("/export", attendanceHandler.Export)
		})

		r.Get("/dashboard", attendanceHandler.Dashboard)
		r.Get("/filters/options", attendanceHandler.Options)
		r.Get("/employees", attendanceHandler.Employees)
		r.Get("/shifts", attendanceHandler.Shifts)
		r.Get("/logs", attendanceHandler.Logs)
		r.Get("/events", eventsHandler.Stream)
	})
	return r
}

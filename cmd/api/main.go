package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/smc-analytics/attendance-dashboard/internal/app"
	"github.com/smc-analytics/attendance-dashboard/internal/config"
	appHTTP "github.com/smc-analytics/attendance-dashboard/internal/handler/http"
	"github.com/smc-analytics/attendance-dashboard/internal/pkg/cron"
	"github.com/smc-analytics/attendance-dashboard/internal/pkg/jwt"
	"github.com/smc-analytics/attendance-dashboard/internal/pkg/sse"
)

const (
	appName = "attendance-dashboard"
	version = "v1.0.0"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Println("Error loading config:", err)
		os.Exit(1)
	}

	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.SlogLevel(),
	})).With(slog.String("app", appName), slog.String("env", cfg.App.Env)))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	hub := sse.NewHub()
	attendanceService, err := app.NewAttendanceService(ctx, cfg, hub)
	if err != nil {
		slog.Error("Failed to initialize attendance service", "error", err)
		os.Exit(1)
	}

	var JWTService jwt.Service
	if cfg.JWT.Secret != "" {
		JWTService = jwt.NewJWTService(cfg.JWT.Secret, cfg.JWT.AccessExpiration)
	} else {
		slog.Warn("JWT_SECRET_KEY not set, API is unauthenticated")
	}

	scheduler := cron.NewScheduler()
	cron.NewSnapshotJobs(attendanceService, cfg.Attendance.RefreshInterval, cfg.DataSource.GASTimeout).
		RegisterJobs(scheduler)
	scheduler.Start()
	defer scheduler.Stop()

	attendanceHandler := appHTTP.NewAttendanceHandler(attendanceService, cfg.Attendance.ReportLocale)

	router := appHTTP.NewRouter(appHTTP.RouterConfig{
		AppName:          appName,
		Version:          version,
		Env:              cfg.App.Env,
		LogLevel:         cfg.SlogLevel(),
		AllowedOrigins:   cfg.App.AllowedOrigins,
		AllowedPositions: cfg.JWT.AllowedPositions,
	}, JWTService, attendanceHandler, appHTTP.NewEventsHandler(hub))

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.App.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		// Cancelling on shutdown ends open event streams
		BaseContext: func(net.Listener) context.Context { return ctx },
	}

	go func() {
		slog.Info("Server running", "addr", "http://localhost"+server.Addr, "data_source", cfg.DataSource.Type)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Server error", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	slog.Info("Shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("Server shutdown failed", "error", err)
	}
}

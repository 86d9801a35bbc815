package main

import (
	"context"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/smc-analytics/attendance-dashboard/internal/app"
	"github.com/smc-analytics/attendance-dashboard/internal/config"
	"github.com/smc-analytics/attendance-dashboard/internal/domain/attendance"
)

func main() {
	// Missing .env is fine; the process environment still applies.
	_ = godotenv.Load()

	a := &App{
		out: os.Stdout,
		loadService: func(ctx context.Context) (attendance.AttendanceService, error) {
			cfg, err := config.FromEnv()
			if err != nil {
				return nil, err
			}
			return app.NewAttendanceService(ctx, cfg, nil)
		},
		jwtSecret:  os.Getenv("JWT_SECRET_KEY"),
		reportLang: os.Getenv("REPORT_LOCALE"),
	}

	if err := SetupCommands(a).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/smc-analytics/attendance-dashboard/internal/domain/attendance"
)

const (
	DataSourceGAS  = "gas"
	DataSourceXLSX = "xlsx"
)

type Config struct {
	App        AppConfig
	DataSource DataSourceConfig
	Attendance AttendanceConfig
	JWT        JWTConfig
}

// AppConfig holds application configuration
type AppConfig struct {
	Port           int
	Env            string
	LogLevel       string
	Timezone       string
	AllowedOrigins []string
}

// DataSourceConfig selects where snapshots are fetched from.
type DataSourceConfig struct {
	Type string

	GASURL                string
	GASTimeout            time.Duration
	GoogleCredentialsFile string

	XLSXPath           string
	XLSXLogsSheet      string
	XLSXEmployeesSheet string
	XLSXShiftsSheet    string
}

type AttendanceConfig struct {
	GraceField         attendance.GraceField
	ReferenceShiftCode string
	RefreshInterval    time.Duration
	ReportLocale       string
}

// JWTConfig holds JWT configuration. An empty secret disables the token gate.
type JWTConfig struct {
	Secret           string
	AccessExpiration time.Duration
	AllowedPositions []string
}

// Load reads the environment, optionally seeded from a .env file.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("failed to load .env file: %w", err)
		}
		slog.Debug("No .env file found, using process environment")
	}

	return FromEnv()
}

// FromEnv builds the configuration from the process environment only.
func FromEnv() (*Config, error) {
	config := &Config{}

	appPort, err := strconv.Atoi(getEnv("APP_PORT", "8080"))
	if err != nil {
		return nil, fmt.Errorf("invalid APP_PORT: %w", err)
	}

	config.App = AppConfig{
		Port:           appPort,
		Env:            getEnv("APP_ENV", "development"),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		Timezone:       getEnv("APP_TIMEZONE", "Asia/Bangkok"),
		AllowedOrigins: getEnvSlice("CORS_ALLOWED_ORIGINS", "http://localhost:3000"),
	}

	gasTimeout, err := time.ParseDuration(getEnv("GAS_TIMEOUT", "30s"))
	if err != nil {
		return nil, fmt.Errorf("invalid GAS_TIMEOUT: %w", err)
	}

	config.DataSource = DataSourceConfig{
		Type:                  strings.ToLower(getEnv("DATA_SOURCE", DataSourceGAS)),
		GASURL:                getEnv("GAS_URL", ""),
		GASTimeout:            gasTimeout,
		GoogleCredentialsFile: getEnv("GOOGLE_CREDENTIALS_FILE", ""),
		XLSXPath:              getEnv("XLSX_PATH", ""),
		XLSXLogsSheet:         getEnv("XLSX_LOGS_SHEET", "logs"),
		XLSXEmployeesSheet:    getEnv("XLSX_EMPLOYEES_SHEET", "employees"),
		XLSXShiftsSheet:       getEnv("XLSX_SHIFTS_SHEET", "shifts"),
	}

	refreshInterval, err := time.ParseDuration(getEnv("REFRESH_INTERVAL", "0s"))
	if err != nil {
		return nil, fmt.Errorf("invalid REFRESH_INTERVAL: %w", err)
	}

	config.Attendance = AttendanceConfig{
		GraceField:         attendance.GraceField(strings.ToLower(getEnv("GRACE_FIELD", string(attendance.GraceFieldGracePeriod)))),
		ReferenceShiftCode: getEnv("REFERENCE_SHIFT_CODE", ""),
		RefreshInterval:    refreshInterval,
		ReportLocale:       strings.ToLower(getEnv("REPORT_LOCALE", "en")),
	}

	accessExpiration, err := time.ParseDuration(getEnv("JWT_ACCESS_EXPIRATION_TIME", "12h"))
	if err != nil {
		return nil, fmt.Errorf("invalid JWT_ACCESS_EXPIRATION_TIME: %w", err)
	}

	config.JWT = JWTConfig{
		Secret:           getEnv("JWT_SECRET_KEY", ""),
		AccessExpiration: accessExpiration,
		AllowedPositions: getEnvSlice("ALLOWED_POSITIONS", "Operation Manager,General Manager"),
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}

// Validate reports the first missing or invalid value.
func (c *Config) Validate() error {
	switch c.DataSource.Type {
	case DataSourceGAS:
		if c.DataSource.GASURL == "" {
			return fmt.Errorf("GAS_URL is required when DATA_SOURCE=gas")
		}
	case DataSourceXLSX:
		if c.DataSource.XLSXPath == "" {
			return fmt.Errorf("XLSX_PATH is required when DATA_SOURCE=xlsx")
		}
	default:
		return fmt.Errorf("DATA_SOURCE must be %q or %q, got %q", DataSourceGAS, DataSourceXLSX, c.DataSource.Type)
	}

	switch c.Attendance.GraceField {
	case attendance.GraceFieldGracePeriod, attendance.GraceFieldLateThreshold:
	default:
		return fmt.Errorf("GRACE_FIELD must be %q or %q", attendance.GraceFieldGracePeriod, attendance.GraceFieldLateThreshold)
	}

	switch c.Attendance.ReportLocale {
	case "en", "th":
	default:
		return fmt.Errorf("REPORT_LOCALE must be en or th")
	}

	if c.Attendance.RefreshInterval < 0 {
		return fmt.Errorf("REFRESH_INTERVAL must not be negative")
	}
	if c.JWT.Secret != "" && len(c.JWT.AllowedPositions) == 0 {
		return fmt.Errorf("ALLOWED_POSITIONS is required when JWT_SECRET_KEY is set")
	}
	return nil
}

// Location resolves APP_TIMEZONE.
func (c *Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.App.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid APP_TIMEZONE %q: %w", c.App.Timezone, err)
	}
	return loc, nil
}

// SlogLevel maps LOG_LEVEL onto slog levels, defaulting to info.
func (c *Config) SlogLevel() slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.App.LogLevel)); err != nil {
		return slog.LevelInfo
	}
	return level
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvSlice(env, fallback string) []string {
	value := getEnv(env, fallback)
	if value == "" {
		return []string{}
	}
	var result []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			result = append(result, item)
		}
	}
	return result
}

package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata"
)

type Config struct {
	AppEnv   string
	LogLevel slog.Level
	HTTPAddr string

	// DataDir is the absolute path of the directory scanned for sensor files.
	// Set via DATA_DIR (relative paths are resolved against the process working directory at startup).
	DataDir          string
	DataExt          string
	Location         *time.Location
	SkipInvalidFiles bool

	// ArchivePath / ArchiveDSN enable the SQLite snapshot archive. Both empty means disabled.
	ArchivePath     string
	ArchiveDSN      string
	Driver          string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// Debug reports whether verbose error bodies are enabled.
func (c Config) Debug() bool {
	return c.AppEnv == "dev"
}

func (c Config) ArchiveEnabled() bool {
	return c.ArchivePath != "" || c.ArchiveDSN != ""
}

func LoadFromEnv() (Config, error) {
	appEnv := strings.TrimSpace(os.Getenv("APP_ENV"))
	if appEnv == "" {
		appEnv = "dev"
	}
	switch appEnv {
	case "dev", "prod":
	default:
		return Config{}, fmt.Errorf("invalid APP_ENV %q (allowed: dev, prod)", appEnv)
	}

	logLevelStr := strings.TrimSpace(os.Getenv("LOG_LEVEL"))
	if logLevelStr == "" {
		logLevelStr = "info"
	}
	level, err := parseLogLevel(logLevelStr)
	if err != nil {
		return Config{}, err
	}

	httpAddr := strings.TrimSpace(os.Getenv("HTTP_ADDR"))
	if httpAddr == "" {
		httpAddr = "127.0.0.1:8050"
	}

	dataDir := strings.TrimSpace(os.Getenv("DATA_DIR"))
	if dataDir == "" {
		dataDir = "data"
	}
	dataDir, err = filepath.Abs(dataDir)
	if err != nil {
		return Config{}, fmt.Errorf("DATA_DIR %q: %w", dataDir, err)
	}

	dataExt := strings.TrimSpace(os.Getenv("DATA_EXT"))
	if dataExt == "" {
		dataExt = ".csv"
	}
	if !strings.HasPrefix(dataExt, ".") {
		dataExt = "." + dataExt
	}

	tz := strings.TrimSpace(os.Getenv("DATA_TIMEZONE"))
	if tz == "" {
		tz = "UTC"
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return Config{}, fmt.Errorf("invalid DATA_TIMEZONE %q: %w", tz, err)
	}

	skipInvalid := false
	if s := strings.TrimSpace(os.Getenv("SKIP_INVALID_FILES")); s != "" {
		skipInvalid, err = strconv.ParseBool(s)
		if err != nil {
			return Config{}, fmt.Errorf("invalid SKIP_INVALID_FILES %q: %w", s, err)
		}
	}

	driver := strings.TrimSpace(os.Getenv("DB_DRIVER"))
	if driver == "" {
		driver = "sqlite3"
	}
	archiveDSN := strings.TrimSpace(os.Getenv("ARCHIVE_DSN"))
	archivePath := strings.TrimSpace(os.Getenv("ARCHIVE_PATH"))

	maxOpenConnsStr := strings.TrimSpace(os.Getenv("DB_MAX_OPEN_CONNS"))
	if maxOpenConnsStr == "" {
		maxOpenConnsStr = "1"
	}
	maxOpenConns, err := strconv.Atoi(maxOpenConnsStr)
	if err != nil {
		return Config{}, fmt.Errorf("invalid DB_MAX_OPEN_CONNS %q: %w", maxOpenConnsStr, err)
	}

	maxIdleConnsStr := strings.TrimSpace(os.Getenv("DB_MAX_IDLE_CONNS"))
	if maxIdleConnsStr == "" {
		maxIdleConnsStr = "1"
	}
	maxIdleConns, err := strconv.Atoi(maxIdleConnsStr)
	if err != nil {
		return Config{}, fmt.Errorf("invalid DB_MAX_IDLE_CONNS %q: %w", maxIdleConnsStr, err)
	}

	connMaxLifetimeStr := strings.TrimSpace(os.Getenv("DB_CONN_MAX_LIFETIME"))
	if connMaxLifetimeStr == "" {
		connMaxLifetimeStr = "0s"
	}
	connMaxLifetime, err := time.ParseDuration(connMaxLifetimeStr)
	if err != nil {
		return Config{}, fmt.Errorf("invalid DB_CONN_MAX_LIFETIME %q: %w", connMaxLifetimeStr, err)
	}

	return Config{
		AppEnv:           appEnv,
		LogLevel:         level,
		HTTPAddr:         httpAddr,
		DataDir:          dataDir,
		DataExt:          dataExt,
		Location:         loc,
		SkipInvalidFiles: skipInvalid,
		ArchivePath:      archivePath,
		ArchiveDSN:       archiveDSN,
		Driver:           driver,
		MaxOpenConns:     maxOpenConns,
		MaxIdleConns:     maxIdleConns,
		ConnMaxLifetime:  connMaxLifetime,
	}, nil
}

func parseLogLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("invalid LOG_LEVEL %q (allowed: debug, info, warn, error)", s)
	}
}

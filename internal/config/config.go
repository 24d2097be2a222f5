package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Common contains BASIS parameters shared by the server and the exporter CLI.
type Common struct {
	BasisBaseURL  string
	BasisVersion  string
	FetchTimeout  time.Duration
	FetchWorkers  int
	MaxRangeDays  int
	RetryAttempts int
	RetryBackoff  time.Duration
	EncodersPath  string
}

// Server describes HTTP-layer configuration.
type Server struct {
	Common
	BindAddr   string
	SessionTTL time.Duration
}

// LoadServer builds a Server config from environment variables.
func LoadServer() (*Server, error) {
	common, err := loadCommon()
	if err != nil {
		return nil, err
	}

	c := &Server{
		Common:     *common,
		BindAddr:   getEnv("SERVER_BIND_ADDR", "0.0.0.0:5027"),
		SessionTTL: getDuration("SERVER_SESSION_TTL", "4h"),
	}

	if c.SessionTTL <= 0 {
		return nil, fmt.Errorf("SERVER_SESSION_TTL must be positive")
	}

	return c, nil
}

// LoadExporter builds the CLI config from environment variables.
func LoadExporter() (*Common, error) {
	return loadCommon()
}

func loadCommon() (*Common, error) {
	c := &Common{
		BasisBaseURL:  getEnv("BASIS_BASE_URL", "http://www.akleg.gov/publicservice/basis"),
		BasisVersion:  getEnv("BASIS_API_VERSION", "1.4"),
		FetchTimeout:  getDuration("FETCH_TIMEOUT", "15s"),
		FetchWorkers:  getInt("FETCH_WORKERS", 4),
		MaxRangeDays:  getInt("FETCH_MAX_RANGE_DAYS", 31),
		RetryAttempts: getInt("FETCH_RETRY_ATTEMPTS", 0),
		RetryBackoff:  getDuration("FETCH_RETRY_BACKOFF", "1s"),
		EncodersPath:  getEnv("ENCODERS_FILE", ""),
	}

	if c.BasisBaseURL == "" {
		return nil, fmt.Errorf("BASIS_BASE_URL must not be empty")
	}
	if c.FetchTimeout <= 0 {
		return nil, fmt.Errorf("FETCH_TIMEOUT must be positive")
	}
	if c.FetchWorkers <= 0 {
		return nil, fmt.Errorf("FETCH_WORKERS must be positive")
	}
	if c.MaxRangeDays <= 0 {
		return nil, fmt.Errorf("FETCH_MAX_RANGE_DAYS must be positive")
	}
	if c.RetryAttempts < 0 {
		return nil, fmt.Errorf("FETCH_RETRY_ATTEMPTS cannot be negative")
	}

	return c, nil
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func getInt(key string, fallback int) int {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			return parsed
		}
	}
	return fallback
}

func getDuration(key, fallback string) time.Duration {
	raw := getEnv(key, fallback)
	d, err := time.ParseDuration(raw)
	if err != nil {
		fd, ferr := time.ParseDuration(fallback)
		if ferr != nil {
			panic(fmt.Sprintf("invalid fallback duration %q: %v", fallback, ferr))
		}
		return fd
	}
	return d
}

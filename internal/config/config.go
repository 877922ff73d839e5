package config

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config is built once at startup and passed by reference into every
// component that needs it. Nothing in the service reads the environment
// after Load returns.
type Config struct {
	Profile   string
	LogFormat string

	HTTPAddr          string
	ReadHeaderTimeout time.Duration
	CORSOrigins       []string

	DatabaseURL string

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	JWTKey      string
	JWTIssuer   string
	JWTAudience string
	TokenTTL    time.Duration

	BcryptCost int

	APIRateLimitRPM  int
	AuthRateLimitRPM int

	ShutdownTimeout              time.Duration
	ShutdownHTTPDrainTimeout     time.Duration
	ShutdownObservabilityTimeout time.Duration

	OTELServiceName           string
	OTELEnvironment           string
	OTELExporterOTLPEndpoint  string
	OTELExporterOTLPInsecure  bool
	OTELMetricsEnabled        bool
	OTELTracesEnabled         bool
	OTELLogsEnabled           bool
	OTELMetricsExportInterval time.Duration
}

// Load reads configuration from the environment. Missing JWT or store
// settings are a fatal condition: the token issuer cannot run without them.
func Load(ctx context.Context) (*Config, error) {
	cfg, err := load()
	profile := ""
	if cfg != nil {
		profile = cfg.Profile
	}
	if err != nil {
		recordConfigValidationEvent(ctx, profile, "error", classifyConfigLoadError(err))
		return nil, err
	}
	recordConfigValidationEvent(ctx, profile, "success", "none")
	return cfg, nil
}

func load() (*Config, error) {
	cfg := &Config{
		Profile:     getEnv("APP_PROFILE", "dev"),
		LogFormat:   getEnv("LOG_FORMAT", "json"),
		HTTPAddr:    getEnv("HTTP_ADDR", ":8080"),
		DatabaseURL: os.Getenv("DATABASE_URL"),

		RedisAddr:     os.Getenv("REDIS_ADDR"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),

		JWTKey:      os.Getenv("JWT_KEY"),
		JWTIssuer:   os.Getenv("JWT_ISSUER"),
		JWTAudience: os.Getenv("JWT_AUDIENCE"),

		OTELServiceName:          getEnv("OTEL_SERVICE_NAME", "cinema-api"),
		OTELExporterOTLPEndpoint: getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4317"),
	}
	cfg.OTELEnvironment = getEnv("OTEL_ENVIRONMENT", cfg.Profile)

	if origins := os.Getenv("CORS_ORIGINS"); origins != "" {
		for _, o := range strings.Split(origins, ",") {
			if o = strings.TrimSpace(o); o != "" {
				cfg.CORSOrigins = append(cfg.CORSOrigins, o)
			}
		}
	}

	var err error
	if cfg.RedisDB, err = intEnv("REDIS_DB", 0); err != nil {
		return cfg, err
	}
	if cfg.TokenTTL, err = durationEnv("JWT_TOKEN_TTL", time.Hour); err != nil {
		return cfg, err
	}
	if cfg.BcryptCost, err = intEnv("BCRYPT_COST", 10); err != nil {
		return cfg, err
	}
	if cfg.APIRateLimitRPM, err = intEnv("API_RATE_LIMIT_RPM", 300); err != nil {
		return cfg, err
	}
	if cfg.AuthRateLimitRPM, err = intEnv("AUTH_RATE_LIMIT_RPM", 30); err != nil {
		return cfg, err
	}
	if cfg.ReadHeaderTimeout, err = durationEnv("HTTP_READ_HEADER_TIMEOUT", 5*time.Second); err != nil {
		return cfg, err
	}
	if cfg.ShutdownTimeout, err = durationEnv("SHUTDOWN_TIMEOUT", 15*time.Second); err != nil {
		return cfg, err
	}
	if cfg.ShutdownHTTPDrainTimeout, err = durationEnv("SHUTDOWN_HTTP_DRAIN_TIMEOUT", 5*time.Second); err != nil {
		return cfg, err
	}
	if cfg.ShutdownObservabilityTimeout, err = durationEnv("SHUTDOWN_OBSERVABILITY_TIMEOUT", 5*time.Second); err != nil {
		return cfg, err
	}
	if cfg.OTELExporterOTLPInsecure, err = boolEnv("OTEL_EXPORTER_OTLP_INSECURE", true); err != nil {
		return cfg, err
	}
	if cfg.OTELMetricsEnabled, err = boolEnv("OTEL_METRICS_ENABLED", false); err != nil {
		return cfg, err
	}
	if cfg.OTELTracesEnabled, err = boolEnv("OTEL_TRACES_ENABLED", false); err != nil {
		return cfg, err
	}
	if cfg.OTELLogsEnabled, err = boolEnv("OTEL_LOGS_ENABLED", false); err != nil {
		return cfg, err
	}
	if cfg.OTELMetricsExportInterval, err = durationEnv("OTEL_METRICS_EXPORT_INTERVAL", 30*time.Second); err != nil {
		return cfg, err
	}

	if err := cfg.validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	required := []struct {
		name  string
		value string
	}{
		{"DATABASE_URL", c.DatabaseURL},
		{"REDIS_ADDR", c.RedisAddr},
		{"JWT_KEY", c.JWTKey},
		{"JWT_ISSUER", c.JWTIssuer},
		{"JWT_AUDIENCE", c.JWTAudience},
	}
	for _, r := range required {
		if strings.TrimSpace(r.value) == "" {
			return fmt.Errorf("validate config: %s is required", r.name)
		}
	}
	if len(c.JWTKey) < 32 {
		return fmt.Errorf("validate config: JWT_KEY must be at least 32 bytes")
	}
	if c.TokenTTL <= 0 {
		return fmt.Errorf("validate config: JWT_TOKEN_TTL must be positive")
	}
	if c.BcryptCost < 4 || c.BcryptCost > 31 {
		return fmt.Errorf("validate config: BCRYPT_COST must be between 4 and 31")
	}
	return nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func intEnv(key string, fallback int) (int, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("parse %s: %w", key, err)
	}
	return v, nil
}

func boolEnv(key string, fallback bool) (bool, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, fmt.Errorf("parse %s: %w", key, err)
	}
	return v, nil
}

func durationEnv(key string, fallback time.Duration) (time.Duration, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback, nil
	}
	v, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("parse %s: %w", key, err)
	}
	return v, nil
}

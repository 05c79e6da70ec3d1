package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/aceconsult/cmsapi/internal/core/auth"
	"github.com/aceconsult/cmsapi/internal/core/validation"
)

// =============================================================================
// Config Types
// =============================================================================

// Config holds all application configuration.
type Config struct {
	// Env is "dev" for local development; anything else is treated as production.
	Env       string          `mapstructure:"env"`
	DataDir   string          `mapstructure:"data_dir"`
	Server    ServerConfig    `mapstructure:"server"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Log       LogConfig       `mapstructure:"log"`
	Uploads   UploadsConfig   `mapstructure:"uploads"`
	Auth      AuthConfig      `mapstructure:"auth"`
	Admin     AdminConfig     `mapstructure:"admin"`
	CORS      CORSConfig      `mapstructure:"cors"`
	RateLimit RateLimitConfig `mapstructure:"ratelimit"`
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// Address returns the server address in host:port format.
func (c ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// DatabaseConfig holds database configuration.
type DatabaseConfig struct {
	DSN string `mapstructure:"dsn"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// UploadsConfig holds image upload configuration.
type UploadsConfig struct {
	// Dir is the upload root served under /uploads/.
	Dir string `mapstructure:"dir"`

	// StagingDir holds accepted uploads until they are processed.
	StagingDir string `mapstructure:"staging_dir"`

	MaxFileSize int64 `mapstructure:"max_file_size"`
	MaxFiles    int   `mapstructure:"max_files"`

	// SweepInterval and StagingMaxAge drive removal of abandoned staged files.
	SweepInterval time.Duration `mapstructure:"sweep_interval"`
	StagingMaxAge time.Duration `mapstructure:"staging_max_age"`
}

// AuthConfig holds admin token configuration.
type AuthConfig struct {
	// JWTSecret signs admin tokens. Set via CMS_AUTH_JWT_SECRET.
	JWTSecret string        `mapstructure:"jwt_secret"`
	TokenTTL  time.Duration `mapstructure:"token_ttl"`
	Issuer    string        `mapstructure:"issuer"`
}

// AdminConfig optionally bootstraps the first admin at startup.
type AdminConfig struct {
	BootstrapEmail    string `mapstructure:"bootstrap_email"`
	BootstrapPassword string `mapstructure:"bootstrap_password"`
	BootstrapName     string `mapstructure:"bootstrap_name"`
}

// Enabled reports whether bootstrap credentials are configured.
func (c AdminConfig) Enabled() bool {
	return c.BootstrapEmail != "" && c.BootstrapPassword != ""
}

// CORSConfig holds browser origin configuration.
type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// RateLimitConfig holds public endpoint rate limits.
type RateLimitConfig struct {
	RequestsPerMinute int `mapstructure:"requests_per_minute"`
	Burst             int `mapstructure:"burst"`
}

// IsDev reports whether the service runs in development mode.
func (c *Config) IsDev() bool {
	return strings.EqualFold(c.Env, "dev")
}

// =============================================================================
// Config Loading
// =============================================================================

const (
	defaultDSN        = "./data/cms.db"
	defaultUploadsDir = "./data/uploads"
	defaultStagingDir = "./data/staging"
)

// LoadConfig loads configuration from file and environment. A .env file in
// the working directory is loaded into the environment first when present.
func LoadConfig(configPath string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env file: %w", err)
	}

	v := viper.New()

	// Set defaults
	v.SetDefault("env", "production")
	v.SetDefault("data_dir", "")
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 5000)
	v.SetDefault("server.read_timeout", "30s")
	v.SetDefault("server.write_timeout", "60s")
	v.SetDefault("server.shutdown_timeout", "30s")
	v.SetDefault("database.dsn", defaultDSN)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("uploads.dir", defaultUploadsDir)
	v.SetDefault("uploads.staging_dir", defaultStagingDir)
	v.SetDefault("uploads.max_file_size", 10<<20)
	v.SetDefault("uploads.max_files", 20)
	v.SetDefault("uploads.sweep_interval", "10m")
	v.SetDefault("uploads.staging_max_age", "1h")
	v.SetDefault("auth.jwt_secret", "")
	v.SetDefault("auth.token_ttl", "168h")
	v.SetDefault("auth.issuer", "cmsapi")
	v.SetDefault("admin.bootstrap_email", "")
	v.SetDefault("admin.bootstrap_password", "")
	v.SetDefault("admin.bootstrap_name", "Admin")
	v.SetDefault("cors.allowed_origins", []string{})
	v.SetDefault("ratelimit.requests_per_minute", 10)
	v.SetDefault("ratelimit.burst", 5)

	// Load from file if provided
	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			// Only return error if file was explicitly specified and is invalid
			var parseErr viper.ConfigParseError
			if errors.As(err, &parseErr) {
				return nil, fmt.Errorf("failed to parse config file: %w", err)
			}
			// File not found is OK, we'll use defaults
		}
	}

	// Enable environment variable overrides
	v.SetEnvPrefix("CMS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Unmarshal config
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// data_dir relocates every path still at its default.
	if cfg.DataDir != "" {
		if cfg.Database.DSN == defaultDSN {
			cfg.Database.DSN = filepath.Join(cfg.DataDir, "cms.db")
		}
		if cfg.Uploads.Dir == defaultUploadsDir {
			cfg.Uploads.Dir = filepath.Join(cfg.DataDir, "uploads")
		}
		if cfg.Uploads.StagingDir == defaultStagingDir {
			cfg.Uploads.StagingDir = filepath.Join(cfg.DataDir, "staging")
		}
	}

	return &cfg, nil
}

// Validate checks settings that have no usable default.
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port %d is out of range", c.Server.Port)
	}
	if c.Database.DSN == "" {
		return errors.New("database.dsn is required")
	}
	if c.Uploads.Dir == "" || c.Uploads.StagingDir == "" {
		return errors.New("uploads.dir and uploads.staging_dir are required")
	}
	if c.Uploads.MaxFileSize <= 0 || c.Uploads.MaxFiles <= 0 {
		return errors.New("uploads.max_file_size and uploads.max_files must be positive")
	}

	if c.Auth.JWTSecret == "" {
		return errors.New("auth.jwt_secret is required")
	}
	if !c.IsDev() && len(c.Auth.JWTSecret) < auth.MinSecretLength {
		return fmt.Errorf("auth.jwt_secret must be at least %d bytes outside dev mode", auth.MinSecretLength)
	}

	if c.Admin.BootstrapEmail != "" || c.Admin.BootstrapPassword != "" {
		if field, msg := validation.ValidateRegisterFields(c.Admin.BootstrapEmail, c.Admin.BootstrapPassword, c.Admin.BootstrapName); field != "" {
			return fmt.Errorf("admin bootstrap: %s", msg)
		}
	}
	return nil
}

// =============================================================================
// Logger Setup
// =============================================================================

// SetupLogger creates a logger with the configured level and format.
func SetupLogger(cfg *Config) *slog.Logger {
	var level slog.Level
	switch strings.ToLower(cfg.Log.Level) {
	case "debug":
		level = slog.LevelDebug
	case "warn", "warning":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{
		Level: level,
	}

	var handler slog.Handler
	if strings.ToLower(cfg.Log.Format) == "text" {
		handler = slog.NewTextHandler(os.Stdout, opts)
	} else {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	}

	return slog.New(handler)
}

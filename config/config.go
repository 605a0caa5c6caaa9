package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all service configuration.
type Config struct {
	HTTPServer HTTPServerConfig
	Database   DatabaseConfig
	Logger     LoggerConfig
	Auth       AuthConfig
	RateLimit  RateLimitConfig
	Sessions   SessionsConfig
	CORS       CORSConfig
}

type HTTPServerConfig struct {
	Port         int
	// MaxBodyBytes caps request bodies.
	MaxBodyBytes int64
	// TrustProxy takes the client address from X-Forwarded-For / X-Real-IP.
	// Only enable behind a proxy that overwrites those headers.
	TrustProxy   bool
}

type DatabaseConfig struct {
	// Path is the SQLite file, or ":memory:".
	Path string
}

type LoggerConfig struct {
	Level    string
	Mode     string
	Encoding string
}

type AuthConfig struct {
	// JWTSecret signs HS256 bearer tokens. Empty disables authentication
	// (development only).
	JWTSecret string
}

type RateLimitConfig struct {
	RequestsPerMin int
}

type SessionsConfig struct {
	Max int
	TTL time.Duration
}

type CORSConfig struct {
	AllowedOrigins []string
}

// Load loads configuration using Viper.
// Config file name: config.yaml, searched in ./config, ., /etc/leave-composer/.
// An explicit path takes precedence over the search. Environment variables
// use the LEAVE_ prefix with dots replaced by underscores, e.g.
// LEAVE_HTTP_SERVER_PORT.
func Load(path string) (*Config, error) {
	v := viper.New()
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("./config")
		v.AddConfigPath(".")
		v.AddConfigPath("/etc/leave-composer/")
	}

	v.SetEnvPrefix("leave")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok || path != "" {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	cfg := &Config{}

	cfg.HTTPServer.Port = v.GetInt("http_server.port")
	cfg.HTTPServer.MaxBodyBytes = v.GetInt64("http_server.max_body_bytes")
	cfg.HTTPServer.TrustProxy = v.GetBool("http_server.trust_proxy")
	cfg.Database.Path = v.GetString("database.path")
	cfg.Logger.Level = v.GetString("logger.level")
	cfg.Logger.Mode = v.GetString("logger.mode")
	cfg.Logger.Encoding = v.GetString("logger.encoding")
	cfg.Auth.JWTSecret = v.GetString("auth.jwt_secret")
	cfg.RateLimit.RequestsPerMin = v.GetInt("rate_limit.requests_per_min")
	cfg.Sessions.Max = v.GetInt("sessions.max")
	cfg.Sessions.TTL = v.GetDuration("sessions.ttl")

	// Split allowed origins since viper might not parse array seamlessly from env
	cfg.CORS.AllowedOrigins = splitList(v.GetStringSlice("cors.allowed_origins"))

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.HTTPServer.Port <= 0 || c.HTTPServer.Port > 65535 {
		return fmt.Errorf("http_server.port out of range: %d", c.HTTPServer.Port)
	}
	if c.HTTPServer.MaxBodyBytes <= 0 {
		return fmt.Errorf("http_server.max_body_bytes must be positive")
	}
	if c.Database.Path == "" {
		return fmt.Errorf("database.path is required")
	}
	if c.Sessions.Max <= 0 {
		return fmt.Errorf("sessions.max must be positive")
	}
	if c.Sessions.TTL <= 0 {
		return fmt.Errorf("sessions.ttl must be positive")
	}
	return nil
}

func splitList(raw []string) []string {
	var out []string
	for _, entry := range raw {
		for _, s := range strings.Split(entry, ",") {
			s = strings.TrimSpace(s)
			if s != "" {
				out = append(out, s)
			}
		}
	}
	return out
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("http_server.port", 8080)
	v.SetDefault("http_server.max_body_bytes", 1<<20)
	v.SetDefault("http_server.trust_proxy", false)
	v.SetDefault("database.path", "leave.db")
	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.mode", "development")
	v.SetDefault("logger.encoding", "console")
	v.SetDefault("auth.jwt_secret", "")
	v.SetDefault("rate_limit.requests_per_min", 600)
	v.SetDefault("sessions.max", 1000)
	v.SetDefault("sessions.ttl", "30m")
	v.SetDefault("cors.allowed_origins", []string{"http://localhost:5173"})
}

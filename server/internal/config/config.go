package config

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Default values for the server configuration.
const (
	DefaultHost           = "0.0.0.0"
	DefaultHTTPPort       = 8080
	DefaultStreamInterval = 5 * time.Second
	DefaultLogLevel       = "info"
	DefaultLogFormat      = "json"
	DefaultLogMaxSizeMB   = 10
	DefaultLogMaxBackups  = 10
	DefaultLogMaxAgeDays  = 7
)

// Config is the root of config.yaml.
type Config struct {
	Server ServerConfig `yaml:"server"`
	Log    LogConfig    `yaml:"log"`
}

// ServerConfig holds all server-side settings.
type ServerConfig struct {
	// Host is the interface the HTTP listener binds to (default 0.0.0.0).
	Host string `yaml:"host"`

	// HTTPPort is the port the REST API and WebSocket stream listen on (default 8080).
	HTTPPort int `yaml:"http_port"`

	// CORS controls which browser origins may call the API.
	CORS CORSConfig `yaml:"cors"`

	// Stream controls the WebSocket dashboard stream.
	Stream StreamConfig `yaml:"stream"`

	// Seed points at an optional YAML file replacing the built-in catalog.
	Seed SeedConfig `yaml:"seed"`

	// UIDir, when set, serves a pre-built front-end from this directory under /ui/.
	UIDir string `yaml:"ui_dir"`
}

// Addr returns the listen address in host:port form.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.HTTPPort)
}

// CORSConfig lists the origins allowed to make cross-origin requests.
type CORSConfig struct {
	// AllowedOrigins entries are exact origins, "*" or "*.example.com".
	// Defaults to ["*"].
	AllowedOrigins []string `yaml:"allowed_origins"`
}

// StreamConfig controls the WebSocket dashboard stream.
type StreamConfig struct {
	// Interval is the broadcast period. Zero disables /ws/stream.
	Interval time.Duration `yaml:"interval"`
}

// SeedConfig names the optional catalog seed file.
type SeedConfig struct {
	File string `yaml:"file"`
}

// LogConfig controls the process logger.
type LogConfig struct {
	// Level is one of: debug | info | warn | error.
	Level string `yaml:"level"`

	// Format is one of: json | text.
	Format string `yaml:"format"`

	// File, when set, sends logs to a size-rotated file instead of stdout.
	File       string `yaml:"file"`
	MaxSizeMB  int    `yaml:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups"`
	MaxAgeDays int    `yaml:"max_age_days"`
}

// SlogLevel parses Level. Unknown levels fall back to info; Validate rejects them.
func (l LogConfig) SlogLevel() slog.Level {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(l.Level)); err != nil {
		return slog.LevelInfo
	}
	return lvl
}

// Load reads and parses the config file at path. An empty path returns the
// defaults. Missing fields are filled with defaults before validation.
func Load(path string) (*Config, error) {
	cfg := Defaults()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("server config: read %q: %w", path, err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("server config: parse yaml: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Defaults returns a Config pre-populated with default values.
func Defaults() *Config {
	return &Config{
		Server: ServerConfig{
			Host:     DefaultHost,
			HTTPPort: DefaultHTTPPort,
			CORS: CORSConfig{
				AllowedOrigins: []string{"*"},
			},
			Stream: StreamConfig{
				Interval: DefaultStreamInterval,
			},
		},
		Log: LogConfig{
			Level:      DefaultLogLevel,
			Format:     DefaultLogFormat,
			MaxSizeMB:  DefaultLogMaxSizeMB,
			MaxBackups: DefaultLogMaxBackups,
			MaxAgeDays: DefaultLogMaxAgeDays,
		},
	}
}

// Validate checks structural constraints on the configuration.
func (cfg *Config) Validate() error {
	if err := cfg.validate(); err != nil {
		return fmt.Errorf("server config: %w", err)
	}
	return nil
}

func (cfg *Config) validate() error {
	if cfg.Server.HTTPPort <= 0 || cfg.Server.HTTPPort > 65535 {
		return fmt.Errorf("server.http_port %d is out of range [1, 65535]", cfg.Server.HTTPPort)
	}
	if cfg.Server.Stream.Interval < 0 {
		return fmt.Errorf("server.stream.interval must not be negative")
	}
	for _, o := range cfg.Server.CORS.AllowedOrigins {
		if o == "" {
			return fmt.Errorf("server.cors.allowed_origins must not contain empty entries")
		}
	}
	if cfg.Server.UIDir != "" {
		fi, err := os.Stat(cfg.Server.UIDir)
		if err != nil {
			return fmt.Errorf("server.ui_dir: %w", err)
		}
		if !fi.IsDir() {
			return fmt.Errorf("server.ui_dir %q is not a directory", cfg.Server.UIDir)
		}
	}

	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(cfg.Log.Level)); err != nil {
		return fmt.Errorf("log.level %q unknown: want debug|info|warn|error", cfg.Log.Level)
	}
	switch cfg.Log.Format {
	case "json", "text":
	default:
		return fmt.Errorf("log.format %q unknown: want json|text", cfg.Log.Format)
	}
	if cfg.Log.MaxSizeMB < 0 || cfg.Log.MaxBackups < 0 || cfg.Log.MaxAgeDays < 0 {
		return fmt.Errorf("log rotation limits must not be negative")
	}
	return nil
}

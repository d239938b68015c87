package config

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config contains runtime settings for the hirepipe MCP server
type Config struct {
	LogLevel string `yaml:"log_level"`
	Host     string `yaml:"host"` // default 0.0.0.0
	Port     string `yaml:"port"` // default PORT env or 8080

	API struct {
		BaseURL           string  `yaml:"base_url"`
		RequestsPerSecond float64 `yaml:"requests_per_second"` // 0 disables the limiter
		Burst             int     `yaml:"burst"`
	} `yaml:"api"`

	Cache struct {
		StaleTime time.Duration `yaml:"stale_time"`
	} `yaml:"cache"`

	Session struct {
		Backend   string `yaml:"backend"` // keyring, file or memory
		TokenKey  string `yaml:"token_key"`
		TokenFile string `yaml:"token_file"`
		LoginPath string `yaml:"login_path"`
	} `yaml:"session"`

	// Neo4j is optional; pipeline_snapshot is disabled without it
	Neo4j struct {
		URI      string `yaml:"uri"`
		Username string `yaml:"username"`
		Password string `yaml:"password"`
	} `yaml:"neo4j"`

	// Sheets is optional; sheets_export is disabled without it
	Sheets struct {
		CredentialsPath string `yaml:"credentials_path"`
	} `yaml:"sheets"`
}

// Default returns the settings used when nothing overrides them
func Default() Config {
	var cfg Config
	cfg.LogLevel = "info"
	cfg.Host = "0.0.0.0"
	cfg.Port = "8080"
	cfg.API.BaseURL = "http://localhost:8000"
	cfg.API.RequestsPerSecond = 10
	cfg.API.Burst = 5
	cfg.Cache.StaleTime = 5 * time.Minute
	cfg.Session.Backend = "keyring"
	cfg.Session.TokenKey = "authToken"
	cfg.Session.LoginPath = "/login"
	return cfg
}

// Load reads .env if present, then the YAML file named by HIREPIPE_CONFIG,
// then environment variables, and validates the result
func Load() (Config, error) {
	// a missing .env is normal outside local development
	_ = godotenv.Load()

	cfg := Default()

	if path := os.Getenv("HIREPIPE_CONFIG"); path != "" {
		if err := overlayFile(&cfg, path); err != nil {
			return cfg, err
		}
	}

	if err := overlayEnv(&cfg); err != nil {
		return cfg, err
	}

	return cfg, Validate(cfg)
}

func overlayFile(cfg *Config, path string) error {
	b, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("config: read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(b, cfg); err != nil {
		return fmt.Errorf("config: parse %s: %w", path, err)
	}
	return nil
}

func overlayEnv(cfg *Config) error {
	str := func(name string, dst *string) {
		if v := os.Getenv(name); v != "" {
			*dst = v
		}
	}

	str("LOG_LEVEL", &cfg.LogLevel)
	str("MCP_HOST", &cfg.Host)
	str("PORT", &cfg.Port)
	str("HIREPIPE_API_URL", &cfg.API.BaseURL)
	str("HIREPIPE_TOKEN_STORE", &cfg.Session.Backend)
	str("HIREPIPE_TOKEN_KEY", &cfg.Session.TokenKey)
	str("HIREPIPE_TOKEN_FILE", &cfg.Session.TokenFile)
	str("HIREPIPE_LOGIN_PATH", &cfg.Session.LoginPath)
	str("NEO4J_URI", &cfg.Neo4j.URI)
	str("NEO4J_USERNAME", &cfg.Neo4j.Username)
	str("NEO4J_PASSWORD", &cfg.Neo4j.Password)
	str("GOOGLE_SHEETS_CREDENTIALS", &cfg.Sheets.CredentialsPath)

	var errs []error
	if v := os.Getenv("HIREPIPE_API_RPS"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			errs = append(errs, fmt.Errorf("HIREPIPE_API_RPS: %w", err))
		}
		cfg.API.RequestsPerSecond = f
	}
	if v := os.Getenv("HIREPIPE_API_BURST"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			errs = append(errs, fmt.Errorf("HIREPIPE_API_BURST: %w", err))
		}
		cfg.API.Burst = n
	}
	if v := os.Getenv("HIREPIPE_STALE_TIME"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			errs = append(errs, fmt.Errorf("HIREPIPE_STALE_TIME: %w", err))
		}
		cfg.Cache.StaleTime = d
	}

	if len(errs) > 0 {
		return fmt.Errorf("config: invalid environment: %w", errors.Join(errs...))
	}
	return nil
}

// Validate reports every problem in cfg at once
func Validate(cfg Config) error {
	var errs []string

	if port, err := strconv.Atoi(cfg.Port); err != nil || port <= 0 || port > 65535 {
		errs = append(errs, "port must be 1..65535")
	}
	if u, err := url.Parse(cfg.API.BaseURL); err != nil || u.Scheme == "" || u.Host == "" {
		errs = append(errs, "api.base_url must be an absolute URL")
	}
	if cfg.API.RequestsPerSecond < 0 {
		errs = append(errs, "api.requests_per_second must be >= 0")
	}
	if cfg.API.RequestsPerSecond > 0 && cfg.API.Burst < 1 {
		errs = append(errs, "api.burst must be >= 1 when rate limiting")
	}
	if cfg.Cache.StaleTime <= 0 {
		errs = append(errs, "cache.stale_time must be positive")
	}

	switch strings.ToLower(cfg.Session.Backend) {
	case "keyring":
		if cfg.Session.TokenKey == "" {
			errs = append(errs, "session.token_key is required for the keyring backend")
		}
	case "file":
		if cfg.Session.TokenFile == "" {
			errs = append(errs, "session.token_file is required for the file backend")
		}
	case "memory":
	default:
		errs = append(errs, "session.backend must be keyring, file or memory")
	}

	var missing []string
	if cfg.Neo4j.URI != "" {
		if cfg.Neo4j.Username == "" {
			missing = append(missing, "NEO4J_USERNAME")
		}
		if cfg.Neo4j.Password == "" {
			missing = append(missing, "NEO4J_PASSWORD")
		}
	}
	if len(missing) > 0 {
		errs = append(errs, "missing required environment variables: "+strings.Join(missing, ", "))
	}

	if len(errs) > 0 {
		return fmt.Errorf("config: %s", strings.Join(errs, "; "))
	}
	return nil
}

// GraphEnabled reports whether a Neo4j mirror is configured
func (c Config) GraphEnabled() bool {
	return c.Neo4j.URI != ""
}

func (c Config) SheetsEnabled() bool {
	return c.Sheets.CredentialsPath != ""
}

// Addr is the listen address for the MCP server
func (c Config) Addr() string {
	return net.JoinHostPort(c.Host, c.Port)
}

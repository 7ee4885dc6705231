// Package config assembles process settings: built-in defaults, then an
// optional YAML file, then environment variables.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/ovaphlow/pitchfork/service-kiosk/internal/session"
	"github.com/ovaphlow/pitchfork/service-kiosk/internal/token"
	"github.com/ovaphlow/pitchfork/service-kiosk/pkg/database"
	"github.com/ovaphlow/pitchfork/service-kiosk/pkg/utilities"
)

// PathEnv names the variable consulted when no -config flag is given.
const PathEnv = "KIOSK_CONFIG"

const DefaultAddr = "0.0.0.0:8431"

type Config struct {
	Server struct {
		Addr string `yaml:"addr"`
	} `yaml:"server"`

	Database database.Config  `yaml:"database"`
	Log      utilities.Config `yaml:"log"`

	Auth struct {
		Secret     string        `yaml:"secret"`
		Algorithm  string        `yaml:"algorithm"`
		Issuer     string        `yaml:"issuer"`
		AccessTTL  time.Duration `yaml:"access_ttl"`
		DefaultTTL time.Duration `yaml:"default_ttl"`
	} `yaml:"auth"`

	Session struct {
		// SweepInterval of 0 disables the expired-session sweeper.
		SweepInterval time.Duration `yaml:"sweep_interval"`
	} `yaml:"session"`

	IDs struct {
		SnowflakeNode int64 `yaml:"snowflake_node"`
	} `yaml:"ids"`
}

func defaultConfig() *Config {
	cfg := &Config{Database: database.DefaultConfig()}
	cfg.Server.Addr = DefaultAddr
	cfg.Auth.Algorithm = "HS256"
	cfg.Auth.AccessTTL = session.DefaultAccessTTL
	cfg.Auth.DefaultTTL = token.DefaultTTL
	cfg.Session.SweepInterval = 10 * time.Minute
	cfg.IDs.SnowflakeNode = 1
	return cfg
}

// Load builds the configuration. An empty path skips the file layer.
func Load(path string) (*Config, error) {
	cfg := defaultConfig()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}
	applyEnvOverrides(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}
	return cfg, nil
}

// ResolvePath prefers the flag value and falls back to KIOSK_CONFIG.
func ResolvePath(flagValue string) string {
	if flagValue != "" {
		return flagValue
	}
	return os.Getenv(PathEnv)
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("HTTP_ADDR"); v != "" {
		cfg.Server.Addr = v
	}
	cfg.Database.ApplyEnv()
	cfg.Log.ApplyEnv()

	if v := os.Getenv("AUTH_SECRET"); v != "" {
		cfg.Auth.Secret = v
	}
	if v := os.Getenv("AUTH_ALGORITHM"); v != "" {
		cfg.Auth.Algorithm = strings.ToUpper(v)
	}
	if v := os.Getenv("AUTH_ISSUER"); v != "" {
		cfg.Auth.Issuer = v
	}
	if d, ok := durationEnv("AUTH_ACCESS_TTL"); ok {
		cfg.Auth.AccessTTL = d
	}
	if d, ok := durationEnv("AUTH_DEFAULT_TTL"); ok {
		cfg.Auth.DefaultTTL = d
	}
	if d, ok := durationEnv("SESSION_SWEEP_INTERVAL"); ok {
		cfg.Session.SweepInterval = d
	}
	if v := os.Getenv("SNOWFLAKE_NODE"); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			cfg.IDs.SnowflakeNode = n
		}
	}
}

func durationEnv(key string) (time.Duration, bool) {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return 0, false
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, false
	}
	return d, true
}

// Validate reports every problem at once.
func (c *Config) Validate() error {
	var errs []string
	if c.Server.Addr == "" {
		errs = append(errs, "server.addr is required")
	}
	if c.Database.Driver != database.DriverPostgres && c.Database.Driver != database.DriverSQLite {
		errs = append(errs, fmt.Sprintf("database.driver %q is not supported", c.Database.Driver))
	}
	if c.Database.DSN == "" {
		errs = append(errs, "database.dsn is required")
	}
	if c.Auth.Secret == "" {
		errs = append(errs, "auth.secret is required (set AUTH_SECRET)")
	}
	switch c.Auth.Algorithm {
	case "HS256", "HS384", "HS512":
	default:
		errs = append(errs, fmt.Sprintf("auth.algorithm %q is not supported", c.Auth.Algorithm))
	}
	if c.Auth.AccessTTL <= 0 {
		errs = append(errs, "auth.access_ttl must be positive")
	}
	if c.Auth.DefaultTTL <= 0 {
		errs = append(errs, "auth.default_ttl must be positive")
	}
	if c.Session.SweepInterval < 0 {
		errs = append(errs, "session.sweep_interval must not be negative")
	}
	if c.IDs.SnowflakeNode < 0 || c.IDs.SnowflakeNode > 1023 {
		errs = append(errs, "ids.snowflake_node must be between 0 and 1023")
	}
	if len(errs) > 0 {
		return fmt.Errorf("configuration errors: %s", strings.Join(errs, "; "))
	}
	return nil
}

// TokenConfig returns the issuer settings.
func (c *Config) TokenConfig() token.Config {
	return token.Config{
		Secret:     []byte(c.Auth.Secret),
		Algorithm:  c.Auth.Algorithm,
		DefaultTTL: c.Auth.DefaultTTL,
		Issuer:     c.Auth.Issuer,
	}
}

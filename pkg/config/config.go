// Package config loads lodestone settings.
//
// Settings come from three layers, later layers winning: built-in defaults,
// an optional TOML file, and LODESTONE_* environment variables. Command-line
// flags are applied on top by the caller.
//
//	data_dir = "/var/cache/lodestone"
//
//	[cache]
//	ttl = "1h"
//	store = "redis"
//	redis_addr = "localhost:6379"
//
//	[upstream]
//	fabric = "https://meta.fabricmc.net/v2"
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/caarlos0/env/v11"
	"github.com/charmbracelet/log"

	"github.com/matzehuels/lodestone/pkg/buildinfo"
	"github.com/matzehuels/lodestone/pkg/errors"
	"github.com/matzehuels/lodestone/pkg/integrations/installer"
	"github.com/matzehuels/lodestone/pkg/integrations/loadermeta"
	"github.com/matzehuels/lodestone/pkg/integrations/mojang"
)

// EnvPrefix prefixes every environment variable.
const EnvPrefix = "LODESTONE_"

// Store backends.
const (
	StoreFile  = "file"
	StoreRedis = "redis"
	StoreNone  = "none"
)

// Config is the full configuration.
type Config struct {
	// DataDir holds the persistent store and downloaded installers.
	DataDir  string   `toml:"data_dir" env:"DATA_DIR"`
	Cache    Cache    `toml:"cache" envPrefix:"CACHE_"`
	HTTP     HTTP     `toml:"http" envPrefix:"HTTP_"`
	Upstream Upstream `toml:"upstream" envPrefix:"UPSTREAM_"`
	Server   Server   `toml:"server" envPrefix:"SERVER_"`
	Log      Log      `toml:"log" envPrefix:"LOG_"`
}

// Cache configures the in-memory manifest caches and the persistent store.
type Cache struct {
	TTL      time.Duration `toml:"ttl" env:"TTL"`
	AssetTTL time.Duration `toml:"asset_ttl" env:"ASSET_TTL"`
	// Sweep expires entries in the background instead of on access.
	Sweep     bool          `toml:"sweep" env:"SWEEP"`
	Store     string        `toml:"store" env:"STORE"`
	RedisAddr string        `toml:"redis_addr" env:"REDIS_ADDR"`
	StoreTTL  time.Duration `toml:"store_ttl" env:"STORE_TTL"`
}

// HTTP configures the upstream transport.
type HTTP struct {
	Timeout          time.Duration `toml:"timeout" env:"TIMEOUT"`
	ConnectTimeout   time.Duration `toml:"connect_timeout" env:"CONNECT_TIMEOUT"`
	UserAgent        string        `toml:"user_agent" env:"USER_AGENT"`
	BreakerThreshold int           `toml:"breaker_threshold" env:"BREAKER_THRESHOLD"`
	DNSRefresh       time.Duration `toml:"dns_refresh" env:"DNS_REFRESH"`
}

// Upstream holds the base URL of every metadata source.
type Upstream struct {
	Manifest     string `toml:"manifest" env:"MANIFEST"`
	Libraries    string `toml:"libraries" env:"LIBRARIES"`
	Fabric       string `toml:"fabric" env:"FABRIC"`
	Quilt        string `toml:"quilt" env:"QUILT"`
	Forge        string `toml:"forge" env:"FORGE"`
	NeoForge     string `toml:"neoforge" env:"NEOFORGE"`
	UpdateServer string `toml:"update_server" env:"UPDATE_SERVER"`
}

// Server configures `lodestone serve`.
type Server struct {
	Addr string `toml:"addr" env:"ADDR"`
}

// Log configures the logger.
type Log struct {
	Level string `toml:"level" env:"LEVEL"`
}

// Default returns the built-in configuration.
func Default() *Config {
	dataDir := filepath.Join(os.TempDir(), "lodestone")
	if dir, err := os.UserCacheDir(); err == nil {
		dataDir = filepath.Join(dir, "lodestone")
	}
	return &Config{
		DataDir: dataDir,
		Cache: Cache{
			TTL:      time.Hour,
			AssetTTL: 24 * time.Hour,
			Store:    StoreFile,
			StoreTTL: 30 * 24 * time.Hour,
		},
		HTTP: HTTP{
			Timeout:          30 * time.Second,
			ConnectTimeout:   10 * time.Second,
			UserAgent:        buildinfo.UserAgent(),
			BreakerThreshold: 5,
			DNSRefresh:       5 * time.Minute,
		},
		Upstream: Upstream{
			Manifest:  mojang.DefaultManifestURL,
			Libraries: mojang.DefaultLibrariesURL,
			Fabric:    loadermeta.FabricURL,
			Quilt:     loadermeta.QuiltURL,
			Forge:     installer.ForgeMaven,
			NeoForge:  installer.NeoForgeMaven,
		},
		Server: Server{Addr: ":8080"},
		Log:    Log{Level: "info"},
	}
}

// DefaultPath returns $XDG_CONFIG_HOME/lodestone/config.toml, or "" when
// no config directory is known.
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "lodestone", "config.toml")
}

// Load builds the configuration from defaults, the file at path and the
// environment. An empty path reads DefaultPath if it exists; an explicit
// path must exist.
func Load(path string) (*Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		path = DefaultPath()
	}
	if path != "" {
		if _, err := toml.DecodeFile(path, cfg); err != nil {
			if explicit || !os.IsNotExist(err) {
				return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "read config %s", path)
			}
		}
	}

	if err := env.ParseWithOptions(cfg, env.Options{Prefix: EnvPrefix}); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "parse environment")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks value ranges and URLs.
func (c *Config) Validate() error {
	if c.DataDir == "" {
		return errors.New(errors.ErrCodeInvalidInput, "data_dir must be set")
	}
	if c.Cache.TTL <= 0 {
		return errors.New(errors.ErrCodeInvalidInput, "cache.ttl must be positive, got %s", c.Cache.TTL)
	}
	if c.Cache.AssetTTL < 0 || c.Cache.StoreTTL < 0 {
		return errors.New(errors.ErrCodeInvalidInput, "cache TTLs must not be negative")
	}
	switch c.Cache.Store {
	case StoreFile, StoreNone:
	case StoreRedis:
		if c.Cache.RedisAddr == "" {
			return errors.New(errors.ErrCodeInvalidInput, "cache.redis_addr is required for the redis store")
		}
	default:
		return errors.New(errors.ErrCodeInvalidInput, "cache.store must be file, redis or none, got %q", c.Cache.Store)
	}
	if c.HTTP.Timeout <= 0 {
		return errors.New(errors.ErrCodeInvalidInput, "http.timeout must be positive, got %s", c.HTTP.Timeout)
	}
	if c.HTTP.BreakerThreshold < 0 {
		return errors.New(errors.ErrCodeInvalidInput, "http.breaker_threshold must not be negative")
	}
	for _, u := range []struct{ name, url string }{
		{"manifest", c.Upstream.Manifest},
		{"libraries", c.Upstream.Libraries},
		{"fabric", c.Upstream.Fabric},
		{"quilt", c.Upstream.Quilt},
		{"forge", c.Upstream.Forge},
		{"neoforge", c.Upstream.NeoForge},
	} {
		if err := errors.ValidateURL(u.url); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidInput, err, "upstream.%s", u.name)
		}
	}
	if c.Upstream.UpdateServer != "" {
		if err := errors.ValidateURL(c.Upstream.UpdateServer); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidInput, err, "upstream.update_server")
		}
	}
	if _, err := log.ParseLevel(c.Log.Level); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidInput, err, "log.level")
	}
	return nil
}

// StoreDir is the directory of the file store.
func (c *Config) StoreDir() string { return filepath.Join(c.DataDir, "store") }

// InstallerDir is where installer JARs are cached.
func (c *Config) InstallerDir() string { return filepath.Join(c.DataDir, "installers") }

// String renders c as TOML.
func (c *Config) String() string {
	b, err := toml.Marshal(c)
	if err != nil {
		return fmt.Sprintf("%+v", *c)
	}
	return string(b)
}

// Package config loads geoprofile settings from a TOML or YAML file.
//
// The format is chosen by file extension (.toml, .yaml, .yml). Keys use
// snake_case in both formats:
//
//	policy = "tour"
//	reproject = true
//	buffer = 25.0
//	solver = "exact"
//	formats = ["json", "svg"]
//	depth = 12.0
//
//	[cache]
//	backend = "redis"
//
//	[cache.redis]
//	addr = "localhost:6379"
//
//	[server]
//	addr = ":8080"
//
// Unknown keys are rejected so typos do not silently fall back to defaults.
// Command-line flags override file values; file values override [Default].
package config

import (
	"bytes"
	stderrors "errors"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/matzehuels/geoprofile/pkg/cache"
	"github.com/matzehuels/geoprofile/pkg/errors"
	"github.com/matzehuels/geoprofile/pkg/ordering"
)

// Config holds every setting that can come from a file.
type Config struct {
	Policy    string   `toml:"policy" yaml:"policy"`
	Reproject *bool    `toml:"reproject" yaml:"reproject"`
	Buffer    float64  `toml:"buffer" yaml:"buffer"`
	Solver    string   `toml:"solver" yaml:"solver"`
	MaxPasses int      `toml:"max_passes" yaml:"max_passes"`
	MaxExact  int      `toml:"max_exact" yaml:"max_exact"`
	X0        float64  `toml:"x0" yaml:"x0"`
	Depth     float64  `toml:"depth" yaml:"depth"`
	Formats   []string `toml:"formats" yaml:"formats"`

	Cache  CacheConfig  `toml:"cache" yaml:"cache"`
	Server ServerConfig `toml:"server" yaml:"server"`
}

// CacheConfig selects the cache backend.
type CacheConfig struct {
	// Backend is file, redis, mongo or none.
	Backend string `toml:"backend" yaml:"backend"`
	Dir     string `toml:"dir" yaml:"dir"`
	// Prefix scopes keys when several sites share one Redis or MongoDB.
	Prefix string      `toml:"prefix" yaml:"prefix"`
	Redis  RedisConfig `toml:"redis" yaml:"redis"`
	Mongo  MongoConfig `toml:"mongo" yaml:"mongo"`
}

type RedisConfig struct {
	Addr     string `toml:"addr" yaml:"addr"`
	Password string `toml:"password" yaml:"password"`
	DB       int    `toml:"db" yaml:"db"`
}

type MongoConfig struct {
	URI        string `toml:"uri" yaml:"uri"`
	Database   string `toml:"database" yaml:"database"`
	Collection string `toml:"collection" yaml:"collection"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Addr string `toml:"addr" yaml:"addr"`
	// MaxBodyBytes limits request bodies.
	MaxBodyBytes int64 `toml:"max_body_bytes" yaml:"max_body_bytes"`
}

// Default returns the built-in settings.
func Default() Config {
	reproject := true
	return Config{
		Policy:    string(ordering.DefaultPolicy),
		Reproject: &reproject,
		Solver:    ordering.SolverNearestNeighbor,
		MaxPasses: ordering.DefaultMaxPasses,
		MaxExact:  ordering.DefaultMaxExact,
		Formats:   []string{"json"},
		Cache:     CacheConfig{Backend: string(cache.BackendFile)},
		Server:    ServerConfig{Addr: ":8080", MaxBodyBytes: 8 << 20},
	}
}

// Format is a config file syntax.
type Format string

const (
	FormatTOML Format = "toml"
	FormatYAML Format = "yaml"
)

// FormatFor returns the format implied by path's extension.
func FormatFor(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		return FormatTOML, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	}
	return "", errors.New(errors.ErrCodeInvalidConfig, "unsupported config file %q (use .toml, .yaml or .yml)", path)
}

// Load reads the file at path over Default.
func Load(path string) (Config, error) {
	if err := errors.ValidatePath(path); err != nil {
		return Config{}, err
	}
	format, err := FormatFor(path)
	if err != nil {
		return Config{}, err
	}
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return Config{}, errors.Wrap(errors.ErrCodeFileNotFound, err, "config %s", path)
	}
	if err != nil {
		return Config{}, errors.Wrap(errors.ErrCodeInvalidConfig, err, "read config %s", path)
	}
	return Parse(data, format)
}

// Parse decodes data over Default and validates the result.
func Parse(data []byte, format Format) (Config, error) {
	cfg := Default()
	switch format {
	case FormatTOML:
		md, err := toml.Decode(string(data), &cfg)
		if err != nil {
			return Config{}, errors.Wrap(errors.ErrCodeInvalidConfig, err, "parse toml")
		}
		if undecoded := md.Undecoded(); len(undecoded) > 0 {
			return Config{}, errors.New(errors.ErrCodeInvalidConfig, "unknown config key %q", undecoded[0].String())
		}
	case FormatYAML:
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&cfg); err != nil && !stderrors.Is(err, io.EOF) {
			return Config{}, errors.Wrap(errors.ErrCodeInvalidConfig, err, "parse yaml")
		}
	default:
		return Config{}, errors.New(errors.ErrCodeInvalidConfig, "unknown config format %q", format)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks values that the decoders cannot.
func (c Config) Validate() error {
	if _, err := ordering.ParsePolicy(c.Policy); err != nil {
		return err
	}
	if _, err := ordering.SolverByName(c.Solver, c.MaxPasses, c.MaxExact); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidConfig, err, "solver")
	}
	if c.Buffer < 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "buffer must not be negative, got %g", c.Buffer)
	}
	if c.Depth < 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "depth must not be negative, got %g", c.Depth)
	}
	if c.MaxExact > ordering.MaxExactPoints {
		return errors.New(errors.ErrCodeInvalidConfig, "max_exact must be at most %d, got %d", ordering.MaxExactPoints, c.MaxExact)
	}
	switch cache.Backend(c.Cache.Backend) {
	case "", cache.BackendFile, cache.BackendRedis, cache.BackendMongo, cache.BackendNone:
	default:
		return errors.New(errors.ErrCodeInvalidConfig,
			"unknown cache backend %q (must be one of: file, redis, mongo, none)", c.Cache.Backend)
	}
	return nil
}

// Keyer returns the cache keyer, scoped by Cache.Prefix when one is set.
func (c Config) Keyer() cache.Keyer {
	if c.Cache.Prefix == "" {
		return cache.NewDefaultKeyer()
	}
	return cache.NewScopedKeyer(cache.NewDefaultKeyer(), c.Cache.Prefix)
}

// ReprojectEnabled returns the reproject setting, true when unset.
func (c Config) ReprojectEnabled() bool {
	return c.Reproject == nil || *c.Reproject
}

// CacheOptions converts the cache section. defaultDir is used for the file
// backend when no dir is configured.
func (c Config) CacheOptions(defaultDir string) cache.Config {
	dir := c.Cache.Dir
	if dir == "" {
		dir = defaultDir
	}
	return cache.Config{
		Backend:         cache.Backend(c.Cache.Backend),
		Dir:             dir,
		RedisAddr:       c.Cache.Redis.Addr,
		RedisPassword:   c.Cache.Redis.Password,
		RedisDB:         c.Cache.Redis.DB,
		MongoURI:        c.Cache.Mongo.URI,
		MongoDatabase:   c.Cache.Mongo.Database,
		MongoCollection: c.Cache.Mongo.Collection,
	}
}

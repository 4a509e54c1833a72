// Package cache stores assembled sections and rendered artifacts.
//
// Assembling a section is cheap, but rendering an overlay through Graphviz
// is not, and the HTTP server sees the same input documents over and over.
// The [Cache] interface is a small byte store with TTLs; keys are produced
// by a [Keyer] from content hashes so identical requests share entries.
//
// # Backends
//
//   - [FileCache]: one JSON file per entry under a directory; the CLI default
//   - [RedisCache]: shared cache for multi-instance servers
//   - [MongoCache]: document store with a TTL index
//   - [NullCache]: never stores anything
//
// [Open] picks a backend from a [Config].
//
// # Keys
//
//	keyer := cache.NewDefaultKeyer()
//	key := keyer.SectionKey(cache.Hash(input), cache.SectionKeyOpts{Policy: "tour"})
//
// [ScopedKeyer] prefixes every key, which lets several tenants or
// deployments share one backend.
package cache

import (
	"context"
	"fmt"
	"time"
)

// Cache is a byte store with per-entry expiry.
// A miss is reported as (nil, false, nil), never as an error.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	// Set stores data. A ttl of zero means no expiry.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// Default TTLs per entry kind.
const (
	TTLSection  = 7 * 24 * time.Hour
	TTLArtifact = 30 * 24 * time.Hour
)

// SectionKeyOpts are the assembly options that change a section.
type SectionKeyOpts struct {
	Policy    string  `json:"policy"`
	Reproject bool    `json:"reproject"`
	Buffer    float64 `json:"buffer"`
	Solver    string  `json:"solver"`
	MaxPasses int     `json:"max_passes"`
	MaxExact  int     `json:"max_exact"`
}

// ArtifactKeyOpts are the rendering options that change an artifact.
type ArtifactKeyOpts struct {
	Format string  `json:"format"`
	X0     float64 `json:"x0"`
	Width  float64 `json:"width"`
	Title  string  `json:"title"`
	Depth  float64 `json:"depth"`
}

// Keyer builds cache keys.
type Keyer interface {
	// SectionKey keys an assembled section by its input document hash.
	SectionKey(inputHash string, opts SectionKeyOpts) string
	// ArtifactKey keys a rendered artifact by its section hash.
	ArtifactKey(sectionHash string, opts ArtifactKeyOpts) string
}

// DefaultKeyer hashes the options into the key.
type DefaultKeyer struct{}

// NewDefaultKeyer returns the default Keyer.
func NewDefaultKeyer() Keyer { return DefaultKeyer{} }

// SectionKey implements Keyer.
func (DefaultKeyer) SectionKey(inputHash string, opts SectionKeyOpts) string {
	return hashKey("section", inputHash, opts)
}

// ArtifactKey implements Keyer.
func (DefaultKeyer) ArtifactKey(sectionHash string, opts ArtifactKeyOpts) string {
	return hashKey("artifact", sectionHash, opts)
}

// Backend names a cache implementation.
type Backend string

const (
	BackendFile  Backend = "file"
	BackendRedis Backend = "redis"
	BackendMongo Backend = "mongo"
	BackendNone  Backend = "none"
)

// Config selects and configures a backend.
type Config struct {
	Backend Backend

	// Dir is the FileCache directory.
	Dir string

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	MongoURI        string
	MongoDatabase   string
	MongoCollection string
}

// Open connects to the configured backend. An empty backend means none.
func Open(ctx context.Context, cfg Config) (Cache, error) {
	switch cfg.Backend {
	case "", BackendNone:
		return NewNullCache(), nil
	case BackendFile:
		c, err := NewFileCache(cfg.Dir)
		if err != nil {
			return nil, err
		}
		return c, nil
	case BackendRedis:
		c, err := NewRedisCache(ctx, RedisConfig{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		if err != nil {
			return nil, err
		}
		return c, nil
	case BackendMongo:
		c, err := NewMongoCache(ctx, MongoConfig{
			URI:        cfg.MongoURI,
			Database:   cfg.MongoDatabase,
			Collection: cfg.MongoCollection,
		})
		if err != nil {
			return nil, err
		}
		return c, nil
	}
	return nil, fmt.Errorf("unknown cache backend %q (must be one of: file, redis, mongo, none)", cfg.Backend)
}

package pipeline

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/matzehuels/geoprofile/pkg/cache"
	"github.com/matzehuels/geoprofile/pkg/errors"
	gpio "github.com/matzehuels/geoprofile/pkg/io"
	"github.com/matzehuels/geoprofile/pkg/observability"
	"github.com/matzehuels/geoprofile/pkg/section"
)

// Runner encapsulates pipeline execution with caching.
// Both CLI and API use it so caching behaves the same everywhere.
//
// The Runner is stateless except for the cache and logger - it doesn't
// store pipeline results. Multiple goroutines can safely use the same
// Runner with different options.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:  c,
		Keyer:  keyer,
		Logger: logger,
	}
}

// Execute runs check → select → assemble → render with caching.
func (r *Runner) Execute(ctx context.Context, in *gpio.Input, opts Options) (*Result, error) {
	if in == nil {
		return nil, errors.New(errors.ErrCodeInvalidInput, "no input document")
	}
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}

	result := &Result{
		RunID:     uuid.NewString(),
		Artifacts: make(map[string][]byte),
	}
	logger := opts.Logger.With("run", result.RunID[:8])
	opts.Logger = logger

	if hash, err := InputHash(in); err == nil {
		result.InputHash = hash
	}
	result.Stats.Columns = len(in.Columns)

	// Stage 1: Check
	result.Warnings = section.Check(in.Columns)
	for _, w := range result.Warnings {
		logger.Warn(w.Message, "kind", w.Kind)
	}

	// Stages 2 and 3: Select and Assemble
	assembleStart := time.Now()
	s, hit, err := r.AssembleWithCacheInfo(ctx, in, opts)
	if err != nil {
		return nil, err
	}
	result.Section = s
	result.Stats.Selected = len(s.Entries)
	result.Stats.AssembleTime = time.Since(assembleStart)
	result.CacheInfo.SectionHit = hit
	result.Extents, result.Width = section.Extents(s, in.Line, opts.X0)

	logger.Info("assembled section",
		"policy", s.Policy,
		"columns", len(s.Entries),
		"length", s.Length,
		"cached", hit,
		"duration", result.Stats.AssembleTime)

	// Stage 4: Render
	renderStart := time.Now()
	artifacts, renderHit, err := r.RenderWithCacheInfo(ctx, s, in, opts)
	if err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	result.Artifacts = artifacts
	result.Stats.RenderTime = time.Since(renderStart)
	result.CacheInfo.RenderHit = renderHit

	logger.Info("rendered outputs",
		"formats", opts.Formats,
		"cached", renderHit,
		"duration", result.Stats.RenderTime)

	return result, nil
}

// AssembleWithCacheInfo selects and assembles a section with caching and
// returns cache hit info.
func (r *Runner) AssembleWithCacheInfo(ctx context.Context, in *gpio.Input, opts Options) (section.OrderedSection, bool, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return section.OrderedSection{}, false, err
	}

	hash, err := InputHash(in)
	if err != nil {
		// Input that cannot be encoded (NaN coordinates) is rejected by Assemble.
		s, err := Assemble(ctx, in, opts)
		return s, false, err
	}
	cacheKey := r.Keyer.SectionKey(hash, opts.SectionKeyOpts())

	if !opts.Refresh {
		if data, hit, err := r.Cache.Get(ctx, cacheKey); err == nil && hit {
			var s section.OrderedSection
			if err := json.Unmarshal(data, &s); err == nil {
				observability.Cache().OnCacheHit(ctx, "section")
				return s, true, nil
			}
			// If deserialization fails, fall through to recompute
		} else if err != nil {
			opts.Logger.Debug("cache read failed", "error", err)
		}
		observability.Cache().OnCacheMiss(ctx, "section")
	}

	s, err := Assemble(ctx, in, opts)
	if err != nil {
		return section.OrderedSection{}, false, err
	}

	if data, err := json.Marshal(s); err == nil {
		if err := r.Cache.Set(ctx, cacheKey, data, cache.TTLSection); err != nil {
			opts.Logger.Debug("cache write failed", "error", err)
		} else {
			observability.Cache().OnCacheSet(ctx, "section", len(data))
		}
	}
	return s, false, nil
}

// RenderWithCacheInfo generates artifacts with caching and returns cache
// hit info. The hit is true only when every format came from cache.
func (r *Runner) RenderWithCacheInfo(ctx context.Context, s section.OrderedSection, in *gpio.Input, opts Options) (map[string][]byte, bool, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, false, err
	}

	sectionData, err := json.Marshal(s)
	if err != nil {
		return nil, false, fmt.Errorf("serialize section for cache key: %w", err)
	}
	// The line takes part in the overlay, so it is part of the key.
	sectionData = append(sectionData, lineKey(in)...)
	sectionHash := cache.Hash(sectionData)

	if !opts.Refresh {
		artifacts := make(map[string][]byte, len(opts.Formats))
		for _, format := range opts.Formats {
			key := r.Keyer.ArtifactKey(sectionHash, opts.ArtifactKeyOpts(format))
			data, hit, err := r.Cache.Get(ctx, key)
			if err != nil || !hit {
				break
			}
			artifacts[format] = data
		}
		if len(artifacts) == len(opts.Formats) {
			observability.Cache().OnCacheHit(ctx, "artifact")
			return artifacts, true, nil
		}
		observability.Cache().OnCacheMiss(ctx, "artifact")
	}

	rendered, err := Render(ctx, s, in, opts)
	if err != nil {
		return nil, false, err
	}

	for format, data := range rendered {
		key := r.Keyer.ArtifactKey(sectionHash, opts.ArtifactKeyOpts(format))
		if err := r.Cache.Set(ctx, key, data, cache.TTLArtifact); err == nil {
			observability.Cache().OnCacheSet(ctx, "artifact", len(data))
		}
	}
	return rendered, false, nil
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

// applyLogger sets the runner's logger on options if not already set.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}

// InputHash returns the content hash of an input document.
func InputHash(in *gpio.Input) (string, error) {
	var buf bytes.Buffer
	if err := gpio.WriteInput(in, &buf); err != nil {
		return "", errors.Wrap(errors.ErrCodeInternal, err, "hash input")
	}
	return cache.Hash(buf.Bytes()), nil
}

func lineKey(in *gpio.Input) []byte {
	var buf bytes.Buffer
	for _, v := range in.Line.Vertices() {
		fmt.Fprintf(&buf, "%g,%g;", v.X, v.Y)
	}
	return buf.Bytes()
}

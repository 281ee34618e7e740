package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/matzehuels/genetrack/pkg/cache"
	"github.com/matzehuels/genetrack/pkg/genome"
	"github.com/matzehuels/genetrack/pkg/observability"
	"github.com/matzehuels/genetrack/pkg/track/layout"
)

// Runner encapsulates pipeline execution with caching.
// Both the CLI and the HTTP server use it to avoid duplicating caching logic.
//
// The Runner is stateless except for the cache and logger; it doesn't
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

// Execute runs the complete load → layout → render pipeline with caching.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Result, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}

	result := &Result{
		LayoutID:  uuid.NewString(),
		Artifacts: make(map[string][]byte),
	}

	// Stage 1: Load
	loadStart := time.Now()
	features, loadHit, err := r.LoadWithCacheInfo(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("load: %w", err)
	}
	result.Features = features
	result.FeaturesHash, _ = hashFeatures(features)
	result.Stats.FeatureCount = len(features)
	result.Stats.LoadTime = time.Since(loadStart)
	result.CacheInfo.LoadHit = loadHit

	r.Logger.Info("loaded features",
		"source", opts.Source.Name(),
		"features", len(features),
		"duration", result.Stats.LoadTime)

	// Stage 2: Layout
	layoutStart := time.Now()
	l, layoutHit, err := r.ComputeLayoutWithCacheInfo(ctx, features, opts)
	if err != nil {
		return nil, fmt.Errorf("layout: %w", err)
	}
	result.Layout = l
	result.Stats.LayoutTime = time.Since(layoutStart)
	result.Stats.Visible = len(l.Placements)
	result.Stats.Hidden = l.Hidden
	result.Stats.Malformed = l.Malformed
	result.Stats.RowsUsed = l.RowsUsed()
	result.CacheInfo.LayoutHit = layoutHit

	r.Logger.Info("computed layout",
		"id", result.LayoutID,
		"region", opts.Region.String(),
		"visible", len(l.Placements),
		"hidden", l.Hidden,
		"duration", result.Stats.LayoutTime)
	if l.Malformed > 0 {
		r.Logger.Warn("skipped malformed features", "count", l.Malformed)
	}

	// Stage 3: Render
	renderStart := time.Now()
	artifacts, renderHit, err := r.RenderWithCacheInfo(ctx, l, opts)
	if err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	result.Artifacts = artifacts
	result.Stats.RenderTime = time.Since(renderStart)
	result.CacheInfo.RenderHit = renderHit

	r.Logger.Info("rendered outputs",
		"formats", opts.Formats,
		"duration", result.Stats.RenderTime)

	return result, nil
}

// LoadWithCacheInfo fetches features from the configured source with
// caching and returns cache hit info. Refresh skips the cache read.
func (r *Runner) LoadWithCacheInfo(ctx context.Context, opts Options) ([]genome.Feature, bool, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateForLoad(); err != nil {
		return nil, false, err
	}

	hooks := observability.Pipeline()
	name := opts.Source.Name()
	cacheKey, keyErr := r.Keyer.FeaturesKey(name, opts.Region)
	r.uncacheable("features", keyErr)

	if !opts.Refresh && keyErr == nil {
		if features, ok := r.cachedFeatures(ctx, cacheKey); ok {
			return features, true, nil
		}
	}

	start := time.Now()
	hooks.OnLoadStart(ctx, name)
	features, err := opts.Source.Features(ctx, opts.Region)
	hooks.OnLoadComplete(ctx, name, len(features), time.Since(start), err)
	if err != nil {
		return nil, false, err
	}

	if keyErr == nil {
		if data, err := json.Marshal(features); err == nil {
			r.set(ctx, "features", cacheKey, data, cache.TTLFeatures)
		}
	}
	return features, false, nil
}

// Load is a convenience wrapper that calls LoadWithCacheInfo and discards
// the cache hit info.
func (r *Runner) Load(ctx context.Context, opts Options) ([]genome.Feature, error) {
	features, _, err := r.LoadWithCacheInfo(ctx, opts)
	return features, err
}

// ComputeLayoutWithCacheInfo computes a layout with caching and returns
// cache hit info.
func (r *Runner) ComputeLayoutWithCacheInfo(ctx context.Context, features []genome.Feature, opts Options) (layout.Layout, bool, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateForLayout(); err != nil {
		return layout.Layout{}, false, err
	}

	hooks := observability.Pipeline()
	region := opts.Region.String()
	featuresHash, keyErr := hashFeatures(features)
	var cacheKey string
	if keyErr == nil {
		cacheKey, keyErr = r.Keyer.LayoutKey(featuresHash, opts.LayoutKeyOpts())
	}
	r.uncacheable("layout", keyErr)

	if keyErr == nil {
		if data, hit := r.get(ctx, "layout", cacheKey); hit {
			cached, err := UnmarshalLayout(data)
			if err == nil {
				return cached, true, nil
			}
			r.Logger.Debug("discarding unreadable cached layout", "error", err)
		}
	}

	start := time.Now()
	hooks.OnLayoutStart(ctx, region, len(features))
	l := GenerateLayout(features, opts)
	hooks.OnLayoutComplete(ctx, region, l.Hidden, time.Since(start), nil)

	if keyErr == nil {
		if data, err := MarshalLayout(l); err == nil {
			r.set(ctx, "layout", cacheKey, data, cache.TTLLayout)
		}
	}
	return l, false, nil
}

// ComputeLayout is a convenience wrapper that calls
// ComputeLayoutWithCacheInfo and discards the cache hit info.
func (r *Runner) ComputeLayout(ctx context.Context, features []genome.Feature, opts Options) (layout.Layout, error) {
	l, _, err := r.ComputeLayoutWithCacheInfo(ctx, features, opts)
	return l, err
}

// RenderWithCacheInfo generates artifacts with caching and returns cache
// hit info. The hit flag is true only when every format came from cache.
func (r *Runner) RenderWithCacheInfo(ctx context.Context, l layout.Layout, opts Options) (map[string][]byte, bool, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateForRender(); err != nil {
		return nil, false, err
	}

	// Formats without a key are rendered every time.
	keys := make(map[string]string, len(opts.Formats))
	layoutData, err := MarshalLayout(l)
	r.uncacheable("artifact", err)
	if err == nil {
		layoutHash := cache.Hash(layoutData)
		for _, format := range opts.Formats {
			key, err := r.Keyer.ArtifactKey(layoutHash, opts.ArtifactKeyOpts(format))
			r.uncacheable("artifact", err)
			if err == nil {
				keys[format] = key
			}
		}
	}

	artifacts := make(map[string][]byte, len(opts.Formats))
	var missing []string
	for _, format := range opts.Formats {
		key, ok := keys[format]
		if !ok {
			missing = append(missing, format)
			continue
		}
		if data, hit := r.get(ctx, "artifact", key); hit {
			artifacts[format] = data
		} else {
			missing = append(missing, format)
		}
	}
	if len(missing) == 0 {
		return artifacts, true, nil
	}

	hooks := observability.Pipeline()
	start := time.Now()
	hooks.OnRenderStart(ctx, missing)
	renderOpts := opts
	renderOpts.Formats = missing
	rendered, err := Render(ctx, l, renderOpts)
	hooks.OnRenderComplete(ctx, missing, time.Since(start), err)
	if err != nil {
		return nil, false, err
	}

	for format, data := range rendered {
		if key, ok := keys[format]; ok {
			r.set(ctx, "artifact", key, data, cache.TTLArtifact)
		}
		artifacts[format] = data
	}
	return artifacts, false, nil
}

// Render is a convenience wrapper that calls RenderWithCacheInfo and
// discards the cache hit info.
func (r *Runner) Render(ctx context.Context, l layout.Layout, opts Options) (map[string][]byte, error) {
	artifacts, _, err := r.RenderWithCacheInfo(ctx, l, opts)
	return artifacts, err
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

func (r *Runner) cachedFeatures(ctx context.Context, key string) ([]genome.Feature, bool) {
	data, hit := r.get(ctx, "features", key)
	if !hit {
		return nil, false
	}
	var features []genome.Feature
	if err := json.Unmarshal(data, &features); err != nil {
		r.Logger.Debug("discarding unreadable cached features", "error", err)
		return nil, false
	}
	return features, true
}

// get reads from the cache and reports the lookup to the cache hooks.
// Cache errors are logged and treated as misses.
func (r *Runner) get(ctx context.Context, keyType, key string) ([]byte, bool) {
	data, hit, err := r.Cache.Get(ctx, key)
	if err != nil {
		r.Logger.Debug("cache read failed", "type", keyType, "error", err)
	}
	if err != nil || !hit {
		observability.Cache().OnCacheMiss(ctx, keyType)
		return nil, false
	}
	observability.Cache().OnCacheHit(ctx, keyType)
	return data, true
}

func (r *Runner) set(ctx context.Context, keyType, key string, data []byte, ttl time.Duration) {
	if err := r.Cache.Set(ctx, key, data, ttl); err != nil {
		r.Logger.Debug("cache write failed", "type", keyType, "error", err)
		return
	}
	observability.Cache().OnCacheSet(ctx, keyType, len(data))
}

// applyLogger sets the runner's logger on options if not already set.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}

// uncacheable logs a stage whose inputs have no cache key.
func (r *Runner) uncacheable(keyType string, err error) {
	if err != nil {
		r.Logger.Debug("bypassing cache", "type", keyType, "error", err)
	}
}

// hashFeatures returns the content hash of features. Features whose
// metadata cannot be encoded have no hash.
func hashFeatures(features []genome.Feature) (string, error) {
	data, err := json.Marshal(features)
	if err != nil {
		return "", fmt.Errorf("hash features: %w", err)
	}
	return cache.Hash(data), nil
}

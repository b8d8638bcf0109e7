package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/cardmap/pkg/cache"
	"github.com/matzehuels/cardmap/pkg/layout"
	"github.com/matzehuels/cardmap/pkg/observability"
	"github.com/matzehuels/cardmap/pkg/panel"
	"github.com/matzehuels/cardmap/pkg/render"
	"github.com/matzehuels/cardmap/pkg/vault"
)

// Cache key types reported to observability hooks.
const (
	keyTypeLayout   = "layout"
	keyTypeArtifact = "artifact"
)

// Runner encapsulates pipeline execution with caching.
// Both CLI and API use this to avoid duplicating caching logic.
//
// The Runner is stateless except for the cache and logger - it doesn't
// store pipeline results. Multiple goroutines can safely use the same
// Runner with different options.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger

	// Registry builds views for layout computation. Nil means a registry
	// with only the navigation view.
	Registry *panel.Registry

	// TTL overrides the default cache lifetimes when positive.
	TTL time.Duration
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
		Cache:    c,
		Keyer:    keyer,
		Logger:   logger,
		Registry: panel.NewDefaultRegistry(logger),
	}
}

// Execute runs the complete list → layout → render pipeline with caching.
func (r *Runner) Execute(ctx context.Context, src panel.ItemSource, opts Options) (*Result, error) {
	r.applyLogger(&opts)
	if err := opts.Validate(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}

	result := &Result{}

	// Stages 1 and 2: List and layout
	layoutStart := time.Now()
	items, itemsHash, err := r.listItems(ctx, src, opts)
	if err != nil {
		return nil, fmt.Errorf("list items: %w", err)
	}
	l, layoutHit, err := r.layoutItems(ctx, items, itemsHash, opts)
	if err != nil {
		return nil, fmt.Errorf("layout: %w", err)
	}
	result.Layout = l
	result.ItemsHash = itemsHash
	result.Stats.ItemCount = len(items)
	result.Stats.Degraded = l.DegradedCount()
	result.Stats.LayoutTime = time.Since(layoutStart)
	result.CacheInfo.LayoutHit = layoutHit

	r.Logger.Info("computed layout",
		"cards", len(l.Cards),
		"degraded", result.Stats.Degraded,
		"cached", layoutHit,
		"duration", result.Stats.LayoutTime)

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
		"cached", renderHit,
		"duration", result.Stats.RenderTime)

	return result, nil
}

// ComputeLayoutWithCacheInfo lists the items of src and lays them out with
// caching. It returns whether the layout came from cache.
func (r *Runner) ComputeLayoutWithCacheInfo(ctx context.Context, src panel.ItemSource, opts Options) (layout.Layout, bool, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateForLayout(); err != nil {
		return layout.Layout{}, false, err
	}

	items, itemsHash, err := r.listItems(ctx, src, opts)
	if err != nil {
		return layout.Layout{}, false, err
	}
	return r.layoutItems(ctx, items, itemsHash, opts)
}

// ComputeLayout is a convenience wrapper that calls ComputeLayoutWithCacheInfo and discards the cache hit info.
func (r *Runner) ComputeLayout(ctx context.Context, src panel.ItemSource, opts Options) (layout.Layout, error) {
	l, _, err := r.ComputeLayoutWithCacheInfo(ctx, src, opts)
	return l, err
}

// listItems fetches and caps the item list and hashes it for cache keys.
func (r *Runner) listItems(ctx context.Context, src panel.ItemSource, opts Options) (vault.Static, string, error) {
	var items vault.Static
	if src != nil {
		listed, err := src.ListItems(ctx)
		if err != nil {
			return nil, "", err
		}
		items = vault.Static(listed).Limit(opts.MaxItems)
	}
	if err := items.Validate(); err != nil {
		return nil, "", err
	}

	hash, err := cache.HashJSON(items)
	if err != nil {
		return nil, "", err
	}
	return items, hash, nil
}

func (r *Runner) layoutItems(ctx context.Context, items vault.Static, itemsHash string, opts Options) (layout.Layout, bool, error) {
	hooks := observability.Cache()
	cacheKey := r.Keyer.LayoutKey(itemsHash, opts.LayoutKeyOpts())

	// Try cache first (unless refresh requested)
	if !opts.Refresh {
		if data, hit, err := r.Cache.Get(ctx, cacheKey); err == nil && hit {
			if cached, err := layout.Unmarshal(data); err == nil {
				hooks.OnCacheHit(ctx, keyTypeLayout)
				opts.Logger.Debug("layout cache hit", "key", cacheKey)
				return cached, true, nil
			}
			// If deserialization fails, fall through to recompute
		} else if err != nil {
			opts.Logger.Warn("layout cache read failed", "error", err)
		}
		hooks.OnCacheMiss(ctx, keyTypeLayout)
	}

	l, err := r.openView(ctx, items, opts)
	if err != nil {
		return layout.Layout{}, false, err
	}

	if data, err := layout.Marshal(l); err == nil {
		if err := r.Cache.Set(ctx, cacheKey, data, r.ttl(cache.TTLLayout)); err != nil {
			opts.Logger.Warn("layout cache write failed", "error", err)
		} else {
			hooks.OnCacheSet(ctx, keyTypeLayout, len(data))
		}
	}
	return l, false, nil
}

// OpenPanel lists the items of src and opens a view over them. The view
// stays open; the caller hands it back with Release.
func (r *Runner) OpenPanel(ctx context.Context, src panel.ItemSource, opts Options) (panel.View, layout.Layout, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateForLayout(); err != nil {
		return nil, layout.Layout{}, err
	}
	items, _, err := r.listItems(ctx, src, opts)
	if err != nil {
		return nil, layout.Layout{}, err
	}
	return r.open(ctx, items, opts)
}

// Release closes a view returned by OpenPanel.
func (r *Runner) Release(ctx context.Context, v panel.View) error {
	return r.registry(nil).Release(ctx, v)
}

func (r *Runner) registry(logger *log.Logger) *panel.Registry {
	if r.Registry != nil {
		return r.Registry
	}
	return panel.NewDefaultRegistry(logger)
}

func (r *Runner) open(ctx context.Context, items vault.Static, opts Options) (panel.View, layout.Layout, error) {
	reg := r.registry(opts.Logger)
	v, err := reg.Open(ctx, opts.ViewType, panel.Host{
		Bounds:      panel.FixedBounds(opts.Bounds()),
		Items:       items,
		Config:      opts.Placement,
		CenterLabel: opts.CenterLabel,
		Logger:      opts.Logger,
	})
	if err != nil {
		return nil, layout.Layout{}, err
	}

	l, err := snapshot(v)
	if err != nil {
		_ = reg.Release(ctx, v)
		return nil, layout.Layout{}, err
	}
	return v, l, nil
}

func snapshot(v panel.View) (layout.Layout, error) {
	lv, ok := v.(panel.LayoutView)
	if !ok {
		return layout.Layout{}, fmt.Errorf("view %q does not expose a layout", v.Type())
	}
	l, ok := lv.Layout()
	if !ok {
		return layout.Layout{}, fmt.Errorf("view %q produced no layout", v.Type())
	}
	return l, nil
}

// openView opens a view for the items, snapshots its layout and closes it.
func (r *Runner) openView(ctx context.Context, items vault.Static, opts Options) (layout.Layout, error) {
	v, l, err := r.open(ctx, items, opts)
	if err != nil {
		return layout.Layout{}, err
	}
	if err := r.Release(ctx, v); err != nil {
		opts.Logger.Warn("close view", "type", v.Type(), "error", err)
	}
	return l, nil
}

// RenderWithCacheInfo generates artifacts with caching and returns cache hit info.
func (r *Runner) RenderWithCacheInfo(ctx context.Context, l layout.Layout, opts Options) (map[string][]byte, bool, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateForRender(); err != nil {
		return nil, false, err
	}
	hooks := observability.Cache()

	// Compute cache key from layout data
	layoutData, err := layout.Marshal(l)
	if err != nil {
		return nil, false, fmt.Errorf("serialize layout for cache key: %w", err)
	}
	layoutHash := cache.Hash(layoutData)

	// Try to get all formats from cache
	if !opts.Refresh {
		artifacts := make(map[string][]byte)
		for _, format := range opts.Formats {
			cacheKey := r.Keyer.ArtifactKey(layoutHash, opts.ArtifactKeyOpts(format))
			data, hit, err := r.Cache.Get(ctx, cacheKey)
			if err != nil || !hit {
				hooks.OnCacheMiss(ctx, keyTypeArtifact)
				break
			}
			artifacts[format] = data
		}
		if len(artifacts) == len(dedupe(opts.Formats)) {
			hooks.OnCacheHit(ctx, keyTypeArtifact)
			return artifacts, true, nil // All artifacts from cache
		}
	}

	pipelineHooks := observability.Pipeline()
	pipelineHooks.OnRenderStart(ctx, opts.Formats)
	start := time.Now()

	rendered, err := render.Render(ctx, l, opts.Formats, opts.SVGOptions()...)
	pipelineHooks.OnRenderComplete(ctx, opts.Formats, time.Since(start), err)
	if err != nil {
		return nil, false, err
	}

	// Cache each format
	for format, data := range rendered {
		cacheKey := r.Keyer.ArtifactKey(layoutHash, opts.ArtifactKeyOpts(format))
		if err := r.Cache.Set(ctx, cacheKey, data, r.ttl(cache.TTLArtifact)); err == nil {
			hooks.OnCacheSet(ctx, keyTypeArtifact, len(data))
		}
	}

	return rendered, false, nil // Cache miss
}

// Render is a convenience wrapper that calls RenderWithCacheInfo and discards the cache hit info.
func (r *Runner) Render(ctx context.Context, l layout.Layout, opts Options) (map[string][]byte, error) {
	artifacts, _, err := r.RenderWithCacheInfo(ctx, l, opts)
	return artifacts, err
}

// Close releases resources held by the runner (the cache and open views).
func (r *Runner) Close() error {
	if r.Registry != nil {
		_ = r.Registry.Close(context.Background())
	}
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

func (r *Runner) ttl(def time.Duration) time.Duration {
	if r.TTL > 0 {
		return r.TTL
	}
	return def
}

// applyLogger sets the runner's logger on options if not already set.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}

func dedupe(formats []string) map[string]bool {
	seen := make(map[string]bool, len(formats))
	for _, f := range formats {
		seen[f] = true
	}
	return seen
}

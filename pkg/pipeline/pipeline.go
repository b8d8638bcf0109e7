// Package pipeline runs the list → layout → render pipeline for card panels.
//
// This package is shared by the CLI and the HTTP service so both compute
// layouts and artifacts the same way and share the same cache keys.
//
// # Architecture
//
// The pipeline consists of three stages:
//
//  1. List: Ask an item source (a vault, a posted list) for the ordered items
//  2. Layout: Open a panel view that places the center and every item
//  3. Render: Generate output in various formats (SVG, JSON, DOT, PNG)
//
// # Usage
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	opts := pipeline.Options{
//	    Width:   1000,
//	    Height:  800,
//	    Formats: []string{"svg"},
//	}
//	result, err := runner.Execute(ctx, vault.Source{Root: "~/notes"}, opts)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	svg := result.Artifacts["svg"]
//
// Run individual stages:
//
//	l, err := runner.ComputeLayout(ctx, src, opts)
//	artifacts, err := runner.Render(ctx, l, opts)
package pipeline

import (
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/cardmap/pkg/cache"
	cmerrors "github.com/matzehuels/cardmap/pkg/errors"
	"github.com/matzehuels/cardmap/pkg/layout"
	"github.com/matzehuels/cardmap/pkg/panel"
	"github.com/matzehuels/cardmap/pkg/placement"
	"github.com/matzehuels/cardmap/pkg/render"
)

// =============================================================================
// Default Values - Single Source of Truth for CLI and API
// =============================================================================

const (
	// DefaultWidth is the default container width.
	DefaultWidth = 1000.0

	// DefaultHeight is the default container height.
	DefaultHeight = 800.0

	// DefaultMaxItems caps how many items are placed around the center.
	DefaultMaxItems = 5

	// DefaultViewType is the view opened to compute layouts.
	DefaultViewType = panel.NavigationViewType
)

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options contains all configuration for the pipeline.
// This struct supports JSON serialization for API requests.
type Options struct {
	// Layout options
	ViewType    string           `json:"view_type,omitempty"`
	Width       float64          `json:"width,omitempty"`
	Height      float64          `json:"height,omitempty"`
	MaxItems    int              `json:"max_items,omitempty"`
	CenterLabel string           `json:"center_label,omitempty"`
	Placement   placement.Config `json:"placement,omitempty"`

	// Render options
	Formats    []string `json:"formats,omitempty"`
	Background string   `json:"background,omitempty"`
	// ShowBoundary outlines the padded boundary in SVG output.
	ShowBoundary bool `json:"show_boundary,omitempty"`

	// Refresh bypasses cached layouts and artifacts.
	Refresh bool `json:"refresh,omitempty"`

	// Runtime options (not serialized)
	Logger *log.Logger `json:"-"`
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// Layout is the computed card arrangement.
	Layout layout.Layout

	// ItemsHash identifies the item list the layout was computed from.
	ItemsHash string

	// Artifacts contains rendered outputs keyed by format.
	Artifacts map[string][]byte

	// Stats contains timing and size information.
	Stats Stats

	// CacheInfo tracks which stages hit the cache.
	CacheInfo CacheInfo
}

// Stats contains pipeline execution statistics.
type Stats struct {
	ItemCount  int
	Degraded   int
	LayoutTime time.Duration
	RenderTime time.Duration
}

// CacheInfo tracks cache hits for each pipeline stage.
type CacheInfo struct {
	LayoutHit bool // Whether the layout came from cache
	RenderHit bool // Whether all artifacts came from cache
}

// =============================================================================
// Options Methods
// =============================================================================

// SetLayoutDefaults sets default values for layout computation.
func (o *Options) SetLayoutDefaults() {
	if o.ViewType == "" {
		o.ViewType = DefaultViewType
	}
	if o.Width == 0 {
		o.Width = DefaultWidth
	}
	if o.Height == 0 {
		o.Height = DefaultHeight
	}
	if o.MaxItems == 0 {
		o.MaxItems = DefaultMaxItems
	}
	if o.CenterLabel == "" {
		o.CenterLabel = panel.DefaultCenterLabel
	}
	o.Placement = o.Placement.WithDefaults()
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// ValidateForLayout validates and sets defaults for layout computation.
func (o *Options) ValidateForLayout() error {
	o.SetLayoutDefaults()
	if err := cmerrors.ValidateBounds(o.Width, o.Height); err != nil {
		return err
	}
	if o.MaxItems < 0 {
		return cmerrors.New(cmerrors.ErrCodeInvalidInput, "max_items must not be negative (got %d)", o.MaxItems)
	}
	if err := cmerrors.ValidateLabel(o.CenterLabel); err != nil {
		return err
	}
	if err := o.Placement.Validate(); err != nil {
		return cmerrors.Wrap(cmerrors.ErrCodeInvalidConfig, err, "placement")
	}
	return nil
}

// SetRenderDefaults sets default values for rendering.
func (o *Options) SetRenderDefaults() {
	if len(o.Formats) == 0 {
		o.Formats = []string{render.FormatSVG}
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// ValidateForRender validates and sets defaults for rendering.
func (o *Options) ValidateForRender() error {
	o.SetRenderDefaults()
	return render.ValidateFormats(o.Formats)
}

// Validate checks and defaults the options for the full pipeline.
// Calling it more than once has the same effect as calling it once.
func (o *Options) Validate() error {
	if err := o.ValidateForLayout(); err != nil {
		return err
	}
	return o.ValidateForRender()
}

// Bounds returns the container bounds.
func (o *Options) Bounds() placement.Bounds {
	return placement.Bounds{Width: o.Width, Height: o.Height}
}

// LayoutKeyOpts returns cache key options for layout computation.
func (o *Options) LayoutKeyOpts() cache.LayoutKeyOpts {
	return cache.LayoutKeyOpts{
		ViewType:    o.ViewType,
		Width:       o.Width,
		Height:      o.Height,
		CenterLabel: o.CenterLabel,
		Placement:   o.Placement,
	}
}

// ArtifactKeyOpts returns cache key options for artifact rendering.
func (o *Options) ArtifactKeyOpts(format string) cache.ArtifactKeyOpts {
	style := ""
	if format == render.FormatSVG {
		style = o.Background
		if o.ShowBoundary {
			style += "|boundary"
		}
	}
	return cache.ArtifactKeyOpts{Format: format, Style: style}
}

// SVGOptions returns the SVG render options selected by o.
func (o *Options) SVGOptions() []render.SVGOption {
	var opts []render.SVGOption
	if o.Background != "" {
		opts = append(opts, render.WithBackground(o.Background))
	}
	if o.ShowBoundary {
		opts = append(opts, render.WithBoundary(o.Placement.BoundaryPadding))
	}
	return opts
}

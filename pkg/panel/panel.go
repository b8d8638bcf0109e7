// Package panel adapts the placement engine to a host application.
//
// # Overview
//
// The host (the CLI, the terminal panel, the HTTP service) opens views
// through a [Registry]. A view implements the [View] capability interface:
// the host calls OnOpen when the panel appears, Render to draw it and
// OnClose when it goes away. The engine in pkg/placement knows nothing
// about any of this.
//
//	reg := panel.NewRegistry(logger)
//	defer reg.Close(ctx)
//	_ = reg.Register(panel.NavigationViewType, panel.NewNavigationView)
//
//	v, err := reg.Open(ctx, panel.NavigationViewType, panel.Host{
//	    Bounds: panel.FixedBounds{Width: 1000, Height: 800},
//	    Items:  vault.Source{Root: "~/notes", Limit: 5},
//	})
//
// # Collaborators
//
// A [Host] bundles what a view consumes: a [BoundsProvider] for the current
// container size and an [ItemSource] for the ordered item list. Sources
// cap the list themselves; the view places whatever it receives.
package panel

import (
	"context"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/cardmap/pkg/layout"
	"github.com/matzehuels/cardmap/pkg/placement"
)

// DefaultCenterLabel is the title of the center card.
const DefaultCenterLabel = "Center"

// Item is an entry supplied by an [ItemSource].
type Item struct {
	ID    string `json:"id"`
	Label string `json:"label"`
}

// ItemSource lists the items to arrange around the center card.
// The returned order is the placement order.
type ItemSource interface {
	ListItems(ctx context.Context) ([]Item, error)
}

// BoundsProvider reports the current container size.
type BoundsProvider interface {
	ContainerBounds() placement.Bounds
}

// FixedBounds is a BoundsProvider with constant dimensions.
type FixedBounds placement.Bounds

// ContainerBounds implements BoundsProvider.
func (b FixedBounds) ContainerBounds() placement.Bounds { return placement.Bounds(b) }

// Renderer receives positioned cards. RenderCenter is called once before
// RenderCard is called for each item in placement order.
type Renderer interface {
	RenderCenter(c layout.Card) error
	RenderCard(c layout.Card) error
}

// View is the capability interface a host drives.
type View interface {
	// Type is the identifier the view is registered under.
	Type() string
	// DisplayText is the human-readable title.
	DisplayText() string
	// Icon names the icon shown next to the title.
	Icon() string

	OnOpen(ctx context.Context) error
	OnClose(ctx context.Context) error
	Render(r Renderer) error
}

// Host bundles the collaborators a view is constructed with.
type Host struct {
	Bounds      BoundsProvider
	Items       ItemSource
	Config      placement.Config
	CenterLabel string
	Logger      *log.Logger
}

// Factory builds a view for a host.
type Factory func(h Host) View

// withDefaults fills unset optional fields.
func (h Host) withDefaults() Host {
	if h.CenterLabel == "" {
		h.CenterLabel = DefaultCenterLabel
	}
	if h.Logger == nil {
		h.Logger = log.Default()
	}
	h.Config = h.Config.WithDefaults()
	return h
}

// LayoutView is implemented by views that expose their computed layout.
type LayoutView interface {
	View
	Layout() (layout.Layout, bool)
}

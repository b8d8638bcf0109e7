package panel

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/matzehuels/cardmap/pkg/layout"
	"github.com/matzehuels/cardmap/pkg/observability"
	"github.com/matzehuels/cardmap/pkg/placement"
)

// Navigation view identity.
const (
	NavigationViewType = "graph-navigation-view"
	NavigationViewText = "Graph Navigation"
	NavigationViewIcon = "map"
)

// CenterID identifies the center card in layouts.
const CenterID = "center"

// NavigationView shows a center card with item cards arranged around it.
// Each open of the view is one placement session: the center is placed
// first, then every item in source order avoiding all earlier cards.
type NavigationView struct {
	host Host

	mu     sync.Mutex
	engine *placement.Engine
	snap   layout.Layout
	opened bool
}

// NewNavigationView is the [Factory] for the navigation view.
func NewNavigationView(h Host) View {
	h = h.withDefaults()
	return &NavigationView{
		host:   h,
		engine: placement.NewEngine(h.Config),
	}
}

func (v *NavigationView) Type() string        { return NavigationViewType }
func (v *NavigationView) DisplayText() string { return NavigationViewText }
func (v *NavigationView) Icon() string        { return NavigationViewIcon }

// OnOpen computes the layout for the host's current bounds and items.
// Calling it again recomputes from scratch.
func (v *NavigationView) OnOpen(ctx context.Context) error {
	if v.host.Bounds == nil {
		return fmt.Errorf("navigation view: no bounds provider")
	}

	var items []Item
	if v.host.Items != nil {
		var err error
		if items, err = v.host.Items.ListItems(ctx); err != nil {
			return err
		}
	}

	v.mu.Lock()
	defer v.mu.Unlock()

	v.snap = v.place(ctx, v.host.Bounds.ContainerBounds(), items)
	v.opened = true
	return nil
}

// place runs one placement session. Callers hold v.mu.
func (v *NavigationView) place(ctx context.Context, b placement.Bounds, items []Item) layout.Layout {
	hooks := observability.Pipeline()
	hooks.OnLayoutStart(ctx, NavigationViewType, len(items))
	start := time.Now()

	logger := v.host.Logger
	cfg := v.engine.Config()
	v.engine.Clear()

	c := v.engine.PlaceCenter(CenterID, b)
	l := layout.Layout{
		ViewType: NavigationViewType,
		Width:    b.Width,
		Height:   b.Height,
		Center:   toCard(c, v.host.CenterLabel, placement.Result{}),
		Cards:    make([]layout.Card, 0, len(items)),
		Config:   cfg,
	}

	exhausted := 0
	for i, it := range items {
		placed, res := v.engine.Place(it.ID, i, len(items), b)
		label := it.Label
		if label == "" {
			label = it.ID
		}
		l.Cards = append(l.Cards, toCard(placed, label, res))

		if res.Exhausted {
			exhausted++
			logger.Debug("placement exhausted, using fallback",
				"item", it.ID, "attempts", res.Attempts, "x", res.Point.X, "y", res.Point.Y)
			hooks.OnPlacementExhausted(ctx, it.ID, res.Attempts)
		}
	}

	logger.Debug("layout computed", "items", len(items), "degraded", exhausted, "width", b.Width, "height", b.Height)
	hooks.OnLayoutComplete(ctx, NavigationViewType, len(items)-exhausted, exhausted, time.Since(start), nil)
	return l
}

func toCard(it placement.Item, label string, res placement.Result) layout.Card {
	p := it.Rect.Center()
	return layout.Card{
		ID:       it.ID,
		Label:    label,
		X:        p.X,
		Y:        p.Y,
		Width:    it.Rect.Width,
		Height:   it.Rect.Height,
		Attempts: res.Attempts,
		Degraded: res.Exhausted,
	}
}

// OnClose forgets the placed cards.
func (v *NavigationView) OnClose(context.Context) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.engine.Clear()
	v.snap = layout.Layout{}
	v.opened = false
	return nil
}

// Layout returns the current snapshot. ok is false before OnOpen.
func (v *NavigationView) Layout() (l layout.Layout, ok bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.snap, v.opened
}

// Render passes the center card and then every item card to r.
func (v *NavigationView) Render(r Renderer) error {
	l, ok := v.Layout()
	if !ok {
		return fmt.Errorf("navigation view: render before open")
	}
	if err := r.RenderCenter(l.Center); err != nil {
		return err
	}
	for _, c := range l.Cards {
		if err := r.RenderCard(c); err != nil {
			return err
		}
	}
	return nil
}

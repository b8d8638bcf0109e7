// Package layout defines the serialisable snapshot of a card panel.
//
// A [Layout] is what the panel hands to renderers, caches and API clients:
// the container size, the center card and every placed card, each anchored
// at its center point. It is a plain value; computing it is the job of
// pkg/panel and pkg/placement.
//
//	{
//	  "view_type": "graph-navigation-view",
//	  "width": 1000, "height": 800,
//	  "center": {"id": "center", "label": "Center", "x": 500, "y": 400, ...},
//	  "cards": [{"id": "notes/a.md", "label": "a", "x": 735.2, "y": 447.7, ...}]
//	}
package layout

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/matzehuels/cardmap/pkg/placement"
)

// Layout is a computed card arrangement for one container size.
type Layout struct {
	ViewType string  `json:"view_type"`
	Width    float64 `json:"width"`
	Height   float64 `json:"height"`

	Center Card   `json:"center"`
	Cards  []Card `json:"cards"`

	// Config is the placement tuning the layout was computed with.
	Config placement.Config `json:"config"`
}

// Card is one positioned card. X and Y are the card's CENTER.
type Card struct {
	ID     string  `json:"id"`
	Label  string  `json:"label"`
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`

	// Attempts is how many candidates the search tested (0 for the center).
	Attempts int `json:"attempts,omitempty"`
	// Degraded marks a card placed by the exhausted-search fallback; it may
	// overlap another card or cross the boundary padding.
	Degraded bool `json:"degraded,omitempty"`
}

// Rect returns the card's top-left anchored rectangle.
func (c Card) Rect() placement.Rect {
	return placement.RectAt(placement.Point{X: c.X, Y: c.Y}, placement.Size{Width: c.Width, Height: c.Height})
}

// Bounds returns the container bounds of the layout.
func (l Layout) Bounds() placement.Bounds {
	return placement.Bounds{Width: l.Width, Height: l.Height}
}

// All returns the center card followed by the placed cards.
func (l Layout) All() []Card {
	out := make([]Card, 0, len(l.Cards)+1)
	out = append(out, l.Center)
	return append(out, l.Cards...)
}

// DegradedCount returns the number of cards placed by the fallback.
func (l Layout) DegradedCount() int {
	n := 0
	for _, c := range l.Cards {
		if c.Degraded {
			n++
		}
	}
	return n
}

// =============================================================================
// Serialization API
// =============================================================================

// Marshal serializes a Layout to pretty-printed JSON bytes.
func Marshal(l Layout) ([]byte, error) {
	return json.MarshalIndent(l, "", "  ")
}

// Unmarshal deserializes JSON bytes into a Layout.
// It requires positive container dimensions and a center card.
func Unmarshal(data []byte) (Layout, error) {
	var l Layout
	if err := json.Unmarshal(data, &l); err != nil {
		return Layout{}, fmt.Errorf("unmarshal layout: %w", err)
	}

	if !l.Bounds().Valid() {
		return Layout{}, fmt.Errorf("layout must have positive width and height")
	}
	if l.Center.ID == "" {
		return Layout{}, fmt.Errorf("layout must contain a center card")
	}

	return l, nil
}

// WriteFile writes a Layout to a JSON file.
func WriteFile(l Layout, path string) error {
	data, err := Marshal(l)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// ReadFile reads a Layout from a JSON file.
func ReadFile(path string) (Layout, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Layout{}, fmt.Errorf("read %s: %w", path, err)
	}
	return Unmarshal(data)
}

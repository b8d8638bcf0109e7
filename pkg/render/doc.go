// Package render turns a card layout into output artifacts.
//
// # Formats
//
//   - svg: a standalone SVG drawn directly from the layout
//   - json: the layout snapshot itself
//   - dot: a Graphviz graph with every card pinned at its position
//   - png: the dot graph rendered by Graphviz (go-graphviz, no system install)
//
// [Render] produces several formats in one call:
//
//	artifacts, err := render.Render(ctx, l, []string{"svg", "png"})
//	os.WriteFile("panel.svg", artifacts["svg"], 0644)
//
// Cards are anchored at their center points. The center card is drawn
// in an accent color; cards placed by the exhausted-search fallback are
// outlined dashed so overlaps are visibly flagged.
package render

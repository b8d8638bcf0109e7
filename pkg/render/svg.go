package render

import (
	"bytes"
	"fmt"
	"unicode/utf8"

	"github.com/matzehuels/cardmap/pkg/layout"
)

// SVGOption configures SVG rendering.
type SVGOption func(*svgRenderer)

type svgRenderer struct {
	background string
	padding    float64
}

// WithBackground fills the canvas with color (any SVG paint value).
func WithBackground(color string) SVGOption {
	return func(r *svgRenderer) { r.background = color }
}

// WithBoundary outlines the usable area inside the given padding.
func WithBoundary(padding float64) SVGOption {
	return func(r *svgRenderer) { r.padding = padding }
}

const (
	cardRadius  = 8.0
	cardFill    = "#ffffff"
	cardStroke  = "#4a5568"
	centerFill  = "#ebf4ff"
	centerStrok = "#3182ce"
	fontFamily  = "Inter, Helvetica, Arial, sans-serif"
)

// RenderSVG draws the layout at its container size. Cards are drawn in
// placement order, center first, so later cards paint over earlier ones
// when a degraded placement overlaps.
func RenderSVG(l layout.Layout, opts ...SVGOption) []byte {
	var r svgRenderer
	for _, opt := range opts {
		opt(&r)
	}

	var buf bytes.Buffer
	fmt.Fprintf(&buf, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.1f %.1f" width="%.0f" height="%.0f">`+"\n",
		l.Width, l.Height, l.Width, l.Height)

	if r.background != "" {
		fmt.Fprintf(&buf, `  <rect width="100%%" height="100%%" fill="%s"/>`+"\n", escapeXML(r.background))
	}
	if r.padding > 0 {
		fmt.Fprintf(&buf, `  <rect class="boundary" x="%.1f" y="%.1f" width="%.1f" height="%.1f" fill="none" stroke="#cbd5e0" stroke-dasharray="4 4"/>`+"\n",
			r.padding, r.padding, max(0, l.Width-2*r.padding), max(0, l.Height-2*r.padding))
	}

	renderCard(&buf, l.Center, true)
	for _, c := range l.Cards {
		renderCard(&buf, c, false)
	}

	buf.WriteString("</svg>\n")
	return buf.Bytes()
}

func renderCard(buf *bytes.Buffer, c layout.Card, center bool) {
	rect := c.Rect()
	fill, stroke, width := cardFill, cardStroke, 1.5
	class := "card"
	if center {
		fill, stroke, width = centerFill, centerStrok, 2.5
		class = "card center"
	}
	dash := ""
	if c.Degraded {
		dash = ` stroke-dasharray="6 4"`
		class += " degraded"
	}

	fmt.Fprintf(buf, `  <g class="%s" data-id="%s">`+"\n", class, escapeXML(c.ID))
	fmt.Fprintf(buf, `    <rect x="%.1f" y="%.1f" width="%.1f" height="%.1f" rx="%.0f" fill="%s" stroke="%s" stroke-width="%.1f"%s/>`+"\n",
		rect.X, rect.Y, rect.Width, rect.Height, cardRadius, fill, stroke, width, dash)

	size := fontSize(rect.Width, rect.Height, utf8.RuneCountInString(c.Label))
	label := truncateLabel(c.Label, rect.Width, size)
	fmt.Fprintf(buf, `    <text x="%.1f" y="%.1f" text-anchor="middle" dominant-baseline="middle" font-family="%s" font-size="%.1f">%s</text>`+"\n",
		c.X, c.Y, fontFamily, size, escapeXML(label))
	buf.WriteString("  </g>\n")
}

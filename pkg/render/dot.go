package render

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/cardmap/pkg/layout"
)

// pointsPerInch converts layout units to Graphviz inches for node sizes.
const pointsPerInch = 72.0

// ToDOT converts a layout to a Graphviz graph for the neato engine.
// Every card is a fixed-size node pinned at its position with "pos=x,y!";
// Graphviz's y axis points up, so y is flipped. Two invisible corner nodes
// keep the full container in the drawing.
func ToDOT(l layout.Layout) string {
	var buf bytes.Buffer
	buf.WriteString("graph cards {\n")
	buf.WriteString("  layout=neato;\n")
	buf.WriteString("  notranslate=true;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fixedsize=true, fontname=\"Helvetica\", fontsize=14];\n")
	buf.WriteString("\n")

	fmt.Fprintf(&buf, "  \"__corner_min\" [shape=point, style=invis, pos=\"0,0!\"];\n")
	fmt.Fprintf(&buf, "  \"__corner_max\" [shape=point, style=invis, pos=\"%.2f,%.2f!\"];\n", l.Width, l.Height)

	writeNode(&buf, l, l.Center, []string{"fillcolor=\"#ebf4ff\"", "color=\"#3182ce\"", "penwidth=2"})
	for _, c := range l.Cards {
		var extra []string
		if c.Degraded {
			extra = append(extra, "style=\"rounded,filled,dashed\"")
		}
		writeNode(&buf, l, c, extra)
	}

	buf.WriteString("}\n")
	return buf.String()
}

func writeNode(buf *bytes.Buffer, l layout.Layout, c layout.Card, extra []string) {
	fmt.Fprintf(buf, "  %s [label=%s, pos=\"%.2f,%.2f!\", width=%.4f, height=%.4f",
		dotQuote(c.ID), dotQuote(c.Label), c.X, l.Height-c.Y, c.Width/pointsPerInch, c.Height/pointsPerInch)
	for _, a := range extra {
		buf.WriteString(", ")
		buf.WriteString(a)
	}
	buf.WriteString("];\n")
}

var dotEscaper = strings.NewReplacer(`\`, `\\`, `"`, `\"`, "\n", `\n`)

// dotQuote returns s as a DOT double-quoted string. Only backslash, quote
// and newline are escaped; every other rune is kept as is.
func dotQuote(s string) string {
	return `"` + dotEscaper.Replace(s) + `"`
}

// RenderGraphviz renders a DOT graph with the neato engine in the given
// Graphviz format.
func RenderGraphviz(ctx context.Context, dot string, format graphviz.Format) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()
	gv.SetLayout(graphviz.NEATO)

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, format, &buf); err != nil {
		return nil, fmt.Errorf("render %s: %w", format, err)
	}
	return buf.Bytes(), nil
}

// RenderPNG renders the layout as PNG through Graphviz.
func RenderPNG(ctx context.Context, l layout.Layout) ([]byte, error) {
	return RenderGraphviz(ctx, ToDOT(l), graphviz.PNG)
}

package render

import (
	"bytes"
	"context"
	"encoding/xml"
	"io"
	"strings"
	"testing"

	cmerrors "github.com/matzehuels/cardmap/pkg/errors"
	"github.com/matzehuels/cardmap/pkg/layout"
	"github.com/matzehuels/cardmap/pkg/placement"
)

func sampleLayout() layout.Layout {
	return layout.Layout{
		ViewType: "graph-navigation-view",
		Width:    1000,
		Height:   800,
		Center:   layout.Card{ID: "center", Label: "Center", X: 500, Y: 400, Width: 200, Height: 120},
		Cards: []layout.Card{
			{ID: "a.md", Label: "Alpha & Omega", X: 735.2, Y: 447.7, Width: 200, Height: 120, Attempts: 3},
			{ID: "b.md", Label: "b", X: 300, Y: 250, Width: 200, Height: 120, Attempts: 50, Degraded: true},
		},
		Config: placement.DefaultConfig(),
	}
}

func TestRenderSVG(t *testing.T) {
	svg := RenderSVG(sampleLayout(), WithBackground("#fafafa"), WithBoundary(40))

	// Output must be well-formed XML.
	dec := xml.NewDecoder(bytes.NewReader(svg))
	for {
		if _, err := dec.Token(); err != nil {
			if err == io.EOF {
				break
			}
			t.Fatalf("invalid XML: %v\n%s", err, svg)
		}
	}

	s := string(svg)
	checks := []string{
		`viewBox="0 0 1000.0 800.0"`,
		`class="card center"`,
		`<rect x="400.0" y="340.0" width="200.0" height="120.0"`,
		`Alpha &amp; Omega`,
		`class="card degraded"`,
		`stroke-dasharray="6 4"`,
		`class="boundary" x="40.0" y="40.0" width="920.0" height="720.0"`,
		`fill="#fafafa"`,
	}
	for _, want := range checks {
		if !strings.Contains(s, want) {
			t.Errorf("SVG missing %q", want)
		}
	}
	if got := strings.Count(s, `<g class="card`); got != 3 {
		t.Errorf("SVG has %d cards, want 3", got)
	}
}

func TestTruncateLabel(t *testing.T) {
	tests := []struct {
		label string
		width float64
		want  string
	}{
		{"short", 200, "short"},
		{"a-very-long-note-title-that-cannot-fit-anywhere", 100, "a-very-long-n.."},
		{"äöüäöüäöüäöüäöüäöü", 60, "äöüäöüä.."},
	}
	for _, tt := range tests {
		got := truncateLabel(tt.label, tt.width, 10)
		if got != tt.want {
			t.Errorf("truncateLabel(%q, %v) = %q, want %q", tt.label, tt.width, got, tt.want)
		}
	}
}

func TestFontSizeBounds(t *testing.T) {
	if got := fontSize(10, 10, 100); got != fontSizeMin {
		t.Errorf("tiny card font = %v, want %v", got, fontSizeMin)
	}
	if got := fontSize(1000, 1000, 1); got != fontSizeMax {
		t.Errorf("huge card font = %v, want %v", got, fontSizeMax)
	}
}

func TestToDOT(t *testing.T) {
	dot := ToDOT(sampleLayout())

	checks := []string{
		"graph cards {",
		"layout=neato;",
		`"center" [label="Center", pos="500.00,400.00!", width=2.7778, height=1.6667`,
		// y is flipped: 800 - 447.7
		`"a.md" [label="Alpha & Omega", pos="735.20,352.30!"`,
		`"b.md" [label="b", pos="300.00,550.00!", width=2.7778, height=1.6667, style="rounded,filled,dashed"]`,
		`pos="1000.00,800.00!"`,
	}
	for _, want := range checks {
		if !strings.Contains(dot, want) {
			t.Errorf("DOT missing %q:\n%s", want, dot)
		}
	}
	if strings.Contains(dot, "--") {
		t.Error("DOT should not contain edges")
	}
}

func TestDotQuote(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"plain", `"plain"`},
		{`say "hi"`, `"say \"hi\""`},
		{`a\b`, `"a\\b"`},
		{"zero\u200bwidth", "\"zero\u200bwidth\""},
		{"naïve ✓", `"naïve ✓"`},
	}
	for _, tt := range tests {
		if got := dotQuote(tt.in); got != tt.want {
			t.Errorf("dotQuote(%q) = %s, want %s", tt.in, got, tt.want)
		}
	}

	l := sampleLayout()
	l.Cards[0].Label = "zero\u200bwidth"
	if dot := ToDOT(l); !strings.Contains(dot, "label=\"zero\u200bwidth\"") || strings.Contains(dot, `\u200b`) {
		t.Errorf("DOT should keep the zero-width space literally:\n%s", dot)
	}
}

func TestValidateFormats(t *testing.T) {
	if err := ValidateFormats([]string{"svg", "json", "dot", "png"}); err != nil {
		t.Errorf("ValidateFormats(all) = %v", err)
	}
	err := ValidateFormats([]string{"svg", "pdf"})
	if !cmerrors.Is(err, cmerrors.ErrCodeInvalidFormat) {
		t.Errorf("ValidateFormats(pdf) = %v, want %s", err, cmerrors.ErrCodeInvalidFormat)
	}
}

func TestRenderFormats(t *testing.T) {
	l := sampleLayout()
	out, err := Render(context.Background(), l, []string{FormatSVG, FormatJSON, FormatDOT, FormatSVG})
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if len(out) != 3 {
		t.Errorf("got %d artifacts, want 3", len(out))
	}

	back, err := layout.Unmarshal(out[FormatJSON])
	if err != nil {
		t.Fatalf("json artifact does not parse: %v", err)
	}
	if len(back.Cards) != 2 || back.Center.ID != "center" {
		t.Errorf("json artifact = %+v", back)
	}
	if !bytes.HasPrefix(out[FormatDOT], []byte("graph cards")) {
		t.Errorf("dot artifact = %q", out[FormatDOT][:20])
	}
}

func TestRenderPNG(t *testing.T) {
	png, err := RenderPNG(context.Background(), sampleLayout())
	if err != nil {
		t.Fatalf("RenderPNG: %v", err)
	}
	if !bytes.HasPrefix(png, []byte("\x89PNG")) {
		t.Errorf("output is not a PNG (starts with %q)", png[:min(8, len(png))])
	}
}

func TestContentType(t *testing.T) {
	tests := map[string]string{
		FormatSVG:  "image/svg+xml",
		FormatJSON: "application/json",
		FormatDOT:  "text/vnd.graphviz",
		FormatPNG:  "image/png",
		"bin":      "application/octet-stream",
	}
	for f, want := range tests {
		if got := ContentType(f); got != want {
			t.Errorf("ContentType(%q) = %q, want %q", f, got, want)
		}
	}
}

package render

import (
	"context"
	"fmt"
	"slices"
	"strings"

	cmerrors "github.com/matzehuels/cardmap/pkg/errors"
	"github.com/matzehuels/cardmap/pkg/layout"
)

// Output formats.
const (
	FormatSVG  = "svg"
	FormatJSON = "json"
	FormatDOT  = "dot"
	FormatPNG  = "png"
)

// Formats lists the supported output formats.
var Formats = []string{FormatSVG, FormatJSON, FormatDOT, FormatPNG}

// ContentType returns the MIME type of a format.
func ContentType(format string) string {
	switch format {
	case FormatSVG:
		return "image/svg+xml"
	case FormatJSON:
		return "application/json"
	case FormatDOT:
		return "text/vnd.graphviz"
	case FormatPNG:
		return "image/png"
	}
	return "application/octet-stream"
}

// ValidateFormats checks that every format is supported.
func ValidateFormats(formats []string) error {
	for _, f := range formats {
		if !slices.Contains(Formats, f) {
			return cmerrors.New(cmerrors.ErrCodeInvalidFormat,
				"unsupported format %q (want one of %s)", f, strings.Join(Formats, ", "))
		}
	}
	return nil
}

// Render produces each requested format. SVG options apply to svg output.
func Render(ctx context.Context, l layout.Layout, formats []string, svgOpts ...SVGOption) (map[string][]byte, error) {
	if err := ValidateFormats(formats); err != nil {
		return nil, err
	}

	out := make(map[string][]byte, len(formats))
	for _, f := range formats {
		if _, done := out[f]; done {
			continue
		}
		data, err := renderOne(ctx, l, f, svgOpts)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", f, err)
		}
		out[f] = data
	}
	return out, nil
}

func renderOne(ctx context.Context, l layout.Layout, format string, svgOpts []SVGOption) ([]byte, error) {
	switch format {
	case FormatSVG:
		return RenderSVG(l, svgOpts...), nil
	case FormatJSON:
		return layout.Marshal(l)
	case FormatDOT:
		return []byte(ToDOT(l)), nil
	case FormatPNG:
		return RenderPNG(ctx, l)
	}
	return nil, cmerrors.New(cmerrors.ErrCodeInvalidFormat, "unsupported format %q", format)
}

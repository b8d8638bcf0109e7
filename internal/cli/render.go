package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/cardmap/pkg/layout"
	"github.com/matzehuels/cardmap/pkg/pipeline"
	"github.com/matzehuels/cardmap/pkg/render"
	"github.com/matzehuels/cardmap/pkg/vault"
)

// renderCommand creates the render command for generating panel images.
func (c *CLI) renderCommand() *cobra.Command {
	var (
		flags      panelFlags
		formatsStr string
		output     string
		background string
		boundary   bool
	)

	cmd := &cobra.Command{
		Use:   "render [vault|layout.json]",
		Short: "Render a vault or a computed layout",
		Long: `Render a vault or a computed layout.

Given a vault directory, render lists the notes, computes the layout and
renders it in one go. Given a layout.json file (produced by 'layout'), it
only renders; layout flags are ignored in that case.

Formats: svg (default), json, dot, png. PNG output is produced by Graphviz
with every card pinned at its computed position.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			input, err := c.vaultPath(args)
			if err != nil {
				return err
			}
			opts := c.baseOptions()
			flags.apply(&opts)
			opts.Formats = parseFormats(formatsStr)
			opts.Background = background
			opts.ShowBoundary = boundary
			if err := render.ValidateFormats(opts.Formats); err != nil {
				return err
			}
			return c.runRender(cmd.Context(), input, opts, output, flags.noCache)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (single format) or base path (multiple)")
	cmd.Flags().StringVarP(&formatsStr, "format", "f", "", "output format(s): svg (default), json, dot, png (comma-separated)")
	cmd.Flags().StringVar(&background, "background", "", "SVG background color")
	cmd.Flags().BoolVar(&boundary, "boundary", false, "outline the padded panel boundary (svg)")
	flags.register(cmd)

	return cmd
}

// runRender renders input, which is either a layout file or a vault.
func (c *CLI) runRender(ctx context.Context, input string, opts pipeline.Options, output string, noCache bool) error {
	if isLayoutFile(input) {
		return c.renderLayoutFile(ctx, input, opts, output, noCache)
	}

	runner, err := c.newRunner(ctx, input, noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	prog := newProgress(loggerFromContext(ctx))
	spinner := newSpinnerWithContext(ctx, "Rendering panel...")
	spinner.Start()

	result, err := runner.Execute(ctx, vault.Source{Root: input}, opts)
	if err != nil {
		spinner.StopWithError("Render failed")
		return err
	}
	spinner.Stop()
	prog.done(fmt.Sprintf("Rendered %d cards as %s", len(result.Layout.Cards), strings.Join(opts.Formats, ", ")))

	return writeArtifacts(artifactWriteParams{
		artifacts: result.Artifacts,
		formats:   opts.Formats,
		base:      defaultOutput(input, "panel"),
		output:    output,
		cards:     len(result.Layout.Cards),
		degraded:  result.Stats.Degraded,
		cacheHit:  result.CacheInfo.LayoutHit && result.CacheInfo.RenderHit,
	})
}

// renderLayoutFile loads a layout and renders it.
func (c *CLI) renderLayoutFile(ctx context.Context, input string, opts pipeline.Options, output string, noCache bool) error {
	l, err := layout.ReadFile(input)
	if err != nil {
		return fmt.Errorf("load layout %s: %w", input, err)
	}
	// SVG boundary outlines use the padding the layout was computed with.
	opts.Placement = l.Config

	runner, err := c.newRunner(ctx, "", noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	spinner := newSpinnerWithContext(ctx, "Rendering layout...")
	spinner.Start()

	artifacts, cacheHit, err := runner.RenderWithCacheInfo(ctx, l, opts)
	if err != nil {
		spinner.StopWithError("Render failed")
		return fmt.Errorf("render: %w", err)
	}
	spinner.Stop()

	return writeArtifacts(artifactWriteParams{
		artifacts: artifacts,
		formats:   opts.Formats,
		base:      strings.TrimSuffix(strings.TrimSuffix(input, ".json"), ".layout"),
		output:    output,
		cards:     len(l.Cards),
		degraded:  l.DegradedCount(),
		cacheHit:  cacheHit,
	})
}

func isLayoutFile(path string) bool {
	if !strings.EqualFold(filepath.Ext(path), ".json") {
		return false
	}
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

// artifactWriteParams describes rendered artifacts to write to disk.
type artifactWriteParams struct {
	artifacts map[string][]byte
	formats   []string
	base      string // default base path without extension
	output    string
	cards     int
	degraded  int
	cacheHit  bool
}

// writeArtifacts writes one file per format and prints a summary.
func writeArtifacts(p artifactWriteParams) error {
	paths := outputPaths(p.formats, p.base, p.output)

	var written []string
	for _, format := range p.formats {
		path, ok := paths[format]
		if !ok {
			continue
		}
		if err := os.WriteFile(path, p.artifacts[format], 0644); err != nil {
			return fmt.Errorf("write %s: %w", path, err)
		}
		delete(paths, format)
		written = append(written, path)
	}

	printSuccess("Render complete")
	for _, path := range written {
		printFile(path)
	}
	printStats(p.cards, p.degraded, p.cacheHit)
	return nil
}

// outputPaths maps each format to its output file. A single format writes
// to output as given; several formats treat output as a base path.
func outputPaths(formats []string, base, output string) map[string]string {
	paths := make(map[string]string, len(formats))
	if len(formats) == 1 && output != "" {
		paths[formats[0]] = output
		return paths
	}
	b := basePath(output, base)
	for _, f := range formats {
		paths[f] = b + "." + f
	}
	return paths
}

// basePath derives the base output path. If output is empty, def is used.
// If output has a format extension (.svg, .png, etc.), it strips that extension.
func basePath(output, def string) string {
	if output == "" {
		return def
	}
	ext := filepath.Ext(output)
	if render.ValidateFormats([]string{strings.TrimPrefix(ext, ".")}) == nil {
		return strings.TrimSuffix(output, ext)
	}
	return output
}

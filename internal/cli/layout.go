package cli

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/matzehuels/cardmap/pkg/layout"
	"github.com/matzehuels/cardmap/pkg/pipeline"
	"github.com/matzehuels/cardmap/pkg/vault"
)

// panelFlags are the layout flags shared by layout, render and open.
// Zero values leave the settings file and pipeline defaults in place.
type panelFlags struct {
	width    float64
	height   float64
	maxItems int
	center   string
	noCache  bool
	refresh  bool
}

func (f *panelFlags) register(cmd *cobra.Command) {
	cmd.Flags().Float64Var(&f.width, "width", 0, fmt.Sprintf("panel width (default %g)", pipeline.DefaultWidth))
	cmd.Flags().Float64Var(&f.height, "height", 0, fmt.Sprintf("panel height (default %g)", pipeline.DefaultHeight))
	cmd.Flags().IntVarP(&f.maxItems, "max-items", "n", 0, "number of notes to place (default from settings)")
	cmd.Flags().StringVar(&f.center, "center", "", "center card label")
	cmd.Flags().BoolVar(&f.noCache, "no-cache", false, "disable caching")
	cmd.Flags().BoolVar(&f.refresh, "refresh", false, "recompute instead of reading the cache")
}

func (f *panelFlags) apply(opts *pipeline.Options) {
	if f.width != 0 {
		opts.Width = f.width
	}
	if f.height != 0 {
		opts.Height = f.height
	}
	if f.maxItems != 0 {
		opts.MaxItems = f.maxItems
	}
	if f.center != "" {
		opts.CenterLabel = f.center
	}
	opts.Refresh = f.refresh
}

// layoutCommand creates the layout command for computing card layouts.
func (c *CLI) layoutCommand() *cobra.Command {
	var (
		flags  panelFlags
		output string
	)

	cmd := &cobra.Command{
		Use:   "layout [vault]",
		Short: "Compute the card layout of a vault",
		Long: `Compute the card layout of a vault.

The layout command lists the notes of a vault, places the first notes around
a center card and writes the positions as layout.json. The file can be
rendered later with 'render'.

The vault defaults to the one in the settings file. Results are cached
locally for faster subsequent runs.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			root, err := c.vaultPath(args)
			if err != nil {
				return err
			}
			opts := c.baseOptions()
			flags.apply(&opts)
			return c.runLayout(cmd.Context(), root, opts, output, flags.noCache)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: <vault>.layout.json)")
	flags.register(cmd)

	return cmd
}

// runLayout lists the vault, computes the layout, and writes output.
func (c *CLI) runLayout(ctx context.Context, root string, opts pipeline.Options, output string, noCache bool) error {
	runner, err := c.newRunner(ctx, root, noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	prog := newProgress(loggerFromContext(ctx))
	spinner := newSpinnerWithContext(ctx, "Placing cards...")
	spinner.Start()

	l, cacheHit, err := runner.ComputeLayoutWithCacheInfo(ctx, vault.Source{Root: root}, opts)
	if err != nil {
		spinner.StopWithError("Layout failed")
		return fmt.Errorf("compute layout: %w", err)
	}
	spinner.Stop()
	prog.done(fmt.Sprintf("Placed %d cards", len(l.Cards)))

	if ctx.Err() != nil {
		return ctx.Err()
	}

	outputPath := output
	if outputPath == "" {
		outputPath = defaultOutput(root, "layout.json")
	}

	if err := layout.WriteFile(l, outputPath); err != nil {
		return fmt.Errorf("write output %s: %w", outputPath, err)
	}

	printSuccess("Layout complete")
	printFile(outputPath)
	printStats(len(l.Cards), l.DegradedCount(), cacheHit)
	if n := l.DegradedCount(); n > 0 {
		printWarning("%d card(s) could not be placed without overlap; try a larger panel", n)
	}
	printNewline()
	printNextStep("Render", appName+" render "+outputPath)

	return nil
}

// defaultOutput names an output file after the vault directory, placed in
// the working directory: ~/notes → notes.<suffix>.
func defaultOutput(root, suffix string) string {
	base := filepath.Base(filepath.Clean(root))
	if base == "." || base == string(filepath.Separator) || base == "" {
		base = "vault"
	}
	return base + "." + suffix
}

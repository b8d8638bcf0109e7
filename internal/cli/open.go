package cli

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/matzehuels/cardmap/pkg/vault"
)

// openCommand creates the open command for the interactive panel.
func (c *CLI) openCommand() *cobra.Command {
	var flags panelFlags

	cmd := &cobra.Command{
		Use:   "open [vault]",
		Short: "Open the card panel of a vault in the terminal",
		Long: `Open the card panel of a vault in the terminal.

The panel fills the terminal; each cell stands for 8×16 layout pixels. Cards
are re-placed when the terminal is resized. Cards the search could not place
without overlap are drawn in amber.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			root, err := c.vaultPath(args)
			if err != nil {
				return err
			}
			return c.runOpen(cmd.Context(), root, flags)
		},
	}

	flags.register(cmd)
	return cmd
}

func (c *CLI) runOpen(ctx context.Context, root string, flags panelFlags) error {
	runner, err := c.newRunner(ctx, "", true)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	opts := c.baseOptions()
	flags.apply(&opts)
	// The terminal decides the panel size.
	opts.Width, opts.Height = 0, 0

	m := NewPanelModel(ctx, runner, vault.Source{Root: root}, opts)
	final, err := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx)).Run()
	if err != nil {
		return fmt.Errorf("panel: %w", err)
	}
	if pm, ok := final.(PanelModel); ok {
		pm.release()
	}
	return nil
}

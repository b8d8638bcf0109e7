package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/cardmap/pkg/buildinfo"
	"github.com/matzehuels/cardmap/pkg/cache"
	"github.com/matzehuels/cardmap/pkg/config"
	"github.com/matzehuels/cardmap/pkg/pipeline"
	"github.com/matzehuels/cardmap/pkg/render"
)

// =============================================================================
// Constants
// =============================================================================

// appName is the application name used for directories and display.
const appName = config.AppName

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	// Settings are loaded from the settings file before any command runs.
	Settings config.Settings

	configPath string
	verbose    bool
	out        io.Writer
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger:   newLogger(w, level),
		Settings: config.Default(),
		out:      os.Stdout,
	}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   appName,
		Short: "Cardmap lays out note cards around a center card",
		Long: `Cardmap arranges the notes of a vault as cards on a spiral around a
center card, avoiding overlaps and keeping every card inside the panel.

Layouts can be written as JSON, rendered to SVG, DOT or PNG, explored in an
interactive terminal panel, or served over HTTP.`,
		Version:           buildinfo.Version,
		SilenceUsage:      true,
		PersistentPreRunE: c.setup,
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().BoolVarP(&c.verbose, "verbose", "v", false, "enable verbose logging")
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "settings file (default: ~/.config/cardmap/config.toml)")

	// Register all subcommands
	root.AddCommand(c.layoutCommand())
	root.AddCommand(c.renderCommand())
	root.AddCommand(c.openCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.configCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// setup applies --verbose, loads the settings file and attaches the logger
// to the command context.
func (c *CLI) setup(cmd *cobra.Command, args []string) error {
	level := LogInfo
	if c.verbose {
		level = LogDebug
	}
	c.SetLogLevel(level)
	cmd.SetContext(withLogger(cmd.Context(), c.Logger))

	path, err := c.settingsPath()
	if err != nil {
		return err
	}
	s, err := config.Load(path)
	if err != nil {
		return err
	}
	c.Settings = s
	c.Logger.Debug("loaded settings", "path", path, "cache", s.Cache.Backend)
	return nil
}

func (c *CLI) settingsPath() (string, error) {
	if c.configPath != "" {
		return c.configPath, nil
	}
	return config.DefaultPath()
}

// =============================================================================
// Runner Factory
// =============================================================================

// newRunner creates a pipeline runner for CLI use. Keys are scoped to scope
// so different vaults sharing a backend never collide.
func (c *CLI) newRunner(ctx context.Context, scope string, noCache bool) (*pipeline.Runner, error) {
	cc, err := newCache(ctx, c.Settings.Cache, noCache)
	if err != nil {
		return nil, err
	}
	var keyer cache.Keyer
	if scope != "" {
		keyer = cache.NewScopedKeyer(nil, "vault:"+cache.Hash([]byte(scope))[:12]+":")
	}
	r := pipeline.NewRunner(cc, keyer, c.Logger)
	r.TTL = c.Settings.Cache.TTL.Duration
	return r, nil
}

// newCache opens the cache backend selected in the settings.
func newCache(ctx context.Context, s config.CacheSettings, noCache bool) (cache.Cache, error) {
	if noCache {
		return cache.NewNullCache(), nil
	}
	switch s.Backend {
	case config.BackendNone:
		return cache.NewNullCache(), nil
	case config.BackendRedis:
		rc, err := cache.NewRedisCache(ctx, cache.RedisOptions{Addr: s.RedisAddr})
		if err != nil {
			return nil, err
		}
		return rc, nil
	}
	dir, err := config.CacheDir()
	if err != nil {
		return cache.NewNullCache(), nil
	}
	fc, err := cache.NewFileCache(dir)
	if err != nil {
		return nil, err
	}
	return fc, nil
}

// =============================================================================
// Options Helpers
// =============================================================================

// baseOptions returns pipeline options seeded from the settings file.
// Flags override these afterwards.
func (c *CLI) baseOptions() pipeline.Options {
	return pipeline.Options{
		MaxItems:    c.Settings.MaxItems,
		CenterLabel: c.Settings.CenterLabel,
		Placement:   c.Settings.Placement,
		Logger:      c.Logger,
	}
}

// vaultPath resolves the vault argument, falling back to the settings file.
func (c *CLI) vaultPath(args []string) (string, error) {
	if len(args) > 0 && args[0] != "" {
		return args[0], nil
	}
	if c.Settings.Vault != "" {
		return c.Settings.Vault, nil
	}
	return "", fmt.Errorf("no vault given and none set in the settings file")
}

// parseFormats parses a comma-separated format string into a slice.
func parseFormats(s string) []string {
	if s == "" {
		return []string{render.FormatSVG}
	}
	parts := strings.Split(s, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}

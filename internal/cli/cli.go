// Package cli implements the geoprofile command-line interface.
//
// # Commands
//
//   - build: assemble a section from an input document and write artifacts
//   - map: render the plan-view overlay of a section
//   - inspect: browse an assembled section in the terminal
//   - serve: run the HTTP API
//   - cache: manage the local section cache
//
// Settings come from built-in defaults, then an optional --config file
// (TOML or YAML), then command-line flags.
//
// All commands support --verbose (-v) for debug-level logging. The logger
// is attached to the command context and reachable via loggerFromContext.
package cli

import (
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/geoprofile/pkg/buildinfo"
	"github.com/matzehuels/geoprofile/pkg/cache"
	"github.com/matzehuels/geoprofile/pkg/config"
	"github.com/matzehuels/geoprofile/pkg/pipeline"
)

// appName is the application name used for directories and display.
const appName = "geoprofile"

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger
	// Out receives command output; logs go to the logger's writer.
	Out io.Writer
	// Config is the effective file configuration, loaded before each command.
	Config config.Config

	configPath string
}

// New creates a new CLI instance logging to w.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: newLogger(w, level),
		Out:    os.Stdout,
		Config: config.Default(),
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
		Short: "Geoprofile orders boreholes and CPTs into cross-sections",
		Long: `Geoprofile builds geotechnical cross-sections: it orders a set of
located columns (boreholes, CPTs) along a profile line, optionally moves
them onto the line, and renders the result.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := c.loadConfig(); err != nil {
				return err
			}
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
			return nil
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (.toml, .yaml)")

	root.AddCommand(c.buildCommand())
	root.AddCommand(c.mapCommand())
	root.AddCommand(c.inspectCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// loadConfig reads --config when given.
func (c *CLI) loadConfig() error {
	if c.configPath == "" {
		return nil
	}
	cfg, err := config.Load(c.configPath)
	if err != nil {
		return err
	}
	c.Config = cfg
	c.Logger.Debug("loaded config", "path", c.configPath)
	return nil
}

// newRunner creates a pipeline runner for CLI use.
func (c *CLI) newRunner(cmd *cobra.Command, noCache bool) (*pipeline.Runner, error) {
	cc, err := c.newCache(cmd, noCache)
	if err != nil {
		return nil, err
	}
	return pipeline.NewRunner(cc, c.Config.Keyer(), c.Logger), nil
}

func (c *CLI) newCache(cmd *cobra.Command, noCache bool) (cache.Cache, error) {
	if noCache {
		return cache.NewNullCache(), nil
	}
	dir, err := cacheDir()
	if err != nil {
		c.Logger.Debug("no cache directory, caching disabled", "error", err)
		dir = ""
	}
	opts := c.Config.CacheOptions(dir)
	if opts.Backend == cache.BackendFile && opts.Dir == "" {
		return cache.NewNullCache(), nil
	}
	return cache.Open(cmd.Context(), opts)
}

// cacheDir returns the cache directory using XDG standard (~/.cache/geoprofile/).
func cacheDir() (string, error) {
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", appName), nil
}

// setCLIDefaults fills every option whose flag was not given on the
// command line from the loaded config.
func setCLIDefaults(cmd *cobra.Command, opts *pipeline.Options, cfg config.Config) {
	changed := cmd.Flags().Changed
	if !changed("policy") {
		opts.Policy = cfg.Policy
	}
	if !changed("reproject") {
		opts.Reproject = cfg.ReprojectEnabled()
	}
	if !changed("buffer") {
		opts.Buffer = cfg.Buffer
	}
	if !changed("solver") {
		opts.Solver = cfg.Solver
	}
	if !changed("max-passes") {
		opts.MaxPasses = cfg.MaxPasses
	}
	if !changed("max-exact") {
		opts.MaxExact = cfg.MaxExact
	}
	if !changed("x0") {
		opts.X0 = cfg.X0
	}
	if !changed("depth") {
		opts.Depth = cfg.Depth
	}
}

// parseFormats parses a comma-separated format string into a slice.
// An empty string keeps def.
func parseFormats(s string, def []string) []string {
	if s == "" {
		return def
	}
	var out []string
	for _, f := range strings.Split(s, ",") {
		if f = strings.TrimSpace(f); f != "" {
			out = append(out, strings.ToLower(f))
		}
	}
	return out
}

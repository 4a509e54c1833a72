package cli

import (
	"github.com/spf13/cobra"

	"github.com/matzehuels/geoprofile/internal/server"
	"github.com/matzehuels/geoprofile/pkg/observability"
	"github.com/matzehuels/geoprofile/pkg/pipeline"
)

// serveCommand creates the serve command.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr    string
		noCache bool
		trace   bool
	)
	opts := pipeline.Options{}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Long: `Run the HTTP API.

Assembly flags and the config file set the defaults of every request;
options in a request body override them. The server stops gracefully on
interrupt.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			setCLIDefaults(cmd, &opts, c.Config)
			if !cmd.Flags().Changed("addr") && c.Config.Server.Addr != "" {
				addr = c.Config.Server.Addr
			}
			check := opts.Clone()
			if err := check.ValidateAndSetDefaults(); err != nil {
				return err
			}

			if trace {
				c.SetLogLevel(LogDebug)
				hooks := observability.NewLogHooks(c.Logger)
				observability.SetSectionHooks(hooks)
				observability.SetCacheHooks(hooks)
				observability.SetHTTPHooks(hooks)
			}

			runner, err := c.newRunner(cmd, noCache)
			if err != nil {
				return err
			}
			defer runner.Close()

			srv := server.New(runner, server.Config{
				Addr:         addr,
				MaxBodyBytes: c.Config.Server.MaxBodyBytes,
				Defaults:     opts,
				Logger:       loggerFromContext(cmd.Context()),
			})
			return srv.ListenAndServe(cmd.Context())
		},
	}

	addSectionFlags(cmd, &opts)
	cmd.Flags().StringVar(&addr, "addr", ":8080", "listen address")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")
	cmd.Flags().BoolVar(&trace, "trace", false, "log pipeline, cache and request events (implies --verbose)")

	return cmd
}

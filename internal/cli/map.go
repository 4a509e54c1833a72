package cli

import (
	"github.com/spf13/cobra"

	"github.com/matzehuels/geoprofile/pkg/pipeline"
)

// mapCommand creates the map command, a shortcut for the overlay formats.
func (c *CLI) mapCommand() *cobra.Command {
	var (
		output  string
		noCache bool
		png     bool
		dot     bool
	)
	opts := pipeline.Options{}

	cmd := &cobra.Command{
		Use:   "map [input.json]",
		Short: "Render the plan-view overlay of a section",
		Long: `Render the plan-view overlay of a section.

The overlay shows the profile line, the columns at their original
locations, where each column was placed, and the order in which the
section visits them. It is rendered to SVG by default.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			setCLIDefaults(cmd, &opts, c.Config)
			opts.Formats = []string{pipeline.FormatSVG}
			if png {
				opts.Formats = append(opts.Formats, pipeline.FormatPNG)
			}
			if dot {
				opts.Formats = append(opts.Formats, pipeline.FormatDOT)
			}
			res, err := c.execute(cmd, args[0], opts, noCache)
			if err != nil {
				return err
			}
			c.printSummary(res, false)
			return writeArtifacts(c.Out, artifactWriteParams{
				artifacts: res.Artifacts,
				formats:   opts.Formats,
				input:     args[0],
				output:    output,
				cacheHit:  res.CacheInfo.RenderHit,
			})
		},
	}

	addSectionFlags(cmd, &opts)
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (svg only) or base path")
	cmd.Flags().StringVar(&opts.Title, "title", "", "overlay title")
	cmd.Flags().Float64Var(&opts.Width, "width", pipeline.DefaultOverlayWidth, "overlay width in points")
	cmd.Flags().BoolVar(&png, "png", false, "also write a PNG")
	cmd.Flags().BoolVar(&dot, "dot", false, "also write the Graphviz source")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")

	return cmd
}

package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/geoprofile/pkg/config"
	gpio "github.com/matzehuels/geoprofile/pkg/io"
	"github.com/matzehuels/geoprofile/pkg/pipeline"
)

// addSectionFlags binds the assembly flags shared by build, map and inspect.
// Flag defaults show the built-in settings; unset flags take the config value.
func addSectionFlags(cmd *cobra.Command, opts *pipeline.Options) {
	def := config.Default()
	f := cmd.Flags()
	f.StringVarP(&opts.Policy, "policy", "p", def.Policy, "ordering policy: along-line, tour, input")
	f.BoolVar(&opts.Reproject, "reproject", def.ReprojectEnabled(), "move columns onto the profile line")
	f.Float64Var(&opts.Buffer, "buffer", def.Buffer, "keep only columns within this distance of the line (0 keeps all)")
	f.StringVar(&opts.Solver, "solver", def.Solver, "tour solver: nearest-neighbor, exact")
	f.IntVar(&opts.MaxPasses, "max-passes", def.MaxPasses, "2-opt improvement passes (negative disables)")
	f.IntVar(&opts.MaxExact, "max-exact", def.MaxExact, "largest column count solved exactly")
	f.Float64Var(&opts.X0, "x0", def.X0, "horizontal origin of the plotted section")
	f.Float64Var(&opts.Depth, "depth", def.Depth, "drawn depth of columns without a depth payload (0 uses 5)")
	f.BoolVar(&opts.Refresh, "refresh", false, "ignore cached results")
}

// buildCommand creates the build command.
func (c *CLI) buildCommand() *cobra.Command {
	var (
		formatsStr string
		output     string
		noCache    bool
		showTable  bool
	)
	opts := pipeline.Options{}

	cmd := &cobra.Command{
		Use:   "build [input.json]",
		Short: "Assemble a cross-section and write its artifacts",
		Long: `Assemble a cross-section from an input document.

The input is a JSON document with a profile line and located columns:

  {"line": [[0, 0], [100, 0]],
   "columns": [{"name": "CPT01", "x": 12.5, "y": 3.1, "z": 1.2}]}

The columns are ordered along the line, placed, and written in the requested
formats: json (section document), geojson (plan view), dot, svg and png
(plan-view overlay) and profile (cross-section drawing).

Results are cached locally for faster subsequent runs.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			setCLIDefaults(cmd, &opts, c.Config)
			opts.Formats = parseFormats(formatsStr, c.Config.Formats)
			if err := pipeline.ValidateFormats(opts.Formats); err != nil {
				return err
			}
			res, err := c.execute(cmd, args[0], opts, noCache)
			if err != nil {
				return err
			}
			c.printSummary(res, showTable)
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
	cmd.Flags().StringVarP(&formatsStr, "format", "f", "", "output format(s): json (default), geojson, dot, svg, png, profile (comma-separated)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (single format) or base path (multiple)")
	cmd.Flags().StringVar(&opts.Title, "title", "", "title drawn on rendered outputs")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")
	cmd.Flags().BoolVarP(&showTable, "table", "t", false, "print the assembled section as a table")

	return cmd
}

// execute loads the input document and runs the pipeline behind a spinner.
func (c *CLI) execute(cmd *cobra.Command, input string, opts pipeline.Options, noCache bool) (*pipeline.Result, error) {
	ctx := cmd.Context()
	in, err := gpio.ImportInput(input)
	if err != nil {
		return nil, fmt.Errorf("load input %s: %w", input, err)
	}

	runner, err := c.newRunner(cmd, noCache)
	if err != nil {
		return nil, fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	opts.Logger = loggerFromContext(ctx)

	spinner := newSpinner(ctx, cmd.ErrOrStderr(), fmt.Sprintf("Assembling %d columns...", len(in.Columns)))
	spinner.Start()
	res, err := runner.Execute(ctx, in, opts)
	if err != nil {
		spinner.StopWithError("Section build failed")
		return nil, err
	}
	spinner.Stop()
	return res, nil
}

// printSummary prints the outcome of a run.
func (c *CLI) printSummary(res *pipeline.Result, showTable bool) {
	printSuccess(c.Out, "Assembled section")
	printStats(c.Out, res)
	for _, w := range res.Warnings {
		printWarning(c.Out, "%s", w.Message)
	}
	if showTable {
		fmt.Fprintln(c.Out, sectionTable(res))
	}
}

// artifactWriteParams describes where rendered artifacts go.
type artifactWriteParams struct {
	artifacts map[string][]byte
	formats   []string
	input     string
	output    string
	cacheHit  bool
}

// artifactPaths maps each format to its output path. A single format with
// an explicit output is written to that path; otherwise output (or the input
// path without its extension) is the base for per-format extensions.
func artifactPaths(formats []string, input, output string) map[string]string {
	paths := make(map[string]string, len(formats))
	if len(formats) == 1 && output != "" {
		paths[formats[0]] = output
		return paths
	}
	base := output
	if base == "" {
		base = strings.TrimSuffix(input, filepath.Ext(input)) + ".section"
	} else {
		base = strings.TrimSuffix(base, filepath.Ext(base))
	}
	for _, f := range formats {
		paths[f] = base + pipeline.Extension(f)
	}
	return paths
}

func writeArtifacts(w io.Writer, p artifactWriteParams) error {
	paths := artifactPaths(p.formats, p.input, p.output)
	formats := make([]string, 0, len(paths))
	for f := range paths {
		formats = append(formats, f)
	}
	sort.Strings(formats)

	for _, f := range formats {
		data, ok := p.artifacts[f]
		if !ok {
			return fmt.Errorf("no %s artifact was rendered", f)
		}
		if err := os.WriteFile(paths[f], data, 0o644); err != nil {
			return fmt.Errorf("write %s: %w", paths[f], err)
		}
	}

	status := iconFresh
	if p.cacheHit {
		status = iconCached
	}
	printSuccess(w, "Wrote %d artifact(s) %s", len(formats), StyleDim.Render("("+status+")"))
	for _, f := range formats {
		printFile(w, paths[f])
	}
	return nil
}

package pipeline

import (
	"context"
	"time"

	gpio "github.com/matzehuels/geoprofile/pkg/io"
	"github.com/matzehuels/geoprofile/pkg/observability"
	"github.com/matzehuels/geoprofile/pkg/ordering"
	"github.com/matzehuels/geoprofile/pkg/section"
)

// Assemble runs selection and assembly without caching.
func Assemble(ctx context.Context, in *gpio.Input, opts Options) (s section.OrderedSection, err error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return section.OrderedSection{}, err
	}

	columns := in.Columns
	if opts.Buffer > 0 {
		columns, err = section.Select(in.Columns, in.Line, opts.Buffer)
		if err != nil {
			return section.OrderedSection{}, err
		}
		opts.Logger.Debug("selected columns",
			"buffer", opts.Buffer,
			"kept", len(columns),
			"dropped", len(in.Columns)-len(columns))
	}

	hooks := observability.Section()
	hooks.OnAssembleStart(ctx, opts.Policy, len(columns))
	start := time.Now()
	defer func() {
		hooks.OnAssembleComplete(ctx, opts.Policy, len(columns), time.Since(start), err)
	}()

	return section.Assemble(columns, in.Line, section.Options{
		Policy:    ordering.Policy(opts.Policy),
		Reproject: opts.Reproject,
		Solver:    opts.solver,
	})
}

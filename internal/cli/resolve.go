package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/kalimokai/apkgraph/pkg/resolve"
)

// newResolveCmd creates the resolve command.
func newResolveCmd(opts *engineOpts) *cobra.Command {
	var showRequiredBy bool
	var pick bool

	cmd := &cobra.Command{
		Use:   "resolve PACKAGE...",
		Short: "Compute the full dependency closure of packages",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			logger := loggerFromContext(ctx)
			engine, err := opts.engine(ctx)
			if err != nil {
				return err
			}

			if pick {
				return runPick(cmd, engine, args)
			}

			prog := newProgress(logger)
			spinner := newSpinnerWithContext(ctx, "Resolving dependencies...")
			spinner.Start()
			plan, err := engine.Recurse(ctx, args)
			if err != nil {
				spinner.Stop()
				if spinner.Cancelled() {
					return ctx.Err()
				}
				return err
			}
			spinner.Stop()
			prog.done(fmt.Sprintf("Resolved %d packages", len(plan.Packages)))

			for _, name := range plan.Packages {
				line := name
				if showRequiredBy {
					by := plan.RequiredBy[name]
					if len(by) == 0 {
						by = plan.RequiredBy[strings.TrimLeft(name, "!")]
					}
					if len(by) > 0 {
						line += StyleDim.Render(fmt.Sprintf("  (required by %s)", strings.Join(by, ", ")))
					}
				}
				printDetail("%s", line)
			}
			printSuccess("%d packages to install", len(plan.Packages))
			return nil
		},
	}

	cmd.Flags().BoolVar(&showRequiredBy, "required-by", false, "show which package pulled in each dependency")
	cmd.Flags().BoolVar(&pick, "pick", false, "print the chosen provider for each name instead of recursing")
	return cmd
}

// runPick resolves each name to its single chosen provider without
// expanding dependencies.
func runPick(cmd *cobra.Command, engine *resolve.Engine, names []string) error {
	ctx := cmd.Context()
	for _, name := range names {
		pkg, err := engine.Pick(ctx, name)
		if err != nil {
			return err
		}
		printInfo("%s %s %s", StyleHighlight.Render(name), StyleDim.Render(iconArrow),
			StyleValue.Render(fmt.Sprintf("%s-%s", pkg.Name, pkg.Version)))
	}
	return nil
}

package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	apkerr "github.com/kalimokai/apkgraph/pkg/errors"
	"github.com/kalimokai/apkgraph/pkg/export"
)

// newGraphCmd creates the graph command rendering a dependency closure
// as DOT or SVG.
func newGraphCmd(opts *engineOpts) *cobra.Command {
	var format string
	var output string

	cmd := &cobra.Command{
		Use:   "graph PACKAGE...",
		Short: "Render the dependency closure as a graph",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			engine, err := opts.engine(ctx)
			if err != nil {
				return err
			}

			plan, err := engine.Recurse(ctx, args)
			if err != nil {
				return err
			}
			dot := export.ToDOT(plan)

			var data []byte
			switch format {
			case "dot":
				data = []byte(dot)
			case "svg":
				spinner := newSpinnerWithContext(ctx, "Rendering graph...")
				spinner.Start()
				data, err = export.RenderSVG(dot)
				if err != nil {
					spinner.StopWithError("Rendering failed")
					if spinner.Cancelled() {
						return ctx.Err()
					}
					return err
				}
				spinner.StopWithSuccess(fmt.Sprintf("Rendered %d packages", len(plan.Packages)))
			default:
				return apkerr.New(apkerr.ErrCodeUnsupported, "unknown format %q (must be dot or svg)", format)
			}

			if output == "" {
				fmt.Print(string(data))
				return nil
			}
			if err := os.WriteFile(output, data, 0o644); err != nil {
				return fmt.Errorf("write %s: %w", output, err)
			}
			printFile(output)
			return nil
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "dot", "output format: dot or svg")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (stdout if empty)")
	return cmd
}

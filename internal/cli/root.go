package cli

import (
	"context"
	"os"

	charmlog "github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/kalimokai/apkgraph/pkg/buildinfo"
)

// Execute runs the apkgraph CLI and returns an error if any command
// fails. The logger level follows the --verbose flag and the logger is
// attached to the command context, accessible via loggerFromContext.
func Execute(ctx context.Context) error {
	var verbose bool
	var opts engineOpts

	root := &cobra.Command{
		Use:   "apkgraph",
		Short: "apkgraph resolves Alpine package dependencies",
		Long: `apkgraph parses APKINDEX files and recipe trees, compares package
versions the way apk does, and computes full dependency closures with
provider disambiguation.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			level := charmlog.InfoLevel
			if verbose {
				level = charmlog.DebugLevel
			}
			ctx := withLogger(cmd.Context(), newLogger(os.Stderr, level))
			cmd.SetContext(ctx)
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")
	opts.register(root.PersistentFlags())

	root.AddCommand(newVersionCmd())
	root.AddCommand(newIndexCmd(&opts))
	root.AddCommand(newResolveCmd(&opts))
	root.AddCommand(newGraphCmd(&opts))

	return root.ExecuteContext(ctx)
}

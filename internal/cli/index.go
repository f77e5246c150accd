package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/kalimokai/apkgraph/pkg/index"
)

// newIndexCmd creates the index command with dump and providers
// subcommands.
func newIndexCmd(opts *engineOpts) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "index",
		Short: "Inspect APKINDEX files",
	}

	cmd.AddCommand(newIndexDumpCmd())
	cmd.AddCommand(newIndexProvidersCmd(opts))

	return cmd
}

func newIndexDumpCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "dump PATH",
		Short: "Parse an APKINDEX and print every block",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			blocks, err := index.ParseBlocks(args[0])
			if err != nil {
				return err
			}

			virtual := 0
			for _, block := range blocks {
				name := block.Name
				if block.Virtual() {
					name += " (virtual)"
					virtual++
				}
				printKeyValue("package", fmt.Sprintf("%s-%s", name, block.Version))
				if len(block.Provides) > 0 {
					printDetail("provides: %s", strings.Join(block.Provides, ", "))
				}
				if len(block.Depends) > 0 {
					printDetail("depends: %s", strings.Join(block.Depends, ", "))
				}
				if block.ProviderPriority >= 0 {
					printDetail("priority: %d", block.ProviderPriority)
				}
			}

			printInfo("%d packages (%d virtual)", len(blocks), virtual)
			return nil
		},
	}
}

func newIndexProvidersCmd(opts *engineOpts) *cobra.Command {
	return &cobra.Command{
		Use:   "providers NAME",
		Short: "List the packages providing a name across all indexes",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			engine, err := opts.engine(ctx)
			if err != nil {
				return err
			}

			providers, err := engine.Providers(ctx, args[0], true)
			if err != nil {
				return err
			}

			printInfo("%s is provided by:", StyleHighlight.Render(args[0]))
			for _, name := range providers.Names() {
				pkg, _ := providers.Get(name)
				line := fmt.Sprintf("%s-%s", name, pkg.Version)
				if pkg.ProviderPriority >= 0 {
					line += fmt.Sprintf(" (priority %d)", pkg.ProviderPriority)
				}
				printDetail("%s", line)
			}
			return nil
		},
	}
}

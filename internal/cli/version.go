package cli

import (
	"github.com/spf13/cobra"

	apkerr "github.com/kalimokai/apkgraph/pkg/errors"
	"github.com/kalimokai/apkgraph/pkg/version"
)

// newVersionCmd creates the version command with compare and validate
// subcommands.
func newVersionCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Compare and validate package versions",
	}

	cmd.AddCommand(newVersionCompareCmd())
	cmd.AddCommand(newVersionValidateCmd())
	cmd.AddCommand(newVersionCheckCmd())

	return cmd
}

func newVersionCompareCmd() *cobra.Command {
	var fuzzy bool

	cmd := &cobra.Command{
		Use:   "compare A B",
		Short: "Compare two versions the way apk does",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, b := args[0], args[1]
			result := version.Compare(a, b)
			if fuzzy {
				result = version.CompareFuzzy(a, b)
			}
			symbol := map[int]string{-1: "<", 0: "=", 1: ">"}[result]
			printInfo("%s %s %s", StyleValue.Render(a), StyleHighlight.Render(symbol), StyleValue.Render(b))
			return nil
		},
	}

	cmd.Flags().BoolVar(&fuzzy, "fuzzy", false, "ignore characters changing type mid-version")
	return cmd
}

func newVersionCheckCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check VERSION RULE",
		Short: "Check a version against a rule like \">=1.0\" or \"<6.0\"",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ok, err := version.MatchRule(args[0], args[1])
			if err != nil {
				return apkerr.Wrap(apkerr.ErrCodeInvalidVersion, err, "match %q", args[1])
			}
			if !ok {
				return apkerr.New(apkerr.ErrCodeInvalidVersion,
					"%s does not match %s", args[0], args[1])
			}
			printSuccess("%s matches %s", StyleValue.Render(args[0]), StyleHighlight.Render(args[1]))
			return nil
		},
	}
}

func newVersionValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate VERSION",
		Short: "Check that a version is well-formed",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !version.Validate(args[0]) {
				return apkerr.New(apkerr.ErrCodeInvalidVersion, "invalid version %q", args[0])
			}
			printSuccess("%s is valid", StyleValue.Render(args[0]))
			return nil
		},
	}
}

package commands

import (
	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/idelchi/gopck/internal/config"
	"github.com/idelchi/gopck/internal/logic"
)

// NewCheckCommand creates a new cobra command for the check subcommand.
func NewCheckCommand(fs afero.Fs) *cobra.Command {
	cfg := &config.Check{}

	cmd := &cobra.Command{
		Use:   "check [flags] [paths...]",
		Short: "Validate that include/exclude patterns match files",
		Args:  cobra.ArbitraryArgs,
		PreRunE: preRun(cfg, func(cfg *config.Check, args []string) {
			if len(args) == 0 {
				args = []string{"."}
			}

			cfg.Paths = args
		}),
		RunE: func(cmd *cobra.Command, _ []string) error {
			return logic.Check(fs, cfg, cmd.OutOrStdout())
		},
	}

	flags := cmd.Flags()

	flags.StringSlice("include", nil, "Include patterns to check")
	flags.StringSlice("exclude", nil, "Exclude patterns to check")
	flags.String("include-from", "", "JSONC file with include patterns")
	flags.String("exclude-from", "", "JSONC file with exclude patterns")
	flags.BoolP("quiet", "q", false, "Only report patterns without matches")

	return cmd
}

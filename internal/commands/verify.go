package commands

import (
	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/idelchi/gopck/internal/config"
	"github.com/idelchi/gopck/internal/logic"
)

// NewVerifyCommand creates a new cobra command for the verify subcommand.
func NewVerifyCommand(fs afero.Fs) *cobra.Command {
	cfg := &config.Verify{}

	cmd := &cobra.Command{
		Use:   "verify [flags] archive",
		Short: "Check an archive's directory, signature and contents",
		Args:  cobra.ExactArgs(1),
		PreRunE: preRun(cfg, func(cfg *config.Verify, args []string) {
			cfg.Archive = args[0]
		}),
		RunE: func(cmd *cobra.Command, _ []string) error {
			return logic.Verify(fs, cfg, cmd.OutOrStdout(), newLogger(cmd))
		},
	}

	flags := cmd.Flags()

	flags.StringP("key", "k", "", "Content key (64 hex characters) for encrypted archives")
	flags.String("key-file", "", "File holding the content key")
	flags.StringP("public-key", "p", "", "Base64 public key to verify the signature with")
	flags.BoolP("contents", "c", false, "Also check every file against its digests")
	flags.BoolP("quiet", "q", false, "Suppress the listing")

	return cmd
}

package commands

import (
	"runtime"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/idelchi/gopck/internal/config"
	"github.com/idelchi/gopck/internal/logic"
	"github.com/idelchi/gopck/internal/pack"
	"github.com/idelchi/gopck/internal/signature"
)

// NewBuildCommand creates a new cobra command for the build subcommand.
func NewBuildCommand(fs afero.Fs) *cobra.Command {
	cfg := &config.Build{}

	cmd := &cobra.Command{
		Use:   "build [flags] [paths...]",
		Short: "Pack files into an archive",
		Long: `Pack files and directories into an archive. Files found under a directory
are stored relative to it, prefixed by --prefix; explicit files are stored by name.
A --manifest lists files and removals explicitly.`,
		Args: cobra.ArbitraryArgs,
		PreRunE: preRun(cfg, func(cfg *config.Build, args []string) {
			cfg.Paths = args
		}),
		RunE: func(cmd *cobra.Command, _ []string) error {
			return logic.Build(cmd.Context(), fs, cfg, cmd.OutOrStdout(), newLogger(cmd))
		},
	}

	flags := cmd.Flags()

	flags.StringP("output", "o", "game.pck", "Archive to write")
	flags.Int("alignment", pack.DefaultAlignment, "Alignment of the file data, in bytes")
	flags.StringP("key", "k", "", "Content key (64 hex characters), all zeros if unset")
	flags.String("key-file", "", "File holding the content key")
	flags.Bool("encrypt-directory", false, "Encrypt the directory with the content key")
	flags.BoolP("encrypt", "e", false, "Encrypt every file with the content key")
	flags.Bool("require-verification", false, "Mark every file as requiring digest verification")
	flags.String("prefix", "", "Prefix for archive paths of files found under path arguments")
	flags.StringSlice("include", nil, "Only pack files matching these patterns (find -path semantics)")
	flags.StringSlice("exclude", nil, "Skip files matching these patterns")
	flags.String("include-from", "", "JSONC file with include patterns")
	flags.String("exclude-from", "", "JSONC file with exclude patterns")
	flags.StringP("manifest", "m", "", "YAML manifest listing files and removals")
	flags.String("sign-key", "", "Base64 private key to sign the directory with")
	flags.String("sign-key-file", "", "File holding the base64 private key")
	flags.String("curve", signature.CurveSECP256R1.String(), "Curve of the signing key")
	flags.IntP("parallel", "j", runtime.NumCPU(), "Number of files hashed in parallel")
	flags.Bool("verbose", false, "Log every file as it is written")
	flags.BoolP("quiet", "q", false, "Suppress non-error output")
	flags.Bool("stats", false, "Print statistics when done")
	flags.Bool("dry", false, "Show what would be packed without writing")

	return cmd
}

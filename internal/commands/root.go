package commands

import (
	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/idelchi/gogen/pkg/cobraext"
)

// NewRootCommand creates the root command with all subcommands operating on fs.
func NewRootCommand(version string, fs afero.Fs) *cobra.Command {
	root := cobraext.NewDefaultRootCommand(version)

	root.Use = "gopck [flags] command [flags]"
	root.Short = "Signed, encrypted pack archive builder"
	root.Long = `Builds pack archives from project directories or manifests.
Files may be encrypted with a 256-bit content key and the directory may be
signed with ECDSA, so that tampering is detected when the archive is verified.
Every flag can also be set through a GOPCK_<FLAG> environment variable.`
	root.SilenceUsage = true
	root.SilenceErrors = true

	root.PersistentFlags().Bool("debug", false, "Enable debug logging")

	root.AddCommand(
		NewBuildCommand(fs),
		NewKeygenCommand(),
		NewVerifyCommand(fs),
		NewCheckCommand(fs),
	)

	return root
}

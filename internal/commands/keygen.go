package commands

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/idelchi/gopck/internal/config"
	"github.com/idelchi/gopck/internal/logic"
	"github.com/idelchi/gopck/internal/signature"
)

// NewKeygenCommand creates a new cobra command for the keygen subcommand.
func NewKeygenCommand() *cobra.Command {
	cfg := &config.Keygen{}

	names := make([]string, 0)
	for _, c := range signature.SupportedCurves() {
		names = append(names, c.String())
	}

	cmd := &cobra.Command{
		Use:     "keygen [flags]",
		Aliases: []string{"gen"},
		Short:   "Generate a signing key pair and a content key",
		Long:    "Generate a signing key pair and a content key. Supported curves: " + strings.Join(names, ", "),
		Args:    cobra.NoArgs,
		PreRunE: preRun[*config.Keygen](cfg, nil),
		RunE: func(cmd *cobra.Command, _ []string) error {
			return logic.Keygen(cfg.Curve, cmd.OutOrStdout())
		},
	}

	cmd.Flags().String("curve", signature.CurveSECP256R1.String(), "Curve of the signing key")

	return cmd
}

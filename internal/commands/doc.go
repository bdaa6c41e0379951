// Package commands provides the command-line interface for the gopck tool.
//
// It implements commands for:
//   - building archives
//   - generating keys
//   - verifying archives
//   - checking file selection patterns
//
// The package handles command-line parsing, configuration validation,
// and environment variable binding through cobra and viper.
package commands

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// envPrefix is the prefix of environment variables mirroring flags.
const envPrefix = "GOPCK"

// validator is implemented by every command configuration.
type validator interface {
	Validate() error
}

// bind loads flags and GOPCK_* environment variables into cfg.
func bind(cmd *cobra.Command, cfg any) error {
	v := viper.New()

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if err := v.BindPFlags(cmd.Flags()); err != nil {
		return fmt.Errorf("binding flags: %w", err)
	}

	if err := v.Unmarshal(cfg); err != nil {
		return fmt.Errorf("parsing config: %w", err)
	}

	return nil
}

// preRun returns a PreRunE handler that binds cfg, lets args fill in the
// positional fields and validates the result.
func preRun[T validator](cfg T, args func(T, []string)) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, positional []string) error {
		if err := bind(cmd, cfg); err != nil {
			return err
		}

		if args != nil {
			args(cfg, positional)
		}

		return cfg.Validate()
	}
}

// newLogger renders slog records through charmbracelet/log on stderr.
func newLogger(cmd *cobra.Command) *slog.Logger {
	level := log.InfoLevel

	if debug, _ := cmd.Flags().GetBool("debug"); debug {
		level = log.DebugLevel
	}

	return slog.New(log.NewWithOptions(os.Stderr, log.Options{
		Prefix: "gopck",
		Level:  level,
	}))
}

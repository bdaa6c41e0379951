// Package config holds the validated settings of each gopck command.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Patterns selects files when building from directories.
type Patterns struct {
	Include     []string
	Exclude     []string
	IncludeFrom string `label:"--include-from" mapstructure:"include-from"`
	ExcludeFrom string `label:"--exclude-from" mapstructure:"exclude-from"`
}

// HasIncludes reports whether include filtering was requested.
func (p Patterns) HasIncludes() bool {
	return len(p.Include) > 0 || p.IncludeFrom != ""
}

// HasExcludes reports whether exclude filtering was requested.
func (p Patterns) HasExcludes() bool {
	return len(p.Exclude) > 0 || p.ExcludeFrom != ""
}

// Build configures the build command.
type Build struct {
	Patterns `mapstructure:",squash"`

	Output    string `label:"--output"    validate:"required"`
	Alignment int    `label:"--alignment" validate:"gt=0"`

	// Key is the content key, hex encoded, so 32 bytes = 64 chars.
	Key     string `label:"--key"      validate:"omitempty,len=64,hexadecimal,exclusive=KeyFile"`
	KeyFile string `label:"--key-file" mapstructure:"key-file"`

	EncryptDirectory    bool `mapstructure:"encrypt-directory"`
	Encrypt             bool
	RequireVerification bool `mapstructure:"require-verification"`

	// Prefix is prepended to targets of files found under path arguments.
	Prefix   string
	Manifest string `label:"--manifest"`

	SignKey     string `label:"--sign-key"      mapstructure:"sign-key"      validate:"exclusive=SignKeyFile"`
	SignKeyFile string `label:"--sign-key-file" mapstructure:"sign-key-file"`
	Curve       string `label:"--curve"         validate:"required"`

	Parallel int `label:"--parallel" validate:"gte=0"`
	Verbose  bool
	Quiet    bool
	Stats    bool
	Dry      bool

	// Paths are the positional arguments.
	Paths []string `label:"paths" validate:"required_without=Manifest"`
}

// Signed reports whether a signing key was configured.
func (b *Build) Signed() bool {
	return b.SignKey != "" || b.SignKeyFile != ""
}

// Validate validates the configuration against the struct tags.
func (b *Build) Validate() error {
	return validate(b)
}

// Keygen configures the keygen command.
type Keygen struct {
	Curve string `label:"--curve" validate:"required"`
}

// Validate validates the configuration against the struct tags.
func (k *Keygen) Validate() error {
	return validate(k)
}

// Verify configures the verify command.
type Verify struct {
	Archive string `label:"archive" validate:"required"`

	Key       string `label:"--key"        validate:"omitempty,len=64,hexadecimal,exclusive=KeyFile"`
	KeyFile   string `label:"--key-file"   mapstructure:"key-file"`
	PublicKey string `label:"--public-key" mapstructure:"public-key"`
	Contents  bool
	Quiet     bool
}

// Validate validates the configuration against the struct tags.
func (v *Verify) Validate() error {
	return validate(v)
}

// Check configures the check command.
type Check struct {
	Patterns `mapstructure:",squash"`

	Quiet bool
	Paths []string
}

// Validate ensures there is something to check.
func (c *Check) Validate() error {
	if !c.HasIncludes() && !c.HasExcludes() {
		return errors.New("no include or exclude patterns to check")
	}

	return validate(c)
}

func validate(cfg any) error {
	v := validator.New()

	if err := registerExclusive(v); err != nil {
		return err
	}

	err := v.Struct(cfg)
	if err == nil {
		return nil
	}

	var errs validator.ValidationErrors
	if !errors.As(err, &errs) {
		return fmt.Errorf("validating configuration: %w", err)
	}

	msgs := make([]string, 0, len(errs))
	for _, e := range errs {
		msgs = append(msgs, message(e))
	}

	return fmt.Errorf("validating configuration: %s", strings.Join(msgs, "; "))
}

func message(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return e.Field() + " is required"
	case "required_without":
		return e.Field() + " is required unless a manifest is given"
	case "exclusive":
		return e.Field() + " is mutually exclusive with its file variant"
	case "len", "hexadecimal":
		return e.Field() + " must be 64 hex characters"
	case "gt":
		return fmt.Sprintf("%s must be > %s", e.Field(), e.Param())
	case "gte":
		return fmt.Sprintf("%s must be >= %s", e.Field(), e.Param())
	default:
		return fmt.Sprintf("%s failed %q validation", e.Field(), e.Tag())
	}
}

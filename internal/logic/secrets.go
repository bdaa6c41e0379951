package logic

import (
	"fmt"
	"strings"

	"github.com/spf13/afero"
)

// readSecret returns the contents of file when set, else value, else fallback.
func readSecret(fs afero.Fs, value, file, fallback string) (string, error) {
	if file != "" {
		data, err := afero.ReadFile(fs, file)
		if err != nil {
			return "", fmt.Errorf("reading key file: %w", err)
		}

		return strings.TrimSpace(string(data)), nil
	}

	if value != "" {
		return value, nil
	}

	return fallback, nil
}

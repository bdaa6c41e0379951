// Package manifest loads YAML build manifests: explicit lists of files to
// pack and of paths to mark as removed in a patch archive.
package manifest

import (
	"bytes"
	"fmt"
	"path/filepath"

	"github.com/go-playground/validator/v10"
	"github.com/goccy/go-yaml"
	"github.com/spf13/afero"
)

// File is one file entry of a manifest.
type File struct {
	// Target is the archive path.
	Target string `validate:"required" yaml:"target"`
	// Source is relative to the manifest's directory unless absolute.
	Source  string `validate:"required" yaml:"source"`
	Encrypt bool   `yaml:"encrypt"`
	Verify  bool   `yaml:"verify"`
}

// Manifest lists what goes into an archive.
//
//	prefix: res://
//	files:
//	  - target: scenes/main.tscn
//	    source: build/main.tscn
//	    encrypt: true
//	removals:
//	  - scenes/old.tscn
type Manifest struct {
	// Prefix is prepended to every target.
	Prefix   string   `yaml:"prefix"`
	Files    []File   `validate:"dive"          yaml:"files"`
	Removals []string `validate:"dive,required" yaml:"removals"`
}

// Load reads and validates the manifest at path. Relative sources are
// resolved against the manifest's directory.
func Load(fs afero.Fs, path string) (*Manifest, error) {
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		return nil, fmt.Errorf("reading manifest %q: %w", path, err)
	}

	var m Manifest

	if err := yaml.NewDecoder(bytes.NewReader(data), yaml.DisallowUnknownField()).Decode(&m); err != nil {
		return nil, fmt.Errorf("parsing manifest %q: %w", path, err)
	}

	if err := validator.New().Struct(m); err != nil {
		return nil, fmt.Errorf("validating manifest %q: %w", path, err)
	}

	dir := filepath.Dir(path)

	for i, f := range m.Files {
		if !filepath.IsAbs(f.Source) {
			m.Files[i].Source = filepath.Join(dir, f.Source)
		}
	}

	return &m, nil
}

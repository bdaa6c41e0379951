// Package filter selects the project files that go into an archive, using
// include/exclude patterns with find -path semantics.
package filter

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"

	"github.com/idelchi/gopck/pkg/pathmatch"
)

// ErrNoFiles is returned when nothing survives filtering.
var ErrNoFiles = errors.New("no files matched the provided patterns")

// File is a selected file.
type File struct {
	// Path is the location on disk.
	Path string
	// Rel is the slash-separated path relative to the argument it was found
	// under; for an explicit file argument it is the base name.
	Rel string
}

// Filter selects files based on include/exclude patterns using find -path semantics.
// Empty includes means "match all". Excludes always win.
type Filter struct {
	includes *pathmatch.Matcher
	excludes *pathmatch.Matcher
}

// NewFilter compiles include/exclude patterns into a reusable filter.
func NewFilter(includes, excludes []string) (*Filter, error) {
	inc, err := pathmatch.NewMatcher(NormalizePatterns(includes))
	if err != nil {
		return nil, fmt.Errorf("compiling include patterns: %w", err)
	}

	exc, err := pathmatch.NewMatcher(NormalizePatterns(excludes))
	if err != nil {
		return nil, fmt.Errorf("compiling exclude patterns: %w", err)
	}

	return &Filter{includes: inc, excludes: exc}, nil
}

// Match reports whether the relative path should be included.
func (f *Filter) Match(rel string) bool {
	included := f.includes.Len() == 0 || f.includes.MatchAny(rel)
	excluded := f.excludes.MatchAny(rel)

	return included && !excluded
}

// NormalizePatterns strips leading "./" and "res://" so patterns match relative paths.
func NormalizePatterns(patterns []string) []string {
	out := make([]string, len(patterns))

	for i, p := range patterns {
		p = strings.TrimPrefix(p, "res://")
		out[i] = strings.TrimPrefix(p, "./")
	}

	return out
}

// Resolve expands args into files. Explicit files bypass filtering; directories
// are walked and filtered on paths relative to the directory.
// Returns the selected files, sorted per argument, and the number scanned.
func (f *Filter) Resolve(fsys afero.Fs, args []string) (files []File, scanned int, err error) {
	seen := make(map[string]struct{})

	add := func(file File) {
		if _, ok := seen[file.Path]; ok {
			return
		}

		seen[file.Path] = struct{}{}
		files = append(files, file)
	}

	for _, arg := range args {
		arg = filepath.Clean(arg)

		info, err := fsys.Stat(arg)
		if err != nil {
			return nil, 0, fmt.Errorf("stat %q: %w", arg, err)
		}

		if !info.IsDir() {
			scanned++

			add(File{Path: arg, Rel: filepath.Base(arg)})

			continue
		}

		walked, total, err := f.walkDir(fsys, arg)
		if err != nil {
			return nil, 0, err
		}

		scanned += total

		for _, file := range walked {
			add(file)
		}
	}

	if len(files) == 0 {
		return nil, scanned, fmt.Errorf("%w: %v", ErrNoFiles, args)
	}

	return files, scanned, nil
}

// walkDir walks root in lexical order, returning files that pass the filter.
func (f *Filter) walkDir(fsys afero.Fs, root string) (files []File, total int, err error) {
	err = afero.Walk(fsys, root, func(path string, info fs.FileInfo, err error) error {
		if err != nil {
			return err
		}

		if info.IsDir() {
			return nil
		}

		total++

		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}

		rel = filepath.ToSlash(rel)

		if !f.Match(rel) {
			return nil
		}

		files = append(files, File{Path: path, Rel: rel})

		return nil
	})
	if err != nil {
		return nil, 0, fmt.Errorf("walking %q: %w", root, err)
	}

	return files, total, nil
}

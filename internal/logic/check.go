package logic

import (
	"fmt"
	"io"
	"io/fs"
	"path/filepath"

	"github.com/spf13/afero"

	"github.com/idelchi/gopck/internal/config"
	"github.com/idelchi/gopck/pkg/pathmatch"
)

// Check validates that every include/exclude pattern matches at least one file.
func Check(fsys afero.Fs, cfg *config.Check, out io.Writer) error {
	includes, excludes, err := loadPatterns(fsys, cfg.Patterns)
	if err != nil {
		return err
	}

	candidates, err := collectFiles(fsys, cfg.Paths)
	if err != nil {
		return err
	}

	var failures int

	for _, set := range []struct {
		kind     string
		patterns []string
	}{
		{"include", includes},
		{"exclude", excludes},
	} {
		n, err := checkPatterns(out, set.kind, set.patterns, candidates, cfg.Quiet)
		if err != nil {
			return err
		}

		failures += n
	}

	if failures > 0 {
		return fmt.Errorf("%d pattern(s) matched no files", failures)
	}

	return nil
}

// collectFiles walks all positional args and returns every file path found,
// relative to the argument it was found under.
func collectFiles(fsys afero.Fs, args []string) ([]string, error) {
	var paths []string

	seen := make(map[string]struct{})

	for _, arg := range args {
		arg = filepath.Clean(arg)

		info, err := fsys.Stat(arg)
		if err != nil {
			return nil, fmt.Errorf("stat %q: %w", arg, err)
		}

		if !info.IsDir() {
			base := filepath.Base(arg)
			if _, ok := seen[base]; !ok {
				seen[base] = struct{}{}
				paths = append(paths, base)
			}

			continue
		}

		err = afero.Walk(fsys, arg, func(path string, info fs.FileInfo, err error) error {
			if err != nil {
				return err
			}

			if info.IsDir() {
				return nil
			}

			rel, err := filepath.Rel(arg, path)
			if err != nil {
				return err
			}

			rel = filepath.ToSlash(rel)
			if _, ok := seen[rel]; !ok {
				seen[rel] = struct{}{}
				paths = append(paths, rel)
			}

			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("walking %q: %w", arg, err)
		}
	}

	return paths, nil
}

// checkPatterns reports per-pattern match counts and returns the number of
// patterns that matched zero files.
func checkPatterns(out io.Writer, kind string, patterns, candidates []string, quiet bool) (int, error) {
	matcher, err := pathmatch.NewMatcher(patterns)
	if err != nil {
		return 0, fmt.Errorf("%s patterns: %w", kind, err)
	}

	var failures int

	for idx, count := range matcher.Count(candidates) {
		switch {
		case count == 0:
			fmt.Fprintf(out, "%s: %s: 0 files (ERROR)\n", kind, patterns[idx])

			failures++
		case !quiet:
			fmt.Fprintf(out, "%s: %s: %d files\n", kind, patterns[idx], count)
		}
	}

	return failures, nil
}

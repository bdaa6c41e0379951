package logic

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/spf13/afero"

	"github.com/idelchi/gopck/internal/config"
	"github.com/idelchi/gopck/internal/fileutil"
	"github.com/idelchi/gopck/internal/filter"
	"github.com/idelchi/gopck/internal/manifest"
	"github.com/idelchi/gopck/internal/pack"
	"github.com/idelchi/gopck/internal/signature"
)

// ErrDuplicateTarget is returned when two inputs map to the same archive path.
var ErrDuplicateTarget = errors.New("duplicate archive path")

// plan is the resolved input of a build.
type plan struct {
	sources  []pack.Source
	removals []string
	scanned  int
	size     int64
}

// Build packs the configured inputs into cfg.Output. The archive is written
// to a temporary file and renamed into place only when the flush succeeds.
func Build(ctx context.Context, fs afero.Fs, cfg *config.Build, out io.Writer, logger *slog.Logger) (err error) {
	start := time.Now()

	key, err := readSecret(fs, cfg.Key, cfg.KeyFile, pack.DefaultKey)
	if err != nil {
		return err
	}

	signKey, curve := "", signature.CurveNone

	if cfg.Signed() {
		if signKey, err = readSecret(fs, cfg.SignKey, cfg.SignKeyFile, ""); err != nil {
			return err
		}

		if curve, err = signature.ParseCurve(cfg.Curve); err != nil {
			return err
		}
	}

	p, err := resolveInputs(fs, cfg)
	if err != nil {
		return fmt.Errorf("resolving inputs: %w", err)
	}

	if cfg.Dry {
		dryRun(cfg, p, out)

		if cfg.Stats {
			printStats(out, stats{plan: p, duration: time.Since(start)})
		}

		return nil
	}

	tc, err := fileutil.NewTempContext(fs, cfg.Output)
	if err != nil {
		return fmt.Errorf("preparing atomic write: %w", err)
	}

	defer tc.CleanupOnError(&err)

	builder := pack.NewBuilder(pack.WithFS(fs), pack.WithLogger(logger))
	defer builder.Close() //nolint:errcheck // no-op after a successful flush

	if err := builder.Start(tc.TmpName, cfg.Alignment, key, cfg.EncryptDirectory); err != nil {
		return fmt.Errorf("starting archive: %w", err)
	}

	if err := builder.AddFiles(ctx, p.sources, cfg.Parallel); err != nil {
		return fmt.Errorf("adding files: %w", err)
	}

	for _, target := range p.removals {
		if err := builder.AddFileRemoval(target); err != nil {
			return fmt.Errorf("adding removal %q: %w", target, err)
		}
	}

	if err := builder.FlushAndSign(signKey, curve, cfg.Verbose); err != nil {
		return fmt.Errorf("flushing archive: %w", err)
	}

	size, err := tc.Commit()
	if err != nil {
		return fmt.Errorf("finalizing output: %w", err)
	}

	digest := builder.DirectoryDigest()

	logger.Debug("archive written", "path", cfg.Output, "entries", len(builder.Entries()), "signed", signKey != "")

	if !cfg.Quiet {
		fmt.Fprintf(out, "Packed %d file(s) into %q (directory sha256 %x)\n", len(p.sources), cfg.Output, digest[:])
	}

	if cfg.Stats {
		printStats(out, stats{plan: p, archive: size, duration: time.Since(start)})
	}

	return nil
}

// resolveInputs collects sources from path arguments and the manifest, and
// rejects targets that collide after normalization.
func resolveInputs(fs afero.Fs, cfg *config.Build) (*plan, error) {
	p := &plan{}

	if len(cfg.Paths) > 0 {
		includes, excludes, err := loadPatterns(fs, cfg.Patterns)
		if err != nil {
			return nil, err
		}

		flt, err := filter.NewFilter(includes, excludes)
		if err != nil {
			return nil, err
		}

		files, scanned, err := flt.Resolve(fs, cfg.Paths)
		if err != nil {
			return nil, fmt.Errorf("filtering files: %w", err)
		}

		p.scanned = scanned

		for _, f := range files {
			p.sources = append(p.sources, pack.Source{
				Target:              joinTarget(cfg.Prefix, f.Rel),
				Path:                f.Path,
				Encrypt:             cfg.Encrypt,
				RequireVerification: cfg.RequireVerification,
			})
		}
	}

	if cfg.Manifest != "" {
		m, err := manifest.Load(fs, cfg.Manifest)
		if err != nil {
			return nil, err
		}

		for _, f := range m.Files {
			p.scanned++

			p.sources = append(p.sources, pack.Source{
				Target:              joinTarget(m.Prefix, f.Target),
				Path:                f.Source,
				Encrypt:             f.Encrypt || cfg.Encrypt,
				RequireVerification: f.Verify || cfg.RequireVerification,
			})
		}

		for _, r := range m.Removals {
			p.removals = append(p.removals, joinTarget(m.Prefix, r))
		}
	}

	seen := make(map[string]string)

	for _, src := range p.sources {
		target := pack.NormalizePath(src.Target)

		if prev, ok := seen[target]; ok {
			return nil, fmt.Errorf("%w: %q from %q and %q", ErrDuplicateTarget, target, prev, src.Path)
		}

		seen[target] = src.Path

		if info, err := fs.Stat(src.Path); err == nil {
			p.size += info.Size()
		}
	}

	return p, nil
}

// loadPatterns merges CLI and file-based include/exclude patterns.
func loadPatterns(fs afero.Fs, cfg config.Patterns) (includes, excludes []string, err error) {
	includes = append(includes, cfg.Include...)
	excludes = append(excludes, cfg.Exclude...)

	if cfg.IncludeFrom != "" {
		patterns, err := filter.LoadPatterns(fs, cfg.IncludeFrom)
		if err != nil {
			return nil, nil, fmt.Errorf("loading include patterns: %w", err)
		}

		includes = append(includes, patterns...)
	}

	if cfg.ExcludeFrom != "" {
		patterns, err := filter.LoadPatterns(fs, cfg.ExcludeFrom)
		if err != nil {
			return nil, nil, fmt.Errorf("loading exclude patterns: %w", err)
		}

		excludes = append(excludes, patterns...)
	}

	return filter.NormalizePatterns(includes), filter.NormalizePatterns(excludes), nil
}

func joinTarget(prefix, rel string) string {
	if prefix == "" || strings.HasSuffix(prefix, "/") {
		return prefix + rel
	}

	return prefix + "/" + rel
}

// dryRun previews what would be packed without writing anything.
func dryRun(cfg *config.Build, p *plan, out io.Writer) {
	if cfg.Quiet {
		return
	}

	for _, src := range p.sources {
		fmt.Fprintf(out, "Pack %q -> %q\n", src.Path, pack.NormalizePath(src.Target))
	}

	for _, target := range p.removals {
		fmt.Fprintf(out, "Remove %q\n", pack.NormalizePath(target))
	}
}

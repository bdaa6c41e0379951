package pack

import (
	"io"
	"log/slog"

	"github.com/spf13/afero"
)

// Progress describes one file written during flush.
type Progress struct {
	// Count is the number of data files written so far, including this one.
	Count int
	// Total is the number of directory entries.
	Total  int
	Source string
	Target string
}

// Percent returns the completion percentage, truncated.
func (p Progress) Percent() int {
	if p.Total == 0 {
		return 0
	}

	return p.Count * 100 / p.Total //nolint:mnd
}

// Option configures a Builder.
type Option func(*Builder)

// WithFS sets the filesystem used for sources and the destination.
func WithFS(fs afero.Fs) Option {
	return func(b *Builder) {
		b.fs = fs
	}
}

// WithLogger sets the logger for verbose flush output.
func WithLogger(logger *slog.Logger) Option {
	return func(b *Builder) {
		b.logger = logger
	}
}

// WithRandom sets the source for IVs and signature nonces.
// Without it, a random.Generator seeded from the OS is created on first use.
func WithRandom(r io.Reader) Option {
	return func(b *Builder) {
		b.random = r
	}
}

// WithVersion sets the producer version stored in the header.
func WithVersion(v Version) Option {
	return func(b *Builder) {
		b.version = v
	}
}

// WithProgress registers a callback invoked after each data file is written.
func WithProgress(fn func(Progress)) Option {
	return func(b *Builder) {
		b.progress = fn
	}
}

// WithoutSignatures disables signing, as in a build without ECDSA support.
// FlushAndSign then rejects any private key.
func WithoutSignatures() Option {
	return func(b *Builder) {
		b.signatures = false
	}
}

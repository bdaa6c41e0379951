package random

import (
	"crypto/rand"
	"crypto/sha256"
	"fmt"
	"io"

	"golang.org/x/crypto/chacha20"
	"golang.org/x/crypto/hkdf"
)

const (
	// seedSize is the number of entropy bytes accumulated at initialization.
	seedSize = 48

	drbgInfo = "gopck/drbg"
)

// Generator is an entropy-seeded deterministic random bit generator.
// It implements io.Reader once initialized.
type Generator struct {
	// entropy is the accumulator's source, crypto/rand.Reader unless overridden
	entropy io.Reader

	// stream is the keystream, nil until Initialize succeeds
	stream *chacha20.Cipher
}

// Option configures a Generator.
type Option func(*Generator)

// WithEntropy replaces the entropy source. Tests use it to obtain a
// reproducible byte stream.
func WithEntropy(r io.Reader) Option {
	return func(g *Generator) {
		g.entropy = r
	}
}

// New returns an unconfigured Generator. Initialize must be called before use.
func New(opts ...Option) *Generator {
	g := &Generator{entropy: rand.Reader}

	for _, opt := range opts {
		opt(g)
	}

	return g
}

// NewInitialized is a convenience for New followed by Initialize.
func NewInitialized(opts ...Option) (*Generator, error) {
	g := New(opts...)
	if err := g.Initialize(); err != nil {
		return nil, err
	}

	return g, nil
}

// Initialize seeds the generator from its entropy source.
// A failure of the entropy source is returned wrapped in ErrEntropy and leaves
// the generator unconfigured.
func (g *Generator) Initialize() error {
	seed := make([]byte, seedSize)
	if _, err := io.ReadFull(g.entropy, seed); err != nil {
		return fmt.Errorf("%w: %w", ErrEntropy, err)
	}

	material := make([]byte, chacha20.KeySize+chacha20.NonceSize)

	kdf := hkdf.New(sha256.New, seed, nil, []byte(drbgInfo))
	if _, err := io.ReadFull(kdf, material); err != nil {
		return fmt.Errorf("deriving generator key: %w", err)
	}

	stream, err := chacha20.NewUnauthenticatedCipher(material[:chacha20.KeySize], material[chacha20.KeySize:])
	if err != nil {
		return fmt.Errorf("creating keystream: %w", err)
	}

	clear(seed)
	clear(material)

	g.stream = stream

	return nil
}

// Initialized reports whether Initialize has succeeded.
func (g *Generator) Initialized() bool {
	return g.stream != nil
}

// Read fills p with random bytes.
func (g *Generator) Read(p []byte) (int, error) {
	if g.stream == nil {
		return 0, ErrUnconfigured
	}

	clear(p)
	g.stream.XORKeyStream(p, p)

	return len(p), nil
}

// Bytes returns n random bytes.
func (g *Generator) Bytes(n int) ([]byte, error) {
	if n < 0 {
		return nil, fmt.Errorf("invalid byte count: %d", n)
	}

	buf := make([]byte, n)
	if _, err := g.Read(buf); err != nil {
		return nil, err
	}

	return buf, nil
}

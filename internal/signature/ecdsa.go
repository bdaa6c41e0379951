package signature

import (
	"crypto/elliptic"
	"fmt"
	"io"
	"log/slog"
)

// HashSize is the length of the digests that are signed.
const HashSize = 32

// MaxSignatureSize bounds the DER signatures produced for any supported curve.
const MaxSignatureSize = 4096

// KeyPair holds raw key material for one curve.
type KeyPair struct {
	Curve Curve
	// Private is the big-endian scalar, empty for verify-only pairs.
	Private []byte
	// Public is the uncompressed point.
	Public []byte
}

// curveImpl is the per-curve arithmetic behind a Context.
type curveImpl interface {
	scalarSize() int
	generate(random io.Reader) (priv, pub []byte, err error)
	derivePublic(priv []byte) ([]byte, error)
	checkPublic(pub []byte) error
	sign(random io.Reader, priv, hash []byte) ([]byte, error)
	verify(pub, hash, sig []byte) bool
}

func implementation(c Curve) curveImpl {
	switch c {
	case CurveSECP224R1:
		return nistCurve{curve: elliptic.P224(), size: 28}
	case CurveSECP256R1:
		return nistCurve{curve: elliptic.P256(), size: 32}
	case CurveSECP384R1:
		return nistCurve{curve: elliptic.P384(), size: 48}
	case CurveSECP521R1:
		return nistCurve{curve: elliptic.P521(), size: 66}
	case CurveSECP256K1:
		return koblitzCurve{}
	default:
		return nil
	}
}

// Context signs and verifies with one curve and at most one loaded key pair.
// It is not safe for concurrent use.
type Context struct {
	curve  Curve
	impl   curveImpl
	random io.Reader
	silent bool
	logger *slog.Logger
	keys   KeyPair
}

// Option configures a Context.
type Option func(*Context)

// WithSilent controls whether failures are logged in addition to being returned.
func WithSilent(silent bool) Option {
	return func(c *Context) {
		c.silent = silent
	}
}

// WithLogger sets the logger used for non-silent failures.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Context) {
		c.logger = logger
	}
}

// New returns a Context for curve. random supplies key generation and nonce
// entropy, typically an initialized *random.Generator.
func New(curve Curve, random io.Reader, opts ...Option) (*Context, error) {
	impl := implementation(curve)
	if impl == nil {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedCurve, curve)
	}

	if random == nil {
		return nil, ErrNoRandom
	}

	c := &Context{
		curve:  curve,
		impl:   impl,
		random: random,
	}

	for _, opt := range opts {
		opt(c)
	}

	if c.logger == nil {
		c.logger = slog.New(slog.DiscardHandler)
	}

	return c, nil
}

// Curve returns the curve of the context.
func (c *Context) Curve() Curve {
	return c.curve
}

// SetSilent switches silent mode.
func (c *Context) SetSilent(silent bool) {
	c.silent = silent
}

// KeyPair returns a copy of the loaded key material.
func (c *Context) KeyPair() KeyPair {
	return KeyPair{
		Curve:   c.keys.Curve,
		Private: append([]byte(nil), c.keys.Private...),
		Public:  append([]byte(nil), c.keys.Public...),
	}
}

func (c *Context) fail(op string, err error) error {
	if !c.silent {
		c.logger.Error("ecdsa operation failed", "op", op, "curve", c.curve.String(), "error", err)
	}

	return err
}

// GenerateKeyPair creates and loads a new key pair.
func (c *Context) GenerateKeyPair() (KeyPair, error) {
	priv, pub, err := c.impl.generate(c.random)
	if err != nil {
		return KeyPair{}, c.fail("generate", fmt.Errorf("%w: %w", ErrKeyGeneration, err))
	}

	c.keys = KeyPair{Curve: c.curve, Private: priv, Public: pub}

	return c.KeyPair(), nil
}

// ValidatePrivateKey checks that priv is a valid scalar for the curve without
// changing the loaded key.
func (c *Context) ValidatePrivateKey(priv []byte) error {
	if _, err := c.impl.derivePublic(priv); err != nil {
		return fmt.Errorf("%w: private key: %w", ErrInvalidKey, err)
	}

	return nil
}

// ValidatePublicKey checks that pub is an uncompressed point on the curve
// without changing the loaded key.
func (c *Context) ValidatePublicKey(pub []byte) error {
	if err := c.impl.checkPublic(pub); err != nil {
		return fmt.Errorf("%w: public key: %w", ErrInvalidKey, err)
	}

	return nil
}

// SetPrivateKey loads priv and derives its public point.
func (c *Context) SetPrivateKey(priv []byte) error {
	pub, err := c.impl.derivePublic(priv)
	if err != nil {
		return c.fail("set_private_key", fmt.Errorf("%w: private key: %w", ErrInvalidKey, err))
	}

	scalar, err := leftPad(priv, c.impl.scalarSize())
	if err != nil {
		return c.fail("set_private_key", fmt.Errorf("%w: private key: %w", ErrInvalidKey, err))
	}

	c.keys = KeyPair{Curve: c.curve, Private: scalar, Public: pub}

	return nil
}

// SetPublicKey loads a verify-only key.
func (c *Context) SetPublicKey(pub []byte) error {
	if err := c.impl.checkPublic(pub); err != nil {
		return c.fail("set_public_key", fmt.Errorf("%w: public key: %w", ErrInvalidKey, err))
	}

	c.keys = KeyPair{Curve: c.curve, Public: append([]byte(nil), pub...)}

	return nil
}

// Sign signs a 32-byte digest with the loaded private key and returns the
// DER-encoded signature.
func (c *Context) Sign(hash []byte) ([]byte, error) {
	if len(hash) != HashSize {
		return nil, c.fail("sign", fmt.Errorf("%w: got %d", ErrHashSize, len(hash)))
	}

	if len(c.keys.Private) == 0 {
		return nil, c.fail("sign", ErrNoKey)
	}

	sig, err := c.impl.sign(c.random, c.keys.Private, hash)
	if err != nil {
		return nil, c.fail("sign", fmt.Errorf("%w: %w", ErrSign, err))
	}

	return sig, nil
}

// SignTo signs hash into out and returns the number of bytes used.
func (c *Context) SignTo(hash, out []byte) (int, error) {
	sig, err := c.Sign(hash)
	if err != nil {
		return 0, err
	}

	if len(sig) > len(out) {
		return 0, c.fail("sign", fmt.Errorf("%w: need %d, have %d", ErrShortBuffer, len(sig), len(out)))
	}

	return copy(out, sig), nil
}

// Verify checks sig over a 32-byte digest against the loaded public key.
func (c *Context) Verify(hash, sig []byte) error {
	if len(hash) != HashSize {
		return c.fail("verify", fmt.Errorf("%w: got %d", ErrHashSize, len(hash)))
	}

	if len(c.keys.Public) == 0 {
		return c.fail("verify", ErrNoKey)
	}

	if !c.impl.verify(c.keys.Public, hash, sig) {
		return c.fail("verify", ErrVerify)
	}

	return nil
}

// leftPad widens a big-endian scalar to size bytes.
func leftPad(raw []byte, size int) ([]byte, error) {
	if len(raw) == 0 || len(raw) > size {
		return nil, fmt.Errorf("scalar must be 1 to %d bytes, got %d", size, len(raw))
	}

	out := make([]byte, size)
	copy(out[size-len(raw):], raw)

	return out, nil
}

package signature

import "errors"

var (
	// ErrUnsupportedCurve is returned for curves without an implementation.
	ErrUnsupportedCurve = errors.New("unsupported curve")
	// ErrNoRandom is returned when a Context is created without a random source.
	ErrNoRandom = errors.New("random source required")
	// ErrInvalidKey is returned for key material that is malformed or off the curve.
	ErrInvalidKey = errors.New("invalid key")
	// ErrNoKey is returned when signing or verifying before a key is loaded.
	ErrNoKey = errors.New("no key loaded")
	// ErrHashSize is returned when the digest is not 32 bytes.
	ErrHashSize = errors.New("digest must be 32 bytes")
	// ErrKeyGeneration is returned when a key pair cannot be generated.
	ErrKeyGeneration = errors.New("key generation failed")
	// ErrSign is returned when signing fails.
	ErrSign = errors.New("signing failed")
	// ErrVerify is returned when a signature does not match.
	ErrVerify = errors.New("signature verification failed")
	// ErrShortBuffer is returned when a signature does not fit the caller's buffer.
	ErrShortBuffer = errors.New("signature buffer too short")
)

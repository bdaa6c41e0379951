// Package signature implements ECDSA key handling, signing and verification
// over a fixed set of named curves.
//
// Signatures are computed over caller-supplied 32-byte SHA-256 digests and
// encoded as ASN.1 DER. Private keys are raw big-endian scalars and public keys
// uncompressed points, both at the fixed length of their curve.
//
// A Context never panics on bad input. In silent mode failures are only
// returned; otherwise they are also logged at error level. Use silent mode when
// verifying untrusted archives.
package signature

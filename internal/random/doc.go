// Package random provides the random byte source used for signature nonces,
// key generation and encryption IVs.
//
// A Generator accumulates entropy from an OS-level source once, at
// initialization, and expands it with a ChaCha20 keystream keyed through
// HKDF-SHA256. Each logical user owns its own Generator; instances are not
// safe for concurrent use.
package random

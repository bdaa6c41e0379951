package encryption

import "errors"

var (
	// ErrKeySize is returned for keys that are not 16, 24 or 32 bytes long.
	ErrKeySize = errors.New("invalid AES key size")
	// ErrNoKey is returned when a direction is used before its key is set.
	ErrNoKey = errors.New("cipher key not set")
	// ErrIVSize is returned when an IV is not exactly one block long.
	ErrIVSize = errors.New("IV must be 16 bytes")
	// ErrInvalidBlockSize is returned when data length is not aligned with AES block size.
	ErrInvalidBlockSize = errors.New("data is not a multiple of block size")
	// ErrShortBuffer is returned when the destination cannot hold the output.
	ErrShortBuffer = errors.New("destination buffer too short")
	// ErrTagMismatch is returned when decrypted content does not match its stored tag.
	ErrTagMismatch = errors.New("encrypted content tag mismatch")
	// ErrTruncated is returned when an encrypted blob ends early.
	ErrTruncated = errors.New("encrypted blob truncated")
	// ErrClosed is returned when writing to a closed Writer.
	ErrClosed = errors.New("write to closed encrypting writer")
)

package pack

import (
	"errors"
	"fmt"
)

var (
	// ErrConfiguration is returned for malformed keys, bad alignment and
	// signing requests the builder cannot honor.
	ErrConfiguration = errors.New("configuration error")
	// ErrIO is returned when a file cannot be created, opened, read or written.
	ErrIO = errors.New("i/o error")
	// ErrCrypto is returned when a digest, cipher or signature operation fails.
	ErrCrypto = errors.New("crypto error")
	// ErrState is returned when an operation is called in the wrong builder state.
	ErrState = errors.New("invalid builder state")
	// ErrCorrupt is returned by Inspect for archives that do not parse or verify.
	ErrCorrupt = errors.New("corrupt archive")
)

func ioError(what string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrIO, what, err)
}

func cryptoError(what string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrCrypto, what, err)
}

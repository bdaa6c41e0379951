package digest

import (
	"crypto/md5" //nolint:gosec // content fingerprint, not a security boundary on its own
	"crypto/sha1" //nolint:gosec // content fingerprint, not a security boundary on its own
	"crypto/sha256"
	"errors"
	"fmt"
	"hash"
)

// ErrNotStarted is returned when a context is updated or finished outside a
// Start/Finish cycle.
var ErrNotStarted = errors.New("digest context not started")

// Algorithm identifies a supported hash function.
type Algorithm int

const (
	// AlgorithmMD5 produces 16-byte digests.
	AlgorithmMD5 Algorithm = iota
	// AlgorithmSHA1 produces 20-byte digests.
	AlgorithmSHA1
	// AlgorithmSHA256 produces 32-byte digests.
	AlgorithmSHA256
)

// Digest sizes in bytes.
const (
	MD5Size    = md5.Size
	SHA1Size   = sha1.Size
	SHA256Size = sha256.Size
)

func (a Algorithm) String() string {
	switch a {
	case AlgorithmMD5:
		return "md5"
	case AlgorithmSHA1:
		return "sha1"
	case AlgorithmSHA256:
		return "sha256"
	default:
		return fmt.Sprintf("algorithm(%d)", int(a))
	}
}

// Size returns the digest length of the algorithm.
func (a Algorithm) Size() int {
	switch a {
	case AlgorithmMD5:
		return MD5Size
	case AlgorithmSHA1:
		return SHA1Size
	case AlgorithmSHA256:
		return SHA256Size
	default:
		return 0
	}
}

func (a Algorithm) new() hash.Hash {
	switch a {
	case AlgorithmMD5:
		return md5.New() //nolint:gosec
	case AlgorithmSHA1:
		return sha1.New() //nolint:gosec
	default:
		return sha256.New()
	}
}

// Context is a streaming hash state. It is single-use between Start and
// Finish and is not safe for concurrent use.
type Context struct {
	algorithm Algorithm
	state     hash.Hash
}

// NewMD5 returns an MD5 context.
func NewMD5() *Context { return &Context{algorithm: AlgorithmMD5} }

// NewSHA1 returns a SHA-1 context.
func NewSHA1() *Context { return &Context{algorithm: AlgorithmSHA1} }

// NewSHA256 returns a SHA-256 context.
func NewSHA256() *Context { return &Context{algorithm: AlgorithmSHA256} }

// Algorithm returns the hash function of the context.
func (c *Context) Algorithm() Algorithm {
	return c.algorithm
}

// Start resets the context. It may be called again after Finish to reuse it.
func (c *Context) Start() {
	c.state = c.algorithm.new()
}

// Update appends p to the running digest.
func (c *Context) Update(p []byte) error {
	if c.state == nil {
		return ErrNotStarted
	}

	c.state.Write(p) //nolint:errcheck // hash.Hash writes never fail

	return nil
}

// Write implements io.Writer so a context can sit behind io.MultiWriter.
func (c *Context) Write(p []byte) (int, error) {
	if err := c.Update(p); err != nil {
		return 0, err
	}

	return len(p), nil
}

// Finish returns the digest and invalidates the context until the next Start.
func (c *Context) Finish() ([]byte, error) {
	if c.state == nil {
		return nil, ErrNotStarted
	}

	sum := c.state.Sum(nil)
	c.state = nil

	return sum, nil
}

// SumMD5 returns the MD5 digest of data.
func SumMD5(data []byte) [MD5Size]byte {
	return md5.Sum(data) //nolint:gosec
}

// SumSHA1 returns the SHA-1 digest of data.
func SumSHA1(data []byte) [SHA1Size]byte {
	return sha1.Sum(data) //nolint:gosec
}

// SumSHA256 returns the SHA-256 digest of data.
func SumSHA256(data []byte) [SHA256Size]byte {
	return sha256.Sum256(data)
}

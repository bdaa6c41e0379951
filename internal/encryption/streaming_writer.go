package encryption

import (
	"crypto/md5" //nolint:gosec // integrity tag format of the archive
	"crypto/rand"
	"fmt"
	"io"
)

// Writer wraps an io.Writer and encrypts everything written to it into a
// single framed blob. Plaintext is buffered until Close, because the tag and
// length precede the ciphertext.
type Writer struct {
	w       io.Writer
	ctx     *Context
	rand    io.Reader
	buffer  []byte
	written uint64
	closed  bool
}

// NewWriter returns a Writer that encrypts into w with the 32-byte key.
// IVs are drawn from random; a nil random uses crypto/rand.
func NewWriter(w io.Writer, key []byte, random io.Reader) (*Writer, error) {
	if len(key) != KeySize {
		return nil, fmt.Errorf("%w: content key must be %d bytes, got %d", ErrKeySize, KeySize, len(key))
	}

	ctx := NewContext()
	if err := ctx.SetEncodeKey(key); err != nil {
		return nil, err
	}

	if random == nil {
		random = rand.Reader
	}

	return &Writer{
		w:    w,
		ctx:  ctx,
		rand: random,
	}, nil
}

// Write implements io.Writer, buffering data until Close.
func (sw *Writer) Write(data []byte) (int, error) {
	if sw.closed {
		return 0, ErrClosed
	}

	sw.buffer = append(sw.buffer, data...)

	return len(data), nil
}

// Close encrypts the buffered plaintext and writes the framed blob.
func (sw *Writer) Close() error {
	if sw.closed {
		return nil
	}

	sw.closed = true

	header := envelopeHeader{
		tag:    md5.Sum(sw.buffer), //nolint:gosec
		length: uint64(len(sw.buffer)),
	}

	if _, err := io.ReadFull(sw.rand, header.iv[:]); err != nil {
		return fmt.Errorf("generating IV: %w", err)
	}

	if _, err := sw.w.Write(header.marshal()); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}

	padded := zeroPad(sw.buffer)
	iv := header.iv

	if err := sw.ctx.EncryptCFB(iv[:], padded, padded); err != nil {
		return fmt.Errorf("encrypting content: %w", err)
	}

	if _, err := sw.w.Write(padded); err != nil {
		return fmt.Errorf("writing encrypted content: %w", err)
	}

	sw.written = Overhead + uint64(len(padded))
	sw.buffer = nil

	return nil
}

// Written returns the framed size emitted by Close, zero before it.
func (sw *Writer) Written() uint64 {
	return sw.written
}

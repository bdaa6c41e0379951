package encryption

import (
	"bytes"
	"crypto/md5" //nolint:gosec // integrity tag format of the archive
	"encoding/binary"
	"fmt"
	"io"
	"math"
)

// Encrypted blob framing, little-endian:
//
//	iv[16] | tag[16] | u64 declared_length | ciphertext[ceil(length/16)*16]
//
// The tag is the MD5 of the plaintext; the ciphertext is AES-256-CFB over the
// plaintext zero-padded to a block boundary.
const (
	ivSize     = BlockSize
	tagSize    = md5.Size
	lengthSize = 8

	// Overhead is the fixed number of framing bytes around the ciphertext.
	Overhead = ivSize + tagSize + lengthSize

	// KeySize is the key length used for archive content.
	KeySize = 32
)

// Footprint returns the physical size of an n-byte plaintext once framed:
// ceil(n/16)*16 + Overhead.
func Footprint(n uint64) uint64 {
	return n + Pad(BlockSize, n) + Overhead
}

// envelopeHeader is the fixed-size prefix of an encrypted blob.
type envelopeHeader struct {
	iv     [ivSize]byte
	tag    [tagSize]byte
	length uint64
}

func (h *envelopeHeader) marshal() []byte {
	buf := make([]byte, Overhead)

	copy(buf, h.iv[:])
	copy(buf[ivSize:], h.tag[:])
	binary.LittleEndian.PutUint64(buf[ivSize+tagSize:], h.length)

	return buf
}

func parseEnvelopeHeader(buf []byte) envelopeHeader {
	var h envelopeHeader

	copy(h.iv[:], buf[:ivSize])
	copy(h.tag[:], buf[ivSize:ivSize+tagSize])
	h.length = binary.LittleEndian.Uint64(buf[ivSize+tagSize:])

	return h
}

// Open reads one encrypted blob from r, decrypts it with key and checks the
// stored tag. Lengths come from untrusted input, so the ciphertext is read
// incrementally rather than preallocated.
func Open(r io.Reader, key []byte) ([]byte, error) {
	if len(key) != KeySize {
		return nil, fmt.Errorf("%w: content key must be %d bytes, got %d", ErrKeySize, KeySize, len(key))
	}

	raw := make([]byte, Overhead)
	if _, err := io.ReadFull(r, raw); err != nil {
		return nil, fmt.Errorf("%w: reading header: %w", ErrTruncated, err)
	}

	header := parseEnvelopeHeader(raw)

	if header.length > math.MaxInt64-BlockSize {
		return nil, fmt.Errorf("%w: declared length %d out of range", ErrTruncated, header.length)
	}

	padded := header.length + Pad(BlockSize, header.length)

	var ciphertext bytes.Buffer

	n, err := io.CopyN(&ciphertext, r, int64(padded)) //nolint:gosec // bounded above
	if err != nil {
		return nil, fmt.Errorf("%w: read %d of %d ciphertext bytes: %w", ErrTruncated, n, padded, err)
	}

	ctx := NewContext()
	if err := ctx.SetEncodeKey(key); err != nil {
		return nil, err
	}

	plain := ciphertext.Bytes()
	if err := ctx.DecryptCFB(header.iv[:], plain, plain); err != nil {
		return nil, fmt.Errorf("decrypting content: %w", err)
	}

	plain = plain[:header.length]

	if md5.Sum(plain) != header.tag { //nolint:gosec
		return nil, ErrTagMismatch
	}

	return plain, nil
}

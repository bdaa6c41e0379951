package encryption_test

import (
	"bytes"
	"crypto/aes"
	"crypto/cipher"
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/idelchi/gopck/internal/encryption"
)

func sequence(n int, seed byte) []byte {
	out := make([]byte, n)
	for i := range out {
		out[i] = seed + byte(i*7)
	}

	return out
}

func mustHex(t *testing.T, s string) []byte {
	t.Helper()

	b, err := hex.DecodeString(s)
	require.NoError(t, err)

	return b
}

func newContext(t *testing.T, key []byte) *encryption.Context {
	t.Helper()

	ctx := encryption.NewContext()
	require.NoError(t, ctx.SetEncodeKey(key))
	require.NoError(t, ctx.SetDecodeKey(key))

	return ctx
}

func TestECBKnownVector(t *testing.T) {
	t.Parallel()

	// FIPS-197 appendix C.3.
	key := mustHex(t, "000102030405060708090a0b0c0d0e0f101112131415161718191a1b1c1d1e1f")
	plain := mustHex(t, "00112233445566778899aabbccddeeff")

	ctx := newContext(t, key)

	out := make([]byte, 16)
	require.NoError(t, ctx.EncryptECB(out, plain))
	assert.Equal(t, "8ea2b7ca516745bfeafc49904b496089", hex.EncodeToString(out))

	back := make([]byte, 16)
	require.NoError(t, ctx.DecryptECB(back, out))
	assert.Equal(t, plain, back)

	require.ErrorIs(t, ctx.EncryptECB(out, plain[:8]), encryption.ErrInvalidBlockSize)
}

func TestKeySizes(t *testing.T) {
	t.Parallel()

	for _, size := range []int{16, 24, 32} {
		ctx := encryption.NewContext()
		require.NoError(t, ctx.SetEncodeKey(make([]byte, size)), "size %d", size)
	}

	ctx := encryption.NewContext()
	require.ErrorIs(t, ctx.SetEncodeKey(make([]byte, 20)), encryption.ErrKeySize)
	require.ErrorIs(t, ctx.SetDecodeKey(nil), encryption.ErrKeySize)

	out := make([]byte, 16)
	require.ErrorIs(t, ctx.EncryptECB(out, out), encryption.ErrNoKey)
	require.ErrorIs(t, ctx.DecryptCBC(make([]byte, 16), out, out), encryption.ErrNoKey)
}

func TestCBCRoundTrip(t *testing.T) {
	t.Parallel()

	key := sequence(32, 1)
	iv := sequence(16, 9)

	for _, size := range []int{0, 16, 48, 160, 4096} {
		plain := sequence(size, 3)

		ctx := newContext(t, key)

		encIV := bytes.Clone(iv)
		ciphertext := make([]byte, size)
		require.NoError(t, ctx.EncryptCBC(encIV, ciphertext, plain))

		if size > 0 {
			assert.Equal(t, ciphertext[size-16:], encIV, "IV advances to the last ciphertext block")
		}

		decIV := bytes.Clone(iv)
		back := make([]byte, size)
		require.NoError(t, ctx.DecryptCBC(decIV, back, ciphertext))
		assert.Equal(t, plain, back, "size %d", size)
	}
}

func TestCBCChainsAcrossCalls(t *testing.T) {
	t.Parallel()

	ctx := newContext(t, sequence(32, 5))
	plain := sequence(64, 0)

	whole := make([]byte, 64)
	require.NoError(t, ctx.EncryptCBC(sequence(16, 2), whole, plain))

	iv := sequence(16, 2)
	parts := make([]byte, 64)
	require.NoError(t, ctx.EncryptCBC(iv, parts[:32], plain[:32]))
	require.NoError(t, ctx.EncryptCBC(iv, parts[32:], plain[32:]))

	assert.Equal(t, whole, parts)

	// In-place decryption.
	decIV := sequence(16, 2)
	require.NoError(t, ctx.DecryptCBC(decIV, parts, parts))
	assert.Equal(t, plain, parts)
}

func TestCBCRejectsUnaligned(t *testing.T) {
	t.Parallel()

	ctx := newContext(t, sequence(16, 1))

	err := ctx.EncryptCBC(make([]byte, 16), make([]byte, 20), make([]byte, 20))
	require.ErrorIs(t, err, encryption.ErrInvalidBlockSize)

	err = ctx.EncryptCBC(make([]byte, 8), make([]byte, 16), make([]byte, 16))
	require.ErrorIs(t, err, encryption.ErrIVSize)

	err = ctx.EncryptCBC(make([]byte, 16), make([]byte, 16), make([]byte, 32))
	require.ErrorIs(t, err, encryption.ErrShortBuffer)
}

func TestCFBMatchesStandardSingleMessage(t *testing.T) {
	t.Parallel()

	key := sequence(32, 11)
	iv := sequence(16, 13)

	for _, size := range []int{1, 10, 16, 33, 500} {
		plain := sequence(size, 17)

		block, err := aes.NewCipher(key)
		require.NoError(t, err)

		want := make([]byte, size)
		cipher.NewCFBEncrypter(block, iv).XORKeyStream(want, plain) //nolint:staticcheck // reference implementation

		ctx := newContext(t, key)

		got := make([]byte, size)
		require.NoError(t, ctx.EncryptCFB(bytes.Clone(iv), got, plain))
		assert.Equal(t, want, got, "size %d", size)

		back := make([]byte, size)
		require.NoError(t, ctx.DecryptCFB(bytes.Clone(iv), back, got))
		assert.Equal(t, plain, back, "size %d", size)
	}
}

func TestCFBOffsetResetsEachCall(t *testing.T) {
	t.Parallel()

	ctx := newContext(t, sequence(32, 21))
	plain := sequence(20, 4)

	whole := make([]byte, 20)
	require.NoError(t, ctx.EncryptCFB(sequence(16, 8), whole, plain))

	iv := sequence(16, 8)
	split := make([]byte, 20)
	require.NoError(t, ctx.EncryptCFB(iv, split[:10], plain[:10]))
	require.NoError(t, ctx.EncryptCFB(iv, split[10:], plain[10:]))

	assert.Equal(t, whole[:10], split[:10])
	assert.NotEqual(t, whole[10:], split[10:], "a resumed message restarts at offset zero")

	// Block-aligned splits are unaffected.
	aligned := make([]byte, 20)
	iv = sequence(16, 8)
	require.NoError(t, ctx.EncryptCFB(iv, aligned[:16], plain[:16]))
	require.NoError(t, ctx.EncryptCFB(iv, aligned[16:], plain[16:]))
	assert.Equal(t, whole, aligned)
}

func TestPad(t *testing.T) {
	t.Parallel()

	tests := []struct {
		alignment, n, want uint64
	}{
		{32, 0, 0},
		{32, 32, 0},
		{32, 64, 0},
		{32, 1, 31},
		{32, 33, 31},
		{32, 56, 8},
		{16, 10, 6},
		{4, 5, 3},
		{1, 12345, 0},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, encryption.Pad(tt.alignment, tt.n), "Pad(%d, %d)", tt.alignment, tt.n)
		assert.Zero(t, (tt.n+encryption.Pad(tt.alignment, tt.n))%tt.alignment)
	}
}

func TestFootprint(t *testing.T) {
	t.Parallel()

	assert.Equal(t, uint64(56), encryption.Footprint(10))
	assert.Equal(t, uint64(40), encryption.Footprint(0))
	assert.Equal(t, uint64(56), encryption.Footprint(16))
	assert.Equal(t, uint64(72), encryption.Footprint(17))
}

func TestWriterRoundTrip(t *testing.T) {
	t.Parallel()

	key := sequence(32, 99)

	for _, size := range []int{0, 10, 16, 1000} {
		var out bytes.Buffer

		w, err := encryption.NewWriter(&out, key, bytes.NewReader(sequence(16, 42)))
		require.NoError(t, err)

		plain := sequence(size, 1)

		_, err = w.Write(plain[:size/2])
		require.NoError(t, err)
		_, err = w.Write(plain[size/2:])
		require.NoError(t, err)
		require.NoError(t, w.Close())

		assert.Equal(t, encryption.Footprint(uint64(size)), uint64(out.Len()))
		assert.Equal(t, uint64(out.Len()), w.Written())
		assert.Equal(t, sequence(16, 42), out.Bytes()[:16], "IV leads the frame")

		got, err := encryption.Open(bytes.NewReader(out.Bytes()), key)
		require.NoError(t, err)
		assert.Equal(t, plain, append([]byte{}, got...))
	}
}

func TestWriterClosed(t *testing.T) {
	t.Parallel()

	w, err := encryption.NewWriter(&bytes.Buffer{}, sequence(32, 0), nil)
	require.NoError(t, err)
	require.NoError(t, w.Close())
	require.NoError(t, w.Close())

	_, err = w.Write([]byte("late"))
	require.ErrorIs(t, err, encryption.ErrClosed)

	_, err = encryption.NewWriter(&bytes.Buffer{}, sequence(16, 0), nil)
	require.ErrorIs(t, err, encryption.ErrKeySize)
}

func TestOpenDetectsTampering(t *testing.T) {
	t.Parallel()

	key := sequence(32, 7)

	var out bytes.Buffer

	w, err := encryption.NewWriter(&out, key, nil)
	require.NoError(t, err)

	_, err = w.Write([]byte("tamper evident content"))
	require.NoError(t, err)
	require.NoError(t, w.Close())

	tampered := bytes.Clone(out.Bytes())
	tampered[len(tampered)-20] ^= 0x01

	_, err = encryption.Open(bytes.NewReader(tampered), key)
	require.ErrorIs(t, err, encryption.ErrTagMismatch)

	_, err = encryption.Open(bytes.NewReader(out.Bytes()), sequence(32, 8))
	require.ErrorIs(t, err, encryption.ErrTagMismatch, "wrong key")

	_, err = encryption.Open(bytes.NewReader(out.Bytes()[:out.Len()-1]), key)
	require.ErrorIs(t, err, encryption.ErrTruncated)

	_, err = encryption.Open(bytes.NewReader(out.Bytes()[:12]), key)
	require.ErrorIs(t, err, encryption.ErrTruncated)
}

package signature_test

import (
	"bytes"
	"crypto/sha256"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/idelchi/gopck/internal/random"
	"github.com/idelchi/gopck/internal/signature"
)

func newRandom(t *testing.T) *random.Generator {
	t.Helper()

	g, err := random.NewInitialized()
	require.NoError(t, err)

	return g
}

func newContext(t *testing.T, curve signature.Curve, opts ...signature.Option) *signature.Context {
	t.Helper()

	ctx, err := signature.New(curve, newRandom(t), opts...)
	require.NoError(t, err)

	return ctx
}

func TestSignVerifyRoundTrip(t *testing.T) {
	t.Parallel()

	scalarSizes := map[signature.Curve]int{
		signature.CurveSECP224R1: 28,
		signature.CurveSECP256R1: 32,
		signature.CurveSECP384R1: 48,
		signature.CurveSECP521R1: 66,
		signature.CurveSECP256K1: 32,
	}

	for _, curve := range signature.SupportedCurves() {
		t.Run(curve.String(), func(t *testing.T) {
			t.Parallel()

			signer := newContext(t, curve)
			assert.Equal(t, curve, signer.Curve())

			keys, err := signer.GenerateKeyPair()
			require.NoError(t, err)
			assert.Len(t, keys.Private, scalarSizes[curve])
			assert.Len(t, keys.Public, 2*scalarSizes[curve]+1)
			assert.Equal(t, byte(0x04), keys.Public[0])

			hash := sha256.Sum256([]byte("directory"))

			sig, err := signer.Sign(hash[:])
			require.NoError(t, err)
			assert.LessOrEqual(t, len(sig), signature.MaxSignatureSize)

			verifier := newContext(t, curve, signature.WithSilent(true))
			require.NoError(t, verifier.SetPublicKey(keys.Public))
			require.NoError(t, verifier.Verify(hash[:], sig))

			tamperedSig := bytes.Clone(sig)
			tamperedSig[len(tamperedSig)-1] ^= 0x01
			require.ErrorIs(t, verifier.Verify(hash[:], tamperedSig), signature.ErrVerify)

			tamperedHash := hash
			tamperedHash[0] ^= 0x01
			require.ErrorIs(t, verifier.Verify(tamperedHash[:], sig), signature.ErrVerify)
		})
	}
}

func TestSetPrivateKeyDerivesPublic(t *testing.T) {
	t.Parallel()

	for _, curve := range []signature.Curve{signature.CurveSECP256R1, signature.CurveSECP256K1} {
		generator := newContext(t, curve)

		keys, err := generator.GenerateKeyPair()
		require.NoError(t, err)

		loaded := newContext(t, curve)
		require.NoError(t, loaded.SetPrivateKey(keys.Private))
		assert.Equal(t, keys.Public, loaded.KeyPair().Public)
		assert.Equal(t, curve, loaded.KeyPair().Curve)
	}
}

func TestValidateDoesNotMutate(t *testing.T) {
	t.Parallel()

	ctx := newContext(t, signature.CurveSECP256R1)

	keys, err := ctx.GenerateKeyPair()
	require.NoError(t, err)

	other := newContext(t, signature.CurveSECP256R1)

	otherKeys, err := other.GenerateKeyPair()
	require.NoError(t, err)

	require.NoError(t, ctx.ValidatePrivateKey(otherKeys.Private))
	require.NoError(t, ctx.ValidatePublicKey(otherKeys.Public))
	assert.Equal(t, keys, ctx.KeyPair())

	zero := make([]byte, 32)
	require.ErrorIs(t, ctx.ValidatePrivateKey(zero), signature.ErrInvalidKey)

	order := bytes.Repeat([]byte{0xff}, 32)
	require.ErrorIs(t, ctx.ValidatePrivateKey(order), signature.ErrInvalidKey)
	require.ErrorIs(t, ctx.ValidatePrivateKey(make([]byte, 33)), signature.ErrInvalidKey)

	offCurve := bytes.Clone(otherKeys.Public)
	offCurve[len(offCurve)-1] ^= 0x01
	require.ErrorIs(t, ctx.ValidatePublicKey(offCurve), signature.ErrInvalidKey)
	require.ErrorIs(t, ctx.ValidatePublicKey(otherKeys.Public[:33]), signature.ErrInvalidKey)
	assert.Equal(t, keys, ctx.KeyPair())
}

func TestShortPrivateKeyIsLeftPadded(t *testing.T) {
	t.Parallel()

	ctx := newContext(t, signature.CurveSECP256R1)
	require.NoError(t, ctx.SetPrivateKey([]byte{0x01}))

	keys := ctx.KeyPair()
	require.Len(t, keys.Private, 32)
	assert.Equal(t, byte(0x01), keys.Private[31])
}

func TestSignErrors(t *testing.T) {
	t.Parallel()

	ctx := newContext(t, signature.CurveSECP256R1, signature.WithSilent(true))

	_, err := ctx.Sign(make([]byte, 32))
	require.ErrorIs(t, err, signature.ErrNoKey)

	require.ErrorIs(t, ctx.Verify(make([]byte, 32), []byte{0x30}), signature.ErrNoKey)

	_, err = ctx.GenerateKeyPair()
	require.NoError(t, err)

	_, err = ctx.Sign(make([]byte, 20))
	require.ErrorIs(t, err, signature.ErrHashSize)

	_, err = ctx.SignTo(make([]byte, 32), make([]byte, 8))
	require.ErrorIs(t, err, signature.ErrShortBuffer)

	buf := make([]byte, signature.MaxSignatureSize)

	n, err := ctx.SignTo(make([]byte, 32), buf)
	require.NoError(t, err)
	require.NoError(t, ctx.Verify(make([]byte, 32), buf[:n]))
}

func TestGarbageSignatureNeverPanics(t *testing.T) {
	t.Parallel()

	for _, curve := range signature.SupportedCurves() {
		ctx := newContext(t, curve, signature.WithSilent(true))

		_, err := ctx.GenerateKeyPair()
		require.NoError(t, err)

		hash := make([]byte, 32)

		for _, sig := range [][]byte{nil, {}, {0x30}, {0x30, 0x06, 0x02, 0x01, 0x00, 0x02, 0x01, 0x00}, bytes.Repeat([]byte{0xff}, 80)} {
			assert.NotPanics(t, func() {
				require.ErrorIs(t, ctx.Verify(hash, sig), signature.ErrVerify)
			})
		}
	}
}

func TestSilentMode(t *testing.T) {
	t.Parallel()

	var logs bytes.Buffer

	logger := slog.New(slog.NewTextHandler(&logs, nil))

	loud := newContext(t, signature.CurveSECP256R1, signature.WithLogger(logger))
	require.Error(t, loud.SetPublicKey([]byte{0x04, 0x01}))
	assert.Contains(t, logs.String(), "set_public_key")

	logs.Reset()

	quiet := newContext(t, signature.CurveSECP256R1, signature.WithLogger(logger), signature.WithSilent(true))
	require.Error(t, quiet.SetPublicKey([]byte{0x04, 0x01}))
	assert.Empty(t, logs.String())

	quiet.SetSilent(false)
	require.Error(t, quiet.SetPublicKey([]byte{0x04, 0x01}))
	assert.NotEmpty(t, logs.String())
}

func TestUnsupportedCurves(t *testing.T) {
	t.Parallel()

	for _, curve := range []signature.Curve{
		signature.CurveNone,
		signature.CurveSECP192R1,
		signature.CurveBP256R1,
		signature.CurveCurve25519,
		signature.CurveCurve448,
	} {
		_, err := signature.New(curve, newRandom(t))
		require.ErrorIs(t, err, signature.ErrUnsupportedCurve, curve.String())
		assert.False(t, curve.Supported())
	}

	_, err := signature.New(signature.CurveSECP256R1, nil)
	require.ErrorIs(t, err, signature.ErrNoRandom)
}

func TestParseCurve(t *testing.T) {
	t.Parallel()

	tests := map[string]signature.Curve{
		"secp256r1": signature.CurveSECP256R1,
		"P-256":     signature.CurveSECP256R1,
		"p384":      signature.CurveSECP384R1,
		"SECP256K1": signature.CurveSECP256K1,
		"3":         signature.CurveSECP256R1,
		"12":        signature.CurveSECP256K1,
	}

	for input, want := range tests {
		got, err := signature.ParseCurve(input)
		require.NoError(t, err, input)
		assert.Equal(t, want, got, input)
	}

	_, err := signature.ParseCurve("ed25519")
	require.ErrorIs(t, err, signature.ErrUnsupportedCurve)

	_, err = signature.ParseCurve("99")
	require.ErrorIs(t, err, signature.ErrUnsupportedCurve)

	assert.Equal(t, uint32(3), uint32(signature.CurveSECP256R1))
	assert.Equal(t, uint32(12), uint32(signature.CurveSECP256K1))
	assert.Equal(t, "curve(99)", signature.Curve(99).String())
}

package digest_test

import (
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/idelchi/gopck/internal/digest"
)

func TestEmptyVectors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		ctx  *digest.Context
		want string
	}{
		{"md5", digest.NewMD5(), "d41d8cd98f00b204e9800998ecf8427e"},
		{"sha1", digest.NewSHA1(), "da39a3ee5e6b4b0d3255bfef95601890afd80709"},
		{"sha256", digest.NewSHA256(), "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			tt.ctx.Start()

			sum, err := tt.ctx.Finish()
			require.NoError(t, err)
			assert.Equal(t, tt.want, hex.EncodeToString(sum))
			assert.Len(t, sum, tt.ctx.Algorithm().Size())
		})
	}
}

func TestOneShotMatchesStreaming(t *testing.T) {
	t.Parallel()

	data := []byte("the quick brown fox jumps over the lazy dog")

	ctx := digest.NewSHA256()
	ctx.Start()

	for i := 0; i < len(data); i += 7 {
		require.NoError(t, ctx.Update(data[i:min(i+7, len(data))]))
	}

	sum, err := ctx.Finish()
	require.NoError(t, err)

	want := digest.SumSHA256(data)
	assert.Equal(t, want[:], sum)

	md5Sum := digest.SumMD5(nil)
	assert.Equal(t, "d41d8cd98f00b204e9800998ecf8427e", hex.EncodeToString(md5Sum[:]))

	sha1Sum := digest.SumSHA1([]byte("abc"))
	assert.Equal(t, "a9993e364706816aba3e25717850c26c9cd0d89d", hex.EncodeToString(sha1Sum[:]))
}

func TestLifecycle(t *testing.T) {
	t.Parallel()

	ctx := digest.NewMD5()

	require.ErrorIs(t, ctx.Update([]byte("x")), digest.ErrNotStarted)

	_, err := ctx.Finish()
	require.ErrorIs(t, err, digest.ErrNotStarted)

	ctx.Start()
	_, err = ctx.Write([]byte("abc"))
	require.NoError(t, err)

	first, err := ctx.Finish()
	require.NoError(t, err)
	assert.Equal(t, "900150983cd24fb0d6963f7d28e17f72", hex.EncodeToString(first))

	_, err = ctx.Finish()
	require.ErrorIs(t, err, digest.ErrNotStarted, "finish invalidates the context")

	ctx.Start()
	require.NoError(t, ctx.Update([]byte("abc")))

	second, err := ctx.Finish()
	require.NoError(t, err)
	assert.Equal(t, first, second, "restart must reset state")
}

func TestAlgorithmString(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "sha256", digest.AlgorithmSHA256.String())
	assert.Equal(t, "algorithm(9)", digest.Algorithm(9).String())
	assert.Zero(t, digest.Algorithm(9).Size())
}

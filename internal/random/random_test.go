package random_test

import (
	"bytes"
	"testing"
	"testing/iotest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/idelchi/gopck/internal/random"
)

func fixedEntropy() *bytes.Reader {
	return bytes.NewReader(bytes.Repeat([]byte{0x5a}, 64))
}

func TestBytesBeforeInitialize(t *testing.T) {
	t.Parallel()

	g := random.New()

	_, err := g.Bytes(16)
	require.ErrorIs(t, err, random.ErrUnconfigured)
	assert.False(t, g.Initialized())
}

func TestDeterministicWithFixedEntropy(t *testing.T) {
	t.Parallel()

	first, err := random.NewInitialized(random.WithEntropy(fixedEntropy()))
	require.NoError(t, err)

	second, err := random.NewInitialized(random.WithEntropy(fixedEntropy()))
	require.NoError(t, err)

	a, err := first.Bytes(100)
	require.NoError(t, err)

	b, err := second.Bytes(100)
	require.NoError(t, err)

	assert.Equal(t, a, b)

	next, err := first.Bytes(100)
	require.NoError(t, err)
	assert.NotEqual(t, a, next, "successive reads must not repeat")
}

func TestSystemEntropyProducesDistinctStreams(t *testing.T) {
	t.Parallel()

	first, err := random.NewInitialized()
	require.NoError(t, err)

	second, err := random.NewInitialized()
	require.NoError(t, err)

	a, err := first.Bytes(32)
	require.NoError(t, err)

	b, err := second.Bytes(32)
	require.NoError(t, err)

	assert.NotEqual(t, a, b)
}

func TestEntropyFailure(t *testing.T) {
	t.Parallel()

	g := random.New(random.WithEntropy(iotest.ErrReader(iotest.ErrTimeout)))

	err := g.Initialize()
	require.ErrorIs(t, err, random.ErrEntropy)
	require.ErrorIs(t, err, iotest.ErrTimeout)
	assert.False(t, g.Initialized())
}

func TestShortEntropy(t *testing.T) {
	t.Parallel()

	g := random.New(random.WithEntropy(bytes.NewReader([]byte{1, 2, 3})))

	require.ErrorIs(t, g.Initialize(), random.ErrEntropy)
}

func TestNegativeCount(t *testing.T) {
	t.Parallel()

	g, err := random.NewInitialized()
	require.NoError(t, err)

	_, err = g.Bytes(-1)
	require.Error(t, err)
}

package fileutil_test

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/idelchi/gopck/internal/fileutil"
)

func TestCopyN(t *testing.T) {
	t.Parallel()

	var dst bytes.Buffer

	n, err := fileutil.CopyN(&dst, strings.NewReader("hello world"), 5)
	require.NoError(t, err)
	assert.Equal(t, int64(5), n)
	assert.Equal(t, "hello", dst.String())

	_, err = fileutil.CopyN(&dst, strings.NewReader("abc"), 10)
	require.ErrorIs(t, err, fileutil.ErrShortCopy)
}

func TestWriteZeros(t *testing.T) {
	t.Parallel()

	var dst bytes.Buffer

	require.NoError(t, fileutil.WriteZeros(&dst, 70000))
	assert.Equal(t, 70000, dst.Len())
	assert.Equal(t, make([]byte, 70000), dst.Bytes())

	require.NoError(t, fileutil.WriteZeros(&dst, 0))
	assert.Equal(t, 70000, dst.Len())
}

func TestTempContextCommit(t *testing.T) {
	t.Parallel()

	fs := afero.NewMemMapFs()
	require.NoError(t, fs.MkdirAll("/out", 0o755))

	tc, err := fileutil.NewTempContext(fs, "/out/game.pck")
	require.NoError(t, err)
	require.NoError(t, afero.WriteFile(fs, tc.TmpName, []byte("data"), 0o600))

	size, err := tc.Commit()
	require.NoError(t, err)
	assert.Equal(t, int64(4), size)

	got, err := afero.ReadFile(fs, "/out/game.pck")
	require.NoError(t, err)
	assert.Equal(t, "data", string(got))

	exists, err := afero.Exists(fs, tc.TmpName)
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestTempContextCleanupOnError(t *testing.T) {
	t.Parallel()

	fs := afero.NewMemMapFs()
	require.NoError(t, fs.MkdirAll("/out", 0o755))

	tc, err := fileutil.NewTempContext(fs, "/out/game.pck")
	require.NoError(t, err)

	failure := errors.New("flush failed")
	tc.CleanupOnError(&failure)

	exists, err := afero.Exists(fs, tc.TmpName)
	require.NoError(t, err)
	assert.False(t, exists)

	tc, err = fileutil.NewTempContext(fs, "/out/game.pck")
	require.NoError(t, err)

	var success error
	tc.CleanupOnError(&success)

	exists, err = afero.Exists(fs, tc.TmpName)
	require.NoError(t, err)
	assert.True(t, exists)
}

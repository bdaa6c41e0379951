package commands_test

import (
	"bytes"
	"testing"

	"github.com/goccy/go-yaml"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/idelchi/gopck/internal/commands"
	"github.com/idelchi/gopck/internal/logic"
	"github.com/idelchi/gopck/internal/pack"
)

func run(t *testing.T, fs afero.Fs, args ...string) (string, error) {
	t.Helper()

	var out bytes.Buffer

	root := commands.NewRootCommand("test", fs)
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)

	err := root.Execute()

	return out.String(), err
}

func projectFS(t *testing.T) afero.Fs {
	t.Helper()

	fs := afero.NewMemMapFs()

	require.NoError(t, afero.WriteFile(fs, "/game/project.godot", []byte("config_version=5"), 0o644))
	require.NoError(t, afero.WriteFile(fs, "/game/scenes/main.tscn", []byte("[gd_scene]"), 0o644))
	require.NoError(t, fs.MkdirAll("/out", 0o755))

	return fs
}

func TestBuildVerifyRoundTrip(t *testing.T) {
	t.Parallel()

	fs := projectFS(t)

	out, err := run(t, fs, "keygen", "--curve", "secp384r1")
	require.NoError(t, err)

	var keys logic.Keys

	require.NoError(t, yaml.Unmarshal([]byte(out), &keys))
	assert.Equal(t, "secp384r1", keys.Curve)

	out, err = run(t, fs, "build",
		"-o", "/out/game.pck",
		"--prefix", "res://",
		"--key", keys.EncryptionKey,
		"--encrypt-directory",
		"--sign-key", keys.PrivateKey,
		"--curve", keys.Curve,
		"/game",
	)
	require.NoError(t, err)
	assert.Contains(t, out, "Packed 2 file(s)")

	out, err = run(t, fs, "verify", "-k", keys.EncryptionKey, "-p", keys.PublicKey, "-c", "/out/game.pck")
	require.NoError(t, err)
	assert.Contains(t, out, "signature: valid (secp384r1)")
	assert.Contains(t, out, "scenes/main.tscn")

	_, err = run(t, fs, "verify", "/out/game.pck")
	require.ErrorIs(t, err, pack.ErrConfiguration)
}

func TestBuildValidation(t *testing.T) {
	t.Parallel()

	fs := projectFS(t)

	_, err := run(t, fs, "build", "-o", "/out/game.pck")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "paths is required")

	_, err = run(t, fs, "build", "-o", "/out/game.pck", "--alignment", "0", "/game")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--alignment must be > 0")

	_, err = run(t, fs, "build", "-o", "/out/game.pck", "--key", "xyz", "/game")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--key must be 64 hex characters")

	_, err = run(t, fs, "verify")
	require.Error(t, err)
}

func TestCheckCommand(t *testing.T) {
	t.Parallel()

	fs := projectFS(t)

	out, err := run(t, fs, "check", "--include", "*.tscn", "/game")
	require.NoError(t, err)
	assert.Contains(t, out, "include: *.tscn: 1 files")

	_, err = run(t, fs, "check", "/game")
	require.Error(t, err)
}

func TestEnvironmentBinding(t *testing.T) {
	t.Setenv("GOPCK_ALIGNMENT", "64")
	t.Setenv("GOPCK_ENCRYPT", "true")

	fs := projectFS(t)

	_, err := run(t, fs, "build", "-o", "/out/env.pck", "-q", "/game")
	require.NoError(t, err)

	archive, err := pack.Inspect(fs, "/out/env.pck", pack.InspectWithKey(pack.DefaultKey), pack.InspectWithContents())
	require.NoError(t, err)
	require.Len(t, archive.Entries, 2)

	assert.Zero(t, archive.FilesBase%64)
	assert.Equal(t, uint64(64), archive.Entries[1].Offset)

	for _, e := range archive.Entries {
		assert.True(t, e.Encrypted())
	}
}

package utils_test

import (
	"path/filepath"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ethics/patch-finder/utils"
)

func TestFsWriteRaw(t *testing.T) {
	t.Run("creates parent directories", func(t *testing.T) {
		memFs := afero.NewMemMapFs()
		fs := utils.NewFs(memFs)

		path := filepath.Join("out", "CVE-2020-1234", "source")
		err := fs.WriteRaw(path, []byte("body"), false)
		require.NoError(t, err)

		got, err := afero.ReadFile(memFs, path)
		require.NoError(t, err)
		assert.Equal(t, "body", string(got))
	})

	t.Run("existing file kept without overwrite", func(t *testing.T) {
		memFs := afero.NewMemMapFs()
		fs := utils.NewFs(memFs)

		require.NoError(t, fs.WriteRaw("source", []byte("original"), false))
		require.NoError(t, fs.WriteRaw("source", []byte("replacement"), false))

		got, err := afero.ReadFile(memFs, "source")
		require.NoError(t, err)
		assert.Equal(t, "original", string(got))
	})

	t.Run("existing file replaced with overwrite", func(t *testing.T) {
		memFs := afero.NewMemMapFs()
		fs := utils.NewFs(memFs)

		require.NoError(t, fs.WriteRaw("source", []byte("original"), true))
		require.NoError(t, fs.WriteRaw("source", []byte("replacement"), true))

		got, err := afero.ReadFile(memFs, "source")
		require.NoError(t, err)
		assert.Equal(t, "replacement", string(got))
	})

	t.Run("read-only filesystem", func(t *testing.T) {
		fs := utils.NewFs(afero.NewReadOnlyFs(afero.NewMemMapFs()))

		err := fs.WriteRaw("source", []byte("body"), true)
		assert.Error(t, err)
	})
}

func TestFsWriteJSON(t *testing.T) {
	memFs := afero.NewMemMapFs()
	fs := utils.NewFs(memFs)

	err := fs.WriteJSON("advisory.json", map[string]string{"CVE": "CVE-2020-1"})
	require.NoError(t, err)

	got, err := afero.ReadFile(memFs, "advisory.json")
	require.NoError(t, err)
	assert.JSONEq(t, `{"CVE": "CVE-2020-1"}`, string(got))
}

func TestFsWriteJSONUnmarshalable(t *testing.T) {
	fs := utils.NewFs(afero.NewMemMapFs())

	err := fs.WriteJSON("advisory.json", func() {})
	assert.Error(t, err)
}

package data

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJsonReadSharedLock(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "palette.json")
	require.NoError(t, os.WriteFile(p, []byte(`{"rainy":"#1414ff"}`), 0o644))

	got, err := JsonReadSharedLock[map[string]string](p)

	require.NoError(t, err)
	assert.Equal(t, "#1414ff", (*got)["rainy"])
}

func TestJsonReadSharedLock_RelativeToDataDir(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("FORECAST_RING_DATA_DIR", dir)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "palette.json"), []byte(`{"clear":"#7f7f00"}`), 0o644))

	got, err := JsonReadSharedLock[map[string]string]("palette.json")

	require.NoError(t, err)
	assert.Equal(t, "#7f7f00", (*got)["clear"])
}

func TestJsonReadSharedLock_Errors(t *testing.T) {
	_, err := JsonReadSharedLock[map[string]string](filepath.Join(t.TempDir(), "missing.json"))
	assert.ErrorIs(t, err, os.ErrNotExist)

	p := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(p, []byte(`{not json`), 0o644))
	_, err = JsonReadSharedLock[map[string]string](p)
	assert.Error(t, err)
}

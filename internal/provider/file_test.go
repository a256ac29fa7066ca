package provider

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeSnapshot(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "countries.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

func TestFile_AllAndAlpha(t *testing.T) {
	path := writeSnapshot(t, `[{"name":"France","alpha3Code":"FRA"},{"name":"Germany","alpha3Code":"DEU"}]`)
	f := NewFile(path)

	countries, err := f.All(context.Background())
	require.NoError(t, err)
	require.Len(t, countries, 2)

	c, err := f.Alpha(context.Background(), "deu")
	require.NoError(t, err)
	assert.Equal(t, "Germany", c.Name)
}

func TestFile_AlphaLoadsLazily(t *testing.T) {
	f := NewFile(writeSnapshot(t, `[{"name":"Japan","alpha3Code":"JPN"}]`))

	c, err := f.Alpha(context.Background(), "JPN")

	require.NoError(t, err)
	assert.Equal(t, "Japan", c.Name)
}

func TestFile_AlphaNotFound(t *testing.T) {
	f := NewFile(writeSnapshot(t, `[]`))

	_, err := f.Alpha(context.Background(), "XXX")

	assert.ErrorIs(t, err, ErrNotFound)
}

func TestFile_ReloadsOnAll(t *testing.T) {
	path := writeSnapshot(t, `[{"name":"France","alpha3Code":"FRA"}]`)
	f := NewFile(path)

	_, err := f.All(context.Background())
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(path, []byte(`[{"name":"Spain","alpha3Code":"ESP"}]`), 0600))
	countries, err := f.All(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Spain", countries[0].Name)

	_, err = f.Alpha(context.Background(), "FRA")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestFile_Errors(t *testing.T) {
	_, err := NewFile(filepath.Join(t.TempDir(), "missing.json")).All(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read snapshot")

	_, err = NewFile(writeSnapshot(t, `{not json`)).All(context.Background())
	assert.ErrorIs(t, err, ErrMalformed)
}

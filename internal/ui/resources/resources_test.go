package resources

import (
	"io/fs"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFS_ContainsAssets(t *testing.T) {
	for _, name := range Assets {
		data, err := fs.ReadFile(FS(), name)
		require.NoError(t, err, name)
		assert.NotEmpty(t, data, name)
	}
}

func TestHandler(t *testing.T) {
	rec := httptest.NewRecorder()
	Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, StaticPath(StylesheetAsset), nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), ".container")

	rec = httptest.NewRecorder()
	Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, StaticPath("missing.js"), nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

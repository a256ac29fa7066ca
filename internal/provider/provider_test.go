package provider

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name      string
		cfg       Config
		wantType  any
		errSubstr string
	}{
		{name: "default is restcountries", cfg: Config{}, wantType: &RestCountries{}},
		{name: "explicit restcountries", cfg: Config{Type: TypeRestCountries, BaseURL: "http://x"}, wantType: &RestCountries{}},
		{name: "file", cfg: Config{Type: TypeFile, File: "countries.json"}, wantType: &File{}},
		{name: "file without path", cfg: Config{Type: TypeFile}, errSubstr: "requires a snapshot path"},
		{name: "unknown", cfg: Config{Type: "graphql"}, errSubstr: "unknown provider type"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := New(tt.cfg)
			if tt.errSubstr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errSubstr)
				return
			}
			require.NoError(t, err)
			assert.IsType(t, tt.wantType, p)
		})
	}
}

package output

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderer_EffectiveMode(t *testing.T) {
	tests := []struct {
		mode Mode
		want Mode
	}{
		{"", ModeMarkdown},
		{ModeAuto, ModeMarkdown},
		{ModeText, ModeText},
		{ModeMarkdown, ModeMarkdown},
		{ModeJSON, ModeJSON},
	}
	for _, tt := range tests {
		t.Run(string(tt.mode), func(t *testing.T) {
			r := NewRenderer(&bytes.Buffer{}, &bytes.Buffer{}, tt.mode)
			assert.False(t, r.IsTTY())
			assert.Equal(t, tt.want, r.EffectiveMode())
		})
	}
}

func TestRenderer_TextWithoutTTYHasNoEscapes(t *testing.T) {
	var out, errOut bytes.Buffer
	r := NewRenderer(&out, &errOut, ModeText)

	r.Header(1, "Countries")
	r.KeyValue("Region", "Europe")
	r.Success("built")
	r.Warning("slow")
	r.Error("failed")

	assert.Equal(t, "Countries\nRegion: Europe\n✓ built\n", out.String())
	assert.Equal(t, "! slow\n✗ failed\n", errOut.String())
	assert.NotContains(t, out.String(), "\x1b[")
}

func TestRenderer_Markdown(t *testing.T) {
	var out bytes.Buffer
	r := NewRenderer(&out, &bytes.Buffer{}, ModeMarkdown)

	r.Header(2, "France")
	r.KeyValue("Capital", "Paris")

	assert.Equal(t, "## France\n\n- **Capital:** Paris\n", out.String())
}

func TestRenderer_JSON(t *testing.T) {
	var out bytes.Buffer
	r := NewRenderer(&out, &bytes.Buffer{}, ModeJSON)

	require.NoError(t, r.JSON(map[string]int{"count": 2}))
	assert.Equal(t, "{\n  \"count\": 2\n}\n", out.String())
}

func TestFormatHeader(t *testing.T) {
	assert.Equal(t, "# A", FormatHeader(1, "A"))
	assert.Equal(t, "### C", FormatHeader(3, "C"))
	assert.Equal(t, "# Z", FormatHeader(0, "Z"))
}

func TestNewRendererWithTTY(t *testing.T) {
	r := NewRendererWithTTY(&bytes.Buffer{}, &bytes.Buffer{}, true, ModeAuto)
	assert.True(t, r.IsTTY())
	assert.Equal(t, ModeText, r.EffectiveMode())
}

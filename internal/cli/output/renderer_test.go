package output

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseMode(t *testing.T) {
	tests := []struct {
		in      string
		want    OutputMode
		wantErr bool
	}{
		{"", ModeAuto, false},
		{"auto", ModeAuto, false},
		{" JSON ", ModeJSON, false},
		{"md", ModeMarkdown, false},
		{"text", ModeText, false},
		{"yaml", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseMode(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestEffectiveMode(t *testing.T) {
	tests := []struct {
		name  string
		mode  OutputMode
		isTTY bool
		want  OutputMode
	}{
		{"auto on terminal", ModeAuto, true, ModeText},
		{"auto piped", ModeAuto, false, ModeMarkdown},
		{"empty piped", "", false, ModeMarkdown},
		{"explicit json", ModeJSON, true, ModeJSON},
		{"explicit text piped", ModeText, false, ModeText},
		{"unknown falls back", "bogus", true, ModeText},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewRendererWithTTY(&bytes.Buffer{}, &bytes.Buffer{}, tt.isTTY, tt.mode)
			assert.Equal(t, tt.want, r.EffectiveMode())
		})
	}
}

func TestRenderer_Markdown(t *testing.T) {
	var out, errOut bytes.Buffer
	r := NewRendererWithTTY(&out, &errOut, false, ModeMarkdown)

	r.Header("Storeys")
	r.Success("done")
	r.KeyValue("Model", "a.ifc")
	r.Warning("careful")

	assert.Contains(t, out.String(), "# Storeys\n")
	assert.Contains(t, out.String(), "**done**")
	assert.Contains(t, out.String(), "- **Model:** a.ifc")
	assert.Equal(t, "warning: careful\n", errOut.String())
	assert.NotContains(t, out.String(), "\x1b[")
}

func TestRenderer_Table(t *testing.T) {
	var out bytes.Buffer
	r := NewRendererWithTTY(&out, &bytes.Buffer{}, false, ModeMarkdown)
	r.Table([]string{"Name", "Count"}, [][]string{{"Level 0", "3"}})

	assert.Contains(t, out.String(), "| Name | Count |")
	assert.Contains(t, out.String(), "| Level 0 | 3 |")

	out.Reset()
	r = NewRendererWithTTY(&out, &bytes.Buffer{}, false, ModeText)
	r.Table([]string{"Name"}, [][]string{{"Level 0"}})
	assert.Contains(t, out.String(), "Level 0")
	assert.Contains(t, out.String(), "│")
}

func TestRenderer_JSON(t *testing.T) {
	var out bytes.Buffer
	r := NewRendererWithTTY(&out, &bytes.Buffer{}, false, ModeJSON)
	require.NoError(t, r.JSON(map[string]int{"issues": 2}))

	var got map[string]int
	require.NoError(t, json.Unmarshal(out.Bytes(), &got))
	assert.Equal(t, 2, got["issues"])
}

func TestLabel(t *testing.T) {
	assert.Equal(t, "Wrong Floor", Label("wrong-floor"))
	assert.Equal(t, "Class Mismatch", Label("class_mismatch"))
	assert.Equal(t, "", Label(""))
}

package commands

import (
	"encoding/json"
	"testing"

	"github.com/leapstack-labs/ifclint/internal/cli/config"
	"github.com/leapstack-labs/ifclint/pkg/classify"
	"github.com/leapstack-labs/ifclint/pkg/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRulesCommand_ListAll(t *testing.T) {
	config.ResetConfig()
	out, _, err := execute(t, NewRulesCommand(), "-f", "markdown")
	require.NoError(t, err)

	assert.Contains(t, out, "# Shape Rules")
	for _, heading := range []string{"## Beam", "## Slab", "## Column", "## Wall"} {
		assert.Contains(t, out, heading)
	}
	for _, rule := range classify.GetAll() {
		assert.Contains(t, out, "**"+rule.ID+"**")
	}
}

func TestRulesCommand_FilterByKind(t *testing.T) {
	config.ResetConfig()

	t.Run("slab rules", func(t *testing.T) {
		out, _, err := execute(t, NewRulesCommand(), "--kind", "slab", "-V", "-f", "markdown")
		require.NoError(t, err)
		assert.Contains(t, out, "SC03")
		assert.Contains(t, out, "SC04")
		assert.NotContains(t, out, "SC01")
		assert.Contains(t, out, "`w/t < 2.0 and L/w < 3.0`")
	})

	t.Run("unknown kind", func(t *testing.T) {
		_, _, err := execute(t, NewRulesCommand(), "--kind", "roof")
		assert.ErrorContains(t, err, "unknown kind")
	})
}

func TestRulesCommand_ShowSpecificRule(t *testing.T) {
	config.ResetConfig()

	tests := []struct {
		name    string
		args    []string
		want    []string
		wantErr string
	}{
		{"markdown", []string{"SC06", "-f", "markdown"}, []string{"# SC06 - wall.beam-like", "`IfcWall`", "`IfcBeam`"}, ""},
		{"lower case id", []string{"sc01", "-f", "markdown"}, []string{"# SC01 - beam.slab-like"}, ""},
		{"text", []string{"SC04", "-f", "text"}, []string{"SC04 - slab.column-like", "Elements with zero thickness or width are skipped."}, ""},
		{"unknown", []string{"XX99"}, nil, `rule "XX99" not found`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, _, err := execute(t, NewRulesCommand(), tt.args...)
			if tt.wantErr != "" {
				assert.ErrorContains(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			for _, want := range tt.want {
				assert.Contains(t, out, want)
			}
		})
	}
}

func TestRulesCommand_JSON(t *testing.T) {
	config.ResetConfig()
	out, _, err := execute(t, NewRulesCommand(), "-f", "json")
	require.NoError(t, err)

	var got struct {
		Rules []struct {
			ID        string `json:"id"`
			Source    string `json:"source"`
			Suspected string `json:"suspected"`
			Severity  string `json:"severity"`
			Disabled  bool   `json:"disabled"`
		} `json:"rules"`
		Count int `json:"count"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, classify.Count(), got.Count)
	require.Len(t, got.Rules, got.Count)
	assert.Equal(t, "SC01", got.Rules[0].ID)
	assert.Equal(t, "beam", got.Rules[0].Source)
	assert.Equal(t, "slab", got.Rules[0].Suspected)
	assert.Equal(t, "warning", got.Rules[0].Severity)
	assert.False(t, got.Rules[0].Disabled)
}

func TestGetSeverityStyle(t *testing.T) {
	r := newTextRenderer()
	styles := r.Styles()
	assert.Equal(t, styles.Error, getSeverityStyle(styles, core.SeverityError))
	assert.Equal(t, styles.Warning, getSeverityStyle(styles, core.SeverityWarning))
	assert.Equal(t, styles.Info, getSeverityStyle(styles, core.SeverityInfo))
}

func TestDivisorNames(t *testing.T) {
	assert.Empty(t, divisorNames(0))
	assert.Equal(t, "width", divisorNames(classify.DivWidth))
	assert.Equal(t, "thickness or width", divisorNames(classify.DivThickness|classify.DivWidth))
}

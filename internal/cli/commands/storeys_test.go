package commands

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/leapstack-labs/ifclint/internal/cli/config"
	ifctest "github.com/leapstack-labs/ifclint/internal/testutil"
	"github.com/leapstack-labs/ifclint/pkg/storey"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStoreysCommand(t *testing.T) {
	setupModels(t)

	t.Run("markdown", func(t *testing.T) {
		out, _, err := execute(t, NewStoreysCommand(), "-f", "markdown", "tower-STR.ifc")
		require.NoError(t, err)
		assert.Contains(t, out, "# 3 storeys in tower-STR.ifc")
		assert.Contains(t, out, "Level 1")
		assert.Contains(t, out, "3.000")
		assert.Contains(t, out, "6.000")
	})

	t.Run("json", func(t *testing.T) {
		out, _, err := execute(t, NewStoreysCommand(), "-f", "json", "tower-STR.ifc")
		require.NoError(t, err)

		var got struct {
			Storeys []StoreyOutput `json:"storeys"`
		}
		require.NoError(t, json.Unmarshal([]byte(out), &got))
		require.Len(t, got.Storeys, 3)
		assert.Equal(t, StoreyOutput{Index: 1, GlobalID: "L0", Name: "Level 0", Elevation: 0, ZMax: 3}, got.Storeys[0])
		assert.Equal(t, 6+storey.DefaultCeiling, got.Storeys[2].ZMax)
	})
}

func TestStoreysCommand_SortedAndUnnamed(t *testing.T) {
	config.ResetConfig()
	dir := t.TempDir()
	chdir(t, dir)
	path := ifctest.NewIFC().
		Storey("hi", "Roof", 9).
		Storey("lo", "", -3).
		WriteFile(t, dir, "m.ifc")

	out, _, err := execute(t, NewStoreysCommand(), "-f", "markdown", path)
	require.NoError(t, err)
	assert.Contains(t, out, "<unnamed>")
	assert.Contains(t, out, "-3.000")
	assert.Less(t, strings.Index(out, "<unnamed>"), strings.Index(out, "Roof"))
}

func TestStoreysCommand_None(t *testing.T) {
	config.ResetConfig()
	dir := t.TempDir()
	chdir(t, dir)
	path := ifctest.NewIFC().WriteFile(t, dir, "m.ifc")

	_, errOut, err := execute(t, NewStoreysCommand(), "-f", "markdown", path)
	require.NoError(t, err)
	assert.Contains(t, errOut, "no IfcBuildingStorey entities found in m.ifc")
}

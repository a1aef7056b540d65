package commands

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/leapstack-labs/ifclint/internal/cli/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestNewInitCommand(t *testing.T) {
	tests := []struct {
		name     string
		existing bool
		args     []string
		wantErr  bool
	}{
		{name: "init empty directory"},
		{name: "init existing config without force", existing: true, wantErr: true},
		{name: "init existing config with force", existing: true, args: []string{"--force"}},
		{name: "init new directory", args: []string{"project"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config.ResetConfig()
			tmpDir := t.TempDir()
			chdir(t, tmpDir)
			if tt.existing {
				require.NoError(t, os.WriteFile("ifclint.yaml", []byte("existing"), 0600))
			}

			_, _, err := execute(t, NewInitCommand(), tt.args...)
			if tt.wantErr {
				require.Error(t, err)
				data, _ := os.ReadFile("ifclint.yaml")
				assert.Equal(t, "existing", string(data))
				return
			}
			require.NoError(t, err)

			dir := tmpDir
			if len(tt.args) > 0 && tt.args[0] != "--force" {
				dir = filepath.Join(tmpDir, tt.args[0])
			}
			assert.DirExists(t, filepath.Join(dir, "models"))

			data, err := os.ReadFile(filepath.Join(dir, "ifclint.yaml"))
			require.NoError(t, err)
			var cfg config.Config
			require.NoError(t, yaml.Unmarshal(data, &cfg))
			assert.Equal(t, "models", cfg.ModelsDir)
			assert.Equal(t, config.DefaultReport, cfg.Report)
			assert.Equal(t, config.DefaultTieBreak, cfg.TieBreak)
		})
	}
}

func TestInitConfigLoads(t *testing.T) {
	config.ResetConfig()
	dir := t.TempDir()
	chdir(t, dir)
	_, _, err := execute(t, NewInitCommand())
	require.NoError(t, err)

	cfg, err := config.LoadConfig(filepath.Join(dir, "ifclint.yaml"), nil)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "models"), cfg.ModelsDir)
	assert.NoError(t, cfg.ValidateDirectories())
	config.ResetConfig()
}

package commands

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"github.com/leapstack-labs/ifclint/internal/cli/config"
	"github.com/leapstack-labs/ifclint/internal/cli/output"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

const configHeader = `# ifclint configuration.
# Every key can be overridden by an IFCLINT_<KEY> environment variable
# or the matching command-line flag.
`

// NewInitCommand creates the init command.
func NewInitCommand() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init [directory]",
		Short: "Initialize an ifclint project",
		Long: `Initialize an ifclint project with a models directory and a
configuration file holding the default settings.

This creates:
  - models/ directory for <prefix>-STR.ifc and <prefix>-ARCH.ifc files
  - ifclint.yaml configuration file`,
		Example: `  # Initialize in current directory
  ifclint init

  # Initialize in a new directory
  ifclint init my-project

  # Force overwrite existing config
  ifclint init --force`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) > 0 {
				dir = args[0]
			}
			r := NewCommandContextWithoutEngine(cmd).Renderer
			return runInit(r, dir, force)
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Overwrite existing configuration")

	return cmd
}

func runInit(r *output.Renderer, dir string, force bool) error {
	if err := os.MkdirAll(filepath.Join(dir, "models"), 0750); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}

	configPath := filepath.Join(dir, config.ConfigFileNames[0])
	if _, err := os.Stat(configPath); err == nil && !force {
		return fmt.Errorf("%s already exists. Use --force to overwrite", config.ConfigFileNames[0])
	}

	data, err := initialConfig()
	if err != nil {
		return err
	}
	if err := os.WriteFile(configPath, data, 0600); err != nil {
		return fmt.Errorf("failed to write %s: %w", configPath, err)
	}

	r.Success("Created " + configPath)
	r.Success("Created " + filepath.Join(dir, "models") + string(filepath.Separator))
	r.Println("")
	r.Println("Next steps:")
	r.Println("  1. Copy <prefix>-STR.ifc and <prefix>-ARCH.ifc into models/")
	r.Println("  2. Run 'ifclint pairs' to see the model sets")
	r.Println("  3. Run 'ifclint check' to write the BCF report")

	return nil
}

// initialConfig renders the default configuration as YAML.
func initialConfig() ([]byte, error) {
	cfg := config.Default()
	cfg.ModelsDir = "models"

	var buf bytes.Buffer
	buf.WriteString(configHeader)
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(cfg); err != nil {
		return nil, fmt.Errorf("failed to encode configuration: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/leapstack-labs/ifclint/internal/cli/output"
	"github.com/leapstack-labs/ifclint/pkg/classify"
	"github.com/leapstack-labs/ifclint/pkg/storey"
)

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if _, err := output.ParseMode(c.OutputFormat); err != nil {
		return err
	}
	if _, err := storey.ParseTieBreak(c.TieBreak); err != nil {
		return err
	}
	if c.Workers < 0 {
		return fmt.Errorf("workers must not be negative, got %d", c.Workers)
	}
	if c.StoreyCeiling < 0 {
		return fmt.Errorf("storey_ceiling must not be negative, got %g", c.StoreyCeiling)
	}
	for _, id := range c.DisabledRules {
		if _, ok := classify.GetByID(strings.ToUpper(strings.TrimSpace(id))); !ok {
			return fmt.Errorf("unknown rule %q in disabled_rules\nHint: run 'ifclint rules' to list rule IDs", id)
		}
	}
	return nil
}

// ValidateDirectories checks if the models directory exists.
func (c *Config) ValidateDirectories() error {
	info, err := os.Stat(c.ModelsDir)
	if os.IsNotExist(err) {
		return fmt.Errorf("models directory does not exist: %s\nHint: Create the directory or use --models-dir to specify a different path", c.ModelsDir)
	}
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return fmt.Errorf("models_dir is not a directory: %s", c.ModelsDir)
	}
	return nil
}

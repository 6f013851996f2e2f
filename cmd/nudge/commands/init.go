package commands

import (
	"fmt"
	"os"

	"github.com/MEKXH/nudge/internal/config"
	"github.com/spf13/cobra"
)

// NewInitCmd creates the init command
func NewInitCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Initialize Nudge configuration",
		RunE:  runInit,
	}
}

func runInit(cmd *cobra.Command, args []string) error {
	configPath := config.ConfigPath()

	if _, err := os.Stat(configPath); err == nil {
		fmt.Printf("Config already exists: %s\n", configPath)
		return nil
	}

	for _, dir := range []string{config.ConfigDir(), config.StateDir()} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}

	cfg := config.DefaultConfig()
	if err := config.Save(cfg); err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}

	fmt.Printf("Nudge initialized!\n")
	fmt.Printf("Config: %s\n", configPath)
	fmt.Printf("\nNext steps:\n")
	fmt.Printf("1. Optionally edit %s (port, notifications)\n", configPath)
	fmt.Printf("2. Run 'nudge ask \"your question\"' from an agent\n")
	fmt.Printf("3. Answer at http://127.0.0.1:%d or with 'nudge inbox'\n", cfg.Server.Port)

	return nil
}

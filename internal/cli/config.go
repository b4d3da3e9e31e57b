package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/rcliao/habit-agent/internal/config"
)

func init() {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage the config file",
	}

	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Write a default config file",
		Long:  "Write the default configuration to the config path so it can be edited. Refuses to overwrite an existing file unless --force is given.",
		Run:   runConfigInit,
	}
	initCmd.Flags().Bool("force", false, "Overwrite an existing config file")

	cmd.AddCommand(initCmd)
	RootCmd.AddCommand(cmd)
}

func runConfigInit(cmd *cobra.Command, args []string) {
	force, _ := cmd.Flags().GetBool("force")
	path := getConfigPath()

	if !force {
		if _, err := os.Stat(path); err == nil {
			exitErr("config init", fmt.Errorf("%s already exists (use --force to overwrite)", path))
		}
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		exitErr("create config dir", err)
	}
	if err := config.Save(path, config.Default()); err != nil {
		exitErr("write config", err)
	}

	fmt.Printf(`{"ok":true,"path":%q}`+"\n", path)
}

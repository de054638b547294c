package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"shotsort/internal/config"
)

var configForce bool

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage the shotsort configuration file",
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a commented sample config",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		path := configPath
		if path == "" {
			defaultPath, err := config.DefaultConfigPath()
			if err != nil {
				return err
			}
			path = defaultPath
		} else {
			expanded, err := config.ExpandPath(path)
			if err != nil {
				return err
			}
			path = expanded
		}

		if err := config.WriteSample(path, configForce); err != nil {
			return err
		}
		fmt.Fprintf(os.Stdout, "Sample config written to: %s\n", path)
		return nil
	},
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print the config file shotsort reads",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		path, exists, err := config.Resolve(configPath)
		if err != nil {
			return err
		}
		if exists {
			fmt.Fprintln(os.Stdout, path)
		} else {
			fmt.Fprintf(os.Stdout, "%s %s\n", path, dimStyle.Render("(not created yet; run `shotsort config init`)"))
		}
		return nil
	},
}

func init() {
	configInitCmd.Flags().BoolVar(&configForce, "force", false, "overwrite an existing config")

	configCmd.AddCommand(configInitCmd, configPathCmd)
	rootCmd.AddCommand(configCmd)
}

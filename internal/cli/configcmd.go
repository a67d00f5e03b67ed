package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	// Config command flags
	configServer string
)

// configCmd represents the config command
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage the SyncFlow CLI configuration",
	Long: `Manage the SyncFlow CLI configuration file. The configuration stores the
address of the SyncFlow governance server.

Example:
  syncflow config create --server localhost:8194
  syncflow config show`,
}

// configCreateCmd represents the config create subcommand
var configCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create the configuration file",
	Long: `Create the configuration file pointing the CLI at a SyncFlow server.
The file is written to the OS config directory unless --config is given.

Example:
  syncflow config create --server localhost:8194
  syncflow config create --server https://govern.example.com:8194 --config ./syncflow.yaml`,
	RunE: createConfig,
}

// configShowCmd represents the config show subcommand
var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the current configuration",
	RunE:  showConfig,
}

func createConfig(cmd *cobra.Command, args []string) error {
	if configServer == "" {
		return fmt.Errorf("server is required")
	}

	cfg := &Config{
		Version: "1.0",
		Server:  MorphServer(configServer),
	}
	if err := cfg.ValidateConfig(); err != nil {
		return err
	}

	if err := cfg.WriteConfig(configFile); err != nil {
		return err
	}
	config = cfg

	if jsonOutput {
		kv := map[string]any{
			"created": true,
			"path":    configFile,
			"server":  cfg.Server,
		}
		printJSON(kv)
	} else {
		fmt.Printf("Configuration written to %s\n", configFile)
		cfg.Print()
	}
	return nil
}

func showConfig(cmd *cobra.Command, args []string) error {
	if err := LoadConfig(configFile); err != nil {
		return err
	}
	cfg := GetConfig()

	if jsonOutput {
		kv := map[string]any{
			"version": cfg.Version,
			"server":  cfg.Server,
		}
		printJSON(kv)
	} else {
		cfg.Print()
	}
	return nil
}

func init() {
	configCreateCmd.Flags().StringVarP(&configServer, "server", "s", "", "Host and port of the SyncFlow server")
	configCreateCmd.MarkFlagRequired("server")

	configCmd.AddCommand(configCreateCmd)
	configCmd.AddCommand(configShowCmd)
	rootCmd.AddCommand(configCmd)
}

package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	connector "github.com/syncflow/syncflow/internal/connector/config"
)

// validateCmd represents the validate command
var validateCmd = &cobra.Command{
	Use:   "validate <configuration.json>",
	Short: "Validate a connector settings file",
	Long: `Validate a connector configuration.json file against the settings schema
without contacting the catalog. Reports the workspace and catalog filter the
file would sync.

Example:
  syncflow validate ./configuration.json`,
	Args: cobra.ExactArgs(1),
	RunE: validateSettings,
}

func validateSettings(cmd *cobra.Command, args []string) error {
	data, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("failed to read settings file: %v", err)
	}

	settings, verr := connector.LoadSettings(data)
	if verr != nil {
		if jsonOutput {
			kv := map[string]any{
				"valid": false,
				"error": verr.Error(),
			}
			printJSON(kv)
			return nil
		}
		return fmt.Errorf("settings are invalid: %v", verr)
	}

	if jsonOutput {
		kv := map[string]any{
			"valid":         true,
			"workspace_url": settings.WorkspaceURL,
			"catalogs":      settings.AllowedCatalogs(),
		}
		printJSON(kv)
	} else {
		fmt.Println("Settings are valid")
		fmt.Printf("Workspace: %s\n", settings.WorkspaceURL)
		if catalogs := settings.AllowedCatalogs(); catalogs != nil {
			fmt.Printf("Catalogs: %v\n", catalogs)
		} else {
			fmt.Println("Catalogs: all")
		}
	}
	return nil
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

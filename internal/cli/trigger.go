package cli

import (
	"fmt"
	"net/http"

	"github.com/spf13/cobra"
	"github.com/tidwall/gjson"
)

// triggerCmd represents the trigger command
var triggerCmd = &cobra.Command{
	Use:   "trigger",
	Short: "Trigger a sync run on the server",
	Long: `Ask the SyncFlow server to run a catalog sync now instead of waiting for
the next scheduled interval. If a run is already pending the request is a no-op.

Example:
  syncflow trigger`,
	RunE: triggerSync,
}

func triggerSync(cmd *cobra.Command, args []string) error {
	client := NewHTTPClient(GetConfig())

	opts := RequestOptions{
		Method: http.MethodPost,
		Path:   "sync/run",
	}

	response, _, err := client.DoRequest(opts)
	if err != nil {
		return err
	}

	if jsonOutput {
		kv := map[string]any{
			"triggered": gjson.GetBytes(response, "triggered").Bool(),
			"message":   gjson.GetBytes(response, "message").String(),
		}
		printJSON(kv)
	} else {
		fmt.Println(gjson.GetBytes(response, "message").String())
	}
	return nil
}

func init() {
	rootCmd.AddCommand(triggerCmd)
}

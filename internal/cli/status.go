package cli

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

// StatusResponse represents the response from the /sync/status endpoint
type StatusResponse struct {
	Running    bool        `json:"running"`
	Interval   string      `json:"interval"`
	LastRunID  string      `json:"last_run_id,omitempty"`
	LastReport *SyncReport `json:"last_report,omitempty"`
	LastError  string      `json:"last_error,omitempty"`
}

// SyncReport represents the counters from the most recent sync run
type SyncReport struct {
	StartedAt     time.Time      `json:"started_at"`
	FinishedAt    time.Time      `json:"finished_at"`
	Catalogs      int            `json:"catalogs"`
	Schemas       int            `json:"schemas"`
	Tables        int            `json:"tables"`
	Columns       int            `json:"columns"`
	Volumes       int            `json:"volumes"`
	Upserts       int            `json:"upserts"`
	Checkpoints   int            `json:"checkpoints"`
	TableFailures []TableFailure `json:"table_failures,omitempty"`
}

// TableFailure names a table that was skipped during a sync run
type TableFailure struct {
	Table  string `json:"table"`
	Reason string `json:"reason"`
}

// statusCmd represents the status command
var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Get the sync runner status",
	Long: `Get the status of the background sync runner on the SyncFlow server,
including the interval, the last run identifier, and the counters from the
most recent run.

Examples:
  # Get runner status
  syncflow status

  # Get runner status in JSON format
  syncflow status -j`,
	RunE: getStatus,
}

// getStatus handles retrieving the sync runner status
func getStatus(cmd *cobra.Command, args []string) error {
	client := NewHTTPClient(GetConfig())

	opts := RequestOptions{
		Method: "GET",
		Path:   "sync/status",
	}

	response, _, err := client.DoRequest(opts)
	if err != nil {
		return err
	}

	var statusResp StatusResponse
	if err := json.Unmarshal(response, &statusResp); err != nil {
		return fmt.Errorf("failed to parse response: %v", err)
	}

	if jsonOutput {
		// Format as JSON with result and value
		output := map[string]any{
			"result": 1,
			"value":  statusResp,
		}

		jsonBytes, err := json.MarshalIndent(output, "", "    ")
		if err != nil {
			return fmt.Errorf("failed to format JSON output: %v", err)
		}
		fmt.Println(string(jsonBytes))
	} else {
		// Pretty print the status information
		printStatusPretty(statusResp)
	}

	return nil
}

// printStatusPretty prints the runner status in a human-readable format
func printStatusPretty(status StatusResponse) {
	if status.Running {
		fmt.Printf("Sync Runner: running (interval %s)\n", status.Interval)
	} else {
		fmt.Println("Sync Runner: stopped")
	}
	if status.LastRunID != "" {
		fmt.Printf("Last Run: %s\n", status.LastRunID)
	}

	if rep := status.LastReport; rep != nil {
		fmt.Printf("  Started:  %s\n", rep.StartedAt.Local().Format("2006-01-02 15:04:05 MST"))
		fmt.Printf("  Finished: %s\n", rep.FinishedAt.Local().Format("2006-01-02 15:04:05 MST"))
		fmt.Printf("  Catalogs: %d  Schemas: %d  Tables: %d  Columns: %d  Volumes: %d\n",
			rep.Catalogs, rep.Schemas, rep.Tables, rep.Columns, rep.Volumes)
		fmt.Printf("  Upserts: %d  Checkpoints: %d\n", rep.Upserts, rep.Checkpoints)
		if len(rep.TableFailures) > 0 {
			fmt.Println("  Failed tables:")
			for _, f := range rep.TableFailures {
				fmt.Printf("    %s: %s\n", f.Table, f.Reason)
			}
		}
	} else {
		fmt.Println("No sync run has completed yet")
	}

	if status.LastError != "" {
		fmt.Printf("Last Error: %s\n", status.LastError)
	}
}

// init initializes the status command and adds it to the root command
func init() {
	rootCmd.AddCommand(statusCmd)
}

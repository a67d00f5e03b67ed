package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	connector "github.com/syncflow/syncflow/internal/connector/config"
	"github.com/syncflow/syncflow/internal/connector/destination"
	"github.com/syncflow/syncflow/internal/connector/destination/postgres"
	"github.com/syncflow/syncflow/internal/connector/records"
	"github.com/syncflow/syncflow/internal/connector/state"
	"github.com/syncflow/syncflow/internal/connector/sync"
	"github.com/syncflow/syncflow/internal/connector/unitycatalog"
)

var (
	// Run command flags
	runSettingsFile     string
	runDSN              string
	runDryRun           bool
	runTableConcurrency int
)

// runCmd represents the run command
var runCmd = &cobra.Command{
	Use:   "run -f configuration.json",
	Short: "Run a one-shot catalog sync",
	Long: `Run a single catalog sync from this machine instead of the server's
background runner. The connector settings are read from a configuration.json
file. With --dsn the normalized records are written to a Postgres warehouse;
with --dry-run (or no DSN) the run is recorded in memory and only counted.

Example:
  syncflow run -f configuration.json --dry-run
  syncflow run -f configuration.json --dsn postgres://syncflow@localhost/governance`,
	RunE: runSync,
}

func runSync(cmd *cobra.Command, args []string) error {
	data, err := os.ReadFile(runSettingsFile)
	if err != nil {
		return fmt.Errorf("failed to read settings file: %v", err)
	}
	conn, verr := connector.LoadSettings(data)
	if verr != nil {
		return fmt.Errorf("settings are invalid: %v", verr)
	}

	ctx := context.Background()
	source := unitycatalog.New(conn.WorkspaceURL, conn.AccessToken)

	var dest destination.Destination
	var rec *destination.Recorder
	prior := state.Default()
	dryRun := runDryRun || runDSN == ""
	if dryRun {
		rec = destination.NewRecorder()
		dest = rec
	} else {
		db, err := postgres.New(ctx, runDSN)
		if err != nil {
			return fmt.Errorf("failed to connect to warehouse: %v", err)
		}
		defer db.Close()
		if err := db.Migrate(ctx); err != nil {
			return fmt.Errorf("failed to prepare warehouse schema: %v", err)
		}
		prior, err = db.LoadState(ctx)
		if err != nil {
			return fmt.Errorf("failed to load sync state: %v", err)
		}
		dest = db
	}

	syncer := sync.New(source, dest, sync.Options{
		AllowedCatalogs:  conn.AllowedCatalogs(),
		TableConcurrency: runTableConcurrency,
	})

	report, err := syncer.Run(ctx, prior)
	if err != nil {
		return fmt.Errorf("sync run failed: %v", err)
	}

	if jsonOutput {
		output := map[string]any{
			"result": 1,
			"value": map[string]any{
				"dry_run": dryRun,
				"report":  report,
			},
		}

		jsonBytes, err := json.MarshalIndent(output, "", "    ")
		if err != nil {
			return fmt.Errorf("failed to format JSON output: %v", err)
		}
		fmt.Println(string(jsonBytes))
		return nil
	}

	if dryRun {
		fmt.Println("Dry run complete; no rows were written")
		for _, op := range rec.Ops() {
			fmt.Println("  " + opLine(op))
		}
	} else {
		fmt.Println("Sync run complete")
	}
	fmt.Printf("Catalogs: %d  Schemas: %d  Tables: %d  Columns: %d  Volumes: %d\n",
		report.Catalogs, report.Schemas, report.Tables, report.Columns, report.Volumes)
	fmt.Printf("Upserts: %d  Checkpoints: %d\n", report.Upserts, report.Checkpoints)
	if len(report.TableFailures) > 0 {
		fmt.Println("Failed tables:")
		for _, f := range report.TableFailures {
			fmt.Printf("- %s: %s\n", f.Table, f.Reason)
		}
	}
	return nil
}

// opLine renders one recorded delivery operation for the dry-run log.
func opLine(op destination.Op) string {
	if op.Kind == destination.OpCheckpoint {
		return fmt.Sprintf("checkpoint last_sync_time=%s catalogs_synced=%d",
			op.State.LastSyncTime, op.State.CatalogsSynced)
	}
	key := ""
	if ts, ok := records.SchemaFor(op.Record.Table); ok {
		parts := make([]string, 0, len(ts.PrimaryKey))
		for _, col := range ts.PrimaryKey {
			parts = append(parts, fmt.Sprintf("%v", op.Record.Data[col]))
		}
		key = strings.Join(parts, "/")
	}
	return fmt.Sprintf("upsert %s %s", op.Record.Table, key)
}

func init() {
	runCmd.Flags().StringVarP(&runSettingsFile, "settings", "f", "", "Path to the connector configuration.json")
	runCmd.MarkFlagRequired("settings")
	runCmd.Flags().StringVarP(&runDSN, "dsn", "", "", "Postgres DSN of the destination warehouse")
	runCmd.Flags().BoolVarP(&runDryRun, "dry-run", "", false, "Walk the catalog without writing to a warehouse")
	runCmd.Flags().IntVarP(&runTableConcurrency, "table-concurrency", "", 0, "Parallel table detail fetches per schema")

	rootCmd.AddCommand(runCmd)
}

package cli

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// ComplianceResponse represents the response from the /compliance endpoint
type ComplianceResponse struct {
	ComplianceScore    ComplianceScore     `json:"compliance_score"`
	HighRiskTables     []HighRiskTable     `json:"high_risk_tables"`
	UndocumentedTables []UndocumentedTable `json:"undocumented_tables"`
	MetadataFreshness  Freshness           `json:"metadata_freshness"`
	Summary            ComplianceSummary   `json:"summary"`
}

// ComplianceScore represents the aggregate compliance metrics
type ComplianceScore struct {
	TotalTables      int     `json:"total_tables"`
	TablesWithPII    int     `json:"tables_with_pii"`
	HighRiskTables   int     `json:"high_risk_tables"`
	DocumentedTables int     `json:"documented_tables"`
	DocumentationPct float64 `json:"documentation_pct"`
	HighRiskPct      float64 `json:"high_risk_pct"`
	OverallScore     float64 `json:"overall_compliance_score"`
}

// HighRiskTable represents one table flagged by the PII classifier
type HighRiskTable struct {
	FullTableName   string  `json:"full_table_name"`
	PIIColumnsCount int     `json:"pii_columns_count"`
	PIIColumns      string  `json:"pii_columns"`
	RiskLevel       string  `json:"risk_level"`
	AvgPIIScorePct  float64 `json:"avg_pii_score_pct"`
	Undocumented    bool    `json:"undocumented"`
}

// UndocumentedTable represents one table without a description
type UndocumentedTable struct {
	FullName  string  `json:"full_name"`
	TableType *string `json:"table_type"`
}

// Freshness represents the sync freshness block
type Freshness struct {
	MinutesSinceSync int64  `json:"minutes_since_sync"`
	CatalogsSynced   int    `json:"catalogs_synced"`
	TablesSynced     int    `json:"tables_synced"`
	FreshnessStatus  string `json:"freshness_status"`
}

// ComplianceSummary represents the report roll-up
type ComplianceSummary struct {
	OverallScore      float64 `json:"overall_score"`
	HighRiskCount     int     `json:"high_risk_count"`
	UndocumentedCount int     `json:"undocumented_count"`
}

// complianceCmd represents the compliance command
var complianceCmd = &cobra.Command{
	Use:   "compliance",
	Short: "Get the data governance compliance report",
	Long: `Get the full compliance report from the SyncFlow server: the overall
compliance score, high-risk tables, undocumented tables, and how fresh the
synced metadata is.

Examples:
  syncflow compliance
  syncflow compliance -j`,
	RunE: getCompliance,
}

// getCompliance handles retrieving the compliance report
func getCompliance(cmd *cobra.Command, args []string) error {
	client := NewHTTPClient(GetConfig())

	opts := RequestOptions{
		Method: "GET",
		Path:   "compliance",
	}

	response, _, err := client.DoRequest(opts)
	if err != nil {
		return err
	}

	var report ComplianceResponse
	if err := json.Unmarshal(response, &report); err != nil {
		return fmt.Errorf("failed to parse response: %v", err)
	}

	if jsonOutput {
		output := map[string]any{
			"result": 1,
			"value":  report,
		}

		jsonBytes, err := json.MarshalIndent(output, "", "    ")
		if err != nil {
			return fmt.Errorf("failed to format JSON output: %v", err)
		}
		fmt.Println(string(jsonBytes))
	} else {
		printCompliancePretty(report)
	}

	return nil
}

// printCompliancePretty prints the compliance report in a human-readable format
func printCompliancePretty(report ComplianceResponse) {
	score := report.ComplianceScore
	fmt.Printf("Compliance Score: %.2f\n", score.OverallScore)
	fmt.Printf("  Tables: %d total, %d documented (%.2f%%)\n",
		score.TotalTables, score.DocumentedTables, score.DocumentationPct)
	if score.TablesWithPII > 0 {
		fmt.Printf("  PII: %d tables with PII, %d high risk (%.2f%%)\n",
			score.TablesWithPII, score.HighRiskTables, score.HighRiskPct)
	} else {
		fmt.Println("  PII: no classifier results available")
	}

	fresh := report.MetadataFreshness
	if fresh.MinutesSinceSync >= 0 {
		fmt.Printf("Metadata: %s (synced %dm ago, %d catalogs, %d tables)\n",
			cases.Title(language.English).String(strings.ToLower(fresh.FreshnessStatus)),
			fresh.MinutesSinceSync, fresh.CatalogsSynced, fresh.TablesSynced)
	} else {
		fmt.Println("Metadata: no sync recorded yet")
	}

	if len(report.HighRiskTables) > 0 {
		fmt.Println()
		fmt.Println("High Risk Tables:")
		for _, t := range report.HighRiskTables {
			marker := ""
			if t.Undocumented {
				marker = " (undocumented)"
			}
			fmt.Printf("- %s [%s] %d PII columns: %s%s\n",
				t.FullTableName, t.RiskLevel, t.PIIColumnsCount, t.PIIColumns, marker)
		}
	}

	if len(report.UndocumentedTables) > 0 {
		fmt.Println()
		fmt.Printf("Undocumented Tables (%d):\n", report.Summary.UndocumentedCount)
		for _, t := range report.UndocumentedTables {
			fmt.Printf("- %s\n", t.FullName)
		}
	}
}

// init initializes the compliance command and adds it to the root command
func init() {
	rootCmd.AddCommand(complianceCmd)
}

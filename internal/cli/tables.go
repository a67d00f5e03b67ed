package cli

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
	"sigs.k8s.io/yaml"
)

var (
	// Tables command flags
	tablesLimit int
)

// SearchResponse represents the response from the /tables/search endpoint
type SearchResponse struct {
	Query   string           `json:"query"`
	Keyword string           `json:"keyword,omitempty"`
	Results []tableSearchHit `json:"results"`
	Count   int              `json:"count"`
	Message string           `json:"message,omitempty"`
}

type tableSearchHit struct {
	FullName  string  `json:"full_name"`
	TableType *string `json:"table_type"`
	Comment   *string `json:"comment"`
}

// tablesCmd represents the tables command
var tablesCmd = &cobra.Command{
	Use:   "tables",
	Short: "Inspect synced catalog tables",
	Long:  `Commands for searching and describing tables synced into the governance warehouse.`,
}

// tablesSearchCmd represents the tables search subcommand
var tablesSearchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Search tables by name or description",
	Long: `Search synced tables by keyword. The server matches the first meaningful
word of the query against table names and descriptions.

Example:
  syncflow tables search "customer data"
  syncflow tables search orders -j`,
	Args: cobra.ExactArgs(1),
	RunE: searchTables,
}

// tablesDescribeCmd represents the tables describe subcommand
var tablesDescribeCmd = &cobra.Command{
	Use:   "describe <catalog.schema.table>",
	Short: "Describe a table by its full name",
	Long: `Describe a synced table by its three-part name, including its columns and
any PII classification.

Example:
  syncflow tables describe main.sales.orders`,
	Args: cobra.ExactArgs(1),
	RunE: describeTable,
}

// tablesUndocumentedCmd represents the tables undocumented subcommand
var tablesUndocumentedCmd = &cobra.Command{
	Use:   "undocumented",
	Short: "List tables without a description",
	Long: `List synced tables that have no description, newest first.

Example:
  syncflow tables undocumented
  syncflow tables undocumented --limit 10`,
	RunE: listUndocumentedTables,
}

func searchTables(cmd *cobra.Command, args []string) error {
	client := NewHTTPClient(GetConfig())

	opts := RequestOptions{
		Method:      "GET",
		Path:        "tables/search",
		QueryParams: map[string]string{"q": args[0]},
	}

	response, _, err := client.DoRequest(opts)
	if err != nil {
		return err
	}

	var searchResp SearchResponse
	if err := json.Unmarshal(response, &searchResp); err != nil {
		return fmt.Errorf("failed to parse response: %v", err)
	}

	if jsonOutput {
		output := map[string]any{
			"result": 1,
			"value":  searchResp,
		}

		jsonBytes, err := json.MarshalIndent(output, "", "    ")
		if err != nil {
			return fmt.Errorf("failed to format JSON output: %v", err)
		}
		fmt.Println(string(jsonBytes))
		return nil
	}

	if searchResp.Message != "" {
		fmt.Println(searchResp.Message)
		return nil
	}

	fmt.Printf("Tables matching %q (%d):\n", searchResp.Keyword, searchResp.Count)
	for _, hit := range searchResp.Results {
		line := "- " + hit.FullName
		if hit.TableType != nil {
			line += " [" + *hit.TableType + "]"
		}
		if hit.Comment != nil && *hit.Comment != "" {
			line += ": " + *hit.Comment
		}
		fmt.Println(line)
	}
	return nil
}

func describeTable(cmd *cobra.Command, args []string) error {
	client := NewHTTPClient(GetConfig())

	opts := RequestOptions{
		Method: "GET",
		Path:   "tables/" + args[0],
	}

	response, _, err := client.DoRequest(opts)
	if err != nil {
		return err
	}

	var responseData map[string]any
	if err := json.Unmarshal(response, &responseData); err != nil {
		return fmt.Errorf("failed to parse response: %v", err)
	}

	if jsonOutput {
		// Format as JSON with result and value
		output := map[string]any{
			"result": 1,
			"value":  responseData,
		}

		jsonBytes, err := json.MarshalIndent(output, "", "    ")
		if err != nil {
			return fmt.Errorf("failed to format JSON output: %v", err)
		}
		fmt.Println(string(jsonBytes))
	} else {
		// Convert to YAML
		yamlBytes, err := yaml.Marshal(responseData)
		if err != nil {
			return fmt.Errorf("failed to convert to YAML: %v", err)
		}
		fmt.Println(string(yamlBytes))
	}
	return nil
}

func listUndocumentedTables(cmd *cobra.Command, args []string) error {
	client := NewHTTPClient(GetConfig())

	queryParams := make(map[string]string)
	if tablesLimit > 0 {
		queryParams["limit"] = strconv.Itoa(tablesLimit)
	}

	opts := RequestOptions{
		Method:      "GET",
		Path:        "tables/undocumented",
		QueryParams: queryParams,
	}

	response, _, err := client.DoRequest(opts)
	if err != nil {
		return err
	}

	var listResp struct {
		Tables []struct {
			FullName  string  `json:"full_name"`
			TableType *string `json:"table_type"`
		} `json:"tables"`
		Count int `json:"count"`
	}
	if err := json.Unmarshal(response, &listResp); err != nil {
		return fmt.Errorf("failed to parse response: %v", err)
	}

	if jsonOutput {
		output := map[string]any{
			"result": 1,
			"value":  listResp,
		}

		jsonBytes, err := json.MarshalIndent(output, "", "    ")
		if err != nil {
			return fmt.Errorf("failed to format JSON output: %v", err)
		}
		fmt.Println(string(jsonBytes))
		return nil
	}

	fmt.Printf("Undocumented Tables (%d):\n", listResp.Count)
	for _, t := range listResp.Tables {
		fmt.Printf("- %s\n", t.FullName)
	}
	return nil
}

func init() {
	tablesUndocumentedCmd.Flags().IntVarP(&tablesLimit, "limit", "l", 0, "Maximum number of tables to list")

	tablesCmd.AddCommand(tablesSearchCmd)
	tablesCmd.AddCommand(tablesDescribeCmd)
	tablesCmd.AddCommand(tablesUndocumentedCmd)
	rootCmd.AddCommand(tablesCmd)
}

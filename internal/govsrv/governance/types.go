package governance

import "time"

// Risk levels assigned by the PII classification pipeline.
const (
	RiskHigh   = "HIGH"
	RiskMedium = "MEDIUM"
)

// Freshness classifications for the synced metadata.
const (
	FreshnessFresh      = "FRESH"
	FreshnessAcceptable = "ACCEPTABLE"
	FreshnessStale      = "STALE"
	FreshnessUnknown    = "UNKNOWN"
)

// ComplianceScore carries the documentation and risk metrics behind the
// weighted overall score. Without ML results the PII counts stay zero and
// the risk term contributes in full.
type ComplianceScore struct {
	TotalTables      int     `json:"total_tables"`
	TablesWithPII    int     `json:"tables_with_pii"`
	HighRiskTables   int     `json:"high_risk_tables"`
	DocumentedTables int     `json:"documented_tables"`
	DocumentationPct float64 `json:"documentation_pct"`
	HighRiskPct      float64 `json:"high_risk_pct"`
	OverallScore     float64 `json:"overall_compliance_score"`
}

// HighRiskTable is one PII-bearing table joined with its synced metadata.
// LastSynced is nil when the table vanished from the metadata but still has
// an ML result row.
type HighRiskTable struct {
	TableCatalog    string     `json:"table_catalog"`
	TableSchema     string     `json:"table_schema"`
	TableName       string     `json:"table_name"`
	FullTableName   string     `json:"full_table_name"`
	PIIColumnsCount int        `json:"pii_columns_count"`
	PIIColumns      string     `json:"pii_columns"`
	RiskLevel       string     `json:"risk_level"`
	AvgPIIScorePct  float64    `json:"avg_pii_score_pct"`
	Undocumented    bool       `json:"undocumented"`
	LastSynced      *time.Time `json:"last_synced"`
}

// UndocumentedTable is a table without a comment.
type UndocumentedTable struct {
	CatalogName string     `json:"catalog_name"`
	SchemaName  string     `json:"schema_name"`
	TableName   string     `json:"table_name"`
	FullName    string     `json:"full_name"`
	TableType   *string    `json:"table_type"`
	Created     *time.Time `json:"created"`
	LastSynced  time.Time  `json:"last_synced"`
}

// SchemaDocumentation aggregates documentation coverage for one schema.
type SchemaDocumentation struct {
	SchemaName       string  `json:"schema_name"`
	TotalTables      int     `json:"total_tables"`
	DocumentedTables int     `json:"documented_tables"`
	DocumentationPct float64 `json:"documentation_pct"`
}

// SearchResult is one table matched by keyword search.
type SearchResult struct {
	CatalogName string    `json:"catalog_name"`
	SchemaName  string    `json:"schema_name"`
	TableName   string    `json:"table_name"`
	FullName    string    `json:"full_name"`
	TableType   *string   `json:"table_type"`
	Comment     *string   `json:"comment"`
	LastSynced  time.Time `json:"last_synced"`
}

// TableMeta is the table-level slice of a details response.
type TableMeta struct {
	CatalogName string     `json:"catalog_name"`
	SchemaName  string     `json:"schema_name"`
	TableName   string     `json:"table_name"`
	TableType   *string    `json:"table_type"`
	Comment     *string    `json:"comment"`
	Created     *time.Time `json:"created"`
	LastSynced  time.Time  `json:"last_synced"`
}

// ColumnDetail is one column of a details response, in schema position order.
type ColumnDetail struct {
	ColumnName      string  `json:"column_name"`
	DataType        *string `json:"data_type"`
	IsNullable      bool    `json:"is_nullable"`
	OrdinalPosition int     `json:"ordinal_position"`
	Comment         *string `json:"comment"`
}

// PIIInfo is the ML classification attached to a single table.
type PIIInfo struct {
	PIIColumnsCount int     `json:"pii_columns_count"`
	PIIColumns      string  `json:"pii_columns"`
	RiskLevel       string  `json:"risk_level"`
	AvgPIIScorePct  float64 `json:"avg_pii_score_pct"`
}

// TableDetails is the full answer for one table: metadata, ordered columns
// and, when ML results exist, the PII classification.
type TableDetails struct {
	Table       TableMeta      `json:"table"`
	Columns     []ColumnDetail `json:"columns"`
	ColumnCount int            `json:"column_count"`
	PIIInfo     *PIIInfo       `json:"pii_info,omitempty"`
}

// PIITableStatus is one row of the PII summary, ordered by column count.
type PIITableStatus struct {
	FullTableName   string  `json:"full_table_name"`
	PIIColumnsCount int     `json:"pii_columns_count"`
	PIIColumns      string  `json:"pii_columns"`
	RiskLevel       string  `json:"risk_level"`
	AvgPIIScorePct  float64 `json:"avg_pii_score_pct"`
}

// PIIAnalysis summarizes PII exposure across the catalog. The per-level
// lists are capped at ten entries each.
type PIIAnalysis struct {
	TotalTablesWithPII int              `json:"total_tables_with_pii"`
	HighRiskCount      int              `json:"high_risk_count"`
	MediumRiskCount    int              `json:"medium_risk_count"`
	HighRiskTables     []PIITableStatus `json:"high_risk_tables"`
	MediumRiskTables   []PIITableStatus `json:"medium_risk_tables"`
}

// Freshness reports how stale the synced metadata is. LatestSync comes from
// the authoritative sync checkpoint, not from row write times: unchanged rows
// skip their upsert and keep old write times across healthy runs.
type Freshness struct {
	OldestSync       *time.Time `json:"oldest_sync"`
	LatestSync       *time.Time `json:"latest_sync"`
	MinutesSinceSync int64      `json:"minutes_since_sync"`
	CatalogsSynced   int        `json:"catalogs_synced"`
	TablesSynced     int        `json:"tables_synced"`
	FreshnessStatus  string     `json:"freshness_status"`
}

// ComplianceSummary is the headline block of a compliance report.
type ComplianceSummary struct {
	OverallScore      float64 `json:"overall_score"`
	HighRiskCount     int     `json:"high_risk_count"`
	UndocumentedCount int     `json:"undocumented_count"`
}

// Compliance is the composite governance report.
type Compliance struct {
	ComplianceScore    ComplianceScore     `json:"compliance_score"`
	HighRiskTables     []HighRiskTable     `json:"high_risk_tables"`
	UndocumentedTables []UndocumentedTable `json:"undocumented_tables"`
	MetadataFreshness  Freshness           `json:"metadata_freshness"`
	Summary            ComplianceSummary   `json:"summary"`
}

// Package governance answers compliance, documentation and PII risk
// questions over the synced metadata warehouse. All SQL is parameterized.
// The ML results relation (pii_summary_by_table) is written by an external
// classification pipeline and may not exist; every PII path probes for it
// and degrades to empty answers when it is absent.
package governance

import (
	"context"
	"database/sql"
	"errors"
	"math"
	"strings"
	"time"

	"github.com/jackc/pgconn"
	"github.com/jackc/pgtype"
	json "github.com/json-iterator/go"
	"github.com/rs/zerolog/log"

	"github.com/syncflow/syncflow/internal/common/apperrors"
	"github.com/syncflow/syncflow/internal/connector/state"
)

const pgUndefinedTable = "42P01"

const defaultUndocumentedLimit = 50

// Engine runs governance queries against the warehouse.
type Engine struct {
	db *sql.DB
}

func New(db *sql.DB) *Engine {
	return &Engine{db: db}
}

// Ping verifies the warehouse connection.
func (e *Engine) Ping(ctx context.Context) error {
	return e.db.PingContext(ctx)
}

const queryComplianceWithPII = `
SELECT
	(SELECT COUNT(*) FROM "tables") AS total_tables,
	(SELECT COUNT(*) FROM pii_summary_by_table WHERE pii_columns_count > 0) AS tables_with_pii,
	(SELECT COUNT(*) FROM pii_summary_by_table WHERE risk_level = 'HIGH') AS high_risk_tables,
	(SELECT COUNT(*) FROM "tables" WHERE "comment" IS NOT NULL) AS documented_tables`

const queryComplianceBase = `
SELECT
	COUNT(*) AS total_tables,
	COUNT("comment") AS documented_tables
FROM "tables"`

// ComplianceScore computes the weighted 0-100 compliance score from
// documentation coverage and PII risk exposure.
func (e *Engine) ComplianceScore(ctx context.Context) (ComplianceScore, apperrors.Error) {
	var cs ComplianceScore
	err := e.db.QueryRowContext(ctx, queryComplianceWithPII).
		Scan(&cs.TotalTables, &cs.TablesWithPII, &cs.HighRiskTables, &cs.DocumentedTables)
	if isUndefinedTable(err) {
		err = e.db.QueryRowContext(ctx, queryComplianceBase).
			Scan(&cs.TotalTables, &cs.DocumentedTables)
	}
	if err != nil {
		return ComplianceScore{}, ErrGovernance.MsgErr("unable to compute compliance score", err)
	}

	cs.DocumentationPct = round2(pct(cs.DocumentedTables, cs.TotalTables))
	cs.HighRiskPct = round2(pct(cs.HighRiskTables, cs.TablesWithPII))
	cs.OverallScore = overallScore(cs.DocumentationPct, cs.HighRiskPct)
	log.Ctx(ctx).Info().Float64("overall_score", cs.OverallScore).Msg("compliance score calculated")
	return cs, nil
}

const queryHighRisk = `
SELECT
	t.table_catalog,
	t.table_schema,
	t.table_name,
	t.full_table_name,
	t.pii_columns_count,
	t.pii_columns,
	t.risk_level,
	t.avg_pii_score_pct,
	tm."comment" IS NULL AS undocumented,
	tm._synced_at AS last_synced
FROM pii_summary_by_table t
LEFT JOIN "tables" tm
	ON t.table_catalog = tm.catalog_name
	AND t.table_schema = tm.schema_name
	AND t.table_name = tm.table_name
WHERE t.risk_level IN ('HIGH', 'MEDIUM')
ORDER BY
	CASE t.risk_level WHEN 'HIGH' THEN 1 WHEN 'MEDIUM' THEN 2 ELSE 3 END,
	t.pii_columns_count DESC`

// HighRiskTables lists tables the ML pipeline flagged HIGH or MEDIUM,
// highest risk first. Empty when no ML results exist.
func (e *Engine) HighRiskTables(ctx context.Context) ([]HighRiskTable, apperrors.Error) {
	out := make([]HighRiskTable, 0, 16)
	rows, err := e.db.QueryContext(ctx, queryHighRisk)
	if isUndefinedTable(err) {
		return out, nil
	}
	if err != nil {
		return nil, ErrGovernance.MsgErr("unable to list high-risk tables", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			hr         HighRiskTable
			lastSynced sql.NullTime
		)
		if err := rows.Scan(&hr.TableCatalog, &hr.TableSchema, &hr.TableName, &hr.FullTableName,
			&hr.PIIColumnsCount, &hr.PIIColumns, &hr.RiskLevel, &hr.AvgPIIScorePct,
			&hr.Undocumented, &lastSynced); err != nil {
			return nil, ErrGovernance.MsgErr("unable to read high-risk table row", err)
		}
		hr.LastSynced = nullableTime(lastSynced)
		out = append(out, hr)
	}
	if err := rows.Err(); err != nil {
		return nil, ErrGovernance.MsgErr("unable to list high-risk tables", err)
	}
	return out, nil
}

const queryUndocumented = `
SELECT
	catalog_name,
	schema_name,
	table_name,
	full_name,
	table_type,
	created_at AS created,
	_synced_at AS last_synced
FROM "tables"
WHERE "comment" IS NULL OR "comment" = ''
ORDER BY created_at DESC NULLS LAST
LIMIT $1`

// UndocumentedTables lists tables without a comment, newest first.
func (e *Engine) UndocumentedTables(ctx context.Context, limit int) ([]UndocumentedTable, apperrors.Error) {
	if limit <= 0 {
		limit = defaultUndocumentedLimit
	}
	rows, err := e.db.QueryContext(ctx, queryUndocumented, limit)
	if err != nil {
		return nil, ErrGovernance.MsgErr("unable to list undocumented tables", err)
	}
	defer rows.Close()

	out := make([]UndocumentedTable, 0, limit)
	for rows.Next() {
		var (
			ut        UndocumentedTable
			tableType sql.NullString
			created   sql.NullTime
		)
		if err := rows.Scan(&ut.CatalogName, &ut.SchemaName, &ut.TableName, &ut.FullName,
			&tableType, &created, &ut.LastSynced); err != nil {
			return nil, ErrGovernance.MsgErr("unable to read undocumented table row", err)
		}
		ut.TableType = nullableString(tableType)
		ut.Created = nullableTime(created)
		ut.LastSynced = ut.LastSynced.UTC()
		out = append(out, ut)
	}
	if err := rows.Err(); err != nil {
		return nil, ErrGovernance.MsgErr("unable to list undocumented tables", err)
	}
	return out, nil
}

const queryDocBySchema = `
SELECT
	schema_name,
	COUNT(*) AS total_tables,
	COUNT("comment") AS documented_tables
FROM "tables"
GROUP BY schema_name
ORDER BY 100.0 * COUNT("comment") / COUNT(*) DESC, schema_name`

// DocumentationBySchema reports documentation coverage per schema, best
// covered first.
func (e *Engine) DocumentationBySchema(ctx context.Context) ([]SchemaDocumentation, apperrors.Error) {
	rows, err := e.db.QueryContext(ctx, queryDocBySchema)
	if err != nil {
		return nil, ErrGovernance.MsgErr("unable to compute documentation rates", err)
	}
	defer rows.Close()

	out := make([]SchemaDocumentation, 0, 8)
	for rows.Next() {
		var sd SchemaDocumentation
		if err := rows.Scan(&sd.SchemaName, &sd.TotalTables, &sd.DocumentedTables); err != nil {
			return nil, ErrGovernance.MsgErr("unable to read documentation rate row", err)
		}
		sd.DocumentationPct = round1(pct(sd.DocumentedTables, sd.TotalTables))
		out = append(out, sd)
	}
	if err := rows.Err(); err != nil {
		return nil, ErrGovernance.MsgErr("unable to compute documentation rates", err)
	}
	return out, nil
}

const querySearch = `
SELECT
	catalog_name,
	schema_name,
	table_name,
	full_name,
	table_type,
	"comment",
	_synced_at AS last_synced
FROM "tables"
WHERE LOWER(table_name) LIKE $1
	OR LOWER(COALESCE("comment", '')) LIKE $1
ORDER BY full_name
LIMIT $2`

// SearchTables matches the keyword against table names and comments,
// case-insensitively.
func (e *Engine) SearchTables(ctx context.Context, keyword string, limit int) ([]SearchResult, apperrors.Error) {
	pattern := "%" + strings.ToLower(keyword) + "%"
	rows, err := e.db.QueryContext(ctx, querySearch, pattern, limit)
	if err != nil {
		return nil, ErrGovernance.MsgErr("unable to search tables", err)
	}
	defer rows.Close()

	out := make([]SearchResult, 0, limit)
	for rows.Next() {
		var (
			sr        SearchResult
			tableType sql.NullString
			comment   sql.NullString
		)
		if err := rows.Scan(&sr.CatalogName, &sr.SchemaName, &sr.TableName, &sr.FullName,
			&tableType, &comment, &sr.LastSynced); err != nil {
			return nil, ErrGovernance.MsgErr("unable to read search result row", err)
		}
		sr.TableType = nullableString(tableType)
		sr.Comment = nullableString(comment)
		sr.LastSynced = sr.LastSynced.UTC()
		out = append(out, sr)
	}
	if err := rows.Err(); err != nil {
		return nil, ErrGovernance.MsgErr("unable to search tables", err)
	}
	log.Ctx(ctx).Info().Str("keyword", keyword).Int("count", len(out)).Msg("table search complete")
	return out, nil
}

const queryTableMeta = `
SELECT
	catalog_name,
	schema_name,
	table_name,
	table_type,
	"comment",
	created_at AS created,
	_synced_at AS last_synced
FROM "tables"
WHERE catalog_name = $1 AND schema_name = $2 AND table_name = $3`

const queryTableColumns = `
SELECT
	column_name,
	data_type,
	COALESCE(nullable, TRUE) AS is_nullable,
	COALESCE("position", 0) AS ordinal_position,
	"comment"
FROM "columns"
WHERE table_full_name = $1
ORDER BY "position"`

const queryTablePII = `
SELECT
	pii_columns_count,
	pii_columns,
	risk_level,
	avg_pii_score_pct
FROM pii_summary_by_table
WHERE table_catalog = $1 AND table_schema = $2 AND table_name = $3`

// TableDetails returns the metadata, ordered columns and, when ML results
// exist, the PII classification of one table.
func (e *Engine) TableDetails(ctx context.Context, fullName string) (*TableDetails, apperrors.Error) {
	catalog, schema, table, aerr := splitFullName(fullName)
	if aerr != nil {
		return nil, aerr
	}

	var (
		meta      TableMeta
		tableType sql.NullString
		comment   sql.NullString
		created   sql.NullTime
	)
	err := e.db.QueryRowContext(ctx, queryTableMeta, catalog, schema, table).
		Scan(&meta.CatalogName, &meta.SchemaName, &meta.TableName, &tableType, &comment, &created, &meta.LastSynced)
	if err == sql.ErrNoRows {
		return nil, ErrTableNotFound.Msg("table " + fullName + " not found")
	}
	if err != nil {
		return nil, ErrGovernance.MsgErr("unable to read table metadata", err)
	}
	meta.TableType = nullableString(tableType)
	meta.Comment = nullableString(comment)
	meta.Created = nullableTime(created)
	meta.LastSynced = meta.LastSynced.UTC()

	columns, aerr := e.tableColumns(ctx, fullName)
	if aerr != nil {
		return nil, aerr
	}

	details := &TableDetails{
		Table:       meta,
		Columns:     columns,
		ColumnCount: len(columns),
	}

	var pii PIIInfo
	err = e.db.QueryRowContext(ctx, queryTablePII, catalog, schema, table).
		Scan(&pii.PIIColumnsCount, &pii.PIIColumns, &pii.RiskLevel, &pii.AvgPIIScorePct)
	switch {
	case err == nil:
		details.PIIInfo = &pii
	case err == sql.ErrNoRows || isUndefinedTable(err):
		// no ML results for this table
	default:
		log.Ctx(ctx).Debug().Err(err).Str("table", fullName).Msg("unable to fetch pii info")
	}

	return details, nil
}

func (e *Engine) tableColumns(ctx context.Context, fullName string) ([]ColumnDetail, apperrors.Error) {
	rows, err := e.db.QueryContext(ctx, queryTableColumns, fullName)
	if err != nil {
		return nil, ErrGovernance.MsgErr("unable to read table columns", err)
	}
	defer rows.Close()

	out := make([]ColumnDetail, 0, 16)
	for rows.Next() {
		var (
			cd       ColumnDetail
			dataType sql.NullString
			comment  sql.NullString
		)
		if err := rows.Scan(&cd.ColumnName, &dataType, &cd.IsNullable, &cd.OrdinalPosition, &comment); err != nil {
			return nil, ErrGovernance.MsgErr("unable to read column row", err)
		}
		cd.DataType = nullableString(dataType)
		cd.Comment = nullableString(comment)
		out = append(out, cd)
	}
	if err := rows.Err(); err != nil {
		return nil, ErrGovernance.MsgErr("unable to read table columns", err)
	}
	return out, nil
}

const queryPIIStatus = `
SELECT
	full_table_name,
	pii_columns_count,
	pii_columns,
	risk_level,
	avg_pii_score_pct
FROM pii_summary_by_table
ORDER BY pii_columns_count DESC
LIMIT 20`

// PIIStatus lists the tables carrying the most PII columns. Empty when no
// ML results exist.
func (e *Engine) PIIStatus(ctx context.Context) ([]PIITableStatus, apperrors.Error) {
	out := make([]PIITableStatus, 0, 20)
	rows, err := e.db.QueryContext(ctx, queryPIIStatus)
	if isUndefinedTable(err) {
		return out, nil
	}
	if err != nil {
		return nil, ErrGovernance.MsgErr("unable to read pii status", err)
	}
	defer rows.Close()

	for rows.Next() {
		var ps PIITableStatus
		if err := rows.Scan(&ps.FullTableName, &ps.PIIColumnsCount, &ps.PIIColumns,
			&ps.RiskLevel, &ps.AvgPIIScorePct); err != nil {
			return nil, ErrGovernance.MsgErr("unable to read pii status row", err)
		}
		out = append(out, ps)
	}
	if err := rows.Err(); err != nil {
		return nil, ErrGovernance.MsgErr("unable to read pii status", err)
	}
	return out, nil
}

// PIIAnalysis summarizes PII exposure across the catalog.
func (e *Engine) PIIAnalysis(ctx context.Context) (*PIIAnalysis, apperrors.Error) {
	tables, err := e.PIIStatus(ctx)
	if err != nil {
		return nil, err
	}
	return summarizePII(tables), nil
}

const querySyncState = `SELECT state FROM sync_state WHERE id = 1`

const queryTableFreshness = `SELECT MIN(_synced_at) AS oldest_sync, COUNT(*) AS tables_synced FROM "tables"`

// Freshness classifies how stale the synced metadata is based on the last
// sync checkpoint. A warehouse that never completed a sync reports UNKNOWN
// with minutes_since_sync -1.
func (e *Engine) Freshness(ctx context.Context) (Freshness, apperrors.Error) {
	out := Freshness{MinutesSinceSync: -1, FreshnessStatus: FreshnessUnknown}

	var js pgtype.JSONB
	err := e.db.QueryRowContext(ctx, querySyncState).Scan(&js)
	if err == sql.ErrNoRows {
		return out, nil
	}
	if err != nil {
		return out, ErrGovernance.MsgErr("unable to read sync state", err)
	}
	st := state.Default()
	if js.Status == pgtype.Present {
		var m map[string]any
		if err := json.Unmarshal(js.Bytes, &m); err != nil {
			return out, ErrGovernance.MsgErr("unable to decode sync state", err)
		}
		st = state.FromMap(m)
	}

	lastSync, perr := time.Parse(time.RFC3339, st.LastSyncTime)
	if perr != nil {
		log.Ctx(ctx).Debug().Str("last_sync_time", st.LastSyncTime).Msg("unparseable checkpoint time")
		return out, nil
	}
	lastSync = lastSync.UTC()

	var (
		oldest sql.NullTime
		tables int
	)
	if err := e.db.QueryRowContext(ctx, queryTableFreshness).Scan(&oldest, &tables); err != nil {
		return out, ErrGovernance.MsgErr("unable to read table freshness", err)
	}

	out.LatestSync = &lastSync
	out.OldestSync = nullableTime(oldest)
	out.MinutesSinceSync = int64(time.Since(lastSync).Minutes())
	out.CatalogsSynced = st.CatalogsSynced
	out.TablesSynced = tables
	out.FreshnessStatus = freshnessFor(out.MinutesSinceSync)
	log.Ctx(ctx).Info().Str("freshness_status", out.FreshnessStatus).Msg("metadata freshness checked")
	return out, nil
}

// Compliance assembles the composite governance report.
func (e *Engine) Compliance(ctx context.Context) (*Compliance, apperrors.Error) {
	score, err := e.ComplianceScore(ctx)
	if err != nil {
		return nil, err
	}
	highRisk, err := e.HighRiskTables(ctx)
	if err != nil {
		return nil, err
	}
	undocumented, err := e.UndocumentedTables(ctx, 20)
	if err != nil {
		return nil, err
	}
	freshness, err := e.Freshness(ctx)
	if err != nil {
		return nil, err
	}
	return &Compliance{
		ComplianceScore:    score,
		HighRiskTables:     highRisk,
		UndocumentedTables: undocumented,
		MetadataFreshness:  freshness,
		Summary: ComplianceSummary{
			OverallScore:      score.OverallScore,
			HighRiskCount:     len(highRisk),
			UndocumentedCount: len(undocumented),
		},
	}, nil
}

const queryTableExists = `SELECT COUNT(*) FROM "tables" WHERE catalog_name = $1 AND schema_name = $2 AND table_name = $3`

// TableExists reports whether the named table is present in the synced
// metadata. Malformed names are simply absent, not errors.
func (e *Engine) TableExists(ctx context.Context, fullName string) (bool, apperrors.Error) {
	catalog, schema, table, aerr := splitFullName(fullName)
	if aerr != nil {
		return false, nil
	}
	var count int
	if err := e.db.QueryRowContext(ctx, queryTableExists, catalog, schema, table).Scan(&count); err != nil {
		return false, ErrGovernance.MsgErr("unable to check table existence", err)
	}
	return count > 0, nil
}

// ExtractKeywords pulls search terms out of a free-text query: words longer
// than three characters, lowercased, in order of appearance.
func ExtractKeywords(query string) []string {
	words := strings.Fields(query)
	keywords := make([]string, 0, len(words))
	for _, w := range words {
		if len(w) > 3 {
			keywords = append(keywords, strings.ToLower(w))
		}
	}
	return keywords
}

func splitFullName(fullName string) (catalog, schema, table string, err apperrors.Error) {
	parts := strings.Split(fullName, ".")
	if len(parts) != 3 {
		return "", "", "", ErrInvalidTableName
	}
	return parts[0], parts[1], parts[2], nil
}

func summarizePII(tables []PIITableStatus) *PIIAnalysis {
	high := make([]PIITableStatus, 0, len(tables))
	medium := make([]PIITableStatus, 0, len(tables))
	for _, t := range tables {
		switch t.RiskLevel {
		case RiskHigh:
			high = append(high, t)
		case RiskMedium:
			medium = append(medium, t)
		}
	}
	return &PIIAnalysis{
		TotalTablesWithPII: len(tables),
		HighRiskCount:      len(high),
		MediumRiskCount:    len(medium),
		HighRiskTables:     capRiskList(high),
		MediumRiskTables:   capRiskList(medium),
	}
}

// capRiskList trims per-level lists to the reporting cap of ten entries.
func capRiskList(in []PIITableStatus) []PIITableStatus {
	if len(in) > 10 {
		return in[:10]
	}
	return in
}

// overallScore weights documentation coverage at 0.4 and risk avoidance at
// 0.6. The risk term never goes negative.
func overallScore(documentationPct, highRiskPct float64) float64 {
	docScore := documentationPct * 0.4
	riskScore := math.Max(0, 100-highRiskPct) * 0.6
	return round2(docScore + riskScore)
}

// freshnessFor classifies minutes since the last sync: under 20 is FRESH,
// under 60 ACCEPTABLE, anything older STALE.
func freshnessFor(minutes int64) string {
	switch {
	case minutes < 20:
		return FreshnessFresh
	case minutes < 60:
		return FreshnessAcceptable
	default:
		return FreshnessStale
	}
}

// pct is the plain percentage, 0 when the denominator is zero.
func pct(part, whole int) float64 {
	if whole == 0 {
		return 0
	}
	return 100 * float64(part) / float64(whole)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

func isUndefinedTable(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgUndefinedTable
}

func nullableString(v sql.NullString) *string {
	if !v.Valid {
		return nil
	}
	return &v.String
}

func nullableTime(v sql.NullTime) *time.Time {
	if !v.Valid {
		return nil
	}
	t := v.Time.UTC()
	return &t
}

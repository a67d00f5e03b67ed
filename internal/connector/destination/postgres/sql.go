package postgres

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/anand-gl/jsoncanonicalizer"
	json "github.com/json-iterator/go"
	"github.com/lib/pq"

	"github.com/syncflow/syncflow/internal/connector/records"
)

const (
	colSyncedAt = "_synced_at"
	colRowHash  = "_row_hash"
)

func sqlType(t records.ColumnType) string {
	switch t {
	case records.TypeInt:
		return "BIGINT"
	case records.TypeBoolean:
		return "BOOLEAN"
	case records.TypeUTCDatetime:
		return "TIMESTAMPTZ"
	default:
		return "TEXT"
	}
}

func quotedJoin(names []string) string {
	quoted := make([]string, 0, len(names))
	for _, n := range names {
		quoted = append(quoted, pq.QuoteIdentifier(n))
	}
	return strings.Join(quoted, ", ")
}

// buildCreateTable renders the DDL of one delivered table. Identifiers are
// always quoted; delivered names like "tables" and "position" collide with
// SQL keywords otherwise.
func buildCreateTable(ts records.TableSchema) string {
	var b strings.Builder
	b.WriteString("CREATE TABLE IF NOT EXISTS ")
	b.WriteString(pq.QuoteIdentifier(ts.Name))
	b.WriteString(" (\n")
	for _, col := range ts.Columns {
		fmt.Fprintf(&b, "\t%s %s,\n", pq.QuoteIdentifier(col.Name), sqlType(col.Type))
	}
	fmt.Fprintf(&b, "\t%s TIMESTAMPTZ NOT NULL,\n", pq.QuoteIdentifier(colSyncedAt))
	fmt.Fprintf(&b, "\t%s TEXT NOT NULL,\n", pq.QuoteIdentifier(colRowHash))
	fmt.Fprintf(&b, "\tPRIMARY KEY (%s)\n);", quotedJoin(ts.PrimaryKey))
	return b.String()
}

const createSyncState = `
CREATE TABLE IF NOT EXISTS sync_state (
	id SMALLINT PRIMARY KEY CHECK (id = 1),
	state JSONB NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
);`

func migrationStatements() []string {
	stmts := make([]string, 0, len(records.Declared())+1)
	for _, ts := range records.Declared() {
		stmts = append(stmts, buildCreateTable(ts))
	}
	stmts = append(stmts, createSyncState)
	return stmts
}

// buildUpsert renders the conflict-target upsert of one delivered table.
// The update arm fires only when the row hash changed.
func buildUpsert(ts records.TableSchema) string {
	cols := make([]string, 0, len(ts.Columns)+2)
	for _, col := range ts.Columns {
		cols = append(cols, col.Name)
	}
	cols = append(cols, colSyncedAt, colRowHash)

	quoted := make([]string, 0, len(cols))
	placeholders := make([]string, 0, len(cols))
	for i, c := range cols {
		quoted = append(quoted, pq.QuoteIdentifier(c))
		placeholders = append(placeholders, fmt.Sprintf("$%d", i+1))
	}

	pk := make(map[string]bool, len(ts.PrimaryKey))
	for _, k := range ts.PrimaryKey {
		pk[k] = true
	}
	sets := make([]string, 0, len(cols))
	for _, c := range cols {
		if pk[c] {
			continue
		}
		q := pq.QuoteIdentifier(c)
		sets = append(sets, fmt.Sprintf("%s = EXCLUDED.%s", q, q))
	}

	table := pq.QuoteIdentifier(ts.Name)
	return fmt.Sprintf(
		"INSERT INTO %s (%s)\nVALUES (%s)\nON CONFLICT (%s) DO UPDATE SET %s\nWHERE %s.%s IS DISTINCT FROM EXCLUDED.%s;",
		table,
		strings.Join(quoted, ", "),
		strings.Join(placeholders, ", "),
		quotedJoin(ts.PrimaryKey),
		strings.Join(sets, ", "),
		table, pq.QuoteIdentifier(colRowHash), pq.QuoteIdentifier(colRowHash),
	)
}

// upsertArgs binds record values in declared column order, followed by the
// system columns. Absent columns bind as NULL.
func upsertArgs(ts records.TableSchema, rec records.Record, syncedAt time.Time, hash string) []any {
	args := make([]any, 0, len(ts.Columns)+2)
	for _, col := range ts.Columns {
		args = append(args, rec.Data[col.Name])
	}
	args = append(args, syncedAt, hash)
	return args
}

// rowHash hashes the business columns through canonical JSON so logically
// identical records always produce the same hash regardless of map order
// or pointer wrapping.
func rowHash(rec records.Record) (string, error) {
	payload, err := json.Marshal(rec.Data)
	if err != nil {
		return "", err
	}
	canonical, err := jsoncanonicalizer.Transform(payload)
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(canonical)
	return hex.EncodeToString(sum[:]), nil
}

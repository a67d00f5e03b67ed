// Package postgres implements the warehouse destination over PostgreSQL.
// Records land in one table per declared schema with two system columns:
// _synced_at (write time) and _row_hash (canonical JSON hash of the
// business columns). Upserts skip the update arm when the row hash is
// unchanged, so replaying a full sync leaves settled rows untouched.
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgconn"
	"github.com/jackc/pgtype"
	_ "github.com/jackc/pgx/v4/stdlib"
	json "github.com/json-iterator/go"
	"github.com/rs/zerolog/log"

	"github.com/syncflow/syncflow/internal/connector/destination"
	"github.com/syncflow/syncflow/internal/connector/records"
	"github.com/syncflow/syncflow/internal/connector/state"
)

// pgUndefinedTable is the SQLSTATE for a query against a missing table.
const pgUndefinedTable = "42P01"

// DB is a PostgreSQL-backed destination.
type DB struct {
	db      *sql.DB
	upserts map[string]string
}

var _ destination.Destination = (*DB)(nil)

// New opens a connection pool for the given DSN and verifies it with a
// ping. The schema is not touched; call Migrate before the first sync.
func New(ctx context.Context, dsn string) (*DB, error) {
	sqlDB, err := sql.Open("pgx", dsn)
	if err != nil {
		log.Ctx(ctx).Error().Err(err).Msg("failed to open db")
		return nil, destination.ErrDestination.MsgErr("unable to open warehouse", err)
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		log.Ctx(ctx).Error().Err(err).Msg("failed to ping db")
		sqlDB.Close()
		return nil, destination.ErrDestination.MsgErr("unable to reach warehouse", err)
	}

	upserts := make(map[string]string)
	for _, ts := range records.Declared() {
		upserts[ts.Name] = buildUpsert(ts)
	}
	return &DB{db: sqlDB, upserts: upserts}, nil
}

// Close releases the connection pool.
func (d *DB) Close() error {
	return d.db.Close()
}

// Pool exposes the underlying pool for read-side consumers such as the
// governance engine.
func (d *DB) Pool() *sql.DB {
	return d.db
}

// Ping reports whether the warehouse is reachable.
func (d *DB) Ping(ctx context.Context) error {
	return d.db.PingContext(ctx)
}

// Migrate creates the delivered tables and the sync_state table if they do
// not exist. DDL runs on a dedicated connection with lock and statement
// timeouts set so a stuck migration cannot wedge the pool.
func (d *DB) Migrate(ctx context.Context) error {
	conn, err := d.db.Conn(ctx)
	if err != nil {
		return destination.ErrDestination.MsgErr("unable to obtain connection", err)
	}
	defer conn.Close()

	if _, err := conn.ExecContext(ctx, "SET lock_timeout = '5s'"); err != nil {
		log.Ctx(ctx).Error().Err(err).Msg("failed to set lock timeout")
		return destination.ErrDestination.MsgErr("unable to set lock timeout", err)
	}
	if _, err := conn.ExecContext(ctx, "SET statement_timeout = '30s'"); err != nil {
		log.Ctx(ctx).Error().Err(err).Msg("failed to set statement timeout")
		return destination.ErrDestination.MsgErr("unable to set statement timeout", err)
	}

	tx, err := conn.BeginTx(ctx, nil)
	if err != nil {
		return destination.ErrDestination.MsgErr("unable to begin migration", err)
	}
	defer func() {
		if err != nil {
			if rollbackErr := tx.Rollback(); rollbackErr != nil && rollbackErr != sql.ErrTxDone {
				log.Ctx(ctx).Error().Err(rollbackErr).Msg("failed to rollback migration")
			}
		}
	}()

	for _, stmt := range migrationStatements() {
		if _, err = tx.ExecContext(ctx, stmt); err != nil {
			return destination.ErrDestination.MsgErr("migration statement failed", err)
		}
	}
	if err = tx.Commit(); err != nil {
		return destination.ErrDestination.MsgErr("unable to commit migration", err)
	}
	log.Ctx(ctx).Info().Int("tables", len(records.Declared())).Msg("warehouse schema ready")
	return nil
}

// Upsert writes one record. Rows whose business columns are unchanged are
// left alone, which keeps full-walk replays from churning dead tuples.
func (d *DB) Upsert(ctx context.Context, rec records.Record) error {
	ts, ok := records.SchemaFor(rec.Table)
	if !ok {
		return destination.ErrUnknownTable.Msg(fmt.Sprintf("unknown table %q", rec.Table))
	}
	hash, err := rowHash(rec)
	if err != nil {
		return destination.ErrWrite.MsgErr(fmt.Sprintf("unable to hash record for %q", rec.Table), err)
	}
	args := upsertArgs(ts, rec, time.Now().UTC(), hash)
	if _, err := d.db.ExecContext(ctx, d.upserts[rec.Table], args...); err != nil {
		return wrapWriteError(err, rec.Table)
	}
	return nil
}

// Checkpoint stores the full state mapping in the sync_state singleton row.
func (d *DB) Checkpoint(ctx context.Context, st state.State) error {
	var js pgtype.JSONB
	if err := js.Set(st.ToMap()); err != nil {
		return destination.ErrCheckpoint.MsgErr("unable to encode state", err)
	}
	query := `
		INSERT INTO sync_state (id, state, updated_at)
		VALUES (1, $1, now())
		ON CONFLICT (id) DO UPDATE SET state = EXCLUDED.state, updated_at = now();
	`
	if _, err := d.db.ExecContext(ctx, query, js); err != nil {
		return destination.ErrCheckpoint.MsgErr("unable to write checkpoint", err)
	}
	return nil
}

// LoadState restores the last checkpointed state. A warehouse without a
// checkpoint yields the default state so a first run starts clean.
func (d *DB) LoadState(ctx context.Context) (state.State, error) {
	var js pgtype.JSONB
	err := d.db.QueryRowContext(ctx, `SELECT state FROM sync_state WHERE id = 1`).Scan(&js)
	if err == sql.ErrNoRows {
		return state.Default(), nil
	}
	if err != nil {
		return state.Default(), destination.ErrDestination.MsgErr("unable to load state", err)
	}
	if js.Status != pgtype.Present {
		return state.Default(), nil
	}
	var m map[string]any
	if err := json.Unmarshal(js.Bytes, &m); err != nil {
		return state.Default(), destination.ErrDestination.MsgErr("unable to decode state", err)
	}
	return state.FromMap(m), nil
}

func wrapWriteError(err error, table string) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		if pgErr.Code == pgUndefinedTable {
			return destination.ErrWrite.MsgErr(fmt.Sprintf("table %q does not exist, run migration first", table), err)
		}
		return destination.ErrWrite.MsgErr(fmt.Sprintf("upsert into %q failed: %s", table, pgErr.Message), err)
	}
	return destination.ErrWrite.MsgErr(fmt.Sprintf("upsert into %q failed", table), err)
}

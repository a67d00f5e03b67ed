package destination

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/syncflow/syncflow/internal/connector/records"
	"github.com/syncflow/syncflow/internal/connector/state"
)

func TestRecorderUpsert(t *testing.T) {
	ctx := context.Background()
	rec := NewRecorder()

	first := records.Record{Table: records.TableCatalogs, Data: map[string]any{"catalog_name": "main", "owner": "ops"}}
	require.NoError(t, rec.Upsert(ctx, first))

	// same key replaces, different key adds
	second := records.Record{Table: records.TableCatalogs, Data: map[string]any{"catalog_name": "main", "owner": "data-eng"}}
	require.NoError(t, rec.Upsert(ctx, second))
	third := records.Record{Table: records.TableCatalogs, Data: map[string]any{"catalog_name": "dev"}}
	require.NoError(t, rec.Upsert(ctx, third))

	rows := rec.Rows(records.TableCatalogs)
	require.Len(t, rows, 2)
	assert.Equal(t, "data-eng", rows["main"].Data["owner"])

	ops := rec.Ops()
	require.Len(t, ops, 3)
	assert.Equal(t, OpUpsert, ops[0].Kind)
}

func TestRecorderCompositeKey(t *testing.T) {
	ctx := context.Background()
	rec := NewRecorder()

	colA := records.Record{Table: records.TableColumns, Data: map[string]any{"table_full_name": "main.sales.orders", "column_name": "id", "position": 0}}
	colB := records.Record{Table: records.TableColumns, Data: map[string]any{"table_full_name": "main.sales.orders", "column_name": "total", "position": 1}}
	require.NoError(t, rec.Upsert(ctx, colA))
	require.NoError(t, rec.Upsert(ctx, colB))

	assert.Len(t, rec.Rows(records.TableColumns), 2, "columns of one table differ in the second key part")
}

func TestRecorderUnknownTable(t *testing.T) {
	rec := NewRecorder()
	err := rec.Upsert(context.Background(), records.Record{Table: "bogus"})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnknownTable)
}

func TestRecorderCheckpoints(t *testing.T) {
	ctx := context.Background()
	rec := NewRecorder()

	_, ok := rec.LastCheckpoint()
	assert.False(t, ok)

	require.NoError(t, rec.Checkpoint(ctx, state.State{LastSyncTime: "2024-03-01T10:00:00Z", CatalogsSynced: 1}))
	require.NoError(t, rec.Checkpoint(ctx, state.State{LastSyncTime: "2024-03-01T10:00:00Z", CatalogsSynced: 2}))

	cps := rec.Checkpoints()
	require.Len(t, cps, 2)
	last, ok := rec.LastCheckpoint()
	require.True(t, ok)
	assert.Equal(t, 2, last.CatalogsSynced)
}

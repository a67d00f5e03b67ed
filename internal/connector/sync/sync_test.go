package sync

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syncflow/syncflow/internal/connector/destination"
	"github.com/syncflow/syncflow/internal/connector/records"
	"github.com/syncflow/syncflow/internal/connector/state"
	"github.com/syncflow/syncflow/internal/connector/unitycatalog"
)

const apiBase = "/api/2.1/unity-catalog"

func writeJSON(w http.ResponseWriter, body string) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(body))
}

// tableDetailJSON renders a detail payload with two columns, the second one
// without a position so the mapper has to fall back to the list index.
func tableDetailJSON(name string) string {
	return fmt.Sprintf(`{
		"name": %q,
		"table_type": "MANAGED",
		"data_source_format": "DELTA",
		"storage_location": "s3://lake/%s",
		"owner": "root",
		"created_at": 1700000000000,
		"updated_at": 1700000000000,
		"columns": [
			{"name": "id", "position": 0, "type_text": "bigint", "type_name": "LONG", "nullable": false},
			{"name": "payload", "type_text": "string", "type_name": "STRING"}
		]
	}`, name, name)
}

// singleCatalogServer serves one catalog with one schema, the given tables,
// and one volume. failDetail forces a status for a table's detail call;
// volumeStatus forces a status for the volume listing (0 serves the volume).
func singleCatalogServer(t *testing.T, tables []string, failDetail map[string]int, volumeStatus int) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc(apiBase+"/catalogs", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, `{"catalogs": [{"name": "main", "owner": "root", "created_at": 1700000000000, "updated_at": 1700000000000}]}`)
	})
	mux.HandleFunc(apiBase+"/schemas", func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "main", r.URL.Query().Get("catalog_name"))
		writeJSON(w, `{"schemas": [{"name": "sales", "comment": "order data", "created_at": 1700000000000}]}`)
	})
	mux.HandleFunc(apiBase+"/tables", func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "main", r.URL.Query().Get("catalog_name"))
		require.Equal(t, "sales", r.URL.Query().Get("schema_name"))
		stubs := make([]string, 0, len(tables))
		for _, name := range tables {
			stubs = append(stubs, fmt.Sprintf(`{"name": %q}`, name))
		}
		writeJSON(w, `{"tables": [`+strings.Join(stubs, ",")+`]}`)
	})
	mux.HandleFunc(apiBase+"/tables/", func(w http.ResponseWriter, r *http.Request) {
		fullName := strings.TrimPrefix(r.URL.Path, apiBase+"/tables/")
		name := fullName[strings.LastIndex(fullName, ".")+1:]
		if status, ok := failDetail[name]; ok {
			w.WriteHeader(status)
			writeJSON(w, `{"error_code": "INTERNAL_ERROR", "message": "metadata fetch failed"}`)
			return
		}
		writeJSON(w, tableDetailJSON(name))
	})
	mux.HandleFunc(apiBase+"/volumes", func(w http.ResponseWriter, r *http.Request) {
		if volumeStatus != 0 {
			w.WriteHeader(volumeStatus)
			if volumeStatus == http.StatusNotFound {
				writeJSON(w, `{"error_code": "ENDPOINT_NOT_FOUND", "message": "no volumes here"}`)
			}
			return
		}
		writeJSON(w, `{"volumes": [{"name": "exports", "volume_type": "EXTERNAL", "owner": "root", "created_at": 1700000000000, "updated_at": 1700000000000}]}`)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func newTestSource(srv *httptest.Server) *unitycatalog.Client {
	return unitycatalog.New(srv.URL, "test-token",
		unitycatalog.WithRetryAttempts(1),
		unitycatalog.WithRetryDelay(time.Millisecond))
}

func TestRunDeliversHierarchy(t *testing.T) {
	srv := singleCatalogServer(t, []string{"orders"}, nil, 0)
	rec := destination.NewRecorder()
	syncer := New(newTestSource(srv), rec, Options{})

	rep, err := syncer.Run(context.Background(), state.Default())
	require.NoError(t, err)

	assert.Equal(t, 1, rep.Catalogs)
	assert.Equal(t, 1, rep.Schemas)
	assert.Equal(t, 1, rep.Tables)
	assert.Equal(t, 2, rep.Columns)
	assert.Equal(t, 1, rep.Volumes)
	assert.Equal(t, 6, rep.Upserts)
	assert.Equal(t, 1, rep.Checkpoints)
	assert.Empty(t, rep.TableFailures)

	ops := rec.Ops()
	require.Len(t, ops, 7)
	wantTables := []string{
		records.TableCatalogs,
		records.TableSchemas,
		records.TableTables,
		records.TableColumns,
		records.TableColumns,
		records.TableVolumes,
	}
	for i, want := range wantTables {
		assert.Equal(t, destination.OpUpsert, ops[i].Kind)
		assert.Equal(t, want, ops[i].Record.Table)
	}
	assert.Equal(t, destination.OpCheckpoint, ops[6].Kind)
	assert.Equal(t, 1, ops[6].State.CatalogsSynced)

	// checkpointed time is the run start, rendered in the delivered format
	ts, perr := time.Parse("2006-01-02T15:04:05Z", ops[6].State.LastSyncTime)
	require.NoError(t, perr)
	assert.WithinDuration(t, rep.StartedAt, ts, time.Second)

	// the second column carried no position, so it takes its list index
	assert.Equal(t, 1, ops[4].Record.Data["position"])
	assert.Equal(t, "main.sales.orders", ops[4].Record.Data["table_full_name"])

	assert.Len(t, rec.Rows(records.TableCatalogs), 1)
	assert.Len(t, rec.Rows(records.TableSchemas), 1)
	assert.Len(t, rec.Rows(records.TableTables), 1)
	assert.Len(t, rec.Rows(records.TableColumns), 2)
	assert.Len(t, rec.Rows(records.TableVolumes), 1)
}

func TestRunIsIdempotent(t *testing.T) {
	srv := singleCatalogServer(t, []string{"orders"}, nil, 0)
	source := newTestSource(srv)

	once := destination.NewRecorder()
	_, err := New(source, once, Options{}).Run(context.Background(), state.Default())
	require.NoError(t, err)

	twice := destination.NewRecorder()
	syncer := New(source, twice, Options{})
	_, err = syncer.Run(context.Background(), state.Default())
	require.NoError(t, err)
	st, ok := twice.LastCheckpoint()
	require.True(t, ok)
	_, err = syncer.Run(context.Background(), st)
	require.NoError(t, err)

	for _, table := range []string{
		records.TableCatalogs, records.TableSchemas, records.TableTables,
		records.TableColumns, records.TableVolumes,
	} {
		assert.Equal(t, once.Rows(table), twice.Rows(table), "table %s", table)
	}
	assert.Len(t, twice.Checkpoints(), 2)
}

func TestRunSkipsFailingTable(t *testing.T) {
	srv := singleCatalogServer(t, []string{"orders", "refunds", "shipments"},
		map[string]int{"refunds": http.StatusInternalServerError}, 0)
	rec := destination.NewRecorder()

	rep, err := New(newTestSource(srv), rec, Options{}).Run(context.Background(), state.Default())
	require.NoError(t, err)

	assert.Equal(t, 2, rep.Tables)
	assert.Equal(t, 4, rep.Columns)
	require.Len(t, rep.TableFailures, 1)
	assert.Equal(t, "main.sales.refunds", rep.TableFailures[0].Table)
	assert.NotEmpty(t, rep.TableFailures[0].Reason)

	rows := rec.Rows(records.TableTables)
	assert.Contains(t, rows, "main.sales.orders")
	assert.Contains(t, rows, "main.sales.shipments")
	assert.NotContains(t, rows, "main.sales.refunds")

	// the run still checkpointed the catalog
	st, ok := rec.LastCheckpoint()
	require.True(t, ok)
	assert.Equal(t, 1, st.CatalogsSynced)
}

func TestRunCatalogFilter(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc(apiBase+"/catalogs", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, `{"catalogs": [{"name": "alpha"}, {"name": "beta"}, {"name": "gamma"}]}`)
	})
	mux.HandleFunc(apiBase+"/schemas", func(w http.ResponseWriter, r *http.Request) {
		catalog := r.URL.Query().Get("catalog_name")
		assert.NotEqual(t, "beta", catalog, "filtered catalog must not be walked")
		writeJSON(w, `{"schemas": []}`)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	rec := destination.NewRecorder()
	opts := Options{AllowedCatalogs: []string{"alpha", "gamma"}}
	rep, err := New(newTestSource(srv), rec, opts).Run(context.Background(), state.Default())
	require.NoError(t, err)

	assert.Equal(t, 2, rep.Catalogs)
	assert.Equal(t, 2, rep.Checkpoints)

	rows := rec.Rows(records.TableCatalogs)
	assert.Contains(t, rows, "alpha")
	assert.Contains(t, rows, "gamma")
	assert.NotContains(t, rows, "beta")

	st, ok := rec.LastCheckpoint()
	require.True(t, ok)
	assert.Equal(t, 2, st.CatalogsSynced)
}

func TestRunVolumesBestEffort(t *testing.T) {
	t.Run("EndpointMissing", func(t *testing.T) {
		srv := singleCatalogServer(t, []string{"orders"}, nil, http.StatusNotFound)
		rec := destination.NewRecorder()

		rep, err := New(newTestSource(srv), rec, Options{}).Run(context.Background(), state.Default())
		require.NoError(t, err)
		assert.Equal(t, 0, rep.Volumes)
		assert.Empty(t, rec.Rows(records.TableVolumes))
		assert.Equal(t, 1, rep.Checkpoints)
	})

	t.Run("TransientFailure", func(t *testing.T) {
		srv := singleCatalogServer(t, []string{"orders"}, nil, http.StatusServiceUnavailable)
		rec := destination.NewRecorder()

		rep, err := New(newTestSource(srv), rec, Options{}).Run(context.Background(), state.Default())
		require.NoError(t, err)
		assert.Equal(t, 0, rep.Volumes)
		assert.Equal(t, 1, rep.Tables, "tables still sync when volumes fail")
		assert.Equal(t, 1, rep.Checkpoints)
	})
}

func TestRunAbortsOnListingFailure(t *testing.T) {
	t.Run("Catalogs", func(t *testing.T) {
		mux := http.NewServeMux()
		mux.HandleFunc(apiBase+"/catalogs", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		})
		srv := httptest.NewServer(mux)
		t.Cleanup(srv.Close)

		rec := destination.NewRecorder()
		rep, err := New(newTestSource(srv), rec, Options{}).Run(context.Background(), state.Default())
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrListCatalogs))
		assert.Equal(t, 0, rep.Upserts)
		assert.Empty(t, rec.Checkpoints())
	})

	t.Run("Schemas", func(t *testing.T) {
		mux := http.NewServeMux()
		mux.HandleFunc(apiBase+"/catalogs", func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, `{"catalogs": [{"name": "main"}]}`)
		})
		mux.HandleFunc(apiBase+"/schemas", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		})
		srv := httptest.NewServer(mux)
		t.Cleanup(srv.Close)

		rec := destination.NewRecorder()
		rep, err := New(newTestSource(srv), rec, Options{}).Run(context.Background(), state.Default())
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrListSchemas))
		assert.Equal(t, 1, rep.Catalogs, "the catalog upsert happened before the failure")
		assert.Empty(t, rec.Checkpoints(), "no checkpoint for an aborted catalog")
	})
}

func TestRunBoundedConcurrency(t *testing.T) {
	tables := make([]string, 0, 8)
	for i := 0; i < 8; i++ {
		tables = append(tables, fmt.Sprintf("t%02d", i))
	}
	srv := singleCatalogServer(t, tables, map[string]int{"t03": http.StatusInternalServerError}, 0)
	rec := destination.NewRecorder()

	rep, err := New(newTestSource(srv), rec, Options{TableConcurrency: 4}).Run(context.Background(), state.Default())
	require.NoError(t, err)

	assert.Equal(t, 7, rep.Tables)
	assert.Equal(t, 14, rep.Columns)
	require.Len(t, rep.TableFailures, 1)
	assert.Equal(t, "main.sales.t03", rep.TableFailures[0].Table)

	// each table's upsert precedes its columns even when workers interleave
	ops := rec.Ops()
	tableSeen := make(map[string]bool)
	for _, op := range ops {
		switch {
		case op.Kind == destination.OpUpsert && op.Record.Table == records.TableTables:
			tableSeen[op.Record.Data["full_name"].(string)] = true
		case op.Kind == destination.OpUpsert && op.Record.Table == records.TableColumns:
			assert.True(t, tableSeen[op.Record.Data["table_full_name"].(string)],
				"column delivered before its table")
		}
	}

	// checkpoint is the final operation, after every worker drained
	assert.Equal(t, destination.OpCheckpoint, ops[len(ops)-1].Kind)
	st, ok := rec.LastCheckpoint()
	require.True(t, ok)
	assert.Equal(t, 1, st.CatalogsSynced)
}

package state

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFromMap(t *testing.T) {
	t.Run("NilMap", func(t *testing.T) {
		st := FromMap(nil)
		assert.Equal(t, DefaultLastSyncTime, st.LastSyncTime)
		assert.Equal(t, 0, st.CatalogsSynced)
	})

	t.Run("EmptyMap", func(t *testing.T) {
		st := FromMap(map[string]any{})
		assert.Equal(t, DefaultLastSyncTime, st.LastSyncTime)
		assert.Equal(t, 0, st.CatalogsSynced)
	})

	t.Run("FullMap", func(t *testing.T) {
		st := FromMap(map[string]any{
			"last_sync_time":  "2024-03-01T10:00:00Z",
			"catalogs_synced": 3,
		})
		assert.Equal(t, "2024-03-01T10:00:00Z", st.LastSyncTime)
		assert.Equal(t, 3, st.CatalogsSynced)
	})

	t.Run("JSONDecodedNumbers", func(t *testing.T) {
		// JSON decoding yields float64 for numbers
		st := FromMap(map[string]any{
			"last_sync_time":  "2024-03-01T10:00:00Z",
			"catalogs_synced": float64(7),
		})
		assert.Equal(t, 7, st.CatalogsSynced)
	})

	t.Run("MalformedValues", func(t *testing.T) {
		st := FromMap(map[string]any{
			"last_sync_time":  42,
			"catalogs_synced": "three",
		})
		assert.Equal(t, DefaultLastSyncTime, st.LastSyncTime)
		assert.Equal(t, 0, st.CatalogsSynced)
	})
}

func TestRoundTrip(t *testing.T) {
	st := State{LastSyncTime: "2024-06-15T08:30:00Z", CatalogsSynced: 5}
	got := FromMap(st.ToMap())
	assert.Equal(t, st, got)
}

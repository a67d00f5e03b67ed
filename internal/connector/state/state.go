// Package state holds the checkpoint state carried across sync runs. The
// state travels as a string-keyed mapping on the wire so prior checkpoints
// written by other connector versions remain readable.
package state

// DefaultLastSyncTime is reported when no checkpoint exists yet.
const DefaultLastSyncTime = "1990-01-01T00:00:00Z"

const (
	keyLastSyncTime   = "last_sync_time"
	keyCatalogsSynced = "catalogs_synced"
)

// State is the checkpoint written after each completed catalog. LastSyncTime
// is advisory only; every run re-walks the full hierarchy.
type State struct {
	LastSyncTime   string
	CatalogsSynced int
}

// Default returns the state assumed for a first sync or a full re-sync.
func Default() State {
	return State{
		LastSyncTime:   DefaultLastSyncTime,
		CatalogsSynced: 0,
	}
}

// FromMap restores a State from the wire mapping. Missing or malformed keys
// fall back to defaults rather than failing the run. Numeric values may
// arrive as float64 after a JSON round trip.
func FromMap(m map[string]any) State {
	st := Default()
	if m == nil {
		return st
	}
	if v, ok := m[keyLastSyncTime].(string); ok && v != "" {
		st.LastSyncTime = v
	}
	switch v := m[keyCatalogsSynced].(type) {
	case int:
		st.CatalogsSynced = v
	case int64:
		st.CatalogsSynced = int(v)
	case float64:
		st.CatalogsSynced = int(v)
	}
	return st
}

// ToMap renders the wire mapping for checkpointing.
func (s State) ToMap() map[string]any {
	return map[string]any{
		keyLastSyncTime:   s.LastSyncTime,
		keyCatalogsSynced: s.CatalogsSynced,
	}
}

package sync

import (
	gosync "sync"
	"time"

	"github.com/syncflow/syncflow/internal/connector/records"
)

// TableFailure records one table the walk skipped and why.
type TableFailure struct {
	Table  string `json:"table"`
	Reason string `json:"reason"`
}

// Report summarizes one sync run: entity counts, delivered operations, and
// the tables that were skipped. A report returned together with an error
// reflects the work done before the failure.
type Report struct {
	StartedAt     time.Time      `json:"started_at"`
	FinishedAt    time.Time      `json:"finished_at"`
	Catalogs      int            `json:"catalogs"`
	Schemas       int            `json:"schemas"`
	Tables        int            `json:"tables"`
	Columns       int            `json:"columns"`
	Volumes       int            `json:"volumes"`
	Upserts       int            `json:"upserts"`
	Checkpoints   int            `json:"checkpoints"`
	TableFailures []TableFailure `json:"table_failures,omitempty"`

	mu gosync.Mutex
}

// Duration returns the wall-clock span of the run.
func (r *Report) Duration() time.Duration {
	return r.FinishedAt.Sub(r.StartedAt)
}

func (r *Report) countUpsert(table string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Upserts++
	switch table {
	case records.TableCatalogs:
		r.Catalogs++
	case records.TableSchemas:
		r.Schemas++
	case records.TableTables:
		r.Tables++
	case records.TableColumns:
		r.Columns++
	case records.TableVolumes:
		r.Volumes++
	}
}

func (r *Report) countCheckpoint() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Checkpoints++
}

func (r *Report) addFailure(table, reason string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.TableFailures = append(r.TableFailures, TableFailure{Table: table, Reason: reason})
}

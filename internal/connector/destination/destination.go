// Package destination defines the delivery surface the sync writes to. A
// destination receives normalized records as idempotent upserts keyed by
// the declared primary keys, and durable checkpoints of the sync state.
package destination

import (
	"context"
	"net/http"

	"github.com/syncflow/syncflow/internal/common/apperrors"
	"github.com/syncflow/syncflow/internal/connector/records"
	"github.com/syncflow/syncflow/internal/connector/state"
)

var (
	ErrDestination  apperrors.Error = apperrors.New("destination error").SetStatusCode(http.StatusInternalServerError)
	ErrUnknownTable apperrors.Error = ErrDestination.New("unknown table")
	ErrWrite        apperrors.Error = ErrDestination.New("write failed")
	ErrCheckpoint   apperrors.Error = ErrDestination.New("checkpoint failed")
)

// Destination receives records and checkpoints. Upsert must be idempotent:
// replaying the same record set leaves the visible destination state
// unchanged.
type Destination interface {
	Upsert(ctx context.Context, rec records.Record) error
	Checkpoint(ctx context.Context, st state.State) error
}

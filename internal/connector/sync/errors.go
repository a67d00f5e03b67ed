package sync

import (
	"net/http"

	"github.com/syncflow/syncflow/internal/common/apperrors"
)

var (
	// ErrSyncFailed is the root of sync run errors.
	ErrSyncFailed apperrors.Error = apperrors.New("sync run failed").SetStatusCode(http.StatusInternalServerError)
	// ErrListCatalogs aborts the run; without the catalog listing there is
	// nothing to walk.
	ErrListCatalogs apperrors.Error = ErrSyncFailed.New("unable to list catalogs")
	// ErrListSchemas aborts the current run.
	ErrListSchemas apperrors.Error = ErrSyncFailed.New("unable to list schemas")
	// ErrListTables aborts the current run.
	ErrListTables apperrors.Error = ErrSyncFailed.New("unable to list tables")
	// ErrCheckpointFailed aborts the run; progress past a failed checkpoint
	// is not durable.
	ErrCheckpointFailed apperrors.Error = ErrSyncFailed.New("unable to checkpoint sync state")
	// ErrCancelled reports a run interrupted by context cancellation.
	ErrCancelled apperrors.Error = ErrSyncFailed.New("sync cancelled")
)

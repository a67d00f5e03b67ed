package governance

import (
	"net/http"

	"github.com/syncflow/syncflow/internal/common/apperrors"
)

var (
	// ErrGovernance is the base of all governance engine failures.
	ErrGovernance apperrors.Error = apperrors.New("governance query failed").SetStatusCode(http.StatusInternalServerError)

	// ErrInvalidTableName rejects names that are not catalog.schema.table.
	ErrInvalidTableName apperrors.Error = ErrGovernance.New("invalid table name format, use catalog.schema.table").SetStatusCode(http.StatusBadRequest)

	// ErrTableNotFound reports a table absent from the synced metadata.
	ErrTableNotFound apperrors.Error = ErrGovernance.New("table not found").SetStatusCode(http.StatusNotFound)
)

package incidents

import "errors"

// Sentinel errors returned by the incidents service and repository.
var (
	ErrIncidentNotFound = errors.New("incident not found")
	ErrMissingField     = errors.New("missing required field")
	ErrInvalidSeverity  = errors.New("invalid severity")
	ErrInvalidStatus    = errors.New("invalid status")
)

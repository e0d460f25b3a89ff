package incidents

import (
	"context"
	"time"

	"github.com/barkbase/opsdash/internal/domain"
)

// Repository defines the interface for incident storage.
type Repository interface {
	// CreateIncident inserts the incident and its component tags in one
	// transaction. The id and timestamps are assigned by the store.
	CreateIncident(ctx context.Context, incident *domain.Incident) error

	// GetIncident returns the incident with its component list.
	GetIncident(ctx context.Context, id string) (*domain.Incident, error)

	// ListIncidents returns a page of incidents ordered by created_at
	// descending, plus the total count under the same filter.
	ListIncidents(ctx context.Context, filter ListFilter) ([]*domain.Incident, int, error)

	// UpdateIncident applies a partial update. updated_at is refreshed
	// whenever any field changes; an empty patch reads the incident back
	// untouched. Returns the updated incident.
	UpdateIncident(ctx context.Context, id string, patch UpdatePatch) (*domain.Incident, error)

	CreateIncidentUpdate(ctx context.Context, update *domain.IncidentUpdate) error
	ListIncidentUpdates(ctx context.Context, incidentID string) ([]*domain.IncidentUpdate, error)
}

// ListFilter holds filter options for listing incidents. The same
// predicate drives both the page query and the total count.
type ListFilter struct {
	Status *domain.IncidentStatus
	Limit  int
	Offset int
}

// UpdatePatch holds the partially-supplied fields of an incident update.
// Nil means "leave unchanged".
type UpdatePatch struct {
	Status          *domain.IncidentStatus
	CustomerMessage *string
	InternalNotes   *string
	ResolvedAt      *time.Time
}

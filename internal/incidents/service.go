package incidents

import (
	"context"
	"fmt"
	"time"

	"github.com/barkbase/opsdash/internal/audit"
	"github.com/barkbase/opsdash/internal/domain"
)

// Service implements incident business logic and the audit policy
// wrapping every mutation.
type Service struct {
	repo  Repository
	audit audit.Recorder
}

// NewService creates a new incident service.
func NewService(repo Repository, recorder audit.Recorder) *Service {
	return &Service{repo: repo, audit: recorder}
}

// CreateIncidentInput holds data for creating an incident.
type CreateIncidentInput struct {
	Title           string
	Severity        domain.Severity
	Status          domain.IncidentStatus
	CustomerMessage string
	InternalNotes   string
	Components      []string
}

// UpdateIncidentInput holds the optional fields of a partial update.
type UpdateIncidentInput struct {
	Status          *domain.IncidentStatus
	CustomerMessage *string
	InternalNotes   *string
	ResolvedAt      *time.Time
}

// AddUpdateInput holds data for appending a timeline update.
type AddUpdateInput struct {
	IncidentID string
	Message    string
	Status     domain.IncidentStatus
}

// Create validates input and creates an incident attributed to the
// acting admin. Component duplicates in the input are stored as given.
func (s *Service) Create(ctx context.Context, input CreateIncidentInput, admin *domain.AdminUser) (*domain.Incident, error) {
	for field, value := range map[string]string{
		"title":            input.Title,
		"severity":         string(input.Severity),
		"status":           string(input.Status),
		"customer_message": input.CustomerMessage,
	} {
		if value == "" {
			return nil, fmt.Errorf("%w: %s", ErrMissingField, field)
		}
	}

	if !input.Severity.IsValid() {
		return nil, fmt.Errorf("%w: %s", ErrInvalidSeverity, input.Severity)
	}
	if !input.Status.IsValid() {
		return nil, fmt.Errorf("%w: %s", ErrInvalidStatus, input.Status)
	}

	components := input.Components
	if components == nil {
		components = make([]string, 0)
	}

	incident := &domain.Incident{
		Title:           input.Title,
		CustomerMessage: input.CustomerMessage,
		InternalNotes:   input.InternalNotes,
		Severity:        input.Severity,
		Status:          input.Status,
		Components:      components,
		CreatedByID:     admin.ID,
		CreatedByEmail:  admin.Email,
	}

	if err := s.repo.CreateIncident(ctx, incident); err != nil {
		return nil, fmt.Errorf("create incident: %w", err)
	}

	s.audit.Record(ctx, admin, "incident.create", "incident", incident.ID, map[string]any{
		"title":      incident.Title,
		"severity":   incident.Severity,
		"status":     incident.Status,
		"components": incident.Components,
	})

	return incident, nil
}

// Get returns an incident with its full update timeline, most recent
// update first.
func (s *Service) Get(ctx context.Context, id string) (*domain.Incident, []*domain.IncidentUpdate, error) {
	incident, err := s.repo.GetIncident(ctx, id)
	if err != nil {
		return nil, nil, err
	}

	updates, err := s.repo.ListIncidentUpdates(ctx, id)
	if err != nil {
		return nil, nil, fmt.Errorf("list incident updates: %w", err)
	}
	if updates == nil {
		updates = make([]*domain.IncidentUpdate, 0)
	}

	return incident, updates, nil
}

// List returns a page of incidents and the total count under the filter.
func (s *Service) List(ctx context.Context, filter ListFilter) ([]*domain.Incident, int, error) {
	return s.repo.ListIncidents(ctx, filter)
}

// Update applies a partial update to an incident. Marking an incident
// resolved stamps resolved_at with the current time unless the caller
// supplied one or it was already set.
func (s *Service) Update(ctx context.Context, id string, input UpdateIncidentInput, admin *domain.AdminUser) (*domain.Incident, error) {
	if input.Status != nil && !input.Status.IsValid() {
		return nil, fmt.Errorf("%w: %s", ErrInvalidStatus, *input.Status)
	}

	existing, err := s.repo.GetIncident(ctx, id)
	if err != nil {
		return nil, err
	}

	patch := UpdatePatch{
		Status:          input.Status,
		CustomerMessage: input.CustomerMessage,
		InternalNotes:   input.InternalNotes,
		ResolvedAt:      input.ResolvedAt,
	}

	if patch.ResolvedAt == nil && input.Status != nil &&
		*input.Status == domain.IncidentStatusResolved && existing.ResolvedAt == nil {
		now := time.Now().UTC()
		patch.ResolvedAt = &now
	}

	incident, err := s.repo.UpdateIncident(ctx, id, patch)
	if err != nil {
		return nil, err
	}

	s.audit.Record(ctx, admin, "incident.update", "incident", id, auditedUpdateFields(patch))

	return incident, nil
}

// AddUpdate appends an immutable timeline update. The parent incident's
// status field is changed only through Update; the status declared here
// does not propagate to it.
func (s *Service) AddUpdate(ctx context.Context, input AddUpdateInput, admin *domain.AdminUser) (*domain.IncidentUpdate, error) {
	if input.Message == "" {
		return nil, fmt.Errorf("%w: message", ErrMissingField)
	}
	if input.Status == "" {
		return nil, fmt.Errorf("%w: status", ErrMissingField)
	}
	if !input.Status.IsValid() {
		return nil, fmt.Errorf("%w: %s", ErrInvalidStatus, input.Status)
	}

	if _, err := s.repo.GetIncident(ctx, input.IncidentID); err != nil {
		return nil, err
	}

	update := &domain.IncidentUpdate{
		IncidentID:     input.IncidentID,
		Message:        input.Message,
		Status:         input.Status,
		CreatedByID:    admin.ID,
		CreatedByEmail: admin.Email,
	}

	if err := s.repo.CreateIncidentUpdate(ctx, update); err != nil {
		return nil, fmt.Errorf("create incident update: %w", err)
	}

	s.audit.Record(ctx, admin, "incident.add_update", "incident", input.IncidentID, map[string]any{
		"update_id": update.ID,
		"status":    update.Status,
	})

	return update, nil
}

// auditedUpdateFields lists only the fields the patch actually touched.
func auditedUpdateFields(patch UpdatePatch) map[string]any {
	fields := make(map[string]any)
	if patch.Status != nil {
		fields["status"] = *patch.Status
	}
	if patch.CustomerMessage != nil {
		fields["customer_message"] = *patch.CustomerMessage
	}
	if patch.InternalNotes != nil {
		fields["internal_notes_changed"] = true
	}
	if patch.ResolvedAt != nil {
		fields["resolved_at"] = *patch.ResolvedAt
	}
	return fields
}

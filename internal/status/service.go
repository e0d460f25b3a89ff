package status

import (
	"context"
	"fmt"
	"time"

	"github.com/barkbase/opsdash/internal/domain"
)

// Repository is the read-only view of incident storage the aggregator
// needs. The incidents postgres repository satisfies it.
type Repository interface {
	ListActiveIncidents(ctx context.Context) ([]*domain.Incident, error)
	ListComponents(ctx context.Context) ([]domain.SystemComponent, error)
}

// PublicIncident is the externally visible shape of an active incident.
// Internal notes and admin provenance never leave the building.
type PublicIncident struct {
	ID              string                `json:"id"`
	Title           string                `json:"title"`
	Severity        domain.Severity       `json:"severity"`
	Status          domain.IncidentStatus `json:"status"`
	CustomerMessage string                `json:"customer_message"`
	Components      []string              `json:"components"`
	CreatedAt       time.Time             `json:"created_at"`
	UpdatedAt       time.Time             `json:"updated_at"`
}

// Overview is the GET /status payload.
type Overview struct {
	Status     domain.PublicStatus `json:"status"`
	Components []ComponentStatus   `json:"components"`
	Incidents  []PublicIncident    `json:"incidents"`
}

// Service computes public status from a live snapshot on every call.
type Service struct {
	repo Repository
}

// NewService creates a new status service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Overview returns the aggregate status, per-component statuses and the
// public view of active incidents.
func (s *Service) Overview(ctx context.Context) (*Overview, error) {
	active, err := s.repo.ListActiveIncidents(ctx)
	if err != nil {
		return nil, fmt.Errorf("list active incidents: %w", err)
	}

	catalogue, err := s.repo.ListComponents(ctx)
	if err != nil {
		return nil, fmt.Errorf("list components: %w", err)
	}

	public := make([]PublicIncident, 0, len(active))
	for _, incident := range active {
		public = append(public, PublicIncident{
			ID:              incident.ID,
			Title:           incident.Title,
			Severity:        incident.Severity,
			Status:          incident.Status,
			CustomerMessage: incident.CustomerMessage,
			Components:      incident.Components,
			CreatedAt:       incident.CreatedAt,
			UpdatedAt:       incident.UpdatedAt,
		})
	}

	return &Overview{
		Status:     OverallStatus(active),
		Components: ComponentStatuses(catalogue, active),
		Incidents:  public,
	}, nil
}

// Banner returns the single-incident banner.
func (s *Service) Banner(ctx context.Context) (Banner, error) {
	active, err := s.repo.ListActiveIncidents(ctx)
	if err != nil {
		return Banner{}, fmt.Errorf("list active incidents: %w", err)
	}
	return DeriveBanner(active), nil
}

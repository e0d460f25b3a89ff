// Package domain contains the core types shared across the ops console.
package domain

import "time"

// IncidentStatus represents the lifecycle state of an incident.
type IncidentStatus string

// Incident statuses. Resolved is the only terminal value.
const (
	IncidentStatusInvestigating IncidentStatus = "investigating"
	IncidentStatusIdentified    IncidentStatus = "identified"
	IncidentStatusMonitoring    IncidentStatus = "monitoring"
	IncidentStatusResolved      IncidentStatus = "resolved"
)

// IsValid checks if the incident status is valid.
func (s IncidentStatus) IsValid() bool {
	switch s {
	case IncidentStatusInvestigating, IncidentStatusIdentified,
		IncidentStatusMonitoring, IncidentStatusResolved:
		return true
	}
	return false
}

// Severity represents the customer impact level of an incident.
type Severity string

// Severity levels, ordered by impact.
const (
	SeverityDegraded      Severity = "degraded"
	SeverityPartialOutage Severity = "partial_outage"
	SeverityMajorOutage   Severity = "major_outage"
)

// IsValid checks if the severity is valid.
func (s Severity) IsValid() bool {
	return s == SeverityDegraded || s == SeverityPartialOutage || s == SeverityMajorOutage
}

// PublicStatus is the status shown on the public status page, either for
// the system overall or for a single component. It extends Severity with
// the all-clear value.
type PublicStatus string

// Public statuses.
const (
	PublicStatusOperational   PublicStatus = "operational"
	PublicStatusDegraded      PublicStatus = PublicStatus(SeverityDegraded)
	PublicStatusPartialOutage PublicStatus = PublicStatus(SeverityPartialOutage)
	PublicStatusMajorOutage   PublicStatus = PublicStatus(SeverityMajorOutage)
)

// Rank returns the total order used by the status aggregator.
// Every comparison of severities must go through this ranking.
func (s PublicStatus) Rank() int {
	switch s {
	case PublicStatusDegraded:
		return 1
	case PublicStatusPartialOutage:
		return 2
	case PublicStatusMajorOutage:
		return 3
	default:
		return 0
	}
}

// PublicStatus converts a severity into its public status page value.
func (s Severity) PublicStatus() PublicStatus {
	return PublicStatus(s)
}

// Incident represents a status-page incident.
type Incident struct {
	ID              string         `json:"id"`
	Title           string         `json:"title"`
	CustomerMessage string         `json:"customer_message"`
	InternalNotes   string         `json:"internal_notes"`
	Severity        Severity       `json:"severity"`
	Status          IncidentStatus `json:"status"`
	Components      []string       `json:"components"`
	CreatedByID     string         `json:"created_by_id"`
	CreatedByEmail  string         `json:"created_by_email"`
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`
	ResolvedAt      *time.Time     `json:"resolved_at"`
}

// IsActive reports whether the incident still counts toward the public
// aggregate status.
func (i *Incident) IsActive() bool {
	return i.Status != IncidentStatusResolved
}

// IncidentUpdate represents one immutable timeline entry of an incident.
type IncidentUpdate struct {
	ID             string         `json:"id"`
	IncidentID     string         `json:"incident_id"`
	Message        string         `json:"message"`
	Status         IncidentStatus `json:"status"`
	CreatedByID    string         `json:"created_by_id"`
	CreatedByEmail string         `json:"created_by_email"`
	CreatedAt      time.Time      `json:"created_at"`
}

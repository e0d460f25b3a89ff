// Package status derives the public status page from the set of active
// incidents. The derivation is pure: given the same snapshot it always
// produces the same result, so nothing here is stored or invalidated.
package status

import "github.com/barkbase/opsdash/internal/domain"

// StatusPagePath is the relative link exposed by the banner.
const StatusPagePath = "/status"

// ComponentStatus pairs a catalogue component with its derived status.
type ComponentStatus struct {
	Name        string              `json:"name"`
	DisplayName string              `json:"display_name"`
	Status      domain.PublicStatus `json:"status"`
}

// Banner is the single most urgent active incident, or inactive when the
// system is fully operational.
type Banner struct {
	Active   bool                `json:"active"`
	Severity domain.PublicStatus `json:"severity,omitempty"`
	Message  string              `json:"message,omitempty"`
	URL      string              `json:"url,omitempty"`
}

// OverallStatus returns the maximum severity across active incidents, or
// operational when none are active. Resolved incidents must already be
// filtered out of the snapshot.
func OverallStatus(active []*domain.Incident) domain.PublicStatus {
	overall := domain.PublicStatusOperational
	for _, incident := range active {
		if s := incident.Severity.PublicStatus(); s.Rank() > overall.Rank() {
			overall = s
		}
	}
	return overall
}

// ComponentStatuses derives per-component status for every catalogue
// component: the maximum severity among active incidents tagging it,
// independent of the overall status. Untagged components stay
// operational.
func ComponentStatuses(catalogue []domain.SystemComponent, active []*domain.Incident) []ComponentStatus {
	byName := make(map[string]domain.PublicStatus, len(catalogue))
	for _, c := range catalogue {
		byName[c.Name] = domain.PublicStatusOperational
	}

	for _, incident := range active {
		severity := incident.Severity.PublicStatus()
		for _, name := range incident.Components {
			current, known := byName[name]
			if !known {
				// Tags outside the catalogue don't surface publicly.
				continue
			}
			if severity.Rank() > current.Rank() {
				byName[name] = severity
			}
		}
	}

	result := make([]ComponentStatus, 0, len(catalogue))
	for _, c := range catalogue {
		result = append(result, ComponentStatus{
			Name:        c.Name,
			DisplayName: c.DisplayName,
			Status:      byName[c.Name],
		})
	}
	return result
}

// DeriveBanner selects the active incident with the highest severity
// rank, breaking ties by most recent created_at. Only the public-facing
// customer message is exposed.
func DeriveBanner(active []*domain.Incident) Banner {
	var top *domain.Incident
	for _, incident := range active {
		if top == nil {
			top = incident
			continue
		}
		ir := incident.Severity.PublicStatus().Rank()
		tr := top.Severity.PublicStatus().Rank()
		if ir > tr || (ir == tr && incident.CreatedAt.After(top.CreatedAt)) {
			top = incident
		}
	}

	if top == nil {
		return Banner{Active: false}
	}

	return Banner{
		Active:   true,
		Severity: top.Severity.PublicStatus(),
		Message:  top.CustomerMessage,
		URL:      StatusPagePath,
	}
}

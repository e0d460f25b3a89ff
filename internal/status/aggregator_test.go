package status

import (
	"testing"
	"time"

	"github.com/barkbase/opsdash/internal/domain"
	"github.com/stretchr/testify/assert"
)

func activeIncident(severity domain.Severity, components ...string) *domain.Incident {
	return &domain.Incident{
		Severity:   severity,
		Status:     domain.IncidentStatusInvestigating,
		Components: components,
	}
}

func TestOverallStatus_NoActiveIncidents(t *testing.T) {
	assert.Equal(t, domain.PublicStatusOperational, OverallStatus(nil))
	assert.Equal(t, domain.PublicStatusOperational, OverallStatus([]*domain.Incident{}))
}

func TestOverallStatus_MaxSeverityWins(t *testing.T) {
	tests := []struct {
		name       string
		severities []domain.Severity
		want       domain.PublicStatus
	}{
		{"single degraded", []domain.Severity{domain.SeverityDegraded}, domain.PublicStatusDegraded},
		{"degraded and partial", []domain.Severity{domain.SeverityDegraded, domain.SeverityPartialOutage}, domain.PublicStatusPartialOutage},
		{"major dominates", []domain.Severity{domain.SeverityDegraded, domain.SeverityMajorOutage, domain.SeverityPartialOutage}, domain.PublicStatusMajorOutage},
		{"order irrelevant", []domain.Severity{domain.SeverityMajorOutage, domain.SeverityDegraded}, domain.PublicStatusMajorOutage},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			active := make([]*domain.Incident, 0, len(tt.severities))
			for _, s := range tt.severities {
				active = append(active, activeIncident(s))
			}
			assert.Equal(t, tt.want, OverallStatus(active))
		})
	}
}

func TestOverallStatus_RemovingWorstNeverIncreasesAggregate(t *testing.T) {
	active := []*domain.Incident{
		activeIncident(domain.SeverityDegraded),
		activeIncident(domain.SeverityMajorOutage),
		activeIncident(domain.SeverityPartialOutage),
	}

	before := OverallStatus(active)

	// Drop the major_outage incident
	remaining := []*domain.Incident{active[0], active[2]}
	after := OverallStatus(remaining)

	assert.LessOrEqual(t, after.Rank(), before.Rank())
	assert.Equal(t, domain.PublicStatusPartialOutage, after)
}

func TestComponentStatuses_UntaggedStaysOperational(t *testing.T) {
	catalogue := []domain.SystemComponent{
		{Name: "api", DisplayName: "API", DisplayOrder: 10},
		{Name: "database", DisplayName: "Database", DisplayOrder: 20},
		{Name: "billing", DisplayName: "Billing", DisplayOrder: 30},
	}
	active := []*domain.Incident{
		activeIncident(domain.SeverityMajorOutage, "api", "database"),
	}

	result := ComponentStatuses(catalogue, active)

	byName := map[string]domain.PublicStatus{}
	for _, cs := range result {
		byName[cs.Name] = cs.Status
	}
	assert.Equal(t, domain.PublicStatusMajorOutage, byName["api"])
	assert.Equal(t, domain.PublicStatusMajorOutage, byName["database"])
	assert.Equal(t, domain.PublicStatusOperational, byName["billing"])
}

func TestComponentStatuses_MaxAcrossIncidentsPerComponent(t *testing.T) {
	catalogue := []domain.SystemComponent{
		{Name: "api"},
		{Name: "web_app"},
	}
	active := []*domain.Incident{
		activeIncident(domain.SeverityDegraded, "api", "web_app"),
		activeIncident(domain.SeverityPartialOutage, "api"),
	}

	result := ComponentStatuses(catalogue, active)

	byName := map[string]domain.PublicStatus{}
	for _, cs := range result {
		byName[cs.Name] = cs.Status
	}
	assert.Equal(t, domain.PublicStatusPartialOutage, byName["api"])
	assert.Equal(t, domain.PublicStatusDegraded, byName["web_app"])
}

func TestComponentStatuses_UnknownTagIgnored(t *testing.T) {
	catalogue := []domain.SystemComponent{{Name: "api"}}
	active := []*domain.Incident{
		activeIncident(domain.SeverityMajorOutage, "decommissioned_thing"),
	}

	result := ComponentStatuses(catalogue, active)

	assert.Len(t, result, 1)
	assert.Equal(t, domain.PublicStatusOperational, result[0].Status)
}

func TestComponentStatuses_PreservesCatalogueOrder(t *testing.T) {
	catalogue := []domain.SystemComponent{
		{Name: "api", DisplayOrder: 10},
		{Name: "web_app", DisplayOrder: 20},
		{Name: "database", DisplayOrder: 30},
	}

	result := ComponentStatuses(catalogue, nil)

	names := make([]string, 0, len(result))
	for _, cs := range result {
		names = append(names, cs.Name)
	}
	assert.Equal(t, []string{"api", "web_app", "database"}, names)
}

func TestDeriveBanner_NoActiveIncidents(t *testing.T) {
	banner := DeriveBanner(nil)

	assert.False(t, banner.Active)
	assert.Empty(t, banner.Severity)
	assert.Empty(t, banner.Message)
	assert.Empty(t, banner.URL)
}

func TestDeriveBanner_PicksHighestSeverity(t *testing.T) {
	degraded := activeIncident(domain.SeverityDegraded)
	degraded.CustomerMessage = "Minor slowness"
	major := activeIncident(domain.SeverityMajorOutage)
	major.CustomerMessage = "We are investigating"

	banner := DeriveBanner([]*domain.Incident{degraded, major})

	assert.True(t, banner.Active)
	assert.Equal(t, domain.PublicStatusMajorOutage, banner.Severity)
	assert.Equal(t, "We are investigating", banner.Message)
	assert.Equal(t, StatusPagePath, banner.URL)
}

func TestDeriveBanner_TieBreaksByMostRecent(t *testing.T) {
	older := activeIncident(domain.SeverityPartialOutage)
	older.CustomerMessage = "older"
	older.CreatedAt = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	newer := activeIncident(domain.SeverityPartialOutage)
	newer.CustomerMessage = "newer"
	newer.CreatedAt = time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)

	banner := DeriveBanner([]*domain.Incident{older, newer})

	assert.Equal(t, "newer", banner.Message)
}

func TestDeriveBanner_NeverExposesInternalNotes(t *testing.T) {
	incident := activeIncident(domain.SeverityMajorOutage)
	incident.CustomerMessage = "public message"
	incident.InternalNotes = "db password leaked, rotating"

	banner := DeriveBanner([]*domain.Incident{incident})

	assert.Equal(t, "public message", banner.Message)
	assert.NotContains(t, banner.Message, "rotating")
}

package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPublicStatus_RankIsTotalOrder(t *testing.T) {
	ordered := []PublicStatus{
		PublicStatusOperational,
		PublicStatusDegraded,
		PublicStatusPartialOutage,
		PublicStatusMajorOutage,
	}

	for i := 1; i < len(ordered); i++ {
		assert.Greater(t, ordered[i].Rank(), ordered[i-1].Rank(),
			"%s must outrank %s", ordered[i], ordered[i-1])
	}
}

func TestPublicStatus_UnknownRanksAsOperational(t *testing.T) {
	assert.Equal(t, 0, PublicStatus("garbage").Rank())
}

func TestSeverity_PublicStatus(t *testing.T) {
	assert.Equal(t, PublicStatusDegraded, SeverityDegraded.PublicStatus())
	assert.Equal(t, PublicStatusPartialOutage, SeverityPartialOutage.PublicStatus())
	assert.Equal(t, PublicStatusMajorOutage, SeverityMajorOutage.PublicStatus())
}

func TestIncidentStatus_IsValid(t *testing.T) {
	for _, s := range []IncidentStatus{
		IncidentStatusInvestigating,
		IncidentStatusIdentified,
		IncidentStatusMonitoring,
		IncidentStatusResolved,
	} {
		assert.True(t, s.IsValid(), string(s))
	}
	assert.False(t, IncidentStatus("closed").IsValid())
	assert.False(t, IncidentStatus("").IsValid())
}

func TestIncident_IsActive(t *testing.T) {
	for _, s := range []IncidentStatus{
		IncidentStatusInvestigating,
		IncidentStatusIdentified,
		IncidentStatusMonitoring,
	} {
		incident := &Incident{Status: s}
		assert.True(t, incident.IsActive(), string(s))
	}

	resolved := &Incident{Status: IncidentStatusResolved}
	assert.False(t, resolved.IsActive())
}

func TestRole_CanWriteIncidents(t *testing.T) {
	assert.True(t, RoleSuperAdmin.CanWriteIncidents())
	assert.True(t, RoleEngineer.CanWriteIncidents())
	assert.True(t, RoleSupportLead.CanWriteIncidents())

	assert.False(t, RoleSupport.CanWriteIncidents())
	assert.False(t, Role("billing_admin").CanWriteIncidents())
	assert.False(t, Role("").CanWriteIncidents())
}

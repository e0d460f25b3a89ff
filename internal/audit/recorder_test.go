package audit

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/barkbase/opsdash/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockRepository implements Repository for testing.
type mockRepository struct {
	entries   []*domain.AuditEntry
	createErr error
}

func (m *mockRepository) CreateEntry(_ context.Context, entry *domain.AuditEntry) error {
	if m.createErr != nil {
		return m.createErr
	}
	m.entries = append(m.entries, entry)
	return nil
}

func testAdmin() *domain.AdminUser {
	return &domain.AdminUser{ID: "admin-1", Email: "ops@barkbase.io", Role: domain.RoleEngineer}
}

func TestRecord_AppendsEntry(t *testing.T) {
	repo := &mockRepository{}
	service := NewService(repo)

	service.Record(context.Background(), testAdmin(), "incident.create", "incident", "inc-1",
		map[string]string{"title": "DB outage"})

	require.Len(t, repo.entries, 1)
	entry := repo.entries[0]
	assert.NotEmpty(t, entry.ID)
	assert.Equal(t, "admin-1", entry.AdminID)
	assert.Equal(t, "ops@barkbase.io", entry.AdminEmail)
	assert.Equal(t, "incident.create", entry.Action)
	assert.Equal(t, "incident", entry.TargetType)
	assert.Equal(t, "inc-1", entry.TargetID)

	var details map[string]string
	require.NoError(t, json.Unmarshal(entry.Details, &details))
	assert.Equal(t, "DB outage", details["title"])
}

func TestRecord_SwallowsStorageFailure(t *testing.T) {
	repo := &mockRepository{createErr: errors.New("connection refused")}
	service := NewService(repo)

	// Must not panic or surface the failure in any way.
	service.Record(context.Background(), testAdmin(), "incident.update", "incident", "inc-2", nil)

	assert.Empty(t, repo.entries)
}

func TestRecord_NilDetails(t *testing.T) {
	repo := &mockRepository{}
	service := NewService(repo)

	service.Record(context.Background(), testAdmin(), "admin.search", "search", "", nil)

	require.Len(t, repo.entries, 1)
	assert.Nil(t, repo.entries[0].Details)
}

func TestRecord_UnserializableDetailsStillRecorded(t *testing.T) {
	repo := &mockRepository{}
	service := NewService(repo)

	service.Record(context.Background(), testAdmin(), "incident.update", "incident", "inc-3",
		map[string]any{"bad": make(chan int)})

	require.Len(t, repo.entries, 1)
	assert.Nil(t, repo.entries[0].Details)
}

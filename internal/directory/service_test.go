package directory

import (
	"context"
	"errors"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/barkbase/opsdash/internal/domain"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockRepository struct {
	tenants map[string]*domain.Tenant
	users   map[string][]*domain.TenantUser

	searchCalls atomic.Int32

	userCount    int
	petCount     int
	bookingCount int

	countUsersErr error
	countDelay    time.Duration
}

func newMockRepository() *mockRepository {
	return &mockRepository{
		tenants: make(map[string]*domain.Tenant),
		users:   make(map[string][]*domain.TenantUser),
	}
}

func (m *mockRepository) SearchTenants(_ context.Context, pattern string, limit int) ([]*domain.Tenant, error) {
	m.searchCalls.Add(1)
	var matched []*domain.Tenant
	for _, tenant := range m.tenants {
		if containsPattern(tenant.Name, pattern) || containsPattern(tenant.Subdomain, pattern) {
			matched = append(matched, tenant)
		}
		if len(matched) == limit {
			break
		}
	}
	return matched, nil
}

func (m *mockRepository) SearchUsers(_ context.Context, pattern string, limit int) ([]*domain.TenantUser, error) {
	m.searchCalls.Add(1)
	var matched []*domain.TenantUser
	for _, users := range m.users {
		for _, user := range users {
			if containsPattern(user.Email, pattern) || containsPattern(user.Name, pattern) {
				matched = append(matched, user)
			}
			if len(matched) == limit {
				return matched, nil
			}
		}
	}
	return matched, nil
}

func (m *mockRepository) GetTenant(_ context.Context, id string) (*domain.Tenant, error) {
	tenant, ok := m.tenants[id]
	if !ok {
		return nil, ErrTenantNotFound
	}
	return tenant, nil
}

func (m *mockRepository) ListTenantUsers(_ context.Context, tenantID string) ([]*domain.TenantUser, error) {
	return m.users[tenantID], nil
}

func (m *mockRepository) CountTenantUsers(_ context.Context, _ string) (int, error) {
	time.Sleep(m.countDelay)
	if m.countUsersErr != nil {
		return 0, m.countUsersErr
	}
	return m.userCount, nil
}

func (m *mockRepository) CountTenantPets(_ context.Context, _ string) (int, error) {
	time.Sleep(m.countDelay)
	return m.petCount, nil
}

func (m *mockRepository) CountTenantBookings(_ context.Context, _ string) (int, error) {
	time.Sleep(m.countDelay)
	return m.bookingCount, nil
}

// containsPattern emulates ILIKE '%q%' matching for the mock.
func containsPattern(value, pattern string) bool {
	q := strings.Trim(pattern, "%")
	return strings.Contains(strings.ToLower(value), strings.ToLower(q))
}

func seedTenant(repo *mockRepository, name, subdomain string) *domain.Tenant {
	tenant := &domain.Tenant{
		ID:        uuid.NewString(),
		Name:      name,
		Subdomain: subdomain,
		Plan:      "pro",
		CreatedAt: time.Now().UTC(),
	}
	repo.tenants[tenant.ID] = tenant
	return tenant
}

func TestSearch_RejectsShortQueries(t *testing.T) {
	repo := newMockRepository()
	service := NewService(repo)

	for _, query := range []string{"", "a", " a ", "  "} {
		_, err := service.Search(context.Background(), query)
		assert.ErrorIs(t, err, ErrQueryTooShort, "query %q", query)
	}

	assert.Zero(t, repo.searchCalls.Load(), "short queries must not hit the database")
}

func TestSearch_NoMatchesReturnsEmptyLists(t *testing.T) {
	repo := newMockRepository()
	seedTenant(repo, "Happy Paws", "happypaws")
	service := NewService(repo)

	result, err := service.Search(context.Background(), "zzzz")

	require.NoError(t, err)
	assert.NotNil(t, result.Tenants)
	assert.NotNil(t, result.Users)
	assert.Empty(t, result.Tenants)
	assert.Empty(t, result.Users)
}

func TestSearch_MatchesTenantsAndUsers(t *testing.T) {
	repo := newMockRepository()
	tenant := seedTenant(repo, "Happy Paws", "happypaws")
	repo.users[tenant.ID] = []*domain.TenantUser{
		{ID: uuid.NewString(), TenantID: tenant.ID, Email: "owner@happypaws.com", Name: "Dana Ortiz"},
	}
	service := NewService(repo)

	result, err := service.Search(context.Background(), "happy")

	require.NoError(t, err)
	require.Len(t, result.Tenants, 1)
	assert.Equal(t, tenant.ID, result.Tenants[0].ID)
	require.Len(t, result.Users, 1)
	assert.Equal(t, "owner@happypaws.com", result.Users[0].Email)
}

func TestSearch_TrimsWhitespace(t *testing.T) {
	repo := newMockRepository()
	seedTenant(repo, "Happy Paws", "happypaws")
	service := NewService(repo)

	result, err := service.Search(context.Background(), "  happy  ")

	require.NoError(t, err)
	assert.Len(t, result.Tenants, 1)
}

func TestGetTenantDetail_AggregatesCounts(t *testing.T) {
	repo := newMockRepository()
	tenant := seedTenant(repo, "Happy Paws", "happypaws")
	repo.userCount = 12
	repo.petCount = 48
	repo.bookingCount = 310
	service := NewService(repo)

	detail, err := service.GetTenantDetail(context.Background(), tenant.ID)

	require.NoError(t, err)
	assert.Equal(t, tenant.ID, detail.Tenant.ID)
	assert.Equal(t, 12, detail.Counts.Users)
	assert.Equal(t, 48, detail.Counts.Pets)
	assert.Equal(t, 310, detail.Counts.Bookings)
}

func TestGetTenantDetail_CountsRunConcurrently(t *testing.T) {
	repo := newMockRepository()
	tenant := seedTenant(repo, "Happy Paws", "happypaws")
	repo.countDelay = 50 * time.Millisecond
	service := NewService(repo)

	start := time.Now()
	_, err := service.GetTenantDetail(context.Background(), tenant.ID)
	elapsed := time.Since(start)

	require.NoError(t, err)
	// Three sequential 50ms counts would take 150ms.
	assert.Less(t, elapsed, 120*time.Millisecond)
}

func TestGetTenantDetail_CountFailurePropagates(t *testing.T) {
	repo := newMockRepository()
	tenant := seedTenant(repo, "Happy Paws", "happypaws")
	repo.countUsersErr = errors.New("relation missing")
	service := NewService(repo)

	_, err := service.GetTenantDetail(context.Background(), tenant.ID)

	assert.Error(t, err)
}

func TestGetTenantDetail_NotFound(t *testing.T) {
	service := NewService(newMockRepository())

	_, err := service.GetTenantDetail(context.Background(), uuid.NewString())

	assert.ErrorIs(t, err, ErrTenantNotFound)
}

func TestListTenantUsers_UnknownTenant(t *testing.T) {
	service := NewService(newMockRepository())

	_, err := service.ListTenantUsers(context.Background(), uuid.NewString())

	assert.ErrorIs(t, err, ErrTenantNotFound)
}

func TestListTenantUsers_ReturnsUsers(t *testing.T) {
	repo := newMockRepository()
	tenant := seedTenant(repo, "Happy Paws", "happypaws")
	repo.users[tenant.ID] = []*domain.TenantUser{
		{ID: uuid.NewString(), TenantID: tenant.ID, Email: "a@happypaws.com"},
		{ID: uuid.NewString(), TenantID: tenant.ID, Email: "b@happypaws.com"},
	}
	service := NewService(repo)

	users, err := service.ListTenantUsers(context.Background(), tenant.ID)

	require.NoError(t, err)
	assert.Len(t, users, 2)
}

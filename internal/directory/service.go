// Package directory provides tenant and user lookups for support staff.
package directory

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/barkbase/opsdash/internal/domain"
)

// MinQueryLength is the minimum accepted search query length.
const MinQueryLength = 2

// SearchResultLimit caps each result list of a search.
const SearchResultLimit = 25

// SearchResult holds tenant and user matches for one query.
type SearchResult struct {
	Tenants []*domain.Tenant     `json:"tenants"`
	Users   []*domain.TenantUser `json:"users"`
}

// TenantDetail is the tenant view with usage counters.
type TenantDetail struct {
	Tenant *domain.Tenant      `json:"tenant"`
	Counts domain.TenantCounts `json:"counts"`
}

// Service implements directory lookups.
type Service struct {
	repo Repository
}

// NewService creates a new directory service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Search pattern-matches tenants (name, subdomain) and users (email,
// name). Queries shorter than MinQueryLength are rejected before any
// database work.
func (s *Service) Search(ctx context.Context, query string) (*SearchResult, error) {
	query = strings.TrimSpace(query)
	if len(query) < MinQueryLength {
		return nil, ErrQueryTooShort
	}

	pattern := "%" + query + "%"

	tenants, err := s.repo.SearchTenants(ctx, pattern, SearchResultLimit)
	if err != nil {
		return nil, fmt.Errorf("search tenants: %w", err)
	}

	users, err := s.repo.SearchUsers(ctx, pattern, SearchResultLimit)
	if err != nil {
		return nil, fmt.Errorf("search users: %w", err)
	}

	// Empty results marshal as [] rather than null.
	if tenants == nil {
		tenants = make([]*domain.Tenant, 0)
	}
	if users == nil {
		users = make([]*domain.TenantUser, 0)
	}

	return &SearchResult{Tenants: tenants, Users: users}, nil
}

// GetTenantDetail returns the tenant with its usage counters. The three
// counts run concurrently; they hit separate tables and share no state.
func (s *Service) GetTenantDetail(ctx context.Context, id string) (*TenantDetail, error) {
	tenant, err := s.repo.GetTenant(ctx, id)
	if err != nil {
		return nil, err
	}

	var (
		wg     sync.WaitGroup
		counts domain.TenantCounts
		mu     sync.Mutex
		errs   []error
	)

	count := func(name string, fn func(context.Context, string) (int, error), dst *int) {
		defer wg.Done()
		n, err := fn(ctx, id)
		mu.Lock()
		defer mu.Unlock()
		if err != nil {
			errs = append(errs, fmt.Errorf("count %s: %w", name, err))
			return
		}
		*dst = n
	}

	wg.Add(3)
	go count("users", s.repo.CountTenantUsers, &counts.Users)
	go count("pets", s.repo.CountTenantPets, &counts.Pets)
	go count("bookings", s.repo.CountTenantBookings, &counts.Bookings)
	wg.Wait()

	if len(errs) > 0 {
		return nil, errs[0]
	}

	return &TenantDetail{Tenant: tenant, Counts: counts}, nil
}

// ListTenantUsers returns the tenant's users, newest first.
func (s *Service) ListTenantUsers(ctx context.Context, tenantID string) ([]*domain.TenantUser, error) {
	if _, err := s.repo.GetTenant(ctx, tenantID); err != nil {
		return nil, err
	}
	return s.repo.ListTenantUsers(ctx, tenantID)
}

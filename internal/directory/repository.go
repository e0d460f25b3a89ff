package directory

import (
	"context"
	"errors"

	"github.com/barkbase/opsdash/internal/domain"
)

// Sentinel errors returned by the directory service and repository.
var (
	ErrTenantNotFound = errors.New("tenant not found")
	ErrQueryTooShort  = errors.New("search query must be at least 2 characters")
)

// Repository defines the read-only interface over the barkbase product
// database.
type Repository interface {
	SearchTenants(ctx context.Context, pattern string, limit int) ([]*domain.Tenant, error)
	SearchUsers(ctx context.Context, pattern string, limit int) ([]*domain.TenantUser, error)
	GetTenant(ctx context.Context, id string) (*domain.Tenant, error)
	ListTenantUsers(ctx context.Context, tenantID string) ([]*domain.TenantUser, error)
	CountTenantUsers(ctx context.Context, tenantID string) (int, error)
	CountTenantPets(ctx context.Context, tenantID string) (int, error)
	CountTenantBookings(ctx context.Context, tenantID string) (int, error)
}

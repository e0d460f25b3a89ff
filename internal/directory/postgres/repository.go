// Package postgres provides read-only queries against the barkbase
// product database.
package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/barkbase/opsdash/internal/directory"
	"github.com/barkbase/opsdash/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository implements directory.Repository using PostgreSQL.
type Repository struct {
	db *pgxpool.Pool
}

// NewRepository creates a new PostgreSQL repository.
func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

// SearchTenants pattern-matches tenants on name and subdomain.
func (r *Repository) SearchTenants(ctx context.Context, pattern string, limit int) ([]*domain.Tenant, error) {
	query := `
		SELECT id, name, subdomain, plan, created_at
		FROM tenants
		WHERE name ILIKE $1 OR subdomain ILIKE $1
		ORDER BY name
		LIMIT $2
	`
	rows, err := r.db.Query(ctx, query, pattern, limit)
	if err != nil {
		return nil, fmt.Errorf("search tenants: %w", err)
	}
	defer rows.Close()

	tenants := make([]*domain.Tenant, 0)
	for rows.Next() {
		var t domain.Tenant
		if err := rows.Scan(&t.ID, &t.Name, &t.Subdomain, &t.Plan, &t.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan tenant: %w", err)
		}
		tenants = append(tenants, &t)
	}

	return tenants, rows.Err()
}

// SearchUsers pattern-matches users on email and name.
func (r *Repository) SearchUsers(ctx context.Context, pattern string, limit int) ([]*domain.TenantUser, error) {
	query := `
		SELECT id, tenant_id, email, name, role, created_at
		FROM users
		WHERE email ILIKE $1 OR name ILIKE $1
		ORDER BY email
		LIMIT $2
	`
	rows, err := r.db.Query(ctx, query, pattern, limit)
	if err != nil {
		return nil, fmt.Errorf("search users: %w", err)
	}
	defer rows.Close()

	return scanUsers(rows)
}

// GetTenant retrieves a tenant by ID.
func (r *Repository) GetTenant(ctx context.Context, id string) (*domain.Tenant, error) {
	query := `SELECT id, name, subdomain, plan, created_at FROM tenants WHERE id = $1`

	var t domain.Tenant
	err := r.db.QueryRow(ctx, query, id).Scan(&t.ID, &t.Name, &t.Subdomain, &t.Plan, &t.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, directory.ErrTenantNotFound
		}
		return nil, fmt.Errorf("get tenant: %w", err)
	}
	return &t, nil
}

// ListTenantUsers retrieves a tenant's users, newest first.
func (r *Repository) ListTenantUsers(ctx context.Context, tenantID string) ([]*domain.TenantUser, error) {
	query := `
		SELECT id, tenant_id, email, name, role, created_at
		FROM users
		WHERE tenant_id = $1
		ORDER BY created_at DESC
	`
	rows, err := r.db.Query(ctx, query, tenantID)
	if err != nil {
		return nil, fmt.Errorf("list tenant users: %w", err)
	}
	defer rows.Close()

	return scanUsers(rows)
}

// CountTenantUsers counts the tenant's users.
func (r *Repository) CountTenantUsers(ctx context.Context, tenantID string) (int, error) {
	return r.countByTenant(ctx, "users", tenantID)
}

// CountTenantPets counts the tenant's pets.
func (r *Repository) CountTenantPets(ctx context.Context, tenantID string) (int, error) {
	return r.countByTenant(ctx, "pets", tenantID)
}

// CountTenantBookings counts the tenant's bookings.
func (r *Repository) CountTenantBookings(ctx context.Context, tenantID string) (int, error) {
	return r.countByTenant(ctx, "bookings", tenantID)
}

func (r *Repository) countByTenant(ctx context.Context, table, tenantID string) (int, error) {
	// table is one of three fixed names, never caller input.
	query := fmt.Sprintf(`SELECT COUNT(*) FROM %s WHERE tenant_id = $1`, table)

	var count int
	if err := r.db.QueryRow(ctx, query, tenantID).Scan(&count); err != nil {
		return 0, fmt.Errorf("count %s: %w", table, err)
	}
	return count, nil
}

func scanUsers(rows pgx.Rows) ([]*domain.TenantUser, error) {
	users := make([]*domain.TenantUser, 0)
	for rows.Next() {
		var u domain.TenantUser
		if err := rows.Scan(&u.ID, &u.TenantID, &u.Email, &u.Name, &u.Role, &u.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		users = append(users, &u)
	}
	return users, rows.Err()
}

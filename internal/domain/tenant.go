package domain

import "time"

// Tenant is a customer account in the barkbase product database.
// Read-only from the ops console.
type Tenant struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Subdomain string    `json:"subdomain"`
	Plan      string    `json:"plan"`
	CreatedAt time.Time `json:"created_at"`
}

// TenantUser is an end user belonging to a tenant.
type TenantUser struct {
	ID        string    `json:"id"`
	TenantID  string    `json:"tenant_id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

// TenantCounts holds the per-tenant usage counters shown on the tenant
// detail view.
type TenantCounts struct {
	Users    int `json:"users"`
	Pets     int `json:"pets"`
	Bookings int `json:"bookings"`
}

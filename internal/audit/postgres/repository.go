// Package postgres provides PostgreSQL implementation of audit storage.
package postgres

import (
	"context"
	"fmt"

	"github.com/barkbase/opsdash/internal/domain"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository implements audit.Repository using PostgreSQL.
type Repository struct {
	db *pgxpool.Pool
}

// NewRepository creates a new PostgreSQL repository.
func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

// CreateEntry appends one audit log row. There is no update or delete
// path for this table.
func (r *Repository) CreateEntry(ctx context.Context, entry *domain.AuditEntry) error {
	query := `
		INSERT INTO audit_logs (id, admin_id, admin_email, action, target_type, target_id, details)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at
	`
	err := r.db.QueryRow(ctx, query,
		entry.ID,
		entry.AdminID,
		entry.AdminEmail,
		entry.Action,
		entry.TargetType,
		entry.TargetID,
		entry.Details,
	).Scan(&entry.CreatedAt)

	if err != nil {
		return fmt.Errorf("create audit entry: %w", err)
	}
	return nil
}

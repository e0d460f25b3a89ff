// Package postgres provides PostgreSQL implementation of incident storage.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/barkbase/opsdash/internal/domain"
	"github.com/barkbase/opsdash/internal/incidents"
	"github.com/barkbase/opsdash/internal/pkg/sqlbuilder"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const incidentColumns = `
	id, title, customer_message, internal_notes, severity, status,
	created_by_id, created_by_email, created_at, updated_at, resolved_at
`

// Repository implements incidents.Repository using PostgreSQL.
type Repository struct {
	db *pgxpool.Pool
}

// NewRepository creates a new PostgreSQL repository.
func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

// CreateIncident inserts the incident row and one component row per tag
// in a single transaction. Duplicate component entries in the input are
// inserted as given.
func (r *Repository) CreateIncident(ctx context.Context, incident *domain.Incident) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		if err := tx.Rollback(ctx); err != nil && !errors.Is(err, pgx.ErrTxClosed) {
			slog.Error("failed to rollback transaction", "error", err)
		}
	}()

	query := `
		INSERT INTO incidents (
			title, customer_message, internal_notes, severity, status,
			created_by_id, created_by_email
		) VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at, updated_at
	`
	err = tx.QueryRow(ctx, query,
		incident.Title,
		incident.CustomerMessage,
		incident.InternalNotes,
		incident.Severity,
		incident.Status,
		incident.CreatedByID,
		incident.CreatedByEmail,
	).Scan(&incident.ID, &incident.CreatedAt, &incident.UpdatedAt)
	if err != nil {
		return fmt.Errorf("create incident: %w", err)
	}

	insertComponent := `INSERT INTO incident_components (incident_id, component) VALUES ($1, $2)`
	for _, component := range incident.Components {
		if _, err := tx.Exec(ctx, insertComponent, incident.ID, component); err != nil {
			return fmt.Errorf("tag component %s: %w", component, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// GetIncident retrieves an incident by ID with its component list.
func (r *Repository) GetIncident(ctx context.Context, id string) (*domain.Incident, error) {
	query := `SELECT ` + incidentColumns + ` FROM incidents WHERE id = $1`

	incident, err := scanIncident(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, incidents.ErrIncidentNotFound
		}
		return nil, fmt.Errorf("get incident: %w", err)
	}

	if err := r.loadComponents(ctx, incident); err != nil {
		return nil, err
	}
	return incident, nil
}

// ListIncidents retrieves a page of incidents plus the total count. Both
// queries share the same WHERE clause so pagination metadata always
// matches the filtered set.
func (r *Repository) ListIncidents(ctx context.Context, filter incidents.ListFilter) ([]*domain.Incident, int, error) {
	where := ""
	whereArgs := []any{}
	argNum := 1

	if filter.Status != nil {
		where = fmt.Sprintf(" WHERE status = $%d", argNum)
		whereArgs = append(whereArgs, *filter.Status)
		argNum++
	}

	var total int
	countQuery := `SELECT COUNT(*) FROM incidents` + where
	if err := r.db.QueryRow(ctx, countQuery, whereArgs...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count incidents: %w", err)
	}

	query := `SELECT ` + incidentColumns + ` FROM incidents` + where + " ORDER BY created_at DESC"
	args := whereArgs

	if filter.Limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d", argNum)
		args = append(args, filter.Limit)
		argNum++
	}
	if filter.Offset > 0 {
		query += fmt.Sprintf(" OFFSET $%d", argNum)
		args = append(args, filter.Offset)
	}

	list, err := r.queryIncidents(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list incidents: %w", err)
	}
	return list, total, nil
}

// UpdateIncident applies a partial update built from the supplied
// fields. The incident id binds as the final positional parameter after
// all assignment parameters.
func (r *Repository) UpdateIncident(ctx context.Context, id string, patch incidents.UpdatePatch) (*domain.Incident, error) {
	b := sqlbuilder.NewUpdate("incidents")
	if patch.Status != nil {
		b.Set("status", *patch.Status)
	}
	if patch.CustomerMessage != nil {
		b.Set("customer_message", *patch.CustomerMessage)
	}
	if patch.InternalNotes != nil {
		b.Set("internal_notes", *patch.InternalNotes)
	}
	if patch.ResolvedAt != nil {
		b.Set("resolved_at", *patch.ResolvedAt)
	}

	// An empty patch changes nothing; don't touch updated_at either.
	if b.Empty() {
		return r.GetIncident(ctx, id)
	}
	b.SetRaw("updated_at", "NOW()")

	query, args := b.Build("id", id, incidentColumns)

	incident, err := scanIncident(r.db.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, incidents.ErrIncidentNotFound
		}
		return nil, fmt.Errorf("update incident: %w", err)
	}

	if err := r.loadComponents(ctx, incident); err != nil {
		return nil, err
	}
	return incident, nil
}

// CreateIncidentUpdate inserts one immutable timeline row.
func (r *Repository) CreateIncidentUpdate(ctx context.Context, update *domain.IncidentUpdate) error {
	query := `
		INSERT INTO incident_updates (incident_id, message, status, created_by_id, created_by_email)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at
	`
	err := r.db.QueryRow(ctx, query,
		update.IncidentID,
		update.Message,
		update.Status,
		update.CreatedByID,
		update.CreatedByEmail,
	).Scan(&update.ID, &update.CreatedAt)

	if err != nil {
		return fmt.Errorf("create incident update: %w", err)
	}
	return nil
}

// ListIncidentUpdates retrieves all updates for an incident, most recent
// first.
func (r *Repository) ListIncidentUpdates(ctx context.Context, incidentID string) ([]*domain.IncidentUpdate, error) {
	query := `
		SELECT id, incident_id, message, status, created_by_id, created_by_email, created_at
		FROM incident_updates
		WHERE incident_id = $1
		ORDER BY created_at DESC
	`
	rows, err := r.db.Query(ctx, query, incidentID)
	if err != nil {
		return nil, fmt.Errorf("list incident updates: %w", err)
	}
	defer rows.Close()

	updates := make([]*domain.IncidentUpdate, 0)
	for rows.Next() {
		var update domain.IncidentUpdate
		err := rows.Scan(
			&update.ID,
			&update.IncidentID,
			&update.Message,
			&update.Status,
			&update.CreatedByID,
			&update.CreatedByEmail,
			&update.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan incident update: %w", err)
		}
		updates = append(updates, &update)
	}

	return updates, rows.Err()
}

// ListActiveIncidents returns all non-resolved incidents with their
// components. Used by the public status aggregator.
func (r *Repository) ListActiveIncidents(ctx context.Context) ([]*domain.Incident, error) {
	query := `SELECT ` + incidentColumns + ` FROM incidents WHERE status != $1 ORDER BY created_at DESC`

	list, err := r.queryIncidents(ctx, query, domain.IncidentStatusResolved)
	if err != nil {
		return nil, fmt.Errorf("list active incidents: %w", err)
	}
	return list, nil
}

// ListComponents returns the fixed component catalogue in display order.
func (r *Repository) ListComponents(ctx context.Context) ([]domain.SystemComponent, error) {
	query := `SELECT name, display_name, display_order FROM system_components ORDER BY display_order, name`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list components: %w", err)
	}
	defer rows.Close()

	components := make([]domain.SystemComponent, 0)
	for rows.Next() {
		var c domain.SystemComponent
		if err := rows.Scan(&c.Name, &c.DisplayName, &c.DisplayOrder); err != nil {
			return nil, fmt.Errorf("scan component: %w", err)
		}
		components = append(components, c)
	}

	return components, rows.Err()
}

func (r *Repository) queryIncidents(ctx context.Context, query string, args ...any) ([]*domain.Incident, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	list := make([]*domain.Incident, 0)
	for rows.Next() {
		incident, err := scanIncident(rows)
		if err != nil {
			return nil, fmt.Errorf("scan incident: %w", err)
		}
		list = append(list, incident)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for _, incident := range list {
		if err := r.loadComponents(ctx, incident); err != nil {
			return nil, err
		}
	}
	return list, nil
}

// loadComponents fills the incident's component tag list. An untagged
// incident gets an empty slice, never nil.
func (r *Repository) loadComponents(ctx context.Context, incident *domain.Incident) error {
	query := `SELECT component FROM incident_components WHERE incident_id = $1`
	rows, err := r.db.Query(ctx, query, incident.ID)
	if err != nil {
		return fmt.Errorf("get incident components: %w", err)
	}
	defer rows.Close()

	components := make([]string, 0)
	for rows.Next() {
		var component string
		if err := rows.Scan(&component); err != nil {
			return fmt.Errorf("scan component: %w", err)
		}
		components = append(components, component)
	}
	incident.Components = components
	return rows.Err()
}

func scanIncident(row pgx.Row) (*domain.Incident, error) {
	var incident domain.Incident
	err := row.Scan(
		&incident.ID,
		&incident.Title,
		&incident.CustomerMessage,
		&incident.InternalNotes,
		&incident.Severity,
		&incident.Status,
		&incident.CreatedByID,
		&incident.CreatedByEmail,
		&incident.CreatedAt,
		&incident.UpdatedAt,
		&incident.ResolvedAt,
	)
	if err != nil {
		return nil, err
	}
	return &incident, nil
}

// Package audit provides a best-effort append-only record of admin
// mutations.
package audit

import (
	"context"
	"encoding/json"

	"github.com/barkbase/opsdash/internal/domain"
	"github.com/barkbase/opsdash/internal/pkg/ctxlog"
	"github.com/barkbase/opsdash/internal/pkg/metrics"
	"github.com/google/uuid"
)

// Recorder records admin actions. Record has no error return on purpose:
// audit logging must never fail or delay the action it describes.
type Recorder interface {
	Record(ctx context.Context, admin *domain.AdminUser, action, targetType, targetID string, details any)
}

// Repository defines the interface for audit entry storage.
type Repository interface {
	CreateEntry(ctx context.Context, entry *domain.AuditEntry) error
}

// Service implements Recorder on top of a Repository.
type Service struct {
	repo Repository
}

// NewService creates a new audit service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Record appends one audit entry. Storage failures are logged and
// dropped; they never propagate to the caller.
func (s *Service) Record(ctx context.Context, admin *domain.AdminUser, action, targetType, targetID string, details any) {
	entry := &domain.AuditEntry{
		ID:         uuid.NewString(),
		AdminID:    admin.ID,
		AdminEmail: admin.Email,
		Action:     action,
		TargetType: targetType,
		TargetID:   targetID,
	}

	if details != nil {
		payload, err := json.Marshal(details)
		if err != nil {
			ctxlog.FromContext(ctx).Warn("audit details not serializable, recording without details",
				"action", action,
				"error", err,
			)
		} else {
			entry.Details = payload
		}
	}

	if err := s.repo.CreateEntry(ctx, entry); err != nil {
		metrics.AuditWriteFailures.Inc()
		ctxlog.FromContext(ctx).Error("audit log write failed",
			"action", action,
			"target_type", targetType,
			"target_id", targetID,
			"error", err,
		)
	}
}

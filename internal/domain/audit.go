package domain

import (
	"encoding/json"
	"time"
)

// AuditEntry records one admin mutation. Entries are append-only and
// outlive the resources they reference.
type AuditEntry struct {
	ID         string          `json:"id"`
	AdminID    string          `json:"admin_id"`
	AdminEmail string          `json:"admin_email"`
	Action     string          `json:"action"`
	TargetType string          `json:"target_type"`
	TargetID   string          `json:"target_id"`
	Details    json.RawMessage `json:"details,omitempty"`
	CreatedAt  time.Time       `json:"created_at"`
}

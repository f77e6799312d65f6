package models

import "time"

type AuditEvent struct {
	ID         string    `json:"id"`
	TenantID   string    `json:"tenant_id"`
	Action     string    `json:"action"`
	EntityType string    `json:"entity_type"`
	EntityID   string    `json:"entity_id"`
	Summary    string    `json:"summary"`
	Payload    []byte    `json:"payload"`
	CreatedAt  time.Time `json:"created_at"`
}

package models

import (
	"time"
)

type WorkflowDefinition struct {
	ID         string    `json:"id"`
	TenantID   string    `json:"tenant_id"`
	Name       string    `json:"name"`
	EntityType string    `json:"entity_type"`
	IsActive   bool      `json:"is_active"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

type WorkflowState struct {
	ID           string `json:"id"`
	DefinitionID string `json:"definition_id"`
	Code         string `json:"code"`
	Name         string `json:"name"`
	Rank         int    `json:"rank"`
	IsInitial    bool   `json:"is_initial"`
	IsTerminal   bool   `json:"is_terminal"`
}

type WorkflowTransition struct {
	ID           string `json:"id"`
	DefinitionID string `json:"definition_id"`
	FromCode     string `json:"from_code"`
	ToCode       string `json:"to_code"`
	Name         string `json:"name"`
}

type WorkflowStateAction struct {
	ID           string `json:"id"`
	DefinitionID string `json:"definition_id"`
	StateCode    string `json:"state_code"`
	Name         string `json:"name"`
	ActionKind   string `json:"action_kind"`
	Config       []byte `json:"config"`
	IsActive     bool   `json:"is_active"`
}

package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type SLATemplate struct {
	ID                  string           `json:"id"`
	TenantID            string           `json:"tenant_id"`
	Name                string           `json:"name"`
	ResponseHours       *int             `json:"response_hours"`
	ResolutionHours     *int             `json:"resolution_hours"`
	AvailabilityPercent *decimal.Decimal `json:"availability_percent"`
	CreatedAt           time.Time        `json:"created_at"`
	UpdatedAt           time.Time        `json:"updated_at"`
}

type Contract struct {
	ID            string          `json:"id"`
	TenantID      string          `json:"tenant_id"`
	Code          string          `json:"code"`
	ProviderID    string          `json:"provider_id"`
	ConsumerID    string          `json:"consumer_id"`
	SLATemplateID *string         `json:"sla_template_id"`
	StartDate     time.Time       `json:"start_date"`
	EndDate       *time.Time      `json:"end_date"`
	ContractValue decimal.Decimal `json:"contract_value"`
	Status        string          `json:"status"`
	Version       int64           `json:"version"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

type ServiceRequest struct {
	ID              string     `json:"id"`
	TenantID        string     `json:"tenant_id"`
	ContractID      string     `json:"contract_id"`
	Source          string     `json:"source"`
	ExternalID      string     `json:"external_id"`
	Title           string     `json:"title"`
	Priority        string     `json:"priority"`
	OpenedAt        time.Time  `json:"opened_at"`
	FirstResponseAt *time.Time `json:"first_response_at"`
	ResolvedAt      *time.Time `json:"resolved_at"`
	Status          string     `json:"status"`
	Version         int64      `json:"version"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

type SLABreachEvent struct {
	ID         string    `json:"id"`
	TenantID   string    `json:"tenant_id"`
	RequestID  string    `json:"request_id"`
	BreachType string    `json:"breach_type"`
	BreachAt   time.Time `json:"breach_at"`
	Details    []byte    `json:"details"`
}

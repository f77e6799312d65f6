package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type Unit struct {
	ID            string    `json:"id"`
	TenantID      string    `json:"tenant_id"`
	Code          string    `json:"code"`
	Name          string    `json:"name"`
	AutonomyLevel string    `json:"autonomy_level"`
	Department    string    `json:"department"`
	CostCenter    string    `json:"cost_center"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

type KPI struct {
	ID          string           `json:"id"`
	TenantID    string           `json:"tenant_id"`
	UnitID      string           `json:"unit_id"`
	Code        string           `json:"code"`
	Name        string           `json:"name"`
	TargetValue *decimal.Decimal `json:"target_value"`
	ActualValue *decimal.Decimal `json:"actual_value"`
	CreatedAt   time.Time        `json:"created_at"`
	UpdatedAt   time.Time        `json:"updated_at"`
}

type Agreement struct {
	ID                   string          `json:"id"`
	TenantID             string          `json:"tenant_id"`
	Code                 string          `json:"code"`
	UnitID               string          `json:"unit_id"`
	TotalCommittedAmount decimal.Decimal `json:"total_committed_amount"`
	Status               string          `json:"status"`
	CreatedAt            time.Time       `json:"created_at"`
	UpdatedAt            time.Time       `json:"updated_at"`
}

type Tranche struct {
	ID          string          `json:"id"`
	TenantID    string          `json:"tenant_id"`
	AgreementID string          `json:"agreement_id"`
	Amount      decimal.Decimal `json:"amount"`
	Status      string          `json:"status"`
	ReleaseDate *time.Time      `json:"release_date"`
}

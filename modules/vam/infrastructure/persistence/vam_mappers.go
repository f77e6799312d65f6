package persistence

import (
	"fmt"

	"github.com/go-faster/errors"
	"github.com/google/uuid"

	"github.com/orgmesh/platform-sdk/modules/vam/domain/aggregates/agreement"
	"github.com/orgmesh/platform-sdk/modules/vam/domain/aggregates/kpi"
	"github.com/orgmesh/platform-sdk/modules/vam/domain/aggregates/unit"
	"github.com/orgmesh/platform-sdk/modules/vam/infrastructure/persistence/models"
)

func ToDBUnit(u *unit.Unit) models.Unit {
	return models.Unit{
		ID:            u.ID().String(),
		TenantID:      u.TenantID().String(),
		Code:          u.Code(),
		Name:          u.Name(),
		AutonomyLevel: string(u.AutonomyLevel()),
		Department:    u.Department(),
		CostCenter:    u.CostCenter(),
		CreatedAt:     u.CreatedAt(),
		UpdatedAt:     u.UpdatedAt(),
	}
}

func ToDomainUnit(model models.Unit) (*unit.Unit, error) {
	id, err := uuid.Parse(model.ID)
	if err != nil {
		return nil, errors.Wrap(err, fmt.Sprintf("failed to parse unit UUID: %s", model.ID))
	}
	tenantID, err := uuid.Parse(model.TenantID)
	if err != nil {
		return nil, errors.Wrap(err, fmt.Sprintf("failed to parse tenant UUID: %s", model.TenantID))
	}
	return unit.New(
		model.Code,
		model.Name,
		unit.WithID(id),
		unit.WithTenantID(tenantID),
		unit.WithAutonomyLevel(unit.AutonomyLevel(model.AutonomyLevel)),
		unit.WithDepartment(model.Department),
		unit.WithCostCenter(model.CostCenter),
		unit.WithCreatedAt(model.CreatedAt),
		unit.WithUpdatedAt(model.UpdatedAt),
	), nil
}

func ToDBKPI(k *kpi.KPI) models.KPI {
	return models.KPI{
		ID:          k.ID().String(),
		TenantID:    k.TenantID().String(),
		UnitID:      k.UnitID().String(),
		Code:        k.Code(),
		Name:        k.Name(),
		TargetValue: k.Target(),
		ActualValue: k.Actual(),
		CreatedAt:   k.CreatedAt(),
		UpdatedAt:   k.UpdatedAt(),
	}
}

func ToDomainKPI(model models.KPI) (*kpi.KPI, error) {
	id, err := uuid.Parse(model.ID)
	if err != nil {
		return nil, errors.Wrap(err, fmt.Sprintf("failed to parse kpi UUID: %s", model.ID))
	}
	tenantID, err := uuid.Parse(model.TenantID)
	if err != nil {
		return nil, errors.Wrap(err, fmt.Sprintf("failed to parse tenant UUID: %s", model.TenantID))
	}
	unitID, err := uuid.Parse(model.UnitID)
	if err != nil {
		return nil, errors.Wrap(err, fmt.Sprintf("failed to parse unit UUID: %s", model.UnitID))
	}
	opts := []kpi.Option{
		kpi.WithID(id),
		kpi.WithTenantID(tenantID),
		kpi.WithCreatedAt(model.CreatedAt),
		kpi.WithUpdatedAt(model.UpdatedAt),
	}
	if model.TargetValue != nil {
		opts = append(opts, kpi.WithTarget(*model.TargetValue))
	}
	if model.ActualValue != nil {
		opts = append(opts, kpi.WithActual(*model.ActualValue))
	}
	return kpi.New(model.Code, model.Name, unitID, opts...), nil
}

func ToDBAgreement(a *agreement.Agreement) (models.Agreement, []models.Tranche) {
	m := models.Agreement{
		ID:                   a.ID().String(),
		TenantID:             a.TenantID().String(),
		Code:                 a.Code(),
		UnitID:               a.UnitID().String(),
		TotalCommittedAmount: a.Total(),
		Status:               string(a.Status()),
		CreatedAt:            a.CreatedAt(),
		UpdatedAt:            a.UpdatedAt(),
	}
	tranches := make([]models.Tranche, 0, len(a.Tranches()))
	for _, t := range a.Tranches() {
		tranches = append(tranches, models.Tranche{
			ID:          t.ID().String(),
			TenantID:    m.TenantID,
			AgreementID: m.ID,
			Amount:      t.Amount(),
			Status:      string(t.Status()),
			ReleaseDate: t.ReleaseDate(),
		})
	}
	return m, tranches
}

func ToDomainAgreement(model models.Agreement, trancheModels []models.Tranche) (*agreement.Agreement, error) {
	id, err := uuid.Parse(model.ID)
	if err != nil {
		return nil, errors.Wrap(err, fmt.Sprintf("failed to parse agreement UUID: %s", model.ID))
	}
	tenantID, err := uuid.Parse(model.TenantID)
	if err != nil {
		return nil, errors.Wrap(err, fmt.Sprintf("failed to parse tenant UUID: %s", model.TenantID))
	}
	unitID, err := uuid.Parse(model.UnitID)
	if err != nil {
		return nil, errors.Wrap(err, fmt.Sprintf("failed to parse unit UUID: %s", model.UnitID))
	}
	tranches := make([]agreement.Tranche, 0, len(trancheModels))
	for _, t := range trancheModels {
		trancheID, err := uuid.Parse(t.ID)
		if err != nil {
			return nil, errors.Wrap(err, fmt.Sprintf("failed to parse tranche UUID: %s", t.ID))
		}
		tranches = append(tranches, agreement.TrancheWith(trancheID, t.Amount, agreement.TrancheStatus(t.Status), t.ReleaseDate))
	}
	return agreement.New(
		model.Code,
		unitID,
		agreement.WithID(id),
		agreement.WithTenantID(tenantID),
		agreement.WithTotal(model.TotalCommittedAmount),
		agreement.WithStatus(agreement.Status(model.Status)),
		agreement.WithTranches(tranches...),
		agreement.WithCreatedAt(model.CreatedAt),
		agreement.WithUpdatedAt(model.UpdatedAt),
	), nil
}

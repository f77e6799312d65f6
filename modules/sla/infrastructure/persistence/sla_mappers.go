package persistence

import (
	"encoding/json"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/google/uuid"

	"github.com/orgmesh/platform-sdk/modules/sla/domain/aggregates/breach"
	"github.com/orgmesh/platform-sdk/modules/sla/domain/aggregates/contract"
	"github.com/orgmesh/platform-sdk/modules/sla/domain/aggregates/servicerequest"
	"github.com/orgmesh/platform-sdk/modules/sla/domain/aggregates/slatemplate"
	"github.com/orgmesh/platform-sdk/modules/sla/infrastructure/persistence/models"
)

func ToDBTemplate(t *slatemplate.SLATemplate) models.SLATemplate {
	return models.SLATemplate{
		ID:                  t.ID().String(),
		TenantID:            t.TenantID().String(),
		Name:                t.Name(),
		ResponseHours:       t.ResponseHours(),
		ResolutionHours:     t.ResolutionHours(),
		AvailabilityPercent: t.AvailabilityPercent(),
		CreatedAt:           t.CreatedAt(),
		UpdatedAt:           t.UpdatedAt(),
	}
}

func ToDomainTemplate(model models.SLATemplate) (*slatemplate.SLATemplate, error) {
	id, err := uuid.Parse(model.ID)
	if err != nil {
		return nil, errors.Wrap(err, fmt.Sprintf("failed to parse template UUID: %s", model.ID))
	}
	tenantID, err := uuid.Parse(model.TenantID)
	if err != nil {
		return nil, errors.Wrap(err, fmt.Sprintf("failed to parse tenant UUID: %s", model.TenantID))
	}
	opts := []slatemplate.Option{
		slatemplate.WithID(id),
		slatemplate.WithTenantID(tenantID),
		slatemplate.WithCreatedAt(model.CreatedAt),
		slatemplate.WithUpdatedAt(model.UpdatedAt),
	}
	if model.ResponseHours != nil {
		opts = append(opts, slatemplate.WithResponseHours(*model.ResponseHours))
	}
	if model.ResolutionHours != nil {
		opts = append(opts, slatemplate.WithResolutionHours(*model.ResolutionHours))
	}
	if model.AvailabilityPercent != nil {
		opts = append(opts, slatemplate.WithAvailabilityPercent(*model.AvailabilityPercent))
	}
	return slatemplate.New(model.Name, opts...), nil
}

func ToDBContract(c *contract.Contract) models.Contract {
	m := models.Contract{
		ID:            c.ID().String(),
		TenantID:      c.TenantID().String(),
		Code:          c.Code(),
		ProviderID:    c.ProviderID().String(),
		ConsumerID:    c.ConsumerID().String(),
		StartDate:     c.StartDate(),
		EndDate:       c.EndDate(),
		ContractValue: c.Value(),
		Status:        c.Status(),
		Version:       c.Version(),
		CreatedAt:     c.CreatedAt(),
		UpdatedAt:     c.UpdatedAt(),
	}
	if templateID := c.SLATemplateID(); templateID != nil {
		s := templateID.String()
		m.SLATemplateID = &s
	}
	return m
}

func ToDomainContract(model models.Contract) (*contract.Contract, error) {
	id, err := uuid.Parse(model.ID)
	if err != nil {
		return nil, errors.Wrap(err, fmt.Sprintf("failed to parse contract UUID: %s", model.ID))
	}
	tenantID, err := uuid.Parse(model.TenantID)
	if err != nil {
		return nil, errors.Wrap(err, fmt.Sprintf("failed to parse tenant UUID: %s", model.TenantID))
	}
	providerID, err := uuid.Parse(model.ProviderID)
	if err != nil {
		return nil, errors.Wrap(err, fmt.Sprintf("failed to parse provider UUID: %s", model.ProviderID))
	}
	consumerID, err := uuid.Parse(model.ConsumerID)
	if err != nil {
		return nil, errors.Wrap(err, fmt.Sprintf("failed to parse consumer UUID: %s", model.ConsumerID))
	}
	opts := []contract.Option{
		contract.WithID(id),
		contract.WithTenantID(tenantID),
		contract.WithStartDate(model.StartDate),
		contract.WithValue(model.ContractValue),
		contract.WithStatus(model.Status),
		contract.WithVersion(model.Version),
		contract.WithCreatedAt(model.CreatedAt),
		contract.WithUpdatedAt(model.UpdatedAt),
	}
	if model.SLATemplateID != nil {
		templateID, err := uuid.Parse(*model.SLATemplateID)
		if err != nil {
			return nil, errors.Wrap(err, fmt.Sprintf("failed to parse template UUID: %s", *model.SLATemplateID))
		}
		opts = append(opts, contract.WithSLATemplateID(templateID))
	}
	if model.EndDate != nil {
		opts = append(opts, contract.WithEndDate(*model.EndDate))
	}
	return contract.New(model.Code, providerID, consumerID, opts...), nil
}

func ToDBRequest(r *servicerequest.ServiceRequest) models.ServiceRequest {
	return models.ServiceRequest{
		ID:              r.ID().String(),
		TenantID:        r.TenantID().String(),
		ContractID:      r.ContractID().String(),
		Source:          string(r.Source()),
		ExternalID:      r.ExternalID(),
		Title:           r.Title(),
		Priority:        r.Priority(),
		OpenedAt:        r.OpenedAt(),
		FirstResponseAt: r.FirstResponseAt(),
		ResolvedAt:      r.ResolvedAt(),
		Status:          r.Status(),
		Version:         r.Version(),
		CreatedAt:       r.CreatedAt(),
		UpdatedAt:       r.UpdatedAt(),
	}
}

func ToDomainRequest(model models.ServiceRequest) (*servicerequest.ServiceRequest, error) {
	id, err := uuid.Parse(model.ID)
	if err != nil {
		return nil, errors.Wrap(err, fmt.Sprintf("failed to parse request UUID: %s", model.ID))
	}
	tenantID, err := uuid.Parse(model.TenantID)
	if err != nil {
		return nil, errors.Wrap(err, fmt.Sprintf("failed to parse tenant UUID: %s", model.TenantID))
	}
	contractID, err := uuid.Parse(model.ContractID)
	if err != nil {
		return nil, errors.Wrap(err, fmt.Sprintf("failed to parse contract UUID: %s", model.ContractID))
	}
	opts := []servicerequest.Option{
		servicerequest.WithID(id),
		servicerequest.WithTenantID(tenantID),
		servicerequest.WithSource(servicerequest.Source(model.Source)),
		servicerequest.WithExternalID(model.ExternalID),
		servicerequest.WithPriority(model.Priority),
		servicerequest.WithOpenedAt(model.OpenedAt),
		servicerequest.WithStatus(servicerequest.Status(model.Status)),
		servicerequest.WithVersion(model.Version),
		servicerequest.WithCreatedAt(model.CreatedAt),
		servicerequest.WithUpdatedAt(model.UpdatedAt),
	}
	if model.FirstResponseAt != nil {
		opts = append(opts, servicerequest.WithFirstResponseAt(*model.FirstResponseAt))
	}
	if model.ResolvedAt != nil {
		opts = append(opts, servicerequest.WithResolvedAt(*model.ResolvedAt))
	}
	return servicerequest.New(model.Title, contractID, opts...), nil
}

func ToDBBreach(b *breach.Breach) (models.SLABreachEvent, error) {
	details, err := json.Marshal(b.Details())
	if err != nil {
		return models.SLABreachEvent{}, errors.Wrap(err, "failed to encode breach details")
	}
	return models.SLABreachEvent{
		ID:         b.ID().String(),
		TenantID:   b.TenantID().String(),
		RequestID:  b.RequestID().String(),
		BreachType: string(b.Kind()),
		BreachAt:   b.BreachAt(),
		Details:    details,
	}, nil
}

func ToDomainBreach(model models.SLABreachEvent) (*breach.Breach, error) {
	id, err := uuid.Parse(model.ID)
	if err != nil {
		return nil, errors.Wrap(err, fmt.Sprintf("failed to parse breach UUID: %s", model.ID))
	}
	tenantID, err := uuid.Parse(model.TenantID)
	if err != nil {
		return nil, errors.Wrap(err, fmt.Sprintf("failed to parse tenant UUID: %s", model.TenantID))
	}
	requestID, err := uuid.Parse(model.RequestID)
	if err != nil {
		return nil, errors.Wrap(err, fmt.Sprintf("failed to parse request UUID: %s", model.RequestID))
	}
	details := map[string]any{}
	if len(model.Details) > 0 {
		if err := json.Unmarshal(model.Details, &details); err != nil {
			return nil, errors.Wrap(err, "failed to decode breach details")
		}
	}
	return breach.New(
		tenantID,
		requestID,
		breach.Kind(model.BreachType),
		breach.WithID(id),
		breach.WithBreachAt(model.BreachAt),
		breach.WithDetails(details),
	), nil
}

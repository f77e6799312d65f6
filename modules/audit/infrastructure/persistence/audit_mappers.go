package persistence

import (
	"encoding/json"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/google/uuid"

	"github.com/orgmesh/platform-sdk/modules/audit/domain/aggregates/auditevent"
	"github.com/orgmesh/platform-sdk/modules/audit/infrastructure/persistence/models"
)

func ToDBAuditEvent(e *auditevent.AuditEvent) (models.AuditEvent, error) {
	payload, err := json.Marshal(e.Payload())
	if err != nil {
		return models.AuditEvent{}, errors.Wrap(err, "failed to encode audit payload")
	}
	return models.AuditEvent{
		ID:         e.ID().String(),
		TenantID:   e.TenantID().String(),
		Action:     string(e.Action()),
		EntityType: e.EntityType(),
		EntityID:   e.EntityID(),
		Summary:    e.Summary(),
		Payload:    payload,
		CreatedAt:  e.CreatedAt(),
	}, nil
}

func ToDomainAuditEvent(model models.AuditEvent) (*auditevent.AuditEvent, error) {
	id, err := uuid.Parse(model.ID)
	if err != nil {
		return nil, errors.Wrap(err, fmt.Sprintf("failed to parse audit event UUID: %s", model.ID))
	}
	tenantID, err := uuid.Parse(model.TenantID)
	if err != nil {
		return nil, errors.Wrap(err, fmt.Sprintf("failed to parse tenant UUID: %s", model.TenantID))
	}
	payload := map[string]any{}
	if len(model.Payload) > 0 {
		if err := json.Unmarshal(model.Payload, &payload); err != nil {
			return nil, errors.Wrap(err, "failed to decode audit payload")
		}
	}
	return auditevent.New(
		tenantID,
		auditevent.Action(model.Action),
		model.EntityType,
		model.EntityID,
		model.Summary,
		auditevent.WithID(id),
		auditevent.WithPayload(payload),
		auditevent.WithCreatedAt(model.CreatedAt),
	), nil
}

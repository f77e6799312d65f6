package persistence

import (
	"encoding/json"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/google/uuid"

	"github.com/orgmesh/platform-sdk/modules/workflows/domain/aggregates/workflow"
	"github.com/orgmesh/platform-sdk/modules/workflows/infrastructure/persistence/models"
)

func ToDBDefinition(definition *workflow.Definition) models.WorkflowDefinition {
	return models.WorkflowDefinition{
		ID:         definition.ID().String(),
		TenantID:   definition.TenantID().String(),
		Name:       definition.Name(),
		EntityType: string(definition.EntityType()),
		IsActive:   definition.IsActive(),
		CreatedAt:  definition.CreatedAt(),
		UpdatedAt:  definition.UpdatedAt(),
	}
}

func ToDBState(definitionID uuid.UUID, state workflow.State) models.WorkflowState {
	return models.WorkflowState{
		ID:           state.ID().String(),
		DefinitionID: definitionID.String(),
		Code:         state.Code(),
		Name:         state.Name(),
		Rank:         state.Order(),
		IsInitial:    state.IsInitial(),
		IsTerminal:   state.IsTerminal(),
	}
}

func ToDBTransition(definitionID uuid.UUID, transition workflow.Transition) models.WorkflowTransition {
	return models.WorkflowTransition{
		ID:           transition.ID().String(),
		DefinitionID: definitionID.String(),
		FromCode:     transition.FromCode(),
		ToCode:       transition.ToCode(),
		Name:         transition.Name(),
	}
}

func ToDBStateAction(definitionID uuid.UUID, action workflow.StateAction) (models.WorkflowStateAction, error) {
	raw, err := json.Marshal(action.Config())
	if err != nil {
		return models.WorkflowStateAction{}, errors.Wrap(err, "failed to encode action config")
	}
	return models.WorkflowStateAction{
		ID:           action.ID().String(),
		DefinitionID: definitionID.String(),
		StateCode:    action.StateCode(),
		Name:         action.Name(),
		ActionKind:   string(action.Kind()),
		Config:       raw,
		IsActive:     action.IsActive(),
	}, nil
}

func toDomainState(model models.WorkflowState) (workflow.State, error) {
	id, err := uuid.Parse(model.ID)
	if err != nil {
		return workflow.State{}, errors.Wrap(err, fmt.Sprintf("failed to parse state UUID: %s", model.ID))
	}
	return workflow.NewState(
		model.Code,
		model.Name,
		workflow.StateWithID(id),
		workflow.StateWithOrder(model.Rank),
		workflow.StateWithInitial(model.IsInitial),
		workflow.StateWithTerminal(model.IsTerminal),
	), nil
}

func toDomainTransition(model models.WorkflowTransition) (workflow.Transition, error) {
	id, err := uuid.Parse(model.ID)
	if err != nil {
		return workflow.Transition{}, errors.Wrap(err, fmt.Sprintf("failed to parse transition UUID: %s", model.ID))
	}
	return workflow.TransitionWithID(id, model.FromCode, model.ToCode, model.Name), nil
}

func toDomainStateAction(model models.WorkflowStateAction) (workflow.StateAction, error) {
	id, err := uuid.Parse(model.ID)
	if err != nil {
		return workflow.StateAction{}, errors.Wrap(err, fmt.Sprintf("failed to parse action UUID: %s", model.ID))
	}
	config, err := workflow.DecodeActionConfig(workflow.ActionKind(model.ActionKind), model.Config)
	if err != nil {
		return workflow.StateAction{}, err
	}
	return workflow.NewStateAction(
		model.StateCode,
		model.Name,
		config,
		workflow.ActionWithID(id),
		workflow.ActionWithActive(model.IsActive),
	)
}

func ToDomainDefinition(
	model models.WorkflowDefinition,
	stateModels []models.WorkflowState,
	transitionModels []models.WorkflowTransition,
	actionModels []models.WorkflowStateAction,
) (*workflow.Definition, error) {
	id, err := uuid.Parse(model.ID)
	if err != nil {
		return nil, errors.Wrap(err, fmt.Sprintf("failed to parse definition UUID: %s", model.ID))
	}
	tenantID, err := uuid.Parse(model.TenantID)
	if err != nil {
		return nil, errors.Wrap(err, fmt.Sprintf("failed to parse tenant UUID: %s", model.TenantID))
	}

	states := make([]workflow.State, 0, len(stateModels))
	for _, m := range stateModels {
		state, err := toDomainState(m)
		if err != nil {
			return nil, err
		}
		states = append(states, state)
	}

	transitions := make([]workflow.Transition, 0, len(transitionModels))
	for _, m := range transitionModels {
		transition, err := toDomainTransition(m)
		if err != nil {
			return nil, err
		}
		transitions = append(transitions, transition)
	}

	actions := make([]workflow.StateAction, 0, len(actionModels))
	for _, m := range actionModels {
		action, err := toDomainStateAction(m)
		if err != nil {
			return nil, err
		}
		actions = append(actions, action)
	}

	return workflow.New(
		model.Name,
		workflow.EntityType(model.EntityType),
		workflow.WithID(id),
		workflow.WithTenantID(tenantID),
		workflow.WithIsActive(model.IsActive),
		workflow.WithStates(states...),
		workflow.WithTransitions(transitions...),
		workflow.WithActions(actions...),
		workflow.WithCreatedAt(model.CreatedAt),
		workflow.WithUpdatedAt(model.UpdatedAt),
	), nil
}

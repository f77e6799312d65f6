package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/orgmesh/platform-sdk/modules/workflows/domain/aggregates/workflow"
	"github.com/orgmesh/platform-sdk/pkg/composables"
	"github.com/orgmesh/platform-sdk/pkg/eventbus"
	"github.com/orgmesh/platform-sdk/pkg/notifications"
)

type WorkflowServiceConfig struct {
	Repo      workflow.Repository
	Entities  workflow.EntityStore
	Notifier  notifications.Notifier
	Publisher eventbus.EventBus
	Logger    *logrus.Entry
}

// WorkflowService is the engine's caller API: definition lookups, transition
// authorization and the entity-transition operation itself.
type WorkflowService struct {
	repo      workflow.Repository
	entities  workflow.EntityStore
	notifier  notifications.Notifier
	publisher eventbus.EventBus
	logger    *logrus.Entry
}

func NewWorkflowService(cfg WorkflowServiceConfig) *WorkflowService {
	logger := cfg.Logger
	if logger == nil {
		l := logrus.New()
		l.SetLevel(logrus.PanicLevel)
		logger = logrus.NewEntry(l)
	}
	return &WorkflowService{
		repo:      cfg.Repo,
		entities:  cfg.Entities,
		notifier:  cfg.Notifier,
		publisher: cfg.Publisher,
		logger:    logger,
	}
}

func (s *WorkflowService) Count(ctx context.Context) (int64, error) {
	return composables.InTenantTxResult(ctx, func(txCtx context.Context) (int64, error) {
		return s.repo.Count(txCtx)
	})
}

func (s *WorkflowService) GetAll(ctx context.Context) ([]*workflow.Definition, error) {
	return composables.InTenantTxResult(ctx, func(txCtx context.Context) ([]*workflow.Definition, error) {
		return s.repo.GetAll(txCtx)
	})
}

func (s *WorkflowService) GetByID(ctx context.Context, id uuid.UUID) (*workflow.Definition, error) {
	return composables.InTenantTxResult(ctx, func(txCtx context.Context) (*workflow.Definition, error) {
		return s.repo.GetByID(txCtx, id)
	})
}

// ActiveWorkflow returns the unique active definition for the entity type,
// or workflow.ErrDefinitionNotFound when none is configured.
func (s *WorkflowService) ActiveWorkflow(ctx context.Context, entityType workflow.EntityType) (*workflow.Definition, error) {
	return composables.InTenantTxResult(ctx, func(txCtx context.Context) (*workflow.Definition, error) {
		return s.repo.GetActive(txCtx, entityType)
	})
}

// InitialStateCode returns the code used to seed new entities: the
// lowest-order initial state of the active definition, else the caller's
// fallback.
func (s *WorkflowService) InitialStateCode(ctx context.Context, entityType workflow.EntityType, fallback string) (string, error) {
	definition, err := s.ActiveWorkflow(ctx, entityType)
	if errors.Is(err, workflow.ErrDefinitionNotFound) {
		return fallback, nil
	}
	if err != nil {
		return "", err
	}
	initial, ok := definition.InitialState()
	if !ok {
		return fallback, nil
	}
	return initial.Code(), nil
}

// StateChoices returns the ordered (code, name) pairs of the active
// definition's states. Empty when no definition is active; the caller
// supplies its own default choice list in that case.
func (s *WorkflowService) StateChoices(ctx context.Context, entityType workflow.EntityType) ([]workflow.Choice, error) {
	definition, err := s.ActiveWorkflow(ctx, entityType)
	if errors.Is(err, workflow.ErrDefinitionNotFound) {
		return []workflow.Choice{}, nil
	}
	if err != nil {
		return nil, err
	}
	return definition.StateChoices(), nil
}

// CanTransition reports whether the status change is legal under the active
// workflow. Without an active definition every transition is permitted and
// the status degrades to a free-form field.
func (s *WorkflowService) CanTransition(ctx context.Context, entityType workflow.EntityType, current, target string) (bool, error) {
	definition, err := s.ActiveWorkflow(ctx, entityType)
	if errors.Is(err, workflow.ErrDefinitionNotFound) {
		return true, nil
	}
	if err != nil {
		return false, err
	}
	return definition.CanTransition(current, target), nil
}

// Transition moves the entity into the target state: authorization, the
// status write and the state-action batch share one transaction scope, so
// an action failure rolls the status change back too.
func (s *WorkflowService) Transition(ctx context.Context, entity workflow.Entity, targetCode string) error {
	allowed, err := s.CanTransition(ctx, entity.EntityType(), entity.Status(), targetCode)
	if err != nil {
		return err
	}
	if !allowed {
		return errors.Wrapf(workflow.ErrIllegalTransition, "%s -> %s", entity.Status(), targetCode)
	}

	from := entity.Status()
	err = composables.InTenantTx(ctx, func(txCtx context.Context) error {
		if err := s.entities.UpdateStatus(txCtx, entity, targetCode, time.Now()); err != nil {
			return err
		}
		return s.executeStateActions(txCtx, entity, targetCode)
	})
	if err != nil {
		return err
	}

	if s.publisher != nil {
		ev, evErr := workflow.NewTransitionedEvent(ctx, entity, from, targetCode)
		if evErr == nil {
			s.publisher.Publish(ev)
		}
	}
	return nil
}

// ExecuteStateActions runs the active actions bound to the target state.
// Exposed for callers that persist status themselves; Transition already
// invokes it inside its own transaction scope.
func (s *WorkflowService) ExecuteStateActions(ctx context.Context, entity workflow.Entity, targetCode string) error {
	return composables.InTenantTx(ctx, func(txCtx context.Context) error {
		return s.executeStateActions(txCtx, entity, targetCode)
	})
}

func (s *WorkflowService) executeStateActions(ctx context.Context, entity workflow.Entity, targetCode string) error {
	definition, err := s.repo.GetActive(ctx, entity.EntityType())
	if errors.Is(err, workflow.ErrDefinitionNotFound) {
		return nil
	}
	if err != nil {
		return err
	}

	for _, action := range definition.ActionsForState(targetCode) {
		if err := s.executeAction(ctx, entity, action, targetCode); err != nil {
			return errors.Wrapf(workflow.ErrActionExecution, "action %q: %v", action.Name(), err)
		}
	}
	return nil
}

func (s *WorkflowService) executeAction(ctx context.Context, entity workflow.Entity, action workflow.StateAction, targetCode string) error {
	switch cfg := action.Config().(type) {
	case workflow.NotificationConfig:
		subject := cfg.Subject
		if subject == "" {
			subject = fmt.Sprintf("Workflow action: %s", action.Name())
		}
		message := cfg.Message
		if message == "" {
			message = fmt.Sprintf("State changed to %s", targetCode)
		}
		// Dispatch is best-effort and never fails the transition.
		if !s.notifier.SendAlert(ctx, subject, message, cfg.Recipients) {
			s.logger.WithFields(logrus.Fields{
				"action": action.Name(),
				"state":  targetCode,
			}).Warn("workflows: notification dispatch failed")
		}
		return nil
	case workflow.FieldUpdateConfig:
		ok, err := s.entities.SetField(ctx, entity, cfg.Field, cfg.Value)
		if err != nil {
			return err
		}
		if !ok {
			// A field the entity does not expose is a configuration
			// mistake, not a transition failure.
			s.logger.WithFields(logrus.Fields{
				"action": action.Name(),
				"field":  cfg.Field,
			}).Debug("workflows: entity has no such field, skipping")
		}
		return nil
	default:
		return errors.Errorf("unknown action kind: %s", action.Kind())
	}
}

// SaveDefinition persists an administrator-edited definition aggregate.
func (s *WorkflowService) SaveDefinition(ctx context.Context, definition *workflow.Definition) (*workflow.Definition, error) {
	saved, err := composables.InTenantTxResult(ctx, func(txCtx context.Context) (*workflow.Definition, error) {
		return s.repo.Save(txCtx, definition)
	})
	if err != nil {
		return nil, err
	}
	if s.publisher != nil {
		s.publisher.Publish(workflow.NewDefinitionSavedEvent(saved))
	}
	return saved, nil
}

func (s *WorkflowService) DeleteDefinition(ctx context.Context, id uuid.UUID) error {
	return composables.InTenantTx(ctx, func(txCtx context.Context) error {
		return s.repo.Delete(txCtx, id)
	})
}

// RenderFlowchart renders the active definition's transitions as a Mermaid
// flowchart for admin screens.
func (s *WorkflowService) RenderFlowchart(ctx context.Context, entityType workflow.EntityType) (string, error) {
	definition, err := s.ActiveWorkflow(ctx, entityType)
	if err != nil {
		return "", err
	}

	lines := []string{"flowchart LR"}
	for _, t := range definition.Transitions() {
		lines = append(lines, fmt.Sprintf("    %s -->|%s| %s", t.FromCode(), t.Name(), t.ToCode()))
	}
	if len(lines) == 1 {
		lines = append(lines, "    EMPTY[No transitions configured]")
	}
	return strings.Join(lines, "\n"), nil
}

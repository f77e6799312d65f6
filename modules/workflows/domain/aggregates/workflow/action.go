package workflow

import (
	"encoding/json"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
)

type ActionKind string

const (
	ActionSendNotification ActionKind = "SEND_NOTIFICATION"
	ActionUpdateField      ActionKind = "UPDATE_FIELD"
)

// ActionConfig is the closed set of typed payloads a state action can
// carry, one variant per kind. Persisted as JSON, decoded back by kind.
type ActionConfig interface {
	Kind() ActionKind
	Validate() error
}

// NotificationConfig configures a SEND_NOTIFICATION action. Empty subject
// and message fall back to values derived from the action name at
// execution time.
type NotificationConfig struct {
	Subject    string   `json:"subject,omitempty"`
	Message    string   `json:"message,omitempty"`
	Recipients []string `json:"recipients,omitempty"`
}

func (NotificationConfig) Kind() ActionKind {
	return ActionSendNotification
}

func (NotificationConfig) Validate() error {
	return nil
}

// FieldUpdateConfig configures an UPDATE_FIELD action. The value is written
// as configured, without coercion; a field name the target entity does not
// expose is ignored at execution time.
type FieldUpdateConfig struct {
	Field string `json:"field"`
	Value any    `json:"value"`
}

func (FieldUpdateConfig) Kind() ActionKind {
	return ActionUpdateField
}

func (c FieldUpdateConfig) Validate() error {
	if c.Field == "" {
		return errors.New("update field action requires a field name")
	}
	return nil
}

// DecodeActionConfig restores a typed config from its persisted JSON form.
// Unknown keys are dropped.
func DecodeActionConfig(kind ActionKind, raw []byte) (ActionConfig, error) {
	if len(raw) == 0 {
		raw = []byte("{}")
	}
	switch kind {
	case ActionSendNotification:
		var c NotificationConfig
		if err := json.Unmarshal(raw, &c); err != nil {
			return nil, errors.Wrap(err, "failed to decode notification config")
		}
		return c, nil
	case ActionUpdateField:
		var c FieldUpdateConfig
		if err := json.Unmarshal(raw, &c); err != nil {
			return nil, errors.Wrap(err, "failed to decode field update config")
		}
		return c, nil
	default:
		return nil, errors.Errorf("unknown action kind: %s", kind)
	}
}

// StateAction binds a side effect to entering a state. Executed only when
// an entity transitions into the bound state.
type StateAction struct {
	id        uuid.UUID
	stateCode string
	name      string
	config    ActionConfig
	isActive  bool
}

type StateActionOption func(*StateAction)

func ActionWithID(id uuid.UUID) StateActionOption {
	return func(a *StateAction) {
		a.id = id
	}
}

func ActionWithActive(isActive bool) StateActionOption {
	return func(a *StateAction) {
		a.isActive = isActive
	}
}

func NewStateAction(stateCode, name string, config ActionConfig, opts ...StateActionOption) (StateAction, error) {
	if config == nil {
		return StateAction{}, errors.New("state action requires a config")
	}
	if err := config.Validate(); err != nil {
		return StateAction{}, err
	}
	a := StateAction{
		id:        uuid.New(),
		stateCode: stateCode,
		name:      name,
		config:    config,
		isActive:  true,
	}
	for _, opt := range opts {
		opt(&a)
	}
	return a, nil
}

func (a StateAction) ID() uuid.UUID {
	return a.id
}

func (a StateAction) StateCode() string {
	return a.stateCode
}

func (a StateAction) Name() string {
	return a.name
}

func (a StateAction) Kind() ActionKind {
	return a.config.Kind()
}

func (a StateAction) Config() ActionConfig {
	return a.config
}

func (a StateAction) IsActive() bool {
	return a.isActive
}

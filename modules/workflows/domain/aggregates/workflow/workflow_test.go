package workflow_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/orgmesh/platform-sdk/modules/workflows/domain/aggregates/workflow"
)

func contractLifecycle(t *testing.T) *workflow.Definition {
	t.Helper()
	return workflow.New(
		"Contract Lifecycle",
		workflow.EntityTypeContract,
		workflow.WithStates(
			workflow.NewState("DRAFT", "Draft", workflow.StateWithOrder(1), workflow.StateWithInitial(true)),
			workflow.NewState("ACTIVE", "Active", workflow.StateWithOrder(2)),
			workflow.NewState("CLOSED", "Closed", workflow.StateWithOrder(3), workflow.StateWithTerminal(true)),
		),
		workflow.WithTransitions(
			workflow.NewTransition("DRAFT", "ACTIVE", "Activate"),
			workflow.NewTransition("ACTIVE", "CLOSED", "Close"),
		),
	)
}

func TestDefinition_CanTransition(t *testing.T) {
	d := contractLifecycle(t)

	assert.True(t, d.CanTransition("DRAFT", "ACTIVE"))
	assert.True(t, d.CanTransition("ACTIVE", "CLOSED"))

	assert.False(t, d.CanTransition("DRAFT", "CLOSED"), "no edge skips a state")
	assert.False(t, d.CanTransition("ACTIVE", "DRAFT"), "edges are directed")
	assert.False(t, d.CanTransition("CLOSED", "ACTIVE"), "terminal states have no outgoing edges")
}

func TestDefinition_CanTransition_SameCode(t *testing.T) {
	d := contractLifecycle(t)

	assert.True(t, d.CanTransition("DRAFT", "DRAFT"))
	assert.True(t, d.CanTransition("CLOSED", "CLOSED"))
	// Self-transition is a no-op even for codes the definition never
	// declared, such as statuses written before the workflow existed.
	assert.True(t, d.CanTransition("LEGACY", "LEGACY"))
}

func TestDefinition_CanTransition_UnknownCodes(t *testing.T) {
	d := contractLifecycle(t)

	assert.False(t, d.CanTransition("LEGACY", "ACTIVE"))
	assert.False(t, d.CanTransition("DRAFT", "NOPE"))
}

func TestDefinition_States_Ordering(t *testing.T) {
	d := workflow.New(
		"Ordering",
		workflow.EntityTypeRequest,
		workflow.WithStates(
			workflow.NewState("B", "Beta", workflow.StateWithOrder(2)),
			workflow.NewState("C", "Alpha", workflow.StateWithOrder(2)),
			workflow.NewState("A", "First", workflow.StateWithOrder(1), workflow.StateWithInitial(true)),
		),
	)

	states := d.States()
	require.Len(t, states, 3)
	assert.Equal(t, "A", states[0].Code())
	assert.Equal(t, "C", states[1].Code(), "equal rank falls back to name order")
	assert.Equal(t, "B", states[2].Code())

	initial, ok := d.InitialState()
	require.True(t, ok)
	assert.Equal(t, "A", initial.Code())
}

func TestDefinition_InitialState_Missing(t *testing.T) {
	d := workflow.New(
		"No Initial",
		workflow.EntityTypeRequest,
		workflow.WithStates(workflow.NewState("X", "X")),
	)
	_, ok := d.InitialState()
	assert.False(t, ok)
}

func TestDefinition_StateChoices(t *testing.T) {
	d := contractLifecycle(t)
	choices := d.StateChoices()
	require.Len(t, choices, 3)
	assert.Equal(t, workflow.Choice{Code: "DRAFT", Name: "Draft"}, choices[0])
	assert.Equal(t, workflow.Choice{Code: "CLOSED", Name: "Closed"}, choices[2])
}

func TestDefinition_ActionsForState(t *testing.T) {
	notify, err := workflow.NewStateAction("ACTIVE", "notify-owner", workflow.NotificationConfig{
		Recipients: []string{"ops@example.com"},
	})
	require.NoError(t, err)
	disabled, err := workflow.NewStateAction("ACTIVE", "archive", workflow.FieldUpdateConfig{
		Field: "priority", Value: "LOW",
	}, workflow.ActionWithActive(false))
	require.NoError(t, err)
	bump, err := workflow.NewStateAction("ACTIVE", "bump-priority", workflow.FieldUpdateConfig{
		Field: "priority", Value: "HIGH",
	})
	require.NoError(t, err)

	d := workflow.New(
		"Actions",
		workflow.EntityTypeRequest,
		workflow.WithActions(notify, disabled, bump),
	)

	actions := d.ActionsForState("ACTIVE")
	require.Len(t, actions, 2, "inactive actions are excluded")
	assert.Equal(t, "bump-priority", actions[0].Name(), "actions run in name order")
	assert.Equal(t, "notify-owner", actions[1].Name())

	assert.Empty(t, d.ActionsForState("CLOSED"))
}

func TestNewStateAction_Validation(t *testing.T) {
	_, err := workflow.NewStateAction("ACTIVE", "broken", workflow.FieldUpdateConfig{})
	assert.Error(t, err, "field update without a field name is rejected")

	_, err = workflow.NewStateAction("ACTIVE", "nil-config", nil)
	assert.Error(t, err)
}

func TestDecodeActionConfig(t *testing.T) {
	cfg, err := workflow.DecodeActionConfig(workflow.ActionSendNotification, []byte(`{"subject":"s","recipients":["a@b.c"]}`))
	require.NoError(t, err)
	notification, ok := cfg.(workflow.NotificationConfig)
	require.True(t, ok)
	assert.Equal(t, "s", notification.Subject)
	assert.Equal(t, []string{"a@b.c"}, notification.Recipients)

	cfg, err = workflow.DecodeActionConfig(workflow.ActionUpdateField, []byte(`{"field":"priority","value":"HIGH"}`))
	require.NoError(t, err)
	update, ok := cfg.(workflow.FieldUpdateConfig)
	require.True(t, ok)
	assert.Equal(t, "priority", update.Field)
	assert.Equal(t, "HIGH", update.Value)

	cfg, err = workflow.DecodeActionConfig(workflow.ActionSendNotification, nil)
	require.NoError(t, err)
	assert.Equal(t, workflow.NotificationConfig{}, cfg, "empty payload decodes to zero config")

	_, err = workflow.DecodeActionConfig("WIPE_DISK", []byte(`{}`))
	assert.Error(t, err)
}

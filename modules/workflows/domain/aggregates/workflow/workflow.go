package workflow

import (
	"sort"
	"time"

	"github.com/google/uuid"
)

// EntityType selects which class of business object a definition governs.
type EntityType string

const (
	EntityTypeContract EntityType = "CONTRACT"
	EntityTypeRequest  EntityType = "REQUEST"
)

// Choice is a (code, display name) pair for rendering state selectors.
type Choice struct {
	Code string
	Name string
}

// Definition is the aggregate root for a configurable per-tenant state
// machine: a named set of states, the legal transitions between them and
// the side effects bound to entering each state.
type Definition struct {
	id          uuid.UUID
	tenantID    uuid.UUID
	name        string
	entityType  EntityType
	isActive    bool
	states      []State
	transitions []Transition
	actions     []StateAction
	createdAt   time.Time
	updatedAt   time.Time
}

type Option func(*Definition)

func WithID(id uuid.UUID) Option {
	return func(d *Definition) {
		d.id = id
	}
}

func WithTenantID(tenantID uuid.UUID) Option {
	return func(d *Definition) {
		d.tenantID = tenantID
	}
}

func WithIsActive(isActive bool) Option {
	return func(d *Definition) {
		d.isActive = isActive
	}
}

func WithStates(states ...State) Option {
	return func(d *Definition) {
		d.states = states
	}
}

func WithTransitions(transitions ...Transition) Option {
	return func(d *Definition) {
		d.transitions = transitions
	}
}

func WithActions(actions ...StateAction) Option {
	return func(d *Definition) {
		d.actions = actions
	}
}

func WithCreatedAt(createdAt time.Time) Option {
	return func(d *Definition) {
		d.createdAt = createdAt
	}
}

func WithUpdatedAt(updatedAt time.Time) Option {
	return func(d *Definition) {
		d.updatedAt = updatedAt
	}
}

func New(name string, entityType EntityType, opts ...Option) *Definition {
	d := &Definition{
		id:         uuid.New(),
		name:       name,
		entityType: entityType,
		isActive:   true,
		createdAt:  time.Now(),
		updatedAt:  time.Now(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

func (d *Definition) ID() uuid.UUID {
	return d.id
}

func (d *Definition) TenantID() uuid.UUID {
	return d.tenantID
}

func (d *Definition) Name() string {
	return d.name
}

func (d *Definition) EntityType() EntityType {
	return d.entityType
}

func (d *Definition) IsActive() bool {
	return d.isActive
}

func (d *Definition) CreatedAt() time.Time {
	return d.createdAt
}

func (d *Definition) UpdatedAt() time.Time {
	return d.updatedAt
}

// States returns the definition's states ordered by rank, then name.
func (d *Definition) States() []State {
	out := make([]State, len(d.states))
	copy(out, d.states)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Order() != out[j].Order() {
			return out[i].Order() < out[j].Order()
		}
		return out[i].Name() < out[j].Name()
	})
	return out
}

func (d *Definition) Transitions() []Transition {
	out := make([]Transition, len(d.transitions))
	copy(out, d.transitions)
	return out
}

func (d *Definition) StateByCode(code string) (State, bool) {
	for _, s := range d.states {
		if s.Code() == code {
			return s, true
		}
	}
	return State{}, false
}

// InitialState returns the lowest-order state flagged initial.
func (d *Definition) InitialState() (State, bool) {
	var (
		found   bool
		initial State
	)
	for _, s := range d.States() {
		if s.IsInitial() {
			initial = s
			found = true
			break
		}
	}
	return initial, found
}

// StateChoices returns the ordered (code, name) pairs of all states.
func (d *Definition) StateChoices() []Choice {
	states := d.States()
	choices := make([]Choice, 0, len(states))
	for _, s := range states {
		choices = append(choices, Choice{Code: s.Code(), Name: s.Name()})
	}
	return choices
}

// CanTransition reports whether target is reachable from current.
// A same-code transition is always permitted; anything else requires a
// stored edge. A current code no longer present in the definition can
// therefore only re-persist itself.
func (d *Definition) CanTransition(current, target string) bool {
	if current == target {
		return true
	}
	for _, t := range d.transitions {
		if t.FromCode() == current && t.ToCode() == target {
			return true
		}
	}
	return false
}

// ActionsForState returns the active actions bound to the given state code,
// in stable name order.
func (d *Definition) ActionsForState(code string) []StateAction {
	out := make([]StateAction, 0)
	for _, a := range d.actions {
		if a.StateCode() == code && a.IsActive() {
			out = append(out, a)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Name() < out[j].Name()
	})
	return out
}

func (d *Definition) Actions() []StateAction {
	out := make([]StateAction, len(d.actions))
	copy(out, d.actions)
	return out
}

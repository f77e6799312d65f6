package workflow

import "github.com/google/uuid"

// State is a named position in a workflow. The code is the stable value
// stored on business entities; display name and order are presentational.
type State struct {
	id         uuid.UUID
	code       string
	name       string
	order      int
	isInitial  bool
	isTerminal bool
}

type StateOption func(*State)

func StateWithID(id uuid.UUID) StateOption {
	return func(s *State) {
		s.id = id
	}
}

func StateWithOrder(order int) StateOption {
	return func(s *State) {
		s.order = order
	}
}

func StateWithInitial(isInitial bool) StateOption {
	return func(s *State) {
		s.isInitial = isInitial
	}
}

func StateWithTerminal(isTerminal bool) StateOption {
	return func(s *State) {
		s.isTerminal = isTerminal
	}
}

func NewState(code, name string, opts ...StateOption) State {
	s := State{
		id:    uuid.New(),
		code:  code,
		name:  name,
		order: 1,
	}
	for _, opt := range opts {
		opt(&s)
	}
	return s
}

func (s State) ID() uuid.UUID {
	return s.id
}

func (s State) Code() string {
	return s.code
}

func (s State) Name() string {
	return s.name
}

func (s State) Order() int {
	return s.order
}

func (s State) IsInitial() bool {
	return s.isInitial
}

func (s State) IsTerminal() bool {
	return s.isTerminal
}

// Transition is a directed edge between two state codes within one
// definition, carrying a human-readable name.
type Transition struct {
	id       uuid.UUID
	fromCode string
	toCode   string
	name     string
}

func NewTransition(fromCode, toCode, name string) Transition {
	return Transition{
		id:       uuid.New(),
		fromCode: fromCode,
		toCode:   toCode,
		name:     name,
	}
}

func TransitionWithID(id uuid.UUID, fromCode, toCode, name string) Transition {
	return Transition{
		id:       id,
		fromCode: fromCode,
		toCode:   toCode,
		name:     name,
	}
}

func (t Transition) ID() uuid.UUID {
	return t.id
}

func (t Transition) FromCode() string {
	return t.fromCode
}

func (t Transition) ToCode() string {
	return t.toCode
}

func (t Transition) Name() string {
	return t.name
}

package workflow

import "github.com/go-faster/errors"

var (
	ErrDefinitionNotFound = errors.New("workflow definition not found")
	ErrIllegalTransition  = errors.New("illegal transition")
	ErrVersionConflict    = errors.New("entity version conflict")
	ErrActionExecution    = errors.New("state action execution failed")
)

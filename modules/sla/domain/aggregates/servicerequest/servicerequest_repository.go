package servicerequest

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
)

var ErrRequestNotFound = errors.New("service request not found")

// OpenRequest is the breach evaluator's read model: an unresolved request
// joined with its contract code and the hour targets of the contract's SLA
// template. Targets stay nil when the contract has no template or the
// template leaves them unset.
type OpenRequest struct {
	Request         *ServiceRequest
	ContractCode    string
	HasTemplate     bool
	ResponseHours   *int
	ResolutionHours *int
}

type Repository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*ServiceRequest, error)
	GetAll(ctx context.Context) ([]*ServiceRequest, error)
	Save(ctx context.Context, request *ServiceRequest) error
	Delete(ctx context.Context, id uuid.UUID) error
	// ListOpenWithTargets returns every OPEN or IN_PROGRESS request across
	// all tenants, joined with SLA targets. The breach evaluator is a
	// platform-wide pass, so this read deliberately ignores the tenant in
	// context.
	ListOpenWithTargets(ctx context.Context) ([]OpenRequest, error)
}

package ports

import (
	"context"

	"github.com/bgf/dashboard-api/internal/core/domain"
)

// CreateRequestInput carries a new request submission.
type CreateRequestInput struct {
	Title          string
	Description    string
	Type           domain.RequestType
	Amount         *float64
	Requester      domain.Identity
	RequesterEmail string
	IdempotencyKey string
}

// CreateRequestResult is returned after submitting a request.
type CreateRequestResult struct {
	Request *domain.Request
	// AlreadyExisted is true when the Idempotency-Key matched an earlier submission.
	AlreadyExisted bool
}

// UpdateRequestInput carries an edit by the requester. Nil fields are left as is.
type UpdateRequestInput struct {
	Title       *string
	Description *string
	Amount      *float64
}

// ListRequestsInput carries the list endpoint parameters.
type ListRequestsInput struct {
	Caller     domain.Identity
	Status     string
	Type       string
	AssignedTo string
	Search     string
	Page       int
	Limit      int
}

// ListRequestsResult is a page of requests.
type ListRequestsResult struct {
	Items      []*domain.Request
	Total      int64
	Page       int
	Limit      int
	TotalPages int
}

// RequestDetail is a request with its workflow state.
type RequestDetail struct {
	Request    *domain.Request
	Workflow   *domain.WorkflowRecord
	NextStages []domain.RequestStatus
	Progress   *int
}

// RequestService defines use cases for requests.
type RequestService interface {
	Create(ctx context.Context, in CreateRequestInput) (*CreateRequestResult, error)
	Get(ctx context.Context, caller domain.Identity, id string) (*RequestDetail, error)
	List(ctx context.Context, in ListRequestsInput) (*ListRequestsResult, error)
	Update(ctx context.Context, caller domain.Identity, id string, in UpdateRequestInput) (*domain.Request, error)
	AddDocument(ctx context.Context, caller domain.Identity, id string, doc domain.Document) error
	Delete(ctx context.Context, caller domain.Identity, id string) error
}

package ports

import (
	"context"
	"time"

	"github.com/bgf/dashboard-api/internal/core/domain"
)

// ListRequestsFilter carries all query parameters for listing requests.
type ListRequestsFilter struct {
	RequesterID string // empty = no filter (staff); non-empty = scoped to requester
	Status      string
	Type        string
	AssignedTo  string
	Search      string // partial match on ticket_number or title
	Page        int    // 1-based
	Limit       int    // capped at 100 by the service
}

// RequestSummary holds aggregate report figures.
type RequestSummary struct {
	Total          int64
	ByStatus       map[string]int64
	ByType         map[string]int64
	ApprovedAmount float64
	Pending        int64
}

// RequestRepository defines persistence for requests.
type RequestRepository interface {
	// Create returns domain.ErrDuplicateRequest when the ticket number or
	// idempotency key is already taken.
	Create(ctx context.Context, r *domain.Request) error
	FindByID(ctx context.Context, id string) (*domain.Request, error)
	FindByIdempotencyKey(ctx context.Context, key string) (*domain.Request, error)
	List(ctx context.Context, filter ListRequestsFilter) ([]*domain.Request, int64, error)
	Update(ctx context.Context, r *domain.Request) error
	SetAssignee(ctx context.Context, id, assignee string, at time.Time) error
	AddDocument(ctx context.Context, id string, doc domain.Document) error
	Delete(ctx context.Context, id string) error
	Summary(ctx context.Context) (*RequestSummary, error)
}

// WorkflowRepository persists workflow records and their append-only history.
type WorkflowRepository interface {
	Create(ctx context.Context, rec *domain.WorkflowRecord) error
	Find(ctx context.Context, requestID string) (*domain.WorkflowRecord, error)
	// Transition moves the workflow record and its request from
	// entry.PreviousStatus to entry.NewStatus and appends entry. Either all of
	// it is persisted or none of it. A record that is no longer at
	// entry.PreviousStatus yields domain.ErrInvalidTransition.
	Transition(ctx context.Context, entry *domain.HistoryEntry) error
	Assign(ctx context.Context, requestID, staffID string, at time.Time) error
	AppendHistory(ctx context.Context, entry *domain.HistoryEntry) error
	// History returns entries oldest first.
	History(ctx context.Context, requestID string) ([]domain.HistoryEntry, error)
	// LatestHistory returns nil without error when the request has no entries.
	LatestHistory(ctx context.Context, requestID string) (*domain.HistoryEntry, error)
	Delete(ctx context.Context, requestID string) error
}

// ActivityRepository persists the activity log.
type ActivityRepository interface {
	Insert(ctx context.Context, entry *domain.ActivityLog) error
	List(ctx context.Context, page, limit int) ([]domain.ActivityLog, int64, error)
}

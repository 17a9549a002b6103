package ports

import (
	"context"

	"github.com/bgf/dashboard-api/internal/core/domain"
)

// WorkflowService drives requests through their stage graphs.
type WorkflowService interface {
	GetNextPossibleStages(requestType domain.RequestType, currentStage domain.RequestStatus) []domain.RequestStatus
	UpdateStage(ctx context.Context, actor domain.Identity, requestID string, newStage domain.RequestStatus, details string) (*domain.WorkflowRecord, error)
	DelegateRequest(ctx context.Context, actor domain.Identity, requestID, staffID, reason string) error
	AddComment(ctx context.Context, actor domain.Identity, requestID, text string) error
	History(ctx context.Context, caller domain.Identity, requestID string) ([]domain.HistoryEntry, error)
}

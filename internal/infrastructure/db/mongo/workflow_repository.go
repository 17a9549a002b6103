package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/bgf/dashboard-api/internal/core/domain"
	"github.com/bgf/dashboard-api/internal/core/ports"
)

const (
	collectionWorkflows = "workflows"
	collectionHistory   = "request_history"
)

// WorkflowRepository implements ports.WorkflowRepository using MongoDB.
// History lives in its own insert-only collection.
type WorkflowRepository struct {
	db *mongo.Database
}

// NewWorkflowRepository creates a new WorkflowRepository.
func NewWorkflowRepository(db *mongo.Database) *WorkflowRepository {
	return &WorkflowRepository{db: db}
}

var _ ports.WorkflowRepository = (*WorkflowRepository)(nil)

func (r *WorkflowRepository) workflows() *mongo.Collection { return r.db.Collection(collectionWorkflows) }
func (r *WorkflowRepository) history() *mongo.Collection   { return r.db.Collection(collectionHistory) }

func (r *WorkflowRepository) Create(ctx context.Context, rec *domain.WorkflowRecord) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	if _, err := r.workflows().InsertOne(ctx, rec); err != nil {
		return fmt.Errorf("insert workflow: %w", err)
	}
	return nil
}

func (r *WorkflowRepository) Find(ctx context.Context, requestID string) (*domain.WorkflowRecord, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var rec domain.WorkflowRecord
	if err := r.workflows().FindOne(ctx, bson.M{"request_id": requestID}).Decode(&rec); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrWorkflowNotFound
		}
		return nil, fmt.Errorf("find workflow: %w", err)
	}
	return &rec, nil
}

// Transition writes the history entry, then the workflow stage guarded on
// the previous stage, then the request status. A failed step undoes the
// earlier ones so a standalone mongod without transactions stays consistent.
func (r *WorkflowRepository) Transition(ctx context.Context, entry *domain.HistoryEntry) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	e := *entry
	e.CreatedAt = e.CreatedAt.UTC()
	if _, err := r.history().InsertOne(ctx, e); err != nil {
		return fmt.Errorf("insert history: %w", err)
	}

	res, err := r.workflows().UpdateOne(ctx,
		bson.M{"request_id": e.RequestID, "current_stage": string(e.PreviousStatus)},
		bson.M{"$set": bson.M{"current_stage": string(e.NewStatus), "updated_at": e.CreatedAt}},
	)
	if err != nil || res.MatchedCount == 0 {
		r.undo(ctx, e, false)
		if err != nil {
			return fmt.Errorf("update workflow: %w", err)
		}
		return fmt.Errorf("%w: stage changed concurrently", domain.ErrInvalidTransition)
	}

	res, err = r.db.Collection(collectionRequests).UpdateOne(ctx,
		bson.M{"_id": e.RequestID},
		bson.M{"$set": bson.M{"status": string(e.NewStatus), "updated_at": e.CreatedAt}},
	)
	if err == nil && res.MatchedCount == 0 {
		err = domain.ErrRequestNotFound
	}
	if err != nil {
		r.undo(ctx, e, true)
		return fmt.Errorf("update request status: %w", err)
	}
	return nil
}

// undo reverts a partial Transition. It runs detached from the caller's
// cancellation.
func (r *WorkflowRepository) undo(ctx context.Context, e domain.HistoryEntry, stageMoved bool) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), defaultTimeout)
	defer cancel()

	if stageMoved {
		_, _ = r.workflows().UpdateOne(ctx,
			bson.M{"request_id": e.RequestID, "current_stage": string(e.NewStatus)},
			bson.M{"$set": bson.M{"current_stage": string(e.PreviousStatus)}},
		)
	}
	_, _ = r.history().DeleteOne(ctx, bson.M{"_id": e.ID})
}

func (r *WorkflowRepository) Assign(ctx context.Context, requestID, staffID string, at time.Time) error {
	return r.set(ctx, requestID, bson.M{"assigned_to": staffID, "updated_at": at.UTC()})
}

func (r *WorkflowRepository) set(ctx context.Context, requestID string, fields bson.M) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.workflows().UpdateOne(ctx, bson.M{"request_id": requestID}, bson.M{"$set": fields})
	if err != nil {
		return fmt.Errorf("update workflow: %w", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrWorkflowNotFound
	}
	return nil
}

// AppendHistory persists an entry to the request_history audit collection.
func (r *WorkflowRepository) AppendHistory(ctx context.Context, entry *domain.HistoryEntry) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	e := *entry
	e.CreatedAt = e.CreatedAt.UTC()
	if _, err := r.history().InsertOne(ctx, e); err != nil {
		return fmt.Errorf("insert history: %w", err)
	}
	return nil
}

func (r *WorkflowRepository) History(ctx context.Context, requestID string) ([]domain.HistoryEntry, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}, {Key: "_id", Value: 1}})
	cur, err := r.history().Find(ctx, bson.M{"request_id": requestID}, opts)
	if err != nil {
		return nil, fmt.Errorf("list history: %w", err)
	}
	defer cur.Close(ctx)

	entries := []domain.HistoryEntry{}
	if err := cur.All(ctx, &entries); err != nil {
		return nil, fmt.Errorf("decode history: %w", err)
	}
	return entries, nil
}

func (r *WorkflowRepository) LatestHistory(ctx context.Context, requestID string) (*domain.HistoryEntry, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	opts := options.FindOne().SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}})
	var e domain.HistoryEntry
	if err := r.history().FindOne(ctx, bson.M{"request_id": requestID}, opts).Decode(&e); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, fmt.Errorf("latest history: %w", err)
	}
	return &e, nil
}

// Delete removes the workflow record. History is never deleted.
func (r *WorkflowRepository) Delete(ctx context.Context, requestID string) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.workflows().DeleteOne(ctx, bson.M{"request_id": requestID})
	if err != nil {
		return fmt.Errorf("delete workflow: %w", err)
	}
	if res.DeletedCount == 0 {
		return domain.ErrWorkflowNotFound
	}
	return nil
}

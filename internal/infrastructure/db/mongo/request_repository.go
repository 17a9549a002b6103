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

const collectionRequests = "requests"

type RequestRepository struct {
	col *mongo.Collection
}

func NewRequestRepository(db *mongo.Database) *RequestRepository {
	return &RequestRepository{col: db.Collection(collectionRequests)}
}

var _ ports.RequestRepository = (*RequestRepository)(nil)

// Create inserts a new request document.
func (r *RequestRepository) Create(ctx context.Context, req *domain.Request) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	if _, err := r.col.InsertOne(ctx, req); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return fmt.Errorf("insert request: %w", domain.ErrDuplicateRequest)
		}
		return fmt.Errorf("insert request: %w", err)
	}
	return nil
}

func (r *RequestRepository) FindByID(ctx context.Context, id string) (*domain.Request, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

// FindByIdempotencyKey retrieves an existing request that was created with the given key.
func (r *RequestRepository) FindByIdempotencyKey(ctx context.Context, key string) (*domain.Request, error) {
	return r.findOne(ctx, bson.M{"idempotency_key": key})
}

func (r *RequestRepository) findOne(ctx context.Context, filter bson.M) (*domain.Request, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var req domain.Request
	if err := r.col.FindOne(ctx, filter).Decode(&req); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrRequestNotFound
		}
		return nil, fmt.Errorf("find request: %w", err)
	}
	if req.Documents == nil {
		req.Documents = []domain.Document{}
	}
	return &req, nil
}

// List returns a filtered page of requests, newest first.
func (r *RequestRepository) List(ctx context.Context, f ports.ListRequestsFilter) ([]*domain.Request, int64, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	filter := bson.M{}
	if f.RequesterID != "" {
		filter["requester_id"] = f.RequesterID
	}
	if f.Status != "" {
		filter["status"] = f.Status
	}
	if f.Type != "" {
		filter["type"] = f.Type
	}
	if f.AssignedTo != "" {
		filter["assigned_to"] = f.AssignedTo
	}
	if f.Search != "" {
		pattern := containsPattern(f.Search)
		filter["$or"] = bson.A{
			bson.M{"ticket_number": pattern},
			bson.M{"title": pattern},
		}
	}

	total, err := r.col.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("count requests: %w", err)
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetSkip(int64((f.Page - 1) * f.Limit)).
		SetLimit(int64(f.Limit))
	cur, err := r.col.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, fmt.Errorf("list requests: %w", err)
	}
	defer cur.Close(ctx)

	items := []*domain.Request{}
	if err := cur.All(ctx, &items); err != nil {
		return nil, 0, fmt.Errorf("decode requests: %w", err)
	}
	return items, total, nil
}

// Update writes the editable fields of a request.
func (r *RequestRepository) Update(ctx context.Context, req *domain.Request) error {
	return r.set(ctx, req.ID, bson.M{
		"title":       req.Title,
		"description": req.Description,
		"amount":      req.Amount,
		"updated_at":  req.UpdatedAt,
	})
}

func (r *RequestRepository) SetAssignee(ctx context.Context, id, assignee string, at time.Time) error {
	return r.set(ctx, id, bson.M{"assigned_to": assignee, "updated_at": at})
}

func (r *RequestRepository) set(ctx context.Context, id string, fields bson.M) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": fields})
	if err != nil {
		return fmt.Errorf("update request: %w", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrRequestNotFound
	}
	return nil
}

// AddDocument appends document metadata atomically.
func (r *RequestRepository) AddDocument(ctx context.Context, id string, doc domain.Document) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	update := bson.M{
		"$push": bson.M{"documents": doc},
		"$set":  bson.M{"updated_at": doc.UploadedAt},
	}
	res, err := r.col.UpdateOne(ctx, bson.M{"_id": id}, update)
	if err != nil {
		return fmt.Errorf("add document: %w", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrRequestNotFound
	}
	return nil
}

func (r *RequestRepository) Delete(ctx context.Context, id string) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("delete request: %w", err)
	}
	if res.DeletedCount == 0 {
		return domain.ErrRequestNotFound
	}
	return nil
}

type countBucket struct {
	Key   string `bson:"_id"`
	Count int64  `bson:"count"`
}

type summaryFacets struct {
	ByStatus []countBucket `bson:"by_status"`
	ByType   []countBucket `bson:"by_type"`
	Approved []struct {
		Amount float64 `bson:"amount"`
	} `bson:"approved"`
}

// Summary aggregates request counts and the approved amount in one pass.
func (r *RequestRepository) Summary(ctx context.Context) (*ports.RequestSummary, error) {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	pipeline := mongo.Pipeline{
		{{Key: "$facet", Value: bson.M{
			"by_status": bson.A{
				bson.M{"$group": bson.M{"_id": "$status", "count": bson.M{"$sum": 1}}},
			},
			"by_type": bson.A{
				bson.M{"$group": bson.M{"_id": "$type", "count": bson.M{"$sum": 1}}},
			},
			"approved": bson.A{
				bson.M{"$match": bson.M{"status": string(domain.StatusApproved)}},
				bson.M{"$group": bson.M{"_id": nil, "amount": bson.M{"$sum": bson.M{"$ifNull": bson.A{"$amount", 0}}}}},
			},
		}}},
	}

	cur, err := r.col.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("summary: %w", err)
	}
	defer cur.Close(ctx)

	var facets []summaryFacets
	if err := cur.All(ctx, &facets); err != nil {
		return nil, fmt.Errorf("decode summary: %w", err)
	}

	out := &ports.RequestSummary{ByStatus: map[string]int64{}, ByType: map[string]int64{}}
	if len(facets) == 0 {
		return out, nil
	}
	for _, b := range facets[0].ByStatus {
		out.ByStatus[b.Key] = b.Count
		out.Total += b.Count
		if !domain.RequestStatus(b.Key).Terminal() {
			out.Pending += b.Count
		}
	}
	for _, b := range facets[0].ByType {
		out.ByType[b.Key] = b.Count
	}
	if len(facets[0].Approved) > 0 {
		out.ApprovedAmount = facets[0].Approved[0].Amount
	}
	return out, nil
}

package mongo

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/bgf/dashboard-api/internal/core/domain"
	"github.com/bgf/dashboard-api/internal/core/ports"
)

const collectionAccessCodes = "staff_access_codes"

// AccessCodeRepository stores staff access codes keyed by their upper-case code.
type AccessCodeRepository struct {
	col *mongo.Collection
}

func NewAccessCodeRepository(db *mongo.Database) *AccessCodeRepository {
	return &AccessCodeRepository{col: db.Collection(collectionAccessCodes)}
}

var _ ports.AccessCodeRepository = (*AccessCodeRepository)(nil)

func (r *AccessCodeRepository) List(ctx context.Context) ([]domain.StaffAccessCode, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	cur, err := r.col.Find(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("list access codes: %w", err)
	}
	defer cur.Close(ctx)

	var codes []domain.StaffAccessCode
	if err := cur.All(ctx, &codes); err != nil {
		return nil, fmt.Errorf("decode access codes: %w", err)
	}
	return codes, nil
}

// Upsert inserts or replaces a code.
func (r *AccessCodeRepository) Upsert(ctx context.Context, code domain.StaffAccessCode) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	code.Code = domain.NormalizeAccessCode(code.Code)
	_, err := r.col.ReplaceOne(ctx, bson.M{"code": code.Code}, code, options.Replace().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("upsert access code: %w", err)
	}
	return nil
}

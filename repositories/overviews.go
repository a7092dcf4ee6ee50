package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"nutri-lens/errs"
	"nutri-lens/models"
)

type OverviewRepository struct {
	col *mongo.Collection
}

func NewOverviewRepository(db *mongo.Database) *OverviewRepository {
	return &OverviewRepository{col: db.Collection("personalized_overviews")}
}

// FindOverview returns the stored overview for (user, product), or nil when none exists.
func (r *OverviewRepository) FindOverview(ctx context.Context, userID, productID primitive.ObjectID) (*models.PersonalizedOverview, error) {
	var o models.PersonalizedOverview
	err := r.col.FindOne(ctx, bson.M{"user_id": userID, "product_id": productID}).Decode(&o)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &o, nil
}

// InsertOverview stores a new overview. A concurrent writer for the same
// (user, product) surfaces as errs.ErrAlreadyExists.
func (r *OverviewRepository) InsertOverview(ctx context.Context, o *models.PersonalizedOverview) error {
	if o.CreatedAt.IsZero() {
		o.CreatedAt = time.Now()
	}
	res, err := r.col.InsertOne(ctx, o)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return fmt.Errorf("%w: overview %s/%s", errs.ErrAlreadyExists, o.UserID.Hex(), o.ProductID.Hex())
		}
		return err
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		o.ID = oid
	}
	return nil
}

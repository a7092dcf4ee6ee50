package repositories

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"nutri-lens/models"
)

type ConsumptionRepository struct {
	col *mongo.Collection
}

func NewConsumptionRepository(db *mongo.Database) *ConsumptionRepository {
	return &ConsumptionRepository{col: db.Collection("consumptions")}
}

func (r *ConsumptionRepository) Insert(ctx context.Context, c *models.Consumption) error {
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now()
	}
	res, err := r.col.InsertOne(ctx, c)
	if err != nil {
		return err
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		c.ID = oid
	}
	return nil
}

// ListInWindow returns the user's events with from <= created_at < to, oldest first.
func (r *ConsumptionRepository) ListInWindow(ctx context.Context, userID primitive.ObjectID, from, to time.Time) ([]models.Consumption, error) {
	filter := bson.M{
		"user_id":    userID,
		"created_at": bson.M{"$gte": from, "$lt": to},
	}
	cur, err := r.col.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}}))
	if err != nil {
		return nil, err
	}
	var out []models.Consumption
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"nutri-lens/errs"
	"nutri-lens/models"
)

type UserRepository struct {
	col *mongo.Collection
}

func NewUserRepository(db *mongo.Database) *UserRepository {
	return &UserRepository{col: db.Collection("users")}
}

// FindByID returns a user or errs.ErrNotFound.
func (r *UserRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	var u models.User
	if err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&u); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("%w: user %s", errs.ErrNotFound, id.Hex())
		}
		return nil, err
	}
	return &u, nil
}

// Save upserts the profile by id. A zero id creates a new user.
func (r *UserRepository) Save(ctx context.Context, u *models.User) error {
	now := time.Now()
	if u.ID.IsZero() {
		u.ID = primitive.NewObjectID()
	}
	if u.CreatedAt.IsZero() {
		u.CreatedAt = now
	}
	u.UpdatedAt = now

	update := bson.M{
		"$setOnInsert": bson.M{"created_at": u.CreatedAt},
		"$set": bson.M{
			"name":                u.Name,
			"email":               u.Email,
			"biological_sex":      u.BiologicalSex,
			"age":                 u.Age,
			"weight_kg":           u.WeightKg,
			"height_cm":           u.HeightCm,
			"activity_level":      u.ActivityLevel,
			"dietary_preference":  u.DietaryPreference,
			"nutrition_knowledge": u.NutritionKnowledge,
			"health_goals":        u.HealthGoals,
			"health_details":      u.HealthDetails,
			"daily_calorie_needs": u.DailyCalorieNeeds,
			"updated_at":          u.UpdatedAt,
		},
	}
	_, err := r.col.UpdateOne(ctx, bson.M{"_id": u.ID}, update, options.Update().SetUpsert(true))
	return err
}

// ListIDs returns the ids of every user.
func (r *UserRepository) ListIDs(ctx context.Context) ([]primitive.ObjectID, error) {
	cur, err := r.col.Find(ctx, bson.M{}, options.Find().SetProjection(bson.M{"_id": 1}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var ids []primitive.ObjectID
	for cur.Next(ctx) {
		var row struct {
			ID primitive.ObjectID `bson:"_id"`
		}
		if err := cur.Decode(&row); err != nil {
			return nil, err
		}
		ids = append(ids, row.ID)
	}
	return ids, cur.Err()
}

package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// User is the health profile of an account. Authentication lives elsewhere.
// Collection: users
type User struct {
	ID                 primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name               string             `bson:"name" json:"name"`
	Email              string             `bson:"email" json:"email"`
	BiologicalSex      BiologicalSex      `bson:"biological_sex" json:"biological_sex"`
	Age                int                `bson:"age" json:"age"`
	WeightKg           float64            `bson:"weight_kg" json:"weight_kg"`
	HeightCm           float64            `bson:"height_cm" json:"height_cm"`
	ActivityLevel      ActivityLevel      `bson:"activity_level" json:"activity_level"`
	DietaryPreference  DietaryPreference  `bson:"dietary_preference" json:"dietary_preference"`
	NutritionKnowledge string             `bson:"nutrition_knowledge" json:"nutrition_knowledge"`
	HealthGoals        []HealthGoal       `bson:"health_goals" json:"health_goals"`
	HealthDetails      []HealthDetail     `bson:"health_details" json:"health_details"`
	DailyCalorieNeeds  int                `bson:"daily_calorie_needs" json:"daily_calorie_needs"`
	CreatedAt          time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt          time.Time          `bson:"updated_at" json:"updated_at"`
}

// Consumption records a user eating some quantity of a product.
// Collection: consumptions
type Consumption struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID    primitive.ObjectID `bson:"user_id" json:"user_id"`
	ProductID primitive.ObjectID `bson:"product_id" json:"product_id"`
	Quantity  float64            `bson:"quantity" json:"quantity"`
	Duration  string             `bson:"duration,omitempty" json:"duration,omitempty"`
	CreatedAt time.Time          `bson:"created_at" json:"created_at"`
}

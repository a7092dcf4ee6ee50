package dto

import "nutri-lens/models"

// UserProfileRequest is the onboarding / profile update body.
// daily_calorie_needs is always computed server-side.
type UserProfileRequest struct {
	Name               string                   `json:"name"`
	Email              string                   `json:"email"`
	BiologicalSex      models.BiologicalSex     `json:"biological_sex" binding:"required"`
	Age                int                      `json:"age" binding:"required,gt=0"`
	WeightKg           float64                  `json:"weight_kg" binding:"required,gt=0"`
	HeightCm           float64                  `json:"height_cm" binding:"required,gt=0"`
	ActivityLevel      models.ActivityLevel     `json:"activity_level" binding:"required"`
	DietaryPreference  models.DietaryPreference `json:"dietary_preference"`
	NutritionKnowledge string                   `json:"nutrition_knowledge"`
	HealthGoals        []models.HealthGoal      `json:"health_goals"`
	HealthDetails      []models.HealthDetail    `json:"health_details"`
}

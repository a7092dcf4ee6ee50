package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// PersonalizedOverview is generated once per (user, product) and then served from storage.
// Collection: personalized_overviews
type PersonalizedOverview struct {
	ID                       primitive.ObjectID       `bson:"_id,omitempty" json:"id"`
	UserID                   primitive.ObjectID       `bson:"user_id" json:"user_id"`
	ProductID                primitive.ObjectID       `bson:"product_id" json:"product_id"`
	Overview                 string                   `bson:"overview" json:"overview"`
	MatchScore               float64                  `bson:"match_score" json:"match_score"`
	SuitabilityReasons       []SuitabilityReason      `bson:"suitability_reasons" json:"suitability_reasons"`
	SafeConsumptionGuideline SafeConsumptionGuideline `bson:"safe_consumption_guideline" json:"safe_consumption_guideline"`
	HealthGoalImpacts        []HealthGoalImpact       `bson:"health_goal_impacts" json:"health_goal_impacts"`
	NutrientHighlights       []NutrientHighlight      `bson:"nutrient_highlights" json:"nutrient_highlights"`
	CreatedAt                time.Time                `bson:"created_at" json:"created_at"`
}

type SuitabilityReason struct {
	Type   string `bson:"type" json:"type"` // good | bad
	Reason string `bson:"reason" json:"reason"`
}

type SafeConsumptionGuideline struct {
	Frequency string  `bson:"frequency" json:"frequency"` // daily | weekly | monthly
	Amount    float64 `bson:"amount" json:"amount"`
	Unit      string  `bson:"unit" json:"unit"`
}

type HealthGoalImpact struct {
	Goal   string `bson:"goal" json:"goal"`
	Impact string `bson:"impact" json:"impact"`
}

type NutrientHighlight struct {
	Nutrient string `bson:"nutrient" json:"nutrient"`
	Benefit  string `bson:"benefit" json:"benefit"`
}

// ConsumptionAnalysis is the periodic report for one user and one report date.
// Collection: consumption_analyses
type ConsumptionAnalysis struct {
	ID              primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID          primitive.ObjectID `bson:"user_id" json:"user_id"`
	ReportDate      time.Time          `bson:"report_date" json:"report_date"`
	WindowStart     time.Time          `bson:"window_start" json:"window_start"`
	WindowEnd       time.Time          `bson:"window_end" json:"window_end"`
	Report          ConsumptionReport  `bson:"report" json:"report"`
	AnalysisSummary string             `bson:"analysis_summary" json:"analysis_summary"`
	Recommendations []Recommendation   `bson:"recommendations" json:"recommendations"`
	CreatedAt       time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt       time.Time          `bson:"updated_at" json:"updated_at"`
}

type ConsumptionReport struct {
	TotalConsumedCalories float64        `bson:"total_consumed_calories" json:"total_consumed_calories"`
	TotalConsumedProducts int            `bson:"total_consumed_products" json:"total_consumed_products"`
	ReportDate            time.Time      `bson:"report_date" json:"report_date"`
	MajorCategories       []string       `bson:"major_categories" json:"major_categories"`
	TotalNutrients        NutrientTotals `bson:"total_nutrients" json:"total_nutrients"`
}

type Recommendation struct {
	Type        string `bson:"type" json:"type"`
	Description string `bson:"description" json:"description"`
	Reason      string `bson:"reason" json:"reason"`
}

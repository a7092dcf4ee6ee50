package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Product is a scored catalog entry built from a vendor page.
// Collection: products
type Product struct {
	ID                       primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name                     string             `bson:"name" json:"name"`
	Brand                    string             `bson:"brand" json:"brand"`
	VendorName               string             `bson:"vendor_name" json:"vendor_name"`
	VendorProductURL         string             `bson:"vendor_url" json:"vendor_url"`
	ImageURLs                []string           `bson:"image_urls" json:"image_urls"`
	ServingSize              *float64           `bson:"serving_size" json:"serving_size"`
	ServingUnit              string             `bson:"serving_unit" json:"serving_unit"`
	Summary                  string             `bson:"summary" json:"summary"`
	FunctionalBenefits       []string           `bson:"functional_benefits" json:"functional_benefits"`
	SuitableFor              []HealthDetail     `bson:"suitable_for" json:"suitable_for"`
	NotSuitableFor           []HealthDetail     `bson:"not_suitable_for" json:"not_suitable_for"`
	NaturalIngredientCount   int                `bson:"natural_ingredient_count" json:"natural_ingredient_count"`
	ProcessedIngredientCount int                `bson:"processed_ingredient_count" json:"processed_ingredient_count"`
	NutritionDensity         float64            `bson:"nutrition_density" json:"nutrition_density"`
	HealthScore              float64            `bson:"health_score" json:"health_score"`
	CreatedAt                time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt                time.Time          `bson:"updated_at" json:"updated_at"`
}

// Ingredient is shared across products and unique by name.
// Collection: ingredients
type Ingredient struct {
	ID             primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name           string             `bson:"name" json:"name"`
	Description    string             `bson:"description" json:"description"`
	CommonUses     string             `bson:"common_uses" json:"common_uses"`
	PotentialRisks string             `bson:"potential_risks" json:"potential_risks"`
	CreatedAt      time.Time          `bson:"created_at" json:"created_at"`
}

// IngredientEffect describes one physiological effect of an ingredient.
// Collection: ingredient_effects
type IngredientEffect struct {
	ID                 primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	IngredientID       primitive.ObjectID `bson:"ingredient_id" json:"ingredient_id"`
	EffectType         string             `bson:"effect_type" json:"effect_type"`
	Description        string             `bson:"description" json:"description"`
	ScientificEvidence string             `bson:"scientific_evidence" json:"scientific_evidence"`
	Severity           string             `bson:"severity" json:"severity"`
	Duration           string             `bson:"duration" json:"duration"`
}

// ProductIngredient links a product to an ingredient at a 1-based position.
// Collection: product_ingredients
type ProductIngredient struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	ProductID    primitive.ObjectID `bson:"product_id" json:"product_id"`
	IngredientID primitive.ObjectID `bson:"ingredient_id" json:"ingredient_id"`
	OrderNumber  int                `bson:"order_number" json:"order_number"`
}

// Claim is a marketing claim and its verification. Never deduplicated.
// Collection: product_claims
type Claim struct {
	ID                 primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	ProductID          primitive.ObjectID `bson:"product_id" json:"product_id"`
	Claim              string             `bson:"claim" json:"claim"`
	VerificationStatus string             `bson:"verification_status" json:"verification_status"`
	Explanation        string             `bson:"explanation" json:"explanation"`
	Source             string             `bson:"source" json:"source"`
}

// NamedEntity is a category or allergen; unique by name within its collection.
// Collections: categories, allergens
type NamedEntity struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name      string             `bson:"name" json:"name"`
	CreatedAt time.Time          `bson:"created_at" json:"created_at"`
}

// ProductLink joins a product to a category or an allergen.
// Collections: product_categories, product_allergens
type ProductLink struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	ProductID primitive.ObjectID `bson:"product_id" json:"product_id"`
	TargetID  primitive.ObjectID `bson:"target_id" json:"target_id"`
}

// OrderedIngredient is an ingredient as read back for one product.
type OrderedIngredient struct {
	OrderNumber int                `json:"order_number"`
	Ingredient  Ingredient         `json:"ingredient"`
	Effects     []IngredientEffect `json:"effects"`
}

// ProductOverview is the catalog card: product plus nutrition and its leading ingredients.
type ProductOverview struct {
	Product     Product             `json:"product"`
	Nutrition   *NutritionalFacts   `json:"nutrition"`
	Categories  []string            `json:"categories"`
	Ingredients []OrderedIngredient `json:"ingredients"`
}

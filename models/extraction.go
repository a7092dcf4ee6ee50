package models

// ExtractedProduct is the structured record produced from product images.
type ExtractedProduct struct {
	Name                     string                `json:"name"`
	Brand                    string                `json:"brand"`
	Categories               []string              `json:"categories"`
	ServingSize              *float64              `json:"serving_size"`
	ServingUnit              string                `json:"serving_unit"`
	NutritionalFacts         Nutrients             `json:"nutritional_facts"`
	Ingredients              []ExtractedIngredient `json:"ingredients"`
	Claims                   []ExtractedClaim      `json:"claims"`
	Allergens                []string              `json:"allergens"`
	Summary                  string                `json:"summary"`
	FunctionalBenefits       []string              `json:"functional_benefits"`
	SuitableFor              []HealthDetail        `json:"suitable_for"`
	NotSuitableFor           []HealthDetail        `json:"not_suitable_for"`
	NaturalIngredientCount   int                   `json:"natural_ingredient_count"`
	ProcessedIngredientCount int                   `json:"processed_ingredient_count"`
}

type ExtractedIngredient struct {
	Name           string            `json:"name"`
	Description    string            `json:"description"`
	CommonUses     string            `json:"common_uses"`
	PotentialRisks string            `json:"potential_risks"`
	Effects        []ExtractedEffect `json:"effects"`
}

type ExtractedEffect struct {
	EffectType         string `json:"effect_type"`
	Description        string `json:"description"`
	ScientificEvidence string `json:"scientific_evidence"`
	Severity           string `json:"severity"`
	Duration           string `json:"duration"`
}

type ExtractedClaim struct {
	Claim              string `json:"claim"`
	VerificationStatus string `json:"verification_status"`
	Explanation        string `json:"explanation"`
	Source             string `json:"source"`
}

// ProductGraph is everything written for one product in a single transaction.
// Ingredients keep extraction order; their position becomes order_number.
type ProductGraph struct {
	Product     Product
	Nutrition   Nutrients
	Ingredients []ExtractedIngredient
	Claims      []ExtractedClaim
	Allergens   []string
	Categories  []string
}

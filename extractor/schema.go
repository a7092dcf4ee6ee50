package extractor

import (
	"google.golang.org/genai"

	"nutri-lens/models"
)

func nullable() *bool {
	t := true
	return &t
}

func str() *genai.Schema { return &genai.Schema{Type: genai.TypeString} }

func nullableStr() *genai.Schema { return &genai.Schema{Type: genai.TypeString, Nullable: nullable()} }

func strList() *genai.Schema { return &genai.Schema{Type: genai.TypeArray, Items: str()} }

func healthDetailList() *genai.Schema {
	enum := make([]string, 0, len(models.AllHealthDetails))
	for _, h := range models.AllHealthDetails {
		enum = append(enum, string(h))
	}
	return &genai.Schema{
		Type:  genai.TypeArray,
		Items: &genai.Schema{Type: genai.TypeString, Enum: enum},
	}
}

var edibilitySchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"edible": {Type: genai.TypeBoolean},
	},
	Required: []string{"edible"},
}

func nutritionSchema() *genai.Schema {
	props := make(map[string]*genai.Schema, len(models.NutrientKeys))
	for _, k := range models.NutrientKeys {
		props[k] = &genai.Schema{Type: genai.TypeNumber, Nullable: nullable()}
	}
	return &genai.Schema{
		Type:       genai.TypeObject,
		Properties: props,
		Required:   models.NutrientKeys,
	}
}

// categoryList restricts items to the catalog's categories when there are any.
func categoryList(allowed []string) *genai.Schema {
	if len(allowed) == 0 {
		return strList()
	}
	enum := make([]string, len(allowed))
	copy(enum, allowed)
	return &genai.Schema{
		Type:  genai.TypeArray,
		Items: &genai.Schema{Type: genai.TypeString, Enum: enum},
	}
}

// productSchema is built per call so the category enum follows the catalog.
func productSchema(categories []string) *genai.Schema {
	return &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"name":              str(),
			"brand":             str(),
			"categories":        categoryList(categories),
			"serving_size":      {Type: genai.TypeNumber, Nullable: nullable()},
			"serving_unit":      nullableStr(),
			"nutritional_facts": nutritionSchema(),
			"ingredients": {
				Type: genai.TypeArray,
				Items: &genai.Schema{
					Type: genai.TypeObject,
					Properties: map[string]*genai.Schema{
						"name":            str(),
						"description":     nullableStr(),
						"common_uses":     nullableStr(),
						"potential_risks": nullableStr(),
						"effects": {
							Type: genai.TypeArray,
							Items: &genai.Schema{
								Type: genai.TypeObject,
								Properties: map[string]*genai.Schema{
									"effect_type":         nullableStr(),
									"description":         nullableStr(),
									"scientific_evidence": nullableStr(),
									"severity":            nullableStr(),
									"duration":            nullableStr(),
								},
							},
						},
					},
					Required: []string{"name", "effects"},
				},
			},
			"claims": {
				Type: genai.TypeArray,
				Items: &genai.Schema{
					Type: genai.TypeObject,
					Properties: map[string]*genai.Schema{
						"claim": str(),
						"verification_status": {
							Type:     genai.TypeString,
							Enum:     []string{models.ClaimVerified, models.ClaimUnverified, models.ClaimMisleading},
							Nullable: nullable(),
						},
						"explanation": nullableStr(),
						"source":      nullableStr(),
					},
					Required: []string{"claim"},
				},
			},
			"allergens":                  strList(),
			"summary":                    str(),
			"functional_benefits":        strList(),
			"suitable_for":               healthDetailList(),
			"not_suitable_for":           healthDetailList(),
			"natural_ingredient_count":   {Type: genai.TypeInteger},
			"processed_ingredient_count": {Type: genai.TypeInteger},
		},
		Required: []string{
			"name", "brand", "categories", "nutritional_facts", "ingredients", "claims",
			"allergens", "summary", "functional_benefits", "suitable_for", "not_suitable_for",
			"natural_ingredient_count", "processed_ingredient_count",
		},
	}
}

var categorySeedSchema = &genai.Schema{
	Type: genai.TypeArray,
	Items: &genai.Schema{
		Type:       genai.TypeObject,
		Properties: map[string]*genai.Schema{"name": str()},
		Required:   []string{"name"},
	},
}

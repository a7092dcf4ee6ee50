// Package extractor asks the model what is on a product's packaging.
package extractor

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"nutri-lens/config"
	"nutri-lens/errs"
	"nutri-lens/llm"
	"nutri-lens/models"
)

// Classifier decides whether pictured products are food.
type Classifier struct {
	gen llm.Generator
}

func NewClassifier(gen llm.Generator) *Classifier {
	return &Classifier{gen: gen}
}

// IsEdible issues a single model call over all images.
func (c *Classifier) IsEdible(ctx context.Context, images []llm.Image) (bool, error) {
	resp, err := c.gen.GenerateJSON(ctx, llm.Request{
		Task:        llm.TaskClassifier,
		Instruction: edibilityInstruction,
		Prompt:      "Is this product edible?",
		Images:      images,
		Schema:      edibilitySchema,
	})
	if err != nil {
		return false, fmt.Errorf("%w: edibility check: %v", errs.ErrExtractionFailed, err)
	}

	out, err := llm.DecodeJSON[struct {
		Edible *bool `json:"edible"`
	}](resp)
	if err != nil {
		return false, fmt.Errorf("%w: edibility check: %v", errs.ErrExtractionFailed, err)
	}
	if out.Edible == nil {
		return false, fmt.Errorf("%w: edibility check: missing edible field", errs.ErrExtractionFailed)
	}
	return *out.Edible, nil
}

// Extractor turns product images into a validated ExtractedProduct.
type Extractor struct {
	gen llm.Generator
}

func NewExtractor(gen llm.Generator) *Extractor {
	return &Extractor{gen: gen}
}

// Extract makes one model call with every image and the allowed categories.
// Malformed or invalid output is reported as errs.ErrExtractionFailed; it is never retried.
func (e *Extractor) Extract(ctx context.Context, images []llm.Image, categories []string) (*models.ExtractedProduct, error) {
	resp, err := e.gen.GenerateJSON(ctx, llm.Request{
		Task:        llm.TaskExtraction,
		Instruction: extractionInstruction,
		Prompt:      extractionPrompt(categories),
		Images:      images,
		Schema:      productSchema(categories),
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errs.ErrExtractionFailed, err)
	}

	product, err := Parse(resp, categories)
	if err != nil {
		config.Logger.Warnf("extraction rejected (model=%s): %v", resp.ModelName, err)
		return nil, err
	}
	return product, nil
}

// Parse decodes and validates an extraction response. With a non-empty allowed
// list, categories outside it are dropped and the rest take the catalog spelling.
func Parse(resp *llm.Response, allowed []string) (*models.ExtractedProduct, error) {
	product, err := llm.DecodeJSON[models.ExtractedProduct](resp)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errs.ErrExtractionFailed, err)
	}
	raw, err := llm.DecodeJSON[struct {
		NutritionalFacts map[string]json.RawMessage `json:"nutritional_facts"`
	}](resp)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errs.ErrExtractionFailed, err)
	}

	if err := validate(&product, raw.NutritionalFacts); err != nil {
		return nil, fmt.Errorf("%w: %v", errs.ErrExtractionFailed, err)
	}
	normalize(&product)
	if len(allowed) > 0 {
		product.Categories = restrictCategories(product.Categories, allowed)
	}
	return &product, nil
}

func validate(p *models.ExtractedProduct, nutrition map[string]json.RawMessage) error {
	if strings.TrimSpace(p.Name) == "" {
		return fmt.Errorf("product name is empty")
	}
	if nutrition == nil {
		return fmt.Errorf("nutritional_facts is missing")
	}
	for _, k := range models.NutrientKeys {
		if _, ok := nutrition[k]; !ok {
			return fmt.Errorf("nutritional_facts.%s is missing", k)
		}
	}
	for i, ing := range p.Ingredients {
		if strings.TrimSpace(ing.Name) == "" {
			return fmt.Errorf("ingredient %d has no name", i+1)
		}
	}
	for _, c := range p.Claims {
		if strings.TrimSpace(c.Claim) == "" {
			return fmt.Errorf("claim text is empty")
		}
		if c.VerificationStatus != "" && !models.ValidClaimStatus(c.VerificationStatus) {
			return fmt.Errorf("claim %q has unknown status %q", c.Claim, c.VerificationStatus)
		}
	}
	for _, tags := range [][]models.HealthDetail{p.SuitableFor, p.NotSuitableFor} {
		for _, h := range tags {
			if !h.Valid() {
				return fmt.Errorf("unknown health condition %q", h)
			}
		}
	}
	if p.NaturalIngredientCount < 0 || p.ProcessedIngredientCount < 0 {
		return fmt.Errorf("ingredient counts must not be negative")
	}
	return nil
}

func normalize(p *models.ExtractedProduct) {
	p.Name = strings.TrimSpace(p.Name)
	p.Brand = strings.TrimSpace(p.Brand)
	if p.ServingSize != nil && *p.ServingSize <= 0 {
		p.ServingSize = nil
	}
	for i := range p.Ingredients {
		p.Ingredients[i].Name = strings.TrimSpace(p.Ingredients[i].Name)
	}
	for i := range p.Claims {
		if p.Claims[i].VerificationStatus == "" {
			p.Claims[i].VerificationStatus = models.ClaimUnverified
		}
	}
	p.Categories = cleanNames(p.Categories)
	p.Allergens = cleanNames(p.Allergens)
}

// cleanNames trims, drops blanks and repeats, keeping first-seen order.
func cleanNames(names []string) []string {
	seen := make(map[string]bool, len(names))
	out := make([]string, 0, len(names))
	for _, n := range names {
		n = strings.TrimSpace(n)
		if n == "" || seen[n] {
			continue
		}
		seen[n] = true
		out = append(out, n)
	}
	return out
}

// restrictCategories keeps only names found in allowed, matched case-insensitively.
func restrictCategories(names, allowed []string) []string {
	canonical := make(map[string]string, len(allowed))
	for _, a := range allowed {
		canonical[strings.ToLower(strings.TrimSpace(a))] = a
	}
	out := make([]string, 0, len(names))
	for _, n := range names {
		if c, ok := canonical[strings.ToLower(n)]; ok {
			out = append(out, c)
		} else {
			config.Logger.Warnf("extraction returned unknown category %q, dropped", n)
		}
	}
	return cleanNames(out)
}

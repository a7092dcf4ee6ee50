package extractor

import (
	"fmt"
	"strings"

	"nutri-lens/models"
)

const edibilityInstruction = `You look at photos of retail products.
Based on the images of the product, decide whether the product is edible or not.
Food, beverages and dietary supplements are edible. Cosmetics, cleaning supplies, utensils and anything not meant to be eaten are not.
Respond with JSON only: {"edible": true} or {"edible": false}.`

const extractionInstruction = `You are a nutrition expert reading a packaged food product the way a careful shopper would, on behalf of a friend who wants to eat well.

Work from the package itself. Nutrition panel and ingredient list come first; marketing copy is only evidence for the claims section.

- nutritional_facts: values per serving as printed. Every key must be present. Use null for any value that is not printed and cannot be reasonably inferred.
- ingredients: in the order printed on the label. For each one give a short description, its common uses, potential risks, and its health effects (effect type, description, scientific evidence, severity, duration).
- claims: every claim on the package, with verification_status Verified, Unverified or Misleading judged against the ingredients and nutrition facts, plus an explanation and a source when one exists.
- allergens: allergens listed on the package or evident from the ingredients.
- summary: a short, plain-language verdict from a nutritionist's point of view.
- functional_benefits: what the product is actually good for.
- suitable_for / not_suitable_for: health condition tags from the allowed values only.
- natural_ingredient_count / processed_ingredient_count: how many listed ingredients are natural versus processed.
- categories: choose only from the available categories below, spelled exactly as listed.

If something is missing, give your best expert estimate. Prefer accuracy and evidence over marketing.`

func extractionPrompt(categories []string) string {
	tags := make([]string, 0, len(models.AllHealthDetails))
	for _, h := range models.AllHealthDetails {
		tags = append(tags, string(h))
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Available categories: [%s]\n", strings.Join(categories, ", "))
	fmt.Fprintf(&b, "Health condition tags: [%s]\n", strings.Join(tags, ", "))
	b.WriteString("Analyze the attached product images and return the JSON record.")
	return b.String()
}

const seedInstruction = `You are a retail catalog analyst for Indian quick-commerce grocery apps.`

const seedPrompt = `List the 20 most common FMCG food and beverage product categories sold on quick-commerce apps in India, e.g. "Dairy", "Snacks & Namkeen", "Breakfast Cereals".
Use short title-case names. Return a JSON array of objects with a single "name" field.`

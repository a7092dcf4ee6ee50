package extractor

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nutri-lens/errs"
	"nutri-lens/internal/testsupport"
	"nutri-lens/llm"
	"nutri-lens/models"
)

var twoImages = []llm.Image{{MIMEType: "image/png", Data: []byte{1}}, {MIMEType: "image/jpeg", Data: []byte{2}}}

func extraction(t *testing.T, mutate func(m map[string]any)) string {
	t.Helper()
	nutrition := map[string]any{}
	for _, k := range models.NutrientKeys {
		nutrition[k] = 1.5
	}
	nutrition["trans_fat"] = nil
	m := map[string]any{
		"name":              " Masala Oats ",
		"brand":             "Saffola",
		"categories":        []string{"Breakfast Cereals", "Breakfast Cereals", " "},
		"serving_size":      40,
		"serving_unit":      "g",
		"nutritional_facts": nutrition,
		"ingredients": []map[string]any{
			{"name": "Rolled Oats", "effects": []map[string]any{{"effect_type": "Beneficial", "description": "fiber"}}},
			{"name": "Salt", "effects": []map[string]any{}},
		},
		"claims": []map[string]any{
			{"claim": "High fiber", "verification_status": "Verified"},
			{"claim": "Tasty", "verification_status": nil},
		},
		"allergens":                  []string{"Gluten"},
		"summary":                    "Decent breakfast.",
		"functional_benefits":        []string{"satiety"},
		"suitable_for":               []string{"DIABETES"},
		"not_suitable_for":           []string{"HYPERTENSION"},
		"natural_ingredient_count":   1,
		"processed_ingredient_count": 1,
	}
	if mutate != nil {
		mutate(m)
	}
	b, err := json.Marshal(m)
	require.NoError(t, err)
	return string(b)
}

func TestIsEdible(t *testing.T) {
	gen := testsupport.NewGenerator().Respond(llm.TaskClassifier, `{"edible": false}`)
	edible, err := NewClassifier(gen).IsEdible(context.Background(), twoImages)
	require.NoError(t, err)
	assert.False(t, edible)

	req, ok := gen.LastRequest(llm.TaskClassifier)
	require.True(t, ok)
	assert.Len(t, req.Images, 2)
	assert.NotNil(t, req.Schema)
}

func TestIsEdibleMalformed(t *testing.T) {
	gen := testsupport.NewGenerator().Respond(llm.TaskClassifier, `{"food": "yes"}`)
	_, err := NewClassifier(gen).IsEdible(context.Background(), twoImages)
	assert.ErrorIs(t, err, errs.ErrExtractionFailed)

	gen = testsupport.NewGenerator().Fail(llm.TaskClassifier, errors.New("timeout"))
	_, err = NewClassifier(gen).IsEdible(context.Background(), twoImages)
	assert.ErrorIs(t, err, errs.ErrExtractionFailed)
}

func TestExtract(t *testing.T) {
	gen := testsupport.NewGenerator().Respond(llm.TaskExtraction, extraction(t, nil))

	p, err := NewExtractor(gen).Extract(context.Background(), twoImages, []string{"Dairy", "Breakfast Cereals"})
	require.NoError(t, err)

	assert.Equal(t, "Masala Oats", p.Name)
	require.NotNil(t, p.ServingSize)
	assert.Equal(t, 40.0, *p.ServingSize)
	assert.Equal(t, []string{"Breakfast Cereals"}, p.Categories)
	assert.Nil(t, p.NutritionalFacts.TransFat)
	require.NotNil(t, p.NutritionalFacts.Calories)
	assert.Equal(t, 1.5, *p.NutritionalFacts.Calories)
	require.Len(t, p.Ingredients, 2)
	assert.Equal(t, "Rolled Oats", p.Ingredients[0].Name)
	assert.Equal(t, models.ClaimUnverified, p.Claims[1].VerificationStatus)

	req, _ := gen.LastRequest(llm.TaskExtraction)
	assert.True(t, strings.Contains(req.Prompt, "Available categories: [Dairy, Breakfast Cereals]"))
	assert.Len(t, req.Images, 2)
}

func TestExtractKeepsOnlyCatalogCategories(t *testing.T) {
	gen := testsupport.NewGenerator().Respond(llm.TaskExtraction, extraction(t, func(m map[string]any) {
		m["categories"] = []string{"Totally Invented Category", "snacks", "Dairy"}
	}))

	p, err := NewExtractor(gen).Extract(context.Background(), twoImages, []string{"Snacks", "Dairy"})
	require.NoError(t, err)
	assert.Equal(t, []string{"Snacks", "Dairy"}, p.Categories)

	req, ok := gen.LastRequest(llm.TaskExtraction)
	require.True(t, ok)
	cats := req.Schema.Properties["categories"]
	require.NotNil(t, cats)
	require.NotNil(t, cats.Items)
	assert.Equal(t, []string{"Snacks", "Dairy"}, cats.Items.Enum)
	assert.NotContains(t, req.Instruction, "Invent")
}

func TestExtractWithEmptyCatalogKeepsModelCategories(t *testing.T) {
	gen := testsupport.NewGenerator().Respond(llm.TaskExtraction, extraction(t, nil))

	p, err := NewExtractor(gen).Extract(context.Background(), twoImages, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"Breakfast Cereals"}, p.Categories)

	req, _ := gen.LastRequest(llm.TaskExtraction)
	assert.Empty(t, req.Schema.Properties["categories"].Items.Enum)
}

func TestExtractUnknownServingSizeStaysNil(t *testing.T) {
	for _, v := range []any{nil, 0} {
		gen := testsupport.NewGenerator().Respond(llm.TaskExtraction, extraction(t, func(m map[string]any) {
			m["serving_size"] = v
		}))
		p, err := NewExtractor(gen).Extract(context.Background(), twoImages, nil)
		require.NoError(t, err)
		assert.Nil(t, p.ServingSize)
	}
}

func TestExtractRejectsInvalidRecords(t *testing.T) {
	cases := map[string]func(m map[string]any){
		"missing nutrient key": func(m map[string]any) {
			delete(m["nutritional_facts"].(map[string]any), "iron")
		},
		"empty name":           func(m map[string]any) { m["name"] = "  " },
		"unknown health tag":   func(m map[string]any) { m["suitable_for"] = []string{"VAMPIRISM"} },
		"unknown claim status": func(m map[string]any) { m["claims"] = []map[string]any{{"claim": "x", "verification_status": "Maybe"}} },
		"negative count":       func(m map[string]any) { m["processed_ingredient_count"] = -1 },
		"nameless ingredient":  func(m map[string]any) { m["ingredients"] = []map[string]any{{"name": ""}} },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			gen := testsupport.NewGenerator().Respond(llm.TaskExtraction, extraction(t, mutate))
			_, err := NewExtractor(gen).Extract(context.Background(), twoImages, nil)
			assert.ErrorIs(t, err, errs.ErrExtractionFailed)
			assert.Equal(t, 1, gen.Calls(llm.TaskExtraction), "no retry")
		})
	}
}

func TestExtractMalformedJSON(t *testing.T) {
	gen := testsupport.NewGenerator().Respond(llm.TaskExtraction, `{"name": "Oats", "nutritional_facts": `)
	_, err := NewExtractor(gen).Extract(context.Background(), twoImages, nil)
	assert.ErrorIs(t, err, errs.ErrExtractionFailed)
}

type categorySet struct{ names []string }

func (c *categorySet) UpsertCategory(ctx context.Context, name string) error {
	c.names = append(c.names, name)
	return nil
}

func TestSeedCategories(t *testing.T) {
	gen := testsupport.NewGenerator().Respond(llm.TaskSeed, `[{"name":"Dairy"},{"name":"Snacks"},{"name":"Dairy"},{"name":""}]`)
	store := &categorySet{}

	names, err := SeedCategories(context.Background(), gen, store)
	require.NoError(t, err)
	assert.Equal(t, []string{"Dairy", "Snacks"}, names)
	assert.Equal(t, names, store.names)
}

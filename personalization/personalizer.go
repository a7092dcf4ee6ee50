package personalization

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strings"

	"google.golang.org/genai"

	"nutri-lens/errs"
	"nutri-lens/llm"
	"nutri-lens/models"
)

// UserProfile is the part of a user the model gets to see.
type UserProfile struct {
	HealthDetails      []models.HealthDetail    `json:"health_details"`
	DietaryPreference  models.DietaryPreference `json:"dietary_preference"`
	HealthGoals        []models.HealthGoal      `json:"health_goals"`
	NutritionKnowledge string                   `json:"nutrition_knowledge"`
	DailyCalorieNeeds  int                      `json:"daily_calorie_needs"`
}

// ProductProfile is the part of a product the model gets to see.
type ProductProfile struct {
	Name             string                `json:"name"`
	Brand            string                `json:"brand"`
	ServingSize      *float64              `json:"serving_size"`
	ServingUnit      string                `json:"serving_unit"`
	NutritionalFacts models.Nutrients      `json:"nutritional_facts"`
	Ingredients      []string              `json:"ingredients"`
	Categories       []string              `json:"categories"`
	SuitableFor      []models.HealthDetail `json:"suitable_for"`
	NotSuitableFor   []models.HealthDetail `json:"not_suitable_for"`
	HealthScore      float64               `json:"health_score"`
	NutritionDensity float64               `json:"nutrition_density"`
}

func ProfileOfUser(u *models.User) UserProfile {
	return UserProfile{
		HealthDetails:      u.HealthDetails,
		DietaryPreference:  u.DietaryPreference,
		HealthGoals:        u.HealthGoals,
		NutritionKnowledge: u.NutritionKnowledge,
		DailyCalorieNeeds:  u.DailyCalorieNeeds,
	}
}

// Generated is the overview content before it is tied to a user and product.
type Generated struct {
	Overview                 string                          `json:"overview"`
	MatchScore               float64                         `json:"match_score"`
	SuitabilityReasons       []models.SuitabilityReason      `json:"suitability_reasons"`
	SafeConsumptionGuideline models.SafeConsumptionGuideline `json:"safe_consumption_guideline"`
	HealthGoalImpacts        []models.HealthGoalImpact       `json:"health_goal_impacts"`
	NutrientHighlights       []models.NutrientHighlight      `json:"nutrient_highlights"`
}

// Personalizer produces an overview of one product for one user.
type Personalizer interface {
	Personalize(ctx context.Context, user UserProfile, product ProductProfile) (*Generated, error)
}

type GeminiPersonalizer struct {
	gen llm.Generator
}

func NewGeminiPersonalizer(gen llm.Generator) *GeminiPersonalizer {
	return &GeminiPersonalizer{gen: gen}
}

const personalizeInstruction = `You are a registered dietitian. Given a user's health profile and a packaged food product, explain how well the product suits this user.
- overview: two or three sentences addressed to the user.
- match_score: 0 to 100, how well the product fits the user's conditions, diet and goals.
- suitability_reasons: each reason is "good" or "bad" with a short explanation.
- safe_consumption_guideline: how often (daily, weekly or monthly) and how much (amount and unit) the user can safely consume.
- health_goal_impacts: one entry per user goal describing the impact.
- nutrient_highlights: the nutrients that matter most for this user and why.
Respect the dietary preference strictly. Never invent nutrients that are not listed.`

var personalizeSchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"overview":    {Type: genai.TypeString},
		"match_score": {Type: genai.TypeNumber},
		"suitability_reasons": {
			Type: genai.TypeArray,
			Items: &genai.Schema{
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"type":   {Type: genai.TypeString, Enum: []string{"good", "bad"}},
					"reason": {Type: genai.TypeString},
				},
				Required: []string{"type", "reason"},
			},
		},
		"safe_consumption_guideline": {
			Type: genai.TypeObject,
			Properties: map[string]*genai.Schema{
				"frequency": {Type: genai.TypeString, Enum: []string{"daily", "weekly", "monthly"}},
				"amount":    {Type: genai.TypeNumber},
				"unit":      {Type: genai.TypeString},
			},
			Required: []string{"frequency", "amount", "unit"},
		},
		"health_goal_impacts": {
			Type: genai.TypeArray,
			Items: &genai.Schema{
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"goal":   {Type: genai.TypeString},
					"impact": {Type: genai.TypeString},
				},
			},
		},
		"nutrient_highlights": {
			Type: genai.TypeArray,
			Items: &genai.Schema{
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"nutrient": {Type: genai.TypeString},
					"benefit":  {Type: genai.TypeString},
				},
			},
		},
	},
	Required: []string{"overview", "match_score", "suitability_reasons", "safe_consumption_guideline"},
}

func (p *GeminiPersonalizer) Personalize(ctx context.Context, user UserProfile, product ProductProfile) (*Generated, error) {
	payload, err := json.MarshalIndent(struct {
		User    UserProfile    `json:"user"`
		Product ProductProfile `json:"product"`
	}{user, product}, "", "  ")
	if err != nil {
		return nil, err
	}

	resp, err := p.gen.GenerateJSON(ctx, llm.Request{
		Task:        llm.TaskPersonalize,
		Instruction: personalizeInstruction,
		Prompt:      string(payload),
		Schema:      personalizeSchema,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errs.ErrGenerationFailed, err)
	}
	out, err := llm.DecodeJSON[Generated](resp)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errs.ErrGenerationFailed, err)
	}
	if err := Normalize(&out); err != nil {
		return nil, fmt.Errorf("%w: %v", errs.ErrGenerationFailed, err)
	}
	return &out, nil
}

// Normalize clamps the match score and rejects unknown reason types and frequencies.
func Normalize(g *Generated) error {
	if strings.TrimSpace(g.Overview) == "" {
		return fmt.Errorf("overview is empty")
	}
	if math.IsNaN(g.MatchScore) {
		return fmt.Errorf("match score is not a number")
	}
	g.MatchScore = math.Max(0, math.Min(100, g.MatchScore))

	for i := range g.SuitabilityReasons {
		t := strings.ToLower(strings.TrimSpace(g.SuitabilityReasons[i].Type))
		if t != "good" && t != "bad" {
			return fmt.Errorf("unknown suitability type %q", g.SuitabilityReasons[i].Type)
		}
		g.SuitabilityReasons[i].Type = t
	}

	f := strings.ToLower(strings.TrimSpace(g.SafeConsumptionGuideline.Frequency))
	switch f {
	case "daily", "weekly", "monthly":
		g.SafeConsumptionGuideline.Frequency = f
	default:
		return fmt.Errorf("unknown consumption frequency %q", g.SafeConsumptionGuideline.Frequency)
	}
	if g.SafeConsumptionGuideline.Amount < 0 {
		g.SafeConsumptionGuideline.Amount = 0
	}
	return nil
}

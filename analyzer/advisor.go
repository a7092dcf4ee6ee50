package analyzer

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"nutri-lens/errs"
	"nutri-lens/llm"
	"nutri-lens/models"
)

// Profile is the user context sent with a consumption report.
type Profile struct {
	BiologicalSex      models.BiologicalSex     `json:"biological_sex"`
	Age                int                      `json:"age"`
	WeightKg           float64                  `json:"weight_kg"`
	HeightCm           float64                  `json:"height_cm"`
	ActivityLevel      models.ActivityLevel     `json:"activity_level"`
	DietaryPreference  models.DietaryPreference `json:"dietary_preference"`
	NutritionKnowledge string                   `json:"nutrition_knowledge"`
	HealthGoals        []models.HealthGoal      `json:"health_goals"`
	HealthDetails      []models.HealthDetail    `json:"health_details"`
	DailyCalorieNeeds  int                      `json:"daily_calorie_needs"`
}

func ProfileOf(u *models.User) Profile {
	return Profile{
		BiologicalSex:      u.BiologicalSex,
		Age:                u.Age,
		WeightKg:           u.WeightKg,
		HeightCm:           u.HeightCm,
		ActivityLevel:      u.ActivityLevel,
		DietaryPreference:  u.DietaryPreference,
		NutritionKnowledge: u.NutritionKnowledge,
		HealthGoals:        u.HealthGoals,
		HealthDetails:      u.HealthDetails,
		DailyCalorieNeeds:  u.DailyCalorieNeeds,
	}
}

type Advice struct {
	AnalysisSummary string                  `json:"analysis_summary"`
	Recommendations []models.Recommendation `json:"recommendations"`
}

// Advisor reviews a consumption report against the user's profile.
type Advisor interface {
	Advise(ctx context.Context, profile Profile, report models.ConsumptionReport) (*Advice, error)
}

type GeminiAdvisor struct {
	gen llm.Generator
}

func NewGeminiAdvisor(gen llm.Generator) *GeminiAdvisor {
	return &GeminiAdvisor{gen: gen}
}

const adviseInstruction = `You are a nutrition coach reviewing what a user ate over a reporting period.
Identify where the diet falls short of the user's goals and give concrete, personal advice.
- analysis_summary: a concise summary of the consumption habits and what to improve.
- recommendations: each has a type, a description (e.g. "Swap X for Y", "Reduce the portion of X by 20 g") and the reason it helps.
Compare calorie intake with daily_calorie_needs and respect the dietary preference.`

var adviceSchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"analysis_summary": {Type: genai.TypeString},
		"recommendations": {
			Type: genai.TypeArray,
			Items: &genai.Schema{
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"type":        {Type: genai.TypeString, Enum: models.AllRecommendationTypes},
					"description": {Type: genai.TypeString},
					"reason":      {Type: genai.TypeString},
				},
				Required: []string{"type", "description", "reason"},
			},
		},
	},
	Required: []string{"analysis_summary", "recommendations"},
}

func (a *GeminiAdvisor) Advise(ctx context.Context, profile Profile, report models.ConsumptionReport) (*Advice, error) {
	payload, err := json.MarshalIndent(struct {
		User   Profile                  `json:"user"`
		Report models.ConsumptionReport `json:"consumption_report"`
	}{profile, report}, "", "  ")
	if err != nil {
		return nil, err
	}

	resp, err := a.gen.GenerateJSON(ctx, llm.Request{
		Task:        llm.TaskAnalysis,
		Instruction: adviseInstruction,
		Prompt:      string(payload),
		Schema:      adviceSchema,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errs.ErrGenerationFailed, err)
	}
	out, err := llm.DecodeJSON[Advice](resp)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errs.ErrGenerationFailed, err)
	}
	if strings.TrimSpace(out.AnalysisSummary) == "" {
		return nil, fmt.Errorf("%w: empty analysis summary", errs.ErrGenerationFailed)
	}
	for _, r := range out.Recommendations {
		if !models.ValidRecommendationType(r.Type) {
			return nil, fmt.Errorf("%w: unknown recommendation type %q", errs.ErrGenerationFailed, r.Type)
		}
	}
	return &out, nil
}

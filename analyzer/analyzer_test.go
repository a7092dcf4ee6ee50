package analyzer

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"nutri-lens/config"
	"nutri-lens/errs"
	"nutri-lens/internal/testsupport"
	"nutri-lens/llm"
	"nutri-lens/models"
)

const adviceJSON = `{
  "analysis_summary": "Too much sodium today.",
  "recommendations": [{"type": "Food Swap", "description": "Swap chips for nuts", "reason": "less sodium"}]
}`

var now = time.Date(2026, 5, 10, 15, 0, 0, 0, time.UTC)

type fixture struct {
	analyzer     *Analyzer
	gen          *testsupport.Generator
	catalog      *testsupport.Catalog
	users        *testsupport.Users
	consumptions *testsupport.Consumptions
	analyses     *testsupport.Analyses
}

func newFixture(t *testing.T, cfg config.AnalysisConfig) *fixture {
	f := &fixture{
		gen:          testsupport.NewGenerator().Respond(llm.TaskAnalysis, adviceJSON),
		catalog:      testsupport.NewCatalog(),
		users:        testsupport.NewUsers(),
		consumptions: testsupport.NewConsumptions(),
		analyses:     testsupport.NewAnalyses(),
	}
	a, err := NewAnalyzer(f.users, f.consumptions, f.catalog, f.analyses, NewGeminiAdvisor(f.gen), cfg)
	require.NoError(t, err)
	f.analyzer = a
	return f
}

func (f *fixture) product(t *testing.T, url string, calories *float64, categories ...string) primitive.ObjectID {
	id, err := f.catalog.CreateProductGraph(context.Background(), &models.ProductGraph{
		Product:    models.Product{Name: url, VendorProductURL: url},
		Nutrition:  models.Nutrients{Calories: calories, Sodium: models.Float(100)},
		Categories: categories,
	})
	require.NoError(t, err)
	return id
}

func (f *fixture) user(t *testing.T) primitive.ObjectID {
	u := &models.User{DailyCalorieNeeds: 2000}
	require.NoError(t, f.users.Save(context.Background(), u))
	return u.ID
}

func (f *fixture) eat(t *testing.T, user, product primitive.ObjectID, qty float64, at time.Time) {
	require.NoError(t, f.consumptions.Insert(context.Background(), &models.Consumption{
		UserID: user, ProductID: product, Quantity: qty, CreatedAt: at,
	}))
}

func TestWindowFor(t *testing.T) {
	w, err := WindowFor(now, WindowDay, time.UTC)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 5, 10, 0, 0, 0, 0, time.UTC), w.Start)
	assert.Equal(t, time.Date(2026, 5, 11, 0, 0, 0, 0, time.UTC), w.End)
	assert.Equal(t, w.Start, w.ReportDate)

	w, err = WindowFor(now, WindowWeek, time.UTC)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 5, 4, 0, 0, 0, 0, time.UTC), w.Start)
	assert.Equal(t, time.Date(2026, 5, 10, 0, 0, 0, 0, time.UTC), w.ReportDate)

	ist := time.FixedZone("IST", 5*3600+1800)
	w, err = WindowFor(time.Date(2026, 5, 10, 20, 0, 0, 0, time.UTC), WindowDay, ist)
	require.NoError(t, err)
	assert.Equal(t, 11, w.ReportDate.Day(), "20:00 UTC is already the next day in IST")

	_, err = WindowFor(now, "fortnight", time.UTC)
	assert.Error(t, err)
}

func TestAnalyzeUserAggregates(t *testing.T) {
	f := newFixture(t, config.AnalysisConfig{Window: WindowDay})
	user := f.user(t)
	chips := f.product(t, "https://x/chips", models.Float(150), "Snacks", "Namkeen")
	oats := f.product(t, "https://x/oats", models.Float(100), "Breakfast", "Snacks")
	water := f.product(t, "https://x/water", models.Float(0), "Beverages")
	unknown := f.product(t, "https://x/unknown", nil, "Mystery")

	f.eat(t, user, chips, 2, now.Add(-2*time.Hour))
	f.eat(t, user, oats, 1, now.Add(-time.Hour))
	f.eat(t, user, water, 3, now.Add(-time.Hour))
	f.eat(t, user, unknown, 1, now.Add(-time.Hour))
	f.eat(t, user, chips, 5, now.Add(-24*time.Hour)) // yesterday

	a, err := f.analyzer.AnalyzeUser(context.Background(), user, now)
	require.NoError(t, err)
	require.NotNil(t, a)

	assert.Equal(t, 400.0, a.Report.TotalConsumedCalories)
	assert.Equal(t, 2, a.Report.TotalConsumedProducts)
	assert.Equal(t, []string{"Snacks", "Namkeen", "Breakfast"}, a.Report.MajorCategories)
	assert.Equal(t, 300.0, a.Report.TotalNutrients.Sodium)
	assert.Equal(t, "Too much sodium today.", a.AnalysisSummary)
	require.Len(t, a.Recommendations, 1)
	assert.Equal(t, models.RecommendationFoodSwap, a.Recommendations[0].Type)
	assert.Equal(t, 1, f.analyses.Len())
}

func TestAnalyzeUserEmptyWindow(t *testing.T) {
	f := newFixture(t, config.AnalysisConfig{})
	user := f.user(t)
	water := f.product(t, "https://x/water", models.Float(0))
	f.eat(t, user, water, 1, now)

	a, err := f.analyzer.AnalyzeUser(context.Background(), user, now)
	require.NoError(t, err)
	assert.Nil(t, a)
	assert.Zero(t, f.gen.TotalCalls())
	assert.Zero(t, f.analyses.Len())
}

func TestAnalyzeUserRerunOverwrites(t *testing.T) {
	f := newFixture(t, config.AnalysisConfig{})
	user := f.user(t)
	oats := f.product(t, "https://x/oats", models.Float(100))
	f.eat(t, user, oats, 1, now.Add(-time.Hour))

	first, err := f.analyzer.AnalyzeUser(context.Background(), user, now)
	require.NoError(t, err)
	f.eat(t, user, oats, 1, now.Add(-time.Minute))
	second, err := f.analyzer.AnalyzeUser(context.Background(), user, now)
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, 1, f.analyses.Len())
	latest, err := f.analyses.FindLatest(context.Background(), user)
	require.NoError(t, err)
	assert.Equal(t, 200.0, latest.Report.TotalConsumedCalories)
}

func TestAnalyzeUserRejectsUnknownRecommendation(t *testing.T) {
	f := newFixture(t, config.AnalysisConfig{})
	f.gen.Respond(llm.TaskAnalysis, `{"analysis_summary": "x", "recommendations": [{"type": "Fasting", "description": "d", "reason": "r"}]}`)
	user := f.user(t)
	f.eat(t, user, f.product(t, "https://x/oats", models.Float(100)), 1, now)

	_, err := f.analyzer.AnalyzeUser(context.Background(), user, now)
	assert.ErrorIs(t, err, errs.ErrGenerationFailed)
	assert.Zero(t, f.analyses.Len())
}

func TestSweepIsolatesFailures(t *testing.T) {
	f := newFixture(t, config.AnalysisConfig{Concurrency: 2})
	oats := f.product(t, "https://x/oats", models.Float(100))

	active := f.user(t)
	f.eat(t, active, oats, 1, now)
	f.user(t) // no events
	broken := f.user(t)
	f.eat(t, broken, oats, 1, now)
	f.consumptions.FailFor[broken] = errors.New("cursor closed")

	res, err := f.analyzer.Sweep(context.Background(), now)
	require.NoError(t, err)
	assert.Equal(t, SweepResult{Analyzed: 1, Skipped: 1, Failed: 1}, res)
}

func TestNewAnalyzerRejectsBadConfig(t *testing.T) {
	_, err := NewAnalyzer(nil, nil, nil, nil, nil, config.AnalysisConfig{Window: "month"})
	assert.Error(t, err)
	_, err = NewAnalyzer(nil, nil, nil, nil, nil, config.AnalysisConfig{Timezone: "Mars/Olympus"})
	assert.Error(t, err)
}

package router

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"nutri-lens/analyzer"
	"nutri-lens/cmd/api/auth"
	"nutri-lens/cmd/api/dto"
	"nutri-lens/cmd/api/services"
	"nutri-lens/errs"
	"nutri-lens/internal/testsupport"
	"nutri-lens/models"
)

const cronSecret = "cron-secret"

type stubIngester struct {
	catalog *testsupport.Catalog
	err     error
}

func (s *stubIngester) Ingest(ctx context.Context, rawURL string) (primitive.ObjectID, error) {
	if s.err != nil {
		return primitive.NilObjectID, s.err
	}
	return s.catalog.CreateProductGraph(ctx, &models.ProductGraph{Product: models.Product{Name: "Oats", VendorProductURL: rawURL}})
}

type stubRequester struct{ urls []string }

func (s *stubRequester) Request(ctx context.Context, rawURL, requestedBy string) (string, error) {
	s.urls = append(s.urls, rawURL)
	return "req-1", nil
}

type stubOverviews struct {
	overview *models.PersonalizedOverview
}

func (s *stubOverviews) GetOverview(ctx context.Context, userID, productID primitive.ObjectID) (*models.PersonalizedOverview, error) {
	return s.overview, nil
}

type stubSweeper struct {
	res analyzer.SweepResult
	err error
}

func (s *stubSweeper) Sweep(ctx context.Context, now time.Time) (analyzer.SweepResult, error) {
	return s.res, s.err
}

type fixture struct {
	catalog      *testsupport.Catalog
	users        *testsupport.Users
	consumptions *testsupport.Consumptions
	analyses     *testsupport.Analyses
	ingester     *stubIngester
	requester    *stubRequester
	overviews    *stubOverviews
	sweeper      *stubSweeper
	async        bool
}

func newFixture() *fixture {
	catalog := testsupport.NewCatalog("Breakfast Cereals", "Snacks")
	return &fixture{
		catalog:      catalog,
		users:        testsupport.NewUsers(),
		consumptions: testsupport.NewConsumptions(),
		analyses:     testsupport.NewAnalyses(),
		ingester:     &stubIngester{catalog: catalog},
		requester:    &stubRequester{},
		overviews:    &stubOverviews{},
		sweeper:      &stubSweeper{},
	}
}

func (f *fixture) engine() *gin.Engine {
	gin.SetMode(gin.TestMode)
	var requester services.IngestRequester
	if f.async {
		requester = f.requester
	}
	return New(Services{
		Products:     services.NewProductService(f.catalog, f.ingester, requester, f.overviews),
		Users:        services.NewUserService(f.users),
		Consumptions: services.NewConsumptionService(f.users, f.catalog, f.consumptions),
		Analyses:     services.NewAnalysisService(f.sweeper, f.analyses),
		CronSecret:   cronSecret,
	})
}

func do(t *testing.T, r *gin.Engine, method, path string, userID primitive.ObjectID, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if !userID.IsZero() {
		req.Header.Set(auth.HeaderUserID, userID.Hex())
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

func num(v float64) *float64 { return &v }

func (f *fixture) seedProduct(t *testing.T) primitive.ObjectID {
	t.Helper()
	id, err := f.catalog.CreateProductGraph(context.Background(), &models.ProductGraph{
		Product:   models.Product{Name: "Masala Oats", Brand: "Saffola", VendorProductURL: "https://www.bigbasket.com/pd/1/masala-oats/"},
		Nutrition: models.Nutrients{Calories: num(380), Protein: num(12)},
		Ingredients: []models.ExtractedIngredient{
			{Name: "Rolled Oats"}, {Name: "Salt"}, {Name: "Spices"},
		},
		Claims:     []models.ExtractedClaim{{Claim: "High fibre", VerificationStatus: models.ClaimVerified}},
		Allergens:  []string{"Gluten"},
		Categories: []string{"Breakfast Cereals"},
	})
	require.NoError(t, err)
	return id
}

func TestSubmitProductSync(t *testing.T) {
	f := newFixture()
	r := f.engine()
	user := primitive.NewObjectID()

	w := do(t, r, http.MethodPost, "/api/v1/products", user, dto.SubmitProductRequest{URL: "https://www.bigbasket.com/pd/2/"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	res := decode[dto.SubmitProductResponse](t, w)
	assert.Equal(t, dto.SubmitStatusCreated, res.Status)
	id, err := primitive.ObjectIDFromHex(res.ProductID)
	require.NoError(t, err)
	assert.Contains(t, f.catalog.Products, id)
}

func TestSubmitProductRequiresUser(t *testing.T) {
	f := newFixture()
	w := do(t, f.engine(), http.MethodPost, "/api/v1/products", primitive.NilObjectID, dto.SubmitProductRequest{URL: "https://www.bigbasket.com/pd/2/"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Zero(t, f.catalog.Writes)
}

func TestSubmitProductAsync(t *testing.T) {
	f := newFixture()
	f.async = true

	w := do(t, f.engine(), http.MethodPost, "/api/v1/products", primitive.NewObjectID(), dto.SubmitProductRequest{URL: "https://www.bigbasket.com/pd/3/"})
	require.Equal(t, http.StatusAccepted, w.Code)

	res := decode[dto.SubmitProductResponse](t, w)
	assert.Equal(t, dto.SubmitStatusQueued, res.Status)
	assert.Equal(t, "req-1", res.RequestID)
	assert.Equal(t, []string{"https://www.bigbasket.com/pd/3/"}, f.requester.urls)
	assert.Zero(t, f.catalog.Writes)
}

func TestSubmitProductFailureReasons(t *testing.T) {
	cases := []struct {
		err    error
		status int
		reason string
	}{
		{fmt.Errorf("%w: x", errs.ErrDuplicateProduct), http.StatusConflict, "duplicate_product"},
		{fmt.Errorf("%w: amazon.in", errs.ErrUnsupportedVendor), http.StatusBadRequest, "unsupported_vendor"},
		{fmt.Errorf("%w: found 1", errs.ErrInsufficientImages), http.StatusUnprocessableEntity, "insufficient_images"},
		{errs.ErrNotEdible, http.StatusUnprocessableEntity, "not_edible"},
		{errs.ErrExtractionFailed, http.StatusBadGateway, "extraction_failed"},
		{errs.ErrPersistenceFailed, http.StatusInternalServerError, "persistence_failed"},
	}
	for _, tc := range cases {
		f := newFixture()
		f.ingester.err = tc.err

		w := do(t, f.engine(), http.MethodPost, "/api/v1/products", primitive.NewObjectID(), dto.SubmitProductRequest{URL: "https://www.bigbasket.com/pd/4/"})
		assert.Equal(t, tc.status, w.Code, tc.reason)
		assert.Equal(t, tc.reason, decode[dto.ErrorResponseDTO](t, w).Error)
	}
}

func TestSubmitProductRejectsEmptyBody(t *testing.T) {
	f := newFixture()
	w := do(t, f.engine(), http.MethodPost, "/api/v1/products", primitive.NewObjectID(), map[string]string{})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestProductReads(t *testing.T) {
	f := newFixture()
	id := f.seedProduct(t)
	r := f.engine()
	base := "/api/v1/products/" + id.Hex()

	w := do(t, r, http.MethodGet, base, primitive.NilObjectID, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Masala Oats", decode[models.Product](t, w).Name)

	w = do(t, r, http.MethodGet, base+"/nutrition", primitive.NilObjectID, nil)
	require.Equal(t, http.StatusOK, w.Code)
	facts := decode[models.NutritionalFacts](t, w)
	require.NotNil(t, facts.Calories)
	assert.Equal(t, 380.0, *facts.Calories)

	w = do(t, r, http.MethodGet, base+"/ingredients", primitive.NilObjectID, nil)
	require.Equal(t, http.StatusOK, w.Code)
	ingredients := decode[[]models.OrderedIngredient](t, w)
	require.Len(t, ingredients, 3)
	for i, ing := range ingredients {
		assert.Equal(t, i+1, ing.OrderNumber)
	}
	assert.Equal(t, "Rolled Oats", ingredients[0].Ingredient.Name)

	w = do(t, r, http.MethodGet, base+"/ingredients?limit=2", primitive.NilObjectID, nil)
	assert.Len(t, decode[[]models.OrderedIngredient](t, w), 2)

	w = do(t, r, http.MethodGet, base+"/claims", primitive.NilObjectID, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "High fibre", decode[[]models.Claim](t, w)[0].Claim)

	w = do(t, r, http.MethodGet, base+"/allergens", primitive.NilObjectID, nil)
	assert.Equal(t, []string{"Gluten"}, decode[dto.NamesDTO](t, w).Names)

	w = do(t, r, http.MethodGet, base+"/overview", primitive.NilObjectID, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []string{"Breakfast Cereals"}, decode[models.ProductOverview](t, w).Categories)

	w = do(t, r, http.MethodGet, "/api/v1/categories", primitive.NilObjectID, nil)
	assert.Equal(t, []string{"Breakfast Cereals", "Snacks"}, decode[dto.CategoriesDTO](t, w).Categories)

	w = do(t, r, http.MethodGet, "/api/v1/products?categories=Breakfast+Cereals", primitive.NilObjectID, nil)
	require.Equal(t, http.StatusOK, w.Code)
	page := decode[dto.Pagination[models.Product]](t, w)
	assert.Len(t, page.Data, 1)
	assert.Equal(t, 1, page.Page)
}

func TestProductReadErrors(t *testing.T) {
	r := newFixture().engine()

	w := do(t, r, http.MethodGet, "/api/v1/products/not-an-id", primitive.NilObjectID, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	missing := primitive.NewObjectID().Hex()
	for _, path := range []string{"", "/nutrition", "/ingredients", "/claims", "/allergens"} {
		w = do(t, r, http.MethodGet, "/api/v1/products/"+missing+path, primitive.NilObjectID, nil)
		assert.Equal(t, http.StatusNotFound, w.Code, path)
	}
}

func TestPersonalizedOverview(t *testing.T) {
	f := newFixture()
	id := f.seedProduct(t)
	r := f.engine()
	path := "/api/v1/products/" + id.Hex() + "/personalized"

	w := do(t, r, http.MethodGet, path, primitive.NewObjectID(), nil)
	assert.Equal(t, http.StatusNoContent, w.Code, "soft generation failure has no body")

	f.overviews.overview = &models.PersonalizedOverview{ProductID: id, Overview: "Good fibre source", MatchScore: 72}
	w = do(t, r, http.MethodGet, path, primitive.NewObjectID(), nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 72.0, decode[models.PersonalizedOverview](t, w).MatchScore)
}

func profile() dto.UserProfileRequest {
	return dto.UserProfileRequest{
		Name:          "Asha",
		BiologicalSex: models.SexMale,
		Age:           30,
		WeightKg:      70,
		HeightCm:      175,
		ActivityLevel: models.ActivitySedentary,
		HealthDetails: []models.HealthDetail{models.HealthNormal},
	}
}

func TestOnboardAndUpdateUser(t *testing.T) {
	f := newFixture()
	r := f.engine()
	user := primitive.NewObjectID()

	w := do(t, r, http.MethodPost, "/api/v1/users/me", user, profile())
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.Equal(t, 1689, decode[models.User](t, w).DailyCalorieNeeds)

	w = do(t, r, http.MethodPost, "/api/v1/users/me", user, profile())
	assert.Equal(t, http.StatusConflict, w.Code)

	update := profile()
	update.HealthGoals = []models.HealthGoal{models.GoalWeightLoss}
	w = do(t, r, http.MethodPut, "/api/v1/users/me", user, update)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 1289, decode[models.User](t, w).DailyCalorieNeeds)

	stored, err := f.users.FindByID(context.Background(), user)
	require.NoError(t, err)
	assert.Equal(t, "Asha", stored.Name)
	assert.Equal(t, 1289, stored.DailyCalorieNeeds)

	w = do(t, r, http.MethodGet, "/api/v1/users/me", user, nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestOnboardRejectsInvalidProfile(t *testing.T) {
	f := newFixture()
	r := f.engine()

	bad := profile()
	bad.BiologicalSex = "OTHER"
	w := do(t, r, http.MethodPost, "/api/v1/users/me", primitive.NewObjectID(), bad)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	bad = profile()
	bad.HealthGoals = []models.HealthGoal{"LIVE_FOREVER"}
	w = do(t, r, http.MethodPost, "/api/v1/users/me", primitive.NewObjectID(), bad)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(t, r, http.MethodPut, "/api/v1/users/me", primitive.NewObjectID(), profile())
	assert.Equal(t, http.StatusNotFound, w.Code, "update needs an onboarded user")
}

func TestLogConsumption(t *testing.T) {
	f := newFixture()
	id := f.seedProduct(t)
	user := primitive.NewObjectID()
	require.NoError(t, f.users.Save(context.Background(), &models.User{ID: user}))
	r := f.engine()

	w := do(t, r, http.MethodPost, "/api/v1/consumptions", user, dto.ConsumptionRequest{ProductID: id.Hex(), Quantity: 2})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	rows := f.consumptions.All()
	require.Len(t, rows, 1)
	assert.Equal(t, id, rows[0].ProductID)
	assert.Equal(t, 2.0, rows[0].Quantity)

	w = do(t, r, http.MethodPost, "/api/v1/consumptions", user, dto.ConsumptionRequest{ProductID: primitive.NewObjectID().Hex(), Quantity: 1})
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = do(t, r, http.MethodPost, "/api/v1/consumptions", user, dto.ConsumptionRequest{ProductID: id.Hex(), Quantity: -1})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(t, r, http.MethodPost, "/api/v1/consumptions", primitive.NewObjectID(), dto.ConsumptionRequest{ProductID: id.Hex(), Quantity: 1})
	assert.Equal(t, http.StatusNotFound, w.Code, "unknown user")
	assert.Len(t, f.consumptions.All(), 1)
}

func TestLatestAnalysis(t *testing.T) {
	f := newFixture()
	user := primitive.NewObjectID()
	r := f.engine()

	w := do(t, r, http.MethodGet, "/api/v1/users/me/analysis", user, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	require.NoError(t, f.analyses.UpsertByUserAndDate(context.Background(), &models.ConsumptionAnalysis{
		UserID: user, ReportDate: time.Date(2026, 10, 18, 0, 0, 0, 0, time.UTC), AnalysisSummary: "Too much sodium",
	}))
	w = do(t, r, http.MethodGet, "/api/v1/users/me/analysis", user, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Too much sodium", decode[models.ConsumptionAnalysis](t, w).AnalysisSummary)
}

func cron(t *testing.T, r *gin.Engine, header string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/cron/analyze", nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestCronAnalyze(t *testing.T) {
	f := newFixture()
	f.sweeper.res = analyzer.SweepResult{Analyzed: 3, Skipped: 2, Failed: 1}
	r := f.engine()

	assert.Equal(t, http.StatusUnauthorized, cron(t, r, "").Code)
	assert.Equal(t, http.StatusUnauthorized, cron(t, r, "Bearer wrong").Code)

	w := cron(t, r, "Bearer "+cronSecret)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, dto.CronAnalyzeResponse{Success: true, Analyzed: 3, Skipped: 2, Failed: 1}, decode[dto.CronAnalyzeResponse](t, w))

	f.sweeper.err = errors.New("list users: mongo down")
	w = cron(t, r, "Bearer "+cronSecret)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, false, decode[map[string]any](t, w)["success"])
}

func TestHealth(t *testing.T) {
	w := httptest.NewRecorder()
	newFixture().engine().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}
